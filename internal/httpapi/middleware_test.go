package httpapi

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/argon2"
)

func hashSecret(t *testing.T, secret string) string {
	t.Helper()
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	hash := argon2.IDKey([]byte(secret), salt, 3, 64*1024, 2, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 64*1024, 3, 2,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestVerifySchedulerSecret(t *testing.T) {
	t.Run("plain secret constant-time match", func(t *testing.T) {
		if err := VerifySchedulerSecret("swordfish", "swordfish"); err != nil {
			t.Errorf("expected match, got %v", err)
		}
		if err := VerifySchedulerSecret("swordfish", "marlin"); err == nil {
			t.Error("expected mismatch to fail")
		}
	})

	t.Run("argon2id hash", func(t *testing.T) {
		hashed := hashSecret(t, "swordfish")
		if err := VerifySchedulerSecret(hashed, "swordfish"); err != nil {
			t.Errorf("expected hashed match, got %v", err)
		}
		if err := VerifySchedulerSecret(hashed, "marlin"); err == nil {
			t.Error("expected hashed mismatch to fail")
		}
	})

	t.Run("malformed hash", func(t *testing.T) {
		err := VerifySchedulerSecret("$argon2id$broken", "anything")
		if err == nil {
			t.Error("expected malformed hash to fail")
		}
	})
}

func TestRequireSchedulerSecret(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireSchedulerSecret("swordfish", nil)(next)

	tests := []struct {
		name       string
		secret     string
		wantStatus int
		wantNext   bool
	}{
		{name: "valid secret", secret: "swordfish", wantStatus: http.StatusOK, wantNext: true},
		{name: "wrong secret", secret: "marlin", wantStatus: http.StatusForbidden},
		{name: "missing secret", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPost, "/internal/poll", nil)
			if tc.secret != "" {
				req.Header.Set(secretHeader, tc.secret)
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if reached != tc.wantNext {
				t.Errorf("expected next reached=%v, got %v", tc.wantNext, reached)
			}
		})
	}
}

func TestRouterEnforcesSecret(t *testing.T) {
	poll := &pollStub{}
	router := testRouter(&provisionStub{}, &notifyStub{}, poll, hashSecret(t, "swordfish"))

	req := httptest.NewRequest(http.MethodPost, "/internal/poll", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without secret, got %d", rec.Code)
	}
	if len(poll.forced) != 0 {
		t.Fatal("handler must not run without the secret")
	}

	req = httptest.NewRequest(http.MethodPost, "/internal/poll", nil)
	req.Header.Set(secretHeader, "swordfish")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with secret, got %d: %s", rec.Code, rec.Body.String())
	}
}
