package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.Poller.LeadTime != 12*time.Hour {
		t.Errorf("expected default lead time 12h, got %s", cfg.Poller.LeadTime)
	}
	if cfg.Poller.Window != 5*time.Minute {
		t.Errorf("expected default window 5m, got %s", cfg.Poller.Window)
	}
	if cfg.Poller.Forced {
		t.Error("forced mode must never default to on")
	}
	if cfg.Poller.Horizon != 48*time.Hour {
		t.Errorf("expected default horizon 48h, got %s", cfg.Poller.Horizon)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCHEDULER_HTTP_PORT", "9090")
	t.Setenv("NOTIFY_LEAD_TIME", "6h")
	t.Setenv("NOTIFY_WINDOW", "10m")
	t.Setenv("MAIL_STAKEHOLDER_BCC", "ops@studio.example.com,admin@studio.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTPPort)
	}
	if cfg.Poller.LeadTime != 6*time.Hour {
		t.Errorf("expected lead time 6h, got %s", cfg.Poller.LeadTime)
	}
	if len(cfg.Mail.Stakeholders) != 2 {
		t.Fatalf("expected 2 stakeholder addresses, got %v", cfg.Mail.Stakeholders)
	}
	if cfg.Mail.Stakeholders[0] != "ops@studio.example.com" {
		t.Errorf("unexpected first stakeholder: %s", cfg.Mail.Stakeholders[0])
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"zero port", "SCHEDULER_HTTP_PORT", "0"},
		{"negative lead time", "NOTIFY_LEAD_TIME", "-1h"},
		{"horizon below lead time", "NOTIFY_SCAN_HORIZON", "1h"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
