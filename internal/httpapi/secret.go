package httpapi

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidSecretHash         = errors.New("invalid secret hash format")
	ErrIncompatibleSecretVersion = errors.New("incompatible secret hash version")
	errSecretMismatch            = errors.New("scheduler secret mismatch")
)

// VerifySchedulerSecret checks a presented secret against the configured one.
// A configured value in argon2id PHC format ($argon2id$v=19$...) is verified
// as a hash; anything else is compared in constant time as a plain secret.
func VerifySchedulerSecret(configured, presented string) error {
	if strings.HasPrefix(configured, "$argon2id$") {
		return verifyArgon2idSecret(configured, presented)
	}

	if subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1 {
		return nil
	}
	return errSecretMismatch
}

func verifyArgon2idSecret(hashed, presented string) error {
	parts := strings.Split(hashed, "$")
	if len(parts) != 6 {
		return ErrInvalidSecretHash
	}
	if parts[1] != "argon2id" {
		return ErrInvalidSecretHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return err
	}
	if version != argon2.Version {
		return ErrIncompatibleSecretVersion
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return err
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return err
	}

	comparisonHash := argon2.IDKey([]byte(presented), salt, iterations, memory, parallelism, uint32(len(decodedHash)))
	if subtle.ConstantTimeCompare(decodedHash, comparisonHash) == 1 {
		return nil
	}
	return errSecretMismatch
}
