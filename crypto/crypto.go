package crypto

import (
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for new hashes. Tests lower it.
var HashCost = 12

// DummyHash is compared against when a login names an unknown user, so the
// response time does not reveal whether the username exists.
var DummyHash = "$2a$12$C6UzMDM.H6dfI/f/IKcEeO5/9rT2.0DDbyzxChxTVb0Oe4yBkdZ9C"

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

// CheckPasswordHash compares in constant time; a malformed hash never matches.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SessionKeys are the cookie signing and encryption keys derived from the configured secret.
type SessionKeys struct {
	Auth       []byte
	Encryption []byte
	CSRF       []byte
}

// DeriveSessionKeys stretches the configured session secret into three independent 32-byte keys.
func DeriveSessionKeys(secret string) (SessionKeys, error) {
	if secret == "" {
		return SessionKeys{}, errors.New("empty session secret")
	}
	// The salt only separates purposes; the secret itself must carry the entropy.
	derive := func(purpose string) []byte {
		salt := sha256.Sum256([]byte("bookhive/" + purpose))
		return argon2.IDKey([]byte(secret), salt[:], 1, 64*1024, 4, 32)
	}
	return SessionKeys{
		Auth:       derive("auth"),
		Encryption: derive("encryption"),
		CSRF:       derive("csrf"),
	}, nil
}
