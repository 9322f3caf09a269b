package security

import (
	"errors"
	"sync"

	"github.com/matthewhartstonge/argon2"
)

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

var argonConfig = argon2.DefaultConfig()

// dummyHash is compared against when no stored hash exists so that a missing account
// costs the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	encoded, err := argonConfig.HashEncoded([]byte("z-academy-placeholder-password"))
	if err != nil {
		return nil
	}
	return encoded
})

// HashPassword hashes a plaintext password with argon2id and returns the encoded hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	encoded, err := argonConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether password matches the encoded argon2 hash.
// An empty hash never matches.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if encodedHash == "" {
		VerifyAgainstDummy(password)
		return false, nil
	}

	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}

// VerifyAgainstDummy runs a verification that always fails.
func VerifyAgainstDummy(password string) {
	if hash := dummyHash(); hash != nil {
		_, _ = argon2.VerifyEncoded([]byte(password), hash)
	}
}
