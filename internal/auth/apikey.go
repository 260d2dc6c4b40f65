package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 12

// HashAPIKey hashes a director's long-lived API key for storage.
func HashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAPIKey compares an API key with its stored bcrypt hash.
func CheckAPIKey(hash, key string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
}
