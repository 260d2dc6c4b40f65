package auth

import "testing"

func TestHashAndCheckAPIKey(t *testing.T) {
	hash, err := HashAPIKey("director-secret-key")
	if err != nil {
		t.Fatalf("unexpected error hashing key: %v", err)
	}
	if hash == "director-secret-key" {
		t.Fatal("hash should not equal the plaintext key")
	}
	if !CheckAPIKey(hash, "director-secret-key") {
		t.Error("expected the original key to check out against its hash")
	}
}

func TestCheckAPIKeyRejectsWrongKey(t *testing.T) {
	hash, err := HashAPIKey("director-secret-key")
	if err != nil {
		t.Fatalf("unexpected error hashing key: %v", err)
	}
	if CheckAPIKey(hash, "wrong-key") {
		t.Error("expected a wrong key to fail the check")
	}
}
