package auth

import "testing"

func TestIssueAndValidateToken(t *testing.T) {
	token, err := IssueToken(42)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error validating token: %v", err)
	}
	if claims.DirectorID != 42 {
		t.Errorf("expected director ID 42, got %d", claims.DirectorID)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-real-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestValidateTokenRejectsTamperedSignature(t *testing.T) {
	token, err := IssueToken(1)
	if err != nil {
		t.Fatalf("unexpected error issuing token: %v", err)
	}

	tampered := token[:len(token)-1] + "x"
	if _, err := ValidateToken(tampered); err == nil {
		t.Fatal("expected an error for a tampered signature")
	}
}
