package jwt

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	Init("test_secret", "whitelight-test")

	token, err := GenerateToken(7, "boss", "super_admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.AdminId != 7 || claims.Username != "boss" || claims.Role != "super_admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Issuer != "whitelight-test" {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	Init("test_secret", "whitelight-test")

	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	Init("secret_a", "whitelight-test")
	token, err := GenerateToken(1, "boss", "admin")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	Init("secret_b", "whitelight-test")
	if _, err := ParseToken(token); err == nil {
		t.Fatal("token signed with a different key must not parse")
	}
}
