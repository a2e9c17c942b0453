package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if hash == "s3cret" {
		t.Fatal("password stored in clear")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	tok, err := NewSessionToken("secret", "user-1", "ADMIN", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseSessionToken("secret", tok.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Role != "ADMIN" {
		t.Errorf("claims = %+v", claims)
	}
	if _, err := ParseSessionToken("other-secret", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v, want ErrInvalidToken", err)
	}
}

func TestParseSessionTokenRejectsExpiredAndForeignAlgorithms(t *testing.T) {
	expired, err := NewSessionToken("secret", "user-1", "ADMIN", -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionToken("secret", expired.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSessionToken("secret", none); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("alg=none token: got %v", err)
	}
}

func TestBurnPasswordCheckMatchesConfiguredCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 2} {
		got, err := bcrypt.Cost(dummyHash(cost))
		if err != nil {
			t.Fatal(err)
		}
		if got != cost {
			t.Errorf("dummy hash cost = %d, want %d", got, cost)
		}
	}
	// Out-of-range costs fall back to the same default HashPassword uses.
	if got, _ := bcrypt.Cost(dummyHash(0)); got != bcrypt.DefaultCost {
		t.Errorf("cost 0 -> %d, want %d", got, bcrypt.DefaultCost)
	}
	BurnPasswordCheck("anything", bcrypt.MinCost)
}
