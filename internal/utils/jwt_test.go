package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestSignToken_RoundTrip(t *testing.T) {
	p := Payload{UserID: 7, Email: "test@test.com", Phone: "1234567890", Role: "USER"}

	signed, err := SignToken(testSecret, p, KindAccess, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	if signed.Token == "" {
		t.Fatal("SignToken() returned empty token")
	}

	claims, err := ParseToken(testSecret, signed.Token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Payload != p {
		t.Errorf("ParseToken() payload = %+v, want %+v", claims.Payload, p)
	}
	if claims.Kind != KindAccess {
		t.Errorf("ParseToken() kind = %q, want %q", claims.Kind, KindAccess)
	}
	if claims.ID == "" {
		t.Error("ParseToken() jti is empty")
	}
}

func TestSignToken_UniquePerCall(t *testing.T) {
	p := Payload{UserID: 1, Email: "a@b.co", Role: "USER"}
	a, err := SignToken(testSecret, p, KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	b, err := SignToken(testSecret, p, KindAccess, time.Minute)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	if a.Token == b.Token {
		t.Fatal("two tokens signed for the same payload are identical")
	}
}

func TestSignToken_MissingSecret(t *testing.T) {
	_, err := SignToken("", Payload{UserID: 1}, KindAccess, time.Minute)
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("SignToken() error = %v, want %v", err, ErrMissingSecret)
	}
}

func TestParseToken_Errors(t *testing.T) {
	p := Payload{UserID: 3, Email: "x@y.io", Role: "ADMIN"}

	valid, err := SignToken(testSecret, p, KindRefresh, time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	expired, err := SignToken(testSecret, p, KindAccess, -time.Minute)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Payload: p}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr error
	}{
		{name: "empty token", secret: testSecret, token: "", wantErr: ErrInvalidToken},
		{name: "malformed", secret: testSecret, token: "not.a.token", wantErr: ErrInvalidToken},
		{name: "wrong secret", secret: "other", token: valid.Token, wantErr: ErrInvalidToken},
		{name: "expired", secret: testSecret, token: expired.Token, wantErr: ErrExpiredToken},
		{name: "alg none", secret: testSecret, token: none, wantErr: ErrInvalidSigningMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.secret, tt.token)
			if err == nil {
				t.Fatal("ParseToken() expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashToken(t *testing.T) {
	a := HashToken("abc")
	if len(a) != 64 {
		t.Fatalf("HashToken() length = %d, want 64", len(a))
	}
	if a != HashToken("abc") {
		t.Error("HashToken() is not deterministic")
	}
	if a == HashToken("abd") {
		t.Error("HashToken() collides for different inputs")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("qwerty12345", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "qwerty12345" {
		t.Fatal("HashPassword() returned the plain password")
	}
	if !VerifyPassword(hash, "qwerty12345") {
		t.Error("VerifyPassword() rejected the right password")
	}
	if VerifyPassword(hash, "qwerty") {
		t.Error("VerifyPassword() accepted a wrong password")
	}
}

func TestHashPasswordTooLong(t *testing.T) {
	long := strings.Repeat("ж", 40) // 80 bytes
	if _, err := HashPassword(long, 4); !errors.Is(err, ErrPasswordTooLong) {
		t.Fatalf("HashPassword() error = %v, want ErrPasswordTooLong", err)
	}
}
