package codes

import (
	"encoding/hex"
	"testing"
)

func TestGenerateBookingToken(t *testing.T) {
	token, err := GenerateBookingToken()
	if err != nil {
		t.Fatalf("GenerateBookingToken() error = %v", err)
	}

	if len(token) != BookingTokenLength {
		t.Errorf("token length = %d, want %d", len(token), BookingTokenLength)
	}

	raw, err := hex.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid hex: %v", err)
	}
	if len(raw) != BookingTokenByteLength {
		t.Errorf("decoded token = %d bytes, want %d", len(raw), BookingTokenByteLength)
	}
}

func TestGenerateBookingToken_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token, err := GenerateBookingToken()
		if err != nil {
			t.Fatalf("GenerateBookingToken() error = %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = struct{}{}
	}
}

func TestGenerateSecureToken_InvalidLength(t *testing.T) {
	if _, err := GenerateSecureToken(0); err != ErrInvalidLength {
		t.Errorf("GenerateSecureToken(0) error = %v, want ErrInvalidLength", err)
	}
}
