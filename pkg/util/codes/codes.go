// Package codes generates the opaque credentials the booking flow hands out.
package codes

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

var ErrInvalidLength = errors.New("invalid code length")

const (
	// BookingTokenByteLength is the number of random bytes behind a booking
	// token. 32 bytes = 256 bits of entropy; the token is the only
	// credential protecting a booking URL, so it must stay unguessable.
	BookingTokenByteLength = 32

	// BookingTokenLength is the hex-encoded length of a booking token.
	BookingTokenLength = BookingTokenByteLength * 2
)

// GenerateBookingToken creates the bearer token embedded in invitation URLs.
// Returns a 64-character hex string.
func GenerateBookingToken() (string, error) {
	return GenerateSecureToken(BookingTokenByteLength)
}

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		return "", ErrInvalidLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}
