// Package secret generates and masks service credentials.
package secret

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	accessKeyChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secretKeyChars = "abcdefghijklmnopqrstuvwxyz0123456789"

	// AccessKeyLen is the fixed length of generated access keys.
	AccessKeyLen = 16
	// SecretKeyLen is the fixed length of generated secret keys.
	SecretKeyLen = 32
)

// AccessKey returns a random 16-character key from [A-Z0-9].
func AccessKey() string {
	return randomString(accessKeyChars, AccessKeyLen)
}

// SecretKey returns a random 32-character key from [a-z0-9].
func SecretKey() string {
	return randomString(secretKeyChars, SecretKeyLen)
}

// Mask hides all but the first and last two characters of a credential
// for display. Short values are fully masked.
func Mask(s string) string {
	if len(s) <= 6 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func randomString(charset string, length int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic("secret: system random source unavailable: " + err.Error())
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}
