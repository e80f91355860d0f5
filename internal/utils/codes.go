// internal/utils/codes.go
package utils

import (
	"crypto/rand"
	"math/big"
	"time"
)

func GenerateRandomString(length int) (string, error) {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

// GenerateInvoiceNumber returns numbers like INV-20240131-7KQ2ZD.
func GenerateInvoiceNumber(at time.Time) (string, error) {
	suffix, err := GenerateRandomString(6)
	if err != nil {
		return "", err
	}
	return "INV-" + at.Format("20060102") + "-" + suffix, nil
}
