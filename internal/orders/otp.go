package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// generateOTP issues the 6-digit delivery code handed to the customer at dispatch.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
