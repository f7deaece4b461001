package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	tempLength = 16

	// Alphabet used for the random portion of temporary credentials.
	tempAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Fixed suffix guaranteeing the upper-case, digit and symbol classes any
	// identity-provider password policy may require. The credential is never
	// shown to anyone; it only satisfies the strength floor at creation time
	// before the account is handed a password-reset email.
	tempSuffix = "!Ax9"
)

// GenerateTemporary returns a cryptographically random temporary credential for
// provisioned accounts: 16 random alphanumerics plus a fixed mixed-class suffix.
func GenerateTemporary() (string, error) {
	buf := make([]byte, tempLength)
	alphabetLen := big.NewInt(int64(len(tempAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random credential: %w", err)
		}
		buf[i] = tempAlphabet[n.Int64()]
	}

	return string(buf) + tempSuffix, nil
}

// GenerateNumericCode returns a uniformly random n-digit code with no leading
// zero, e.g. n=6 yields a value in [100000, 999999].
func GenerateNumericCode(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("code length must be positive, got %d", n)
	}

	low := big.NewInt(1)
	for i := 1; i < n; i++ {
		low.Mul(low, big.NewInt(10))
	}
	// span = 9 * 10^(n-1), codes are uniform in [10^(n-1), 10^n - 1]
	span := new(big.Int).Mul(low, big.NewInt(9))

	offset, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}

	return new(big.Int).Add(low, offset).String(), nil
}
