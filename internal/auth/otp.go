package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"math/big"
	"strconv"
	"strings"
	"unicode"
)

const (
	phoneDigits = 10
	otpMin      = 100000
	otpSpan     = 900000
)

// NormalizePhone strips formatting and any country or trunk prefix, keeping the
// last ten digits. Inputs with fewer than ten digits are returned as their digits.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}

// ValidPhone reports whether phone is a normalized ten digit number.
func ValidPhone(phone string) bool {
	if len(phone) != phoneDigits {
		return false
	}
	return allDigits(phone)
}

// ValidOTPFormat reports whether code is exactly six digits.
func ValidOTPFormat(code string) bool {
	return len(code) == 6 && allDigits(code)
}

// GenerateOTP returns a uniformly random code in [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// CodesEqual compares two codes in constant time.
func CodesEqual(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
