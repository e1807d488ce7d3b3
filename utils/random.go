package utils

import (
	"math/rand"
)

const (
	letters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	alphanumeric = letters + "0123456789"
)

// RandomAlphabetic returns n random ASCII letters
func RandomAlphabetic(n int) string {
	return randomFrom(letters, n)
}

// RandomAlphanumeric returns n random ASCII letters and digits
func RandomAlphanumeric(n int) string {
	return randomFrom(alphanumeric, n)
}

// RandomIntInRange returns a random integer in [min, max]
func RandomIntInRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}

func randomFrom(alphabet string, n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(b)
}
