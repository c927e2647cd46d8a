package transfer

import (
	"crypto/rand"
	"strings"
)

const (
	// CodeLength is the number of symbols in an issued code.
	CodeLength   = 8
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Largest multiple of len(codeAlphabet) that fits in a byte; bytes at or
	// above it are redrawn so every symbol stays equally likely.
	codeRejectAbove = 252
)

// CodeGenerator produces candidate codes. It performs no collision check.
type CodeGenerator func() string

// NewCode draws CodeLength symbols uniformly from A-Z and 0-9.
func NewCode() string {
	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(out) < CodeLength {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= codeRejectAbove {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == CodeLength {
				break
			}
		}
	}
	return string(out)
}

// NormalizeCode trims whitespace and upper-cases user input.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidCode reports whether code matches ^[A-Z0-9]{8}$.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
