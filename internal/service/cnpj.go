package service

import "strings"

// CleanCNPJ keeps only the digits of a CNPJ.
func CleanCNPJ(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCNPJ checks length, repeated digits and both check digits.
func ValidCNPJ(raw string) bool {
	c := CleanCNPJ(raw)
	if len(c) != 14 {
		return false
	}
	if strings.Count(c, c[:1]) == len(c) {
		return false
	}
	digits := make([]int, len(c))
	for i := range c {
		digits[i] = int(c[i] - '0')
	}
	first := checkDigit(digits[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	if first != digits[12] {
		return false
	}
	second := checkDigit(digits[:13], []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return second == digits[13]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	if rem := sum % 11; rem >= 2 {
		return 11 - rem
	}
	return 0
}
