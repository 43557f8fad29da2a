package domain

import "math"

// CheckedAdd32 returns a+b and false if the sum overflows uint32.
func CheckedAdd32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// CheckedMul32 returns a*b and false if the product overflows uint32.
func CheckedMul32(a, b uint32) (uint32, bool) {
	p := uint64(a) * uint64(b)
	if p > math.MaxUint32 {
		return 0, false
	}
	return uint32(p), true
}

// CheckedSub32 returns a-b and false if the result would be negative.
func CheckedSub32(a, b uint32) (uint32, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// LineTotal prices qty units at unitPrice, returning ErrOutOfRange on overflow.
func LineTotal(unitPrice, qty uint32) (uint32, error) {
	total, ok := CheckedMul32(unitPrice, qty)
	if !ok {
		return 0, ErrOutOfRange
	}
	return total, nil
}
