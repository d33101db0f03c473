package bigmath

import (
	"math/big"
)

// MaxUint256 is the largest value a uint256 contract argument can hold,
// used as the "unlimited" sentinel for deposit limits and debt bounds.
var MaxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// UintToBig casts a uint to a huge
func UintToBig(value uint64) *big.Int {
	return new(big.Int).SetUint64(value)
}

// BigMulByUint multiply a huge by a uint
func BigMulByUint(multiplicand *big.Int, multiplier uint64) *big.Int {
	return new(big.Int).Mul(multiplicand, new(big.Int).SetUint64(multiplier))
}

// BigAdd add two huges
func BigAdd(augend *big.Int, addend *big.Int) *big.Int {
	return new(big.Int).Add(augend, addend)
}

// BigSub subtract from a huge
func BigSub(minuend *big.Int, subtrahend *big.Int) *big.Int {
	return new(big.Int).Sub(minuend, subtrahend)
}

// BigEquals check huge equality
func BigEquals(first, second *big.Int) bool {
	return first.Cmp(second) == 0
}

// BigGreaterThan check if a huge is greater than another
func BigGreaterThan(first, second *big.Int) bool {
	return first.Cmp(second) > 0
}

// PowOfTen computes 10**decimals, the scaling factor between a token's
// display units and its smallest units.
func PowOfTen(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

// InTokenUnits scales a display amount by the token's decimals,
// e.g. InTokenUnits(1_000, 18) for 1000 whole tokens.
func InTokenUnits(amount int64, decimals uint8) *big.Int {
	return new(big.Int).Mul(big.NewInt(amount), PowOfTen(decimals))
}

// WithinRelative reports whether value is within tolerance of target,
// where tolerance is expressed in parts per million of target.
func WithinRelative(value, target *big.Int, ppm int64) bool {
	diff := new(big.Int).Sub(value, target)
	diff.Abs(diff)
	bound := new(big.Int).Mul(target, big.NewInt(ppm))
	bound.Div(bound, big.NewInt(1_000_000))
	return diff.Cmp(bound) <= 0
}
