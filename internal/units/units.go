// Package units converts between fixed-point token integers and display values.
package units

import (
	"math"
	"math/big"
)

// WeiDecimals is the precision of native FLR amounts and FTSO wei prices.
const WeiDecimals = 18

// FormatAmount renders value scaled down by decimals as an exact decimal string.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	rat := new(big.Rat).SetFrac(abs, pow10(decimals))
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// ToFloat converts a fixed-point integer to a float display value. Nil is zero.
func ToFloat(value *big.Int, decimals uint8) float64 {
	if value == nil || value.Sign() == 0 {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(value, pow10(decimals)).Float64()
	return f
}

// FromFloat converts a display value to a fixed-point integer, truncating
// toward zero. Negative, NaN and infinite inputs yield zero.
func FromFloat(value float64, decimals uint8) *big.Int {
	if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return big.NewInt(0)
	}
	scaled := new(big.Float).SetPrec(256).SetFloat64(value)
	scaled.Mul(scaled, new(big.Float).SetPrec(256).SetInt(pow10(decimals)))
	out, _ := scaled.Int(nil)
	return out
}

// OrZero returns value, or a fresh zero when value is nil.
func OrZero(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return value
}

// Sum adds values, treating nil as zero.
func Sum(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
