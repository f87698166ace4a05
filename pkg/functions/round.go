package functions

import (
	"math/big"

	"github.com/sandrolain/gojexp/pkg/types"
)

// RoundingMode names a rounding rule accepted by round().
type RoundingMode string

const (
	RoundUp       RoundingMode = "UP"
	RoundDown     RoundingMode = "DOWN"
	RoundCeiling  RoundingMode = "CEILING"
	RoundFloor    RoundingMode = "FLOOR"
	RoundHalfUp   RoundingMode = "HALF_UP"
	RoundHalfDown RoundingMode = "HALF_DOWN"
	RoundHalfEven RoundingMode = "HALF_EVEN"
)

func (m RoundingMode) valid() bool {
	switch m {
	case RoundUp, RoundDown, RoundCeiling, RoundFloor, RoundHalfUp, RoundHalfDown, RoundHalfEven:
		return true
	}
	return false
}

// MaxRoundScale bounds the scale used by round(). The shortest decimal form
// of a float64 has fewer fraction digits, so larger scales round nothing
// further and are clamped.
const MaxRoundScale = 340

func fnRound(args []types.Value) (types.Value, error) {
	n, err := args[0].AsNumber()
	if err != nil {
		return types.Null, err
	}
	scale := int64(2)
	if len(args) > 1 && !args[1].IsNull() {
		if scale, err = args[1].AsInteger(); err != nil {
			return types.Null, err
		}
	}
	if scale < 0 {
		return types.Null, types.EvalErrorf("scale of round() must not be negative")
	}
	scale = min(scale, MaxRoundScale)
	mode := RoundHalfUp
	if len(args) > 2 && !args[2].IsNull() {
		s, err := args[2].AsString()
		if err != nil {
			return types.Null, err
		}
		mode = RoundingMode(s)
	}
	if !mode.valid() {
		return types.Null, types.EvalErrorf("invalid rounding mode: %s", mode)
	}

	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return types.Null, types.EvalErrorf("cannot round %s", n.String())
	}
	f, _ := RoundRat(r, int(scale), mode).Float64()
	return types.Float(f), nil
}

// RoundRat rounds r to scale fraction digits.
func RoundRat(r *big.Rat, scale int, mode RoundingMode) *big.Rat {
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(scale)), nil)
	shifted := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow))

	q, rem := new(big.Int).QuoRem(shifted.Num(), shifted.Denom(), new(big.Int))
	if rem.Sign() != 0 {
		sign := shifted.Sign()
		// cmpHalf compares |rem|/denom against 1/2.
		twice := new(big.Int).Abs(rem)
		twice.Lsh(twice, 1)
		cmpHalf := twice.Cmp(shifted.Denom())

		away := false
		switch mode {
		case RoundUp:
			away = true
		case RoundCeiling:
			away = sign > 0
		case RoundFloor:
			away = sign < 0
		case RoundHalfUp:
			away = cmpHalf >= 0
		case RoundHalfDown:
			away = cmpHalf > 0
		case RoundHalfEven:
			away = cmpHalf > 0 || (cmpHalf == 0 && q.Bit(0) == 1)
		}
		if away {
			q.Add(q, big.NewInt(int64(sign)))
		}
	}
	return new(big.Rat).SetFrac(q, pow)
}
