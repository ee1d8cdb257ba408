package factorial

import (
	"context"
	"math/big"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// Serial returns n! computed as the product of 2..n in a single accumulator
// on the calling goroutine. Negative n fails with apperrors.ErrInvalidArgument.
func Serial(n int64) (*big.Int, error) {
	if n < 0 {
		return nil, negativeInput(n)
	}
	result := big.NewInt(1)
	if n <= 1 {
		return result, nil
	}
	var x big.Int
	for i := int64(2); i <= n; i++ {
		result.Mul(result, x.SetInt64(i))
	}
	return result, nil
}

// SerialEngine exposes Serial as a Calculator.
type SerialEngine struct{}

// Name returns the display name of the engine.
func (SerialEngine) Name() string { return SerialName }

// Calculate returns n!. The context is not consulted: a serial computation
// runs to completion once started.
func (SerialEngine) Calculate(_ context.Context, n int64) (*big.Int, error) {
	return Serial(n)
}

func negativeInput(n int64) error {
	return apperrors.NewInvalidArgument("n", "factorial is undefined for negative n (got %d)", n)
}
