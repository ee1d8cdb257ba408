package cli

import (
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/agbru/factcalc/internal/format"
	"github.com/agbru/factcalc/internal/ui"
)

// DisplayResult prints the outcome of a single computation.
//
// Parameters:
//   - result: The computed n!.
//   - n: The input.
//   - duration: How long the computation took.
//   - verbose: Print the full value instead of truncating it.
//   - details: Print bit length, digit count and scientific notation.
//   - showValue: Print the value at all.
//   - out: The destination writer.
func DisplayResult(result *big.Int, n int64, duration time.Duration, verbose, details, showValue bool, out io.Writer) {
	if result == nil {
		return
	}
	digits := format.DigitCount(result)

	fmt.Fprintf(out, "\n--- Result ---\n")
	fmt.Fprintf(out, "Calculation time: %s%s%s\n", ui.ColorYellow(), displayDuration(duration), ui.ColorReset())
	fmt.Fprintf(out, "Number of digits: %s%s%s\n", ui.ColorBlue(), format.FormatNumberString(fmt.Sprint(digits)), ui.ColorReset())

	if details {
		fmt.Fprintf(out, "\n--- Detailed result analysis ---\n")
		fmt.Fprintf(out, "Result binary size: %s bits (%s)\n",
			format.FormatNumberString(fmt.Sprint(result.BitLen())),
			format.FormatBytes(uint64((result.BitLen()+7)/8)))
		fmt.Fprintf(out, "Scientific notation: %s\n", scientific(result, digits))
		fmt.Fprintf(out, "Trailing zeros: %d\n", TrailingZeros(n))
	}

	if showValue {
		fmt.Fprintf(out, "\n--- Calculated value ---\n")
		value := result.String()
		if !verbose && len(value) > TruncationLimit {
			fmt.Fprintf(out, "%d! = %s (truncated)\n", n, format.TruncateDigits(value, DisplayEdges))
			fmt.Fprintf(out, "%sTip: use -v to print all %d digits.%s\n", ui.ColorDim(), digits, ui.ColorReset())
			return
		}
		fmt.Fprintf(out, "%d! = %s\n", n, format.FormatNumberString(value))
	}
}

// TrailingZeros returns the number of trailing decimal zeros of n!, by
// Legendre's formula for the exponent of 5.
func TrailingZeros(n int64) int64 {
	var z int64
	for p := int64(5); p <= n; p *= 5 {
		z += n / p
		if p > n/5 {
			break
		}
	}
	return z
}

// scientific renders x as d.dddde+N using its leading digits.
func scientific(x *big.Int, digits int) string {
	const mantissa = 6
	s := x.String()
	if len(s) <= 1 {
		return s + "e+0"
	}
	lead := s[:min(len(s), mantissa)]
	return fmt.Sprintf("%s.%se+%d", lead[:1], lead[1:], digits-1)
}
