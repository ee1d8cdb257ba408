package format

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// log10of2 converts a bit length into an approximate decimal digit count.
const log10of2 = 0.30102999566398119521

// FormatNumberString inserts thousands separators into a decimal string.
// A leading minus sign is preserved.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	var b strings.Builder
	b.Grow(len(prefix) + n + (n-1)/3)
	b.WriteString(prefix)
	first := n % 3
	if first == 0 {
		first = 3
	}
	b.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// TruncateDigits shortens a long decimal string to its first and last keep
// digits. Strings of at most 2*keep digits are returned unchanged.
func TruncateDigits(s string, keep int) string {
	if keep <= 0 || len(s) <= 2*keep {
		return s
	}
	return fmt.Sprintf("%s...%s", s[:keep], s[len(s)-keep:])
}

// DigitCount returns the exact number of decimal digits of |x|. Zero has one
// digit.
func DigitCount(x *big.Int) int {
	if x == nil || x.Sign() == 0 {
		return 1
	}
	abs := new(big.Int).Abs(x)
	// Estimate from the bit length, then correct by at most one.
	est := int(float64(abs.BitLen()-1)*log10of2) + 1
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(est-1)), nil)
	if abs.Cmp(pow) < 0 {
		return est - 1
	}
	if abs.Cmp(pow.Mul(pow, big.NewInt(10))) >= 0 {
		return est + 1
	}
	return est
}

// FormatBytes renders a byte count using binary units.
func FormatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatSpeedup renders a serial/parallel time ratio, or "n/a" when it is
// undefined.
func FormatSpeedup(ratio float64) string {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2fx", ratio)
}
