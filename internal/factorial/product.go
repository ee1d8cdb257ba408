package factorial

import (
	"math/big"
	"sort"

	apperrors "github.com/agbru/factcalc/internal/errors"
)

// ProductFunc computes the product of every integer in a Range. It must not
// touch shared mutable state: the parallel engine calls it from several
// goroutines at once.
type ProductFunc func(r Range) *big.Int

// DefaultBackend is the name of the math/big product backend.
const DefaultBackend = "big"

// backends holds the registered ProductFunc implementations. It is only
// written from init functions.
var backends = map[string]ProductFunc{
	DefaultBackend: PartialProduct,
}

// PartialProduct returns the product of all integers in r by sequential
// accumulation starting at 1. An empty range yields 1.
func PartialProduct(r Range) *big.Int {
	acc := big.NewInt(1)
	if r.Empty() {
		return acc
	}
	var x big.Int
	for i := r.Low; ; i++ {
		acc.Mul(acc, x.SetInt64(i))
		if i == r.High {
			break
		}
	}
	return acc
}

// Backend returns the ProductFunc registered under name.
func Backend(name string) (ProductFunc, error) {
	if name == "" {
		name = DefaultBackend
	}
	fn, ok := backends[name]
	if !ok {
		return nil, apperrors.NewConfigError("unknown product backend %q (available: %v)", name, Backends())
	}
	return fn, nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
