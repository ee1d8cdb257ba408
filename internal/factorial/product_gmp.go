//go:build gmp

package factorial

import (
	"math/big"

	"github.com/ncw/gmp"
)

func init() {
	backends["gmp"] = GMPPartialProduct
}

// GMPPartialProduct computes the product of r with libgmp and converts the
// result back to a *big.Int. Each call owns its gmp.Int values, so concurrent
// calls share nothing.
func GMPPartialProduct(r Range) *big.Int {
	acc := gmp.NewInt(1)
	if !r.Empty() {
		x := new(gmp.Int)
		for i := r.Low; ; i++ {
			acc.Mul(acc, x.SetInt64(i))
			if i == r.High {
				break
			}
		}
	}
	return new(big.Int).SetBytes(acc.Bytes())
}
