package ringct

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal coin amount such as "1.5" to atomic units.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrDecoding, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrDecoding, s)
	}
	atomic := d.Shift(AMOUNT_DECIMALS)
	if !atomic.Equal(atomic.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %q exceeds %d decimals", ErrDecoding, s, AMOUNT_DECIMALS)
	}
	i := atomic.BigInt()
	if !i.IsUint64() {
		return 0, fmt.Errorf("%w: amount %q overflows", ErrDecoding, s)
	}
	return i.Uint64(), nil
}

func FormatAmount(atomic uint64) string {
	i := new(big.Int).SetUint64(atomic)
	return decimal.NewFromBigInt(i, -AMOUNT_DECIMALS).String()
}
