package ringct

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
)

// valueMask is the first 8 bytes of Hs(shared) under the amount tag.
func valueMask(shared *ristretto.Point) uint64 {
	hs := hashToScalar(AMOUNT_VALUE_DOMAIN_TAG, shared.Bytes())
	return binary.LittleEndian.Uint64(hs.Bytes()[:8])
}

// amountBlinding lets the recipient reopen the output commitment.
func amountBlinding(shared *ristretto.Point) *ristretto.Scalar {
	return hashToScalar(AMOUNT_BLINDING_DOMAIN_TAG, shared.Bytes())
}

func encodeAmount(value uint64, shared *ristretto.Point) uint64 {
	return value ^ valueMask(shared)
}

func decodeAmount(encoded uint64, shared *ristretto.Point) (uint64, *ristretto.Scalar) {
	return encoded ^ valueMask(shared), amountBlinding(shared)
}
