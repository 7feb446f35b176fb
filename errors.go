package ringct

import "errors"

var (
	ErrDecoding              = errors.New("decoding error")
	ErrInsufficientDecoys    = errors.New("insufficient decoys")
	ErrImbalancedTransaction = errors.New("imbalanced transaction")
	ErrInvalidSignature      = errors.New("invalid ring signature")
	ErrInvalidRangeProof     = errors.New("invalid range proof")
	ErrDoubleSpend           = errors.New("double spend")

	ErrInvalidAddress       = errors.New("invalid address")
	ErrNotOwned             = errors.New("output not owned")
	ErrMalformedTransaction = errors.New("malformed transaction")
	ErrUnknownRingMember    = errors.New("unknown ring member")
)
