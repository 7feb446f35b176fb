package ringct

import "fmt"

const (
	BULLETPROOF_DOMAIN_TAG               = "rct_bulletproof_transcript"
	AMOUNT_VALUE_DOMAIN_TAG              = "rct_amount_value"
	AMOUNT_BLINDING_DOMAIN_TAG           = "rct_amount_blinding"
	HASH_TO_POINT_DOMAIN_TAG             = "rct_onetime_key_hash_to_point"
	HASH_TO_SCALAR_DOMAIN_TAG            = "rct_onetime_key_hash_to_scalar"
	RING_MLSAG_PREFIX_DOMAIN_TAG         = "rct_ring_mlsag_prefix"
	RING_MLSAG_CHALLENGE_DOMAIN_TAG      = "rct_ring_mlsag_challenge"
	TXOUT_CONFIRMATION_NUMBER_DOMAIN_TAG = "rct_tx_out_confirmation_number"
	TX_PREFIX_DOMAIN_TAG                 = "rct-tx-prefix"
	MEMO_DOMAIN_TAG                      = "rct-memo-okm"

	ATOMIC_UNITS    = 1_000_000_000_000 // precision = 12
	AMOUNT_DECIMALS = 12

	RING_SIZE        = 11 // Each input ring must contain this many elements.
	RANGE_PROOF_BITS = 64
	MAX_INPUTS       = 16
	MAX_OUTPUTS      = 16
	MAX_MEMO_SIZE    = 66
)

// Params carries the structural limits shared by the builder and the verifier.
type Params struct {
	RingSize   int
	RangeBits  int
	MaxInputs  int
	MaxOutputs int
}

func DefaultParams() *Params {
	return &Params{
		RingSize:   RING_SIZE,
		RangeBits:  RANGE_PROOF_BITS,
		MaxInputs:  MAX_INPUTS,
		MaxOutputs: MAX_OUTPUTS,
	}
}

func (p *Params) Validate() error {
	if p.RingSize < 2 {
		return fmt.Errorf("invalid ring size %d", p.RingSize)
	}
	switch p.RangeBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("invalid range proof bitsize %d", p.RangeBits)
	}
	if p.MaxInputs < 1 || p.MaxOutputs < 1 {
		return fmt.Errorf("invalid limits inputs %d outputs %d", p.MaxInputs, p.MaxOutputs)
	}
	return nil
}
