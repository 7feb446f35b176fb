package ringct

import (
	"fmt"
)

// VerifyContext carries the schemes and the optional ledger views a
// transaction is checked against.
type VerifyContext struct {
	Params      *Params
	Signer      RingSignatureScheme
	// RangeProver defaults to Bulletproofs over Params.RangeBits.
	RangeProver RangeProofScheme
	// Outputs and KeyImages are optional. Without them only the
	// transaction's internal consistency is checked.
	Outputs   OutputIndex
	KeyImages KeyImageSet
}

func NewVerifyContext(outputs OutputIndex, images KeyImageSet) *VerifyContext {
	return &VerifyContext{
		Params:    DefaultParams(),
		Signer:    MLSAG{},
		Outputs:   outputs,
		KeyImages: images,
	}
}

// VerifyTransaction accepts tx only if every check passes.
func VerifyTransaction(tx *Tx, ctx *VerifyContext) error {
	if err := ctx.Params.Validate(); err != nil {
		return err
	}
	if err := verifyStructure(tx, ctx.Params); err != nil {
		return err
	}

	message := HashOfTxPrefix(tx.Prefix)
	for i, in := range tx.Prefix.Inputs {
		err := ctx.Signer.Verify(message, in.Ring, in.PseudoCommitment, tx.Signatures[i])
		if err != nil {
			return fmt.Errorf("%w: input %d: %v", ErrInvalidSignature, i, err)
		}
	}

	prover := rangeProverFor(ctx.RangeProver, ctx.Params)
	for i, out := range tx.Prefix.Outputs {
		err := prover.VerifyRange(out.Commitment, out.RangeProof)
		if err != nil {
			return fmt.Errorf("%w: output %d: %v", ErrInvalidRangeProof, i, err)
		}
	}

	if !CheckBalance(tx.PseudoCommitments(), tx.OutputCommitments(), tx.Prefix.Fee) {
		return ErrImbalancedTransaction
	}

	images := make(map[PointBytes]int, len(tx.Signatures))
	for i, sig := range tx.Signatures {
		key := PointBytesOf(sig.KeyImage)
		if j, found := images[key]; found {
			return fmt.Errorf("%w: inputs %d and %d share key image %s", ErrDoubleSpend, j, i, key)
		}
		images[key] = i
	}

	if ctx.Outputs != nil {
		for i, in := range tx.Prefix.Inputs {
			for j, m := range in.Ring {
				indexed, found := ctx.Outputs.Lookup(m.OneTimeKey)
				if !found || !indexed.Commitment.Equals(m.Commitment) {
					return fmt.Errorf("%w: input %d member %d", ErrUnknownRingMember, i, j)
				}
			}
		}
	}

	if ctx.KeyImages != nil {
		for i, sig := range tx.Signatures {
			if ctx.KeyImages.Contains(sig.KeyImage) {
				return fmt.Errorf("%w: input %d key image %s", ErrDoubleSpend, i, PointBytesOf(sig.KeyImage))
			}
		}
	}

	if ctx.Outputs != nil {
		for i, out := range tx.Prefix.Outputs {
			if _, found := ctx.Outputs.Lookup(out.OneTimeKey); found {
				return fmt.Errorf("%w: output %d key %s already indexed", ErrMalformedTransaction, i, PointBytesOf(out.OneTimeKey))
			}
		}
	}
	return nil
}

// AcceptTransaction verifies tx and records its key images. The key images
// are inserted together or not at all.
func AcceptTransaction(tx *Tx, ctx *VerifyContext) error {
	if ctx.KeyImages == nil {
		return fmt.Errorf("accept transaction: no key image set")
	}
	if err := VerifyTransaction(tx, ctx); err != nil {
		return err
	}
	return ctx.KeyImages.Insert(tx.KeyImages()...)
}

func verifyStructure(tx *Tx, params *Params) error {
	if tx == nil || tx.Prefix == nil {
		return fmt.Errorf("%w: empty transaction", ErrMalformedTransaction)
	}
	inputs, outputs := len(tx.Prefix.Inputs), len(tx.Prefix.Outputs)
	if inputs == 0 || inputs > params.MaxInputs {
		return fmt.Errorf("%w: %d inputs", ErrMalformedTransaction, inputs)
	}
	if outputs == 0 || outputs > params.MaxOutputs {
		return fmt.Errorf("%w: %d outputs", ErrMalformedTransaction, outputs)
	}
	if len(tx.Signatures) != inputs {
		return fmt.Errorf("%w: %d signatures for %d inputs", ErrMalformedTransaction, len(tx.Signatures), inputs)
	}

	for i, in := range tx.Prefix.Inputs {
		if in == nil || in.PseudoCommitment == nil {
			return fmt.Errorf("%w: input %d", ErrMalformedTransaction, i)
		}
		if len(in.Ring) != params.RingSize {
			return fmt.Errorf("%w: input %d ring size %d, expected %d", ErrMalformedTransaction, i, len(in.Ring), params.RingSize)
		}
		seen := make(map[PointBytes]bool, len(in.Ring))
		for j, m := range in.Ring {
			if m == nil || m.OneTimeKey == nil || m.Commitment == nil || isIdentity(m.OneTimeKey) {
				return fmt.Errorf("%w: input %d member %d", ErrMalformedTransaction, i, j)
			}
			key := PointBytesOf(m.OneTimeKey)
			if seen[key] {
				return fmt.Errorf("%w: input %d repeats member %s", ErrMalformedTransaction, i, key)
			}
			seen[key] = true
		}
		if sig := tx.Signatures[i]; sig == nil || sig.KeyImage == nil {
			return fmt.Errorf("%w: signature %d", ErrMalformedTransaction, i)
		}
	}

	keys := make(map[PointBytes]bool, outputs)
	for i, out := range tx.Prefix.Outputs {
		if out == nil || out.Commitment == nil || out.OneTimeKey == nil || out.EphemeralKey == nil {
			return fmt.Errorf("%w: output %d", ErrMalformedTransaction, i)
		}
		if isIdentity(out.OneTimeKey) {
			return fmt.Errorf("%w: output %d has identity key", ErrMalformedTransaction, i)
		}
		if len(out.EMemo) > MAX_MEMO_SIZE {
			return fmt.Errorf("%w: output %d memo size %d", ErrMalformedTransaction, i, len(out.EMemo))
		}
		key := PointBytesOf(out.OneTimeKey)
		if keys[key] {
			return fmt.Errorf("%w: outputs repeat key %s", ErrMalformedTransaction, key)
		}
		keys[key] = true
	}
	return nil
}
