package ringct

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/bwesterb/go-ristretto"
	"lukechampine.com/uint128"
)

// Outlay is one payment requested from the builder.
type Outlay struct {
	Receiver *StealthAddress
	Value    uint64
	Memo     []byte
}

type TransactionBuilder struct {
	Params      *Params
	Outputs     OutputIndex
	Decoys      DecoySelector
	Signer      RingSignatureScheme
	// RangeProver defaults to Bulletproofs over Params.RangeBits.
	RangeProver RangeProofScheme
	// KeyImages is optional. When set, inputs already spent on the ledger
	// are refused before any signing work.
	KeyImages KeyImageSet
}

func NewTransactionBuilder(index OutputIndex) *TransactionBuilder {
	return &TransactionBuilder{
		Params:  DefaultParams(),
		Outputs: index,
		Decoys:  NewGammaSelector(),
		Signer:  MLSAG{},
	}
}

type pendingInput struct {
	input  *TxIn
	ring   *Ring
	signer *RingSigner
}

// Build spends inputs, all owned by account, to outlays. The inputs must
// cover the outlays and the fee exactly, see PlanOutlays for change.
func (tb *TransactionBuilder) Build(account *Account, inputs []*OwnedOutput, outlays []*Outlay, fee uint64) (*Tx, error) {
	total := uint128.Zero
	for _, in := range inputs {
		total = total.Add64(in.Value)
	}
	spent := uint128.From64(fee)
	for _, o := range outlays {
		spent = spent.Add64(o.Value)
	}
	if !total.Equals(spent) {
		return nil, fmt.Errorf("%w: inputs %s, outputs and fee %s", ErrImbalancedTransaction, total, spent)
	}
	return tb.assemble(account, inputs, outlays, fee)
}

func (tb *TransactionBuilder) assemble(account *Account, inputs []*OwnedOutput, outlays []*Outlay, fee uint64) (*Tx, error) {
	if err := tb.Params.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 || len(inputs) > tb.Params.MaxInputs {
		return nil, fmt.Errorf("%w: %d inputs", ErrMalformedTransaction, len(inputs))
	}
	if len(outlays) == 0 || len(outlays) > tb.Params.MaxOutputs {
		return nil, fmt.Errorf("%w: %d outputs", ErrMalformedTransaction, len(outlays))
	}

	pending := make([]*pendingInput, 0, len(inputs))
	defer func() {
		for _, p := range pending {
			p.signer.Wipe()
		}
	}()

	images := make(map[PointBytes]bool, len(inputs))
	for i, in := range inputs {
		secret, err := DeriveSpendSecret(in.Output.OneTimeOutput(), account.Spend.Secret, account.View.Secret)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		signer := &RingSigner{Secret: secret, Blinding: copyScalar(in.Blinding)}
		p := &pendingInput{signer: signer}
		pending = append(pending, p)

		image := keyImage(secret, in.Output.OneTimeKey)
		key := PointBytesOf(image)
		if images[key] {
			return nil, fmt.Errorf("%w: input %d repeats key image %s", ErrDoubleSpend, i, key)
		}
		images[key] = true
		if tb.KeyImages != nil && tb.KeyImages.Contains(image) {
			return nil, fmt.Errorf("%w: input %d key image %s already spent", ErrDoubleSpend, i, key)
		}

		real, found := tb.Outputs.Lookup(in.Output.OneTimeKey)
		if !found || !real.Commitment.Equals(in.Output.Commitment) {
			return nil, fmt.Errorf("%w: input %d", ErrUnknownRingMember, i)
		}
		decoys, err := SelectDecoys(tb.Outputs, tb.Decoys, real, tb.Params.RingSize-1)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		members := make([]*RingMember, len(decoys))
		for j, d := range decoys {
			members[j] = d.Member()
		}
		ring, err := BuildRing(real.Member(), secret, members)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		p.ring = ring
		signer.RealIndex = ring.RealIndex
	}

	created := make([]*OutputAndSharedSecret, 0, len(outlays))
	defer func() {
		for _, o := range created {
			o.Wipe()
		}
	}()
	prover := rangeProverFor(tb.RangeProver, tb.Params)
	for i, o := range outlays {
		out, err := CreateOutput(o.Value, o.Receiver, o.Memo)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		created = append(created, out)
		proof, commitment, err := prover.ProveRange(o.Value, out.Blinding)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		out.Output.RangeProof = proof
		out.Output.Commitment = commitment
	}

	// pseudo blindings sum to the output blindings so that the commitments
	// balance exactly when the values do
	outputBlindings := make([]*ristretto.Scalar, len(created))
	for i, o := range created {
		outputBlindings[i] = o.Blinding
	}
	remaining := sumScalars(outputBlindings)
	for i, p := range pending {
		var pb *ristretto.Scalar
		if i == len(pending)-1 {
			pb = copyScalar(remaining)
		} else {
			var r ristretto.Scalar
			pb = r.Rand()
			remaining.Sub(remaining, pb)
		}
		p.signer.PseudoBlinding = pb
		p.input = &TxIn{
			Ring:             p.ring.Members,
			PseudoCommitment: Commit(inputs[i].Value, pb),
		}
	}
	wipeScalar(remaining)

	sort.Slice(pending, func(i, j int) bool {
		return bytes.Compare(pending[i].ring.Members[0].OneTimeKey.Bytes(), pending[j].ring.Members[0].OneTimeKey.Bytes()) < 0
	})
	outputs := make([]*TxOut, len(created))
	for i, o := range created {
		outputs[i] = o.Output
	}
	sort.Slice(outputs, func(i, j int) bool {
		return bytes.Compare(outputs[i].OneTimeKey.Bytes(), outputs[j].OneTimeKey.Bytes()) < 0
	})

	prefix := &TxPrefix{Outputs: outputs, Fee: fee}
	for _, p := range pending {
		prefix.Inputs = append(prefix.Inputs, p.input)
	}
	message := HashOfTxPrefix(prefix)

	signatures := make([]*RingSignature, len(pending))
	for i, p := range pending {
		sig, err := tb.Signer.Sign(message, p.input.Ring, p.input.PseudoCommitment, p.signer)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		signatures[i] = sig
	}

	return &Tx{
		Prefix:     prefix,
		Signatures: signatures,
	}, nil
}

// PlanOutlays returns outlays plus a change outlay to change for whatever
// the inputs hold beyond the outlays and the fee.
func PlanOutlays(inputs []*OwnedOutput, outlays []*Outlay, fee uint64, change *StealthAddress) ([]*Outlay, error) {
	total := uint128.Zero
	for _, in := range inputs {
		total = total.Add64(in.Value)
	}
	spent := uint128.From64(fee)
	for _, o := range outlays {
		spent = spent.Add64(o.Value)
	}
	if total.Cmp(spent) < 0 {
		return nil, fmt.Errorf("%w: inputs %s, outputs and fee %s", ErrImbalancedTransaction, total, spent)
	}

	planned := append([]*Outlay(nil), outlays...)
	rest := total.Sub(spent)
	if rest.IsZero() {
		return planned, nil
	}
	if rest.Hi != 0 {
		return nil, fmt.Errorf("%w: change %s overflows", ErrImbalancedTransaction, rest)
	}
	if change == nil {
		return nil, fmt.Errorf("%w: change %s without a change address", ErrImbalancedTransaction, rest)
	}
	return append(planned, &Outlay{Receiver: change, Value: rest.Lo}), nil
}
