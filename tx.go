package ringct

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

type TxOut struct {
	Commitment    *ristretto.Point
	OneTimeKey    *ristretto.Point
	EphemeralKey  *ristretto.Point
	EncodedAmount uint64
	EMemo         []byte
	RangeProof    []byte
}

func (out *TxOut) OneTimeOutput() *OneTimeOutput {
	return &OneTimeOutput{
		OneTimeKey:    out.OneTimeKey,
		EphemeralKey:  out.EphemeralKey,
		EncodedAmount: out.EncodedAmount,
	}
}

// TxIn spends one member of Ring, hidden among the others.
type TxIn struct {
	Ring             []*RingMember
	PseudoCommitment *ristretto.Point
}

type TxPrefix struct {
	Inputs  []*TxIn
	Outputs []*TxOut
	Fee     uint64
}

// Tx carries one signature per input, in input order.
type Tx struct {
	Prefix     *TxPrefix
	Signatures []*RingSignature
}

func (tx *Tx) KeyImages() []*ristretto.Point {
	images := make([]*ristretto.Point, 0, len(tx.Signatures))
	for _, sig := range tx.Signatures {
		images = append(images, sig.KeyImage)
	}
	return images
}

func (tx *Tx) PseudoCommitments() []*ristretto.Point {
	pseudos := make([]*ristretto.Point, len(tx.Prefix.Inputs))
	for i, in := range tx.Prefix.Inputs {
		pseudos[i] = in.PseudoCommitment
	}
	return pseudos
}

func (tx *Tx) OutputCommitments() []*ristretto.Point {
	commitments := make([]*ristretto.Point, len(tx.Prefix.Outputs))
	for i, out := range tx.Prefix.Outputs {
		commitments[i] = out.Commitment
	}
	return commitments
}

// Hash identifies a transaction by its canonical encoding.
func (tx *Tx) Hash() ([]byte, error) {
	buf, err := MarshalTx(tx)
	if err != nil {
		return nil, err
	}
	sum := blake2b.Sum256(buf)
	return sum[:], nil
}
