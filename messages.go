package ringct

import "github.com/bwesterb/go-ristretto"

// Messages exchanged between the range proof dealer and its parties.

type BitCommitment struct {
	VJ *ristretto.Point
	AJ *ristretto.Point
	SJ *ristretto.Point
}

type BitChallenge struct {
	Y *ristretto.Scalar
	Z *ristretto.Scalar
}

type PolyChallenge struct {
	X *ristretto.Scalar
}

type PolyCommitment struct {
	T1j *ristretto.Point
	T2j *ristretto.Point
}

type ProofShare struct {
	TX         *ristretto.Scalar
	TXBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar
	LVec       []*ristretto.Scalar
	RVec       []*ristretto.Scalar
}

func (ps *ProofShare) checkSize(n int64, bpGens *BulletproofGens, j int) error {
	if len(ps.LVec) != int(n) || len(ps.RVec) != int(n) {
		return ErrInvalidRangeProof
	}
	if n > bpGens.GensCapacity || int64(j) >= bpGens.PartyCapacity {
		return ErrInvalidRangeProof
	}
	return nil
}
