package ringct

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// DealerAwaitingBitCommitments aggregates m parties proving n-bit ranges.
type DealerAwaitingBitCommitments struct {
	BPGens     *BulletproofGens
	PCGens     *PedersenGens
	Transcript *merlin.Transcript
	N, M       int64
}

func NewDealer(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, n, m int64) (*DealerAwaitingBitCommitments, error) {
	switch n {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("NewDealer invalid bitsize n: %d", n)
	}
	if m < 1 || bits.OnesCount64(uint64(m)) != 1 {
		return nil, fmt.Errorf("NewDealer invalid aggregation m: %d", m)
	}
	if bg.GensCapacity < n {
		return nil, fmt.Errorf("NewDealer invalid generators length GensCapacity %d, n %d", bg.GensCapacity, n)
	}
	if bg.PartyCapacity < m {
		return nil, fmt.Errorf("NewDealer invalid generators length PartyCapacity %d, m %d", bg.PartyCapacity, m)
	}

	return &DealerAwaitingBitCommitments{
		BPGens:     bg,
		PCGens:     pg,
		Transcript: RangeproofDomainSep(n, m, t),
		N:          n,
		M:          m,
	}, nil
}

type DealerAwaitingPolyCommitments struct {
	N, M           int64
	Transcript     *merlin.Transcript
	BPGens         *BulletproofGens
	PCGens         *PedersenGens
	BitChallenge   *BitChallenge
	BitCommitments []*BitCommitment
	A              *ristretto.Point
	S              *ristretto.Point
}

func (d *DealerAwaitingBitCommitments) ReceiveBitCommitments(commitments []*BitCommitment) (*DealerAwaitingPolyCommitments, *BitChallenge, error) {
	if int(d.M) != len(commitments) {
		return nil, nil, fmt.Errorf("ReceiveBitCommitments wrong number of bit commitments %d %d", d.M, len(commitments))
	}

	var A, S ristretto.Point
	A.SetZero()
	S.SetZero()
	for i := range commitments {
		AppendPoint("V", commitments[i].VJ, d.Transcript)
		A.Add(&A, commitments[i].AJ)
		S.Add(&S, commitments[i].SJ)
	}
	AppendPoint("A", &A, d.Transcript)
	AppendPoint("S", &S, d.Transcript)

	y := ChallengeScalar("y", d.Transcript)
	z := ChallengeScalar("z", d.Transcript)
	challenge := &BitChallenge{Y: y, Z: z}

	return &DealerAwaitingPolyCommitments{
		N:              d.N,
		M:              d.M,
		Transcript:     d.Transcript,
		BPGens:         d.BPGens,
		PCGens:         d.PCGens,
		BitChallenge:   challenge,
		BitCommitments: commitments,
		A:              &A,
		S:              &S,
	}, challenge, nil
}

func (d *DealerAwaitingPolyCommitments) ReceivePolyCommitments(commitments []*PolyCommitment) (*DealerAwaitingProofShares, *PolyChallenge, error) {
	if int(d.M) != len(commitments) {
		return nil, nil, fmt.Errorf("ReceivePolyCommitments wrong number of poly commitments %d %d", d.M, len(commitments))
	}

	var T1, T2 ristretto.Point
	T1.SetZero()
	T2.SetZero()
	for i := range commitments {
		T1.Add(&T1, commitments[i].T1j)
		T2.Add(&T2, commitments[i].T2j)
	}
	AppendPoint("T_1", &T1, d.Transcript)
	AppendPoint("T_2", &T2, d.Transcript)

	x := ChallengeScalar("x", d.Transcript)
	challenge := &PolyChallenge{X: x}
	return &DealerAwaitingProofShares{
		N:               d.N,
		M:               d.M,
		Transcript:      d.Transcript,
		BPGens:          d.BPGens,
		PCGens:          d.PCGens,
		BitChallenge:    d.BitChallenge,
		BitCommitments:  d.BitCommitments,
		A:               d.A,
		S:               d.S,
		PolyChallenge:   challenge,
		PolyCommitments: commitments,
		T1:              &T1,
		T2:              &T2,
	}, challenge, nil
}

type DealerAwaitingProofShares struct {
	N, M            int64
	Transcript      *merlin.Transcript
	BPGens          *BulletproofGens
	PCGens          *PedersenGens
	BitChallenge    *BitChallenge
	BitCommitments  []*BitCommitment
	A               *ristretto.Point
	S               *ristretto.Point
	PolyChallenge   *PolyChallenge
	PolyCommitments []*PolyCommitment
	T1, T2          *ristretto.Point
}

func (d *DealerAwaitingProofShares) AssembleShares(proofs []*ProofShare) (*RangeProof, error) {
	if int(d.M) != len(proofs) {
		return nil, fmt.Errorf("AssembleShares wrong number of proof shares %d %d", d.M, len(proofs))
	}

	var badShares []int
	for i, p := range proofs {
		if err := p.checkSize(d.N, d.BPGens, i); err != nil {
			badShares = append(badShares, i)
		}
	}
	if len(badShares) > 0 {
		return nil, fmt.Errorf("AssembleShares malformed proof shares %v", badShares)
	}

	var tx, txBlinding, eBlinding ristretto.Scalar
	tx.SetZero()
	txBlinding.SetZero()
	eBlinding.SetZero()
	for i := range proofs {
		tx.Add(&tx, proofs[i].TX)
		txBlinding.Add(&txBlinding, proofs[i].TXBlinding)
		eBlinding.Add(&eBlinding, proofs[i].EBlinding)
	}

	AppendScalar("t_x", &tx, d.Transcript)
	AppendScalar("t_x_blinding", &txBlinding, d.Transcript)
	AppendScalar("e_blinding", &eBlinding, d.Transcript)

	w := ChallengeScalar("w", d.Transcript)
	var Q ristretto.Point
	Q.ScalarMult(d.PCGens.B, w)

	nm := int(d.N * d.M)
	gFactors := make([]*ristretto.Scalar, nm)
	hFactors := make([]*ristretto.Scalar, nm)
	var inverseY ristretto.Scalar
	inverseY.Inverse(d.BitChallenge.Y)
	exp := NewScalarExp(&inverseY)
	for i := 0; i < nm; i++ {
		var one ristretto.Scalar
		gFactors[i] = one.SetOne()
		hFactors[i] = exp.Next()
	}

	lVec := make([]*ristretto.Scalar, 0, nm)
	rVec := make([]*ristretto.Scalar, 0, nm)
	for i := range proofs {
		lVec = append(lVec, proofs[i].LVec...)
		rVec = append(rVec, proofs[i].RVec...)
	}

	gVec := d.BPGens.G(d.N, d.M)
	hVec := d.BPGens.H(d.N, d.M)
	ippProof, err := CreateInnerProductProof(d.Transcript, &Q, gFactors, hFactors, gVec, hVec, lVec, rVec)
	wipeScalars(lVec)
	wipeScalars(rVec)
	if err != nil {
		return nil, err
	}

	return &RangeProof{
		A:          d.A,
		S:          d.S,
		T1:         d.T1,
		T2:         d.T2,
		TX:         &tx,
		TXBlinding: &txBlinding,
		EBlinding:  &eBlinding,
		IPPProof:   ippProof,
	}, nil
}
