package ringct

import (
	"errors"
	"fmt"

	"github.com/bwesterb/go-ristretto"
)

type PartyAwaitingPosition struct {
	BPGens    *BulletproofGens
	PCGens    *PedersenGens
	N         int64
	Value     uint64
	VBlinding *ristretto.Scalar
	V         *ristretto.Point
}

func NewParty(bg *BulletproofGens, pg *PedersenGens, value uint64, blinding *ristretto.Scalar, n int64) (*PartyAwaitingPosition, error) {
	switch n {
	case 8, 16, 32, 64:
	default:
		return nil, fmt.Errorf("NewParty invalid bitsize %d", n)
	}
	if bg.GensCapacity < n {
		return nil, fmt.Errorf("NewParty invalid generators length %d, %d", bg.GensCapacity, n)
	}
	if n < 64 && value>>uint(n) != 0 {
		return nil, fmt.Errorf("NewParty value out of range for %d bits", n)
	}

	V := pg.Commit(uint64ToScalar(value), blinding)

	return &PartyAwaitingPosition{
		BPGens:    bg,
		PCGens:    pg,
		N:         n,
		Value:     value,
		VBlinding: blinding,
		V:         V,
	}, nil
}

type PartyAwaitingBitChallenge struct {
	N         int64
	V         uint64
	VBlinding *ristretto.Scalar
	J         int
	PCGens    *PedersenGens
	ABlinding *ristretto.Scalar
	SBlinding *ristretto.Scalar
	SL        []*ristretto.Scalar
	SR        []*ristretto.Scalar
}

func (p *PartyAwaitingPosition) AssignPosition(j int) (*PartyAwaitingBitChallenge, *BitCommitment, error) {
	if p.BPGens.PartyCapacity <= int64(j) {
		return nil, nil, fmt.Errorf("AssignPosition invalid generators length %d, %d", p.BPGens.PartyCapacity, j)
	}
	bpShare := p.BPGens.Share(j)

	var aBlinding ristretto.Scalar
	aBlinding.Rand()
	var A ristretto.Point
	A.ScalarMult(p.PCGens.BBlinding, &aBlinding)

	// If v_i = 0, we add a_L[i] * G[i] + a_R[i] * H[i] = - H[i]
	// If v_i = 1, we add a_L[i] * G[i] + a_R[i] * H[i] =   G[i]
	Gs := bpShare.G(p.N)
	Hs := bpShare.H(p.N)

	for i := range Gs {
		var point ristretto.Point
		point.Neg(Hs[i])

		if (p.Value>>i)&1 == 1 {
			point = *Gs[i]
		}
		A.Add(&A, &point)
	}

	var sBlinding ristretto.Scalar
	sBlinding.Rand()

	sL := make([]*ristretto.Scalar, p.N)
	sR := make([]*ristretto.Scalar, p.N)
	for i := 0; i < int(p.N); i++ {
		var s1, s2 ristretto.Scalar
		sL[i] = s1.Rand()
		sR[i] = s2.Rand()
	}

	// S = <s_L, G> + <s_R, H> + s_blinding * B_blinding
	scalars := append([]*ristretto.Scalar{&sBlinding}, sL...)
	scalars = append(scalars, sR...)
	points := append([]*ristretto.Point{p.PCGens.BBlinding}, Gs...)
	points = append(points, Hs...)
	S := multiscalarMul(scalars, points)

	bitCommitment := &BitCommitment{
		VJ: p.V,
		AJ: &A,
		SJ: S,
	}

	nextState := &PartyAwaitingBitChallenge{
		N:         p.N,
		V:         p.Value,
		VBlinding: p.VBlinding,
		PCGens:    p.PCGens,
		J:         j,
		ABlinding: &aBlinding,
		SBlinding: &sBlinding,
		SL:        sL,
		SR:        sR,
	}
	return nextState, bitCommitment, nil
}

func (p *PartyAwaitingBitChallenge) ApplyChallenge(vc *BitChallenge) (*PartyAwaitingPolyChallenge, *PolyCommitment) {
	offsetY := ScalarExpVartime(vc.Y, uint64(int64(p.J)*p.N))
	offsetZ := ScalarExpVartime(vc.Z, uint64(p.J))

	lPoly := ZeroVecPoly1(p.N)
	rPoly := ZeroVecPoly1(p.N)

	var offsetZZ ristretto.Scalar
	offsetZZ.Mul(vc.Z, vc.Z)
	offsetZZ.Mul(&offsetZZ, offsetZ)

	expY := offsetY
	var exp2 ristretto.Scalar
	exp2.SetOne()

	var one ristretto.Scalar
	one.SetOne()
	for i := 0; i < int(p.N); i++ {
		aL := uint64ToScalar((p.V >> i) & 1)
		var aR ristretto.Scalar
		aR.Sub(aL, &one)

		lPoly.As[i].Sub(aL, vc.Z)
		lPoly.Bs[i] = p.SL[i]

		var tmp1, tmp2 ristretto.Scalar
		tmp1.Add(&aR, vc.Z)
		tmp1.Mul(expY, &tmp1)
		tmp2.Mul(&offsetZZ, &exp2)
		rPoly.As[i].Add(&tmp1, &tmp2)
		rPoly.Bs[i].Mul(expY, p.SR[i])

		expY.Mul(expY, vc.Y)
		exp2.Add(&exp2, &exp2)
		wipeScalar(aL)
		wipeScalar(&aR)
	}

	tPoly := lPoly.InnerProduct(rPoly)

	var t1Blinding, t2Blinding ristretto.Scalar
	t1Blinding.Rand()
	t2Blinding.Rand()

	polyCommitment := &PolyCommitment{
		T1j: p.PCGens.Commit(tPoly.B, &t1Blinding),
		T2j: p.PCGens.Commit(tPoly.C, &t2Blinding),
	}

	next := &PartyAwaitingPolyChallenge{
		OffsetZZ:   &offsetZZ,
		LPoly:      lPoly,
		RPoly:      rPoly,
		TPoly:      tPoly,
		T1Blinding: &t1Blinding,
		T2Blinding: &t2Blinding,
		VBlinding:  p.VBlinding,
		ABlinding:  p.ABlinding,
		SBlinding:  p.SBlinding,
	}
	wipeScalars(p.SR)
	return next, polyCommitment
}

type PartyAwaitingPolyChallenge struct {
	OffsetZZ   *ristretto.Scalar
	LPoly      *VecPoly1
	RPoly      *VecPoly1
	TPoly      *Poly2
	VBlinding  *ristretto.Scalar
	ABlinding  *ristretto.Scalar
	SBlinding  *ristretto.Scalar
	T1Blinding *ristretto.Scalar
	T2Blinding *ristretto.Scalar
}

func (p *PartyAwaitingPolyChallenge) ApplyChallenge(pc *PolyChallenge) (*ProofShare, error) {
	if isZeroScalar(pc.X) {
		return nil, errors.New("ApplyChallenge malicious dealer")
	}
	defer p.wipe()

	var a ristretto.Scalar
	a.Mul(p.OffsetZZ, p.VBlinding)
	tBlindingPoly := Poly2{
		A: &a,
		B: p.T1Blinding,
		C: p.T2Blinding,
	}

	var eBlinding ristretto.Scalar
	eBlinding.Mul(p.SBlinding, pc.X)
	eBlinding.Add(p.ABlinding, &eBlinding)

	share := &ProofShare{
		TX:         p.TPoly.Eval(pc.X),
		TXBlinding: tBlindingPoly.Eval(pc.X),
		EBlinding:  &eBlinding,
		LVec:       p.LPoly.Eval(pc.X),
		RVec:       p.RPoly.Eval(pc.X),
	}
	wipeScalar(&a)
	return share, nil
}

func (p *PartyAwaitingPolyChallenge) wipe() {
	p.LPoly.Wipe()
	p.RPoly.Wipe()
	wipeScalars([]*ristretto.Scalar{p.TPoly.A, p.TPoly.B, p.TPoly.C})
	wipeScalars([]*ristretto.Scalar{p.ABlinding, p.SBlinding, p.T1Blinding, p.T2Blinding})
}
