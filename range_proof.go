package ringct

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// RangeProofScheme proves that a commitment opens to a value in [0, 2^bits).
type RangeProofScheme interface {
	ProveRange(value uint64, blinding *ristretto.Scalar) ([]byte, *ristretto.Point, error)
	VerifyRange(commitment *ristretto.Point, proof []byte) error
}

type RangeProof struct {
	A, S       *ristretto.Point
	T1, T2     *ristretto.Point
	TX         *ristretto.Scalar
	TXBlinding *ristretto.Scalar
	EBlinding  *ristretto.Scalar
	IPPProof   *InnerProductProof
}

func (p *RangeProof) ToBytes() []byte {
	var buf []byte
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.S.Bytes()...)
	buf = append(buf, p.T1.Bytes()...)
	buf = append(buf, p.T2.Bytes()...)
	buf = append(buf, p.TX.Bytes()...)
	buf = append(buf, p.TXBlinding.Bytes()...)
	buf = append(buf, p.EBlinding.Bytes()...)
	buf = append(buf, p.IPPProof.ToBytes()...)
	return buf
}

func RangeProofFromBytes(buf []byte) (*RangeProof, error) {
	if len(buf) < 7*32 || len(buf)%32 != 0 {
		return nil, fmt.Errorf("%w: range proof length %d", ErrDecoding, len(buf))
	}

	points := make([]*ristretto.Point, 4)
	for i := range points {
		p, err := decodePoint(buf[i*32 : (i+1)*32])
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	scalars := make([]*ristretto.Scalar, 3)
	for i := range scalars {
		s, err := decodeScalar(buf[(4+i)*32 : (5+i)*32])
		if err != nil {
			return nil, err
		}
		scalars[i] = s
	}
	ipp, err := InnerProductProofFromBytes(buf[7*32:])
	if err != nil {
		return nil, err
	}

	return &RangeProof{
		A:          points[0],
		S:          points[1],
		T1:         points[2],
		T2:         points[3],
		TX:         scalars[0],
		TXBlinding: scalars[1],
		EBlinding:  scalars[2],
		IPPProof:   ipp,
	}, nil
}

// ProveMultiple aggregates len(values) n-bit proofs, len(values) must be a
// power of two.
func ProveMultiple(bpGens *BulletproofGens, pcGens *PedersenGens, transcript *merlin.Transcript, values []uint64, blindings []*ristretto.Scalar, n int64) (*RangeProof, []*ristretto.Point, error) {
	if len(values) != len(blindings) {
		return nil, nil, fmt.Errorf("ProveMultiple wrong number of blinding factors %d, %d", len(values), len(blindings))
	}

	dealer1, err := NewDealer(bpGens, pcGens, transcript, n, int64(len(values)))
	if err != nil {
		return nil, nil, err
	}

	parties := make([]*PartyAwaitingPosition, len(values))
	for i := range values {
		parties[i], err = NewParty(bpGens, pcGens, values[i], blindings[i], n)
		if err != nil {
			return nil, nil, err
		}
	}

	partiesA := make([]*PartyAwaitingBitChallenge, len(parties))
	bitCommitments := make([]*BitCommitment, len(parties))
	for j := range parties {
		partiesA[j], bitCommitments[j], err = parties[j].AssignPosition(j)
		if err != nil {
			return nil, nil, err
		}
	}
	valueCommitments := make([]*ristretto.Point, len(bitCommitments))
	for i := range bitCommitments {
		valueCommitments[i] = bitCommitments[i].VJ
	}

	dealer2, bitChallenge, err := dealer1.ReceiveBitCommitments(bitCommitments)
	if err != nil {
		return nil, nil, err
	}

	partiesB := make([]*PartyAwaitingPolyChallenge, len(partiesA))
	polyCommitments := make([]*PolyCommitment, len(partiesA))
	for i := range partiesA {
		partiesB[i], polyCommitments[i] = partiesA[i].ApplyChallenge(bitChallenge)
	}

	dealer3, polyChallenge, err := dealer2.ReceivePolyCommitments(polyCommitments)
	if err != nil {
		return nil, nil, err
	}

	proofShares := make([]*ProofShare, len(partiesB))
	for i := range partiesB {
		proofShares[i], err = partiesB[i].ApplyChallenge(polyChallenge)
		if err != nil {
			return nil, nil, err
		}
	}

	proof, err := dealer3.AssembleShares(proofShares)
	if err != nil {
		return nil, nil, err
	}
	return proof, valueCommitments, nil
}

// VerifyMultiple checks the whole proof with one multiscalar multiplication
// that must land on the identity.
func (p *RangeProof) VerifyMultiple(bpGens *BulletproofGens, pcGens *PedersenGens, transcript *merlin.Transcript, commitments []*ristretto.Point, n int64) error {
	m := int64(len(commitments))
	switch n {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("%w: invalid bitsize %d", ErrInvalidRangeProof, n)
	}
	if m < 1 || bits.OnesCount64(uint64(m)) != 1 {
		return fmt.Errorf("%w: invalid aggregation %d", ErrInvalidRangeProof, m)
	}
	if bpGens.GensCapacity < n || bpGens.PartyCapacity < m {
		return fmt.Errorf("%w: generators too small for n %d m %d", ErrInvalidRangeProof, n, m)
	}

	RangeproofDomainSep(n, m, transcript)
	for _, V := range commitments {
		AppendPoint("V", V, transcript)
	}
	if err := validateAndAppendPoint("A", p.A, transcript); err != nil {
		return err
	}
	if err := validateAndAppendPoint("S", p.S, transcript); err != nil {
		return err
	}
	y := ChallengeScalar("y", transcript)
	z := ChallengeScalar("z", transcript)
	var zz, minusZ ristretto.Scalar
	zz.Mul(z, z)
	minusZ.SetZero()
	minusZ.Sub(&minusZ, z)

	if err := validateAndAppendPoint("T_1", p.T1, transcript); err != nil {
		return err
	}
	if err := validateAndAppendPoint("T_2", p.T2, transcript); err != nil {
		return err
	}
	x := ChallengeScalar("x", transcript)

	AppendScalar("t_x", p.TX, transcript)
	AppendScalar("t_x_blinding", p.TXBlinding, transcript)
	AppendScalar("e_blinding", p.EBlinding, transcript)
	w := ChallengeScalar("w", transcript)

	nm := int(n * m)
	xSq, xInvSq, s, err := p.IPPProof.verificationScalars(nm, transcript)
	if err != nil {
		return err
	}

	// batching weight for the t(x) equation
	var c ristretto.Scalar
	c.Rand()

	a, b := p.IPPProof.A, p.IPPProof.B

	var two ristretto.Scalar
	two.SetOne()
	two.Add(&two, &two)
	powersOf2 := make([]*ristretto.Scalar, n)
	exp2 := NewScalarExp(&two)
	for i := range powersOf2 {
		powersOf2[i] = exp2.Next()
	}
	concatZAnd2 := make([]*ristretto.Scalar, 0, nm)
	expZ := NewScalarExp(z)
	for j := int64(0); j < m; j++ {
		zj := expZ.Next()
		for i := range powersOf2 {
			var r ristretto.Scalar
			concatZAnd2 = append(concatZAnd2, r.Mul(powersOf2[i], zj))
		}
	}

	var yInv ristretto.Scalar
	yInv.Inverse(y)
	expYInv := NewScalarExp(&yInv)

	gScalars := make([]*ristretto.Scalar, nm)
	hScalars := make([]*ristretto.Scalar, nm)
	for i := 0; i < nm; i++ {
		var g, as ristretto.Scalar
		gScalars[i] = g.Sub(&minusZ, as.Mul(a, s[i]))

		var h, t, bs ristretto.Scalar
		t.Mul(&zz, concatZAnd2[i])
		t.Sub(&t, bs.Mul(b, s[nm-1-i]))
		t.Mul(expYInv.Next(), &t)
		hScalars[i] = h.Add(z, &t)
	}

	vScalars := make([]*ristretto.Scalar, m)
	expZ = NewScalarExp(z)
	for j := range vScalars {
		var r ristretto.Scalar
		r.Mul(&c, &zz)
		vScalars[j] = r.Mul(&r, expZ.Next())
	}

	// w * (t_x - a * b) + c * (delta(y, z) - t_x)
	var basepoint, ab, dt ristretto.Scalar
	basepoint.Sub(p.TX, ab.Mul(a, b))
	basepoint.Mul(w, &basepoint)
	dt.Sub(delta(n, m, y, z), p.TX)
	dt.Mul(&c, &dt)
	basepoint.Add(&basepoint, &dt)

	// -e_blinding - c * t_x_blinding
	var blinding, ct ristretto.Scalar
	blinding.SetZero()
	blinding.Sub(&blinding, p.EBlinding)
	blinding.Sub(&blinding, ct.Mul(&c, p.TXBlinding))

	var one, cx, cxx ristretto.Scalar
	one.SetOne()
	cx.Mul(&c, x)
	cxx.Mul(&cx, x)

	scalars := []*ristretto.Scalar{&one, x, &cx, &cxx}
	scalars = append(scalars, xSq...)
	scalars = append(scalars, xInvSq...)
	scalars = append(scalars, &blinding, &basepoint)
	scalars = append(scalars, gScalars...)
	scalars = append(scalars, hScalars...)
	scalars = append(scalars, vScalars...)

	points := []*ristretto.Point{p.A, p.S, p.T1, p.T2}
	points = append(points, p.IPPProof.LVec...)
	points = append(points, p.IPPProof.RVec...)
	points = append(points, pcGens.BBlinding, pcGens.B)
	points = append(points, bpGens.G(n, m)...)
	points = append(points, bpGens.H(n, m)...)
	points = append(points, commitments...)

	if !isIdentity(vartimeMultiscalarMul(scalars, points)) {
		return ErrInvalidRangeProof
	}
	return nil
}

// delta(y, z) = (z - z^2) * <1, y^(n*m)> - z^3 * <1, 2^n> * <1, z^m>
func delta(n, m int64, y, z *ristretto.Scalar) *ristretto.Scalar {
	var two ristretto.Scalar
	two.SetOne()
	two.Add(&two, &two)

	sumY := sumOfPowers(y, n*m)
	sum2 := sumOfPowers(&two, n)
	sumZ := sumOfPowers(z, m)

	var zz, zzz, r, t ristretto.Scalar
	zz.Mul(z, z)
	zzz.Mul(&zz, z)
	r.Sub(z, &zz)
	r.Mul(&r, sumY)
	t.Mul(&zzz, sum2)
	t.Mul(&t, sumZ)
	return r.Sub(&r, &t)
}

// Bulletproofs is the default RangeProofScheme.
type Bulletproofs struct {
	BPGens *BulletproofGens
	PCGens *PedersenGens
	Bits   int64
}

func NewBulletproofs() *Bulletproofs {
	return NewBulletproofsWithBits(RANGE_PROOF_BITS)
}

// NewBulletproofsWithBits proves values in [0, 2^bits).
func NewBulletproofsWithBits(bits int64) *Bulletproofs {
	bpGens, pcGens := DefaultGenerators()
	return &Bulletproofs{
		BPGens: bpGens,
		PCGens: pcGens,
		Bits:   bits,
	}
}

// rangeProverFor returns scheme, or Bulletproofs at params.RangeBits when
// none is set.
func rangeProverFor(scheme RangeProofScheme, params *Params) RangeProofScheme {
	if scheme != nil {
		return scheme
	}
	return NewBulletproofsWithBits(int64(params.RangeBits))
}

func (bp *Bulletproofs) ProveRange(value uint64, blinding *ristretto.Scalar) ([]byte, *ristretto.Point, error) {
	proof, commitments, err := bp.ProveMultiple([]uint64{value}, []*ristretto.Scalar{blinding})
	if err != nil {
		return nil, nil, err
	}
	return proof, commitments[0], nil
}

func (bp *Bulletproofs) VerifyRange(commitment *ristretto.Point, proof []byte) error {
	return bp.VerifyMultiple([]*ristretto.Point{commitment}, proof)
}

// ProveMultiple pads the values to a power of two by repeating the last one,
// the returned commitments are not padded.
func (bp *Bulletproofs) ProveMultiple(values []uint64, blindings []*ristretto.Scalar) ([]byte, []*ristretto.Point, error) {
	if len(values) == 0 || len(values) != len(blindings) {
		return nil, nil, fmt.Errorf("ProveMultiple invalid values %d, blindings %d", len(values), len(blindings))
	}
	count := len(values)
	valuesPadded := resizeUint64ToPow2(append([]uint64(nil), values...))
	blindingsPadded := resizeScalarToPow2(append([]*ristretto.Scalar(nil), blindings...))
	defer wipeScalars(blindingsPadded[count:])

	transcript := InitialTranscript(BULLETPROOF_DOMAIN_TAG)
	proof, commitments, err := ProveMultiple(bp.BPGens, bp.PCGens, transcript, valuesPadded, blindingsPadded, bp.Bits)
	if err != nil {
		return nil, nil, err
	}
	return proof.ToBytes(), commitments[:count], nil
}

func (bp *Bulletproofs) VerifyMultiple(commitments []*ristretto.Point, proof []byte) error {
	if len(commitments) == 0 {
		return fmt.Errorf("%w: no commitments", ErrInvalidRangeProof)
	}
	rp, err := RangeProofFromBytes(proof)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRangeProof, err)
	}
	padded := append([]*ristretto.Point(nil), commitments...)
	for len(padded) < nextPowerOfTwo(len(commitments)) {
		padded = append(padded, commitments[len(commitments)-1])
	}
	transcript := InitialTranscript(BULLETPROOF_DOMAIN_TAG)
	return rp.VerifyMultiple(bp.BPGens, bp.PCGens, transcript, padded, bp.Bits)
}
