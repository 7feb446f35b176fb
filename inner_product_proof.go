package ringct

import (
	"fmt"
	"math/bits"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

type InnerProductProof struct {
	LVec []*ristretto.Point
	RVec []*ristretto.Point
	A, B *ristretto.Scalar
}

// CreateInnerProductProof folds a, b, G and H in place. The factors are only
// applied in the first round.
func CreateInnerProductProof(transcript *merlin.Transcript, Q *ristretto.Point, gFactors, hFactors []*ristretto.Scalar, gVec, hVec []*ristretto.Point, aVec, bVec []*ristretto.Scalar) (*InnerProductProof, error) {
	n := len(gVec)
	if len(hVec) != n ||
		len(aVec) != n ||
		len(bVec) != n ||
		len(gFactors) != n ||
		len(hFactors) != n {
		return nil, fmt.Errorf("CreateInnerProductProof invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors))
	}
	if n == 0 || bits.OnesCount32(uint32(n)) != 1 {
		return nil, fmt.Errorf("CreateInnerProductProof invalid n %d", n)
	}

	InnerproductDomainSep(uint64(n), transcript)

	G, H, a, b := gVec, hVec, aVec, bVec
	var LVec, RVec []*ristretto.Point
	first := true
	for n != 1 {
		n = n / 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := G[:n], G[n:]
		hL, hR := H[:n], H[n:]

		cL := innerProduct(aL, bR)
		cR := innerProduct(aR, bL)

		lScalars := make([]*ristretto.Scalar, 0, 2*n+1)
		rScalars := make([]*ristretto.Scalar, 0, 2*n+1)
		for i := 0; i < n; i++ {
			if first {
				var r1, r2 ristretto.Scalar
				lScalars = append(lScalars, r1.Mul(aL[i], gFactors[n+i]))
				rScalars = append(rScalars, r2.Mul(aR[i], gFactors[i]))
			} else {
				lScalars = append(lScalars, aL[i])
				rScalars = append(rScalars, aR[i])
			}
		}
		for i := 0; i < n; i++ {
			if first {
				var r1, r2 ristretto.Scalar
				lScalars = append(lScalars, r1.Mul(bR[i], hFactors[i]))
				rScalars = append(rScalars, r2.Mul(bL[i], hFactors[n+i]))
			} else {
				lScalars = append(lScalars, bR[i])
				rScalars = append(rScalars, bL[i])
			}
		}
		lScalars = append(lScalars, cL)
		rScalars = append(rScalars, cR)

		lPoints := make([]*ristretto.Point, 0, 2*n+1)
		lPoints = append(lPoints, gR...)
		lPoints = append(lPoints, hL...)
		lPoints = append(lPoints, Q)
		rPoints := make([]*ristretto.Point, 0, 2*n+1)
		rPoints = append(rPoints, gL...)
		rPoints = append(rPoints, hR...)
		rPoints = append(rPoints, Q)

		// The witness scalars are secret, so no variable-time shortcut here.
		L := multiscalarMul(lScalars, lPoints)
		R := multiscalarMul(rScalars, rPoints)
		if first {
			wipeScalars(lScalars)
			wipeScalars(rScalars)
		}

		LVec = append(LVec, L)
		RVec = append(RVec, R)
		AppendPoint("L", L, transcript)
		AppendPoint("R", R, transcript)

		u := ChallengeScalar("u", transcript)
		var uInv ristretto.Scalar
		uInv.Inverse(u)

		for i := 0; i < n; i++ {
			var r1, r2 ristretto.Scalar
			aL[i].Add(r1.Mul(aL[i], u), r2.Mul(&uInv, aR[i]))
			var r3, r4 ristretto.Scalar
			bL[i].Add(r3.Mul(bL[i], &uInv), r4.Mul(u, bR[i]))

			gu, gv, hu, hv := &uInv, u, u, &uInv
			if first {
				var r5, r6, r7, r8 ristretto.Scalar
				gu = r5.Mul(&uInv, gFactors[i])
				gv = r6.Mul(u, gFactors[n+i])
				hu = r7.Mul(u, hFactors[i])
				hv = r8.Mul(&uInv, hFactors[n+i])
			}
			gL[i] = vartimeMultiscalarMul([]*ristretto.Scalar{gu, gv}, []*ristretto.Point{gL[i], gR[i]})
			hL[i] = vartimeMultiscalarMul([]*ristretto.Scalar{hu, hv}, []*ristretto.Point{hL[i], hR[i]})
		}

		a, b, G, H = aL, bL, gL, hL
		first = false
	}

	return &InnerProductProof{
		LVec: LVec,
		RVec: RVec,
		A:    copyScalar(a[0]),
		B:    copyScalar(b[0]),
	}, nil
}

// verificationScalars returns (u_1^2, ..., u_k^2), (u_1^-2, ..., u_k^-2) and
// the s vector of the folded generators.
func (p *InnerProductProof) verificationScalars(n int, transcript *merlin.Transcript) ([]*ristretto.Scalar, []*ristretto.Scalar, []*ristretto.Scalar, error) {
	lgN := len(p.LVec)
	if lgN >= 32 || len(p.RVec) != lgN || n != 1<<uint(lgN) {
		return nil, nil, nil, fmt.Errorf("%w: inner product size %d for n %d", ErrInvalidRangeProof, lgN, n)
	}

	InnerproductDomainSep(uint64(n), transcript)

	challenges := make([]*ristretto.Scalar, lgN)
	for i := range p.LVec {
		if err := validateAndAppendPoint("L", p.LVec[i], transcript); err != nil {
			return nil, nil, nil, err
		}
		if err := validateAndAppendPoint("R", p.RVec[i], transcript); err != nil {
			return nil, nil, nil, err
		}
		challenges[i] = ChallengeScalar("u", transcript)
	}

	challengesSq := make([]*ristretto.Scalar, lgN)
	challengesInvSq := make([]*ristretto.Scalar, lgN)
	var allInv ristretto.Scalar
	allInv.SetOne()
	for i, u := range challenges {
		var inv, sq, invSq ristretto.Scalar
		inv.Inverse(u)
		allInv.Mul(&allInv, &inv)
		challengesSq[i] = sq.Mul(u, u)
		challengesInvSq[i] = invSq.Mul(&inv, &inv)
	}

	s := make([]*ristretto.Scalar, n)
	s[0] = &allInv
	for i := 1; i < n; i++ {
		lgI := 31 - bits.LeadingZeros32(uint32(i))
		k := 1 << uint(lgI)
		var si ristretto.Scalar
		s[i] = si.Mul(s[i-k], challengesSq[lgN-1-lgI])
	}
	return challengesSq, challengesInvSq, s, nil
}

func (p *InnerProductProof) ToBytes() []byte {
	buf := make([]byte, 0, (2*len(p.LVec)+2)*32)
	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Bytes()...)
		buf = append(buf, p.RVec[i].Bytes()...)
	}
	buf = append(buf, p.A.Bytes()...)
	buf = append(buf, p.B.Bytes()...)
	return buf
}

func InnerProductProofFromBytes(buf []byte) (*InnerProductProof, error) {
	if len(buf)%32 != 0 || len(buf) < 64 {
		return nil, fmt.Errorf("%w: inner product proof length %d", ErrDecoding, len(buf))
	}
	num := len(buf) / 32
	if num%2 != 0 {
		return nil, fmt.Errorf("%w: inner product proof length %d", ErrDecoding, len(buf))
	}
	lgN := (num - 2) / 2
	if lgN >= 32 {
		return nil, fmt.Errorf("%w: inner product proof too large", ErrDecoding)
	}

	p := &InnerProductProof{
		LVec: make([]*ristretto.Point, lgN),
		RVec: make([]*ristretto.Point, lgN),
	}
	var err error
	for i := 0; i < lgN; i++ {
		pos := 2 * i * 32
		if p.LVec[i], err = decodePoint(buf[pos : pos+32]); err != nil {
			return nil, err
		}
		if p.RVec[i], err = decodePoint(buf[pos+32 : pos+64]); err != nil {
			return nil, err
		}
	}
	pos := 2 * lgN * 32
	if p.A, err = decodeScalar(buf[pos : pos+32]); err != nil {
		return nil, err
	}
	if p.B, err = decodeScalar(buf[pos+32 : pos+64]); err != nil {
		return nil, err
	}
	return p, nil
}
