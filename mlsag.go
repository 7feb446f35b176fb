package ringct

import (
	"encoding/binary"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

// RingSignature is an MLSAG over one key row and an optional commitment row.
// Every challenge is kept so that the verifier checks each link of the ring.
type RingSignature struct {
	Challenges          []*ristretto.Scalar
	Responses           []*ristretto.Scalar
	CommitmentResponses []*ristretto.Scalar
	KeyImage            *ristretto.Point
}

// RingSigner is the secret half of an input.
type RingSigner struct {
	Secret    *ristretto.Scalar
	RealIndex int
	// Blinding opens the real member's commitment, PseudoBlinding the pseudo
	// output. Both are ignored when signing without a pseudo output.
	Blinding       *ristretto.Scalar
	PseudoBlinding *ristretto.Scalar
}

func (s *RingSigner) Wipe() {
	wipeScalar(s.Secret)
	wipeScalar(s.Blinding)
	wipeScalar(s.PseudoBlinding)
}

type RingSignatureScheme interface {
	Sign(message []byte, members []*RingMember, pseudo *ristretto.Point, signer *RingSigner) (*RingSignature, error)
	Verify(message []byte, members []*RingMember, pseudo *ristretto.Point, sig *RingSignature) error
}

// MLSAG is the default RingSignatureScheme.
type MLSAG struct{}

func SignRing(message []byte, members []*RingMember, pseudo *ristretto.Point, signer *RingSigner) (*RingSignature, error) {
	return MLSAG{}.Sign(message, members, pseudo, signer)
}

func VerifyRing(message []byte, members []*RingMember, pseudo *ristretto.Point, sig *RingSignature) error {
	return MLSAG{}.Verify(message, members, pseudo, sig)
}

func (MLSAG) Sign(message []byte, members []*RingMember, pseudo *ristretto.Point, signer *RingSigner) (*RingSignature, error) {
	size := len(members)
	if size < 2 {
		return nil, fmt.Errorf("%w: ring size %d", ErrMalformedTransaction, size)
	}
	realIndex := signer.RealIndex
	if realIndex < 0 || realIndex >= size {
		return nil, fmt.Errorf("%w: real index %d outside ring of %d", ErrMalformedTransaction, realIndex, size)
	}
	real := members[realIndex]
	if !PublicKey(signer.Secret).Equals(real.OneTimeKey) {
		return nil, ErrNotOwned
	}

	// z opens D = pseudo - C_real, D = z*G
	var z ristretto.Scalar
	defer wipeScalar(&z)
	if pseudo != nil {
		z.Sub(signer.PseudoBlinding, signer.Blinding)
		var difference ristretto.Point
		difference.Sub(pseudo, real.Commitment)
		if !difference.Equals(PublicKey(&z)) {
			return nil, ErrImbalancedTransaction
		}
	}

	I := keyImage(signer.Secret, real.OneTimeKey)
	prefix := ringPrefix(message, members, pseudo, I)

	c := make([]*ristretto.Scalar, size)
	r := make([]*ristretto.Scalar, size)
	var r1 []*ristretto.Scalar
	if pseudo != nil {
		r1 = make([]*ristretto.Scalar, size)
	}
	for i := 0; i < size; i++ {
		if i == realIndex {
			continue
		}
		var s ristretto.Scalar
		r[i] = s.Rand()
		if pseudo != nil {
			var s1 ristretto.Scalar
			r1[i] = s1.Rand()
		}
	}

	var alpha0, alpha1 ristretto.Scalar
	alpha0.Rand()
	alpha1.Rand()
	defer wipeScalar(&alpha0)
	defer wipeScalar(&alpha1)

	for n := 0; n < size; n++ {
		i := (realIndex + n) % size
		var L0, R0, L1 ristretto.Point
		if i == realIndex {
			L0.ScalarMultBase(&alpha0)
			R0.ScalarMult(hashToPoint(real.OneTimeKey), &alpha0)
			L1.ScalarMultBase(&alpha1)
		} else {
			ringTerms(&L0, &R0, &L1, members[i], pseudo, I, c[i], r[i], r1AtOrNil(r1, i))
		}
		if pseudo == nil {
			c[(i+1)%size] = ringChallenge(prefix, &L0, &R0, nil)
		} else {
			c[(i+1)%size] = ringChallenge(prefix, &L0, &R0, &L1)
		}
	}

	var t ristretto.Scalar
	var s0 ristretto.Scalar
	r[realIndex] = s0.Sub(&alpha0, t.Mul(c[realIndex], signer.Secret))
	if pseudo != nil {
		var s1 ristretto.Scalar
		r1[realIndex] = s1.Sub(&alpha1, t.Mul(c[realIndex], &z))
	}
	wipeScalar(&t)

	return &RingSignature{
		Challenges:          c,
		Responses:           r,
		CommitmentResponses: r1,
		KeyImage:            I,
	}, nil
}

func (MLSAG) Verify(message []byte, members []*RingMember, pseudo *ristretto.Point, sig *RingSignature) error {
	size := len(members)
	if sig == nil || size < 2 {
		return fmt.Errorf("%w: ring size %d", ErrInvalidSignature, size)
	}
	if len(sig.Challenges) != size || len(sig.Responses) != size {
		return fmt.Errorf("%w: %d challenges, %d responses for ring of %d", ErrInvalidSignature, len(sig.Challenges), len(sig.Responses), size)
	}
	if pseudo == nil && len(sig.CommitmentResponses) != 0 {
		return fmt.Errorf("%w: unexpected commitment responses", ErrInvalidSignature)
	}
	if pseudo != nil && len(sig.CommitmentResponses) != size {
		return fmt.Errorf("%w: %d commitment responses for ring of %d", ErrInvalidSignature, len(sig.CommitmentResponses), size)
	}
	for i := 0; i < size; i++ {
		if sig.Challenges[i] == nil || sig.Responses[i] == nil || (pseudo != nil && sig.CommitmentResponses[i] == nil) {
			return fmt.Errorf("%w: missing scalar %d", ErrInvalidSignature, i)
		}
	}
	if sig.KeyImage == nil || isIdentity(sig.KeyImage) {
		return fmt.Errorf("%w: identity key image", ErrInvalidSignature)
	}
	for i, m := range members {
		if m == nil || m.OneTimeKey == nil || isIdentity(m.OneTimeKey) {
			return fmt.Errorf("%w: invalid ring member %d", ErrInvalidSignature, i)
		}
		if pseudo != nil && m.Commitment == nil {
			return fmt.Errorf("%w: ring member %d has no commitment", ErrInvalidSignature, i)
		}
	}

	prefix := ringPrefix(message, members, pseudo, sig.KeyImage)
	for i := 0; i < size; i++ {
		var L0, R0, L1 ristretto.Point
		var expected *ristretto.Scalar
		if pseudo == nil {
			ringTerms(&L0, &R0, nil, members[i], nil, sig.KeyImage, sig.Challenges[i], sig.Responses[i], nil)
			expected = ringChallenge(prefix, &L0, &R0, nil)
		} else {
			ringTerms(&L0, &R0, &L1, members[i], pseudo, sig.KeyImage, sig.Challenges[i], sig.Responses[i], sig.CommitmentResponses[i])
			expected = ringChallenge(prefix, &L0, &R0, &L1)
		}
		if !expected.Equals(sig.Challenges[(i+1)%size]) {
			return fmt.Errorf("%w: challenge %d mismatch", ErrInvalidSignature, (i+1)%size)
		}
	}
	return nil
}

func r1AtOrNil(r1 []*ristretto.Scalar, i int) *ristretto.Scalar {
	if r1 == nil {
		return nil
	}
	return r1[i]
}

// L0 = r*G + c*P, R0 = r*Hp(P) + c*I, L1 = r1*G + c*(pseudo - C)
func ringTerms(L0, R0, L1 *ristretto.Point, member *RingMember, pseudo, I *ristretto.Point, c, r, r1 *ristretto.Scalar) {
	var a, b ristretto.Point
	L0.Add(a.ScalarMultBase(r), b.ScalarMult(member.OneTimeKey, c))
	R0.Add(a.ScalarMult(hashToPoint(member.OneTimeKey), r), b.ScalarMult(I, c))
	if pseudo == nil || L1 == nil {
		return
	}
	var d ristretto.Point
	d.Sub(pseudo, member.Commitment)
	L1.Add(a.ScalarMultBase(r1), b.ScalarMult(&d, c))
}

// ringPrefix binds the message to the ring, the key image and the pseudo
// output so that no challenge can be replayed on another ring.
func ringPrefix(message []byte, members []*RingMember, pseudo, I *ristretto.Point) []byte {
	hash := blake2b.New512()
	hash.Write([]byte(RING_MLSAG_PREFIX_DOMAIN_TAG))
	hash.Write(message)
	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(members)))
	hash.Write(size[:])
	hash.Write(I.Bytes())
	if pseudo != nil {
		hash.Write(pseudo.Bytes())
	}
	for _, m := range members {
		hash.Write(m.OneTimeKey.Bytes())
		if pseudo != nil {
			hash.Write(m.Commitment.Bytes())
		}
	}
	return hash.Sum(nil)
}

func ringChallenge(prefix []byte, L0, R0, L1 *ristretto.Point) *ristretto.Scalar {
	if L1 == nil {
		return hashToScalar(RING_MLSAG_CHALLENGE_DOMAIN_TAG, prefix, L0.Bytes(), R0.Bytes())
	}
	return hashToScalar(RING_MLSAG_CHALLENGE_DOMAIN_TAG, prefix, L0.Bytes(), R0.Bytes(), L1.Bytes())
}
