package ringct

import (
	"errors"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomScalar() *ristretto.Scalar {
	var s ristretto.Scalar
	return s.Rand()
}

func TestRangeProof(t *testing.T) {
	assert := assert.New(t)
	bp := NewBulletproofs()

	for _, value := range []uint64{0, 1, 100, 1 << 32, ^uint64(0)} {
		blinding := randomScalar()
		proof, commitment, err := bp.ProveRange(value, blinding)
		require.NoError(t, err)
		assert.True(commitment.Equals(Commit(value, blinding)))
		assert.Nil(bp.VerifyRange(commitment, proof), "value %d", value)
	}

	blinding := randomScalar()
	proof, commitment, err := bp.ProveRange(100, blinding)
	require.NoError(t, err)

	err = bp.VerifyRange(Commit(101, blinding), proof)
	assert.True(errors.Is(err, ErrInvalidRangeProof))

	// the proof is bound to V, neither V - B nor V + 2^64 B verify
	var shifted ristretto.Point
	shifted.Sub(commitment, DefaultPedersenGens().B)
	assert.True(errors.Is(bp.VerifyRange(&shifted, proof), ErrInvalidRangeProof))

	half := uint64ToScalar(1 << 63)
	var two64 ristretto.Scalar
	two64.Add(half, half)
	var wrapped, offset ristretto.Point
	offset.ScalarMult(DefaultPedersenGens().B, &two64)
	wrapped.Add(commitment, &offset)
	assert.True(errors.Is(bp.VerifyRange(&wrapped, proof), ErrInvalidRangeProof))

	tampered := append([]byte(nil), proof...)
	tampered[4*32] ^= 1
	assert.True(errors.Is(bp.VerifyRange(commitment, tampered), ErrInvalidRangeProof))
	assert.True(errors.Is(bp.VerifyRange(commitment, proof[:len(proof)-32]), ErrInvalidRangeProof))
	assert.True(errors.Is(bp.VerifyRange(commitment, nil), ErrInvalidRangeProof))
}

func TestAggregatedRangeProof(t *testing.T) {
	assert := assert.New(t)
	bp := NewBulletproofs()

	values := []uint64{7, 1 << 40, 3}
	blindings := []*ristretto.Scalar{randomScalar(), randomScalar(), randomScalar()}
	proof, commitments, err := bp.ProveMultiple(values, blindings)
	require.NoError(t, err)
	assert.Len(commitments, 3)
	for i := range values {
		assert.True(commitments[i].Equals(Commit(values[i], blindings[i])))
	}
	assert.Nil(bp.VerifyMultiple(commitments, proof))

	swapped := []*ristretto.Point{commitments[1], commitments[0], commitments[2]}
	assert.True(errors.Is(bp.VerifyMultiple(swapped, proof), ErrInvalidRangeProof))
	assert.True(errors.Is(bp.VerifyMultiple(commitments[:2], proof), ErrInvalidRangeProof))

	_, _, err = bp.ProveMultiple(values, blindings[:2])
	assert.NotNil(err)
}

func TestRangeProofBitsize(t *testing.T) {
	assert := assert.New(t)
	bpGens, pcGens := DefaultGenerators()

	_, err := NewParty(bpGens, pcGens, 256, randomScalar(), 8)
	assert.NotNil(err)
	_, err = NewParty(bpGens, pcGens, 255, randomScalar(), 8)
	assert.Nil(err)
	_, err = NewParty(bpGens, pcGens, 1, randomScalar(), 12)
	assert.NotNil(err)

	blinding := randomScalar()
	transcript := InitialTranscript("small range")
	proof, commitments, err := ProveMultiple(bpGens, pcGens, transcript, []uint64{200}, []*ristretto.Scalar{blinding}, 8)
	require.NoError(t, err)
	assert.Nil(proof.VerifyMultiple(bpGens, pcGens, InitialTranscript("small range"), commitments, 8))
	assert.NotNil(proof.VerifyMultiple(bpGens, pcGens, InitialTranscript("other range"), commitments, 8))

	parsed, err := RangeProofFromBytes(proof.ToBytes())
	require.NoError(t, err)
	assert.Equal(proof.ToBytes(), parsed.ToBytes())
	assert.Nil(parsed.VerifyMultiple(bpGens, pcGens, InitialTranscript("small range"), commitments, 8))
}
