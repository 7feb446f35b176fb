package ringct

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRing(t *testing.T) {
	assert := assert.New(t)

	secret := randomScalar()
	real := &RingMember{OneTimeKey: PublicKey(secret), Commitment: randomPoint()}
	decoys := make([]*RingMember, 10)
	for i := range decoys {
		decoys[i] = &RingMember{OneTimeKey: randomPoint(), Commitment: randomPoint()}
	}

	positions := make(map[int]bool)
	for i := 0; i < 64; i++ {
		ring, err := BuildRing(real, secret, decoys)
		require.NoError(t, err)
		assert.Len(ring.Members, 11)
		assert.True(ring.Members[ring.RealIndex].OneTimeKey.Equals(real.OneTimeKey))
		assert.True(ring.KeyImage.Equals(ComputeKeyImage(secret)))
		assert.Len(ring.PublicKeys(), 11)
		positions[ring.RealIndex] = true
	}
	assert.Greater(len(positions), 1)

	_, err := BuildRing(real, randomScalar(), decoys)
	assert.True(errors.Is(err, ErrNotOwned))

	_, err = BuildRing(real, secret, append(decoys, decoys[3]))
	assert.NotNil(err)
	_, err = BuildRing(real, secret, append(decoys, real))
	assert.NotNil(err)
}

func TestSelectDecoys(t *testing.T) {
	assert := assert.New(t)

	index := &memIndex{}
	owner := NewAccount()
	mine := mintTo(t, index, owner.Address(), 5)
	mintDecoys(t, index, 6)
	real, found := index.Lookup(mine.OneTimeKey)
	require.True(t, found)

	for _, selector := range []DecoySelector{UniformSelector{}, NewGammaSelector()} {
		decoys, err := SelectDecoys(index, selector, real, 6)
		require.NoError(t, err)
		assert.Len(decoys, 6)
		seen := make(map[PointBytes]bool)
		for _, d := range decoys {
			assert.False(d.OneTimeKey.Equals(real.OneTimeKey))
			seen[PointBytesOf(d.OneTimeKey)] = true
		}
		assert.Len(seen, 6)

		_, err = SelectDecoys(index, selector, real, 7)
		assert.True(errors.Is(err, ErrInsufficientDecoys))
	}

	index.outputs[3].Spent = true
	_, err := SelectDecoys(index, UniformSelector{}, real, 6)
	assert.True(errors.Is(err, ErrInsufficientDecoys))
	decoys, err := SelectDecoys(index, UniformSelector{}, real, 5)
	require.NoError(t, err)
	for _, d := range decoys {
		assert.False(d.Spent)
	}
}

func TestGammaSelector(t *testing.T) {
	assert := assert.New(t)

	// a long chain of one output per block, picks should lean recent
	candidates := make([]*IndexedOutput, 20000)
	for i := range candidates {
		candidates[i] = &IndexedOutput{GlobalIndex: uint64(i), Height: uint64(i)}
	}
	picks, err := NewGammaSelector().Select(candidates, 200)
	require.NoError(t, err)
	assert.Len(picks, 200)

	recent := 0
	seen := make(map[uint64]bool)
	for _, p := range picks {
		assert.False(seen[p.GlobalIndex])
		seen[p.GlobalIndex] = true
		if p.Height >= 10000 {
			recent++
		}
	}
	assert.Greater(recent, 100)

	// blocks holding many outputs, every output of a block is reachable
	crowded := make([]*IndexedOutput, 0, 2000*5)
	for h := 0; h < 2000; h++ {
		for k := 0; k < 5; k++ {
			crowded = append(crowded, &IndexedOutput{GlobalIndex: uint64(len(crowded)), Height: uint64(h)})
		}
	}
	picks, err = NewGammaSelector().Select(crowded, 200)
	require.NoError(t, err)
	inner := 0
	for _, p := range picks {
		if p.GlobalIndex%5 != 0 {
			inner++
		}
	}
	assert.Greater(inner, 100)

	_, err = NewGammaSelector().Select(candidates[:3], 4)
	assert.True(errors.Is(err, ErrInsufficientDecoys))
}
