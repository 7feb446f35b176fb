package ringct

import (
	"sync"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestGenerators(t *testing.T) {
	assert := assert.New(t)

	bg := NewBulletproofGens(64, 4)
	assert.Equal(int64(64), bg.GensCapacity)
	assert.Equal(int64(4), bg.PartyCapacity)
	assert.Len(bg.GVec, 4)
	assert.Len(bg.HVec, 4)
	assert.Len(bg.GVec[3], 64)
	assert.Len(bg.G(64, 2), 128)
	assert.Len(bg.H(32, 4), 128)
	assert.False(bg.GVec[0][0].Equals(bg.HVec[0][0]))
	assert.False(bg.GVec[0][0].Equals(bg.GVec[1][0]))

	small := NewBulletproofGens(16, 4)
	small.IncreaseCapacity(64)
	assert.Equal(int64(64), small.GensCapacity)
	for j := 0; j < 4; j++ {
		assert.Len(small.GVec[j], 64)
		for i := 0; i < 64; i++ {
			assert.True(small.GVec[j][i].Equals(bg.GVec[j][i]))
			assert.True(small.HVec[j][i].Equals(bg.HVec[j][i]))
		}
	}

	share := bg.Share(2)
	assert.True(share.G(8)[5].Equals(bg.GVec[2][5]))
	assert.True(share.H(8)[7].Equals(bg.HVec[2][7]))

	pg := NewPedersenGens()
	var base ristretto.Point
	base.SetBase()
	assert.True(pg.BBlinding.Equals(&base))
	assert.True(pg.B.Equals(hashToPoint(&base)))
	assert.False(pg.B.Equals(pg.BBlinding))
	assert.True(DefaultPedersenGens().B.Equals(pg.B))
}

func TestHashToPoint(t *testing.T) {
	assert := assert.New(t)

	var p ristretto.Point
	p.Rand()
	first := hashToPoint(&p)
	second := hashToPoint(&p)
	assert.True(first.Equals(second))
	assert.False(isIdentity(first))

	second.Add(second, second)
	assert.True(hashToPoint(&p).Equals(first))

	var q ristretto.Point
	q.Rand()
	assert.False(hashToPoint(&q).Equals(first))
}

func TestHashToPointConcurrent(t *testing.T) {
	assert := assert.New(t)

	points := make([]*ristretto.Point, 8)
	expected := make([]*ristretto.Point, len(points))
	for i := range points {
		var p ristretto.Point
		points[i] = p.Rand()
		expected[i] = pointFromUniformBytes(hashToPointInput(points[i]))
	}

	var wg sync.WaitGroup
	results := make([][]*ristretto.Point, 16)
	for g := range results {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for round := 0; round < 50; round++ {
				for _, p := range points {
					results[g] = append(results[g], hashToPoint(p))
				}
			}
		}(g)
	}
	wg.Wait()

	for _, got := range results {
		for j, p := range got {
			assert.True(p.Equals(expected[j%len(points)]))
		}
	}
}
