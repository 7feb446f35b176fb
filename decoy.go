package ringct

import (
	"crypto/rand"
	"fmt"
	"math"
	mrand "math/rand/v2"
	"sort"
)

// DecoySelector picks count decoys out of eligible candidates. Candidates
// are already filtered and distinct.
type DecoySelector interface {
	Select(candidates []*IndexedOutput, count int) ([]*IndexedOutput, error)
}

// UniformSelector draws decoys uniformly with a partial Fisher-Yates shuffle.
type UniformSelector struct{}

func (UniformSelector) Select(candidates []*IndexedOutput, count int) ([]*IndexedOutput, error) {
	if len(candidates) < count {
		return nil, ErrInsufficientDecoys
	}
	pool := append([]*IndexedOutput(nil), candidates...)
	for i := 0; i < count; i++ {
		j, err := randomIndex(len(pool) - i)
		if err != nil {
			return nil, err
		}
		pool[i], pool[i+j] = pool[i+j], pool[i]
	}
	return pool[:count], nil
}

const (
	GAMMA_SHAPE        = 19.28
	GAMMA_SCALE        = 1 / 1.61
	GAMMA_BLOCK_TIME   = 120
	GAMMA_MAX_ATTEMPTS = 64
)

// GammaSelector favours recent outputs the way real spends do: the age in
// seconds of each pick is exp(X) with X drawn from Gamma(Shape, Scale).
type GammaSelector struct {
	Shape     float64
	Scale     float64
	BlockTime float64
}

func NewGammaSelector() *GammaSelector {
	return &GammaSelector{
		Shape:     GAMMA_SHAPE,
		Scale:     GAMMA_SCALE,
		BlockTime: GAMMA_BLOCK_TIME,
	}
}

func (g *GammaSelector) Select(candidates []*IndexedOutput, count int) ([]*IndexedOutput, error) {
	if len(candidates) < count {
		return nil, ErrInsufficientDecoys
	}
	rng, err := newSeededRand()
	if err != nil {
		return nil, err
	}

	sorted := append([]*IndexedOutput(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Height < sorted[j].Height
	})
	tip := sorted[len(sorted)-1].Height

	picked := make(map[int]bool, count)
	out := make([]*IndexedOutput, 0, count)
	for attempts := 0; len(out) < count && attempts < count*GAMMA_MAX_ATTEMPTS; attempts++ {
		age := math.Exp(sampleGamma(rng, g.Shape, g.Scale)) / g.BlockTime
		if age > float64(tip) {
			continue
		}
		target := tip - uint64(age)
		start := sort.Search(len(sorted), func(i int) bool {
			return sorted[i].Height >= target
		})
		if start == len(sorted) {
			start--
		}
		// any unpicked output of the landed block, not just its first
		height := sorted[start].Height
		var block []int
		for i := start; i < len(sorted) && sorted[i].Height == height; i++ {
			if !picked[i] {
				block = append(block, i)
			}
		}
		if len(block) == 0 {
			continue
		}
		i := block[rng.IntN(len(block))]
		picked[i] = true
		out = append(out, sorted[i])
	}

	// young chains rarely have enough spread, fill the rest uniformly
	if len(out) < count {
		var rest []*IndexedOutput
		for i, c := range sorted {
			if !picked[i] {
				rest = append(rest, c)
			}
		}
		fill, err := UniformSelector{}.Select(rest, count-len(out))
		if err != nil {
			return nil, fmt.Errorf("gamma fill: %w", err)
		}
		out = append(out, fill...)
	}
	return out, nil
}

func newSeededRand() (*mrand.Rand, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, err
	}
	return mrand.New(mrand.NewChaCha8(seed)), nil
}

// sampleGamma is Marsaglia and Tsang's method, valid for shape >= 1.
func sampleGamma(rng *mrand.Rand, shape, scale float64) float64 {
	d := shape - 1.0/3
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if math.Log(u) < 0.5*x*x+d-d*v+d*math.Log(v) {
			return d * v * scale
		}
	}
}
