package ringct

import (
	"encoding/binary"
	"sync"

	"github.com/bwesterb/go-ristretto"
	"golang.org/x/crypto/sha3"
)

// PedersenGens holds B for values and BBlinding for blinding factors.
type PedersenGens struct {
	B         *ristretto.Point
	BBlinding *ristretto.Point
}

func NewPedersenGens() *PedersenGens {
	var base ristretto.Point
	base.SetBase()

	return &PedersenGens{
		B:         hashToPoint(&base),
		BBlinding: &base,
	}
}

func (pg *PedersenGens) Commit(value, blinding *ristretto.Scalar) *ristretto.Point {
	return multiscalarMul([]*ristretto.Scalar{value, blinding}, []*ristretto.Point{pg.B, pg.BBlinding})
}

var (
	defaultPCGensOnce sync.Once
	defaultPCGens     *PedersenGens
	defaultBPGensOnce sync.Once
	defaultBPGens     *BulletproofGens
)

func DefaultPedersenGens() *PedersenGens {
	defaultPCGensOnce.Do(func() {
		defaultPCGens = NewPedersenGens()
	})
	return defaultPCGens
}

// DefaultGenerators are derived once and shared read-only.
func DefaultGenerators() (*BulletproofGens, *PedersenGens) {
	defaultBPGensOnce.Do(func() {
		defaultBPGens = NewBulletproofGens(RANGE_PROOF_BITS, MAX_OUTPUTS)
	})
	return defaultBPGens, DefaultPedersenGens()
}

type BulletproofGens struct {
	GensCapacity  int64
	PartyCapacity int64
	GVec          [][]*ristretto.Point
	HVec          [][]*ristretto.Point
}

func NewBulletproofGens(gensCapacity, partyCapacity int64) *BulletproofGens {
	b := &BulletproofGens{
		GensCapacity:  0,
		PartyCapacity: partyCapacity,
		GVec:          make([][]*ristretto.Point, partyCapacity),
		HVec:          make([][]*ristretto.Point, partyCapacity),
	}
	b.IncreaseCapacity(gensCapacity)
	return b
}

// IncreaseCapacity extends every party's chains, keeping the existing points.
func (b *BulletproofGens) IncreaseCapacity(capacity int64) {
	if b.GensCapacity >= capacity {
		return
	}
	for i := 0; i < int(b.PartyCapacity); i++ {
		b.GVec[i] = append(b.GVec[i], generatorChain('G', uint32(i), b.GensCapacity, capacity)...)
		b.HVec[i] = append(b.HVec[i], generatorChain('H', uint32(i), b.GensCapacity, capacity)...)
	}
	b.GensCapacity = capacity
}

func generatorChain(name byte, party uint32, from, to int64) []*ristretto.Point {
	label := make([]byte, 5)
	label[0] = name
	binary.LittleEndian.PutUint32(label[1:], party)

	chain := NewGeneratorsChain(label)
	chain.FastForward(from)
	points := make([]*ristretto.Point, to-from)
	for j := range points {
		points[j] = chain.Next()
	}
	return points
}

// G returns the first n generators of each of the first m parties.
func (b *BulletproofGens) G(n, m int64) []*ristretto.Point {
	return flattenGens(b.GVec, n, m)
}

func (b *BulletproofGens) H(n, m int64) []*ristretto.Point {
	return flattenGens(b.HVec, n, m)
}

func flattenGens(gens [][]*ristretto.Point, n, m int64) []*ristretto.Point {
	out := make([]*ristretto.Point, 0, n*m)
	for j := int64(0); j < m; j++ {
		for i := int64(0); i < n; i++ {
			out = append(out, copyPoint(gens[j][i]))
		}
	}
	return out
}

type GeneratorsChain struct {
	sha3.ShakeHash
}

func NewGeneratorsChain(label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{h}
}

func (c *GeneratorsChain) FastForward(n int64) {
	var data [64]byte
	for i := 0; i < int(n); i++ {
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() *ristretto.Point {
	var data [64]byte
	c.Read(data[:])
	return pointFromUniformBytes(data[:])
}

func pointFromUniformBytes(key []byte) *ristretto.Point {
	var r1Bytes, r2Bytes [32]byte
	copy(r1Bytes[:], key[:32])
	copy(r2Bytes[:], key[32:])
	var r, r1, r2 ristretto.Point
	return r.Add(r1.SetElligator(&r1Bytes), r2.SetElligator(&r2Bytes))
}

type BulletproofGensShare struct {
	Gens  *BulletproofGens
	Share int
}

func (b *BulletproofGens) Share(j int) *BulletproofGensShare {
	return &BulletproofGensShare{
		Gens:  b,
		Share: j,
	}
}

func (g *BulletproofGensShare) G(n int64) []*ristretto.Point {
	return g.Gens.GVec[g.Share][:n]
}

func (g *BulletproofGensShare) H(n int64) []*ristretto.Point {
	return g.Gens.HVec[g.Share][:n]
}
