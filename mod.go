package ringct

import (
	"encoding/binary"
	"sync"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
	"github.com/floatdrop/lru"
)

const HASH_TO_POINT_CACHE_SIZE = 4096

type pointCache struct {
	sync.Mutex
	entries *lru.LRU[[32]byte, ristretto.Point]
}

var hashToPointCache = &pointCache{
	entries: lru.New[[32]byte, ristretto.Point](HASH_TO_POINT_CACHE_SIZE),
}

func (c *pointCache) get(key [32]byte) (ristretto.Point, bool) {
	c.Lock()
	defer c.Unlock()
	p := c.entries.Get(key)
	if p == nil {
		return ristretto.Point{}, false
	}
	return *p, true
}

func (c *pointCache) set(key [32]byte, p *ristretto.Point) {
	c.Lock()
	defer c.Unlock()
	c.entries.Set(key, *p)
}

// hashToPoint is Hp, the only hash-to-group map used for key images,
// ring signatures and the value generator.
func hashToPoint(public *ristretto.Point) *ristretto.Point {
	var key [32]byte
	copy(key[:], public.Bytes())
	if p, found := hashToPointCache.get(key); found {
		return &p
	}

	p := pointFromUniformBytes(hashToPointInput(public))
	hashToPointCache.set(key, p)
	return p
}

func hashToPointInput(public *ristretto.Point) []byte {
	hash := blake2b.New512()
	hash.Write([]byte(HASH_TO_POINT_DOMAIN_TAG))
	hash.Write(public.Bytes())
	return hash.Sum(nil)
}

// hashToScalar is Hs over the concatenation of the chunks.
func hashToScalar(tag string, chunks ...[]byte) *ristretto.Scalar {
	hash := blake2b.New512()
	hash.Write([]byte(tag))
	for _, c := range chunks {
		hash.Write(c)
	}
	return fromBytesModOrderWide(hash.Sum(nil))
}

// Hs(a * R)
func sharedSecretScalar(shared *ristretto.Point) *ristretto.Scalar {
	return hashToScalar(HASH_TO_SCALAR_DOMAIN_TAG, shared.Bytes())
}

func createSharedSecret(public *ristretto.Point, private *ristretto.Scalar) *ristretto.Point {
	var r ristretto.Point
	return r.ScalarMult(public, private)
}

func PublicKey(private *ristretto.Scalar) *ristretto.Point {
	var point ristretto.Point
	return point.ScalarMultBase(private)
}

func uint64ToScalar(i uint64) *ristretto.Scalar {
	var buf [32]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

func fromBytesModOrderWide(data []byte) *ristretto.Scalar {
	var data64 [64]byte
	copy(data64[:], data)
	var hs ristretto.Scalar
	return hs.SetReduced(&data64)
}

func copyScalar(s *ristretto.Scalar) *ristretto.Scalar {
	var r ristretto.Scalar
	r.SetZero()
	return r.Add(&r, s)
}

func copyPoint(p *ristretto.Point) *ristretto.Point {
	var r ristretto.Point
	r.SetZero()
	return r.Add(&r, p)
}

func isIdentity(p *ristretto.Point) bool {
	var zero ristretto.Point
	zero.SetZero()
	return p.Equals(&zero)
}

func isZeroScalar(s *ristretto.Scalar) bool {
	var zero ristretto.Scalar
	zero.SetZero()
	return s.Equals(&zero)
}

func sumPoints(points []*ristretto.Point) *ristretto.Point {
	var sum ristretto.Point
	sum.SetZero()
	for _, p := range points {
		sum.Add(&sum, p)
	}
	return &sum
}

func sumScalars(scalars []*ristretto.Scalar) *ristretto.Scalar {
	var sum ristretto.Scalar
	sum.SetZero()
	for _, s := range scalars {
		sum.Add(&sum, s)
	}
	return &sum
}

// multiscalarMul runs in constant time per term and may take secret scalars.
func multiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	var p ristretto.Point
	p.SetZero()
	for i := range scalars {
		var t ristretto.Point
		t.ScalarMult(points[i], scalars[i])
		p.Add(&p, &t)
	}
	return &p
}

// vartimeMultiscalarMul is reserved for public scalars.
func vartimeMultiscalarMul(scalars []*ristretto.Scalar, points []*ristretto.Point) *ristretto.Point {
	var r ristretto.Point
	r.SetZero()
	for i := range scalars {
		if isZeroScalar(scalars[i]) {
			continue
		}
		var rr ristretto.Point
		rr.ScalarMult(points[i], scalars[i])
		r.Add(&r, &rr)
	}
	return &r
}

func resizeUint64ToPow2(vec []uint64) []uint64 {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, vec[i-1])
	}
	return vec
}

func resizeScalarToPow2(vec []*ristretto.Scalar) []*ristretto.Scalar {
	l := nextPowerOfTwo(len(vec))
	for i := len(vec); i < l; i++ {
		vec = append(vec, copyScalar(vec[i-1]))
	}
	return vec
}

func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
