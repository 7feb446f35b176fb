package ringct

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/bwesterb/go-ristretto"
)

// CONFIDENTIAL_DENOMINATION selects decoys from every output, amounts being
// hidden.
const CONFIDENTIAL_DENOMINATION uint64 = 0

type RingMember struct {
	OneTimeKey *ristretto.Point
	Commitment *ristretto.Point
}

type Ring struct {
	Members   []*RingMember
	RealIndex int
	KeyImage  *ristretto.Point
}

func (r *Ring) PublicKeys() []*ristretto.Point {
	keys := make([]*ristretto.Point, len(r.Members))
	for i, m := range r.Members {
		keys[i] = m.OneTimeKey
	}
	return keys
}

// IndexedOutput is an output as recorded by the ledger.
type IndexedOutput struct {
	GlobalIndex  uint64
	OneTimeKey   *ristretto.Point
	Commitment   *ristretto.Point
	Denomination uint64
	Height       uint64
	Spent        bool
}

func (o *IndexedOutput) Member() *RingMember {
	return &RingMember{
		OneTimeKey: o.OneTimeKey,
		Commitment: o.Commitment,
	}
}

// OutputIndex is the read-only view of the ledger used to pick decoys and to
// check ring membership.
type OutputIndex interface {
	Candidates(denomination uint64) []*IndexedOutput
	Lookup(oneTimeKey *ristretto.Point) (*IndexedOutput, bool)
}

// SelectDecoys picks count unspent outputs of the real output's denomination,
// never the real output itself.
func SelectDecoys(index OutputIndex, selector DecoySelector, real *IndexedOutput, count int) ([]*IndexedOutput, error) {
	realKey := PointBytesOf(real.OneTimeKey)
	seen := map[PointBytes]bool{realKey: true}

	var eligible []*IndexedOutput
	for _, c := range index.Candidates(real.Denomination) {
		if c.Spent || c.OneTimeKey == nil {
			continue
		}
		if real.Denomination != CONFIDENTIAL_DENOMINATION && c.Denomination != real.Denomination {
			continue
		}
		key := PointBytesOf(c.OneTimeKey)
		if seen[key] {
			continue
		}
		seen[key] = true
		eligible = append(eligible, c)
	}
	if len(eligible) < count {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientDecoys, count, len(eligible))
	}

	decoys, err := selector.Select(eligible, count)
	if err != nil {
		return nil, err
	}
	if len(decoys) != count {
		return nil, fmt.Errorf("%w: selector returned %d of %d", ErrInsufficientDecoys, len(decoys), count)
	}
	return decoys, nil
}

// BuildRing places the real member at a uniformly random slot and computes
// its key image.
func BuildRing(real *RingMember, realSecret *ristretto.Scalar, decoys []*RingMember) (*Ring, error) {
	if !PublicKey(realSecret).Equals(real.OneTimeKey) {
		return nil, ErrNotOwned
	}

	seen := map[PointBytes]bool{PointBytesOf(real.OneTimeKey): true}
	for _, d := range decoys {
		key := PointBytesOf(d.OneTimeKey)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate ring member %s", ErrInsufficientDecoys, key)
		}
		seen[key] = true
	}

	position, err := randomIndex(len(decoys) + 1)
	if err != nil {
		return nil, err
	}
	members := make([]*RingMember, 0, len(decoys)+1)
	members = append(members, decoys[:position]...)
	members = append(members, real)
	members = append(members, decoys[position:]...)

	return &Ring{
		Members:   members,
		RealIndex: position,
		KeyImage:  keyImage(realSecret, real.OneTimeKey),
	}, nil
}

func randomIndex(n int) (int, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(i.Int64()), nil
}
