package ledger

import (
	"fmt"
	"sync"

	ringct "github.com/MixinNetwork/ringct-go"
	"github.com/bwesterb/go-ristretto"
	"github.com/dolthub/swiss"
)

// KeyImageSet records spent key images. It is safe for concurrent use.
type KeyImageSet struct {
	mu     sync.Mutex
	images *swiss.Map[ringct.PointBytes, struct{}]
}

func NewKeyImageSet() *KeyImageSet {
	return &KeyImageSet{
		images: swiss.NewMap[ringct.PointBytes, struct{}](64),
	}
}

func (s *KeyImageSet) Contains(image *ristretto.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images.Has(ringct.PointBytesOf(image))
}

// Insert adds all images or, if any is already present or repeated, none.
func (s *KeyImageSet) Insert(images ...*ristretto.Point) error {
	keys := make([]ringct.PointBytes, len(images))
	batch := make(map[ringct.PointBytes]bool, len(images))
	for i, image := range images {
		keys[i] = ringct.PointBytesOf(image)
		if batch[keys[i]] {
			return fmt.Errorf("%w: key image %s repeated", ringct.ErrDoubleSpend, keys[i])
		}
		batch[keys[i]] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if s.images.Has(key) {
			return fmt.Errorf("%w: key image %s", ringct.ErrDoubleSpend, key)
		}
	}
	for _, key := range keys {
		s.images.Put(key, struct{}{})
	}
	return nil
}

func (s *KeyImageSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images.Count()
}
