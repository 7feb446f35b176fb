package ledger

import (
	"fmt"
	"sync"

	ringct "github.com/MixinNetwork/ringct-go"
	"github.com/bwesterb/go-ristretto"
	"github.com/dolthub/swiss"
)

// OutputIndex is an in-memory ringct.OutputIndex.
type OutputIndex struct {
	mu             sync.RWMutex
	outputs        []*ringct.IndexedOutput
	byKey          *swiss.Map[ringct.PointBytes, *ringct.IndexedOutput]
	byDenomination *swiss.Map[uint64, []*ringct.IndexedOutput]
}

func NewOutputIndex() *OutputIndex {
	return &OutputIndex{
		byKey:          swiss.NewMap[ringct.PointBytes, *ringct.IndexedOutput](256),
		byDenomination: swiss.NewMap[uint64, []*ringct.IndexedOutput](8),
	}
}

// Add records an output, assigning it the next global index.
func (idx *OutputIndex) Add(out *ringct.TxOut, denomination, height uint64) (*ringct.IndexedOutput, error) {
	indexed, err := idx.AddAll([]*ringct.TxOut{out}, denomination, height)
	if err != nil {
		return nil, err
	}
	return indexed[0], nil
}

// AddAll records every output or, if any is incomplete, repeated or already
// indexed, none.
func (idx *OutputIndex) AddAll(outs []*ringct.TxOut, denomination, height uint64) ([]*ringct.IndexedOutput, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := idx.checkNew(outs); err != nil {
		return nil, err
	}
	indexed := make([]*ringct.IndexedOutput, len(outs))
	for i, out := range outs {
		indexed[i] = idx.add(out, denomination, height)
	}
	return indexed, nil
}

// CheckNew reports whether AddAll would accept outs.
func (idx *OutputIndex) CheckNew(outs []*ringct.TxOut) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.checkNew(outs)
}

func (idx *OutputIndex) checkNew(outs []*ringct.TxOut) error {
	batch := make(map[ringct.PointBytes]bool, len(outs))
	for i, out := range outs {
		if out == nil || out.OneTimeKey == nil || out.Commitment == nil {
			return fmt.Errorf("%w: incomplete output %d", ringct.ErrMalformedTransaction, i)
		}
		key := ringct.PointBytesOf(out.OneTimeKey)
		if batch[key] || idx.byKey.Has(key) {
			return fmt.Errorf("%w: output %s already indexed", ringct.ErrMalformedTransaction, key)
		}
		batch[key] = true
	}
	return nil
}

func (idx *OutputIndex) add(out *ringct.TxOut, denomination, height uint64) *ringct.IndexedOutput {
	key := ringct.PointBytesOf(out.OneTimeKey)
	indexed := &ringct.IndexedOutput{
		GlobalIndex:  uint64(len(idx.outputs)),
		OneTimeKey:   out.OneTimeKey,
		Commitment:   out.Commitment,
		Denomination: denomination,
		Height:       height,
	}
	idx.outputs = append(idx.outputs, indexed)
	idx.byKey.Put(key, indexed)
	group, _ := idx.byDenomination.Get(denomination)
	idx.byDenomination.Put(denomination, append(group, indexed))
	return indexed
}

// Candidates returns every output for the confidential denomination,
// otherwise only outputs of the given denomination.
func (idx *OutputIndex) Candidates(denomination uint64) []*ringct.IndexedOutput {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if denomination == ringct.CONFIDENTIAL_DENOMINATION {
		return append([]*ringct.IndexedOutput(nil), idx.outputs...)
	}
	group, _ := idx.byDenomination.Get(denomination)
	return append([]*ringct.IndexedOutput(nil), group...)
}

func (idx *OutputIndex) Lookup(oneTimeKey *ristretto.Point) (*ringct.IndexedOutput, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.byKey.Get(ringct.PointBytesOf(oneTimeKey))
}

// MarkSpent excludes an output known to be spent from future decoy picks.
func (idx *OutputIndex) MarkSpent(oneTimeKey *ristretto.Point) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	indexed, found := idx.byKey.Get(ringct.PointBytesOf(oneTimeKey))
	if found {
		indexed.Spent = true
	}
	return found
}

func (idx *OutputIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.outputs)
}
