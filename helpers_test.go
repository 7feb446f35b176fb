package ringct

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/require"
)

type memIndex struct {
	outputs []*IndexedOutput
}

func (m *memIndex) Candidates(denomination uint64) []*IndexedOutput {
	return m.outputs
}

func (m *memIndex) Lookup(key *ristretto.Point) (*IndexedOutput, bool) {
	for _, o := range m.outputs {
		if o.OneTimeKey.Equals(key) {
			return o, true
		}
	}
	return nil, false
}

func (m *memIndex) add(out *TxOut) *IndexedOutput {
	indexed := &IndexedOutput{
		GlobalIndex: uint64(len(m.outputs)),
		OneTimeKey:  out.OneTimeKey,
		Commitment:  out.Commitment,
		Height:      uint64(len(m.outputs)),
	}
	m.outputs = append(m.outputs, indexed)
	return indexed
}

type memImages map[PointBytes]bool

func (m memImages) Contains(image *ristretto.Point) bool {
	return m[PointBytesOf(image)]
}

func (m memImages) Insert(images ...*ristretto.Point) error {
	for _, image := range images {
		if m[PointBytesOf(image)] {
			return ErrDoubleSpend
		}
	}
	for _, image := range images {
		m[PointBytesOf(image)] = true
	}
	return nil
}

func mintTo(t *testing.T, index *memIndex, to *StealthAddress, value uint64) *TxOut {
	out, err := CreateOutput(value, to, nil)
	require.NoError(t, err)
	index.add(out.Output)
	return out.Output
}

func mintDecoys(t *testing.T, index *memIndex, count int) {
	for i := 0; i < count; i++ {
		mintTo(t, index, NewAccount().Address(), uint64(i+1))
	}
}

func randomPoint() *ristretto.Point {
	var p ristretto.Point
	return p.Rand()
}
