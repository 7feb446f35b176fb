package ledger_test

import (
	"errors"
	"sync"
	"testing"

	ringct "github.com/MixinNetwork/ringct-go"
	"github.com/MixinNetwork/ringct-go/ledger"
	"github.com/bwesterb/go-ristretto"
	"github.com/sclevine/spec"
	"github.com/sclevine/spec/report"
	"github.com/stretchr/testify/require"
)

func mint(t *testing.T, l *ledger.Ledger, to *ringct.StealthAddress, values ...uint64) []*ringct.TxOut {
	outs := make([]*ringct.TxOut, len(values))
	for i, v := range values {
		o, err := ringct.CreateOutput(v, to, nil)
		require.NoError(t, err)
		outs[i] = o.Output
	}
	require.NoError(t, l.AddOutputs(outs...))
	return outs
}

func randomImage() *ristretto.Point {
	var p ristretto.Point
	return p.Rand()
}

func TestLedger(t *testing.T) {
	spec.Run(t, "KeyImageSet", func(t *testing.T, when spec.G, it spec.S) {
		var set *ledger.KeyImageSet

		it.Before(func() {
			set = ledger.NewKeyImageSet()
		})

		it("inserts and reports images", func() {
			a, b := randomImage(), randomImage()
			require.NoError(t, set.Insert(a, b))
			require.True(t, set.Contains(a))
			require.True(t, set.Contains(b))
			require.Equal(t, 2, set.Count())
		})

		it("refuses a known image and inserts nothing", func() {
			a, b := randomImage(), randomImage()
			require.NoError(t, set.Insert(a))
			err := set.Insert(b, a)
			require.True(t, errors.Is(err, ringct.ErrDoubleSpend))
			require.False(t, set.Contains(b))
			require.Equal(t, 1, set.Count())
		})

		it("lets exactly one of many concurrent inserts of an image win", func() {
			image := randomImage()
			var wg sync.WaitGroup
			errs := make([]error, 32)
			for g := range errs {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					errs[g] = set.Insert(image)
				}(g)
			}
			wg.Wait()

			won := 0
			for _, err := range errs {
				if err == nil {
					won++
					continue
				}
				require.True(t, errors.Is(err, ringct.ErrDoubleSpend))
			}
			require.Equal(t, 1, won)
			require.Equal(t, 1, set.Count())
		})

		it("refuses an image repeated in one batch", func() {
			a := randomImage()
			err := set.Insert(a, a)
			require.True(t, errors.Is(err, ringct.ErrDoubleSpend))
			require.Equal(t, 0, set.Count())
		})
	}, spec.Report(report.Terminal{}))

	spec.Run(t, "OutputIndex", func(t *testing.T, when spec.G, it spec.S) {
		var l *ledger.Ledger
		var outs []*ringct.TxOut

		it.Before(func() {
			l = ledger.New()
			outs = mint(t, l, ringct.NewAccount().Address(), 1, 2, 3)
		})

		it("looks up outputs by one-time key", func() {
			indexed, found := l.Outputs.Lookup(outs[1].OneTimeKey)
			require.True(t, found)
			require.Equal(t, uint64(1), indexed.GlobalIndex)
			require.True(t, indexed.Commitment.Equals(outs[1].Commitment))

			_, found = l.Outputs.Lookup(randomImage())
			require.False(t, found)
		})

		it("refuses an output twice", func() {
			_, err := l.Outputs.Add(outs[0], ringct.CONFIDENTIAL_DENOMINATION, 9)
			require.Error(t, err)
			require.Equal(t, 3, l.Outputs.Count())
		})

		it("adds a block of outputs together or not at all", func() {
			height := l.Height()
			fresh, err := ringct.CreateOutput(4, ringct.NewAccount().Address(), nil)
			require.NoError(t, err)

			err = l.AddOutputs(fresh.Output, outs[1])
			require.True(t, errors.Is(err, ringct.ErrMalformedTransaction))
			require.Equal(t, 3, l.Outputs.Count())
			require.Len(t, l.TxOuts(), 3)
			require.Equal(t, height, l.Height())
			_, found := l.Outputs.Lookup(fresh.Output.OneTimeKey)
			require.False(t, found)

			require.NoError(t, l.AddOutputs(fresh.Output))
			require.Equal(t, height+1, l.Height())
		})

		it("returns every output as a confidential candidate", func() {
			require.Len(t, l.Outputs.Candidates(ringct.CONFIDENTIAL_DENOMINATION), 3)
			require.Len(t, l.Outputs.Candidates(7), 0)
		})

		it("skips spent outputs when selecting decoys", func() {
			require.True(t, l.Outputs.MarkSpent(outs[2].OneTimeKey))
			real, _ := l.Outputs.Lookup(outs[0].OneTimeKey)

			_, err := ringct.SelectDecoys(l.Outputs, ringct.UniformSelector{}, real, 2)
			require.True(t, errors.Is(err, ringct.ErrInsufficientDecoys))

			decoys, err := ringct.SelectDecoys(l.Outputs, ringct.UniformSelector{}, real, 1)
			require.NoError(t, err)
			require.True(t, decoys[0].OneTimeKey.Equals(outs[1].OneTimeKey))
		})
	}, spec.Report(report.Terminal{}))

	spec.Run(t, "Ledger", func(t *testing.T, when spec.G, it spec.S) {
		var l *ledger.Ledger
		var alice, bob *ringct.Account

		it.Before(func() {
			l = ledger.New()
			l.Params.RingSize = 4
			alice, bob = ringct.NewAccount(), ringct.NewAccount()
			mint(t, l, alice.Address(), 500)
			mint(t, l, ringct.NewAccount().Address(), 7, 8, 9, 10, 11)
		})

		it("applies a transfer and refuses to apply it again", func() {
			owned := ringct.ScanOutputs(l.TxOuts(), alice)
			require.Len(t, owned, 1)

			outlays, err := ringct.PlanOutlays(owned, []*ringct.Outlay{{Receiver: bob.Address(), Value: 300}}, 20, alice.Address())
			require.NoError(t, err)
			tx, err := l.Builder().Build(alice, owned, outlays, 20)
			require.NoError(t, err)

			height := l.Height()
			require.NoError(t, l.Apply(tx))
			require.Equal(t, height+1, l.Height())
			require.Equal(t, 1, l.KeyImages.Count())

			received := ringct.ScanOutputs(l.TxOuts(), bob)
			require.Len(t, received, 1)
			require.Equal(t, uint64(300), received[0].Value)

			err = l.Apply(tx)
			require.True(t, errors.Is(err, ringct.ErrDoubleSpend))

			_, err = l.Builder().Build(alice, owned, outlays, 20)
			require.True(t, errors.Is(err, ringct.ErrDoubleSpend))
		})

		it("records nothing when an output is already on the ledger", func() {
			owned := ringct.ScanOutputs(l.TxOuts(), alice)
			require.Len(t, owned, 1)

			outlays := []*ringct.Outlay{{Receiver: bob.Address(), Value: 480}}
			tx, err := l.Builder().Build(alice, owned, outlays, 20)
			require.NoError(t, err)
			require.NoError(t, ringct.VerifyTransaction(tx, l.VerifyContext()))

			// the same output lands on the ledger before tx does
			require.NoError(t, l.AddOutputs(tx.Prefix.Outputs[0]))
			height, count := l.Height(), l.Outputs.Count()

			err = ringct.VerifyTransaction(tx, l.VerifyContext())
			require.True(t, errors.Is(err, ringct.ErrMalformedTransaction))

			err = l.Apply(tx)
			require.True(t, errors.Is(err, ringct.ErrMalformedTransaction))
			require.False(t, l.KeyImages.Contains(tx.Signatures[0].KeyImage))
			require.Equal(t, 0, l.KeyImages.Count())
			require.Equal(t, height, l.Height())
			require.Equal(t, count, l.Outputs.Count())
		})

		it("honours a smaller range proof bitsize", func() {
			owned := ringct.ScanOutputs(l.TxOuts(), alice)
			l.Params.RangeBits = 32

			outlays := []*ringct.Outlay{{Receiver: bob.Address(), Value: 480}}
			tx, err := l.Builder().Build(alice, owned, outlays, 20)
			require.NoError(t, err)

			wide := l.VerifyContext()
			wide.Params = ringct.DefaultParams()
			wide.Params.RingSize = 4
			err = ringct.VerifyTransaction(tx, wide)
			require.True(t, errors.Is(err, ringct.ErrInvalidRangeProof))

			require.NoError(t, l.Apply(tx))
		})
	}, spec.Report(report.Terminal{}))
}
