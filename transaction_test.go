package ringct

import (
	"errors"
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txFixture struct {
	index   *memIndex
	images  memImages
	alice   *Account
	bob     *Account
	owned   []*OwnedOutput
	builder *TransactionBuilder
	ctx     *VerifyContext
}

func newTxFixture(t *testing.T, values ...uint64) *txFixture {
	f := &txFixture{
		index:  &memIndex{},
		images: memImages{},
		alice:  NewAccount(),
		bob:    NewAccount(),
	}
	var outs []*TxOut
	for _, v := range values {
		outs = append(outs, mintTo(t, f.index, f.alice.Address(), v))
	}
	mintDecoys(t, f.index, 8)
	f.owned = ScanOutputs(outs, f.alice)
	require.Len(t, f.owned, len(values))

	params := DefaultParams()
	params.RingSize = 4
	f.builder = NewTransactionBuilder(f.index)
	f.builder.Params = params
	f.builder.KeyImages = f.images
	f.ctx = NewVerifyContext(f.index, f.images)
	f.ctx.Params = params
	return f
}

func TestTransaction(t *testing.T) {
	assert := assert.New(t)

	f := newTxFixture(t, 70, 50)
	outlays := []*Outlay{{Receiver: f.bob.Address(), Value: 100, Memo: []byte("rent")}}
	outlays, err := PlanOutlays(f.owned, outlays, 5, f.alice.Address())
	require.NoError(t, err)
	require.Len(t, outlays, 2)
	assert.Equal(uint64(15), outlays[1].Value)

	tx, err := f.builder.Build(f.alice, f.owned, outlays, 5)
	require.NoError(t, err)
	assert.Len(tx.Prefix.Inputs, 2)
	assert.Len(tx.Prefix.Outputs, 2)
	for _, in := range tx.Prefix.Inputs {
		assert.Len(in.Ring, 4)
	}
	assert.Nil(VerifyTransaction(tx, f.ctx))

	received := ScanOutputs(tx.Prefix.Outputs, f.bob)
	require.Len(t, received, 1)
	assert.Equal(uint64(100), received[0].Value)
	memo, err := DecryptOutputMemo(received[0].Output, f.bob.View.Secret)
	require.NoError(t, err)
	assert.Equal([]byte("rent"), memo)
	change := ScanOutputs(tx.Prefix.Outputs, f.alice)
	require.Len(t, change, 1)
	assert.Equal(uint64(15), change[0].Value)

	data, err := MarshalTx(tx)
	require.NoError(t, err)
	decoded, err := UnmarshalTx(data)
	require.NoError(t, err)
	assert.Nil(VerifyTransaction(decoded, f.ctx))

	require.NoError(t, AcceptTransaction(tx, f.ctx))
	assert.True(errors.Is(VerifyTransaction(tx, f.ctx), ErrDoubleSpend))
	assert.True(errors.Is(AcceptTransaction(tx, f.ctx), ErrDoubleSpend))

	_, err = f.builder.Build(f.alice, f.owned, outlays, 5)
	assert.True(errors.Is(err, ErrDoubleSpend))

	// a second, independently valid spend of the same outputs is caught
	// only by the key image set
	f.builder.KeyImages = nil
	second, err := f.builder.Build(f.alice, f.owned, outlays, 5)
	require.NoError(t, err)
	ctx := NewVerifyContext(f.index, nil)
	ctx.Params = f.ctx.Params
	assert.Nil(VerifyTransaction(second, ctx))
	assert.True(errors.Is(VerifyTransaction(second, f.ctx), ErrDoubleSpend))
}

func TestTransactionImbalance(t *testing.T) {
	assert := assert.New(t)

	f := newTxFixture(t, 100)
	outlays := []*Outlay{{Receiver: f.bob.Address(), Value: 96}}
	_, err := f.builder.Build(f.alice, f.owned, outlays, 5)
	assert.True(errors.Is(err, ErrImbalancedTransaction))

	_, err = PlanOutlays(f.owned, []*Outlay{{Receiver: f.bob.Address(), Value: 101}}, 0, f.alice.Address())
	assert.True(errors.Is(err, ErrImbalancedTransaction))
	_, err = PlanOutlays(f.owned, outlays, 1, nil)
	assert.True(errors.Is(err, ErrImbalancedTransaction))

	// skipping the cleartext check, the commitments no longer balance
	tx, err := f.builder.assemble(f.alice, f.owned, outlays, 5)
	require.NoError(t, err)
	assert.True(errors.Is(VerifyTransaction(tx, f.ctx), ErrImbalancedTransaction))
}

func TestTransactionTampering(t *testing.T) {
	f := newTxFixture(t, 100)
	outlays := []*Outlay{{Receiver: f.bob.Address(), Value: 95}}

	for _, c := range []struct {
		name   string
		tamper func(tx *Tx)
		err    error
	}{
		{"fee", func(tx *Tx) { tx.Prefix.Fee++ }, ErrInvalidSignature},
		{"masked value", func(tx *Tx) { tx.Prefix.Outputs[0].EncodedAmount ^= 1 }, ErrInvalidSignature},
		{"range proof", func(tx *Tx) { tx.Prefix.Outputs[0].RangeProof[200] ^= 1 }, ErrInvalidSignature},
		{"ring size", func(tx *Tx) { tx.Prefix.Inputs[0].Ring = tx.Prefix.Inputs[0].Ring[:3] }, ErrMalformedTransaction},
		{"duplicate member", func(tx *Tx) { tx.Prefix.Inputs[0].Ring[1] = tx.Prefix.Inputs[0].Ring[0] }, ErrMalformedTransaction},
		{"missing signature", func(tx *Tx) { tx.Signatures = nil }, ErrMalformedTransaction},
		{"key image", func(tx *Tx) { tx.Signatures[0].KeyImage = randomPoint() }, ErrInvalidSignature},
		{"unknown member", func(tx *Tx) {
			ring := tx.Prefix.Inputs[0].Ring
			ring[0] = &RingMember{OneTimeKey: randomPoint(), Commitment: ring[0].Commitment}
		}, ErrInvalidSignature},
	} {
		t.Run(c.name, func(t *testing.T) {
			tx, err := f.builder.Build(f.alice, f.owned, outlays, 5)
			require.NoError(t, err)
			require.Nil(t, VerifyTransaction(tx, f.ctx))
			c.tamper(tx)
			assert.True(t, errors.Is(VerifyTransaction(tx, f.ctx), c.err))
		})
	}
}

// offByOneProver signs a proof for value+1 into the prefix, next to the
// commitment to value itself.
type offByOneProver struct {
	*Bulletproofs
}

func (p offByOneProver) ProveRange(value uint64, blinding *ristretto.Scalar) ([]byte, *ristretto.Point, error) {
	proof, _, err := p.Bulletproofs.ProveRange(value+1, blinding)
	if err != nil {
		return nil, nil, err
	}
	return proof, Commit(value, blinding), nil
}

func TestTransactionRangeProof(t *testing.T) {
	assert := assert.New(t)

	f := newTxFixture(t, 100)
	outlays := []*Outlay{{Receiver: f.bob.Address(), Value: 95}}
	f.builder.RangeProver = offByOneProver{NewBulletproofs()}
	tx, err := f.builder.Build(f.alice, f.owned, outlays, 5)
	require.NoError(t, err)

	err = VerifyTransaction(tx, f.ctx)
	assert.True(errors.Is(err, ErrInvalidRangeProof))
	assert.False(errors.Is(err, ErrInvalidSignature))
	assert.False(errors.Is(err, ErrImbalancedTransaction))
}

func TestTransactionRangeBits(t *testing.T) {
	assert := assert.New(t)

	f := newTxFixture(t, 100, 1<<33)
	f.builder.Params.RangeBits = 32
	f.ctx.Params.RangeBits = 32

	tx, err := f.builder.Build(f.alice, f.owned[:1], []*Outlay{{Receiver: f.bob.Address(), Value: 95}}, 5)
	require.NoError(t, err)
	assert.Nil(VerifyTransaction(tx, f.ctx))

	wide := NewVerifyContext(f.index, nil)
	wide.Params.RingSize = f.ctx.Params.RingSize
	assert.True(errors.Is(VerifyTransaction(tx, wide), ErrInvalidRangeProof))

	_, err = f.builder.Build(f.alice, f.owned[1:], []*Outlay{{Receiver: f.bob.Address(), Value: 1<<33 - 5}}, 5)
	assert.NotNil(err)
}

// a correctly signed transaction over a ring member the ledger has never
// seen is refused only by the membership check
func TestTransactionUnknownMember(t *testing.T) {
	f := newTxFixture(t, 100)
	outlays := []*Outlay{{Receiver: f.bob.Address(), Value: 95}}
	tx, err := f.builder.Build(f.alice, f.owned, outlays, 5)
	require.NoError(t, err)

	dropped := tx.Prefix.Inputs[0].Ring[0].OneTimeKey
	foreign := &memIndex{}
	for _, o := range f.index.outputs {
		if !o.OneTimeKey.Equals(dropped) {
			foreign.outputs = append(foreign.outputs, o)
		}
	}
	require.Len(t, foreign.outputs, len(f.index.outputs)-1)

	ctx := NewVerifyContext(foreign, nil)
	ctx.Params = f.ctx.Params
	assert.True(t, errors.Is(VerifyTransaction(tx, ctx), ErrUnknownRingMember))

	ctx.Outputs = nil
	assert.Nil(t, VerifyTransaction(tx, ctx))
	assert.NotNil(t, AcceptTransaction(tx, ctx))
}

func TestTransactionSignatureRejectsIdentityMember(t *testing.T) {
	f := newTxFixture(t, 100)
	tx, err := f.builder.Build(f.alice, f.owned, []*Outlay{{Receiver: f.bob.Address(), Value: 95}}, 5)
	require.NoError(t, err)

	var identity ristretto.Point
	identity.SetZero()
	tx.Prefix.Inputs[0].Ring[2] = &RingMember{OneTimeKey: &identity, Commitment: randomPoint()}
	assert.True(t, errors.Is(VerifyTransaction(tx, f.ctx), ErrMalformedTransaction))
}
