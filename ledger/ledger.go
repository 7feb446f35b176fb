// Package ledger holds in-memory reference implementations of the
// collaborators a ringct transaction is built and verified against.
package ledger

import (
	"sync"

	ringct "github.com/MixinNetwork/ringct-go"
)

type Ledger struct {
	Params    *ringct.Params
	Outputs   *OutputIndex
	KeyImages *KeyImageSet

	mu     sync.Mutex
	height uint64
	txOuts []*ringct.TxOut
}

func New() *Ledger {
	return &Ledger{
		Params:    ringct.DefaultParams(),
		Outputs:   NewOutputIndex(),
		KeyImages: NewKeyImageSet(),
	}
}

func (l *Ledger) Height() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height
}

// AddOutputs records outs in a new block.
func (l *Ledger) AddOutputs(outs ...*ringct.TxOut) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addOutputs(outs)
}

func (l *Ledger) addOutputs(outs []*ringct.TxOut) error {
	if _, err := l.Outputs.AddAll(outs, ringct.CONFIDENTIAL_DENOMINATION, l.height); err != nil {
		return err
	}
	l.txOuts = append(l.txOuts, outs...)
	l.height++
	return nil
}

// TxOuts returns every recorded output, for wallets to scan.
func (l *Ledger) TxOuts() []*ringct.TxOut {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*ringct.TxOut(nil), l.txOuts...)
}

func (l *Ledger) VerifyContext() *ringct.VerifyContext {
	ctx := ringct.NewVerifyContext(l.Outputs, l.KeyImages)
	ctx.Params = l.Params
	return ctx
}

func (l *Ledger) Builder() *ringct.TransactionBuilder {
	tb := ringct.NewTransactionBuilder(l.Outputs)
	tb.Params = l.Params
	tb.KeyImages = l.KeyImages
	return tb
}

// Apply accepts tx and adds its outputs in a new block. On error nothing is
// recorded, neither key images nor outputs.
func (l *Ledger) Apply(tx *ringct.Tx) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ringct.VerifyTransaction(tx, l.VerifyContext()); err != nil {
		return err
	}
	if err := l.Outputs.CheckNew(tx.Prefix.Outputs); err != nil {
		return err
	}
	if err := l.KeyImages.Insert(tx.KeyImages()...); err != nil {
		return err
	}
	return l.addOutputs(tx.Prefix.Outputs)
}
