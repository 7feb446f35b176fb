package main

import (
	"flag"
	"log"
	"os"

	ringct "github.com/MixinNetwork/ringct-go"
	"github.com/MixinNetwork/ringct-go/ledger"
)

func main() {
	ringSize := flag.Int("ring", ringct.RING_SIZE, "ring size of every input")
	amount := flag.String("amount", "1.5", "amount sent to bob")
	fee := flag.String("fee", "0.0004", "transaction fee")
	funds := flag.String("funds", "10", "amount minted to alice")
	decoys := flag.Int("decoys", 64, "unrelated outputs minted as decoys")
	memo := flag.String("memo", "hello bob", "memo attached to bob's output")
	flag.Parse()

	if err := run(*ringSize, *amount, *fee, *funds, *decoys, *memo); err != nil {
		log.Println("rctdemo", err)
		os.Exit(1)
	}
}

func run(ringSize int, amountStr, feeStr, fundsStr string, decoys int, memo string) error {
	amount, err := ringct.ParseAmount(amountStr)
	if err != nil {
		return err
	}
	fee, err := ringct.ParseAmount(feeStr)
	if err != nil {
		return err
	}
	funds, err := ringct.ParseAmount(fundsStr)
	if err != nil {
		return err
	}

	l := ledger.New()
	l.Params.RingSize = ringSize
	if err := l.Params.Validate(); err != nil {
		return err
	}

	alice, bob := ringct.NewAccount(), ringct.NewAccount()
	defer alice.Wipe()
	defer bob.Wipe()
	log.Println("alice", alice.Address())
	log.Println("bob", bob.Address())

	if err := mint(l, alice.Address(), funds); err != nil {
		return err
	}
	for i := 0; i < decoys; i++ {
		if err := mint(l, ringct.NewAccount().Address(), uint64(i+1)*ringct.ATOMIC_UNITS); err != nil {
			return err
		}
	}
	log.Println("ledger height", l.Height(), "outputs", l.Outputs.Count())

	owned := ringct.ScanOutputs(l.TxOuts(), alice)
	defer func() {
		for _, o := range owned {
			o.Wipe()
		}
	}()
	outlays := []*ringct.Outlay{{Receiver: bob.Address(), Value: amount, Memo: []byte(memo)}}
	outlays, err = ringct.PlanOutlays(owned, outlays, fee, alice.Address())
	if err != nil {
		return err
	}

	tx, err := l.Builder().Build(alice, owned, outlays, fee)
	if err != nil {
		return err
	}
	if err := l.Apply(tx); err != nil {
		return err
	}
	hash, err := tx.Hash()
	if err != nil {
		return err
	}
	log.Printf("applied tx %x fee %s", hash, ringct.FormatAmount(fee))

	doc, err := ringct.MarshalTxJSON(tx)
	if err != nil {
		return err
	}
	os.Stdout.Write(append(doc, '\n'))

	for _, o := range ringct.ScanOutputs(tx.Prefix.Outputs, bob) {
		plain, err := ringct.DecryptOutputMemo(o.Output, bob.View.Secret)
		if err != nil {
			return err
		}
		log.Printf("bob received %s memo %q", ringct.FormatAmount(o.Value), plain)
		o.Wipe()
	}
	return nil
}

func mint(l *ledger.Ledger, to *ringct.StealthAddress, value uint64) error {
	out, err := ringct.CreateOutput(value, to, nil)
	if err != nil {
		return err
	}
	defer out.Wipe()
	return l.AddOutputs(out.Output)
}
