package ringct

import "github.com/bwesterb/go-ristretto"

// OwnedOutput is an output the wallet can spend, with everything needed to
// sign for it.
type OwnedOutput struct {
	Output      *TxOut
	Value       uint64
	Blinding    *ristretto.Scalar
	SpendSecret *ristretto.Scalar
	KeyImage    *ristretto.Point
}

func (o *OwnedOutput) Wipe() {
	wipeScalar(o.Blinding)
	wipeScalar(o.SpendSecret)
}

// ScanOutputs returns the outputs addressed to account. Outputs whose
// commitment does not reopen to the decoded amount are skipped.
func ScanOutputs(outputs []*TxOut, account *Account) []*OwnedOutput {
	address := account.Address()
	var owned []*OwnedOutput
	for _, out := range outputs {
		if out == nil || out.Commitment == nil {
			continue
		}
		oto := out.OneTimeOutput()
		if !IsMine(oto, address, account.View.Secret) {
			continue
		}
		secret, err := DeriveSpendSecret(oto, account.Spend.Secret, account.View.Secret)
		if err != nil {
			continue
		}
		value, blinding := DecodeAmount(oto, account.View.Secret)
		if !Commit(value, blinding).Equals(out.Commitment) {
			wipeScalar(secret)
			wipeScalar(blinding)
			continue
		}
		owned = append(owned, &OwnedOutput{
			Output:      out,
			Value:       value,
			Blinding:    blinding,
			SpendSecret: secret,
			KeyImage:    keyImage(secret, out.OneTimeKey),
		})
	}
	return owned
}
