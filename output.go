package ringct

import (
	"bytes"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
)

// OneTimeOutput is the receiving half of a payment, unlinkable to the
// recipient's address.
type OneTimeOutput struct {
	OneTimeKey    *ristretto.Point
	EphemeralKey  *ristretto.Point
	EncodedAmount uint64
}

// DeriveOneTimeOutput picks a fresh ephemeral secret r and returns it with
// the output. The caller owns r and should wipe it.
func DeriveOneTimeOutput(receiver *StealthAddress, amount uint64) (*OneTimeOutput, *ristretto.Scalar, error) {
	if err := receiver.Validate(); err != nil {
		return nil, nil, err
	}
	var r ristretto.Scalar
	r.Rand()
	output, shared := deriveOneTimeOutput(&r, receiver, amount)
	wipePoint(shared)
	return output, &r, nil
}

// R = r*G, shared = r*V, P = Hs(shared)*G + S
func deriveOneTimeOutput(r *ristretto.Scalar, receiver *StealthAddress, amount uint64) (*OneTimeOutput, *ristretto.Point) {
	shared := createSharedSecret(receiver.ViewPublicKey, r)
	return &OneTimeOutput{
		OneTimeKey:    createOnetimePublicKey(shared, receiver.SpendPublicKey),
		EphemeralKey:  PublicKey(r),
		EncodedAmount: encodeAmount(amount, shared),
	}, shared
}

func createOnetimePublicKey(shared, spend *ristretto.Point) *ristretto.Point {
	hs := sharedSecretScalar(shared)
	defer wipeScalar(hs)
	var r ristretto.Point
	return r.Add(PublicKey(hs), spend)
}

func IsMine(output *OneTimeOutput, address *StealthAddress, viewSecret *ristretto.Scalar) bool {
	if output == nil || output.EphemeralKey == nil || output.OneTimeKey == nil || address.Validate() != nil {
		return false
	}
	shared := createSharedSecret(output.EphemeralKey, viewSecret)
	defer wipePoint(shared)
	return createOnetimePublicKey(shared, address.SpendPublicKey).Equals(output.OneTimeKey)
}

// DeriveSpendSecret returns x = s + Hs(v*R), failing unless x*G is the
// output's one-time key.
func DeriveSpendSecret(output *OneTimeOutput, spendSecret, viewSecret *ristretto.Scalar) (*ristretto.Scalar, error) {
	shared := createSharedSecret(output.EphemeralKey, viewSecret)
	defer wipePoint(shared)
	hs := sharedSecretScalar(shared)
	defer wipeScalar(hs)

	var x ristretto.Scalar
	x.Add(hs, spendSecret)
	if !PublicKey(&x).Equals(output.OneTimeKey) {
		wipeScalar(&x)
		return nil, ErrNotOwned
	}
	return &x, nil
}

// DecodeAmount recovers the value and blinding of an output addressed to the
// holder of viewSecret.
func DecodeAmount(output *OneTimeOutput, viewSecret *ristretto.Scalar) (uint64, *ristretto.Scalar) {
	shared := createSharedSecret(output.EphemeralKey, viewSecret)
	defer wipePoint(shared)
	return decodeAmount(output.EncodedAmount, shared)
}

// ConfirmationNumber lets a sender prove a payment to its recipient.
func ConfirmationNumber(shared *ristretto.Point) []byte {
	hash := blake2b.New256()
	hash.Write([]byte(TXOUT_CONFIRMATION_NUMBER_DOMAIN_TAG))
	hash.Write(shared.Bytes())
	return hash.Sum(nil)
}

func ValidateConfirmation(output *OneTimeOutput, viewSecret *ristretto.Scalar, confirmation []byte) bool {
	shared := createSharedSecret(output.EphemeralKey, viewSecret)
	defer wipePoint(shared)
	return bytes.Equal(ConfirmationNumber(shared), confirmation)
}

// OutputAndSharedSecret is a built output together with what the sender
// needs to balance and prove it.
type OutputAndSharedSecret struct {
	Output       *TxOut
	SharedSecret *ristretto.Point
	Receiver     *StealthAddress
	Value        uint64
	Blinding     *ristretto.Scalar
}

func (o *OutputAndSharedSecret) Confirmation() []byte {
	return ConfirmationNumber(o.SharedSecret)
}

func (o *OutputAndSharedSecret) Wipe() {
	wipeScalar(o.Blinding)
	wipePoint(o.SharedSecret)
}

// CreateOutput derives a one-time destination for recipient, commits to value
// and encrypts memo. The range proof is attached by the builder.
func CreateOutput(value uint64, recipient *StealthAddress, memo []byte) (*OutputAndSharedSecret, error) {
	if err := recipient.Validate(); err != nil {
		return nil, err
	}
	if len(memo) > MAX_MEMO_SIZE {
		return nil, fmt.Errorf("memo too large %d", len(memo))
	}

	var r ristretto.Scalar
	r.Rand()
	defer wipeScalar(&r)

	output, shared := deriveOneTimeOutput(&r, recipient, value)
	blinding := amountBlinding(shared)
	eMemo, err := EncryptMemo(memo, shared)
	if err != nil {
		return nil, err
	}

	return &OutputAndSharedSecret{
		Output: &TxOut{
			Commitment:    Commit(value, blinding),
			OneTimeKey:    output.OneTimeKey,
			EphemeralKey:  output.EphemeralKey,
			EncodedAmount: output.EncodedAmount,
			EMemo:         eMemo,
		},
		SharedSecret: shared,
		Receiver:     recipient,
		Value:        value,
		Blinding:     blinding,
	}, nil
}
