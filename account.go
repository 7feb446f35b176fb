package ringct

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/btcsuite/btcutil/base58"
	"github.com/bwesterb/go-ristretto"
	"google.golang.org/protobuf/encoding/protowire"
)

type KeyPair struct {
	Secret *ristretto.Scalar
	Public *ristretto.Point
}

func GenerateKeyPair() *KeyPair {
	var secret ristretto.Scalar
	secret.Rand()
	return NewKeyPair(&secret)
}

func NewKeyPair(secret *ristretto.Scalar) *KeyPair {
	return &KeyPair{
		Secret: secret,
		Public: PublicKey(secret),
	}
}

func (kp *KeyPair) Wipe() {
	wipeScalar(kp.Secret)
}

// Account holds the view and spend key pairs of one wallet.
type Account struct {
	View  *KeyPair
	Spend *KeyPair
}

func NewAccount() *Account {
	return &Account{
		View:  GenerateKeyPair(),
		Spend: GenerateKeyPair(),
	}
}

func NewAccountKey(viewPrivate, spendPrivate string) (*Account, error) {
	view, err := hexToScalar(viewPrivate)
	if err != nil {
		return nil, fmt.Errorf("view key: %w", err)
	}
	spend, err := hexToScalar(spendPrivate)
	if err != nil {
		return nil, fmt.Errorf("spend key: %w", err)
	}
	if isZeroScalar(view) || isZeroScalar(spend) {
		return nil, fmt.Errorf("%w: zero secret key", ErrDecoding)
	}
	return &Account{
		View:  NewKeyPair(view),
		Spend: NewKeyPair(spend),
	}, nil
}

func (account *Account) Address() *StealthAddress {
	return &StealthAddress{
		ViewPublicKey:  copyPoint(account.View.Public),
		SpendPublicKey: copyPoint(account.Spend.Public),
	}
}

func (account *Account) Wipe() {
	account.View.Wipe()
	account.Spend.Wipe()
}

type StealthAddress struct {
	ViewPublicKey  *ristretto.Point
	SpendPublicKey *ristretto.Point
}

func NewStealthAddress(view, spend PointBytes) (*StealthAddress, error) {
	v, err := view.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("%w: view key %v", ErrInvalidAddress, err)
	}
	s, err := spend.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("%w: spend key %v", ErrInvalidAddress, err)
	}
	return &StealthAddress{ViewPublicKey: v, SpendPublicKey: s}, nil
}

func (a *StealthAddress) Validate() error {
	if a == nil || a.ViewPublicKey == nil || a.SpendPublicKey == nil {
		return fmt.Errorf("%w: missing key", ErrInvalidAddress)
	}
	if isIdentity(a.ViewPublicKey) || isIdentity(a.SpendPublicKey) {
		return fmt.Errorf("%w: identity key", ErrInvalidAddress)
	}
	return nil
}

func (a *StealthAddress) Equals(b *StealthAddress) bool {
	return a.ViewPublicKey.Equals(b.ViewPublicKey) && a.SpendPublicKey.Equals(b.SpendPublicKey)
}

const (
	addressViewField  protowire.Number = 1
	addressSpendField protowire.Number = 2
)

// B58Code is crc32(payload) || payload in base58, the payload carrying both
// public keys as length-delimited fields.
func (a *StealthAddress) B58Code() string {
	var data []byte
	data = protowire.AppendTag(data, addressViewField, protowire.BytesType)
	data = protowire.AppendBytes(data, a.ViewPublicKey.Bytes())
	data = protowire.AppendTag(data, addressSpendField, protowire.BytesType)
	data = protowire.AppendBytes(data, a.SpendPublicKey.Bytes())

	buf := make([]byte, 4, 4+len(data))
	binary.LittleEndian.PutUint32(buf, crc32.ChecksumIEEE(data))
	buf = append(buf, data...)
	return base58.Encode(buf)
}

func (a *StealthAddress) String() string {
	return a.B58Code()
}

func DecodeAddress(address string) (*StealthAddress, error) {
	data := base58.Decode(address)
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	sum := make([]byte, 4)
	binary.LittleEndian.PutUint32(sum, crc32.ChecksumIEEE(data[4:]))
	if !bytes.Equal(sum, data[:4]) {
		return nil, fmt.Errorf("%w: checksum %s", ErrInvalidAddress, address)
	}

	var view, spend PointBytes
	payload := data[4:]
	for _, field := range []struct {
		num protowire.Number
		key *PointBytes
	}{{addressViewField, &view}, {addressSpendField, &spend}} {
		num, typ, n := protowire.ConsumeTag(payload)
		if n < 0 || num != field.num || typ != protowire.BytesType {
			return nil, fmt.Errorf("%w: field %d", ErrInvalidAddress, field.num)
		}
		payload = payload[n:]
		v, n := protowire.ConsumeBytes(payload)
		if n < 0 || len(v) != POINT_SIZE {
			return nil, fmt.Errorf("%w: field %d", ErrInvalidAddress, field.num)
		}
		copy(field.key[:], v)
		payload = payload[n:]
	}
	if len(payload) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", ErrInvalidAddress)
	}
	return NewStealthAddress(view, spend)
}
