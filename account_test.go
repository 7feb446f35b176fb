package ringct

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount(t *testing.T) {
	assert := assert.New(t)

	privateV := "367ce216ecd113cd6ed49d52f4c9df63d0818ed941e72170419a70c8ec1bcd0c"
	privateS := "62afd57ca5394ce7e57323c0925af72cabad4c3b42cf9a6c6403ee9c5227740a"
	acc, err := NewAccountKey(privateV, privateS)
	require.NoError(t, err)
	assert.Equal(privateV, ScalarBytesOf(acc.View.Secret).String())
	assert.True(acc.Spend.Public.Equals(PublicKey(acc.Spend.Secret)))

	again, err := NewAccountKey(privateV, privateS)
	require.NoError(t, err)
	assert.True(acc.Address().Equals(again.Address()))

	_, err = NewAccountKey(privateV, "00")
	assert.True(errors.Is(err, ErrDecoding))
	_, err = NewAccountKey(privateV, "0000000000000000000000000000000000000000000000000000000000000000")
	assert.True(errors.Is(err, ErrDecoding))
	_, err = NewAccountKey("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", privateS)
	assert.True(errors.Is(err, ErrDecoding))
}

func TestStealthAddress(t *testing.T) {
	assert := assert.New(t)

	addr := NewAccount().Address()
	assert.Nil(addr.Validate())
	code := addr.B58Code()
	decoded, err := DecodeAddress(code)
	require.NoError(t, err)
	assert.True(decoded.Equals(addr))
	assert.Equal(code, decoded.String())

	raw := base58.Decode(code)
	raw[len(raw)-1] ^= 1
	_, err = DecodeAddress(base58.Encode(raw))
	assert.True(errors.Is(err, ErrInvalidAddress))
	_, err = DecodeAddress("abc")
	assert.True(errors.Is(err, ErrInvalidAddress))

	var zero PointBytes
	_, err = NewStealthAddress(PointBytesOf(addr.ViewPublicKey), zero)
	assert.True(errors.Is(err, ErrInvalidAddress))
	_, err = NewStealthAddress(PointBytesOf(addr.SpendPublicKey), PointBytesOf(addr.ViewPublicKey))
	assert.Nil(err)

	assert.NotNil((&StealthAddress{}).Validate())
}
