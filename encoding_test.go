package ringct

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoding(t *testing.T) {
	assert := assert.New(t)

	p := randomPoint()
	pb := PointBytesOf(p)
	text, err := pb.MarshalText()
	require.NoError(t, err)
	var parsed PointBytes
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(pb, parsed)
	decoded, err := parsed.Point()
	require.NoError(t, err)
	assert.True(decoded.Equals(p))
	assert.True(errors.Is(parsed.UnmarshalText([]byte("abcd")), ErrDecoding))

	var zero PointBytes
	_, err = zero.Point()
	assert.Nil(err)
	_, err = zero.PublicKey()
	assert.True(errors.Is(err, ErrDecoding))

	// not a valid ristretto encoding
	invalid := PointBytes{1}
	_, err = invalid.Point()
	assert.True(errors.Is(err, ErrDecoding))

	s := randomScalar()
	sb := ScalarBytesOf(s)
	decodedScalar, err := sb.Scalar()
	require.NoError(t, err)
	assert.True(decodedScalar.Equals(s))
	text, err = sb.MarshalText()
	require.NoError(t, err)
	var parsedScalar ScalarBytes
	require.NoError(t, parsedScalar.UnmarshalText(text))
	assert.Equal(sb, parsedScalar)

	var high ScalarBytes
	for i := range high {
		high[i] = 0xff
	}
	_, err = high.Scalar()
	assert.True(errors.Is(err, ErrDecoding))

	var hb HexBytes
	require.NoError(t, hb.UnmarshalText([]byte("0102")))
	assert.Equal(HexBytes{1, 2}, hb)
	assert.True(errors.Is(hb.UnmarshalText([]byte("0g")), ErrDecoding))
}
