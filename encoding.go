package ringct

import (
	"bytes"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/tmthrgd/go-hex"
)

const (
	POINT_SIZE  = 32
	SCALAR_SIZE = 32
)

// PointBytes is the compressed wire form of a group element.
type PointBytes [POINT_SIZE]byte

func PointBytesOf(p *ristretto.Point) PointBytes {
	var b PointBytes
	copy(b[:], p.Bytes())
	return b
}

func (b PointBytes) Point() (*ristretto.Point, error) {
	return decodePoint(b[:])
}

// PublicKey decodes b and rejects the identity.
func (b PointBytes) PublicKey() (*ristretto.Point, error) {
	return decodePublicKey(b[:])
}

func (b PointBytes) String() string {
	return hex.EncodeToString(b[:])
}

func (b PointBytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *PointBytes) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil || len(buf) != POINT_SIZE {
		return fmt.Errorf("%w: point hex %q", ErrDecoding, text)
	}
	copy(b[:], buf)
	return nil
}

type ScalarBytes [SCALAR_SIZE]byte

func ScalarBytesOf(s *ristretto.Scalar) ScalarBytes {
	var b ScalarBytes
	copy(b[:], s.Bytes())
	return b
}

func (b ScalarBytes) Scalar() (*ristretto.Scalar, error) {
	return decodeScalar(b[:])
}

func (b ScalarBytes) String() string {
	return hex.EncodeToString(b[:])
}

func (b ScalarBytes) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *ScalarBytes) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil || len(buf) != SCALAR_SIZE {
		return fmt.Errorf("%w: scalar hex %q", ErrDecoding, text)
	}
	copy(b[:], buf)
	return nil
}

// HexBytes is a byte string carried as hex in JSON.
type HexBytes []byte

func (b HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(b)), nil
}

func (b *HexBytes) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("%w: hex %q", ErrDecoding, text)
	}
	*b = buf
	return nil
}

func decodePoint(buf []byte) (*ristretto.Point, error) {
	if len(buf) != POINT_SIZE {
		return nil, fmt.Errorf("%w: point length %d", ErrDecoding, len(buf))
	}
	var b [POINT_SIZE]byte
	copy(b[:], buf)
	var p ristretto.Point
	if !p.SetBytes(&b) {
		return nil, fmt.Errorf("%w: invalid point %x", ErrDecoding, buf)
	}
	return &p, nil
}

func decodePublicKey(buf []byte) (*ristretto.Point, error) {
	p, err := decodePoint(buf)
	if err != nil {
		return nil, err
	}
	if isIdentity(p) {
		return nil, fmt.Errorf("%w: identity point", ErrDecoding)
	}
	return p, nil
}

// decodeScalar only accepts the canonical encoding, reduced mod l.
func decodeScalar(buf []byte) (*ristretto.Scalar, error) {
	if len(buf) != SCALAR_SIZE {
		return nil, fmt.Errorf("%w: scalar length %d", ErrDecoding, len(buf))
	}
	var b [SCALAR_SIZE]byte
	copy(b[:], buf)
	var s ristretto.Scalar
	s.SetBytes(&b)
	if !bytes.Equal(s.Bytes(), buf) {
		return nil, fmt.Errorf("%w: non-canonical scalar", ErrDecoding)
	}
	return &s, nil
}

func hexToScalar(h string) (*ristretto.Scalar, error) {
	buf, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return decodeScalar(buf)
}

func hexToPoint(h string) (*ristretto.Point, error) {
	buf, err := hex.DecodeString(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	return decodePoint(buf)
}
