package ringct

import (
	"encoding/binary"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

func InitialTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func RangeproofDomainSep(n int64, m int64, t *merlin.Transcript) *merlin.Transcript {
	appendBytes([]byte("dom-sep"), []byte("rangeproof v1"), t)

	appendUint64("n", uint64(n), t)
	appendUint64("m", uint64(m), t)
	return t
}

func InnerproductDomainSep(n uint64, t *merlin.Transcript) {
	appendBytes([]byte("dom-sep"), []byte("ipp v1"), t)
	appendUint64("n", n, t)
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

func appendUint64(label string, i uint64, t *merlin.Transcript) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	appendBytes([]byte(label), buf, t)
}

func ChallengeScalar(label string, t *merlin.Transcript) *ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)
	return fromBytesModOrderWide(data)
}

func AppendScalar(label string, s *ristretto.Scalar, t *merlin.Transcript) {
	appendBytes([]byte(label), s.Bytes(), t)
}

func AppendPoint(label string, p *ristretto.Point, t *merlin.Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}

// validateAndAppendPoint refuses the identity.
func validateAndAppendPoint(label string, p *ristretto.Point, t *merlin.Transcript) error {
	if isIdentity(p) {
		return fmt.Errorf("%w: identity %s", ErrInvalidRangeProof, label)
	}
	AppendPoint(label, p, t)
	return nil
}
