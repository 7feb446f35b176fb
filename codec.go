package ringct

import (
	"bytes"
	"fmt"

	"github.com/bwesterb/go-ristretto"
	"github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	txPrefixField     protowire.Number = 1
	txSignaturesField protowire.Number = 2

	prefixInputsField  protowire.Number = 1
	prefixOutputsField protowire.Number = 2
	prefixFeeField     protowire.Number = 3

	inputRingField   protowire.Number = 1
	inputPseudoField protowire.Number = 2

	memberKeyField        protowire.Number = 1
	memberCommitmentField protowire.Number = 2

	outputCommitmentField protowire.Number = 1
	outputKeyField        protowire.Number = 2
	outputEphemeralField  protowire.Number = 3
	outputAmountField     protowire.Number = 4
	outputMemoField       protowire.Number = 5
	outputProofField      protowire.Number = 6

	sigChallengesField          protowire.Number = 1
	sigResponsesField           protowire.Number = 2
	sigCommitmentResponsesField protowire.Number = 3
	sigKeyImageField            protowire.Number = 4
)

// MarshalTx is the canonical binary encoding. Every singular field is
// written, in field order, so equal transactions encode to equal bytes.
func MarshalTx(tx *Tx) ([]byte, error) {
	if tx == nil || tx.Prefix == nil {
		return nil, fmt.Errorf("%w: empty transaction", ErrMalformedTransaction)
	}
	prefix, err := marshalPrefix(tx.Prefix)
	if err != nil {
		return nil, err
	}
	var data []byte
	data = appendBytesField(data, txPrefixField, prefix)
	for i, sig := range tx.Signatures {
		buf, err := marshalSignature(sig)
		if err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
		data = appendBytesField(data, txSignaturesField, buf)
	}
	return data, nil
}

// UnmarshalTx accepts only the canonical encoding produced by MarshalTx.
func UnmarshalTx(data []byte) (*Tx, error) {
	tx := &Tx{}
	err := consumeFields(data, func(num protowire.Number, v []byte, _ uint64) error {
		switch num {
		case txPrefixField:
			if tx.Prefix != nil {
				return fmt.Errorf("duplicate prefix")
			}
			prefix, err := unmarshalPrefix(v)
			tx.Prefix = prefix
			return err
		case txSignaturesField:
			sig, err := unmarshalSignature(v)
			tx.Signatures = append(tx.Signatures, sig)
			return err
		}
		return fmt.Errorf("unknown tx field %d", num)
	})
	if err != nil {
		return nil, wrapDecoding(err)
	}
	if tx.Prefix == nil {
		return nil, fmt.Errorf("%w: missing prefix", ErrDecoding)
	}

	again, err := MarshalTx(tx)
	if err != nil || !bytes.Equal(again, data) {
		return nil, fmt.Errorf("%w: non-canonical transaction encoding", ErrDecoding)
	}
	return tx, nil
}

func wrapDecoding(err error) error {
	return fmt.Errorf("%w: %v", ErrDecoding, err)
}

func appendBytesField(data []byte, num protowire.Number, v []byte) []byte {
	data = protowire.AppendTag(data, num, protowire.BytesType)
	return protowire.AppendBytes(data, v)
}

func appendPointField(data []byte, num protowire.Number, p *ristretto.Point) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: missing point field %d", ErrMalformedTransaction, num)
	}
	return appendBytesField(data, num, p.Bytes()), nil
}

// consumeFields walks one message, handing bytes fields as v and varint or
// fixed64 fields as u.
func consumeFields(data []byte, fn func(num protowire.Number, v []byte, u uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]
		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			if err := fn(num, v, 0); err != nil {
				return err
			}
		case protowire.VarintType:
			u, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			if err := fn(num, nil, u); err != nil {
				return err
			}
		case protowire.Fixed64Type:
			u, n := protowire.ConsumeFixed64(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
			if err := fn(num, nil, u); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected wire type %d for field %d", typ, num)
		}
	}
	return nil
}

func marshalPrefix(prefix *TxPrefix) ([]byte, error) {
	var data []byte
	for i, in := range prefix.Inputs {
		buf, err := marshalInput(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		data = appendBytesField(data, prefixInputsField, buf)
	}
	for i, out := range prefix.Outputs {
		buf, err := marshalOutput(out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		data = appendBytesField(data, prefixOutputsField, buf)
	}
	data = protowire.AppendTag(data, prefixFeeField, protowire.VarintType)
	data = protowire.AppendVarint(data, prefix.Fee)
	return data, nil
}

func unmarshalPrefix(data []byte) (*TxPrefix, error) {
	prefix := &TxPrefix{}
	err := consumeFields(data, func(num protowire.Number, v []byte, u uint64) error {
		switch num {
		case prefixInputsField:
			in, err := unmarshalInput(v)
			prefix.Inputs = append(prefix.Inputs, in)
			return err
		case prefixOutputsField:
			out, err := unmarshalOutput(v)
			prefix.Outputs = append(prefix.Outputs, out)
			return err
		case prefixFeeField:
			prefix.Fee = u
			return nil
		}
		return fmt.Errorf("unknown prefix field %d", num)
	})
	return prefix, err
}

func marshalInput(in *TxIn) ([]byte, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: nil input", ErrMalformedTransaction)
	}
	var data []byte
	for _, m := range in.Ring {
		if m == nil {
			return nil, fmt.Errorf("%w: nil ring member", ErrMalformedTransaction)
		}
		member, err := appendPointField(nil, memberKeyField, m.OneTimeKey)
		if err != nil {
			return nil, err
		}
		member, err = appendPointField(member, memberCommitmentField, m.Commitment)
		if err != nil {
			return nil, err
		}
		data = appendBytesField(data, inputRingField, member)
	}
	return appendPointField(data, inputPseudoField, in.PseudoCommitment)
}

func unmarshalInput(data []byte) (*TxIn, error) {
	in := &TxIn{}
	err := consumeFields(data, func(num protowire.Number, v []byte, _ uint64) error {
		switch num {
		case inputRingField:
			m := &RingMember{}
			in.Ring = append(in.Ring, m)
			return consumeFields(v, func(num protowire.Number, v []byte, _ uint64) error {
				var err error
				switch num {
				case memberKeyField:
					m.OneTimeKey, err = decodePoint(v)
				case memberCommitmentField:
					m.Commitment, err = decodePoint(v)
				default:
					err = fmt.Errorf("unknown ring member field %d", num)
				}
				return err
			})
		case inputPseudoField:
			p, err := decodePoint(v)
			in.PseudoCommitment = p
			return err
		}
		return fmt.Errorf("unknown input field %d", num)
	})
	return in, err
}

func marshalOutput(out *TxOut) ([]byte, error) {
	if out == nil {
		return nil, fmt.Errorf("%w: nil output", ErrMalformedTransaction)
	}
	data, err := appendPointField(nil, outputCommitmentField, out.Commitment)
	if err != nil {
		return nil, err
	}
	if data, err = appendPointField(data, outputKeyField, out.OneTimeKey); err != nil {
		return nil, err
	}
	if data, err = appendPointField(data, outputEphemeralField, out.EphemeralKey); err != nil {
		return nil, err
	}
	data = protowire.AppendTag(data, outputAmountField, protowire.Fixed64Type)
	data = protowire.AppendFixed64(data, out.EncodedAmount)
	data = appendBytesField(data, outputMemoField, out.EMemo)
	data = appendBytesField(data, outputProofField, out.RangeProof)
	return data, nil
}

func unmarshalOutput(data []byte) (*TxOut, error) {
	out := &TxOut{}
	err := consumeFields(data, func(num protowire.Number, v []byte, u uint64) error {
		var err error
		switch num {
		case outputCommitmentField:
			out.Commitment, err = decodePoint(v)
		case outputKeyField:
			out.OneTimeKey, err = decodePoint(v)
		case outputEphemeralField:
			out.EphemeralKey, err = decodePoint(v)
		case outputAmountField:
			out.EncodedAmount = u
		case outputMemoField:
			out.EMemo = append([]byte(nil), v...)
		case outputProofField:
			out.RangeProof = append([]byte(nil), v...)
		default:
			err = fmt.Errorf("unknown output field %d", num)
		}
		return err
	})
	return out, err
}

func marshalSignature(sig *RingSignature) ([]byte, error) {
	if sig == nil {
		return nil, fmt.Errorf("%w: nil signature", ErrMalformedTransaction)
	}
	var data []byte
	for _, group := range []struct {
		num     protowire.Number
		scalars []*ristretto.Scalar
	}{
		{sigChallengesField, sig.Challenges},
		{sigResponsesField, sig.Responses},
		{sigCommitmentResponsesField, sig.CommitmentResponses},
	} {
		for _, s := range group.scalars {
			if s == nil {
				return nil, fmt.Errorf("%w: nil scalar field %d", ErrMalformedTransaction, group.num)
			}
			data = appendBytesField(data, group.num, s.Bytes())
		}
	}
	return appendPointField(data, sigKeyImageField, sig.KeyImage)
}

func unmarshalSignature(data []byte) (*RingSignature, error) {
	sig := &RingSignature{}
	err := consumeFields(data, func(num protowire.Number, v []byte, _ uint64) error {
		if num == sigKeyImageField {
			p, err := decodePoint(v)
			sig.KeyImage = p
			return err
		}
		s, err := decodeScalar(v)
		if err != nil {
			return err
		}
		switch num {
		case sigChallengesField:
			sig.Challenges = append(sig.Challenges, s)
		case sigResponsesField:
			sig.Responses = append(sig.Responses, s)
		case sigCommitmentResponsesField:
			sig.CommitmentResponses = append(sig.CommitmentResponses, s)
		default:
			return fmt.Errorf("unknown signature field %d", num)
		}
		return nil
	})
	return sig, err
}

type txJSON struct {
	Inputs     []*txInJSON      `json:"inputs"`
	Outputs    []*txOutJSON     `json:"outputs"`
	Fee        uint64           `json:"fee"`
	Signatures []*signatureJSON `json:"signatures"`
}

type txInJSON struct {
	Ring             []*ringMemberJSON `json:"ring"`
	PseudoCommitment PointBytes        `json:"pseudo_commitment"`
}

type ringMemberJSON struct {
	OneTimeKey PointBytes `json:"target_key"`
	Commitment PointBytes `json:"commitment"`
}

type txOutJSON struct {
	Commitment    PointBytes `json:"commitment"`
	OneTimeKey    PointBytes `json:"target_key"`
	EphemeralKey  PointBytes `json:"public_key"`
	EncodedAmount uint64     `json:"masked_value"`
	EMemo         HexBytes   `json:"e_memo"`
	RangeProof    HexBytes   `json:"range_proof"`
}

type signatureJSON struct {
	Challenges          []ScalarBytes `json:"challenges"`
	Responses           []ScalarBytes `json:"responses"`
	CommitmentResponses []ScalarBytes `json:"commitment_responses"`
	KeyImage            PointBytes    `json:"key_image"`
}

var jsonEncodeOptions = []json.EncodeOptionFunc{json.DisableHTMLEscape(), json.DisableNormalizeUTF8()}

// MarshalTxJSON renders a transaction with hex encoded group elements.
func MarshalTxJSON(tx *Tx) ([]byte, error) {
	if _, err := MarshalTx(tx); err != nil {
		return nil, err
	}
	doc := &txJSON{Fee: tx.Prefix.Fee}
	for _, in := range tx.Prefix.Inputs {
		j := &txInJSON{PseudoCommitment: PointBytesOf(in.PseudoCommitment)}
		for _, m := range in.Ring {
			j.Ring = append(j.Ring, &ringMemberJSON{
				OneTimeKey: PointBytesOf(m.OneTimeKey),
				Commitment: PointBytesOf(m.Commitment),
			})
		}
		doc.Inputs = append(doc.Inputs, j)
	}
	for _, out := range tx.Prefix.Outputs {
		doc.Outputs = append(doc.Outputs, &txOutJSON{
			Commitment:    PointBytesOf(out.Commitment),
			OneTimeKey:    PointBytesOf(out.OneTimeKey),
			EphemeralKey:  PointBytesOf(out.EphemeralKey),
			EncodedAmount: out.EncodedAmount,
			EMemo:         out.EMemo,
			RangeProof:    out.RangeProof,
		})
	}
	for _, sig := range tx.Signatures {
		doc.Signatures = append(doc.Signatures, &signatureJSON{
			Challenges:          scalarBytesOf(sig.Challenges),
			Responses:           scalarBytesOf(sig.Responses),
			CommitmentResponses: scalarBytesOf(sig.CommitmentResponses),
			KeyImage:            PointBytesOf(sig.KeyImage),
		})
	}
	return json.MarshalWithOption(doc, jsonEncodeOptions...)
}

func UnmarshalTxJSON(data []byte) (*Tx, error) {
	var doc txJSON
	if err := json.UnmarshalWithOption(data, &doc); err != nil {
		return nil, wrapDecoding(err)
	}

	tx := &Tx{Prefix: &TxPrefix{Fee: doc.Fee}}
	for _, j := range doc.Inputs {
		if j == nil {
			return nil, fmt.Errorf("%w: null input", ErrDecoding)
		}
		pseudo, err := j.PseudoCommitment.Point()
		if err != nil {
			return nil, err
		}
		in := &TxIn{PseudoCommitment: pseudo}
		for _, m := range j.Ring {
			if m == nil {
				return nil, fmt.Errorf("%w: null ring member", ErrDecoding)
			}
			key, err := m.OneTimeKey.Point()
			if err != nil {
				return nil, err
			}
			commitment, err := m.Commitment.Point()
			if err != nil {
				return nil, err
			}
			in.Ring = append(in.Ring, &RingMember{OneTimeKey: key, Commitment: commitment})
		}
		tx.Prefix.Inputs = append(tx.Prefix.Inputs, in)
	}
	for _, j := range doc.Outputs {
		if j == nil {
			return nil, fmt.Errorf("%w: null output", ErrDecoding)
		}
		out := &TxOut{
			EncodedAmount: j.EncodedAmount,
			EMemo:         []byte(j.EMemo),
			RangeProof:    []byte(j.RangeProof),
		}
		var err error
		if out.Commitment, err = j.Commitment.Point(); err != nil {
			return nil, err
		}
		if out.OneTimeKey, err = j.OneTimeKey.Point(); err != nil {
			return nil, err
		}
		if out.EphemeralKey, err = j.EphemeralKey.Point(); err != nil {
			return nil, err
		}
		tx.Prefix.Outputs = append(tx.Prefix.Outputs, out)
	}
	for _, j := range doc.Signatures {
		if j == nil {
			return nil, fmt.Errorf("%w: null signature", ErrDecoding)
		}
		sig := &RingSignature{}
		var err error
		if sig.Challenges, err = scalarsOf(j.Challenges); err != nil {
			return nil, err
		}
		if sig.Responses, err = scalarsOf(j.Responses); err != nil {
			return nil, err
		}
		if sig.CommitmentResponses, err = scalarsOf(j.CommitmentResponses); err != nil {
			return nil, err
		}
		if sig.KeyImage, err = j.KeyImage.Point(); err != nil {
			return nil, err
		}
		tx.Signatures = append(tx.Signatures, sig)
	}
	return tx, nil
}

func scalarBytesOf(scalars []*ristretto.Scalar) []ScalarBytes {
	out := make([]ScalarBytes, len(scalars))
	for i, s := range scalars {
		out[i] = ScalarBytesOf(s)
	}
	return out
}

func scalarsOf(encoded []ScalarBytes) ([]*ristretto.Scalar, error) {
	if len(encoded) == 0 {
		return nil, nil
	}
	out := make([]*ristretto.Scalar, len(encoded))
	for i, b := range encoded {
		s, err := b.Scalar()
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
