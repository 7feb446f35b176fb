package ringct

import (
	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

const (
	PRIMITIVE     = "prim"
	SEQUENCE      = "seq"
	AGGREGATE     = "agg"
	AGGREGATE_END = "agg-end"
)

// HashOfTxPrefix is the message every ring signature of the transaction
// signs. It covers all inputs, outputs and the fee.
func HashOfTxPrefix(tx *TxPrefix) []byte {
	t := merlin.NewTranscript("digestible")
	appendTxPrefix(tx, t)
	return t.ExtractBytes([]byte("digest32"), 32)
}

func appendAggregate(label, name string, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(AGGREGATE), t)
	appendBytes([]byte("name"), []byte(name), t)
}

func appendAggregateEnd(label, name string, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(AGGREGATE_END), t)
	appendBytes([]byte("name"), []byte(name), t)
}

func appendSequence(label string, n int, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(SEQUENCE), t)
	appendUint64("len", uint64(n), t)
}

func appendRistretto(label string, p *ristretto.Point, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(PRIMITIVE), t)
	if p == nil {
		appendBytes([]byte("ristretto"), nil, t)
		return
	}
	appendBytes([]byte("ristretto"), p.Bytes(), t)
}

func appendPrimitiveUint(label string, v uint64, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(PRIMITIVE), t)
	appendUint64("uint", v, t)
}

func appendPrimitiveBytes(label string, b []byte, t *merlin.Transcript) {
	appendBytes([]byte(label), []byte(PRIMITIVE), t)
	appendBytes([]byte("bytes"), b, t)
}

func appendRingMember(m *RingMember, t *merlin.Transcript) {
	appendAggregate("", "RingMember", t)
	appendRistretto("target_key", m.OneTimeKey, t)
	appendRistretto("commitment", m.Commitment, t)
	appendAggregateEnd("", "RingMember", t)
}

func appendTxIn(in *TxIn, t *merlin.Transcript) {
	appendAggregate("", "TxIn", t)
	appendSequence("ring", len(in.Ring), t)
	for _, m := range in.Ring {
		appendRingMember(m, t)
	}
	appendRistretto("pseudo_commitment", in.PseudoCommitment, t)
	appendAggregateEnd("", "TxIn", t)
}

func appendTxOut(out *TxOut, t *merlin.Transcript) {
	appendAggregate("", "TxOut", t)
	appendRistretto("commitment", out.Commitment, t)
	appendRistretto("target_key", out.OneTimeKey, t)
	appendRistretto("public_key", out.EphemeralKey, t)
	appendPrimitiveUint("masked_value", out.EncodedAmount, t)
	appendPrimitiveBytes("e_memo", out.EMemo, t)
	appendPrimitiveBytes("range_proof", out.RangeProof, t)
	appendAggregateEnd("", "TxOut", t)
}

func appendTxPrefix(tx *TxPrefix, t *merlin.Transcript) {
	appendAggregate(TX_PREFIX_DOMAIN_TAG, "TxPrefix", t)

	appendSequence("inputs", len(tx.Inputs), t)
	for _, in := range tx.Inputs {
		appendTxIn(in, t)
	}
	appendSequence("outputs", len(tx.Outputs), t)
	for _, out := range tx.Outputs {
		appendTxOut(out, t)
	}
	appendPrimitiveUint("fee", tx.Fee, t)

	appendAggregateEnd(TX_PREFIX_DOMAIN_TAG, "TxPrefix", t)
}
