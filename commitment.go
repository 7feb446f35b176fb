package ringct

import "github.com/bwesterb/go-ristretto"

// Commit returns value * B + blinding * G.
func Commit(value uint64, blinding *ristretto.Scalar) *ristretto.Point {
	return DefaultPedersenGens().Commit(uint64ToScalar(value), blinding)
}

// CommitScalar commits to an arbitrary scalar value.
func CommitScalar(value, blinding *ristretto.Scalar) *ristretto.Point {
	return DefaultPedersenGens().Commit(value, blinding)
}

// FeeCommitment is the unblinded commitment fee * B.
func FeeCommitment(fee uint64) *ristretto.Point {
	var zero ristretto.Scalar
	zero.SetZero()
	return Commit(fee, &zero)
}

// CheckBalance reports whether sum(inputs) == sum(outputs) + fee * B.
func CheckBalance(inputs, outputs []*ristretto.Point, fee uint64) bool {
	left := sumPoints(inputs)
	right := sumPoints(outputs)
	right.Add(right, FeeCommitment(fee))
	return left.Equals(right)
}
