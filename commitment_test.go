package ringct

import (
	"testing"

	"github.com/bwesterb/go-ristretto"
	"github.com/stretchr/testify/assert"
)

func TestCommitment(t *testing.T) {
	assert := assert.New(t)

	b1, b2 := randomScalar(), randomScalar()
	var b3 ristretto.Scalar
	b3.Add(b1, b2)

	var sum ristretto.Point
	sum.Add(Commit(100, b1), Commit(50, b2))
	assert.True(sum.Equals(Commit(150, &b3)))
	assert.False(sum.Equals(Commit(151, &b3)))
	assert.True(CommitScalar(uint64ToScalar(150), &b3).Equals(&sum))

	var zero ristretto.Scalar
	zero.SetZero()
	assert.True(FeeCommitment(7).Equals(Commit(7, &zero)))

	// 100 in, 60 + 30 out, fee 10
	var o1, o2 ristretto.Scalar
	o1.Rand()
	o2.Sub(b1, &o1)
	inputs := []*ristretto.Point{Commit(100, b1)}
	outputs := []*ristretto.Point{Commit(60, &o1), Commit(30, &o2)}
	assert.True(CheckBalance(inputs, outputs, 10))
	assert.False(CheckBalance(inputs, outputs, 11))
	assert.False(CheckBalance(inputs, outputs[:1], 10))
}
