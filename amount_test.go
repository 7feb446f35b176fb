package ringct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	assert := assert.New(t)

	for _, c := range []struct {
		s        string
		expected uint64
	}{
		{"0", 0},
		{"1", ATOMIC_UNITS},
		{"1.5", 1_500_000_000_000},
		{"0.000000000001", 1},
		{"18446744.073709551615", ^uint64(0)},
	} {
		v, err := ParseAmount(c.s)
		assert.Nil(err, c.s)
		assert.Equal(c.expected, v, c.s)
	}
	for _, s := range []string{"", "abc", "-1", "0.0000000000001", "18446744.073709551616"} {
		_, err := ParseAmount(s)
		assert.NotNil(err, s)
	}

	assert.Equal("1.5", FormatAmount(1_500_000_000_000))
	assert.Equal("0.000000000001", FormatAmount(1))
	assert.Equal("0", FormatAmount(0))
	v, err := ParseAmount(FormatAmount(123456789))
	assert.Nil(err)
	assert.Equal(uint64(123456789), v)
}
