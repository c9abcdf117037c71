package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 500, ToInt("500"))
	assert.Equal(t, 500, ToInt(" 500.000 "))
	assert.Equal(t, 0, ToInt(""))
	assert.Equal(t, 0, ToInt("-"))
	assert.Equal(t, -100, ToInt("-100"))
}

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(120000), ToInt64("120000"))
	assert.Equal(t, int64(120000), ToInt64("120000.5"))
	assert.Equal(t, int64(0), ToInt64("-"))
}

func TestToDecimal(t *testing.T) {
	assert.Equal(t, "10.25", ToDecimal("10.25").String())
	assert.True(t, ToDecimal("-").IsZero(), "suspended marker")
	assert.True(t, ToDecimal("").IsZero())
	assert.True(t, ToDecimal("n/a").IsZero())
}
