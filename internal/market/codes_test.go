package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetFullCode(t *testing.T) {
	assert.Equal(t, "sh600000", GetFullCode("600000"))
	assert.Equal(t, "sh510300", GetFullCode("510300"))
	assert.Equal(t, "sh900901", GetFullCode("900901"))
	assert.Equal(t, "sz000001", GetFullCode("000001"))
	assert.Equal(t, "sz300750", GetFullCode("300750"))
}

func TestIsAShare(t *testing.T) {
	assert.True(t, IsAShare("600000"))
	assert.True(t, IsAShare("000001"))
	assert.True(t, IsAShare("300750"))
	assert.False(t, IsAShare("900901"), "B share")
	assert.False(t, IsAShare("510300"), "ETF")
}

func TestIsOriginalName(t *testing.T) {
	assert.True(t, IsOriginalName("浦发银行"))
	assert.True(t, IsOriginalName("*ST金泰"))
	assert.False(t, IsOriginalName("XD浦发银"))
	assert.False(t, IsOriginalName("XR某股份"))
	assert.False(t, IsOriginalName("DR某股份"))
	assert.False(t, IsOriginalName("N 新股"))
	assert.False(t, IsOriginalName("C 次新"))
	assert.False(t, IsOriginalName("  "))
}

func TestChangeRate(t *testing.T) {
	rate := ChangeRate(decimal.RequireFromString("10.25"), decimal.RequireFromString("10.00"))
	assert.True(t, rate.Equal(decimal.RequireFromString("0.025")))

	down := ChangeRate(decimal.RequireFromString("9.50"), decimal.RequireFromString("10.00"))
	assert.True(t, down.Equal(decimal.RequireFromString("-0.05")))

	assert.True(t, ChangeRate(decimal.RequireFromString("10.00"), decimal.Zero).IsZero())
}
