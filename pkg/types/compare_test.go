package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcore/relcore/pkg/types"
)

func TestCompareIntInt(t *testing.T) {
	c, err := types.Compare(types.IntValue(2), types.IntValue(3))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
}

func TestCompareIntFloatPromotes(t *testing.T) {
	c, err := types.Compare(types.IntValue(2), types.FloatValue(2.0))
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestCompareStringPrefixRule(t *testing.T) {
	// bytewise over min(len) — "ab" vs "abc" compares equal on the
	// shared prefix (spec §9 open question, resolved in DESIGN.md).
	c, err := types.Compare(types.StrValue([]byte("ab")), types.StrValue([]byte("abc")))
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestCompareIncompatible(t *testing.T) {
	_, err := types.Compare(types.IntValue(1), types.StrValue([]byte("x")))
	require.Error(t, err)
}

func TestSwapOp(t *testing.T) {
	assert.Equal(t, types.GT, types.SwapOp(types.LT))
	assert.Equal(t, types.LT, types.SwapOp(types.GT))
	assert.Equal(t, types.GE, types.SwapOp(types.LE))
	assert.Equal(t, types.LE, types.SwapOp(types.GE))
	assert.Equal(t, types.EQ, types.SwapOp(types.EQ))
	assert.Equal(t, types.NE, types.SwapOp(types.NE))
}

func TestEval(t *testing.T) {
	ok, err := types.Eval(types.IntValue(5), types.GE, types.IntValue(5))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCoerceFloatToIntTruncatesTowardZero(t *testing.T) {
	v, err := types.FloatValue(3.9).CoerceTo(types.Int32)
	require.NoError(t, err)
	assert.EqualValues(t, 3, v.I)

	v, err = types.FloatValue(-3.9).CoerceTo(types.Int32)
	require.NoError(t, err)
	assert.EqualValues(t, -3, v.I)
}

func TestCoerceStringRejected(t *testing.T) {
	_, err := types.IntValue(1).CoerceTo(types.FixedString)
	assert.Error(t, err)
}

func TestRawBytesRoundTrip(t *testing.T) {
	v := types.IntValue(42)
	raw := v.RawBytes(4)
	got := types.ReadValue(raw, 0, 4, types.Int32)
	assert.Equal(t, v, got)

	fv := types.FloatValue(3.5)
	raw = fv.RawBytes(4)
	got = types.ReadValue(raw, 0, 4, types.Float32)
	assert.Equal(t, fv, got)
}

func TestTrimNUL(t *testing.T) {
	assert.Equal(t, []byte("ab"), types.TrimNUL([]byte("ab\x00\x00")))
}
