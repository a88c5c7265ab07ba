package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/kindseq/internal/ir"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step int
		expected         Seq
	}{
		{"ascending", 0, 4, 1, Seq{0, 1, 2, 3}},
		{"offset", 2, 5, 1, Seq{2, 3, 4}},
		{"stride", 0, 6, 2, Seq{0, 2, 4}},
		{"descending", 2, -1, -1, Seq{2, 1, 0}},
		{"descending stride", 9, 0, -3, Seq{9, 6, 3}},
		{"empty", 3, 3, 1, Seq{}},
		{"empty zero step", 3, 3, 0, Seq{}},
		{"empty reverse of nothing", -1, -1, -1, Seq{}},
		{"negative values", -3, 0, 1, Seq{-3, -2, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Arithmetic(tt.start, tt.end, tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestArithmeticNonTerminating(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step int
	}{
		{"zero step", 0, 3, 0},
		{"wrong sign up", 0, 3, -1},
		{"wrong sign down", 3, 0, 1},
		{"overshoots end", 0, 5, 2},
		{"overshoots end descending", 5, 0, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Arithmetic(tt.start, tt.end, tt.step)
			require.Error(t, err)
			assert.True(t, ir.IsContractError(err, ir.ErrCodeNonTerminating), "got %v", err)
		})
	}
}

func TestArithmeticLen(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step int
		expected         uint64
	}{
		{"ascending", 0, 4, 1, 4},
		{"descending stride", 9, 0, -3, 3},
		{"empty", 3, 3, 0, 0},
		{"far end", 0, 1 << 50, 1, 1 << 50},
		{"full int span", math.MinInt, math.MaxInt, 1, math.MaxUint64},
		{"full span descending", math.MaxInt, math.MinInt, -1, math.MaxUint64},
		{"huge stride", math.MinInt + 1, math.MaxInt, math.MaxInt, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArithmeticLen(tt.start, tt.end, tt.step)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ArithmeticLen(0, 5, 2)
	assert.True(t, ir.IsContractError(err, ir.ErrCodeNonTerminating))
}

func TestLengthLimit(t *testing.T) {
	var err error
	require.NotPanics(t, func() {
		_, err = Arithmetic(0, 1<<50, 1)
	})
	assert.True(t, ir.IsContractError(err, ir.ErrCodeLengthLimit), "got %v", err)

	require.NotPanics(t, func() {
		_, err = Arithmetic(math.MinInt, math.MaxInt, 1)
	})
	assert.True(t, ir.IsContractError(err, ir.ErrCodeLengthLimit), "got %v", err)

	require.NotPanics(t, func() {
		_, err = Repeat(0, 1<<50)
	})
	assert.True(t, ir.IsContractError(err, ir.ErrCodeLengthLimit), "got %v", err)

	_, err = Arithmetic(0, MaxLen+1, 1)
	assert.True(t, ir.IsContractError(err, ir.ErrCodeLengthLimit), "got %v", err)
}

func TestRepeat(t *testing.T) {
	got, err := Repeat(0, 3)
	require.NoError(t, err)
	assert.Equal(t, Seq{0, 0, 0}, got)

	got, err = Repeat(7, 0)
	require.NoError(t, err)
	assert.Equal(t, Seq{}, got)
	assert.Equal(t, 0, got.Len())

	_, err = Repeat(0, -1)
	assert.True(t, ir.IsContractError(err, ir.ErrCodeNegativeCount))
}

func TestMaskFilter(t *testing.T) {
	tests := []struct {
		name     string
		mask     Mask
		expected Seq
	}{
		{"mixed", MaskOf(true, false, true, true, false), Seq{0, 2, 3}},
		{"all false", MaskOf(false, false, false), Seq{}},
		{"all true", MaskOf(true, true, true), Seq{0, 1, 2}},
		{"empty", MaskOf(), Seq{}},
		{"zero value", Mask{}, Seq{}},
		{"trailing set bit", MaskOf(false, false, false, true), Seq{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskFilter(tt.mask))
		})
	}
}

func TestMaskFilterLen(t *testing.T) {
	got, err := MaskFilterLen(MaskOf(false, true), 2)
	require.NoError(t, err)
	assert.Equal(t, Seq{1}, got)

	_, err = MaskFilterLen(MaskOf(true, true), 3)
	require.Error(t, err)
	assert.True(t, ir.IsContractError(err, ir.ErrCodeMaskLength))
}
