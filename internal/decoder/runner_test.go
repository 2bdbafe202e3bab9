package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRunnerFullEncoding(t *testing.T) {
	runner, ok := DecodeRunner("101~ACTIVE~1.85:500:10~1.90:300:5")
	require.True(t, ok)

	assert.Equal(t, "101", runner.ID)
	assert.Equal(t, "ACTIVE", runner.Status)
	require.NotNil(t, runner.Back.Price)
	assert.InDelta(t, 1.85, *runner.Back.Price, 1e-9)
	assert.Equal(t, int64(500), runner.Back.Volume)
	assert.Equal(t, int64(10), runner.Back.Exposed)
	require.NotNil(t, runner.Lay.Price)
	assert.InDelta(t, 1.90, *runner.Lay.Price, 1e-9)
	assert.Equal(t, int64(300), runner.Lay.Volume)
	assert.Equal(t, int64(5), runner.Lay.Exposed)
}

func TestDecodeRunnerEmptyBackPrice(t *testing.T) {
	runner, ok := DecodeRunner("101~ACTIVE~:500:10")
	require.True(t, ok)

	assert.Nil(t, runner.Back.Price)
	assert.Equal(t, int64(500), runner.Back.Volume)
	assert.Equal(t, int64(10), runner.Back.Exposed)
}

func TestDecodeRunnerMissingLay(t *testing.T) {
	runner, ok := DecodeRunner("7~SUSPENDED~2.5:100:0")
	require.True(t, ok)

	assert.Nil(t, runner.Lay.Price)
	assert.Zero(t, runner.Lay.Volume)
	assert.Zero(t, runner.Lay.Exposed)
}

func TestDecodeRunnerDegradesBadFields(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		backPrice   *float64
		backVolume  int64
		backExposed int64
	}{
		{name: "non-numeric price", input: "1~A~abc:10:2", backVolume: 10, backExposed: 2},
		{name: "non-numeric volume", input: "1~A~1.5:x:2", backPrice: ptr(1.5), backExposed: 2},
		{name: "fractional volume", input: "1~A~1.5:10.5:2", backPrice: ptr(1.5), backExposed: 2},
		{name: "price only", input: "1~A~3.25", backPrice: ptr(3.25)},
		{name: "empty back tuple", input: "1~A~"},
		{name: "nan price", input: "1~A~NaN:1:1", backVolume: 1, backExposed: 1},
		{name: "infinite price", input: "1~A~+Inf:1:1", backVolume: 1, backExposed: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, ok := DecodeRunner(tt.input)
			require.True(t, ok)

			if tt.backPrice == nil {
				assert.Nil(t, runner.Back.Price)
			} else {
				require.NotNil(t, runner.Back.Price)
				assert.InDelta(t, *tt.backPrice, *runner.Back.Price, 1e-9)
			}
			assert.Equal(t, tt.backVolume, runner.Back.Volume)
			assert.Equal(t, tt.backExposed, runner.Back.Exposed)
		})
	}
}

func TestDecodeRunnerRejectsShortInput(t *testing.T) {
	for _, input := range []string{"", "101", "101~ACTIVE", "no separators at all"} {
		_, ok := DecodeRunner(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestDecodeRunnerIsTotal(t *testing.T) {
	inputs := []string{
		"~~", "~~~~~~", ":::", "~~::~::", "1~2~3~4~5~6",
		"\x00~\xff~1:2:3", "a~b~1e400:1:1", "a~b~-1:-2:-3~::",
		"a~b~9223372036854775808:1:1",
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			runner, ok := DecodeRunner(input)
			if ok {
				// both sides are always materialized
				_ = runner.Back.Volume + runner.Back.Exposed + runner.Lay.Volume + runner.Lay.Exposed
			}
		}, "input %q", input)
	}
}

func ptr(f float64) *float64 {
	return &f
}
