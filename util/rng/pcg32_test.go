package rng

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCG32_Next(t *testing.T) {
	p := NewPCG32(0x185706b82c2e03f8, 0x6d)
	for _, want := range []uint32{0xa15c02b7, 0x7b47f409, 0xba1d3330} {
		assert.Equal(t, want, p.Next())
	}

	zero := NewPCG32(0, 0)
	assert.Equal(t, uint64(1), zero.Inc)
	assert.Equal(t, uint32(0), zero.Next())
	assert.Equal(t, uint32(0), zero.Next())
	assert.Equal(t, uint32(3837872008), zero.Next())
}

func TestPCG32_Advance(t *testing.T) {
	tests := []struct {
		name  string
		delta uint64
	}{
		{"zero", 0},
		{"one", 1},
		{"odd", 13},
		{"power of two", 512},
		{"large", 10007},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stepped := NewPCG32(0x853c49e6748fea9b, 0xda3e39cb94b95bdb)
			jumped := stepped

			for i := uint64(0); i < tt.delta; i++ {
				stepped.Next()
			}
			jumped.Advance(tt.delta)

			assert.Equal(t, stepped, jumped)
		})
	}
}

func TestPCG32_AdvanceFullPeriodWraps(t *testing.T) {
	p := NewPCG32(12345, 678)
	start := p

	// Advancing by 2^64-1 and then one more step returns to the start.
	p.Advance(^uint64(0))
	p.Next()
	assert.Equal(t, start, p)
}

func TestSeed_String(t *testing.T) {
	seed := Seed{State: [4]uint64{1, 2, 3, 4}, Increment: [4]uint64{5, 6, 7, ^uint64(0)}}

	str := seed.String()
	assert.Len(t, str, 128)
	assert.True(t, strings.HasPrefix(str, "0000000000000001"))
	assert.True(t, strings.HasSuffix(str, "ffffffffffffffff"))

	parsed, err := ParseSeed(str)
	require.NoError(t, err)
	assert.Equal(t, seed, parsed)
}

func TestParseSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"short", strings.Repeat("0", 127)},
		{"bad state digit", "g" + strings.Repeat("0", 127)},
		{"bad increment digit", strings.Repeat("0", 127) + "z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(tt.in)
			assert.ErrorIs(t, err, ErrBadSeed)
		})
	}
}

func TestSeedFromUint64(t *testing.T) {
	a := SeedFromUint64(1)
	b := SeedFromUint64(1)
	c := SeedFromUint64(2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	for i := range a.Increment {
		assert.Equal(t, uint64(1), a.Increment[i]&1)
		for j := range a.Increment {
			if i != j {
				assert.NotEqual(t, a.Increment[i], a.Increment[j])
			}
		}
	}
}
