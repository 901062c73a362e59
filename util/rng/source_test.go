package rng

import (
	"encoding/binary"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ rand.Source64 = (*Source)(nil)
	_ io.Reader     = (*Source)(nil)
)

// stepStream returns the first n steps of a fresh generator as bytes.
func stepStream(seed Seed, steps int) []byte {
	g := FromSeed(Emulated, seed)
	out := make([]byte, steps*stepBytes)
	for i := 0; i < steps; i++ {
		putStep(out[i*stepBytes:], g.Next())
	}
	return out
}

func TestSource_Uint32UsesEveryLane(t *testing.T) {
	seed := SeedFromUint64(3)
	ref := FromSeed(Emulated, seed)
	src := NewSource(FromSeed(Emulated, seed))

	for step := 0; step < 16; step++ {
		words := ref.Next()
		for lane, w := range words {
			require.Equalf(t, w, src.Uint32(), "step %d lane %d", step, lane)
		}
	}
}

func TestSource_Uint64(t *testing.T) {
	seed := SeedFromUint64(4)
	ref := FromSeed(Emulated, seed)
	src := NewSource(FromSeed(Emulated, seed))

	for step := 0; step < 16; step++ {
		w := ref.Next()
		assert.Equal(t, uint64(w[0])|uint64(w[1])<<32, src.Uint64())
		assert.Equal(t, uint64(w[2])|uint64(w[3])<<32, src.Uint64())
	}
}

func TestSource_MixedDrawsNeverStraddleSteps(t *testing.T) {
	seed := SeedFromUint64(5)
	ref := FromSeed(Emulated, seed)
	src := NewSource(FromSeed(Emulated, seed))

	first := ref.Next()
	assert.Equal(t, first[0], src.Uint32())
	assert.Equal(t, uint64(first[1])|uint64(first[2])<<32, src.Uint64())

	// Only lane 3 is left; a 64-bit draw takes a new step.
	second := ref.Next()
	assert.Equal(t, uint64(second[0])|uint64(second[1])<<32, src.Uint64())
	assert.Equal(t, second[2], src.Uint32())
	assert.Equal(t, second[3], src.Uint32())
	assert.Equal(t, ref.Next()[0], src.Uint32())
}

func TestSource_FillBytes(t *testing.T) {
	seed := SeedFromUint64(6)

	for _, n := range []int{0, 1, 15, 16, 17, 31, 32, 33, 1000, 4099} {
		steps := (n + stepBytes - 1) / stepBytes
		want := stepStream(seed, steps+1)

		src := NewSource(FromSeed(Emulated, seed))
		buf := make([]byte, n+8)
		for i := range buf {
			buf[i] = 0xaa
		}

		src.FillBytes(buf[:n])
		require.Equalf(t, want[:n], buf[:n], "length %d", n)
		for i := n; i < len(buf); i++ {
			require.Equalf(t, byte(0xaa), buf[i], "length %d wrote past the end", n)
		}

		// Exactly ceil(n/16) steps were taken.
		next := src.Generator().Next()
		var nextBytes [stepBytes]byte
		putStep(nextBytes[:], next)
		assert.Equalf(t, want[steps*stepBytes:], nextBytes[:], "length %d", n)
	}
}

func TestSource_FillBytesStartsOnFreshStep(t *testing.T) {
	seed := SeedFromUint64(7)
	want := stepStream(seed, 3)
	src := NewSource(FromSeed(Emulated, seed))

	first := make([]byte, 17)
	src.FillBytes(first)
	assert.Equal(t, want[:17], first)

	// The rest of the second step is discarded.
	second := make([]byte, 16)
	src.FillBytes(second)
	assert.Equal(t, want[32:48], second)
}

func TestSource_FillBytesDropsBufferedLanes(t *testing.T) {
	seed := SeedFromUint64(9)
	want := stepStream(seed, 3)
	src := NewSource(FromSeed(Emulated, seed))

	src.Uint32()

	buf := make([]byte, 5)
	src.FillBytes(buf)
	assert.Equal(t, want[16:21], buf)

	src.FillBytes(nil)
	assert.Equal(t, binary.LittleEndian.Uint32(want[32:]), src.Uint32())
}

func TestSource_Read(t *testing.T) {
	seed := SeedFromUint64(8)
	src := NewSource(FromSeed(Emulated, seed))

	buf := make([]byte, 37)
	n, err := src.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 37, n)
	assert.Equal(t, stepStream(seed, 3)[:37], buf)

	n, err = src.Read(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = io.ReadFull(src, make([]byte, 100))
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}

func TestSource_Seed(t *testing.T) {
	src := NewSource(FromSeed(Scalar, SeedFromUint64(9)))
	src.Uint32()

	src.Seed(77)
	ref := FromSeed(Scalar, SeedFromUint64(77))
	w := ref.Next()
	assert.Equal(t, w[0], src.Uint32())
	assert.Equal(t, Scalar, src.Generator().Backend())

	r := rand.New(NewSource(New([4]uint64{}, [4]uint64{})))
	r.Seed(1)
	a := r.Int63()
	r.Seed(1)
	assert.Equal(t, a, r.Int63())
	assert.GreaterOrEqual(t, a, int64(0))
}

func TestSource_Uint64LittleEndian(t *testing.T) {
	src := NewSource(New([4]uint64{0x853c49e6748fea9b}, [4]uint64{}))
	ref := New([4]uint64{0x853c49e6748fea9b}, [4]uint64{})

	var b [stepBytes]byte
	putStep(b[:], ref.Next())
	assert.Equal(t, binary.LittleEndian.Uint64(b[:]), src.Uint64())
}

func BenchmarkSource_Uint32(b *testing.B) {
	src := NewSource(FromSeed(Emulated, SeedFromUint64(1)))
	for i := 0; i < b.N; i++ {
		_ = src.Uint32()
	}
}

func BenchmarkSource_FillBytes(b *testing.B) {
	src := NewSource(FromSeed(Emulated, SeedFromUint64(1)))
	buf := make([]byte, 4096)
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		src.FillBytes(buf)
	}
}
