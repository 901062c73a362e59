package rng

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// PCG32x4 runs four independent PCG32 streams in lockstep over one Vec256 of
// state. Each call to Next advances all four lanes and yields one 32-bit word
// per lane.
//
// The zero value is a generator of all-zero state on the Emulated backend,
// the same as New with zero states and increments.
//
// A PCG32x4 is not safe for concurrent use. Independent instances share
// nothing and need no synchronisation.
type PCG32x4 struct {
	state Vec256
	inc   Vec256

	mulLo Vec256
	mulHi Vec256

	backend Backend
}

// gatherLow picks the low 32-bit half of every 64-bit lane into lanes 0..3.
var gatherLow = [8]uint32{0, 2, 4, 6, 7, 7, 7, 7}

// New builds a generator whose lane i starts at state[i] with increment inc[i].
// Increments are forced odd.
func New(state, inc [4]uint64) *PCG32x4 {
	return NewWithBackend(Emulated, state, inc)
}

func NewWithBackend(backend Backend, state, inc [4]uint64) *PCG32x4 {
	if backend == nil {
		backend = Emulated
	}

	return &PCG32x4{
		state: Vec256(state),
		inc:   Vec256{inc[0] | 1, inc[1] | 1, inc[2] | 1, inc[3] | 1},

		mulLo: Set1Epi64x(Multiplier & 0x00000000ffffffff),
		mulHi: Set1Epi64x(Multiplier >> 32),

		backend: backend,
	}
}

// FromSeed is New over a Seed.
func FromSeed(backend Backend, seed Seed) *PCG32x4 {
	return NewWithBackend(backend, seed.State, seed.Increment)
}

// EntropyError reports that the entropy source could not supply seed material.
type EntropyError struct {
	Part string // "state" or "increment"
	Err  error
}

func (e *EntropyError) Error() string {
	return fmt.Sprintf("rng: reading %s entropy: %s", e.Part, e.Err)
}

func (e *EntropyError) Unwrap() error {
	return e.Err
}

// ReadSeed draws 32 bytes of state and 32 bytes of increment from r, each read
// as four little-endian 64-bit lanes. A short read is an error; partially
// filled seed material is never used.
func ReadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	var buf [32]byte

	for _, part := range []struct {
		name string
		dst  *[4]uint64
	}{
		{"state", &seed.State},
		{"increment", &seed.Increment},
	} {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Seed{}, &EntropyError{Part: part.name, Err: err}
		}

		for i := range part.dst {
			part.dst[i] = binary.LittleEndian.Uint64(buf[i*8:])
		}
	}

	seed.Increment = [4]uint64{seed.Increment[0] | 1, seed.Increment[1] | 1, seed.Increment[2] | 1, seed.Increment[3] | 1}

	return seed, nil
}

// FromEntropy seeds a generator from r. The returned error, if any, is an
// *EntropyError.
func FromEntropy(backend Backend, r io.Reader) (*PCG32x4, error) {
	seed, err := ReadSeed(r)
	if err != nil {
		return nil, err
	}

	return FromSeed(backend, seed), nil
}

// NewFromEntropy seeds a generator from the operating system's entropy source.
func NewFromEntropy() (*PCG32x4, error) {
	return FromEntropy(Emulated, rand.Reader)
}

// lazyInit gives a zero value the backend, multiplier and odd increments New
// would have set.
func (g *PCG32x4) lazyInit() {
	if g.backend == nil {
		*g = *NewWithBackend(Emulated, g.state, g.inc)
	}
}

// Next advances every lane once and returns the four outputs, lane i at index i.
// Each output is derived from its lane's state before the update.
func (g *PCG32x4) Next() [4]uint32 {
	g.lazyInit()

	old := g.state

	g.state = AddEpi64(g.backend.MulLo64(old, g.mulLo, g.mulHi), g.inc)

	xorshifted := SrliEpi64(XorSi256(SrliEpi64(old, 18), old), 27)
	rot := SrliEpi64(old, 59)

	return Castsi256Si128(Permutevar8x32(g.backend.RotRV32(xorshifted, rot), gatherLow))
}

// Advance jumps every lane delta steps ahead, as if Next had been called delta
// times.
func (g *PCG32x4) Advance(delta uint64) {
	g.lazyInit()

	for i := range g.state {
		g.state[i] = advanceLCG64(g.state[i], delta, Multiplier, g.inc[i])
	}
}

// Lane returns a scalar generator positioned exactly where lane i is. It panics
// if i is not in [0, 3].
func (g *PCG32x4) Lane(i int) PCG32 {
	g.lazyInit()

	return PCG32{State: g.state[i], Inc: g.inc[i]}
}

// Seed returns the current per-lane state and increments. Feeding it to
// FromSeed yields a generator that continues the same four sequences.
func (g *PCG32x4) Seed() Seed {
	g.lazyInit()

	return Seed{State: g.state, Increment: g.inc}
}

func (g *PCG32x4) Backend() Backend {
	g.lazyInit()

	return g.backend
}

const marshalPrefix = "pcg32x4:"

var ErrBadEncoding = errors.New("invalid PCG32x4 encoding")

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (g *PCG32x4) MarshalBinary() ([]byte, error) {
	g.lazyInit()

	b := make([]byte, len(marshalPrefix)+64)
	copy(b, marshalPrefix)

	off := len(marshalPrefix)
	for _, words := range [][4]uint64{g.state, g.inc} {
		for _, w := range words {
			binary.BigEndian.PutUint64(b[off:], w)
			off += 8
		}
	}

	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// receiver keeps its backend, or gets Emulated if it has none.
func (g *PCG32x4) UnmarshalBinary(data []byte) error {
	if len(data) != len(marshalPrefix)+64 || string(data[:len(marshalPrefix)]) != marshalPrefix {
		return ErrBadEncoding
	}

	var state, inc [4]uint64
	data = data[len(marshalPrefix):]
	for i := range state {
		state[i] = binary.BigEndian.Uint64(data[i*8:])
		inc[i] = binary.BigEndian.Uint64(data[32+i*8:])
	}

	*g = *NewWithBackend(g.backend, state, inc)
	return nil
}
