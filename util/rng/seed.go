package rng

import (
	"errors"
	"fmt"

	"github.com/xor-shift/simdpcg/util"
)

// Seed is the explicit per-lane seed material of a PCG32x4.
type Seed struct {
	State     [4]uint64
	Increment [4]uint64
}

var ErrBadSeed = errors.New("malformed seed")

// String renders the seed as 128 hex digits: the four states, then the four
// increments.
func (s Seed) String() string {
	return util.ArrayToString(s.State[:]) + util.ArrayToString(s.Increment[:])
}

// ParseSeed is the inverse of Seed.String.
func ParseSeed(str string) (Seed, error) {
	var s Seed

	if len(str) != 128 {
		return s, fmt.Errorf("%w: expected 128 hex digits, got %d", ErrBadSeed, len(str))
	}

	if err := util.StringToArray(str[:64], s.State[:]); err != nil {
		return s, fmt.Errorf("%w: state: %s", ErrBadSeed, err)
	}

	if err := util.StringToArray(str[64:], s.Increment[:]); err != nil {
		return s, fmt.Errorf("%w: increment: %s", ErrBadSeed, err)
	}

	return s, nil
}

// SeedFromSequence applies the reference PCG32 seeding routine to every lane:
// the increment becomes initSeq<<1|1, and initState is mixed in around two
// generator steps.
func SeedFromSequence(initState, initSeq [4]uint64) Seed {
	var s Seed

	for i := range s.State {
		p := PCG32{State: 0, Inc: initSeq[i]<<1 | 1}
		p.Next()
		p.State += initState[i]
		p.Next()

		s.State[i] = p.State
		s.Increment[i] = p.Inc
	}

	return s
}

const splitmixGamma = 0x9e3779b97f4a7c15

func splitmix64(x *uint64) uint64 {
	*x += splitmixGamma
	z := *x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// SeedFromUint64 expands one word into all eight lane words with splitmix64.
func SeedFromUint64(seed uint64) Seed {
	var s Seed

	for i := range s.State {
		s.State[i] = splitmix64(&seed)
	}

	for i := range s.Increment {
		s.Increment[i] = splitmix64(&seed) | 1
	}

	return s
}
