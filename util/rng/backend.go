package rng

import (
	"fmt"
	"math/bits"
	"sort"
)

// Backend provides the two lane-wise operations the engine needs but a 256-bit
// integer instruction set does not offer directly.
type Backend interface {
	// MulLo64 returns x*m mod 2^64 per 64-bit lane, where m is given as its
	// broadcast low (mulLo) and high (mulHi) 32-bit halves.
	MulLo64(x, mulLo, mulHi Vec256) Vec256

	// RotRV32 rotates every 32-bit lane of x right by the matching lane of r.
	// Every lane of r must be in [0, 31].
	RotRV32(x, r Vec256) Vec256
}

type emulated struct{}

// Emulated composes both operations out of AVX2-style primitives, mirroring
// the instruction sequence a vectorised build would issue.
var Emulated Backend = emulated{}

var lowMask = Set1Epi64x(0x00000000ffffffff)

func (emulated) MulLo64(x, mulLo, mulHi Vec256) Vec256 {
	xl := AndSi256(x, lowMask)
	xh := SrliEpi64(x, 32)

	// xh*mh<<64 falls outside the low 64 bits and is dropped.
	hl := SlliEpi64(MulEpu32(xh, mulLo), 32)
	lh := SlliEpi64(MulEpu32(xl, mulHi), 32)
	ll := MulEpu32(xl, mulLo)

	return AddEpi64(ll, AddEpi64(hl, lh))
}

var thirtyTwo = Set1Epi32(32)

func (emulated) RotRV32(x, r Vec256) Vec256 {
	// r == 0 gives a left shift by 32, which SllvEpi32 turns into 0.
	return OrSi256(
		SllvEpi32(x, SubEpi32(thirtyTwo, r)),
		SrlvEpi32(x, r),
	)
}

type scalar struct{}

// Scalar computes each lane with native 64-bit arithmetic. It is the portable
// reference the emulated backend is checked against.
var Scalar Backend = scalar{}

func (scalar) MulLo64(x, mulLo, mulHi Vec256) Vec256 {
	var r Vec256
	for i := range r {
		r[i] = x[i] * (uint64(uint32(mulLo[i])) | mulHi[i]<<32)
	}
	return r
}

func (scalar) RotRV32(x, r Vec256) Vec256 {
	var out Vec256
	for i := 0; i < 8; i++ {
		out.set32(i, bits.RotateLeft32(x.get32(i), -int(r.get32(i)&31)))
	}
	return out
}

var backends = map[string]Backend{
	"emulated": Emulated,
	"scalar":   Scalar,
}

// BackendNames lists the names accepted by BackendByName.
func BackendNames() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func BackendByName(name string) (Backend, error) {
	if b, ok := backends[name]; ok {
		return b, nil
	}

	return nil, fmt.Errorf("unknown rng backend %q (have %v)", name, BackendNames())
}
