package rng

// Vec256 models a 256-bit integer register as four 64-bit lanes. Viewed as
// eight 32-bit lanes, 32-bit lane 2i is the low half of 64-bit lane i and
// 2i+1 is its high half, as on a little-endian machine.
//
// The functions below follow the semantics of the AVX2 intrinsics they are
// named after, including the zeroing behaviour of out-of-range shift counts.
type Vec256 [4]uint64

func (v Vec256) get32(i int) uint32 {
	return uint32(v[i>>1] >> (32 * uint(i&1)))
}

func (v *Vec256) set32(i int, x uint32) {
	shift := 32 * uint(i&1)
	v[i>>1] = v[i>>1]&^(0xffffffff<<shift) | uint64(x)<<shift
}

// Set1Epi64x broadcasts x to all four 64-bit lanes.
func Set1Epi64x(x uint64) Vec256 {
	return Vec256{x, x, x, x}
}

// Set1Epi32 broadcasts x to all eight 32-bit lanes.
func Set1Epi32(x uint32) Vec256 {
	return Set1Epi64x(uint64(x) | uint64(x)<<32)
}

func AndSi256(a, b Vec256) Vec256 {
	return Vec256{a[0] & b[0], a[1] & b[1], a[2] & b[2], a[3] & b[3]}
}

func OrSi256(a, b Vec256) Vec256 {
	return Vec256{a[0] | b[0], a[1] | b[1], a[2] | b[2], a[3] | b[3]}
}

func XorSi256(a, b Vec256) Vec256 {
	return Vec256{a[0] ^ b[0], a[1] ^ b[1], a[2] ^ b[2], a[3] ^ b[3]}
}

func AddEpi64(a, b Vec256) Vec256 {
	return Vec256{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// SrliEpi64 shifts every 64-bit lane right by an immediate; counts above 63
// clear the lane.
func SrliEpi64(a Vec256, imm uint) Vec256 {
	if imm > 63 {
		return Vec256{}
	}
	return Vec256{a[0] >> imm, a[1] >> imm, a[2] >> imm, a[3] >> imm}
}

// SlliEpi64 shifts every 64-bit lane left by an immediate; counts above 63
// clear the lane.
func SlliEpi64(a Vec256, imm uint) Vec256 {
	if imm > 63 {
		return Vec256{}
	}
	return Vec256{a[0] << imm, a[1] << imm, a[2] << imm, a[3] << imm}
}

// MulEpu32 multiplies the low unsigned 32 bits of each 64-bit lane, producing
// the full 64-bit product per lane.
func MulEpu32(a, b Vec256) Vec256 {
	var r Vec256
	for i := range r {
		r[i] = uint64(uint32(a[i])) * uint64(uint32(b[i]))
	}
	return r
}

func SubEpi32(a, b Vec256) Vec256 {
	var r Vec256
	for i := 0; i < 8; i++ {
		r.set32(i, a.get32(i)-b.get32(i))
	}
	return r
}

// SllvEpi32 shifts each 32-bit lane of a left by the matching lane of count.
// Counts above 31 produce 0.
func SllvEpi32(a, count Vec256) Vec256 {
	var r Vec256
	for i := 0; i < 8; i++ {
		if c := count.get32(i); c < 32 {
			r.set32(i, a.get32(i)<<c)
		}
	}
	return r
}

// SrlvEpi32 shifts each 32-bit lane of a right by the matching lane of count.
// Counts above 31 produce 0.
func SrlvEpi32(a, count Vec256) Vec256 {
	var r Vec256
	for i := 0; i < 8; i++ {
		if c := count.get32(i); c < 32 {
			r.set32(i, a.get32(i)>>c)
		}
	}
	return r
}

// Permutevar8x32 gathers 32-bit lanes: lane j of the result is lane idx[j]&7 of a.
func Permutevar8x32(a Vec256, idx [8]uint32) Vec256 {
	var r Vec256
	for j, i := range idx {
		r.set32(j, a.get32(int(i&7)))
	}
	return r
}

// Castsi256Si128 returns the low 128 bits as four 32-bit lanes.
func Castsi256Si128(a Vec256) [4]uint32 {
	return [4]uint32{a.get32(0), a.get32(1), a.get32(2), a.get32(3)}
}
