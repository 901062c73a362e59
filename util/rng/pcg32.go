package rng

import "github.com/xor-shift/simdpcg/util"

// Multiplier is the LCG multiplier shared by every lane.
const Multiplier uint64 = 6364136223846793005

// PCG32 is the scalar PCG XSH-RR 64/32 generator. Each lane of PCG32x4 produces
// exactly the sequence of a PCG32 with the same state and increment.
type PCG32 struct {
	State uint64
	Inc   uint64
}

// NewPCG32 forces the increment odd, as every construction path does.
func NewPCG32(state, inc uint64) PCG32 {
	return PCG32{State: state, Inc: inc | 1}
}

// permute is the XSH-RR output function applied to a pre-update state.
func permute(old uint64) uint32 {
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	return util.RotR(xorshifted, uint(old>>59))
}

func (p *PCG32) Next() uint32 {
	old := p.State
	p.State = old*Multiplier + p.Inc
	return permute(old)
}

// Advance jumps the generator delta steps ahead in O(log delta).
func (p *PCG32) Advance(delta uint64) {
	p.State = advanceLCG64(p.State, delta, Multiplier, p.Inc)
}

// advanceLCG64 computes the state reached after delta steps of
// state = state*mul + inc, by repeated squaring of the affine map.
func advanceLCG64(state, delta, mul, inc uint64) uint64 {
	accMul, accInc := uint64(1), uint64(0)

	for delta > 0 {
		if delta&1 != 0 {
			accMul *= mul
			accInc = accInc*mul + inc
		}

		inc = (mul + 1) * inc
		mul *= mul
		delta >>= 1
	}

	return accMul*state + accInc
}
