package util

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"
)

// RotL rotates x left by k bits, k in [0, bit width of T].
func RotL[T uint8 | uint16 | uint32 | uint64](x T, k uint) T {
	bitWidth := uint(unsafe.Sizeof(x) * 8)
	k %= bitWidth
	// Go shifts by >= the operand width yield 0, so k == 0 leaves x intact.
	return (x << k) | (x >> (bitWidth - k))
}

// RotR rotates x right by k bits, k in [0, bit width of T].
func RotR[T uint8 | uint16 | uint32 | uint64](x T, k uint) T {
	bitWidth := uint(unsafe.Sizeof(x) * 8)
	k %= bitWidth
	return (x >> k) | (x << (bitWidth - k))
}

// ArrayToString renders every element as fixed-width lowercase hex, back to back.
func ArrayToString[T uint8 | uint16 | uint32 | uint64](arr []T) string {
	ret := ""

	for _, v := range arr {
		bitWidth := int(unsafe.Sizeof(v) * 8)
		ret += fmt.Sprintf("%0[1]*[2]x", bitWidth/4, v)
	}

	return ret
}

var ErrBadHexArray = errors.New("malformed hex array")

// StringToArray is the inverse of ArrayToString. The length of out decides how
// many elements are expected.
func StringToArray[T uint8 | uint16 | uint32 | uint64](str string, out []T) error {
	var zero T
	digits := int(unsafe.Sizeof(zero) * 2)

	if len(str) != digits*len(out) {
		return fmt.Errorf("%w (expected %d digits, got %d)", ErrBadHexArray, digits*len(out), len(str))
	}

	for i := range out {
		v, err := strconv.ParseUint(str[i*digits:(i+1)*digits], 16, digits*4)
		if err != nil {
			return fmt.Errorf("%w (element %d): %s", ErrBadHexArray, i, err)
		}

		out[i] = T(v)
	}

	return nil
}
