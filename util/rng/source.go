package rng

import "encoding/binary"

const stepBytes = 16

// Source adapts a PCG32x4 to the usual single-value generator shape. It
// implements math/rand.Source64 and io.Reader.
//
// Each step contributes its four lanes as 16 little-endian bytes, lane 0
// first. Uint32 and Uint64 keep the lanes of a step they did not use buffered
// for the next draw, and never straddle two steps: if fewer bytes than they
// need remain buffered, the remainder is dropped and a fresh step is taken.
// FillBytes always starts on a fresh step.
type Source struct {
	g   *PCG32x4
	buf [stepBytes]byte
	off int
}

func NewSource(g *PCG32x4) *Source {
	return &Source{g: g, off: stepBytes}
}

// Generator exposes the wrapped engine for callers that want whole batches.
// Drawing from it directly does not disturb bytes already buffered here.
func (s *Source) Generator() *PCG32x4 {
	return s.g
}

func putStep(dst []byte, words [4]uint32) {
	binary.LittleEndian.PutUint32(dst[0:], words[0])
	binary.LittleEndian.PutUint32(dst[4:], words[1])
	binary.LittleEndian.PutUint32(dst[8:], words[2])
	binary.LittleEndian.PutUint32(dst[12:], words[3])
}

func (s *Source) refill() {
	putStep(s.buf[:], s.g.Next())
	s.off = 0
}

func (s *Source) Uint32() uint32 {
	if stepBytes-s.off < 4 {
		s.refill()
	}

	v := binary.LittleEndian.Uint32(s.buf[s.off:])
	s.off += 4
	return v
}

func (s *Source) Uint64() uint64 {
	if stepBytes-s.off < 8 {
		s.refill()
	}

	v := binary.LittleEndian.Uint64(s.buf[s.off:])
	s.off += 8
	return v
}

// Int63 implements math/rand.Source.
func (s *Source) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// Seed implements math/rand.Source by reseeding all four lanes from seed via
// SeedFromUint64. Buffered bytes are discarded.
func (s *Source) Seed(seed int64) {
	s.g = FromSeed(s.g.backend, SeedFromUint64(uint64(seed)))
	s.off = stepBytes
}

// FillBytes fills dst from fresh steps: 16 bytes per step, then one more step
// for any tail shorter than 16 bytes, keeping only its leading bytes. Bytes
// buffered by Uint32 or Uint64 are dropped. An empty dst takes no step.
func (s *Source) FillBytes(dst []byte) {
	if len(dst) == 0 {
		return
	}

	s.off = stepBytes

	for len(dst) >= stepBytes {
		putStep(dst, s.g.Next())
		dst = dst[stepBytes:]
	}

	if len(dst) > 0 {
		var tail [stepBytes]byte
		putStep(tail[:], s.g.Next())
		copy(dst, tail[:])
	}
}

// Read implements io.Reader. It always fills p and never fails.
func (s *Source) Read(p []byte) (int, error) {
	s.FillBytes(p)
	return len(p), nil
}
