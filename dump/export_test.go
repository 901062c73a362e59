package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xor-shift/simdpcg/util/rng"
)

var sampleWords = [][4]uint32{
	{0x00000001, 0xdeadbeef, 0x7fffffff, 0xffffffff},
	{0x12345678, 0, 42, 0x80000000},
}

func TestExportHex(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, exportHex(&buf, 0, sampleWords, false))

	assert.Equal(t, "00000001 deadbeef 7fffffff ffffffff\n12345678 00000000 0000002a 80000000\n", buf.String())
}

func TestExportCSV(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, exportCSV(&buf, 10, sampleWords, true))

	assert.Equal(t, ""+
		"Step,Lane 0,Lane 1,Lane 2,Lane 3\n"+
		"10,1,3735928559,2147483647,4294967295\n"+
		"11,305419896,0,42,2147483648\n", buf.String())

	buf.Reset()
	require.NoError(t, exportCSV(&buf, 0, sampleWords[:1], false))
	assert.Equal(t, "0,1,3735928559,2147483647,4294967295\n", buf.String())
}

func TestExportJSON(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, exportJSON(&buf, 3, sampleWords, false))

	assert.JSONEq(t, `{"first":3,"words":[[1,3735928559,2147483647,4294967295],[305419896,0,42,2147483648]]}`, buf.String())
}

func TestExportRawMatchesSource(t *testing.T) {
	seed := rng.SeedFromUint64(1234)

	g := rng.FromSeed(rng.Emulated, seed)
	words := make([][4]uint32, 9)
	for i := range words {
		words[i] = g.Next()
	}

	buf := bytes.Buffer{}
	require.NoError(t, exportRaw(&buf, 0, words, false))

	want := make([]byte, 9*16)
	rng.NewSource(rng.FromSeed(rng.Scalar, seed)).FillBytes(want)
	assert.Equal(t, want, buf.Bytes())
}

func TestOpenOutput(t *testing.T) {
	dir := t.TempDir()

	out, err := openOutput(filepath.Join(dir, "{{.Backend}}_{{.Seed}}.{{.Format}}"), outputArguments{
		Seed:    "abcd",
		Backend: "scalar",
		Format:  "csv",
	})
	require.NoError(t, err)

	_, err = out.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	data, err := os.ReadFile(filepath.Join(dir, "scalar_abcd.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = openOutput("{{.Missing", outputArguments{})
	assert.Error(t, err)

	out, err = openOutput("-", outputArguments{})
	require.NoError(t, err)
	assert.NoError(t, out.Close())
}

type failingCloser struct {
	err    error
	closed bool
}

func (c *failingCloser) Close() error {
	c.closed = true
	return c.err
}

func TestCloseOutput(t *testing.T) {
	writeErr := errors.New("write failed")
	closeErr := errors.New("close failed")

	c := &failingCloser{err: closeErr}
	assert.ErrorIs(t, closeOutput(c, nil), closeErr)
	assert.True(t, c.closed)

	c = &failingCloser{err: closeErr}
	assert.ErrorIs(t, closeOutput(c, writeErr), writeErr)
	assert.True(t, c.closed)

	assert.NoError(t, closeOutput(&failingCloser{}, nil))
}

func TestWordsCmd_NamesOutputAfterSeed(t *testing.T) {
	dir := t.TempDir()
	g := &Globals{Backend: "emulated", From: "11"}
	seed := rng.SeedFromUint64(11)

	cmd := wordsCmd{
		Steps:  3,
		Skip:   1000,
		Out:    filepath.Join(dir, "{{.Seed}}.{{.Format}}"),
		Format: "hex",
	}
	require.NoError(t, cmd.Run(g))

	data, err := os.ReadFile(filepath.Join(dir, seed.String()[:16]+".hex"))
	require.NoError(t, err)

	g2 := rng.FromSeed(rng.Scalar, seed)
	g2.Advance(1000)
	want := bytes.Buffer{}
	require.NoError(t, exportHex(&want, 1000, [][4]uint32{g2.Next(), g2.Next(), g2.Next()}, false))
	assert.Equal(t, want.String(), string(data))
}

func TestGlobals_Seed(t *testing.T) {
	want := rng.SeedFromUint64(77)

	g := Globals{Seed: want.String()}
	seed, err := g.seed(nil)
	require.NoError(t, err)
	assert.Equal(t, want, seed)

	g = Globals{From: "77"}
	seed, err = g.seed(nil)
	require.NoError(t, err)
	assert.Equal(t, want, seed)

	g = Globals{From: "0x4d"}
	seed, err = g.seed(nil)
	require.NoError(t, err)
	assert.Equal(t, want, seed)

	g = Globals{From: "-1"}
	_, err = g.seed(nil)
	assert.ErrorIs(t, err, errBadFrom)

	g = Globals{Seed: "zz"}
	_, err = g.seed(nil)
	assert.ErrorIs(t, err, rng.ErrBadSeed)

	g = Globals{}
	seed, err = g.seed(bytes.NewReader(bytes.Repeat([]byte{1}, 64)))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0101010101010101), seed.State[0])
}

func TestGlobals_Generator(t *testing.T) {
	g := Globals{Backend: "nope", From: "1"}
	_, err := g.generator(nil)
	assert.Error(t, err)

	g.Backend = "scalar"
	gen, err := g.generator(nil)
	require.NoError(t, err)
	assert.Equal(t, rng.Scalar, gen.Backend())
	assert.Equal(t, rng.SeedFromUint64(1), gen.Seed())
}

func TestBench(t *testing.T) {
	_, sink := benchVector(rng.Emulated, 2, 100)
	_, sinkRef := benchReference(2, 100)

	assert.Equal(t, sinkRef, sink)
}
