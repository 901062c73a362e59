package main

import (
	"bytes"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/template"
)

type exporter func(w io.Writer, first uint64, words [][4]uint32, titles bool) error

var exporters = map[string]exporter{
	"hex":  exportHex,
	"csv":  exportCSV,
	"json": exportJSON,
	"raw":  exportRaw,
}

func exportHex(w io.Writer, _ uint64, words [][4]uint32, _ bool) error {
	for _, step := range words {
		if _, err := fmt.Fprintf(w, "%08x %08x %08x %08x\n", step[0], step[1], step[2], step[3]); err != nil {
			return err
		}
	}

	return nil
}

func exportCSV(w io.Writer, first uint64, words [][4]uint32, titles bool) error {
	csvWriter := csv.NewWriter(w)

	if titles {
		if err := csvWriter.Write([]string{"Step", "Lane 0", "Lane 1", "Lane 2", "Lane 3"}); err != nil {
			return err
		}
	}

	record := make([]string, 5)
	for i, step := range words {
		record[0] = strconv.FormatUint(first+uint64(i), 10)
		for lane, word := range step {
			record[lane+1] = strconv.FormatUint(uint64(word), 10)
		}

		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func exportJSON(w io.Writer, first uint64, words [][4]uint32, _ bool) error {
	return json.NewEncoder(w).Encode(struct {
		First uint64      `json:"first"`
		Words [][4]uint32 `json:"words"`
	}{first, words})
}

// exportRaw writes the same byte stream rng.Source produces.
func exportRaw(w io.Writer, _ uint64, words [][4]uint32, _ bool) error {
	var buf [16]byte

	for _, step := range words {
		for lane, word := range step {
			binary.LittleEndian.PutUint32(buf[lane*4:], word)
		}

		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}

	return nil
}

type outputArguments struct {
	Seed    string
	Backend string
	Format  string
}

// openOutput creates the templated output file, or returns stdout for "-".
func openOutput(nameTemplate string, args outputArguments) (io.WriteCloser, error) {
	if nameTemplate == "-" {
		return nopCloser{os.Stdout}, nil
	}

	tmpl, err := template.New("out").Parse(nameTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing the output filename template: %w", err)
	}

	nameBuf := bytes.Buffer{}
	if err = tmpl.Execute(&nameBuf, args); err != nil {
		return nil, fmt.Errorf("executing the output filename template: %w", err)
	}

	file, err := os.Create(nameBuf.String())
	if err != nil {
		return nil, fmt.Errorf("creating the output file \"%s\": %w", nameBuf.String(), err)
	}

	return file, nil
}

// closeOutput closes out and reports the first of err and the close error.
func closeOutput(out io.Closer, err error) error {
	if closeErr := out.Close(); err == nil && closeErr != nil {
		return fmt.Errorf("closing the output: %w", closeErr)
	}

	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
