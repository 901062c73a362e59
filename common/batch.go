package common

import (
	"bytes"
	"encoding/gob"
)

// Batch is a run of consecutive generator steps from one session. Words[i] is
// the output of step Sequence+i, lane j at index j.
type Batch struct {
	SessionID uint        `json:"sessionId"`
	Sequence  uint64      `json:"sequence"`
	Words     [][4]uint32 `json:"words"`
}

func EncodeBatch(batch Batch) ([]byte, error) {
	var buffer bytes.Buffer

	if err := gob.NewEncoder(&buffer).Encode(batch); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func DecodeBatch(body []byte) (Batch, error) {
	var batch Batch

	err := gob.NewDecoder(bytes.NewReader(body)).Decode(&batch)
	return batch, err
}
