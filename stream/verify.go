package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/util/rng"
)

// MismatchError reports the first output of a batch that the seed does not
// reproduce.
type MismatchError struct {
	Step uint64
	Lane int
	Got  uint32
	Want uint32
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("bad output at step %d lane %d (got: %d, expected: %d)", e.Step, e.Lane, e.Got, e.Want)
}

// Verify recomputes every lane of batch independently with the scalar
// reference generator, jumping straight to batch.Sequence.
func Verify(seed rng.Seed, batch common.Batch) error {
	var lanes [4]rng.PCG32

	for i := range lanes {
		lanes[i] = rng.NewPCG32(seed.State[i], seed.Increment[i])
		lanes[i].Advance(batch.Sequence)
	}

	for step, words := range batch.Words {
		for i := range lanes {
			if want := lanes[i].Next(); words[i] != want {
				return &MismatchError{
					Step: batch.Sequence + uint64(step),
					Lane: i,
					Got:  words[i],
					Want: want,
				}
			}
		}
	}

	return nil
}

// Stats summarises what a Verifier has seen.
type Stats struct {
	Verified  uint64 `json:"verified"`
	Failed    uint64 `json:"failed"`
	LastError string `json:"lastError,omitempty"`

	LastBatch *common.Batch `json:"lastBatch,omitempty"`
}

// Verifier checks published batches against the seeds recorded for their
// sessions. Seeds are cached after the first lookup. It is safe for
// concurrent use.
type Verifier struct {
	store SessionStore

	mu    sync.Mutex
	seeds map[uint]rng.Seed
	stats Stats
}

func NewVerifier(store SessionStore) *Verifier {
	return &Verifier{
		store: store,
		seeds: map[uint]rng.Seed{},
	}
}

func (v *Verifier) seed(ctx context.Context, id uint) (rng.Seed, error) {
	v.mu.Lock()
	seed, ok := v.seeds[id]
	v.mu.Unlock()

	if ok {
		return seed, nil
	}

	seed, err := v.store.Lookup(ctx, id)
	if err != nil {
		return rng.Seed{}, err
	}

	v.mu.Lock()
	v.seeds[id] = seed
	v.mu.Unlock()

	return seed, nil
}

func (v *Verifier) Check(ctx context.Context, batch common.Batch) error {
	seed, err := v.seed(ctx, batch.SessionID)
	if err == nil {
		err = Verify(seed, batch)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.stats.Failed++
		v.stats.LastError = fmt.Sprintf("session %d: %s", batch.SessionID, err)
		return err
	}

	v.stats.Verified++
	v.stats.LastBatch = &batch

	return nil
}

func (v *Verifier) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.stats
}
