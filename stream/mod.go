package stream

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kataras/golog"
	"github.com/xor-shift/simdpcg/common"
	"github.com/xor-shift/simdpcg/util/rng"
)

type SessionStore interface {
	Create(ctx context.Context, seed rng.Seed) (uint, error)
	Lookup(ctx context.Context, id uint) (rng.Seed, error)
}

type Publisher interface {
	Publish(batch common.Batch) error
}

const requestQueueSize = 128

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrQueueFull       = errors.New("request queue is full")
	ErrStopped         = errors.New("streamer is stopped")
)

// Session describes the stream currently being published.
type Session struct {
	ID       uint   `json:"session"`
	Seed     string `json:"seed"`
	Sequence uint64 `json:"sequence"`
}

type state struct {
	active   bool
	id       uint
	seed     rng.Seed
	gen      *rng.PCG32x4
	sequence uint64
}

// Streamer owns one session's generator and publishes batches of its output.
// Requests are queued and drained by worker goroutines; batches leave in
// sequence order only with a single worker.
type Streamer struct {
	store     SessionStore
	publisher Publisher
	backend   rng.Backend
	entropy   io.Reader

	mu      sync.Mutex
	state   state
	stopped bool

	workerWG *sync.WaitGroup
	requests chan uint
}

func NewStreamer(store SessionStore, publisher Publisher, backend rng.Backend, entropy io.Reader) *Streamer {
	return &Streamer{
		store:     store,
		publisher: publisher,
		backend:   backend,
		entropy:   entropy,

		workerWG: &sync.WaitGroup{},
		requests: make(chan uint, requestQueueSize),
	}
}

// Reset starts a new session from fresh entropy and records its seed. The
// previous session, if any, stays untouched on failure.
func (s *Streamer) Reset(ctx context.Context) (Session, error) {
	seed, err := rng.ReadSeed(s.entropy)
	if err != nil {
		return Session{}, err
	}

	id, err := s.store.Create(ctx, seed)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{
		active: true,
		id:     id,
		seed:   seed,
		gen:    rng.FromSeed(s.backend, seed),
	}

	golog.Infof("started session %d", id)

	return s.sessionLocked(), nil
}

func (s *Streamer) sessionLocked() Session {
	return Session{
		ID:       s.state.id,
		Seed:     s.state.seed.String(),
		Sequence: s.state.sequence,
	}
}

func (s *Streamer) Session() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.active {
		return Session{}, ErrNoActiveSession
	}

	return s.sessionLocked(), nil
}

// Draw takes the next steps outputs of the active session.
func (s *Streamer) Draw(steps uint) (common.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.active {
		return common.Batch{}, ErrNoActiveSession
	}

	batch := common.Batch{
		SessionID: s.state.id,
		Sequence:  s.state.sequence,
		Words:     make([][4]uint32, steps),
	}

	for i := range batch.Words {
		batch.Words[i] = s.state.gen.Next()
	}

	s.state.sequence += uint64(steps)

	return batch, nil
}

// Request queues a batch of the given number of steps for publishing. It
// never blocks: a full queue yields ErrQueueFull.
func (s *Streamer) Request(steps uint) error {
	if steps == 0 {
		return errors.New("batch must contain at least one step")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}

	select {
	case s.requests <- steps:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start starts numWorkers goroutines draining queued requests.
func (s *Streamer) Start(numWorkers uint) {
	s.workerWG.Add(int(numWorkers))

	for i := uint(0); i < numWorkers; i++ {
		go s.task()
	}
}

// Stop closes the request queue and waits for the workers to drain it. Later
// requests fail with ErrStopped.
func (s *Streamer) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		close(s.requests)
	}
	s.mu.Unlock()

	s.workerWG.Wait()
}

func (s *Streamer) task() {
	defer s.workerWG.Done()

	for steps := range s.requests {
		batch, err := s.Draw(steps)
		if err != nil {
			golog.Warnf("dropping a request for %d steps: %s", steps, err)
			continue
		}

		if err = s.publisher.Publish(batch); err != nil {
			golog.Errorf("publishing batch %d+%d of session %d: %s", batch.Sequence, len(batch.Words), batch.SessionID, err)
			continue
		}

		golog.Debugf("published batch %d+%d of session %d", batch.Sequence, len(batch.Words), batch.SessionID)
	}
}
