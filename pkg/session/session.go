// Package session persists value graphs in a string-only key/value store.
// Values are saved in the compressed s14e form and can be saved at once or
// through a debounce window that coalesces bursts of changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorhill/uBO-Scope/pkg/kvstore"
	"github.com/gorhill/uBO-Scope/pkg/s14e"
)

// DefaultDebounce is the delay between the first SaveDebounced call and the
// save it schedules.
const DefaultDebounce = 10 * time.Second

var (
	// ErrCorruptState is returned by Load when the stored string is not a
	// readable serialized value.
	ErrCorruptState = errors.New("session: corrupt state")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session: persister closed")
)

// Config configures a Persister.
type Config struct {
	Store kvstore.Store
	// DisableCompression stores the plain form only.
	DisableCompression bool
	// CompressThreshold skips compression for values whose plain form is
	// shorter than this many characters.
	CompressThreshold int
	// Debounce is the SaveDebounced window. Zero means DefaultDebounce.
	Debounce time.Duration
	// MaxByteLength bounds buffers and decompressed data on Load. Zero
	// means s14e.DefaultMaxByteLength.
	MaxByteLength int
	Logger        s14e.Logger
}

// Snapshot returns the value to save. SaveDebounced calls it when the
// window closes, so the latest state is what gets written.
type Snapshot func() s14e.Value

// Persister saves and loads values under string keys.
type Persister struct {
	store    kvstore.Store
	save     []s14e.Option
	load     []s14e.Option
	debounce time.Duration
	logger   s14e.Logger

	// saveMu orders debounced writes: taking the pending set and writing
	// it happen under one hold. Lock order is saveMu, then mu.
	saveMu  sync.Mutex
	mu      sync.Mutex
	pending map[string]Snapshot
	timer   *time.Timer
	gen     uint64
	closed  bool
	wg      sync.WaitGroup
}

// New creates a Persister.
func New(cfg Config) (*Persister, error) {
	if cfg.Store == nil {
		return nil, errors.New("session: Config.Store is required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = s14e.NopLogger{}
	}
	if cfg.MaxByteLength <= 0 {
		cfg.MaxByteLength = s14e.DefaultMaxByteLength
	}

	p := &Persister{
		store:    cfg.Store,
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
		pending:  make(map[string]Snapshot),
		load:     []s14e.Option{s14e.WithMaxByteLength(cfg.MaxByteLength)},
	}
	p.save = []s14e.Option{s14e.WithLogger(cfg.Logger)}
	if !cfg.DisableCompression {
		p.save = append(p.save, s14e.WithCompress())
		if cfg.CompressThreshold > 0 {
			p.save = append(p.save, s14e.WithCompressThreshold(cfg.CompressThreshold))
		}
	}
	return p, nil
}

// Save serializes v and writes it under key.
func (p *Persister) Save(ctx context.Context, key string, v s14e.Value) error {
	s, err := s14e.Serialize(v, p.save...)
	if err != nil {
		return fmt.Errorf("session: save %s: %w", key, err)
	}
	if err := p.store.Set(ctx, key, s); err != nil {
		return fmt.Errorf("session: save %s: %w", key, err)
	}
	p.logger.Debug("session: saved", "key", key, "size", len(s), "compressed", s14e.IsCompressed(s))
	return nil
}

// Load reads the value under key. ok is false when nothing is stored.
// A stored string that cannot be read returns ErrCorruptState.
func (p *Persister) Load(ctx context.Context, key string) (v s14e.Value, ok bool, err error) {
	s, err := p.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrMiss) {
		return s14e.Value{}, false, nil
	}
	if err != nil {
		return s14e.Value{}, false, fmt.Errorf("session: load %s: %w", key, err)
	}
	if !s14e.IsSerialized(s) {
		p.logger.Warn("session: stored state is not serialized data", "key", key)
		return s14e.Value{}, false, fmt.Errorf("%w: %s", ErrCorruptState, key)
	}
	v, err = s14e.Deserialize(s, p.load...)
	if err != nil {
		p.logger.Warn("session: stored state is unreadable", "key", key, "err", err)
		return s14e.Value{}, false, fmt.Errorf("%w: %s: %w", ErrCorruptState, key, err)
	}
	return v, true, nil
}

// SaveDebounced schedules a save of key. The first call opens the debounce
// window; calls made while it is open only replace the snapshot. Errors of
// the scheduled save are logged.
func (p *Persister) SaveDebounced(key string, snapshot Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.pending[key] = snapshot
	if p.timer == nil {
		p.gen++
		gen := p.gen
		p.wg.Add(1)
		p.timer = time.AfterFunc(p.debounce, func() { p.fire(gen) })
	}
	return nil
}

func (p *Persister) fire(gen uint64) {
	defer p.wg.Done()

	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	p.mu.Lock()
	if p.timer == nil || p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	pending := p.pending
	p.pending = make(map[string]Snapshot)
	p.mu.Unlock()

	if err := p.saveAll(context.Background(), pending); err != nil {
		p.logger.Error("session: debounced save failed", "err", err)
	}
}

// Flush runs pending debounced saves now. It waits for a scheduled save
// already writing, so a newer snapshot is never overwritten by an older one.
func (p *Persister) Flush(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	p.mu.Lock()
	if p.timer != nil {
		if p.timer.Stop() {
			p.wg.Done()
		}
		p.timer = nil
	}
	pending := p.pending
	p.pending = make(map[string]Snapshot)
	p.mu.Unlock()

	return p.saveAll(ctx, pending)
}

func (p *Persister) saveAll(ctx context.Context, pending map[string]Snapshot) error {
	var errs []error
	for key, snapshot := range pending {
		if err := p.Save(ctx, key, snapshot()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes pending saves, waits for a scheduled save already running,
// and rejects further SaveDebounced calls.
func (p *Persister) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	err := p.Flush(ctx)
	p.wg.Wait()
	return err
}
