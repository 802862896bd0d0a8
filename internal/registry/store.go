// Package registry is the asset inventory: every generated wall, door and building
// is recorded by name with its tags and slots so later steps can look assets up by
// tag and place them on free slots.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

var ErrNotFound = errors.New("asset not found")

const keyPrefix = "asset/"

// Dimensions are an asset's extents in meters.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// Asset is one inventory record.
type Asset struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Kind       string          `json:"kind"`
	Tags       []string        `json:"tags"`
	Dimensions Dimensions      `json:"dimensions"`
	Slots      []geometry.Slot `json:"slots,omitempty"`
	Seed       int64           `json:"seed"`
	File       string          `json:"file,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// HasTags reports whether every tag is present on the asset.
func (a Asset) HasTags(tags []string) bool {
	for _, t := range tags {
		if !slices.Contains(a.Tags, t) {
			return false
		}
	}
	return true
}

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Store persists assets in BadgerDB keyed by name. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	now    func() time.Time
	logger *slog.Logger
}

// Open opens or creates the store described by cfg.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("registry path is required for a persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create registry directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	logger := cfg.Logger
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger})
	} else {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	return &Store{db: db, now: time.Now, logger: logger}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func key(name string) []byte { return []byte(keyPrefix + name) }

func getAsset(txn *badger.Txn, name string) (Asset, error) {
	item, err := txn.Get(key(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("get %s: %w", name, err)
	}
	var a Asset
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &a)
	})
	if err != nil {
		return Asset{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return a, nil
}

func setAsset(txn *badger.Txn, a Asset) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Name, err)
	}
	return txn.Set(key(a.Name), data)
}

// maxConflictRetries bounds how often update re-runs a transaction that lost a
// write race.
const maxConflictRetries = 50

// update runs fn in a read-write transaction, re-running it when badger reports a
// conflict with a concurrent commit.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 1; ; attempt++ {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt == maxConflictRetries {
			return err
		}
		s.logger.Debug("registry transaction conflict, retrying", "attempt", attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 100 * time.Microsecond):
		}
	}
}

// Put adds the asset or replaces the one with the same name. A new asset gets a
// fresh ID; an existing one keeps its ID and creation time.
func (s *Store) Put(ctx context.Context, a Asset) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	if a.Name == "" {
		return Asset{}, errors.New("asset name is required")
	}
	now := s.now().UTC()
	err := s.update(ctx, func(txn *badger.Txn) error {
		prev, err := getAsset(txn, a.Name)
		switch {
		case err == nil:
			a.ID = prev.ID
			a.CreatedAt = prev.CreatedAt
		case errors.Is(err, ErrNotFound):
			a.ID = uuid.NewString()
			a.CreatedAt = now
		default:
			return err
		}
		a.UpdatedAt = now
		return setAsset(txn, a)
	})
	if err != nil {
		return Asset{}, err
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, name string) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	var a Asset
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		a, err = getAsset(txn, name)
		return err
	})
	return a, err
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := getAsset(txn, name); err != nil {
			return err
		}
		return txn.Delete(key(name))
	})
}

// List returns every asset in name order.
func (s *Store) List(ctx context.Context) ([]Asset, error) {
	return s.FindByTags(ctx, nil)
}

// FindByTags returns the assets carrying every tag, in name order.
func (s *Store) FindByTags(ctx context.Context, tags []string) ([]Asset, error) {
	var out []Asset
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = findByTags(ctx, txn, tags, 0)
		return err
	})
	return out, err
}

// findByTags scans txn in key (name) order and stops after limit matches when
// limit > 0.
func findByTags(ctx context.Context, txn *badger.Txn, tags []string, limit int) ([]Asset, error) {
	var out []Asset
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := []byte(keyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var a Asset
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &a)
		}); err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if a.HasTags(tags) {
			out = append(out, a)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// FindFirst returns the first asset in name order carrying every tag.
func (s *Store) FindFirst(ctx context.Context, tags []string) (Asset, error) {
	found, err := s.FindByTags(ctx, tags)
	if err != nil {
		return Asset{}, err
	}
	if len(found) == 0 {
		return Asset{}, fmt.Errorf("%w for tags %v", ErrNotFound, tags)
	}
	return found[0], nil
}
