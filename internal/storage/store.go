// Package storage persists the whole order collection as one JSON
// document. Writes go to a temp file that is renamed over the canonical
// path, so the rename is the single commit point and readers never see
// a torn document.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ggshop/orders-service/internal/order"
)

type Stats struct {
	Path      string
	SizeBytes int64
	Orders    int
}

// Store owns the orders file. All mutations run through Update, which
// holds the write lock across the whole load-mutate-save cycle; reads
// take the read lock and may run concurrently.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

func New(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	s := &Store{path: path, logger: logger}

	// Make sure the file exists and is readable before serving, setting
	// aside a corrupt document if one is found.
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the current collection. A missing or corrupt file yields
// an empty collection; repair happens on the next Update.
func (s *Store) Load(ctx context.Context) (order.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyCollection(), nil
	}
	if err != nil {
		return order.Collection{}, fmt.Errorf("read orders file: %w", err)
	}

	c, ok := decode(raw)
	if !ok {
		s.logger.Warn("orders file is unreadable, serving empty collection", "path", s.path)
		return emptyCollection(), nil
	}
	return c, nil
}

// Update runs one atomic load-mutate-save cycle. If fn returns an error
// nothing is written and the error is returned as-is.
func (s *Store) Update(ctx context.Context, fn func(c *order.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(&c); err != nil {
		return err
	}
	return s.saveLocked(c)
}

// Stats reports the on-disk state for the debug endpoint.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(s.path)
	if err != nil {
		return Stats{}, fmt.Errorf("stat orders file: %w", err)
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Stats{}, fmt.Errorf("read orders file: %w", err)
	}
	c, _ := decode(raw)
	return Stats{Path: s.path, SizeBytes: info.Size(), Orders: len(c.Orders)}, nil
}

func (s *Store) loadLocked() (order.Collection, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		c := emptyCollection()
		if err := s.saveLocked(c); err != nil {
			return order.Collection{}, err
		}
		return c, nil
	}
	if err != nil {
		return order.Collection{}, fmt.Errorf("read orders file: %w", err)
	}

	c, ok := decode(raw)
	if !ok {
		s.quarantineLocked()
		c = emptyCollection()
		if err := s.saveLocked(c); err != nil {
			return order.Collection{}, err
		}
	}
	return c, nil
}

func (s *Store) saveLocked(c order.Collection) error {
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode orders: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace orders file: %w", err)
	}
	return nil
}

// quarantineLocked moves a corrupt document aside so an operator can
// inspect it instead of losing it to the reset.
func (s *Store) quarantineLocked() {
	backup := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
	if err := os.Rename(s.path, backup); err != nil {
		s.logger.Error("set aside corrupt orders file", "path", s.path, "err", err)
		return
	}
	s.logger.Warn("orders file was corrupt, reset to empty collection", "path", s.path, "backup", backup)
}

// decode reports false for anything that is not an object carrying an
// orders array.
func decode(raw []byte) (order.Collection, bool) {
	var c order.Collection
	if err := json.Unmarshal(raw, &c); err != nil {
		return order.Collection{}, false
	}
	if c.Orders == nil {
		return order.Collection{}, false
	}
	return c, true
}

func emptyCollection() order.Collection {
	return order.Collection{Orders: []order.Order{}}
}
