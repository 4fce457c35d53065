// Package pkg provides reusable helpers for testgate.
package pkg

import (
	"encoding/gob"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// RunLog is an append-only, gob-encoded record of items of type T spilled to
// disk. The test runner uses it to keep every execution's full captured
// output out of memory while the report carries only excerpts.
type RunLog[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type runLogImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewRunLog creates a RunLog backed by a fresh temp file named after prefix.
func NewRunLog[T any](prefix string) (RunLog[T], error) {
	file, err := os.CreateTemp("", prefix+"-*.gob")
	if err != nil {
		return nil, fmt.Errorf("failed to create run log: %w", err)
	}

	return &runLogImpl[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements RunLog.
func (l *runLogImpl[T]) Append(item T) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.encoder.Encode(item); err != nil {
		slog.Error("failed to encode run log item", "path", l.path, "index", l.length, "error", err)
		return fmt.Errorf("failed to encode run log item: %w", err)
	}

	l.length++

	return nil
}

// Len implements RunLog.
func (l *runLogImpl[T]) Len() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.length
}

// Path implements RunLog.
func (l *runLogImpl[T]) Path() string {
	return l.path
}

// Range implements RunLog. It re-reads the file from the start so items
// appended before the call are visible in order.
func (l *runLogImpl[T]) Range(f func(index uint64, item T) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}

	defer func() { _ = file.Close() }()

	decoder := gob.NewDecoder(file)

	for index := uint64(0); index < l.length; index++ {
		var item T

		if err := decoder.Decode(&item); err != nil {
			if err == io.EOF {
				return nil
			}

			return fmt.Errorf("failed to decode run log item %d: %w", index, err)
		}

		if err := f(index, item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements RunLog.
func (l *runLogImpl[T]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}

	if err := l.file.Close(); err != nil {
		slog.Error("failed to close run log", "path", l.path, "error", err)
		return err
	}

	l.file = nil

	return nil
}
