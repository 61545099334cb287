package kv

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"sort"
	"sync"
)

var _ Store = (*Memory)(nil)

// Memory is an in-memory Store. It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	opts *Options
}

// NewMemory creates an empty in-memory Store. Pass nil for default options.
func NewMemory(opts *Options) *Memory {
	return &Memory{
		data: make(map[string][]byte),
		opts: opts,
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.data[string(m.opts.encode(key))]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(v), nil
}

func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	k := string(m.opts.encode(key))
	v := slices.Clone(value)
	m.mu.Lock()
	m.data[k] = v
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key Key) error {
	k := string(m.opts.encode(key))
	m.mu.Lock()
	delete(m.data, k)
	m.mu.Unlock()
	return nil
}

func (m *Memory) DeletePrefix(_ context.Context, prefix Key) error {
	p := m.opts.encodePrefix(prefix)
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if bytes.HasPrefix([]byte(k), p) {
			delete(m.data, k)
		}
	}
	return nil
}

func (m *Memory) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	p := m.opts.encodePrefix(prefix)

	// Snapshot under the read lock so callers may write while iterating.
	m.mu.RLock()
	type pair struct {
		key string
		val []byte
	}
	var matches []pair
	for k, v := range m.data {
		if bytes.HasPrefix([]byte(k), p) {
			matches = append(matches, pair{k, slices.Clone(v)})
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].key < matches[j].key
	})

	return func(yield func(Entry, error) bool) {
		for _, e := range matches {
			if !yield(Entry{Key: m.opts.decode([]byte(e.key)), Value: e.val}, nil) {
				return
			}
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
