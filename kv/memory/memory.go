package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/unkn0wn-root/callcache/kv"
)

// Store keeps strings and lists in-process.
// It mirrors the subset of Redis semantics that callcache relies on:
// INCR on a missing key starts at 0, LRANGE accepts negative indexes, and
// a key holds either a string or a list, never both.
type Store struct {
	mu      sync.RWMutex
	strings map[string][]byte
	lists   map[string][]string
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		strings: make(map[string][]byte),
		lists:   make(map[string][]string),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) FlushDB(context.Context) error {
	s.mu.Lock()
	s.strings = make(map[string][]byte)
	s.lists = make(map[string][]string)
	s.mu.Unlock()
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.lists[key]; ok {
		return nil, false, kv.ErrWrongType
	}
	b, ok := s.strings[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.strings[key]; ok {
		return nil, kv.ErrWrongType
	}
	l := s.lists[key]
	n := int64(len(l))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop {
		return []string{}, nil
	}
	out := make([]string, stop-start+1)
	copy(out, l[start:stop+1])
	return out, nil
}

// Tx buffers fn's writes and applies them under one write lock.
// Type errors are checked before anything is applied, so a failed batch
// leaves the store untouched (stricter than Redis EXEC, which runs the rest).
func (s *Store) Tx(_ context.Context, fn func(kv.Tx) error) error {
	var b batch
	if err := fn(&b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]int64)
	for _, op := range b.ops {
		switch op.kind {
		case opIncr:
			if _, ok := s.lists[op.key]; ok {
				return kv.ErrWrongType
			}
			if _, seen := counters[op.key]; seen {
				continue
			}
			if raw, ok := s.strings[op.key]; ok {
				n, err := strconv.ParseInt(string(raw), 10, 64)
				if err != nil {
					return err
				}
				counters[op.key] = n
			} else {
				counters[op.key] = 0
			}
		case opRPush:
			if _, ok := s.strings[op.key]; ok {
				return kv.ErrWrongType
			}
		}
	}

	for _, op := range b.ops {
		switch op.kind {
		case opIncr:
			counters[op.key]++
			s.strings[op.key] = []byte(strconv.FormatInt(counters[op.key], 10))
		case opSet:
			delete(s.lists, op.key)
			v := make([]byte, len(op.value))
			copy(v, op.value)
			s.strings[op.key] = v
		case opRPush:
			s.lists[op.key] = append(s.lists[op.key], string(op.value))
		}
	}
	return nil
}

func (s *Store) Close(context.Context) error { return nil }

type opKind uint8

const (
	opIncr opKind = iota + 1
	opSet
	opRPush
)

type op struct {
	kind  opKind
	key   string
	value []byte
}

type batch struct {
	ops []op
}

func (b *batch) Incr(key string)              { b.ops = append(b.ops, op{kind: opIncr, key: key}) }
func (b *batch) Set(key string, value []byte) { b.ops = append(b.ops, op{kind: opSet, key: key, value: value}) }
func (b *batch) RPush(key, value string) {
	b.ops = append(b.ops, op{kind: opRPush, key: key, value: []byte(value)})
}
