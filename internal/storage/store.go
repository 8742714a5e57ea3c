package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
)

// Store is the JSON adapter over a Backend.
//
// Reads never fail: a missing key, a backend error or a value that is not valid
// JSON all read as "absent" and the caller falls back to its empty default.
// Writes always serialize the full value.
type Store struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Get decodes the value stored under key into out. It reports whether out was
// populated; out is left untouched otherwise.
func (s *Store) Get(ctx context.Context, key string, out any) bool {
	raw, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		log.Printf("[store] unable to read %q: %v", key, err)
		return false
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	// decode into a fresh value so a partial decode never reaches out
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		log.Printf("[store] cannot decode %q into %T", key, out)
		return false
	}
	fresh := reflect.New(dst.Elem().Type())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		log.Printf("[store] discarding corrupt value for %q: %v", key, err)
		return false
	}
	dst.Elem().Set(fresh.Elem())
	return true
}

// Set replaces the value under key with the JSON encoding of v.
func (s *Store) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		log.Printf("[store] unable to write %q: %v", key, err)
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
