package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrBucketExists is returned when an append would overwrite a key.
var ErrBucketExists = errors.New("bucket already exists")

// Store is an append-only, insertion-ordered mapping from bucket key to an
// ordered list. The current list for any consumer is the one under the
// last key. Store is not safe for concurrent use.
type Store[T any] struct {
	keys  []string
	items map[string][]T
}

// NewStore returns an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{items: make(map[string][]T)}
}

// Latest returns the most recently appended key and its list.
func (s *Store[T]) Latest() (string, []T, bool) {
	if len(s.keys) == 0 {
		return "", nil, false
	}
	k := s.keys[len(s.keys)-1]
	return k, s.items[k], true
}

// LatestKey returns the last key, or "" when the store is empty.
func (s *Store[T]) LatestKey() string {
	k, _, _ := s.Latest()
	return k
}

// Append adds values under a new key. Existing keys are never replaced.
func (s *Store[T]) Append(key string, values []T) error {
	if key == "" {
		return fmt.Errorf("append: empty bucket key")
	}
	if _, ok := s.items[key]; ok {
		return fmt.Errorf("append %q: %w", key, ErrBucketExists)
	}
	if values == nil {
		values = []T{}
	}
	s.keys = append(s.keys, key)
	s.items[key] = values
	return nil
}

// Get returns the list stored under key.
func (s *Store[T]) Get(key string) ([]T, bool) {
	v, ok := s.items[key]
	return v, ok
}

// Keys returns the bucket keys in insertion order.
func (s *Store[T]) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len reports the number of buckets.
func (s *Store[T]) Len() int {
	return len(s.keys)
}

// MarshalJSON encodes the store as an object whose members follow
// insertion order.
func (s *Store[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(s.items[k])
		if err != nil {
			return nil, fmt.Errorf("marshal bucket %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a store, preserving the member order of the
// encoded object.
func (s *Store[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("bucket store: expected object")
	}
	fresh := NewStore[T]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("bucket store: expected key")
		}
		var values []T
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("bucket %q: %w", key, err)
		}
		if err := fresh.Append(key, values); err != nil {
			return err
		}
	}
	*s = *fresh
	return nil
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// NextKey derives the key a component should write after latest. A
// component writing after a foreign key starts at component_1; writing
// after its own key increments the trailing number.
func NextKey(component, latest string) string {
	if !strings.HasPrefix(latest, component) {
		return component + "_1"
	}
	n := 0
	if m := trailingDigits.FindString(latest[len(component):]); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			n = v
		}
	}
	return component + "_" + strconv.Itoa(n+1)
}

// NextKey derives the key component should append under, starting from
// the latest key and stepping past keys that already exist.
func (s *Store[T]) NextKey(component string) string {
	key := NextKey(component, s.LatestKey())
	for {
		if _, taken := s.items[key]; !taken {
			return key
		}
		key = NextKey(component, key)
	}
}
