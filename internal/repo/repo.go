// Package repo contains the repositories that mutate the thesis document.
// Every mutation is a full read of the owning collection from the store, an
// in-memory transform, and a full rewrite of the collection. There is no
// partial update and no cross-key transaction; callers serialize commands
// (at most one in-flight mutating command per document).
package repo

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/store"
)

// loadJSON reads key from the store and unmarshals it into dst.
// Absence is reported as found=false, never as an error.
func loadJSON[T any](ctx context.Context, s store.Store, key string, dst *T) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, errors.NewStore("get", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, errors.NewInternal(fmt.Errorf("corrupt payload for %s: %w", key, err))
	}
	return true, nil
}

// saveJSON marshals v and rewrites key wholesale.
func saveJSON(ctx context.Context, s store.Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.Put(ctx, key, string(raw)); err != nil {
		return errors.NewStore("put", key, err)
	}
	return nil
}

// newULID generates a new ULID.
func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
