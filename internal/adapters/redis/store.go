package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/knitout/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Hash fields of a stored artifact. The program text is kept apart from the
// metadata so it is stored as written, not JSON-escaped.
const (
	fieldMeta    = "meta"
	fieldKnitout = "knitout"
)

// Store implements ports.ArtifactStore using Redis. Each artifact is a hash
// under <prefix><id>; <prefix>ids is a sorted set of ids by save time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL expires artifacts ttl after they were saved. Zero keeps them.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to Redis at address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "knitout:artifact:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) ids() string { return s.prefix + "ids" }

// Save replaces the artifact in one transaction.
func (s *Store) Save(ctx context.Context, a *ports.Artifact) error {
	meta := *a
	meta.Knitout = ""
	data, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", a.ID, err)
	}

	_, err = s.client.TxPipelined(ctx, func(tx backend.Pipeliner) error {
		tx.Del(ctx, s.key(a.ID))
		tx.HSet(ctx, s.key(a.ID), fieldMeta, data, fieldKnitout, a.Knitout)
		if s.ttl > 0 {
			tx.Expire(ctx, s.key(a.ID), s.ttl)
		}
		tx.ZAdd(ctx, s.ids(), backend.Z{Score: float64(s.now().Unix()), Member: a.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", a.ID, err)
	}
	return nil
}

// Load reads both fields of the artifact's hash.
func (s *Store) Load(ctx context.Context, id string) (*ports.Artifact, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", id, err)
	}
	meta, ok := fields[fieldMeta]
	if !ok {
		return nil, ports.ErrArtifactNotFound
	}

	var a ports.Artifact
	if err := json.Unmarshal([]byte(meta), &a); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", id, err)
	}
	a.Knitout = fields[fieldKnitout]
	return &a, nil
}

// Delete removes the artifact and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(tx backend.Pipeliner) error {
		tx.Del(ctx, s.key(id))
		tx.ZRem(ctx, s.ids(), id)
		return nil
	})
	return err
}

// List returns the stored ids, oldest first. Ids whose hash has expired
// are dropped from the index on the way.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.ttl > 0 {
		cutoff := strconv.FormatInt(s.now().Add(-s.ttl).Unix(), 10)
		if err := s.client.ZRemRangeByScore(ctx, s.ids(), "-inf", "("+cutoff).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune artifact index: %w", err)
		}
	}
	ids, err := s.client.ZRange(ctx, s.ids(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	if len(ids) == 0 {
		return ids, nil
	}

	exists := make([]*backend.IntCmd, len(ids))
	if _, err := s.client.Pipelined(ctx, func(p backend.Pipeliner) error {
		for i, id := range ids {
			exists[i] = p.Exists(ctx, s.key(id))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	live := ids[:0]
	var gone []any
	for i, id := range ids {
		if exists[i].Val() == 0 {
			gone = append(gone, id)
			continue
		}
		live = append(live, id)
	}
	if len(gone) > 0 {
		if err := s.client.ZRem(ctx, s.ids(), gone...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune artifact index: %w", err)
		}
	}
	return live, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
