// Package session keeps the per-booking-session context (active project, current user,
// lead) in Redis so every worker of one booking sees the same values.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"booking-workers/internal/common/config"
	"booking-workers/internal/common/database"
	"booking-workers/internal/models"
)

const maxUpdateAttempts = 3

var ErrConflict = errors.New("session was modified concurrently")

type Store struct {
	redis  *database.RedisClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewStore(rdb *database.RedisClient, cfg config.SessionConfig) *Store {
	return &Store{
		redis:  rdb,
		prefix: cfg.KeyPrefix,
		ttl:    time.Duration(cfg.TTL) * time.Second,
		now:    time.Now,
	}
}

func (s *Store) Key(id string) string {
	return s.prefix + ":" + id
}

// Load returns the stored session, or a fresh one carrying only id when none exists.
func (s *Store) Load(ctx context.Context, id string) (*models.Session, error) {
	sess := &models.Session{}
	err := s.redis.GetJSON(ctx, s.Key(id), sess)
	if errors.Is(err, database.ErrCacheMiss) {
		return &models.Session{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Save overwrites the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	sess.UpdatedAt = s.now().UTC()
	return s.redis.SetJSON(ctx, s.Key(sess.ID), sess, s.ttl)
}

// Update applies fn to the stored session under WATCH, retrying when another writer
// touched the key in between.
func (s *Store) Update(ctx context.Context, id string, fn func(*models.Session)) (*models.Session, error) {
	key := s.Key(id)
	var result *models.Session

	txf := func(tx *redis.Tx) error {
		sess := &models.Session{ID: id}
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, sess); err != nil {
				return fmt.Errorf("decode session %s: %w", id, err)
			}
		}

		fn(sess)
		sess.ID = id
		sess.UpdatedAt = s.now().UTC()

		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encode session %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err == nil {
			result = sess
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.redis.Client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("update session %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("update session %s: %w", id, ErrConflict)
}

func (s *Store) SetActiveProject(ctx context.Context, id, projectID string) (*models.Session, error) {
	return s.Update(ctx, id, func(sess *models.Session) {
		sess.ActiveProjectID = projectID
	})
}

func (s *Store) SetCurrentUser(ctx context.Context, id string, actor models.Actor) (*models.Session, error) {
	return s.Update(ctx, id, func(sess *models.Session) {
		a := actor
		sess.CurrentUser = &a
	})
}

func (s *Store) Clear(ctx context.Context, id string) error {
	return s.redis.Del(ctx, s.Key(id))
}
