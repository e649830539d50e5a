// Copyright (c) 2025 Arc Engineering
// SPDX-License-Identifier: MIT

package reading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mtreilly/arc-reading/internal/store"
)

const progressCacheSize = 128

// KVStore implements the ProgressStore interface over a store.KVStore.
// Records are JSON; a per-user index list supports ListProgress, and
// recently loaded records are served from an LRU cache invalidated on
// save.
type KVStore struct {
	kv    store.KVStore
	cache *lru.Cache[string, *ReadingProgress]
}

// NewKVStore creates a progress store backed by the given KVStore.
func NewKVStore(kv store.KVStore) (*KVStore, error) {
	cache, err := lru.New[string, *ReadingProgress](progressCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init cache: %w", err)
	}
	return &KVStore{kv: kv, cache: cache}, nil
}

// generateKey creates namespaced keys for the different record types.
func (s *KVStore) generateKey(prefix, userID, bookID string) string {
	return fmt.Sprintf("arc-reading:%s:%s:%s", prefix, userID, bookID)
}

func (s *KVStore) userIndexKey(userID string) string {
	return fmt.Sprintf("arc-reading:index:user:%s", userID)
}

func cacheKey(userID, bookID string) string {
	return userID + "\x00" + bookID
}

// Progress records

func (s *KVStore) LoadProgress(userID, bookID string) (*ReadingProgress, error) {
	if p, ok := s.cache.Get(cacheKey(userID, bookID)); ok {
		return p.Clone(), nil
	}

	ctx := context.Background()
	data, err := s.kv.Get(ctx, s.generateKey("progress", userID, bookID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var p ReadingProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal progress: %w", err)
	}
	s.cache.Add(cacheKey(userID, bookID), p.Clone())
	return &p, nil
}

func (s *KVStore) SaveProgress(p *ReadingProgress) error {
	if p.ID == "" {
		return fmt.Errorf("progress record has no id")
	}
	p.UpdatedAt = time.Now()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	ctx := context.Background()
	if err := s.kv.Set(ctx, s.generateKey("progress", p.UserID, p.BookID), data); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	s.cache.Add(cacheKey(p.UserID, p.BookID), p.Clone())

	if err := s.addToUserIndex(p.UserID, p.BookID); err != nil {
		// Indices can be rebuilt; the record itself is saved.
		return nil
	}
	return nil
}

func (s *KVStore) ListProgress(userID string) ([]*ReadingProgress, error) {
	bookIDs, err := s.getUserIndex(userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var records []*ReadingProgress
	for _, bookID := range bookIDs {
		p, err := s.LoadProgress(userID, bookID)
		if err != nil {
			continue
		}
		if p == nil {
			continue
		}
		records = append(records, p)
	}

	// Most recently read first (simple insertion sort, lists are small)
	for i := 1; i < len(records); i++ {
		j := i
		for j > 0 && records[j-1].LastReadDate.Before(records[j].LastReadDate) {
			records[j-1], records[j] = records[j], records[j-1]
			j--
		}
	}

	return records, nil
}

// Session history (append-only)

func (s *KVStore) LoadSessionHistory(userID, bookID string) ([]*ReadingSession, error) {
	ctx := context.Background()
	data, err := s.kv.Get(ctx, s.generateKey("session:history", userID, bookID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var sessions []*ReadingSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("unmarshal session history: %w", err)
	}
	return sessions, nil
}

func (s *KVStore) AppendSession(sess *ReadingSession) error {
	sessions, err := s.LoadSessionHistory(sess.UserID, sess.BookID)
	if err != nil {
		return err
	}
	sessions = append(sessions, sess)

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal session history: %w", err)
	}
	ctx := context.Background()
	return s.kv.Set(ctx, s.generateKey("session:history", sess.UserID, sess.BookID), data)
}

// In-flight session

func (s *KVStore) LoadActiveSession(userID, bookID string) (*ReadingSession, error) {
	ctx := context.Background()
	data, err := s.kv.Get(ctx, s.generateKey("session:active", userID, bookID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var sess ReadingSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal active session: %w", err)
	}
	return &sess, nil
}

func (s *KVStore) SaveActiveSession(sess *ReadingSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	ctx := context.Background()
	return s.kv.Set(ctx, s.generateKey("session:active", sess.UserID, sess.BookID), data)
}

func (s *KVStore) ClearActiveSession(userID, bookID string) error {
	ctx := context.Background()
	return s.kv.Delete(ctx, s.generateKey("session:active", userID, bookID))
}

// User index maintenance

func (s *KVStore) addToUserIndex(userID, bookID string) error {
	bookIDs, err := s.getUserIndex(userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	for _, id := range bookIDs {
		if id == bookID {
			return nil
		}
	}

	bookIDs = append(bookIDs, bookID)
	data, _ := json.Marshal(bookIDs)
	ctx := context.Background()
	return s.kv.Set(ctx, s.userIndexKey(userID), data)
}

func (s *KVStore) getUserIndex(userID string) ([]string, error) {
	ctx := context.Background()
	data, err := s.kv.Get(ctx, s.userIndexKey(userID))
	if err != nil {
		return nil, err
	}
	var bookIDs []string
	if err := json.Unmarshal(data, &bookIDs); err != nil {
		return nil, fmt.Errorf("unmarshal user index: %w", err)
	}
	return bookIDs, nil
}

var _ ProgressStore = (*KVStore)(nil)
