// Package usertest provides an in-memory user.Store for tests.
package usertest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/khoahotran/usermatch/internal/domain/match"
	"github.com/khoahotran/usermatch/internal/domain/user"
	"github.com/khoahotran/usermatch/pkg/apperror"
)

type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	rows     map[int64]user.UserProfile
	sessions int
	open     int

	// BeforeWrite, when set, runs inside UpdateVersioned and DeleteVersioned
	// before the version check. Tests use it to simulate a concurrent writer.
	BeforeWrite func(id int64)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[int64]user.UserProfile{}}
}

func (s *MemoryStore) WithSession(ctx context.Context, fn func(repo user.Repository) error) error {
	s.mu.Lock()
	s.sessions++
	s.open++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.open--
		s.mu.Unlock()
	}()
	return fn(s)
}

// Sessions reports how many sessions were opened and how many are still open.
func (s *MemoryStore) Sessions() (opened, open int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions, s.open
}

// Bump changes a row's version behind the repository's back.
func (s *MemoryStore) Bump(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.Version++
		s.rows[id] = row
	}
}

// Remove drops a row behind the repository's back.
func (s *MemoryStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
}

func clone(u user.UserProfile) *user.UserProfile {
	u.Interests = append([]string{}, u.Interests...)
	return &u
}

func (s *MemoryStore) Create(ctx context.Context, u *user.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	u.Version = 1
	s.rows[u.ID] = *clone(*u)
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (*user.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, apperror.NewNotFound("user", strconv.FormatInt(id, 10))
	}
	return clone(row), nil
}

func (s *MemoryStore) sorted(keep func(user.UserProfile) bool) []*user.UserProfile {
	out := make([]*user.UserProfile, 0, len(s.rows))
	for _, row := range s.rows {
		if keep(row) {
			out = append(out, clone(row))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func window(ps []*user.UserProfile, offset, limit int) []*user.UserProfile {
	if offset >= len(ps) {
		return []*user.UserProfile{}
	}
	ps = ps[offset:]
	if limit < len(ps) {
		ps = ps[:limit]
	}
	return ps
}

func (s *MemoryStore) List(ctx context.Context, offset, limit int) ([]*user.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.sorted(func(user.UserProfile) bool { return true }), offset, limit), nil
}

func (s *MemoryStore) UpdateVersioned(ctx context.Context, id int64, patch user.Patch, expectedVersion int) (bool, error) {
	if s.BeforeWrite != nil {
		s.BeforeWrite(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Version != expectedVersion {
		return false, nil
	}
	patch.Apply(&row)
	row.Version = expectedVersion + 1
	s.rows[id] = row
	return true, nil
}

func (s *MemoryStore) DeleteVersioned(ctx context.Context, id int64, expectedVersion int) (bool, error) {
	if s.BeforeWrite != nil {
		s.BeforeWrite(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok || row.Version != expectedVersion {
		return false, nil
	}
	delete(s.rows, id)
	return true, nil
}

func (s *MemoryStore) ListCandidates(ctx context.Context, subject *user.UserProfile, ageLimit int) ([]*user.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(u user.UserProfile) bool {
		return u.ID != subject.ID &&
			u.City == subject.City &&
			match.InAgeWindow(subject.Age, u.Age, ageLimit)
	}), nil
}

func (s *MemoryStore) ListOthers(ctx context.Context, excludeID int64, limit int) ([]*user.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return window(s.sorted(func(u user.UserProfile) bool { return u.ID != excludeID }), 0, limit), nil
}
