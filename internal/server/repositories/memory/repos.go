package memory

import (
	"context"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Rows are stored by value so callers never share memory with the store.
type (
	userRow    models.User
	sessionRow models.Session
	taskRow    models.Task
)

type usersRepo struct{ s *store }

func (r *usersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, row := range r.s.users {
		if row.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = userRow(*u)
	return u, nil
}

func (r *usersRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, row := range r.s.users {
		if row.Email == email {
			u := models.User(row)
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *usersRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := models.User(row)
	return &u, nil
}

type sessionsRepo struct{ s *store }

func (r *sessionsRepo) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.CreatedAt = time.Now().UTC()
	r.s.sessions[session.ID] = sessionRow(*session)
	return nil
}

func (r *sessionsRepo) Find(_ context.Context, id string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	s := models.Session(row)
	return &s, nil
}

func (r *sessionsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, id)
	return nil
}

func (r *sessionsRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, row := range r.s.sessions {
		s := models.Session(row)
		if s.Expired(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}

type tasksRepo struct{ s *store }

func (r *tasksRepo) List(_ context.Context, userID string) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Task, 0)
	for _, row := range r.s.tasks {
		if row.UserID == userID {
			t := models.Task(row)
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *tasksRepo) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[t.ID]; ok {
		return common.ErrorAlreadyExists
	}
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tasks[t.ID] = taskRow(*t)
	return nil
}

func (r *tasksRepo) Get(_ context.Context, userID, id string) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	row, ok := r.s.tasks[id]
	if !ok || row.UserID != userID {
		return nil, common.ErrorNotFound
	}
	t := models.Task(row)
	return &t, nil
}

func (r *tasksRepo) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[t.ID]
	if !ok || row.UserID != t.UserID {
		return common.ErrorNotFound
	}
	t.CreatedAt = row.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	r.s.tasks[t.ID] = taskRow(*t)
	return nil
}

func (r *tasksRepo) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	row, ok := r.s.tasks[id]
	if !ok || row.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.tasks, id)
	return nil
}
