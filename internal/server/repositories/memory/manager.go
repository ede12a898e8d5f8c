// Package memory provides a process-local RepositoryManager. It backs the
// "memory" DSN used for demos and the end-to-end handler tests. Data lives
// as long as the manager does.
//
// The DBTX handles passed to the factories are ignored: every repository
// shares one mutex-guarded store, so transactions are not isolated.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
)

type store struct {
	mu       sync.RWMutex
	users    map[string]userRow
	sessions map[string]sessionRow
	tasks    map[string]taskRow
}

type InMemoryRepositoryManager struct {
	s *store
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{s: &store{
		users:    map[string]userRow{},
		sessions: map[string]sessionRow{},
		tasks:    map[string]taskRow{},
	}}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return &usersRepo{s: m.s}
}

func (m *InMemoryRepositoryManager) Sessions(dbx.DBTX) sessions.Repository {
	return &sessionsRepo{s: m.s}
}

func (m *InMemoryRepositoryManager) Tasks(dbx.DBTX) tasks.Repository {
	return &tasksRepo{s: m.s}
}
