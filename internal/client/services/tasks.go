package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// TaskRepository maps task operations one to one onto the /tasks endpoints.
type TaskRepository struct {
	transport Transport
}

func NewTaskRepository(t Transport) *TaskRepository {
	return &TaskRepository{transport: t}
}

type taskEnvelope struct {
	Success string       `json:"success"`
	Task    *models.Task `json:"task"`
}

type tasksEnvelope struct {
	Success string         `json:"success"`
	Tasks   []*models.Task `json:"tasks"`
}

// taskPath escapes id as a single path segment. Dot-only ids are
// percent-encoded so they cannot walk up the path.
func taskPath(id string) string {
	seg := url.PathEscape(id)
	if id == "." || id == ".." {
		seg = strings.ReplaceAll(id, ".", "%2E")
	}
	return "/tasks/" + seg
}

func (r *TaskRepository) List(ctx context.Context) ([]*models.Task, error) {
	var env tasksEnvelope
	if err := r.transport.Get(ctx, "/tasks", &env); err != nil {
		return nil, err
	}
	if env.Tasks == nil {
		env.Tasks = []*models.Task{}
	}
	return env.Tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, in models.NewTask) (*models.Task, error) {
	var env taskEnvelope
	if err := r.transport.Post(ctx, "/tasks", in, &env); err != nil {
		return nil, err
	}
	return env.Task, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*models.Task, error) {
	var env taskEnvelope
	if err := r.transport.Get(ctx, taskPath(id), &env); err != nil {
		return nil, err
	}
	return env.Task, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error) {
	var env taskEnvelope
	if err := r.transport.Put(ctx, taskPath(id), upd, &env); err != nil {
		return nil, err
	}
	return env.Task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.transport.Delete(ctx, taskPath(id), nil)
}
