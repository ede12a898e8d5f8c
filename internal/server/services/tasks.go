package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/idgen"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

// ErrUnexpected is returned instead of raw storage errors. The cause is
// logged, never surfaced to clients.
var ErrUnexpected = errors.New("an unexpected error occurred")

// CreateTaskInput is the body of POST /tasks.
type CreateTaskInput struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
}

// TaskService implements task CRUD. Every call is scoped by userID, the
// resolved principal; tasks of other users behave as if absent.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validator   *validation.Validator
	logger      logging.Logger
	newID       func() string
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		validator:   validation.NewValidator(),
		logger:      logger.With("service", "tasks"),
		newID:       idgen.New,
	}
}

func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	list, err := s.repomanager.Tasks(s.db).List(ctx, userID)
	if err != nil {
		return nil, s.unexpected(ctx, "list tasks", err, "user_id", userID)
	}
	return list, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (validation.Result[*models.Task], error) {
	in.Title = strings.TrimSpace(in.Title)
	if errs := s.validator.Struct(in); errs != nil {
		return validation.Fail[*models.Task](errs), nil
	}

	task := &models.Task{
		ID:          s.newID(),
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
	}

	if err := s.repomanager.Tasks(s.db).Create(ctx, task); err != nil {
		return validation.Result[*models.Task]{}, s.unexpected(ctx, "create task", err, "user_id", userID)
	}

	s.logger.Debug(ctx, "task created", "task_id", task.ID, "user_id", userID)
	return validation.Ok(task), nil
}

// Get returns common.ErrorNotFound for ids that are unknown or not owned.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	if !idgen.IsValid(id) {
		return nil, common.ErrorNotFound
	}

	task, err := s.repomanager.Tasks(s.db).Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.unexpected(ctx, "get task", err, "task_id", id)
	}
	return task, nil
}

// Update applies only the supplied fields. Ownership is checked before
// validation so a foreign id is NOT_FOUND whatever the payload.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (validation.Result[*models.Task], error) {
	task, err := s.Get(ctx, userID, id)
	if err != nil {
		return validation.Result[*models.Task]{}, err
	}

	if errs := ValidatePatch(patch); errs != nil {
		return validation.Fail[*models.Task](errs), nil
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}

	patch.Apply(task)

	if err := s.repomanager.Tasks(s.db).Update(ctx, task); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// deleted between the read and the write
			return validation.Result[*models.Task]{}, common.ErrorNotFound
		}
		return validation.Result[*models.Task]{}, s.unexpected(ctx, "update task", err, "task_id", id)
	}

	return validation.Ok(task), nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if !idgen.IsValid(id) {
		return common.ErrorNotFound
	}

	if err := s.repomanager.Tasks(s.db).Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.unexpected(ctx, "delete task", err, "task_id", id)
	}

	s.logger.Debug(ctx, "task deleted", "task_id", id, "user_id", userID)
	return nil
}

// ValidatePatch checks the supplied fields of a partial update.
func ValidatePatch(p models.TaskPatch) validation.Errors {
	errs := validation.Errors{}
	if p.Title != nil {
		switch title := strings.TrimSpace(*p.Title); {
		case title == "":
			errs.Add("title", "The title field is required.")
		case len([]rune(title)) > 255:
			errs.Add("title", "The title field must not be greater than 255 characters.")
		}
	}
	if errs.Empty() {
		return nil
	}
	return errs
}

func (s *TaskService) unexpected(ctx context.Context, op string, err error, args ...any) error {
	s.logger.Error(ctx, op+" failed", append(args, "error", err)...)
	return ErrUnexpected
}
