package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

const maxBodyBytes = 1 << 20

// AuthService is what the auth handlers need from services.AuthService.
type AuthService interface {
	UserResolver
	Register(ctx context.Context, in services.RegisterInput) (validation.Result[*services.AuthResult], error)
	Login(ctx context.Context, in services.LoginInput) (validation.Result[*services.AuthResult], error)
	Logout(ctx context.Context, token string) error
}

// TaskService is what the task handlers need from services.TaskService.
type TaskService interface {
	List(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, userID string, in services.CreateTaskInput) (validation.Result[*models.Task], error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (validation.Result[*models.Task], error)
	Delete(ctx context.Context, userID, id string) error
}

type Handlers struct {
	auth   AuthService
	tasks  TaskService
	logger logging.Logger
}

func NewHandlers(a AuthService, t TaskService, l logging.Logger) *Handlers {
	return &Handlers{auth: a, tasks: t, logger: l.With("module", "handlers")}
}

type taskEnvelope struct {
	Success string       `json:"success"`
	Task    *models.Task `json:"task"`
}

type tasksEnvelope struct {
	Success string         `json:"success"`
	Tasks   []*models.Task `json:"tasks"`
}

type successEnvelope struct {
	Success string `json:"success"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.unexpected(w, r, "register", err)
		return
	}
	if !res.IsOk() {
		writeValidation(w, res.Errors())
		return
	}

	writeJSON(w, http.StatusCreated, res.Value())
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.auth.Login(r.Context(), in)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, msgBadCredentials)
			return
		}
		h.unexpected(w, r, "login", err)
		return
	}
	if !res.IsOk() {
		writeValidation(w, res.Errors())
		return
	}

	writeJSON(w, http.StatusOK, res.Value())
}

// Logout reads the token itself instead of sitting behind RequireUser so
// that a second logout with an already revoked token still succeeds.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), bearerToken(r))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, msgUnauthenticated)
			return
		}
		h.unexpected(w, r, "logout", err)
		return
	}

	writeJSON(w, http.StatusOK, successEnvelope{Success: msgLoggedOut})
}

func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	list, err := h.tasks.List(r.Context(), user.ID)
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tasksEnvelope{Success: msgTasksFetched, Tasks: list})
}

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	var in services.CreateTaskInput
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.tasks.Create(r.Context(), user.ID, in)
	if err != nil {
		h.taskError(w, r, err)
		return
	}
	if !res.IsOk() {
		writeValidation(w, res.Errors())
		return
	}

	writeJSON(w, http.StatusCreated, taskEnvelope{Success: msgTaskCreated, Task: res.Value()})
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	task, err := h.tasks.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, taskEnvelope{Success: msgTaskFetched, Task: task})
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var raw map[string]json.RawMessage
	if !h.decode(w, r, &raw) {
		return
	}

	patch, typeErrs := parsePatch(raw)
	if typeErrs != nil {
		// a foreign or unknown task is NOT_FOUND whatever the payload
		if _, err := h.tasks.Get(r.Context(), user.ID, id); err != nil {
			h.taskError(w, r, err)
			return
		}
		writeValidation(w, typeErrs)
		return
	}

	res, err := h.tasks.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		h.taskError(w, r, err)
		return
	}
	if !res.IsOk() {
		writeValidation(w, res.Errors())
		return
	}

	writeJSON(w, http.StatusOK, taskEnvelope{Success: msgTaskUpdated, Task: res.Value()})
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())

	if err := h.tasks.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		h.taskError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, successEnvelope{Success: msgTaskDeleted})
}

// parsePatch reads the optional update fields, collecting type mismatches
// as field errors. Unknown keys are ignored.
func parsePatch(raw map[string]json.RawMessage) (models.TaskPatch, validation.Errors) {
	var patch models.TaskPatch
	errs := validation.Errors{}

	if v, ok := raw["title"]; ok {
		var title *string
		switch err := json.Unmarshal(v, &title); {
		case err != nil:
			errs.Add("title", "The title field must be a string.")
		case title == nil:
			errs.Add("title", "The title field is required.")
		default:
			patch.Title = title
		}
	}

	if v, ok := raw["description"]; ok {
		var desc *string
		if err := json.Unmarshal(v, &desc); err != nil {
			errs.Add("description", "The description field must be a string.")
		} else {
			patch.Description = desc
			patch.DescriptionSet = true
		}
	}

	if v, ok := raw["completed"]; ok {
		var completed *bool
		if err := json.Unmarshal(v, &completed); err != nil || completed == nil {
			errs.Add("completed", "The completed field must be true or false.")
		} else {
			patch.Completed = completed
		}
	}

	if errs.Empty() {
		return patch, nil
	}
	return patch, errs
}

// decode reads a JSON body into v. An empty body decodes as an empty
// object; anything unparsable answers 400 and returns false.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgMalformedBody)
		return false
	}
	return true
}

func (h *Handlers) taskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, msgTaskNotFound)
		return
	}
	if !errors.Is(err, services.ErrUnexpected) {
		h.logger.Error(r.Context(), "task request failed", "error", err)
	}
	writeError(w, http.StatusInternalServerError, msgUnexpected)
}

func (h *Handlers) unexpected(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Error(r.Context(), op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, msgUnexpected)
}
