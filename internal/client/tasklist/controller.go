// Package tasklist keeps the client's view of the user's tasks and applies
// changes optimistically: the local list changes first, the request follows,
// and any failed mutation is reconciled by reloading from the server.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

var (
	ErrUnknownTask        = errors.New("unknown task")
	ErrDeleteNotRequested = errors.New("delete was not requested for this task")
)

const (
	msgCreated = "Task created."
	msgUpdated = "Task updated."
	msgDeleted = "Task deleted."
	msgNoTitle = "The title field is required."

	placeholderPrefix = "local-"
)

// Repository is the subset of services.TaskRepository the controller needs.
type Repository interface {
	List(ctx context.Context) ([]*models.Task, error)
	Create(ctx context.Context, in models.NewTask) (*models.Task, error)
	Update(ctx context.Context, id string, upd models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type Controller struct {
	repo   Repository
	notify Notifier
	logger logging.Logger

	mu            sync.Mutex
	tasks         []*models.Task
	states        map[string]State
	filter        Filter
	pendingDelete string
	placeholders  int
}

func NewController(repo Repository, notify Notifier, logger logging.Logger) *Controller {
	if notify == nil {
		notify = NotifierFunc(func(Notice) {})
	}
	return &Controller{
		repo:   repo,
		notify: notify,
		logger: logger.With("module", "tasklist"),
		tasks:  []*models.Task{},
		states: map[string]State{},
		filter: FilterAll,
	}
}

// Load replaces the local list with the server's. On failure the local list
// is left as it was.
func (c *Controller) Load(ctx context.Context) error {
	list, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Warn(ctx, "load failed", "error", err)
		c.notify.Notify(Notice{Kind: NoticeError, Message: ErrorMessage(err)})
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(list)
	return nil
}

// replace swaps in a server list. Ids that vanished and were not already
// settled as absent become ConfirmedAbsent. Caller holds mu.
func (c *Controller) replace(list []*models.Task) {
	present := make(map[string]struct{}, len(list))
	tasks := make([]*models.Task, 0, len(list))
	for _, t := range list {
		present[t.ID] = struct{}{}
		tasks = append(tasks, t.Clone())
		c.states[t.ID] = ConfirmedPresent
	}
	for id, s := range c.states {
		if _, ok := present[id]; !ok && s != RolledBack {
			c.states[id] = ConfirmedAbsent
		}
	}
	c.tasks = tasks
	if _, ok := present[c.pendingDelete]; !ok {
		c.pendingDelete = ""
	}
}

// reconcile reloads after a failed mutation and marks id as rolled back.
// If the reload fails too the optimistic view stays until the next Load.
func (c *Controller) reconcile(ctx context.Context, id string) {
	list, err := c.repo.List(ctx)
	if err != nil {
		c.logger.Warn(ctx, "reload after failure failed", "error", err, "task_id", id)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(list)
	c.states[id] = RolledBack
}

// Toggle flips completed locally, then sends the change.
func (c *Controller) Toggle(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrUnknownTask
	}
	t := c.tasks[i].Clone()
	t.Completed = !t.Completed
	c.tasks[i] = t
	c.states[id] = OptimisticallyToggled
	completed := t.Completed
	c.mu.Unlock()

	updated, err := c.repo.Update(ctx, id, models.CompletedUpdate(completed))
	if err != nil {
		c.logger.Warn(ctx, "toggle failed", "error", err, "task_id", id)
		c.notify.Notify(Notice{Kind: NoticeError, Message: ErrorMessage(err)})
		c.reconcile(ctx, id)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle(id, ConfirmedPresent)
	if j := c.index(id); j >= 0 && updated != nil {
		c.tasks[j] = updated.Clone()
	}
	return nil
}

// RequestDelete starts the two-phase delete. Nothing changes until
// ConfirmDelete.
func (c *Controller) RequestDelete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index(id) < 0 {
		return ErrUnknownTask
	}
	c.pendingDelete = id
	return nil
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pendingDelete = ""
	c.mu.Unlock()
}

// PendingDelete returns the id awaiting confirmation, or "".
func (c *Controller) PendingDelete() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingDelete
}

// ConfirmDelete removes the task locally, then asks the server.
func (c *Controller) ConfirmDelete(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.pendingDelete == "" || c.pendingDelete != id {
		c.mu.Unlock()
		return ErrDeleteNotRequested
	}
	c.pendingDelete = ""
	i := c.index(id)
	if i < 0 {
		c.mu.Unlock()
		return ErrUnknownTask
	}
	c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	c.states[id] = OptimisticallyRemoved
	c.mu.Unlock()

	if err := c.repo.Delete(ctx, id); err != nil {
		c.logger.Warn(ctx, "delete failed", "error", err, "task_id", id)
		c.notify.Notify(Notice{Kind: NoticeError, Message: ErrorMessage(err)})
		c.reconcile(ctx, id)
		return err
	}

	c.mu.Lock()
	c.settle(id, ConfirmedAbsent)
	c.mu.Unlock()

	c.notify.Notify(Notice{Kind: NoticeSuccess, Message: msgDeleted})
	return nil
}

// Save creates the draft when it has no ID and updates it otherwise. A blank
// title fails locally without a request. Server field errors come back as a
// failed Result; other failures as an error.
func (c *Controller) Save(ctx context.Context, d models.Draft) (validation.Result[*models.Task], error) {
	if d.TrimmedTitle() == "" {
		errs := validation.Errors{"title": {msgNoTitle}}
		c.notify.Notify(Notice{Kind: NoticeValidation, Message: msgNoTitle, Fields: errs})
		return validation.Fail[*models.Task](errs), nil
	}

	if d.ID == "" {
		return c.create(ctx, d)
	}
	return c.update(ctx, d)
}

func (c *Controller) create(ctx context.Context, d models.Draft) (validation.Result[*models.Task], error) {
	c.mu.Lock()
	c.placeholders++
	tempID := placeholderPrefix + strconv.Itoa(c.placeholders)
	c.tasks = append(c.tasks, &models.Task{ID: tempID, Title: d.TrimmedTitle(), Description: d.DescriptionPtr()})
	c.states[tempID] = OptimisticallyCreated
	c.mu.Unlock()

	created, err := c.repo.Create(ctx, models.NewTask{Title: d.TrimmedTitle(), Description: d.DescriptionPtr()})
	if err != nil {
		c.mu.Lock()
		c.dropPlaceholder(tempID)
		c.settle(tempID, RolledBack)
		c.mu.Unlock()
		return c.saveFailed(ctx, err, "")
	}

	// the placeholder's state moves to the real id
	c.mu.Lock()
	if i := c.index(tempID); i >= 0 && created != nil {
		c.tasks[i] = created.Clone()
		c.states[created.ID] = ConfirmedPresent
	}
	delete(c.states, tempID)
	c.mu.Unlock()

	c.notify.Notify(Notice{Kind: NoticeSuccess, Message: msgCreated})
	_ = c.Load(ctx)
	return validation.Ok(created), nil
}

func (c *Controller) update(ctx context.Context, d models.Draft) (validation.Result[*models.Task], error) {
	updated, err := c.repo.Update(ctx, d.ID, models.DraftUpdate(d))
	if err != nil {
		return c.saveFailed(ctx, err, d.ID)
	}

	c.notify.Notify(Notice{Kind: NoticeSuccess, Message: msgUpdated})
	_ = c.Load(ctx)
	return validation.Ok(updated), nil
}

// saveFailed reports a failed create or update. Field errors are shown as
// such; anything else reloads when an existing task was involved.
func (c *Controller) saveFailed(ctx context.Context, err error, id string) (validation.Result[*models.Task], error) {
	if errs, ok := client.ValidationErrors(err); ok {
		c.notify.Notify(Notice{Kind: NoticeValidation, Message: ErrorMessage(err), Fields: errs})
		return validation.Fail[*models.Task](errs), nil
	}

	c.logger.Warn(ctx, "save failed", "error", err, "task_id", id)
	c.notify.Notify(Notice{Kind: NoticeError, Message: ErrorMessage(err)})
	if id != "" {
		c.reconcile(ctx, id)
	}
	return validation.Result[*models.Task]{}, fmt.Errorf("save task: %w", err)
}

// Reset forgets every local task, e.g. after the user signs out.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = []*models.Task{}
	c.states = map[string]State{}
	c.pendingDelete = ""
	c.filter = FilterAll
}

func (c *Controller) SetFilter(f Filter) {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Tasks returns copies of every local task in server order.
func (c *Controller) Tasks() []*models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Visible returns copies of the tasks matching the current filter.
func (c *Controller) Visible() []*models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Apply(c.filter, c.snapshot())
}

// Counts are computed over the whole local list, ignoring the filter.
func (c *Controller) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Count(c.tasks)
}

// Find returns a copy of the local task with id.
func (c *Controller) Find(id string) (*models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.index(id); i >= 0 {
		return c.tasks[i].Clone(), true
	}
	return nil, false
}

// State returns the lifecycle state last recorded for id.
func (c *Controller) State(id string) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[id]
	return s, ok
}

// settle moves an in-flight state to its outcome. A state that another call
// has already moved on is left alone. Caller holds mu.
func (c *Controller) settle(id string, next State) {
	if canSettle(c.states[id], next) {
		c.states[id] = next
	}
}

func (c *Controller) dropPlaceholder(id string) {
	if i := c.index(id); i >= 0 {
		c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
	}
}

func (c *Controller) snapshot() []*models.Task {
	out := make([]*models.Task, len(c.tasks))
	for i, t := range c.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (c *Controller) index(id string) int {
	for i, t := range c.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
