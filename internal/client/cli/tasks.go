package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/tasklist"
)

var errNoTask = errors.New("no such task")

// List prints the progress line followed by the tasks matching the filter.
func (a *App) List(ctx context.Context) error {
	a.printProgress()

	visible := a.tasks.Visible()
	if len(visible) == 0 {
		switch f := a.tasks.Filter(); f {
		case tasklist.FilterAll:
			a.println("No tasks yet. Use \"add\" to create one.")
		default:
			a.println(fmt.Sprintf("No %s tasks.", f))
		}
		return nil
	}

	for i, t := range visible {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("%3d. [%s] %s", i+1, mark, t.Title)
		if s, ok := a.tasks.State(t.ID); ok && s.Pending() {
			line += " (saving...)"
		}
		a.println(line)
		if t.Description != nil && *t.Description != "" {
			a.println("       " + *t.Description)
		}
	}
	return nil
}

// Filter switches the list between all, pending and completed tasks.
func (a *App) Filter(ctx context.Context, arg string) error {
	if arg == "" {
		a.println("Filter:", a.tasks.Filter())
		return nil
	}
	f, err := tasklist.ParseFilter(arg)
	if err != nil {
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: err.Error()})
		return err
	}
	a.tasks.SetFilter(f)
	return a.List(ctx)
}

// Add prompts for a new task.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getSimpleText(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	return a.save(ctx, models.Draft{Title: title, Description: description})
}

// Edit prompts for new values of the task referenced by ref. An empty answer
// keeps the current value; "-" clears the description.
func (a *App) Edit(ctx context.Context, ref string) error {
	t, err := a.resolve(ref)
	if err != nil {
		return err
	}

	current := ""
	if t.Description != nil {
		current = *t.Description
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", t.Title), a.out)
	if err != nil {
		return err
	}
	if title == "" {
		title = t.Title
	}
	description, err := getSimpleText(a.reader, fmt.Sprintf("Description [%s] (\"-\" clears)", current), a.out)
	if err != nil {
		return err
	}
	switch description {
	case "":
		description = current
	case "-":
		description = ""
	}

	return a.save(ctx, models.Draft{ID: t.ID, Title: title, Description: description})
}

func (a *App) save(ctx context.Context, d models.Draft) error {
	res, err := a.tasks.Save(ctx, d)
	if err != nil {
		a.checkExpired(ctx, err)
		return err
	}
	if !res.IsOk() {
		return res.Errors()
	}
	return nil
}

// Toggle flips the completed flag of the task referenced by ref.
func (a *App) Toggle(ctx context.Context, ref string) error {
	t, err := a.resolve(ref)
	if err != nil {
		return err
	}
	if err := a.tasks.Toggle(ctx, t.ID); err != nil {
		a.checkExpired(ctx, err)
		return err
	}
	a.printProgress()
	return nil
}

// Delete asks for confirmation before removing the task referenced by ref.
func (a *App) Delete(ctx context.Context, ref string) error {
	t, err := a.resolve(ref)
	if err != nil {
		return err
	}
	if err := a.tasks.RequestDelete(t.ID); err != nil {
		return err
	}

	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %q?", t.Title), a.out)
	if err != nil || !ok {
		a.tasks.CancelDelete()
		a.println("Cancelled.")
		return err
	}

	if err := a.tasks.ConfirmDelete(ctx, t.ID); err != nil {
		a.checkExpired(ctx, err)
		return err
	}
	return nil
}

// Refresh reloads the list from the server.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.tasks.Load(ctx); err != nil {
		a.checkExpired(ctx, err)
		return err
	}
	return a.List(ctx)
}

// resolve finds a task by its position in the visible list or by id.
func (a *App) resolve(ref string) (*models.Task, error) {
	if ref == "" {
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: "Which task? Give its number from \"list\"."})
		return nil, errNoTask
	}
	if n, err := strconv.Atoi(ref); err == nil {
		visible := a.tasks.Visible()
		if n >= 1 && n <= len(visible) {
			return visible[n-1], nil
		}
	} else if t, ok := a.tasks.Find(ref); ok {
		return t, nil
	}
	a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: fmt.Sprintf("No task %q.", ref)})
	return nil, errNoTask
}

func (a *App) printProgress() {
	a.println(fmt.Sprintf("%s [%s]", a.tasks.Counts().Progress(), a.tasks.Filter()))
}
