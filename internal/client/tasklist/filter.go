package tasklist

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (use all, pending or completed)", s)
	}
}

func (f Filter) match(t *models.Task) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Apply returns the tasks matching f, preserving order.
func Apply(f Filter, tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.match(t) {
			out = append(out, t)
		}
	}
	return out
}

type Counts struct {
	Total     int
	Completed int
	Pending   int
}

func Count(tasks []*models.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

// Percent is the completed share rounded down; 0 for an empty list.
func (c Counts) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return c.Completed * 100 / c.Total
}

// Progress renders the list header, e.g. "2 of 5 completed (40%)".
func (c Counts) Progress() string {
	return fmt.Sprintf("%d of %d completed (%d%%)", c.Completed, c.Total, c.Percent())
}
