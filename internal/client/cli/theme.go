package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/client/services"
	"github.com/dmitrijs2005/gophtasks/internal/client/tasklist"
)

const ansiReset = "\033[0m"

// palette maps a notice kind to an ANSI colour for one theme.
type palette map[tasklist.NoticeKind]string

var palettes = map[services.ThemeMode]palette{
	services.ThemeLight: {
		tasklist.NoticeSuccess:    "\033[32m",
		tasklist.NoticeError:      "\033[31m",
		tasklist.NoticeValidation: "\033[33m",
	},
	services.ThemeDark: {
		tasklist.NoticeSuccess:    "\033[92m",
		tasklist.NoticeError:      "\033[91m",
		tasklist.NoticeValidation: "\033[93m",
	},
}

func (a *App) paint(kind tasklist.NoticeKind, s string) string {
	colour, ok := palettes[a.theme.Resolved()][kind]
	if !ok {
		return s
	}
	return colour + s + ansiReset
}

// notice prints a controller notice, followed by its field errors if any.
func (a *App) notice(n tasklist.Notice) {
	a.println(a.paint(n.Kind, n.Message))
	for _, field := range n.Fields.Fields() {
		for _, msg := range n.Fields[field] {
			a.println(a.paint(n.Kind, fmt.Sprintf("  %s: %s", field, msg)))
		}
	}
}

// Theme shows the current theme, or switches to the mode given in arg.
func (a *App) Theme(ctx context.Context, arg string) error {
	if arg == "" {
		mode := a.theme.Mode()
		if mode == services.ThemeSystem {
			a.println(fmt.Sprintf("Theme: system (%s)", a.theme.Resolved()))
		} else {
			a.println("Theme:", mode)
		}
		return nil
	}

	mode, err := services.ParseThemeMode(arg)
	if err != nil {
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: err.Error()})
		return err
	}
	if err := a.theme.SetMode(ctx, mode); err != nil {
		a.logger.Error(ctx, "save theme", "error", err)
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: "Could not save the theme."})
		return err
	}
	a.notice(tasklist.Notice{Kind: tasklist.NoticeSuccess, Message: fmt.Sprintf("Theme set to %s.", mode)})
	return nil
}
