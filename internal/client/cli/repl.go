package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Filter(ctx context.Context, arg string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, ref string) error
	Toggle(ctx context.Context, ref string) error
	Delete(ctx context.Context, ref string) error
	Refresh(ctx context.Context) error
	Theme(ctx context.Context, arg string) error
}

const (
	helpGuest  = "Available commands: register, login, theme [light|dark|system], help, exit"
	helpMember = "Available commands: (l)ist, filter <all|pending|completed>, add, edit <n>, toggle <n>, delete <n>, refresh, whoami, theme [light|dark|system], logout, help, exit"
)

// memberOnly lists the commands that need a signed-in user.
var memberOnly = map[string]bool{
	"l": true, "list": true, "filter": true, "add": true, "edit": true,
	"toggle": true, "delete": true, "refresh": true, "reload": true,
	"whoami": true, "logout": true,
}

// runREPL starts a simple read-eval-print loop for the gophtasks CLI.
//
// It reads a line from reader, parses the first token as the command and the
// second (if any) as its argument, and dispatches to methods on 'a'. Task
// commands take either the position shown by "list" or a task id. The loop
// exits on EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are not fatal; handlers report them to
// the user themselves, so a failed request never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("tasks%s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Input error:", err)
			}
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		if memberOnly[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpMember)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "filter":
			_ = a.Filter(ctx, arg)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx, arg)

		case "toggle":
			_ = a.Toggle(ctx, arg)

		case "delete":
			_ = a.Delete(ctx, arg)

		case "refresh", "reload":
			_ = a.Refresh(ctx)

		case "theme":
			_ = a.Theme(ctx, arg)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
