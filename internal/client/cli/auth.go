package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/tasklist"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

// Test seams for the prompt helpers.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Register prompts for the account details and signs the new user in.
func (a *App) Register(ctx context.Context) error {
	var req models.RegisterRequest
	var err error

	if req.Name, err = getSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.Password, err = getPassword("Password", a.out); err != nil {
		return err
	}
	if req.PasswordConfirmation, err = getPassword("Confirm password", a.out); err != nil {
		return err
	}

	res, err := a.session.Register(ctx, req)
	return a.signedIn(ctx, res, err, "Welcome, %s! Your account is ready.")
}

// Login prompts for email and password.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	res, err := a.session.Login(ctx, email, password)
	return a.signedIn(ctx, res, err, "Welcome back, %s.")
}

// signedIn reports the outcome of Register or Login and loads the tasks on success.
func (a *App) signedIn(ctx context.Context, res validation.Result[*models.User], err error, greeting string) error {
	if err != nil {
		a.logger.Warn(ctx, "authentication failed", "error", err)
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: tasklist.ErrorMessage(err)})
		return err
	}
	if !res.IsOk() {
		a.notice(tasklist.Notice{Kind: tasklist.NoticeValidation, Message: "Please correct the following:", Fields: res.Errors()})
		return res.Errors()
	}

	a.notice(tasklist.Notice{Kind: tasklist.NoticeSuccess, Message: fmt.Sprintf(greeting, res.Value().Name)})
	a.tasks.Reset()
	if err := a.tasks.Load(ctx); err == nil {
		a.printProgress()
	}
	return nil
}

// Logout ends the session. The local token is dropped even when the server
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)
	a.tasks.Reset()
	if err != nil {
		a.logger.Warn(ctx, "logout", "error", err)
	}
	a.notice(tasklist.Notice{Kind: tasklist.NoticeSuccess, Message: "You have been logged out."})
	return nil
}

// WhoAmI asks the server who the stored token belongs to.
func (a *App) WhoAmI(ctx context.Context) error {
	user, err := a.session.CheckSession(ctx)
	if err != nil {
		a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: tasklist.ErrorMessage(err)})
		return err
	}
	if user == nil {
		a.expired()
		return client.ErrUnauthorized
	}
	a.println(fmt.Sprintf("%s <%s>", user.Name, user.Email))
	return nil
}

// checkExpired drops the local session when err says the server no longer
// accepts the token.
func (a *App) checkExpired(ctx context.Context, err error) {
	if !errors.Is(err, client.ErrUnauthorized) {
		return
	}
	if _, cerr := a.session.CheckSession(ctx); cerr != nil {
		a.logger.Warn(ctx, "session recheck", "error", cerr)
		return
	}
	if !a.session.IsAuthenticated() {
		a.expired()
	}
}

func (a *App) expired() {
	a.tasks.Reset()
	a.notice(tasklist.Notice{Kind: tasklist.NoticeError, Message: "Your session has expired. Please log in again."})
}
