package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/client/client"
	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	labelColor   = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func (a *App) success(format string, args ...any) {
	successColor.Fprintf(a.out, format+"\n", args...)
}

func (a *App) warn(format string, args ...any) {
	warnColor.Fprintf(a.out, format+"\n", args...)
}

func (a *App) field(name string, value any) {
	labelColor.Fprintf(a.out, "%-14s", name+":")
	fmt.Fprintln(a.out, value)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

// describe turns client errors into something a person can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthenticated):
		return "not logged in (run: cocoinbox login)"
	case errors.Is(err, common.ErrorInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, common.ErrorUserExists):
		return "an account with this email already exists"
	case errors.Is(err, common.ErrorNotFound):
		return "not found"
	case errors.Is(err, common.ErrorDownloadLimitReached):
		return "download limit reached"
	case errors.Is(err, common.ErrorProviderUnavailable):
		return "the mail provider is unavailable, try again later"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	default:
		return err.Error()
	}
}

func printError(w io.Writer, err error) {
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, describe(err))
}
