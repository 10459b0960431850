package session

import (
	"errors"
	"fmt"

	"github.com/terra-clan/code-golf/internal/filepick"
	"github.com/terra-clan/code-golf/pkg/client"
)

// Submission preconditions, reported to the user as-is
var (
	ErrNameRequired  = errors.New("please enter your name")
	ErrNoFile        = errors.New("please select a file first")
	ErrLangRequired  = errors.New("please choose a language")
	ErrSubmitPending = errors.New("a submission is already running")
)

var ErrClosed = errors.New("session closed")

// userMessage describes an API or pick failure without leaking internals
func userMessage(err error) string {
	var se *client.StatusError
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("the golf server answered HTTP %d", se.Code)
	case errors.Is(err, client.ErrDecode):
		return "the golf server sent an unexpected response"
	case errors.Is(err, client.ErrNetwork):
		return "the golf server could not be reached"
	case errors.Is(err, filepick.ErrNoFileSelected):
		return "no file selected"
	case errors.Is(err, filepick.ErrTooLarge):
		return "that file is too large"
	case errors.Is(err, filepick.ErrNotText):
		return "that file is not a text file"
	default:
		return "something went wrong"
	}
}
