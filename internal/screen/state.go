// Package screen implements the four-screen navigation state machine of the
// golf front-end and projects it into presentation-neutral view models.
package screen

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex      = errors.New("challenge index out of range")
	ErrInvalidTransition = errors.New("action not allowed on this screen")
	ErrUnknownAction     = errors.New("unknown action")
)

// Kind identifies a screen
type Kind int

const (
	Home Kind = iota
	ChallengeDetail
	Leaderboard
	LangLeaderboard
	Submit
)

// Container IDs of the page shell; exactly one is visible at a time
const (
	ContainerHome        = "challenges"
	ContainerDetail      = "challenge-info"
	ContainerLeaderboard = "leaderboard"
	ContainerSubmit      = "submit"
)

// Containers lists every container in page order
var Containers = []string{ContainerHome, ContainerDetail, ContainerLeaderboard, ContainerSubmit}

func (k Kind) String() string {
	switch k {
	case Home:
		return "home"
	case ChallengeDetail:
		return "challenge"
	case Leaderboard:
		return "leaderboard"
	case LangLeaderboard:
		return "lang_leaderboard"
	case Submit:
		return "submit"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Container returns the container that shows this screen
func (k Kind) Container() string {
	switch k {
	case ChallengeDetail:
		return ContainerDetail
	case Leaderboard, LangLeaderboard:
		return ContainerLeaderboard
	case Submit:
		return ContainerSubmit
	default:
		return ContainerHome
	}
}

// State is the current screen. Index is meaningful on every screen except
// Home; Lang only on LangLeaderboard.
type State struct {
	Kind  Kind
	Index int
	Lang  string
}

// Initial returns the state entered once the challenge list is loaded
func Initial() State {
	return State{Kind: Home}
}

func (s State) String() string {
	switch s.Kind {
	case Home:
		return "home"
	case LangLeaderboard:
		return fmt.Sprintf("%s(%d,%s)", s.Kind, s.Index, s.Lang)
	default:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Index)
	}
}

// Next applies a navigation action. count is the length of the last-fetched
// challenge list. Non-navigating actions leave the state unchanged.
func Next(s State, a Action, count int) (State, error) {
	switch a := a.(type) {
	case Select:
		if s.Kind != Home {
			return s, transitionErr(s, a)
		}
		if a.Index < 0 || a.Index >= count {
			return s, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, a.Index, count)
		}
		return State{Kind: ChallengeDetail, Index: a.Index}, nil

	case Back:
		switch s.Kind {
		case ChallengeDetail:
			return State{Kind: Home}, nil
		case Leaderboard, Submit:
			return State{Kind: ChallengeDetail, Index: s.Index}, nil
		case LangLeaderboard:
			return State{Kind: Leaderboard, Index: s.Index}, nil
		}
		return s, transitionErr(s, a)

	case OpenSubmit:
		if s.Kind != ChallengeDetail {
			return s, transitionErr(s, a)
		}
		return State{Kind: Submit, Index: s.Index}, nil

	case ShowBoard:
		if s.Kind != ChallengeDetail {
			return s, transitionErr(s, a)
		}
		return State{Kind: Leaderboard, Index: s.Index}, nil

	case SelectLang:
		if s.Kind != Leaderboard {
			return s, transitionErr(s, a)
		}
		if a.Lang == "" {
			return s, fmt.Errorf("%w: empty language", ErrInvalidTransition)
		}
		return State{Kind: LangLeaderboard, Index: s.Index, Lang: a.Lang}, nil

	case SubmitCode, PickFile, FileChosen, FileCancelled:
		if s.Kind != Submit {
			return s, transitionErr(s, a)
		}
		return s, nil

	case Reload:
		if s.Kind != Home {
			return s, transitionErr(s, a)
		}
		return s, nil
	}

	return s, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}

// Valid reports whether the state's index fits a list of count challenges
func (s State) Valid(count int) bool {
	if s.Kind == Home {
		return true
	}
	return s.Index >= 0 && s.Index < count
}

func transitionErr(s State, a Action) error {
	return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, a.Type(), s)
}
