package screen

import (
	"encoding/json"
	"fmt"
)

// Action is a user intent dispatched into the state machine
type Action interface {
	Type() string
}

type (
	Select        struct{ Index int }
	Back          struct{}
	OpenSubmit    struct{}
	ShowBoard     struct{}
	SelectLang    struct{ Lang string }
	SubmitCode    struct{ Name, Lang string }
	PickFile      struct{}
	FileCancelled struct{ Token string }
	Reload        struct{}
)

// FileChosen carries the file the browser read. Size is what the browser
// reports; a file over the limit arrives with a size and no content.
type FileChosen struct {
	Token, Name, Content string
	Size                 int64
}

func (Select) Type() string        { return "select" }
func (Back) Type() string          { return "back" }
func (OpenSubmit) Type() string    { return "open_submit" }
func (ShowBoard) Type() string     { return "show_board" }
func (SelectLang) Type() string    { return "select_lang" }
func (SubmitCode) Type() string    { return "submit_code" }
func (PickFile) Type() string      { return "pick_file" }
func (FileChosen) Type() string    { return "file_chosen" }
func (FileCancelled) Type() string { return "file_cancelled" }
func (Reload) Type() string        { return "reload" }

// envelope is the wire form of an action
type envelope struct {
	Type    string `json:"type"`
	Index   *int   `json:"index,omitempty"`
	Lang    string `json:"lang,omitempty"`
	Name    string `json:"name,omitempty"`
	Token   string `json:"token,omitempty"`
	Content string `json:"content,omitempty"`
	Size    int64  `json:"size,omitempty"`
}

// DecodeAction parses a JSON action message
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}

	switch env.Type {
	case "select":
		if env.Index == nil {
			return nil, fmt.Errorf("invalid action: select requires index")
		}
		return Select{Index: *env.Index}, nil
	case "back":
		return Back{}, nil
	case "open_submit":
		return OpenSubmit{}, nil
	case "show_board":
		return ShowBoard{}, nil
	case "select_lang":
		return SelectLang{Lang: env.Lang}, nil
	case "submit_code":
		return SubmitCode{Name: env.Name, Lang: env.Lang}, nil
	case "pick_file":
		return PickFile{}, nil
	case "file_chosen":
		return FileChosen{Token: env.Token, Name: env.Name, Content: env.Content, Size: env.Size}, nil
	case "file_cancelled":
		return FileCancelled{Token: env.Token}, nil
	case "reload":
		return Reload{}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
}
