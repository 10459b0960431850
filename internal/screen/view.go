package screen

import (
	"fmt"
	"strconv"

	"github.com/terra-clan/code-golf/internal/models"
)

// Status tracks an asynchronous load
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

// Data is the session data a view is projected from
type Data struct {
	Challenges []models.Challenge
	Languages  []string
	ListStatus Status
	ListError  string

	// Board is the leaderboard of BoardChallenge
	Board          models.PublicLeaderboard
	BoardChallenge string
	BoardStatus    Status
	BoardError     string

	Form Form
}

// Form is the state of the submission panel
type Form struct {
	Name     string
	Lang     string
	FileName string
	FileSize int
	HasFile  bool
	Picking  bool
	Pending  bool
	Message  string // validation or pick notice
	Error    string // could not submit
	Result   *models.SubmitResult
	// ResultSize is the size of the file the result belongs to
	ResultSize int
}

// View has exactly one non-nil panel, the one named by Container
type View struct {
	Screen    Kind
	Container string

	Home      *HomeView
	Detail    *DetailView
	Board     *BoardView
	LangBoard *LangBoardView
	Submit    *SubmitView
}

type HomeView struct {
	Loading bool
	Error   string
	Items   []ChallengeItem
}

type ChallengeItem struct {
	Index int
	Name  string
}

type DetailView struct {
	Index       int
	Name        string
	Description string
}

type BoardView struct {
	Index     int
	Challenge string
	Loading   bool
	Error     string
	Rows      []BoardRow
}

// BoardRow shows the record holder of a language, "-" when there is none
type BoardRow struct {
	Lang     string
	Holder   string
	CodeSize string
}

type LangBoardView struct {
	Index     int
	Challenge string
	Lang      string
	Loading   bool
	Error     string
	Rows      []RankRow
}

type RankRow struct {
	Rank     int
	Name     string
	CodeSize int
}

type SubmitView struct {
	Index     int
	Challenge string
	Name      string
	Lang      string
	Languages []string
	FileName  string
	FileSize  int
	HasFile   bool
	Picking   bool
	Pending   bool
	CanSubmit bool
	Message   string
	Error     string
	Outcome   *Outcome
}

type Outcome struct {
	Passed  bool
	Summary string
	Cases   []CaseView
}

type CaseView struct {
	Name           string
	State          string
	Err            string
	Input          string
	Output         string
	ExpectedOutput string
}

// Project builds the view of a state. It is pure: the same state and data
// always yield the same view.
func Project(s State, d Data) View {
	if !s.Valid(len(d.Challenges)) {
		s = Initial()
	}

	v := View{Screen: s.Kind, Container: s.Kind.Container()}

	switch s.Kind {
	case Home:
		v.Home = homeView(d)
	case ChallengeDetail:
		c := d.Challenges[s.Index]
		v.Detail = &DetailView{Index: s.Index, Name: c.Challenge, Description: c.Description}
	case Leaderboard:
		v.Board = boardView(s, d)
	case LangLeaderboard:
		v.LangBoard = langBoardView(s, d)
	case Submit:
		v.Submit = submitView(s, d)
	}

	return v
}

func homeView(d Data) *HomeView {
	hv := &HomeView{
		Loading: d.ListStatus == Loading || d.ListStatus == Idle,
		Error:   d.ListError,
	}
	for i, c := range d.Challenges {
		hv.Items = append(hv.Items, ChallengeItem{Index: i, Name: c.Challenge})
	}
	return hv
}

// boardFor reports the board data only if it belongs to the state's challenge
func boardFor(s State, d Data) (models.PublicLeaderboard, bool, string) {
	name := d.Challenges[s.Index].Challenge
	if d.BoardChallenge != name {
		return nil, true, ""
	}
	switch d.BoardStatus {
	case Ready:
		return d.Board, false, ""
	case Failed:
		return nil, false, d.BoardError
	default:
		return nil, true, ""
	}
}

func boardView(s State, d Data) *BoardView {
	board, loading, errMsg := boardFor(s, d)
	bv := &BoardView{
		Index:     s.Index,
		Challenge: d.Challenges[s.Index].Challenge,
		Loading:   loading,
		Error:     errMsg,
	}
	for _, lang := range board.Languages() {
		row := BoardRow{Lang: lang, Holder: "-", CodeSize: "-"}
		if top, ok := board.Top(lang); ok {
			row.Holder = top.Name
			row.CodeSize = strconv.Itoa(top.CodeSize)
		}
		bv.Rows = append(bv.Rows, row)
	}
	return bv
}

func langBoardView(s State, d Data) *LangBoardView {
	board, loading, errMsg := boardFor(s, d)
	lv := &LangBoardView{
		Index:     s.Index,
		Challenge: d.Challenges[s.Index].Challenge,
		Lang:      s.Lang,
		Loading:   loading,
		Error:     errMsg,
	}
	for i, e := range board[s.Lang] {
		lv.Rows = append(lv.Rows, RankRow{Rank: i + 1, Name: e.Name, CodeSize: e.CodeSize})
	}
	return lv
}

func submitView(s State, d Data) *SubmitView {
	f := d.Form
	sv := &SubmitView{
		Index:     s.Index,
		Challenge: d.Challenges[s.Index].Challenge,
		Name:      f.Name,
		Lang:      f.Lang,
		Languages: d.Languages,
		FileName:  f.FileName,
		FileSize:  f.FileSize,
		HasFile:   f.HasFile,
		Picking:   f.Picking,
		Pending:   f.Pending,
		CanSubmit: !f.Pending,
		Message:   f.Message,
		Error:     f.Error,
	}
	if f.Result != nil && !f.Pending {
		sv.Outcome = outcome(f.Result, f.ResultSize)
	}
	return sv
}

func outcome(r *models.SubmitResult, size int) *Outcome {
	if r.Passed() {
		return &Outcome{
			Passed:  true,
			Summary: fmt.Sprintf("Passed all test cases with a %d bytes solution!", size),
		}
	}

	failures := r.Failures()
	o := &Outcome{
		Summary: fmt.Sprintf("Failed %d of %d test cases.", len(failures), len(r.Results)),
	}
	for _, tc := range failures {
		o.Cases = append(o.Cases, CaseView{
			Name:           tc.Name,
			State:          string(tc.State),
			Err:            tc.Err,
			Input:          tc.Input,
			Output:         tc.Output,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}
	return o
}
