package screen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/terra-clan/code-golf/internal/models"
)

func sampleData() Data {
	return Data{
		Challenges: []models.Challenge{
			{Challenge: "FizzBuzz", Description: "<p>desc</p>"},
			{Challenge: "Primes", Description: "<p>primes</p>"},
		},
		Languages:  []string{"js", "python"},
		ListStatus: Ready,
	}
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name string
		from State
		act  Action
		want State
	}{
		{"select", State{Kind: Home}, Select{Index: 1}, State{Kind: ChallengeDetail, Index: 1}},
		{"detail back", State{Kind: ChallengeDetail, Index: 1}, Back{}, State{Kind: Home}},
		{"open submit", State{Kind: ChallengeDetail, Index: 1}, OpenSubmit{}, State{Kind: Submit, Index: 1}},
		{"show board", State{Kind: ChallengeDetail, Index: 0}, ShowBoard{}, State{Kind: Leaderboard, Index: 0}},
		{"board back", State{Kind: Leaderboard, Index: 0}, Back{}, State{Kind: ChallengeDetail, Index: 0}},
		{"select lang", State{Kind: Leaderboard, Index: 0}, SelectLang{Lang: "python"}, State{Kind: LangLeaderboard, Index: 0, Lang: "python"}},
		{"lang back", State{Kind: LangLeaderboard, Index: 0, Lang: "python"}, Back{}, State{Kind: Leaderboard, Index: 0}},
		{"submit back", State{Kind: Submit, Index: 1}, Back{}, State{Kind: ChallengeDetail, Index: 1}},
		{"submit code", State{Kind: Submit, Index: 1}, SubmitCode{Name: "a"}, State{Kind: Submit, Index: 1}},
		{"reload", State{Kind: Home}, Reload{}, State{Kind: Home}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.act, 2)
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		act  Action
		want error
	}{
		{State{Kind: Home}, Select{Index: 2}, ErrInvalidIndex},
		{State{Kind: Home}, Select{Index: -1}, ErrInvalidIndex},
		{State{Kind: Home}, Back{}, ErrInvalidTransition},
		{State{Kind: Home}, ShowBoard{}, ErrInvalidTransition},
		{State{Kind: Submit, Index: 0}, ShowBoard{}, ErrInvalidTransition},
		{State{Kind: ChallengeDetail, Index: 0}, SelectLang{Lang: "py"}, ErrInvalidTransition},
		{State{Kind: Leaderboard, Index: 0}, SelectLang{}, ErrInvalidTransition},
		{State{Kind: ChallengeDetail, Index: 0}, SubmitCode{}, ErrInvalidTransition},
	}

	for _, tt := range tests {
		got, err := Next(tt.from, tt.act, 2)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s on %s: expected %v, got %v", tt.act.Type(), tt.from, tt.want, err)
		}
		if got != tt.from {
			t.Errorf("%s on %s: state changed to %s on error", tt.act.Type(), tt.from, got)
		}
	}
}

func TestSelectThenBackKeepsList(t *testing.T) {
	d := sampleData()
	before := Project(Initial(), d)

	for i := range d.Challenges {
		s, err := Next(Initial(), Select{Index: i}, len(d.Challenges))
		if err != nil {
			t.Fatalf("select %d failed: %v", i, err)
		}
		s, err = Next(s, Back{}, len(d.Challenges))
		if err != nil {
			t.Fatalf("back failed: %v", err)
		}
		if s.Kind != Home {
			t.Fatalf("expected home, got %s", s)
		}
		if after := Project(s, d); !reflect.DeepEqual(before, after) {
			t.Errorf("home view changed after visiting %d", i)
		}
	}
}

func TestExactlyOnePanel(t *testing.T) {
	d := sampleData()
	d.BoardChallenge = "FizzBuzz"
	d.BoardStatus = Ready
	d.Board = models.PublicLeaderboard{"python": {{Name: "a", CodeSize: 5}}}

	states := []State{
		{Kind: Home},
		{Kind: ChallengeDetail, Index: 0},
		{Kind: Leaderboard, Index: 0},
		{Kind: LangLeaderboard, Index: 0, Lang: "python"},
		{Kind: Submit, Index: 0},
	}
	for _, s := range states {
		v := Project(s, d)
		n := 0
		for _, p := range []bool{v.Home != nil, v.Detail != nil, v.Board != nil, v.LangBoard != nil, v.Submit != nil} {
			if p {
				n++
			}
		}
		if n != 1 {
			t.Errorf("%s: expected one panel, got %d", s, n)
		}
		if v.Container != s.Kind.Container() {
			t.Errorf("%s: unexpected container %s", s, v.Container)
		}
	}
}

func TestProjectDetail(t *testing.T) {
	v := Project(State{Kind: ChallengeDetail, Index: 0}, sampleData())
	if v.Detail.Name != "FizzBuzz" || v.Detail.Description != "<p>desc</p>" {
		t.Errorf("unexpected detail view: %+v", v.Detail)
	}
}

func TestProjectBoard(t *testing.T) {
	d := sampleData()
	d.BoardChallenge = "FizzBuzz"
	d.BoardStatus = Ready
	d.Board = models.PublicLeaderboard{
		"python": {{Name: "a", CodeSize: 5}},
		"go":     {},
	}

	v := Project(State{Kind: Leaderboard, Index: 0}, d)
	want := []BoardRow{
		{Lang: "go", Holder: "-", CodeSize: "-"},
		{Lang: "python", Holder: "a", CodeSize: "5"},
	}
	if !reflect.DeepEqual(v.Board.Rows, want) {
		t.Errorf("unexpected rows: %+v", v.Board.Rows)
	}

	lv := Project(State{Kind: LangLeaderboard, Index: 0, Lang: "python"}, d)
	if len(lv.LangBoard.Rows) != 1 || lv.LangBoard.Rows[0] != (RankRow{Rank: 1, Name: "a", CodeSize: 5}) {
		t.Errorf("unexpected lang rows: %+v", lv.LangBoard.Rows)
	}
}

func TestProjectBoardOfOtherChallengeIsLoading(t *testing.T) {
	d := sampleData()
	d.BoardChallenge = "Primes"
	d.BoardStatus = Ready
	d.Board = models.PublicLeaderboard{"python": {{Name: "z", CodeSize: 1}}}

	v := Project(State{Kind: Leaderboard, Index: 0}, d)
	if !v.Board.Loading || len(v.Board.Rows) != 0 {
		t.Errorf("board of another challenge leaked into view: %+v", v.Board)
	}
}

func TestProjectSubmitOutcome(t *testing.T) {
	d := sampleData()
	d.Form = Form{
		HasFile:    true,
		FileSize:   10,
		ResultSize: 10,
		Result:     &models.SubmitResult{State: models.ResultPass},
	}

	v := Project(State{Kind: Submit, Index: 0}, d)
	if v.Submit.Outcome == nil || !v.Submit.Outcome.Passed {
		t.Fatalf("expected pass outcome, got %+v", v.Submit.Outcome)
	}
	if v.Submit.Outcome.Summary != "Passed all test cases with a 10 bytes solution!" {
		t.Errorf("unexpected summary: %q", v.Submit.Outcome.Summary)
	}

	d.Form.Pending = true
	v = Project(State{Kind: Submit, Index: 0}, d)
	if v.Submit.CanSubmit || v.Submit.Outcome != nil {
		t.Errorf("pending submission should disable submit and hide outcome: %+v", v.Submit)
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	d := sampleData()
	d.BoardChallenge = "FizzBuzz"
	d.BoardStatus = Ready
	d.Board = models.PublicLeaderboard{"c": {}, "b": {{Name: "x", CodeSize: 2}}, "a": {}}

	s := State{Kind: Leaderboard, Index: 0}
	first := Project(s, d)
	for i := 0; i < 20; i++ {
		if !reflect.DeepEqual(first, Project(s, d)) {
			t.Fatal("projection differs between calls")
		}
	}
}

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{`{"type":"select","index":0}`, Select{Index: 0}},
		{`{"type":"back"}`, Back{}},
		{`{"type":"select_lang","lang":"python"}`, SelectLang{Lang: "python"}},
		{`{"type":"submit_code","name":"a","lang":"go"}`, SubmitCode{Name: "a", Lang: "go"}},
		{`{"type":"file_chosen","token":"t","name":"f","content":"c"}`, FileChosen{Token: "t", Name: "f", Content: "c"}},
		{`{"type":"file_chosen","token":"t","name":"f","size":4096}`, FileChosen{Token: "t", Name: "f", Size: 4096}},
	}
	for _, tt := range tests {
		got, err := DecodeAction([]byte(tt.in))
		if err != nil {
			t.Errorf("DecodeAction(%s) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DecodeAction(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	if _, err := DecodeAction([]byte(`{"type":"select"}`)); err == nil {
		t.Error("expected error for select without index")
	}
	if _, err := DecodeAction([]byte(`{"type":"explode"}`)); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("expected ErrUnknownAction, got %v", err)
	}
}
