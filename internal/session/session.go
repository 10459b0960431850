// Package session runs one browser page's screen state machine.
//
// Each Session processes user actions and the completions of its own
// asynchronous requests on a single event loop goroutine, so session state
// needs no locking. Completions are tagged with the request they answer and
// dropped when a newer request or a navigation has made them stale.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/terra-clan/code-golf/internal/filepick"
	"github.com/terra-clan/code-golf/internal/models"
	"github.com/terra-clan/code-golf/internal/render"
	"github.com/terra-clan/code-golf/internal/screen"
)

// API is the subset of the golf API client a session uses
type API interface {
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ListLanguages(ctx context.Context) ([]string, error)
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResult, error)
}

// Boards serves leaderboards, typically a *leaderboard.Cache
type Boards interface {
	GetOrFetch(ctx context.Context, challengeID string) (models.PublicLeaderboard, error)
	Invalidate(ctx context.Context, challengeID string) error
}

// Renderer turns a view into panel markup
type Renderer interface {
	Render(v screen.View) (render.Panel, error)
}

// Frame is pushed to the browser after every processed event
type Frame struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq"`
	Screen  string `json:"screen"`
	Visible string `json:"visible"`
	HTML    string `json:"html"`
	// Pick asks the browser to open its file dialog for this token
	Pick string `json:"pick,omitempty"`
	// Limit is the largest file size the pick accepts
	Limit int64 `json:"limit,omitempty"`
}

// Sink delivers frames to the browser
type Sink func(Frame) error

// event is either a user action or a request completion
type event interface{}

type actionEvent struct {
	action screen.Action
}

type listLoaded struct {
	req        uint64
	challenges []models.Challenge
	languages  []string
	err        error
}

type boardLoaded struct {
	req       uint64
	challenge string
	board     models.PublicLeaderboard
	err       error
}

type submitted struct {
	req       uint64
	challenge string
	size      int
	result    *models.SubmitResult
	err       error
}

// Session is one page load's state machine
type Session struct {
	id        string
	api       API
	boards    Boards
	renderer  Renderer
	sink      Sink
	fileLimit int64

	inbox     chan event
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	lastActive atomic.Int64

	// owned by the event loop
	state       screen.State
	data        screen.Data
	slot        filepick.Slot
	seq         uint64
	frames      uint64
	listReq     uint64
	boardReq    uint64
	boardCancel context.CancelFunc
	submitReq   uint64
	pickPrompt  string
	// challenge the slot's file was picked for
	fileChallenge string
}

// Options configures a session
type Options struct {
	ID        string
	API       API
	Boards    Boards
	Renderer  Renderer
	Sink      Sink
	FileLimit int64
}

// New creates a session; call Run to start its event loop
func New(opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:        opts.ID,
		api:       opts.API,
		boards:    opts.Boards,
		renderer:  opts.Renderer,
		sink:      opts.Sink,
		fileLimit: opts.FileLimit,
		inbox:     make(chan event, 16),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     screen.Initial(),
	}
	s.touch()
	return s
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// LastActive returns when the user last dispatched an action
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Done is closed once the event loop has exited
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the event loop and cancels outstanding requests
func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// Dispatch queues a user action for the event loop
func (s *Session) Dispatch(ctx context.Context, a screen.Action) error {
	if s.ctx.Err() != nil {
		return ErrClosed
	}
	s.touch()
	select {
	case s.inbox <- actionEvent{action: a}:
		return nil
	case <-s.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers a completion unless the session is gone
func (s *Session) post(ev event) {
	select {
	case s.inbox <- ev:
	case <-s.ctx.Done():
	}
}

// Run processes events until ctx is cancelled or Close is called
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.Close()

	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	slog.Debug("session started", "session_id", s.id)

	s.load()
	s.push()

	for {
		select {
		case <-s.ctx.Done():
			if s.boardCancel != nil {
				s.boardCancel()
			}
			slog.Debug("session stopped", "session_id", s.id)
			return
		case ev := <-s.inbox:
			s.handle(ev)
			s.push()
		}
	}
}

func (s *Session) handle(ev event) {
	switch ev := ev.(type) {
	case actionEvent:
		s.apply(ev.action)
	case listLoaded:
		s.onList(ev)
	case boardLoaded:
		s.onBoard(ev)
	case submitted:
		s.onSubmitted(ev)
	}
}

func (s *Session) nextReq() uint64 {
	s.seq++
	return s.seq
}

func (s *Session) apply(a screen.Action) {
	next, err := screen.Next(s.state, a, len(s.data.Challenges))
	if err != nil {
		slog.Debug("action rejected", "session_id", s.id, "action", a.Type(), "state", s.state.String(), "error", err)
		return
	}

	if next != s.state {
		prev := s.state
		s.leave(prev, next)
		s.state = next
		s.enter(next)
	}

	switch a := a.(type) {
	case screen.SubmitCode:
		s.submit(a)
	case screen.PickFile:
		s.pick()
	case screen.FileChosen:
		s.fileChosen(a)
	case screen.FileCancelled:
		s.fileCancelled(a)
	case screen.Reload:
		if s.data.ListStatus == screen.Failed {
			s.load()
		}
	}
}

func boardScreen(k screen.Kind) bool {
	return k == screen.Leaderboard || k == screen.LangLeaderboard
}

// leave drops work that belongs to the screen being left
func (s *Session) leave(prev, next screen.State) {
	if boardScreen(prev.Kind) && !boardScreen(next.Kind) && s.boardReq != 0 {
		s.boardCancel()
		s.boardReq = 0
		s.boardCancel = nil
		s.data.BoardStatus = screen.Idle
		s.data.BoardChallenge = ""
	}

	if prev.Kind == screen.Submit && next.Kind != screen.Submit {
		// The submission keeps running server-side; only its result is dropped.
		s.submitReq = 0
		s.data.Form.Pending = false
		if tok := s.slot.Pending(); tok != "" {
			s.slot.Cancel(tok)
		}
		s.data.Form.Picking = false
	}
}

func (s *Session) enter(next screen.State) {
	switch next.Kind {
	case screen.Leaderboard, screen.LangLeaderboard:
		s.showBoard(next.Index)
	case screen.Submit:
		f := &s.data.Form
		f.Message, f.Error, f.Result = "", "", nil
		if name := s.data.Challenges[next.Index].Challenge; name != s.fileChallenge {
			s.slot.Clear()
			f.HasFile, f.FileName, f.FileSize = false, "", 0
			s.fileChallenge = name
		}
	}
}

// load fetches the challenge and language lists concurrently
func (s *Session) load() {
	req := s.nextReq()
	s.listReq = req
	s.data.ListStatus = screen.Loading
	s.data.ListError = ""

	go func() {
		var challenges []models.Challenge
		var languages []string

		g, ctx := errgroup.WithContext(s.ctx)
		g.Go(func() error {
			var err error
			challenges, err = s.api.ListChallenges(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			languages, err = s.api.ListLanguages(ctx)
			return err
		})
		err := g.Wait()

		s.post(listLoaded{req: req, challenges: challenges, languages: languages, err: err})
	}()
}

func (s *Session) onList(ev listLoaded) {
	if ev.req != s.listReq {
		return
	}
	s.listReq = 0

	if ev.err != nil {
		slog.Warn("failed to load challenges", "session_id", s.id, "error", ev.err)
		s.data.ListStatus = screen.Failed
		s.data.ListError = userMessage(ev.err)
		return
	}

	s.data.Challenges = ev.challenges
	s.data.Languages = ev.languages
	s.data.ListStatus = screen.Ready
	if !s.state.Valid(len(s.data.Challenges)) {
		s.state = screen.Initial()
	}
}

func (s *Session) showBoard(index int) {
	name := s.data.Challenges[index].Challenge
	if s.data.BoardChallenge == name && (s.data.BoardStatus == screen.Ready || s.boardReq != 0) {
		return
	}

	if s.boardCancel != nil {
		s.boardCancel()
	}
	s.data.BoardChallenge = name
	s.data.BoardError = ""

	// Cache hits are served from the fetch goroutine too, the store may be remote.
	req := s.nextReq()
	ctx, cancel := context.WithCancel(s.ctx)
	s.boardReq, s.boardCancel = req, cancel
	s.data.Board = nil
	s.data.BoardStatus = screen.Loading

	go func() {
		board, err := s.boards.GetOrFetch(ctx, name)
		s.post(boardLoaded{req: req, challenge: name, board: board, err: err})
	}()
}

func (s *Session) onBoard(ev boardLoaded) {
	if ev.req != s.boardReq || ev.challenge != s.data.BoardChallenge {
		slog.Debug("dropping stale leaderboard", "session_id", s.id, "challenge", ev.challenge)
		return
	}
	s.boardCancel()
	s.boardReq, s.boardCancel = 0, nil

	if ev.err != nil {
		slog.Warn("failed to load leaderboard", "session_id", s.id, "challenge", ev.challenge, "error", ev.err)
		s.data.BoardStatus = screen.Failed
		s.data.BoardError = userMessage(ev.err)
		return
	}
	s.data.Board = ev.board
	s.data.BoardStatus = screen.Ready
}

// validate checks submission preconditions in the order the user sees them
func (s *Session) validate(a screen.SubmitCode) (filepick.File, error) {
	if s.data.Form.Pending {
		return filepick.File{}, ErrSubmitPending
	}
	if strings.TrimSpace(a.Name) == "" {
		return filepick.File{}, ErrNameRequired
	}
	f, ok := s.slot.Selected()
	if !ok {
		return filepick.File{}, ErrNoFile
	}
	if strings.TrimSpace(a.Lang) == "" {
		return filepick.File{}, ErrLangRequired
	}
	return f, nil
}

func (s *Session) submit(a screen.SubmitCode) {
	form := &s.data.Form
	if !form.Pending {
		form.Name, form.Lang = a.Name, a.Lang
	}

	file, err := s.validate(a)
	if err != nil {
		form.Message = err.Error()
		return
	}

	challenge := s.data.Challenges[s.state.Index].Challenge
	req := s.nextReq()
	s.submitReq = req
	form.Pending = true
	form.Message, form.Error, form.Result = "", "", nil

	body := models.SubmitRequest{
		Name:      strings.TrimSpace(a.Name),
		Code:      file.Content,
		Challenge: challenge,
		Lang:      a.Lang,
	}

	slog.Info("submitting code", "session_id", s.id, "challenge", challenge, "lang", a.Lang, "bytes", file.Size())

	go func() {
		res, err := s.api.Submit(s.ctx, body)
		if err == nil && res.Passed() {
			if err := s.boards.Invalidate(s.ctx, challenge); err != nil {
				slog.Warn("failed to invalidate leaderboard", "challenge", challenge, "error", err)
			}
		}
		s.post(submitted{req: req, challenge: challenge, size: file.Size(), result: res, err: err})
	}()
}

func (s *Session) onSubmitted(ev submitted) {
	// A passing solution may have changed the board we hold.
	if ev.err == nil && ev.result.Passed() && ev.challenge == s.data.BoardChallenge && !boardScreen(s.state.Kind) {
		s.data.BoardChallenge = ""
		s.data.BoardStatus = screen.Idle
		s.data.Board = nil
	}

	if ev.req != s.submitReq {
		slog.Debug("dropping stale submission result", "session_id", s.id)
		return
	}
	s.submitReq = 0

	form := &s.data.Form
	form.Pending = false
	form.Message = ""
	if ev.err != nil {
		if errors.Is(ev.err, context.Canceled) {
			return
		}
		slog.Warn("submission failed", "session_id", s.id, "error", ev.err)
		form.Error = userMessage(ev.err)
		return
	}

	form.Result = ev.result
	form.ResultSize = ev.size
	slog.Info("submission finished", "session_id", s.id, "state", ev.result.State, "bytes", ev.size)
}

func (s *Session) pick() {
	if s.data.Form.Pending {
		return
	}
	s.pickPrompt = s.slot.Begin()
	s.data.Form.Picking = true
	s.data.Form.Message = ""
}

func (s *Session) fileChosen(a screen.FileChosen) {
	err := filepick.CheckSize(a.Name, a.Size, s.fileLimit)
	var f filepick.File
	if err == nil {
		f, err = filepick.FromUpload(a.Name, a.Content, s.fileLimit)
	}
	if err != nil {
		if errors.Is(s.slot.Cancel(a.Token), filepick.ErrStalePick) {
			return
		}
		s.data.Form.Picking = false
		s.data.Form.Message = userMessage(err)
		return
	}

	if err := s.slot.Resolve(a.Token, f); err != nil {
		slog.Debug("ignoring superseded file pick", "session_id", s.id)
		return
	}
	form := &s.data.Form
	form.Picking = false
	form.HasFile, form.FileName, form.FileSize = true, f.Name, f.Size()
	form.Message = ""
}

func (s *Session) fileCancelled(a screen.FileCancelled) {
	err := s.slot.Cancel(a.Token)
	if errors.Is(err, filepick.ErrStalePick) {
		return
	}
	s.data.Form.Picking = false
	s.data.Form.Message = userMessage(err)
}

func (s *Session) limit() int64 {
	if s.fileLimit <= 0 {
		return filepick.DefaultLimit
	}
	return s.fileLimit
}

// push renders the current view and hands it to the sink
func (s *Session) push() {
	if s.sink == nil {
		return
	}

	view := screen.Project(s.state, s.data)
	panel, err := s.renderer.Render(view)
	if err != nil {
		slog.Error("failed to render view", "session_id", s.id, "screen", view.Screen.String(), "error", err)
		return
	}

	s.frames++
	frame := Frame{
		Type:    "frame",
		Seq:     s.frames,
		Screen:  view.Screen.String(),
		Visible: panel.Container,
		HTML:    panel.HTML,
		Pick:    s.pickPrompt,
	}
	if frame.Pick != "" {
		frame.Limit = s.limit()
	}
	s.pickPrompt = ""

	if err := s.sink(frame); err != nil {
		slog.Debug("failed to deliver frame", "session_id", s.id, "error", err)
	}
}
