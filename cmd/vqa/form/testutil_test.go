package form

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"vqa/internal/speech"
	"vqa/internal/submission"
)

// fakeSubmitter answers every submission with a fixed result.
type fakeSubmitter struct {
	answer string
	err    error
	calls  atomic.Int32
}

func (f *fakeSubmitter) Submit(_ context.Context, _ *submission.File, _ string) (string, error) {
	f.calls.Add(1)
	return f.answer, f.err
}

// recordingSynth reports each utterance and holds it until cancelled.
type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
	said   chan string
}

func newRecordingSynth() *recordingSynth {
	return &recordingSynth{said: make(chan string, 8)}
}

func (r *recordingSynth) Speak(ctx context.Context, text string) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, text)
	r.mu.Unlock()
	r.said <- text
	<-ctx.Done()
	return ctx.Err()
}

type testEnv struct {
	model     Model
	submitter *fakeSubmitter
	notifier  *submission.ChanNotifier
	synth     *recordingSynth
	speaker   *speech.Speaker
}

type testOption func(*fakeSubmitter)

func withFailure(err error) testOption {
	return func(f *fakeSubmitter) { f.err = err }
}

// NewTestModel builds a form wired to a fake submitter and a recording
// speech synthesizer, sized to a 120x40 terminal.
func NewTestModel(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	sub := &fakeSubmitter{answer: "A **cat**."}
	for _, opt := range opts {
		opt(sub)
	}
	notifier := submission.NewChanNotifier(4)
	ctrl := submission.NewController(sub, submission.WithNotifier(notifier))
	synth := newRecordingSynth()
	sp := speech.NewSpeaker(synth, nil)
	t.Cleanup(sp.Cancel)

	m := New(Options{
		Controller:    ctrl,
		Client:        submission.NewClient("http://localhost:8000/vqa"),
		Notifications: notifier.C,
		Speaker:       sp,
		Theme:         "light",
		WordWrap:      80,
		StartDir:      t.TempDir(),
	})
	env := &testEnv{model: m, submitter: sub, notifier: notifier, synth: synth, speaker: sp}
	env.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return env
}

func (e *testEnv) update(msg tea.Msg) tea.Cmd {
	next, cmd := e.model.Update(msg)
	e.model = next.(Model)
	return cmd
}

func (e *testEnv) key(k tea.KeyType) tea.Cmd {
	return e.update(tea.KeyMsg{Type: k})
}

func (e *testEnv) runes(s string) tea.Cmd {
	return e.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// ready selects an image and types a question.
func (e *testEnv) ready(t *testing.T) {
	t.Helper()
	e.model.selectPath(writePNG(t, 4, 3))
	e.key(tea.KeyTab)
	e.runes("What is this?")
}

// answer runs one submission end to end through Update.
func (e *testEnv) answer(t *testing.T) {
	t.Helper()
	e.ready(t)
	require.NotNil(t, e.key(tea.KeyCtrlS))
	e.update(e.model.submitCmd()())
}

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

var errBoom = errors.New("boom")
