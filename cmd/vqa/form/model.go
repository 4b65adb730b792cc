// Package form implements the interactive vqa form: a file picker, a
// question field, an Ask button and a markdown answer pane that speaks its
// text while the pointer hovers over it.
package form

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
	"go.uber.org/zap"

	"vqa/cmd/vqa/ui"
	"vqa/internal/config"
	"vqa/internal/logging"
	"vqa/internal/speech"
	"vqa/internal/submission"
)

// slowSubmit is when a submission is logged as slow.
const slowSubmit = 10 * time.Second

type focus int

const (
	focusFile focus = iota
	focusQuestion
	focusAsk
	focusCount
)

// Messages
type (
	submitDoneMsg struct {
		answer string
		err    error
	}
	notificationMsg submission.Notification

	// ConfigChangedMsg delivers a reloaded config to a running form.
	ConfigChangedMsg struct{ Config *config.Config }
)

// Options wires a form to its collaborators.
type Options struct {
	Context    context.Context
	Controller *submission.Controller
	// Client, when set, has its endpoint updated on config reload.
	Client *submission.Client
	// Notifications is the channel behind the controller's notifier.
	Notifications <-chan submission.Notification
	// Speaker is nil when speech is disabled.
	Speaker  *speech.Speaker
	Theme    string
	WordWrap int
	StartDir string
	Logger   *zap.Logger
}

// Model is the bubbletea model for the form.
type Model struct {
	ctx           context.Context
	ctrl          *submission.Controller
	client        *submission.Client
	notifications <-chan submission.Notification
	speaker       *speech.Speaker
	hover         *speech.HoverRegion
	logger        *zap.Logger

	keys     keyMap
	styles   ui.Styles
	theme    string
	renderer *glamour.TermRenderer
	wordWrap int

	picker   filepicker.Model
	picking  bool
	question textinput.Model
	spinner  spinner.Model
	answerVP viewport.Model

	focus   focus
	pending bool
	preview Preview
	answer  string
	// spoken is shared with the hover region across model copies.
	spoken      *string
	renderWidth int
	notice      *submission.Notification
	err         error

	layout ui.LayoutConfig
	width  int
	height int
}

// New creates the form model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WordWrap <= 0 {
		opts.WordWrap = 80
	}

	styles := ui.NewStyles(ui.ThemeFor(opts.Theme))

	fp := filepicker.New()
	fp.AutoHeight = false
	fp.SetHeight(10)
	fp.ShowPermissions = false
	if opts.StartDir != "" {
		fp.CurrentDirectory = opts.StartDir
	}

	ti := textinput.New()
	ti.Placeholder = "Ask a question about the file..."
	ti.Prompt = "› "
	ti.CharLimit = 2048
	ti.Width = 60
	ti.PromptStyle = styles.Label
	ti.TextStyle = styles.Body

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(60, 10)
	vp.MouseWheelEnabled = true

	m := Model{
		ctx:           opts.Context,
		ctrl:          opts.Controller,
		client:        opts.Client,
		notifications: opts.Notifications,
		speaker:       opts.Speaker,
		logger:        opts.Logger,
		keys:          defaultKeyMap(),
		styles:        styles,
		theme:         opts.Theme,
		wordWrap:      opts.WordWrap,
		picker:        fp,
		question:      ti,
		spinner:       sp,
		answerVP:      vp,
		focus:         focusFile,
		layout:        ui.NewLayoutConfig(80, 24),
		width:         80,
		height:        24,
		spoken:        new(string),
	}
	if m.speaker != nil {
		spoken := m.spoken
		m.hover = speech.NewHoverRegion(m.speaker, func() string { return *spoken })
	}
	m.renderer = newRenderer(styles.Theme, m.answerWrap())
	return m
}

// Init starts listening for failure notifications.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForNotification())
}

func (m Model) waitForNotification() tea.Cmd {
	if m.notifications == nil {
		return nil
	}
	ch := m.notifications
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func (m Model) submitCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		timer := logging.StartTimer(logging.CategorySubmission, "submit")
		answer, err := ctrl.Submit(ctx)
		timer.StopWithThreshold(slowSubmit)
		return submitDoneMsg{answer: answer, err: err}
	}
}

func newRenderer(theme ui.Theme, wrap int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// safeRenderMarkdown falls back to the raw text when glamour fails or panics.
func safeRenderMarkdown(r *glamour.TermRenderer, content string) (out string) {
	if r == nil {
		return content
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = content
		}
	}()
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// spokenText flattens rendered markdown into one line of plain text.
func spokenText(rendered string) string {
	return strings.Join(strings.Fields(ansi.Strip(rendered)), " ")
}

func (m Model) answerWrap() int {
	w := m.layout.ContentWidth() - ui.AnswerGutter
	if m.wordWrap < w {
		w = m.wordWrap
	}
	if w < 20 {
		w = 20
	}
	return w
}
