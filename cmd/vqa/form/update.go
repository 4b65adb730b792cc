package form

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"vqa/cmd/vqa/ui"
	"vqa/internal/speech"
	"vqa/internal/submission"
)

// Update handles messages and user input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if m.speaker != nil {
				m.speaker.Cancel()
			}
			return m, tea.Quit
		}
		// The notification is modal: any key dismisses it and nothing else
		// reaches the form.
		if m.notice != nil {
			m.notice = nil
			return m, nil
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.notice != nil || m.picking {
			return m, nil
		}
		if msg.Action == tea.MouseActionMotion && m.hover != nil {
			if entered, left := m.hover.Move(msg.X, msg.Y); entered || left {
				m.logger.Debug("answer hover", zap.Bool("entered", entered), zap.Bool("left", left))
			}
		}
		if tea.MouseEvent(msg).IsWheel() {
			var cmd tea.Cmd
			m.answerVP, cmd = m.answerVP.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		m.layout = ui.NewLayoutConfig(m.width, m.height)
		m.picker.SetHeight(max(m.layout.ContentHeight()-2, 3))
		m.relayout()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitDoneMsg:
		m.pending = false
		switch {
		case msg.err == nil:
			// Read back from the controller: a file change while in flight
			// does not discard the answer it produced.
			m.setAnswer(m.ctrl.State().Answer)
		case errors.Is(msg.err, submission.ErrInFlight),
			errors.Is(msg.err, submission.ErrNoFile),
			errors.Is(msg.err, submission.ErrEmptyQuestion):
			// Guarded: nothing was sent.
		default:
			// The controller already notified; the answer stays as it was.
			m.logger.Debug("submit failed", zap.Error(msg.err))
		}
		m.relayout()
		return m, nil

	case notificationMsg:
		n := submission.Notification(msg)
		m.notice = &n
		if m.hover != nil {
			m.hover.Leave()
		}
		return m, m.waitForNotification()

	case ConfigChangedMsg:
		m.applyConfig(msg)
		return m, nil
	}

	// Everything else (picker directory reads, cursor blink) goes to the
	// widgets that may own it.
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)
	m.question, cmd = m.question.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Confirm):
		if m.focus == focusFile {
			return m.openPicker()
		}
		return m.submit()
	case m.focus == focusFile && key.Matches(msg, m.keys.Open):
		return m.openPicker()
	}

	if m.focus == focusQuestion {
		var cmd tea.Cmd
		m.question, cmd = m.question.Update(msg)
		m.ctrl.SetQuestion(m.question.Value())
		return m, cmd
	}

	// Remaining keys scroll the answer.
	var cmd tea.Cmd
	m.answerVP, cmd = m.answerVP.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	if f == focusQuestion {
		return m.question.Focus()
	}
	m.question.Blur()
	return nil
}

// submit starts a request when the required fields are filled and nothing
// is in flight. Otherwise the Ask button is disabled and this is a no-op.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.pending || !m.ctrl.State().CanSubmit() {
		return m, nil
	}
	m.pending = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.submitCmd())
}

func (m Model) openPicker() (tea.Model, tea.Cmd) {
	m.picking = true
	if m.hover != nil {
		m.hover.Leave()
	}
	return m, m.picker.Init()
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Close) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.selectPath(path)
		return m, cmd
	}
	return m, cmd
}

// selectPath loads path and hands it to the controller, which clears any
// previous answer.
func (m *Model) selectPath(path string) {
	f, err := submission.FileFromPath(path)
	if err != nil {
		m.err = err
		m.logger.Warn("file selection failed", zap.String("path", path), zap.Error(err))
		return
	}
	m.err = nil
	m.ctrl.SelectFile(f)
	m.preview = BuildPreview(f)
	m.setAnswer("")
	m.relayout()
}

// setAnswer renders answer into the viewport. An empty answer hides the pane.
func (m *Model) setAnswer(answer string) {
	if m.hover != nil && answer != m.answer {
		m.hover.Leave()
	}
	m.answer = answer
	m.renderAnswer()
}

func (m *Model) renderAnswer() {
	if m.answer == "" {
		*m.spoken = ""
		m.answerVP.SetContent("")
		m.renderWidth = 0
		return
	}
	rendered := safeRenderMarkdown(m.renderer, m.answer)
	*m.spoken = spokenText(rendered)
	m.answerVP.SetContent(rendered)
	m.answerVP.GotoTop()
	m.renderWidth = m.answerWrap()
}

// relayout sizes widgets for the current terminal and moves the hover
// region over the visible answer.
func (m *Model) relayout() {
	contentWidth := m.layout.ContentWidth()
	m.question.Width = max(contentWidth-ui.FieldChromeWidth-len(m.question.Prompt), 10)

	if wrap := m.answerWrap(); m.answer != "" && wrap != m.renderWidth {
		m.renderer = newRenderer(m.styles.Theme, wrap)
		m.renderAnswer()
	}

	formHeight := lineCount(m.renderForm())
	// One line for the "Answer" label.
	vpHeight := m.layout.ContentHeight() - formHeight - 1
	m.answerVP.Width = contentWidth - ui.AnswerGutter
	m.answerVP.Height = max(vpHeight, 1)

	if m.hover == nil {
		return
	}
	if m.answer == "" {
		m.hover.SetBounds(speech.Rect{})
		return
	}
	visible := min(m.answerVP.TotalLineCount(), m.answerVP.Height)
	m.hover.SetBounds(speech.Rect{
		X:      ui.ContentPaddingH,
		Y:      ui.HeaderHeight + ui.ContentPaddingV + formHeight + 1,
		Width:  contentWidth,
		Height: visible,
	})
}

func (m *Model) applyConfig(msg ConfigChangedMsg) {
	cfg := msg.Config
	if cfg == nil {
		return
	}
	if err := cfg.Validate(); err != nil {
		m.logger.Warn("ignoring invalid config reload", zap.Error(err))
		return
	}
	if m.client != nil && cfg.Client.Endpoint != m.client.Endpoint() {
		m.client.SetEndpoint(cfg.Client.Endpoint)
		m.logger.Info("endpoint updated", zap.String("endpoint", cfg.Client.Endpoint))
	}
	if cfg.UI.WordWrap > 0 {
		m.wordWrap = cfg.UI.WordWrap
	}
	if cfg.UI.Theme != m.theme {
		m.theme = cfg.UI.Theme
		m.styles = ui.NewStyles(ui.ThemeFor(m.theme))
		m.spinner.Style = m.styles.Spinner
		m.question.PromptStyle = m.styles.Label
		m.question.TextStyle = m.styles.Body
	}
	m.renderer = newRenderer(m.styles.Theme, m.answerWrap())
	m.renderAnswer()
	m.relayout()
}
