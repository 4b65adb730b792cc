package form

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vqa/cmd/vqa/ui"
	"vqa/internal/submission"
)

// View renders the form.
func (m Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	if m.notice != nil {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderNotice(), footer)
	}

	var body string
	if m.picking {
		body = lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Title.Render("Choose a file"),
			m.styles.Muted.Render(m.picker.CurrentDirectory),
			m.picker.View(),
		)
	} else {
		left := m.renderForm()
		if m.answer != "" {
			left = lipgloss.JoinVertical(lipgloss.Left, left, m.renderAnswerPane())
		}
		body = left
		if !m.layout.IsCompact && m.preview.Name != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Top, left, " ", m.renderPreview())
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.styles.Content.Render(body), footer)
}

func (m Model) renderHeader() string {
	title := "vqa · visual question answering"
	if m.client != nil {
		title += "  →  " + m.client.Endpoint()
	}
	return m.styles.Header.Width(max(m.width, 0)).Render(title)
}

func (m Model) renderFooter() string {
	if m.err != nil {
		return m.styles.Footer.Render(m.styles.Error.Render("Error: " + m.err.Error()))
	}
	var help string
	switch {
	case m.notice != nil:
		help = "any key to dismiss"
	case m.picking:
		help = helpLine(m.keys.Confirm, m.keys.Close, m.keys.Quit)
	default:
		help = helpLine(m.keys.Next, m.keys.Open, m.keys.Submit, m.keys.Quit)
	}
	return m.styles.Footer.Render(help)
}

// renderForm renders everything above the answer pane. Its height must not
// depend on focus, since the hover region is placed below it.
func (m Model) renderForm() string {
	width := m.layout.ContentWidth()
	st := m.ctrl.State()

	fileText := m.styles.Muted.Render("No file selected (press o)")
	if st.SelectedFile != nil {
		fileText = m.styles.Body.Render(st.SelectedFile.Name)
	}

	sections := []string{
		m.styles.Label.Render("File"),
		m.fieldStyle(focusFile).Width(width - 2).Render(fileText),
		m.styles.Label.Render("Question"),
		m.fieldStyle(focusQuestion).Width(width - 2).Render(m.question.View()),
		m.renderButton(st),
	}

	if m.layout.IsCompact && m.preview.Name != "" {
		sections = append(sections, m.styles.Muted.Render(strings.Join(m.preview.Lines(), " · ")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) fieldStyle(f focus) lipgloss.Style {
	if m.focus == f {
		return m.styles.FocusedField
	}
	return m.styles.Field
}

func (m Model) renderButton(st submission.State) string {
	label := "Ask"
	style := m.styles.Button
	switch {
	case m.pending || st.IsSubmitting:
		label = m.spinner.View() + " Asking..."
		style = m.styles.ButtonDisabled
	case !st.Ready():
		style = m.styles.ButtonDisabled
	case m.focus == focusAsk:
		style = m.styles.ButtonFocused
	}
	return style.Render(label)
}

func (m Model) renderAnswerPane() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Label.Render("Answer"),
		m.styles.Answer.Render(m.answerVP.View()),
	)
}

func (m Model) renderPreview() string {
	lines := m.preview.Lines()
	lines[0] = m.styles.Label.Render(lines[0])
	return m.styles.Preview.Width(ui.PreviewWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderNotice() string {
	n := m.notice
	body := m.styles.Error.Render(n.Message)
	if n.Err != nil {
		body += "\n\n" + m.styles.Muted.Render(n.Err.Error())
	}
	box := m.styles.Modal.Width(min(60, max(m.width-4, 20))).Render(body)
	height := max(m.height-ui.HeaderHeight-ui.FooterHeight, lineCount(box))
	return lipgloss.Place(max(m.width, lipgloss.Width(box)), height, lipgloss.Center, lipgloss.Center, box)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
