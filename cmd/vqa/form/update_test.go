// Tests for the form Update loop: focus, the required-field guard, the
// submission round trip, the failure notification and hover speech.
package form

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vqa/internal/config"
	"vqa/internal/logging"
	"vqa/internal/submission"
)

// =============================================================================
// WINDOW SIZE MESSAGE TESTS
// =============================================================================

func TestUpdate_WindowSize(t *testing.T) {
	env := NewTestModel(t)
	assert.Equal(t, 120, env.model.width)
	assert.Equal(t, 40, env.model.height)
	assert.False(t, env.model.layout.IsCompact)
}

func TestUpdate_WindowSize_Zero(t *testing.T) {
	env := NewTestModel(t)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Panic on zero window size: %v", r)
		}
	}()

	env.update(tea.WindowSizeMsg{Width: 0, Height: 0})
	_ = env.model.View()
}

// =============================================================================
// FOCUS AND INPUT TESTS
// =============================================================================

func TestUpdate_TabCyclesFocus(t *testing.T) {
	env := NewTestModel(t)
	require.Equal(t, focusFile, env.model.focus)

	env.key(tea.KeyTab)
	assert.Equal(t, focusQuestion, env.model.focus)
	assert.True(t, env.model.question.Focused())

	env.key(tea.KeyTab)
	assert.Equal(t, focusAsk, env.model.focus)
	assert.False(t, env.model.question.Focused())

	env.key(tea.KeyTab)
	assert.Equal(t, focusFile, env.model.focus)

	env.key(tea.KeyShiftTab)
	assert.Equal(t, focusAsk, env.model.focus)
}

func TestUpdate_TypingSetsQuestion(t *testing.T) {
	env := NewTestModel(t)
	env.key(tea.KeyTab)
	env.runes("Why?")

	assert.Equal(t, "Why?", env.model.ctrl.State().Question)
}

func TestUpdate_OpenAndClosePicker(t *testing.T) {
	env := NewTestModel(t)

	cmd := env.runes("o")
	assert.True(t, env.model.picking)
	assert.NotNil(t, cmd, "opening the picker reads the directory")
	assert.Contains(t, env.model.View(), "Choose a file")

	env.key(tea.KeyEsc)
	assert.False(t, env.model.picking)

	env.key(tea.KeyEnter)
	assert.True(t, env.model.picking, "enter on the file field opens the picker")
}

// =============================================================================
// SUBMISSION TESTS
// =============================================================================

func TestUpdate_SubmitGuard(t *testing.T) {
	env := NewTestModel(t)

	// No file, no question.
	assert.Nil(t, env.key(tea.KeyCtrlS))
	assert.False(t, env.model.pending)

	// Question without a file.
	env.key(tea.KeyTab)
	env.runes("What is this?")
	assert.Nil(t, env.key(tea.KeyEnter))

	// File with a blank question.
	env2 := NewTestModel(t)
	env2.model.selectPath(writePNG(t, 2, 2))
	env2.key(tea.KeyTab)
	env2.runes("   ")
	assert.Nil(t, env2.key(tea.KeyCtrlS))

	assert.Zero(t, env.submitter.calls.Load())
	assert.Zero(t, env2.submitter.calls.Load())
}

func TestUpdate_SubmitSuccessRendersAnswer(t *testing.T) {
	env := NewTestModel(t)
	env.ready(t)

	cmd := env.key(tea.KeyCtrlS)
	require.NotNil(t, cmd)
	assert.True(t, env.model.pending)
	assert.Contains(t, env.model.View(), "Asking...")

	// A second press while pending is a no-op.
	assert.Nil(t, env.key(tea.KeyCtrlS))

	env.update(env.model.submitCmd()())

	assert.False(t, env.model.pending)
	assert.Equal(t, "A **cat**.", env.model.answer)
	assert.Contains(t, env.model.View(), "cat")
	assert.Equal(t, "A cat.", *env.model.spoken)
	assert.Equal(t, int32(1), env.submitter.calls.Load())
}

func TestSubmitCmd_LogsDuration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, logging.Initialize(dir, config.LoggingConfig{
		DebugMode:  true,
		Level:      "debug",
		JSONFormat: true,
	}))
	t.Cleanup(logging.CloseAll)

	env := NewTestModel(t)
	env.ready(t)
	env.update(env.model.submitCmd()())
	logging.Sync()

	files, err := filepath.Glob(filepath.Join(dir, "logs", "*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"submission"`)
	assert.Contains(t, string(data), `"operation":"submit"`)
}

func TestUpdate_SelectFileClearsAnswer(t *testing.T) {
	env := NewTestModel(t)
	env.answer(t)
	require.NotEmpty(t, env.model.answer)

	env.model.selectPath(writePNG(t, 8, 8))

	assert.Empty(t, env.model.answer)
	assert.Empty(t, env.model.ctrl.State().Answer)
	assert.NotContains(t, env.model.View(), "A cat")
}

func TestUpdate_SelectMissingFileShowsError(t *testing.T) {
	env := NewTestModel(t)
	env.model.selectPath("/definitely/not/here.png")

	require.Error(t, env.model.err)
	assert.Nil(t, env.model.ctrl.State().SelectedFile)
	assert.Contains(t, env.model.View(), "Error:")
}

// =============================================================================
// NOTIFICATION TESTS
// =============================================================================

func TestUpdate_FailureShowsBlockingNotification(t *testing.T) {
	env := NewTestModel(t, withFailure(errBoom))
	env.ready(t)
	env.key(tea.KeyCtrlS)
	env.update(env.model.submitCmd()())

	assert.False(t, env.model.pending)
	assert.Empty(t, env.model.answer)

	// The controller notified through the channel the form listens on.
	n := <-env.notifier.C
	cmd := env.update(notificationMsg(n))
	assert.NotNil(t, cmd, "listening resumes after a notification")

	view := env.model.View()
	assert.Contains(t, view, submission.FailureMessage)
	assert.Contains(t, view, "boom")

	// Input is swallowed while the modal is up; the first key dismisses it.
	focus := env.model.focus
	env.key(tea.KeyTab)
	assert.Nil(t, env.model.notice)
	assert.Equal(t, focus, env.model.focus)
	assert.NotContains(t, env.model.View(), submission.FailureMessage)
}

func TestUpdate_WaitForNotification(t *testing.T) {
	env := NewTestModel(t)
	env.notifier.Notify(submission.Notification{Message: submission.FailureMessage})

	msg := env.model.waitForNotification()()
	n, ok := msg.(notificationMsg)
	require.True(t, ok)
	assert.Equal(t, submission.FailureMessage, n.Message)
}

// =============================================================================
// HOVER SPEECH TESTS
// =============================================================================

func TestUpdate_HoverSpeaksAnswer(t *testing.T) {
	env := NewTestModel(t)
	env.answer(t)

	b := env.model.hover.Bounds()
	require.False(t, b.Empty(), "answer pane must be hoverable")

	env.update(tea.MouseMsg{X: b.X + 1, Y: b.Y, Action: tea.MouseActionMotion})
	select {
	case said := <-env.synth.said:
		assert.Equal(t, "A cat.", said)
	case <-time.After(2 * time.Second):
		t.Fatal("hovering the answer did not speak")
	}
	assert.True(t, env.speaker.Speaking())

	// Moving within the pane does not restart speech.
	env.update(tea.MouseMsg{X: b.X + 2, Y: b.Y, Action: tea.MouseActionMotion})
	assert.Empty(t, env.synth.said)

	env.update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	assert.False(t, env.speaker.Speaking())
}

func TestUpdate_NoHoverWithoutAnswer(t *testing.T) {
	env := NewTestModel(t)
	assert.True(t, env.model.hover.Bounds().Empty())

	env.update(tea.MouseMsg{X: 5, Y: 20, Action: tea.MouseActionMotion})
	assert.False(t, env.speaker.Speaking())
}

// =============================================================================
// CONFIG RELOAD TESTS
// =============================================================================

func TestUpdate_ConfigChanged(t *testing.T) {
	env := NewTestModel(t)

	cfg := config.DefaultConfig()
	cfg.Client.Endpoint = "http://gpu-box:9000/vqa"
	cfg.UI.Theme = "dark"
	env.update(ConfigChangedMsg{Config: cfg})

	assert.Equal(t, "http://gpu-box:9000/vqa", env.model.client.Endpoint())
	assert.True(t, env.model.styles.Theme.IsDark)
	assert.True(t, strings.Contains(env.model.View(), "gpu-box"))

	bad := config.DefaultConfig()
	bad.Client.Endpoint = "not a url"
	env.update(ConfigChangedMsg{Config: bad})
	assert.Equal(t, "http://gpu-box:9000/vqa", env.model.client.Endpoint())
}

func TestUpdate_Quit(t *testing.T) {
	env := NewTestModel(t)
	cmd := env.key(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
