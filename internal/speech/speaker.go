// Package speech reads text aloud through an external synthesizer. A single
// process-wide Speaker owns at most one utterance at a time; starting a new
// one cancels the previous.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"
)

// Synthesizer speaks text, blocking until it finishes or ctx is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// knownCommands are tried in order by DetectCommand.
var knownCommands = []string{"espeak-ng", "espeak", "spd-say", "say"}

// DetectCommand returns the first text-to-speech binary found on PATH.
func DetectCommand() (string, bool) {
	for _, name := range knownCommands {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// CommandSynthesizer runs Command with Args followed by the text.
type CommandSynthesizer struct {
	Command string
	Args    []string
}

func (c CommandSynthesizer) Speak(ctx context.Context, text string) error {
	if c.Command == "" {
		return errors.New("no speech command configured")
	}
	args := append(append([]string{}, c.Args...), text)
	cmd := exec.CommandContext(ctx, c.Command, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w", c.Command, err)
	}
	return nil
}

// Speaker serializes utterances.
type Speaker struct {
	// op serializes Speak, Cancel and SetSynthesizer.
	op sync.Mutex

	mu     sync.Mutex
	synth  Synthesizer
	cancel context.CancelFunc
	done   chan struct{}

	logger *zap.Logger
}

// NewSpeaker creates a speaker. A nil synthesizer makes Speak a no-op.
func NewSpeaker(synth Synthesizer, logger *zap.Logger) *Speaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speaker{synth: synth, logger: logger}
}

var (
	defaultOnce    sync.Once
	defaultSpeaker *Speaker
)

// Default returns the process-wide speaker. It has no synthesizer until
// SetDefaultSynthesizer is called.
func Default() *Speaker {
	defaultOnce.Do(func() {
		defaultSpeaker = NewSpeaker(nil, nil)
	})
	return defaultSpeaker
}

// SetDefaultSynthesizer configures the process-wide speaker.
func SetDefaultSynthesizer(synth Synthesizer) {
	Default().SetSynthesizer(synth)
}

// SetSynthesizer stops any current utterance and swaps the backend.
func (s *Speaker) SetSynthesizer(synth Synthesizer) {
	s.op.Lock()
	defer s.op.Unlock()
	s.stop()
	s.mu.Lock()
	s.synth = synth
	s.mu.Unlock()
}

// SetLogger replaces the logger.
func (s *Speaker) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// Speak cancels any current utterance and starts speaking text in the
// background. Empty text only cancels.
func (s *Speaker) Speak(text string) {
	s.op.Lock()
	defer s.op.Unlock()
	s.stop()

	s.mu.Lock()
	synth, logger := s.synth, s.logger
	if synth == nil || text == "" {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	logger.Debug("speech started", zap.Int("chars", len(text)))
	go func() {
		defer close(done)
		defer cancel()
		err := synth.Speak(ctx, text)
		switch {
		case errors.Is(err, context.Canceled):
			logger.Debug("speech cancelled")
		case err != nil:
			logger.Warn("speech failed", zap.Error(err))
		default:
			logger.Debug("speech finished")
		}
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
	}()
}

// Cancel stops the current utterance and waits for it to exit.
func (s *Speaker) Cancel() {
	s.op.Lock()
	defer s.op.Unlock()
	s.stop()
}

// Speaking reports whether an utterance is running.
func (s *Speaker) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Speaker) stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}
