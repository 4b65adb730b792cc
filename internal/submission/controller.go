// Package submission owns the form state of a visual question and the single
// operation that changes it remotely: posting the selected file and question
// to the inference endpoint and storing the answer.
package submission

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Controller holds the SubmissionState and performs submissions. All methods
// are safe for concurrent use. At most one submission is in flight at a time.
type Controller struct {
	mu    sync.Mutex
	state State

	// pub serializes observer delivery so snapshots arrive in mutation order.
	pub       sync.Mutex
	observers map[int]func(State)
	nextObs   int

	submitter Submitter
	notifier  Notifier
	logger    *zap.Logger
	timeout   time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets where failure notifications go.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithTimeout bounds each submission. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// NewController creates a controller in the Idle phase with empty state.
func NewController(s Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: s,
		observers: make(map[int]func(State)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(Notification) {})
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive a snapshot after every mutation and
// returns a function that removes it. Observers may read State but must not
// mutate the controller from inside the callback. The CLI uses it to trace
// phase changes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.pub.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.pub.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.pub.Lock()
			delete(c.observers, id)
			c.pub.Unlock()
		})
	}
}

// SelectFile replaces the selected file and clears any answer.
func (c *Controller) SelectFile(f *File) {
	c.mu.Lock()
	c.state.SelectedFile = f
	c.state.Answer = ""
	c.state.LastError = nil
	if !c.state.IsSubmitting {
		c.state.Phase = PhaseIdle
	}
	c.publishAndUnlock()

	if f != nil {
		c.logger.Debug("file selected", zap.String("file", f.Name), zap.String("content_type", f.ContentType))
	}
}

// SetQuestion replaces the question text.
func (c *Controller) SetQuestion(q string) {
	c.mu.Lock()
	if c.state.Question == q {
		c.mu.Unlock()
		return
	}
	c.state.Question = q
	c.publishAndUnlock()
}

// Submit posts the selected file and question. It returns ErrNoFile or
// ErrEmptyQuestion when a required field is missing and ErrInFlight when a
// submission is already running; in those cases nothing changes. Otherwise
// IsSubmitting is true for the duration of the request, the answer is
// replaced on success, and on failure a notification fires and the answer
// is left as it was.
func (c *Controller) Submit(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state.IsSubmitting {
		c.mu.Unlock()
		return "", ErrInFlight
	}
	file, question := c.state.SelectedFile, c.state.Question
	if file == nil {
		c.mu.Unlock()
		return "", ErrNoFile
	}
	if trimmed(question) == "" {
		c.mu.Unlock()
		return "", ErrEmptyQuestion
	}
	c.state.IsSubmitting = true
	c.state.Phase = PhaseSubmitting
	c.state.LastError = nil
	c.publishAndUnlock()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := c.submitter.Submit(ctx, file, question)

	c.mu.Lock()
	c.state.IsSubmitting = false
	if err != nil {
		c.state.Phase = PhaseErrored
		c.state.LastError = err
	} else {
		c.state.Answer = answer
		c.state.Phase = PhaseAnswered
	}
	c.publishAndUnlock()

	if err != nil {
		c.logger.Error("submission failed",
			zap.String("file", file.Name),
			zap.String("kind", kindOf(err)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		c.notifier.Notify(Notification{Message: FailureMessage, Err: err})
		return "", err
	}

	c.logger.Info("submission answered",
		zap.String("file", file.Name),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("answer_len", len(answer)),
	)
	return answer, nil
}

// publishAndUnlock must be called with c.mu held. It hands the snapshot to
// observers after releasing c.mu.
func (c *Controller) publishAndUnlock() {
	snap := c.state
	c.pub.Lock()
	c.mu.Unlock()
	defer c.pub.Unlock()
	for _, fn := range c.observers {
		fn(snap)
	}
}

func kindOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind.String()
	}
	return "unknown"
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
