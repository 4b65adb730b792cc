package submission

import (
	"fmt"
	"io"
)

// FailureMessage is the user-facing text shown for any failed submission.
const FailureMessage = "There was an error processing your request."

// Notification is fired once per failed submission.
type Notification struct {
	Message string
	Err     error
}

func (n Notification) String() string {
	if n.Err == nil {
		return n.Message
	}
	return fmt.Sprintf("%s\n%v", n.Message, n.Err)
}

// Notifier surfaces failures to the user. Implementations must not block
// for long; the TUI forwards into its event loop.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// ChanNotifier delivers notifications on a buffered channel. When the buffer
// is full the oldest undelivered notification is kept and the new one dropped.
type ChanNotifier struct {
	C chan Notification
}

// NewChanNotifier creates a notifier with the given buffer size.
func NewChanNotifier(size int) *ChanNotifier {
	if size < 1 {
		size = 1
	}
	return &ChanNotifier{C: make(chan Notification, size)}
}

func (c *ChanNotifier) Notify(n Notification) {
	select {
	case c.C <- n:
	default:
	}
}

// WriterNotifier prints notifications, used by the non-interactive ask command.
type WriterNotifier struct {
	W io.Writer
}

func (w WriterNotifier) Notify(n Notification) {
	fmt.Fprintln(w.W, n.String())
}
