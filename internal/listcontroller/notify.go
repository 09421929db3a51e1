package listcontroller

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is the severity of a user-facing notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// FetchErrorMessage is shown when a failed fetch carries no message.
const FetchErrorMessage = "ra.notification.http_error"

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(message string, level Level)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, level Level)

// Notify calls f.
func (f NotifierFunc) Notify(message string, level Level) { f(message, level) }

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs message at the zap level matching level.
func (n *LogNotifier) Notify(message string, level Level) {
	switch level {
	case LevelError:
		n.logger.Error(message, zap.String("level", string(level)))
	case LevelWarning:
		n.logger.Warn(message, zap.String("level", string(level)))
	default:
		n.logger.Info(message, zap.String("level", string(level)))
	}
}

// Notifiers fans a notification out to several notifiers.
type Notifiers []Notifier

// Notify forwards to every non-nil notifier in order.
func (ns Notifiers) Notify(message string, level Level) {
	for _, n := range ns {
		if n != nil {
			n.Notify(message, level)
		}
	}
}

// Notification is one entry of an Inbox.
type Notification struct {
	Message string    `json:"message"`
	Level   Level     `json:"level"`
	Time    time.Time `json:"time"`
}

// DefaultInboxSize is used when NewInbox gets a non-positive size.
const DefaultInboxSize = 100

// Inbox keeps the most recent notifications in a ring buffer.
type Inbox struct {
	mu   sync.Mutex
	buf  []Notification
	head int
	full bool
	now  func() time.Time
}

// NewInbox creates an Inbox that keeps the last size notifications.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{buf: make([]Notification, size), now: time.Now}
}

// SetClock overrides the time source used to stamp notifications.
func (b *Inbox) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Notify records a notification, evicting the oldest one when full.
func (b *Inbox) Notify(message string, level Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf[b.head] = Notification{Message: message, Level: level, Time: b.now().UTC()}
	b.head = (b.head + 1) % len(b.buf)
	if b.head == 0 {
		b.full = true
	}
}

// List returns the recorded notifications, oldest first.
func (b *Inbox) List() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		out := make([]Notification, b.head)
		copy(out, b.buf[:b.head])
		return out
	}
	out := make([]Notification, 0, len(b.buf))
	out = append(out, b.buf[b.head:]...)
	return append(out, b.buf[:b.head]...)
}
