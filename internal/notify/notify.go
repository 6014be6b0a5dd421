package notify

import "log"

// Level is the severity of a user-facing notification
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier delivers human-readable notifications to the acting user.
// Validation failures always surface here; per-target failures never do.
type Notifier interface {
	Notify(level Level, message string)
}

// logNotifier writes notifications to the process log, used when no chat
// surface is wired up
type logNotifier struct{}

// NewLogNotifier creates a Notifier that writes to the standard logger
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

func (n *logNotifier) Notify(level Level, message string) {
	log.Printf("[%s] %s", level, message)
}
