package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one JSON line written by the logger.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     Level                  `json:"level"`
	UserID    string                 `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

var std *Logger

func New(out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{out: out, color: out == os.Stdout}
}

// Init installs the package-level logger writing to stdout.
func Init() {
	std = New(os.Stdout)
}

// SetOutput swaps the package-level logger's destination. Used by tests.
func SetOutput(out io.Writer) {
	std = New(out)
}

func (l *Logger) write(level Level, userID, action string, details map[string]interface{}, err error) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		UserID:    userID,
		Action:    action,
		Details:   details,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data = []byte(fmt.Sprintf(`{"level":"error","action":"log_marshal_failed","error":%q}`, marshalErr.Error()))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.color {
		fmt.Fprintf(l.out, "%s\n", data)
		return
	}
	color := "\033[36m"
	switch level {
	case LevelWarn:
		color = "\033[33m"
	case LevelError:
		color = "\033[31m"
	}
	fmt.Fprintf(l.out, "%s%s\033[0m\n", color, data)
}

func Info(action string, details map[string]interface{}) {
	if std != nil {
		std.write(LevelInfo, "", action, details, nil)
	}
}

func InfoWithUser(userID, action string, details map[string]interface{}) {
	if std != nil {
		std.write(LevelInfo, userID, action, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if std != nil {
		std.write(LevelWarn, "", action, details, nil)
	}
}

func WarnWithUser(userID, action string, details map[string]interface{}) {
	if std != nil {
		std.write(LevelWarn, userID, action, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if std != nil {
		std.write(LevelError, "", action, details, err)
	}
}

func ErrorWithUser(userID, action string, err error, details map[string]interface{}) {
	if std != nil {
		std.write(LevelError, userID, action, details, err)
	}
}

// UserIDFromLocals returns the id stored under the "userID" local, or "".
func UserIDFromLocals(c *fiber.Ctx) string {
	if id, ok := c.Locals("userID").(string); ok {
		return id
	}
	return ""
}

var sensitiveFields = map[string]struct{}{
	"password":    {},
	"token":       {},
	"inviteToken": {},
	"secret":      {},
}

func redact(m map[string]interface{}) {
	for k := range m {
		if _, ok := sensitiveFields[k]; ok {
			m[k] = "[REDACTED]"
		}
	}
}

// RequestBodySummary describes a request body for logging. JSON bodies are
// echoed with secrets redacted, everything else is reduced to its size.
func RequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return "empty"
	}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return fmt.Sprintf("multipart (%d bytes)", len(body))
	}
	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	redact(m)
	out, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("binary (%d bytes)", len(body))
	}
	if len(out) > 200 {
		return string(out[:200]) + "..."
	}
	return string(out)
}

func ResponseSizeSummary(c *fiber.Ctx) string {
	n := len(c.Response().Body())
	switch {
	case n == 0:
		return "empty"
	case n > 1024:
		return fmt.Sprintf("large (%d bytes)", n)
	default:
		return fmt.Sprintf("small (%d bytes)", n)
	}
}

func GenerateRequestID() string {
	return uuid.New().String()
}
