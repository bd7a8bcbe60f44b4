package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap/zapcore"
)

// timeLayout matches zapcore.ISO8601TimeEncoder.
const timeLayout = "2006-01-02T15:04:05.000Z0700"

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if count < maxLines {
		return ring[:count], nil
	}
	return append(ring[next:], ring[:next]...), nil
}

// Entry is one decoded JSON log line.
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Logger  string
	Message string
	Fields  map[string]any
}

// Parse decodes a line written by the JSON encoder. Lines that are not JSON
// objects with a message are rejected.
func Parse(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	msg, ok := raw["msg"].(string)
	if !ok {
		return Entry{}, false
	}
	e := Entry{Message: msg, Level: zapcore.InfoLevel}
	if ts, ok := raw["ts"].(string); ok {
		if t, err := time.Parse(timeLayout, ts); err == nil {
			e.Time = t
		}
	}
	if lvl, ok := raw["level"].(string); ok {
		_ = e.Level.UnmarshalText([]byte(lvl))
	}
	e.Logger, _ = raw["logger"].(string)

	for _, k := range []string{"ts", "level", "logger", "msg", "caller", "stacktrace"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		e.Fields = raw
	}
	return e, true
}

// Format renders e on one line. Fields are sorted by key.
func Format(e Entry) string {
	return render(e, plain)
}

// Colorize renders e like Format with the level and logger name styled.
func Colorize(e Entry) string {
	return render(e, styled)
}

type painter func(part string, text string, level zapcore.Level) string

func plain(_ string, text string, _ zapcore.Level) string { return text }

var (
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	loggerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6495ED"))
	fieldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	levelStyles = map[zapcore.Level]lipgloss.Style{
		zapcore.DebugLevel: lipgloss.NewStyle().Foreground(lipgloss.Color("#00CED1")).Bold(true),
		zapcore.InfoLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#32CD32")).Bold(true),
		zapcore.WarnLevel:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true),
	}
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4500")).Bold(true)
)

func styled(part string, text string, level zapcore.Level) string {
	switch part {
	case "time":
		return timeStyle.Render(text)
	case "logger":
		return loggerStyle.Render(text)
	case "fields":
		return fieldStyle.Render(text)
	case "level":
		if s, ok := levelStyles[level]; ok {
			return s.Render(text)
		}
		return errorStyle.Render(text)
	}
	return text
}

func render(e Entry, paint painter) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(paint("time", e.Time.Format("15:04:05"), e.Level))
		b.WriteByte(' ')
	}
	b.WriteString(paint("level", fmt.Sprintf("%-5s", e.Level.CapitalString()), e.Level))
	b.WriteByte(' ')
	if e.Logger != "" {
		b.WriteString(paint("logger", e.Logger+":", e.Level))
		b.WriteByte(' ')
	}
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, e.Fields[k])
		}
		b.WriteByte(' ')
		b.WriteString(paint("fields", strings.Join(parts, " "), e.Level))
	}
	return b.String()
}
