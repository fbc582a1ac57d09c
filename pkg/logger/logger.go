package logger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

const FieldError = "error"

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

var (
	mu       sync.RWMutex
	level    = INFO
	fileSink *os.File
)

type entry struct {
	Level     string                 `json:"level"`
	Timestamp string                 `json:"timestamp"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// EnableFileLogging appends JSON lines to path in addition to stderr output.
func EnableFileLogging(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if fileSink != nil {
		fileSink.Close()
	}
	fileSink = f
	return nil
}

func DisableFileLogging() {
	mu.Lock()
	defer mu.Unlock()
	if fileSink != nil {
		fileSink.Close()
		fileSink = nil
	}
}

func write(l Level, component, message string, fields map[string]interface{}) {
	mu.RLock()
	min := level
	sink := fileSink
	mu.RUnlock()

	if l < min {
		return
	}

	e := entry{
		Level:     levelNames[l],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Component: component,
		Message:   message,
		Fields:    fields,
	}

	if sink != nil {
		if data, err := json.Marshal(e); err == nil {
			sink.Write(append(data, '\n'))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s]", e.Timestamp, e.Level)
	if component != "" {
		fmt.Fprintf(&b, " %s:", component)
	}
	b.WriteByte(' ')
	b.WriteString(message)
	if len(fields) > 0 {
		b.WriteByte(' ')
		b.WriteString(formatFields(fields))
	}
	log.Println(b.String())
}

func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func DebugC(component, message string) { write(DEBUG, component, message, nil) }

func DebugCF(component, message string, fields map[string]interface{}) {
	write(DEBUG, component, message, fields)
}

func InfoC(component, message string) { write(INFO, component, message, nil) }

func InfoCF(component, message string, fields map[string]interface{}) {
	write(INFO, component, message, fields)
}

func WarnC(component, message string) { write(WARN, component, message, nil) }

func WarnCF(component, message string, fields map[string]interface{}) {
	write(WARN, component, message, fields)
}

func ErrorC(component, message string) { write(ERROR, component, message, nil) }

func ErrorCF(component, message string, fields map[string]interface{}) {
	write(ERROR, component, message, fields)
}
