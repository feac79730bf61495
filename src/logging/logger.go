// Package logging is a small leveled logger shared by the server, the viewer and the CLI.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel accepts debug, info, warn (or warning) and error, in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	level  atomic.Int32
	output = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func init() { level.Store(int32(LevelInfo)) }

// SetLevel sets the global level by name. Unknown names leave it unchanged.
func SetLevel(s string) {
	if l, err := ParseLevel(s); err == nil {
		level.Store(int32(l))
	}
}

func GetLevel() Level { return Level(level.Load()) }

// SetOutput redirects log output.
func SetOutput(w io.Writer) { output.SetOutput(w) }

func logf(l Level, format string, args ...interface{}) {
	if l < GetLevel() {
		return
	}
	msg := format
	// a message without args may carry literal % signs
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	output.Printf("[%s] %s", l, msg)
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// TimeTrack logs at debug level how long label took since start.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
