// Package xlog is a tiny leveled logger modeled on the fs.Debugf/fs.Logf
// calling convention: every line names the object it concerns (a path, a
// transport, or nil) followed by a printf-style message.
package xlog

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Level controls which calls actually print.
type Level int32

const (
	// LevelError prints only Errorf calls.
	LevelError Level = iota
	// LevelNotice prints Errorf and Logf.
	LevelNotice
	// LevelInfo adds Infof.
	LevelInfo
	// LevelDebug adds Debugf.
	LevelDebug
)

var level atomic.Int32

func init() {
	level.Store(int32(LevelNotice))
}

// SetLevel changes the global verbosity.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// GetLevel returns the current global verbosity.
func GetLevel() Level {
	return Level(level.Load())
}

var std = log.New(os.Stderr, "", log.LstdFlags)

func emit(prefix string, o any, format string, args []any) {
	msg := fmt.Sprintf(format, args...)
	if o == nil {
		std.Printf("%s: %s", prefix, msg)
		return
	}
	std.Printf("%s: %v: %s", prefix, o, msg)
}

// Debugf logs at debug level about o (or nil for no specific subject).
func Debugf(o any, format string, args ...any) {
	if GetLevel() >= LevelDebug {
		emit("DEBUG", o, format, args)
	}
}

// Infof logs at info level about o.
func Infof(o any, format string, args ...any) {
	if GetLevel() >= LevelInfo {
		emit("INFO", o, format, args)
	}
}

// Logf logs at notice level about o. This is the default "something
// happened, you should know" level.
func Logf(o any, format string, args ...any) {
	if GetLevel() >= LevelNotice {
		emit("NOTICE", o, format, args)
	}
}

// Errorf logs at error level about o. Always printed.
func Errorf(o any, format string, args ...any) {
	emit("ERROR", o, format, args)
}
