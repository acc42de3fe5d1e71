// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2024 Rongronggg9
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package logger implements the house logging conventions used across the
// daemon: a single process-wide Logger, set once at startup, reached
// through package-level Noticef/Debugf/Panicf helpers.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"golang.org/x/term"
)

// A Logger is a fairly minimal logging tool.
type Logger interface {
	// Notice is for messages that should always reach the console/journal.
	Notice(msg string)
	// Debug is for messages gated behind the verbose threshold.
	Debug(msg string)
}

const (
	// DefaultFlags are used when attached to a terminal.
	DefaultFlags = log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile
	// ServiceFlags are used when running detached under systemd, where the
	// journal already timestamps every line.
	ServiceFlags = log.Lshortfile
)

type nullLogger struct{}

func (nullLogger) Notice(string) {}
func (nullLogger) Debug(string)  {}

// NullLogger discards everything; it is the default until SimpleSetup runs.
var NullLogger = nullLogger{}

var (
	current Logger = NullLogger
	lock    sync.Mutex
)

// SetLogger replaces the process-wide logger.
func SetLogger(l Logger) {
	lock.Lock()
	defer lock.Unlock()
	current = l
}

// Noticef formats and logs a message the operator should always see.
func Noticef(format string, v ...interface{}) {
	lock.Lock()
	defer lock.Unlock()
	current.Notice(fmt.Sprintf(format, v...))
}

// Debugf formats and logs a message gated behind the verbose threshold.
func Debugf(format string, v ...interface{}) {
	lock.Lock()
	defer lock.Unlock()
	current.Debug(fmt.Sprintf(format, v...))
}

// Panicf notifies and then panics; reserved for invariant violations that
// should never be reachable from external stimulus.
func Panicf(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	lock.Lock()
	current.Notice("PANIC " + msg)
	lock.Unlock()
	panic(msg)
}

// colorEscapes returns the pair of ANSI codes used to dim the "DEBUG: "
// marker, or a pair of empty strings when color must be suppressed: NO_COLOR
// is set (http://no-color.org/), or w isn't a terminal at all.
func colorEscapes(w io.Writer) (start, end string) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return "", ""
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", ""
	}
	return "\033[2m", "\033[0m"
}

type consoleLogger struct {
	log        *log.Logger
	debug      bool
	debugStart string
	debugEnd   string
	mu         sync.Mutex
}

func (l *consoleLogger) Notice(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Output(3, msg)
}

func (l *consoleLogger) Debug(msg string) {
	if !l.debugEnabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log.Output(3, l.debugStart+"DEBUG: "+msg+l.debugEnd)
}

func (l *consoleLogger) debugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

// SetDebug raises or lowers the effective threshold at runtime.
func SetDebug(l Logger, debug bool) {
	if cl, ok := l.(*consoleLogger); ok {
		cl.mu.Lock()
		cl.debug = debug
		cl.mu.Unlock()
	}
}

// New builds a Logger writing to w with the given log flags.
func New(w io.Writer, flags int, debug bool) Logger {
	start, end := colorEscapes(w)
	return &consoleLogger{log: log.New(w, "", flags), debug: debug, debugStart: start, debugEnd: end}
}

// SimpleSetup installs the default console logger on stderr. debug raises
// the initial threshold (set by --verbose); G_MESSAGES_DEBUG, GLib's own
// debug-logging toggle, raises it too regardless of debug's value, so a
// systemd drop-in can enable verbose logging without touching the command
// line. Flags are demoted to ServiceFlags when TERM is unset (as it is
// under systemd), since the journal already timestamps every line.
func SimpleSetup(debug bool) {
	if v := os.Getenv("G_MESSAGES_DEBUG"); v != "" {
		debug = true
	}
	flags := ServiceFlags
	if termName := os.Getenv("TERM"); termName != "" {
		flags = DefaultFlags
	}
	SetLogger(New(os.Stderr, flags, debug))
}
