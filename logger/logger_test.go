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

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugfRespectsThreshold(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(New(&buf, 0, false))
	Debugf("should not appear")
	if buf.Len() != 0 {
		t.Fatalf("buf = %q, want empty with debug disabled", buf.String())
	}

	SetLogger(New(&buf, 0, true))
	Debugf("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("buf = %q, want it to contain the debug message", buf.String())
	}
}

func TestColorEscapesSuppressedOnNonTerminalWriter(t *testing.T) {
	var buf bytes.Buffer
	start, end := colorEscapes(&buf)
	if start != "" || end != "" {
		t.Fatalf("colorEscapes(bytes.Buffer) = %q, %q, want empty (not a terminal)", start, end)
	}
}

func TestColorEscapesSuppressedByNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	start, end := colorEscapes(nil)
	if start != "" || end != "" {
		t.Fatalf("colorEscapes with NO_COLOR set = %q, %q, want empty", start, end)
	}
}

func TestSimpleSetupHonorsGMessagesDebug(t *testing.T) {
	t.Setenv("G_MESSAGES_DEBUG", "all")
	SimpleSetup(false)
	cl, ok := current.(*consoleLogger)
	if !ok {
		t.Fatalf("current = %T, want *consoleLogger", current)
	}
	if !cl.debugEnabled() {
		t.Fatalf("debug disabled despite G_MESSAGES_DEBUG being set")
	}
}
