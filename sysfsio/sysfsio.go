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

// Package sysfsio provides the three sysfs/procfs I/O primitives drivers
// and actions are built on: WriteAttr, ReadAttr and WatchAttr. Every path
// passed in is relative to the kernel root; Root() prepends the
// UMOCKDEV_DIR override so the same driver code runs unmodified against a
// mock fixture tree in tests.
package sysfsio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrNotFound is returned by ReadAttr when the file is absent, distinct
// from a general I/O failure per spec.md §4.1.
var ErrNotFound = errors.New("sysfsio: attribute not found")

// IoError wraps a non-NotFound failure with the path that caused it.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return "sysfsio: " + e.Path + ": " + e.Err.Error()
}

func (e *IoError) Unwrap() error { return e.Err }

// Root returns path with the UMOCKDEV_DIR override, if set, prepended.
func Root(path string) string {
	if root := os.Getenv("UMOCKDEV_DIR"); root != "" {
		return filepath.Join(root, path)
	}
	return path
}

// ReadAttr reads path (through Root) and trims a single trailing newline.
func ReadAttr(path string) (string, error) {
	full := Root(path)
	b, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", &IoError{Path: path, Err: err}
	}
	return strings.TrimSuffix(string(b), "\n"), nil
}

// WriteAttr opens path (through Root) truncated, writes value and closes,
// flushing before returning so the write is observable immediately. Short
// writes and EINTR are retried; any other failure is an *IoError.
func WriteAttr(path, value string) error {
	full := Root(path)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &IoError{Path: path, Err: err}
	}
	defer f.Close()

	remaining := []byte(value)
	for len(remaining) > 0 {
		n, err := f.Write(remaining)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return &IoError{Path: path, Err: err}
		}
		remaining = remaining[n:]
	}
	if err := f.Sync(); err != nil && !errors.Is(err, unix.EINVAL) {
		// Some sysfs attribute files reject fsync outright (EINVAL);
		// that's not a write failure, only a no-op flush.
		return &IoError{Path: path, Err: err}
	}
	return nil
}
