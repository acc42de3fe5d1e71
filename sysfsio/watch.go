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

package sysfsio

import (
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/Rongronggg9/power-profiles-daemon/logger"
)

// Watcher yields a Changed event whenever the watched file's contents may
// have changed. Self-initiated writes are bracketed with Suppress/Resume
// so they never synthesize a spurious external-change event (spec.md §5).
type Watcher struct {
	Changed <-chan struct{}

	watcher   *fsnotify.Watcher
	changed   chan struct{}
	suppress  atomic.Int32
	closeOnce chan struct{}
	done      chan struct{}
}

// WatchAttr starts watching path (through Root) for content changes.
func WatchAttr(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	full := Root(path)
	if err := fw.Add(full); err != nil {
		fw.Close()
		return nil, &IoError{Path: path, Err: err}
	}

	w := &Watcher{
		watcher:   fw,
		changed:   make(chan struct{}, 1),
		closeOnce: make(chan struct{}),
		done:      make(chan struct{}),
	}
	w.Changed = w.changed

	go w.run(path)
	return w, nil
}

func (w *Watcher) run(path string) {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod) == 0 {
				continue
			}
			if w.suppress.Load() > 0 {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
				// a change is already pending; coalesce
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Debugf("sysfsio: watch error on %s: %v", path, err)
		case <-w.closeOnce:
			return
		}
	}
}

// Suppress drops events until the matching Resume. Call it immediately
// before a self-initiated write to path and Resume immediately after, so
// the write never reaches the manager as an external change.
func (w *Watcher) Suppress() {
	w.suppress.Add(1)
}

// Resume undoes a Suppress.
func (w *Watcher) Resume() {
	w.suppress.Add(-1)
}

// Close stops the watcher and releases its inotify fd. Teardown must call
// this before releasing the owning driver so a Changed event can never
// arrive for a driver that no longer exists.
func (w *Watcher) Close() error {
	close(w.closeOnce)
	err := w.watcher.Close()
	<-w.done
	close(w.changed)
	return err
}
