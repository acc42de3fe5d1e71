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

// Package holds implements the hold table (spec.md §4.9): a client's
// temporary pin on a profile, keyed by an opaque cookie that doubles as
// the identifier of a bus-name watch so a vanished requester's holds are
// released automatically.
package holds

import (
	"sync"

	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

// Cookie identifies one live hold.
type Cookie uint32

// Hold is one client's pinned profile request.
type Hold struct {
	Cookie            Cookie
	Profile           profile.Profile
	Reason            string
	ApplicationID     string
	RequesterBusName  string
	// OriginInterface is which of the two published interfaces (current
	// or legacy) the cookie was obtained on; ProfileReleased is emitted
	// back on that same interface (spec.md §4.11, §6).
	OriginInterface string
}

// Table is the live set of holds, keyed by cookie.
type Table struct {
	mu     sync.Mutex
	holds  map[Cookie]Hold
	nextID uint32
}

func NewTable() *Table {
	return &Table{holds: map[Cookie]Hold{}}
}

// Add inserts h under a freshly allocated, currently-unused cookie and
// returns it.
func (t *Table) Add(h Hold) Cookie {
	t.mu.Lock()
	defer t.mu.Unlock()
	for {
		t.nextID++
		c := Cookie(t.nextID)
		if c == 0 {
			continue // 0 is never issued, keeps the zero value "no cookie"
		}
		if _, exists := t.holds[c]; exists {
			continue
		}
		h.Cookie = c
		t.holds[c] = h
		return c
	}
}

// Get returns the hold for cookie, if live.
func (t *Table) Get(cookie Cookie) (Hold, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holds[cookie]
	return h, ok
}

// Remove deletes cookie's hold, if any, and reports whether it existed.
func (t *Table) Remove(cookie Cookie) (Hold, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h, ok := t.holds[cookie]
	if ok {
		delete(t.holds, cookie)
	}
	return h, ok
}

// RemoveByBusName removes and returns every hold whose RequesterBusName
// matches busName, for when that bus name vanishes from the bus.
func (t *Table) RemoveByBusName(busName string) []Hold {
	t.mu.Lock()
	defer t.mu.Unlock()
	var removed []Hold
	for c, h := range t.holds {
		if h.RequesterBusName == busName {
			removed = append(removed, h)
			delete(t.holds, c)
		}
	}
	return removed
}

// Clear empties the table and returns everything that was in it, for the
// "user request wins over every outstanding hold" rule (spec.md §4.9).
func (t *Table) Clear() []Hold {
	t.mu.Lock()
	defer t.mu.Unlock()
	var all []Hold
	for _, h := range t.holds {
		all = append(all, h)
	}
	t.holds = map[Cookie]Hold{}
	return all
}

// All returns every live hold, order unspecified.
func (t *Table) All() []Hold {
	t.mu.Lock()
	defer t.mu.Unlock()
	var all []Hold
	for _, h := range t.holds {
		all = append(all, h)
	}
	return all
}

// Len reports how many holds are live.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.holds)
}

// EffectiveProfile computes effective_hold_profile (spec.md §4.10): if any
// hold asks for power-saver, that wins; otherwise it's the profile of any
// hold (necessarily performance, since balanced can never be held). ok is
// false when there are no holds at all.
func EffectiveProfile(holds []Hold) (p profile.Profile, ok bool) {
	if len(holds) == 0 {
		return profile.Unset, false
	}
	for _, h := range holds {
		if h.Profile == profile.PowerSaver {
			return profile.PowerSaver, true
		}
	}
	return holds[0].Profile, true
}
