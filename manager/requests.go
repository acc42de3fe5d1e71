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

package manager

import (
	"github.com/Rongronggg9/power-profiles-daemon/driver"
	"github.com/Rongronggg9/power-profiles-daemon/holds"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

// SetActiveProfile implements the writable ActiveProfile property (spec.md
// §4.10, §6): parse and validate target, no-op if it already matches the
// active profile, otherwise clear every outstanding hold (a user request
// always wins over a program's pin), activate target and remember it as
// selected. reason is passed through to activateTargetProfile; the bus
// surface's ActiveProfile setter passes ReasonUser.
func (m *Manager) SetActiveProfile(name string, reason profile.Reason) error {
	target := profile.Parse(name)
	if !profile.HasSingleFlag(target) {
		return invalidArgs("unknown profile %q", name)
	}

	var outErr error
	m.do(func() {
		if !m.profileAvailable(target) {
			outErr = invalidArgs("profile %q is not available on this system", name)
			return
		}
		// Compare against active, not selected: while a hold is live the
		// two diverge (active tracks effective_hold_profile), and a user
		// request asking for what's already selected (but not active) must
		// still clear outstanding holds rather than silently no-op.
		if target == m.active {
			return
		}
		for _, h := range m.holds.Clear() {
			m.emitReleased(h.Cookie, h.OriginInterface)
		}
		if err := m.activateTargetProfile(target, reason); err != nil {
			outErr = err
			return
		}
		m.selected = target
		m.publish()
	})
	return outErr
}

// profileAvailable reports whether target is realizable by the currently
// selected drivers. Must run on the loop.
func (m *Manager) profileAvailable(p profile.Profile) bool {
	if p == profile.Balanced {
		return true
	}
	if m.cpu.selected != nil && m.cpu.selected.d.SupportedProfiles().Has(p) {
		return true
	}
	if m.platform.selected != nil && m.platform.selected.d.SupportedProfiles().Has(p) {
		return true
	}
	return false
}

// HoldProfile implements the HoldProfile method (spec.md §4.9, §6):
// balanced can never be held, the target must be currently available, and a
// hold takes effect immediately by recomputing EffectiveProfile over the
// (possibly now larger) hold set and activating it if it differs from the
// current active profile.
func (m *Manager) HoldProfile(requesterBusName string, target profile.Profile, reason, applicationID, iface string) (holds.Cookie, error) {
	if target == profile.Balanced || !profile.HasSingleFlag(target) {
		return 0, invalidArgs("cannot hold balanced, or an unknown profile")
	}

	var cookie holds.Cookie
	var outErr error
	m.do(func() {
		if !m.profileAvailable(target) {
			outErr = invalidArgs("profile %q is not available on this system", target)
			return
		}
		cookie = m.holds.Add(holds.Hold{
			Profile:          target,
			Reason:           reason,
			ApplicationID:    applicationID,
			RequesterBusName: requesterBusName,
			OriginInterface:  iface,
		})
		m.reconcileHolds()
		m.publish()
	})
	return cookie, outErr
}

// ReleaseProfile implements the ReleaseProfile method (spec.md §4.9, §6):
// releasing an unknown cookie is rejected with InvalidArgs.
func (m *Manager) ReleaseProfile(cookie holds.Cookie) error {
	var outErr error
	m.do(func() {
		if _, ok := m.holds.Remove(cookie); !ok {
			outErr = invalidArgs("unknown cookie %d", cookie)
			return
		}
		m.reconcileHolds()
		m.publish()
	})
	return outErr
}

// BusNameVanished releases every hold owned by busName, for when its owner
// disconnects from the bus without calling ReleaseProfile (spec.md §4.9).
// It is driven by busd's own NameOwnerChanged subscription.
func (m *Manager) BusNameVanished(busName string) {
	m.do(func() {
		removed := m.holds.RemoveByBusName(busName)
		if len(removed) == 0 {
			return
		}
		m.reconcileHolds()
		m.publish()
	})
}

// reconcileHolds recomputes EffectiveProfile over the live hold set and
// activates it if it differs from the current active profile; dropping to
// no holds at all reactivates the selected profile. Must run on the loop.
func (m *Manager) reconcileHolds() {
	target := m.selected
	if p, ok := holds.EffectiveProfile(m.holds.All()); ok {
		target = p
	}
	if target == m.active {
		return
	}
	if err := m.activateTargetProfile(target, profile.ReasonProgramHold); err != nil {
		return
	}
}

// Restart implements restart_profile_drivers (spec.md §4.10) for callers
// outside the run loop. See restartLocked for the body; handleDriverEvent
// calls that directly since it already runs on the loop.
func (m *Manager) Restart() error {
	var outErr error
	m.do(func() { outErr = m.restartLocked() })
	return outErr
}

// restartLocked releases every hold (raising a ProfileReleased for each),
// releases and rediscovers every driver and action from scratch, and
// reactivates the already-selected profile with ReasonReset against
// whichever drivers rediscovery just found. Must run on the loop.
func (m *Manager) restartLocked() error {
	for _, h := range m.holds.Clear() {
		m.emitReleased(h.Cookie, h.OriginInterface)
	}
	for _, h := range m.cpu.all() {
		h.release()
	}
	for _, h := range m.platform.all() {
		h.release()
	}
	m.cpu, m.platform = kindState{}, kindState{}
	m.actions = nil

	m.discoverKind(driver.CPU)
	m.discoverKind(driver.Platform)
	if m.platform.selected == nil {
		return fatal("no platform driver installed after restart, not even the placeholder", nil)
	}
	for _, thunk := range m.actionThunks {
		a := thunk()
		if m.blockedActions[a.Name()] {
			continue
		}
		if a.Probe() {
			m.actions = append(m.actions, a)
		}
	}

	if err := m.activateTargetProfile(m.selected, profile.ReasonReset); err != nil {
		return err
	}
	m.publish()
	return nil
}
