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
	"github.com/Rongronggg9/power-profiles-daemon/config"
	"github.com/Rongronggg9/power-profiles-daemon/driver"
	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

// activateTargetProfile realizes target on the CPU driver, then the
// platform driver, per spec.md §4.10: CPU first since it's the one most
// likely to fail cleanly, platform second with a rollback of the CPU
// driver back to the previous active profile if the platform write fails.
// Actions are applied best-effort after both drivers succeed; their
// failures are logged and never propagate. On success, active is updated,
// and the transition is persisted if reason.Persists().
func (m *Manager) activateTargetProfile(target profile.Profile, reason profile.Reason) error {
	if !profile.HasSingleFlag(target) {
		return invalidArgs("activate: not a real profile: %v", target)
	}

	previous := m.active

	if m.cpu.selected != nil && m.cpu.selected.d.SupportedProfiles().Has(target) {
		if err := m.cpu.selected.d.Activate(target, reason); err != nil {
			return driverFailure("cpu driver "+m.cpu.selected.d.Name()+" refused "+target.String(), err)
		}
	}

	if m.platform.selected != nil && m.platform.selected.d.SupportedProfiles().Has(target) {
		if err := m.platform.selected.d.Activate(target, reason); err != nil {
			m.rollbackCPU(previous, reason)
			return driverFailure("platform driver "+m.platform.selected.d.Name()+" refused "+target.String(), err)
		}
	}

	for _, a := range m.actions {
		if err := a.Apply(target); err != nil {
			logger.Noticef("manager: action %s failed to apply for %s: %v", a.Name(), target, err)
		}
	}

	m.active = target
	if reason.Persists() {
		m.persist()
	}
	return nil
}

// rollbackCPU restores the CPU driver to previous after the platform driver
// refused a transition, so the two drivers never end up disagreeing about
// which profile is active.
func (m *Manager) rollbackCPU(previous profile.Profile, reason profile.Reason) {
	if m.cpu.selected == nil {
		return
	}
	if err := m.cpu.selected.d.Activate(previous, reason); err != nil {
		logger.Noticef("manager: rollback of cpu driver %s to %s failed: %v", m.cpu.selected.d.Name(), previous, err)
	}
}

// persist writes the selected driver names and active profile to the
// configuration store. Failure is a PersistenceWarning (spec.md §7): it is
// logged, never returned to a caller.
func (m *Manager) persist() {
	cpuName, platformName := m.selectedDriverNames()
	st := config.State{CPUDriver: cpuName, PlatformDriver: platformName, Profile: m.active}
	if err := config.Save(m.configPath, st); err != nil {
		logger.Noticef("manager: failed to persist state: %v", err)
	}
}

// handleDriverEvent processes one fanned-in driver.Event on the run loop.
func (m *Manager) handleDriverEvent(de driverEvent) {
	switch de.ev.Kind {
	case driver.ProfileChanged:
		m.handleExternalProfileChange(de.ev.Profile)
	case driver.ProbeRequest:
		// A deferred driver now believes its capability may be available,
		// or the selected one lost it: this is restart_profile_drivers
		// (spec.md §4.10), not a narrower single-kind re-probe, so every
		// hold is cleared and both kinds are rediscovered from scratch.
		if err := m.restartLocked(); err != nil {
			logger.Noticef("manager: restart after %s probe request failed: %v", de.kind, err)
		}
	case driver.DegradedChanged:
		// Forward degraded reasons only from a driver that advertises
		// performance at all; a driver restricted to balanced/power-saver
		// has nothing meaningful to say about PerformanceDegraded.
		if de.handle.d.SupportedProfiles().Has(profile.Performance) {
			m.publish()
		}
	}
}

// handleExternalProfileChange implements spec.md §4.10's handling of a
// firmware/kernel-initiated profile change observed on a driver's own file
// watcher: coalesce to the latest value (there is nothing queued here to
// coalesce against, since the run loop processes one event at a time), no-
// op if it matches the already-active profile, and persist as internal
// rather than user-originated.
func (m *Manager) handleExternalProfileChange(p profile.Profile) {
	if !profile.HasSingleFlag(p) || p == m.active {
		return
	}
	logger.Debugf("manager: external profile change to %s", p)
	if err := m.activateTargetProfile(p, profile.ReasonInternal); err != nil {
		logger.Noticef("manager: failed to follow external profile change to %s: %v", p, err)
		return
	}
	m.selected = p
	m.publish()
}
