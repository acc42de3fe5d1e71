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

// ProfileEntry describes one entry of the published Profiles property.
type ProfileEntry struct {
	Profile        profile.Profile
	CPUDriver      string
	PlatformDriver string
}

// HoldInfo is one entry of the published ActiveProfileHolds property.
type HoldInfo struct {
	Cookie        holds.Cookie
	Profile       profile.Profile
	Reason        string
	ApplicationID string
}

// Snapshot is the full set of bus-visible state, rebuilt and published
// atomically after every mutation (spec.md §6). busd reads it directly from
// its property getters and signal emitters; it never touches manager
// internals.
type Snapshot struct {
	ActiveProfile        profile.Profile
	SelectedProfile      profile.Profile
	Profiles             []ProfileEntry
	Actions              []string
	PerformanceDegraded  string
	PerformanceInhibited string
	Holds                []HoldInfo
	Version              string
}

// buildSnapshot derives a Snapshot from live manager state. Called with the
// run loop's exclusive access to that state.
func (m *Manager) buildSnapshot() Snapshot {
	s := Snapshot{
		ActiveProfile:       m.active,
		SelectedProfile:     m.selected,
		PerformanceDegraded: m.combinedDegraded(),
		Version:             Version,
	}

	entries := []ProfileEntry{}
	haveCPU := m.cpu.selected != nil
	havePlatform := m.platform.selected != nil
	for _, p := range []profile.Profile{profile.PowerSaver, profile.Balanced, profile.Performance} {
		ok := p == profile.Balanced // balanced is always offered, even with no drivers at all
		var cpuName, platName string
		if haveCPU && m.cpu.selected.d.SupportedProfiles().Has(p) {
			ok = true
			cpuName = m.cpu.selected.d.Name()
		}
		if havePlatform && m.platform.selected.d.SupportedProfiles().Has(p) {
			ok = true
			platName = m.platform.selected.d.Name()
		}
		if ok {
			entries = append(entries, ProfileEntry{Profile: p, CPUDriver: cpuName, PlatformDriver: platName})
		}
	}
	s.Profiles = entries

	for _, a := range m.actions {
		s.Actions = append(s.Actions, a.Name())
	}

	for _, h := range m.holds.All() {
		s.Holds = append(s.Holds, HoldInfo{
			Cookie:        h.Cookie,
			Profile:       h.Profile,
			Reason:        h.Reason,
			ApplicationID: h.ApplicationID,
		})
	}

	return s
}

// combinedDegraded joins the CPU and platform drivers' degraded reasons
// with a comma, per spec.md §4.10; empty if neither is degraded.
func (m *Manager) combinedDegraded() string {
	var reasons []string
	if m.cpu.selected != nil {
		if r := m.cpu.selected.d.PerformanceDegraded(); r != "" {
			reasons = append(reasons, r)
		}
	}
	if m.platform.selected != nil {
		if r := m.platform.selected.d.PerformanceDegraded(); r != "" {
			reasons = append(reasons, r)
		}
	}
	if len(reasons) == 0 {
		return ""
	}
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "," + r
	}
	return out
}

// selectedDriverNames reports the two driver names to persist, empty string
// for a slot with no selected driver.
func (m *Manager) selectedDriverNames() (cpuName, platformName string) {
	if m.cpu.selected != nil {
		cpuName = m.cpu.selected.d.Name()
	}
	if m.platform.selected != nil {
		platformName = m.platform.selected.d.Name()
	}
	return
}

// driverHandle pairs a live Driver with the stop channel for its dedicated
// event-forwarding goroutine (manager.go), so Release can be paired with a
// guaranteed end to forwarding regardless of whether the driver itself ever
// closes its Events channel.
type driverHandle struct {
	d    driver.Driver
	stop chan struct{}
}

// kindState is the manager's live view of one driver slot (cpu or platform):
// the winning driver, if any, plus every probed-but-deferred candidate kept
// alive for a future ProbeRequest retry.
type kindState struct {
	selected *driverHandle
	pending  []*driverHandle
}

func (ks *kindState) all() []*driverHandle {
	if ks.selected == nil {
		return ks.pending
	}
	out := make([]*driverHandle, 0, len(ks.pending)+1)
	out = append(out, ks.selected)
	out = append(out, ks.pending...)
	return out
}
