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

package driver

import "github.com/Rongronggg9/power-profiles-daemon/profile"

// FakeDriver supports every profile and never touches the filesystem; it
// exists for manual testing and demos, gated behind
// POWER_PROFILE_DAEMON_FAKE_DRIVER (spec.md §6).
type FakeDriver struct {
	kind   Kind
	active profile.Profile
	events chan Event
}

func NewFakeDriver(kind Kind) *FakeDriver {
	return &FakeDriver{kind: kind, events: make(chan Event)}
}

func (d *FakeDriver) Name() string {
	if d.kind == CPU {
		return "fake_cpu"
	}
	return "fake_platform"
}

func (d *FakeDriver) DriverKind() Kind                { return d.kind }
func (d *FakeDriver) SupportedProfiles() profile.Mask { return profile.All }
func (d *FakeDriver) PerformanceDegraded() string     { return "" }
func (d *FakeDriver) Events() <-chan Event            { return d.events }
func (d *FakeDriver) Probe() ProbeResult              { return ProbeSuccess }
func (d *FakeDriver) Release()                        {}

func (d *FakeDriver) Activate(target profile.Profile, reason profile.Reason) error {
	d.active = target
	return nil
}
