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

// PlaceholderDriver advertises only balanced and power-saver, and exists
// solely to satisfy the invariant that those two profiles are always
// available (spec.md §4.4). The registry installs it only when no real
// platform driver probed successfully.
type PlaceholderDriver struct {
	events chan Event
}

func NewPlaceholderDriver() *PlaceholderDriver {
	return &PlaceholderDriver{events: make(chan Event)}
}

func (d *PlaceholderDriver) Name() string                   { return "placeholder" }
func (d *PlaceholderDriver) DriverKind() Kind                { return Platform }
func (d *PlaceholderDriver) SupportedProfiles() profile.Mask { return profile.MaskBalanced | profile.MaskPowerSaver }
func (d *PlaceholderDriver) PerformanceDegraded() string     { return "" }
func (d *PlaceholderDriver) Events() <-chan Event            { return d.events }
func (d *PlaceholderDriver) Probe() ProbeResult              { return ProbeSuccess }
func (d *PlaceholderDriver) Release()                        {}

func (d *PlaceholderDriver) Activate(target profile.Profile, reason profile.Reason) error {
	if !d.SupportedProfiles().Has(target) {
		return &UnsupportedProfileError{Driver: d.Name(), Profile: target}
	}
	return nil
}
