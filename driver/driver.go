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

// Package driver defines the Driver capability (spec.md §4.4): the
// polymorphic object that realizes a profile by writing kernel/firmware
// controls, plus the two concrete kinds (CPU, platform) the manager
// arbitrates between.
package driver

import "github.com/Rongronggg9/power-profiles-daemon/profile"

// Kind is which slot a driver competes for. At most one driver of each
// kind is selected at a time.
type Kind int

const (
	CPU Kind = iota
	Platform
)

func (k Kind) String() string {
	if k == CPU {
		return "cpu"
	}
	return "platform"
}

// ProbeResult is the outcome of Driver.Probe.
type ProbeResult int

const (
	// ProbeFail means the driver is not installable and must be released.
	ProbeFail ProbeResult = iota
	// ProbeSuccess means the driver is installable now.
	ProbeSuccess
	// ProbeDefer means the driver may become installable later; it is
	// kept alive and subscribed for a later probe-request event.
	ProbeDefer
)

// EventKind distinguishes the two signals a Driver can raise.
type EventKind int

const (
	// ProfileChanged is an external (firmware/kernel) profile change.
	ProfileChanged EventKind = iota
	// ProbeRequest asks the manager to re-run discovery because kernel
	// capability that was missing has now appeared.
	ProbeRequest
	// DegradedChanged notifies that PerformanceDegraded's value changed.
	DegradedChanged
)

// Event is one item off a Driver's event channel.
type Event struct {
	Kind    EventKind
	Profile profile.Profile // meaningful only for ProfileChanged
}

// Driver is the capability every concrete power-profile driver implements.
// Probe, Activate and Release are called only from the manager's single
// event loop; Events is read from that same loop.
type Driver interface {
	// Name is a short, stable, collision-free identifier (e.g.
	// "intel_pstate", "platform_profile", "placeholder").
	Name() string
	// DriverKind is which slot this driver competes for.
	DriverKind() Kind
	// SupportedProfiles is the non-empty subset of profile.All this
	// driver can realize; it must intersect profile.All.
	SupportedProfiles() profile.Mask

	// Probe is idempotent and must not block more than briefly.
	Probe() ProbeResult

	// Activate writes whatever kernel/firmware controls realize target.
	// reason is informational: drivers may use it to suppress no-op
	// writes or escalate side effects on user-originated transitions.
	Activate(target profile.Profile, reason profile.Reason) error

	// PerformanceDegraded is empty, or a short token explaining why the
	// advertised performance profile is running less well than nominal.
	PerformanceDegraded() string

	// Events delivers ProfileChanged and ProbeRequest (and optionally
	// DegradedChanged) notifications to the manager's event loop.
	Events() <-chan Event

	// Release tears down file watchers and any other resources. It must
	// synchronously stop delivering on Events before returning, so a
	// Changed event can never arrive after the driver is gone.
	Release()
}

// ValidateSupportedProfiles checks the invariant every driver's
// SupportedProfiles must satisfy at discovery time (spec.md §4.10 step 3).
func ValidateSupportedProfiles(m profile.Mask) bool {
	return m&profile.All != 0
}
