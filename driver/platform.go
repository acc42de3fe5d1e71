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

import (
	"strings"

	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
	"github.com/Rongronggg9/power-profiles-daemon/sysfsio"
)

const platformProfilePath = "/sys/firmware/acpi/platform_profile"
const platformProfileChoicesPath = "/sys/firmware/acpi/platform_profile_choices"

// lapProximityPath is a Lenovo-specific attribute: "on" while the machine
// detects it is resting on the user's lap.
const lapProximityPath = "/sys/bus/platform/devices/PNP0C09:00/dytc_lapmode"

const degradedLapDetected = "lap-detected"

// platformTokenCandidates maps a profile to the choice published in
// platform_profile_choices it corresponds to. The three acceptable
// choice sets a real machine might publish for "power-saver" are tried in
// order; ACPI calls it "quiet" or "cool" on some firmwares, "low-power" on
// others.
var platformTokenCandidates = map[profile.Profile][]string{
	profile.PowerSaver:  {"low-power", "cool", "quiet"},
	profile.Balanced:    {"balanced"},
	profile.Performance: {"performance"},
}

// PlatformProfileDriver drives the ACPI platform_profile sysfs file.
type PlatformProfileDriver struct {
	supported profile.Mask
	tokens    map[profile.Profile]string
	hasLap    bool
	degraded  string
	watcher   *sysfsio.Watcher
	lapWatch  *sysfsio.Watcher
	events    chan Event
}

func NewPlatformProfileDriver() *PlatformProfileDriver {
	return &PlatformProfileDriver{events: make(chan Event, 8)}
}

func (d *PlatformProfileDriver) Name() string                   { return "platform_profile" }
func (d *PlatformProfileDriver) DriverKind() Kind                { return Platform }
func (d *PlatformProfileDriver) SupportedProfiles() profile.Mask { return d.supported }
func (d *PlatformProfileDriver) PerformanceDegraded() string     { return d.degraded }
func (d *PlatformProfileDriver) Events() <-chan Event            { return d.events }

// Probe reads platform_profile_choices; if any of the three required
// profiles has no published choice, it defers rather than failing outright
// (the kernel may publish the capability later, e.g. after a firmware
// update is applied).
func (d *PlatformProfileDriver) Probe() ProbeResult {
	raw, err := sysfsio.ReadAttr(platformProfileChoicesPath)
	if err != nil {
		return ProbeFail
	}
	choices := map[string]bool{}
	for _, c := range strings.Fields(raw) {
		choices[c] = true
	}

	tokens := map[profile.Profile]string{}
	for p, candidates := range platformTokenCandidates {
		matched := ""
		for _, c := range candidates {
			if choices[c] {
				matched = c
				break
			}
		}
		if matched == "" {
			return ProbeDefer
		}
		tokens[p] = matched
	}

	d.tokens = tokens
	d.supported = profile.All

	w, err := sysfsio.WatchAttr(platformProfilePath)
	if err == nil {
		d.watcher = w
		go d.watchLoop()
	}
	if _, err := sysfsio.ReadAttr(lapProximityPath); err == nil {
		d.hasLap = true
		if lw, err := sysfsio.WatchAttr(lapProximityPath); err == nil {
			d.lapWatch = lw
			go d.watchLapLoop()
		}
	}
	return ProbeSuccess
}

func (d *PlatformProfileDriver) watchLoop() {
	for range d.watcher.Changed {
		raw, err := sysfsio.ReadAttr(platformProfilePath)
		if err != nil {
			continue
		}
		for p, token := range d.tokens {
			if token == raw {
				select {
				case d.events <- Event{Kind: ProfileChanged, Profile: p}:
				default:
					logger.Debugf("platform_profile: dropping coalesced external change event")
				}
				break
			}
		}
	}
}

func (d *PlatformProfileDriver) watchLapLoop() {
	for range d.lapWatch.Changed {
		raw, err := sysfsio.ReadAttr(lapProximityPath)
		if err != nil {
			continue
		}
		degraded := ""
		if raw == "on" {
			degraded = degradedLapDetected
		}
		if degraded != d.degraded {
			d.degraded = degraded
			select {
			case d.events <- Event{Kind: DegradedChanged}:
			default:
			}
		}
	}
}

func (d *PlatformProfileDriver) Activate(target profile.Profile, reason profile.Reason) error {
	token, ok := d.tokens[target]
	if !ok {
		return &UnsupportedProfileError{Driver: d.Name(), Profile: target}
	}
	if d.watcher != nil {
		d.watcher.Suppress()
		defer d.watcher.Resume()
	}
	return sysfsio.WriteAttr(platformProfilePath, token)
}

func (d *PlatformProfileDriver) Release() {
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.lapWatch != nil {
		d.lapWatch.Close()
	}
}

// UnsupportedProfileError is returned by Activate when a driver is asked
// to realize a profile outside SupportedProfiles.
type UnsupportedProfileError struct {
	Driver  string
	Profile profile.Profile
}

func (e *UnsupportedProfileError) Error() string {
	return e.Driver + ": does not support profile " + e.Profile.String()
}
