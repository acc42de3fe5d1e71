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

// Package registry holds the statically ordered list of constructor
// thunks for drivers and actions (spec.md §4.6). Order matters: the first
// constructor of a given kind that probes successfully wins, and the
// placeholder platform driver is ordered last so real drivers get first
// refusal.
package registry

import (
	"os"
	"strings"

	"github.com/Rongronggg9/power-profiles-daemon/action"
	"github.com/Rongronggg9/power-profiles-daemon/driver"
)

// DriverThunk constructs a driver candidate; it must be cheap (no I/O
// beyond what Probe itself will do).
type DriverThunk func() driver.Driver

// ActionThunk constructs an action candidate.
type ActionThunk func() action.Action

// DriverThunks is the default, recommended discovery order: hardware-
// specific CPU and platform drivers first, optional auxiliary drivers,
// and the placeholder platform driver last.
func DriverThunks() []DriverThunk {
	thunks := []DriverThunk{
		func() driver.Driver { return driver.NewCPUDriver("intel_pstate", "powersave") },
		func() driver.Driver { return driver.NewCPUDriver("amd_pstate", "powersave") },
		func() driver.Driver { return driver.NewEPBDriver() },
		func() driver.Driver { return driver.NewPlatformProfileDriver() },
	}
	if fakeDriverEnabled() {
		thunks = append(thunks,
			func() driver.Driver { return driver.NewFakeDriver(driver.CPU) },
			func() driver.Driver { return driver.NewFakeDriver(driver.Platform) },
		)
	}
	// The placeholder is always last: it installs iff no real platform
	// driver loaded, guaranteeing balanced/power-saver stay available.
	thunks = append(thunks, func() driver.Driver { return driver.NewPlaceholderDriver() })
	return thunks
}

// ActionThunks is the default action discovery order.
func ActionThunks() []ActionThunk {
	return []ActionThunk{
		func() action.Action { return action.NewTrickleCharge() },
		func() action.Action { return action.NewAmdgpuPanelPower() },
	}
}

func fakeDriverEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("POWER_PROFILE_DAEMON_FAKE_DRIVER")))
	return v == "1" || v == "true" || v == "yes"
}

// BlockedNames parses a comma-separated env var into a lookup set, used for
// POWER_PROFILE_DAEMON_DRIVER_BLOCK and ..._ACTION_BLOCK.
func BlockedNames(envVar string) map[string]bool {
	blocked := map[string]bool{}
	raw := os.Getenv(envVar)
	if raw == "" {
		return blocked
	}
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			blocked[name] = true
		}
	}
	return blocked
}
