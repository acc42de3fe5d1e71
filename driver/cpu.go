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
	"fmt"
	"strconv"
	"strings"

	"github.com/Rongronggg9/power-profiles-daemon/device"
	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
	"github.com/Rongronggg9/power-profiles-daemon/sysfsio"
)

// eppProfiles maps a profile to the energy_performance_preference token
// the intel_pstate/amd_pstate cpufreq scaling drivers expect.
var eppProfiles = map[profile.Profile]string{
	profile.PowerSaver:  "power",
	profile.Balanced:    "balanced_performance",
	profile.Performance: "performance",
}

// serverACPIProfiles are values of /sys/firmware/acpi/pm_profile (ACPI spec
// table 5.21) that mark a server-class chassis, on which the daemon must
// refuse to load a CPU EPP driver (spec.md §4.4).
var serverACPIProfiles = map[string]bool{
	"3": true, // Workstation... actually Enterprise Server
	"4": true, // SOHO Server
	"5": true, // Appliance PC
	"7": true, // Performance Server
}

// CPUDriver drives the per-policy energy_performance_preference attribute
// exposed by the intel_pstate and amd_pstate cpufreq scaling drivers.
type CPUDriver struct {
	name      string
	supported profile.Mask
	governor  string // scaling_governor value that lets EPP take effect
	policies  []device.Device
	watchers  []*sysfsio.Watcher
	degraded  string
	events    chan Event

	// activated is the profile last fully applied to every policy; used to
	// roll back a partial write on the next Activate's failure.
	activated profile.Profile
}

// NewCPUDriver constructs the driver named name (e.g. "intel_pstate" or
// "amd_pstate"), writing governor to scaling_governor before the EPP token
// on each policy's energy_performance_preference on Activate.
func NewCPUDriver(name, governor string) *CPUDriver {
	return &CPUDriver{
		name:      name,
		supported: profile.All,
		governor:  governor,
		events:    make(chan Event, 8),
	}
}

func (d *CPUDriver) Name() string                       { return d.name }
func (d *CPUDriver) DriverKind() Kind                    { return CPU }
func (d *CPUDriver) SupportedProfiles() profile.Mask     { return d.supported }
func (d *CPUDriver) PerformanceDegraded() string         { return d.degraded }
func (d *CPUDriver) Events() <-chan Event                { return d.events }

// Probe refuses to load in passive mode or on server-class ACPI chassis,
// then enumerates every cpufreq policy exposing energy_performance_preference.
func (d *CPUDriver) Probe() ProbeResult {
	if status, err := sysfsio.ReadAttr("/sys/devices/system/cpu/intel_pstate/status"); err == nil && status == "passive" {
		return ProbeFail
	}
	if acpi, err := sysfsio.ReadAttr("/sys/firmware/acpi/pm_profile"); err == nil && serverACPIProfiles[acpi] {
		return ProbeFail
	}

	var policies []device.Device
	if err := device.ForEachDevice("cpufreq", func(dev device.Device) {
		if _, err := dev.Attr("energy_performance_preference"); err == nil {
			policies = append(policies, dev)
		}
	}); err != nil {
		logger.Debugf("%s: enumerating cpufreq policies: %v", d.name, err)
	}
	if len(policies) == 0 {
		return ProbeFail
	}
	d.policies = policies
	return ProbeSuccess
}

// Activate sets the scaling governor on every policy, then writes the EPP
// token for target. On partial failure it rolls back the policies already
// written in this call to the profile that was active before it, per
// spec.md §4.4; a rollback failure is logged but never suppresses the
// original error.
func (d *CPUDriver) Activate(target profile.Profile, reason profile.Reason) error {
	token, ok := eppProfiles[target]
	if !ok {
		return fmt.Errorf("cpu driver %s: unsupported profile %v", d.name, target)
	}

	written := 0
	var firstErr error
	for _, pol := range d.policies {
		if d.governor != "" {
			if err := pol.WriteAttr("scaling_governor", d.governor); err != nil {
				firstErr = fmt.Errorf("cpu driver %s: setting governor on %s: %w", d.name, pol.Name, err)
				break
			}
		}
		if err := pol.WriteAttr("energy_performance_preference", token); err != nil {
			firstErr = fmt.Errorf("cpu driver %s: setting EPP on %s: %w", d.name, pol.Name, err)
			break
		}
		written++
	}
	if firstErr == nil {
		d.activated = target
		return nil
	}

	logger.Debugf("%s: activate(%v) failed after writing %d/%d policies", d.name, target, written, len(d.policies))
	d.rollback(written)
	return firstErr
}

// rollback re-applies d.activated (the profile active before the failed
// Activate call) to the first n policies, the ones the failed call had
// already written. It is a no-op before the first successful Activate.
func (d *CPUDriver) rollback(n int) {
	if !profile.HasSingleFlag(d.activated) {
		return
	}
	token := eppProfiles[d.activated]
	for _, pol := range d.policies[:n] {
		if d.governor != "" {
			if err := pol.WriteAttr("scaling_governor", d.governor); err != nil {
				logger.Noticef("%s: rollback to %v: setting governor on %s: %v", d.name, d.activated, pol.Name, err)
			}
		}
		if err := pol.WriteAttr("energy_performance_preference", token); err != nil {
			logger.Noticef("%s: rollback to %v: setting EPP on %s: %v", d.name, d.activated, pol.Name, err)
		}
	}
}

func (d *CPUDriver) Release() {
	for _, w := range d.watchers {
		w.Close()
	}
	d.watchers = nil
}

// EPBDriver drives the per-CPU energy_perf_bias (EPB) attribute, used on
// hardware that lacks per-policy EPP (older Intel parts).
type EPBDriver struct {
	supported profile.Mask
	cpus      []device.Device
	events    chan Event
}

var epbProfiles = map[profile.Profile]string{
	profile.PowerSaver:  "12",
	profile.Balanced:    "6",
	profile.Performance: "0",
}

func NewEPBDriver() *EPBDriver {
	return &EPBDriver{supported: profile.All, events: make(chan Event, 8)}
}

func (d *EPBDriver) Name() string                   { return "epb" }
func (d *EPBDriver) DriverKind() Kind                { return CPU }
func (d *EPBDriver) SupportedProfiles() profile.Mask { return d.supported }
func (d *EPBDriver) PerformanceDegraded() string     { return "" }
func (d *EPBDriver) Events() <-chan Event            { return d.events }

func (d *EPBDriver) Probe() ProbeResult {
	var cpus []device.Device
	if err := device.ForEachDevice("cpu", func(dev device.Device) {
		if !strings.HasPrefix(dev.Name, "cpu") {
			return
		}
		if _, err := strconv.Atoi(strings.TrimPrefix(dev.Name, "cpu")); err != nil {
			return
		}
		if _, err := dev.Attr("power/energy_perf_bias"); err == nil {
			cpus = append(cpus, dev)
		}
	}); err != nil {
		return ProbeFail
	}
	if len(cpus) == 0 {
		return ProbeFail
	}
	d.cpus = cpus
	return ProbeSuccess
}

func (d *EPBDriver) Activate(target profile.Profile, reason profile.Reason) error {
	token, ok := epbProfiles[target]
	if !ok {
		return fmt.Errorf("epb driver: unsupported profile %v", target)
	}
	for _, cpu := range d.cpus {
		if err := cpu.WriteAttr("power/energy_perf_bias", token); err != nil {
			return fmt.Errorf("epb driver: %s: %w", cpu.Name, err)
		}
	}
	return nil
}

func (d *EPBDriver) Release() {}
