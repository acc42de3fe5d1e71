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

package action

import (
	"github.com/Rongronggg9/power-profiles-daemon/device"
	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

// panelPowerSavings maps a profile to the AMDGPU panel_power_savings level
// (0-4, 0 meaning off) applied while running on battery.
var panelPowerSavings = map[profile.Profile]string{
	profile.PowerSaver:  "4",
	profile.Balanced:    "2",
	profile.Performance: "0",
}

// AmdgpuPanelPower sets panel_power_savings on every AMDGPU DRM connector
// while the host is running on battery, reverting to 0 (off) on AC. AC
// state is polled at Apply time rather than watched continuously, since
// Apply already runs on every profile transition.
type AmdgpuPanelPower struct {
	connectors []device.Device
	acSupplies []device.Device
}

func NewAmdgpuPanelPower() *AmdgpuPanelPower {
	return &AmdgpuPanelPower{}
}

func (a *AmdgpuPanelPower) Name() string { return "amdgpu_panel_power" }

func (a *AmdgpuPanelPower) Probe() bool {
	var connectors []device.Device
	device.ForEachDevice("drm", func(d device.Device) {
		if _, err := d.Attr("amdgpu/panel_power_savings"); err == nil {
			connectors = append(connectors, d)
		}
	})
	if len(connectors) == 0 {
		return false
	}
	a.connectors = connectors

	device.ForEachDevice("power_supply", func(d device.Device) {
		if typ, err := d.Attr("type"); err == nil && typ == "Mains" {
			a.acSupplies = append(a.acSupplies, d)
		}
	})
	return true
}

func (a *AmdgpuPanelPower) onBattery() bool {
	if len(a.acSupplies) == 0 {
		// No mains supply found at all: treat as a desktop, never
		// degrade panel power on a display that has no battery behind it.
		return false
	}
	for _, ac := range a.acSupplies {
		if online, err := ac.Attr("online"); err == nil && online == "1" {
			return false
		}
	}
	return true
}

func (a *AmdgpuPanelPower) Apply(target profile.Profile) error {
	level := "0"
	if a.onBattery() {
		level = panelPowerSavings[target]
	}
	var firstErr error
	for _, c := range a.connectors {
		if err := c.WriteAttr("amdgpu/panel_power_savings", level); err != nil {
			logger.Debugf("amdgpu_panel_power: %s: %v", c.Name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
