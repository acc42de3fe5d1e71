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

// TrickleCharge sets charge_type to "Trickle" on power-saver and "Fast"
// otherwise, on every power_supply device scoped "Device" (i.e. batteries,
// not the mains AC supply itself).
type TrickleCharge struct {
	devices []device.Device
}

func NewTrickleCharge() *TrickleCharge {
	return &TrickleCharge{}
}

func (a *TrickleCharge) Name() string { return "trickle_charge" }

func (a *TrickleCharge) Probe() bool {
	var devices []device.Device
	device.ForEachDevice("power_supply", func(d device.Device) {
		scope, err := d.Attr("scope")
		if err != nil || scope != "Device" {
			return
		}
		if _, err := d.Attr("charge_type"); err != nil {
			return
		}
		devices = append(devices, d)
	})
	a.devices = devices
	return len(devices) > 0
}

func (a *TrickleCharge) Apply(target profile.Profile) error {
	value := "Fast"
	if target == profile.PowerSaver {
		value = "Trickle"
	}
	var firstErr error
	for _, d := range a.devices {
		if err := d.WriteAttr("charge_type", value); err != nil {
			logger.Debugf("trickle_charge: %s: %v", d.Name, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
