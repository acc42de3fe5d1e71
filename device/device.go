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

// Package device is a thin, one-shot layer over the kernel's sysfs device
// tree: enough to find devices in a given subsystem matching a predicate,
// without the hotplug machinery a netlink uevent monitor would bring in
// (drivers here only need a startup inventory, per spec.md §4.2).
package device

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/Rongronggg9/power-profiles-daemon/sysfsio"
)

// Device is a handle on one entry of /sys/class/<subsystem>.
type Device struct {
	// Subsystem is the class this device was enumerated from, e.g.
	// "power_supply" or "drm".
	Subsystem string
	// Name is the device's leaf name, e.g. "BAT0" or "card0-eDP-1".
	Name string
	// SysfsPath is the path (relative to the UMOCKDEV_DIR root, if any)
	// of the device's directory; pass it to sysfsio for attribute I/O.
	SysfsPath string
}

// Attr reads one attribute file from the device's sysfs directory.
func (d Device) Attr(name string) (string, error) {
	return sysfsio.ReadAttr(filepath.Join(d.SysfsPath, name))
}

// WriteAttr writes one attribute file in the device's sysfs directory.
func (d Device) WriteAttr(name, value string) error {
	return sysfsio.WriteAttr(filepath.Join(d.SysfsPath, name), value)
}

// Predicate decides whether a device matches; it may read further
// attributes through d.Attr.
type Predicate func(d Device) bool

// ForEachDevice iterates every device in subsystem and calls f on each.
// Devices are visited in lexical order of their names under
// /sys/class/<subsystem>.
func ForEachDevice(subsystem string, f func(Device)) error {
	classDir := sysfsio.Root(filepath.Join("/sys/class", subsystem))
	entries, err := os.ReadDir(classDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		f(Device{
			Subsystem: subsystem,
			Name:      name,
			SysfsPath: filepath.Join("/sys/class", subsystem, name),
		})
	}
	return nil
}

// FindDevice returns the first device in subsystem satisfying predicate,
// or ok=false if none does.
func FindDevice(subsystem string, predicate Predicate) (dev Device, ok bool) {
	ForEachDevice(subsystem, func(d Device) {
		if ok {
			return
		}
		if predicate(d) {
			dev, ok = d, true
		}
	})
	return dev, ok
}
