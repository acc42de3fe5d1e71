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

package busd

import (
	"github.com/godbus/dbus/v5"

	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/manager"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

// propertyNames is every property published on both interfaces, in the
// order GetAll reports them.
var propertyNames = []string{
	"ActiveProfile",
	"PerformanceDegraded",
	"PerformanceInhibited",
	"Profiles",
	"Actions",
	"ActiveProfileHolds",
	"Version",
}

// buildProperties renders a Snapshot into its wire representation: scalar
// properties as themselves, and the two list properties as aa{sv} records
// using the same key names as upstream's own public API, since real
// clients (GNOME Shell's quick-settings menu, for one) parse those keys by
// name.
func buildProperties(s manager.Snapshot) map[string]dbus.Variant {
	profiles := make([]map[string]dbus.Variant, 0, len(s.Profiles))
	for _, e := range s.Profiles {
		rec := map[string]dbus.Variant{"Profile": dbus.MakeVariant(e.Profile.String())}
		if e.CPUDriver != "" {
			rec["CpuDriver"] = dbus.MakeVariant(e.CPUDriver)
		}
		if e.PlatformDriver != "" {
			rec["PlatformDriver"] = dbus.MakeVariant(e.PlatformDriver)
		}
		rec["Driver"] = dbus.MakeVariant(combinedDriverName(e))
		profiles = append(profiles, rec)
	}

	activeHolds := make([]map[string]dbus.Variant, 0, len(s.Holds))
	for _, h := range s.Holds {
		rec := map[string]dbus.Variant{
			"Profile":       dbus.MakeVariant(h.Profile.String()),
			"Reason":        dbus.MakeVariant(h.Reason),
			"ApplicationId": dbus.MakeVariant(h.ApplicationID),
		}
		activeHolds = append(activeHolds, rec)
	}

	return map[string]dbus.Variant{
		"ActiveProfile":        dbus.MakeVariant(s.ActiveProfile.String()),
		"PerformanceDegraded":  dbus.MakeVariant(s.PerformanceDegraded),
		"PerformanceInhibited": dbus.MakeVariant(s.PerformanceInhibited),
		"Profiles":             dbus.MakeVariant(profiles),
		"Actions":              dbus.MakeVariant(s.Actions),
		"ActiveProfileHolds":   dbus.MakeVariant(activeHolds),
		"Version":              dbus.MakeVariant(s.Version),
	}
}

// combinedDriverName is the Driver key's value: the sole contributing
// driver's name, or "multiple" when CPU and platform drivers disagree on
// the name (spec.md §6).
func combinedDriverName(e manager.ProfileEntry) string {
	switch {
	case e.CPUDriver == "" && e.PlatformDriver == "":
		return ""
	case e.CPUDriver == "" || e.PlatformDriver == "" || e.CPUDriver == e.PlatformDriver:
		if e.CPUDriver != "" {
			return e.CPUDriver
		}
		return e.PlatformDriver
	default:
		return "multiple"
	}
}

func (s *Surface) emitPropertiesChanged() {
	current := buildProperties(s.mgr.Snapshot())

	s.sentMu.Lock()
	changed := map[string]dbus.Variant{}
	for name, v := range current {
		if prev, ok := s.sent[name]; !ok || prev.String() != v.String() {
			changed[name] = v
		}
	}
	s.sent = current
	s.sentMu.Unlock()

	if len(changed) == 0 {
		return
	}

	for _, ep := range endpoints {
		err := s.conn.Emit(ep.objectPath, "org.freedesktop.DBus.Properties.PropertiesChanged",
			ep.iface, changed, []string{})
		if err != nil {
			logger.Debugf("busd: emitting PropertiesChanged on %s: %v", ep.iface, err)
		}
	}
}

// object is the vtable exported at one object path: both the domain
// interface's methods (HoldProfile, ReleaseProfile) and the standard
// org.freedesktop.DBus.Properties methods dispatch through it.
type object struct {
	ep      endpoint
	surface *Surface
}

// Get implements org.freedesktop.DBus.Properties.Get.
func (o *object) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	props := buildProperties(o.surface.mgr.Snapshot())
	v, ok := props[name]
	if !ok {
		return dbus.Variant{}, unknownPropertyError(name)
	}
	return v, nil
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll.
func (o *object) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return buildProperties(o.surface.mgr.Snapshot()), nil
}

// Set implements org.freedesktop.DBus.Properties.Set. Only ActiveProfile
// is writable; everything else is read-only (spec.md §6).
func (o *object) Set(iface, name string, value dbus.Variant, sender dbus.Sender) *dbus.Error {
	if name != "ActiveProfile" {
		return readOnlyPropertyError(name)
	}
	profileName, ok := value.Value().(string)
	if !ok {
		return &dbus.ErrMsgInvalidArg
	}
	if err := o.surface.gate.Check(sender, actionSwitchProfile, 0); err != nil {
		return accessDeniedToDbusError(err)
	}
	if err := o.surface.mgr.SetActiveProfile(profileName, profile.ReasonUser); err != nil {
		return toDbusError(err)
	}
	return nil
}
