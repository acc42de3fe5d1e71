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

	"github.com/Rongronggg9/power-profiles-daemon/holds"
	"github.com/Rongronggg9/power-profiles-daemon/manager"
	"github.com/Rongronggg9/power-profiles-daemon/polkit"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

const (
	actionSwitchProfile = "org.freedesktop.UPower.PowerProfiles.switch-profile"
	actionHoldProfile   = "org.freedesktop.UPower.PowerProfiles.hold-profile"
)

// HoldProfile implements the HoldProfile method (spec.md §4.9, §6): pins
// target until the caller releases it, the owning bus name vanishes, or a
// user-originated SetActiveProfile clears every hold. It returns the
// cookie ReleaseProfile expects.
func (o *object) HoldProfile(target, reason, applicationID string, sender dbus.Sender) (uint32, *dbus.Error) {
	if err := o.surface.gate.Check(sender, actionHoldProfile, 0); err != nil {
		return 0, accessDeniedToDbusError(err)
	}
	cookie, err := o.surface.mgr.HoldProfile(string(sender), profile.Parse(target), reason, applicationID, o.ep.iface)
	if err != nil {
		return 0, toDbusError(err)
	}
	return uint32(cookie), nil
}

// ReleaseProfile implements the ReleaseProfile method (spec.md §4.9, §6).
// Releasing an unknown or already-released cookie is InvalidArgs.
func (o *object) ReleaseProfile(cookie uint32) *dbus.Error {
	if err := o.surface.mgr.ReleaseProfile(holds.Cookie(cookie)); err != nil {
		return toDbusError(err)
	}
	return nil
}

func accessDeniedToDbusError(err error) *dbus.Error {
	if err == polkit.ErrDismissed {
		return &dbus.Error{Name: "org.freedesktop.DBus.Error.AuthFailed", Body: []interface{}{err.Error()}}
	}
	return &dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied", Body: []interface{}{err.Error()}}
}

// toDbusError maps a *manager.Error to a bus error name by Kind, per
// spec.md §7.
func toDbusError(err error) *dbus.Error {
	merr, ok := err.(*manager.Error)
	if !ok {
		return dbus.MakeFailedError(err)
	}
	switch merr.Kind {
	case manager.KindInvalidArgs:
		return &dbus.Error{Name: "org.freedesktop.DBus.Error.InvalidArgs", Body: []interface{}{merr.Error()}}
	case manager.KindAccessDenied:
		return &dbus.Error{Name: "org.freedesktop.DBus.Error.AccessDenied", Body: []interface{}{merr.Error()}}
	default:
		return dbus.MakeFailedError(merr)
	}
}

func unknownPropertyError(name string) *dbus.Error {
	return &dbus.Error{Name: "org.freedesktop.DBus.Error.UnknownProperty", Body: []interface{}{"no such property " + name}}
}

func readOnlyPropertyError(name string) *dbus.Error {
	return &dbus.Error{Name: "org.freedesktop.DBus.Error.PropertyReadOnly", Body: []interface{}{name + " is read-only"}}
}
