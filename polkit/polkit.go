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

// Package polkit implements the gate in front of the two privileged
// methods the bus surface exposes (spec.md §4.8): resolve the calling bus
// name to a subject, ask polkitd whether the named action is authorized,
// and return allow/deny. All checks are synchronous; policy decisions are
// never cached, matching upstream polkit's own per-request semantics.
package polkit

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	busName    = "org.freedesktop.PolicyKit1"
	objectPath = dbus.ObjectPath("/org/freedesktop/PolicyKit1/Authority")
	iface      = "org.freedesktop.PolicyKit1.Authority"
)

// CheckFlags mirrors polkit's own CheckAuthorizationFlags bitmask.
type CheckFlags uint32

// CheckAllowInteraction lets polkitd prompt the user (e.g. via a polkit
// agent dialog) rather than failing outright when no authorization is
// cached.
const CheckAllowInteraction CheckFlags = 1

// ErrDismissed is returned when the user dismissed an interactive
// authentication dialog, distinct from an outright denial.
var ErrDismissed = errors.New("polkit: authentication dialog dismissed")

// AccessDenied is returned by Gate.Check when polkit denies the named
// action, per the taxonomy of spec.md §7.
type AccessDenied struct {
	Action string
}

func (e *AccessDenied) Error() string {
	return fmt.Sprintf("polkit: access denied for action %q", e.Action)
}

// subjectKind is the well-known "system-bus-name" subject kind polkit
// resolves against the live bus connection itself, so the daemon never has
// to look up uid/pid on its own.
const subjectKind = "system-bus-name"

// Gate checks the two actions the bus surface requires authorization for.
type Gate struct {
	conn *dbus.Conn
}

// NewGate wraps the given system bus connection; conn must be the same
// connection the privileged methods are being dispatched on, so
// "system-bus-name" subjects resolve correctly.
func NewGate(conn *dbus.Conn) *Gate {
	return &Gate{conn: conn}
}

// Check resolves sender to a subject and asks polkitd whether action is
// authorized. It returns nil on allow, *AccessDenied on deny, ErrDismissed
// if the user cancelled an interactive prompt, or a wrapped I/O error if
// polkitd itself couldn't be reached.
func (g *Gate) Check(sender dbus.Sender, action string, flags CheckFlags) error {
	subject := struct {
		Kind    string
		Details map[string]dbus.Variant
	}{
		Kind: subjectKind,
		Details: map[string]dbus.Variant{
			"name": dbus.MakeVariant(string(sender)),
		},
	}

	var result struct {
		IsAuthorized bool
		IsChallenge  bool
		Details      map[string]string
	}

	call := g.conn.Object(busName, objectPath).Call(
		iface+".CheckAuthorization", 0,
		subject, action, map[string]string{}, uint32(flags), "",
	)
	if call.Err != nil {
		if dbusErr, ok := call.Err.(dbus.Error); ok && dbusErr.Name == "org.freedesktop.PolicyKit1.Error.Cancelled" {
			return ErrDismissed
		}
		return fmt.Errorf("polkit: CheckAuthorization: %w", call.Err)
	}
	if err := call.Store(&result.IsAuthorized, &result.IsChallenge, &result.Details); err != nil {
		return fmt.Errorf("polkit: decoding CheckAuthorization reply: %w", err)
	}

	if result.IsAuthorized {
		return nil
	}
	return &AccessDenied{Action: action}
}
