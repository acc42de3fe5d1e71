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

// Package action defines the Action capability (spec.md §4.5): a
// best-effort per-profile side effect on some device class, applied on
// every transition in registry order, whose failures never abort a
// transition.
package action

import "github.com/Rongronggg9/power-profiles-daemon/profile"

// Action is the capability every concrete side effect implements.
type Action interface {
	// Name is a short, stable identifier (e.g. "trickle_charge").
	Name() string
	// Probe reports whether this action's target device class is present
	// on this host. Unlike a Driver, an action either succeeds or fails;
	// there is no probe deferral.
	Probe() bool
	// Apply performs the side effect for the newly active profile.
	Apply(target profile.Profile) error
}
