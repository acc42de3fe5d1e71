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
	"errors"
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/manager"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

func TestCombinedDriverNameSole(t *testing.T) {
	e := manager.ProfileEntry{Profile: profile.Performance, CPUDriver: "intel_pstate"}
	if got := combinedDriverName(e); got != "intel_pstate" {
		t.Fatalf("combinedDriverName = %q, want intel_pstate", got)
	}
}

func TestCombinedDriverNameAgreeing(t *testing.T) {
	e := manager.ProfileEntry{Profile: profile.Performance, CPUDriver: "placeholder", PlatformDriver: "placeholder"}
	if got := combinedDriverName(e); got != "placeholder" {
		t.Fatalf("combinedDriverName = %q, want placeholder", got)
	}
}

func TestCombinedDriverNameMultiple(t *testing.T) {
	e := manager.ProfileEntry{Profile: profile.Performance, CPUDriver: "intel_pstate", PlatformDriver: "platform_profile"}
	if got := combinedDriverName(e); got != "multiple" {
		t.Fatalf("combinedDriverName = %q, want multiple", got)
	}
}

func TestBuildPropertiesIncludesEveryName(t *testing.T) {
	s := manager.Snapshot{ActiveProfile: profile.Balanced, Version: manager.Version}
	props := buildProperties(s)
	for _, name := range propertyNames {
		if _, ok := props[name]; !ok {
			t.Fatalf("buildProperties missing %q", name)
		}
	}
}

func TestToDbusErrorMapsInvalidArgs(t *testing.T) {
	err := &manager.Error{Kind: manager.KindInvalidArgs, Msg: "bad profile"}
	derr := toDbusError(err)
	if derr.Name != "org.freedesktop.DBus.Error.InvalidArgs" {
		t.Fatalf("Name = %q", derr.Name)
	}
}

func TestToDbusErrorFallsBackToFailed(t *testing.T) {
	derr := toDbusError(errors.New("boom"))
	if derr.Name != "org.freedesktop.DBus.Error.Failed" {
		t.Fatalf("Name = %q", derr.Name)
	}
}
