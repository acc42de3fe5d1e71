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

package config

import (
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

func TestSaveThenLoad(t *testing.T) {
	root := t.TempDir()
	t.Setenv("UMOCKDEV_DIR", root)

	st := State{CPUDriver: "intel_pstate", PlatformDriver: "platform_profile", Profile: profile.Performance}
	if err := Save(DefaultPath, st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := Load(DefaultPath)
	if got != st {
		t.Fatalf("Load() = %+v, want %+v", got, st)
	}
}

func TestLoadMissingFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("UMOCKDEV_DIR", root)
	if got := Load(DefaultPath); got != (State{}) {
		t.Fatalf("Load() on missing file = %+v, want zero value", got)
	}
}

func TestValidDiscardsOnDriverMismatch(t *testing.T) {
	st := State{CPUDriver: "intel_pstate", PlatformDriver: "platform_profile", Profile: profile.Performance}
	if !st.Valid("intel_pstate", "platform_profile") {
		t.Fatal("expected matching driver names to validate")
	}
	if st.Valid("amd_pstate", "platform_profile") {
		t.Fatal("expected mismatched cpu driver to invalidate")
	}
}
