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
	"os"
	"path/filepath"
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/device"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

func writeFixtureAttr(t *testing.T, policyDir, name string) {
	t.Helper()
	if err := os.MkdirAll(policyDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(policyDir, name), nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func newFixtureCPUDriver(t *testing.T) (*CPUDriver, string, string) {
	t.Helper()
	dir := t.TempDir()
	pol0 := filepath.Join(dir, "policy0")
	pol1 := filepath.Join(dir, "policy1")
	for _, p := range []string{pol0, pol1} {
		writeFixtureAttr(t, p, "scaling_governor")
		writeFixtureAttr(t, p, "energy_performance_preference")
	}
	d := &CPUDriver{
		name:      "intel_pstate",
		supported: profile.All,
		governor:  "powersave",
		policies: []device.Device{
			{Subsystem: "cpufreq", Name: "policy0", SysfsPath: pol0},
			{Subsystem: "cpufreq", Name: "policy1", SysfsPath: pol1},
		},
		events: make(chan Event, 8),
	}
	return d, pol0, pol1
}

func TestCPUDriverActivateWritesEveryPolicy(t *testing.T) {
	d, pol0, pol1 := newFixtureCPUDriver(t)

	if err := d.Activate(profile.PowerSaver, profile.ReasonUser); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	for _, pol := range []string{pol0, pol1} {
		got, err := os.ReadFile(filepath.Join(pol, "energy_performance_preference"))
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != eppProfiles[profile.PowerSaver] {
			t.Fatalf("%s energy_performance_preference = %q, want %q", pol, got, eppProfiles[profile.PowerSaver])
		}
	}
	if d.activated != profile.PowerSaver {
		t.Fatalf("activated = %v, want power-saver", d.activated)
	}
}

func TestCPUDriverActivateRollsBackOnPartialFailure(t *testing.T) {
	d, pol0, pol1 := newFixtureCPUDriver(t)

	if err := d.Activate(profile.Balanced, profile.ReasonUser); err != nil {
		t.Fatalf("initial Activate(balanced): %v", err)
	}

	// Break the second policy so the next Activate fails partway through,
	// after policy0 has already been rewritten to performance.
	if err := os.Remove(filepath.Join(pol1, "energy_performance_preference")); err != nil {
		t.Fatal(err)
	}

	if err := d.Activate(profile.Performance, profile.ReasonUser); err == nil {
		t.Fatal("expected Activate(performance) to fail once policy1 is broken")
	}

	got, err := os.ReadFile(filepath.Join(pol0, "energy_performance_preference"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != eppProfiles[profile.Balanced] {
		t.Fatalf("policy0 energy_performance_preference = %q after rollback, want %q (balanced)", got, eppProfiles[profile.Balanced])
	}
	if d.activated != profile.Balanced {
		t.Fatalf("activated = %v after failed Activate, want balanced (unchanged)", d.activated)
	}
}
