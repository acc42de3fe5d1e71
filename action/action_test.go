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
	"os"
	"path/filepath"
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

func TestTrickleChargeAppliesPowerSaver(t *testing.T) {
	root := t.TempDir()
	t.Setenv("UMOCKDEV_DIR", root)
	bat := filepath.Join(root, "sys/class/power_supply/BAT0")
	if err := os.MkdirAll(bat, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bat, "scope"), []byte("Device\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bat, "charge_type"), []byte("Fast\n"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewTrickleCharge()
	if !a.Probe() {
		t.Fatal("expected Probe to find BAT0")
	}
	if err := a.Apply(profile.PowerSaver); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(bat, "charge_type"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Trickle" {
		t.Fatalf("charge_type = %q, want Trickle", got)
	}
}

func TestTrickleChargeProbeFailsWithoutBattery(t *testing.T) {
	root := t.TempDir()
	t.Setenv("UMOCKDEV_DIR", root)
	a := NewTrickleCharge()
	if a.Probe() {
		t.Fatal("expected Probe to fail with no power_supply devices")
	}
}
