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

package manager

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/driver"
	"github.com/Rongronggg9/power-profiles-daemon/holds"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
	"github.com/Rongronggg9/power-profiles-daemon/registry"
)

// controllableDriver is a test double whose Activate can be made to fail
// on demand, for exercising the cross-driver rollback path.
type controllableDriver struct {
	name    string
	kind    driver.Kind
	mask    profile.Mask
	events  chan driver.Event
	failOn  profile.Profile
	applied []profile.Profile
}

func newControllableDriver(name string, kind driver.Kind) *controllableDriver {
	return &controllableDriver{name: name, kind: kind, mask: profile.All, events: make(chan driver.Event)}
}

func (d *controllableDriver) Name() string                   { return d.name }
func (d *controllableDriver) DriverKind() driver.Kind         { return d.kind }
func (d *controllableDriver) SupportedProfiles() profile.Mask { return d.mask }
func (d *controllableDriver) PerformanceDegraded() string     { return "" }
func (d *controllableDriver) Events() <-chan driver.Event     { return d.events }
func (d *controllableDriver) Probe() driver.ProbeResult       { return driver.ProbeSuccess }
func (d *controllableDriver) Release()                        {}

func (d *controllableDriver) Activate(target profile.Profile, reason profile.Reason) error {
	if target == d.failOn {
		return errors.New("injected failure")
	}
	d.applied = append(d.applied, target)
	return nil
}

func testManager(t *testing.T, cpu *controllableDriver, plat *controllableDriver) *Manager {
	t.Helper()
	m := New(
		WithConfigPath(filepath.Join(t.TempDir(), "state.ini")),
		WithDrivers([]registry.DriverThunk{
			func() driver.Driver { return cpu },
			func() driver.Driver { return plat },
		}),
		WithActions([]registry.ActionThunk{}),
	)
	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { m.Stop() })
	return m
}

func TestStartupActivatesBalanced(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if s := m.Snapshot(); s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced", s.ActiveProfile)
	}
}

func TestSetActiveProfileSwitchesAndPublishes(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if err := m.SetActiveProfile("performance", profile.ReasonUser); err != nil {
		t.Fatalf("SetActiveProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Performance {
		t.Fatalf("ActiveProfile = %v, want performance", s.ActiveProfile)
	}
}

func TestSetActiveProfileUnknownNameIsInvalidArgs(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	err := m.SetActiveProfile("turbo", profile.ReasonUser)
	merr, ok := err.(*Error)
	if !ok || merr.Kind != KindInvalidArgs {
		t.Fatalf("err = %v, want *Error{Kind: KindInvalidArgs}", err)
	}
}

func TestPlatformFailureRollsBackCPU(t *testing.T) {
	cpu := newControllableDriver("cpu", driver.CPU)
	plat := newControllableDriver("plat", driver.Platform)
	plat.failOn = profile.Performance
	m := testManager(t, cpu, plat)

	err := m.SetActiveProfile("performance", profile.ReasonUser)
	if err == nil {
		t.Fatal("expected platform failure to propagate")
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced (unchanged)", s.ActiveProfile)
	}
	last := cpu.applied[len(cpu.applied)-1]
	if last != profile.Balanced {
		t.Fatalf("cpu driver's last applied profile = %v, want balanced (rolled back)", last)
	}
}

func TestHoldProfileActivatesAndReleaseRestoresSelected(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))

	cookie, err := m.HoldProfile(":1.1", profile.Performance, "demo", "com.example.App", "org.freedesktop.UPower.PowerProfiles")
	if err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Performance {
		t.Fatalf("ActiveProfile = %v, want performance while held", s.ActiveProfile)
	}

	if err := m.ReleaseProfile(cookie); err != nil {
		t.Fatalf("ReleaseProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced after release", s.ActiveProfile)
	}
}

func TestReleaseProfileRejectsUnknownCookie(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	err := m.ReleaseProfile(holds.Cookie(9999))
	merr, ok := err.(*Error)
	if !ok || merr.Kind != KindInvalidArgs {
		t.Fatalf("err = %v, want *Error{Kind: KindInvalidArgs}", err)
	}
}

func TestHoldProfileRejectsBalanced(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if _, err := m.HoldProfile(":1.1", profile.Balanced, "", "", "org.freedesktop.UPower.PowerProfiles"); err == nil {
		t.Fatal("expected holding balanced to fail")
	}
}

func TestUserRequestClearsOutstandingHolds(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if _, err := m.HoldProfile(":1.1", profile.Performance, "demo", "", "org.freedesktop.UPower.PowerProfiles"); err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	if err := m.SetActiveProfile("power-saver", profile.ReasonUser); err != nil {
		t.Fatalf("SetActiveProfile: %v", err)
	}
	if s := m.Snapshot(); len(s.Holds) != 0 {
		t.Fatalf("Holds = %v, want empty after a user-originated switch", s.Holds)
	}
}

func TestBusNameVanishedReleasesItsHolds(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if _, err := m.HoldProfile(":1.1", profile.Performance, "demo", "", "org.freedesktop.UPower.PowerProfiles"); err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	m.BusNameVanished(":1.1")
	if s := m.Snapshot(); len(s.Holds) != 0 {
		t.Fatalf("Holds = %v, want empty after owner vanished", s.Holds)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced after hold auto-released", s.ActiveProfile)
	}
}

func TestSetActiveProfileToAlreadySelectedClearsHoldOnActive(t *testing.T) {
	// selected starts at balanced; holding performance makes active diverge
	// from selected. Asking to set active back to "balanced" must compare
	// against active (performance), not selected (balanced already), or
	// the call becomes a silent no-op that never clears the hold.
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if _, err := m.HoldProfile(":1.1", profile.Performance, "demo", "", "org.freedesktop.UPower.PowerProfiles"); err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Performance {
		t.Fatalf("ActiveProfile = %v, want performance while held", s.ActiveProfile)
	}

	if err := m.SetActiveProfile("balanced", profile.ReasonUser); err != nil {
		t.Fatalf("SetActiveProfile: %v", err)
	}
	s := m.Snapshot()
	if s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced", s.ActiveProfile)
	}
	if len(s.Holds) != 0 {
		t.Fatalf("Holds = %v, want empty after the user request", s.Holds)
	}
}

func TestHoldProfileRejectsUnavailableProfile(t *testing.T) {
	cpu := newControllableDriver("cpu", driver.CPU)
	cpu.mask = profile.MaskBalanced | profile.MaskPowerSaver
	plat := newControllableDriver("plat", driver.Platform)
	plat.mask = profile.MaskBalanced | profile.MaskPowerSaver
	m := testManager(t, cpu, plat)

	_, err := m.HoldProfile(":1.1", profile.Performance, "demo", "", "org.freedesktop.UPower.PowerProfiles")
	merr, ok := err.(*Error)
	if !ok || merr.Kind != KindInvalidArgs {
		t.Fatalf("err = %v, want *Error{Kind: KindInvalidArgs}", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Balanced {
		t.Fatalf("ActiveProfile = %v, want balanced (hold must not have been accepted)", s.ActiveProfile)
	}
}

func TestSetActiveProfileAppliesOnlyToDriversThatSupportIt(t *testing.T) {
	// The platform slot is restricted to balanced/power-saver (e.g. the
	// placeholder driver), while the CPU driver alone supports performance.
	// activateTargetProfile must skip the platform driver's Activate call
	// entirely rather than failing it, or performance would be permanently
	// unreachable on such a system.
	cpu := newControllableDriver("cpu", driver.CPU)
	plat := newControllableDriver("plat", driver.Platform)
	plat.mask = profile.MaskBalanced | profile.MaskPowerSaver
	m := testManager(t, cpu, plat)

	if err := m.SetActiveProfile("performance", profile.ReasonUser); err != nil {
		t.Fatalf("SetActiveProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.Performance {
		t.Fatalf("ActiveProfile = %v, want performance", s.ActiveProfile)
	}
	if last := plat.applied[len(plat.applied)-1]; last == profile.Performance {
		t.Fatalf("platform driver was activated to performance despite not supporting it")
	}
}

func TestEffectiveProfileBiasTowardPowerSaverAppliesAcrossHolds(t *testing.T) {
	m := testManager(t, newControllableDriver("cpu", driver.CPU), newControllableDriver("plat", driver.Platform))
	if _, err := m.HoldProfile(":1.1", profile.Performance, "", "", "org.freedesktop.UPower.PowerProfiles"); err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	if _, err := m.HoldProfile(":1.2", profile.PowerSaver, "", "", "org.freedesktop.UPower.PowerProfiles"); err != nil {
		t.Fatalf("HoldProfile: %v", err)
	}
	if s := m.Snapshot(); s.ActiveProfile != profile.PowerSaver {
		t.Fatalf("ActiveProfile = %v, want power-saver (bias wins over performance)", s.ActiveProfile)
	}
}
