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

package profile

import "testing"

func TestRoundTrip(t *testing.T) {
	for _, p := range []Profile{PowerSaver, Balanced, Performance} {
		if got := Parse(p.String()); got != p {
			t.Errorf("Parse(%q) = %v, want %v", p.String(), got, p)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	for _, s := range []string{"", "quiet", "Performance", "unset"} {
		if got := Parse(s); got != Unset {
			t.Errorf("Parse(%q) = %v, want Unset", s, got)
		}
	}
}

func TestHasSingleFlag(t *testing.T) {
	for _, p := range []Profile{PowerSaver, Balanced, Performance} {
		if !HasSingleFlag(p) {
			t.Errorf("HasSingleFlag(%v) = false, want true", p)
		}
	}
	if HasSingleFlag(Unset) {
		t.Error("HasSingleFlag(Unset) = true, want false")
	}
}

func TestMaskHas(t *testing.T) {
	m := MaskPowerSaver | MaskBalanced
	if !m.Has(PowerSaver) || !m.Has(Balanced) {
		t.Fatal("expected mask to advertise power-saver and balanced")
	}
	if m.Has(Performance) {
		t.Fatal("mask unexpectedly advertises performance")
	}
	if m.Has(Unset) {
		t.Fatal("mask must never advertise Unset")
	}
}

func TestReasonPersists(t *testing.T) {
	cases := map[Reason]bool{
		ReasonUser:        true,
		ReasonInternal:    true,
		ReasonReset:       false,
		ReasonResume:      false,
		ReasonProgramHold: false,
	}
	for r, want := range cases {
		if got := r.Persists(); got != want {
			t.Errorf("%v.Persists() = %v, want %v", r, got, want)
		}
	}
}
