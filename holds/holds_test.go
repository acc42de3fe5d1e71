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

package holds

import (
	"testing"

	"github.com/Rongronggg9/power-profiles-daemon/profile"
)

func TestAddGetRemove(t *testing.T) {
	tbl := NewTable()
	c := tbl.Add(Hold{Profile: profile.Performance, RequesterBusName: ":1.1"})
	if c == 0 {
		t.Fatal("cookie must never be 0")
	}
	h, ok := tbl.Get(c)
	if !ok || h.Profile != profile.Performance {
		t.Fatalf("Get(%d) = %+v, %v", c, h, ok)
	}
	if _, ok := tbl.Remove(c); !ok {
		t.Fatal("Remove should report the hold existed")
	}
	if _, ok := tbl.Get(c); ok {
		t.Fatal("hold should be gone after Remove")
	}
}

func TestCookiesAreUnique(t *testing.T) {
	tbl := NewTable()
	seen := map[Cookie]bool{}
	for i := 0; i < 100; i++ {
		c := tbl.Add(Hold{Profile: profile.Performance})
		if seen[c] {
			t.Fatalf("cookie %d reused", c)
		}
		seen[c] = true
	}
}

func TestRemoveByBusName(t *testing.T) {
	tbl := NewTable()
	a := tbl.Add(Hold{Profile: profile.Performance, RequesterBusName: ":1.1"})
	tbl.Add(Hold{Profile: profile.PowerSaver, RequesterBusName: ":1.2"})

	removed := tbl.RemoveByBusName(":1.1")
	if len(removed) != 1 || removed[0].Cookie != a {
		t.Fatalf("RemoveByBusName(:1.1) = %+v", removed)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tbl.Len())
	}
}

func TestClear(t *testing.T) {
	tbl := NewTable()
	tbl.Add(Hold{Profile: profile.Performance})
	tbl.Add(Hold{Profile: profile.PowerSaver})
	all := tbl.Clear()
	if len(all) != 2 {
		t.Fatalf("Clear() returned %d holds, want 2", len(all))
	}
	if tbl.Len() != 0 {
		t.Fatal("table should be empty after Clear")
	}
}

func TestEffectiveProfileBiasesTowardPowerSaver(t *testing.T) {
	h := []Hold{
		{Profile: profile.Performance},
		{Profile: profile.PowerSaver},
	}
	p, ok := EffectiveProfile(h)
	if !ok || p != profile.PowerSaver {
		t.Fatalf("EffectiveProfile = %v, %v, want power-saver", p, ok)
	}
}

func TestEffectiveProfileNoHolds(t *testing.T) {
	if _, ok := EffectiveProfile(nil); ok {
		t.Fatal("expected ok=false with no holds")
	}
}

func TestEffectiveProfileSinglePerformanceHold(t *testing.T) {
	p, ok := EffectiveProfile([]Hold{{Profile: profile.Performance}})
	if !ok || p != profile.Performance {
		t.Fatalf("EffectiveProfile = %v, %v, want performance", p, ok)
	}
}
