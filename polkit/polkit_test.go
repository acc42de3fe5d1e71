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

package polkit

import "testing"

func TestAccessDeniedError(t *testing.T) {
	err := &AccessDenied{Action: "org.freedesktop.UPower.PowerProfiles.switch-profile"}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}

func TestCheckAllowInteractionFlag(t *testing.T) {
	if CheckAllowInteraction != 1 {
		t.Fatalf("CheckAllowInteraction = %d, want 1 (polkit wire value)", CheckAllowInteraction)
	}
}
