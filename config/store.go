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

// Package config implements the persistent state store (spec.md §4.7): a
// single-section INI file recording the last selected driver names and
// active profile, so a restart can restore the user's choice.
package config

import (
	"os"
	"path/filepath"

	"github.com/mvo5/goconfigparser"

	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
	"github.com/Rongronggg9/power-profiles-daemon/sysfsio"
)

const (
	section      = "State"
	keyCPUDriver = "CpuDriver"
	keyPlatform  = "PlatformDriver"
	keyProfile   = "Profile"
)

// DefaultPath is where the store lives absent an UMOCKDEV_DIR override.
const DefaultPath = "/var/lib/power-profiles-daemon/state.ini"

// State is the record load/save works with.
type State struct {
	CPUDriver      string
	PlatformDriver string
	Profile        profile.Profile
}

// Load reads path (through the UMOCKDEV_DIR override) and returns the
// stored state. A missing file is not an error: it returns the zero State.
// Any other parse failure is a PersistenceWarning per spec.md §7: Load
// logs it at debug level, does not surface it, and returns the zero State.
func Load(path string) State {
	cfg := goconfigparser.New()
	full := sysfsio.Root(path)
	if err := cfg.ReadFile(full); err != nil {
		if !os.IsNotExist(err) {
			logger.Debugf("config: failed to read %s: %v", full, err)
		}
		return State{}
	}

	st := State{}
	if v, err := cfg.Get(section, keyCPUDriver); err == nil {
		st.CPUDriver = v
	}
	if v, err := cfg.Get(section, keyPlatform); err == nil {
		st.PlatformDriver = v
	}
	if v, err := cfg.Get(section, keyProfile); err == nil {
		st.Profile = profile.Parse(v)
	}
	return st
}

// Save writes st to path, preserving any keys this package doesn't know
// about by round-tripping through the existing file's parser state rather
// than emitting a fresh, minimal file.
func Save(path string, st State) error {
	full := sysfsio.Root(path)
	cfg := goconfigparser.New()
	if err := cfg.ReadFile(full); err != nil && !os.IsNotExist(err) {
		logger.Debugf("config: failed to read existing %s before save: %v", full, err)
	}

	cfg.Set(section, keyCPUDriver, st.CPUDriver)
	cfg.Set(section, keyPlatform, st.PlatformDriver)
	cfg.Set(section, keyProfile, st.Profile.String())

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	return cfg.Write(f)
}

// Valid applies the discard rule of spec.md §4.7: if either stored driver
// name differs from the driver actually selected for that kind, the stored
// profile must not be trusted.
func (st State) Valid(selectedCPUDriver, selectedPlatformDriver string) bool {
	return st.CPUDriver == selectedCPUDriver && st.PlatformDriver == selectedPlatformDriver
}
