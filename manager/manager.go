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

// Package manager implements the profile-manager state machine: the
// cooperative, single-threaded core that owns the set of installed drivers
// and actions, arbitrates the selected/held/active profile, persists state
// across restarts and raises the events the bus surface turns into signals.
package manager

import (
	"sync/atomic"

	"gopkg.in/tomb.v2"

	"github.com/Rongronggg9/power-profiles-daemon/action"
	"github.com/Rongronggg9/power-profiles-daemon/config"
	"github.com/Rongronggg9/power-profiles-daemon/driver"
	"github.com/Rongronggg9/power-profiles-daemon/holds"
	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/profile"
	"github.com/Rongronggg9/power-profiles-daemon/registry"
)

// Version is the value reported on the Version property.
const Version = "0.1"

// EventKind distinguishes the two notifications a Manager raises for the
// bus surface to turn into signals or PropertiesChanged payloads.
type EventKind int

const (
	// EvPropertiesChanged means the current Snapshot differs from the one
	// published after the previous event; busd diffs it against its own
	// last-sent copy to decide which property names actually changed.
	EvPropertiesChanged EventKind = iota
	// EvProfileReleased means a hold expired (cookie, program-initiated or
	// otherwise) without the requester calling ReleaseProfile itself.
	EvProfileReleased
)

// Event is one item off Manager.Events.
type Event struct {
	Kind      EventKind
	Cookie    holds.Cookie
	Interface string // OriginInterface, meaningful only for EvProfileReleased
}

// driverEvent fans every installed driver's Events channel into the run
// loop, tagged with which slot and handle it came from.
type driverEvent struct {
	kind   driver.Kind
	handle *driverHandle
	ev     driver.Event
}

// Manager is the profile-manager core. All fields below this comment are
// owned exclusively by the run loop goroutine; every other method only
// ever touches them by sending a closure down cmds and waiting for it to
// run, or by reading the atomic snapshot pointer.
type Manager struct {
	t    tomb.Tomb
	cmds chan func()

	configPath     string
	driverThunks   []registry.DriverThunk
	actionThunks   []registry.ActionThunk
	blockedDrivers map[string]bool
	blockedActions map[string]bool

	driverEvents chan driverEvent
	events       chan Event

	cpu      kindState
	platform kindState
	actions  []action.Action

	active   profile.Profile
	selected profile.Profile
	holds    *holds.Table

	snapshot atomic.Pointer[Snapshot]
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithConfigPath overrides config.DefaultPath, for tests.
func WithConfigPath(path string) Option {
	return func(m *Manager) { m.configPath = path }
}

// WithDrivers overrides registry.DriverThunks, for tests.
func WithDrivers(thunks []registry.DriverThunk) Option {
	return func(m *Manager) { m.driverThunks = thunks }
}

// WithActions overrides registry.ActionThunks, for tests.
func WithActions(thunks []registry.ActionThunk) Option {
	return func(m *Manager) { m.actionThunks = thunks }
}

// New constructs a Manager. It performs no I/O; call Start to run discovery
// and bring up the initial active profile.
func New(opts ...Option) *Manager {
	m := &Manager{
		cmds:           make(chan func()),
		configPath:     config.DefaultPath,
		driverThunks:   registry.DriverThunks(),
		actionThunks:   registry.ActionThunks(),
		blockedDrivers: registry.BlockedNames("POWER_PROFILE_DAEMON_DRIVER_BLOCK"),
		blockedActions: registry.BlockedNames("POWER_PROFILE_DAEMON_ACTION_BLOCK"),
		driverEvents:   make(chan driverEvent, 8),
		events:         make(chan Event, 8),
		holds:          holds.NewTable(),
		active:         profile.Balanced,
		selected:       profile.Balanced,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Events delivers PropertiesChanged/ProfileReleased notifications for the
// bus surface to relay. It is never closed while the manager is running;
// it is closed only once Start's goroutine has fully exited.
func (m *Manager) Events() <-chan Event { return m.events }

// Snapshot returns the most recently published state. Safe for concurrent
// use from any number of goroutines, including a dbus property getter
// running on the connection's own dispatch goroutine.
func (m *Manager) Snapshot() Snapshot {
	if s := m.snapshot.Load(); s != nil {
		return *s
	}
	return Snapshot{ActiveProfile: profile.Balanced, SelectedProfile: profile.Balanced, Version: Version}
}

// Start runs discovery, applies persisted configuration and activates the
// resulting target profile, then starts the run loop in the background. It
// returns once the initial activation has completed (or failed fatally).
func (m *Manager) Start() error {
	done := make(chan error, 1)
	m.t.Go(func() error {
		err := m.startup()
		done <- err
		if err != nil {
			m.teardown()
			return err
		}
		m.run()
		return nil
	})
	return <-done
}

// Stop asks the run loop to exit and waits for it to finish, releasing
// every driver.
func (m *Manager) Stop() error {
	m.t.Kill(nil)
	return m.t.Wait()
}

// startup is the manager half of spec.md §4.10's startup sequence: steps 3
// (discovery), 4 (verify a platform driver loaded, or fall back to the
// placeholder), 5 (load and validate persisted state) and 6 (activate the
// resulting target with ReasonReset). It runs before the run loop starts,
// so it may mutate state directly.
func (m *Manager) startup() error {
	m.discoverKind(driver.CPU)
	m.discoverKind(driver.Platform)
	if m.platform.selected == nil {
		return fatal("no platform driver installed, not even the placeholder", nil)
	}

	for _, thunk := range m.actionThunks {
		a := thunk()
		if m.blockedActions[a.Name()] {
			continue
		}
		if a.Probe() {
			m.actions = append(m.actions, a)
		}
	}

	st := config.Load(m.configPath)
	cpuName, platformName := m.selectedDriverNames()
	target := profile.Balanced
	if st.Valid(cpuName, platformName) && profile.HasSingleFlag(st.Profile) {
		target = st.Profile
	}
	m.selected = target

	if err := m.activateTargetProfile(target, profile.ReasonReset); err != nil {
		logger.Noticef("manager: initial activation of %s failed, falling back to balanced: %v", target, err)
		m.selected = profile.Balanced
		if err := m.activateTargetProfile(profile.Balanced, profile.ReasonReset); err != nil {
			return fatal("failed to activate balanced during startup", err)
		}
	}
	m.publish()
	return nil
}

// discoverKind runs every driver thunk of the given kind in registry order,
// installing the first one that probes successfully and keeping every
// deferred one alive pending a later ProbeRequest.
func (m *Manager) discoverKind(kind driver.Kind) {
	ks := m.kindState(kind)
	*ks = kindState{}

	for _, thunk := range m.driverThunks {
		d := thunk()
		if d.DriverKind() != kind {
			continue
		}
		if m.blockedDrivers[d.Name()] {
			d.Release()
			continue
		}
		if !driver.ValidateSupportedProfiles(d.SupportedProfiles()) {
			logger.Noticef("manager: driver %s declares no supported profiles, ignoring", d.Name())
			d.Release()
			continue
		}

		switch d.Probe() {
		case driver.ProbeFail:
			d.Release()
		case driver.ProbeDefer:
			ks.pending = append(ks.pending, m.adopt(kind, d))
		case driver.ProbeSuccess:
			h := m.adopt(kind, d)
			ks.selected = h
			return
		}
	}
}

// adopt starts forwarding a newly constructed driver's events into the run
// loop's fan-in channel and returns its handle.
func (m *Manager) adopt(kind driver.Kind, d driver.Driver) *driverHandle {
	h := &driverHandle{d: d, stop: make(chan struct{})}
	go func() {
		for {
			select {
			case ev, ok := <-d.Events():
				if !ok {
					return
				}
				select {
				case m.driverEvents <- driverEvent{kind: kind, handle: h, ev: ev}:
				case <-h.stop:
					return
				}
			case <-h.stop:
				return
			}
		}
	}()
	return h
}

// release stops a handle's forwarder and releases the underlying driver,
// synchronously: stop is closed and the forwarder's own select (not a
// range) guarantees no further driverEvent for this handle can reach the
// run loop after this returns.
func (h *driverHandle) release() {
	close(h.stop)
	h.d.Release()
}

func (m *Manager) kindState(kind driver.Kind) *kindState {
	if kind == driver.CPU {
		return &m.cpu
	}
	return &m.platform
}

// run is the manager's single event loop: every mutation to the fields
// declared on Manager happens on this goroutine, reached either through a
// queued command closure or a fanned-in driver event.
func (m *Manager) run() {
	defer m.teardown()
	for {
		select {
		case <-m.t.Dying():
			return
		case fn := <-m.cmds:
			fn()
		case de := <-m.driverEvents:
			m.handleDriverEvent(de)
		}
	}
}

func (m *Manager) teardown() {
	for _, h := range m.cpu.all() {
		h.release()
	}
	for _, h := range m.platform.all() {
		h.release()
	}
	close(m.events)
}

// do serializes fn onto the run loop and blocks until it has executed. It
// must never be called from the run loop goroutine itself.
func (m *Manager) do(fn func()) {
	done := make(chan struct{})
	select {
	case m.cmds <- func() { fn(); close(done) }:
		<-done
	case <-m.t.Dying():
	}
}

// publish rebuilds and stores the snapshot, then signals busd to re-read
// and diff it against what it last sent. busd does the per-property
// comparison; publish always notifies, even for no-op changes.
func (m *Manager) publish() {
	s := m.buildSnapshot()
	m.snapshot.Store(&s)
	select {
	case m.events <- Event{Kind: EvPropertiesChanged}:
	default:
		// a PropertiesChanged is already queued; busd will read the latest
		// Snapshot when it drains it, so dropping a duplicate is safe.
	}
}

func (m *Manager) emitReleased(cookie holds.Cookie, iface string) {
	select {
	case m.events <- Event{Kind: EvProfileReleased, Cookie: cookie, Interface: iface}:
	case <-m.t.Dying():
	}
}
