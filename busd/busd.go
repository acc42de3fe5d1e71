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

// Package busd is the D-Bus surface (spec.md §6): it exports the same
// profile-manager behaviour identically on the current
// org.freedesktop.UPower.PowerProfiles name and the legacy
// net.hadess.PowerProfiles name, translating manager.Event notifications
// into PropertiesChanged and ProfileReleased signals.
package busd

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"gopkg.in/tomb.v2"

	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/manager"
	"github.com/Rongronggg9/power-profiles-daemon/polkit"
)

// endpoint is one of the two published (busName, objectPath, interface)
// triples. Both endpoints share the same manager and polkit gate; only the
// interface name and object path differ, and that name travels along with
// every hold so ProfileReleased can be emitted back on the interface it
// was acquired on (spec.md §4.11).
type endpoint struct {
	busName    string
	objectPath dbus.ObjectPath
	iface      string
}

var endpoints = []endpoint{
	{
		busName:    "org.freedesktop.UPower.PowerProfiles",
		objectPath: "/org/freedesktop/UPower/PowerProfiles",
		iface:      "org.freedesktop.UPower.PowerProfiles",
	},
	{
		busName:    "net.hadess.PowerProfiles",
		objectPath: "/net/hadess/PowerProfiles",
		iface:      "net.hadess.PowerProfiles",
	},
}

// Surface owns the system bus connection and both published endpoints.
type Surface struct {
	t    tomb.Tomb
	conn *dbus.Conn
	mgr  *manager.Manager
	gate *polkit.Gate

	objects []*object

	sentMu sync.Mutex
	sent   map[string]dbus.Variant
}

// New wraps conn (expected to be the shared system bus connection) around
// mgr, ready to Export and Acquire.
func New(conn *dbus.Conn, mgr *manager.Manager) *Surface {
	return &Surface{conn: conn, mgr: mgr, gate: polkit.NewGate(conn)}
}

// Export publishes the vtable, properties and introspection data at both
// object paths. It must run before Acquire, mirroring the house rule that
// handlers are wired up before the well-known name becomes reachable.
func (s *Surface) Export() error {
	for _, ep := range endpoints {
		obj := &object{ep: ep, surface: s}
		s.objects = append(s.objects, obj)

		if err := s.conn.Export(obj, ep.objectPath, ep.iface); err != nil {
			return fmt.Errorf("busd: export %s on %s: %w", ep.iface, ep.objectPath, err)
		}
		if err := s.conn.Export(obj, ep.objectPath, "org.freedesktop.DBus.Properties"); err != nil {
			return fmt.Errorf("busd: export Properties on %s: %w", ep.objectPath, err)
		}

		xml := "<node>" + introspectionXML(ep.iface) + introspect.IntrospectDataString + "</node>"
		if err := s.conn.Export(introspect.Introspectable(xml), ep.objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
			return fmt.Errorf("busd: export Introspectable on %s: %w", ep.objectPath, err)
		}
	}
	return nil
}

// Acquire requests both well-known names. replace controls whether a
// previous instance's name is stolen (power-profiles-daemon --replace) or
// this call fails outright, matching spec.md §6's startup contract.
func (s *Surface) Acquire(replace bool) error {
	flags := dbus.NameFlagDoNotQueue
	if replace {
		flags |= dbus.NameFlagReplaceExisting | dbus.NameFlagAllowReplacement
	}
	for _, ep := range endpoints {
		reply, err := s.conn.RequestName(ep.busName, flags)
		if err != nil {
			return fmt.Errorf("busd: requesting name %s: %w", ep.busName, err)
		}
		if reply != dbus.RequestNameReplyPrimaryOwner {
			return fmt.Errorf("busd: name %s already owned and --replace not requested", ep.busName)
		}
	}
	return nil
}

// Start begins relaying manager events to bus signals and watching for bus
// names disappearing, and emits the initial PropertiesChanged now that
// both well-known names are live. Export and Acquire must have already
// succeeded.
func (s *Surface) Start() {
	s.emitPropertiesChanged()
	s.watchNameOwnerChanges()
	s.t.Go(func() error {
		for {
			select {
			case ev, ok := <-s.mgr.Events():
				if !ok {
					return nil
				}
				s.handleManagerEvent(ev)
			case <-s.t.Dying():
				return nil
			}
		}
	})
}

// Stop ends the relay goroutine. It does not touch the manager or close
// the bus connection; callers own both.
func (s *Surface) Stop() error {
	s.t.Kill(nil)
	return s.t.Wait()
}

func (s *Surface) handleManagerEvent(ev manager.Event) {
	switch ev.Kind {
	case manager.EvPropertiesChanged:
		s.emitPropertiesChanged()
	case manager.EvProfileReleased:
		s.emitProfileReleased(ev)
	}
}

func (s *Surface) emitProfileReleased(ev manager.Event) {
	for _, ep := range endpoints {
		if ep.iface != ev.Interface {
			continue
		}
		if err := s.conn.Emit(ep.objectPath, ep.iface+".ProfileReleased", uint32(ev.Cookie)); err != nil {
			logger.Debugf("busd: emitting ProfileReleased on %s: %v", ep.iface, err)
		}
		return
	}
}

// watchNameOwnerChanges subscribes to org.freedesktop.DBus's NameOwnerChanged
// so a client that disconnects without calling ReleaseProfile still has its
// holds torn down (spec.md §4.9).
func (s *Surface) watchNameOwnerChanges() {
	rule := "type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged'"
	call := s.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, rule)
	if call.Err != nil {
		logger.Noticef("busd: failed to subscribe to NameOwnerChanged, holds will not auto-release: %v", call.Err)
		return
	}
	ch := make(chan *dbus.Signal, 16)
	s.conn.Signal(ch)
	s.t.Go(func() error {
		for {
			select {
			case sig, ok := <-ch:
				if !ok {
					return nil
				}
				s.handleNameOwnerChanged(sig)
			case <-s.t.Dying():
				return nil
			}
		}
	})
}

func (s *Surface) handleNameOwnerChanged(sig *dbus.Signal) {
	if sig.Name != "org.freedesktop.DBus.NameOwnerChanged" || len(sig.Body) != 3 {
		return
	}
	name, _ := sig.Body[0].(string)
	newOwner, _ := sig.Body[2].(string)
	if newOwner == "" && name != "" {
		s.mgr.BusNameVanished(name)
	}
}
