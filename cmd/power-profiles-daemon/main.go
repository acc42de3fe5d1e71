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

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/godbus/dbus/v5"
	flags "github.com/jessevdk/go-flags"

	"github.com/Rongronggg9/power-profiles-daemon/busd"
	"github.com/Rongronggg9/power-profiles-daemon/logger"
	"github.com/Rongronggg9/power-profiles-daemon/manager"
	"github.com/Rongronggg9/power-profiles-daemon/systemd"
)

type options struct {
	Verbose bool `short:"v" long:"verbose" description:"Enable debug logging"`
	Replace bool `long:"replace" description:"Replace the currently running instance"`
	Version bool `long:"version" description:"Print the version and exit"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	if opts.Version {
		fmt.Println(manager.Version)
		return nil
	}

	logger.SimpleSetup(opts.Verbose)

	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("cannot connect to the system bus: %w", err)
	}
	defer conn.Close()

	m := manager.New()
	surface := busd.New(conn, m)

	// Export before acquiring the well-known names, so every handler is
	// already wired up the moment a client can see the service on the bus.
	if err := surface.Export(); err != nil {
		return err
	}
	if err := surface.Acquire(opts.Replace); err != nil {
		return err
	}

	if err := m.Start(); err != nil {
		return fmt.Errorf("cannot start: %w", err)
	}
	defer m.Stop()

	surface.Start()
	defer surface.Stop()

	if err := systemd.SdNotify("READY=1"); err != nil {
		logger.Debugf("sd_notify: %v", err)
	}
	logger.Noticef("Started power-profiles-daemon version %s", manager.Version)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	logger.Noticef("Exiting on %s signal", sig)
	return nil
}
