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

package busd

import "fmt"

// introspectionXML renders the node-level XML for one endpoint's domain
// interface, plus the standard org.freedesktop.DBus.Properties interface
// every object with properties must advertise.
func introspectionXML(iface string) string {
	return fmt.Sprintf(`
<interface name="%s">
	<property name="ActiveProfile" type="s" access="readwrite"/>
	<property name="PerformanceDegraded" type="s" access="read"/>
	<property name="PerformanceInhibited" type="s" access="read"/>
	<property name="Profiles" type="aa{sv}" access="read"/>
	<property name="Actions" type="as" access="read"/>
	<property name="ActiveProfileHolds" type="aa{sv}" access="read"/>
	<property name="Version" type="s" access="read"/>
	<method name="HoldProfile">
		<arg type="s" name="profile" direction="in"/>
		<arg type="s" name="reason" direction="in"/>
		<arg type="s" name="application_id" direction="in"/>
		<arg type="u" name="cookie" direction="out"/>
	</method>
	<method name="ReleaseProfile">
		<arg type="u" name="cookie" direction="in"/>
	</method>
	<signal name="ProfileReleased">
		<arg type="u" name="cookie"/>
	</signal>
</interface>
<interface name="org.freedesktop.DBus.Properties">
	<method name="Get">
		<arg type="s" name="interface_name" direction="in"/>
		<arg type="s" name="property_name" direction="in"/>
		<arg type="v" name="value" direction="out"/>
	</method>
	<method name="GetAll">
		<arg type="s" name="interface_name" direction="in"/>
		<arg type="a{sv}" name="properties" direction="out"/>
	</method>
	<method name="Set">
		<arg type="s" name="interface_name" direction="in"/>
		<arg type="s" name="property_name" direction="in"/>
		<arg type="v" name="value" direction="in"/>
	</method>
	<signal name="PropertiesChanged">
		<arg type="s" name="interface_name"/>
		<arg type="a{sv}" name="changed_properties"/>
		<arg type="as" name="invalidated_properties"/>
	</signal>
</interface>`, iface)
}
