// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"strings"
)

// Symbolic lookup tables. These carry no decode semantics; they exist so
// the formatter and the monitor can show what a raw code means. Values
// come from the Trimble receiver manuals (Lassen, Acutime, RES SMT 360,
// Resolution SMTx, RES720).

// valueLabel maps one raw value to a label.
type valueLabel struct {
	value uint32
	label string
}

// flagLabel matches when value&mask == match.
type flagLabel struct {
	match uint32
	mask  uint32
	label string
}

func lookupValue(table []valueLabel, v uint32) string {
	for _, e := range table {
		if e.value == v {
			return e.label
		}
	}
	return fmt.Sprintf("Unknown (%d)", v)
}

func lookupFlags(table []flagLabel, v uint32) string {
	var parts []string
	for _, e := range table {
		if v&e.mask == e.match {
			parts = append(parts, e.label)
		}
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, ", ")
}

// TSIPv1 tables

// xa1-11 fix type
var v1FixTypes = []valueLabel{
	{0, "No Fix"},
	{1, "1D"},
	{2, "3D"},
}

// xa3-21 error codes
var v1ErrorCodes = []valueLabel{
	{1, "Parameter Error"},
	{2, "Length Error"},
	{3, "Invalid Packet Format"},
	{4, "Invalid Checksum"},
	{5, "Bad TNL/User Mode"},
	{6, "Invalid Packet ID"},
	{7, "Invalid Subpacket ID"},
	{8, "Update in Progress"},
	{9, "Internal Error (div by 0)"},
	{10, "Internal Error (failed queuing)"},
}

// xa3-11 GNSS decoding status
var v1DecodeStatus = []valueLabel{
	{0, "Doing Fixes"},
	{1, "No GPS Time"},
	{2, "PDOP Too High"},
	{3, "0 Usable Sats"},
	{4, "1 Usable Sat"},
	{5, "2 Usable Sats"},
	{6, "3 Usable Sats"},
	{0xff, "GPS Time Fix (OD mode)"},
}

// xa3-00 major alarms
var v1MajorAlarms = []flagLabel{
	{1, 1, "Not Tracking Sats"},
	{2, 2, "PPS Bad"},
	{4, 4, "PPS Not Generated"},
	{0x80, 0x80, "Spoofing/Multipath"},
	{0x100, 0x100, "Jamming"},
}

// xa3-00 minor alarms
var v1MinorAlarms = []flagLabel{
	{1, 1, "Antenna Open"},
	{2, 2, "Antenna Short"},
	{4, 4, "Leap Pending"},
	{8, 8, "Almanac Incomplete"},
	{0x10, 0x10, "Survey in Progress"},
	{0x20, 0x20, "GLONASS Almanac Incomplete"},
	{0x40, 0x40, "BeiDou Almanac Incomplete"},
	{0x80, 0x80, "Galileo Almanac Incomplete"},
	{0x100, 0x100, "Leap Second Insertion"},
	{0x200, 0x200, "Leap Second Deletion"},
}

// x91-00 port parameters
var v1PortNames = []valueLabel{
	{0, "Port A"},
	{1, "Port B"},
	{255, "Current Port"},
}

var v1Parity = []valueLabel{
	{0, "None"},
	{1, "Odd"},
	{2, "Even"},
	{255, "Ignore"},
}

var v1Protocols = []valueLabel{
	{2, "TSIP"},
	{4, "NMEA"},
	{255, "Ignore"},
}

var v1Speeds = []valueLabel{
	{11, "115200"},
	{12, "230400"},
	{13, "460800"},
	{14, "921600"},
	{255, "Ignore"},
}

// xa1-11 position mask
var v1PosMask = []flagLabel{
	{0, 1, "Real Time Position"},
	{1, 1, "Surveyed Position"},
	{0, 2, "LLA Position"},
	{2, 2, "XYZ ECEF"},
	{0, 4, "HAE"},
	{4, 4, "MSL"},
	{0, 8, "Velocity ENU"},
	{8, 8, "Velocity ECEF"},
}

// x91-03 PPS mask
var v1PPSMask = []valueLabel{
	{0, "Off"},
	{1, "On"},
	{2, "Fix Based"},
	{3, "When Valid"},
	{4, "Off"},
	{5, "On/Negative"},
	{6, "Fix Based/Negative"},
	{7, "When Valid/Negative"},
}

// xa3-11 receiver mode
var v1RecModes = []valueLabel{
	{0, "2D"},
	{1, "(3D) Time Only"},
	{3, "Automatic"},
	{6, "Overdetermined"},
}

// x92-01 reset cause
var v1ResetCauses = []valueLabel{
	{0, "No Reset"},
	{1, "Cold Reset"},
	{2, "Hot Reset"},
	{3, "Warm Reset"},
	{4, "Factory Reset"},
	{5, "System Reset"},
	{6, "Power Cycle"},
	{7, "Watchdog"},
	{8, "Hardfault"},
}

// xa2-00 satellite flags
var v1SatFlags = []flagLabel{
	{1, 1, "Acquired"},
	{2, 2, "Used in Position"},
	{4, 4, "Used in PPS"},
}

// x91-04 self-survey mask
var v1SurveyMask = []flagLabel{
	{1, 1, "Survey Restarted"},
	{0, 2, "Survey Disabled"},
	{2, 2, "Survey Enabled"},
	{0, 8, "Don't Save Position"},
	{8, 8, "Save Position"},
}

// xa2-00 SV type
var v1SVTypes = []valueLabel{
	{1, "GPS L1C"},
	{2, "GPS L2"},
	{3, "GPS L5"},
	{5, "GLONASS G1"},
	{6, "GLONASS G2"},
	{9, "SBAS"},
	{13, "BeiDou B1"},
	{14, "BeiDou B2i"},
	{15, "BeiDou B2a"},
	{17, "Galileo E1"},
	{18, "Galileo E5a"},
	{19, "Galileo E5b"},
	{20, "Galileo E6"},
	{22, "QZSS L1"},
	{23, "QZSS L2C"},
	{24, "QZSS L5"},
	{26, "IRNSS L5"},
}

// x91-01 constellation bit field
var v1SVTypeBits = []flagLabel{
	{1, 1, "GPS L1C"},
	{2, 2, "GPS L2"},
	{4, 4, "GPS L5"},
	{0x20, 0x20, "GLONASS G1"},
	{0x40, 0x40, "GLONASS G2"},
	{0x100, 0x100, "SBAS"},
	{0x1000, 0x1000, "BeiDou B1"},
	{0x2000, 0x2000, "BeiDou B2i"},
	{0x4000, 0x4000, "BeiDou B2a"},
	{0x10000, 0x10000, "Galileo E1"},
	{0x20000, 0x20000, "Galileo E5a"},
	{0x40000, 0x40000, "Galileo E5b"},
	{0x80000, 0x80000, "Galileo E6"},
	{0x100000, 0x100000, "QZSS L1"},
	{0x200000, 0x200000, "QZSS L2C"},
	{0x400000, 0x400000, "QZSS L5"},
	{0x1000000, 0x1000000, "IRNSS L5"},
}

// x91-03, xa1-00 time base
var v1TimeBases = []valueLabel{
	{0, "GPS"},
	{1, "GLONASS"},
	{2, "BeiDou"},
	{3, "Galileo"},
	{4, "GPS/UTC"},
	{5, "GLONASS/UTC"},
	{6, "BeiDou/UTC"},
	{7, "Galileo/UTC"},
}

// xa1-00 time flags
var v1TimeFlags = []flagLabel{
	{0, 1, "UTC Invalid"},
	{1, 1, "UTC Valid"},
	{0, 2, "Time Invalid"},
	{2, 2, "Time Valid"},
}

// Legacy TSIP tables

// x46 error codes
var errCodes = []flagLabel{
	{1, 1, "No Battery"},
	{0x10, 0x30, "Antenna Open"},
	{0x30, 0x30, "Antenna Short"},
}

// x46, x8f-ac GNSS decoding status
var decodeStatus = []valueLabel{
	{0, "Doing Fixes"},
	{1, "No GPS Time"},
	{2, "Needs Init"},
	{3, "PDOP Too High"},
	{8, "0 Usable Sats"},
	{9, "1 Usable Sat"},
	{10, "2 Usable Sats"},
	{11, "3 Usable Sats"},
	{12, "Chosen Sat Unusable"},
	{16, "TRAIM Rejected"},
	{0xbb, "GPS Time Fix (OD mode)"},
}

// x8f-ac disciplining activity
var discipliningActivity = []valueLabel{
	{0, "Phase Locking"},
	{1, "OSC Warm-up"},
	{2, "Frequency Locking"},
	{3, "Placing PPS"},
	{4, "Init Loop Filter"},
	{5, "Comp OCXO"},
	{6, "Inactive"},
	{7, "Not Used"},
	{8, "Recovery Mode"},
}

// x8f-ac PPS indication
var ppsIndication = []valueLabel{
	{0, "PPS Good"},
	{1, "PPS Bad"},
}

// x8f-a5 packet broadcast mask, byte 0
var broadcastMask0 = []flagLabel{
	{1, 1, "x8f-ab"},
	{4, 4, "x8f-ac"},
	{0x40, 0x40, "Automatic"},
}

// xbb, x8f-ac receiver mode
var recModes = []valueLabel{
	{0, "Autonomous (2D/3D)"},
	{1, "Time Only (1-SV)"},
	{3, "2D"},
	{4, "3D"},
	{5, "DGPS"},
	{6, "2D Clock Hold"},
	{7, "Overdetermined"},
}

// x4b status byte 1
var status1Flags = []flagLabel{
	{2, 2, "RTC Invalid"},
	{8, 8, "No Almanac"},
}

// x4b status byte 2
var status2Flags = []flagLabel{
	{1, 1, "Superpackets"},
	{2, 2, "Superpackets 2"},
}

// x5d satellite health
var svBadFlags = []valueLabel{
	{0, "OK"},
	{1, "Bad Parity"},
	{2, "Bad Health"},
}

// x5d SV type
var svTypes = []valueLabel{
	{0, "GPS"},
	{1, "GLONASS"},
	{2, "BeiDou"},
	{3, "Galileo"},
	{6, "QZSS"},
}

// x5d used flags
var svUsedFlags = []flagLabel{
	{1, 1, "Used in Timing"},
	{2, 2, "Used in Position"},
}

// x4c dynamics code
var dynamicsCodes = []valueLabel{
	{1, "Land"},
	{2, "Sea"},
	{3, "Air"},
	{4, "Static"},
}

// x55 option bytes
var ioPosFlags = []flagLabel{
	{1, 1, "ECEF On"},
	{2, 2, "LLA On"},
	{0, 4, "HAE"},
	{4, 4, "MSL"},
	{0, 0x10, "Single Precision"},
	{0x10, 0x10, "Double Precision"},
}

var ioVelFlags = []flagLabel{
	{1, 1, "ECEF On"},
	{2, 2, "ENU On"},
}

var ioTimingFlags = []flagLabel{
	{1, 1, "Use x8e-a2"},
}

var ioAuxFlags = []flagLabel{
	{0, 1, "x5a Off"},
	{1, 1, "x5a On"},
	{0, 8, "AMU"},
	{8, 8, "dBHz"},
}

// x57 fix source
var fixSourceFlags = []flagLabel{
	{0, 1, "Old Fix"},
	{1, 1, "New Fix"},
}

// x57, x6c fix mode
var fixModes = []valueLabel{
	{0, "No Fix"},
	{1, "Time"},
	{3, "2D Fix"},
	{4, "3D Fix"},
	{5, "OD Fix"},
}

// x5c acquisition flag
var acqFlags = []valueLabel{
	{0, "Never"},
	{1, "Yes"},
	{2, "Search"},
}

// x5c ephemeris flag
var ephemerisFlags = []valueLabel{
	{0, "None"},
	{1, "Decoded"},
	{3, "Decoded/Healthy"},
	{19, "Used"},
	{51, "Used/DGPS"},
}

// x82 DGPS mode
var dgpsModes = []valueLabel{
	{0, "Manual DGPS Off"},
	{1, "Manual DGPS On"},
	{2, "Auto DGPS Off"},
	{3, "Auto DGPS On"},
}

// x8f-20 fix flags
var lfweiFixFlags = []flagLabel{
	{0, 1, "Fix Available"},
	{2, 2, "DGPS"},
	{0, 4, "3D"},
	{4, 4, "2D"},
	{8, 8, "Alt Hold"},
	{0x10, 0x10, "Filtered"},
}

// x6c, x6d fix dimension
var fixDims = []flagLabel{
	{0, 7, "No Fix"},
	{1, 7, "1D/OD Fix"},
	{3, 7, "2D Fix"},
	{4, 7, "3D Fix"},
	{5, 7, "OD Fix"},
	{6, 7, "DGPS"},
	{0, 8, "Auto"},
	{8, 8, "Manual"},
}

// x8f-ab timing flags
var timingFlags = []flagLabel{
	{0, 1, "GPS Time"},
	{1, 1, "UTC Time"},
	{0, 2, "GPS PPS"},
	{2, 2, "UTC PPS"},
	{4, 4, "Time Not Set"},
	{8, 8, "No UTC Info"},
	{0x10, 0x10, "Time From User"},
}

// x8f-ac critical alarms
var criticalAlarms = []flagLabel{
	{1, 1, "ROM Error"},
	{2, 2, "RAM Error"},
	{4, 4, "FPGA Error"},
	{8, 8, "Power Error"},
	{0x10, 0x10, "OSC Error"},
}

// x8f-ac minor alarms
var minorAlarms = []flagLabel{
	{1, 1, "OSC Warning"},
	{2, 2, "Antenna Open"},
	{4, 4, "Antenna Short"},
	{8, 8, "Not Tracking Sats"},
	{0x10, 0x10, "OSC Unlocked"},
	{0x20, 0x20, "Survey in Progress"},
	{0x40, 0x40, "No Stored Position"},
	{0x80, 0x80, "Leap Second Pending"},
	{0x100, 0x100, "Test Mode"},
	{0x200, 0x200, "Position Questionable"},
	{0x400, 0x400, "EEPROM Corrupt"},
	{0x800, 0x800, "Almanac Incomplete"},
	{0x1000, 0x1000, "PPS Generated"},
}
