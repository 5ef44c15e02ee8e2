// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import "fmt"

type legacyEntry struct {
	min int
	fn  func(*Session, []byte) Result
}

// legacyTable maps packet ids to their minimum body length and decoder.
// Exact-length types (xbb, x8f-20) re-check inside their decoders.
var legacyTable = map[byte]legacyEntry{
	IDCommandAck:       {1, decodeX13},
	IDVersionInfo:      {1, decodeX1C},
	IDGPSTime:          {10, decodeX41},
	IDPosECEFSingle:    {16, decodeX42},
	IDVelECEF:          {20, decodeX43},
	IDSoftwareVersion:  {10, decodeX45},
	IDHealth:           {2, decodeX46},
	IDSignalLevels:     {1, decodeX47},
	IDPosLLASingle:     {20, decodeX4A},
	IDMachineID:        {3, decodeX4B},
	IDOperatingParams:  {17, decodeX4C},
	IDBiasRate:         {12, decodeX54},
	IDIOOptions:        {4, decodeX55},
	IDVelENU:           {20, decodeX56},
	IDLastFixInfo:      {8, decodeX57},
	IDRawMeasurement:   {25, decodeX5A},
	IDTrackingStatus:   {24, decodeX5C},
	IDGNSSTracking:     {26, decodeX5D},
	IDSatSelection:     {18, decodeX6C},
	IDAllInView:        {17, decodeX6D},
	IDDGPSFixMode:      {1, decodeX82},
	IDPosECEFDouble:    {36, decodeX83},
	IDPosLLADouble:     {36, decodeX84},
	IDSuperPacket:      {1, decodeX8F},
	IDNavConfiguration: {1, decodeXBB},
}

// legacyIgnored names report types that are recognized and dropped:
// almanac, ephemeris, differential-correction and other configuration
// traffic that carries nothing for the navigation solution.
var legacyIgnored = map[byte]string{
	0x1a: "rtcm wrapper",
	0x2e: "gps time set response",
	0x32: "accuracy information",
	0x38: "satellite system data",
	0x40: "almanac data page",
	0x44: "non-overdetermined satellite selection",
	0x48: "gps system message",
	0x49: "almanac health page",
	0x4d: "oscillator offset",
	0x4e: "gps time set response",
	0x4f: "utc parameters",
	0x53: "analog-to-digital readings",
	0x58: "gps system data",
	0x59: "satellite attribute database status",
	0x5b: "satellite ephemeris status",
	0x5e: "additional fix status",
	0x5f: "severe failure notification",
	0x60: "differential gps pseudorange corrections",
	0x61: "differential gps delta pseudorange corrections",
	0x6a: "differential corrections used in the fix",
	0x6e: "synchronized measurements",
	0x6f: "synchronized measurements report",
	0x70: "filter report",
	0x76: "overdetermined mode report",
	0x78: "maximum pdop mask report",
	0x7a: "nmea settings",
	0x7b: "nmea interval and message mask report",
	0x7d: "position fix rate configuration",
	0x85: "differential correction status",
	0x87: "reference station parameters",
	0x88: "mobile differential parameters",
	0x89: "receiver acquisition sensitivity mode",
	0x8b: "qa/qc report",
	0x8d: "average position report",
	0xb0: "pps and event report",
	0xbc: "receiver port configuration",
	0xc1: "gpio standby bit mask",
	0xc2: "sbas sv mask",
}

// Parse dispatches one de-stuffed packet, updates session state and
// returns what changed plus the commands the session wants written.
// TSIPv1 ids route to the v1 dispatcher; the poll scheduler runs after
// every legacy packet.
func (s *Session) Parse(pkt *Packet) Result {
	if pkt.IsV1() {
		return s.ParseV1(pkt.ID, pkt.Body)
	}

	var r Result
	entry, ok := legacyTable[pkt.ID]
	switch {
	case ok && len(pkt.Body) < entry.min:
		r.addError(shortPacket(pkt.ID, len(pkt.Body), entry.min))
	case ok:
		now := s.now()
		switch pkt.ID {
		case IDGPSTime:
			s.last41 = now
		case IDHealth:
			s.last46 = now
		case IDSatSelection, IDAllInView:
			s.last6d = now
		}
		r = entry.fn(s, pkt.Body)
	default:
		if _, known := legacyIgnored[pkt.ID]; !known {
			r.addError(ValidationError{
				Type:    ANOMALY_UNKNOWN_TYPE,
				Message: fmt.Sprintf("unhandled packet type x%02x", pkt.ID),
				Details: map[string]interface{}{"id": pkt.ID, "length": len(pkt.Body)},
			})
		}
	}

	for _, c := range s.schedulePolls() {
		r.addCommand(c)
	}
	return r
}

// schedulePolls requests the reports the receiver has gone quiet on.
// Trimble receivers do not send most reports at fixed intervals; without
// these nudges a session stalls after startup.
func (s *Session) schedulePolls() []Command {
	var cmds []Command
	now := s.now()

	if elapsed(now, s.last41, s.Policy.TimeInterval) {
		// x41 has the week and leap seconds, everything needs those
		cmds = append(cmds, cmdRequestTime())
		s.last41 = now
	}
	if elapsed(now, s.last6d, s.Policy.FixModeInterval) {
		// answered by x44, x6c or x6d, the only DOP sources on some models
		cmds = append(cmds, cmdRequestFixMode())
		s.last6d = now
	}
	if s.Superpkt < SuperpktLFwEI &&
		elapsed(now, s.last48, s.Policy.SysMsgInterval) {
		// superpacket-era receivers dropped x48
		cmds = append(cmds, cmdRequestSystemMessage())
		s.last48 = now
	}
	if elapsed(now, s.last5c, s.Policy.TrackInterval) {
		cmds = append(cmds, cmdRequestTracking())
		s.last5c = now
	}
	if elapsed(now, s.last46, s.Policy.HealthInterval) {
		cmds = append(cmds, cmdRequestHealth())
		s.last46 = now
	}
	if s.reqCompact > 0 && elapsed(now, s.reqCompact, s.Policy.CompactInterval) {
		// compact superpacket request went unanswered, use LFwEI instead
		s.reqCompact = 0
		cmds = append(cmds, cmdSetLFwEI(true))
	}
	return cmds
}
