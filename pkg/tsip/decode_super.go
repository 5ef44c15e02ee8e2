// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Superpacket (x8f) decoders. The sub-id is the first body byte; the
// timing receivers do most of their reporting here.

package tsip

import "fmt"

type superEntry struct {
	min int
	fn  func(*Session, []byte) Result
}

// superTable holds per-sub minimum body lengths. x8f-20 is checked
// exactly in its decoder since two sizes exist in the field.
var superTable = map[byte]superEntry{
	SubCurrentDatum:    {43, decodeX8F15},
	SubLFwEI:           {56, decodeX8F20},
	SubCompactFix:      {29, decodeX8F23},
	SubProductionParam: {19, decodeX8F42},
	SubBroadcastMask:   {5, decodeX8FA5},
	SubSelfSurveyCmd:   {3, decodeX8FA6},
	SubSatSolutions:    {10, decodeX8FA7},
	SubSelfSurveyParam: {11, decodeX8FA9},
	SubPrimaryTiming:   {17, decodeX8FAB},
	SubSupplTiming:     {68, decodeX8FAC},
}

// superIgnored names the x8f sub-ids that are recognized and dropped.
var superIgnored = map[byte]string{
	0x02: "UTC information",
	0x21: "accuracy information",
	0x2a: "fix and channel tracking info type 1",
	0x2b: "fix and channel tracking info type 2",
	0x41: "stored manufacturing operating parameters",
	0x4a: "pps characteristics",
	0x4e: "pps output option",
	0x4f: "pps width",
	0x60: "dr calibration and status",
	0x62: "gps/dr position/velocity",
	0x64: "firmware version and configuration",
	0x6b: "last gyroscope readings",
	0x6d: "last odometer readings",
	0x70: "beacon channel status",
	0x71: "dgps station database",
	0x73: "beacon channel control",
	0x74: "clear beacon database",
	0x75: "fft start",
	0x76: "fft stop",
	0x77: "fft reports",
	0x78: "rtcm reports",
	0x79: "beacon station attributes",
	0x7a: "beacon station attributes report",
	0x7e: "satellite line-of-sight message",
	0x7f: "dgps receiver ram configuration block",
	0x8e: "dgps receiver configuration block",
	0x9a: "differential correction information",
	0xa0: "dac value",
	0xa1: "10 MHz sense",
	0xa2: "utc/gps timing mode",
	0xa3: "oscillator disciplining command",
	0xa4: "test modes",
}

// decodeX8F routes on the sub-id byte.
func decodeX8F(s *Session, body []byte) Result {
	var r Result
	sub := body[0]

	if entry, ok := superTable[sub]; ok {
		if len(body) < entry.min {
			r.addError(shortSubPacket(IDSuperPacket, sub, len(body), entry.min))
			return r
		}
		if sub == SubPrimaryTiming {
			// counts as the periodic time report, no need to poll x41
			s.last41 = s.now()
		}
		return entry.fn(s, body)
	}
	if label, ok := superIgnored[sub]; ok {
		_ = label
		return r
	}
	r.addError(ValidationError{
		Type:    ANOMALY_UNKNOWN_SUBTYPE,
		Message: fmt.Sprintf("unhandled x8f subpacket %02x", sub),
		Details: map[string]interface{}{"sub": sub, "length": len(body)},
	})
	return r
}

// decodeX8F15 handles the current datum report. Diagnostic only; fixes
// are already in the datum the receiver was told to use.
func decodeX8F15(s *Session, body []byte) Result {
	return Result{}
}

// fixFlagsToModeStatus applies the shared x8f-20/x8f-23 fix flag byte:
// bit 0 clear means a fix exists, bit 1 is DGPS, bit 2 picks 2D over 3D.
func fixFlagsToModeStatus(s *Session, fflags byte) {
	s.Fix.Status = StatusUnknown
	s.Fix.Mode = ModeNoFix
	if fflags&0x01 == 0 {
		s.Fix.Status = StatusGPS
		if fflags&0x02 != 0 {
			s.Fix.Status = StatusDGPS
		}
		if fflags&0x04 != 0 {
			s.Fix.Mode = Mode2D
		} else {
			s.Fix.Mode = Mode3D
		}
	}
}

// decodeX8F20 handles Last Fix with Extra Information: a complete
// semicircle-encoded fix in one packet, plus the used-satellite list.
// Exactly 56 bytes, or 64 on the Copernicus.
func decodeX8F20(s *Session, body []byte) Result {
	var r Result
	if len(body) != 56 && len(body) != 64 {
		r.addError(ValidationError{
			Type:    ANOMALY_LENGTH_MISMATCH,
			Message: fmt.Sprintf("x8f-20 packet is %d bytes, expected 56 or 64", len(body)),
			Details: map[string]interface{}{"length": len(body)},
		})
		return r
	}
	ve := beS16(body, 2)
	vn := beS16(body, 4)
	vu := beS16(body, 6)
	towMs := beU32(body, 8)
	lat := beS32(body, 12)
	lon := beU32(body, 16)
	alt := beS32(body, 20) // mm, always HAE
	scaling := body[24]
	fflags := body[27]
	numSV := int(body[28])
	leap := int(body[29])
	week := int(beU16(body, 30))

	tow := float64(towMs) / 1000.0
	r.Mask |= s.epochCheck(tow)

	scale := 0.005
	if scaling&0x01 != 0 {
		scale = 0.02
	}
	// 0x8000 marks an over-range velocity component
	var e, n, u float64
	if vn != -0x8000 {
		n = float64(vn) * scale
	}
	if ve != -0x8000 {
		e = float64(ve) * scale
	}
	if vu != -0x8000 {
		u = float64(vu) * scale
	}
	s.setENUVelocity(e, n, u)

	s.Fix.Lat = float64(lat) * SemiToDeg
	s.Fix.Lon = float64(lon) * SemiToDeg
	if s.Fix.Lon > 180.0 {
		s.Fix.Lon -= 360.0
	}
	s.Fix.AltHAE = float64(alt) * 1e-3

	fixFlagsToModeStatus(s, fflags)

	if leapValid(leap) {
		week = gpsWeekCorrect(week, leap)
	}
	s.setTime(week, tow, leap)

	s.SatsUsed = s.SatsUsed[:0]
	if numSV <= MaxChannels {
		for i := 0; i < numSV; i++ {
			if len(body) < 34+i*2 {
				break
			}
			// bits 5-7 of the PRN byte are junk
			s.SatsUsed = append(s.SatsUsed, int16(body[32+i*2]&0x1f))
		}
	}
	r.Mask |= MaskTime | MaskNTP | MaskLatLon | MaskAltitude | MaskStatus |
		MaskMode | MaskSpeed | MaskTrack | MaskClimb | MaskUsedSats | MaskReportFix
	return r
}

// decodeX8F23 handles the compact fix superpacket: the same semicircle
// fix as x8f-20 without the satellite list. Receiving one settles the
// compact-vs-LFwEI question.
func decodeX8F23(s *Session, body []byte) Result {
	var r Result
	towMs := beU32(body, 1)
	week := int(beU16(body, 5))
	leap := int(body[7])
	fflags := body[8]
	lat := beS32(body, 9)
	lon := beU32(body, 13)
	alt := beS32(body, 17) // mm, always HAE
	ve := beS16(body, 21)
	vn := beS16(body, 23)
	vu := beS16(body, 25)

	tow := float64(towMs) / 1000.0
	r.Mask |= s.epochCheck(tow)
	if leapValid(leap) {
		week = gpsWeekCorrect(week, leap)
	}
	s.setTime(week, tow, leap)

	fixFlagsToModeStatus(s, fflags)

	s.Fix.Lat = float64(lat) * SemiToDeg
	s.Fix.Lon = float64(lon) * SemiToDeg
	if s.Fix.Lon > 180.0 {
		s.Fix.Lon -= 360.0
	}
	s.Fix.AltHAE = float64(alt) * 1e-3

	scale := 0.005
	if fflags&0x20 != 0 {
		scale = 0.02
	}
	s.setENUVelocity(float64(ve)*scale, float64(vn)*scale, float64(vu)*scale)

	s.reqCompact = 0
	r.Mask |= MaskTime | MaskNTP | MaskLatLon | MaskAltitude | MaskStatus |
		MaskMode | MaskSpeed | MaskTrack | MaskClimb | MaskReportFix
	return r
}

// decodeX8F42 handles stored production parameters.
func decodeX8F42(s *Session, body []byte) Result {
	var r Result
	serialPrefix := beU16(body, 3)
	serial := beU32(body, 5)
	s.Subtype1 = fmt.Sprintf("%s sn %x-%x", s.Subtype1, serialPrefix, serial)
	r.Mask |= MaskDevice
	return r
}

// decodeX8FA5 handles the packet broadcast mask report.
func decodeX8FA5(s *Session, body []byte) Result {
	s.broadcastMask0 = beU16(body, 1)
	return Result{}
}

// decodeX8FA6 handles the self-survey command acknowledgement.
func decodeX8FA6(s *Session, body []byte) Result {
	return Result{}
}

// decodeX8FA7 handles Thunderbolt individual satellite solutions. Only
// the combined bias is taken; the per-satellite tail is undocumented
// enough to leave alone. Format byte picks float or integer fields.
func decodeX8FA7(s *Session, body []byte) Result {
	var r Result
	format := body[1]
	switch format {
	case 0: // floating point, seconds
		if len(body) < 14 {
			r.addError(shortSubPacket(IDSuperPacket, SubSatSolutions, len(body), 14))
			return r
		}
		s.Fix.ClockBiasNs = float64(beF32(body, 6)) * 1e9
		s.Fix.ClockDriftNs = float64(beF32(body, 10)) * 1e9
		r.Mask |= MaskClockBias
	case 1: // integer, 0.1 ns and ps/s
		s.Fix.ClockBiasNs = float64(beS16(body, 6)) / 10.0
		s.Fix.ClockDriftNs = float64(beS16(body, 8)) / 1000.0
		r.Mask |= MaskClockBias
	default:
		r.addError(ValidationError{
			Type:    ANOMALY_INVALID_VALUE,
			Message: fmt.Sprintf("x8f-a7 unknown format %d", format),
			Details: map[string]interface{}{"format": format},
		})
	}
	return r
}

// decodeX8FA9 handles the self-survey parameters report.
func decodeX8FA9(s *Session, body []byte) Result {
	return Result{}
}

// decodeX8FAB handles the primary timing superpacket. There is no
// validity flag for the time itself, only test-mode bits; a cycle that
// already resolved time keeps the earlier resolution.
func decodeX8FAB(s *Session, body []byte) Result {
	var r Result
	tow := float64(beU32(body, 1))
	week := int(beU16(body, 5))
	leap := int(beS16(body, 7))
	timeFlag := body[9]
	// the broken-down date in bytes 10-16 loses to week+tow

	if s.timeSetThisEpoch(tow) {
		return r
	}
	if timeFlag&0x14 == 0 {
		// time good, not in test mode
		r.Mask |= s.epochCheck(tow)
		week = gpsWeekCorrect(week, leap)
		s.setTime(week, tow, leap)
		r.Mask |= MaskTime | MaskNTP | MaskLeap
	} else {
		r.Mask |= s.epochCheck(tow)
	}
	return r
}

// decodeX8FAC handles the supplemental timing superpacket: receiver
// mode, disciplining state, alarms, temperature and a double-precision
// position. This is the cycle ender on the SMT 360 family.
func decodeX8FAC(s *Session, body []byte) Result {
	var r Result
	recMode := body[1]
	minorAlarm := beU16(body, 10)
	decodeStat := body[12]
	clkOff := float64(beF32(body, 20)) // ns

	s.Fix.Temperature = float64(beF32(body, 32))
	s.Fix.Lat = beF64(body, 36) * RadToDeg
	s.Fix.Lon = beF64(body, 44) * RadToDeg
	s.Fix.AltHAE = beF64(body, 52) // always HAE on this family

	s.Fix.ClockBiasNs = clkOff

	modeFromDecodeStatus := func(full bool) {
		switch decodeStat {
		case 0x00: // doing fixes
			s.Fix.Mode = Mode3D
		case 0x0b: // only 3 usable sats
			s.Fix.Mode = Mode2D
		case 0x09, 0x0a:
			if full {
				s.Fix.Mode = ModeNoFix
			} else {
				s.Fix.Mode = Mode2D
			}
		default:
			s.Fix.Mode = ModeNoFix
		}
	}
	switch recMode & 7 {
	case 0: // automatic; the mode byte is configuration, not lock
		modeFromDecodeStatus(true)
	case 3, 6: // forced 2D, clock hold 2D
		s.Fix.Mode = Mode2D
	case 1, 7: // single-satellite time, overdetermined clock
		s.Fix.Status = StatusTime
		modeFromDecodeStatus(false)
	case 4: // forced 3D
		s.Fix.Mode = Mode3D
	default:
		s.Fix.Mode = ModeNoFix
	}
	if minorAlarm&0x208 != 0 && recMode&7 == 7 {
		// OD mode with no sats or questionable position: dead reckoning
		s.Fix.Mode = Mode3D
		s.Fix.Status = StatusDR
	}
	if s.Fix.Status != StatusUnknown {
		r.Mask |= MaskStatus
	}
	r.Mask |= MaskLatLon | MaskAltitude | MaskMode | MaskClockBias | MaskReportFix | MaskNTP
	return r
}
