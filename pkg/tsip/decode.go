// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Legacy report decoders, x13 through x5d. The dispatcher has already
// checked the per-type minimum length; decoders only re-check counts
// that move the true length past the minimum.

package tsip

import (
	"fmt"
	"math"
)

// decodeX13 handles the command-failure report. The receiver names the
// packet it could not parse; a rejected compact-superpacket request gets
// the LFwEI superpacket enabled as the fallback.
func decodeX13(s *Session, body []byte) Result {
	var r Result
	failed := body[0]
	var data0 byte
	if len(body) >= 2 {
		data0 = body[1]
	}
	r.addError(ValidationError{
		Type:    ANOMALY_REJECTED,
		Message: fmt.Sprintf("receiver rejected request x%02x %02x", failed, data0),
		Details: map[string]interface{}{"id": failed, "data0": data0},
	})
	if failed == cmdSuperPacket && data0 == SubCompactFix {
		// no compact fix on this model, fall back to x8f-20
		r.addCommand(cmdSetLFwEI(true))
	}
	return r
}

// decodeX1C handles version reports. Sub 81 carries firmware, sub 83
// hardware plus the code that picks the configuration batch. Either way
// the stored production parameters get requested afterwards.
func decodeX1C(s *Session, body []byte) Result {
	var r Result
	sub := body[0]
	switch sub {
	case 0x81:
		if len(body) < 10 {
			r.addError(shortSubPacket(IDVersionInfo, sub, len(body), 10))
			return r
		}
		r.merge(decodeX1C81(s, body))
	case 0x83:
		if len(body) < 13 {
			r.addError(shortSubPacket(IDVersionInfo, sub, len(body), 13))
			return r
		}
		r.merge(decodeX1C83(s, body))
	default:
		r.addError(ValidationError{
			Type:    ANOMALY_UNKNOWN_SUBTYPE,
			Message: fmt.Sprintf("unhandled x1c subpacket %02x", sub),
			Details: map[string]interface{}{"sub": sub},
		})
	}
	r.addCommand(cmdRequestProductionParams())
	return r
}

func decodeX1C81(s *Session, body []byte) Result {
	var r Result
	maj := body[2]
	min := body[3]
	build := body[4]
	bmon := body[5]
	bday := body[6]
	byr := beU16(body, 7)
	plen := int(body[9])
	if plen > 40 {
		plen = 40
	}
	if plen > len(body)-10 {
		plen = len(body) - 10
	}
	name := string(body[10 : 10+plen])
	s.Subtype = fmt.Sprintf("fw %d.%d %d %02d/%02d/%04d %s",
		min, maj, build, bmon, bday, byr, name)
	r.Mask |= MaskDevice
	if s.Subtype1 == "" {
		r.addCommand(cmdRequestHardwareVersion())
	}
	return r
}

func decodeX1C83(s *Session, body []byte) Result {
	var r Result
	serial := beU32(body, 1)
	bday := body[5]
	bmon := body[6]
	byr := beU16(body, 7)
	bhour := body[9]
	code := int(beU16(body, 10))
	nlen := int(body[12])
	if nlen > 40 {
		nlen = 40
	}
	if nlen > len(body)-13 {
		nlen = len(body) - 13
	}
	name := string(body[13 : 13+nlen])
	s.Subtype1 = fmt.Sprintf("hw %02d/%02d/%04d %02d %04d %s sn %x",
		bmon, bday, byr, bhour, code, name, serial)
	r.Mask |= MaskDevice
	for _, c := range s.configureForHardware(code) {
		r.addCommand(c)
	}
	return r
}

// decodeX41 handles the GPS time report. This is current receiver time,
// not the time of a fix, so the cycle rotates without touching the
// fix-time epoch tracking.
func decodeX41(s *Session, body []byte) Result {
	var r Result
	ftow := beF32(body, 0)
	week := int(beS16(body, 4)) // signed on the wire
	fleap := beF32(body, 6)     // fractional, firmware quirk

	if ftow >= 0 && fleap > 10.0 {
		leap := int(math.Round(float64(fleap)))
		week = gpsWeekCorrect(week, leap)
		s.rotateFix()
		s.setTime(week, float64(ftow), leap)
		r.Mask |= MaskTime | MaskLeap | MaskNTP | MaskClear
	}
	return r
}

// decodeX42 handles the single-precision ECEF position fix.
func decodeX42(s *Session, body []byte) Result {
	var r Result
	ftow := float64(beF32(body, 12))
	s.Fix.ECEFX = float64(beF32(body, 0))
	s.Fix.ECEFY = float64(beF32(body, 4))
	s.Fix.ECEFZ = float64(beF32(body, 8))
	r.Mask |= s.epochCheck(ftow)
	s.Fix.Time = s.resolveTow(ftow)
	r.Mask |= MaskECEF | MaskTime | MaskNTP
	return r
}

// decodeX43 handles the ECEF velocity report.
func decodeX43(s *Session, body []byte) Result {
	var r Result
	ftow := float64(beF32(body, 16))
	s.Fix.ECEFVX = float64(beF32(body, 0))
	s.Fix.ECEFVY = float64(beF32(body, 4))
	s.Fix.ECEFVZ = float64(beF32(body, 8))
	biasRate := float64(beF32(body, 12)) // m/s
	r.Mask |= s.epochCheck(ftow)
	s.Fix.ClockDriftNs = 1e9 * biasRate / CLight
	s.Fix.Time = s.resolveTow(ftow)
	r.Mask |= MaskSpeed | MaskTime | MaskNTP
	return r
}

// decodeX45 handles the software version report and kicks off the
// identification chain: IO options, then the x1c version requests.
func decodeX45(s *Session, body []byte) Result {
	var r Result
	s.Subtype = fmt.Sprintf("sw %d.%d %02d/%02d/%04d hw %d.%d %02d/%02d/%04d",
		body[0], body[1], body[2], body[3], int(body[4])+1900,
		body[5], body[6], body[7], body[8], int(body[9])+2000)
	r.Mask |= MaskDevice
	r.addCommand(cmdRequestIOOptions())
	r.addCommand(cmdRequestFirmwareVersion())
	return r
}

// decodeX46 handles the receiver health report. The status code implies
// a fix mode; "doing fixes" is ambiguous between 2D and 3D so the
// previous cycle breaks the tie.
func decodeX46(s *Session, body []byte) Result {
	var r Result
	status := body[0]
	ec := body[1]

	switch status {
	case 0: // doing fixes, 2D or 3D unknown
		if s.OldFix.Mode <= Mode2D {
			s.Fix.Mode = Mode2D
		} else {
			s.Fix.Mode = Mode3D
		}
	case 9, 10, 11: // 1 to 3 usable sats
		s.Fix.Mode = Mode2D
	case 1, 2, 3, 8, 12, 16:
		s.Fix.Mode = ModeNoFix
	case 0xbb:
		// OD-mode time fix, always on after survey, says nothing
	}
	if s.Fix.Mode != ModeUnknown {
		r.Mask |= MaskMode
	}
	_ = ec // antenna fault bits, surfaced by the formatter only
	if s.Fix.Status != StatusUnknown {
		r.Mask |= MaskStatus
	}
	return r
}

// decodeX47 handles the signal-level list: count then PRN/level pairs.
// Levels fold into skyview slots already populated by x5c/x5d.
func decodeX47(s *Session, body []byte) Result {
	var r Result
	count := int(body[0])
	if 5*count+1 > len(body) {
		r.addError(shortPacket(IDSignalLevels, len(body), 5*count+1))
		return r
	}
	for i := 0; i < count; i++ {
		prn := int16(body[5*i+1])
		snr := float64(beF32(body, 5*i+2))
		if snr < 0 {
			snr = 0
		}
		for j := range s.Skyview.Sats {
			if s.Skyview.Sats[j].PRN == prn {
				s.Skyview.Sats[j].SNR = snr
				break
			}
		}
	}
	r.Mask |= MaskSkyview
	return r
}

// decodeX4A handles the single-precision LLA fix.
func decodeX4A(s *Session, body []byte) Result {
	var r Result
	lat := float64(beF32(body, 0)) * RadToDeg
	lon := float64(beF32(body, 4)) * RadToDeg
	alt := float64(beF32(body, 8))
	bias := float64(beF32(body, 12)) // m
	ftow := float64(beF32(body, 16))

	s.Fix.Lat = lat
	s.Fix.Lon = lon
	if s.AltIsMSL {
		s.Fix.AltMSL = alt
	} else {
		s.Fix.AltHAE = alt
	}
	s.Fix.ClockBiasNs = 1e9 * bias / CLight
	if s.timeValid {
		r.Mask |= s.epochCheck(ftow)
		s.Fix.Time = s.resolveTow(ftow)
		r.Mask |= MaskTime | MaskNTP
	}
	r.Mask |= MaskLatLon | MaskAltitude
	return r
}

// decodeX4B handles the machine id and status report. Status byte 2 is
// the superpacket support level; a change of level reconfigures which
// fix superpacket gets used.
func decodeX4B(s *Session, body []byte) Result {
	var r Result
	s.MachineID = body[0]
	level := int(body[2])

	if s.Subtype == "" {
		var name string
		switch s.MachineID {
		case 1:
			name = " SMT 360"
			r.addCommand(cmdRequestFirmwareVersion())
		case 0x32:
			name = " Acutime 360"
		case 0x5a:
			name = " Lassen iQ"
			r.addCommand(cmdRequestFirmwareVersion())
		case 0x61:
			name = " Acutime 2000"
		case 0x62:
			name = " ACE UTC"
		case 0x96:
			name = " Copernicus, Thunderbolt E"
			r.addCommand(cmdRequestFirmwareVersion())
		}
		s.Subtype = fmt.Sprintf("Machine ID x%x(%s)", s.MachineID, name)
		r.Mask |= MaskDevice
	}

	if level != s.Superpkt {
		s.Superpkt = level
		switch level {
		case SuperpktLFwEI:
			// x8f-20 capable: route position through the superpacket
			io := []byte{cmdIOOptionsReq, ioPos8F20 | ioPosDP | ioPosECEF, 0x00, 0x00, ioAuxDBHz}
			r.addCommand(Command{Label: "io options set", Body: io})
		case SuperpktTiming:
			r.addCommand(cmdRequestBroadcastMask())
		}
	}
	return r
}

// decodeX4C handles the operating parameters report. Diagnostic only.
func decodeX4C(s *Session, body []byte) Result {
	return Result{}
}

// decodeX54 handles the bias and bias-rate report.
func decodeX54(s *Session, body []byte) Result {
	var r Result
	bias := float64(beF32(body, 0))
	rate := float64(beF32(body, 4))
	ftow := float64(beF32(body, 8))

	r.Mask |= s.epochCheck(ftow)
	s.Fix.ClockBiasNs = 1e9 * bias / CLight
	s.Fix.ClockDriftNs = 1e9 * rate / CLight
	s.Fix.Time = s.resolveTow(ftow)
	r.Mask |= MaskTime | MaskClockBias | MaskNTP
	return r
}

// decodeX55 handles the IO options report. The position byte says
// whether altitude reports are geoid or ellipsoid referenced; the
// superpacket bit triggers the switch to the compact fix packet.
func decodeX55(s *Session, body []byte) Result {
	var r Result
	pos := body[0]
	s.AltIsMSL = pos&ioPosMSL != 0

	if pos&ioPos8F20 != 0 {
		// superpackets available: prefer compact (x8f-23) over LFwEI
		r.addCommand(cmdSetLFwEI(false))
		r.addCommand(cmdRequestCompactFix())
		s.reqCompact = s.now()
	}
	return r
}

// decodeX56 handles the ENU velocity fix.
func decodeX56(s *Session, body []byte) Result {
	var r Result
	ve := float64(beF32(body, 0))
	vn := float64(beF32(body, 4))
	vu := float64(beF32(body, 8))
	biasRate := float64(beF32(body, 12))
	ftow := float64(beF32(body, 16))

	r.Mask |= s.epochCheck(ftow)
	s.setENUVelocity(ve, vn, vu)
	s.Fix.ClockDriftNs = 1e9 * biasRate / CLight
	s.Fix.Time = s.resolveTow(ftow)
	r.Mask |= MaskSpeed | MaskTrack | MaskClimb | MaskTime | MaskNTP
	return r
}

// decodeX57 handles the last-fix information report. Only a "good
// current fix" source updates time; saved and oscillator fixes are
// history, not navigation.
func decodeX57(s *Session, body []byte) Result {
	var r Result
	source := body[0]
	ftow := float64(beF32(body, 2))
	week := int(beU16(body, 6))

	if source == 0x01 {
		week = gpsWeekCorrect(week, s.Fix.Leap)
		r.Mask |= s.epochCheck(ftow)
		s.setTime(week, ftow, s.Fix.Leap)
		r.Mask |= MaskTime | MaskNTP
	}
	return r
}

// decodeX5A dumps raw measurement data. Without pseudoranges there is
// nothing navigable here; the formatter shows it, the fix ignores it.
func decodeX5A(s *Session, body []byte) Result {
	return Result{}
}

// decodeX5C handles satellite tracking status from GPS-only receivers.
// The channel number drives cycle detection; the ephemeris flag carries
// health, used and DGPS-corrected bits.
func decodeX5C(s *Session, body []byte) Result {
	var r Result
	prn := int16(body[0])
	chanIdx := int(body[1] >> 3) // low 3 bits reserved
	eflag := body[3]
	snr := float64(beF32(body, 4))
	el := float64(beF32(body, 12)) * RadToDeg
	az := float64(beF32(body, 16)) * RadToDeg

	sat := Satellite{
		PRN:       prn,
		SNR:       snr,
		Elevation: el,
		Azimuth:   az,
		Tracked:   true,
	}
	gs := GnssIDFromPRN(0, prn)
	sat.GnssID = gs.GnssID
	sat.SvID = gs.SvID
	if eflag&2 != 0 {
		sat.Healthy = true
	}
	if eflag&0x10 != 0 {
		sat.Used = true
		if eflag == 51 {
			s.Fix.Status = StatusDGPS
			r.Mask |= MaskStatus
		}
	}
	// skyview time is not fix time; the epoch tracker never sees it
	r.Mask |= s.skyviewCycle(chanIdx, sat)
	if chanIdx >= MaxChannels {
		r.addError(ValidationError{
			Type:    ANOMALY_SAT_INDEX,
			Message: fmt.Sprintf("x5c channel %d beyond skyview", chanIdx),
			Details: map[string]interface{}{"channel": chanIdx},
		})
	}
	return r
}

// decodeX5D handles multi-GNSS satellite tracking status. Same cycle
// handling as x5c plus a constellation code and explicit used/health
// bytes.
func decodeX5D(s *Session, body []byte) Result {
	var r Result
	prn := int16(body[0])
	chanIdx := int(body[1])
	used := body[3]
	snr := float64(beF32(body, 4))
	el := float64(beF32(body, 12)) * RadToDeg
	az := float64(beF32(body, 16)) * RadToDeg
	badData := body[22]
	svtype := body[25]

	sat := Satellite{
		PRN:       prn,
		SNR:       snr,
		Elevation: el,
		Azimuth:   az,
		Used:      used != 0,
		Healthy:   badData == 0,
		Tracked:   true,
	}
	gs := GnssIDFromPRN(svtype, prn)
	sat.GnssID = gs.GnssID
	sat.SvID = gs.SvID
	r.Mask |= s.skyviewCycle(chanIdx, sat)
	if chanIdx >= MaxChannels {
		r.addError(ValidationError{
			Type:    ANOMALY_SAT_INDEX,
			Message: fmt.Sprintf("x5d channel %d beyond skyview", chanIdx),
			Details: map[string]interface{}{"channel": chanIdx},
		})
	}
	return r
}
