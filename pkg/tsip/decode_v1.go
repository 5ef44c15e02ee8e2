// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"math"
	"time"
)

// Payload offsets below count from the sub-id byte, matching the body
// slice the dispatcher validated: header is sub(1)+length(2)+mode(1), so
// the first payload byte is at offset 4.

// decodeX9000 handles the protocol version report. The receiver states
// its NMEA and TSIP protocol revisions; nothing else in the session needs
// them, so they only seed the version string when nothing better has.
func decodeX9000(s *Session, body []byte) Result {
	var r Result
	nmeaMajor := beU8(body, 4)
	nmeaMinor := beU8(body, 5)
	tsipVer := beU8(body, 6)
	if s.Subtype1 == "" {
		s.Subtype1 = fmt.Sprintf("NMEA %d.%d TSIP %d", nmeaMajor, nmeaMinor, tsipVer)
		r.Mask |= MaskDevice
	}
	return r
}

// decodeX9001 handles receiver version information, the response to the
// TSIPv1 probe. The hardware id doubles as the model-identified signal
// for the rest of the session.
func decodeX9001(s *Session, body []byte) Result {
	var r Result
	major := beU8(body, 4)
	minor := beU8(body, 5)
	build := beU8(body, 6)
	month := beU8(body, 7)
	day := beU8(body, 8)
	year := beU16(body, 9)
	hwID := beU16(body, 11)
	nameLen := int(beU8(body, 13))

	s.HardwareCode = int(hwID)

	// RES720 reports 27; clamp against both the field limit and the body
	if nameLen > 40 {
		nameLen = 40
	}
	if nameLen > len(body)-14 {
		nameLen = len(body) - 14
	}
	name := string(body[14 : 14+nameLen])
	s.Subtype = fmt.Sprintf("fw %d.%d %d %02d/%02d/%04d %s",
		major, minor, build, year, day, month, name)
	r.Mask |= MaskDevice
	return r
}

// decodeX9100 handles the port configuration report. Settings are
// surfaced through the formatter only.
func decodeX9100(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9101 handles the GNSS configuration report: constellation mask,
// elevation/signal/PDOP masks, fix rate, antenna cable delay.
func decodeX9101(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9102 handles the NVS configuration status report.
func decodeX9102(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9103 handles the timing configuration report: time base, PPS
// base, PPS mask, width and offset.
func decodeX9103(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9104 handles the self-survey configuration report.
func decodeX9104(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9105 handles the periodic message mask report.
func decodeX9105(s *Session, body []byte) Result {
	return Result{}
}

// decodeX9201 reports the cause of the last receiver reset.
func decodeX9201(s *Session, body []byte) Result {
	var r Result
	if len(body) > 6 {
		cause := beU8(body, 6)
		r.addError(ValidationError{
			Type:    ANOMALY_INVALID_VALUE,
			Message: fmt.Sprintf("receiver reset, cause %s", lookupValue(v1ResetCauses, uint32(cause))),
			Details: map[string]interface{}{"cause": cause},
		})
	}
	return r
}

// decodeX9300 handles production information: serial number, build date
// and machine id. The printed serial does not always match the reported
// one; the reported one wins here.
func decodeX9300(s *Session, body []byte) Result {
	var r Result
	serial := beU32(body, 5)
	day := beU8(body, 25)
	month := beU8(body, 26)
	year := beU16(body, 27)
	machineID := beU16(body, 30)

	s.Subtype1 = fmt.Sprintf("hw %d %02d/%02d/%04d sn %x",
		machineID, day, month, year, serial)
	r.Mask |= MaskDevice
	return r
}

// decodeXA000 handles firmware upload progress and command ack/nak.
// Length 3 is a bare command echo, length 8 an ack with status and frame.
func decodeXA000(s *Session, body []byte) Result {
	var r Result
	length := int(beU16(body, 1))
	switch length {
	case 3:
		// bare command echo, payload byte at 4
	case 8:
		command := beU8(body, 6)
		status := beU8(body, 7)
		if status != 0 {
			r.addError(ValidationError{
				Type:    ANOMALY_REJECTED,
				Message: fmt.Sprintf("firmware upload command %d failed, status %d", command, status),
				Details: map[string]interface{}{"command": command, "status": status, "frame": beU16(body, 8)},
			})
		}
	default:
		r.addError(ValidationError{
			Type:    ANOMALY_LENGTH_MISMATCH,
			Message: fmt.Sprintf("xa0-00 length %d, want 3 or 8", length),
			Details: map[string]interface{}{"length": length},
		})
	}
	return r
}

// decodeXA100 handles the timing information report, the only message a
// v1 receiver sends unconfigured. Time arrives as a civil date in UTC
// plus the GPS-UTC offset. It opens each epoch, so fix rotation hangs off
// its tow.
func decodeXA100(s *Session, body []byte) Result {
	var r Result
	tow := beU32(body, 4)
	week := int(beU16(body, 8))
	hour := int(beU8(body, 10))
	minute := int(beU8(body, 11))
	sec := int(beU8(body, 12))
	month := int(beU8(body, 13))
	day := int(beU8(body, 14))
	year := int(beU16(body, 15))
	flags := beU8(body, 19)
	utcOff := int(beS16(body, 20))

	r.Mask |= s.epochCheck(float64(tow))
	s.gpsWeek = week
	s.Fix.Week = week
	if leapValid(utcOff) {
		s.Fix.Leap = utcOff
	}
	// civil date is GPS time, back the offset out for UTC
	s.Fix.Time = time.Date(year, time.Month(month), day, hour, minute, sec,
		0, time.UTC).Add(-time.Duration(utcOff) * time.Second)
	s.gotTow = true
	s.timeValid = true

	if flags&0x02 != 0 {
		r.Mask |= MaskTime
		if flags&0x01 != 0 {
			// UTC offset applied by the receiver, safe for time service
			r.Mask |= MaskNTP
		}
	}
	if s.HardwareCode == 0 {
		r.addCommand(v1QueryReceiverVersion())
	}
	return r
}

// decodeXA102 handles the frequency information report. Only the
// temperature feeds the snapshot; DAC and holdover numbers are for
// disciplined-oscillator tuning, outside this session's concerns. Some
// firmware truncates the packet right before the temperature field.
func decodeXA102(s *Session, body []byte) Result {
	if len(body) >= 21 {
		s.Fix.Temperature = float64(beF32(body, 17))
	}
	return Result{}
}

// decodeXA111 handles the position information report. The position mask
// selects LLA or ECEF for the triple, HAE or MSL for altitude, and ENU or
// ECEF for velocity; fix type sets mode but never status.
func decodeXA111(s *Session, body []byte) Result {
	var r Result
	pmask := beU8(body, 4)
	ftype := beU8(body, 5)
	p1 := beF64(body, 6)
	p2 := beF64(body, 14)
	p3 := beF64(body, 22)
	v1 := float64(beF32(body, 30))
	v2 := float64(beF32(body, 34))
	v3 := float64(beF32(body, 38))
	pdop := float64(beF32(body, 42))

	if dopOK(pdop) {
		s.Fix.PDOP = pdop
		r.Mask |= MaskDOP
	}
	s.Fix.EPH = float64(beF32(body, 46))
	s.Fix.EPV = float64(beF32(body, 50))

	if pmask&0x02 == 0 {
		s.Fix.Lat = p1
		s.Fix.Lon = p2
		if pmask&0x04 == 0 {
			s.Fix.AltHAE = p3
		} else {
			s.Fix.AltMSL = p3
		}
		r.Mask |= MaskLatLon | MaskAltitude
	} else {
		s.Fix.ECEFX = p1
		s.Fix.ECEFY = p2
		s.Fix.ECEFZ = p3
		r.Mask |= MaskECEF
	}
	if pmask&0x01 == 0 {
		if pmask&0x08 == 0 {
			s.setENUVelocity(v1, v2, v3)
			r.Mask |= MaskSpeed | MaskTrack | MaskClimb
		} else {
			s.Fix.ECEFVX = v1
			s.Fix.ECEFVY = v2
			s.Fix.ECEFVZ = v3
			r.Mask |= MaskECEF
		}
	}
	switch ftype {
	case 1:
		s.Fix.Mode = Mode2D
	case 2:
		s.Fix.Mode = Mode3D
	default:
		s.Fix.Mode = ModeNoFix
	}
	// status is left for xa3-00/xa3-11
	r.Mask |= MaskMode | MaskDOP
	return r
}

// decodeXA200 handles one satellite information report. The series is
// 1-indexed with no count, so a cycle is detected when the message number
// wraps back to 1, and the previous cycle's length stands in for the
// visible count. The skyview pushes from here only when no xa3-11 cycle
// ender has been heard near this tow.
func decodeXA200(s *Session, body []byte) Result {
	var r Result
	msgnum := int(beU8(body, 4))
	svtype := beU8(body, 5)
	prn := beU8(body, 6)
	az := float64(beF32(body, 7))
	el := float64(beF32(body, 11))
	snr := float64(beF32(body, 15))
	flags := beU32(body, 19)
	tow := beU32(body, 23) // tow of measurement, not current tow

	if msgnum < 1 {
		r.addError(ValidationError{
			Type:    ANOMALY_SAT_INDEX,
			Message: "xa2-00 message number 0, series is 1-indexed",
			Details: map[string]interface{}{"msgnum": msgnum},
		})
		return r
	}
	if msgnum == 1 {
		s.Skyview.clear()
		s.Skyview.Visible = s.lastChanSeen
	}
	s.lastChanSeen = msgnum
	s.lastA200 = int64(tow)

	gnssid, sigid := GnssIDFromSVType(svtype)
	sat := Satellite{
		PRN:     int16(prn),
		GnssID:  gnssid,
		SvID:    prn,
		SigID:   sigid,
		SNR:     snr,
		Tracked: true,
		Healthy: true,
	}
	if flags&0x01 != 0 {
		if math.Abs(el) <= 90.0 {
			sat.Elevation = el
		}
		if az >= 0.0 && az < 360.0 {
			sat.Azimuth = az
		}
	}
	if flags&0x06 != 0 {
		sat.Used = true
	}
	idx := msgnum - 1
	if idx >= MaxChannels {
		r.addError(ValidationError{
			Type:    ANOMALY_SAT_INDEX,
			Message: fmt.Sprintf("xa2-00 message number %d exceeds skyview capacity", msgnum),
			Details: map[string]interface{}{"msgnum": msgnum},
		})
		return r
	}
	sat.Seen = true
	s.Skyview.Sats[idx] = sat

	if msgnum >= s.Skyview.Visible {
		// probably the last of the series; if the cycle ender has gone
		// missing for 10 seconds, push the skyview from here
		if absInt64(s.lastA311-s.lastA200) > 10 {
			r.Mask |= MaskSkyview
			s.lastA200 = 0
		}
	}
	return r
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// decodeXA300 handles the system alarms report. Major alarm bit 0 means
// no satellites are being tracked, which on a surveyed-in timing receiver
// is dead reckoning off the stored position.
func decodeXA300(s *Session, body []byte) Result {
	var r Result
	minor := beU32(body, 4)
	major := beU32(body, 12)

	if major&0x01 != 0 {
		s.Fix.Status = StatusDR
	} else {
		s.Fix.Status = StatusGPS
	}
	r.Mask |= MaskStatus

	if major&0x80 != 0 {
		r.addError(ValidationError{
			Type:    ANOMALY_INVALID_VALUE,
			Message: "receiver reports jamming",
			Details: map[string]interface{}{"major": major, "minor": minor},
		})
	} else if major&0x40 != 0 {
		r.addError(ValidationError{
			Type:    ANOMALY_INVALID_VALUE,
			Message: "receiver reports spoofing or multipath",
			Details: map[string]interface{}{"major": major, "minor": minor},
		})
	}
	return r
}

// decodeXA311 handles the receiver status report, the usual cycle ender.
// It carries no tow, so satellite-push coordination borrows the last
// xa2-00 tow. Decode status maps onto mode and status in two passes the
// way the receiver documents it, with a PDOP backstop.
func decodeXA311(s *Session, body []byte) Result {
	var r Result
	recStatus := beU8(body, 5)
	pdop := float64(beF32(body, 7))
	hdop := float64(beF32(body, 11))
	vdop := float64(beF32(body, 15))
	tdop := float64(beF32(body, 19))

	s.Fix.Temperature = float64(beF32(body, 23))
	r.Mask |= storeDOPs(s, pdop, hdop, vdop, tdop)

	s.lastA311 = s.lastA200
	if s.lastA200 > 0 {
		// reports arrive in numerical order, so the satellite series is
		// complete; push any lingering skyview
		s.lastA200 = 0
		r.Mask |= MaskSkyview
	}
	r.Mask |= MaskReportFix

	switch recStatus {
	case 0:
		s.Fix.Mode = Mode2D
		r.Mask |= MaskMode
	case 1:
		s.Fix.Mode = Mode3D
		r.Mask |= MaskMode
	case 4:
		s.Fix.Status = StatusTime
		r.Mask |= MaskStatus
	}
	switch recStatus {
	case 0, 4, 5, 6:
		// fixing, or running on one to three satellites
		s.Fix.Status = StatusGPS
		r.Mask |= MaskStatus
	case 1, 2, 3:
		// no time, PDOP too high, or no satellites
		s.Fix.Status = StatusUnknown
		r.Mask |= MaskStatus
	case 255:
		s.Fix.Mode = Mode3D
		s.Fix.Status = StatusTime
		r.Mask |= MaskMode | MaskStatus
	}
	if pdop > 10.0 {
		s.Fix.Status = StatusDR
		r.Mask |= MaskStatus
	}
	return r
}

// decodeXA321 handles the error report. Probes for legacy x1c-03 and
// x35-32 land here on v1-only hardware; those rejects are routine.
func decodeXA321(s *Session, body []byte) Result {
	var r Result
	refID := beU8(body, 4)
	refSub := beU8(body, 5)
	code := beU8(body, 6)
	r.addError(ValidationError{
		Type:    ANOMALY_REJECTED,
		Message: fmt.Sprintf("receiver rejected x%02x-%02x: %s", refID, refSub, lookupValue(v1ErrorCodes, uint32(code))),
		Details: map[string]interface{}{"id": refID, "sub": refSub, "code": code},
	})
	return r
}

// decodeXD000 handles the debug output type report.
func decodeXD000(s *Session, body []byte) Result {
	return Result{}
}

// decodeXD001 handles the debug configuration report.
func decodeXD001(s *Session, body []byte) Result {
	return Result{}
}
