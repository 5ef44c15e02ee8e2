// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

// Fix and satellite-selection decoders, x6c through xbb. Several of
// these packets arrive without mode or status on models that only send
// them during a fix; the previous cycle's solution fills the gap.

package tsip

import "fmt"

// applyFixDimension maps the shared x6c/x6d dimension code onto mode and
// status. Codes 1 and 5 are clock fixes from surveyed-in timing units.
func applyFixDimension(s *Session, dim byte) {
	switch dim & 7 {
	case 1, 5: // clock fix / overdetermined clock
		s.Fix.Status = StatusTime
		s.Fix.Mode = Mode3D
	case 3:
		s.Fix.Mode = Mode2D
	case 4:
		s.Fix.Mode = Mode3D
	case 6: // Acutime DGPS
		s.Fix.Status = StatusDGPS
		s.Fix.Mode = Mode3D
	default: // 0, 2, 7: no fix, or auto with nothing yet
		s.Fix.Mode = ModeNoFix
	}
}

// storeDOPs writes each DOP that sits inside the sanity window and
// reports whether any did.
func storeDOPs(s *Session, pdop, hdop, vdop, tdop float64) ChangeMask {
	var mask ChangeMask
	if dopOK(pdop) {
		s.Fix.PDOP = pdop
		mask |= MaskDOP
	}
	if dopOK(hdop) {
		s.Fix.HDOP = hdop
		mask |= MaskDOP
	}
	if dopOK(vdop) {
		s.Fix.VDOP = vdop
		mask |= MaskDOP
	}
	if dopOK(tdop) {
		s.Fix.TDOP = tdop
		mask |= MaskDOP
	}
	return mask
}

// decodeX6C handles the satellite selection list with DOPs. Count sits
// at byte 17 with the used PRNs behind it.
func decodeX6C(s *Session, body []byte) Result {
	var r Result
	fixdm := body[0]
	pdop := float64(beF32(body, 1))
	hdop := float64(beF32(body, 5))
	vdop := float64(beF32(body, 9))
	tdop := float64(beF32(body, 13))
	count := int(body[17])

	if 18+count > len(body) {
		r.addError(shortPacket(IDSatSelection, len(body), 18+count))
		return r
	}
	r.Mask |= storeDOPs(s, pdop, hdop, vdop, tdop)

	applyFixDimension(s, fixdm)
	if fixdm&8 != 0 {
		// manual, surveyed in
		if count > 0 {
			s.Fix.Status = StatusTime
		} else {
			s.Fix.Status = StatusDR
		}
	}
	if s.Fix.Status > StatusUnknown {
		r.Mask |= MaskStatus
	}
	r.Mask |= MaskMode

	s.SatsUsed = s.SatsUsed[:0]
	for i := 0; i < count; i++ {
		// negative PRN flags an unhealthy satellite in the solution
		s.SatsUsed = append(s.SatsUsed, int16(int8(body[18+i])))
	}
	r.Mask |= MaskUsedSats
	return r
}

// decodeX6D handles the all-in-view satellite selection. The used count
// rides in the top nibble of the dimension byte; PRNs start at byte 17.
func decodeX6D(s *Session, body []byte) Result {
	var r Result
	fixDim := body[0]
	count := int(fixDim>>4) & 0x0f
	pdop := float64(beF32(body, 1))
	hdop := float64(beF32(body, 5))
	vdop := float64(beF32(body, 9))
	tdop := float64(beF32(body, 13))

	if 17+count > len(body) {
		r.addError(shortPacket(IDAllInView, len(body), 17+count))
		return r
	}
	r.Mask |= storeDOPs(s, pdop, hdop, vdop, tdop)

	applyFixDimension(s, fixDim)
	if count <= 0 && s.OldFix.Lon != 0 {
		// fix reported with no satellites, must be dead reckoning
		s.Fix.Status = StatusDR
	}
	if s.Fix.Status > StatusUnknown {
		r.Mask |= MaskStatus
	}
	r.Mask |= MaskMode

	s.SatsUsed = s.SatsUsed[:0]
	for i := 0; i < count; i++ {
		s.SatsUsed = append(s.SatsUsed, int16(int8(body[17+i])))
	}
	// the all-in-view selection closes the reporting cycle on most
	// non-timing models
	r.Mask |= MaskUsedSats | MaskReportFix
	return r
}

// decodeX82 handles the differential fix mode report. Odd modes mean
// DGPS corrections are in the solution.
func decodeX82(s *Session, body []byte) Result {
	var r Result
	mode := body[0]
	if mode&1 == 1 {
		s.Fix.Status = StatusDGPS
		r.Mask |= MaskStatus
	}
	return r
}

// decodeX83 handles the double-precision ECEF fix with clock bias. The
// packet carries no mode; it is only sent during a 2D or 3D fix, so the
// previous cycle's mode stands in, floored at 2D.
func decodeX83(s *Session, body []byte) Result {
	var r Result
	x := beF64(body, 0)
	y := beF64(body, 8)
	z := beF64(body, 16)
	bias := beF64(body, 24) // m
	ftow := float64(beF32(body, 32))

	r.Mask |= s.epochCheck(ftow)
	s.Fix.ECEFX = x
	s.Fix.ECEFY = y
	s.Fix.ECEFZ = z
	s.Fix.ClockBiasNs = 1e9 * bias / CLight
	s.Fix.Time = s.resolveTow(ftow)

	s.Fix.Status = s.OldFix.Status
	if s.OldFix.Mode < Mode2D {
		s.Fix.Mode = Mode2D
	} else {
		s.Fix.Mode = s.OldFix.Mode
	}
	r.Mask |= MaskECEF | MaskTime | MaskNTP | MaskMode | MaskStatus | MaskClockBias
	return r
}

// decodeX84 handles the double-precision LLA fix. Same mode borrowing
// as x83.
func decodeX84(s *Session, body []byte) Result {
	var r Result
	lat := beF64(body, 0) * RadToDeg
	lon := beF64(body, 8) * RadToDeg
	alt := beF64(body, 16)
	bias := beF64(body, 24) // m
	ftow := float64(beF32(body, 32))

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
	s.Fix.Status = s.OldFix.Status
	s.Fix.Mode = s.OldFix.Mode
	r.Mask |= MaskLatLon | MaskAltitude | MaskMode | MaskStatus
	return r
}

// decodeXBB handles the primary receiver configuration report: exactly
// 40 bytes on most models, 43 on the RES SMT 360 family. Diagnostic
// only; the formatter renders the masks.
func decodeXBB(s *Session, body []byte) Result {
	var r Result
	if len(body) != 40 && len(body) != 43 {
		r.addError(ValidationError{
			Type:    ANOMALY_LENGTH_MISMATCH,
			Message: fmt.Sprintf("xbb packet is %d bytes, expected 40 or 43", len(body)),
			Details: map[string]interface{}{"length": len(body)},
		})
	}
	return r
}
