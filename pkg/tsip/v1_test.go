// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"strings"
	"testing"
	"time"
)

// v1Body builds a dispatch-ready TSIPv1 body: everything v1Frame emits
// except the leading packet id, which travels in the legacy framing.
func v1Body(id, sub, mode uint8, payload []byte) []byte {
	return v1Frame(id, sub, mode, payload)[1:]
}

// ============================================================
// Envelope Tests
// ============================================================

func TestParseV1_ShortBody(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1PVT, []byte{0x00, 0x00})
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SHORT_PACKET {
		t.Errorf("expected a short packet error, got %v", r.Errors)
	}
}

func TestParseV1_TruncatedBody(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := v1Body(IDv1PVT, 0x00, V1ModeReport, make([]byte, 30))
	r := s.ParseV1(IDv1PVT, body[:len(body)-1])
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_LENGTH_MISMATCH {
		t.Errorf("expected a length mismatch, got %v", r.Errors)
	}
}

func TestParseV1_ChecksumMismatch(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := v1Body(IDv1PVT, 0x00, V1ModeReport, make([]byte, 30))
	body[10] ^= 0x01
	r := s.ParseV1(IDv1PVT, body)
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_CHECKSUM {
		t.Errorf("expected a checksum error, got %v", r.Errors)
	}
}

func TestParseV1_QueryEchoIsSilent(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1Version, v1Body(IDv1Version, 0x01, V1ModeQuery, nil))
	if len(r.Errors) != 0 {
		t.Errorf("echoed queries carry no state: %v", r.Errors)
	}
	if s.Subtype1 != "" {
		t.Errorf("echo must not decode: %q", s.Subtype1)
	}
}

func TestParseV1_UnknownSubtype(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x55, V1ModeReport, []byte{0}))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_UNKNOWN_SUBTYPE {
		t.Errorf("expected an unknown subtype error, got %v", r.Errors)
	}
}

func TestParseV1_IgnoredSubtype(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1Debug, v1Body(IDv1Debug, 0x40, V1ModeReport, []byte{0xde, 0xad}))
	if len(r.Errors) != 0 {
		t.Errorf("debug dumps are recognized and dropped: %v", r.Errors)
	}
}

func TestParseV1_PortConfigReport(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := v1Body(IDv1Config, 0x00, V1ModeReport, make([]byte, 15))
	if r := s.ParseV1(IDv1Config, body); len(r.Errors) != 0 {
		t.Errorf("well-formed x91-00: %v", r.Errors)
	}

	corrupt := append([]byte(nil), body...)
	corrupt[8] ^= 0x20
	r := s.ParseV1(IDv1Config, corrupt)
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_CHECKSUM {
		t.Errorf("corrupt x91-00: %v", r.Errors)
	}
}

func TestParseV1_ShortSubPacket(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x00, V1ModeReport, make([]byte, 5)))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SHORT_PACKET {
		t.Errorf("expected a short subpacket error, got %v", r.Errors)
	}
	if !strings.Contains(r.Errors[0].Message, "xa1-00") {
		t.Errorf("error should name the subtype: %v", r.Errors[0].Message)
	}
}

// ============================================================
// Query Sequencer Tests
// ============================================================

var v1StartupQueries = []string{
	"protocol version query",
	"receiver version query",
	"port configuration query",
	"gnss configuration query",
	"timing configuration query",
	"self-survey configuration query",
	"periodic message set",
	"production info query",
}

func TestV1Sequencer_Cadence(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := v1Body(IDv1Debug, 0x00, V1ModeReport, []byte{0})

	var got []string
	for i := 1; i <= 40; i++ {
		r := s.ParseV1(IDv1Debug, body)
		if i%4 != 0 && len(r.Commands) != 0 {
			t.Fatalf("call %d: query off cadence: %v", i, commandLabels(r.Commands))
		}
		got = append(got, commandLabels(r.Commands)...)
	}

	if len(got) != len(v1StartupQueries) {
		t.Fatalf("queries = %v", got)
	}
	for i := range v1StartupQueries {
		if got[i] != v1StartupQueries[i] {
			t.Errorf("query %d = %q, want %q", i, got[i], v1StartupQueries[i])
		}
	}
}

func TestV1Sequencer_PassiveQueriesMask(t *testing.T) {
	s := NewSession(SessionOptions{Passive: true})
	body := v1Body(IDv1Debug, 0x00, V1ModeReport, []byte{0})

	var got []string
	for i := 0; i < 32; i++ {
		got = append(got, commandLabels(s.ParseV1(IDv1Debug, body).Commands)...)
	}
	if got[6] != "periodic message query" {
		t.Errorf("passive sessions must not set the periodic mask: %v", got)
	}
}

func TestV1Sequencer_AdvancesOnRejects(t *testing.T) {
	s := NewSession(SessionOptions{})
	for i := 0; i < 3; i++ {
		s.ParseV1(IDv1PVT, []byte{0x00})
	}
	r := s.ParseV1(IDv1PVT, []byte{0x00})
	if !hasCommand(r.Commands, "protocol version query") {
		t.Errorf("garbage still proves a v1 talker: %v", commandLabels(r.Commands))
	}
}

// ============================================================
// Version and Production Report Tests
// ============================================================

func TestDecodeX9000_SeedsVersionString(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := make([]byte, 9)
	payload[0] = 4 // NMEA major
	payload[1] = 1 // NMEA minor
	payload[2] = 1 // TSIP version

	r := s.ParseV1(IDv1Version, v1Body(IDv1Version, 0x00, V1ModeReport, payload))
	if s.Subtype1 != "NMEA 4.1 TSIP 1" {
		t.Errorf("version string = %q", s.Subtype1)
	}
	if !r.Mask.Has(MaskDevice) {
		t.Errorf("mask = %v", r.Mask)
	}

	// an identified receiver keeps its better string
	payload[0] = 9
	r = s.ParseV1(IDv1Version, v1Body(IDv1Version, 0x00, V1ModeReport, payload))
	if s.Subtype1 != "NMEA 4.1 TSIP 1" || r.Mask != 0 {
		t.Errorf("protocol version must not overwrite: %q %v", s.Subtype1, r.Mask)
	}
}

func TestDecodeX9001_ReceiverVersion(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := make([]byte, 10, 16)
	payload[0] = 2 // major
	payload[1] = 1 // minor
	payload[2] = 9 // build
	payload[3] = 8 // month
	payload[4] = 26
	putU16(payload, 5, 2022)
	putU16(payload, 7, uint16(HWRES720))
	payload[9] = 6
	payload = append(payload, []byte("RES720")...)

	r := s.ParseV1(IDv1Version, v1Body(IDv1Version, 0x01, V1ModeReport, payload))
	if s.HardwareCode != HWRES720 {
		t.Errorf("hardware code = %d", s.HardwareCode)
	}
	if !strings.Contains(s.Subtype, "RES720") || !strings.Contains(s.Subtype, "2.1") {
		t.Errorf("firmware string = %q", s.Subtype)
	}
	if !r.Mask.Has(MaskDevice) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX9001_NameLengthClamped(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := make([]byte, 10, 13)
	payload[9] = 200 // liar
	payload = append(payload, []byte("ICM")...)

	r := s.ParseV1(IDv1Version, v1Body(IDv1Version, 0x01, V1ModeReport, payload))
	if len(r.Errors) != 0 {
		t.Fatalf("clamped name should decode cleanly: %v", r.Errors)
	}
	if !strings.Contains(s.Subtype, "ICM") {
		t.Errorf("firmware string = %q", s.Subtype)
	}
}

func TestDecodeX9300_ProductionInfo(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := make([]byte, 76)
	putU32(payload, 1, 0xdeadbeef)
	payload[21] = 26 // day
	payload[22] = 8  // month
	putU16(payload, 23, 2022)
	putU16(payload, 26, uint16(HWResSMT360))

	r := s.ParseV1(IDv1Production, v1Body(IDv1Production, 0x00, V1ModeReport, payload))
	if !strings.Contains(s.Subtype1, "sn deadbeef") || !strings.Contains(s.Subtype1, "3023") {
		t.Errorf("production string = %q", s.Subtype1)
	}
	if !r.Mask.Has(MaskDevice) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX9201_ResetCause(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1Resets, v1Body(IDv1Resets, 0x01, V1ModeReport, []byte{0, 0, 2}))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_INVALID_VALUE {
		t.Fatalf("a reset report is worth surfacing: %v", r.Errors)
	}
	if !strings.Contains(r.Errors[0].Message, "Hot Reset") {
		t.Errorf("cause should be spelled out: %v", r.Errors[0].Message)
	}
}

func TestDecodeXA000_Ack(t *testing.T) {
	s := NewSession(SessionOptions{})

	// bare command echo
	r := s.ParseV1(IDv1Firmware, v1Body(IDv1Firmware, 0x00, V1ModeReport, []byte{0}))
	if len(r.Errors) != 0 {
		t.Errorf("echo should be clean: %v", r.Errors)
	}

	// nak with status and frame number
	payload := []byte{0, 0, 2, 1, 0x00, 0x07}
	r = s.ParseV1(IDv1Firmware, v1Body(IDv1Firmware, 0x00, V1ModeReport, payload))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_REJECTED {
		t.Errorf("nonzero status is a nak: %v", r.Errors)
	}

	// neither documented length
	r = s.ParseV1(IDv1Firmware, v1Body(IDv1Firmware, 0x00, V1ModeReport, []byte{0, 0, 0}))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_LENGTH_MISMATCH {
		t.Errorf("expected a length mismatch, got %v", r.Errors)
	}
	if !strings.Contains(r.Errors[0].Message, "want 3 or 8") {
		t.Errorf("message = %v", r.Errors[0].Message)
	}
}

func TestDecodeXA321_Rejection(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x21, V1ModeReport, []byte{0x1c, 0x03, 6}))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_REJECTED {
		t.Fatalf("errors = %v", r.Errors)
	}
	msg := r.Errors[0].Message
	if !strings.Contains(msg, "x1c-03") || !strings.Contains(msg, "Invalid Packet ID") {
		t.Errorf("message = %q", msg)
	}
}

// ============================================================
// Timing and Position Report Tests
// ============================================================

// xa100Payload builds a timing report: tow, week, a civil GPS date and
// the UTC offset, with the time flags at payload offset 15.
func xa100Payload(tow uint32, week uint16, hh, mm, ss, mon, day byte, year uint16, flags byte, utcOff uint16) []byte {
	p := make([]byte, 30)
	putU32(p, 0, tow)
	putU16(p, 4, week)
	p[6] = hh
	p[7] = mm
	p[8] = ss
	p[9] = mon
	p[10] = day
	putU16(p, 11, year)
	p[15] = flags
	putU16(p, 16, utcOff)
	return p
}

func TestDecodeXA100_SetsTime(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa100Payload(1000, 2345, 12, 34, 56, 3, 10, 2025, 0x03, 18)

	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x00, V1ModeReport, payload))
	want := time.Date(2025, 3, 10, 12, 34, 38, 0, time.UTC)
	if !s.Fix.Time.Equal(want) {
		t.Errorf("time = %v, want %v", s.Fix.Time, want)
	}
	if s.Fix.Week != 2345 || s.Fix.Leap != 18 {
		t.Errorf("week/leap = %d/%d", s.Fix.Week, s.Fix.Leap)
	}
	if r.Mask != MaskClear|MaskTime|MaskNTP {
		t.Errorf("mask = %v", r.Mask)
	}
	// unidentified receiver gets the version chase
	if !hasCommand(r.Commands, "receiver version query") {
		t.Errorf("commands = %v", commandLabels(r.Commands))
	}
}

func TestDecodeXA100_TimeFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags byte
		want  ChangeMask
	}{
		{"utc_and_resolved", 0x03, MaskClear | MaskTime | MaskNTP},
		{"resolved_only", 0x02, MaskClear | MaskTime},
		{"unresolved", 0x00, MaskClear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(SessionOptions{})
			s.HardwareCode = HWRES720 // suppress the version chase
			payload := xa100Payload(1000, 2345, 12, 0, 0, 3, 10, 2025, tt.flags, 18)
			r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x00, V1ModeReport, payload))
			if r.Mask != tt.want {
				t.Errorf("mask = %v, want %v", r.Mask, tt.want)
			}
		})
	}
}

func TestDecodeXA100_RotatesOnNewTow(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.HardwareCode = HWRES720
	s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x00, V1ModeReport,
		xa100Payload(1000, 2345, 12, 0, 0, 3, 10, 2025, 0x03, 18)))

	s.Fix.Mode = Mode3D
	s.Fix.Lat = 45.0
	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x00, V1ModeReport,
		xa100Payload(1001, 2345, 12, 0, 1, 3, 10, 2025, 0x03, 18)))
	if !r.Mask.Has(MaskClear) {
		t.Errorf("new tow should open an epoch: %v", r.Mask)
	}
	if s.OldFix.Mode != Mode3D || s.Fix.Mode != ModeUnknown {
		t.Errorf("mode rotation: old %v, new %v", s.OldFix.Mode, s.Fix.Mode)
	}
}

func TestDecodeXA102_Temperature(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := make([]byte, 17)
	putF32(payload, 13, 42.5)
	s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x02, V1ModeReport, payload))
	if s.Fix.Temperature != 42.5 {
		t.Errorf("temperature = %v", s.Fix.Temperature)
	}
}

func TestDecodeXA102_TruncatedBeforeTemperature(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.Fix.Temperature = 10
	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x02, V1ModeReport, make([]byte, 15)))
	if len(r.Errors) != 0 || s.Fix.Temperature != 10 {
		t.Errorf("truncated report should be ignored: %v, temp %v", r.Errors, s.Fix.Temperature)
	}
}

// xa111Payload builds a position report carrying the given masks, fix
// type, position triple and velocity triple, PDOP 1.8, EPH 2.5, EPV 4.
func xa111Payload(pmask, ftype byte, p1, p2, p3 float64, v1, v2, v3 float32) []byte {
	p := make([]byte, 50)
	p[0] = pmask
	p[1] = ftype
	putF64(p, 2, p1)
	putF64(p, 10, p2)
	putF64(p, 18, p3)
	putF32(p, 26, v1)
	putF32(p, 30, v2)
	putF32(p, 34, v3)
	putF32(p, 38, 1.8)
	putF32(p, 42, 2.5)
	putF32(p, 46, 4.0)
	return p
}

func TestDecodeXA111_LLAWithENUVelocity(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa111Payload(0x00, 2, 37.5, -122.25, 52.25, 3, 4, 1.5)

	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x11, V1ModeReport, payload))
	if s.Fix.Lat != 37.5 || s.Fix.Lon != -122.25 || s.Fix.AltHAE != 52.25 {
		t.Errorf("lla = %v/%v/%v", s.Fix.Lat, s.Fix.Lon, s.Fix.AltHAE)
	}
	if !near(s.Fix.Speed, 5, 1e-6) || !near(s.Fix.Track, 36.8699, 1e-3) || s.Fix.Climb != 1.5 {
		t.Errorf("velocity = %v/%v/%v", s.Fix.Speed, s.Fix.Track, s.Fix.Climb)
	}
	if s.Fix.Mode != Mode3D || !near(s.Fix.PDOP, 1.8, 1e-6) || s.Fix.EPH != 2.5 || s.Fix.EPV != 4.0 {
		t.Errorf("mode/quality = %v %v %v %v", s.Fix.Mode, s.Fix.PDOP, s.Fix.EPH, s.Fix.EPV)
	}
	want := MaskLatLon | MaskAltitude | MaskSpeed | MaskTrack | MaskClimb | MaskMode | MaskDOP
	if r.Mask != want {
		t.Errorf("mask = %v, want %v", r.Mask, want)
	}
}

func TestDecodeXA111_MSLAltitude(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa111Payload(0x04, 1, 37.5, -122.25, 18.0, 0, 0, 0)
	s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x11, V1ModeReport, payload))
	if s.Fix.AltMSL != 18.0 || s.Fix.AltHAE != 0 {
		t.Errorf("altitude routing: MSL %v, HAE %v", s.Fix.AltMSL, s.Fix.AltHAE)
	}
	if s.Fix.Mode != Mode2D {
		t.Errorf("mode = %v", s.Fix.Mode)
	}
}

func TestDecodeXA111_ECEF(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa111Payload(0x0a, 2, -2691000, -4262000, 3894000, 1, 2, 3)

	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x11, V1ModeReport, payload))
	if s.Fix.ECEFX != -2691000 || s.Fix.ECEFVZ != 3 {
		t.Errorf("ecef = %v, vz %v", s.Fix.ECEFX, s.Fix.ECEFVZ)
	}
	if !r.Mask.Has(MaskECEF) || r.Mask.Has(MaskLatLon) || r.Mask.Has(MaskSpeed) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeXA111_InvalidVelocity(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa111Payload(0x01, 2, 37.5, -122.25, 52.25, 9, 9, 9)
	r := s.ParseV1(IDv1PVT, v1Body(IDv1PVT, 0x11, V1ModeReport, payload))
	if r.Mask.Has(MaskSpeed) || s.Fix.Speed != 0 {
		t.Errorf("flagged-invalid velocity must not land: %v %v", r.Mask, s.Fix.Speed)
	}
}

// ============================================================
// Satellite and Alarm Report Tests
// ============================================================

// xa200Payload builds one satellite information report.
func xa200Payload(msgnum, svtype, prn byte, az, el, snr float32, flags, tow uint32) []byte {
	p := make([]byte, 23)
	p[0] = msgnum
	p[1] = svtype
	p[2] = prn
	putF32(p, 3, az)
	putF32(p, 7, el)
	putF32(p, 11, snr)
	putU32(p, 15, flags)
	putU32(p, 19, tow)
	return p
}

func TestDecodeXA200_SatelliteWithOrphanPush(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa200Payload(1, 1, 12, 180, 45, 40, 0x07, 1000)

	r := s.ParseV1(IDv1GNSSInfo, v1Body(IDv1GNSSInfo, 0x00, V1ModeReport, payload))
	sat := s.Skyview.Sats[0]
	if sat.PRN != 12 || !sat.Seen || !sat.Used || sat.Azimuth != 180 || sat.Elevation != 45 {
		t.Errorf("sat = %+v", sat)
	}
	if sat.GnssID != GnssGPS {
		t.Errorf("gnss = %v", sat.GnssID)
	}
	// no cycle ender heard near this tow, so the series pushes itself
	if !r.Mask.Has(MaskSkyview) {
		t.Errorf("mask = %v", r.Mask)
	}
	if s.lastA200 != 0 {
		t.Errorf("push should consume the marker: %d", s.lastA200)
	}
}

func TestDecodeXA200_DefersToCycleEnder(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.lastA311 = 995 // an xa3-11 ended a cycle moments ago
	payload := xa200Payload(1, 0, 12, 180, 45, 40, 0x07, 1000)

	r := s.ParseV1(IDv1GNSSInfo, v1Body(IDv1GNSSInfo, 0x00, V1ModeReport, payload))
	if r.Mask.Has(MaskSkyview) {
		t.Errorf("the cycle ender owns the push: %v", r.Mask)
	}
	if s.lastA200 != 1000 {
		t.Errorf("marker = %d", s.lastA200)
	}
}

func TestDecodeXA200_ZeroMessageNumber(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa200Payload(0, 0, 12, 180, 45, 40, 0x07, 1000)
	r := s.ParseV1(IDv1GNSSInfo, v1Body(IDv1GNSSInfo, 0x00, V1ModeReport, payload))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SAT_INDEX {
		t.Errorf("series is 1-indexed: %v", r.Errors)
	}
}

func TestDecodeXA200_InvalidAngles(t *testing.T) {
	s := NewSession(SessionOptions{})
	payload := xa200Payload(1, 0, 12, 400, 95, 40, 0x01, 1000)
	s.ParseV1(IDv1GNSSInfo, v1Body(IDv1GNSSInfo, 0x00, V1ModeReport, payload))
	sat := s.Skyview.Sats[0]
	if sat.Azimuth != 0 || sat.Elevation != 0 {
		t.Errorf("out-of-range angles must not land: %+v", sat)
	}
	if sat.Used {
		t.Error("flag bits 1-2 clear means unused")
	}
}

// xa311Payload builds a receiver status report with DOPs
// 1.5/1.2/1.0/0.8 and temperature 35 unless overridden.
func xa311Payload(recStatus byte, pdop float32) []byte {
	p := make([]byte, 27)
	p[1] = recStatus
	putF32(p, 3, pdop)
	putF32(p, 7, 1.2)
	putF32(p, 11, 1.0)
	putF32(p, 15, 0.8)
	putF32(p, 19, 35)
	return p
}

func TestDecodeXA311_CycleEnder(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.lastA200 = 500 // a satellite series is pending

	r := s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x11, V1ModeReport, xa311Payload(1, 1.5)))
	if !r.Mask.Has(MaskSkyview) || !r.Mask.Has(MaskReportFix) || !r.Mask.Has(MaskDOP) {
		t.Errorf("mask = %v", r.Mask)
	}
	if s.lastA200 != 0 || s.lastA311 != 500 {
		t.Errorf("markers = %d/%d", s.lastA200, s.lastA311)
	}
	if s.Fix.PDOP != 1.5 || !near(s.Fix.TDOP, 0.8, 1e-6) || s.Fix.Temperature != 35 {
		t.Errorf("quality = %v/%v/%v", s.Fix.PDOP, s.Fix.TDOP, s.Fix.Temperature)
	}
}

func TestDecodeXA311_StatusDecode(t *testing.T) {
	tests := []struct {
		name      string
		recStatus byte
		pdop      float32
		mode      FixMode
		status    FixStatus
	}{
		{"fixing_2d", 0, 1.5, Mode2D, StatusGPS},
		{"no_time_yet", 1, 1.5, Mode3D, StatusUnknown},
		{"pdop_too_high", 2, 1.5, ModeUnknown, StatusUnknown},
		{"few_satellites", 5, 1.5, ModeUnknown, StatusGPS},
		{"overdetermined_clock", 255, 1.5, Mode3D, StatusTime},
		{"pdop_backstop", 0, 12, Mode2D, StatusDR},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(SessionOptions{})
			s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x11, V1ModeReport,
				xa311Payload(tt.recStatus, tt.pdop)))
			if s.Fix.Mode != tt.mode || s.Fix.Status != tt.status {
				t.Errorf("mode/status = %v/%v, want %v/%v",
					s.Fix.Mode, s.Fix.Status, tt.mode, tt.status)
			}
		})
	}
}

func TestDecodeXA300_Alarms(t *testing.T) {
	alarm := func(major uint32) []byte {
		p := make([]byte, 16)
		putU32(p, 8, major)
		return p
	}

	s := NewSession(SessionOptions{})
	r := s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x00, V1ModeReport, alarm(0)))
	if s.Fix.Status != StatusGPS || len(r.Errors) != 0 {
		t.Errorf("status = %v, errors %v", s.Fix.Status, r.Errors)
	}

	r = s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x00, V1ModeReport, alarm(1)))
	if s.Fix.Status != StatusDR {
		t.Errorf("no tracking means dead reckoning: %v", s.Fix.Status)
	}

	r = s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x00, V1ModeReport, alarm(0x80)))
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0].Message, "jamming") {
		t.Errorf("errors = %v", r.Errors)
	}

	r = s.ParseV1(IDv1Alarms, v1Body(IDv1Alarms, 0x00, V1ModeReport, alarm(0x40)))
	if len(r.Errors) != 1 || !strings.Contains(r.Errors[0].Message, "spoofing") {
		t.Errorf("errors = %v", r.Errors)
	}
}
