// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

// ============================================================
// Decode Test Helpers
// ============================================================

func putU16(b []byte, off int, v uint16) { binary.BigEndian.PutUint16(b[off:], v) }
func putU32(b []byte, off int, v uint32) { binary.BigEndian.PutUint32(b[off:], v) }
func putF32(b []byte, off int, v float32) {
	binary.BigEndian.PutUint32(b[off:], math.Float32bits(v))
}
func putF64(b []byte, off int, v float64) {
	binary.BigEndian.PutUint64(b[off:], math.Float64bits(v))
}

func near(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func hasCommand(cmds []Command, label string) bool {
	for _, c := range cmds {
		if c.Label == label {
			return true
		}
	}
	return false
}

func commandLabels(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Label
	}
	return out
}

// ============================================================
// x41 GPS Time
// ============================================================

func TestDecodeX41_SetsTime(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 10)
	putF32(body, 0, 100.5)
	putU16(body, 4, 2190)
	putF32(body, 6, 18.0)

	r := decodeX41(s, body)

	want := time.Date(2021, time.December, 26, 0, 1, 22, 500000000, time.UTC)
	if !s.Fix.Time.Equal(want) {
		t.Errorf("fix time = %v, want %v", s.Fix.Time, want)
	}
	if s.Fix.Week != 2190 || s.Fix.Leap != 18 {
		t.Errorf("week/leap = %d/%d, want 2190/18", s.Fix.Week, s.Fix.Leap)
	}
	wantMask := MaskTime | MaskLeap | MaskNTP | MaskClear
	if r.Mask != wantMask {
		t.Errorf("mask = %v, want %v", r.Mask, wantMask)
	}
	if !s.timeValid {
		t.Error("a good x41 should mark time as resolved")
	}
}

func TestDecodeX41_WeekRollover(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 10)
	putF32(body, 0, 50.0)
	putU16(body, 4, 906)
	putF32(body, 6, 18.0)

	decodeX41(s, body)
	if s.Fix.Week != 1930 {
		t.Errorf("rollover-bugged week should be corrected: got %d, want 1930", s.Fix.Week)
	}
}

func TestDecodeX41_NegativeTowIgnored(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 10)
	putF32(body, 0, -1.0)
	putU16(body, 4, 2190)
	putF32(body, 6, 18.0)

	r := decodeX41(s, body)
	if r.Mask != 0 || !s.Fix.Time.IsZero() {
		t.Errorf("negative tow should change nothing: mask %v time %v", r.Mask, s.Fix.Time)
	}
}

func TestDecodeX41_BogusLeapIgnored(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 10)
	putF32(body, 0, 100.0)
	putU16(body, 4, 2190)
	putF32(body, 6, 0.0) // almanac not in yet

	r := decodeX41(s, body)
	if r.Mask != 0 || s.gotTow {
		t.Errorf("pre-almanac leap should change nothing: mask %v", r.Mask)
	}
}

// ============================================================
// x42/x43/x54/x56 Single-Precision Fixes
// ============================================================

func TestDecodeX42_ECEFPosition(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 16)
	putF32(body, 0, -2700000)
	putF32(body, 4, -4300000)
	putF32(body, 8, 3850000)
	putF32(body, 12, 1000)

	r := decodeX42(s, body)
	if s.Fix.ECEFX != -2700000 || s.Fix.ECEFY != -4300000 || s.Fix.ECEFZ != 3850000 {
		t.Errorf("ECEF mismatch: %v %v %v", s.Fix.ECEFX, s.Fix.ECEFY, s.Fix.ECEFZ)
	}
	wantMask := MaskECEF | MaskTime | MaskNTP | MaskClear
	if r.Mask != wantMask {
		t.Errorf("mask = %v, want %v", r.Mask, wantMask)
	}
}

func TestDecodeX43_VelocityAndDrift(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 20)
	putF32(body, 0, 1.0)
	putF32(body, 4, 2.0)
	putF32(body, 8, 3.0)
	putF32(body, 12, 29.9792458) // m/s of bias rate, 100 ns/s
	putF32(body, 16, 1000)

	decodeX43(s, body)
	if s.Fix.ECEFVX != 1.0 || s.Fix.ECEFVY != 2.0 || s.Fix.ECEFVZ != 3.0 {
		t.Errorf("ECEF velocity mismatch: %v %v %v", s.Fix.ECEFVX, s.Fix.ECEFVY, s.Fix.ECEFVZ)
	}
	if !near(s.Fix.ClockDriftNs, 100.0, 0.01) {
		t.Errorf("clock drift = %v ns/s, want 100", s.Fix.ClockDriftNs)
	}
}

func TestDecodeX54_ClockBias(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 12)
	putF32(body, 0, 299.792458) // 1000 ns of bias in meters
	putF32(body, 4, 29.9792458) // 100 ns/s
	putF32(body, 8, 2000)

	r := decodeX54(s, body)
	if !near(s.Fix.ClockBiasNs, 1000.0, 0.1) {
		t.Errorf("clock bias = %v ns, want 1000", s.Fix.ClockBiasNs)
	}
	if !near(s.Fix.ClockDriftNs, 100.0, 0.01) {
		t.Errorf("clock drift = %v ns/s, want 100", s.Fix.ClockDriftNs)
	}
	if !r.Mask.Has(MaskTime | MaskClockBias | MaskNTP) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX56_ENUVelocity(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 20)
	putF32(body, 0, 3.0) // east
	putF32(body, 4, 4.0) // north
	putF32(body, 8, 1.5) // up
	putF32(body, 12, 0)
	putF32(body, 16, 1000)

	r := decodeX56(s, body)
	if !near(s.Fix.Speed, 5.0, 1e-9) {
		t.Errorf("speed = %v, want 5", s.Fix.Speed)
	}
	if !near(s.Fix.Track, 36.8699, 1e-3) {
		t.Errorf("track = %v, want 36.87", s.Fix.Track)
	}
	if s.Fix.Climb != 1.5 {
		t.Errorf("climb = %v, want 1.5", s.Fix.Climb)
	}
	if !r.Mask.Has(MaskSpeed | MaskTrack | MaskClimb) {
		t.Errorf("mask = %v", r.Mask)
	}
}

// ============================================================
// x45/x46/x47 Health and Identification
// ============================================================

func TestDecodeX45_VersionChain(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := []byte{7, 12, 3, 15, 99, 2, 0, 6, 1, 22}

	r := decodeX45(s, body)
	if s.Subtype == "" {
		t.Error("version string should be recorded")
	}
	if !hasCommand(r.Commands, "io options request") ||
		!hasCommand(r.Commands, "firmware version request") {
		t.Errorf("identification chain incomplete: %v", commandLabels(r.Commands))
	}
	if !r.Mask.Has(MaskDevice) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX46_StatusTable(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		oldMode  FixMode
		wantMode FixMode
	}{
		{"doing fixes, was 3D", 0, Mode3D, Mode3D},
		{"doing fixes, no history", 0, ModeUnknown, Mode2D},
		{"doing fixes, was 2D", 0, Mode2D, Mode2D},
		{"one usable sat", 9, ModeUnknown, Mode2D},
		{"three usable sats", 11, ModeUnknown, Mode2D},
		{"no gps time", 1, Mode3D, ModeNoFix},
		{"pdop too high", 3, Mode3D, ModeNoFix},
		{"clock fix says nothing", 0xbb, ModeUnknown, ModeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(SessionOptions{})
			s.OldFix.Mode = tt.oldMode
			r := decodeX46(s, []byte{tt.status, 0})
			if s.Fix.Mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", s.Fix.Mode, tt.wantMode)
			}
			if tt.wantMode != ModeUnknown && !r.Mask.Has(MaskMode) {
				t.Errorf("mask should carry MODE: %v", r.Mask)
			}
		})
	}
}

func TestDecodeX47_SignalLevels(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.Skyview.Sats[3] = Satellite{PRN: 9, Seen: true}

	body := make([]byte, 11)
	body[0] = 2
	body[1] = 9
	putF32(body, 2, 42.0)
	body[6] = 14
	putF32(body, 7, -1.0) // negative level clamps to zero

	r := decodeX47(s, body)
	if s.Skyview.Sats[3].SNR != 42.0 {
		t.Errorf("SNR not folded into the skyview: %v", s.Skyview.Sats[3].SNR)
	}
	if !r.Mask.Has(MaskSkyview) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX47_CountOverflow(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX47(s, []byte{5, 9, 0})
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SHORT_PACKET {
		t.Errorf("expected a short packet error, got %v", r.Errors)
	}
}

// ============================================================
// x4a/x4b/x55 Position and IO Options
// ============================================================

func TestDecodeX4A_LLA(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 20)
	putF32(body, 0, float32(45.0*degToRad))
	putF32(body, 4, float32(-122.5*degToRad))
	putF32(body, 8, 52.0)
	putF32(body, 12, 299.792458)
	putF32(body, 16, 1000)

	r := decodeX4A(s, body)
	if !near(s.Fix.Lat, 45.0, 1e-4) || !near(s.Fix.Lon, -122.5, 1e-4) {
		t.Errorf("lat/lon = %v/%v", s.Fix.Lat, s.Fix.Lon)
	}
	if s.Fix.AltHAE != 52.0 {
		t.Errorf("altitude should land in HAE by default: %v", s.Fix.AltHAE)
	}
	if !near(s.Fix.ClockBiasNs, 1000.0, 0.1) {
		t.Errorf("clock bias = %v", s.Fix.ClockBiasNs)
	}
	// no reference week yet, so no time claim
	if r.Mask != MaskLatLon|MaskAltitude {
		t.Errorf("mask = %v, want LATLON|ALT", r.Mask)
	}
}

func TestDecodeX4A_MSLRouting(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.AltIsMSL = true
	body := make([]byte, 20)
	putF32(body, 8, 52.0)

	decodeX4A(s, body)
	if s.Fix.AltMSL != 52.0 || s.Fix.AltHAE != 0 {
		t.Errorf("altitude should land in MSL: msl %v hae %v", s.Fix.AltMSL, s.Fix.AltHAE)
	}
}

func TestDecodeX4A_TimeAfterReferenceWeek(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.setTime(2190, 0, 18)
	body := make([]byte, 20)
	putF32(body, 16, 1000)

	r := decodeX4A(s, body)
	if !r.Mask.Has(MaskTime | MaskNTP) {
		t.Errorf("mask should carry time once a week is known: %v", r.Mask)
	}
	want := gpsToUTC(2190, 1000, 18)
	if !s.Fix.Time.Equal(want) {
		t.Errorf("fix time = %v, want %v", s.Fix.Time, want)
	}
}

func TestDecodeX4B_MachineID(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX4B(s, []byte{0x01, 0x00, 0x00})

	if s.MachineID != 1 {
		t.Errorf("machine id = %d", s.MachineID)
	}
	if !r.Mask.Has(MaskDevice) {
		t.Errorf("mask = %v", r.Mask)
	}
	if !hasCommand(r.Commands, "firmware version request") {
		t.Errorf("SMT 360 machine id should chase the firmware version: %v", commandLabels(r.Commands))
	}
}

func TestDecodeX4B_SuperpacketLevelChanges(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.Subtype = "known already"

	r := decodeX4B(s, []byte{0x61, 0x00, byte(SuperpktLFwEI)})
	if s.Superpkt != SuperpktLFwEI {
		t.Errorf("superpacket level = %d", s.Superpkt)
	}
	if !hasCommand(r.Commands, "io options set") {
		t.Errorf("LFwEI capability should reroute position: %v", commandLabels(r.Commands))
	}

	r = decodeX4B(s, []byte{0x61, 0x00, byte(SuperpktTiming)})
	if !hasCommand(r.Commands, "broadcast mask request") {
		t.Errorf("timing level should ask for the broadcast mask: %v", commandLabels(r.Commands))
	}

	// same level again is a no-op
	r = decodeX4B(s, []byte{0x61, 0x00, byte(SuperpktTiming)})
	if len(r.Commands) != 0 {
		t.Errorf("repeated level should not reconfigure: %v", commandLabels(r.Commands))
	}
}

func TestDecodeX55_CompactFixChase(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.Fix.Time = time.Unix(5000, 0)

	r := decodeX55(s, []byte{ioPos8F20 | ioPosMSL, 0, 0, 0})
	if !s.AltIsMSL {
		t.Error("MSL bit should switch altitude routing")
	}
	if !hasCommand(r.Commands, "lfwei superpacket disable") ||
		!hasCommand(r.Commands, "compact fix request") {
		t.Errorf("superpacket-capable receiver should chase the compact fix: %v", commandLabels(r.Commands))
	}
	if s.reqCompact != 5000 {
		t.Errorf("compact request stamp = %v, want 5000", s.reqCompact)
	}
}

func TestDecodeX55_NoSuperpackets(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX55(s, []byte{ioPosLLA, 0, 0, 0})
	if len(r.Commands) != 0 || s.AltIsMSL {
		t.Errorf("plain io options should change nothing: %v", commandLabels(r.Commands))
	}
}

// ============================================================
// x13 Command Rejection
// ============================================================

func TestDecodeX13_CompactFixFallback(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX13(s, []byte{0x8e, 0x23})

	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_REJECTED {
		t.Fatalf("expected a rejection report, got %v", r.Errors)
	}
	if !hasCommand(r.Commands, "lfwei superpacket enable") {
		t.Errorf("rejected compact fix should fall back to LFwEI: %v", commandLabels(r.Commands))
	}
}

func TestDecodeX13_PlainRejection(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX13(s, []byte{0x21})

	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_REJECTED {
		t.Fatalf("expected a rejection report, got %v", r.Errors)
	}
	if len(r.Commands) != 0 {
		t.Errorf("no fallback for a plain rejection: %v", commandLabels(r.Commands))
	}
}

// ============================================================
// x57 Last Fix Information
// ============================================================

func TestDecodeX57_GoodCurrentFixOnly(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.Fix.Leap = 18
	body := make([]byte, 8)
	body[0] = 0x01
	putF32(body, 2, 100)
	putU16(body, 6, 2190)

	r := decodeX57(s, body)
	if !r.Mask.Has(MaskTime | MaskNTP) {
		t.Errorf("mask = %v", r.Mask)
	}
	if s.Fix.Week != 2190 {
		t.Errorf("week = %d", s.Fix.Week)
	}

	// saved fixes are history, not navigation
	s2 := NewSession(SessionOptions{})
	body[0] = 0x02
	r = decodeX57(s2, body)
	if r.Mask != 0 || !s2.Fix.Time.IsZero() {
		t.Errorf("saved fix should change nothing: mask %v", r.Mask)
	}
}

// ============================================================
// x5c/x5d Satellite Tracking
// ============================================================

func TestDecodeX5C_TrackingStatus(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 24)
	body[0] = 7         // PRN
	body[1] = 2 << 3    // channel 2, low bits reserved
	body[3] = 51        // used + healthy + DGPS corrected
	putF32(body, 4, 40.0)
	putF32(body, 12, float32(45.0*degToRad))
	putF32(body, 16, float32(120.0*degToRad))

	r := decodeX5C(s, body)
	sat := s.Skyview.Sats[2]
	if sat.PRN != 7 || !sat.Used || !sat.Healthy || !sat.Tracked {
		t.Errorf("satellite flags wrong: %+v", sat)
	}
	if sat.GnssID != GnssGPS || sat.SvID != 7 {
		t.Errorf("constellation mapping wrong: %d/%d", sat.GnssID, sat.SvID)
	}
	if !near(sat.Elevation, 45.0, 1e-4) || !near(sat.Azimuth, 120.0, 1e-4) {
		t.Errorf("el/az = %v/%v", sat.Elevation, sat.Azimuth)
	}
	if s.Fix.Status != StatusDGPS || !r.Mask.Has(MaskStatus) {
		t.Errorf("eflag 51 should mark DGPS: status %v mask %v", s.Fix.Status, r.Mask)
	}
}

func x5dBody(prn int16, ch int, used byte) []byte {
	body := make([]byte, 26)
	body[0] = byte(prn)
	body[1] = byte(ch)
	body[3] = used
	putF32(body, 4, 35.0)
	putF32(body, 12, float32(30.0*degToRad))
	putF32(body, 16, float32(200.0*degToRad))
	// body[22] bad-data flag zero, body[25] svtype zero: healthy GPS
	return body
}

func TestDecodeX5D_SkyviewCycle(t *testing.T) {
	s := NewSession(SessionOptions{})

	// first cycle: three channels
	for ch, prn := range []int16{4, 9, 17} {
		r := decodeX5D(s, x5dBody(prn, ch, 1))
		if !r.Mask.Has(MaskSkyview) {
			t.Errorf("channel %d of a growing cycle should push: %v", ch, r.Mask)
		}
	}
	if s.Skyview.Visible != 3 {
		t.Fatalf("visible = %d after first cycle, want 3", s.Skyview.Visible)
	}

	// second cycle shrinks to two channels
	r := decodeX5D(s, x5dBody(4, 0, 1))
	if r.Mask.Has(MaskSkyview) {
		t.Errorf("mid-cycle channel should not push: %v", r.Mask)
	}
	r = decodeX5D(s, x5dBody(9, 1, 0))
	if !r.Mask.Has(MaskSkyview) {
		t.Errorf("cycle-ending channel should push: %v", r.Mask)
	}
	if s.Skyview.Visible != 2 || len(s.Skyview.Seen()) != 2 {
		t.Errorf("visible = %d seen = %d, want 2/2", s.Skyview.Visible, len(s.Skyview.Seen()))
	}
}

func TestDecodeX5D_ChannelBeyondCapacity(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX5D(s, x5dBody(5, MaxChannels+2, 1))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SAT_INDEX {
		t.Errorf("expected a sat index error, got %v", r.Errors)
	}
}

// ============================================================
// x6c/x6d Satellite Selection
// ============================================================

func x6cBody(fixdm byte, count int, prns ...byte) []byte {
	body := make([]byte, 18+count)
	body[0] = fixdm
	putF32(body, 1, 1.5)
	putF32(body, 5, 1.2)
	putF32(body, 9, 1.0)
	putF32(body, 13, 0.8)
	body[17] = byte(count)
	copy(body[18:], prns)
	return body
}

func TestDecodeX6C_Selection(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX6C(s, x6cBody(4, 2, 5, 12))

	if s.Fix.Mode != Mode3D {
		t.Errorf("mode = %v, want 3D", s.Fix.Mode)
	}
	if s.Fix.PDOP != 1.5 || !near(s.Fix.HDOP, 1.2, 1e-6) {
		t.Errorf("DOPs = %v/%v", s.Fix.PDOP, s.Fix.HDOP)
	}
	if len(s.SatsUsed) != 2 || s.SatsUsed[0] != 5 || s.SatsUsed[1] != 12 {
		t.Errorf("used sats = %v", s.SatsUsed)
	}
	if !r.Mask.Has(MaskDOP | MaskMode | MaskUsedSats) {
		t.Errorf("mask = %v", r.Mask)
	}
	if r.Mask.Has(MaskStatus) {
		t.Errorf("no status source here: %v", r.Mask)
	}
}

func TestDecodeX6C_NegativePRNIsUnhealthy(t *testing.T) {
	s := NewSession(SessionOptions{})
	decodeX6C(s, x6cBody(4, 1, 0xf4)) // -12 as int8
	if len(s.SatsUsed) != 1 || s.SatsUsed[0] != -12 {
		t.Errorf("used sats = %v, want [-12]", s.SatsUsed)
	}
}

func TestDecodeX6C_SurveyedStatus(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX6C(s, x6cBody(8|4, 1, 5))
	if s.Fix.Status != StatusTime || !r.Mask.Has(MaskStatus) {
		t.Errorf("surveyed-in with sats should be a time fix: %v", s.Fix.Status)
	}

	s = NewSession(SessionOptions{})
	decodeX6C(s, x6cBody(8|3, 0))
	if s.Fix.Status != StatusDR {
		t.Errorf("surveyed-in without sats should be DR: %v", s.Fix.Status)
	}
}

func TestDecodeX6C_CountOverflow(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := x6cBody(4, 0)
	body[17] = 12 // claims more PRNs than the body carries
	r := decodeX6C(s, body)
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SHORT_PACKET {
		t.Errorf("expected a short packet error, got %v", r.Errors)
	}
}

func x6dBody(dim byte, count int, prns ...byte) []byte {
	body := make([]byte, 17+count)
	body[0] = byte(count)<<4 | dim
	putF32(body, 1, 2.1)
	putF32(body, 5, 1.4)
	putF32(body, 9, 1.6)
	putF32(body, 13, 1.1)
	copy(body[17:], prns)
	return body
}

func TestDecodeX6D_AllInView(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX6D(s, x6dBody(4, 3, 2, 11, 29))

	if s.Fix.Mode != Mode3D {
		t.Errorf("mode = %v", s.Fix.Mode)
	}
	if len(s.SatsUsed) != 3 {
		t.Errorf("used sats = %v", s.SatsUsed)
	}
	if !r.Mask.Has(MaskUsedSats | MaskReportFix) {
		t.Errorf("x6d ends the cycle on most models: %v", r.Mask)
	}
}

func TestDecodeX6D_DeadReckoning(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.OldFix.Lon = 5.0
	decodeX6D(s, x6dBody(4, 0))
	if s.Fix.Status != StatusDR {
		t.Errorf("fix with no sats and a position history is DR: %v", s.Fix.Status)
	}
}

// ============================================================
// x82/x83/x84/xbb
// ============================================================

func TestDecodeX82_DGPSMode(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX82(s, []byte{1})
	if s.Fix.Status != StatusDGPS || !r.Mask.Has(MaskStatus) {
		t.Errorf("odd mode is DGPS: %v %v", s.Fix.Status, r.Mask)
	}

	s = NewSession(SessionOptions{})
	r = decodeX82(s, []byte{2})
	if r.Mask != 0 {
		t.Errorf("even mode says nothing: %v", r.Mask)
	}
}

func x83Body(tow float32) []byte {
	body := make([]byte, 36)
	putF64(body, 0, -2700000)
	putF64(body, 8, -4300000)
	putF64(body, 16, 3850000)
	putF64(body, 24, 299.792458)
	putF32(body, 32, tow)
	return body
}

func TestDecodeX83_BorrowsPreviousMode(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.setTime(2190, 0, 18)
	s.Fix.Mode = Mode3D
	s.Fix.Status = StatusGPS

	r := decodeX83(s, x83Body(1000))
	if s.Fix.ECEFX != -2700000 {
		t.Errorf("ECEF X = %v", s.Fix.ECEFX)
	}
	if !near(s.Fix.ClockBiasNs, 1000.0, 1e-6) {
		t.Errorf("clock bias = %v", s.Fix.ClockBiasNs)
	}
	if s.Fix.Mode != Mode3D || s.Fix.Status != StatusGPS {
		t.Errorf("mode/status should carry over the epoch: %v/%v", s.Fix.Mode, s.Fix.Status)
	}
	if !r.Mask.Has(MaskECEF | MaskMode | MaskStatus | MaskClockBias) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX83_ModeFloor(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.setTime(2190, 0, 18)
	s.Fix.Mode = ModeNoFix

	decodeX83(s, x83Body(1000))
	if s.Fix.Mode != Mode2D {
		t.Errorf("x83 only arrives during a fix, mode floors at 2D: %v", s.Fix.Mode)
	}
}

func TestDecodeX84_BorrowsExactly(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.setTime(2190, 0, 18)
	s.Fix.Mode = Mode3D
	s.Fix.Status = StatusDGPS

	body := make([]byte, 36)
	putF64(body, 0, 45.0*degToRad)
	putF64(body, 8, -122.5*degToRad)
	putF64(body, 16, 52.0)
	putF64(body, 24, 0)
	putF32(body, 32, 1000)

	r := decodeX84(s, body)
	if !near(s.Fix.Lat, 45.0, 1e-9) || !near(s.Fix.Lon, -122.5, 1e-9) {
		t.Errorf("lat/lon = %v/%v", s.Fix.Lat, s.Fix.Lon)
	}
	if s.Fix.Mode != Mode3D || s.Fix.Status != StatusDGPS {
		t.Errorf("mode/status should carry over: %v/%v", s.Fix.Mode, s.Fix.Status)
	}
	if !r.Mask.Has(MaskLatLon | MaskAltitude | MaskTime) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeXBB_ExactLengths(t *testing.T) {
	s := NewSession(SessionOptions{})
	if r := decodeXBB(s, make([]byte, 40)); len(r.Errors) != 0 {
		t.Errorf("40 bytes is valid: %v", r.Errors)
	}
	if r := decodeXBB(s, make([]byte, 43)); len(r.Errors) != 0 {
		t.Errorf("43 bytes is valid on the SMT 360: %v", r.Errors)
	}
	r := decodeXBB(s, make([]byte, 41))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_LENGTH_MISMATCH {
		t.Errorf("41 bytes should be flagged: %v", r.Errors)
	}
}

// ============================================================
// x8f Superpackets
// ============================================================

func TestDecodeX8F_SubRouting(t *testing.T) {
	s := NewSession(SessionOptions{})

	r := decodeX8F(s, []byte{0x99})
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_UNKNOWN_SUBTYPE {
		t.Errorf("unknown sub should be flagged: %v", r.Errors)
	}

	r = decodeX8F(s, []byte{0x4e, 0x02})
	if len(r.Errors) != 0 {
		t.Errorf("recognized-and-dropped sub should be clean: %v", r.Errors)
	}

	r = decodeX8F(s, []byte{SubPrimaryTiming, 0x00})
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_SHORT_PACKET {
		t.Errorf("undersized known sub should be flagged: %v", r.Errors)
	}
}

func TestDecodeX8F20_LFwEI(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 56)
	body[0] = SubLFwEI
	putU16(body, 4, 1000) // north velocity, 5 m/s at 0.005 scale
	putU32(body, 8, 300000500)
	putU32(body, 12, 536870912)  // +45 degrees in semicircles
	putU32(body, 16, 3221225472) // 270 degrees unsigned, -90 signed
	putU32(body, 20, 123456)     // mm
	body[27] = 0x00              // fix exists, 3D, autonomous
	body[28] = 2
	body[29] = 18
	putU16(body, 30, 2190)
	body[32] = 5
	body[34] = 12 | 0xe0 // junk in the high bits

	r := decodeX8F20(s, body)
	if !near(s.Fix.Lat, 45.0, 1e-6) || !near(s.Fix.Lon, -90.0, 1e-6) {
		t.Errorf("lat/lon = %v/%v", s.Fix.Lat, s.Fix.Lon)
	}
	if !near(s.Fix.AltHAE, 123.456, 1e-9) {
		t.Errorf("altitude = %v", s.Fix.AltHAE)
	}
	if !near(s.Fix.Speed, 5.0, 1e-9) {
		t.Errorf("speed = %v", s.Fix.Speed)
	}
	if s.Fix.Mode != Mode3D || s.Fix.Status != StatusGPS {
		t.Errorf("mode/status = %v/%v", s.Fix.Mode, s.Fix.Status)
	}
	if s.Fix.Tow != 300000.5 || s.Fix.Week != 2190 || s.Fix.Leap != 18 {
		t.Errorf("tow/week/leap = %v/%d/%d", s.Fix.Tow, s.Fix.Week, s.Fix.Leap)
	}
	if len(s.SatsUsed) != 2 || s.SatsUsed[0] != 5 || s.SatsUsed[1] != 12 {
		t.Errorf("used sats = %v, junk bits should be masked", s.SatsUsed)
	}
	if !r.Mask.Has(MaskTime | MaskLatLon | MaskReportFix) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX8F20_BadLength(t *testing.T) {
	s := NewSession(SessionOptions{})
	r := decodeX8F20(s, make([]byte, 60))
	if len(r.Errors) != 1 || r.Errors[0].Type != ANOMALY_LENGTH_MISMATCH {
		t.Errorf("56 or 64 bytes only: %v", r.Errors)
	}
}

func TestDecodeX8F23_SettlesCompactQuestion(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.reqCompact = 5000

	body := make([]byte, 29)
	body[0] = SubCompactFix
	putU32(body, 1, 250000000)
	putU16(body, 5, 2190)
	body[7] = 18
	body[8] = 0x00 // fix exists, 3D

	r := decodeX8F23(s, body)
	if s.reqCompact != 0 {
		t.Error("a compact fix answers the pending request")
	}
	if s.Fix.Mode != Mode3D || s.Fix.Status != StatusGPS {
		t.Errorf("mode/status = %v/%v", s.Fix.Mode, s.Fix.Status)
	}
	if !r.Mask.Has(MaskTime | MaskReportFix) {
		t.Errorf("mask = %v", r.Mask)
	}
}

func TestDecodeX8FAB_DefersToEarlierTime(t *testing.T) {
	s := NewSession(SessionOptions{})
	s.epochCheck(500)
	s.setTime(2190, 500, 18)

	body := make([]byte, 17)
	body[0] = SubPrimaryTiming
	putU32(body, 1, 500)
	putU16(body, 5, 2000)

	r := decodeX8FAB(s, body)
	if r.Mask != 0 || s.Fix.Week != 2190 {
		t.Errorf("same-epoch timing packet should defer: mask %v week %d", r.Mask, s.Fix.Week)
	}

	putU32(body, 1, 501)
	putU16(body, 5, 2190)
	putU16(body, 7, 18)
	r = decodeX8FAB(s, body)
	if !r.Mask.Has(MaskTime | MaskLeap) {
		t.Errorf("new epoch should resolve time: %v", r.Mask)
	}
}

func TestDecodeX8FAB_TestModeSkipsTime(t *testing.T) {
	s := NewSession(SessionOptions{})
	body := make([]byte, 17)
	body[0] = SubPrimaryTiming
	putU32(body, 1, 600)
	putU16(body, 5, 2190)
	putU16(body, 7, 18)
	body[9] = 0x04 // test mode

	r := decodeX8FAB(s, body)
	if r.Mask.Has(MaskTime) {
		t.Errorf("test-mode time must not reach the clock: %v", r.Mask)
	}
	if !r.Mask.Has(MaskClear) {
		t.Errorf("the epoch still advances: %v", r.Mask)
	}
}
