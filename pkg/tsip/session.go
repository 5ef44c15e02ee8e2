// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"io"
	"math"
	"time"
)

// Satellite is one skyview slot. Elevation and azimuth are degrees, SNR
// is the receiver's signal figure (AMU on old hardware, dB-Hz elsewhere).
type Satellite struct {
	PRN       int16
	GnssID    uint8
	SvID      uint8
	SigID     uint8
	Elevation float64
	Azimuth   float64
	SNR       float64
	Used      bool
	Tracked   bool
	Healthy   bool
	Seen      bool
}

// SkyviewTable holds the per-channel satellite reports of the current
// tracking cycle. Visible is the count carried over from the previous
// cycle until the current one completes; the receivers never announce
// how many channel reports a cycle will contain.
type SkyviewTable struct {
	Sats    [MaxChannels]Satellite
	Visible int
}

func (t *SkyviewTable) clear() {
	for i := range t.Sats {
		t.Sats[i] = Satellite{}
	}
}

// Seen returns the slots with data in the current cycle, in channel order.
func (t *SkyviewTable) Seen() []Satellite {
	out := make([]Satellite, 0, t.Visible)
	for i := range t.Sats {
		if t.Sats[i].Seen {
			out = append(out, t.Sats[i])
		}
	}
	return out
}

// FixSnapshot is the normalized navigation solution accumulated over one
// fix cycle. Fields a packet did not carry keep their previous value
// until the next epoch boundary clears them.
type FixSnapshot struct {
	Time time.Time
	Tow  float64
	Week int
	Leap int

	Lat    float64 // degrees, +N
	Lon    float64 // degrees, +E
	AltHAE float64 // meters above ellipsoid
	AltMSL float64 // meters above geoid

	ECEFX, ECEFY, ECEFZ    float64 // meters
	ECEFVX, ECEFVY, ECEFVZ float64 // m/s

	Speed float64 // m/s over ground
	Track float64 // degrees true
	Climb float64 // m/s up

	ClockBiasNs  float64
	ClockDriftNs float64 // ns/s

	Mode   FixMode
	Status FixStatus

	PDOP, HDOP, VDOP, TDOP float64
	EPH, EPV               float64

	Temperature float64 // degrees C, timing receivers only
}

// PollPolicy sets how long the poll scheduler waits before re-requesting
// reports the receiver has gone quiet on. The intervals are receiver time,
// not wall time, so captures replay deterministically.
type PollPolicy struct {
	TimeInterval    time.Duration // x41 GPS time, poll with x21
	FixModeInterval time.Duration // x6d selection, poll with x24
	TrackInterval   time.Duration // x5c tracking, poll with x3c
	HealthInterval  time.Duration // x46 health, poll with x26
	SysMsgInterval  time.Duration // x48 system message, poll with x28
	CompactInterval time.Duration // unanswered x8e-23 fallback window
}

// DefaultPollPolicy matches the intervals the receivers were tuned
// against: a 1 Hz cycle missing five beats is stalled.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		TimeInterval:    5 * time.Second,
		FixModeInterval: 5 * time.Second,
		TrackInterval:   5 * time.Second,
		HealthInterval:  5 * time.Second,
		SysMsgInterval:  60 * time.Second,
		CompactInterval: 5 * time.Second,
	}
}

// Session accumulates receiver state across packets and decides which
// commands to send next. It is single-goroutine; callers own any locking.
//
// A read-only session still decodes everything but Send drops all output.
// A passive session decodes and writes, but avoids commands that would
// reconfigure the receiver, only ever querying.
type Session struct {
	ReadOnly bool
	Passive  bool
	Policy   PollPolicy

	// Identity, sticky once learned.
	MachineID    uint8
	HardwareCode int
	Subtype      string // hardware/firmware version string
	Subtype1     string // product name or v1 protocol version
	Superpkt     int    // SuperpktNone/LFwEI/Timing
	AltIsMSL     bool

	boot bootState

	// x8f-a5 packet broadcast mask, for diagnostics.
	broadcastMask0 uint16

	// Poll bookkeeping, receiver-time unix seconds.
	last41     float64
	last46     float64
	last48     float64
	last5c     float64
	last6d     float64
	reqCompact float64

	// TSIPv1 sequencing.
	queryCounter uint32
	lastA200     int64 // tow of the last xa2-00 satellite push
	lastA311     int64 // lastA200 as of the last xa3-11 cycle ender

	// Fix cycle state.
	lastTow      float64
	lastChanSeen int
	gotTow       bool
	gpsWeek      int  // rollover-corrected reference week
	timeValid    bool // a week+leap resolution has happened

	SatsUsed []int16
	Skyview  SkyviewTable
	Fix      FixSnapshot
	OldFix   FixSnapshot
}

// SessionOptions configures NewSession. The zero value is an active,
// writing session with default poll intervals.
type SessionOptions struct {
	ReadOnly bool
	Passive  bool
	Policy   *PollPolicy
}

func NewSession(opts SessionOptions) *Session {
	s := &Session{
		ReadOnly: opts.ReadOnly,
		Passive:  opts.Passive,
		Policy:   DefaultPollPolicy(),
		lastTow:  -1,
	}
	if opts.Policy != nil {
		s.Policy = *opts.Policy
	}
	return s
}

// now is the receiver clock in unix seconds: the current fix time, else
// the previous fix, else zero. Wall time would break capture replay.
func (s *Session) now() float64 {
	if !s.Fix.Time.IsZero() {
		return float64(s.Fix.Time.UnixNano()) / 1e9
	}
	if !s.OldFix.Time.IsZero() {
		return float64(s.OldFix.Time.UnixNano()) / 1e9
	}
	return 0
}

// elapsed reports whether at least d of receiver time has passed since
// the stamp. Absolute value: receiver clocks step backwards on resets
// and week corrections, and a stalled poll beats a stuck one.
func elapsed(now, stamp float64, d time.Duration) bool {
	return math.Abs(now-stamp) > d.Seconds()
}

// epochCheck starts a new fix cycle when the time-of-week moves. The
// returned mask carries MaskClear exactly once per epoch; snapshot state
// rolls into OldFix so decoders that arrive without mode or status can
// borrow the previous solution.
func (s *Session) epochCheck(tow float64) ChangeMask {
	if tow == s.lastTow {
		return 0
	}
	s.lastTow = tow
	s.rotateFix()
	s.Fix.Tow = tow
	return MaskClear
}

// rotateFix rolls the working snapshot into OldFix and blanks the fields
// a new cycle must re-prove. x41 rotates unconditionally; everything else
// goes through epochCheck.
func (s *Session) rotateFix() {
	s.OldFix = s.Fix
	s.Fix.Mode = ModeUnknown
	s.Fix.Status = StatusUnknown
}

// resolveTow builds a fix time from a bare time-of-week using the
// reference week learned from x41 or a week-bearing fix packet.
func (s *Session) resolveTow(tow float64) time.Time {
	return gpsToUTC(s.gpsWeek, tow, s.Fix.Leap)
}

// timeSetThisEpoch reports whether a decoder already resolved time for
// the current cycle. x8f-ab defers to the earlier time packets.
func (s *Session) timeSetThisEpoch(tow float64) bool {
	return s.gotTow && tow == s.lastTow
}

// setTime records a resolved fix time and makes it the receiver clock.
// The week becomes the reference for packets that only carry a tow.
func (s *Session) setTime(week int, tow float64, leap int) {
	s.Fix.Week = week
	s.Fix.Tow = tow
	if leapValid(leap) {
		s.Fix.Leap = leap
	}
	s.Fix.Time = gpsToUTC(week, tow, s.Fix.Leap)
	s.gpsWeek = week
	s.gotTow = true
	s.timeValid = true
}

// skyviewCycle runs the channel-numbering cycle detection shared by x5c,
// x5d and xa2-00. chanIdx is the zero-based channel of this report. A
// wrap to channel zero means the previous cycle ended: its channel count
// becomes the visible count. Returns the mask bits to raise now.
func (s *Session) skyviewCycle(chanIdx int, sat Satellite) ChangeMask {
	if chanIdx == 0 {
		// New cycle. The receiver never says how long the last one
		// was, so the previous top channel is the visible count.
		s.Skyview.Visible = s.lastChanSeen
		s.Skyview.clear()
	}
	s.lastChanSeen = chanIdx

	if chanIdx >= MaxChannels {
		// channel bookkeeping still counts, the slot write does not
		return 0
	}
	sat.Seen = true
	s.Skyview.Sats[chanIdx] = sat

	if chanIdx+1 >= s.Skyview.Visible {
		// Last of the series, assuming the cycle length held. A grown
		// cycle pushes an extra skyview; a shrunk one drops a beat.
		s.Skyview.Visible = chanIdx + 1
		return MaskSkyview
	}
	return 0
}

// setENUVelocity stores an east/north/up velocity as speed over ground,
// true track and climb.
func (s *Session) setENUVelocity(ve, vn, vu float64) {
	s.Fix.Speed = math.Hypot(ve, vn)
	track := math.Atan2(ve, vn) * RadToDeg
	if track < 0 {
		track += 360
	}
	s.Fix.Track = track
	s.Fix.Climb = vu
}

// Send frames and writes one command. Read-only sessions drop commands
// without touching the writer and report success.
func (s *Session) Send(w io.Writer, cmd Command) error {
	if s.ReadOnly {
		return nil
	}
	return WriteCommand(w, cmd)
}

// SendAll writes a command batch in order, stopping at the first error.
func (s *Session) SendAll(w io.Writer, cmds []Command) error {
	for _, c := range cmds {
		if err := s.Send(w, c); err != nil {
			return err
		}
	}
	return nil
}

// InitQuery is the first thing to send a freshly opened receiver: a
// hardware version request. It perturbs no configuration and both
// protocol generations answer it (TSIPv1 with an xa3-21 error report,
// which still identifies the generation).
func (s *Session) InitQuery() Command {
	return cmdRequestHardwareVersion()
}

// ReactivateQuery nudges a receiver that was already probed once: a
// software version request, answered by x45.
func (s *Session) ReactivateQuery() Command {
	return cmdRequestSoftwareVersion()
}
