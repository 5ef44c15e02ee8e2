// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"time"
)

// Packet is one de-stuffed TSIP packet. Body excludes the leading ID byte
// and the trailing DLE/ETX. For TSIPv1 packets the sub-id, length, mode and
// checksum are still inside Body; the v1 dispatcher peels them off.
type Packet struct {
	ID        uint8
	Body      []byte
	Raw       []byte // original bytes including framing, for capture
	Timestamp time.Time
}

// IsV1 reports whether the packet ID sits in the TSIPv1 range. The wire
// carries no other generation marker; the ID byte is the whole handshake.
func (p *Packet) IsV1() bool {
	return IsV1ID(p.ID)
}

// IsV1ID reports whether id belongs to the TSIPv1 dispatcher.
func IsV1ID(id uint8) bool {
	switch id {
	case IDv1Version, IDv1Config, IDv1Resets, IDv1Production,
		IDv1Firmware, IDv1PVT, IDv1GNSSInfo, IDv1Alarms,
		IDv1AGNSS, IDv1Misc, IDv1Debug:
		return true
	}
	return false
}

// ChangeMask describes which categories of session state a decode touched.
// The caller uses it to decide what to publish; an empty mask means the
// packet changed nothing worth reporting.
type ChangeMask uint32

const (
	MaskTime ChangeMask = 1 << iota
	MaskLatLon
	MaskAltitude
	MaskSpeed
	MaskTrack
	MaskClimb
	MaskECEF
	MaskMode
	MaskStatus
	MaskDOP
	MaskUsedSats
	MaskSkyview
	MaskDevice
	MaskClockBias
	MaskLeap
	MaskClear     // epoch boundary: a new fix cycle began
	MaskReportFix // cycle ender: the fix is complete enough to publish
	MaskNTP       // timing quality suitable for clock discipline
)

// Has reports whether all bits of want are set.
func (m ChangeMask) Has(want ChangeMask) bool {
	return m&want == want
}

func (m ChangeMask) String() string {
	names := []struct {
		bit  ChangeMask
		name string
	}{
		{MaskTime, "TIME"},
		{MaskLatLon, "LATLON"},
		{MaskAltitude, "ALT"},
		{MaskSpeed, "SPEED"},
		{MaskTrack, "TRACK"},
		{MaskClimb, "CLIMB"},
		{MaskECEF, "ECEF"},
		{MaskMode, "MODE"},
		{MaskStatus, "STATUS"},
		{MaskDOP, "DOP"},
		{MaskUsedSats, "USED"},
		{MaskSkyview, "SKYVIEW"},
		{MaskDevice, "DEVICE"},
		{MaskClockBias, "BIAS"},
		{MaskLeap, "LEAP"},
		{MaskClear, "CLEAR"},
		{MaskReportFix, "REPORT"},
		{MaskNTP, "NTP"},
	}
	out := ""
	for _, n := range names {
		if m&n.bit != 0 {
			if out != "" {
				out += "|"
			}
			out += n.name
		}
	}
	if out == "" {
		return "(none)"
	}
	return out
}

// Command is an outbound request or setting, produced by decoders and the
// poll scheduler instead of written straight to the transport. Label names
// what the command asks for; Body is the unframed packet body.
type Command struct {
	Label string
	Body  []byte
}

func (c Command) String() string {
	return fmt.Sprintf("%s (x%02x, %d bytes)", c.Label, c.Body[0], len(c.Body))
}

// Result is the uniform return of every dispatch and decode call.
type Result struct {
	Mask     ChangeMask
	Commands []Command
	Errors   []ValidationError
}

// merge folds another result into r.
func (r *Result) merge(other Result) {
	r.Mask |= other.Mask
	r.Commands = append(r.Commands, other.Commands...)
	r.Errors = append(r.Errors, other.Errors...)
}

func (r *Result) addCommand(c Command) {
	r.Commands = append(r.Commands, c)
}

func (r *Result) addError(e ValidationError) {
	r.Errors = append(r.Errors, e)
}
