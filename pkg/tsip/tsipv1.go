// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import "fmt"

// TSIPv1 packets ride inside legacy DLE framing. The body handed here
// starts at the sub-id byte: sub_id u8, length beU16, mode u8, payload,
// trailing XOR checksum. The length field counts mode + payload +
// checksum, so a well-formed body is exactly length+3 bytes.

type v1Entry struct {
	min int // minimum value of the length field
	fn  func(*Session, []byte) Result
}

var v1Table = map[uint16]v1Entry{
	0x9000: {11, decodeX9000},
	0x9001: {11, decodeX9001},
	0x9100: {17, decodeX9100},
	0x9101: {28, decodeX9101},
	0x9102: {8, decodeX9102},
	0x9103: {19, decodeX9103},
	0x9104: {11, decodeX9104},
	0x9105: {19, decodeX9105},
	0x9201: {3, decodeX9201},
	0x9300: {78, decodeX9300},
	0xa000: {3, decodeXA000}, // exact 3 or 8, re-checked inside
	0xa100: {32, decodeXA100},
	0xa102: {17, decodeXA102},
	0xa111: {52, decodeXA111},
	0xa200: {25, decodeXA200},
	0xa300: {18, decodeXA300},
	0xa311: {29, decodeXA311},
	0xa321: {5, decodeXA321},
	0xd000: {3, decodeXD000},
	0xd001: {4, decodeXD001},
}

// v1Ignored keys are types the dispatcher acknowledges without decoding.
// xd0-40/41 carry raw GNSS debug dumps with undefined contents; x92-00
// and xa4-00 are send-only and should never come back as reports.
var v1Ignored = map[uint16]string{
	0xd040: "raw gnss debug output",
	0xd041: "raw gnss debug output",
	0x9200: "receiver reset, send only",
	0xa400: "agnss, send only",
}

// ParseV1 validates the v1 envelope, dispatches mode-2 reports and runs
// the round-robin query sequencer. The sequencer runs even when the
// packet is rejected: a v1 receiver that is talking at all deserves to be
// interrogated.
func (s *Session) ParseV1(id uint8, body []byte) (r Result) {
	defer func() {
		if c, ok := s.nextV1Query(); ok {
			r.addCommand(c)
		}
	}()

	if len(body) < 4 {
		r.addError(shortPacket(id, len(body), 4))
		return r
	}
	sub := body[0]
	length := int(beU16(body, 1))
	mode := body[3]

	if length+3 != len(body) {
		r.addError(ValidationError{
			Type:    ANOMALY_LENGTH_MISMATCH,
			Message: fmt.Sprintf("x%02x-%02x length field %d disagrees with body %d", id, sub, length, len(body)),
			Details: map[string]interface{}{"id": id, "sub": sub, "length": length, "body": len(body)},
		})
		return r
	}
	if !v1ChecksumOK(id, body) {
		r.addError(ValidationError{
			Type:    ANOMALY_CHECKSUM,
			Message: fmt.Sprintf("x%02x-%02x checksum mismatch", id, sub),
			Details: map[string]interface{}{"id": id, "sub": sub},
		})
		return r
	}
	if mode != V1ModeReport {
		// queries and sets echoed back on the wire carry no state
		return r
	}

	key := uint16(id)<<8 | uint16(sub)
	entry, ok := v1Table[key]
	switch {
	case ok && length < entry.min:
		r.addError(shortSubPacket(id, sub, length, entry.min))
	case ok:
		r.merge(entry.fn(s, body))
	default:
		if _, known := v1Ignored[key]; !known {
			r.addError(ValidationError{
				Type:    ANOMALY_UNKNOWN_SUBTYPE,
				Message: fmt.Sprintf("unhandled packet x%02x-%02x", id, sub),
				Details: map[string]interface{}{"id": id, "sub": sub, "length": length},
			})
		}
	}
	return r
}

// nextV1Query walks the startup interrogation one step. Every fourth
// dispatch fires one query; after the eighth query the sequencer idles
// so steady-state traffic is all receiver-initiated.
func (s *Session) nextV1Query() (Command, bool) {
	s.queryCounter = (s.queryCounter + 1) & 0xffff
	if s.queryCounter%4 != 0 {
		return Command{}, false
	}
	switch s.queryCounter / 4 {
	case 1:
		return v1QueryProtocolVersion(), true
	case 2:
		return v1QueryReceiverVersion(), true
	case 3:
		return v1QueryPortConfig(), true
	case 4:
		return v1QueryGNSSConfig(), true
	case 5:
		return v1QueryTimingConfig(), true
	case 6:
		return v1QuerySurveyConfig(), true
	case 7:
		if s.Passive {
			return v1QueryPeriodicMask(), true
		}
		return v1SetPeriodicMask(), true
	case 8:
		return v1QueryProductionInfo(), true
	}
	return Command{}, false
}
