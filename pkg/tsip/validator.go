// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	ANOMALY_SHORT_PACKET AnomalyType = iota
	ANOMALY_LENGTH_MISMATCH
	ANOMALY_CHECKSUM
	ANOMALY_UNKNOWN_TYPE
	ANOMALY_UNKNOWN_SUBTYPE
	ANOMALY_INVALID_VALUE
	ANOMALY_SAT_INDEX
	ANOMALY_WEEK_SUSPECT
	ANOMALY_FRAMING
	ANOMALY_REJECTED
)

func (t AnomalyType) String() string {
	switch t {
	case ANOMALY_SHORT_PACKET:
		return "SHORT_PACKET"
	case ANOMALY_LENGTH_MISMATCH:
		return "LENGTH_MISMATCH"
	case ANOMALY_CHECKSUM:
		return "CHECKSUM"
	case ANOMALY_UNKNOWN_TYPE:
		return "UNKNOWN_TYPE"
	case ANOMALY_UNKNOWN_SUBTYPE:
		return "UNKNOWN_SUBTYPE"
	case ANOMALY_INVALID_VALUE:
		return "INVALID_VALUE"
	case ANOMALY_SAT_INDEX:
		return "SAT_INDEX"
	case ANOMALY_WEEK_SUSPECT:
		return "WEEK_SUSPECT"
	case ANOMALY_FRAMING:
		return "FRAMING"
	case ANOMALY_REJECTED:
		return "REJECTED"
	}
	return "UNKNOWN"
}

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

func shortPacket(id uint8, got, want int) ValidationError {
	return ValidationError{
		Type:    ANOMALY_SHORT_PACKET,
		Message: fmt.Sprintf("x%02x packet too short: %d bytes, need %d", id, got, want),
		Details: map[string]interface{}{"id": id, "length": got, "minimum": want},
	}
}

func shortSubPacket(id, sub uint8, got, want int) ValidationError {
	return ValidationError{
		Type:    ANOMALY_SHORT_PACKET,
		Message: fmt.Sprintf("x%02x-%02x packet too short: %d bytes, need %d", id, sub, got, want),
		Details: map[string]interface{}{"id": id, "sub": sub, "length": got, "minimum": want},
	}
}

// ValidatePacket runs the structural checks a decode would apply, without
// mutating the session. Returns a slice of validation errors (empty if
// the packet is well-formed).
func ValidatePacket(s *Session, p *Packet) []ValidationError {
	errors := []ValidationError{}

	if p.IsV1() {
		return append(errors, validateV1(p)...)
	}

	entry, ok := legacyTable[p.ID]
	if ok {
		if len(p.Body) < entry.min {
			errors = append(errors, shortPacket(p.ID, len(p.Body), entry.min))
		}
		return errors
	}
	if _, ok := legacyIgnored[p.ID]; ok {
		return errors
	}
	errors = append(errors, ValidationError{
		Type:    ANOMALY_UNKNOWN_TYPE,
		Message: fmt.Sprintf("unhandled packet type x%02x", p.ID),
		Details: map[string]interface{}{"id": p.ID, "length": len(p.Body)},
	})
	return errors
}

// validateV1 checks the TSIPv1 envelope: sub-id, length, mode, checksum.
func validateV1(p *Packet) []ValidationError {
	errors := []ValidationError{}

	if len(p.Body) < 4 {
		return append(errors, shortPacket(p.ID, len(p.Body), 4))
	}
	sub := p.Body[0]
	length := int(beU16(p.Body, 1))
	if length+3 != len(p.Body) {
		errors = append(errors, ValidationError{
			Type:    ANOMALY_LENGTH_MISMATCH,
			Message: fmt.Sprintf("x%02x-%02x length field %d disagrees with body %d", p.ID, sub, length, len(p.Body)),
			Details: map[string]interface{}{"id": p.ID, "sub": sub, "length": length, "body": len(p.Body)},
		})
		return errors
	}
	if !v1ChecksumOK(p.ID, p.Body[:length+3]) {
		errors = append(errors, ValidationError{
			Type:    ANOMALY_CHECKSUM,
			Message: fmt.Sprintf("x%02x-%02x checksum mismatch", p.ID, sub),
			Details: map[string]interface{}{"id": p.ID, "sub": sub},
		})
	}
	return errors
}

// checkDOP flags quality scalars outside the plausible window. The
// receivers use large sentinels for "not computed"; those are dropped
// silently at decode, so only report truly absurd negatives here.
func checkDOP(name string, v float64) *ValidationError {
	if v < 0 {
		return &ValidationError{
			Type:    ANOMALY_INVALID_VALUE,
			Message: fmt.Sprintf("negative %s %.2f", name, v),
			Details: map[string]interface{}{"field": name, "value": v},
		}
	}
	return nil
}

// checkWeek flags GPS week numbers that survive rollover correction but
// still predate the hardware this protocol ships in.
func checkWeek(week int) *ValidationError {
	if week != 0 && week < 1000 {
		return &ValidationError{
			Type:    ANOMALY_WEEK_SUSPECT,
			Message: fmt.Sprintf("implausible GPS week %d", week),
			Details: map[string]interface{}{"week": week},
		}
	}
	return nil
}
