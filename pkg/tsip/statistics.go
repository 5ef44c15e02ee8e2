// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"time"
)

// Statistics tracks packet statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPackets     uint64
	ValidPackets     uint64
	V1Packets        uint64
	FramingErrors    uint64
	ChecksumErrors   uint64
	ShortPackets     uint64
	LengthMismatches uint64
	UnknownTypes     uint64
	UnknownSubtypes  uint64
	InvalidValues    uint64
	SatIndexErrors   uint64
	SuspectWeeks     uint64
	Rejects          uint64
	SkippedBytes     uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec
	ErrorRate  float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a packet and its errors
func (s *Statistics) Update(packet *Packet, decodeErr error, validationErrors []ValidationError) {
	s.TotalPackets++

	if decodeErr != nil {
		s.FramingErrors++
		return // don't process packet further if framing failed
	}
	if packet != nil && packet.IsV1() {
		s.V1Packets++
	}

	if len(validationErrors) > 0 {
		for _, err := range validationErrors {
			switch err.Type {
			case ANOMALY_CHECKSUM:
				s.ChecksumErrors++
			case ANOMALY_SHORT_PACKET:
				s.ShortPackets++
			case ANOMALY_LENGTH_MISMATCH:
				s.LengthMismatches++
			case ANOMALY_UNKNOWN_TYPE:
				s.UnknownTypes++
			case ANOMALY_UNKNOWN_SUBTYPE:
				s.UnknownSubtypes++
			case ANOMALY_INVALID_VALUE:
				s.InvalidValues++
			case ANOMALY_SAT_INDEX:
				s.SatIndexErrors++
			case ANOMALY_WEEK_SUSPECT:
				s.SuspectWeeks++
			case ANOMALY_REJECTED:
				s.Rejects++
			case ANOMALY_FRAMING:
				s.FramingErrors++
			}
		}
	} else {
		// No errors - packet is valid
		s.ValidPackets++
	}

	s.LastUpdateTime = time.Now()
}

// AddSkipped records bytes the framer discarded while hunting for sync
func (s *Statistics) AddSkipped(n int) {
	if n > 0 {
		s.SkippedBytes += uint64(n)
	}
}

// CalculateRates calculates packet and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.TotalPackets) / elapsed
		errorCount := s.FramingErrors + s.ChecksumErrors + s.ShortPackets +
			s.LengthMismatches + s.InvalidValues + s.SatIndexErrors
		s.ErrorRate = float64(errorCount) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, v1Percent float64
	if s.TotalPackets > 0 {
		validPercent = float64(s.ValidPackets) * 100.0 / float64(s.TotalPackets)
		v1Percent = float64(s.V1Packets) * 100.0 / float64(s.TotalPackets)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Packets:   %8d\n", s.TotalPackets)
	result += fmt.Sprintf("Valid Packets:   %8d (%.1f%%)\n", s.ValidPackets, validPercent)
	if s.V1Packets > 0 {
		result += fmt.Sprintf("TSIPv1 Packets:  %8d (%.1f%%)\n", s.V1Packets, v1Percent)
	}
	if s.FramingErrors > 0 {
		result += fmt.Sprintf("Framing Errors:  %8d\n", s.FramingErrors)
	}
	if s.ChecksumErrors > 0 {
		result += fmt.Sprintf("Checksum Errors: %8d\n", s.ChecksumErrors)
	}
	if s.ShortPackets > 0 {
		result += fmt.Sprintf("Short Packets:   %8d\n", s.ShortPackets)
	}
	if s.LengthMismatches > 0 {
		result += fmt.Sprintf("Length Mismatch: %8d\n", s.LengthMismatches)
	}
	if s.UnknownTypes > 0 || s.UnknownSubtypes > 0 {
		result += fmt.Sprintf("Unknown Types:   %8d\n", s.UnknownTypes+s.UnknownSubtypes)
	}
	if s.InvalidValues > 0 {
		result += fmt.Sprintf("Invalid Values:  %8d\n", s.InvalidValues)
	}
	if s.SatIndexErrors > 0 {
		result += fmt.Sprintf("Sat Index Errs:  %8d\n", s.SatIndexErrors)
	}
	if s.SuspectWeeks > 0 {
		result += fmt.Sprintf("Suspect Weeks:   %8d\n", s.SuspectWeeks)
	}
	if s.Rejects > 0 {
		result += fmt.Sprintf("Cmd Rejects:     %8d\n", s.Rejects)
	}
	if s.SkippedBytes > 0 {
		result += fmt.Sprintf("Skipped Bytes:   %8d\n", s.SkippedBytes)
	}

	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalPackets = 0
	s.ValidPackets = 0
	s.V1Packets = 0
	s.FramingErrors = 0
	s.ChecksumErrors = 0
	s.ShortPackets = 0
	s.LengthMismatches = 0
	s.UnknownTypes = 0
	s.UnknownSubtypes = 0
	s.InvalidValues = 0
	s.SatIndexErrors = 0
	s.SuspectWeeks = 0
	s.Rejects = 0
	s.SkippedBytes = 0
	s.PacketRate = 0
	s.ErrorRate = 0
}
