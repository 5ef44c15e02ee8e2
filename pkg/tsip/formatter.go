// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"fmt"
	"strings"
)

// FormatPacket formats a packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.Timestamp.Format("15:04:05.000")

	var result string
	if p.IsV1() && len(p.Body) >= 4 {
		sub := p.Body[0]
		result = fmt.Sprintf("[%s] %s (0x%02X-%02X) len=%d\n",
			timestamp, FormatPacketType(p.ID, sub), p.ID, sub, len(p.Body))
		result += formatV1Payload(p.ID, sub, p.Body)
	} else {
		sub := uint8(0xff)
		if p.ID == IDSuperPacket && len(p.Body) > 0 {
			sub = p.Body[0]
		}
		result = fmt.Sprintf("[%s] %s (0x%02X) len=%d\n",
			timestamp, FormatPacketType(p.ID, sub), p.ID, len(p.Body))
		result += formatLegacyPayload(p.ID, p.Body)
	}
	return result
}

// FormatPacketType returns the human-readable name for a packet type.
// sub narrows superpacket and TSIPv1 ids; pass 0xff when unknown.
func FormatPacketType(id, sub uint8) string {
	if IsV1ID(id) {
		if name, ok := v1PacketNames[uint16(id)<<8|uint16(sub)]; ok {
			return name
		}
		return "V1_UNKNOWN"
	}
	if id == IDSuperPacket {
		if name, ok := superPacketNames[sub]; ok {
			return name
		}
		return "SUPERPACKET"
	}
	if name, ok := legacyPacketNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}

var legacyPacketNames = map[byte]string{
	IDCommandAck:       "COMMAND_ACK",
	IDVersionInfo:      "VERSION_INFO",
	IDGPSTime:          "GPS_TIME",
	IDPosECEFSingle:    "POS_ECEF_SINGLE",
	IDVelECEF:          "VEL_ECEF",
	IDSoftwareVersion:  "SOFTWARE_VERSION",
	IDHealth:           "RECEIVER_HEALTH",
	IDSignalLevels:     "SIGNAL_LEVELS",
	IDSystemMessage:    "SYSTEM_MESSAGE",
	IDPosLLASingle:     "POS_LLA_SINGLE",
	IDMachineID:        "MACHINE_ID",
	IDOperatingParams:  "OPERATING_PARAMS",
	IDBiasRate:         "BIAS_RATE",
	IDIOOptions:        "IO_OPTIONS",
	IDVelENU:           "VEL_ENU",
	IDLastFixInfo:      "LAST_FIX_INFO",
	IDRawMeasurement:   "RAW_MEASUREMENT",
	IDTrackingStatus:   "TRACKING_STATUS",
	IDGNSSTracking:     "GNSS_TRACKING",
	IDSatSelection:     "SAT_SELECTION",
	IDAllInView:        "ALL_IN_VIEW",
	IDDGPSFixMode:      "DGPS_FIX_MODE",
	IDPosECEFDouble:    "POS_ECEF_DOUBLE",
	IDPosLLADouble:     "POS_LLA_DOUBLE",
	IDNavConfiguration: "NAV_CONFIGURATION",
}

var superPacketNames = map[byte]string{
	SubCurrentDatum:    "CURRENT_DATUM",
	SubLFwEI:           "LAST_FIX_EXTRA",
	SubCompactFix:      "COMPACT_FIX",
	SubProductionParam: "PRODUCTION_PARAMS",
	SubBroadcastMask:   "BROADCAST_MASK",
	SubSelfSurveyCmd:   "SELF_SURVEY_CMD",
	SubSatSolutions:    "SAT_SOLUTIONS",
	SubSelfSurveyParam: "SELF_SURVEY_PARAMS",
	SubPrimaryTiming:   "PRIMARY_TIMING",
	SubSupplTiming:     "SUPPLEMENTAL_TIMING",
}

var v1PacketNames = map[uint16]string{
	0x9000: "V1_PROTOCOL_VERSION",
	0x9001: "V1_RECEIVER_VERSION",
	0x9100: "V1_PORT_CONFIG",
	0x9101: "V1_GNSS_CONFIG",
	0x9102: "V1_NVS_CONFIG",
	0x9103: "V1_TIMING_CONFIG",
	0x9104: "V1_SURVEY_CONFIG",
	0x9105: "V1_RECEIVER_CONFIG",
	0x9201: "V1_RESET_CAUSE",
	0x9300: "V1_PRODUCTION_INFO",
	0xa000: "V1_FIRMWARE_UPLOAD",
	0xa100: "V1_TIMING_INFO",
	0xa102: "V1_FREQUENCY_INFO",
	0xa111: "V1_POSITION_INFO",
	0xa200: "V1_SATELLITE_INFO",
	0xa300: "V1_SYSTEM_ALARMS",
	0xa311: "V1_RECEIVER_STATUS",
	0xa321: "V1_ERROR_REPORT",
	0xd000: "V1_DEBUG_OUTPUT",
	0xd001: "V1_DEBUG_CONFIG",
}

func formatLegacyPayload(id uint8, body []byte) string {
	switch id {
	case IDGPSTime:
		if len(body) < 10 {
			break
		}
		return fmt.Sprintf("  tow=%.3f week=%d utc_offset=%.1f\n",
			beF32(body, 0), beU16(body, 4), beF32(body, 6))
	case IDHealth:
		if len(body) < 2 {
			break
		}
		return fmt.Sprintf("  status=%s error=%s\n",
			lookupValue(decodeStatus, uint32(body[0])),
			lookupFlags(errCodes, uint32(body[1])))
	case IDPosLLASingle:
		if len(body) < 20 {
			break
		}
		return fmt.Sprintf("  lat=%.6f lon=%.6f alt=%.2f bias=%.1f tow=%.3f\n",
			float64(beF32(body, 0))*RadToDeg, float64(beF32(body, 4))*RadToDeg,
			beF32(body, 8), beF32(body, 12), beF32(body, 16))
	case IDMachineID:
		if len(body) < 3 {
			break
		}
		return fmt.Sprintf("  machine=0x%02x status1=%s status2=%s\n",
			body[0],
			lookupFlags(status1Flags, uint32(body[1])),
			lookupFlags(status2Flags, uint32(body[2])))
	case IDIOOptions:
		if len(body) < 4 {
			break
		}
		return fmt.Sprintf("  pos=%s vel=%s timing=%s aux=%s\n",
			lookupFlags(ioPosFlags, uint32(body[0])),
			lookupFlags(ioVelFlags, uint32(body[1])),
			lookupFlags(ioTimingFlags, uint32(body[2])),
			lookupFlags(ioAuxFlags, uint32(body[3])))
	case IDVelENU:
		if len(body) < 20 {
			break
		}
		return fmt.Sprintf("  ve=%.2f vn=%.2f vu=%.2f bias_rate=%.2f tow=%.3f\n",
			beF32(body, 0), beF32(body, 4), beF32(body, 8),
			beF32(body, 12), beF32(body, 16))
	case IDTrackingStatus:
		if len(body) < 24 {
			break
		}
		return fmt.Sprintf("  prn=%d chan=%d acq=%s snr=%.1f el=%.1f az=%.1f\n",
			body[0], body[1]>>3,
			lookupValue(acqFlags, uint32(body[2])),
			beF32(body, 4),
			float64(beF32(body, 12))*RadToDeg,
			float64(beF32(body, 16))*RadToDeg)
	case IDSatSelection:
		if len(body) < 18 {
			break
		}
		return fmt.Sprintf("  fixdm=%s pdop=%.1f hdop=%.1f vdop=%.1f tdop=%.1f nsats=%d\n",
			lookupFlags(fixDims, uint32(body[0])),
			beF32(body, 1), beF32(body, 5), beF32(body, 9), beF32(body, 13),
			body[17])
	case IDAllInView:
		if len(body) < 17 {
			break
		}
		return fmt.Sprintf("  fixdm=%s nsats=%d pdop=%.1f hdop=%.1f vdop=%.1f tdop=%.1f\n",
			lookupFlags(fixDims, uint32(body[0])&0x0f),
			(body[0]>>4)&0x0f,
			beF32(body, 1), beF32(body, 5), beF32(body, 9), beF32(body, 13))
	case IDPosLLADouble:
		if len(body) < 36 {
			break
		}
		return fmt.Sprintf("  lat=%.7f lon=%.7f alt=%.2f bias=%.1f tow=%.3f\n",
			beF64(body, 0)*RadToDeg, beF64(body, 8)*RadToDeg,
			beF64(body, 16), beF64(body, 24), beF32(body, 32))
	case IDNavConfiguration:
		if len(body) < 28 {
			break
		}
		return fmt.Sprintf("  mode=%s elev_mask=%.1f amu=%.1f dop_mask=%.1f\n",
			lookupValue(recModes, uint32(body[1])),
			float64(beF32(body, 5))*RadToDeg,
			beF32(body, 9), beF32(body, 13))
	case IDSuperPacket:
		return formatSuperPayload(body)
	}
	return formatHexPayload(body)
}

func formatSuperPayload(body []byte) string {
	if len(body) == 0 {
		return "  (no payload)\n"
	}
	switch body[0] {
	case SubPrimaryTiming:
		if len(body) < 17 {
			break
		}
		return fmt.Sprintf("  tow=%d week=%d leap=%d flags=%s\n",
			beU32(body, 1), beU16(body, 5), beS16(body, 7),
			lookupFlags(timingFlags, uint32(body[9])))
	case SubSupplTiming:
		if len(body) < 68 {
			break
		}
		return fmt.Sprintf("  recv_mode=%s disc=%s status=%s temp=%.1f lat=%.7f lon=%.7f alt=%.2f\n",
			lookupValue(recModes, uint32(body[1])),
			lookupValue(discipliningActivity, uint32(body[2])),
			lookupValue(decodeStatus, uint32(body[12])),
			beF32(body, 32),
			beF64(body, 36)*RadToDeg, beF64(body, 44)*RadToDeg, beF64(body, 52))
	case SubLFwEI:
		if len(body) < 56 {
			break
		}
		return fmt.Sprintf("  tow=%dms lat=%.6f lon=%.6f alt=%.2fm nsats=%d flags=%s\n",
			beU32(body, 8),
			float64(beS32(body, 12))*SemiToDeg,
			float64(beS32(body, 16))*SemiToDeg,
			float64(beS32(body, 20))/1000.0,
			body[28],
			lookupFlags(lfweiFixFlags, uint32(body[27])))
	}
	return formatHexPayload(body)
}

func formatV1Payload(id, sub uint8, body []byte) string {
	switch uint16(id)<<8 | uint16(sub) {
	case 0xa100:
		if len(body) < 24 {
			break
		}
		return fmt.Sprintf("  tow=%d week=%d %04d/%02d/%02d %02d:%02d:%02d utc_offset=%d flags=%s\n",
			beU32(body, 4), beU16(body, 8),
			beU16(body, 15), body[13], body[14],
			body[10], body[11], body[12],
			beS16(body, 20),
			lookupFlags(v1TimeFlags, uint32(body[19])))
	case 0xa111:
		if len(body) < 52 {
			break
		}
		return fmt.Sprintf("  pmask=%s fix=%s p1=%.7f p2=%.7f p3=%.2f pdop=%.1f\n",
			lookupFlags(v1PosMask, uint32(body[4])),
			lookupValue(v1FixTypes, uint32(body[5])),
			beF64(body, 6), beF64(body, 14), beF64(body, 22),
			beF32(body, 42))
	case 0xa200:
		if len(body) < 28 {
			break
		}
		return fmt.Sprintf("  num=%d type=%s prn=%d az=%.1f el=%.1f snr=%.1f flags=%s\n",
			body[4],
			lookupValue(v1SVTypes, uint32(body[5])),
			body[6],
			beF32(body, 7), beF32(body, 11), beF32(body, 15),
			lookupFlags(v1SatFlags, beU32(body, 19)))
	case 0xa300:
		if len(body) < 20 {
			break
		}
		return fmt.Sprintf("  minor=%s major=%s\n",
			lookupFlags(v1MinorAlarms, beU32(body, 4)),
			lookupFlags(v1MajorAlarms, beU32(body, 12)))
	case 0xa311:
		if len(body) < 27 {
			break
		}
		return fmt.Sprintf("  mode=%s status=%s survey=%d%% pdop=%.1f temp=%.1f\n",
			lookupValue(v1RecModes, uint32(body[4])),
			lookupValue(v1DecodeStatus, uint32(body[5])),
			body[6], beF32(body, 7), beF32(body, 23))
	case 0xa321:
		if len(body) < 9 {
			break
		}
		return fmt.Sprintf("  rejected=x%02x-%02x error=%s\n",
			body[4], body[5],
			lookupValue(v1ErrorCodes, uint32(body[6])))
	case 0x9201:
		if len(body) < 9 {
			break
		}
		return fmt.Sprintf("  cause=%s\n", lookupValue(v1ResetCauses, uint32(body[6])))
	}
	return formatHexPayload(body)
}

func formatHexPayload(body []byte) string {
	if len(body) == 0 {
		return "  (no payload)\n"
	}
	var b strings.Builder
	for i := 0; i < len(body); i += 16 {
		end := i + 16
		if end > len(body) {
			end = len(body)
		}
		b.WriteString("  ")
		for _, v := range body[i:end] {
			fmt.Fprintf(&b, "%02x ", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatFix renders a fix snapshot for the watch display
func FormatFix(f *FixSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%s status=%s", formatMode(f.Mode), formatStatus(f.Status))
	if !f.Time.IsZero() {
		fmt.Fprintf(&b, " time=%s", f.Time.UTC().Format("2006-01-02T15:04:05Z"))
	}
	if f.Mode >= Mode2D {
		fmt.Fprintf(&b, " lat=%.6f lon=%.6f", f.Lat, f.Lon)
	}
	if f.Mode >= Mode3D {
		fmt.Fprintf(&b, " alt=%.2f", f.AltHAE)
	}
	if f.PDOP > 0 {
		fmt.Fprintf(&b, " pdop=%.1f", f.PDOP)
	}
	return b.String()
}

// FormatSkyview renders one line per seen satellite
func FormatSkyview(t *SkyviewTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "satellites visible: %d\n", t.Visible)
	for _, sat := range t.Seen() {
		used := " "
		if sat.Used {
			used = "*"
		}
		fmt.Fprintf(&b, "  %s%s %3d el %5.1f az %5.1f snr %4.1f\n",
			used, GnssName(sat.GnssID), sat.PRN, sat.Elevation, sat.Azimuth, sat.SNR)
	}
	return b.String()
}

func formatMode(m FixMode) string {
	switch m {
	case ModeNoFix:
		return "NO_FIX"
	case Mode2D:
		return "2D"
	case Mode3D:
		return "3D"
	}
	return "UNKNOWN"
}

func formatStatus(s FixStatus) string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusGPS:
		return "GPS"
	case StatusDGPS:
		return "DGPS"
	case StatusDR:
		return "DR"
	case StatusTime:
		return "TIME"
	}
	return "UNKNOWN"
}
