// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import (
	"encoding/binary"
	"math"
)

func appendBeU16(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendBeU32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

func appendBeF32(b []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(b, math.Float32bits(v))
}

const degToRad = math.Pi / 180.0

// Legacy request builders. Each returns the unframed body; the framer
// adds DLE stuffing on the way out.

func cmdRequestSoftwareVersion() Command {
	return Command{Label: "software version request", Body: []byte{cmdSoftVersionReq}}
}

func cmdRequestTime() Command {
	return Command{Label: "current time request", Body: []byte{cmdTimeReq}}
}

func cmdRequestFixMode() Command {
	return Command{Label: "fix mode request", Body: []byte{cmdFixModeReq}}
}

func cmdRequestHealth() Command {
	return Command{Label: "receiver health request", Body: []byte{cmdHealthReq}}
}

func cmdRequestSystemMessage() Command {
	return Command{Label: "system message request", Body: []byte{cmdSystemMsgReq}}
}

func cmdRequestIOOptions() Command {
	return Command{Label: "io options request", Body: []byte{cmdIOOptionsReq}}
}

func cmdRequestLastPosVel() Command {
	return Command{Label: "last position/velocity request", Body: []byte{cmdLastRawReq}}
}

func cmdRequestTracking() Command {
	// 0x00 selects all satellites. Answered by x5c or x5d.
	return Command{Label: "tracking status request", Body: []byte{cmdTrackingReq, 0x00}}
}

func cmdRequestNavConfig() Command {
	return Command{Label: "receiver configuration request", Body: []byte{cmdNavConfigReq, 0x00}}
}

func cmdRequestFirmwareVersion() Command {
	return Command{Label: "firmware version request", Body: []byte{cmdFirmwareVersion, 0x01}}
}

func cmdRequestHardwareVersion() Command {
	return Command{Label: "hardware version request", Body: []byte{cmdFirmwareVersion, 0x03}}
}

func cmdRequestDatum() Command {
	return Command{Label: "output datum request", Body: []byte{cmdSuperPacket, SubCurrentDatum}}
}

func cmdRequestProductionParams() Command {
	return Command{Label: "production parameters request", Body: []byte{cmdSuperPacket, SubProductionParam}}
}

func cmdRequestBroadcastMask() Command {
	return Command{Label: "broadcast mask request", Body: []byte{cmdSuperPacket, SubBroadcastMask}}
}

func cmdRequestSelfSurveyParams() Command {
	return Command{Label: "self-survey parameters request", Body: []byte{cmdSuperPacket, SubSelfSurveyParam}}
}

// cmdSetLFwEI enables or disables the x8f-20 LFwEI superpacket.
func cmdSetLFwEI(enable bool) Command {
	b := byte(0)
	label := "lfwei superpacket disable"
	if enable {
		b = 1
		label = "lfwei superpacket enable"
	}
	return Command{Label: label, Body: []byte{cmdSuperPacket, SubLFwEI, b}}
}

// cmdRequestCompactFix asks for the x8f-23 compact fix superpacket once.
func cmdRequestCompactFix() Command {
	return Command{Label: "compact fix request", Body: []byte{cmdSuperPacket, SubCompactFix, 0x01}}
}

// ConfigureGeneric is the setup batch for pre-timing Trimble receivers
// (Lassen family, Thunderbolt E, Acutime 2000 and everything unrecognized):
// double-precision LLA with ENU velocity and dB-Hz signal levels, land
// dynamics, 10 degree elevation mask, then a sweep of status requests.
func ConfigureGeneric() []Command {
	io := []byte{cmdIOOptionsReq, ioPos8F20 | ioPosDP | ioPosLLA, ioVelENU, 0x00, ioAuxDBHz}

	op := []byte{cmdOpParamsReq, 0x01} // dynamics: land
	op = appendBeF32(op, float32(10.0*degToRad))
	op = appendBeF32(op, 6.0) // signal level mask, AMU
	op = appendBeF32(op, 8.0) // PDOP mask
	op = appendBeF32(op, 6.0) // PDOP switch

	return []Command{
		{Label: "io options set", Body: io},
		cmdRequestSoftwareVersion(),
		cmdRequestTime(),
		{Label: "operating parameters set", Body: op},
		{Label: "fix mode auto", Body: []byte{cmdModeSet, 0x00}},
		cmdRequestSystemMessage(),
		cmdRequestLastPosVel(),
		cmdRequestDatum(),
		cmdRequestNavConfig(),
	}
}

// ConfigureAcutimeGold is the setup batch for the Acutime Gold timing
// antenna: self-survey with position save, PPS always on, overdetermined
// clock mode, and the timing superpackets on the broadcast mask.
func ConfigureAcutimeGold() []Command {
	survey := []byte{cmdSuperPacket, SubSelfSurveyParam, 0x01, 0x01}
	survey = appendBeU32(survey, 2000) // survey length, fixes
	survey = appendBeF32(survey, 100)  // horizontal uncertainty, worst
	survey = appendBeF32(survey, 100)  // vertical uncertainty, worst

	cfg := []byte{cmdNavConfigReq, 0x00,
		0x07, // receiver mode: force overdetermined clock
		0xff, // unchanged
		0x01, // dynamics
		0x01, // solution mode
	}
	cfg = appendBeF32(cfg, float32(10.0*degToRad))
	cfg = appendBeF32(cfg, 4.0) // AMU mask
	cfg = appendBeF32(cfg, 8.0) // PDOP mask
	cfg = appendBeF32(cfg, 6.0) // PDOP switch
	cfg = append(cfg, 0xff, 0x00)
	cfg = appendBeU16(cfg, 0xffff) // reserved, must be 0xffff
	cfg = appendBeU16(cfg, 0x0000) // measurement/fix rate default
	cfg = appendBeU32(cfg, 0xffffffff)
	cfg = appendBeU32(cfg, 0xffffffff)
	cfg = appendBeU32(cfg, 0xffffffff)
	cfg = appendBeU32(cfg, 0xffffffff)

	mask := []byte{cmdSuperPacket, SubBroadcastMask}
	// default + primary and supplemental timing + automatic output
	mask = appendBeU16(mask, 0x32e1)
	mask = append(mask, 0x00, 0x00)

	return []Command{
		cmdRequestFirmwareVersion(),
		{Label: "self-survey parameters set", Body: survey},
		{Label: "pps output always on", Body: []byte{cmdSuperPacket, 0x4e, 0x02}},
		{Label: "receiver configuration set", Body: cfg},
		{Label: "broadcast mask set", Body: mask},
	}
}

// ConfigureRES360 is the setup batch for the RES/ICM SMT 360 timing module
// family and the RES720. Passive sessions only query the current state;
// active ones turn on automatic output and the full position/velocity
// packet set.
func ConfigureRES360(passive bool) []Command {
	cmds := []Command{cmdRequestSelfSurveyParams()}
	if passive {
		return append(cmds,
			cmdRequestIOOptions(),
			cmdRequestNavConfig(),
			cmdRequestBroadcastMask(),
		)
	}

	mask := []byte{cmdSuperPacket, SubBroadcastMask,
		0x00, 0x45, // primary + supplemental timing + automatic output
		0x00, 0x00,
	}
	io := []byte{cmdIOOptionsReq,
		ioPosDP | ioPosLLA | ioPosECEF,
		ioVelECEF | ioVelENU,
		0x01, // timing: 0x8e-a2 style
		ioAuxDBHz,
	}
	return append(cmds,
		Command{Label: "broadcast mask set", Body: mask},
		Command{Label: "io options set", Body: io},
	)
}

// IO option bits for x35/x55 byte 1 (position), 2 (velocity), 4 (aux).
const (
	ioPosECEF = 0x01
	ioPosLLA  = 0x02
	ioPosMSL  = 0x04
	ioPosDP   = 0x10
	ioPos8F20 = 0x20

	ioVelECEF = 0x01
	ioVelENU  = 0x02

	ioAuxRaw  = 0x01
	ioAuxDBHz = 0x08
)

// v1Frame builds a TSIPv1 packet body: id, sub-id, big-endian length
// covering mode+payload+checksum, mode byte, payload, then an XOR
// checksum over everything before it.
func v1Frame(id, sub, mode uint8, payload []byte) []byte {
	buf := make([]byte, 0, 6+len(payload))
	buf = append(buf, id, sub)
	buf = appendBeU16(buf, uint16(len(payload)+2))
	buf = append(buf, mode)
	buf = append(buf, payload...)
	return append(buf, XorChecksum(buf))
}

func v1Query(label string, id, sub uint8, payload ...byte) Command {
	return Command{Label: label, Body: v1Frame(id, sub, V1ModeQuery, payload)}
}

func v1QueryProtocolVersion() Command {
	return v1Query("protocol version query", IDv1Version, 0x00)
}

func v1QueryReceiverVersion() Command {
	return v1Query("receiver version query", IDv1Version, 0x01)
}

func v1QueryPortConfig() Command {
	// trailing 0: current port
	return v1Query("port configuration query", IDv1Config, 0x00, 0x00)
}

func v1QueryGNSSConfig() Command {
	return v1Query("gnss configuration query", IDv1Config, 0x01)
}

func v1QueryTimingConfig() Command {
	return v1Query("timing configuration query", IDv1Config, 0x03)
}

func v1QuerySurveyConfig() Command {
	return v1Query("self-survey configuration query", IDv1Config, 0x04)
}

func v1QueryPeriodicMask() Command {
	// 0xff: current port
	return v1Query("periodic message query", IDv1Config, 0x05, 0xff)
}

// v1SetPeriodicMask turns on every periodic report on the current port.
// Harmless at 115.2 kbps, and the receiver answers it like a query.
func v1SetPeriodicMask() Command {
	payload := []byte{0xff}
	payload = appendBeU32(payload, 0xaaaaa)
	payload = appendBeU32(payload, 0)
	payload = appendBeU32(payload, 0)
	payload = appendBeU32(payload, 0)
	return Command{
		Label: "periodic message set",
		Body:  v1Frame(IDv1Config, 0x05, V1ModeSet, payload),
	}
}

func v1QueryProductionInfo() Command {
	return v1Query("production info query", IDv1Production, 0x00)
}

// baudCode maps a serial rate onto the x bc/x8c port-configuration code:
// 300 bps is code 2 and each doubling adds one.
func baudCode(baud int) byte {
	code := byte(2)
	for r := 300; r < baud && code < 11; r *= 2 {
		code++
	}
	return code
}

// SpeedSwitch builds the x bc port configuration that moves the current
// port to a new rate while staying in TSIP on both directions.
// Parity is 'N', 'O' or 'E'; TSIP hardware normally runs 8-O-1.
func SpeedSwitch(baud int, parity byte, stopbits int) Command {
	var p byte
	switch parity {
	case 'E', 2:
		p = 2
	case 'O', 1:
		p = 1
	default:
		p = 0
	}
	code := baudCode(baud)
	return Command{
		Label: "port speed switch",
		Body: []byte{cmdPortConfig,
			0xff, // current port
			code, // input rate
			code, // output rate
			3,    // 8 data bits
			p,
			byte(stopbits - 1),
			0,    // no flow control
			0x02, // input protocol TSIP
			0x02, // output protocol TSIP
			0,
		},
	}
}

// NMEAMode builds the command pair that flips the receiver's output to
// NMEA: first the sentence mask (GGA, GSV, GSA plus GST at a one second
// interval), then the port switch with NMEA output. Input stays TSIP so
// the receiver can be switched back.
func NMEAMode() []Command {
	return []Command{
		{Label: "nmea sentence mask", Body: []byte{cmdNMEAMask,
			0x00, // subcode
			0x01, // fix interval, seconds
			0x00, 0x00,
			0x01, // GST
			0x19, // GGA | GSV | GSA
		}},
		{Label: "nmea port switch", Body: []byte{cmdNMEAPort,
			0xff, // current port
			0x06, // 4800 bps in
			0x06, // 4800 bps out
			0x03, // 8 data bits
			0x00, // no parity
			0x00, // 1 stop bit
			0x00, // no flow control
			0x02, // input protocol TSIP
			0x04, // output protocol NMEA
			0x00,
		}},
	}
}

// TSIPMode reverts a receiver from NMEA back to TSIP output at the
// protocol default 9600 8-O-1.
func TSIPMode() Command {
	return SpeedSwitch(9600, 'O', 1)
}
