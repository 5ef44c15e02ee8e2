// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

// Framing
const (
	DLE = 0x10 // frame start, also the stuffed byte
	ETX = 0x03 // frame end, follows an unstuffed DLE

	// MaxPacketSize bounds the de-stuffed body of one packet. The longest
	// documented reports (x58 satellite system data, xa2-00 bursts) stay
	// well under this.
	MaxPacketSize = 1024

	// MaxCommandLen bounds outbound command bodies. Stuffing can double a
	// body, so the framer refuses anything longer than half of this.
	MaxCommandLen = 512
)

// Unit conversions
const (
	// SemiToDeg converts semicircle-encoded angles: 2^31 semicircles = 180 deg.
	SemiToDeg = 180.0 / 2147483647.0

	RadToDeg = 57.29577951308232

	// CLight is the speed of light in m/s, for clock bias meters -> ns.
	CLight = 299792458.0
)

// Capacities
const (
	// MaxChannels is the skyview table size. Generous: the biggest
	// multi-GNSS Trimble timing receivers track 32 signals.
	MaxChannels = 64
)

// Legacy packet IDs (reports unless noted).
const (
	IDCommandAck       = 0x13 // packet received / rejected
	IDVersionInfo      = 0x1c // x1c-81 firmware, x1c-83 hardware
	IDGPSTime          = 0x41
	IDPosECEFSingle    = 0x42
	IDVelECEF          = 0x43
	IDSoftwareVersion  = 0x45
	IDHealth           = 0x46
	IDSignalLevels     = 0x47
	IDSystemMessage    = 0x48
	IDPosLLASingle     = 0x4a
	IDMachineID        = 0x4b
	IDOperatingParams  = 0x4c
	IDBiasRate         = 0x54
	IDIOOptions        = 0x55
	IDVelENU           = 0x56
	IDLastFixInfo      = 0x57
	IDRawMeasurement   = 0x5a
	IDTrackingStatus   = 0x5c // GPS-only satellite tracking
	IDGNSSTracking     = 0x5d // multi-GNSS satellite tracking
	IDSatSelection     = 0x6c
	IDAllInView        = 0x6d
	IDDGPSFixMode      = 0x82
	IDPosECEFDouble    = 0x83
	IDPosLLADouble     = 0x84
	IDSuperPacket      = 0x8f
	IDNavConfiguration = 0xbb
)

// Legacy command IDs (outbound).
const (
	cmdFirmwareVersion = 0x1c // with sub 1 or 3
	cmdSoftVersionReq  = 0x1f
	cmdTimeReq         = 0x21
	cmdModeSet         = 0x22
	cmdInitBattery     = 0x25
	cmdHealthReq       = 0x26
	cmdSystemMsgReq    = 0x28
	cmdFixModeReq      = 0x24
	cmdOpParamsReq     = 0x2c
	cmdIOOptionsReq    = 0x35
	cmdLastRawReq      = 0x37
	cmdTrackingReq     = 0x3c
	cmdSuperPacket     = 0x8e
	cmdNavConfigReq    = 0xbb
	cmdPortConfig      = 0xbc
	cmdNMEAMask        = 0x7a
	cmdNMEAPort        = 0x8c
)

// Superpacket (0x8f / 0x8e) sub-IDs.
const (
	SubCurrentDatum    = 0x15
	SubLFwEI           = 0x20 // Last Fix with Extra Information
	SubCompactFix      = 0x23
	SubProductionParam = 0x42
	SubBroadcastMask   = 0xa5
	SubSelfSurveyCmd   = 0xa6
	SubSatSolutions    = 0xa7
	SubSelfSurveyParam = 0xa9
	SubPrimaryTiming   = 0xab
	SubSupplTiming     = 0xac
)

// TSIPv1 packet IDs. Anything in this range is redirected out of the
// legacy dispatcher; the wire carries no other generation marker.
const (
	IDv1Version    = 0x90
	IDv1Config     = 0x91
	IDv1Resets     = 0x92
	IDv1Production = 0x93
	IDv1Firmware   = 0xa0
	IDv1PVT        = 0xa1
	IDv1GNSSInfo   = 0xa2
	IDv1Alarms     = 0xa3
	IDv1AGNSS      = 0xa4
	IDv1Misc       = 0xa5
	IDv1Debug      = 0xd0
)

// TSIPv1 mode byte values.
const (
	V1ModeQuery  = 0
	V1ModeSet    = 1
	V1ModeReport = 2
)

// Hardware codes reported in x1c-83, keyed to configuration families.
const (
	HWLassenIQ       = 1001
	HWCopernicus     = 1002
	HWCopernicusII   = 1003
	HWAcutimeGold    = 3001
	HWResolutionT    = 3002
	HWThunderboltE   = 3007
	HWResolutionSMT  = 3009
	HWResolutionSMTx = 3017
	HWResSMT360      = 3023
	HWICMSMT360      = 3026
	HWRES36017x22    = 3031
	HWAcutime360     = 3032
	HWRES720         = 3100
)

// Superpacket support levels discovered from x4b status2.
const (
	SuperpktNone   = 0
	SuperpktLFwEI  = 1
	SuperpktTiming = 2
)

// Fix dimension codes shared by x6c/x6d low bits.
const (
	fixDimNone = 1
	fixDim2D   = 3
	fixDim4    = 4 // 3D
	fixDimOD   = 5 // overdetermined clock
	fixDimDGPS = 6
)

// FixMode is the normalized fix mode written into a FixSnapshot.
type FixMode int

const (
	ModeUnknown FixMode = iota
	ModeNoFix
	Mode2D
	Mode3D
)

// FixStatus is the normalized DGPS-vs-autonomous status.
type FixStatus int

const (
	StatusUnknown FixStatus = iota
	StatusNone
	StatusGPS
	StatusDGPS
	StatusDR   // dead reckoning, fix carried with no usable satellites
	StatusTime // surveyed-in timing fix (overdetermined clock)
)

// GNSS constellation IDs, u-blox/NMEA 4.11 numbering.
const (
	GnssGPS     = 0
	GnssSBAS    = 1
	GnssGalileo = 2
	GnssBeiDou  = 3
	GnssIMES    = 4
	GnssQZSS    = 5
	GnssGLONASS = 6
	GnssIRNSS   = 7
	GnssUnknown = 0xff
)

// SigUnknown marks a signal id the receiver documentation does not pin down.
const SigUnknown = 0xff
