// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

// GnssSat is a normalized (constellation, satellite) pair. SigID is only
// meaningful for TSIPv1 receivers; legacy packets never report it.
type GnssSat struct {
	GnssID uint8
	SvID   uint8
	SigID  uint8
}

// GnssIDFromPRN translates the legacy TSIP "SV type + PRN" coding into a
// normalized constellation and satellite id. SV type 0 is the overloaded
// single-constellation numbering; which PRN range maps where differs by
// model family (RES/ICM SMT 360 vs Copernicus), all covered below.
// Unrecognized combinations return GnssUnknown, never a guess.
func GnssIDFromPRN(svtype uint8, prn int16) GnssSat {
	sat := GnssSat{GnssID: GnssUnknown, SigID: SigUnknown}

	switch svtype {
	case 0:
		switch {
		case 0 < prn && prn < 33:
			sat.GnssID = GnssGPS
			sat.SvID = uint8(prn)
		case 32 < prn && prn < 55:
			// RES SMT 360 and ICM SMT 360 put SBAS in 33-54
			sat.GnssID = GnssSBAS
			sat.SvID = uint8(prn + 87)
		case 64 < prn && prn < 97:
			// RES SMT 360 and ICM SMT 360 put GLONASS in 65-96
			sat.GnssID = GnssGLONASS
			sat.SvID = uint8(prn - 64)
		case 96 < prn && prn < 134:
			// RES SMT 360 and ICM SMT 360 put Galileo in 97-133
			sat.GnssID = GnssGalileo
			sat.SvID = uint8(prn - 96)
		case 119 < prn && prn < 139:
			// Copernicus (II) puts SBAS in 120-138
			sat.GnssID = GnssSBAS
			sat.SvID = uint8(prn + 87)
		case prn == 183:
			sat.GnssID = GnssQZSS
			sat.SvID = 1
		case prn == 192 || prn == 193:
			sat.GnssID = GnssQZSS
			sat.SvID = uint8(prn - 190)
		case prn == 200:
			sat.GnssID = GnssQZSS
			sat.SvID = 4
		case 200 < prn && prn < 238:
			// BeiDou in 201-237
			sat.GnssID = GnssBeiDou
			sat.SvID = uint8(prn - 200)
		}
	case 1:
		sat.GnssID = GnssGLONASS
		sat.SvID = uint8(prn - 64)
	case 2:
		sat.GnssID = GnssBeiDou
		sat.SvID = uint8(prn - 200)
	case 3:
		sat.GnssID = GnssGalileo
		sat.SvID = uint8(prn - 96)
	case 5:
		sat.GnssID = GnssQZSS
		switch prn {
		case 183:
			sat.SvID = 1
		case 192:
			sat.SvID = 2
		case 193:
			sat.SvID = 3
		case 200:
			sat.SvID = 4
		default:
			sat.SvID = uint8(prn)
		}
	}
	// SV types 4, 6, 7 are reserved; leave unknown.
	return sat
}

// GnssIDFromSVType translates a TSIPv1 SV type code into constellation and
// signal ids. PRN is already constellation-relative in TSIPv1 and is not
// needed here. Several signal ids are not pinned down by the RES720
// documentation; those values carry the doubt in a comment and must not be
// "corrected" without a receiver to verify against. Reserved codes return
// (GnssUnknown, SigUnknown).
func GnssIDFromSVType(svtype uint8) (gnssid, sigid uint8) {
	switch svtype {
	case 1: // GPS L1C
		return GnssGPS, 0
	case 2: // GPS L2, CL or CM?
		return GnssGPS, 3 // or maybe 4
	case 3: // GPS L5, I or Q?
		return GnssGPS, 6 // or maybe 7
	case 5: // GLONASS G1
		return GnssGLONASS, 0
	case 6: // GLONASS G2
		return GnssGLONASS, 2
	case 9: // SBAS, assume L1
		return GnssSBAS, 0
	case 13: // BeiDou B1, D1 or D2?
		return GnssBeiDou, 0 // or maybe 1
	case 14: // BeiDou B2i
		return GnssBeiDou, 2
	case 15: // BeiDou B2a
		return GnssBeiDou, 3
	case 17: // Galileo E1, C or B?
		return GnssGalileo, 0 // or maybe 1
	case 18: // Galileo E5a, aI or aQ?
		return GnssGalileo, 3 // or maybe 4
	case 19: // Galileo E5b, bI or bQ?
		return GnssGalileo, 5 // or maybe 6
	case 20: // Galileo E6
		return GnssGalileo, 8 // no idea
	case 22: // QZSS L1
		return GnssQZSS, 0
	case 23: // QZSS L2C
		return GnssQZSS, 4 // or maybe 5
	case 24: // QZSS L5
		return GnssQZSS, 8 // no idea
	case 26: // IRNSS L5
		return GnssIRNSS, 8 // no idea
	}
	// 4, 7, 8, 10-12, 16, 21, 25 are reserved
	return GnssUnknown, SigUnknown
}

// GnssName returns the constellation name for a normalized gnss id.
func GnssName(gnssid uint8) string {
	switch gnssid {
	case GnssGPS:
		return "GPS"
	case GnssSBAS:
		return "SBAS"
	case GnssGalileo:
		return "Galileo"
	case GnssBeiDou:
		return "BeiDou"
	case GnssIMES:
		return "IMES"
	case GnssQZSS:
		return "QZSS"
	case GnssGLONASS:
		return "GLONASS"
	case GnssIRNSS:
		return "IRNSS"
	default:
		return "Unknown"
	}
}
