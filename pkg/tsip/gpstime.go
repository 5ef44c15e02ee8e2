// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kaz Walker, Thermoquad

package tsip

import "time"

// gpsEpoch is the GPS time zero point, 1980-01-06T00:00:00Z.
var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

const secondsPerWeek = 7 * 24 * 3600

// gpsWeekCorrect undoes a known firmware bug around the 2017 leap-second
// epoch: some receivers report GPS week modulo 1024 long after the 2019
// rollover. When the leap-second count says we are past 2017 (leap > 17)
// but the week predates 2017 (week < 1930), the week is short by one or
// two rollovers. Leap counts of 17 and below leave the week untouched;
// those receivers predate the bug.
func gpsWeekCorrect(week int, leap int) int {
	if leap > 17 && week < 1930 {
		week += 1024
		if week < 1930 {
			week += 1024
		}
	}
	return week
}

// gpsToUTC converts GPS week + time-of-week to UTC. tow is in seconds and
// may carry a fraction; leap is the current GPS-UTC offset.
func gpsToUTC(week int, tow float64, leap int) time.Time {
	sec := float64(week)*secondsPerWeek + tow - float64(leap)
	whole := int64(sec)
	frac := sec - float64(whole)
	return gpsEpoch.Add(time.Duration(whole)*time.Second +
		time.Duration(frac*float64(time.Second)))
}

// leapValid reports whether a decoded GPS-UTC offset is usable. Receivers
// report 0 or small garbage before the almanac arrives; the offset has
// been above 10 since before any surviving TSIP hardware shipped.
func leapValid(leap int) bool {
	return leap > 10
}

// dopOK is the sanity window for DOP and similar quality scalars. Values
// outside [0.01, 89.99] mean "not reported", not zero and not an error.
func dopOK(v float64) bool {
	return v >= 0.01 && v <= 89.99
}
