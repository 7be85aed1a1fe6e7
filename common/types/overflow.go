// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"math"
	"time"
)

// minUnixTime and maxUnixTime bound the protobuf well-known Timestamp
// range (0001-01-01T00:00:00Z .. 9999-12-31T23:59:59.999999999Z).
const (
	minUnixTime int64 = -62135596800
	maxUnixTime int64 = 253402300799
)

// addInt64Checked adds two int64 values, returning ok=false on overflow
// instead of wrapping, per spec §4.2.
func addInt64Checked(x, y int64) (int64, bool) {
	if (y > 0 && x > math.MaxInt64-y) || (y < 0 && x < math.MinInt64-y) {
		return 0, false
	}
	return x + y, true
}

func subtractInt64Checked(x, y int64) (int64, bool) {
	if (y < 0 && x > math.MaxInt64+y) || (y > 0 && x < math.MinInt64+y) {
		return 0, false
	}
	return x - y, true
}

func negateInt64Checked(x int64) (int64, bool) {
	if x == math.MinInt64 {
		return 0, false
	}
	return -x, true
}

func multiplyInt64Checked(x, y int64) (int64, bool) {
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) ||
		(x > 0 && y > 0 && x > math.MaxInt64/y) ||
		(x > 0 && y < 0 && y < math.MinInt64/x) ||
		(x < 0 && y > 0 && x < math.MinInt64/y) ||
		(x < 0 && y < 0 && y < math.MaxInt64/x) {
		return 0, false
	}
	return x * y, true
}

func divideInt64Checked(x, y int64) (int64, bool) {
	if x == math.MinInt64 && y == -1 {
		return 0, false
	}
	return x / y, true
}

func moduloInt64Checked(x, y int64) (int64, bool) {
	if x == math.MinInt64 && y == -1 {
		return 0, false
	}
	return x % y, true
}

func addUint64Checked(x, y uint64) (uint64, bool) {
	if y > 0 && x > math.MaxUint64-y {
		return 0, false
	}
	return x + y, true
}

func subtractUint64Checked(x, y uint64) (uint64, bool) {
	if y > x {
		return 0, false
	}
	return x - y, true
}

func multiplyUint64Checked(x, y uint64) (uint64, bool) {
	if y != 0 && x > math.MaxUint64/y {
		return 0, false
	}
	return x * y, true
}

func addDurationChecked(x, y time.Duration) (time.Duration, bool) {
	if val, ok := addInt64Checked(int64(x), int64(y)); ok {
		return time.Duration(val), true
	}
	return 0, false
}

func subtractDurationChecked(x, y time.Duration) (time.Duration, bool) {
	if val, ok := subtractInt64Checked(int64(x), int64(y)); ok {
		return time.Duration(val), true
	}
	return 0, false
}

func negateDurationChecked(x time.Duration) (time.Duration, bool) {
	if val, ok := negateInt64Checked(int64(x)); ok {
		return time.Duration(val), true
	}
	return 0, false
}

// addTimeDurationChecked adds a duration to a timestamp, breaking both
// into (seconds, nanoseconds) components so the intermediate arithmetic
// cannot silently overflow an int64 nanosecond count before the range
// check against the protobuf Timestamp bounds runs.
func addTimeDurationChecked(x time.Time, y time.Duration) (time.Time, bool) {
	sec1 := x.Truncate(time.Second).Unix()
	nsec1 := x.Sub(x.Truncate(time.Second)).Nanoseconds()

	sec2 := int64(y) / int64(time.Second)
	nsec2 := int64(y) % int64(time.Second)

	sec, ok := addInt64Checked(sec1, sec2)
	if !ok {
		return time.Time{}, false
	}
	nsec := nsec1 + nsec2
	if nsec < 0 || nsec >= int64(time.Second) {
		sec, ok = addInt64Checked(sec, nsec/int64(time.Second))
		if !ok {
			return time.Time{}, false
		}
		nsec -= (nsec / int64(time.Second)) * int64(time.Second)
		if nsec < 0 {
			sec, ok = addInt64Checked(sec, -1)
			if !ok {
				return time.Time{}, false
			}
			nsec += int64(time.Second)
		}
	}
	if sec < minUnixTime || sec > maxUnixTime {
		return time.Time{}, false
	}
	return time.Unix(sec, nsec).In(x.Location()), true
}

func subtractTimeChecked(x, y time.Time) (time.Duration, bool) {
	sec1 := x.Truncate(time.Second).Unix()
	nsec1 := x.Sub(x.Truncate(time.Second)).Nanoseconds()
	sec2 := y.Truncate(time.Second).Unix()
	nsec2 := y.Sub(y.Truncate(time.Second)).Nanoseconds()

	sec, ok := subtractInt64Checked(sec1, sec2)
	if !ok {
		return 0, false
	}
	nsec := nsec1 - nsec2
	if nsec < 0 || nsec >= int64(time.Second) {
		sec, ok = addInt64Checked(sec, nsec/int64(time.Second))
		if !ok {
			return 0, false
		}
		nsec -= (nsec / int64(time.Second)) * int64(time.Second)
		if nsec < 0 {
			sec, ok = addInt64Checked(sec, -1)
			if !ok {
				return 0, false
			}
			nsec += int64(time.Second)
		}
	}
	tsec, ok := multiplyInt64Checked(sec, int64(time.Second))
	if !ok {
		return 0, false
	}
	val, ok := addInt64Checked(tsec, nsec)
	if !ok {
		return 0, false
	}
	return time.Duration(val), true
}

func subtractTimeDurationChecked(x time.Time, y time.Duration) (time.Time, bool) {
	val, ok := negateDurationChecked(y)
	if !ok {
		return time.Time{}, false
	}
	return addTimeDurationChecked(x, val)
}
