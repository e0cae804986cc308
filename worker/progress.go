package worker

import (
	"math"
	"regexp"
	"strconv"
)

// The engine reports elapsed render time on its diagnostic stream as
// time=HH:MM:SS.cc tokens embedded in status lines.
var timePattern = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)

// ParseElapsed extracts the elapsed render time in seconds from one
// diagnostic line. The second return is false when the line carries no
// time token.
func ParseElapsed(line string) (float64, bool) {
	m := timePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(m[1], 64)
	minutes, err2 := strconv.ParseFloat(m[2], 64)
	seconds, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}

// ProgressPercent maps elapsed render time to a 0-99 progress value. 100 is
// reserved for successful process exit and never reported from a diagnostic
// line.
func ProgressPercent(elapsed, duration float64) int {
	if duration <= 0 {
		return 0
	}
	p := int(math.Round(100 * elapsed / duration))
	if p < 0 {
		return 0
	}
	if p > 99 {
		return 99
	}
	return p
}
