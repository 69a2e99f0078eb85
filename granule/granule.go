// Package granule parses granule filenames and holds the immutable
// per-reader granule identity shared by every beam worker.
package granule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Mission identifies which satellite instrument produced the granule.
type Mission int

const (
	MissionUnknown Mission = iota
	MissionATL03
	MissionATL06
	MissionATL13
	MissionATL24
	MissionGEDI01B
	MissionGEDI02A
	MissionGEDI04A
)

func (m Mission) String() string {
	switch m {
	case MissionATL03:
		return "ATL03"
	case MissionATL06:
		return "ATL06"
	case MissionATL13:
		return "ATL13"
	case MissionATL24:
		return "ATL24"
	case MissionGEDI01B:
		return "GEDI01_B"
	case MissionGEDI02A:
		return "GEDI02_A"
	case MissionGEDI04A:
		return "GEDI04_A"
	default:
		return "UNKNOWN"
	}
}

// Identity is the immutable granule descriptor parsed once per reader.
//
// Filename grammar (ATL0x): ATL0x_YYYYMMDDHHMMSS_ttttccrr_vvv_ee
//
//	[6:10)   year
//	[10:12)  month
//	[12:14)  day
//	[14:16)  hour
//	[16:18)  minute
//	[18:20)  second
//	[21:25)  RGT            (4 digits)
//	[25:27)  cycle          (2 digits)
//	[27:29)  region         (2 digits)
//	[30:33)  version        (3 digits)
//	[34:36)  revision       (2 digits)
type Identity struct {
	Filename   string
	Mission    Mission
	Acquired   time.Time
	RGT        int
	Cycle      int
	Region     int
	Version    int
	Revision   int
	JulianDate float64
}

// ErrBadFilename is returned (and, per §8, always fatal for the
// reader) when any positional field fails to parse.
type ErrBadFilename struct {
	Filename string
	Reason   string
}

func (e *ErrBadFilename) Error() string {
	return fmt.Sprintf("granule: cannot parse filename %q: %s", e.Filename, e.Reason)
}

// ParseFilename performs the strict positional parse described in
// spec §3/§6. Any failure to parse any field is fatal: it returns a
// non-nil *ErrBadFilename and the reader must not proceed.
func ParseFilename(name string) (Identity, error) {
	var id Identity

	if len(name) >= 8 {
		switch name[:8] {
		case "GEDI01_B", "GEDI02_A", "GEDI04_A":
			return parseGEDIFilename(name)
		}
	}

	if len(name) < 36 {
		return id, &ErrBadFilename{name, "filename shorter than the ATL0x grammar requires"}
	}

	switch name[:5] {
	case "ATL03":
		id.Mission = MissionATL03
	case "ATL06":
		id.Mission = MissionATL06
	case "ATL13":
		id.Mission = MissionATL13
	case "ATL24":
		id.Mission = MissionATL24
	default:
		return id, &ErrBadFilename{name, "unrecognized mission prefix"}
	}

	field := func(lo, hi int) (int, error) {
		return strconv.Atoi(name[lo:hi])
	}

	year, err := field(6, 10)
	if err != nil {
		return id, &ErrBadFilename{name, "bad year: " + err.Error()}
	}
	month, err := field(10, 12)
	if err != nil {
		return id, &ErrBadFilename{name, "bad month: " + err.Error()}
	}
	day, err := field(12, 14)
	if err != nil {
		return id, &ErrBadFilename{name, "bad day: " + err.Error()}
	}
	hour, err := field(14, 16)
	if err != nil {
		return id, &ErrBadFilename{name, "bad hour: " + err.Error()}
	}
	minute, err := field(16, 18)
	if err != nil {
		return id, &ErrBadFilename{name, "bad minute: " + err.Error()}
	}
	second, err := field(18, 20)
	if err != nil {
		return id, &ErrBadFilename{name, "bad second: " + err.Error()}
	}

	id.Acquired = time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	rgt, err := field(21, 25)
	if err != nil {
		return id, &ErrBadFilename{name, "bad RGT: " + err.Error()}
	}
	id.RGT = rgt

	cycle, err := field(25, 27)
	if err != nil {
		return id, &ErrBadFilename{name, "bad cycle: " + err.Error()}
	}
	id.Cycle = cycle

	region, err := field(27, 29)
	if err != nil {
		return id, &ErrBadFilename{name, "bad region: " + err.Error()}
	}
	id.Region = region

	version, err := field(30, 33)
	if err != nil {
		return id, &ErrBadFilename{name, "bad version: " + err.Error()}
	}
	id.Version = version

	revision, err := field(34, 36)
	if err != nil {
		return id, &ErrBadFilename{name, "bad revision: " + err.Error()}
	}
	id.Revision = revision

	id.Filename = name

	dayFrac := float64(day) + (float64(hour)*3600+float64(minute)*60+float64(second))/86400.0
	id.JulianDate = julian.CalendarGregorianToJD(year, month, dayFrac)

	return id, nil
}

// parseGEDIFilename parses the GEDI granule grammar, which has no RGT
// or cycle concept (the ISS orbit is non-repeating): it runs
//
//	GEDI0x_y_YYYYDDDHHMMSS_Oooooo_SS_Ttttttt_pp_vvv_rr.h5
//
// RGT is repurposed to carry the orbit number and Region the track
// number, so the ExtentID encoding (spec §3) still has something
// stable to pack; Cycle carries the sub-orbit granule number.
func parseGEDIFilename(name string) (Identity, error) {
	var id Identity

	switch name[:8] {
	case "GEDI01_B":
		id.Mission = MissionGEDI01B
	case "GEDI02_A":
		id.Mission = MissionGEDI02A
	case "GEDI04_A":
		id.Mission = MissionGEDI04A
	}

	parts := strings.Split(name, "_")
	if len(parts) < 6 {
		return id, &ErrBadFilename{name, "GEDI filename has fewer than 6 underscore-delimited fields"}
	}

	stamp := parts[2]
	if len(stamp) < 13 {
		return id, &ErrBadFilename{name, "GEDI acquisition timestamp field too short"}
	}
	year, err := strconv.Atoi(stamp[0:4])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI year: " + err.Error()}
	}
	doy, err := strconv.Atoi(stamp[4:7])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI day-of-year: " + err.Error()}
	}
	hour, err := strconv.Atoi(stamp[7:9])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI hour: " + err.Error()}
	}
	minute, err := strconv.Atoi(stamp[9:11])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI minute: " + err.Error()}
	}
	second, err := strconv.Atoi(stamp[11:13])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI second: " + err.Error()}
	}

	id.Acquired = time.Date(year, time.January, doy, hour, minute, second, 0, time.UTC)

	orbitField := strings.TrimPrefix(parts[3], "O")
	orbit, err := strconv.Atoi(orbitField)
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI orbit number: " + err.Error()}
	}
	id.RGT = orbit

	granuleNum, err := strconv.Atoi(parts[4])
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI sub-orbit granule number: " + err.Error()}
	}
	id.Cycle = granuleNum

	trackField := strings.TrimPrefix(parts[5], "T")
	track, err := strconv.Atoi(trackField)
	if err != nil {
		return id, &ErrBadFilename{name, "bad GEDI track number: " + err.Error()}
	}
	id.Region = track

	id.Filename = name

	dayFrac := float64(doy) + (float64(hour)*3600+float64(minute)*60+float64(second))/86400.0
	id.JulianDate = julian.CalendarGregorianToJD(year, 1, dayFrac)

	return id, nil
}

// ATL08Companion derives the companion ATL08 filename by substituting
// the 5th character ('3') with '8', per spec §6.
func ATL08Companion(atl03Filename string) string {
	if len(atl03Filename) < 5 {
		return atl03Filename
	}
	b := []byte(atl03Filename)
	b[4] = '8'
	return string(b)
}
