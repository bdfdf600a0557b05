// Package escl implements the Mopria eSCL scan protocol surface this
// printer exposes over ippusb: ScannerCapabilities/ScannerStatus XML
// serialization, ScanSettings parsing, and the ScanJobs create/get/
// list/delete lifecycle.
package escl

import "time"

// ColorMode is a scan color mode, as carried in ScanSettings'
// ColorMode element.
type ColorMode int

// Recognized color modes, matching ColorModeFromString's mapping.
const (
	ColorModeUnspecified ColorMode = iota
	ColorModeRGB24
	ColorModeGrayscale8
	ColorModeBlackAndWhite1
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeRGB24:
		return "RGB24"
	case ColorModeGrayscale8:
		return "Grayscale8"
	case ColorModeBlackAndWhite1:
		return "BlackAndWhite1"
	default:
		return ""
	}
}

// ColorModeFromString parses a ColorMode element's text content. It
// returns ok == false for any string other than the three recognized
// values, matching ColorModeFromString's nullopt-on-unknown behavior.
func ColorModeFromString(s string) (ColorMode, bool) {
	switch s {
	case "RGB24":
		return ColorModeRGB24, true
	case "Grayscale8":
		return ColorModeGrayscale8, true
	case "BlackAndWhite1":
		return ColorModeBlackAndWhite1, true
	default:
		return ColorModeUnspecified, false
	}
}

// SourceCapabilities describes what a single scan source (the platen,
// in this emulator — no ADF is modeled) supports.
type SourceCapabilities struct {
	ColorModes        []string
	DocumentFormats    []string
	Resolutions        []int
	MinWidth, MaxWidth int
	MinHeight, MaxHeight int
}

// ScannerCapabilities is the static capability set ScannerCapabilities
// GET requests return.
type ScannerCapabilities struct {
	MakeAndModel string
	SerialNumber string
	Platen       SourceCapabilities
}

// JobState is a scan job's lifecycle state.
type JobState int

// Job states, matching the three states the original's JobListAsXml
// understands.
const (
	JobPending JobState = iota
	JobCanceled
	JobCompleted
)

// JobInfo is one entry in ScannerStatus' job list.
type JobInfo struct {
	UUID      string
	State     JobState
	CreatedAt time.Time
}

// Age returns the elapsed time since the job was created, in whole
// seconds, matching scan:Age's unit.
func (j JobInfo) Age(now time.Time) int {
	d := now.Sub(j.CreatedAt)
	if d < 0 {
		d = 0
	}
	return int(d.Seconds())
}

// ScannerState is the top-level idle/busy state ScannerStatus reports.
type ScannerState int

const (
	StateIdle ScannerState = iota
	StateBusy
)

func (s ScannerState) String() string {
	if s == StateBusy {
		return "Busy"
	}
	return "Idle"
}

// ScannerStatus is the dynamic state ScannerStatus GET requests
// return.
type ScannerStatus struct {
	State ScannerState
	Jobs  []JobInfo
}

// ScanRegion is a requested scan area, in the "ContentRegionUnits"
// coordinate space ScanSettings carries.
type ScanRegion struct {
	ContentRegionUnits string
	Height, Width       int
	XOffset, YOffset    int
}

// ScanSettings is a parsed ScanJobs POST body.
type ScanSettings struct {
	ScanRegions    []ScanRegion
	DocumentFormat string
	ColorMode      ColorMode
	HasColorMode   bool
	InputSource    string
	XResolution    int
	YResolution    int
}
