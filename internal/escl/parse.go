package escl

import (
	"encoding/xml"
	"fmt"
)

// scanSettingsDoc mirrors the subset of a ScanSettings POST body this
// emulator understands. encoding/xml matches elements by local name
// regardless of the pwg:/scan: prefix a real client happens to use,
// which is what we want here: ScanSettingsFromXml only ever reads
// fields, never re-emits this document.
type scanSettingsDoc struct {
	ScanRegions []struct {
		ScanRegion []struct {
			ContentRegionUnits string `xml:"ContentRegionUnits"`
			Height             int    `xml:"Height"`
			Width              int    `xml:"Width"`
			XOffset            int    `xml:"XOffset"`
			YOffset            int    `xml:"YOffset"`
		} `xml:"ScanRegion"`
	} `xml:"ScanRegions"`
	DocumentFormat string  `xml:"DocumentFormat"`
	ColorMode      *string `xml:"ColorMode"`
	InputSource    string  `xml:"InputSource"`
	XResolution    *int    `xml:"XResolution"`
	YResolution    *int    `xml:"YResolution"`
}

// ScanSettingsFromXml parses a ScanJobs POST body. A ColorMode element
// that is simply absent is not an error: ScanSettings.HasColorMode will
// be false and callers default it however they see fit. A ColorMode
// element that IS present but carries unrecognized text IS an error,
// matching ColorModeFromString's nullopt-on-unrecognized contract.
func ScanSettingsFromXml(data []byte) (ScanSettings, error) {
	var doc scanSettingsDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ScanSettings{}, fmt.Errorf("escl: parsing ScanSettings: %w", err)
	}

	settings := ScanSettings{
		DocumentFormat: doc.DocumentFormat,
		InputSource:    doc.InputSource,
	}
	for _, regions := range doc.ScanRegions {
		for _, r := range regions.ScanRegion {
			settings.ScanRegions = append(settings.ScanRegions, ScanRegion{
				ContentRegionUnits: r.ContentRegionUnits,
				Height:             r.Height,
				Width:              r.Width,
				XOffset:            r.XOffset,
				YOffset:            r.YOffset,
			})
		}
	}
	if doc.ColorMode != nil {
		cm, ok := ColorModeFromString(*doc.ColorMode)
		if !ok {
			return ScanSettings{}, fmt.Errorf("escl: unrecognized ColorMode %q", *doc.ColorMode)
		}
		settings.ColorMode = cm
		settings.HasColorMode = true
	}
	if doc.XResolution != nil {
		settings.XResolution = *doc.XResolution
	}
	if doc.YResolution != nil {
		settings.YResolution = *doc.YResolution
	}
	return settings, nil
}
