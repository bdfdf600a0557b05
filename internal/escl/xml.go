package escl

import (
	"bytes"
	"fmt"
	"html"
)

const (
	nsPWG  = "http://www.pwg.org/schemas/2010/12/sm"
	nsScan = "http://schemas.hp.com/imaging/escl/2011/05/03"
	nsXSI  = "http://www.w3.org/2001/XMLSchema-instance"
)

func esc(s string) string {
	return html.EscapeString(s)
}

func writeElem(buf *bytes.Buffer, tag, text string) {
	fmt.Fprintf(buf, "<%s>%s</%s>", tag, esc(text), tag)
}

func writeIntElem(buf *bytes.Buffer, tag string, v int) {
	fmt.Fprintf(buf, "<%s>%d</%s>", tag, v, tag)
}

// ScannerCapabilitiesAsXml serializes caps as an eSCL
// ScannerCapabilities document.
func ScannerCapabilitiesAsXml(caps ScannerCapabilities) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&buf, `<scan:ScannerCapabilities xmlns:pwg=%q xmlns:scan=%q xmlns:xsi=%q>`, nsPWG, nsScan, nsXSI)
	writeElem(&buf, "pwg:Version", "2.63")
	writeElem(&buf, "pwg:MakeAndModel", caps.MakeAndModel)
	writeElem(&buf, "pwg:SerialNumber", caps.SerialNumber)
	buf.WriteString("<scan:Platen>")
	buf.WriteString("<scan:PlatenInputCaps>")
	writeSourceCapabilities(&buf, caps.Platen)
	buf.WriteString("</scan:PlatenInputCaps>")
	buf.WriteString("</scan:Platen>")
	buf.WriteString("</scan:ScannerCapabilities>")
	return buf.Bytes()
}

// writeSourceCapabilities writes the body of a *InputCaps element for
// source, in the exact child order the original's
// SourceCapabilitiesAsXml uses.
func writeSourceCapabilities(buf *bytes.Buffer, source SourceCapabilities) {
	minWidth, maxWidth := source.MinWidth, source.MaxWidth
	if maxWidth == 0 {
		maxWidth = 2550
	}
	if minWidth == 0 {
		minWidth = 16
	}
	minHeight, maxHeight := source.MinHeight, source.MaxHeight
	if maxHeight == 0 {
		maxHeight = 3507
	}
	if minHeight == 0 {
		minHeight = 16
	}
	writeIntElem(buf, "scan:MinWidth", minWidth)
	writeIntElem(buf, "scan:MaxWidth", maxWidth)
	writeIntElem(buf, "scan:MinHeight", minHeight)
	writeIntElem(buf, "scan:MaxHeight", maxHeight)
	writeIntElem(buf, "scan:MaxScanRegions", 1)

	buf.WriteString("<scan:SettingProfiles>")
	buf.WriteString("<scan:SettingProfile>")

	buf.WriteString("<scan:ColorModes>")
	for _, cm := range source.ColorModes {
		writeElem(buf, "scan:ColorMode", cm)
	}
	buf.WriteString("</scan:ColorModes>")

	buf.WriteString("<scan:DocumentFormats>")
	for _, f := range source.DocumentFormats {
		writeElem(buf, "pwg:DocumentFormat", f)
	}
	buf.WriteString("</scan:DocumentFormats>")

	buf.WriteString("<scan:SupportedResolutions>")
	buf.WriteString("<scan:DiscreteResolutions>")
	for _, r := range source.Resolutions {
		buf.WriteString("<scan:DiscreteResolution>")
		writeIntElem(buf, "scan:XResolution", r)
		writeIntElem(buf, "scan:YResolution", r)
		buf.WriteString("</scan:DiscreteResolution>")
	}
	buf.WriteString("</scan:DiscreteResolutions>")
	buf.WriteString("</scan:SupportedResolutions>")

	buf.WriteString("</scan:SettingProfile>")
	buf.WriteString("</scan:SettingProfiles>")

	buf.WriteString("<scan:SupportedIntents>")
	for _, intent := range []string{"Document", "TextAndGraphic", "Photo", "Preview"} {
		writeElem(buf, "scan:Intent", intent)
	}
	buf.WriteString("</scan:SupportedIntents>")

	writeIntElem(buf, "scan:MaxOpticalXResolution", 2400)
	writeIntElem(buf, "scan:MaxOpticalYResolution", 2400)
	writeIntElem(buf, "scan:RiskyLeftMargin", 0)
	writeIntElem(buf, "scan:RiskyRightMargin", 0)
	writeIntElem(buf, "scan:RiskyTopMargin", 0)
	writeIntElem(buf, "scan:RiskyBottomMargin", 0)
}

// jobStateFields returns the ImagesCompleted/ImagesToTransfer/
// JobState/JobStateReason tuple for state, matching JobListAsXml's
// exact mapping.
func jobStateFields(state JobState) (completed, toTransfer int, name, reason string) {
	switch state {
	case JobPending:
		return 1, 1, "Pending", "JobScanning"
	case JobCanceled:
		return 0, 0, "Canceled", "JobTimedOut"
	case JobCompleted:
		return 1, 0, "Completed", "JobCompletedSuccessfully"
	default:
		return 0, 0, "Pending", "JobScanning"
	}
}

// ScannerStatusAsXml serializes status as an eSCL ScannerStatus
// document. ageOf computes each job's age in seconds at call time.
func ScannerStatusAsXml(status ScannerStatus, ageOf func(JobInfo) int) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&buf, `<scan:ScannerStatus xmlns:pwg=%q xmlns:scan=%q xmlns:xsi=%q>`, nsPWG, nsScan, nsXSI)
	writeElem(&buf, "pwg:Version", "2.6.3")
	writeElem(&buf, "pwg:State", status.State.String())

	buf.WriteString("<scan:Jobs>")
	for _, j := range status.Jobs {
		completed, toTransfer, state, reason := jobStateFields(j.State)
		buf.WriteString("<scan:JobInfo>")
		writeElem(&buf, "pwg:JobUri", "/eSCL/ScanJobs/"+j.UUID)
		writeElem(&buf, "pwg:JobUuid", "urn:uuid:"+j.UUID)
		writeIntElem(&buf, "scan:Age", ageOf(j))
		writeIntElem(&buf, "pwg:ImagesCompleted", completed)
		writeIntElem(&buf, "pwg:ImagesToTransfer", toTransfer)
		writeElem(&buf, "pwg:JobState", state)
		buf.WriteString("<pwg:JobStateReasons>")
		writeElem(&buf, "pwg:JobStateReason", reason)
		buf.WriteString("</pwg:JobStateReasons>")
		buf.WriteString("</scan:JobInfo>")
	}
	buf.WriteString("</scan:Jobs>")

	buf.WriteString("</scan:ScannerStatus>")
	return buf.Bytes()
}
