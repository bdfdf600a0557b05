// Command virtualusbprinter emulates a USB printer speaking IPP-over-USB
// and eSCL scanning over a USB/IP connection, so that a USB/IP client
// (e.g. a chroot under test) can exercise printing and scanning flows
// against it without real hardware attached.
package main

import (
	"flag"
	"log"
	"net"
	"strconv"

	"github.com/cros-usb/virtualusbprinter/internal/config"
	"github.com/cros-usb/virtualusbprinter/internal/escl"
	"github.com/cros-usb/virtualusbprinter/internal/printer"
	"github.com/cros-usb/virtualusbprinter/internal/usbip"
	"github.com/cros-usb/virtualusbprinter/internal/usbipserver"
)

func main() {
	descriptorsPath := flag.String("descriptors_path", "", "path to the JSON document describing the virtual printer's descriptors and attributes (required)")
	recordDocPath := flag.String("record_doc_path", "", "optional path to record received document/scan data to")
	esclCapabilitiesPath := flag.String("escl_capabilities_path", "", "optional path to a standalone eSCL ScannerCapabilities JSON document, overriding the escl block in descriptors_path")
	flag.Parse()

	if *descriptorsPath == "" {
		log.Fatal("virtualusbprinter: --descriptors_path is required")
	}

	doc, err := config.Load(*descriptorsPath)
	if err != nil {
		log.Fatalf("virtualusbprinter: %v", err)
	}

	caps := doc.ScannerCapabilities()
	if *esclCapabilitiesPath != "" {
		esclCfg, err := config.LoadScannerCapabilities(*esclCapabilitiesPath)
		if err != nil {
			log.Fatalf("virtualusbprinter: %v", err)
		}
		caps = escl.ScannerCapabilities{
			MakeAndModel: esclCfg.MakeAndModel,
			SerialNumber: esclCfg.SerialNumber,
			Platen: escl.SourceCapabilities{
				ColorModes:      esclCfg.Platen.ColorModes,
				DocumentFormats: esclCfg.Platen.DocumentFormats,
				Resolutions:     esclCfg.Platen.Resolutions,
			},
		}
	}

	var sink printer.DocumentSink
	if *recordDocPath != "" {
		fileSink, err := printer.NewFileSink(*recordDocPath)
		if err != nil {
			log.Fatalf("virtualusbprinter: %v", err)
		}
		defer fileSink.Close()
		sink = fileSink
	}

	operationAttrs, err := config.Attributes(doc.OperationAttributes)
	if err != nil {
		log.Fatalf("virtualusbprinter: %v", err)
	}
	printerAttrs, err := config.Attributes(doc.PrinterAttributes)
	if err != nil {
		log.Fatalf("virtualusbprinter: %v", err)
	}
	jobAttrs, err := config.Attributes(doc.JobAttributes)
	if err != nil {
		log.Fatalf("virtualusbprinter: %v", err)
	}

	ippHandler := printer.NewIPPHandler(printerAttrs, jobAttrs, sink)
	ippHandler.OperationAttributes = operationAttrs
	esclManager := escl.NewManager(caps, escl.NewJobUUID)

	strs := append([][]byte{languageIDStringDescriptor()}, doc.StringDescriptors()...)
	p := printer.New(doc.Device(), doc.ConfigurationBundle(), doc.DeviceQualifier(), strs, doc.IEEEDeviceID(), ippHandler, esclManager, sink)

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(usbip.Port)))
	if err != nil {
		log.Fatalf("virtualusbprinter: %v", err)
	}
	log.Printf("virtualusbprinter listening on %s", ln.Addr())

	server := usbipserver.New(p)
	log.Fatal(server.Serve(ln))
}

// languageIDStringDescriptor returns the conventional index-0 string
// descriptor USB devices report: not text but a list of supported
// language IDs, here just US English (0x0409), prepended ahead of the
// configured string table.
func languageIDStringDescriptor() []byte {
	return []byte{4, 3, 0x09, 0x04}
}
