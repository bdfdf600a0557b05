// Package config loads the JSON document describing a virtual
// printer's USB descriptors, IPP attribute groups, and eSCL
// capabilities, following the same koanf-based loading idiom the
// teacher uses for its own device configuration (cmd/multiserver,
// envsrv/cfg.go), adapted from YAML to JSON because this module's
// configuration documents are JSON, per the external contract this
// emulator is built against.
package config

import (
	"fmt"

	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
)

// EndpointConfig describes one USB endpoint descriptor entry.
type EndpointConfig struct {
	BLength         uint8  `koanf:"bLength"`
	BDescriptorType uint8  `koanf:"bDescriptorType"`
	BEndpointAddress uint8 `koanf:"bEndpointAddress"`
	BmAttributes    uint8  `koanf:"bmAttributes"`
	WMaxPacketSize  uint16 `koanf:"wMaxPacketSize"`
	BInterval       uint8  `koanf:"bInterval"`
}

// InterfaceConfig describes one interface descriptor plus its nested
// endpoints.
type InterfaceConfig struct {
	BLength            uint8            `koanf:"bLength"`
	BDescriptorType    uint8            `koanf:"bDescriptorType"`
	BInterfaceNumber   uint8            `koanf:"bInterfaceNumber"`
	BAlternateSetting  uint8            `koanf:"bAlternateSetting"`
	BInterfaceClass    uint8            `koanf:"bInterfaceClass"`
	BInterfaceSubClass uint8            `koanf:"bInterfaceSubClass"`
	BInterfaceProtocol uint8            `koanf:"bInterfaceProtocol"`
	IInterface         uint8            `koanf:"iInterface"`
	EndpointDescriptors []EndpointConfig `koanf:"endpoint_descriptors"`
}

// DeviceConfig is the device_descriptor block.
type DeviceConfig struct {
	BLength            uint8  `koanf:"bLength"`
	BDescriptorType    uint8  `koanf:"bDescriptorType"`
	BcdUSB             uint16 `koanf:"bcdUSB"`
	BDeviceClass       uint8  `koanf:"bDeviceClass"`
	BDeviceSubClass    uint8  `koanf:"bDeviceSubClass"`
	BDeviceProtocol    uint8  `koanf:"bDeviceProtocol"`
	BMaxPacketSize0    uint8  `koanf:"bMaxPacketSize0"`
	IDVendor           uint16 `koanf:"idVendor"`
	IDProduct          uint16 `koanf:"idProduct"`
	BcdDevice          uint16 `koanf:"bcdDevice"`
	IManufacturer      uint8  `koanf:"iManufacturer"`
	IProduct           uint8  `koanf:"iProduct"`
	ISerialNumber      uint8  `koanf:"iSerialNumber"`
	BNumConfigurations uint8  `koanf:"bNumConfigurations"`
}

// ConfigurationConfig is the configuration_descriptor block.
type ConfigurationConfig struct {
	BLength             uint8 `koanf:"bLength"`
	BDescriptorType     uint8 `koanf:"bDescriptorType"`
	BConfigurationValue uint8 `koanf:"bConfigurationValue"`
	IConfiguration      uint8 `koanf:"iConfiguration"`
	BmAttributes        uint8 `koanf:"bmAttributes"`
	BMaxPower           uint8 `koanf:"bMaxPower"`
}

// QualifierConfig is the device_qualifier_descriptor block.
type QualifierConfig struct {
	BLength            uint8  `koanf:"bLength"`
	BDescriptorType    uint8  `koanf:"bDescriptorType"`
	BcdUSB             uint16 `koanf:"bcdUSB"`
	BDeviceClass       uint8  `koanf:"bDeviceClass"`
	BDeviceSubClass    uint8  `koanf:"bDeviceSubClass"`
	BDeviceProtocol    uint8  `koanf:"bDeviceProtocol"`
	BMaxPacketSize0    uint8  `koanf:"bMaxPacketSize0"`
	BNumConfigurations uint8  `koanf:"bNumConfigurations"`
}

// IEEEDeviceIDConfig is the ieee_device_id block.
type IEEEDeviceIDConfig struct {
	BLength1 uint8  `koanf:"bLength1"`
	BLength2 uint8  `koanf:"bLength2"`
	Message  string `koanf:"message"`
}

// AttributeConfig is one IPP attribute as it appears in
// operationAttributes/printerAttributes/jobAttributes.
type AttributeConfig struct {
	Name  string      `koanf:"name"`
	Type  string      `koanf:"type"`
	Value interface{} `koanf:"value"`
}

// SourceCapabilitiesConfig is one eSCL source's capability block.
type SourceCapabilitiesConfig struct {
	ColorModes      []string `koanf:"ColorModes"`
	DocumentFormats []string `koanf:"DocumentFormats"`
	Resolutions     []int    `koanf:"Resolutions"`
}

// ScannerCapabilitiesConfig is the escl block.
type ScannerCapabilitiesConfig struct {
	MakeAndModel string                   `koanf:"MakeAndModel"`
	SerialNumber string                   `koanf:"SerialNumber"`
	Platen       SourceCapabilitiesConfig `koanf:"Platen"`
}

// Document is the full JSON configuration document this emulator
// loads at startup, matching the schema load_config.cc's functions
// operate on.
type Document struct {
	DeviceDescriptor        DeviceConfig          `koanf:"device_descriptor"`
	ConfigurationDescriptor ConfigurationConfig   `koanf:"configuration_descriptor"`
	DeviceQualifierDescriptor QualifierConfig     `koanf:"device_qualifier_descriptor"`
	InterfaceDescriptors    []InterfaceConfig     `koanf:"interface_descriptors"`
	StringDescriptorsRaw    []string              `koanf:"string_descriptors"`
	IEEEDeviceIDRaw         IEEEDeviceIDConfig    `koanf:"ieee_device_id"`
	OperationAttributes     []AttributeConfig     `koanf:"operationAttributes"`
	PrinterAttributes       []AttributeConfig     `koanf:"printerAttributes"`
	JobAttributes           []AttributeConfig     `koanf:"jobAttributes"`
	ESCL                    ScannerCapabilitiesConfig `koanf:"escl"`
}

// Load reads and parses the JSON configuration document at path.
func Load(path string) (*Document, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	var doc Document
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, fmt.Errorf("config: unmarshaling %s: %w", path, err)
	}
	return &doc, nil
}

// LoadScannerCapabilities reads a standalone eSCL capabilities JSON
// document, used when --escl_capabilities_path overrides the escl
// block embedded in the main descriptor document.
func LoadScannerCapabilities(path string) (ScannerCapabilitiesConfig, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return ScannerCapabilitiesConfig{}, fmt.Errorf("config: loading %s: %w", path, err)
	}
	var caps ScannerCapabilitiesConfig
	if err := k.Unmarshal("", &caps); err != nil {
		return ScannerCapabilitiesConfig{}, fmt.Errorf("config: unmarshaling %s: %w", path, err)
	}
	return caps, nil
}
