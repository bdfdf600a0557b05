package config

import (
	"fmt"

	"github.com/cros-usb/virtualusbprinter/internal/escl"
	"github.com/cros-usb/virtualusbprinter/internal/ipp"
	"github.com/cros-usb/virtualusbprinter/internal/usbdesc"
	"github.com/cros-usb/virtualusbprinter/internal/util"
)

// Device converts the configured device_descriptor block into its
// usbdesc form.
func (doc *Document) Device() usbdesc.Device {
	d := doc.DeviceDescriptor
	return usbdesc.Device{
		BLength: d.BLength, BDescriptorType: d.BDescriptorType, BcdUSB: d.BcdUSB,
		BDeviceClass: d.BDeviceClass, BDeviceSubClass: d.BDeviceSubClass, BDeviceProtocol: d.BDeviceProtocol,
		BMaxPacketSize0: d.BMaxPacketSize0, IDVendor: d.IDVendor, IDProduct: d.IDProduct,
		BcdDevice: d.BcdDevice, IManufacturer: d.IManufacturer, IProduct: d.IProduct,
		ISerialNumber: d.ISerialNumber, BNumConfigurations: d.BNumConfigurations,
	}
}

// ConfigurationBundle converts the configured configuration and
// interface/endpoint descriptors into a usbdesc.ConfigurationBundle.
func (doc *Document) ConfigurationBundle() usbdesc.ConfigurationBundle {
	c := doc.ConfigurationDescriptor
	cb := usbdesc.ConfigurationBundle{
		Configuration: usbdesc.Configuration{
			BLength: c.BLength, BDescriptorType: c.BDescriptorType,
			BConfigurationValue: c.BConfigurationValue, IConfiguration: c.IConfiguration,
			BmAttributes: c.BmAttributes, BMaxPower: c.BMaxPower,
		},
		Endpoints: make(map[uint8][]usbdesc.Endpoint),
	}
	for _, i := range doc.InterfaceDescriptors {
		intf := usbdesc.Interface{
			BLength: i.BLength, BDescriptorType: i.BDescriptorType,
			BInterfaceNumber: i.BInterfaceNumber, BAlternateSetting: i.BAlternateSetting,
			BNumEndpoints: uint8(len(i.EndpointDescriptors)),
			BInterfaceClass: i.BInterfaceClass, BInterfaceSubClass: i.BInterfaceSubClass,
			BInterfaceProtocol: i.BInterfaceProtocol, IInterface: i.IInterface,
		}
		cb.Interfaces = append(cb.Interfaces, intf)
		eps := make([]usbdesc.Endpoint, 0, len(i.EndpointDescriptors))
		for _, e := range i.EndpointDescriptors {
			eps = append(eps, usbdesc.Endpoint{
				BLength: e.BLength, BDescriptorType: e.BDescriptorType,
				BEndpointAddress: e.BEndpointAddress, BmAttributes: e.BmAttributes,
				WMaxPacketSize: e.WMaxPacketSize, BInterval: e.BInterval,
			})
		}
		cb.Endpoints[i.BInterfaceNumber] = eps
	}
	return cb
}

// DeviceQualifier converts the configured device_qualifier_descriptor
// block into its usbdesc form.
func (doc *Document) DeviceQualifier() usbdesc.DeviceQualifier {
	q := doc.DeviceQualifierDescriptor
	return usbdesc.DeviceQualifier{
		BLength: q.BLength, BDescriptorType: q.BDescriptorType, BcdUSB: q.BcdUSB,
		BDeviceClass: q.BDeviceClass, BDeviceSubClass: q.BDeviceSubClass,
		BDeviceProtocol: q.BDeviceProtocol, BMaxPacketSize0: q.BMaxPacketSize0,
		BNumConfigurations: q.BNumConfigurations,
	}
}

// StringDescriptors encodes each configured string into its wire
// form, in configuration order. The language-id descriptor is not part
// of the result; the caller places it at index 0.
func (doc *Document) StringDescriptors() [][]byte {
	out := make([][]byte, 0, len(doc.StringDescriptorsRaw))
	for _, s := range doc.StringDescriptorsRaw {
		out = append(out, usbdesc.StringDescriptor(s))
	}
	return out
}

// IEEEDeviceID converts the configured ieee_device_id block.
func (doc *Document) IEEEDeviceID() usbdesc.IEEEDeviceID {
	id := doc.IEEEDeviceIDRaw
	return usbdesc.IEEEDeviceID{BLength1: id.BLength1, BLength2: id.BLength2, Message: id.Message}
}

// Attributes converts a configured attribute list into ipp.Attribute
// values, inferring each value's shape from its JSON-decoded Go type.
// It keeps converting past a malformed entry so every bad attribute in
// the list is reported together, rather than stopping at the first.
func Attributes(cfgAttrs []AttributeConfig) ([]ipp.Attribute, error) {
	out := make([]ipp.Attribute, 0, len(cfgAttrs))
	errs := make([]error, 0, len(cfgAttrs))
	for _, c := range cfgAttrs {
		a, err := attributeFromConfig(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("attribute %q: %w", c.Name, err))
			continue
		}
		out = append(out, a)
	}
	if err := util.MergeErrors(errs); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}

func attributeFromConfig(c AttributeConfig) (ipp.Attribute, error) {
	a := ipp.Attribute{Name: c.Name, Type: c.Type}
	switch c.Type {
	case ipp.TypeBoolean:
		vals, err := toBoolSlice(c.Value)
		if err != nil {
			return a, err
		}
		a.Bools = vals
	case ipp.TypeInteger, ipp.TypeEnum:
		vals, err := toIntSlice(c.Value)
		if err != nil {
			return a, err
		}
		a.Ints = vals
	case ipp.TypeResolution:
		vals, err := toIntSlice(c.Value)
		if err != nil {
			return a, err
		}
		if len(vals) != 3 {
			return a, fmt.Errorf("resolution value must have 3 elements, got %d", len(vals))
		}
		a.Resolution = ipp.Resolution{X: vals[0], Y: vals[1], Units: uint8(vals[2])}
	case ipp.TypeRangeOfInteger:
		vals, err := toIntSlice(c.Value)
		if err != nil {
			return a, err
		}
		if len(vals) != 2 {
			return a, fmt.Errorf("rangeOfInteger value must have 2 elements, got %d", len(vals))
		}
		a.Range = ipp.IntRange{Low: vals[0], High: vals[1]}
	case ipp.TypeDateTime:
		vals, err := toIntSlice(c.Value)
		if err != nil {
			return a, fmt.Errorf("dateTime value must be a byte array: %w", err)
		}
		b := make([]byte, 0, len(vals))
		for _, v := range vals {
			if v < 0 || v > 255 {
				return a, fmt.Errorf("dateTime value must be a byte array: element %d out of range", v)
			}
			b = append(b, byte(v))
		}
		a.Bytes = b
	default:
		vals, err := toStringSlice(c.Value)
		if err != nil {
			return a, err
		}
		a.Strings = vals
	}
	return a, nil
}

func toBoolSlice(v interface{}) ([]bool, error) {
	switch t := v.(type) {
	case bool:
		return []bool{t}, nil
	case []interface{}:
		out := make([]bool, 0, len(t))
		for _, e := range t {
			b, ok := e.(bool)
			if !ok {
				return nil, fmt.Errorf("expected bool element, got %T", e)
			}
			out = append(out, b)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected bool or []bool, got %T", v)
	}
}

func toIntSlice(v interface{}) ([]int32, error) {
	toInt32 := func(e interface{}) (int32, error) {
		switch n := e.(type) {
		case float64:
			return int32(n), nil
		case int:
			return int32(n), nil
		default:
			return 0, fmt.Errorf("expected number, got %T", e)
		}
	}
	switch t := v.(type) {
	case []interface{}:
		out := make([]int32, 0, len(t))
		for _, e := range t {
			n, err := toInt32(e)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := toInt32(t)
		if err != nil {
			return nil, err
		}
		return []int32{n}, nil
	}
}

func toStringSlice(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string or []string, got %T", v)
	}
}

// ScannerCapabilities converts the configured escl block into its
// escl package form. ColorModes and DocumentFormats are deduplicated,
// since the config file is hand-edited and commonly lists the same
// value twice across merged config fragments.
func (doc *Document) ScannerCapabilities() escl.ScannerCapabilities {
	return escl.ScannerCapabilities{
		MakeAndModel: doc.ESCL.MakeAndModel,
		SerialNumber: doc.ESCL.SerialNumber,
		Platen: escl.SourceCapabilities{
			ColorModes:      util.UniqueString(doc.ESCL.Platen.ColorModes),
			DocumentFormats: util.UniqueString(doc.ESCL.Platen.DocumentFormats),
			Resolutions:     doc.ESCL.Platen.Resolutions,
		},
	}
}
