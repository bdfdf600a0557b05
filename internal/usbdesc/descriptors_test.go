package usbdesc

import (
	"reflect"
	"testing"
)

func TestDeviceMarshal(t *testing.T) {
	d := Device{
		BLength: DeviceSize, BDescriptorType: TypeDevice,
		BcdUSB: 0x0200, BDeviceClass: 0, BDeviceSubClass: 0, BDeviceProtocol: 0,
		BMaxPacketSize0: 64, IDVendor: 0x04a9, IDProduct: 0x27e8,
		BcdDevice: 0x0100, IManufacturer: 1, IProduct: 2, ISerialNumber: 3,
		BNumConfigurations: 1,
	}
	b := d.Marshal()
	if len(b) != DeviceSize {
		t.Fatalf("len = %d, want %d", len(b), DeviceSize)
	}
	if b[0] != DeviceSize || b[1] != TypeDevice {
		t.Errorf("header = %v, want [18 1]", b[0:2])
	}
	if b[8] != 0xa9 || b[9] != 0x04 {
		t.Errorf("idVendor little-endian mismatch: %v", b[8:10])
	}
}

func TestConfigurationBundleRecomputesTotalLength(t *testing.T) {
	cb := ConfigurationBundle{
		Configuration: Configuration{BLength: ConfigurationSize, BDescriptorType: TypeConfiguration, WTotalLength: 0},
		Interfaces: []Interface{
			{BLength: InterfaceSize, BDescriptorType: TypeInterface, BInterfaceNumber: 0, BNumEndpoints: 2, BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 4},
		},
		Endpoints: map[uint8][]Endpoint{
			0: {
				{BLength: EndpointSize, BDescriptorType: TypeEndpoint, BEndpointAddress: 0x81},
				{BLength: EndpointSize, BDescriptorType: TypeEndpoint, BEndpointAddress: 0x01},
			},
		},
	}
	b := cb.Marshal()
	wantLen := ConfigurationSize + InterfaceSize + 2*EndpointSize
	if len(b) != wantLen {
		t.Fatalf("len = %d, want %d", len(b), wantLen)
	}
	gotTotal := int(b[2]) | int(b[3])<<8
	if gotTotal != wantLen {
		t.Errorf("wTotalLength = %d, want %d", gotTotal, wantLen)
	}
	if b[4] != 1 {
		t.Errorf("bNumInterfaces = %d, want 1", b[4])
	}
}

func TestInterfaceIsIPPUSB(t *testing.T) {
	i := Interface{BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 4}
	if !i.IsIPPUSB() {
		t.Error("expected IsIPPUSB true")
	}
	j := Interface{BInterfaceClass: 7, BInterfaceSubClass: 1, BInterfaceProtocol: 2}
	if j.IsIPPUSB() {
		t.Error("expected IsIPPUSB false for bidi protocol")
	}
}

func TestEndpointDirection(t *testing.T) {
	in := Endpoint{BEndpointAddress: 0x81}
	out := Endpoint{BEndpointAddress: 0x02}
	if !in.IsIn() || in.Number() != 1 {
		t.Errorf("in endpoint: IsIn=%v Number=%d", in.IsIn(), in.Number())
	}
	if out.IsIn() || out.Number() != 2 {
		t.Errorf("out endpoint: IsIn=%v Number=%d", out.IsIn(), out.Number())
	}
}

func TestEndpointAddressRoundTrips(t *testing.T) {
	addr := EndpointAddress(3, true)
	ep := Endpoint{BEndpointAddress: addr}
	if !ep.IsIn() || ep.Number() != 3 {
		t.Errorf("EndpointAddress(3, true) = %#x: IsIn=%v Number=%d", addr, ep.IsIn(), ep.Number())
	}
	addr = EndpointAddress(3, false)
	ep = Endpoint{BEndpointAddress: addr}
	if ep.IsIn() || ep.Number() != 3 {
		t.Errorf("EndpointAddress(3, false) = %#x: IsIn=%v Number=%d", addr, ep.IsIn(), ep.Number())
	}
}

func TestStringDescriptor(t *testing.T) {
	b := StringDescriptor("Hi")
	want := []byte{6, TypeString, 'H', 0x00, 'i', 0x00}
	if !reflect.DeepEqual(b, want) {
		t.Errorf("StringDescriptor(\"Hi\") = %v, want %v", b, want)
	}
}

func TestIEEEDeviceIDMarshal(t *testing.T) {
	id := IEEEDeviceID{BLength1: 0, BLength2: 42, Message: "MFG:Test;"}
	b := id.Marshal()
	if b[0] != 0 || b[1] != 42 {
		t.Errorf("length bytes = %v", b[0:2])
	}
	if string(b[2:]) != "MFG:Test;" {
		t.Errorf("message = %q", b[2:])
	}
}
