package usbdesc

import "encoding/binary"

// StringDescriptor builds a USB string descriptor (USB 2.0 spec
// 9.6.7) for s: each UTF-16LE code unit is two bytes, preceded by a
// bLength/bDescriptorType header. Only ASCII input is supported,
// matching the configuration schema's string_descriptors, which are
// plain ASCII.
func StringDescriptor(s string) []byte {
	b := make([]byte, 2+2*len(s))
	b[0] = uint8(len(b))
	b[1] = TypeString
	for i, r := range []byte(s) {
		binary.LittleEndian.PutUint16(b[2+2*i:4+2*i], uint16(r))
	}
	return b
}

// IEEEDeviceID holds the IEEE 1284 device ID blob a printer reports
// through GET_DEVICE_ID: a two-byte big-endian length header (split
// here into the two length bytes configuration supplies verbatim,
// rather than recomputed, matching load_config's behavior of trusting
// the configured lengths) followed by the 1284 key=value message.
type IEEEDeviceID struct {
	BLength1 uint8
	BLength2 uint8
	Message  string
}

// Marshal encodes id as it is sent in response to GET_DEVICE_ID: the
// two configured length bytes followed by the message text.
func (id IEEEDeviceID) Marshal() []byte {
	b := make([]byte, 0, 2+len(id.Message))
	b = append(b, id.BLength1, id.BLength2)
	b = append(b, id.Message...)
	return b
}
