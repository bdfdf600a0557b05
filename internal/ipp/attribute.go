package ipp

import (
	"encoding/binary"
	"fmt"
)

// Resolution is the value of a "resolution" attribute: an x/y pair
// plus a one-byte units code (3 = per inch, 4 = per centimeter, per
// RFC 8010 section 3.9).
type Resolution struct {
	X, Y  int32
	Units uint8
}

// IntRange is the value of a "rangeOfInteger" attribute.
type IntRange struct {
	Low, High int32
}

// Attribute is one IPP attribute: a name, a type, and the value(s)
// that type carries. Exactly one of the value fields is populated,
// selected by Type. Multi-valued attributes (everything but dateTime,
// octetString-as-raw-bytes, resolution, and rangeOfInteger, which are
// always single composite values) use the slice fields with more than
// one element.
type Attribute struct {
	Name string
	Type string

	Bools      []bool
	Ints       []int32
	Strings    []string
	Bytes      []byte // dateTime (11 bytes) or a raw octetString value
	Resolution Resolution
	Range      IntRange
}

// IsComposite reports whether a's type is one of the types exempted
// from the list-length multiplier (see isCompositeType).
func (a Attribute) IsComposite() bool {
	return isCompositeType(a.Type)
}

const (
	tagFieldSize     = 1
	nameLenFieldSize = 2
	valueLenFieldSize = 2
	baseFieldSize    = tagFieldSize + nameLenFieldSize + valueLenFieldSize
)

// appendTag appends a's tag byte.
func appendTag(out []byte, tag Tag) []byte {
	return append(out, byte(tag))
}

// appendName appends the 2-byte big-endian name length followed by
// the name itself when includeName is true, or a zero length with no
// name bytes when it is false — the "continuation form" used for the
// second and later entries of a multi-valued attribute, per RFC 8010
// section 3.1.3.
func appendName(out []byte, name string, includeName bool) []byte {
	lenBuf := make([]byte, 2)
	if !includeName {
		return append(out, lenBuf...)
	}
	binary.BigEndian.PutUint16(lenBuf, uint16(len(name)))
	out = append(out, lenBuf...)
	out = append(out, name...)
	return out
}

// appendValueLength appends the 2-byte big-endian length of a
// value's encoded bytes.
func appendValueLength(out []byte, n int) []byte {
	lenBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(lenBuf, uint16(n))
	return append(out, lenBuf...)
}

// Encode serializes a as a sequence of tag/name/value-length/value
// entries: one entry per element for multi-valued simple types (the
// continuation form omits the name on every entry but the first), or
// a single entry for composite types regardless of how many elements
// the underlying slice carries.
func (a Attribute) Encode() ([]byte, error) {
	tag, ok := TagForType(a.Type)
	if !ok {
		return nil, fmt.Errorf("ipp: unknown attribute type %q", a.Type)
	}
	switch a.Type {
	case TypeBoolean:
		return encodeBooleans(tag, a.Name, a.Bools), nil
	case TypeInteger, TypeEnum:
		return encodeIntegers(tag, a.Name, a.Ints), nil
	case TypeDateTime:
		return encodeDateTime(tag, a.Name, a.Bytes)
	case TypeResolution:
		return encodeResolution(tag, a.Name, a.Resolution), nil
	case TypeRangeOfInteger:
		return encodeRange(tag, a.Name, a.Range), nil
	case TypeOctetString:
		return encodeOctetString(tag, a.Name, a.Bytes, a.Strings), nil
	default:
		return encodeStrings(tag, a.Name, a.Strings), nil
	}
}

func encodeBooleans(tag Tag, name string, vals []bool) []byte {
	var out []byte
	for i, v := range vals {
		out = appendTag(out, tag)
		out = appendName(out, name, i == 0)
		out = appendValueLength(out, 1)
		if v {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func encodeIntegers(tag Tag, name string, vals []int32) []byte {
	var out []byte
	for i, v := range vals {
		out = appendTag(out, tag)
		out = appendName(out, name, i == 0)
		out = appendValueLength(out, 4)
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(v))
		out = append(out, b...)
	}
	return out
}

func encodeStrings(tag Tag, name string, vals []string) []byte {
	var out []byte
	for i, v := range vals {
		out = appendTag(out, tag)
		out = appendName(out, name, i == 0)
		out = appendValueLength(out, len(v))
		out = append(out, v...)
	}
	return out
}

// encodeOctetString matches AddOctetString's original behavior: a
// value supplied as raw bytes is emitted as a single entry whose
// value is exactly those bytes; a value supplied as a string list
// instead (scalar octetString attributes configured as plain text)
// falls back to the ordinary string encoding.
func encodeOctetString(tag Tag, name string, raw []byte, strs []string) []byte {
	if raw != nil {
		var out []byte
		out = appendTag(out, tag)
		out = appendName(out, name, true)
		out = appendValueLength(out, len(raw))
		out = append(out, raw...)
		return out
	}
	return encodeStrings(tag, name, strs)
}

func encodeDateTime(tag Tag, name string, val []byte) ([]byte, error) {
	if len(val) != DateTimeSize {
		return nil, fmt.Errorf("ipp: dateTime value must be %d bytes, got %d", DateTimeSize, len(val))
	}
	var out []byte
	out = appendTag(out, tag)
	out = appendName(out, name, true)
	out = appendValueLength(out, DateTimeSize)
	out = append(out, val...)
	return out, nil
}

func encodeResolution(tag Tag, name string, r Resolution) []byte {
	var out []byte
	out = appendTag(out, tag)
	out = appendName(out, name, true)
	out = appendValueLength(out, ResolutionSize)
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.X))
	binary.BigEndian.PutUint32(b[4:8], uint32(r.Y))
	out = append(out, b...)
	out = append(out, r.Units)
	return out
}

func encodeRange(tag Tag, name string, r IntRange) []byte {
	var out []byte
	out = appendTag(out, tag)
	out = appendName(out, name, true)
	out = appendValueLength(out, RangeOfIntegerSize)
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:4], uint32(r.Low))
	binary.BigEndian.PutUint32(b[4:8], uint32(r.High))
	out = append(out, b...)
	return out
}

// Size returns the exact number of bytes Encode would produce,
// without allocating the encoding itself.
func (a Attribute) Size() (int, error) {
	if _, ok := TagForType(a.Type); !ok {
		return 0, fmt.Errorf("ipp: unknown attribute type %q", a.Type)
	}
	switch a.Type {
	case TypeBoolean:
		return sizeN(a.Name, len(a.Bools), 1), nil
	case TypeInteger, TypeEnum:
		return sizeN(a.Name, len(a.Ints), 4), nil
	case TypeDateTime:
		if len(a.Bytes) != DateTimeSize {
			return 0, fmt.Errorf("ipp: dateTime value must be %d bytes, got %d", DateTimeSize, len(a.Bytes))
		}
		return baseFieldSize + len(a.Name) + DateTimeSize, nil
	case TypeResolution:
		return baseFieldSize + len(a.Name) + ResolutionSize, nil
	case TypeRangeOfInteger:
		return baseFieldSize + len(a.Name) + RangeOfIntegerSize, nil
	case TypeOctetString:
		if a.Bytes != nil {
			return baseFieldSize + len(a.Name) + len(a.Bytes), nil
		}
		return sizeStrings(a.Name, a.Strings), nil
	default:
		return sizeStrings(a.Name, a.Strings), nil
	}
}

// sizeN computes the size of a multi-valued fixed-width attribute:
// each entry contributes the base tag/name-len/value-len fields plus
// its value width, and the name itself is only counted once (every
// continuation entry's name length field is present but zero-length).
func sizeN(name string, count, width int) int {
	if count == 0 {
		return 0
	}
	return baseFieldSize*count + len(name) + width*count
}

func sizeStrings(name string, vals []string) int {
	if len(vals) == 0 {
		return 0
	}
	total := 0
	for _, v := range vals {
		total += baseFieldSize + len(v)
	}
	return total + len(name)
}

// GroupSize returns the total encoded size of every attribute in
// attrs, not counting the group's delimiter tag byte, matching
// GetAttributesSize.
func GroupSize(attrs []Attribute) (int, error) {
	total := 0
	for _, a := range attrs {
		n, err := a.Size()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// EncodeGroup encodes a full attribute group: the group's delimiter
// tag followed by each attribute's entries, in order.
func EncodeGroup(group Tag, attrs []Attribute) ([]byte, error) {
	out := []byte{byte(group)}
	for _, a := range attrs {
		enc, err := a.Encode()
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// EndOfAttributes returns the single-byte end-of-attributes-tag
// marker that terminates every IPP message.
func EndOfAttributes() []byte {
	return []byte{byte(TagEnd)}
}
