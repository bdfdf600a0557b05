package ipp

import (
	"encoding/binary"
	"fmt"
)

// SkipAttributeGroups walks the tag/name/value entries starting at
// offset start in msg (which must begin at the first group delimiter,
// i.e. immediately after the 8-byte header) until it reaches the
// end-of-attributes-tag, and returns the offset of the byte
// immediately following it — where document data begins for
// operations like Send-Document that carry a document body after
// their attributes. It does not interpret attribute values; it only
// needs each entry's self-describing name/value lengths to skip over
// it, which holds for every value tag regardless of type.
func SkipAttributeGroups(msg []byte, start int) (int, error) {
	pos := start
	for {
		if pos >= len(msg) {
			return 0, fmt.Errorf("ipp: truncated message: no end-of-attributes tag found")
		}
		tag := Tag(msg[pos])
		pos++
		if tag < 0x10 {
			if tag == TagEnd {
				return pos, nil
			}
			continue
		}
		var err error
		pos, err = skipEntry(msg, pos)
		if err != nil {
			return 0, err
		}
	}
}

func skipEntry(msg []byte, pos int) (int, error) {
	if pos+2 > len(msg) {
		return 0, fmt.Errorf("ipp: truncated name length field")
	}
	nameLen := int(binary.BigEndian.Uint16(msg[pos : pos+2]))
	pos += 2 + nameLen
	if pos+2 > len(msg) {
		return 0, fmt.Errorf("ipp: truncated value length field")
	}
	valueLen := int(binary.BigEndian.Uint16(msg[pos : pos+2]))
	pos += 2 + valueLen
	if pos > len(msg) {
		return 0, fmt.Errorf("ipp: truncated attribute value")
	}
	return pos, nil
}
