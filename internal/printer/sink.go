package printer

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/snksoft/crc"
)

// DocumentSink accepts the raw bytes of a received document, as
// produced by Send-Document or by a non-ippusb printer's raw bulk-OUT
// data. It is the local recording mechanism the --record_doc_path
// flag enables; it never feeds back into protocol responses.
type DocumentSink interface {
	Write(data []byte) error
}

// FileSink writes each document body to disk, followed by a 6-byte
// integrity footer: a big-endian length of the body just written and
// a big-endian CRC-16/XMODEM checksum of it, using the same
// InitCrc/UpdateCrc/CRC16 sequence nkt/telegram.go's crcHelper uses
// for its own frame checksums, applied here to sink-file integrity
// instead of wire framing. The footer is local bookkeeping only and
// is never part of any protocol response.
type FileSink struct {
	f     *os.File
	table *crc.Table
}

// NewFileSink opens path for appending, creating it if necessary.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("printer: opening document sink %s: %w", path, err)
	}
	return &FileSink{f: f, table: crc.NewTable(crc.XMODEM)}, nil
}

// Write appends data to the sink file, followed by the length+CRC
// footer.
func (s *FileSink) Write(data []byte) error {
	if _, err := s.f.Write(data); err != nil {
		return err
	}
	footer := make([]byte, 6)
	binary.BigEndian.PutUint32(footer[0:4], uint32(len(data)))
	crcVal := s.table.InitCrc()
	crcVal = s.table.UpdateCrc(crcVal, data)
	binary.BigEndian.PutUint16(footer[4:6], s.table.CRC16(crcVal))
	_, err := s.f.Write(footer)
	return err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.f.Close()
}
