package httpframe

import (
	"fmt"
	"strconv"
)

// finalChunkMarker is the terminal chunk of a chunked-encoded message:
// a zero-length chunk followed by its own trailing CRLF and the
// message-terminating CRLF.
const finalChunkMarker = "0\r\n\r\n"

// decodeChunks attempts to fully decode a chunked-transfer body out of
// buf. It returns the concatenated chunk data, the number of bytes of
// buf consumed, and ok == true only once every chunk up to and
// including the final zero-length chunk has arrived; otherwise it
// returns ok == false without error, so the caller can wait for more
// bytes from subsequent bulk-OUT URBs.
func decodeChunks(buf []byte) (data []byte, consumed int, ok bool, err error) {
	pos := 0
	for {
		sizeEnd := indexCRLF(buf[pos:])
		if sizeEnd < 0 {
			return nil, 0, false, nil
		}
		sizeLine := buf[pos : pos+sizeEnd]
		size, perr := parseChunkSize(sizeLine)
		if perr != nil {
			return nil, 0, false, perr
		}
		chunkStart := pos + sizeEnd + 2
		if size == 0 {
			// Final chunk: requires its own trailing CRLF.
			if len(buf) < chunkStart+2 {
				return nil, 0, false, nil
			}
			consumed = chunkStart + 2
			return data, consumed, true, nil
		}
		chunkEnd := chunkStart + size
		if len(buf) < chunkEnd+2 {
			return nil, 0, false, nil
		}
		data = append(data, buf[chunkStart:chunkEnd]...)
		pos = chunkEnd + 2
	}
}

func parseChunkSize(line []byte) (int, error) {
	// Chunk extensions (";name=value") are not used by any client
	// this emulator talks to; strip anything after ';' defensively.
	s := string(line)
	for i, c := range s {
		if c == ';' {
			s = s[:i]
			break
		}
	}
	n, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("httpframe: invalid chunk size %q: %w", line, err)
	}
	return int(n), nil
}

// indexCRLF returns the offset of the first "\r\n" in b, or -1.
func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}
