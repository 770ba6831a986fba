package ntfysub

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// errLineTooLong reports a line that exceeded the configured maximum and was skipped.
var errLineTooLong = errors.New("line exceeds maximum size")

// lineReader splits an NDJSON stream into lines of at most limit bytes.
//
// Unlike bufio.Scanner it survives an oversized line: the line is consumed whole and
// reported with errLineTooLong, and the next call continues with the following line.
type lineReader struct {
	r     *bufio.Reader
	limit int
	buf   []byte
}

func newLineReader(r io.Reader, limit int) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, 64<<10), limit: limit}
}

// next returns the next line without its terminator. The returned slice is only valid
// until the following call.
//
// Returns:
//   - []byte: The line
//   - int: Bytes dropped when the error is errLineTooLong
//   - error: errLineTooLong, io.EOF at the end of the stream, or a read error
func (lr *lineReader) next() ([]byte, int, error) {
	lr.buf = lr.buf[:0]
	dropped := 0

	for {
		frag, err := lr.r.ReadSlice('\n')
		// limit+1 leaves room for the terminator
		if dropped == 0 && len(lr.buf)+len(frag) <= lr.limit+1 {
			lr.buf = append(lr.buf, frag...)
		} else {
			dropped += len(lr.buf) + len(frag)
			lr.buf = lr.buf[:0]
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		// a final line without a terminator is still a line
		if err != nil && (!errors.Is(err, io.EOF) || (len(lr.buf) == 0 && dropped == 0)) {
			return nil, 0, err
		}

		break
	}

	if dropped > 0 {
		return nil, dropped, errLineTooLong
	}

	line := bytes.TrimSuffix(lr.buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) > lr.limit {
		return nil, len(line), errLineTooLong
	}

	return line, 0, nil
}
