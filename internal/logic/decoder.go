package logic

import (
	"errors"
	"fmt"
	"strconv"
)

// Wire protocol constants for injected commands.
const (
	// Header is the fixed first field of every command record.
	Header = 55

	// MaxRecordLen is the number of bytes considered from one received buffer.
	MaxRecordLen = 63

	recordFields = 7
)

// Literal acknowledgements written back on the command channel.
const (
	ReplyOK            = "ok\n"
	ReplyProtocolError = "protocol error\n"
	ReplyFormatError   = "format error\n"
)

var (
	// ErrFormat means the record did not contain seven parseable integers.
	ErrFormat = errors.New("format error")

	// ErrProtocol means the record was well formed but the header or checksum was wrong.
	ErrProtocol = errors.New("protocol error")
)

// Decode parses one received buffer as "head btn dx dy wheel pan checksum".
// Fields are narrowed with two's-complement truncation after validation.
func Decode(buf []byte) (Command, error) {
	if len(buf) > MaxRecordLen {
		buf = buf[:MaxRecordLen]
	}

	fields, n := scanInts(buf, recordFields)
	if n != recordFields {
		return Command{}, fmt.Errorf("%w: scanned %d of %d fields", ErrFormat, n, recordFields)
	}

	head, btn, dx, dy, wheel, pan, sum := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], fields[6]
	if head != Header {
		return Command{}, fmt.Errorf("%w: header %d, want %d", ErrProtocol, head, Header)
	}
	// The sum wraps in 32 bits.
	if calc := btn + dx + dy + wheel + pan; calc != sum {
		return Command{}, fmt.Errorf("%w: checksum %d, computed %d", ErrProtocol, sum, calc)
	}

	return Command{
		Buttons: uint8(btn),
		DX:      int8(dx),
		DY:      int8(dy),
		Wheel:   int8(wheel),
		Pan:     int8(pan),
	}, nil
}

// Reply returns the acknowledgement for a Decode result.
func Reply(err error) string {
	switch {
	case err == nil:
		return ReplyOK
	case errors.Is(err, ErrProtocol):
		return ReplyProtocolError
	default:
		return ReplyFormatError
	}
}

// scanInts reads up to max whitespace-separated decimal integers from the
// start of buf, stopping at the first field that does not parse. A NUL byte
// terminates the input. Content after the last requested field is ignored.
// Values outside int32 saturate and still count as scanned.
func scanInts(buf []byte, max int) ([]int32, int) {
	out := make([]int32, 0, max)
	i := 0
	for len(out) < max {
		for i < len(buf) && isSpace(buf[i]) {
			i++
		}
		start := i
		if i < len(buf) && (buf[i] == '+' || buf[i] == '-') {
			i++
		}
		digits := i
		for i < len(buf) && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
		if i == digits {
			break
		}
		// On ErrRange ParseInt returns the saturated bound.
		v, err := strconv.ParseInt(string(buf[start:i]), 10, 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			break
		}
		out = append(out, int32(v))
	}
	return out, len(out)
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
