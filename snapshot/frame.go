// Package snapshot persists already-validated ADT values as a framed
// stream.
//
// Each value is one frame: a text header line, the payload, and a
// newline.
//
//	@snap{v=1 seq=0 kind=value len=57 crc=1a2b3c4d}
//	<zstd-compressed gob of the value's adt.Snapshot>
//	@snap{v=1 seq=1 kind=end len=64 crc=5e6f7a8b}
//	<hex SHA-256 of every value payload, in order>
//
// Sequence numbers start at zero and increase by one. The end frame
// closes the stream; a stream without one is truncated. Values are
// restored through the re-materialization path and are never
// re-validated.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"strconv"
	"strings"
)

// Version is the frame format version.
const Version uint8 = 1

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// FrameKind distinguishes value frames from the end frame.
type FrameKind uint8

const (
	KindValue FrameKind = 0
	KindEnd   FrameKind = 1
)

// String returns the kind name.
func (k FrameKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindEnd:
		return "end"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (FrameKind, bool) {
	switch s {
	case "value":
		return KindValue, true
	case "end":
		return KindEnd, true
	default:
		return 0, false
	}
}

// Frame is a single frame.
type Frame struct {
	Version uint8
	Seq     uint64
	Kind    FrameKind
	Payload []byte
	CRC     uint32
}

// ============================================================
// Errors
// ============================================================

// ParseError reports a malformed frame. Offset is the byte offset of
// the frame in the stream, or -1 if unknown.
type ParseError struct {
	Reason string
	Offset int64
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("snapshot: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("snapshot: %s", e.Reason)
}

// CRCMismatchError is returned when a payload does not match its
// header CRC.
type CRCMismatchError struct {
	Seq      uint64
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("snapshot: frame %d: CRC mismatch: expected %08x, got %08x", e.Seq, e.Expected, e.Got)
}

// DigestMismatchError is returned when the end frame digest does not
// match the value payloads read.
type DigestMismatchError struct {
	Expected string
	Got      string
}

func (e *DigestMismatchError) Error() string {
	return fmt.Sprintf("snapshot: stream digest mismatch: expected %s, got %s", e.Expected, e.Got)
}

// ============================================================
// Checksums
// ============================================================

var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes the CRC-32 (IEEE) of data.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// digestHex renders a SHA-256 sum as lowercase hex.
func digestHex(sum []byte) string {
	return hex.EncodeToString(sum)
}

func newDigest() *streamDigest {
	return &streamDigest{h: sha256.New()}
}

// streamDigest accumulates value payloads for the end frame.
type streamDigest struct {
	h hash.Hash
}

func (d *streamDigest) add(payload []byte) {
	d.h.Write(payload)
}

func (d *streamDigest) sum() string {
	return digestHex(d.h.Sum(nil))
}

// ============================================================
// Header
// ============================================================

const headerPrefix = "@snap{"

// formatHeader renders the header line, newline included.
func formatHeader(f *Frame) string {
	var sb strings.Builder
	sb.WriteString(headerPrefix)
	sb.WriteString("v=")
	sb.WriteString(strconv.Itoa(int(f.Version)))
	sb.WriteString(" seq=")
	sb.WriteString(strconv.FormatUint(f.Seq, 10))
	sb.WriteString(" kind=")
	sb.WriteString(f.Kind.String())
	sb.WriteString(" len=")
	sb.WriteString(strconv.Itoa(len(f.Payload)))
	sb.WriteString(" crc=")
	fmt.Fprintf(&sb, "%08x", f.CRC)
	sb.WriteString("}\n")
	return sb.String()
}

// parseHeader parses a header line. It returns the frame with an empty
// payload and the declared payload length. Unknown keys are ignored.
func parseHeader(line string, offset int64) (*Frame, int, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, headerPrefix) {
		return nil, 0, &ParseError{Reason: "expected " + headerPrefix, Offset: offset}
	}
	end := strings.LastIndex(line, "}")
	if end < len(headerPrefix) {
		return nil, 0, &ParseError{Reason: "missing closing }", Offset: offset}
	}

	f := &Frame{}
	length := -1
	haveCRC, haveSeq, haveKind := false, false, false

	for _, pair := range splitPairs(line[len(headerPrefix):end]) {
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			continue
		}
		key, val := pair[:eq], pair[eq+1:]

		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid version", Offset: offset}
			}
			f.Version = uint8(v)

		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid seq", Offset: offset}
			}
			f.Seq = seq
			haveSeq = true

		case "kind":
			kind, ok := ParseKind(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid kind: " + val, Offset: offset}
			}
			f.Kind = kind
			haveKind = true

		case "len":
			l, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid len", Offset: offset}
			}
			length = int(l)

		case "crc":
			crc, ok := parseCRC(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid crc: " + val, Offset: offset}
			}
			f.CRC = crc
			haveCRC = true
		}
	}

	switch {
	case f.Version != Version:
		return nil, 0, &ParseError{Reason: fmt.Sprintf("unsupported version %d", f.Version), Offset: offset}
	case !haveSeq:
		return nil, 0, &ParseError{Reason: "missing seq", Offset: offset}
	case !haveKind:
		return nil, 0, &ParseError{Reason: "missing kind", Offset: offset}
	case length < 0:
		return nil, 0, &ParseError{Reason: "missing len", Offset: offset}
	case !haveCRC:
		return nil, 0, &ParseError{Reason: "missing crc", Offset: offset}
	}
	return f, length, nil
}

// splitPairs splits key=value pairs separated by spaces, tabs or
// commas.
func splitPairs(s string) []string {
	var tokens []string
	var current bytes.Buffer
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == ',' || c == '\t' {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteByte(c)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// parseCRC parses "XXXXXXXX" or "crc32:XXXXXXXX".
func parseCRC(val string) (uint32, bool) {
	val = strings.TrimPrefix(val, "crc32:")
	if len(val) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(val, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
