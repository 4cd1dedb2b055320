package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Neumenon/adt/adt"
)

// Reader reads values from frames written by Writer.
type Reader struct {
	r      *bufio.Reader
	dec    *zstd.Decoder
	cfg    config
	digest *streamDigest
	seq    uint64
	offset int64
	done   bool
}

// NewReader creates a Reader on r.
func NewReader(r io.Reader, opts ...Option) (*Reader, error) {
	cfg := newConfig(opts)
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(uint64(cfg.maxPayload)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: create decoder: %w", err)
	}
	return &Reader{r: bufio.NewReader(r), dec: dec, cfg: cfg, digest: newDigest()}, nil
}

// Next returns the next value. It returns io.EOF after the end frame,
// and a *ParseError if the stream ends without one.
func (r *Reader) Next() (*adt.Value, error) {
	if r.done {
		return nil, io.EOF
	}

	f, err := r.nextFrame()
	if err != nil {
		return nil, err
	}
	if f.Seq != r.seq {
		return nil, &ParseError{Reason: fmt.Sprintf("frame seq %d out of order, expected %d", f.Seq, r.seq), Offset: -1}
	}
	r.seq++

	if f.Kind == KindEnd {
		if got, want := r.digest.sum(), string(f.Payload); got != want {
			return nil, &DigestMismatchError{Expected: want, Got: got}
		}
		r.done = true
		r.cfg.log.Debug("read end frame", zap.Uint64("frames", r.seq))
		return nil, io.EOF
	}

	r.digest.add(f.Payload)
	v, err := r.decode(f)
	if err != nil {
		return nil, err
	}
	r.cfg.log.Debug("read value frame", zap.Uint64("seq", f.Seq), zap.String("tag", v.Tag()))
	return v, nil
}

// ReadAll reads every remaining value up to the end frame.
func (r *Reader) ReadAll() ([]*adt.Value, error) {
	var out []*adt.Value
	for {
		v, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Close releases the decoder. It does not close the underlying reader.
func (r *Reader) Close() {
	r.dec.Close()
}

func (r *Reader) nextFrame() (*Frame, error) {
	start := r.offset
	line, err := r.r.ReadString('\n')
	r.offset += int64(len(line))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Reason: "stream ended without end frame", Offset: start}
		}
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	f, length, err := parseHeader(line, start)
	if err != nil {
		return nil, err
	}
	if length > r.cfg.maxPayload {
		return nil, &ParseError{Reason: fmt.Sprintf("payload too large: %d > %d", length, r.cfg.maxPayload), Offset: start}
	}

	f.Payload = make([]byte, length)
	n, err := io.ReadFull(r.r, f.Payload)
	r.offset += int64(n)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("truncated payload: %v", err), Offset: start}
	}

	// Trailing newline is optional at EOF.
	if b, err := r.r.ReadByte(); err == nil {
		if b == '\n' {
			r.offset++
		} else {
			_ = r.r.UnreadByte()
		}
	}

	if r.cfg.verifyCRC {
		if got := ComputeCRC(f.Payload); got != f.CRC {
			return nil, &CRCMismatchError{Seq: f.Seq, Expected: f.CRC, Got: got}
		}
	}
	return f, nil
}

func (r *Reader) decode(f *Frame) (*adt.Value, error) {
	raw, err := r.dec.DecodeAll(f.Payload, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: frame %d: decompress: %w", f.Seq, err)
	}
	var s adt.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&s); err != nil {
		return nil, fmt.Errorf("snapshot: frame %d: decode: %w", f.Seq, err)
	}

	var v *adt.Value
	if r.cfg.reg != nil {
		v, err = r.cfg.reg.Restore(s)
	} else {
		v, err = adt.Restore(s)
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: frame %d: %w", f.Seq, err)
	}
	return v, nil
}
