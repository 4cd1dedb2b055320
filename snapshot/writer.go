package snapshot

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/Neumenon/adt/adt"
)

// ErrClosed is returned when writing to a closed Writer.
var ErrClosed = errors.New("snapshot: writer is closed")

// Writer writes values as frames.
type Writer struct {
	w      io.Writer
	enc    *zstd.Encoder
	log    *zap.Logger
	digest *streamDigest
	seq    uint64
	closed bool
}

// NewWriter creates a Writer on w.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := newConfig(opts)
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("snapshot: create encoder: %w", err)
	}
	return &Writer{w: w, enc: enc, log: cfg.log, digest: newDigest()}, nil
}

// Write appends v as one value frame.
func (w *Writer) Write(v *adt.Value) error {
	if w.closed {
		return ErrClosed
	}
	if v == nil {
		return fmt.Errorf("snapshot: write nil value")
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v.Snapshot()); err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", v.Tag(), err)
	}
	payload := w.enc.EncodeAll(buf.Bytes(), nil)

	if err := w.writeFrame(KindValue, payload); err != nil {
		return err
	}
	w.digest.add(payload)
	w.log.Debug("wrote value frame",
		zap.Uint64("seq", w.seq-1),
		zap.String("tag", v.Tag()),
		zap.Int("raw", buf.Len()),
		zap.Int("compressed", len(payload)))
	return nil
}

// Close writes the end frame and releases the encoder. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	err := w.writeFrame(KindEnd, []byte(w.digest.sum()))
	if cerr := w.enc.Close(); err == nil {
		err = cerr
	}
	w.log.Debug("closed snapshot stream", zap.Uint64("frames", w.seq))
	return err
}

func (w *Writer) writeFrame(kind FrameKind, payload []byte) error {
	f := &Frame{
		Version: Version,
		Seq:     w.seq,
		Kind:    kind,
		Payload: payload,
		CRC:     ComputeCRC(payload),
	}
	if _, err := io.WriteString(w.w, formatHeader(f)); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("snapshot: write payload: %w", err)
	}
	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return fmt.Errorf("snapshot: write trailing newline: %w", err)
	}
	w.seq++
	return nil
}
