package chronicles

import (
	"io"
	"iter"
)

// BlockWriter writes converted blocks to an io.Writer, separating them
// with LineSeparator. It tracks the first error that occurs; after an
// error all subsequent writes become no-ops.
type BlockWriter struct {
	w     io.Writer
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	wrote bool  // a block has been written, the next one needs a separator
}

// NewBlockWriter wraps w for block output.
func NewBlockWriter(w io.Writer) (*BlockWriter, error) {
	if w == nil {
		return nil, ErrNilWriter
	}
	return &BlockWriter{w: w}, nil
}

// WriteBlock appends one instance block. Empty blocks are skipped, so an
// instance that serialized to nothing does not produce a blank line.
func (bw *BlockWriter) WriteBlock(block string) {
	if bw.err != nil || block == "" {
		return
	}
	if bw.wrote && !bw.writeString(LineSeparator) {
		return
	}
	bw.wrote = true
	bw.writeString(block)
}

func (bw *BlockWriter) writeString(s string) bool {
	n, err := io.WriteString(bw.w, s)
	bw.count += int64(n)
	if err == nil && n < len(s) {
		err = io.ErrShortWrite
	}
	if err != nil && bw.err == nil {
		bw.err = err
	}
	return bw.err == nil
}

// Count returns the total bytes written so far.
func (bw *BlockWriter) Count() int64 { return bw.count }

// Err returns the first error encountered, if any.
func (bw *BlockWriter) Err() error { return bw.err }

// Result returns the byte count and the latched error in one call.
func (bw *BlockWriter) Result() (int64, error) { return bw.count, bw.err }

// EncodeTo streams the conversion of seq to w, one block per instance in
// input order, blocks separated by LineSeparator. It stops at the first
// write error and reports the bytes written up to that point.
func (s *Serializer[T]) EncodeTo(w io.Writer, seq iter.Seq[T]) (int64, error) {
	bw, err := NewBlockWriter(w)
	if err != nil {
		return 0, err
	}
	for v := range seq {
		bw.WriteBlock(s.Convert(v))
		if bw.Err() != nil {
			break
		}
	}
	return bw.Result()
}
