package chronicles

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// choppyWriter accepts a fixed number of bytes, then fails.
type choppyWriter struct {
	limit int
	buf   bytes.Buffer
}

var errChoppy = errors.New("choppy: out of space")

func (w *choppyWriter) Write(p []byte) (int, error) {
	room := w.limit - w.buf.Len()
	if room <= 0 {
		return 0, errChoppy
	}
	if len(p) > room {
		n, _ := w.buf.Write(p[:room])
		return n, errChoppy
	}
	return w.buf.Write(p)
}

func TestBlockWriterJoinsBlocks(t *testing.T) {
	var buf bytes.Buffer
	bw, err := NewBlockWriter(&buf)
	require.NoError(t, err)

	bw.WriteBlock("1,Jo")
	bw.WriteBlock("") // an instance that serialized to nothing
	bw.WriteBlock("1,Ann\r\n2,go")

	n, err := bw.Result()
	require.NoError(t, err)
	assert.Equal(t, "1,Jo\r\n1,Ann\r\n2,go", buf.String())
	assert.EqualValues(t, buf.Len(), n)
}

func TestBlockWriterNilWriter(t *testing.T) {
	_, err := NewBlockWriter(nil)
	assert.ErrorIs(t, err, ErrNilWriter)
}

func TestBlockWriterLatchesFirstError(t *testing.T) {
	w := &choppyWriter{limit: 4}
	bw, err := NewBlockWriter(w)
	require.NoError(t, err)

	bw.WriteBlock("1,Jo")   // exactly fills the writer
	bw.WriteBlock("1,Ann")  // separator write fails here
	bw.WriteBlock("1,Late") // must be a no-op

	firstErr := bw.Err()
	require.ErrorIs(t, firstErr, errChoppy)

	n, err := bw.Result()
	assert.Equal(t, firstErr, err, "the latched error must not change")
	assert.EqualValues(t, 4, n)
	assert.Equal(t, "1,Jo", w.buf.String())
}

func TestEncodeTo(t *testing.T) {
	s, err := New[person]()
	require.NoError(t, err)

	t.Run("StreamsBlocksInOrder", func(t *testing.T) {
		var buf bytes.Buffer
		people := []person{{Name: "Jo"}, {Name: "Ann", Tags: []string{"go"}}}
		n, err := s.EncodeTo(&buf, slices.Values(people))
		require.NoError(t, err)
		assert.Equal(t, "1,Jo\r\n1,Ann\r\n2,go", buf.String())
		assert.EqualValues(t, buf.Len(), n)
	})

	t.Run("NilWriter", func(t *testing.T) {
		_, err := s.EncodeTo(nil, slices.Values([]person{{Name: "Jo"}}))
		assert.ErrorIs(t, err, ErrNilWriter)
	})

	t.Run("StopsOnWriteError", func(t *testing.T) {
		w := &choppyWriter{limit: 4}
		people := []person{{Name: "Jo"}, {Name: "Ann"}, {Name: "Bo"}}
		n, err := s.EncodeTo(w, slices.Values(people))
		require.ErrorIs(t, err, errChoppy)
		assert.EqualValues(t, 4, n)
	})
}
