package tablestore

import (
	"bytes"
	"compress/bzip2"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("id,name\n1,alice\n", 100)

	for _, compression := range []Compression{CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, closeWriter, err := newCodec(compression).writer(&buf)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, closeWriter())

			if compression != CompressionNone {
				assert.NotEqual(t, payload, buf.String(), "data should be compressed")
			}

			r, closeReader, err := newCodec(compression).reader(&buf)
			require.NoError(t, err)
			defer func() {
				assert.NoError(t, closeReader())
			}()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestCodec_BZ2(t *testing.T) {
	t.Parallel()

	t.Run("writing is unsupported", func(t *testing.T) {
		t.Parallel()
		_, _, err := newCodec(CompressionBZ2).writer(io.Discard)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("reader wraps the standard library decoder", func(t *testing.T) {
		t.Parallel()
		r, closeReader, err := newCodec(CompressionBZ2).reader(strings.NewReader(""))
		require.NoError(t, err)
		assert.NoError(t, closeReader())
		assert.IsType(t, bzip2.NewReader(nil), r)
	})
}

func TestCodec_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, compression := range []Compression{CompressionGZ, CompressionXZ} {
		_, _, err := newCodec(compression).reader(strings.NewReader("plain text"))
		assert.Error(t, err, compression.String())
	}

	_, _, err := newCodec(Compression(99)).reader(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
