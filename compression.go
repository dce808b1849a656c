package tablestore

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// codec wraps readers and writers with one compression type
type codec struct {
	compression Compression
}

// newCodec returns the codec for compression
func newCodec(compression Compression) codec {
	return codec{compression: compression}
}

// reader wraps r with a decompressing reader. The returned close function
// releases the decompressor but never closes r.
func (c codec) reader(r io.Reader) (io.Reader, func() error, error) {
	switch c.compression {
	case CompressionNone:
		return r, func() error { return nil }, nil

	case CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case CompressionBZ2:
		return bzip2.NewReader(r), func() error { return nil }, nil

	case CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xzReader, func() error { return nil }, nil

	case CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, c.compression)
	}
}

// writer wraps w with a compressing writer. The returned close function
// flushes the compressor and must be called before w is closed.
func (c codec) writer(w io.Writer) (io.Writer, func() error, error) {
	switch c.compression {
	case CompressionNone:
		return w, func() error { return nil }, nil

	case CompressionGZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil

	case CompressionXZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil

	case CompressionZSTD:
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return encoder, encoder.Close, nil

	case CompressionBZ2:
		return nil, nil, fmt.Errorf("%w: bzip2 compression is read-only", ErrUnsupportedFormat)

	default:
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, c.compression)
	}
}
