package bundle

import (
	"compress/bzip2"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the stream codec wrapped around a tar archive.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionBzip2
	CompressionGzip
	CompressionZstd
	CompressionLZ4
	CompressionSnappy
)

var archiveSuffixes = []struct {
	suffix string
	codec  Compression
}{
	{".tar.bz2", CompressionBzip2},
	{".tbz2", CompressionBzip2},
	{".tar.gz", CompressionGzip},
	{".tgz", CompressionGzip},
	{".tar.zst", CompressionZstd},
	{".tar.lz4", CompressionLZ4},
	{".tar.sz", CompressionSnappy},
	{".tar", CompressionNone},
}

// CompressionFromName picks the codec from an archive file name.
func CompressionFromName(name string) (Compression, bool) {
	lower := strings.ToLower(name)
	for _, s := range archiveSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.codec, true
		}
	}
	return 0, false
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBzip2:
		return "bzip2"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	case CompressionSnappy:
		return "snappy"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// newDecompressor wraps r with the decoder for c.
func newDecompressor(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionBzip2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case CompressionZstd:
		return newZstdReader(r)
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case CompressionSnappy:
		return io.NopCloser(s2.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression %s", c)
	}
}

// newZstdReader wraps an io.Reader with zstd decompression.
func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{dec: dec}, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
}

func (z *zstdReadCloser) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return nil
}
