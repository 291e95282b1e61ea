package app

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/youngbloood/bittorrent/bencode"
)

// DefaultMaxSize bounds the size of a document read by the loader.
const DefaultMaxSize = 64 << 20

// ErrTooLarge is returned when an input exceeds LoadOptions.MaxSize.
var ErrTooLarge = errors.New("input exceeds size limit")

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// LoadOptions configures how documents are read from files.
type LoadOptions struct {
	// MaxSize limits the decompressed document size (default: 64 MiB).
	MaxSize int64

	// Decode is passed to the decoder.
	Decode bencode.DecodeOptions

	// Logger receives diagnostics. Nil disables them.
	Logger *log.Logger
}

// DefaultLoadOptions returns the options used by the CLI.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		MaxSize: DefaultMaxSize,
		Decode:  bencode.DefaultDecodeOptions(),
	}
}

func (o LoadOptions) logf(format string, args ...interface{}) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}

// ReadFile reads a file, transparently decompressing gzip and zstd input.
func ReadFile(filePath string, opts LoadOptions) ([]byte, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := ReadAll(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return data, nil
}

// ReadAll reads r up to opts.MaxSize bytes. Compressed input is detected by
// its magic number; bencode documents never start with those bytes.
func ReadAll(r io.Reader, opts LoadOptions) ([]byte, error) {
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	br := bufio.NewReader(r)
	magic, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		opts.logf("decompressing gzip input")
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		src = zr
	case bytes.HasPrefix(magic, zstdMagic):
		opts.logf("decompressing zstd input")
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, maxSize)
	}
	opts.logf("read %d bytes", len(data))
	return data, nil
}

// LoadFile reads a file holding exactly one document and decodes it.
func LoadFile(filePath string, opts LoadOptions) (bencode.Value, error) {
	data, err := ReadFile(filePath, opts)
	if err != nil {
		return bencode.Value{}, err
	}

	v, err := bencode.UnmarshalWithOptions(data, opts.Decode)
	if err != nil {
		return bencode.Value{}, fmt.Errorf("%s: %w", filePath, err)
	}
	return v, nil
}
