package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm used for a block.
type CompressionType uint8

const (
	// CompressionNone indicates no compression.
	CompressionNone CompressionType = 0
	// CompressionLZ4 indicates LZ4 block compression (fast, good for hot
	// data such as history snapshots).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD indicates ZSTD block compression (better ratio, good
	// for persisted dataset blobs).
	CompressionZSTD CompressionType = 2
)

// ErrMalformedBlock is returned when a block header or payload is corrupt.
var ErrMalformedBlock = errors.New("malformed compressed block")

// blockHeaderSize is [Type uint8][UncompressedSize uint64 LE]. The size
// field is 64-bit: an assignment blob holds 8 bytes per spike, so datasets
// in the billions of spikes exceed what 32 bits can describe.
const blockHeaderSize = 9

// ZSTD encoder/decoder pools. Assignment snapshots are captured on every
// mutation, so encoder reuse matters.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// CompressBlock encodes data as a self-describing block:
//
//	[Type uint8][UncompressedSize uint64 LE][Payload...]
//
// If the requested compression fails or does not shrink the payload, the
// block is stored uncompressed (Type = CompressionNone), so CompressBlock
// never fails.
func CompressBlock(t CompressionType, data []byte) []byte {
	var compressed []byte

	switch t {
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		var c lz4.Compressor
		n, err := c.CompressBlock(data, buf)
		// n == 0 means incompressible.
		if err == nil && n > 0 && n < len(data) {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		buf := enc.EncodeAll(data, make([]byte, 0, len(data)))
		putZstdEncoder(enc)
		if len(buf) < len(data) {
			compressed = buf
		}
	}

	payload := compressed
	if payload == nil {
		t = CompressionNone
		payload = data
	}

	block := make([]byte, blockHeaderSize+len(payload))
	block[0] = byte(t)
	binary.LittleEndian.PutUint64(block[1:], uint64(len(data)))
	copy(block[blockHeaderSize:], payload)
	return block
}

// DecompressBlock decodes a block produced by CompressBlock.
func DecompressBlock(block []byte) ([]byte, error) {
	if len(block) < blockHeaderSize {
		return nil, fmt.Errorf("%w: short header (%d bytes)", ErrMalformedBlock, len(block))
	}

	t := CompressionType(block[0])
	size := binary.LittleEndian.Uint64(block[1:])
	payload := block[blockHeaderSize:]
	if size > math.MaxInt {
		return nil, fmt.Errorf("%w: size %d not addressable", ErrMalformedBlock, size)
	}

	switch t {
	case CompressionNone:
		if uint64(len(payload)) != size {
			return nil, fmt.Errorf("%w: size mismatch (header %d, payload %d)", ErrMalformedBlock, size, len(payload))
		}
		out := make([]byte, size)
		copy(out, payload)
		return out, nil
	case CompressionLZ4:
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
		}
		if uint64(n) != size {
			return nil, fmt.Errorf("%w: size mismatch (header %d, decoded %d)", ErrMalformedBlock, size, n)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, size))
		putZstdDecoder(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedBlock, err)
		}
		if uint64(len(out)) != size {
			return nil, fmt.Errorf("%w: size mismatch (header %d, decoded %d)", ErrMalformedBlock, size, len(out))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression type %d", ErrMalformedBlock, t)
	}
}
