// Codec lifts a Go value to and from the bytes a Heap persists.
// Persisted objects live in binary heap blocks, not JSON text, so a
// Codec deals in raw bytes directly — no ascii85 escaping is needed
// here the way it is for embedding a blob inside a JSON string.
package triplestore

import (
	"github.com/klauspost/compress/zstd"
)

// Codec converts a value to and from its on-heap byte representation.
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

// Shared encoder/decoder, built once at init: zstd encoder/decoder
// construction is expensive (internal state tables) and both are safe
// for concurrent use. SpeedFastest favours encode latency, matching the
// hot Add path; decode only runs on read.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// stringCodec encodes a Go string as UTF-8 bytes, zstd-compressing the
// payload when it is at least threshold bytes long. A one-byte tag
// distinguishes compressed from raw payloads so Decode doesn't have to
// guess.
type stringCodec struct {
	threshold int
}

const (
	codecTagRaw        byte = 0
	codecTagCompressed byte = 1
)

func newStringCodec(threshold int) stringCodec {
	return stringCodec{threshold: threshold}
}

func (c stringCodec) Encode(s string) ([]byte, error) {
	raw := []byte(s)
	if c.threshold <= 0 || len(raw) < c.threshold {
		return append([]byte{codecTagRaw}, raw...), nil
	}
	compressed := zstdEncoder.EncodeAll(raw, nil)
	return append([]byte{codecTagCompressed}, compressed...), nil
}

func (c stringCodec) Decode(buf []byte) (string, error) {
	if len(buf) == 0 {
		return "", nil
	}
	tag, body := buf[0], buf[1:]
	switch tag {
	case codecTagRaw:
		return string(body), nil
	case codecTagCompressed:
		out, err := zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", ErrCorruption
	}
}

// termCodec encodes a Term as its raw UTF-8 bytes with no tag or
// compression. It is used wherever encoded bytes must preserve the
// term's natural ordering under bytes.Compare — AA-tree keys and set
// members — since stringCodec's leading tag byte would otherwise be
// compared before the content whenever compression is enabled.
type termCodec struct{}

func (termCodec) Encode(t Term) ([]byte, error) { return []byte(t), nil }
func (termCodec) Decode(b []byte) (Term, error) { return string(b), nil }

// int64Codec encodes an int64 as 8 little-endian bytes — used for the
// offset values an Index's outer levels store (pointers to the next
// level's SortedMap/SortedSet root).
type int64Codec struct{}

func (int64Codec) Encode(v int64) ([]byte, error) { return encodeI64(v), nil }
func (int64Codec) Decode(b []byte) (int64, error) { return decodeI64(b), nil }
