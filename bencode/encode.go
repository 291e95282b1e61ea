package bencode

import (
	"io"
	"strconv"
)

// Encode returns the canonical encoding of v.
func Encode(v Value) []byte {
	return AppendEncode(make([]byte, 0, EncodedLen(v)), v)
}

// AppendEncode appends the canonical encoding of v to dst and returns the
// extended buffer.
func AppendEncode(dst []byte, v Value) []byte {
	switch v.kind {
	case BytesKind:
		return appendString(dst, v.str)
	case IntegerKind:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, v.num, 10)
		return append(dst, 'e')
	case ListKind:
		dst = append(dst, 'l')
		for _, item := range v.list {
			dst = AppendEncode(dst, item)
		}
		return append(dst, 'e')
	case DictKind:
		dst = append(dst, 'd')
		for _, p := range v.dict {
			dst = appendString(dst, p.Key)
			dst = AppendEncode(dst, p.Value)
		}
		return append(dst, 'e')
	}
	return dst
}

func appendString(dst []byte, s string) []byte {
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, ':')
	return append(dst, s...)
}

// EncodedLen returns the length of the canonical encoding of v.
func EncodedLen(v Value) int {
	switch v.kind {
	case BytesKind:
		return stringLen(len(v.str))
	case IntegerKind:
		return 2 + intLen(v.num)
	case ListKind:
		n := 2
		for _, item := range v.list {
			n += EncodedLen(item)
		}
		return n
	case DictKind:
		n := 2
		for _, p := range v.dict {
			n += stringLen(len(p.Key)) + EncodedLen(p.Value)
		}
		return n
	}
	return 0
}

func stringLen(n int) int { return intLen(int64(n)) + 1 + n }

// intLen returns the number of bytes in the decimal form of i.
func intLen(i int64) int {
	n := 1
	u := uint64(i)
	if i < 0 {
		n++
		u = -u
	}
	for u >= 10 {
		u /= 10
		n++
	}
	return n
}

// Encoder writes canonical encodings to an output stream.
type Encoder struct {
	w   io.Writer
	buf []byte
}

// NewEncoder returns an Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the canonical encoding of v.
func (e *Encoder) Encode(v Value) error {
	e.buf = AppendEncode(e.buf[:0], v)
	_, err := e.w.Write(e.buf)
	return err
}
