package bencode

import (
	"sort"
	"strconv"
)

// DefaultMaxDepth is the container nesting limit applied when
// DecodeOptions.MaxDepth is not set.
const DefaultMaxDepth = 512

// DecodeOptions configures the decoder and the validator.
type DecodeOptions struct {
	// MaxDepth limits container nesting (default: 512).
	MaxDepth int

	// Lenient accepts dicts whose keys are not in ascending order. The
	// decoded dict is sorted, so re-encoding yields canonical form rather
	// than the original bytes. Duplicate keys are rejected either way.
	Lenient bool
}

// DefaultDecodeOptions returns the strict options used by Decode.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{MaxDepth: DefaultMaxDepth}
}

func (o DecodeOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

// Decode decodes the value at the front of buf and returns it together with
// the number of bytes consumed. Bytes after the value are left untouched, so
// concatenated documents can be decoded one after another.
//
// Example:
//   - 5:hello -> "hello", 7
//   - l5:helloi52ee -> ["hello", 52], 13
func Decode(buf []byte) (Value, int, error) {
	return DecodeWithOptions(buf, DefaultDecodeOptions())
}

// DecodeWithOptions is like Decode with explicit options.
func DecodeWithOptions(buf []byte, opts DecodeOptions) (Value, int, error) {
	d := decodeState{buf: buf, opts: opts, maxDepth: opts.maxDepth()}
	v, err := d.value()
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.pos, nil
}

// Unmarshal decodes buf, which must hold exactly one document.
func Unmarshal(buf []byte) (Value, error) {
	return UnmarshalWithOptions(buf, DefaultDecodeOptions())
}

// UnmarshalWithOptions is like Unmarshal with explicit options.
func UnmarshalWithOptions(buf []byte, opts DecodeOptions) (Value, error) {
	v, n, err := DecodeWithOptions(buf, opts)
	if err != nil {
		return Value{}, err
	}
	if n != len(buf) {
		return Value{}, newError(TrailingData, n, "%d bytes left", len(buf)-n)
	}
	return v, nil
}

// DecodeAll decodes every document in a buffer of concatenated documents.
func DecodeAll(buf []byte) ([]Value, error) {
	var values []Value
	d := NewDecoder(buf, DefaultDecodeOptions())
	for d.More() {
		v, err := d.Decode()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Decoder walks a buffer of concatenated documents. Error offsets are
// relative to the start of the whole buffer.
type Decoder struct {
	buf  []byte
	pos  int
	opts DecodeOptions
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte, opts DecodeOptions) *Decoder {
	return &Decoder{buf: buf, opts: opts}
}

// More reports whether unread bytes remain.
func (d *Decoder) More() bool { return d.pos < len(d.buf) }

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.pos }

// Decode decodes the next document. On error the position is not advanced.
func (d *Decoder) Decode() (Value, error) {
	s := decodeState{buf: d.buf, pos: d.pos, opts: d.opts, maxDepth: d.opts.maxDepth()}
	v, err := s.value()
	if err != nil {
		return Value{}, err
	}
	d.pos = s.pos
	return v, nil
}

// decodeState is a cursor over the input. Positions are indexes into buf;
// the input is never re-sliced while parsing.
type decodeState struct {
	buf      []byte
	pos      int
	depth    int
	maxDepth int
	opts     DecodeOptions
}

func (d *decodeState) value() (Value, error) {
	if d.pos >= len(d.buf) {
		return Value{}, newError(UnexpectedEnd, d.pos, "expected a value")
	}

	switch c := d.buf[d.pos]; {
	case isDigit(c):
		start, end, err := scanString(d.buf, d.pos)
		if err != nil {
			return Value{}, err
		}
		d.pos = end
		return Value{kind: BytesKind, str: string(d.buf[start:end])}, nil
	case c == 'i':
		n, next, err := scanInteger(d.buf, d.pos)
		if err != nil {
			return Value{}, err
		}
		d.pos = next
		return NewInteger(n), nil
	case c == 'l':
		return d.list()
	case c == 'd':
		return d.dict()
	case c == 'e':
		return Value{}, newError(UnbalancedContainer, d.pos, "unexpected 'e'")
	default:
		return Value{}, newError(InvalidTag, d.pos, "unexpected byte %q", c)
	}
}

func (d *decodeState) enter() error {
	d.depth++
	if d.depth > d.maxDepth {
		return newError(NestingTooDeep, d.pos, "more than %d nested containers", d.maxDepth)
	}
	return nil
}

func (d *decodeState) list() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	d.pos++

	items := make([]Value, 0)
	for {
		if d.pos >= len(d.buf) {
			return Value{}, newError(UnexpectedEnd, d.pos, "list not terminated")
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			break
		}

		item, err := d.value()
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}

	d.depth--
	return Value{kind: ListKind, list: items}, nil
}

func (d *decodeState) dict() (Value, error) {
	if err := d.enter(); err != nil {
		return Value{}, err
	}
	d.pos++

	var (
		pairs  = make([]Pair, 0)
		seen   map[string]struct{}
		sorted = true
	)
	for {
		if d.pos >= len(d.buf) {
			return Value{}, newError(UnexpectedEnd, d.pos, "dict not terminated")
		}
		c := d.buf[d.pos]
		if c == 'e' {
			d.pos++
			break
		}
		if !isDigit(c) {
			return Value{}, newError(InvalidDictKey, d.pos, "key starts with %q", c)
		}

		keyOffset := d.pos
		start, end, err := scanString(d.buf, d.pos)
		if err != nil {
			return Value{}, err
		}
		d.pos = end
		key := string(d.buf[start:end])

		if d.opts.Lenient {
			if seen == nil {
				seen = make(map[string]struct{})
			}
			if _, dup := seen[key]; dup {
				return Value{}, newError(DuplicateKey, keyOffset, "%q", key)
			}
			seen[key] = struct{}{}
		}
		if n := len(pairs); n > 0 {
			if err := checkKeyOrder(pairs[n-1].Key, key, keyOffset, d.opts.Lenient); err != nil {
				return Value{}, err
			}
			if key < pairs[n-1].Key {
				sorted = false
			}
		}

		val, err := d.value()
		if err != nil {
			return Value{}, err
		}
		pairs = append(pairs, Pair{Key: key, Value: val})
	}

	if !sorted {
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	}
	d.depth--
	return Value{kind: DictKind, dict: pairs}, nil
}

// checkKeyOrder verifies that key may follow prev in a dict.
func checkKeyOrder(prev, key string, offset int, lenient bool) error {
	switch {
	case key == prev:
		return newError(DuplicateKey, offset, "%q", key)
	case key < prev && !lenient:
		return newError(UnsortedKeys, offset, "%q after %q", key, prev)
	}
	return nil
}

// scanString reads a length-prefixed byte string starting at pos and returns
// the span of its content. The content is consumed by count, never scanned.
func scanString(buf []byte, pos int) (start, end int, err error) {
	digitsStart := pos
	for pos < len(buf) && isDigit(buf[pos]) {
		pos++
	}
	if pos == len(buf) {
		return 0, 0, newError(UnexpectedEnd, pos, "string length not terminated")
	}
	if buf[pos] != ':' {
		return 0, 0, newError(MissingDelimiter, pos, "expected ':' after string length, got %q", buf[pos])
	}

	digits := buf[digitsStart:pos]
	if len(digits) == 0 {
		return 0, 0, newError(InvalidLength, digitsStart, "empty string length")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return 0, 0, newError(InvalidLength, digitsStart, "leading zero in %q", digits)
	}

	start = pos + 1
	remaining := len(buf) - start
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
		if n > remaining {
			return 0, 0, newError(UnexpectedEnd, start, "string length %s exceeds the %d remaining bytes", digits, remaining)
		}
	}
	return start, start + n, nil
}

// scanInteger reads an integer token whose 'i' is at pos and returns the
// value and the position after the closing 'e'.
func scanInteger(buf []byte, pos int) (int64, int, error) {
	start := pos + 1
	pos = start
	negative := pos < len(buf) && buf[pos] == '-'
	if negative {
		pos++
	}

	digitsStart := pos
	for pos < len(buf) && isDigit(buf[pos]) {
		pos++
	}
	if pos == len(buf) {
		return 0, 0, newError(UnexpectedEnd, pos, "integer not terminated")
	}

	digits := buf[digitsStart:pos]
	if len(digits) == 0 {
		return 0, 0, newError(InvalidInteger, digitsStart, "no digits")
	}
	if buf[pos] != 'e' {
		return 0, 0, newError(MissingDelimiter, pos, "expected 'e' after integer, got %q", buf[pos])
	}
	if digits[0] == '0' {
		if len(digits) > 1 {
			return 0, 0, newError(InvalidInteger, digitsStart, "leading zero in %q", digits)
		}
		if negative {
			return 0, 0, newError(InvalidInteger, start, "negative zero")
		}
	}

	n, err := strconv.ParseInt(string(buf[start:pos]), 10, 64)
	if err != nil {
		return 0, 0, newError(IntegerOverflow, start, "%s", buf[start:pos])
	}
	return n, pos + 1, nil
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
