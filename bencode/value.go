package bencode

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind defines the type of value stored in a Value.
type Kind int

const (
	BytesKind Kind = iota
	IntegerKind
	ListKind
	DictKind
)

func (k Kind) String() string {
	switch k {
	case BytesKind:
		return "bytes"
	case IntegerKind:
		return "integer"
	case ListKind:
		return "list"
	case DictKind:
		return "dict"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable bencode node: a byte string, an integer, a list or a
// dict. The zero Value is the empty byte string.
//
// A Value owns all of its content. Byte strings are held as Go strings, which
// may carry arbitrary bytes and cannot be modified, and accessors hand out
// copies of container slices.
type Value struct {
	kind Kind
	str  string
	num  int64
	list []Value
	dict []Pair
}

// Pair is one dict entry. Key holds raw bytes and need not be valid UTF-8.
type Pair struct {
	Key   string
	Value Value
}

// NewBytes returns a byte string Value holding a copy of b.
func NewBytes(b []byte) Value { return Value{kind: BytesKind, str: string(b)} }

// NewString returns a byte string Value holding the bytes of s.
func NewString(s string) Value { return Value{kind: BytesKind, str: s} }

// NewInteger returns an integer Value.
func NewInteger(i int64) Value { return Value{kind: IntegerKind, num: i} }

// NewList returns a list Value holding a copy of items.
func NewList(items ...Value) Value {
	return Value{kind: ListKind, list: slices.Clone(items)}
}

// NewDict returns a dict Value whose entries are pairs sorted by key.
// Duplicate keys are rejected with an error wrapping DuplicateKey.
func NewDict(pairs ...Pair) (Value, error) {
	sorted := slices.Clone(pairs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Key == sorted[i-1].Key {
			return Value{}, fmt.Errorf("%w: %q", DuplicateKey, sorted[i].Key)
		}
	}
	return Value{kind: DictKind, dict: sorted}, nil
}

// MustDict is like NewDict but panics on duplicate keys. It is intended for
// dict literals known to be valid.
func MustDict(pairs ...Pair) Value {
	v, err := NewDict(pairs...)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Bytes returns a copy of the byte string held by v.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != BytesKind {
		return nil, false
	}
	return []byte(v.str), true
}

// RawString returns the byte string held by v as a Go string, without
// checking that it is valid UTF-8.
func (v Value) RawString() (string, bool) {
	if v.kind != BytesKind {
		return "", false
	}
	return v.str, true
}

// Text returns the byte string held by v if it is valid UTF-8.
func (v Value) Text() (string, bool) {
	if v.kind != BytesKind || !utf8.ValidString(v.str) {
		return "", false
	}
	return v.str, true
}

// Int returns the integer held by v.
func (v Value) Int() (int64, bool) {
	if v.kind != IntegerKind {
		return 0, false
	}
	return v.num, true
}

// List returns a copy of the children of a list.
func (v Value) List() ([]Value, bool) {
	if v.kind != ListKind {
		return nil, false
	}
	return slices.Clone(v.list), true
}

// Dict returns a copy of the entries of a dict, in ascending key order.
func (v Value) Dict() ([]Pair, bool) {
	if v.kind != DictKind {
		return nil, false
	}
	return slices.Clone(v.dict), true
}

// Get looks up key in a dict.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != DictKind {
		return Value{}, false
	}
	i := sort.Search(len(v.dict), func(i int) bool { return v.dict[i].Key >= key })
	if i < len(v.dict) && v.dict[i].Key == key {
		return v.dict[i].Value, true
	}
	return Value{}, false
}

// Len returns the number of bytes, list items or dict entries in v.
// It returns 0 for integers.
func (v Value) Len() int {
	switch v.kind {
	case BytesKind:
		return len(v.str)
	case ListKind:
		return len(v.list)
	case DictKind:
		return len(v.dict)
	}
	return 0
}

// Equal reports whether a and b are structurally equal, which holds exactly
// when their canonical encodings are identical.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case BytesKind:
		return a.str == b.str
	case IntegerKind:
		return a.num == b.num
	case ListKind:
		return slices.EqualFunc(a.list, b.list, Equal)
	case DictKind:
		return slices.EqualFunc(a.dict, b.dict, func(x, y Pair) bool {
			return x.Key == y.Key && Equal(x.Value, y.Value)
		})
	}
	return false
}

// String returns a compact, human readable rendering of v for debugging.
func (v Value) String() string {
	var b strings.Builder
	v.writeString(&b)
	return b.String()
}

func (v Value) writeString(b *strings.Builder) {
	switch v.kind {
	case BytesKind:
		b.WriteString(strconv.Quote(v.str))
	case IntegerKind:
		b.WriteString(strconv.FormatInt(v.num, 10))
	case ListKind:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			item.writeString(b)
		}
		b.WriteByte(']')
	case DictKind:
		b.WriteByte('{')
		for i, p := range v.dict {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Quote(p.Key))
			b.WriteString(": ")
			p.Value.writeString(b)
		}
		b.WriteByte('}')
	}
}

// MarshalBencode returns the canonical encoding of v. Together with
// UnmarshalBencode it lets a Value be embedded in structs handled by
// reflection based bencode packages.
func (v Value) MarshalBencode() ([]byte, error) {
	return Encode(v), nil
}

// UnmarshalBencode decodes exactly one document from b into v.
func (v *Value) UnmarshalBencode(b []byte) error {
	decoded, err := Unmarshal(b)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
