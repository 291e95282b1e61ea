package bencode

import (
	"errors"
	"strings"
	"testing"
)

type decodeTestCase struct {
	value    string
	expected Value
	consumed int
}

var decodeTestCases = []decodeTestCase{
	{"5:hello", NewString("hello"), 7},
	{"0:", NewString(""), 2},
	{"10:hello12345", NewString("hello12345"), 13},
	{"3:e-e", NewString("e-e"), 5},
	{"4:l1:e", NewString("l1:e"), 6},
	{"3:\x00\xff\x80", NewBytes([]byte{0x00, 0xff, 0x80}), 5},
	{"i52e", NewInteger(52), 4},
	{"i-1e", NewInteger(-1), 4},
	{"i0e", NewInteger(0), 3},
	{"i9223372036854775807e", NewInteger(9223372036854775807), 21},
	{"i-9223372036854775808e", NewInteger(-9223372036854775808), 22},
	{"le", NewList(), 2},
	{"l5:helloi52ee", NewList(NewString("hello"), NewInteger(52)), 13},
	{"li52e5:helloe", NewList(NewInteger(52), NewString("hello")), 13},
	{"lli52eee", NewList(NewList(NewInteger(52))), 8},
	{"de", MustDict(), 2},
	{"d3:bar4:spam3:fooi42ee", MustDict(
		Pair{"bar", NewString("spam")},
		Pair{"foo", NewInteger(42)},
	), 22},
	{"d3:foo3:bar5:helloli52eee", MustDict(
		Pair{"foo", NewString("bar")},
		Pair{"hello", NewList(NewInteger(52))},
	), 25},
	{"d1:ad1:bl1:eeee", MustDict(
		Pair{"a", MustDict(Pair{"b", NewList(NewString("e"))})},
	), 15},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTestCases {
		actual, n, err := Decode([]byte(test.value))
		if err != nil {
			t.Fatalf("%q: %v", test.value, err)
		}
		if n != test.consumed {
			t.Errorf("%q: consumed %d, expected %d", test.value, n, test.consumed)
		}
		if !Equal(actual, test.expected) {
			t.Fatalf("\n"+
				"For     : %q\n"+
				"expected: %v\n"+
				"actual  : %v", test.value, test.expected, actual)
		}
	}
}

func TestDecode_CanonicalReencode(t *testing.T) {
	for _, test := range decodeTestCases {
		v, _, err := Decode([]byte(test.value))
		if err != nil {
			t.Fatal(err)
		}
		if got := string(Encode(v)); got != test.value {
			t.Errorf("re-encode of %q gave %q", test.value, got)
		}
	}
}

func TestDecode_TrailingBytesNotConsumed(t *testing.T) {
	v, n, err := Decode([]byte("i52e5:hello"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("expected 4 bytes consumed, got %d", n)
	}
	if i, ok := v.Int(); !ok || i != 52 {
		t.Errorf("expected 52, got %v", v)
	}
}

type decodeErrorTestCase struct {
	value  string
	kind   ErrorKind
	offset int
}

var decodeErrorTestCases = []decodeErrorTestCase{
	{"", UnexpectedEnd, 0},
	{"i-0e", InvalidInteger, 1},
	{"i03e", InvalidInteger, 1},
	{"i-03e", InvalidInteger, 2},
	{"ie", InvalidInteger, 1},
	{"i-e", InvalidInteger, 2},
	{"ixe", InvalidInteger, 1},
	{"i12", UnexpectedEnd, 3},
	{"i", UnexpectedEnd, 1},
	{"i12xe", MissingDelimiter, 3},
	{"i1.5e", MissingDelimiter, 2},
	{"i9223372036854775808e", IntegerOverflow, 1},
	{"i-9223372036854775809e", IntegerOverflow, 1},
	{"10:hi", UnexpectedEnd, 3},
	{"5:hell", UnexpectedEnd, 2},
	{"99999999999999999999999:x", UnexpectedEnd, 24},
	{"5", UnexpectedEnd, 1},
	{"5hello", MissingDelimiter, 1},
	{"05:hello", InvalidLength, 0},
	{"00:", InvalidLength, 0},
	{"x", InvalidTag, 0},
	{"-5:hello", InvalidTag, 0},
	{"e", UnbalancedContainer, 0},
	{"l", UnexpectedEnd, 1},
	{"l5:hello", UnexpectedEnd, 8},
	{"li1e", UnexpectedEnd, 4},
	{"lxe", InvalidTag, 1},
	{"d", UnexpectedEnd, 1},
	{"d3:foo", UnexpectedEnd, 6},
	{"d3:fooe", UnbalancedContainer, 6},
	{"di1ei2ee", InvalidDictKey, 1},
	{"dle1:ae", InvalidDictKey, 1},
	{"dxe", InvalidDictKey, 1},
	{"d3:foo3:bar3:bazi1ee", UnsortedKeys, 11},
	{"d3:fooi1e3:fooi2ee", DuplicateKey, 9},
	{"d1:bi1e1:ai2e1:ci3ee", UnsortedKeys, 7},
	{"d1:ad1:bi1e1:ai2eee", UnsortedKeys, 11},
}

func TestDecode_Errors(t *testing.T) {
	for _, test := range decodeErrorTestCases {
		v, n, err := Decode([]byte(test.value))
		if err == nil {
			t.Errorf("%q: expected %s, decoded %v (%d bytes)", test.value, test.kind, v, n)
			continue
		}
		if !errors.Is(err, test.kind) {
			t.Errorf("%q: expected %s, got %v", test.value, test.kind, err)
			continue
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("%q: expected *DecodeError, got %T", test.value, err)
		}
		if de.Offset != test.offset {
			t.Errorf("%q: expected offset %d, got %d (%v)", test.value, test.offset, de.Offset, err)
		}
	}
}

func TestDecode_NestingTooDeep(t *testing.T) {
	ok := strings.Repeat("l", DefaultMaxDepth) + strings.Repeat("e", DefaultMaxDepth)
	if _, _, err := Decode([]byte(ok)); err != nil {
		t.Fatalf("depth %d: %v", DefaultMaxDepth, err)
	}

	deep := strings.Repeat("l", DefaultMaxDepth+1) + strings.Repeat("e", DefaultMaxDepth+1)
	_, _, err := Decode([]byte(deep))
	if !errors.Is(err, NestingTooDeep) {
		t.Fatalf("expected NestingTooDeep, got %v", err)
	}
	var de *DecodeError
	if errors.As(err, &de) && de.Offset != DefaultMaxDepth {
		t.Errorf("expected offset %d, got %d", DefaultMaxDepth, de.Offset)
	}

	// Far beyond the limit must fail fast rather than exhaust the stack.
	huge := strings.Repeat("d1:a", 1<<20)
	if _, _, err := Decode([]byte(huge)); !errors.Is(err, NestingTooDeep) {
		t.Fatalf("expected NestingTooDeep, got %v", err)
	}
}

func TestDecodeWithOptions_MaxDepth(t *testing.T) {
	opts := DecodeOptions{MaxDepth: 2}
	if _, _, err := DecodeWithOptions([]byte("llee"), opts); err != nil {
		t.Fatal(err)
	}
	if _, _, err := DecodeWithOptions([]byte("lllee"), opts); !errors.Is(err, NestingTooDeep) {
		t.Fatalf("expected NestingTooDeep, got %v", err)
	}
	if _, _, err := DecodeWithOptions([]byte("ld1:alleee"), opts); !errors.Is(err, NestingTooDeep) {
		t.Fatalf("expected NestingTooDeep, got %v", err)
	}
}

func TestDecodeWithOptions_Lenient(t *testing.T) {
	opts := DecodeOptions{Lenient: true}
	v, n, err := DecodeWithOptions([]byte("d3:foo3:bar3:bazi1ee"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if n != 20 {
		t.Errorf("expected 20 bytes consumed, got %d", n)
	}

	expected := MustDict(Pair{"baz", NewInteger(1)}, Pair{"foo", NewString("bar")})
	if !Equal(v, expected) {
		t.Errorf("expected %v, got %v", expected, v)
	}
	if got := string(Encode(v)); got != "d3:bazi1e3:foo3:bare" {
		t.Errorf("unexpected canonical form %q", got)
	}

	_, _, err = DecodeWithOptions([]byte("d1:bi1e1:ai2e1:bi3ee"), opts)
	if !errors.Is(err, DuplicateKey) {
		t.Fatalf("expected DuplicateKey, got %v", err)
	}
}

func TestUnmarshal(t *testing.T) {
	v, err := Unmarshal([]byte("l5:helloi52ee"))
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != ListKind || v.Len() != 2 {
		t.Errorf("unexpected value %v", v)
	}

	_, err = Unmarshal([]byte("i52ee"))
	if !errors.Is(err, TrailingData) {
		t.Fatalf("expected TrailingData, got %v", err)
	}
	var de *DecodeError
	if errors.As(err, &de) && de.Offset != 4 {
		t.Errorf("expected offset 4, got %d", de.Offset)
	}

	if _, err = Unmarshal([]byte("5:helloi")); !errors.Is(err, TrailingData) {
		t.Fatalf("expected TrailingData, got %v", err)
	}
}

func TestDecodeAll(t *testing.T) {
	values, err := DecodeAll([]byte("i1e3:abcle" + "d1:ai2ee"))
	if err != nil {
		t.Fatal(err)
	}
	expected := []Value{
		NewInteger(1),
		NewString("abc"),
		NewList(),
		MustDict(Pair{"a", NewInteger(2)}),
	}
	if len(values) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(values))
	}
	for i := range expected {
		if !Equal(values[i], expected[i]) {
			t.Errorf("value %d: expected %v, got %v", i, expected[i], values[i])
		}
	}

	if values, err := DecodeAll(nil); err != nil || len(values) != 0 {
		t.Errorf("expected no values and no error, got %v, %v", values, err)
	}
}

func TestDecoder_Offsets(t *testing.T) {
	d := NewDecoder([]byte("i1e4:spamli2e"), DefaultDecodeOptions())

	for _, offset := range []int{3, 9} {
		if !d.More() {
			t.Fatal("expected more input")
		}
		if _, err := d.Decode(); err != nil {
			t.Fatal(err)
		}
		if d.Offset() != offset {
			t.Errorf("expected offset %d, got %d", offset, d.Offset())
		}
	}

	_, err := d.Decode()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != UnexpectedEnd {
		t.Fatalf("expected UnexpectedEnd, got %v", err)
	}
	if de.Offset != 13 {
		t.Errorf("expected absolute offset 13, got %d", de.Offset)
	}
	if d.Offset() != 9 {
		t.Errorf("failed decode advanced the cursor to %d", d.Offset())
	}
}

func TestDecode_OwnsBytes(t *testing.T) {
	buf := []byte("d3:key5:valuee")
	v, _, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range buf {
		buf[i] = 'x'
	}
	got, ok := v.Get("key")
	if !ok {
		t.Fatal("key not found after the input was overwritten")
	}
	if s, _ := got.Text(); s != "value" {
		t.Errorf("expected value, got %q", s)
	}
}

func TestDecodeError_Error(t *testing.T) {
	_, _, err := Decode([]byte("i03e"))
	expected := `bencode: invalid integer at offset 1: leading zero in "03"`
	if err == nil || err.Error() != expected {
		t.Errorf("expected %q, got %v", expected, err)
	}
	if s := newError(TrailingData, 3, "").Error(); s != "bencode: trailing data after document at offset 3" {
		t.Errorf("unexpected message %q", s)
	}
	if s := InvalidTag.Error(); s != "bencode: invalid tag" {
		t.Errorf("unexpected message %q", s)
	}
	if s := ErrorKind(99).String(); s != "ErrorKind(99)" {
		t.Errorf("unexpected name %q", s)
	}
}
