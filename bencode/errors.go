package bencode

import "fmt"

// ErrorKind classifies why a buffer is not a well-formed bencode document.
// Each kind is itself an error, so callers can match with errors.Is.
type ErrorKind int

const (
	UnexpectedEnd ErrorKind = iota + 1
	MissingDelimiter
	InvalidLength
	InvalidTag
	InvalidInteger
	IntegerOverflow
	UnbalancedContainer
	InvalidDictKey
	DuplicateKey
	UnsortedKeys
	TrailingData
	NestingTooDeep
)

var kindNames = map[ErrorKind]string{
	UnexpectedEnd:       "unexpected end of input",
	MissingDelimiter:    "missing delimiter",
	InvalidLength:       "invalid string length",
	InvalidTag:          "invalid tag",
	InvalidInteger:      "invalid integer",
	IntegerOverflow:     "integer overflows int64",
	UnbalancedContainer: "unbalanced container",
	InvalidDictKey:      "dict key is not a string",
	DuplicateKey:        "duplicate dict key",
	UnsortedKeys:        "dict keys not sorted",
	TrailingData:        "trailing data after document",
	NestingTooDeep:      "nesting too deep",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func (k ErrorKind) Error() string { return "bencode: " + k.String() }

// DecodeError reports a malformed document and the byte offset, relative to
// the start of the buffer given to the call, where the problem was detected.
type DecodeError struct {
	Kind   ErrorKind
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("bencode: %s at offset %d: %s", e.Kind.String(), e.Offset, e.Detail)
	}
	return fmt.Sprintf("bencode: %s at offset %d", e.Kind.String(), e.Offset)
}

// Unwrap returns the error kind.
func (e *DecodeError) Unwrap() error { return e.Kind }

func newError(kind ErrorKind, offset int, format string, args ...interface{}) *DecodeError {
	e := &DecodeError{Kind: kind, Offset: offset}
	if format != "" {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}
