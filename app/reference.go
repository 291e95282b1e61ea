package app

import (
	"bytes"
	"fmt"

	jackpal "github.com/jackpal/bencode-go"

	"github.com/youngbloood/bittorrent/bencode"
)

// DecodeReference decodes data with github.com/jackpal/bencode-go. It is
// used to cross-check this codec against an independent implementation.
// The reference decoder is lenient: it does not enforce canonical form.
func DecodeReference(data []byte) (bencode.Value, error) {
	native, err := jackpal.Decode(bytes.NewReader(data))
	if err != nil {
		return bencode.Value{}, fmt.Errorf("reference decode: %w", err)
	}
	return bencode.FromNative(native)
}

// EncodeReference encodes v with github.com/jackpal/bencode-go.
func EncodeReference(v bencode.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := jackpal.Marshal(&buf, bencode.ToNative(v)); err != nil {
		return nil, fmt.Errorf("reference encode: %w", err)
	}
	return buf.Bytes(), nil
}

// VerifyResult describes how a document decodes under both codecs.
type VerifyResult struct {
	Value     bencode.Value
	Reference bencode.Value
	Match     bool
}

// Verify decodes data with this codec and with the reference codec and
// reports whether the two trees agree.
func Verify(data []byte, opts bencode.DecodeOptions) (VerifyResult, error) {
	ours, err := bencode.UnmarshalWithOptions(data, opts)
	if err != nil {
		return VerifyResult{}, err
	}
	ref, err := DecodeReference(data)
	if err != nil {
		return VerifyResult{}, err
	}
	return VerifyResult{
		Value:     ours,
		Reference: ref,
		Match:     bencode.Equal(ours, ref),
	}, nil
}
