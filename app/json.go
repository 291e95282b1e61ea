package app

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/youngbloood/bittorrent/bencode"
)

// Reserved object keys. A JSON object holding exactly one of them is not a
// plain dict but one of the escaped forms below.
const (
	hexKey  = "hex"
	dictKey = "dict"
)

// MarshalJSON renders a Value as JSON. Dict entries keep their order and byte
// strings that are valid UTF-8 become JSON strings. Other byte strings become
// {"hex": "..."} objects.
//
// A dict is written as {"dict": [[key, value], ...]} when one of its keys is
// not valid UTF-8, or when its only key is "hex" or "dict". Keys use the same
// rendering as byte strings, so every document survives ValueFromJSON.
func MarshalJSON(v bencode.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v bencode.Value) error {
	switch v.Kind() {
	case bencode.BytesKind:
		s, _ := v.RawString()
		return writeJSONBytes(buf, s)

	case bencode.IntegerKind:
		i, _ := v.Int()
		fmt.Fprintf(buf, "%d", i)
		return nil

	case bencode.ListKind:
		items, _ := v.List()
		buf.WriteByte('[')
		for i, item := range items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case bencode.DictKind:
		pairs, _ := v.Dict()
		if needsPairForm(pairs) {
			return writeJSONPairs(buf, pairs)
		}
		buf.WriteByte('{')
		for i, p := range pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, p.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, p.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	}
	return fmt.Errorf("unknown value kind %s", v.Kind())
}

func needsPairForm(pairs []bencode.Pair) bool {
	if len(pairs) == 1 && (pairs[0].Key == hexKey || pairs[0].Key == dictKey) {
		return true
	}
	for _, p := range pairs {
		if !utf8.ValidString(p.Key) {
			return true
		}
	}
	return false
}

func writeJSONPairs(buf *bytes.Buffer, pairs []bencode.Pair) error {
	buf.WriteString(`{"` + dictKey + `":[`)
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('[')
		if err := writeJSONBytes(buf, p.Key); err != nil {
			return err
		}
		buf.WriteByte(',')
		if err := writeJSON(buf, p.Value); err != nil {
			return err
		}
		buf.WriteByte(']')
	}
	buf.WriteString("]}")
	return nil
}

func writeJSONBytes(buf *bytes.Buffer, s string) error {
	if utf8.ValidString(s) {
		return writeJSONString(buf, s)
	}
	buf.WriteString(`{"` + hexKey + `":"`)
	buf.WriteString(hex.EncodeToString([]byte(s)))
	buf.WriteString(`"}`)
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}

// ValueFromJSON builds a Value from a JSON document. Strings become byte
// strings, integral numbers become integers, arrays become lists and objects
// become dicts. The {"hex": ...} and {"dict": [...]} forms written by
// MarshalJSON are read back as raw bytes and as dicts. Floats, booleans and
// null have no bencode form and are rejected, as are duplicate object keys.
func ValueFromJSON(data []byte) (bencode.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return bencode.Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return bencode.Value{}, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func nextToken(dec *json.Decoder) (json.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return tok, err
}

func readJSON(dec *json.Decoder) (bencode.Value, error) {
	tok, err := nextToken(dec)
	if err != nil {
		return bencode.Value{}, err
	}

	switch t := tok.(type) {
	case string:
		return bencode.NewString(t), nil

	case json.Number:
		if strings.ContainsAny(t.String(), ".eE") {
			return bencode.Value{}, fmt.Errorf("number %s is not an integer", t)
		}
		i, err := t.Int64()
		if err != nil {
			return bencode.Value{}, fmt.Errorf("%w: %s", bencode.IntegerOverflow, t)
		}
		return bencode.NewInteger(i), nil

	case json.Delim:
		if t == '[' {
			return readJSONArray(dec)
		}
		return readJSONObject(dec)
	}
	return bencode.Value{}, fmt.Errorf("JSON %T has no bencode form", tok)
}

func readJSONArray(dec *json.Decoder) (bencode.Value, error) {
	var items []bencode.Value
	for dec.More() {
		v, err := readJSON(dec)
		if err != nil {
			return bencode.Value{}, err
		}
		items = append(items, v)
	}
	if _, err := nextToken(dec); err != nil {
		return bencode.Value{}, err
	}
	return bencode.NewList(items...), nil
}

func readJSONObject(dec *json.Decoder) (bencode.Value, error) {
	var pairs []bencode.Pair
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := nextToken(dec)
		if err != nil {
			return bencode.Value{}, err
		}
		key := tok.(string)
		if _, dup := seen[key]; dup {
			return bencode.Value{}, fmt.Errorf("%w: %q", bencode.DuplicateKey, key)
		}
		seen[key] = struct{}{}

		v, err := readJSON(dec)
		if err != nil {
			return bencode.Value{}, err
		}
		pairs = append(pairs, bencode.Pair{Key: key, Value: v})
	}
	if _, err := nextToken(dec); err != nil {
		return bencode.Value{}, err
	}

	if len(pairs) == 1 {
		switch pairs[0].Key {
		case hexKey:
			return hexBytes(pairs[0].Value)
		case dictKey:
			return dictFromPairs(pairs[0].Value)
		}
	}
	return bencode.NewDict(pairs...)
}

func hexBytes(v bencode.Value) (bencode.Value, error) {
	h, ok := v.RawString()
	if !ok {
		return bencode.Value{}, fmt.Errorf(`"%s" must hold a string`, hexKey)
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return bencode.Value{}, fmt.Errorf("hex string: %w", err)
	}
	return bencode.NewBytes(b), nil
}

func dictFromPairs(v bencode.Value) (bencode.Value, error) {
	items, ok := v.List()
	if !ok {
		return bencode.Value{}, fmt.Errorf(`"%s" must hold an array of [key, value] pairs`, dictKey)
	}
	pairs := make([]bencode.Pair, len(items))
	for i, item := range items {
		kv, ok := item.List()
		if !ok || len(kv) != 2 {
			return bencode.Value{}, fmt.Errorf("dict entry %d is not a [key, value] pair", i)
		}
		key, ok := kv[0].RawString()
		if !ok {
			return bencode.Value{}, fmt.Errorf("dict entry %d: key is not a string", i)
		}
		pairs[i] = bencode.Pair{Key: key, Value: kv[1]}
	}
	return bencode.NewDict(pairs...)
}
