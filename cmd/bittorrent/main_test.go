package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/youngbloood/bittorrent/bencode"
)

func TestParseFlags(t *testing.T) {
	opts, arg, err := parseFlags("decode", []string{"-lenient", "-max-depth", "8", "-v", "i1e"})
	if err != nil {
		t.Fatal(err)
	}
	if arg != "i1e" {
		t.Errorf("expected argument i1e, got %q", arg)
	}
	if !opts.lenient || !opts.verbose || opts.maxDepth != 8 {
		t.Errorf("unexpected options %+v", opts)
	}

	do := opts.decodeOptions()
	if do.MaxDepth != 8 || !do.Lenient {
		t.Errorf("unexpected decode options %+v", do)
	}
	if lo := opts.loadOptions(); lo.Logger == nil || lo.Decode != do {
		t.Errorf("unexpected load options %+v", lo)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, _, err := parseFlags("info", []string{"file.torrent"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.decodeOptions() != bencode.DefaultDecodeOptions() {
		t.Errorf("unexpected defaults %+v", opts.decodeOptions())
	}
	if opts.loadOptions().Logger != nil {
		t.Error("logger enabled without -v")
	}
}

func TestParseFlags_Errors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"a", "b"},
		{"-unknown", "a"},
		{"-max-depth", "x", "a"},
	} {
		if _, _, err := parseFlags("decode", args); err == nil {
			t.Errorf("%q: expected an error", args)
		}
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.torrent")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type commandTestCase struct {
	run      func(io.Writer, []string) error
	args     []string
	expected string
	fails    bool
}

func TestCommands(t *testing.T) {
	list := writeTemp(t, "l5:helloi52ee")
	dict := writeTemp(t, "d3:bar4:spam3:fooi42ee")
	unsorted := writeTemp(t, "d3:fooi42e3:bar4:spame")
	badInt := writeTemp(t, "i03e")

	for name, test := range map[string]commandTestCase{
		"decode string":       {cmdDecode, []string{"5:hello"}, "\"hello\"\n", false},
		"decode dict":         {cmdDecode, []string{"d3:foo3:bar5:helloi52ee"}, `{"foo":"bar","hello":52}` + "\n", false},
		"decode escaped dict": {cmdDecode, []string{"d3:hex4:abcde"}, `{"dict":[["hex","abcd"]]}` + "\n", false},
		"decode invalid":      {cmdDecode, []string{"i03e"}, "", true},
		"info":                {cmdInfo, []string{list}, "list (2 items)\n  - \"hello\"\n  - 52\n", false},
		"validate ok":         {cmdValidate, []string{dict}, "ok\n", false},
		"validate lenient":    {cmdValidate, []string{"-lenient", unsorted}, "ok\n", false},
		"validate unsorted":   {cmdValidate, []string{unsorted}, "invalid: dict keys not sorted at offset 10\n", true},
		"validate bad int":    {cmdValidate, []string{badInt}, "invalid: invalid integer at offset 1\n", true},
		"encode":              {cmdEncode, []string{`{"b": 1, "a": ["x"]}`}, "d1:al1:xe1:bi1ee\n", false},
		"encode float":        {cmdEncode, []string{`1.5`}, "", true},
		"verify":              {cmdVerify, []string{dict}, "ok\n", false},
		"verify bad int":      {cmdVerify, []string{badInt}, "", true},
	} {
		var out bytes.Buffer
		err := test.run(&out, test.args)
		if test.fails != (err != nil) {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if out.String() != test.expected {
			t.Errorf("%s: expected %q, got %q", name, test.expected, out.String())
		}
	}
}

func TestValidate_ErrorKind(t *testing.T) {
	err := cmdValidate(io.Discard, []string{writeTemp(t, "i-0e")})
	if !errors.Is(err, bencode.InvalidInteger) {
		t.Errorf("expected InvalidInteger, got %v", err)
	}
}
