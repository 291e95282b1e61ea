package app

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/youngbloood/bittorrent/bencode"
)

// hexPreview is the number of leading bytes shown for binary strings.
const hexPreview = 16

// Fprint writes an indented, human readable tree of v to w.
//
// Example:
//
//	dict (2 entries)
//	  "announce": "http://tracker"
//	  "info": dict (1 entries)
//	    "pieces": <40 bytes 0a1b...>
func Fprint(w io.Writer, v bencode.Value) error {
	bw := bufio.NewWriter(w)
	printValue(bw, v, 0)
	bw.WriteByte('\n')
	return bw.Flush()
}

func printValue(w *bufio.Writer, v bencode.Value, depth int) {
	switch v.Kind() {
	case bencode.BytesKind:
		s, _ := v.RawString()
		w.WriteString(formatBytes(s))

	case bencode.IntegerKind:
		i, _ := v.Int()
		w.WriteString(strconv.FormatInt(i, 10))

	case bencode.ListKind:
		items, _ := v.List()
		fmt.Fprintf(w, "list (%d items)", len(items))
		for _, item := range items {
			newline(w, depth+1)
			w.WriteString("- ")
			printValue(w, item, depth+1)
		}

	case bencode.DictKind:
		pairs, _ := v.Dict()
		fmt.Fprintf(w, "dict (%d entries)", len(pairs))
		for _, p := range pairs {
			newline(w, depth+1)
			w.WriteString(formatBytes(p.Key))
			w.WriteString(": ")
			printValue(w, p.Value, depth+1)
		}
	}
}

func newline(w *bufio.Writer, depth int) {
	w.WriteByte('\n')
	w.WriteString(strings.Repeat("  ", depth))
}

// formatBytes quotes printable text and summarizes anything else.
func formatBytes(s string) string {
	if isPrintable(s) {
		return strconv.Quote(s)
	}
	if len(s) <= hexPreview {
		return fmt.Sprintf("<%d bytes %s>", len(s), hex.EncodeToString([]byte(s)))
	}
	return fmt.Sprintf("<%d bytes %s...>", len(s), hex.EncodeToString([]byte(s[:hexPreview])))
}

func isPrintable(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
