// Package bencode decodes, validates and encodes bencode, the length-prefixed
// encoding used by BitTorrent metainfo files.
//
// Decoded documents are represented as immutable Value trees that keep byte
// strings exact and dict keys in wire order. Decoding is strict by default:
// integers must be in minimal form and fit in an int64, string lengths carry
// no leading zeros, and dict keys must be unique and ascending. Encoding a
// Value always produces the canonical form, so for any Value v
//
//	Unmarshal(Encode(v)) == v
//
// and for any document b accepted by Unmarshal, Encode reproduces b.
//
// All functions are safe for concurrent use on separate buffers.
package bencode
