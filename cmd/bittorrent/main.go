// Command bittorrent decodes and checks bencoded documents.
//
// Usage:
//
//	bittorrent decode [flags] <bencoded>   Decode a bencoded argument and print it as JSON
//	bittorrent info [flags] <file>         Print the value tree of a file
//	bittorrent validate [flags] <file>     Check that a file is one well-formed document
//	bittorrent encode <json>               Encode a JSON argument as canonical bencode
//	bittorrent verify [flags] <file>       Compare the decoded tree with the reference codec
//
// Files may be gzip or zstd compressed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/youngbloood/bittorrent/app"
	"github.com/youngbloood/bittorrent/bencode"
)

// Answers go to stdout, so diagnostics are written to stderr.
var logger = log.New(os.Stderr, "bittorrent: ", 0)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	command, args := os.Args[1], os.Args[2:]
	var err error
	switch command {
	case "decode":
		err = cmdDecode(os.Stdout, args)
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "validate":
		err = cmdValidate(os.Stdout, args)
	case "encode":
		err = cmdEncode(os.Stdout, args)
	case "verify":
		err = cmdVerify(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		logger.Fatalf("Unknown command: %s", command)
	}

	if err != nil {
		logger.Fatal(err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: bittorrent <command> [flags] <argument>

commands:
  decode <bencoded>   decode a bencoded argument and print it as JSON
  info <file>         print the value tree of a file
  validate <file>     check that a file is one well-formed document
  encode <json>       encode a JSON argument as canonical bencode
  verify <file>       compare the decoded tree with the reference codec`)
}

// options holds the flags shared by the subcommands.
type options struct {
	lenient  bool
	maxDepth int
	maxSize  int64
	verbose  bool
}

func parseFlags(name string, args []string) (options, string, error) {
	var opts options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.lenient, "lenient", false, "accept dicts with unsorted keys")
	fs.IntVar(&opts.maxDepth, "max-depth", bencode.DefaultMaxDepth, "maximum container nesting")
	fs.Int64Var(&opts.maxSize, "max-size", app.DefaultMaxSize, "maximum document size in bytes")
	fs.BoolVar(&opts.verbose, "v", false, "verbose diagnostics")
	if err := fs.Parse(args); err != nil {
		return opts, "", fmt.Errorf("%s: %w", name, err)
	}
	if fs.NArg() != 1 {
		return opts, "", fmt.Errorf("%s: expected exactly one argument, got %d", name, fs.NArg())
	}
	return opts, fs.Arg(0), nil
}

func (o options) decodeOptions() bencode.DecodeOptions {
	return bencode.DecodeOptions{MaxDepth: o.maxDepth, Lenient: o.lenient}
}

func (o options) loadOptions() app.LoadOptions {
	lo := app.LoadOptions{MaxSize: o.maxSize, Decode: o.decodeOptions()}
	if o.verbose {
		lo.Logger = logger
	}
	return lo
}

func cmdDecode(w io.Writer, args []string) error {
	opts, arg, err := parseFlags("decode", args)
	if err != nil {
		return err
	}

	decoded, n, err := bencode.DecodeWithOptions([]byte(arg), opts.decodeOptions())
	if err != nil {
		return fmt.Errorf("failed to decode bencoded value: %w", err)
	}
	if opts.verbose {
		logger.Printf("consumed %d of %d bytes", n, len(arg))
	}

	jsonOutput, err := app.MarshalJSON(decoded)
	if err != nil {
		return fmt.Errorf("failed to marshal decoded value: %w", err)
	}
	fmt.Fprintln(w, string(jsonOutput))
	return nil
}

func cmdInfo(w io.Writer, args []string) error {
	opts, path, err := parseFlags("info", args)
	if err != nil {
		return err
	}

	v, err := app.LoadFile(path, opts.loadOptions())
	if err != nil {
		return err
	}
	return app.Fprint(w, v)
}

func cmdValidate(w io.Writer, args []string) error {
	opts, path, err := parseFlags("validate", args)
	if err != nil {
		return err
	}

	data, err := app.ReadFile(path, opts.loadOptions())
	if err != nil {
		return err
	}
	if err := bencode.ValidateWithOptions(data, opts.decodeOptions()); err != nil {
		var de *bencode.DecodeError
		if errors.As(err, &de) {
			fmt.Fprintf(w, "invalid: %s at offset %d\n", de.Kind.String(), de.Offset)
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintln(w, "ok")
	return nil
}

func cmdEncode(w io.Writer, args []string) error {
	_, arg, err := parseFlags("encode", args)
	if err != nil {
		return err
	}

	v, err := app.ValueFromJSON([]byte(arg))
	if err != nil {
		return fmt.Errorf("failed to read JSON value: %w", err)
	}
	if err := bencode.NewEncoder(w).Encode(v); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func cmdVerify(w io.Writer, args []string) error {
	opts, path, err := parseFlags("verify", args)
	if err != nil {
		return err
	}

	data, err := app.ReadFile(path, opts.loadOptions())
	if err != nil {
		return err
	}
	result, err := app.Verify(data, opts.decodeOptions())
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !result.Match {
		logger.Printf("ours:      %v", result.Value)
		logger.Printf("reference: %v", result.Reference)
		return fmt.Errorf("%s: decoded trees differ", path)
	}
	fmt.Fprintln(w, "ok")
	return nil
}
