// s14e - serialized value CLI tool
//
// Usage:
//
//	s14e encode [--compress] [file]   Convert JSON to the serialized form
//	s14e decode [--indent] [file]     Convert a serialized value to JSON
//	s14e inspect [file]               Print format information
//	s14e version                      Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gorhill/uBO-Scope/pkg/s14e"
)

const toolVersion = "1.0.0"

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "s14e: "+format+"\n", args...)
	os.Exit(1)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  s14e encode [--compress] [file]   Convert JSON to the serialized form
  s14e decode [--indent] [file]     Convert a serialized value to JSON
  s14e inspect [file]               Print format information
  s14e version                      Print version info`)
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	cmd := args[0]

	compress := false
	indent := false
	fileArg := ""
	for _, arg := range args[1:] {
		switch {
		case arg == "--compress":
			compress = true
		case arg == "--indent":
			indent = true
		case strings.HasPrefix(arg, "-") && arg != "-":
			return fmt.Errorf("%s: unknown flag %s", cmd, arg)
		default:
			fileArg = arg
		}
	}

	input := stdin
	if fileArg != "" && fileArg != "-" {
		f, err := os.Open(fileArg)
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		defer f.Close()
		input = f
	}

	switch cmd {
	case "encode":
		return cmdEncode(input, stdout, compress)
	case "decode":
		return cmdDecode(input, stdout, indent)
	case "inspect":
		return cmdInspect(input, stdout)
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "s14e %s (format %d)\n", toolVersion, s14e.Version)
		return nil
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	}
	return fmt.Errorf("%w: unknown command %s", errUsage, cmd)
}

func cmdEncode(r io.Reader, w io.Writer, compress bool) error {
	v, err := readJSON(r)
	if err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	var opts []s14e.Option
	if compress {
		opts = append(opts, s14e.WithCompress())
	}
	s, err := s14e.Serialize(v, opts...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}

func readSerialized(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func cmdDecode(r io.Reader, w io.Writer, indent bool) error {
	s, err := readSerialized(r)
	if err != nil {
		return err
	}
	v, err := s14e.Deserialize(s)
	if err != nil {
		return err
	}
	out, err := writeJSON(v, indent)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func cmdInspect(r io.Reader, w io.Writer) error {
	s, err := readSerialized(r)
	if err != nil {
		return err
	}
	if !s14e.IsSerialized(s) {
		return fmt.Errorf("%w: input does not start with a format prefix", s14e.ErrInvalidHeader)
	}
	compressed := s14e.IsCompressed(s)
	plain := s
	var v s14e.Value
	if compressed {
		if v, err = s14e.Deserialize(s); err != nil {
			return err
		}
		if plain, err = s14e.Serialize(v); err != nil {
			return err
		}
	}
	d := s14e.NewDeserializer(plain)
	tag, err := d.RootTag()
	if err != nil {
		return err
	}
	if v, err = d.Deserialize(); err != nil {
		return err
	}

	format := "plain"
	if compressed {
		format = "lz4"
	}
	fmt.Fprintf(w, "format: %s\n", format)
	fmt.Fprintf(w, "size: %d\n", len(s))
	if compressed {
		fmt.Fprintf(w, "plain size: %d\n", len(plain))
	}
	fmt.Fprintf(w, "root tag: %q %s\n", tag, s14e.TagName(tag))
	fmt.Fprintf(w, "root: %s\n", describe(v))
	if !d.Done() {
		fmt.Fprintf(w, "trailing: %d bytes ignored\n", len(plain)-d.Pos())
	}
	return nil
}

func describe(v s14e.Value) string {
	switch v.Kind() {
	case s14e.KindObject:
		return fmt.Sprintf("object (%d keys)", v.AsObject().Len())
	case s14e.KindArray:
		return fmt.Sprintf("Array (%d elements)", v.AsArray().Len())
	case s14e.KindSet:
		return fmt.Sprintf("Set (%d values)", v.AsSet().Len())
	case s14e.KindMap:
		return fmt.Sprintf("Map (%d entries)", v.AsMap().Len())
	case s14e.KindArrayBuffer:
		return fmt.Sprintf("ArrayBuffer (%d bytes)", v.AsArrayBuffer().ByteLength())
	case s14e.KindTypedArray:
		return fmt.Sprintf("%s (%d elements)", v.AsTypedArray().Kind(), v.AsTypedArray().Len())
	}
	return v.Kind().String()
}
