package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/reoring/reflectable/codec"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "convert":
		convertCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "reflectable CLI\n\nUsage:\n  reflectable convert [-to json|yaml|cbor] [-o out] input\n\nNotes:\n  - Converts a tree document between the registered codecs.\n  - The input codec comes from the input extension; the output codec from -to, or from the -o extension.")
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var out string
	var to string
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	fs.StringVar(&to, "to", "", "output codec name; defaults to the -o extension")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	in := fs.Arg(0)

	src, err := codec.ForPath(in)
	if err != nil {
		fatalf("input: %v", err)
	}
	data, err := os.ReadFile(in)
	if err != nil {
		fatalf("reading input: %v", err)
	}
	tree, err := src.Decode(data)
	if err != nil {
		fatalf("decoding %s: %v", in, err)
	}

	var dst codec.Codec
	switch {
	case to != "":
		dst, err = codec.ByName(to)
	case out != "":
		dst, err = codec.ForPath(out)
	default:
		fatalf("need -to or -o to pick the output codec")
	}
	if err != nil {
		fatalf("output: %v", err)
	}

	enc, err := dst.Encode(tree)
	if err != nil {
		fatalf("encoding: %v", err)
	}
	if out == "" {
		if _, err := os.Stdout.Write(enc); err != nil {
			fatalf("writing stdout: %v", err)
		}
		return
	}
	if err := os.WriteFile(out, enc, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
