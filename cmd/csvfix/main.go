package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/beasiswa-status-api/internal/csvimport"
)

// errRowsSkipped reports that the output is missing rows the input had.
var errRowsSkipped = errors.New("rows skipped")

// csvfix rewrites a spreadsheet export into the layout the importer expects so it can be
// reviewed before upload. Blank and "-" numeric cells stay placeholders; the server applies
// its default policy when the file is imported.
func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errRowsSkipped):
		os.Exit(2)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	default:
		fmt.Fprintln(os.Stderr, "csvfix:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		inPath  string
		outPath string
		quiet   bool
	)

	fs := flag.NewFlagSet("csvfix", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&inPath, "in", "", "Input CSV (default stdin)")
	fs.StringVar(&outPath, "out", "", "Output CSV (default stdout)")
	fs.BoolVar(&quiet, "quiet", false, "Do not print warnings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in, closeIn, err := openInput(inPath, stdin)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer closeIn()

	out, closeOut, err := openOutput(outPath, stdout)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	summary, err := csvimport.Normalize(in, out, csvimport.NewPolicy(csvimport.PolicyZero, nil, nil), validator.New())
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("normalize: %w", err)
	}

	if !quiet {
		for _, w := range summary.Warnings {
			fmt.Fprintln(stderr, "warning:", w)
		}
	}
	for _, e := range summary.Errors {
		fmt.Fprintln(stderr, "skipped:", e)
	}
	fmt.Fprintf(stderr, "%d row(s) written, %d skipped, %d warning(s)\n",
		summary.Written, len(summary.Errors), len(summary.Warnings))

	if len(summary.Errors) > 0 {
		return errRowsSkipped
	}
	return nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
