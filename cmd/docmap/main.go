package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/i18n"
	"github.com/reoring/docmap/mapfile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "lint":
		return lintCmd(args[1:], stdout, stderr)
	case "json":
		return jsonCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "docmap CLI\n\nUsage:\n  docmap lint -f mapping.yaml [-lang en|ja] [-dump] [-v]\n  docmap json -f mapping.yaml [-o out.json]\n\nNotes:\n  - lint checks a mapping file without loading the Go types it names.")
}

func lintCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file, lang string
	var dump, verbose bool
	fs.StringVar(&file, "f", "", "mapping file (YAML)")
	fs.StringVar(&lang, "lang", "en", "message language (en/ja)")
	fs.BoolVar(&dump, "dump", false, "dump the parsed file")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil || file == "" {
		fs.Usage()
		return 2
	}
	logf := func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}
	i18n.SetLanguage(lang)

	f, err := mapfile.LoadFile(file)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logf("lint: file=%s version=%s entities=%d", file, f.Version, len(f.Entities))
	if dump {
		spew.Fdump(stdout, f)
	}
	if err := mapfile.Lint(f); err != nil {
		if iss, ok := docmap.AsIssues(err); ok {
			for _, it := range iss {
				fmt.Fprintf(stdout, "%s: %s [%s] %s\n", it.Path, it.Message, it.Code, it.Hint)
			}
			return 1
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "ok")
	return 0
}

func jsonCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file, out string
	fs.StringVar(&file, "f", "", "mapping file (YAML)")
	fs.StringVar(&out, "o", "", "output filename (default stdout)")
	if err := fs.Parse(args); err != nil || file == "" {
		fs.Usage()
		return 2
	}
	f, err := mapfile.LoadFile(file)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "error: encoding: %v\n", err)
		return 1
	}
	b = append(b, '\n')
	if out == "" {
		_, _ = stdout.Write(b)
		return 0
	}
	if err := os.WriteFile(out, b, 0o644); err != nil {
		fmt.Fprintf(stderr, "error: writing output: %v\n", err)
		return 1
	}
	return 0
}
