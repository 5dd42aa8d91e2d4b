// htmlexport exports HTML pages as paginated PDF, plain text or Markdown,
// and lays JSON rows out as PDF grids.
//
// Usage:
//
//	htmlexport pdf [options] <input>
//	htmlexport text [options] <input>
//	htmlexport markdown [options] <input>
//	htmlexport table [options] <rows.json>
//	htmlexport info [--text] <file.pdf>
//	htmlexport serve [options]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	htmlexport "github.com/porticus-lab/go-html-export"
	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
	"github.com/porticus-lab/go-html-export/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "pdf", "text", "markdown":
		err = runExport(os.Args[1], os.Args[2:])
	case "table":
		err = runTable(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`htmlexport - export HTML content to PDF, text and Markdown

Usage:
  htmlexport pdf [options] <input>
  htmlexport text [options] <input>
  htmlexport markdown [options] <input>
  htmlexport table [options] <rows.json>
  htmlexport info [--text] <file.pdf>
  htmlexport serve [options]

Commands:
  pdf        Capture the selected element and paginate it into a PDF
  text       Reconstruct the selected element as plain text
  markdown   Convert the selected element to Markdown
  table      Lay out {"columns": [...], "rows": [...]} as a PDF grid
  info       Display the page count and metadata of a PDF, and with
             --text the strings drawn on each page
  serve      Serve the exports over HTTP

<input> is an http(s) URL, an .md file or an HTML file.

Options:
  -o <dir>        Output directory, or "-" for stdout (default: .)
  -s <selector>   CSS selector of the exported element (default: body)
  -c <file>       Load export options from a YAML file
  -t <title>      Document title
  -n <name>       Output file name without extension (default: export)
  -a <addr>       Listen address for serve (default: :8080)
  --no-sandbox    Disable the Chrome sandbox (required as root)
  --download      Download Chromium if none is installed
  -v              Verbose logging

Examples:
  htmlexport pdf -s '#report' -t 'Q3 report' https://example.com/q3
  htmlexport text -o - notes.html
  htmlexport table -c options.yaml -n people people.json
  htmlexport serve -a :9000 --no-sandbox
`)
}

type cliOptions struct {
	outDir     string
	selector   string
	configFile string
	title      string
	filename   string
	addr       string
	noSandbox  bool
	download   bool
	verbose    bool
	args       []string
}

func parseArgs(args []string) (cliOptions, error) {
	o := cliOptions{outDir: ".", addr: ":8080"}
	value := func(i *int, name string) (string, error) {
		*i++
		if *i >= len(args) {
			return "", fmt.Errorf("%s requires an argument", name)
		}
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "-o":
			o.outDir, err = value(&i, "-o")
		case "-s":
			o.selector, err = value(&i, "-s")
		case "-c":
			o.configFile, err = value(&i, "-c")
		case "-t":
			o.title, err = value(&i, "-t")
		case "-n":
			o.filename, err = value(&i, "-n")
		case "-a":
			o.addr, err = value(&i, "-a")
		case "--no-sandbox":
			o.noSandbox = true
		case "--download":
			o.download = true
		case "-v":
			o.verbose = true
		default:
			if strings.HasPrefix(args[i], "-") && args[i] != "-" {
				return o, fmt.Errorf("unknown option: %s", args[i])
			}
			o.args = append(o.args, args[i])
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

func (o cliOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o cliOptions) exporterOptions(logger *slog.Logger) []htmlexport.Option {
	opts := []htmlexport.Option{htmlexport.WithLogger(logger)}
	if o.noSandbox {
		opts = append(opts, htmlexport.WithNoSandbox())
	}
	if o.download {
		opts = append(opts, htmlexport.WithAutoDownload())
	}
	return opts
}

// exportOptions loads the YAML options, if any, and applies the flags
// over them.
func (o cliOptions) exportOptions() (*htmlexport.ExportOptions, error) {
	opts := &htmlexport.ExportOptions{}
	if o.configFile != "" {
		var err error
		if opts, err = htmlexport.LoadExportOptions(o.configFile); err != nil {
			return nil, err
		}
	}
	if o.title != "" {
		opts.Title = o.title
	}
	if o.filename != "" {
		opts.Filename = o.filename
	}
	return opts, nil
}

// source guesses the kind of input from its name.
func source(input, selector string) (htmlexport.Source, error) {
	var src htmlexport.Source
	switch {
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		src = htmlexport.URL(input)
	case strings.EqualFold(filepath.Ext(input), ".md"):
		data, err := os.ReadFile(input)
		if err != nil {
			return src, err
		}
		src = htmlexport.Markdown(string(data))
	default:
		src = htmlexport.File(input)
	}
	return src.Select(selector), nil
}

// emit writes res to stdout or saves it into the output directory.
func emit(res *htmlexport.Result, outDir string) error {
	if outDir == "-" {
		_, err := res.WriteTo(os.Stdout)
		return err
	}
	path, err := res.Save(outDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "wrote", path)
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runExport implements the "pdf", "text" and "markdown" commands.
func runExport(kind string, args []string) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(o.args) != 1 {
		return fmt.Errorf("expected one input, got %d", len(o.args))
	}
	opts, err := o.exportOptions()
	if err != nil {
		return err
	}
	src, err := source(o.args[0], o.selector)
	if err != nil {
		return err
	}

	e, err := htmlexport.NewExporter(o.exporterOptions(o.logger())...)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var res *htmlexport.Result
	switch kind {
	case "pdf":
		res, err = e.ExportPDF(ctx, src, opts)
	case "text":
		res, err = e.ExportText(ctx, src, opts)
	default:
		res, err = e.ExportMarkdown(ctx, src, opts)
	}
	if err != nil {
		return err
	}
	return emit(res, o.outDir)
}

// tableFile is the input of the "table" command.
type tableFile struct {
	Columns []htmlexport.Column `json:"columns"`
	Rows    []htmlexport.Row    `json:"rows"`
}

// runTable implements the "table" command.
func runTable(args []string) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(o.args) != 1 {
		return fmt.Errorf("expected one rows file, got %d", len(o.args))
	}
	opts, err := o.exportOptions()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(o.args[0])
	if err != nil {
		return err
	}
	var in tableFile
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parsing %s: %w", o.args[0], err)
	}

	slog.SetDefault(o.logger())
	res, err := htmlexport.ExportTable(in.Rows, in.Columns, opts)
	if err != nil {
		return err
	}
	return emit(res, o.outDir)
}

// runInfo implements the "info" command.
func runInfo(args []string) error {
	var inputFile string
	var showText bool
	for _, a := range args {
		switch {
		case a == "--text":
			showText = true
		case strings.HasPrefix(a, "-"):
			return fmt.Errorf("unknown option: %s", a)
		default:
			inputFile = a
		}
	}
	if inputFile == "" {
		return fmt.Errorf("no input file specified")
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := pdfdoc.Inspect(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}

	fmt.Printf("File:    %s\n", inputFile)
	fmt.Printf("Pages:   %d\n", info.Pages)
	if info.Title != "" {
		fmt.Printf("Title:   %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("Author:  %s\n", info.Author)
	}
	if info.Subject != "" {
		fmt.Printf("Subject: %s\n", info.Subject)
	}
	if info.Creator != "" {
		fmt.Printf("Creator: %s\n", info.Creator)
	}
	if !showText {
		return nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	pages, err := pdfdoc.PageText(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}
	for i, text := range pages {
		fmt.Printf("\n--- Page %d ---\n%s\n", i+1, text)
	}
	return nil
}

// runServe implements the "serve" command.
func runServe(args []string) error {
	o, err := parseArgs(args)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts, err := o.exportOptions()
	if err != nil {
		return err
	}
	e, err := htmlexport.NewExporter(o.exporterOptions(logger)...)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return server.Run(ctx, o.addr, server.New(e, logger, opts), logger)
}
