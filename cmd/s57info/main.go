// Command s57info parses an S-57 ENC cell and prints a summary: dataset
// identity, feature counts by object class, geographic bounds, and any
// diagnostics raised along the way. Optional flags narrow the report to a
// bounding box or a set of object-class acronyms.
//
// Usage:
//
//	s57info --chart US5WA50M.000
//	s57info --chart US5WA50M.000 --type SOUNDG,DEPARE
//	s57info --chart US5WA50M.000 --bounds 47.5,-122.5,47.7,-122.2 --json
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/frye/s57enc/internal/diagnostics"
	"github.com/frye/s57enc/pkg/s57"

	"github.com/schollz/progressbar/v3"
)

func main() {
	var (
		chartPath   = flag.StringP("chart", "c", "", "path to an S-57 base cell (.000)")
		boundsStr   = flag.String("bounds", "", "filter to minLat,minLon,maxLat,maxLon")
		typesStr    = flag.String("type", "", "comma-separated object-class acronyms to filter to")
		strict      = flag.Bool("strict", false, "fail on the first error-severity diagnostic")
		maxWarnings = flag.Int("max-warnings", -1, "warning budget enforced only in strict mode")
		forceLinear = flag.Bool("linear", false, "force a linear spatial scan instead of the R-tree")
		jsonOutput  = flag.Bool("json", false, "print the summary as JSON")
		noColor     = flag.Bool("no-color", false, "disable color output")
		quiet       = flag.BoolP("quiet", "q", false, "suppress the progress bar")
	)
	flag.Parse()

	if *chartPath == "" {
		fmt.Fprintln(os.Stderr, "s57info: --chart is required")
		flag.Usage()
		os.Exit(2)
	}

	useColor := !*noColor && isatty.IsTerminal(os.Stdout.Fd())
	color.NoColor = !useColor

	data, err := readChart(*chartPath, *quiet)
	if err != nil {
		fatal(err)
	}

	sess, err := s57.Parse(data, s57.Options{
		Strict:      *strict,
		MaxWarnings: *maxWarnings,
		ForceLinear: *forceLinear,
		Path:        *chartPath,
	})
	if err != nil {
		fatal(err)
	}

	features := sess.Features.All()
	if *typesStr != "" {
		features = filterByTypes(features, strings.Split(*typesStr, ","))
	}
	if *boundsStr != "" {
		b, err := parseBounds(*boundsStr)
		if err != nil {
			fatal(err)
		}
		features = filterByBounds(features, b)
	}

	if *jsonOutput {
		printJSON(sess, features)
		return
	}
	printSummary(sess, features, useColor)
}

func readChart(path string, quiet bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if quiet || !isatty.IsTerminal(os.Stderr.Fd()) {
		return io.ReadAll(f)
	}

	bar := progressbar.DefaultBytes(info.Size(), "reading "+path)
	buf := make([]byte, 0, info.Size())
	w := &bufWriter{buf: &buf, bar: bar}
	if _, err := io.Copy(w, f); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	_ = bar.Finish()
	return buf, nil
}

type bufWriter struct {
	buf *[]byte
	bar *progressbar.ProgressBar
}

func (w *bufWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	_ = w.bar.Add(len(p))
	return len(p), nil
}

func filterByTypes(features []s57.Feature, acronyms []string) []s57.Feature {
	want := map[string]bool{}
	for _, a := range acronyms {
		want[strings.ToUpper(strings.TrimSpace(a))] = true
	}
	var out []s57.Feature
	for _, f := range features {
		if want[f.ObjectClass.Acronym] {
			out = append(out, f)
		}
	}
	return out
}

func parseBounds(s string) (s57.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return s57.Bounds{}, fmt.Errorf("--bounds needs 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return s57.Bounds{}, fmt.Errorf("--bounds: %w", err)
		}
		vals[i] = v
	}
	return s57.Bounds{MinLat: vals[0], MinLon: vals[1], MaxLat: vals[2], MaxLon: vals[3]}, nil
}

func filterByBounds(features []s57.Feature, b s57.Bounds) []s57.Feature {
	var out []s57.Feature
	for _, f := range features {
		for _, c := range f.Geometry.Coordinates() {
			if b.Contains(c) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func printSummary(sess *s57.Session, features []s57.Feature, useColor bool) {
	heading := color.New(color.FgCyan, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()
	errc := color.New(color.FgRed).SprintFunc()

	fmt.Printf("%s\n", heading("=== Dataset ==="))
	fmt.Printf("Cell:     %s\n", sess.Identity.CellName)
	fmt.Printf("Edition:  %s\n", sess.Identity.Edition)
	fmt.Printf("Session:  %s\n", sess.Collector.SessionID())
	fmt.Printf("Features: %d\n\n", len(features))

	if b, ok := sess.Index.CalculateBounds(); ok {
		fmt.Printf("%s\n", heading("=== Bounds ==="))
		fmt.Printf("Latitude:  %.6f to %.6f\n", b.MinLat, b.MaxLat)
		fmt.Printf("Longitude: %.6f to %.6f\n\n", b.MinLon, b.MaxLon)
	}

	counts := map[string]int{}
	for _, f := range features {
		counts[f.ObjectClass.Acronym]++
	}
	acronyms := make([]string, 0, len(counts))
	for a := range counts {
		acronyms = append(acronyms, a)
	}
	sort.Strings(acronyms)

	fmt.Printf("%s\n", heading("=== Feature Types ==="))
	for _, a := range acronyms {
		fmt.Printf("%-10s %d\n", a, counts[a])
	}

	total := sess.Collector.Total()
	if total == 0 {
		return
	}
	fmt.Printf("\n%s\n", heading("=== Diagnostics ==="))
	for _, w := range sess.Collector.Warnings() {
		switch w.Severity {
		case diagnostics.Error:
			fmt.Println(errc(w.String()))
		case diagnostics.Warn:
			fmt.Println(warn(w.String()))
		default:
			fmt.Println(w.String())
		}
	}
	fmt.Printf("%d info, %d warnings, %d errors\n",
		sess.Collector.Count(diagnostics.Info),
		sess.Collector.Count(diagnostics.Warn),
		sess.Collector.Count(diagnostics.Error))
}

type jsonSummary struct {
	CellName     string         `json:"cell_name"`
	Edition      string         `json:"edition"`
	SessionID    string         `json:"session_id"`
	FeatureCount int            `json:"feature_count"`
	TypeCounts   map[string]int `json:"type_counts"`
	Warnings     int            `json:"warning_count"`
	Errors       int            `json:"error_count"`
}

func printJSON(sess *s57.Session, features []s57.Feature) {
	counts := map[string]int{}
	for _, f := range features {
		counts[f.ObjectClass.Acronym]++
	}
	out := jsonSummary{
		CellName:     sess.Identity.CellName,
		Edition:      sess.Identity.Edition,
		SessionID:    sess.Collector.SessionID().String(),
		FeatureCount: len(features),
		TypeCounts:   counts,
		Warnings:     sess.Collector.Count(diagnostics.Warn),
		Errors:       sess.Collector.Count(diagnostics.Error),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "s57info: %v\n", err)
	os.Exit(1)
}
