// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"ipsift/internal/classify"
	"ipsift/internal/formatters"
	"ipsift/internal/headers"
	"ipsift/internal/preprocessors"
)

// Topics lists the names accepted by ShowTopic.
var Topics = []string{"regions", "headers", "formats", "inputs"}

// System renders help screens
type System struct {
	out     io.Writer
	noColor bool
	regions []classify.Region
	rules   headers.RuleTable
	colors  map[string]*color.Color
}

// NewSystem creates a help system writing to out. regions and rules are the
// effective configuration, shown by the topic screens.
func NewSystem(out io.Writer, noColor bool, regions []classify.Region, rules headers.RuleTable) *System {
	if rules == nil {
		rules = headers.DefaultRules()
	}
	return &System{
		out:     out,
		noColor: noColor,
		regions: regions,
		rules:   rules,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"negative": color.New(color.FgRed),
			"example":  color.New(color.FgMagenta),
		},
	}
}

func (h *System) println(name string, a ...any) {
	if h.noColor {
		fmt.Fprintln(h.out, a...)
		return
	}
	h.colors[name].Fprintln(h.out, a...)
}

func (h *System) printf(name, format string, a ...any) {
	if h.noColor {
		fmt.Fprintf(h.out, format, a...)
		return
	}
	h.colors[name].Fprintf(h.out, format, a...)
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.println("title", "ipsift - extract port-443 IPv4 addresses from loosely structured files")
	fmt.Fprintln(h.out, "=======================================================================")
	fmt.Fprintln(h.out)
	h.println("header", "USAGE:")
	fmt.Fprintln(h.out, "  ipsift [options] <file|directory|glob>...")
	fmt.Fprintln(h.out)

	h.println("header", "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  -port\t<port>\tTarget port records must carry (default: 443)")
	fmt.Fprintln(w, "  -output\t<path>\tFile receiving every address (default: ip.txt)")
	fmt.Fprintln(w, "  -output-dir\t<path>\tDirectory for the output files (default: current directory)")
	fmt.Fprintln(w, "  -region\t<tags>\tRegion buckets to write, comma separated or repeated (default: all)")
	fmt.Fprintln(w, "  -workers\t<n>\tFiles loaded concurrently (default: 1)")
	fmt.Fprintln(w, "  -no-fallback\t\tDisable the free-text line scanner")
	fmt.Fprintln(w, "  -skip-empty\t\tDo not write output files that would be empty")
	fmt.Fprintf(w, "  -format\t<format>\tRun report format: %s (default: text)\n", strings.Join(formatters.List(), ", "))
	fmt.Fprintln(w, "  -verbose\t\tList every address in the run report")
	fmt.Fprintln(w, "  -no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  -quiet\t\tSuppress the run report")
	fmt.Fprintln(w, "  -debug\t\tEnable debug logging")
	fmt.Fprintln(w, "  -version\t\tShow version information")
	fmt.Fprintln(w, "  -help\t\tShow this help message")
	fmt.Fprintf(w, "  -help <topic>\t\tShow help for a topic: %s\n", strings.Join(Topics, ", "))
	w.Flush()

	fmt.Fprintln(h.out)
	h.println("header", "EXAMPLES:")
	h.println("example", "  ipsift downloads/")
	h.println("example", "  ipsift -region HK -output-dir out 'downloads/*.csv'")
	h.println("example", "  ipsift -port 8443 -format json hk-nodes.xlsx sg_nodes.csv")

	fmt.Fprintln(h.out)
	h.println("header", "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: ipsift.yaml or .ipsift.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config:    $XDG_CONFIG_HOME/ipsift/config.yaml")
	fmt.Fprintln(h.out, "  Environment:    IPSIFT_CONFIG_DIR, IPSIFT_TARGET_PORT, IPSIFT_OUTPUT, IPSIFT_OUTPUT_DIR,")
	fmt.Fprintln(h.out, "                  IPSIFT_WORKERS, IPSIFT_LOG_LEVEL, IPSIFT_LOG_FORMAT (a .env file is read too)")
	fmt.Fprintln(h.out)
	h.println("header", "EXIT CODES:")
	fmt.Fprintln(h.out, "  0 success, 1 usage or configuration error, 2 an output file could not be written")
}

// ShowTopic displays help for one topic and reports whether it exists.
func (h *System) ShowTopic(topic string) bool {
	switch strings.ToLower(strings.TrimSpace(topic)) {
	case "regions":
		h.ShowRegionsHelp()
	case "headers":
		h.ShowHeadersHelp()
	case "formats":
		h.ShowFormatsHelp()
	case "inputs":
		h.ShowInputsHelp()
	default:
		h.printf("negative", "Error: help topic '%s' not found.\n", topic)
		fmt.Fprintf(h.out, "Available topics: %s\n", strings.Join(Topics, ", "))
		return false
	}
	return true
}

// ShowRegionsHelp lists the configured regions
func (h *System) ShowRegionsHelp() {
	h.println("title", "Regions")
	fmt.Fprintln(h.out, "=======")
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Files whose name matches a region pattern go to that region whole.")
	fmt.Fprintln(h.out, "Rows of other files join a region when their region column, or the")
	fmt.Fprintln(h.out, "whole line if there is none, contains one of the region's tokens.")
	fmt.Fprintln(h.out)

	if len(h.regions) == 0 {
		fmt.Fprintln(h.out, "No regions configured.")
		return
	}
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TAG\tFILE PATTERNS\tTOKENS")
	fmt.Fprintln(w, "  ---\t-------------\t------")
	for _, r := range h.regions {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Tag, strings.Join(r.FilePatterns, " "), strings.Join(r.Tokens, ", "))
	}
	w.Flush()
}

// ShowHeadersHelp lists the header synonyms per role
func (h *System) ShowHeadersHelp() {
	h.println("title", "Header roles")
	fmt.Fprintln(h.out, "============")
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "Header cells are trimmed, NFKC-normalised and lower-cased. Exact names")
	fmt.Fprintln(h.out, "win over substrings; the leftmost matching column wins.")
	fmt.Fprintln(h.out)

	for _, role := range headers.Roles {
		rule, ok := h.rules[role]
		if !ok {
			continue
		}
		h.printf("emphasis", "%s\n", strings.ToUpper(string(role)))
		fmt.Fprint(h.out, "  exact:     ")
		h.printf("item", "%s\n", strings.Join(rule.Exact, ", "))
		fmt.Fprint(h.out, "  contains:  ")
		h.printf("item", "%s\n", strings.Join(rule.Substrings, ", "))
		fmt.Fprintf(h.out, "  otherwise: %s\n", defaultName(rule.Default))
	}
}

func defaultName(d headers.DefaultPosition) string {
	switch d {
	case headers.DefaultFirst:
		return "first column"
	case headers.DefaultLast:
		return "last column"
	default:
		return "unresolved"
	}
}

// ShowFormatsHelp lists the run report formats
func (h *System) ShowFormatsHelp() {
	h.println("title", "Run report formats")
	fmt.Fprintln(h.out, "==================")
	fmt.Fprintln(h.out)

	names := formatters.List()
	sort.Strings(names)
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	for _, name := range names {
		f, _ := formatters.Get(name)
		fmt.Fprintf(w, "  %s\t%s\n", name, f.Description())
	}
	w.Flush()
}

// ShowInputsHelp lists the file extensions with a dedicated reader
func (h *System) ShowInputsHelp() {
	h.println("title", "Input files")
	fmt.Fprintln(h.out, "===========")
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "A directory contributes its direct children and a glob its matches.")
	fmt.Fprintln(h.out, "Files are read by extension; unlisted extensions are read as")
	fmt.Fprintln(h.out, "delimited text.")
	fmt.Fprintln(h.out)

	for _, ext := range preprocessors.NewDefaultManager(nil).SupportedExtensions() {
		if ext == "" {
			ext = "(no extension)"
		}
		h.printf("item", "  %s\n", ext)
	}
}
