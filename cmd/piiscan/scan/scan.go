// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/analysis/report"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
	"github.com/awslabs/ar-go-pii/internal/funcutil"
	"github.com/awslabs/ar-go-pii/internal/telemetry"
	"golang.org/x/term"
)

const usage = ` Scan a directory for sensitive data leaks.
Usage:
  piiscan scan [options] [directory]
Examples:
  % piiscan scan -output-format markdown -preview .
  % piiscan scan -config piiscan.yaml -fail-severity-threshold critical src
`

// ErrThresholdExceeded is returned when a vulnerability is at or above the fail severity threshold
var ErrThresholdExceeded = errors.New("vulnerabilities at or above the severity threshold found")

// Flags represents the parsed flags for the scan.
type Flags struct {
	tools.CommonFlags
	outputFormat          string
	outputFilename        string
	failSeverityThreshold string
	includeSeverity       tools.StringList
	skipDataElements      tools.StringList
	skipDataSinks         tools.StringList
	skipVulnerabilities   tools.StringList
	skipOccurrences       tools.StringList
	exclude               tools.StringList
	database              string
	preview               bool
	noColor               bool
}

// NewFlags returns the parsed flags for the scan with args.
func NewFlags(args []string) (Flags, error) {
	var f Flags
	flags := tools.NewUnparsedCommonFlags("scan")
	fs := flags.FlagSet
	fs.StringVar(&f.outputFormat, "output-format", "", "report format: console, json, markdown or sarif")
	fs.StringVar(&f.outputFilename, "output-filename", "", "report file name, timestamped if not set")
	fs.StringVar(&f.failSeverityThreshold, "fail-severity-threshold", "",
		"exit with status 1 if a vulnerability is at or above this severity")
	fs.Var(&f.includeSeverity, "include-severity", "only report vulnerabilities of these severities")
	fs.Var(&f.skipDataElements, "skip-data-element", "data element ids not to look for")
	fs.Var(&f.skipDataSinks, "skip-data-sink", "data sink ids not to look for")
	fs.Var(&f.skipVulnerabilities, "skip-vulnerability", "hashes of vulnerabilities not to report")
	fs.Var(&f.skipOccurrences, "skip-occurrence", "hashes of data element occurrences not to report")
	fs.Var(&f.exclude, "exclude", "glob patterns of paths not to scan")
	fs.StringVar(&f.database, "database", "", "path of the scan database, temporary if not set")
	fs.BoolVar(&f.preview, "preview", false, "print markdown reports in the terminal")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colors")
	tools.SetUsage(fs, usage)
	if err := fs.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command scan with args %v: %v", args, err)
	}
	f.CommonFlags = flags.Parsed()
	return f, nil
}

// apply overrides the options of the config file with the command line
func (f Flags) apply(o *config.Options) {
	if f.Verbose {
		o.LogLevel = int(config.DebugLevel)
	}
	if f.outputFormat != "" {
		o.OutputFormat = config.OutputFormat(f.outputFormat)
	}
	if f.outputFilename != "" {
		o.OutputFilename = f.outputFilename
	}
	if f.failSeverityThreshold != "" {
		o.FailSeverityThreshold = config.Severity(f.failSeverityThreshold)
	}
	if len(f.includeSeverity) > 0 {
		o.IncludeSeverity = funcutil.Map(f.includeSeverity, func(s string) config.Severity { return config.Severity(s) })
	}
	if f.database != "" {
		o.Database = f.database
	}
	o.SkipDataElements = append(o.SkipDataElements, f.skipDataElements...)
	o.SkipDataSinks = append(o.SkipDataSinks, f.skipDataSinks...)
	o.SkipVulnerabilities = append(o.SkipVulnerabilities, f.skipVulnerabilities...)
	o.SkipOccurrences = append(o.SkipOccurrences, f.skipOccurrences...)
	o.ExcludePaths = append(o.ExcludePaths, f.exclude...)
}

// Run runs the scan with flags. It returns ErrThresholdExceeded when the results exceed the fail severity threshold.
func Run(ctx context.Context, flags Flags) error {
	dir, err := flags.Dir()
	if err != nil {
		return err
	}
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Update(flags.apply); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if flags.noColor {
		formatutil.SetColors(false)
	}

	env := config.LoadEnv()
	capturer, flush := tools.NewCapturer(env)
	defer flush()

	logger := config.NewLogGroup(cfg)
	logger.Infof(formatutil.Faint("piiscan - " + config.Version))
	scanner, err := leaks.NewScanner(ctx, cfg, dir)
	if err != nil {
		return err
	}
	results, err := scanner.Run(ctx)
	for _, e := range scanner.Errors {
		reportError(capturer, e)
	}
	if err != nil {
		var scanErr *leaks.ScanError
		if errors.As(err, &scanErr) {
			reportError(capturer, scanErr)
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if cfg.OutputFormat == config.ConsoleFormat {
		if err := report.Export(os.Stdout, cfg.OutputFormat, cfg, scanner.Dir, results); err != nil {
			return err
		}
	} else {
		filename, err := report.WriteFile(cfg, scanner.Dir, results, time.Now())
		if err != nil {
			return err
		}
		logger.Infof("Report written to %s", formatutil.Bold(filename))
		if flags.preview && cfg.OutputFormat == config.MarkdownFormat {
			if err := preview(filename); err != nil {
				return err
			}
		}
	}

	if results.Exceeds(cfg.FailSeverityThreshold) {
		return fmt.Errorf("%w (%s)", ErrThresholdExceeded, cfg.FailSeverityThreshold)
	}
	return nil
}

func reportError(c telemetry.Capturer, err *leaks.ScanError) {
	if err.Report {
		c.Capture(err, "scan_error", map[string]any{"path": err.Path, "version": config.Version})
	}
}

func preview(filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read report: %w", err)
	}
	width := 100
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	out, err := report.Preview(string(b), width)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
