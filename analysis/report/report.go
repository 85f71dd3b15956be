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

// Package report renders the results of a scan. The console format prints tables for a terminal, the other formats
// (JSON, Markdown, SARIF) are written to report files.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
)

// Export writes the results in the given format to w
func Export(w io.Writer, format config.OutputFormat, cfg *config.Config, info *gitinfo.DirectoryInfo,
	results *leaks.Results) error {
	switch format {
	case config.ConsoleFormat, "":
		return WriteConsole(w, cfg, info, results)
	case config.JSONFormat:
		return WriteJSON(w, cfg, info, results)
	case config.MarkdownFormat:
		return WriteMarkdown(w, cfg, info, results)
	case config.SarifFormat:
		return WriteSarif(w, cfg, info, results)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// DefaultFilename returns the name of a report generated at time now, e.g. piiscan-2024-05-01-13-04-59.json
func DefaultFilename(format config.OutputFormat, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", config.DefaultReportPrefix, now.Format("2006-01-02-15-04-05"), format.Ext())
}

// Filename returns the path of the report file of the config: the output filename if set, a timestamped name
// otherwise, in the reports directory when the path is relative.
func Filename(cfg *config.Config, now time.Time) string {
	name := cfg.OutputFilename
	if name == "" {
		name = DefaultFilename(cfg.OutputFormat, now)
	}
	if !filepath.IsAbs(name) && cfg.ReportsDir != "" {
		name = filepath.Join(cfg.ReportsDir, name)
	}
	return name
}

// WriteFile writes the report of the results to the file returned by Filename and returns its path
func WriteFile(cfg *config.Config, info *gitinfo.DirectoryInfo, results *leaks.Results, now time.Time) (string, error) {
	filename := Filename(cfg, now)
	f, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := Export(w, cfg.OutputFormat, cfg, info, results); err != nil {
		return "", fmt.Errorf("error while writing report: %w", err)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("error while writing in file: %w", err)
	}
	return filename, nil
}

// A datamapEntry is a data element found in the scanned code with its occurrences
type datamapEntry struct {
	ID          string
	Name        string
	Description string
	Sensitivity config.Severity
	Tags        []string
	Source      string
	Occurrences []leaks.Occurrence
}

// datamap returns the data elements of the results, most sensitive first
func datamap(cfg *config.Config, results *leaks.Results) []datamapEntry {
	byElement := results.OccurrencesByElement()
	var entries []datamapEntry
	for _, id := range results.DataElementIDs() {
		occs := byElement[id]
		e := datamapEntry{
			ID:          id,
			Name:        occs[0].DataElementName,
			Sensitivity: occs[0].Sensitivity,
			Tags:        occs[0].Tags,
			Source:      occs[0].Source,
			Occurrences: occs,
		}
		if d := cfg.FindDataElement(id); d != nil {
			e.Name = d.Name
			e.Description = d.Description
			e.Sensitivity = d.Sensitivity
			e.Tags = d.Tags
			e.Source = d.Source
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].Sensitivity.Rank(), entries[j].Sensitivity.Rank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// severityCounts returns the number of vulnerabilities per severity
func severityCounts(results *leaks.Results) map[config.Severity]int {
	counts := map[config.Severity]int{}
	for _, v := range results.Vulnerabilities {
		counts[v.Severity]++
	}
	return counts
}
