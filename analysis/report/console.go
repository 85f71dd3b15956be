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

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
)

// severityColor returns the color function used for labels of severity s
func severityColor(s config.Severity) func(...interface{}) string {
	switch s {
	case config.Critical:
		return formatutil.Red
	case config.Medium:
		return formatutil.Yellow
	default:
		return formatutil.Cyan
	}
}

// WriteConsole writes a report for a terminal: file statistics, the potential data leaks with their code and the
// sensitive datamap.
func WriteConsole(w io.Writer, cfg *config.Config, info *gitinfo.DirectoryInfo, results *leaks.Results) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s (%s@%s)\n\n", formatutil.Bold("Repository:"), info.RepoName, info.Branch, info.Commit)
	writeFileStats(&b, info)

	fmt.Fprintf(&b, "\n%s\n\n", formatutil.Bold("Potential Data Leaks"))
	if len(results.Vulnerabilities) == 0 {
		fmt.Fprintf(&b, "%s\n", formatutil.Green("No potential data leak found."))
	}
	for i, v := range results.Vulnerabilities {
		writeConsoleVulnerability(&b, i+1, v)
	}

	fmt.Fprintf(&b, "\n%s\n\n", formatutil.Bold("Sensitive Datamap"))
	entries := datamap(cfg, results)
	if len(entries) == 0 {
		fmt.Fprintf(&b, "%s\n", formatutil.Faint("No sensitive data element found."))
	} else {
		t := formatutil.NewTable("Sensitivity", "Data Element", "ID", "Occurrences", "Tags", "Source")
		for _, e := range entries {
			t.Row(severityColor(e.Sensitivity)(e.Sensitivity.Label()), e.Name, e.ID,
				strconv.Itoa(len(e.Occurrences)), strings.Join(e.Tags, ", "), e.Source)
		}
		fmt.Fprintf(&b, "%s\n", t.Render())
	}

	fmt.Fprintf(&b, "\n%s\n", summary(results))
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFileStats(b *strings.Builder, info *gitinfo.DirectoryInfo) {
	t := formatutil.NewTable("Language", "Files", "Lines")
	for _, l := range config.Languages {
		s := info.PerLanguage[l]
		if s.Files == 0 {
			continue
		}
		t.Row(l.DisplayName(), strconv.Itoa(s.Files), strconv.Itoa(s.Lines))
	}
	t.Row(formatutil.Bold("Total"), strconv.Itoa(info.Total.Files), strconv.Itoa(info.Total.Lines))
	fmt.Fprintf(b, "%s\n", t.Render())
}

func writeConsoleVulnerability(b *strings.Builder, index int, v leaks.Vulnerability) {
	label := severityColor(v.Severity)("[" + v.Severity.Label() + "]")
	fmt.Fprintf(b, "%d. %s %s\n", index, label, formatutil.Bold(v.Message()))
	fmt.Fprintf(b, "   %s %s\n", formatutil.Faint("at"), v.Location.String())
	if v.URLLink != "" {
		fmt.Fprintf(b, "   %s\n", formatutil.Faint(v.URLLink))
	}
	b.WriteString("\n")
	for i, line := range strings.Split(v.CodeSegment, "\n") {
		lineNo := formatutil.Faint(fmt.Sprintf("%4d |", v.LineStart+i))
		fmt.Fprintf(b, "   %s %s\n", lineNo, strings.ReplaceAll(line, "\t", "    "))
	}
	b.WriteString("\n")
	if cat := v.SecurityCategories(); cat != "" {
		fmt.Fprintf(b, "   %s %s\n", formatutil.Bold("Categories:"), cat)
	}
	if v.Remediation != "" {
		fmt.Fprintf(b, "   %s %s\n", formatutil.Bold("Remediation:"), v.Remediation)
	}
	fmt.Fprintf(b, "   %s\n\n", formatutil.Faint("To skip this finding, add "+v.Hash+" to skip-vulnerabilities."))
}

// summary returns a one line summary of the results
func summary(results *leaks.Results) string {
	counts := severityCounts(results)
	var parts []string
	for _, s := range config.Severities {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
	}
	s := fmt.Sprintf("%d potential data leak(s)", len(results.Vulnerabilities))
	if len(parts) > 0 {
		s += " (" + strings.Join(parts, ", ") + ")"
	}
	return s + fmt.Sprintf(", %d data element occurrence(s)", len(results.Occurrences))
}
