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
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// WriteMarkdown writes a Markdown report: a summary, one section per vulnerability, the sensitive datamap with the
// occurrences of each data element, and the dataflow diagrams.
func WriteMarkdown(w io.Writer, cfg *config.Config, info *gitinfo.DirectoryInfo, results *leaks.Results) error {
	var b strings.Builder

	b.WriteString("# Sensitive Data Scan Report\n\n")
	b.WriteString("| Repository | Branch | Commit |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| [%s](%s) | %s | `%s` |\n\n", cell(info.RepoName), info.RemoteURL, cell(info.Branch), info.Commit)

	b.WriteString("## Summary\n\n| Severity | Potential Data Leaks |\n|---|---|\n")
	counts := severityCounts(results)
	for _, s := range config.Severities {
		fmt.Fprintf(&b, "| %s | %d |\n", s.Label(), counts[s])
	}
	fmt.Fprintf(&b, "\n%s.\n\n", summary(results))

	b.WriteString("## Potential Data Leaks\n\n")
	if len(results.Vulnerabilities) == 0 {
		b.WriteString("No potential data leak found.\n\n")
	}
	for i, v := range results.Vulnerabilities {
		writeMarkdownVulnerability(&b, i+1, v)
	}

	b.WriteString("## Sensitive Datamap\n\n")
	entries := datamap(cfg, results)
	if len(entries) == 0 {
		b.WriteString("No sensitive data element found.\n\n")
	} else {
		b.WriteString("| Sensitivity | Data Element | ID | Occurrences | Tags |\n|---|---|---|---|---|\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %d | %s |\n",
				e.Sensitivity.Label(), cell(e.Name), e.ID, len(e.Occurrences), cell(strings.Join(e.Tags, ", ")))
		}
		b.WriteString("\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "### %s\n\n", e.Name)
			for _, o := range e.Occurrences {
				fmt.Fprintf(&b, "- %s `%s`\n", link(o.Location, o.URLLink), strings.TrimSpace(o.CodeSegment))
			}
			b.WriteString("\n")
		}
	}

	if len(results.Vulnerabilities) > 0 {
		b.WriteString("## Dataflow\n\n")
		for _, element := range dataflowTree(results.Vulnerabilities).Children {
			fmt.Fprintf(&b, "### %s\n\n```mermaid\n", element.Label.text)
			if err := WriteMermaid(&b, element); err != nil {
				return err
			}
			b.WriteString("```\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMarkdownVulnerability(b *strings.Builder, index int, v leaks.Vulnerability) {
	fmt.Fprintf(b, "### %d. [%s] %s\n\n", index, v.Severity.Label(), v.Message())
	fmt.Fprintf(b, "- **Location:** %s\n", link(v.Location, v.URLLink))
	fmt.Fprintf(b, "- **Data sink:** %s (`%s`)\n", v.DataSinkName, v.DataSinkID)
	fmt.Fprintf(b, "- **Data elements:** %s\n", strings.Join(v.DataElementNames, ", "))
	if cat := v.SecurityCategories(); cat != "" {
		fmt.Fprintf(b, "- **Categories:** %s\n", cat)
	}
	fmt.Fprintf(b, "- **Hash:** `%s`\n", v.Hash)
	for _, f := range v.Flows {
		if len(f.Names) > 1 {
			fmt.Fprintf(b, "- **Flow:** `%s`\n", strings.Join(f.Names, " -> "))
		}
	}
	fmt.Fprintf(b, "\n```%s\n%s\n```\n\n", v.Language, v.CodeSegment)
	if v.Remediation != "" {
		fmt.Fprintf(b, "> %s\n\n", v.Remediation)
	}
}

func link(l leaks.Location, url string) string {
	if url == "" {
		return "`" + l.String() + "`"
	}
	return fmt.Sprintf("[`%s`](%s)", l.String(), url)
}

// cell escapes the pipes of a table cell
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Preview renders a Markdown report for a terminal of the given width
func Preview(markdown string, width int) (string, error) {
	style := glamour.WithStandardStyle(styles.NoTTYStyle)
	if formatutil.ColorsEnabled() {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("could not create markdown renderer: %w", err)
	}
	return renderer.Render(markdown)
}
