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
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func testInfo() *gitinfo.DirectoryInfo {
	return &gitinfo.DirectoryInfo{
		Path:      "/src/shop",
		RemoteURL: "https://github.com/example/shop",
		RepoName:  "example/shop",
		Branch:    "main",
		Commit:    "0123abc",
		Provider:  gitinfo.GitHub,
		PerLanguage: map[config.Language]gitinfo.FileStats{
			config.Go:     {Files: 2, Lines: 120},
			config.Python: {Files: 1, Lines: 40},
		},
		Total: gitinfo.FileStats{Files: 3, Lines: 160},
	}
}

func occurrence(id, name string, sev config.Severity, line int, code string) leaks.Occurrence {
	return leaks.Occurrence{
		DataElementID:   id,
		DataElementName: name,
		Hash:            strings.ToUpper(id) + "HASH",
		Sensitivity:     sev,
		Language:        config.Go,
		CodeSegment:     code,
		Location:        leaks.Location{RelativePath: "app/main.go", LineStart: line, LineEnd: line, ColumnStart: 2},
		Source:          config.SourceBuiltin,
	}
}

func testResults() *leaks.Results {
	return &leaks.Results{
		Occurrences: []leaks.Occurrence{
			occurrence("email", "Email Address", config.Medium, 10, "\temail := u.Email"),
			occurrence("ssn", "Social Security Number", config.Critical, 13, "\t\t\"ssn\": u.SSN,"),
		},
		Vulnerabilities: []leaks.Vulnerability{
			{
				DataSinkID:       "go_capture",
				DataSinkName:     "Error Capture",
				DataElementIDs:   []string{"ssn", "email"},
				DataElementNames: []string{"Social Security Number", "Email Address"},
				Hash:             "0A1B2C",
				Description:      "Error reporting through a capture facility",
				Severity:         config.Critical,
				Language:         config.Go,
				CodeSegment:      "c.Capture(err, map[string]string{\n\t\"ssn\": u.SSN,\n})",
				Location: leaks.Location{RelativePath: "app/main.go", LineStart: 12, LineEnd: 14,
					ColumnStart: 2, ColumnEnd: 4},
				URLLink:     "https://github.com/example/shop/blob/0123abc/app/main.go#L12-L14",
				CWE:         []string{"CWE-201"},
				OWASP:       []string{"A01:2021"},
				Remediation: "Do not attach sensitive values to captured errors or their context.",
				Flows: []leaks.Flow{
					{DataElementID: "ssn", Names: []string{"u.SSN"}},
					{DataElementID: "email", Names: []string{"u.Email", "email"}},
				},
			},
		},
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2024, 5, 1, 13, 4, 59, 0, time.UTC)
	if got := DefaultFilename(config.JSONFormat, now); got != "piiscan-2024-05-01-13-04-59.json" {
		t.Errorf("unexpected filename %q", got)
	}
	if got := DefaultFilename(config.MarkdownFormat, now); got != "piiscan-2024-05-01-13-04-59.md" {
		t.Errorf("unexpected filename %q", got)
	}

	cfg := config.NewDefault()
	cfg.OutputFormat = config.SarifFormat
	cfg.ReportsDir = "reports"
	if got := Filename(cfg, now); got != filepath.Join("reports", "piiscan-2024-05-01-13-04-59.sarif") {
		t.Errorf("unexpected report path %q", got)
	}
	cfg.OutputFilename = "/tmp/out.sarif"
	if got := Filename(cfg, now); got != "/tmp/out.sarif" {
		t.Errorf("absolute output filenames should be kept, got %q", got)
	}
}

func TestExportUnknownFormat(t *testing.T) {
	var b bytes.Buffer
	if err := Export(&b, "pdf", config.NewDefault(), testInfo(), testResults()); err == nil {
		t.Errorf("expected an error for an unknown format")
	}
}

func TestWriteConsole(t *testing.T) {
	formatutil.SetColors(false)
	var b bytes.Buffer
	if err := Export(&b, config.ConsoleFormat, config.NewDefault(), testInfo(), testResults()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, expected := range []string{
		"Repository: example/shop (main@0123abc)",
		"Python",
		"Potential Data Leaks",
		"1. [CRITICAL] Error reporting through a capture facility: Social Security Number, Email Address",
		"at app/main.go:12:2",
		"  12 | c.Capture(err, map[string]string{",
		"  13 |     \"ssn\": u.SSN,",
		"Categories: CWE-201, A01:2021",
		"add 0A1B2C to skip-vulnerabilities",
		"Sensitive Datamap",
		"1 potential data leak(s) (1 critical), 2 data element occurrence(s)",
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("console report should contain %q:\n%s", expected, out)
		}
	}
	if strings.Contains(out, "Kotlin") {
		t.Errorf("languages without files should not be listed")
	}
	if strings.Index(out, "Social Security Number") > strings.LastIndex(out, "Email Address") {
		t.Errorf("datamap should list critical elements first")
	}
}

func TestWriteConsoleEmpty(t *testing.T) {
	formatutil.SetColors(false)
	var b bytes.Buffer
	if err := WriteConsole(&b, config.NewDefault(), testInfo(), &leaks.Results{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "No potential data leak found.") {
		t.Errorf("unexpected report:\n%s", b.String())
	}
}

func TestWriteJSON(t *testing.T) {
	var b bytes.Buffer
	if err := WriteJSON(&b, config.NewDefault(), testInfo(), testResults()); err != nil {
		t.Fatal(err)
	}
	var r jsonReport
	if err := json.Unmarshal(b.Bytes(), &r); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, err := uuid.Parse(r.ScanID); err != nil {
		t.Errorf("scan id should be a uuid: %v", err)
	}
	if r.Repository != "example/shop" || r.Commit != "0123abc" || r.Version != config.Version {
		t.Errorf("unexpected header %+v", r)
	}
	ids := []string{}
	for _, e := range r.DataElements {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"ssn", "email"}, ids); diff != "" {
		t.Errorf("data elements (-want +got):\n%s", diff)
	}
	if len(r.Rules) != 1 || r.Rules[0].ID != "go_capture" || r.Rules[0].Source != config.SourceBuiltin {
		t.Errorf("expected the go_capture rule only, got %+v", r.Rules)
	}
	if diff := cmp.Diff(testResults().Vulnerabilities, r.Vulnerabilities); diff != "" {
		t.Errorf("vulnerabilities (-want +got):\n%s", diff)
	}
	if len(r.Occurrences["email"]) != 1 || r.Occurrences["email"][0].LineStart != 10 {
		t.Errorf("unexpected occurrences %+v", r.Occurrences)
	}
}

func TestWriteJSONEmpty(t *testing.T) {
	var b bytes.Buffer
	if err := WriteJSON(&b, config.NewDefault(), testInfo(), &leaks.Results{}); err != nil {
		t.Fatal(err)
	}
	for _, expected := range []string{`"vulnerabilities": []`, `"data_elements": []`, `"vulnerability_rules": []`} {
		if !strings.Contains(b.String(), expected) {
			t.Errorf("expected %s in %s", expected, b.String())
		}
	}
}

func TestWriteMermaid(t *testing.T) {
	tree := dataflowTree(testResults().Vulnerabilities)
	if len(tree.Children) != 2 {
		t.Fatalf("expected one subtree per data element, got %d", len(tree.Children))
	}
	var b bytes.Buffer
	if err := WriteMermaid(&b, tree.Children[0]); err != nil {
		t.Fatal(err)
	}
	expected := `flowchart LR
  n0(["Social Security Number"])
  n0 --> n1["app/main.go"]
  n1 --> n2[/"Error Capture"/]
`
	if diff := cmp.Diff(expected, b.String()); diff != "" {
		t.Errorf("diagram (-want +got):\n%s", diff)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var b bytes.Buffer
	if err := WriteMarkdown(&b, config.NewDefault(), testInfo(), testResults()); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, expected := range []string{
		"| [example/shop](https://github.com/example/shop) | main | `0123abc` |",
		"| CRITICAL | 1 |",
		"| MEDIUM | 0 |",
		"### 1. [CRITICAL] Error reporting through a capture facility: Social Security Number, Email Address",
		"- **Location:** [`app/main.go:12:2`](https://github.com/example/shop/blob/0123abc/app/main.go#L12-L14)",
		"- **Flow:** `u.Email -> email`",
		"```go\nc.Capture(err",
		"| CRITICAL | Social Security Number | `ssn` | 1 | pii, government-id |",
		"- `app/main.go:10:2` `email := u.Email`",
		"```mermaid\nflowchart LR\n",
		`n1 --> n2[/"Error Capture"/]`,
	} {
		if !strings.Contains(out, expected) {
			t.Errorf("markdown report should contain %q:\n%s", expected, out)
		}
	}
	if strings.Contains(out, "- **Flow:** `u.SSN`") {
		t.Errorf("direct uses should not be listed as flows")
	}
}

func TestPreview(t *testing.T) {
	formatutil.SetColors(false)
	out, err := Preview("# Summary\n\n| Severity | Count |\n|---|---|\n| CRITICAL | 1 |\n", 80)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Summary") || !strings.Contains(out, "CRITICAL") {
		t.Errorf("unexpected preview:\n%s", out)
	}
}

func TestWriteSarif(t *testing.T) {
	cfg := config.NewDefault()
	var b bytes.Buffer
	if err := WriteSarif(&b, cfg, testInfo(), testResults()); err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(b.Bytes(), &log); err != nil {
		t.Fatalf("invalid sarif: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log %+v", log)
	}
	run := log.Runs[0]
	if len(run.Tool.Driver.Rules) != len(cfg.DataSinks) {
		t.Errorf("expected one rule per data sink, got %d", len(run.Tool.Driver.Rules))
	}
	if len(run.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(run.Results))
	}
	res := run.Results[0]
	if run.Tool.Driver.Rules[res.RuleIndex].ID != "go_capture" || res.RuleID != "go_capture" {
		t.Errorf("result should point to the go_capture rule, got %s at %d", res.RuleID, res.RuleIndex)
	}
	if res.Level != "error" || res.PartialFingerprints[fingerprintKey] != "0A1B2C" {
		t.Errorf("unexpected result %+v", res)
	}
	region := res.Locations[0].PhysicalLocation.Region
	if diff := cmp.Diff(sarifRegion{StartLine: 12, StartColumn: 2, EndLine: 14, EndColumn: 4,
		Snippet: sarifText{Text: testResults().Vulnerabilities[0].CodeSegment}}, region); diff != "" {
		t.Errorf("region (-want +got):\n%s", diff)
	}
	if len(run.VersionControlProvenance) != 1 || run.VersionControlProvenance[0].RevisionID != "0123abc" {
		t.Errorf("unexpected provenance %+v", run.VersionControlProvenance)
	}
}

func TestWriteSarifUnknownSink(t *testing.T) {
	results := testResults()
	results.Vulnerabilities[0].DataSinkID = "custom_sink"
	var b bytes.Buffer
	if err := WriteSarif(&b, config.NewDefault(), testInfo(), results); err == nil {
		t.Errorf("expected an error for a vulnerability of an unknown sink")
	}
}

func TestWriteFile(t *testing.T) {
	cfg := config.NewDefault()
	dir := t.TempDir()
	if err := cfg.Update(func(o *config.Options) {
		o.OutputFormat = config.JSONFormat
		o.ReportsDir = dir
	}); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 5, 1, 13, 4, 59, 0, time.UTC)
	filename, err := WriteFile(cfg, testInfo(), testResults(), now)
	if err != nil {
		t.Fatal(err)
	}
	if filename != filepath.Join(dir, "piiscan-2024-05-01-13-04-59.json") {
		t.Errorf("unexpected report file %s", filename)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(b) {
		t.Errorf("report file should hold a json document")
	}
}
