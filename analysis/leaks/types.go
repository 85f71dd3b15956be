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

// Package leaks implements the scanner that finds sensitive data flowing into logging, error capture and other
// data sinks.
//
// The scanner records two kinds of findings. A data element occurrence is an identifier whose name matches a data
// element of the configuration (ssn, userEmail, self.first_name...). A vulnerability is a call to a data sink with
// at least one argument carrying a data element, either directly or through a chain of assignments.
//
// Go files are scanned with go/ast, Python and TypeScript files with tree-sitter grammars. The Analyzer runs the Go
// scanner as a go/analysis pass, with type information.
package leaks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/funcutil"
)

// Location is a range in a source file. Lines and columns start at 1, the end column is exclusive.
type Location struct {
	RelativePath string `json:"relative_file_path"`
	AbsolutePath string `json:"absolute_file_path,omitempty"`
	LineStart    int    `json:"line_start"`
	LineEnd      int    `json:"line_end"`
	ColumnStart  int    `json:"column_start"`
	ColumnEnd    int    `json:"column_end"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.RelativePath, l.LineStart, l.ColumnStart)
}

// Occurrence is an identifier of the scanned code that holds a data element
type Occurrence struct {
	DataElementID   string          `json:"data_element_id"`
	DataElementName string          `json:"data_element_name"`
	Hash            string          `json:"hash"`
	Sensitivity     config.Severity `json:"sensitivity"`
	Language        config.Language `json:"language"`
	// CodeSegment is the source line of the occurrence, trimmed
	CodeSegment string `json:"code_segment"`
	Location
	URLLink string   `json:"url_link"`
	Source  string   `json:"source"`
	Tags    []string `json:"tags"`
}

// Flow is the chain of names through which a data element reaches an argument of a sink call. The chain of a
// direct use has a single name.
type Flow struct {
	DataElementID string   `json:"data_element_id"`
	Names         []string `json:"names"`
}

func (f Flow) String() string {
	return f.DataElementID + ": " + strings.Join(f.Names, " -> ")
}

// Vulnerability is a call sending data elements to a data sink
type Vulnerability struct {
	DataSinkID       string          `json:"data_sink_id"`
	DataSinkName     string          `json:"data_sink_name"`
	DataElementIDs   []string        `json:"data_element_ids"`
	DataElementNames []string        `json:"data_element_names"`
	Hash             string          `json:"hash"`
	Description      string          `json:"description"`
	Severity         config.Severity `json:"severity"`
	Language         config.Language `json:"language"`
	// CodeSegment is the text of the call, de-indented
	CodeSegment string `json:"code_segment"`
	Location
	URLLink     string   `json:"url_link"`
	CWE         []string `json:"cwe"`
	OWASP       []string `json:"owasp"`
	Remediation string   `json:"remediation,omitempty"`
	Flows       []Flow   `json:"flows,omitempty"`
}

// SecurityCategories returns the CWE and OWASP categories of the vulnerability, comma separated
func (v Vulnerability) SecurityCategories() string {
	return strings.Join(append(append([]string{}, v.CWE...), v.OWASP...), ", ")
}

// Message returns a one line description of the vulnerability
func (v Vulnerability) Message() string {
	return fmt.Sprintf("%s: %s", v.Description, strings.Join(v.DataElementNames, ", "))
}

// Results are the findings of a scan
type Results struct {
	Occurrences     []Occurrence    `json:"data_element_occurrences"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// Exceeds returns true if a vulnerability is at least as severe as threshold. An empty threshold is never exceeded.
func (r *Results) Exceeds(threshold config.Severity) bool {
	if threshold == "" {
		return false
	}
	for _, v := range r.Vulnerabilities {
		if v.Severity.AtLeast(threshold) {
			return true
		}
	}
	return false
}

// OccurrencesByElement groups the occurrences by data element id
func (r *Results) OccurrencesByElement() map[string][]Occurrence {
	res := map[string][]Occurrence{}
	for _, o := range r.Occurrences {
		res[o.DataElementID] = append(res[o.DataElementID], o)
	}
	return res
}

// DataElementIDs returns the sorted ids of the data elements that occur in the results
func (r *Results) DataElementIDs() []string {
	set := map[string]bool{}
	for _, o := range r.Occurrences {
		set[o.DataElementID] = true
	}
	return funcutil.SetToOrderedSlice(set)
}

// finalize sorts the results and applies the severity filter and the alarm limit of the config
func (r *Results) finalize(cfg *config.Config) {
	sort.SliceStable(r.Occurrences, func(i, j int) bool {
		return lessLocation(r.Occurrences[i].Location, r.Occurrences[j].Location)
	})
	var vulns []Vulnerability
	for _, v := range r.Vulnerabilities {
		if cfg.ReportsSeverity(v.Severity) {
			vulns = append(vulns, v)
		}
	}
	sort.SliceStable(vulns, func(i, j int) bool {
		ri, rj := vulns[i].Severity.Rank(), vulns[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return lessLocation(vulns[i].Location, vulns[j].Location)
	})
	if cfg.ExceedsMaxAlarms(len(vulns)) {
		vulns = vulns[:cfg.MaxAlarms]
	}
	r.Vulnerabilities = vulns
}

func lessLocation(a, b Location) bool {
	if a.RelativePath != b.RelativePath {
		return a.RelativePath < b.RelativePath
	}
	if a.LineStart != b.LineStart {
		return a.LineStart < b.LineStart
	}
	return a.ColumnStart < b.ColumnStart
}

// ScanError is an error that occurred while scanning a file. Errors with Report set are unexpected and sent to the
// error capture facility when one is configured.
type ScanError struct {
	Path   string
	Err    error
	Report bool
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
