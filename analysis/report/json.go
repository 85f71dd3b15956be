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
	"encoding/json"
	"fmt"
	"io"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
	"github.com/google/uuid"
)

type jsonReport struct {
	Repository      string                        `json:"repository"`
	URL             string                        `json:"url"`
	Branch          string                        `json:"branch"`
	Commit          string                        `json:"commit"`
	ScanID          string                        `json:"scan_id"`
	Version         string                        `json:"version"`
	DataElements    []jsonDataElement             `json:"data_elements"`
	Occurrences     map[string][]leaks.Occurrence `json:"data_element_occurrences"`
	Rules           []jsonRule                    `json:"vulnerability_rules"`
	Vulnerabilities []leaks.Vulnerability         `json:"vulnerabilities"`
}

type jsonDataElement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Sensitivity config.Severity `json:"sensitivity"`
	Tags        []string        `json:"tags"`
	Source      string          `json:"source"`
	Occurrences int             `json:"occurrences"`
}

type jsonRule struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Language    config.Language `json:"language"`
	CWE         []string        `json:"cwe"`
	OWASP       []string        `json:"owasp"`
	Remediation string          `json:"remediation,omitempty"`
	Source      string          `json:"source"`
}

// WriteJSON writes the results as a JSON document with the repository information, the datamap, the rules of the
// data sinks that have been hit, and the vulnerabilities.
func WriteJSON(w io.Writer, cfg *config.Config, info *gitinfo.DirectoryInfo, results *leaks.Results) error {
	r := jsonReport{
		Repository:      info.RepoName,
		URL:             info.RemoteURL,
		Branch:          info.Branch,
		Commit:          info.Commit,
		ScanID:          uuid.New().String(),
		Version:         config.Version,
		DataElements:    []jsonDataElement{},
		Occurrences:     results.OccurrencesByElement(),
		Rules:           []jsonRule{},
		Vulnerabilities: results.Vulnerabilities,
	}
	if r.Vulnerabilities == nil {
		r.Vulnerabilities = []leaks.Vulnerability{}
	}
	for _, e := range datamap(cfg, results) {
		r.DataElements = append(r.DataElements, jsonDataElement{
			ID:          e.ID,
			Name:        e.Name,
			Description: e.Description,
			Sensitivity: e.Sensitivity,
			Tags:        nonNil(e.Tags),
			Source:      e.Source,
			Occurrences: len(e.Occurrences),
		})
	}
	for _, s := range hitSinks(cfg, results) {
		r.Rules = append(r.Rules, jsonRule{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Language:    s.Language,
			CWE:         nonNil(s.CWE),
			OWASP:       nonNil(s.OWASP),
			Remediation: s.Remediation,
			Source:      s.Source,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("could not encode report: %w", err)
	}
	return nil
}

// hitSinks returns the data sinks of the config that have at least one vulnerability, in config order
func hitSinks(cfg *config.Config, results *leaks.Results) []*config.DataSink {
	hit := map[string]bool{}
	for _, v := range results.Vulnerabilities {
		hit[v.DataSinkID] = true
	}
	var sinks []*config.DataSink
	for i := range cfg.DataSinks {
		if hit[cfg.DataSinks[i].ID] {
			sinks = append(sinks, &cfg.DataSinks[i])
		}
	}
	return sinks
}

func nonNil(a []string) []string {
	if a == nil {
		return []string{}
	}
	return a
}
