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

package config

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// SourceBuiltin marks rules shipped with the scanner
	SourceBuiltin = "builtin"
	// SourceUser marks rules coming from a user configuration file
	SourceUser = "user"
)

// DataElement is a kind of sensitive data (an email, a social security number...) identified by the names of the
// variables, fields and attributes that hold it.
type DataElement struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// IncludePatterns are regexes over normalized names. A name is a match if any include pattern matches it and
	// no exclude pattern does.
	IncludePatterns []string `yaml:"include-patterns"`
	ExcludePatterns []string `yaml:"exclude-patterns,omitempty"`

	Disabled    bool     `yaml:"disabled,omitempty"`
	Sensitivity Severity `yaml:"sensitivity"`
	Source      string   `yaml:"source,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`

	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// Enabled returns true if the data element should be looked for.
func (d *DataElement) Enabled() bool {
	return !d.Disabled
}

// Match returns true if the normalized name matches the data element
func (d *DataElement) Match(name string) bool {
	found := false
	for _, r := range d.include {
		if r.MatchString(name) {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, r := range d.exclude {
		if r.MatchString(name) {
			return false
		}
	}
	return true
}

func (d *DataElement) compile() error {
	if d.ID == "" {
		return fmt.Errorf("data element without id")
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	if len(d.IncludePatterns) == 0 {
		return fmt.Errorf("data element %s: no include pattern", d.ID)
	}
	if !d.Sensitivity.Valid() {
		return fmt.Errorf("data element %s: invalid sensitivity %q", d.ID, d.Sensitivity)
	}
	d.include = nil
	d.exclude = nil
	for _, p := range d.IncludePatterns {
		r, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("data element %s: %w", d.ID, err)
		}
		d.include = append(d.include, r)
	}
	for _, p := range d.ExcludePatterns {
		r, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("data element %s: %w", d.ID, err)
		}
		d.exclude = append(d.exclude, r)
	}
	return nil
}

// MatchRule identifies calls to a data sink. Go sinks are identified by a CodeIdentifier; Python and TypeScript
// sinks by a Clue, a regex over the dotted name of the callee once import aliases have been resolved
// (e.g. sentry_sdk.capture_exception).
type MatchRule struct {
	CodeIdentifier `yaml:",inline"`
	Clue           string `yaml:"clue,omitempty"`

	clueRegex *regexp.Regexp
}

// DataSink is a function that sends data outside of the program's control: loggers, error trackers, analytics...
type DataSink struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Language    Language    `yaml:"language"`
	CWE         []string    `yaml:"cwe,omitempty"`
	OWASP       []string    `yaml:"owasp,omitempty"`
	MatchRules  []MatchRule `yaml:"match-rules"`
	Remediation string      `yaml:"remediation,omitempty"`
	Source      string      `yaml:"source,omitempty"`
}

// MatchCode returns true if the Go function identified by cid is this sink
func (s *DataSink) MatchCode(cid CodeIdentifier) bool {
	for _, rule := range s.MatchRules {
		if !rule.CodeIdentifier.IsEmpty() && cid.equalOnNonEmptyFields(rule.CodeIdentifier) {
			return true
		}
	}
	return false
}

// MatchName returns true if the resolved dotted call name matches one of the clues of the sink
func (s *DataSink) MatchName(name string) bool {
	for _, rule := range s.MatchRules {
		if rule.clueRegex != nil && rule.clueRegex.MatchString(name) {
			return true
		}
	}
	return false
}

// SecurityCategories returns the CWE and OWASP categories of the sink, comma separated.
func (s *DataSink) SecurityCategories() string {
	return strings.Join(append(append([]string{}, s.CWE...), s.OWASP...), ", ")
}

func (s *DataSink) compile() error {
	if s.ID == "" {
		return fmt.Errorf("data sink without id")
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if !s.Language.Scannable() {
		return fmt.Errorf("data sink %s: unsupported language %q", s.ID, s.Language)
	}
	if len(s.MatchRules) == 0 {
		return fmt.Errorf("data sink %s: no match rule", s.ID)
	}
	for i, rule := range s.MatchRules {
		if rule.Clue == "" && rule.CodeIdentifier.IsEmpty() {
			return fmt.Errorf("data sink %s: empty match rule %d", s.ID, i)
		}
		if !rule.CodeIdentifier.IsEmpty() {
			cid, err := compileRegexes(rule.CodeIdentifier)
			if err != nil {
				return fmt.Errorf("data sink %s: %w", s.ID, err)
			}
			s.MatchRules[i].CodeIdentifier = cid
		}
		if rule.Clue != "" {
			r, err := regexp.Compile(rule.Clue)
			if err != nil {
				return fmt.Errorf("data sink %s: invalid clue: %w", s.ID, err)
			}
			s.MatchRules[i].clueRegex = r
		}
	}
	return nil
}

// Sanitizer identifies calls that make data safe to send to a sink (hashing, masking, redaction...)
type Sanitizer struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Source      string `yaml:"source,omitempty"`

	regex *regexp.Regexp
}

// Match returns true if the callee name is a sanitizer
func (s *Sanitizer) Match(name string) bool {
	return s.regex != nil && s.regex.MatchString(name)
}

func (s *Sanitizer) compile() error {
	r, err := regexp.Compile(s.Pattern)
	if err != nil {
		return fmt.Errorf("sanitizer %q: %w", s.Pattern, err)
	}
	s.regex = r
	return nil
}
