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
	"path/filepath"
	"strings"
)

// Severity ranks both the sensitivity of a data element and the severity of a vulnerability.
type Severity string

const (
	// Critical is the highest severity.
	Critical Severity = "critical"
	// Medium severity
	Medium Severity = "medium"
	// Low is the lowest severity.
	Low Severity = "low"
)

// Severities lists all severities, most severe first.
var Severities = []Severity{Critical, Medium, Low}

// ParseSeverity parses s case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q (expected one of critical, medium, low)", s)
	}
	return sev, nil
}

// Valid returns true if s is one of the known severities.
func (s Severity) Valid() bool {
	return s == Critical || s == Medium || s == Low
}

// Rank returns 0 for the most severe level. Unknown severities rank last.
func (s Severity) Rank() int {
	switch s {
	case Critical:
		return 0
	case Medium:
		return 1
	case Low:
		return 2
	default:
		return 3
	}
}

// AtLeast returns true if s is as severe as t or more.
func (s Severity) AtLeast(t Severity) bool {
	return s.Rank() <= t.Rank()
}

// Label returns the upper-case label of the severity, e.g. CRITICAL
func (s Severity) Label() string {
	return strings.ToUpper(string(s))
}

// Language is a source language recognized by the scanner
type Language string

const (
	Go         Language = "go"
	Python     Language = "python"
	TypeScript Language = "typescript"
	CSharp     Language = "csharp"
	GraphQL    Language = "graphql"
	Java       Language = "java"
	Kotlin     Language = "kotlin"
	Ruby       Language = "ruby"
	SQL        Language = "sql"
)

// Languages lists every language counted in directory statistics, in display order.
var Languages = []Language{CSharp, Go, GraphQL, Java, Kotlin, Python, Ruby, SQL, TypeScript}

var extensions = map[string]Language{
	".cs":      CSharp,
	".go":      Go,
	".gql":     GraphQL,
	".graphql": GraphQL,
	".java":    Java,
	".kt":      Kotlin,
	".py":      Python,
	".rb":      Ruby,
	".sql":     SQL,
	".js":      TypeScript,
	".jsx":     TypeScript,
	".ts":      TypeScript,
	".tsx":     TypeScript,
}

// LanguageOf returns the language of the file at path, based on its extension.
func LanguageOf(path string) (Language, bool) {
	l, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Scannable returns true for the languages the scanner can analyze.
func (l Language) Scannable() bool {
	return l == Go || l == Python || l == TypeScript
}

// Valid returns true if l is a known language.
func (l Language) Valid() bool {
	for _, x := range Languages {
		if x == l {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable name of the language
func (l Language) DisplayName() string {
	switch l {
	case CSharp:
		return "C#"
	case Go:
		return "Go"
	case GraphQL:
		return "GraphQL"
	case Java:
		return "Java"
	case Kotlin:
		return "Kotlin"
	case Python:
		return "Python"
	case Ruby:
		return "Ruby"
	case SQL:
		return "SQL"
	case TypeScript:
		return "TypeScript"
	default:
		return string(l)
	}
}

// OutputFormat is the format of the scan report
type OutputFormat string

const (
	ConsoleFormat  OutputFormat = "console"
	JSONFormat     OutputFormat = "json"
	MarkdownFormat OutputFormat = "markdown"
	SarifFormat    OutputFormat = "sarif"
)

// ParseOutputFormat parses s case-insensitively.
func ParseOutputFormat(s string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case ConsoleFormat, JSONFormat, MarkdownFormat, SarifFormat:
		return f, nil
	case "":
		return ConsoleFormat, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected one of console, json, markdown, sarif)", s)
}

// Ext returns the file extension of reports in that format. Console output has no file.
func (f OutputFormat) Ext() string {
	switch f {
	case JSONFormat:
		return "json"
	case MarkdownFormat:
		return "md"
	case SarifFormat:
		return "sarif"
	default:
		return ""
	}
}
