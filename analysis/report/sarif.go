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
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
	toolName     = "piiscan"
	toolURI      = "https://github.com/awslabs/ar-go-pii"
	// fingerprintKey names the vulnerability hash in the partial fingerprints of results
	fingerprintKey = "piiscanHash/v1"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool                     sarifTool           `json:"tool"`
	Results                  []sarifResult       `json:"results"`
	VersionControlProvenance []sarifProvenance   `json:"versionControlProvenance,omitempty"`
	OriginalURIBaseIDs       map[string]sarifURI `json:"originalUriBaseIds,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Version        string      `json:"version"`
	Rules          []sarifRule `json:"rules"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifRule struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	ShortDescription     sarifText           `json:"shortDescription"`
	FullDescription      sarifText           `json:"fullDescription"`
	Help                 sarifText           `json:"help"`
	DefaultConfiguration sarifConfiguration  `json:"defaultConfiguration"`
	Properties           sarifRuleProperties `json:"properties"`
}

type sarifConfiguration struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags"`
}

type sarifResult struct {
	RuleID              string             `json:"ruleId"`
	RuleIndex           int                `json:"ruleIndex"`
	Level               string             `json:"level"`
	Message             sarifText          `json:"message"`
	Locations           []sarifLocation    `json:"locations"`
	PartialFingerprints map[string]string  `json:"partialFingerprints"`
	Properties          sarifResultDetails `json:"properties"`
}

type sarifResultDetails struct {
	Severity     config.Severity `json:"severity"`
	DataElements []string        `json:"dataElements"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int       `json:"startLine"`
	StartColumn int       `json:"startColumn"`
	EndLine     int       `json:"endLine"`
	EndColumn   int       `json:"endColumn"`
	Snippet     sarifText `json:"snippet"`
}

type sarifProvenance struct {
	RepositoryURI string `json:"repositoryUri"`
	RevisionID    string `json:"revisionId"`
	Branch        string `json:"branch"`
}

type sarifURI struct {
	URI string `json:"uri"`
}

// sarifLevel maps severities to SARIF result levels
func sarifLevel(s config.Severity) string {
	switch s {
	case config.Critical:
		return "error"
	case config.Medium:
		return "warning"
	default:
		return "note"
	}
}

// WriteSarif writes the results as a SARIF 2.1.0 log with one rule per data sink of the config and one result per
// vulnerability.
func WriteSarif(w io.Writer, cfg *config.Config, info *gitinfo.DirectoryInfo, results *leaks.Results) error {
	run := sarifRun{
		Tool: sarifTool{Driver: sarifDriver{
			Name:           toolName,
			InformationURI: toolURI,
			Version:        config.Version,
			Rules:          []sarifRule{},
		}},
		Results:            []sarifResult{},
		OriginalURIBaseIDs: map[string]sarifURI{"%SRCROOT%": {URI: "file://" + info.Path + "/"}},
	}
	if info.Commit != "" {
		run.VersionControlProvenance = []sarifProvenance{{
			RepositoryURI: info.RemoteURL,
			RevisionID:    info.Commit,
			Branch:        info.Branch,
		}}
	}

	ruleIndex := map[string]int{}
	for i, s := range cfg.DataSinks {
		ruleIndex[s.ID] = i
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
			ID:                   s.ID,
			Name:                 s.Name,
			ShortDescription:     sarifText{Text: s.Name},
			FullDescription:      sarifText{Text: s.Description},
			Help:                 sarifText{Text: s.Remediation},
			DefaultConfiguration: sarifConfiguration{Level: "warning"},
			Properties:           sarifRuleProperties{Tags: append(append([]string{"security"}, s.CWE...), s.OWASP...)},
		})
	}

	for _, v := range results.Vulnerabilities {
		idx, ok := ruleIndex[v.DataSinkID]
		if !ok {
			return fmt.Errorf("vulnerability %s: unknown data sink %q", v.Hash, v.DataSinkID)
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    v.DataSinkID,
			RuleIndex: idx,
			Level:     sarifLevel(v.Severity),
			Message:   sarifText{Text: v.Message()},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: v.RelativePath, URIBaseID: "%SRCROOT%"},
				Region: sarifRegion{
					StartLine:   v.LineStart,
					StartColumn: v.ColumnStart,
					EndLine:     v.LineEnd,
					EndColumn:   v.ColumnEnd,
					Snippet:     sarifText{Text: v.CodeSegment},
				},
			}}},
			PartialFingerprints: map[string]string{fingerprintKey: v.Hash},
			Properties:          sarifResultDetails{Severity: v.Severity, DataElements: v.DataElementIDs},
		})
	}

	log := sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(log); err != nil {
		return fmt.Errorf("could not encode sarif log: %w", err)
	}
	return nil
}
