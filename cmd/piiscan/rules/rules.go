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

// Package rules implements the piiscan command that lists the data elements, data sinks and sanitizers of a
// configuration.
package rules

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
)

// Usage of the rules command
const Usage = ` List the rules of a configuration.
Usage:
  piiscan rules [options]
Examples:
  % piiscan rules -config piiscan.yaml
`

// Run prints the rules of the config of flags to w
func Run(w io.Writer, flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	return Print(w, cfg)
}

// Print prints the rules of cfg to w. Skipped and disabled rules are listed with their status.
func Print(w io.Writer, cfg *config.Config) error {
	var b strings.Builder

	active := map[string]bool{}
	for _, d := range cfg.ActiveDataElements() {
		active[d.ID] = true
	}
	fmt.Fprintf(&b, "%s\n", formatutil.Bold("Data Elements"))
	t := formatutil.NewTable("ID", "Name", "Sensitivity", "Patterns", "Source", "Status")
	for _, d := range cfg.DataElements {
		t.Row(d.ID, d.Name, d.Sensitivity.Label(), strconv.Itoa(len(d.IncludePatterns)), d.Source,
			status(active[d.ID], d.Disabled))
	}
	fmt.Fprintf(&b, "%s\n\n", t.Render())

	activeSinks := map[string]bool{}
	for _, l := range config.Languages {
		for _, s := range cfg.ActiveDataSinks(l) {
			activeSinks[s.ID] = true
		}
	}
	fmt.Fprintf(&b, "%s\n", formatutil.Bold("Data Sinks"))
	t = formatutil.NewTable("ID", "Name", "Language", "Match Rules", "Categories", "Source", "Status")
	for _, s := range cfg.DataSinks {
		t.Row(s.ID, s.Name, s.Language.DisplayName(), strconv.Itoa(len(s.MatchRules)), s.SecurityCategories(),
			s.Source, status(activeSinks[s.ID], false))
	}
	fmt.Fprintf(&b, "%s\n\n", t.Render())

	fmt.Fprintf(&b, "%s\n", formatutil.Bold("Sanitizers"))
	t = formatutil.NewTable("Pattern", "Description", "Source")
	for _, s := range cfg.Sanitizers {
		t.Row(s.Pattern, s.Description, s.Source)
	}
	fmt.Fprintf(&b, "%s\n", t.Render())

	_, err := io.WriteString(w, b.String())
	return err
}

func status(active bool, disabled bool) string {
	switch {
	case disabled:
		return formatutil.Faint("disabled")
	case !active:
		return formatutil.Yellow("skipped")
	default:
		return formatutil.Green("active")
	}
}
