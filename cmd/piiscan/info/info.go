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

// Package info implements the piiscan command that prints the repository information and file statistics of a
// directory, as they appear in scan reports.
package info

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
	"github.com/awslabs/ar-go-pii/internal/formatutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
)

// Usage of the info command
const Usage = ` Print the repository information and file statistics of a directory.
Usage:
  piiscan info [options] [directory]
`

// Run prints the information of the directory of flags to w
func Run(ctx context.Context, w io.Writer, flags tools.CommonFlags) error {
	dir, err := flags.Dir()
	if err != nil {
		return err
	}
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	env := config.LoadEnv()
	info, err := gitinfo.Load(ctx, dir, cfg.ExcludePaths, env)
	if err != nil {
		return fmt.Errorf("could not read directory information: %w", err)
	}
	Print(w, info, env)
	return nil
}

// Print prints info to w
func Print(w io.Writer, info *gitinfo.DirectoryInfo, env config.Environment) {
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Directory: "), info.Path)
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Repository:"), info.RepoName)
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("URL:       "), info.RemoteURL)
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Branch:    "), info.Branch)
	fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Commit:    "), info.Commit)
	if info.Provider != "" {
		fmt.Fprintf(w, "%s %s\n", formatutil.Bold("Provider:  "), info.Provider)
	}
	if env.CI != "" {
		fmt.Fprintf(w, "%s %s\n", formatutil.Bold("CI:        "), env.CI)
	}

	t := formatutil.NewTable("Language", "Files", "Lines", "Scanned")
	for _, l := range config.Languages {
		s := info.PerLanguage[l]
		if s.Files == 0 {
			continue
		}
		scanned := formatutil.Faint("no")
		if l.Scannable() {
			scanned = formatutil.Green("yes")
		}
		t.Row(l.DisplayName(), strconv.Itoa(s.Files), strconv.Itoa(s.Lines), scanned)
	}
	t.Row(formatutil.Bold("Total"), strconv.Itoa(info.Total.Files), strconv.Itoa(info.Total.Lines), "")
	fmt.Fprintf(w, "\n%s\n", t.Render())
}
