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

// Package suppress implements the piiscan command that inserts ignore directives above the Go statements where
// potential data leaks have been found. Each directive is a reviewed exception: the vulnerabilities on the statement
// are no longer reported.
package suppress

import (
	"bytes"
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"
	"sort"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/dave/dst/dstutil"
)

// Usage of the suppress command
const Usage = ` Insert ignore directives above the Go statements with potential data leaks.
Usage:
  piiscan suppress [options] [directory]
Examples:
  % piiscan suppress -dry-run .
`

// Flags represents the parsed flags of the suppress command
type Flags struct {
	tools.CommonFlags
	DryRun bool
}

// NewFlags returns the parsed flags of the suppress command with args
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("suppress")
	dryRun := flags.FlagSet.Bool("dry-run", false, "list the statements without modifying the files")
	tools.SetUsage(flags.FlagSet, Usage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("failed to parse command suppress with args %v: %v", args, err)
	}
	return Flags{CommonFlags: flags.Parsed(), DryRun: *dryRun}, nil
}

// Run scans the directory of flags and inserts an ignore directive above each Go statement with a vulnerability.
// It returns the number of directives inserted, or that would be inserted in a dry run.
func Run(ctx context.Context, w io.Writer, flags Flags) (int, error) {
	dir, err := flags.Dir()
	if err != nil {
		return 0, err
	}
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return 0, err
	}
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	results, err := leaks.Scan(ctx, cfg, dir)
	if err != nil {
		return 0, err
	}

	lines := map[string][]int{}
	for _, v := range results.Vulnerabilities {
		if v.Language == config.Go {
			lines[v.AbsolutePath] = append(lines[v.AbsolutePath], v.LineStart)
		}
	}
	files := make([]string, 0, len(lines))
	for f := range lines {
		files = append(files, f)
	}
	sort.Strings(files)

	total := 0
	for _, filename := range files {
		src, err := os.ReadFile(filename)
		if err != nil {
			return total, err
		}
		out, n, err := Suppress(filename, src, lines[filename])
		if err != nil {
			return total, fmt.Errorf("could not suppress vulnerabilities in %s: %w", filename, err)
		}
		total += n
		fmt.Fprintf(w, "%s: %d directive(s)\n", filename, n)
		if flags.DryRun || n == 0 {
			continue
		}
		if err := os.WriteFile(filename, out, 0600); err != nil {
			return total, fmt.Errorf("could not write %s: %w", filename, err)
		}
	}
	return total, nil
}

// Suppress inserts an ignore directive above the innermost statement starting at each of the lines of the Go source
// src. Lines where no statement starts are left as they are. It returns the new source and the number of
// directives inserted.
func Suppress(filename string, src []byte, lines []int) ([]byte, int, error) {
	dec := decorator.NewDecorator(token.NewFileSet())
	f, err := dec.ParseFile(filename, src, parser.ParseComments)
	if err != nil {
		return nil, 0, err
	}
	wanted := map[int]bool{}
	for _, l := range lines {
		wanted[l] = true
	}

	// innermost statement of each wanted line, in a statement list
	found := map[int]dst.Node{}
	dstutil.Apply(f, func(c *dstutil.Cursor) bool {
		if !inStatementList(c) {
			return true
		}
		astNode, ok := dec.Ast.Nodes[c.Node()]
		if !ok {
			return true
		}
		if line := dec.Fset.Position(astNode.Pos()).Line; wanted[line] {
			found[line] = c.Node()
		}
		return true
	}, nil)

	if len(found) == 0 {
		return src, 0, nil
	}
	for _, n := range found {
		n.Decorations().Start.Append("//" + config.IgnoreDirective)
	}
	var b bytes.Buffer
	if err := decorator.Fprint(&b, f); err != nil {
		return nil, 0, err
	}
	return b.Bytes(), len(found), nil
}

// inStatementList returns true if the node of c is a statement of a block or of a case clause
func inStatementList(c *dstutil.Cursor) bool {
	if _, ok := c.Node().(dst.Stmt); !ok {
		return false
	}
	switch c.Parent().(type) {
	case *dst.BlockStmt, *dst.CaseClause, *dst.CommClause:
		return true
	}
	return false
}
