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

// Package analysistest reads the expectations written as annotations in the test files of the scanners.
//
// A comment containing @Leak(id1, id2) marks the line it is on as the line of a call leaking the data elements id1
// and id2 to a sink. Annotations can be written in // or # comments, so the same convention works for Go, Python and
// TypeScript test files.
package analysistest

import (
	"bufio"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/funcutil"
)

// LeakRegex matches annotations of the form "@Leak(id1, id2, id3)"
var LeakRegex = regexp.MustCompile(`(?://|#).*@Leak\(((?:\s*\w+\s*,?)+)\)`)

// LPos is a position without column
type LPos struct {
	Filename string
	Line     int
}

func (p LPos) String() string {
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// GetExpectedLeaks reads all the files of fsys in a language the scanner supports and returns, for each annotated
// line, the sorted ids of the data elements expected to leak. Filenames are the slash-separated paths in fsys.
func GetExpectedLeaks(fsys fs.FS) (map[LPos][]string, error) {
	expected := map[LPos][]string{}
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		lang, ok := config.LanguageOf(path)
		if !ok || !lang.Scannable() {
			return nil
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		line := 0
		for scanner.Scan() {
			line++
			// Match a "@Leak(id1, id2, id3)"
			a := LeakRegex.FindStringSubmatch(scanner.Text())
			if len(a) > 1 {
				ids := funcutil.Map(strings.Split(a[1], ","), strings.TrimSpace)
				sort.Strings(ids)
				expected[LPos{Filename: path, Line: line}] = ids
			}
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}
	return expected, nil
}
