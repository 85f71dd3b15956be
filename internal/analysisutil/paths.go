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

package analysisutil

import (
	"bufio"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/funcutil"
)

// ReadIgnoreFile returns the patterns listed in the ignore file at the root of dir. Empty lines and lines starting
// with # are skipped. A missing file is not an error.
func ReadIgnoreFile(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, config.IgnoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// isExcludedOne returns true if the slash-separated relative path rel matches the pattern.
// Patterns ending with /** or / match everything under a directory. Patterns without a / are matched against the
// base name, other patterns against the whole relative path.
func isExcludedOne(rel string, pattern string) bool {
	if strings.HasSuffix(pattern, "/**") || strings.HasSuffix(pattern, "/") {
		prefix := strings.TrimSuffix(strings.TrimSuffix(pattern, "**"), "/")
		return rel == prefix || strings.HasPrefix(rel, prefix+"/")
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(rel))
		return ok
	}
	ok, _ := path.Match(strings.TrimPrefix(pattern, "/"), rel)
	return ok
}

// IsExcluded scans the exclude patterns to find out whether rel is excluded
func IsExcluded(rel string, exclude []string) bool {
	return funcutil.Exists(exclude, func(p string) bool { return isExcludedOne(rel, p) })
}

// WalkFiles calls f on every regular file under root that is neither excluded nor in one of the default ignored
// directories. f receives the path of the file and its slash-separated path relative to root.
func WalkFiles(root string, exclude []string, f func(filename string, rel string) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (funcutil.Contains(config.DefaultIgnoredDirs, d.Name()) || IsExcluded(rel, exclude)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || IsExcluded(rel, exclude) {
			return nil
		}
		return f(p, rel)
	})
}
