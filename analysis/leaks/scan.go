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

package leaks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/analysisutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
	"golang.org/x/sync/errgroup"
)

// Scanner scans the files of a directory
type Scanner struct {
	Config *config.Config
	Dir    *gitinfo.DirectoryInfo
	Logger *config.LogGroup

	// Errors are the errors of the files that could not be scanned in the last run. They do not stop the scan.
	Errors []*ScanError
	mu     sync.Mutex
}

// Scan scans the directory dir with the config cfg
func Scan(ctx context.Context, cfg *config.Config, dir string) (*Results, error) {
	s, err := NewScanner(ctx, cfg, dir)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// NewScanner returns a scanner of the directory dir. The git information of the directory is read from the
// environment and the git repository, if dir is one.
func NewScanner(ctx context.Context, cfg *config.Config, dir string) (*Scanner, error) {
	info, err := gitinfo.Load(ctx, dir, cfg.ExcludePaths, config.LoadEnv())
	if err != nil {
		return nil, fmt.Errorf("could not read directory information: %w", err)
	}
	return &Scanner{Config: cfg, Dir: info, Logger: config.NewLogGroup(cfg)}, nil
}

type sourceFile struct {
	path string
	rel  string
	lang config.Language
}

// Run scans the files of the directory in parallel and returns the sorted findings. Files that cannot be parsed are
// skipped and listed in s.Errors; errors of the scan database abort the scan and are returned as a *ScanError flagged
// for reporting.
func (s *Scanner) Run(ctx context.Context) (*Results, error) {
	if s.Logger == nil {
		s.Logger = config.NewLogGroup(s.Config)
	}
	s.Errors = nil
	start := time.Now()

	ignored, err := analysisutil.ReadIgnoreFile(s.Dir.Path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", config.IgnoreFile, err)
	}
	var files []sourceFile
	err = analysisutil.WalkFiles(s.Dir.Path, append(ignored, s.Config.ExcludePaths...),
		func(filename string, rel string) error {
			if lang, ok := config.LanguageOf(filename); ok && lang.Scannable() {
				files = append(files, sourceFile{path: filename, rel: rel, lang: lang})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("could not list files of %s: %w", s.Dir.Path, err)
	}
	s.Logger.Infof("Scanning %d files in %s", len(files), s.Dir.Path)

	store, err := OpenStore(ctx, s.Config.Database)
	if err != nil {
		return nil, &ScanError{Path: s.Config.Database, Err: err, Report: true}
	}
	defer func() {
		if err := store.Close(); err != nil {
			s.Logger.Warnf("Could not close scan database: %v", err)
		}
	}()

	parallelism := s.Config.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := s.scanFile(gctx, store, f)
			if err == nil {
				return nil
			}
			var scanErr *ScanError
			if errors.As(err, &scanErr) && !scanErr.Report {
				s.addError(scanErr)
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results, err := store.Results(ctx)
	if err != nil {
		return nil, &ScanError{Path: store.Path(), Err: err, Report: true}
	}
	results.finalize(s.Config)
	s.Logger.Infof("Scanned %d files in %.2fs: %d data element occurrences, %d vulnerabilities", len(files),
		time.Since(start).Seconds(), len(results.Occurrences), len(results.Vulnerabilities))
	return results, nil
}

func (s *Scanner) addError(err *ScanError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, err)
	if !s.Config.SilenceWarn {
		s.Logger.Warnf("%v", err)
	}
}

func (s *Scanner) scanFile(ctx context.Context, out recorder, f sourceFile) error {
	s.Logger.Debugf("Scanning %s", f.rel)
	source, err := os.ReadFile(f.path)
	if err != nil {
		return &ScanError{Path: f.rel, Err: err}
	}
	fs := newFileScanner(s.Config, s.Dir, s.Logger.With(f.rel+": "), f.lang, f.path, f.rel, source, out)
	switch f.lang {
	case config.Go:
		err = scanGoSource(fs)
	default:
		err = scanTreeSource(ctx, fs)
	}
	switch {
	case err == nil:
		return nil
	case fs.err != nil:
		// the recorder failed
		return &ScanError{Path: f.rel, Err: err, Report: true}
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return &ScanError{Path: f.rel, Err: err}
	}
}
