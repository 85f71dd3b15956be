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

// Package gitinfo describes the scanned directory: its git remote, branch and commit, and how many files and lines
// of each language it contains.
package gitinfo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/analysisutil"
)

// Provider is a git hosting service
type Provider string

const (
	GitHub    Provider = "github"
	GitLab    Provider = "gitlab"
	Bitbucket Provider = "bitbucket"
)

// FileStats counts files and lines
type FileStats struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
}

// DirectoryInfo describes a scanned directory
type DirectoryInfo struct {
	Path        string
	RemoteURL   string
	RepoName    string
	Branch      string
	Commit      string
	Provider    Provider
	PerLanguage map[config.Language]FileStats
	Total       FileStats
}

// ParseRemoteURL normalizes a git remote url into a browsable url and returns it with the name of the repository.
func ParseRemoteURL(remote string) (string, string, error) {
	remote = strings.TrimSpace(remote)
	switch {
	case strings.HasPrefix(remote, "file://"):
		u := strings.TrimSuffix(strings.TrimRight(remote, "/"), ".git")
		return u, strings.TrimPrefix(u, "file://"), nil
	case strings.Contains(remote, "://"):
		parsed, err := url.Parse(remote)
		if err != nil {
			return "", "", fmt.Errorf("failed to parse git remote url %s: %w", remote, err)
		}
		if parsed.Hostname() == "" {
			return "", "", fmt.Errorf("failed to get domain from git remote url %s", remote)
		}
		scheme := parsed.Scheme
		if scheme == "ssh" || scheme == "git" {
			scheme = "https"
		}
		repo := trimRepoName(parsed.Path)
		host := parsed.Hostname()
		if port := parsed.Port(); port != "" {
			host += ":" + port
		}
		return fmt.Sprintf("%s://%s/%s", scheme, host, repo), repo, nil
	case strings.HasPrefix(remote, "git@"):
		parts := strings.Split(strings.TrimPrefix(remote, "git@"), ":")
		if len(parts) != 2 {
			return "", "", fmt.Errorf("failed to parse git remote url %s", remote)
		}
		repo := trimRepoName(parts[1])
		return fmt.Sprintf("https://%s/%s", parts[0], repo), repo, nil
	default:
		return "", "", fmt.Errorf("unsupported git remote url scheme: %s", remote)
	}
}

func trimRepoName(p string) string {
	return strings.TrimSuffix(strings.Trim(p, "/"), ".git")
}

// ProviderOf guesses the hosting service from the remote url
func ProviderOf(remoteURL string) Provider {
	switch {
	case strings.Contains(remoteURL, "github"):
		return GitHub
	case strings.Contains(remoteURL, "gitlab"):
		return GitLab
	case strings.Contains(remoteURL, "bitbucket"):
		return Bitbucket
	default:
		return ""
	}
}

// URLLink returns a link to lines start to end of the file at path in the commit, for known providers. For other
// providers, it returns the remote url.
func URLLink(provider Provider, remoteURL string, commit string, path string, start int, end int) string {
	switch provider {
	case GitHub:
		return fmt.Sprintf("%s/blob/%s/%s#L%d-L%d", remoteURL, commit, path, start, end)
	case GitLab:
		return fmt.Sprintf("%s/-/blob/%s/%s#L%d-%d", remoteURL, commit, path, start, end)
	case Bitbucket:
		return fmt.Sprintf("%s/src/%s/%s#lines-%d:%d", remoteURL, commit, path, start, end)
	default:
		return remoteURL
	}
}

// Link returns the link to lines of a file of the directory
func (d *DirectoryInfo) Link(path string, start int, end int) string {
	return URLLink(d.Provider, d.RemoteURL, d.Commit, path, start, end)
}

// Load describes the directory dir. Excluded paths are not counted in the file statistics.
func Load(ctx context.Context, dir string, exclude []string, env config.Environment) (*DirectoryInfo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info := &DirectoryInfo{Path: abs, PerLanguage: map[config.Language]FileStats{}}
	for _, l := range config.Languages {
		info.PerLanguage[l] = FileStats{}
	}
	if err := info.countFiles(exclude); err != nil {
		return nil, err
	}

	if st, err := os.Stat(filepath.Join(abs, ".git")); err != nil || !st.IsDir() {
		info.RemoteURL = "file://" + strings.TrimPrefix(filepath.ToSlash(abs), "/")
		info.RepoName = "local/" + filepath.Base(abs)
		info.Branch = "main"
		info.Commit = "HEAD"
		return info, nil
	}

	remote, err := git(ctx, abs, "remote", "get-url", "origin")
	if err != nil {
		return nil, fmt.Errorf("failed to access git remote origin: %w", err)
	}
	info.RemoteURL, info.RepoName, err = ParseRemoteURL(strings.ToLower(remote))
	if err != nil {
		return nil, err
	}
	info.Provider = ProviderOf(info.RemoteURL)

	branch, err := git(ctx, abs, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil || branch == "HEAD" {
		branch = ciBranch(env)
	}
	if branch == "" {
		return nil, fmt.Errorf("failed to get git branch")
	}
	info.Branch = branch

	commit, err := git(ctx, abs, "rev-parse", "HEAD")
	if err != nil {
		commit = ciCommit(env)
	}
	if commit == "" {
		return nil, fmt.Errorf("failed to access git commit hash")
	}
	info.Commit = commit
	return info, nil
}

func (d *DirectoryInfo) countFiles(exclude []string) error {
	ignored, err := analysisutil.ReadIgnoreFile(d.Path)
	if err != nil {
		return err
	}
	return analysisutil.WalkFiles(d.Path, append(ignored, exclude...), func(filename string, _ string) error {
		lang, ok := config.LanguageOf(filename)
		if !ok {
			return nil
		}
		b, err := os.ReadFile(filename)
		if err != nil {
			return nil
		}
		lines := bytes.Count(b, []byte{'\n'})
		s := d.PerLanguage[lang]
		s.Files++
		s.Lines += lines
		d.PerLanguage[lang] = s
		d.Total.Files++
		d.Total.Lines += lines
		return nil
	})
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func ciBranch(env config.Environment) string {
	switch env.CI {
	case config.BitbucketPipelines:
		return firstEnv("BITBUCKET_BRANCH", "BITBUCKET_TAG")
	case config.Buildkite:
		return firstEnv("BUILDKITE_BRANCH", "BUILDKITE_TAG")
	case config.CircleCI:
		return firstEnv("CIRCLE_BRANCH", "CIRCLE_TAG")
	case config.GithubActions:
		return firstEnv("GITHUB_HEAD_REF", "GITHUB_REF_NAME")
	case config.GitlabCI:
		return firstEnv("CI_COMMIT_REF_NAME", "CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	default:
		return env.GitBranch
	}
}

func ciCommit(env config.Environment) string {
	switch env.CI {
	case config.BitbucketPipelines:
		return firstEnv("BITBUCKET_COMMIT")
	case config.Buildkite:
		return firstEnv("BUILDKITE_COMMIT")
	case config.CircleCI:
		return firstEnv("CIRCLE_SHA1")
	case config.GithubActions:
		return firstEnv("GITHUB_SHA")
	case config.GitlabCI:
		return firstEnv("CI_COMMIT_SHA")
	default:
		return env.GitCommit
	}
}
