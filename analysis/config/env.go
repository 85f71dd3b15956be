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
	"os"
	"strconv"
	"strings"
)

// DeployEnv is the deployment environment reported with captured errors
type DeployEnv string

const (
	EnvDev     DeployEnv = "dev"
	EnvStaging DeployEnv = "staging"
	EnvProd    DeployEnv = "prod"
)

// CIType is a continuous integration service the scanner can run in
type CIType string

const (
	AzurePipelines     CIType = "azure-pipelines"
	BitbucketPipelines CIType = "bitbucket-pipelines"
	Buildkite          CIType = "buildkite"
	CircleCI           CIType = "circleci"
	GithubActions      CIType = "github-actions"
	GitlabCI           CIType = "gitlab-ci"
	Jenkins            CIType = "jenkins"
)

// Environment holds the settings read from environment variables
type Environment struct {
	Debug     bool
	Env       DeployEnv
	SentryDSN string
	// GitBranch and GitCommit are the last fallback when the branch and commit can be obtained neither from git nor
	// from the CI service
	GitBranch string
	GitCommit string
	CI        CIType
}

// LoadEnv reads the environment with os.LookupEnv
func LoadEnv() Environment {
	return LoadEnvFrom(os.LookupEnv)
}

// LoadEnvFrom reads the environment through lookup
func LoadEnvFrom(lookup func(string) (string, bool)) Environment {
	str := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	flag := func(key string) bool {
		v := str(key)
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		// CI services set some of these variables to values that are not booleans (urls, hashes)
		return err != nil || b
	}
	e := Environment{
		Debug:     flag("PIISCAN_DEBUG"),
		SentryDSN: str("PIISCAN_SENTRY_DSN"),
		GitBranch: str("PIISCAN_GIT_BRANCH"),
		GitCommit: str("PIISCAN_GIT_COMMIT"),
	}
	switch DeployEnv(str("PIISCAN_ENV")) {
	case EnvDev:
		e.Env = EnvDev
	case EnvStaging:
		e.Env = EnvStaging
	default:
		e.Env = EnvProd
	}
	switch {
	case flag("AZURE_PIPELINES"):
		e.CI = AzurePipelines
	case flag("BITBUCKET_COMMIT"):
		e.CI = BitbucketPipelines
	case flag("BUILDKITE_COMMIT"):
		e.CI = Buildkite
	case flag("CIRCLECI"):
		e.CI = CircleCI
	case flag("GITHUB_ACTIONS"):
		e.CI = GithubActions
	case flag("GITLAB_CI"):
		e.CI = GitlabCI
	case flag("JENKINS_URL"):
		e.CI = Jenkins
	}
	return e
}
