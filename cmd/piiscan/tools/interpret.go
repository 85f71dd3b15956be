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

package tools

import "regexp"

// Captures errors happening when the configuration file cannot be used
var regexConfig = regexp.MustCompile("failed to load config file")

// Captures unknown severities in flags or in the configuration
var regexSeverity = regexp.MustCompile("unknown severity")

// Captures the kind of error that happen when you put a flag at the end instead of the directory
var regexFlagAfterDir = regexp.MustCompile(`expected one directory, got \[\S+ -\w`)

// Captures errors of git repositories without an origin, or with a detached head outside of a CI service
var regexGit = regexp.MustCompile("failed to access git remote origin|failed to get git (branch|commit)")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	switch {
	case regexFlagAfterDir.MatchString(errMsg):
		return "all command line flags should be before the directory to scan"
	case regexSeverity.MatchString(errMsg):
		return "severities are critical, medium and low"
	case regexConfig.MatchString(errMsg):
		return "check the path of the config file, or run without -config to use the builtin rules"
	case regexGit.MatchString(errMsg):
		return "set PIISCAN_GIT_BRANCH and PIISCAN_GIT_COMMIT when the repository has no origin or no branch"
	}
	return ""
}
