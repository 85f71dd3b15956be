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

const (
	// Version is the version of the scanner
	Version = "v0.4.0"
	// IgnoreDirective is the comment directive that suppresses the vulnerabilities of the line it annotates, or of the
	// line that follows it
	IgnoreDirective = "piiscan:ignore"
	// IgnoreFile is the name of the file listing glob patterns of paths that are not scanned
	IgnoreFile = ".piiscanignore"
	// DefaultReportPrefix is the prefix of generated report file names
	DefaultReportPrefix = "piiscan"
)

// DefaultIgnoredDirs are never scanned
var DefaultIgnoredDirs = []string{".git", "node_modules", "vendor", ".venv", "venv", "__pycache__"}
