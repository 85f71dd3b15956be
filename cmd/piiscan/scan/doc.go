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

/*
Package scan implements the front-end to the piiscan scanner, which looks for sensitive data sent to logs, error
trackers and other data sinks in the Go, Python and TypeScript files of a directory.

Usage:

	piiscan scan [flags] [directory]

The flags are:

	-config path                  a path to the configuration file with data elements, data sinks and sanitizers

	-verbose=false                setting verbose mode, overrides config file options if set

	-output-format format         console, json, markdown or sarif

	-fail-severity-threshold sev  exit with status 1 when a vulnerability at or above sev is found
*/
package scan
