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
Package config provides the configuration of the scanner: its options and the rules it applies.

Use [LoadFromFile](filename) to load a configuration from a specific filename, or [Load] to parse the contents of a
configuration file.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file is in yaml format. The top-level fields are the fields of the [Config] struct type.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  fail-severity-threshold: medium
	  skip-data-elements: [ip_address]

	data-elements:
	  - id: account_number
	    name: Account Number
	    sensitivity: critical
	    include-patterns:
	      - (^|_)account_(number|num)($|_)

	data-sinks:
	  - id: audit_log
	    name: Audit Log
	    language: go
	    match-rules:
	      - package: example.com/audit
	        method: ^Record$

# Builtin rules

The scanner comes with builtin data elements, data sinks and sanitizers (see builtin.yaml). They are merged with the
rules of the config file, and a rule of the config file replaces the builtin rule with the same id. Set the option
disable-builtin-rules to use only the rules of the config file.

# Identifying code elements

Go data sinks use [CodeIdentifier] to identify functions and methods. Each field of a code identifier is a regex, and an
empty field matches anything. Python and TypeScript data sinks use clues: regexes over the dotted name of the callee,
after import aliases have been resolved.
*/
package config
