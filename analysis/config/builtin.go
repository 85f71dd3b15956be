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
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed builtin.yaml
var builtinYAML []byte

type rulesFile struct {
	DataElements []DataElement `yaml:"data-elements"`
	DataSinks    []DataSink    `yaml:"data-sinks"`
	Sanitizers   []Sanitizer   `yaml:"sanitizers"`
}

// builtinRules parses the builtin rules. Each call returns fresh rules that the caller can compile and modify.
func builtinRules() (rulesFile, error) {
	var rules rulesFile
	if err := yaml.Unmarshal(builtinYAML, &rules); err != nil {
		return rules, fmt.Errorf("could not parse builtin rules: %w", err)
	}
	for i := range rules.DataElements {
		rules.DataElements[i].Source = SourceBuiltin
	}
	for i := range rules.DataSinks {
		rules.DataSinks[i].Source = SourceBuiltin
	}
	for i := range rules.Sanitizers {
		rules.Sanitizers[i].Source = SourceBuiltin
	}
	return rules, nil
}
