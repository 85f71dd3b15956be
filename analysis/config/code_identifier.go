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
	"fmt"
	"regexp"
)

// A CodeIdentifier identifies a Go function or method: the package path, the type of the receiver and the name of
// the method. In a configuration file each field is a regex; an empty field matches anything.
type CodeIdentifier struct {
	Package  string `yaml:"package,omitempty"`
	Receiver string `yaml:"receiver,omitempty"`
	Method   string `yaml:"method,omitempty"`

	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	packageRegex  *regexp.Regexp
	receiverRegex *regexp.Regexp
	methodRegex   *regexp.Regexp
}

// IsEmpty returns true when no field of the identifier is set.
func (cid CodeIdentifier) IsEmpty() bool {
	return cid.Package == "" && cid.Receiver == "" && cid.Method == ""
}

func (cid CodeIdentifier) String() string {
	s := cid.Method
	if cid.Receiver != "" {
		s = "(" + cid.Receiver + ")." + s
	}
	if cid.Package != "" {
		s = cid.Package + "." + s
	}
	return s
}

// compileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or returns an error naming the field that could not be compiled.
func compileRegexes(cid CodeIdentifier) (CodeIdentifier, error) {
	packageRegex, err := regexp.Compile(cid.Package)
	if err != nil {
		return cid, fmt.Errorf("invalid package regex %q: %w", cid.Package, err)
	}
	receiverRegex, err := regexp.Compile(cid.Receiver)
	if err != nil {
		return cid, fmt.Errorf("invalid receiver regex %q: %w", cid.Receiver, err)
	}
	methodRegex, err := regexp.Compile(cid.Method)
	if err != nil {
		return cid, fmt.Errorf("invalid method regex %q: %w", cid.Method, err)
	}
	cid.computedRegexs = &codeIdentifierRegex{
		packageRegex:  packageRegex,
		receiverRegex: receiverRegex,
		methodRegex:   methodRegex,
	}
	return cid, nil
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either matched by the corresponding
// argument's field, or the argument's field is empty
func (cid CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Package == "" || cidRef.computedRegexs.packageRegex.MatchString(cid.Package)) &&
			(cidRef.Receiver == "" || cidRef.computedRegexs.receiverRegex.MatchString(cid.Receiver)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method))
	}
	return (cidRef.Package == "" || cid.Package == cidRef.Package) &&
		(cidRef.Receiver == "" || cid.Receiver == cidRef.Receiver) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method)
}
