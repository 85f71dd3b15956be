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

// Piivet runs the sensitive data leak analyzer on Go packages, as a standalone vet tool:
//
//	piivet ./...
//	go vet -vettool=$(which piivet) ./...
//
// The rules are read from the file named by the PIISCAN_CONFIG environment variable, the builtin rules are used if
// it is not set.
package main

import (
	"os"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/analysis/leaks"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	config.SetGlobalConfig(os.Getenv("PIISCAN_CONFIG"))
	singlechecker.Main(leaks.Analyzer)
}
