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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/info"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/rules"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/scan"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/suppress"
	"github.com/awslabs/ar-go-pii/cmd/piiscan/tools"
)

const usage = `piiscan: sensitive data leak scanner
Usage:
  piiscan [command] [options] [directory]
Commands:
  - scan: scans the Go, Python and TypeScript files of a directory for sensitive data sent to data sinks
  - rules: lists the data elements, data sinks and sanitizers of the configuration
  - suppress: inserts ignore directives above the Go statements with potential data leaks
  - info: prints the repository information and file statistics of a directory
Examples:
  Scan the current directory: piiscan scan .
  Write a markdown report and preview it: piiscan scan -output-format markdown -preview .
  Fail on critical findings: piiscan scan -config piiscan.yaml -fail-severity-threshold critical src`

//gocyclo:ignore
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(config.Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "scan":
		flags, err := scan.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := scan.Run(ctx, flags); err != nil {
			if errors.Is(err, scan.ErrThresholdExceeded) {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				stop()
				os.Exit(1)
			}
			errExit(err)
		}
	case "rules":
		flags, err := tools.NewCommonFlags("rules", args, rules.Usage)
		if err != nil {
			errExit(err)
		}
		if err := rules.Run(os.Stdout, flags); err != nil {
			errExit(err)
		}
	case "suppress":
		flags, err := suppress.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if _, err := suppress.Run(ctx, os.Stdout, flags); err != nil {
			errExit(err)
		}
	case "info":
		flags, err := tools.NewCommonFlags("info", args, info.Usage)
		if err != nil {
			errExit(err)
		}
		if err := info.Run(ctx, os.Stdout, flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
