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

// Package formatutil manipulates string colors and other formatting operations.
package formatutil

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	Bold    = Color(lipgloss.NewStyle().Bold(true))
	Faint   = Color(lipgloss.NewStyle().Faint(true))
	Italic  = Color(lipgloss.NewStyle().Italic(true))
	Red     = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")))
	Green   = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")))
	Yellow  = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3")))
	Purple  = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")))
	Magenta = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")))
	Cyan    = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")))
	White   = Color(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")))
)

// 0 detect, 1 forced on, 2 forced off
var colorMode atomic.Int32

// SetColors forces colors on or off, regardless of whether the standard output is a terminal.
func SetColors(enabled bool) {
	if enabled {
		colorMode.Store(1)
	} else {
		colorMode.Store(2)
	}
}

// ColorsEnabled returns true if strings are colored
func ColorsEnabled() bool {
	switch colorMode.Load() {
	case 1:
		return true
	case 2:
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// Color returns a function that renders its arguments with style when colors are enabled, and prints them as is
// otherwise.
func Color(style lipgloss.Style) func(...interface{}) string {
	result := func(args ...interface{}) string {
		if ColorsEnabled() {
			return style.Render(fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
	return result
}

// Sanitize is a simple sanitizer that removes all escape sequences
func Sanitize(s string) string {
	r := fmt.Sprintf("%q", s)
	if len(r) >= 2 {
		return r[1 : len(r)-1]
	} else {
		return r
	}
}

// SanitizeRepr is a simple sanitizer that removes all escape sequences from the string representation of an object
func SanitizeRepr(s fmt.Stringer) string {
	return Sanitize(s.String())
}
