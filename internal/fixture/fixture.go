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

// Package fixture hands sensitive looking values to logging and error capture calls. It is scanned by the tests of the
// leak scanner, and its functions are exercised directly by its own tests.
package fixture

import (
	"errors"
	"fmt"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/telemetry"
)

const (
	Username    = "username"
	Email       = "email"
	SSN         = "ssn"
	Age         = 20
	FirstName   = "first_name"
	LastName    = "last_name"
	CreditScore = 800
)

// Logger is the logging facility used by DoSomethingElse
type Logger interface {
	Infof(format string, v ...any)
}

// Log is the logger of the package
var Log = config.NewLogGroupAt(config.InfoLevel)

func init() {
	Log.Infof(FirstName)
}

// DoSomething captures an error with the user's details as context
func DoSomething(c telemetry.Capturer) {
	c.Capture(
		errors.New(Username),
		Username,
		map[string]any{
			"name":         Username,
			"email":        Email,
			"ssn":          SSN,
			"age":          Age,
			"first_name":   FirstName,
			"last_name":    LastName,
			"credit_score": CreditScore,
			"foo":          Age,
		},
		SSN,
		fmt.Sprintf("%v", Username),
		"this is username"+Username,
	)
}

// DoSomethingElse logs the username. If logging panics, the failure is captured and the panic continues.
func DoSomethingElse(c telemetry.Capturer, l Logger) {
	defer func() {
		if r := recover(); r != nil {
			c.Capture(telemetry.ErrorFromPanic(r), "", nil)
			panic(r)
		}
	}()
	l.Infof(Username)
}
