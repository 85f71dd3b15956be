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

package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// FlushTimeout bounds the time spent sending buffered events when the program exits
const FlushTimeout = 2 * time.Second

// Sentry is a Capturer that sends errors to Sentry. The id becomes the "id" tag of the event, the fields become the
// "fields" context and the arguments the "args" context.
type Sentry struct {
	Hub *sentry.Hub
}

// NewSentryHub returns a hub with a client for the dsn. An empty dsn returns a hub whose client drops all events.
func NewSentryHub(dsn string, environment string, release string) (*sentry.Hub, error) {
	return newSentryHub(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
}

func newSentryHub(options sentry.ClientOptions) (*sentry.Hub, error) {
	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, fmt.Errorf("could not create sentry client: %w", err)
	}
	return sentry.NewHub(client, sentry.NewScope()), nil
}

// Capture sends err to Sentry with its context, in a scope of its own
func (s Sentry) Capture(err error, id string, fields map[string]any, args ...string) {
	if s.Hub == nil || err == nil {
		return
	}
	s.Hub.WithScope(func(scope *sentry.Scope) {
		if id != "" {
			scope.SetTag("id", id)
		}
		if len(fields) > 0 {
			scope.SetContext("fields", sentry.Context(fields))
		}
		if len(args) > 0 {
			ctx := sentry.Context{}
			for i, a := range args {
				ctx[fmt.Sprintf("%d", i)] = a
			}
			scope.SetContext("args", ctx)
		}
		s.Hub.CaptureException(err)
	})
}

// Flush waits until the buffered events are sent, or FlushTimeout
func (s Sentry) Flush() bool {
	if s.Hub == nil {
		return true
	}
	return s.Hub.Flush(FlushTimeout)
}
