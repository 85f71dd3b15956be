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
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

//go:embed testdata
var testfsys embed.FS

func mustCompile(t *testing.T, cid CodeIdentifier) CodeIdentifier {
	c, err := compileRegexes(cid)
	if err != nil {
		t.Fatalf("could not compile %v: %v", cid, err)
	}
	return c
}

func checkEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := mustCompile(t, cid2)
	if !cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should be equal modulo empty fields to %v", cid1, cid2)
	}
}

func checkNotEqualOnNonEmptyFields(t *testing.T, cid1 CodeIdentifier, cid2 CodeIdentifier) {
	cid2c := mustCompile(t, cid2)
	if cid1.equalOnNonEmptyFields(cid2c) {
		t.Errorf("%v should not be equal modulo empty fields to %v", cid1, cid2)
	}
}

func TestCodeIdentifier_equalOnNonEmptyFields_selfEquals(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Method: "b"}
	checkEqualOnNonEmptyFields(t, cid1, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_emptyMatchesAny(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Receiver: "b", Method: "i"}
	cid2 := CodeIdentifier{Package: "de", Receiver: "234jbn", Method: "ef"}
	cidEmpty := CodeIdentifier{}
	checkEqualOnNonEmptyFields(t, cid1, cidEmpty)
	checkEqualOnNonEmptyFields(t, cid2, cidEmpty)
}

func TestCodeIdentifier_equalOnNonEmptyFields_oneDiff(t *testing.T) {
	cid1 := CodeIdentifier{Package: "a", Receiver: "b"}
	cid2 := CodeIdentifier{Package: "a"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkNotEqualOnNonEmptyFields(t, cid2, cid1)
}

func TestCodeIdentifier_equalOnNonEmptyFields_regexes(t *testing.T) {
	cid1 := CodeIdentifier{Package: "main", Method: "b"}
	cid1bis := CodeIdentifier{Package: "command-line-arguments", Method: "b"}
	cid2 := CodeIdentifier{Package: "(main)|(command-line-arguments)$"}
	checkEqualOnNonEmptyFields(t, cid1, cid2)
	checkEqualOnNonEmptyFields(t, cid1bis, cid2)
}

func TestCodeIdentifier_invalidRegex(t *testing.T) {
	_, err := compileRegexes(CodeIdentifier{Method: "(Info"})
	if err == nil || !strings.Contains(err.Error(), "method") {
		t.Errorf("expected an error naming the method field, got %v", err)
	}
}

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := Load(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func TestLoadOptions(t *testing.T) {
	_, cfg, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	expected := Options{
		LogLevel:              int(DebugLevel),
		OutputFormat:          MarkdownFormat,
		FailSeverityThreshold: Medium,
		IncludeSeverity:       []Severity{Critical, Medium},
		SkipDataElements:      []string{"ip_address"},
		SkipDataSinks:         []string{"python_print"},
		SkipOccurrences:       []string{"ABCDEF0123"},
		SkipVulnerabilities:   []string{"0123ABCDEF"},
		ExcludePaths:          []string{"*_test.go", "generated/**"},
		MaxAlarms:             10,
		Parallelism:           2,
	}
	if diff := cmp.Diff(expected, cfg.Options); diff != "" {
		t.Errorf("unexpected options (-want +got):\n%s", diff)
	}
	if !cfg.Verbose() {
		t.Errorf("log level 4 should be verbose")
	}
	if !cfg.SkipsOccurrence("abcdef0123") || !cfg.SkipsVulnerability("0123abcdef") {
		t.Errorf("skip hashes should be matched case-insensitively")
	}
	if cfg.ReportsSeverity(Low) || !cfg.ReportsSeverity(Medium) {
		t.Errorf("include-severity should restrict reported severities to critical and medium")
	}
	if !cfg.ExceedsMaxAlarms(11) || cfg.ExceedsMaxAlarms(10) {
		t.Errorf("max-alarms is 10")
	}
}

func TestLoadMergesBuiltinRules(t *testing.T) {
	_, cfg, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	email := cfg.FindDataElement("email")
	if email == nil {
		t.Fatalf("email data element missing")
	}
	if email.Source != SourceUser || email.Name != "Work Email" || email.Sensitivity != Low {
		t.Errorf("user rule should override the builtin email rule, got %+v", email)
	}
	if email.Match("email") || !email.Match("work_email") {
		t.Errorf("overridden email rule should only use the user patterns")
	}
	if d := cfg.FindDataElement("ssn"); d == nil || d.Source != SourceBuiltin {
		t.Errorf("builtin ssn rule should be kept, got %+v", d)
	}
	if d := cfg.FindDataElement("account_number"); d == nil || !d.Match("user_account_number") {
		t.Errorf("user data element should be loaded and compiled")
	}
	for i := 1; i < len(cfg.DataElements); i++ {
		if cfg.DataElements[i-1].ID > cfg.DataElements[i].ID {
			t.Errorf("data elements should be sorted by id")
		}
	}

	for _, d := range cfg.ActiveDataElements() {
		if d.ID == "ip_address" {
			t.Errorf("skipped data element should not be active")
		}
	}
	for _, s := range cfg.ActiveDataSinks(Python) {
		if s.ID == "python_print" {
			t.Errorf("skipped data sink should not be active")
		}
	}

	audit := cfg.FindDataSink("audit_log")
	if audit == nil {
		t.Fatalf("audit_log sink missing")
	}
	if !audit.MatchCode(CodeIdentifier{Package: "example.com/audit", Method: "Record"}) {
		t.Errorf("audit_log should match example.com/audit.Record")
	}
	if audit.MatchCode(CodeIdentifier{Package: "example.com/audit", Method: "RecordAll"}) {
		t.Errorf("audit_log should not match example.com/audit.RecordAll")
	}
	if s := cfg.FindDataSink("python_audit"); s == nil || s.Name != "python_audit" || !s.MatchName("audit.record") {
		t.Errorf("python_audit should default its name and match audit.record, got %+v", s)
	}
	if !cfg.IsSanitizer("scrub") || !cfg.IsSanitizer("mask_email") {
		t.Errorf("user and builtin sanitizers should both apply")
	}
}

func TestLoadWithoutBuiltinRules(t *testing.T) {
	_, cfg, err := loadFromTestDir("no-builtin.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.DataElements) != 1 || cfg.DataElements[0].ID != "token" {
		t.Errorf("expected only the token data element, got %d elements", len(cfg.DataElements))
	}
	if len(cfg.DataSinks) != 0 || len(cfg.Sanitizers) != 0 {
		t.Errorf("expected no builtin sink or sanitizer")
	}
	if cfg.OutputFormat != ConsoleFormat || cfg.LogLevel != int(InfoLevel) {
		t.Errorf("expected default output format and log level, got %q and %d", cfg.OutputFormat, cfg.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	for file, msg := range map[string]string{
		"bad-pattern.yaml":     "data element broken",
		"bad-sensitivity.yaml": "invalid sensitivity",
		"bad-language.yaml":    "unsupported language",
	} {
		t.Run(file, func(t *testing.T) {
			_, _, err := loadFromTestDir(file)
			if err == nil || !strings.Contains(err.Error(), msg) {
				t.Errorf("expected error containing %q, got %v", msg, err)
			}
		})
	}
	if _, err := Load("inline.yaml", []byte("options: [")); err == nil {
		t.Errorf("expected a yaml error")
	}
	if _, err := Load("inline.yaml", []byte("options:\n  output-format: pdf\n")); err == nil {
		t.Errorf("expected an output format error")
	}
}

func TestLoadCreatesReportsDir(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "piiscan.yaml")
	if err := os.WriteFile(filename, []byte("options:\n  reports-dir: reports\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ReportsDir != filepath.Join(dir, "reports") {
		t.Errorf("reports dir should be relative to the config file, got %s", cfg.ReportsDir)
	}
	if st, err := os.Stat(cfg.ReportsDir); err != nil || !st.IsDir() {
		t.Errorf("reports dir should have been created")
	}
}

func TestLoadGlobal(t *testing.T) {
	SetGlobalConfig("")
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SourceFile() != "" || len(cfg.DataElements) == 0 {
		t.Errorf("default config should have builtin rules and no source file")
	}
	SetGlobalConfig(filepath.Join("testdata", "no-builtin.yaml"))
	defer SetGlobalConfig("")
	cfg, err = LoadGlobal()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RelPath("x.yaml") != filepath.Join("testdata", "x.yaml") {
		t.Errorf("unexpected relative path %s", cfg.RelPath("x.yaml"))
	}
}

func TestBuiltinDataElements(t *testing.T) {
	cfg := NewDefault()
	for _, tc := range []struct {
		id      string
		match   []string
		noMatch []string
	}{
		{"ssn", []string{"ssn", "user_ssn", "fixture_ssn", "social_security_number"}, []string{"lessn", "ssns"}},
		{"email", []string{"email", "user_email", "mail_address"}, []string{"email_template", "emailer"}},
		{"username", []string{"username", "user_name", "self_username"}, []string{"usernames"}},
		{"first_name", []string{"first_name", "given_name"}, []string{"firstname_label"}},
		{"last_name", []string{"last_name", "surname", "lastname"}, []string{"last_names"}},
		{"age", []string{"age", "user_age"}, []string{"page", "user_agent", "message"}},
		{"credit_score", []string{"credit_score", "fixture_credit_score"}, []string{"credit"}},
		{"password", []string{"password", "db_passwd"}, []string{"password_policy"}},
	} {
		d := cfg.FindDataElement(tc.id)
		if d == nil {
			t.Errorf("missing builtin data element %s", tc.id)
			continue
		}
		for _, name := range tc.match {
			if !d.Match(name) {
				t.Errorf("%s should match %q", tc.id, name)
			}
		}
		for _, name := range tc.noMatch {
			if d.Match(name) {
				t.Errorf("%s should not match %q", tc.id, name)
			}
		}
	}
}

func TestBuiltinGoSinks(t *testing.T) {
	cfg := NewDefault()
	matches := func(cid CodeIdentifier) []string {
		var ids []string
		for _, s := range cfg.ActiveDataSinks(Go) {
			if s.MatchCode(cid) {
				ids = append(ids, s.ID)
			}
		}
		return ids
	}
	for _, tc := range []struct {
		cid      CodeIdentifier
		expected []string
	}{
		{CodeIdentifier{Receiver: "Log", Method: "Infof"}, []string{"go_logger"}},
		{CodeIdentifier{Receiver: "c", Method: "Capture"}, []string{"go_capture"}},
		{CodeIdentifier{Package: "log", Method: "Printf"}, []string{"go_log"}},
		{CodeIdentifier{Package: "log/slog", Method: "Info"}, []string{"go_log"}},
		{CodeIdentifier{Package: "fmt", Method: "Println"}, []string{"go_fmt_print"}},
		{CodeIdentifier{Package: "github.com/getsentry/sentry-go", Method: "CaptureException"}, []string{"go_sentry"}},
		{CodeIdentifier{Package: "fmt", Method: "Errorf"}, nil},
		{CodeIdentifier{Package: "fmt", Method: "Sprintf"}, nil},
		{CodeIdentifier{Package: "errors", Method: "New"}, nil},
	} {
		if diff := cmp.Diff(tc.expected, matches(tc.cid)); diff != "" {
			t.Errorf("sinks matching %v (-want +got):\n%s", tc.cid, diff)
		}
	}
}

func TestSeverity(t *testing.T) {
	if !Critical.AtLeast(Medium) || Low.AtLeast(Medium) || !Medium.AtLeast(Medium) {
		t.Errorf("unexpected severity order")
	}
	if s, err := ParseSeverity(" LOW "); err != nil || s != Low {
		t.Errorf("expected low, got %q, %v", s, err)
	}
	if _, err := ParseSeverity("high"); err == nil {
		t.Errorf("high is not a severity")
	}
	if Critical.Label() != "CRITICAL" {
		t.Errorf("unexpected label %s", Critical.Label())
	}
}

func TestLanguageOf(t *testing.T) {
	for path, lang := range map[string]Language{
		"main.go":        Go,
		"a/b/script.PY":  Python,
		"web/app.tsx":    TypeScript,
		"web/index.js":   TypeScript,
		"schema.graphql": GraphQL,
	} {
		l, ok := LanguageOf(path)
		if !ok || l != lang {
			t.Errorf("language of %s: expected %s, got %s", path, lang, l)
		}
	}
	if _, ok := LanguageOf("README.md"); ok {
		t.Errorf("markdown is not a language")
	}
	if GraphQL.Scannable() || !TypeScript.Scannable() {
		t.Errorf("only go, python and typescript are scannable")
	}
}

func TestLoadEnvFrom(t *testing.T) {
	vars := map[string]string{
		"PIISCAN_DEBUG":      "1",
		"PIISCAN_ENV":        "staging",
		"PIISCAN_SENTRY_DSN": "https://key@example.com/1",
		"GITHUB_ACTIONS":     "true",
		"BITBUCKET_COMMIT":   "",
	}
	env := LoadEnvFrom(func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	})
	expected := Environment{
		Debug:     true,
		Env:       EnvStaging,
		SentryDSN: "https://key@example.com/1",
		CI:        GithubActions,
	}
	if diff := cmp.Diff(expected, env); diff != "" {
		t.Errorf("unexpected environment (-want +got):\n%s", diff)
	}
	if e := LoadEnvFrom(func(string) (string, bool) { return "", false }); e.Env != EnvProd || e.CI != "" {
		t.Errorf("empty environment should default to prod without CI, got %+v", e)
	}
}

func TestLogGroup(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogGroupAt(WarnLevel)
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)
	l.Infof("hidden")
	l.Warnf("shown %d", 1)
	l.Errorf("shown %d", 2)
	if got := buf.String(); got != "[WARN] shown 1\n[ERROR] shown 2\n" {
		t.Errorf("unexpected log output %q", got)
	}

	buf.Reset()
	l.With("app%1.py: ").Warnf("line %d", 3)
	if got := buf.String(); got != "[WARN] app%1.py: line 3\n" {
		t.Errorf("unexpected prefixed output %q", got)
	}
}

func TestUpdate(t *testing.T) {
	cfg := NewDefault()
	err := cfg.Update(func(o *Options) {
		o.SkipDataSinks = []string{" Go_Logger "}
		o.SkipVulnerabilities = []string{"abc123"}
		o.FailSeverityThreshold = "MEDIUM"
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.FailSeverityThreshold != Medium {
		t.Errorf("threshold should be parsed, got %q", cfg.FailSeverityThreshold)
	}
	if !cfg.SkipsVulnerability("ABC123") {
		t.Errorf("vulnerability hash should be skipped")
	}
	for _, s := range cfg.ActiveDataSinks(Go) {
		if s.ID == "go_logger" {
			t.Errorf("go_logger should be skipped")
		}
	}
	if err := cfg.Update(func(o *Options) { o.OutputFormat = "pdf" }); err == nil {
		t.Errorf("unknown output format should be rejected")
	}
}
