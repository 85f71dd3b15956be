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
	"os"
	"path"
	"sort"
	"strings"

	"github.com/awslabs/ar-go-pii/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig. If no file has been set, the default
// configuration is returned.
func LoadGlobal() (*Config, error) {
	if configFile == "" {
		return NewDefault(), nil
	}
	return LoadFromFile(configFile)
}

// Config contains the options of the scanner and the rules it applies: the data elements it looks for, the data sinks
// that must not receive them and the sanitizers that make data safe.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// DataElements lists the user data elements. After loading, it also contains the builtin data elements that have
	// not been overridden.
	DataElements []DataElement `yaml:"data-elements"`

	// DataSinks lists the user data sinks, merged with builtin sinks like DataElements
	DataSinks []DataSink `yaml:"data-sinks"`

	// Sanitizers lists the sanitizers, builtin sanitizers included
	Sanitizers []Sanitizer `yaml:"sanitizers"`

	skipDataElements    map[string]bool
	skipDataSinks       map[string]bool
	skipOccurrences     map[string]bool
	skipVulnerabilities map[string]bool
}

// Options are the scanner options
type Options struct {
	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// OutputFormat is the format of the report. Defaults to console.
	OutputFormat OutputFormat `yaml:"output-format"`

	// OutputFilename is the name of the report file. If empty, a timestamped name is generated for the formats that
	// write a file.
	OutputFilename string `yaml:"output-filename"`

	// ReportsDir is the directory where report files are written. It is created when the config is loaded.
	ReportsDir string `yaml:"reports-dir"`

	// FailSeverityThreshold makes the scan fail when a vulnerability at or above this severity is found
	FailSeverityThreshold Severity `yaml:"fail-severity-threshold"`

	// IncludeSeverity restricts the reported vulnerabilities to those severities. Empty means all.
	IncludeSeverity []Severity `yaml:"include-severity"`

	// SkipDataElements lists the ids of data elements that are not scanned for
	SkipDataElements []string `yaml:"skip-data-elements"`

	// SkipDataSinks lists the ids of data sinks that are not scanned for
	SkipDataSinks []string `yaml:"skip-data-sinks"`

	// SkipOccurrences lists the hashes of data element occurrences that are not reported
	SkipOccurrences []string `yaml:"skip-occurrences"`

	// SkipVulnerabilities lists the hashes of vulnerabilities that are not reported
	SkipVulnerabilities []string `yaml:"skip-vulnerabilities"`

	// ExcludePaths lists glob patterns of paths, relative to the scanned directory, that are not scanned
	ExcludePaths []string `yaml:"exclude-paths"`

	// MaxAlarms sets a limit for the number of vulnerabilities reported.  If MaxAlarms > 0, then at most
	// MaxAlarms will be reported. Otherwise, if MaxAlarms <= 0, it is ignored.
	MaxAlarms int `yaml:"max-alarms"`

	// Parallelism is the number of files scanned concurrently. If <= 0, the number of CPUs is used.
	Parallelism int `yaml:"parallelism"`

	// Database is the path of the scan database. If empty, a temporary database is used and removed after the scan.
	Database string `yaml:"database"`

	// DisableBuiltinRules can be set to true to use only the rules of the config file
	DisableBuiltinRules bool `yaml:"disable-builtin-rules"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns the default config: default options and the builtin rules.
func NewDefault() *Config {
	cfg := &Config{
		Options: Options{
			LogLevel:     int(InfoLevel),
			OutputFormat: ConsoleFormat,
		},
	}
	if err := cfg.finalize(); err != nil {
		// the builtin rules are tested, this cannot happen unless they are broken
		panic(fmt.Sprintf("invalid builtin rules: %v", err))
	}
	return cfg
}

// LoadFromFile reads a configuration from a file
func LoadFromFile(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Load(filename, b)
}

// Load parses the yaml configuration in b. filename is used to resolve relative paths in the config.
func Load(filename string, b []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}
	cfg.sourceFile = filename
	for i := range cfg.DataElements {
		if cfg.DataElements[i].Source == "" {
			cfg.DataElements[i].Source = SourceUser
		}
	}
	for i := range cfg.DataSinks {
		if cfg.DataSinks[i].Source == "" {
			cfg.DataSinks[i].Source = SourceUser
		}
	}
	for i := range cfg.Sanitizers {
		if cfg.Sanitizers[i].Source == "" {
			cfg.Sanitizers[i].Source = SourceUser
		}
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	if cfg.ReportsDir != "" {
		if err := setReportsDir(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// finalize sets the option defaults, merges the builtin rules and compiles all the patterns
//
//gocyclo:ignore
func (c *Config) finalize() error {
	if err := c.finalizeOptions(); err != nil {
		return err
	}

	if !c.DisableBuiltinRules {
		builtin, err := builtinRules()
		if err != nil {
			return err
		}
		c.DataElements = mergeByID(builtin.DataElements, c.DataElements,
			func(d DataElement) string { return d.ID })
		c.DataSinks = mergeByID(builtin.DataSinks, c.DataSinks,
			func(s DataSink) string { return s.ID })
		c.Sanitizers = append(builtin.Sanitizers, c.Sanitizers...)
	}

	for i := range c.DataElements {
		if err := c.DataElements[i].compile(); err != nil {
			return err
		}
	}
	for i := range c.DataSinks {
		if err := c.DataSinks[i].compile(); err != nil {
			return err
		}
	}
	for i := range c.Sanitizers {
		if err := c.Sanitizers[i].compile(); err != nil {
			return err
		}
	}
	return nil
}

// Update applies f to the options and recomputes the settings derived from them. The command line uses it to
// override the options of a config file.
func (c *Config) Update(f func(o *Options)) error {
	f(&c.Options)
	return c.finalizeOptions()
}

func (c *Config) finalizeOptions() error {
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if c.LogLevel == 0 {
		c.LogLevel = int(InfoLevel)
	}
	format, err := ParseOutputFormat(string(c.OutputFormat))
	if err != nil {
		return err
	}
	c.OutputFormat = format

	if c.FailSeverityThreshold != "" {
		sev, err := ParseSeverity(string(c.FailSeverityThreshold))
		if err != nil {
			return fmt.Errorf("fail-severity-threshold: %w", err)
		}
		c.FailSeverityThreshold = sev
	}
	for i, s := range c.IncludeSeverity {
		sev, err := ParseSeverity(string(s))
		if err != nil {
			return fmt.Errorf("include-severity: %w", err)
		}
		c.IncludeSeverity[i] = sev
	}

	// Skip ids are case-insensitive, hashes are upper-case hex
	funcutil.MapInPlace(c.SkipDataElements, normalizeID)
	funcutil.MapInPlace(c.SkipDataSinks, normalizeID)
	funcutil.MapInPlace(c.SkipOccurrences, strings.ToUpper)
	funcutil.MapInPlace(c.SkipVulnerabilities, strings.ToUpper)
	c.skipDataElements = toSet(c.SkipDataElements)
	c.skipDataSinks = toSet(c.SkipDataSinks)
	c.skipOccurrences = toSet(c.SkipOccurrences)
	c.skipVulnerabilities = toSet(c.SkipVulnerabilities)
	return nil
}

// mergeByID returns the builtin rules that are not overridden by a user rule with the same id, followed by the user
// rules, sorted by id.
func mergeByID[T any](builtin []T, user []T, id func(T) string) []T {
	overridden := map[string]bool{}
	for _, x := range user {
		overridden[id(x)] = true
	}
	var merged []T
	for _, x := range builtin {
		if !overridden[id(x)] {
			merged = append(merged, x)
		}
	}
	merged = append(merged, user...)
	sort.SliceStable(merged, func(i, j int) bool { return id(merged[i]) < id(merged[j]) })
	return merged
}

func normalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toSet(a []string) map[string]bool {
	m := make(map[string]bool, len(a))
	funcutil.Iter(a, func(s string) { m[s] = true })
	return m
}

func setReportsDir(c *Config) error {
	if !path.IsAbs(c.ReportsDir) && c.sourceFile != "" {
		c.ReportsDir = c.RelPath(c.ReportsDir)
	}
	err := os.MkdirAll(c.ReportsDir, 0750)
	if err != nil {
		return fmt.Errorf("could not create directory %s: %w", c.ReportsDir, err)
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// SourceFile returns the name of the file the config has been loaded from, empty for the default config
func (c Config) SourceFile() string {
	return c.sourceFile
}

// Below are functions used to query the configuration on specific facts

// ActiveDataElements returns the data elements that are enabled and not skipped
func (c *Config) ActiveDataElements() []*DataElement {
	var res []*DataElement
	for i := range c.DataElements {
		d := &c.DataElements[i]
		if d.Enabled() && !c.skipDataElements[normalizeID(d.ID)] {
			res = append(res, d)
		}
	}
	return res
}

// ActiveDataSinks returns the data sinks of the language that are not skipped
func (c *Config) ActiveDataSinks(lang Language) []*DataSink {
	var res []*DataSink
	for i := range c.DataSinks {
		s := &c.DataSinks[i]
		if s.Language == lang && !c.skipDataSinks[normalizeID(s.ID)] {
			res = append(res, s)
		}
	}
	return res
}

// FindDataElement returns the data element with that id, or nil
func (c *Config) FindDataElement(id string) *DataElement {
	for i := range c.DataElements {
		if c.DataElements[i].ID == id {
			return &c.DataElements[i]
		}
	}
	return nil
}

// FindDataSink returns the data sink with that id, or nil
func (c *Config) FindDataSink(id string) *DataSink {
	for i := range c.DataSinks {
		if c.DataSinks[i].ID == id {
			return &c.DataSinks[i]
		}
	}
	return nil
}

// IsSanitizer returns true if the callee name matches any sanitizer in the config
func (c *Config) IsSanitizer(name string) bool {
	return funcutil.Exists(c.Sanitizers, func(s Sanitizer) bool { return s.Match(name) })
}

// SkipsOccurrence returns true if the occurrence hash is in the skip list
func (c *Config) SkipsOccurrence(hash string) bool {
	return c.skipOccurrences[strings.ToUpper(hash)]
}

// SkipsVulnerability returns true if the vulnerability hash is in the skip list
func (c *Config) SkipsVulnerability(hash string) bool {
	return c.skipVulnerabilities[strings.ToUpper(hash)]
}

// ReportsSeverity returns true if vulnerabilities of severity sev must be reported
func (c *Config) ReportsSeverity(sev Severity) bool {
	return len(c.IncludeSeverity) == 0 || funcutil.Contains(c.IncludeSeverity, sev)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// ExceedsMaxAlarms returns true if n vulnerabilities exceed the maximum number of alarms of the configuration.
// (if the configuration setting is <= 0, then this returns false)
func (c Config) ExceedsMaxAlarms(n int) bool {
	if c.MaxAlarms <= 0 {
		return false
	}
	return n > c.MaxAlarms
}
