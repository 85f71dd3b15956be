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

package leaks

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/awslabs/ar-go-pii/internal/funcutil"
	"github.com/awslabs/ar-go-pii/internal/gitinfo"
	"github.com/awslabs/ar-go-pii/internal/graphutil"
)

// recorder receives the findings of the file scanners
type recorder interface {
	PutOccurrence(Occurrence) error
	PutVulnerability(Vulnerability) error
}

// collector is a recorder keeping the findings in memory
type collector struct {
	mu      sync.Mutex
	results Results
}

func (c *collector) PutOccurrence(o Occurrence) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results.Occurrences = append(c.results.Occurrences, o)
	return nil
}

func (c *collector) PutVulnerability(v Vulnerability) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results.Vulnerabilities = append(c.results.Vulnerabilities, v)
	return nil
}

// elementKeyPrefix prefixes the keys of the data element nodes of the flow graph
const elementKeyPrefix = "#elem:"

func elementKey(id string) string {
	return elementKeyPrefix + id
}

// span is a range of the source. Lines and columns start at 1; bytes are offsets in the source.
type span struct {
	startLine, startCol int
	endLine, endCol     int
	startByte, endByte  int
}

// name is an identifier, or a chain of selectors like user.email, in the scanned code
type name struct {
	text string
	span span
}

type codeScope struct {
	path    string
	aliases map[string]string
}

// fileScanner holds the state of the scan of a single file. The language scanners walk the syntax tree and call its
// methods on scopes, imports, names, assignments and calls.
type fileScanner struct {
	cfg     *config.Config
	dir     *gitinfo.DirectoryInfo
	logger  *config.LogGroup
	lang    config.Language
	absPath string
	relPath string
	source  []byte
	lines   []string
	out     recorder

	elements     []*config.DataElement
	active       map[string]*config.DataElement
	sinks        []*config.DataSink
	elementCache map[string]*config.DataElement
	scopes       []*codeScope
	flow         *graphutil.FlowGraph

	// err is the first error returned by the recorder
	err error
}

func newFileScanner(cfg *config.Config, dir *gitinfo.DirectoryInfo, logger *config.LogGroup, lang config.Language,
	absPath string, relPath string, source []byte, out recorder) *fileScanner {
	if logger == nil {
		logger = config.NewLogGroupAt(config.ErrLevel)
	}
	s := &fileScanner{
		cfg:          cfg,
		dir:          dir,
		logger:       logger,
		lang:         lang,
		absPath:      absPath,
		relPath:      relPath,
		source:       source,
		lines:        strings.Split(string(source), "\n"),
		out:          out,
		elements:     cfg.ActiveDataElements(),
		active:       map[string]*config.DataElement{},
		sinks:        cfg.ActiveDataSinks(lang),
		elementCache: map[string]*config.DataElement{},
		scopes:       []*codeScope{{aliases: map[string]string{}}},
		flow:         graphutil.NewFlowGraph(),
	}
	for _, e := range s.elements {
		s.active[e.ID] = e
	}
	return s
}

// *************** scopes and aliases **********************

func (s *fileScanner) enterScope(name string) {
	parent := s.scopes[len(s.scopes)-1]
	s.scopes = append(s.scopes, &codeScope{path: parent.path + "/" + name, aliases: map[string]string{}})
}

// exitScope leaves the innermost scope. The file scope is never left.
func (s *fileScanner) exitScope() {
	if len(s.scopes) > 1 {
		s.scopes = s.scopes[:len(s.scopes)-1]
	}
}

// anonymousScope returns the name of the scope of an anonymous function starting at sp
func anonymousScope(kind string, sp span) string {
	return fmt.Sprintf("%s@%d.%d", kind, sp.startLine, sp.startCol)
}

func (s *fileScanner) putAlias(alias string, orig string) {
	s.scopes[len(s.scopes)-1].aliases[alias] = orig
}

// resolve returns the name with its import alias resolved. For a dotted name, the first component is resolved.
func (s *fileScanner) resolve(name string) string {
	if orig, ok := s.alias(name); ok {
		return orig
	}
	if head, rest, found := strings.Cut(name, "."); found {
		if orig, ok := s.alias(head); ok {
			return orig + "." + rest
		}
	}
	return name
}

// isImported returns true if the first component of the dotted name is an imported module or package
func (s *fileScanner) isImported(name string) bool {
	head, _, _ := strings.Cut(name, ".")
	_, ok := s.alias(head)
	return ok
}

func (s *fileScanner) alias(name string) (string, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if orig, ok := s.scopes[i].aliases[name]; ok {
			return orig, true
		}
	}
	return "", false
}

// *************** rules **********************

// dataElement returns the data element the name holds, or nil
func (s *fileScanner) dataElement(name string) *config.DataElement {
	if e, ok := s.elementCache[name]; ok {
		return e
	}
	norm := NormalizeName(name)
	var found *config.DataElement
	for _, e := range s.elements {
		if e.Match(norm) {
			found = e
			break
		}
	}
	s.elementCache[name] = found
	return found
}

// sinkByName returns the data sink called by the dotted name, once aliases are resolved, or nil
func (s *fileScanner) sinkByName(name string) *config.DataSink {
	orig := s.resolve(name)
	for _, sink := range s.sinks {
		if sink.MatchName(orig) {
			return sink
		}
	}
	return nil
}

// sinkByCode returns the data sink identified by the code identifier of a Go function, or nil.
// Sinks with a rule naming a package take precedence over generic sinks.
func (s *fileScanner) sinkByCode(cid config.CodeIdentifier) *config.DataSink {
	var generic *config.DataSink
	for _, sink := range s.sinks {
		if !sink.MatchCode(cid) {
			continue
		}
		if funcutil.Exists(sink.MatchRules, func(r config.MatchRule) bool { return r.Package != "" }) {
			return sink
		}
		if generic == nil {
			generic = sink
		}
	}
	return generic
}

func (s *fileScanner) isSanitizer(name string) bool {
	return s.cfg.IsSanitizer(name) || s.cfg.IsSanitizer(s.resolve(name))
}

// *************** flow **********************

func (s *fileScanner) defineKey(name string) string {
	return s.scopes[len(s.scopes)-1].path + "|" + name
}

// lookupKey returns the key of the flow graph node of name in the innermost scope where it has one
func (s *fileScanner) lookupKey(name string) (string, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		k := s.scopes[i].path + "|" + name
		if _, ok := s.flow.Lookup(k); ok {
			return k, true
		}
	}
	return "", false
}

func nameOfKey(key string) string {
	return key[strings.LastIndexByte(key, '|')+1:]
}

// visitName records an occurrence if the name holds a data element. Returns true if it does.
func (s *fileScanner) visitName(n name) bool {
	if len(n.text) <= 1 {
		return false
	}
	e := s.dataElement(n.text)
	if e == nil {
		return false
	}
	key, ok := s.lookupKey(n.text)
	if !ok {
		key = s.defineKey(n.text)
	}
	s.logger.Tracef("%s holds %s at %d:%d", n.text, e.ID, n.span.startLine, n.span.startCol)
	s.flow.AddEdge(elementKey(e.ID), key)
	s.putOccurrence(e, n)
	return true
}

// assign records that the values of the sources flow into target
func (s *fileScanner) assign(target string, sources []name) {
	to := s.defineKey(target)
	for _, src := range sources {
		from, ok := s.lookupKey(src.text)
		if e := s.dataElement(src.text); e != nil {
			if !ok {
				from = s.defineKey(src.text)
			}
			s.flow.AddEdge(elementKey(e.ID), from)
		} else if !ok {
			continue
		}
		if from != to {
			s.flow.AddEdge(from, to)
		}
	}
}

// carriedElements returns the data elements carried by the arguments of a call, with the flows that bring them there.
// An argument that holds a data element carries only that element; other arguments carry every data element that
// flows into them.
func (s *fileScanner) carriedElements(args []name) ([]*config.DataElement, []Flow) {
	var elements []*config.DataElement
	var flows []Flow
	seen := map[string]bool{}
	for _, arg := range args {
		if e := s.dataElement(arg.text); e != nil {
			if !seen[e.ID] {
				seen[e.ID] = true
				elements = append(elements, e)
				flows = append(flows, Flow{DataElementID: e.ID, Names: []string{arg.text}})
			}
			continue
		}
		key, ok := s.lookupKey(arg.text)
		if !ok {
			continue
		}
		for _, k := range s.flow.Reaching(key) {
			id, isElement := strings.CutPrefix(k, elementKeyPrefix)
			if !isElement || seen[id] {
				continue
			}
			e, ok := s.active[id]
			if !ok {
				continue
			}
			seen[id] = true
			elements = append(elements, e)
			var names []string
			for _, p := range s.flow.Path(k, key) {
				if !strings.HasPrefix(p, elementKeyPrefix) {
					names = append(names, nameOfKey(p))
				}
			}
			flows = append(flows, Flow{DataElementID: id, Names: names})
		}
	}
	return elements, flows
}

// *************** findings **********************

func (s *fileScanner) repoAndBranch() (string, string) {
	if s.dir == nil {
		return "", ""
	}
	return s.dir.RepoName, s.dir.Branch
}

func (s *fileScanner) location(sp span) (Location, string) {
	loc := Location{
		RelativePath: s.relPath,
		AbsolutePath: s.absPath,
		LineStart:    sp.startLine,
		LineEnd:      sp.endLine,
		ColumnStart:  sp.startCol,
		ColumnEnd:    sp.endCol,
	}
	link := ""
	if s.dir != nil {
		link = s.dir.Link(s.relPath, sp.startLine, sp.endLine)
	}
	return loc, link
}

func (s *fileScanner) putOccurrence(e *config.DataElement, n name) {
	repo, branch := s.repoAndBranch()
	loc, link := s.location(n.span)
	o := Occurrence{
		DataElementID:   e.ID,
		DataElementName: e.Name,
		Hash:            hashOf(repo, branch, e.ID, s.relPath, n.text),
		Sensitivity:     e.Sensitivity,
		Language:        s.lang,
		CodeSegment:     s.codeLine(n.span),
		Location:        loc,
		URLLink:         link,
		Source:          e.Source,
		Tags:            e.Tags,
	}
	if s.cfg.SkipsOccurrence(o.Hash) {
		return
	}
	s.record(s.out.PutOccurrence(o))
}

// checkCall records a vulnerability if the arguments of the call to the sink carry data elements. It returns the
// vulnerability and true if one has been recorded.
func (s *fileScanner) checkCall(sink *config.DataSink, call span, args []name) (Vulnerability, bool) {
	elements, flows := s.carriedElements(args)
	if len(elements) == 0 {
		return Vulnerability{}, false
	}
	loc, link := s.location(call)
	if s.ignoredAt(call.startLine) {
		s.logger.Debugf("Ignoring call to %s at %s", sink.ID, loc)
		return Vulnerability{}, false
	}
	repo, branch := s.repoAndBranch()
	v := Vulnerability{
		DataSinkID:       sink.ID,
		DataSinkName:     sink.Name,
		DataElementIDs:   funcutil.Map(elements, func(e *config.DataElement) string { return e.ID }),
		DataElementNames: funcutil.Map(elements, func(e *config.DataElement) string { return e.Name }),
		Hash:             hashOf(repo, branch, sink.ID, s.relPath, strings.TrimSpace(s.text(call))),
		Description:      sink.Description,
		Severity:         config.Low,
		Language:         s.lang,
		CodeSegment:      s.codeBlock(call),
		Location:         loc,
		URLLink:          link,
		CWE:              sink.CWE,
		OWASP:            sink.OWASP,
		Remediation:      sink.Remediation,
		Flows:            flows,
	}
	for _, e := range elements {
		if e.Sensitivity.Rank() < v.Severity.Rank() {
			v.Severity = e.Sensitivity
		}
	}
	if s.cfg.SkipsVulnerability(v.Hash) {
		return Vulnerability{}, false
	}
	s.record(s.out.PutVulnerability(v))
	return v, true
}

func (s *fileScanner) record(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// *************** source text **********************

func (s *fileScanner) text(sp span) string {
	if sp.startByte < 0 || sp.endByte > len(s.source) || sp.startByte > sp.endByte {
		return ""
	}
	return string(s.source[sp.startByte:sp.endByte])
}

// codeBlock returns the text of the span, de-indented as a block
func (s *fileScanner) codeBlock(sp span) string {
	lines := strings.Split(strings.Repeat(" ", max(sp.startCol-1, 0))+s.text(sp), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, l := range lines {
		if len(l)-len(strings.TrimLeft(l, " \t")) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = strings.TrimLeft(l, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// codeLine returns the source lines of the span, trimmed of spaces, commas and semicolons
func (s *fileScanner) codeLine(sp span) string {
	if sp.startByte < 0 || sp.endByte > len(s.source) || sp.startByte > sp.endByte {
		return ""
	}
	start := strings.LastIndexByte(string(s.source[:sp.startByte]), '\n') + 1
	end := len(s.source)
	if i := strings.IndexByte(string(s.source[sp.endByte:]), '\n'); i >= 0 {
		end = sp.endByte + i
	}
	return strings.TrimFunc(string(s.source[start:end]), func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
}

// ignoredAt returns true if the line, or the line before, carries the ignore directive
func (s *fileScanner) ignoredAt(line int) bool {
	for _, l := range []int{line, line - 1} {
		if l >= 1 && l <= len(s.lines) && strings.Contains(s.lines[l-1], config.IgnoreDirective) {
			return true
		}
	}
	return false
}
