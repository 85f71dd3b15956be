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
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-pii/analysis/config"
	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var ddl string

// Store records the findings of a scan in a SQLite database. It is safe for concurrent use.
type Store struct {
	db        *sql.DB
	path      string
	temporary bool
}

// OpenStore opens the database at path, creating the tables of the scan and dropping existing ones. If path is
// empty, a temporary database is created and removed by Close.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	temporary := path == ""
	if temporary {
		path = filepath.Join(os.TempDir(), "piiscan-"+uuid.NewString()+".db")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open scan database %s: %w", path, err)
	}
	// a single connection serializes the writes of the concurrent file scanners
	db.SetMaxOpenConns(1)
	s := &Store{db: db, path: path, temporary: temporary}
	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", stmt, err)
		}
	}
	return nil
}

// Path returns the path of the database file
func (s *Store) Path() string {
	return s.path
}

// PutOccurrence records a data element occurrence
func (s *Store) PutOccurrence(o Occurrence) error {
	tags, err := json.Marshal(o.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO data_element_occurrences (
		data_element_id, data_element_name, hash, sensitivity, language, code_segment, absolute_file_path,
		relative_file_path, line_start, line_end, column_start, column_end, url_link, source, tags
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.DataElementID, o.DataElementName, o.Hash, string(o.Sensitivity), string(o.Language), o.CodeSegment,
		o.AbsolutePath, o.RelativePath, o.LineStart, o.LineEnd, o.ColumnStart, o.ColumnEnd, o.URLLink, o.Source,
		string(tags))
	if err != nil {
		return fmt.Errorf("could not record occurrence at %s: %w", o.Location, err)
	}
	return nil
}

// PutVulnerability records a vulnerability
func (s *Store) PutVulnerability(v Vulnerability) error {
	lists := []any{v.DataElementIDs, v.DataElementNames, v.CWE, v.OWASP, v.Flows}
	encoded := make([]string, len(lists))
	for i, l := range lists {
		b, err := json.Marshal(l)
		if err != nil {
			return err
		}
		encoded[i] = string(b)
	}
	_, err := s.db.Exec(`INSERT INTO vulnerabilities (
		data_sink_id, data_sink_name, data_element_ids, data_element_names, hash, description, severity, language,
		code_segment, absolute_file_path, relative_file_path, line_start, line_end, column_start, column_end,
		url_link, cwe, owasp, remediation, flows
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.DataSinkID, v.DataSinkName, encoded[0], encoded[1], v.Hash, v.Description, string(v.Severity),
		string(v.Language), v.CodeSegment, v.AbsolutePath, v.RelativePath, v.LineStart, v.LineEnd, v.ColumnStart,
		v.ColumnEnd, v.URLLink, encoded[2], encoded[3], v.Remediation, encoded[4])
	if err != nil {
		return fmt.Errorf("could not record vulnerability at %s: %w", v.Location, err)
	}
	return nil
}

// Occurrences returns all the recorded occurrences, in insertion order
func (s *Store) Occurrences(ctx context.Context) ([]Occurrence, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		data_element_id, data_element_name, hash, sensitivity, language, code_segment, absolute_file_path,
		relative_file_path, line_start, line_end, column_start, column_end, url_link, source, tags
	FROM data_element_occurrences ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Occurrence
	for rows.Next() {
		var o Occurrence
		var sensitivity, language, tags string
		if err := rows.Scan(&o.DataElementID, &o.DataElementName, &o.Hash, &sensitivity, &language,
			&o.CodeSegment, &o.AbsolutePath, &o.RelativePath, &o.LineStart, &o.LineEnd, &o.ColumnStart,
			&o.ColumnEnd, &o.URLLink, &o.Source, &tags); err != nil {
			return nil, err
		}
		o.Sensitivity = config.Severity(sensitivity)
		o.Language = config.Language(language)
		if err := json.Unmarshal([]byte(tags), &o.Tags); err != nil {
			return nil, fmt.Errorf("invalid tags %q: %w", tags, err)
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

// Vulnerabilities returns all the recorded vulnerabilities, in insertion order
func (s *Store) Vulnerabilities(ctx context.Context) ([]Vulnerability, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		data_sink_id, data_sink_name, data_element_ids, data_element_names, hash, description, severity, language,
		code_segment, absolute_file_path, relative_file_path, line_start, line_end, column_start, column_end,
		url_link, cwe, owasp, remediation, flows
	FROM vulnerabilities ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Vulnerability
	for rows.Next() {
		var v Vulnerability
		var severity, language, ids, names, cwe, owasp, flows string
		if err := rows.Scan(&v.DataSinkID, &v.DataSinkName, &ids, &names, &v.Hash, &v.Description, &severity,
			&language, &v.CodeSegment, &v.AbsolutePath, &v.RelativePath, &v.LineStart, &v.LineEnd, &v.ColumnStart,
			&v.ColumnEnd, &v.URLLink, &cwe, &owasp, &v.Remediation, &flows); err != nil {
			return nil, err
		}
		v.Severity = config.Severity(severity)
		v.Language = config.Language(language)
		for _, f := range []struct {
			s string
			p any
		}{{ids, &v.DataElementIDs}, {names, &v.DataElementNames}, {cwe, &v.CWE}, {owasp, &v.OWASP}, {flows, &v.Flows}} {
			if err := json.Unmarshal([]byte(f.s), f.p); err != nil {
				return nil, fmt.Errorf("invalid column value %q: %w", f.s, err)
			}
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

// Results reads back all the findings
func (s *Store) Results(ctx context.Context) (*Results, error) {
	occurrences, err := s.Occurrences(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read occurrences: %w", err)
	}
	vulnerabilities, err := s.Vulnerabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read vulnerabilities: %w", err)
	}
	return &Results{Occurrences: occurrences, Vulnerabilities: vulnerabilities}, nil
}

// Close closes the database, and removes it if it is temporary
func (s *Store) Close() error {
	err := s.db.Close()
	if s.temporary {
		if rmErr := os.Remove(s.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}
	return err
}
