// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package database

import (
	"context"
	"strconv"
)

// SelfTestReport is the result of a live round trip to the active backend.
type SelfTestReport struct {
	Connected       bool              `json:"connected"`
	ConnectionType  string            `json:"connection_type"`
	ConnectionInfo  ConnectionInfo    `json:"connection_info"`
	TestQueryResult Row               `json:"test_query"`
	QueryError      string            `json:"query_error,omitempty"`
	Environment     map[string]string `json:"environment"`
}

// SelfTest runs SELECT 1 against the active backend; in degraded mode no
// query is attempted and TestQueryResult stays nil. The password is
// rendered only as "***set***" or "not set". QueryError carries the raw
// driver message and should only be shown in debug mode.
func (m *Manager) SelfTest(ctx context.Context) SelfTestReport {
	var (
		rows []Row
		err  error
	)
	if m.IsConnected() {
		rows, err = m.run(ctx, "SELECT 1 AS test_value", nil, true)
	}

	report := SelfTestReport{
		Connected:      m.IsConnected(),
		ConnectionType: string(m.Kind()),
		ConnectionInfo: m.ConnectionInfo(),
		Environment: map[string]string{
			"DB_HOST":     orNotSet(m.cfg.Host),
			"DB_PORT":     orNotSet(strconv.Itoa(m.cfg.Port)),
			"DB_DATABASE": orNotSet(m.cfg.Name),
			"DB_USERNAME": orNotSet(m.cfg.Username),
			"DB_PASSWORD": "not set",
		},
	}
	if m.cfg.Password != "" {
		report.Environment["DB_PASSWORD"] = "***set***"
	}
	if len(rows) > 0 {
		report.TestQueryResult = rows[0]
	}
	if err != nil {
		report.QueryError = err.Error()
	}
	return report
}

func orNotSet(v string) string {
	if v == "" || v == "0" {
		return "not set"
	}
	return v
}
