// CareLink - Healthcare Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carelink

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/carelink/internal/database"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(), &fakeStore{connected: true})

	rec := do(t, srv, http.MethodGet, "/api/v1/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "API is healthy", body["message"])
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, body["timestamp"])
	assert.True(t, strings.HasPrefix(body["server"].(string), "Go "))
	assert.True(t, strings.HasSuffix(body["response_time"].(string), "ms"))

	db := body["database"].(map[string]interface{})
	assert.Equal(t, true, db["connected"])
	assert.Equal(t, "mysql", db["connection_type"])
	assert.NotContains(t, rec.Body.String(), "password\":\"")
}

func TestHealthDatabase(t *testing.T) {
	t.Parallel()

	report := database.SelfTestReport{
		Connected:       true,
		ConnectionType:  "mysql",
		TestQueryResult: database.Row{"test_value": 1},
		QueryError:      "dial tcp 10.0.0.5:3306: i/o timeout",
		Environment:     map[string]string{"DB_PASSWORD": "***set***"},
	}

	for _, debug := range []bool{false, true} {
		cfg := testConfig()
		cfg.App.Debug = debug
		srv := newTestServer(t, cfg, &fakeStore{connected: true, report: report})

		rec := do(t, srv, http.MethodGet, "/api/v1/health/database")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Database connection test", body["message"])
		assert.Equal(t, map[string]interface{}{"test_value": float64(1)}, body["test_query"])
		assert.Equal(t, "***set***", body["environment"].(map[string]interface{})["DB_PASSWORD"])
		if debug {
			assert.Equal(t, report.QueryError, body["query_error"])
		} else {
			assert.NotContains(t, body, "query_error")
		}
	}
}

func TestHealthDatabase_Degraded(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(), &fakeStore{report: database.SelfTestReport{ConnectionType: "none"}})

	rec := do(t, srv, http.MethodGet, "/api/v1/health/database")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body, "test_query")
	assert.Nil(t, body["test_query"])
}

func TestListSpecialties_English(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: func(string, []interface{}) []database.Row {
		return []database.Row{
			{"id": 1, "clinical_specialty_rid": 10, "name": "Cardiology", "lang_meta_code": "en_us"},
			{"id": 2, "clinical_specialty_rid": 11, "name": "Neurology", "lang_meta_code": "en_us"},
		}
	}}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/specialties?lang=en&filter=card")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "en_us", body["language"])
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Cardiology", data[0].(map[string]interface{})["name"])
	assert.NotContains(t, body, "total")

	queries := store.recorded()
	require.Len(t, queries, 1)
	assert.Equal(t, []interface{}{"en_us", "%card%"}, queries[0].Args)
	assert.Contains(t, queries[0].SQL, "c.name LIKE ?")
}

func TestGetSpecialty(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: func(_ string, args []interface{}) []database.Row {
		if args[0] == 3 {
			return []database.Row{{"id": 3, "clinical_specialty_rid": 7, "name": nil}}
		}
		return nil
	}}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/specialties/3")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "Unknown Specialty", data["name"])
	assert.NotContains(t, data, "language")

	rec = do(t, srv, http.MethodGet, "/api/v1/specialties/4")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Specialty not found", decode(t, rec)["message"])
}

func TestInvalidIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target  string
		message string
		detail  string
	}{
		{"/api/v1/doctors/0", "Invalid doctor ID", "Doctor ID must be a positive integer"},
		{"/api/v1/doctors/-4", "Invalid doctor ID", "Doctor ID must be a positive integer"},
		{"/api/v1/doctors/abc", "Invalid doctor ID", "Doctor ID must be a positive integer"},
		{"/api/v1/specialties/0", "Invalid specialty ID", "Specialty ID must be a positive integer"},
		{"/api/v1/posts/0", "Invalid post ID", "Post ID must be a positive integer"},
		{"/api/v1/posts/category/x", "Invalid category ID", "Category ID must be a positive integer"},
		{"/api/v1/singleservices/0", "Invalid service ID", "Service ID must be a positive integer"},
		{"/api/v1/packages/specialty/0", "Invalid category ID", "Category ID must be a positive integer"},
		{"/api/v1/packages/services/0", "Invalid package ID", "Package ID must be a positive integer"},
		{"/api/v1/packages/services/items/0", "Invalid package service ID", "Package service ID must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			store := &fakeStore{}
			srv := newTestServer(t, testConfig(), store)

			rec := do(t, srv, http.MethodGet, tt.target)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.detail, body["error"])
			assert.Empty(t, store.recorded())
		})
	}
}

func TestNotFoundDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target  string
		message string
		detail  string
	}{
		{"/api/v1/doctors/42", "Doctor not found", "The requested doctor does not exist"},
		{"/api/v1/posts/999999", "Post not found", "The requested post does not exist"},
		{"/api/v1/singleservices/8", "Single service not found", "The requested single service does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t, testConfig(), &fakeStore{})

			rec := do(t, srv, http.MethodGet, tt.target)

			require.Equal(t, http.StatusNotFound, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, tt.detail, body["error"])
		})
	}
}

func TestGetDoctor(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: func(_ string, args []interface{}) []database.Row {
		return []database.Row{{"id": args[0], "doctor_name": "Dr. Lan", "empId": "E-17"}}
	}}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/doctors/17")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(17), data["id"])
	assert.Equal(t, 17, store.recorded()[0].Args[0])
}

func TestListDoctors_Envelope(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: countRow(37, database.Row{"id": 1}, database.Row{"id": 2})}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/doctors?page=3&page_size=5")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(37), body["total"])
	assert.Equal(t, float64(3), body["page"])
	assert.Equal(t, float64(5), body["page_size"])
	assert.Equal(t, "vi", body["language"])
	assert.Contains(t, body, "filter")
	assert.Nil(t, body["filter"])
	assert.Len(t, body["data"], 2)

	// LIMIT and OFFSET are the last two arguments of the page query.
	page := store.recorded()[0]
	n := len(page.Args)
	assert.Equal(t, []interface{}{5, 10}, page.Args[n-2:])
}

func TestListDoctors_EmptyWhenDegraded(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testConfig(), &fakeStore{})

	rec := do(t, srv, http.MethodGet, "/api/v1/doctors")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.Equal(t, float64(0), body["total"])
}

func TestListPosts_Filter(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: countRow(1, database.Row{"id": 9, "name": "Tim mạch"})}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/posts?filter=%20tim%20&lang=en")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "tim", body["filter"])
	assert.Equal(t, "en_us", body["language"])
	assert.Contains(t, rec.Body.String(), "Tim mạch")
	assert.Equal(t, "%tim%", store.recorded()[0].Args[1])
}

func TestListPostsByCategory(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: countRow(4, database.Row{"id": 1})}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/posts/category/12?filter=ignored")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(12), body["category_id"])
	assert.Equal(t, float64(4), body["total"])
	assert.NotContains(t, body, "filter")
	assert.Equal(t, []interface{}{"vi", 12, 10, 0}, store.recorded()[0].Args)
}

func TestListSingleServices(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: countRow(1, database.Row{"id": 5, "name": "X-ray", "price": "150000.00"})}
	srv := newTestServer(t, testConfig(), store)

	rec := do(t, srv, http.MethodGet, "/api/v1/singleservices?page_size=1000")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, float64(100), body["page_size"])
	item := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, float64(150000), item["price"])
}

func TestPackages(t *testing.T) {
	t.Parallel()
	store := &fakeStore{rows: func(string, []interface{}) []database.Row {
		return []database.Row{{"id": 1}, {"id": 2}, {"id": 3}}
	}}
	srv := newTestServer(t, testConfig(), store)

	t.Run("by specialty", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/packages/specialty/6?lang=en")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, float64(6), body["category_id"])
		assert.Equal(t, "en_us", body["language"])
	})

	t.Run("services", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/packages/services/8")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(3), body["total"])
		assert.Equal(t, float64(8), body["package_id"])
		assert.Equal(t, "vi", body["language"])
	})

	t.Run("items", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/api/v1/packages/services/items/21")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(3), body["total_items"])
		assert.Equal(t, float64(21), body["package_service_id"])
		data := body["data"].(map[string]interface{})
		assert.Len(t, data["raw_items"], 3)
		assert.NotContains(t, body, "language")
	})
}
