package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	ex "stockfeed/extensions"
	m "stockfeed/models"
)

func testServer(t *testing.T) (*ServiceContext, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	fetcher := &fakeFetcher{records: map[string]*m.StockRecord{"AAA": stockRecord("AAA")}}
	sc := testServiceContext(context.Background(), store, fetcher)
	sc.Config.CORSOrigins = []string{"http://localhost:8000"}

	return sc, GetHttpServer(sc).Handler
}

func Test_Endpoints_FetchDataRejectsEmptySymbols(t *testing.T) {
	_, handler := testServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty list", `{"symbols": []}`},
		{"missing field", `{}`},
		{"not json", `symbols=AAA`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/fetch-data", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			ex.AssertAreEqual(t, "status", http.StatusBadRequest, rec.Code)
		})
	}
}

func Test_Endpoints_FetchDataAcceptedWithTaskId(t *testing.T) {
	sc, handler := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/fetch-data", strings.NewReader(`{"symbols": ["AAA"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusAccepted, rec.Code)

	var body struct {
		Message string   `json:"message"`
		TaskId  string   `json:"task_id"`
		Symbols []string `json:"symbols"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error parsing response: %v", err)
	}
	if body.TaskId == "" {
		t.Fatal("empty task id in response")
	}
	ex.AssertAreEqual(t, "symbols", 1, len(body.Symbols))

	// the id in the response must be pollable
	status := waitTerminal(t, sc, body.TaskId)
	ex.AssertAreEqual(t, "status", m.TaskStatusCompleted, status.Status)
}

func Test_Endpoints_FetchStatusUnknownTaskIs404(t *testing.T) {
	_, handler := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-status/no-such-task", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusNotFound, rec.Code)
}

func Test_Endpoints_FetchStatusReturnsTaskState(t *testing.T) {
	sc, handler := testServer(t)
	sc.Tracker.Initialize("task-1", 4)
	sc.Tracker.UpdateProgress("task-1", 1, "")

	req := httptest.NewRequest(http.MethodGet, "/api/fetch-status/task-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusOK, rec.Code)

	var state m.TaskState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("error parsing task state: %v", err)
	}
	ex.AssertAreEqual(t, "task status", m.TaskStatusRunning, state.Status)
	ex.AssertAreEqual(t, "progress", 25, state.Progress)
	ex.AssertAreEqual(t, "total", 4, state.Total)
}

func Test_Endpoints_StockDetailUnknownSymbolIs404(t *testing.T) {
	_, handler := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks/NOPE", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusNotFound, rec.Code)
}

func Test_Endpoints_DeleteUnknownSymbolIs404(t *testing.T) {
	_, handler := testServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/stocks/NOPE", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusNotFound, rec.Code)
}

func Test_Endpoints_ListStocksEnvelope(t *testing.T) {
	_, handler := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stocks?page=1&per_page=10", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusOK, rec.Code)

	var body struct {
		Stocks     []json.RawMessage `json:"stocks"`
		Pagination m.Pagination      `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error parsing response: %v", err)
	}
}

func Test_Endpoints_Ping(t *testing.T) {
	_, handler := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	ex.AssertAreEqual(t, "status", http.StatusOK, rec.Code)
	if !strings.Contains(rec.Body.String(), "pong") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
