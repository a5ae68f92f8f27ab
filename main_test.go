package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var testRouter *gin.Engine

// testStartDate anchors every fixture so generated period dates are
// deterministic.
var testStartDate = time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	testRouter = gin.New()
	registerRoutes(testRouter)

	os.Exit(m.Run())
}

// setupTestApp replaces the global app with a fresh one backed by a
// throwaway state file.
func setupTestApp(t *testing.T) *App {
	t.Helper()

	store, err := newFileStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	app = &App{
		store:     store,
		saveDelay: time.Millisecond,
		state:     defaultState(),
	}
	app.state.IncomeSettings.StartDate = FlexTime{testStartDate}
	app.state.Periods = generatePeriods(app.state.SourceExpenses, app.state.IncomeSettings, nil)
	return app
}

// testIncome is the fixture income schedule used by the engine tests.
func testIncome() IncomeSettings {
	return IncomeSettings{
		PaycheckA:         2000,
		PaycheckB:         2200,
		StartDate:         FlexTime{testStartDate},
		FirstPaycheckType: PaycheckA,
	}
}

// testTemplates is a small fixture: one template per track plus a debt.
func testTemplates() []SourceExpense {
	return []SourceExpense{
		{ID: 1, Description: "Rent", Category: "Housing", Amount: 1200, DueDate: 1, PaycheckAssignment: PaycheckA, Active: true},
		{ID: 2, Description: "Credit Card", Category: "Debt", Amount: 150, DueDate: 15, PaycheckAssignment: PaycheckB, IsDebt: true, Balance: 3500, APR: 18.5, MinimumPayment: 150, Active: true},
	}
}

// makeRequest helper function for making HTTP requests
func makeRequest(method, url string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)

	return recorder
}

// makeRawRequest sends a request with a raw string body.
func makeRawRequest(method, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)

	return recorder
}

// parseJSONResponse helper function to parse JSON response
func parseJSONResponse(recorder *httptest.ResponseRecorder, target interface{}) error {
	return json.Unmarshal(recorder.Body.Bytes(), target)
}

// assertStatusCode helper function to assert HTTP status code
func assertStatusCode(t *testing.T, expected, actual int) {
	t.Helper()
	if expected != actual {
		t.Errorf("Expected status code %d, got %d", expected, actual)
	}
}

// assertNoError helper function to assert no error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
