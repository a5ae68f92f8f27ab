package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppStateEndpoint(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("GET", "/api/state", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var response struct {
		State     AppState `json:"state"`
		SyncError string   `json:"syncError"`
	}
	assertNoError(t, parseJSONResponse(recorder, &response))
	assert.Len(t, response.State.Periods, 24)
	assert.Empty(t, response.SyncError)
}

func TestCreateSourceExpense(t *testing.T) {
	setupTestApp(t)

	body := map[string]interface{}{
		"description": "Internet", "category": "Utilities", "amount": 80,
		"dueDate": 12, "paycheckAssignment": "A",
	}
	recorder := makeRequest("POST", "/api/source-expenses", body)
	assertStatusCode(t, http.StatusCreated, recorder.Code)

	var created SourceExpense
	assertNoError(t, parseJSONResponse(recorder, &created))
	assert.Equal(t, int64(7), created.ID, "ids continue past the seed templates")
	assert.True(t, created.Active)

	// The new template is materialized into every A period.
	_, materialized := app.state.Periods[0].findInstance(created.ID)
	require.NotNil(t, materialized)
	assert.Equal(t, 80.0, materialized.Amount)
	_, onBTrack := app.state.Periods[1].findInstance(created.ID)
	assert.Nil(t, onBTrack)
}

func TestCreateSourceExpenseValidation(t *testing.T) {
	setupTestApp(t)

	cases := []map[string]interface{}{
		{"description": "", "category": "Utilities", "amount": 80, "dueDate": 12, "paycheckAssignment": "A"},
		{"description": "Internet", "category": "Cable", "amount": 80, "dueDate": 12, "paycheckAssignment": "A"},
		{"description": "Internet", "category": "Utilities", "amount": 0, "dueDate": 12, "paycheckAssignment": "A"},
		{"description": "Internet", "category": "Utilities", "amount": 80, "dueDate": 0, "paycheckAssignment": "A"},
		{"description": "Internet", "category": "Utilities", "amount": 80, "dueDate": 32, "paycheckAssignment": "A"},
		{"description": "Internet", "category": "Utilities", "amount": 80, "dueDate": 12, "paycheckAssignment": "C"},
	}

	for i, body := range cases {
		recorder := makeRequest("POST", "/api/source-expenses", body)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, "case %d", i)
	}
}

func TestUpdateSourceExpense(t *testing.T) {
	setupTestApp(t)

	body := map[string]interface{}{
		"description": "Rent", "category": "Housing", "amount": 1350,
		"dueDate": 1, "paycheckAssignment": "A",
	}
	recorder := makeRequest("PUT", "/api/source-expenses/1", body)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	assert.Equal(t, 1350.0, app.state.SourceExpenses[0].Amount)

	// Untouched instances re-sync on the regeneration the update triggers.
	_, synced := app.state.Periods[0].findInstance(1)
	require.NotNil(t, synced)
	assert.Equal(t, 1350.0, synced.Amount)
}

func TestUpdateSourceExpenseNotFound(t *testing.T) {
	setupTestApp(t)

	body := map[string]interface{}{
		"description": "Rent", "category": "Housing", "amount": 1350,
		"dueDate": 1, "paycheckAssignment": "A",
	}
	recorder := makeRequest("PUT", "/api/source-expenses/99", body)
	assertStatusCode(t, http.StatusNotFound, recorder.Code)

	recorder = makeRequest("PUT", "/api/source-expenses/abc", body)
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestDeleteSourceExpenseDeactivates(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("DELETE", "/api/source-expenses/1", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	assert.False(t, app.state.SourceExpenses[0].Active, "templates are soft-deleted")
	require.Len(t, app.state.SourceExpenses, 6)

	// Its untouched instances disappeared with the regeneration.
	_, gone := app.state.Periods[0].findInstance(1)
	assert.Nil(t, gone)
}

func TestIncomeSettingsEndpoints(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("GET", "/api/income", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var settings IncomeSettings
	assertNoError(t, parseJSONResponse(recorder, &settings))
	assert.Equal(t, 2800.0, settings.PaycheckA)

	update := map[string]interface{}{
		"paycheckA": 3000, "paycheckB": 2500,
		"startDate": "2025-01-03T00:00:00Z", "firstPaycheckType": "B",
	}
	recorder = makeRequest("PUT", "/api/income", update)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	// The income change regenerates the window against the new schedule.
	assert.Equal(t, PaycheckB, app.state.Periods[0].Type)
	assert.Equal(t, 2500.0, app.state.Periods[0].DefaultIncome)
	assert.Equal(t, 3000.0, app.state.Periods[1].DefaultIncome)
}

func TestUpdateIncomeSettingsValidation(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("PUT", "/api/income", map[string]interface{}{
		"paycheckA": -100, "paycheckB": 2500, "firstPaycheckType": "A",
	})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)

	recorder = makeRequest("PUT", "/api/income", map[string]interface{}{
		"paycheckA": 2800, "paycheckB": 2500, "firstPaycheckType": "X",
	})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestPeriodEndpoints(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("GET", "/api/periods", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var periods []Period
	assertNoError(t, parseJSONResponse(recorder, &periods))
	assert.Len(t, periods, 24)

	recorder = makeRequest("GET", "/api/periods/3", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var period Period
	assertNoError(t, parseJSONResponse(recorder, &period))
	assert.Equal(t, 3, period.ID)

	recorder = makeRequest("GET", "/api/periods/99", nil)
	assertStatusCode(t, http.StatusNotFound, recorder.Code)

	recorder = makeRequest("GET", "/api/periods/abc", nil)
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestRegeneratePeriodsEndpoint(t *testing.T) {
	setupTestApp(t)
	app.state.Periods[0].Expenses[0].Notes = "keep me"

	recorder := makeRequest("POST", "/api/periods/generate", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var periods []Period
	assertNoError(t, parseJSONResponse(recorder, &periods))
	require.Len(t, periods, 24)
	assert.Equal(t, "keep me", periods[0].Expenses[0].Notes)
}

func TestAdditionalIncomeEndpoint(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("PUT", "/api/periods/2/additional-income", map[string]interface{}{
		"additionalIncome": 450,
	})
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 450.0, app.state.Periods[2].AdditionalIncome)

	recorder = makeRequest("GET", "/api/periods/2/totals", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var totals PeriodTotals
	assertNoError(t, parseJSONResponse(recorder, &totals))
	assert.Equal(t, app.state.Periods[2].DefaultIncome+450, totals.TotalIncome)

	recorder = makeRequest("PUT", "/api/periods/2/additional-income", map[string]interface{}{})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestExpenseMutationEndpoints(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("PUT", "/api/periods/0/expenses/1/status", map[string]interface{}{"status": "paid"})
	assertStatusCode(t, http.StatusOK, recorder.Code)
	_, e := app.state.Periods[0].findInstance(1)
	assert.Equal(t, StatusPaid, e.Status)

	recorder = makeRequest("PUT", "/api/periods/0/expenses/1/status", map[string]interface{}{"status": "done"})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)

	recorder = makeRequest("PUT", "/api/periods/0/expenses/99/status", map[string]interface{}{"status": "paid"})
	assertStatusCode(t, http.StatusNotFound, recorder.Code)

	recorder = makeRequest("POST", "/api/periods/2/expenses/1/payments", map[string]interface{}{"amount": 200})
	assertStatusCode(t, http.StatusOK, recorder.Code)
	_, paid := app.state.Periods[2].findInstance(1)
	assert.Equal(t, 1000.0, paid.Amount)

	recorder = makeRequest("POST", "/api/periods/2/expenses/1/payments", map[string]interface{}{"amount": 5000})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)

	recorder = makeRequest("POST", "/api/periods/2/expenses/1/move", map[string]interface{}{"direction": "forward"})
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assert.True(t, app.state.Periods[2].isExcluded(1))

	recorder = makeRequest("POST", "/api/undo", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assert.False(t, app.state.Periods[2].isExcluded(1))

	recorder = makeRequest("DELETE", "/api/periods/0/expenses/1", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assert.True(t, app.state.Periods[0].isExcluded(1))
}

func TestEditExpenseEndpoint(t *testing.T) {
	setupTestApp(t)

	body := map[string]interface{}{
		"scope": "instance",
		"expense": map[string]interface{}{
			"description": "Rent", "category": "Housing", "amount": 1250, "dueDate": 1,
		},
	}
	recorder := makeRequest("PUT", "/api/periods/0/expenses/1", body)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	_, e := app.state.Periods[0].findInstance(1)
	assert.Equal(t, 1250.0, e.Amount)

	invalid := map[string]interface{}{
		"expense": map[string]interface{}{"description": "", "amount": 1250},
	}
	recorder = makeRequest("PUT", "/api/periods/0/expenses/1", invalid)
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)

	badStatus := map[string]interface{}{
		"expense": map[string]interface{}{"description": "Rent", "category": "Housing", "amount": 1250, "status": "done"},
	}
	recorder = makeRequest("PUT", "/api/periods/0/expenses/1", badStatus)
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestOneOffEndpoints(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("POST", "/api/periods/0/one-offs", map[string]interface{}{
		"description": "Repair", "category": "Other", "amount": 75,
	})
	assertStatusCode(t, http.StatusCreated, recorder.Code)

	var created OneOffExpense
	assertNoError(t, parseJSONResponse(recorder, &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsOneOff)

	recorder = makeRequest("PUT", fmt.Sprintf("/api/periods/0/one-offs/%s", created.ID), map[string]interface{}{
		"description": "Car repair", "category": "Transportation", "amount": 95,
	})
	assertStatusCode(t, http.StatusOK, recorder.Code)

	_, updated := app.state.Periods[0].findOneOff(created.ID)
	require.NotNil(t, updated)
	assert.Equal(t, 95.0, updated.Amount)

	recorder = makeRequest("POST", "/api/periods/0/one-offs", map[string]interface{}{
		"description": "", "amount": 75,
	})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestDebtEndpoints(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("GET", "/api/debt/payoff", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var payoff DebtPayoff
	assertNoError(t, parseJSONResponse(recorder, &payoff))
	assert.Equal(t, 27000.0, payoff.TotalDebt)
	require.NotEmpty(t, payoff.SortedDebts)
	assert.Equal(t, int64(2), payoff.SortedDebts[0].ID, "saved strategy defaults to avalanche")

	recorder = makeRequest("GET", "/api/debt/payoff?strategy=snowball&extra=100", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assertNoError(t, parseJSONResponse(recorder, &payoff))
	assert.Equal(t, int64(2), payoff.SortedDebts[0].ID, "credit card has the smallest balance too")

	recorder = makeRequest("GET", "/api/debt/payoff?strategy=aggressive", nil)
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)

	recorder = makeRequest("PUT", "/api/debt/settings", map[string]interface{}{
		"debtStrategy": "snowball", "extraPayment": 150,
	})
	assertStatusCode(t, http.StatusOK, recorder.Code)
	assert.Equal(t, StrategySnowball, app.state.DebtStrategy)
	assert.Equal(t, 150.0, app.state.ExtraPayment)

	recorder = makeRequest("PUT", "/api/debt/settings", map[string]interface{}{"extraPayment": -1})
	assertStatusCode(t, http.StatusBadRequest, recorder.Code)
}

func TestAnalyticsEndpoint(t *testing.T) {
	setupTestApp(t)

	recorder := makeRequest("GET", "/api/analytics", nil)
	assertStatusCode(t, http.StatusOK, recorder.Code)

	var data AnalyticsData
	assertNoError(t, parseJSONResponse(recorder, &data))
	assert.Len(t, data.MonthlyTrends, 6, "twelve periods roll up into six months")
	assert.Greater(t, data.CategoryTotals["Housing"], 0.0)
	assert.Greater(t, data.CategoryTotals["Debt"], 0.0)
}
