package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// csvHeaders is the export column order. Amount Cleared falls back to the
// current amount when nothing has been cleared yet.
var csvHeaders = []string{"Period", "Type", "Date", "Description", "Category", "Amount", "Status", "Amount Cleared"}

// exportCSVRows flattens every expense instance (base and one-off) across
// all periods into export rows, headers first.
func exportCSVRows(periods []Period) [][]string {
	rows := [][]string{csvHeaders}

	appendRow := func(period Period, e *expenseCore) {
		amountCleared := e.AmountCleared
		if amountCleared == 0 {
			amountCleared = e.Amount
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", period.ID+1),
			period.Type,
			formatDate(period.StartDate),
			e.Description,
			e.Category,
			formatAmount(e.Amount),
			e.Status,
			formatAmount(amountCleared),
		})
	}

	for _, period := range periods {
		for i := range period.Expenses {
			appendRow(period, &period.Expenses[i].expenseCore)
		}
		for i := range period.OneOffExpenses {
			appendRow(period, &period.OneOffExpenses[i].expenseCore)
		}
	}

	return rows
}

// formatDate renders a period start date for export; zero dates render
// empty.
func formatDate(t FlexTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// Export and import handler functions

// @Summary Export CSV
// @Description Export every expense across all periods as CSV
// @Tags export
// @Produce text/csv
// @Success 200 {string} string "CSV content"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/export/csv [get]
func exportCSV(c *gin.Context) {
	app.mu.Lock()
	rows := exportCSVRows(app.state.Periods)
	app.mu.Unlock()

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="expense-planning.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// @Summary Export JSON state
// @Description Download the full state document for file sync
// @Tags export
// @Produce json
// @Success 200 {object} AppState "State document"
// @Router /api/export/json [get]
func exportJSON(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.Header("Content-Disposition", `attachment; filename="expense-planning.json"`)
	c.JSON(http.StatusOK, app.state)
}

// @Summary Import JSON state
// @Description Replace the state with an uploaded document. Partial documents are defaulted; only invalid JSON is rejected, leaving current state untouched
// @Tags export
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Import result"
// @Failure 400 {object} map[string]interface{} "Invalid document"
// @Router /api/import/json [post]
func importJSON(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	state, err := applyAppState(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import failed: invalid JSON"})
		return
	}

	app.mu.Lock()
	defer app.mu.Unlock()

	app.state = state
	if len(app.state.Periods) == 0 {
		app.state.Periods = generatePeriods(app.state.SourceExpenses, app.state.IncomeSettings, nil)
	}
	app.schedulePersist()

	c.JSON(http.StatusOK, gin.H{"message": "State imported successfully"})
}
