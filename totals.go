package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// calculatePeriodTotals derives the money summary for one period. Pure, no
// side effects.
//
// Expense totals use the pre-partial-payment amount so the headline figure
// does not shrink as an expense gets paid down. Paid totals credit cleared
// items in full, paid items at whatever has been recorded against them, and
// pending items only for their partial payments. Unpaid sums the remaining
// amounts of pending and paid items; "paid" is committed but not yet
// bank-cleared, so it still counts as unpaid cash.
func calculatePeriodTotals(period Period) PeriodTotals {
	totals := PeriodTotals{
		TotalIncome: period.DefaultIncome + period.AdditionalIncome,
	}

	addExpense := func(e *expenseCore) {
		totals.TotalExpenses += e.totalAmount()

		switch e.Status {
		case StatusCleared:
			totals.TotalPaid += e.totalAmount()
		case StatusPaid:
			if e.PaidAmount != nil {
				totals.TotalPaid += *e.PaidAmount
			} else {
				totals.TotalPaid += e.totalAmount()
			}
		default:
			totals.TotalPaid += e.paidSoFar()
		}

		if e.Status == StatusPending || e.Status == StatusPaid {
			totals.UnpaidAmount += e.Amount
		}
	}

	for i := range period.Expenses {
		addExpense(&period.Expenses[i].expenseCore)
	}
	for i := range period.OneOffExpenses {
		addExpense(&period.OneOffExpenses[i].expenseCore)
	}

	totals.Difference = totals.TotalIncome - totals.TotalExpenses
	totals.RemainingAfterPaid = totals.TotalIncome - totals.TotalPaid
	return totals
}

// Totals handler functions

// @Summary Get period totals
// @Description Calculate income/expense/paid/unpaid totals for one period
// @Tags periods
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Success 200 {object} PeriodTotals "Period totals"
// @Failure 404 {object} map[string]interface{} "Period not found"
// @Router /api/periods/{id}/totals [get]
func getPeriodTotals(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, calculatePeriodTotals(*period))
}
