package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// analyticsWindow is how many periods feed the dashboard charts; two
// biweekly periods roll up into one month bucket.
const analyticsWindow = 12

// getAnalyticsData aggregates category totals and monthly income/expense
// trends over the first 12 periods.
func getAnalyticsData(periods []Period) AnalyticsData {
	data := AnalyticsData{
		CategoryTotals: map[string]float64{},
		MonthlyTrends:  map[string]MonthlyTrend{},
	}

	for index, period := range periods {
		if index >= analyticsWindow {
			break
		}

		monthKey := fmt.Sprintf("Month %d", index/2+1)
		totals := calculatePeriodTotals(period)

		trend := data.MonthlyTrends[monthKey]
		trend.Income += totals.TotalIncome
		trend.Expenses += totals.TotalExpenses
		trend.Difference += totals.Difference
		data.MonthlyTrends[monthKey] = trend

		for _, expense := range period.Expenses {
			data.CategoryTotals[expense.Category] += expense.Amount
		}
		for _, oneOff := range period.OneOffExpenses {
			data.CategoryTotals[oneOff.Category] += oneOff.Amount
		}
	}

	return data
}

// Analytics handler functions

// @Summary Get analytics
// @Description Aggregate category totals and monthly trends over the first 12 periods
// @Tags analytics
// @Produce json
// @Success 200 {object} AnalyticsData "Analytics data"
// @Router /api/analytics [get]
func getAnalytics(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.JSON(http.StatusOK, getAnalyticsData(app.state.Periods))
}
