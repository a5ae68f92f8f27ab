package main

import (
	"math"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxPayoffMonths caps the amortization loop at 30 years. Hitting the cap
// means the plan does not converge; callers should treat 360 as "never".
const maxPayoffMonths = 360

// calculateDebtPayoff runs the monthly amortization simulation over the
// active debt templates. Pure, no side effects.
//
// Every open debt accrues interest every month. The first debt in payoff
// order additionally receives the whole extra payment on top of its minimum.
// Principal is what remains of the payment after interest, floored at zero
// and clamped to the balance, so balances never increase and the loop always
// terminates (the month cap stays as the defensive bound).
func calculateDebtPayoff(templates []SourceExpense, strategy string, extraPayment float64) DebtPayoff {
	var debts []SourceExpense
	for _, t := range templates {
		if t.IsDebt && t.Active {
			debts = append(debts, t)
		}
	}

	result := DebtPayoff{SortedDebts: make([]SourceExpense, len(debts))}
	for _, d := range debts {
		result.TotalDebt += d.Balance
		result.MonthlyPayments += d.MinimumPayment
	}

	copy(result.SortedDebts, debts)
	sort.SliceStable(result.SortedDebts, func(i, j int) bool {
		a, b := result.SortedDebts[i], result.SortedDebts[j]
		if strategy == StrategySnowball {
			return a.Balance < b.Balance
		}
		return a.APR > b.APR
	})

	if extraPayment < 0 {
		extraPayment = 0
	}

	remaining := make([]SourceExpense, len(result.SortedDebts))
	copy(remaining, result.SortedDebts)

	for len(remaining) > 0 && result.PayoffMonths < maxPayoffMonths {
		result.PayoffMonths++

		extraThisMonth := extraPayment
		for i := range remaining {
			debt := &remaining[i]
			monthlyInterest := debt.Balance * debt.APR / 100 / 12
			result.TotalInterest += monthlyInterest

			payment := debt.MinimumPayment
			if i == 0 && extraThisMonth > 0 {
				payment += extraThisMonth
				extraThisMonth = 0
			}

			principal := math.Min(payment-monthlyInterest, debt.Balance)
			if principal < 0 {
				principal = 0
			}
			debt.Balance -= principal
		}

		open := remaining[:0]
		for _, debt := range remaining {
			if debt.Balance > 0 {
				open = append(open, debt)
			}
		}
		remaining = open
	}

	return result
}

// Debt handler functions

// @Summary Simulate debt payoff
// @Description Run the avalanche/snowball amortization simulation over the active debt templates
// @Tags debt
// @Produce json
// @Param strategy query string false "avalanche or snowball (defaults to the saved strategy)"
// @Param extra query number false "Extra monthly payment (defaults to the saved amount)"
// @Success 200 {object} DebtPayoff "Payoff summary"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/debt/payoff [get]
func getDebtPayoff(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	strategy := c.DefaultQuery("strategy", app.state.DebtStrategy)
	if err := validateStrategy(strategy); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	extra := app.state.ExtraPayment
	if raw := c.Query("extra"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid extra payment"})
			return
		}
		extra = parsed
	}

	c.JSON(http.StatusOK, calculateDebtPayoff(app.state.SourceExpenses, strategy, extra))
}

// @Summary Update debt settings
// @Description Persist the preferred payoff strategy and extra monthly payment
// @Tags debt
// @Accept json
// @Produce json
// @Param settings body object{debtStrategy=string,extraPayment=number} true "Debt settings"
// @Success 200 {object} map[string]interface{} "Saved settings"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/debt/settings [put]
func updateDebtSettings(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	var request struct {
		DebtStrategy *string  `json:"debtStrategy"`
		ExtraPayment *float64 `json:"extraPayment"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if request.DebtStrategy != nil {
		if err := validateStrategy(*request.DebtStrategy); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		app.state.DebtStrategy = *request.DebtStrategy
	}
	if request.ExtraPayment != nil {
		if *request.ExtraPayment < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Extra payment cannot be negative"})
			return
		}
		app.state.ExtraPayment = *request.ExtraPayment
	}

	app.schedulePersist()

	c.JSON(http.StatusOK, gin.H{
		"debtStrategy": app.state.DebtStrategy,
		"extraPayment": app.state.ExtraPayment,
	})
}
