package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Period generation. generatePeriods is the reconciliation core: it rebuilds
// the 24-period window from the template list while preserving every
// per-instance edit (moves, partial payments, status changes) recorded in the
// previous period list.

const (
	periodCount  = 24
	periodDays   = 14
	periodStatus = "active"
)

// generatePeriods maps (templates, income schedule, previous periods) to a
// fresh period list. It always returns exactly 24 well-formed periods with
// ids 0..23 and never fails: an unusable start date falls back to now.
func generatePeriods(templates []SourceExpense, income IncomeSettings, previous []Period) []Period {
	startBase := income.StartDate.Time
	if startBase.IsZero() {
		startBase = time.Now()
	}

	generated := make([]Period, 0, periodCount)
	for i := 0; i < periodCount; i++ {
		periodStart := startBase.AddDate(0, 0, i*periodDays)
		periodEnd := periodStart.AddDate(0, 0, periodDays)

		isTypeA := i%2 == 0
		if income.FirstPaycheckType != PaycheckA {
			isTypeA = i%2 == 1
		}
		periodType := PaycheckB
		defaultIncome := income.PaycheckB
		if isTypeA {
			periodType = PaycheckA
			defaultIncome = income.PaycheckA
		}

		prior := findPeriod(previous, i)

		period := Period{
			ID:                 i,
			Type:               periodType,
			StartDate:          FlexTime{periodStart},
			EndDate:            FlexTime{periodEnd},
			DefaultIncome:      defaultIncome,
			Status:             periodStatus,
			Expenses:           []ExpenseInstance{},
			OneOffExpenses:     []OneOffExpense{},
			ExcludedExpenseIDs: []int64{},
		}

		if prior != nil {
			period.AdditionalIncome = prior.AdditionalIncome
			for _, oneOff := range prior.OneOffExpenses {
				period.OneOffExpenses = append(period.OneOffExpenses, oneOff.clone())
			}
			period.ExcludedExpenseIDs = append(period.ExcludedExpenseIDs, prior.ExcludedExpenseIDs...)
		}

		if prior != nil && len(prior.Expenses) > 0 {
			period.Expenses = reconcileExpenses(prior, templates, i, periodType)
		} else {
			// First materialization: instantiate every matching active template.
			// The carried exclusion set still applies when every prior instance
			// was moved out and the list came up empty.
			position := 0.0
			for _, template := range templates {
				if !template.Active || template.PaycheckAssignment != periodType {
					continue
				}
				if period.isExcluded(template.ID) {
					continue
				}
				instance := newInstanceFromTemplate(template, i)
				instance.Position = position
				position++
				period.Expenses = append(period.Expenses, instance)
			}
		}

		generated = append(generated, period)
	}

	return generated
}

// reconcileExpenses merges a previously materialized period against the
// current template list. Unmodified instances are re-synced from their
// template (picking up template edits, dropping deactivated templates);
// individually modified instances are kept byte-for-byte so that moves and
// edits survive regeneration. Newly created or re-activated templates are
// appended unless the period excludes them.
func reconcileExpenses(prior *Period, templates []SourceExpense, periodID int, periodType string) []ExpenseInstance {
	expenses := make([]ExpenseInstance, 0, len(prior.Expenses))

	for _, existing := range prior.Expenses {
		template := findActiveTemplate(templates, existing.ID)
		if template != nil && !isIndividuallyModified(existing, *template, periodID) {
			synced := newInstanceFromTemplate(*template, periodID)
			if existing.Status != "" {
				synced.Status = existing.Status
			}
			if existing.AmountCleared != 0 {
				synced.AmountCleared = existing.AmountCleared
			}
			synced.Position = existing.Position
			synced.Moved = existing.Moved
			expenses = append(expenses, synced)
			continue
		}
		if template == nil && wasSyncedCopy(existing, templates, periodID, periodType) {
			// Template was deactivated and the instance never touched: drop it.
			continue
		}
		expenses = append(expenses, existing.clone())
	}

	for _, template := range templates {
		if !template.Active || template.PaycheckAssignment != periodType {
			continue
		}
		if containsExpense(expenses, template.ID) || prior.isExcluded(template.ID) {
			continue
		}
		instance := newInstanceFromTemplate(template, periodID)
		instance.Position = maxPosition(expenses) + 1
		expenses = append(expenses, instance)
	}

	return expenses
}

// isIndividuallyModified reports whether an instance has diverged from its
// template in any way that should suppress template sync: amount,
// description or category changed, status advanced past pending, notes
// recorded, or the instance living in a period it was not generated for.
func isIndividuallyModified(instance ExpenseInstance, template SourceExpense, periodID int) bool {
	return instance.Amount != template.Amount ||
		instance.Description != template.Description ||
		instance.Category != template.Category ||
		instance.Status != StatusPending ||
		instance.Notes != "" ||
		instance.PeriodID != periodID
}

// wasSyncedCopy reports whether the instance still matches its now-inactive
// template verbatim, meaning it carries no user edits worth preserving. A
// relocated instance never counts as one: the move marker is the durable
// signal, and a paycheck assignment disagreeing with the period's track covers
// documents saved before the marker existed.
func wasSyncedCopy(instance ExpenseInstance, templates []SourceExpense, periodID int, periodType string) bool {
	if instance.Moved {
		return false
	}
	if instance.PaycheckAssignment != "" && instance.PaycheckAssignment != periodType {
		return false
	}
	for _, template := range templates {
		if template.ID == instance.ID && !template.Active {
			return !isIndividuallyModified(instance, template, periodID)
		}
	}
	return false
}

// newInstanceFromTemplate materializes a template into a period with default
// per-occurrence state.
func newInstanceFromTemplate(template SourceExpense, periodID int) ExpenseInstance {
	return ExpenseInstance{
		ID: template.ID,
		expenseCore: expenseCore{
			Description:   template.Description,
			Category:      template.Category,
			Amount:        template.Amount,
			Status:        StatusPending,
			AmountCleared: template.Amount,
			PeriodID:      periodID,
		},
		DueDate:            template.DueDate,
		PaycheckAssignment: template.PaycheckAssignment,
		IsDebt:             template.IsDebt,
		Balance:            template.Balance,
		APR:                template.APR,
		MinimumPayment:     template.MinimumPayment,
		SubBalances:        append([]SubBalance(nil), template.SubBalances...),
		CreditLimit:        template.CreditLimit,
	}
}

func findPeriod(periods []Period, id int) *Period {
	for i := range periods {
		if periods[i].ID == id {
			return &periods[i]
		}
	}
	return nil
}

func findActiveTemplate(templates []SourceExpense, id int64) *SourceExpense {
	for i := range templates {
		if templates[i].ID == id && templates[i].Active {
			return &templates[i]
		}
	}
	return nil
}

func containsExpense(expenses []ExpenseInstance, id int64) bool {
	for _, e := range expenses {
		if e.ID == id {
			return true
		}
	}
	return false
}

func maxPosition(expenses []ExpenseInstance) float64 {
	max := -1.0
	for _, e := range expenses {
		if e.Position > max {
			max = e.Position
		}
	}
	return max
}

// Period handler functions

// @Summary Get all periods
// @Description Retrieve the full 24-period projection window
// @Tags periods
// @Produce json
// @Success 200 {array} Period "List of periods"
// @Router /api/periods [get]
func getPeriods(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.JSON(http.StatusOK, app.state.Periods)
}

// @Summary Get one period
// @Description Retrieve a single period by id
// @Tags periods
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Success 200 {object} Period "Period"
// @Failure 404 {object} map[string]interface{} "Period not found"
// @Router /api/periods/{id} [get]
func getPeriod(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, period)
}

// @Summary Regenerate periods
// @Description Rebuild the 24-period window from the current templates and income schedule, preserving per-instance edits
// @Tags periods
// @Produce json
// @Success 200 {array} Period "Regenerated periods"
// @Router /api/periods/generate [post]
func regeneratePeriods(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.state.Periods = generatePeriods(app.state.SourceExpenses, app.state.IncomeSettings, app.state.Periods)
	app.schedulePersist()

	c.JSON(http.StatusOK, app.state.Periods)
}

// @Summary Set additional income
// @Description Set the user income override for one period
// @Tags periods
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param income body object{additionalIncome=number} true "Additional income"
// @Success 200 {object} Period "Updated period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Period not found"
// @Router /api/periods/{id}/additional-income [put]
func setAdditionalIncome(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var request struct {
		AdditionalIncome *float64 `json:"additionalIncome"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.AdditionalIncome == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	period.AdditionalIncome = *request.AdditionalIncome
	app.schedulePersist()

	c.JSON(http.StatusOK, period)
}

// lookupPeriodParam resolves the :id path parameter against the current
// period list, writing the error response itself when the id is bad. Callers
// must hold app.mu.
func lookupPeriodParam(c *gin.Context) (*Period, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period ID"})
		return nil, false
	}

	period := findPeriod(app.state.Periods, id)
	if period == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Period not found"})
		return nil, false
	}

	return period, true
}
