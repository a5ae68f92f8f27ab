package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Expense instance handler functions. These are thin wrappers over the
// mutation operations in mutations.go; every success queues a persist.

// @Summary Get application state
// @Description Retrieve the full persisted document plus the last storage error, if any
// @Tags state
// @Produce json
// @Success 200 {object} map[string]interface{} "State document"
// @Router /api/state [get]
func getAppState(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"state":     app.state,
		"syncError": app.syncError,
	})
}

// @Summary Update expense status
// @Description Transition an expense between pending, paid and cleared
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expenseId path string true "Expense ID"
// @Param status body object{status=string} true "New status"
// @Success 200 {object} Period "Updated period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/expenses/{expenseId}/status [put]
func updateExpenseStatusHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var request struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := app.state.updateExpenseStatus(period.ID, c.Param("expenseId"), request.Status); err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, period)
}

// @Summary Record partial payment
// @Description Apply a partial payment to an expense; rejected when the amount is non-positive or exceeds the remaining balance
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expenseId path string true "Expense ID"
// @Param payment body object{amount=number} true "Payment amount"
// @Success 200 {object} Period "Updated period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/expenses/{expenseId}/payments [post]
func recordPartialPaymentHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var request struct {
		Amount float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := app.state.recordPartialPayment(period.ID, c.Param("expenseId"), request.Amount); err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, period)
}

// @Summary Move expense
// @Description Move an expense to the adjacent period; template-backed moves record an exclusion so regeneration respects them
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expenseId path string true "Expense ID"
// @Param move body object{direction=string} true "forward or backward"
// @Success 200 {array} Period "Updated period list"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/expenses/{expenseId}/move [post]
func moveExpenseHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var request struct {
		Direction string `json:"direction"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := app.state.moveExpense(period.ID, c.Param("expenseId"), request.Direction); err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, app.state.Periods)
}

// @Summary Edit expense
// @Description Edit one occurrence; scope "template" also updates the backing template and all future occurrences
// @Tags expenses
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expenseId path string true "Expense ID"
// @Param edit body object{scope=string,expense=ExpenseEdit} true "Edit with scope (instance or template)"
// @Success 200 {object} Period "Updated period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/expenses/{expenseId} [put]
func editExpenseHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var request struct {
		Scope   string      `json:"scope"`
		Expense ExpenseEdit `json:"expense"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if request.Scope == "" {
		request.Scope = "instance"
	}

	if err := validateDescription(request.Expense.Description); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateAmount(request.Expense.Amount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := app.state.editExpense(period.ID, c.Param("expenseId"), request.Expense, request.Scope); err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, period)
}

// @Summary Delete expense
// @Description Remove one occurrence from its period; template-backed deletes record an exclusion and can be undone
// @Tags expenses
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expenseId path string true "Expense ID"
// @Success 200 {object} Period "Updated period"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/expenses/{expenseId} [delete]
func deleteExpenseHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	if err := app.state.deleteExpense(period.ID, c.Param("expenseId")); err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, period)
}

// @Summary Add one-off expense
// @Description Create an ad hoc expense inside one period; it survives regeneration verbatim
// @Tags one-offs
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param expense body OneOffExpense true "One-off data (description and amount required)"
// @Success 201 {object} OneOffExpense "Created one-off"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Period not found"
// @Router /api/periods/{id}/one-offs [post]
func addOneOffHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var fields OneOffExpense
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	oneOff, err := app.state.addOneOff(period.ID, fields)
	if err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusCreated, oneOff)
}

// @Summary Update one-off expense
// @Description Patch a one-off expense in place
// @Tags one-offs
// @Accept json
// @Produce json
// @Param id path int true "Period ID (0-23)"
// @Param oneOffId path string true "One-off ID"
// @Param edit body ExpenseEdit true "Updated fields"
// @Success 200 {object} OneOffExpense "Updated one-off"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Router /api/periods/{id}/one-offs/{oneOffId} [put]
func updateOneOffHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	period, ok := lookupPeriodParam(c)
	if !ok {
		return
	}

	var edit ExpenseEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	oneOff, err := app.state.updateOneOff(period.ID, c.Param("oneOffId"), edit)
	if err != nil {
		c.JSON(mutationStatus(err), gin.H{"error": err.Error()})
		return
	}

	app.schedulePersist()
	c.JSON(http.StatusOK, oneOff)
}

// @Summary Undo
// @Description Reverse the most recent move or delete
// @Tags state
// @Produce json
// @Success 200 {object} map[string]interface{} "Undo result"
// @Router /api/undo [post]
func undoHandler(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	undone := app.state.undo()
	if undone {
		app.schedulePersist()
	}

	c.JSON(http.StatusOK, gin.H{"undone": undone})
}

// mutationStatus maps a mutation error to an HTTP status: lookup failures
// are 404, validation rejections are 400.
func mutationStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if strings.Contains(err.Error(), "not found") {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}
