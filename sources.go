package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Source expense (template) handler functions. Every template mutation runs
// the period generator against the previous period list so the projection
// window picks up the change without losing per-instance edits.

// @Summary Get source expenses
// @Description Retrieve all recurring expense templates, including deactivated ones
// @Tags source-expenses
// @Produce json
// @Success 200 {array} SourceExpense "List of templates"
// @Router /api/source-expenses [get]
func getSourceExpenses(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.JSON(http.StatusOK, app.state.SourceExpenses)
}

// @Summary Create source expense
// @Description Create a recurring expense template and materialize it into the matching periods
// @Tags source-expenses
// @Accept json
// @Produce json
// @Param expense body SourceExpense true "Template data"
// @Success 201 {object} SourceExpense "Created template"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/source-expenses [post]
func createSourceExpense(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	var expense SourceExpense
	if err := c.ShouldBindJSON(&expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validateSourceExpense(expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense.ID = nextSourceExpenseID(app.state.SourceExpenses)
	expense.Active = true
	app.state.SourceExpenses = append(app.state.SourceExpenses, expense)
	app.regenerate()

	c.JSON(http.StatusCreated, expense)
}

// @Summary Update source expense
// @Description Update a template in place; unmodified instances re-sync on regeneration
// @Tags source-expenses
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param expense body SourceExpense true "Updated template data"
// @Success 200 {object} SourceExpense "Updated template"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Template not found"
// @Router /api/source-expenses/{id} [put]
func updateSourceExpense(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	var expense SourceExpense
	if err := c.ShouldBindJSON(&expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validateSourceExpense(expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for i := range app.state.SourceExpenses {
		if app.state.SourceExpenses[i].ID != id {
			continue
		}
		expense.ID = id
		expense.Active = app.state.SourceExpenses[i].Active
		app.state.SourceExpenses[i] = expense
		app.regenerate()

		c.JSON(http.StatusOK, expense)
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
}

// @Summary Deactivate source expense
// @Description Soft-delete a template; untouched instances disappear on regeneration, edited ones survive
// @Tags source-expenses
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} map[string]interface{} "Template deactivated"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Template not found"
// @Router /api/source-expenses/{id} [delete]
func deleteSourceExpense(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID"})
		return
	}

	for i := range app.state.SourceExpenses {
		if app.state.SourceExpenses[i].ID != id {
			continue
		}
		app.state.SourceExpenses[i].Active = false
		app.regenerate()

		c.JSON(http.StatusOK, gin.H{"message": "Template deactivated"})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
}

// validateSourceExpense checks the fields every template needs.
func validateSourceExpense(expense SourceExpense) error {
	if err := validateDescription(expense.Description); err != nil {
		return err
	}
	if err := validateAmount(expense.Amount); err != nil {
		return err
	}
	if err := validateCategory(expense.Category); err != nil {
		return err
	}
	if err := validateAssignment(expense.PaycheckAssignment); err != nil {
		return err
	}
	return validateDueDate(expense.DueDate)
}

// Income settings handler functions

// @Summary Get income settings
// @Description Retrieve the income schedule
// @Tags income
// @Produce json
// @Success 200 {object} IncomeSettings "Income settings"
// @Router /api/income [get]
func getIncomeSettings(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	c.JSON(http.StatusOK, app.state.IncomeSettings)
}

// @Summary Update income settings
// @Description Update the income schedule and regenerate the period window against it
// @Tags income
// @Accept json
// @Produce json
// @Param income body IncomeSettings true "Income settings"
// @Success 200 {object} IncomeSettings "Updated settings"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /api/income [put]
func updateIncomeSettings(c *gin.Context) {
	app.mu.Lock()
	defer app.mu.Unlock()

	var settings IncomeSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validateAssignment(settings.FirstPaycheckType); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if settings.PaycheckA < 0 || settings.PaycheckB < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paycheck amounts cannot be negative"})
		return
	}

	app.state.IncomeSettings = settings
	app.regenerate()

	c.JSON(http.StatusOK, app.state.IncomeSettings)
}
