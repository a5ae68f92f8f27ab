package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// The nine fixed expense categories.
var expenseCategories = []string{
	"Housing", "Food", "Transportation", "Utilities", "Entertainment",
	"Healthcare", "Debt", "Savings", "Other",
}

// Validation functions

// validateDescription validates that a description is not empty or just
// whitespace.
func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	return nil
}

// validateAmount validates that an amount is positive.
func validateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be greater than zero")
	}
	return nil
}

// validateCategory validates a category against the fixed list.
func validateCategory(category string) error {
	for _, known := range expenseCategories {
		if category == known {
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", category)
}

// validateAssignment validates a paycheck assignment.
func validateAssignment(assignment string) error {
	if assignment != PaycheckA && assignment != PaycheckB {
		return fmt.Errorf("paycheck assignment must be A or B")
	}
	return nil
}

// validateDueDate validates a day-of-month due date.
func validateDueDate(dueDate int) error {
	if dueDate < 1 || dueDate > 31 {
		return fmt.Errorf("due date must be between 1 and 31")
	}
	return nil
}

// validateStatus validates an expense status.
func validateStatus(status string) error {
	switch status {
	case StatusPending, StatusPaid, StatusCleared:
		return nil
	}
	return fmt.Errorf("status must be pending, paid or cleared")
}

// validateStrategy validates a debt payoff strategy.
func validateStrategy(strategy string) error {
	if strategy != StrategyAvalanche && strategy != StrategySnowball {
		return fmt.Errorf("strategy must be avalanche or snowball")
	}
	return nil
}

// ID helpers

// parseTemplateID interprets an expense id path parameter. Template-backed
// instances use the template's integer id; one-offs use an opaque token.
func parseTemplateID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// newOneOffID generates a globally unique token for a one-off expense.
func newOneOffID() string {
	return uuid.NewString()
}

// nextSourceExpenseID returns the next free template id.
func nextSourceExpenseID(templates []SourceExpense) int64 {
	var max int64
	for _, t := range templates {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}
