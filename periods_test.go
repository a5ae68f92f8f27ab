package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePeriodsWindow(t *testing.T) {
	periods := generatePeriods(testTemplates(), testIncome(), nil)

	require.Len(t, periods, 24)
	for i, period := range periods {
		assert.Equal(t, i, period.ID)
		assert.Equal(t, "active", period.Status)

		wantStart := testStartDate.AddDate(0, 0, i*14)
		assert.Equal(t, wantStart, period.StartDate.Time, "period %d start", i)
		assert.Equal(t, wantStart.AddDate(0, 0, 14), period.EndDate.Time, "period %d end", i)

		if i%2 == 0 {
			assert.Equal(t, PaycheckA, period.Type, "period %d type", i)
			assert.Equal(t, 2000.0, period.DefaultIncome, "period %d income", i)
		} else {
			assert.Equal(t, PaycheckB, period.Type, "period %d type", i)
			assert.Equal(t, 2200.0, period.DefaultIncome, "period %d income", i)
		}
	}
}

func TestGeneratePeriodsFirstPaycheckB(t *testing.T) {
	income := testIncome()
	income.FirstPaycheckType = PaycheckB

	periods := generatePeriods(testTemplates(), income, nil)

	assert.Equal(t, PaycheckB, periods[0].Type)
	assert.Equal(t, PaycheckA, periods[1].Type)
	assert.Equal(t, 2200.0, periods[0].DefaultIncome)
	assert.Equal(t, 2000.0, periods[1].DefaultIncome)
}

func TestGeneratePeriodsFallsBackOnMissingStartDate(t *testing.T) {
	income := testIncome()
	income.StartDate = FlexTime{}

	periods := generatePeriods(testTemplates(), income, nil)

	require.Len(t, periods, 24)
	assert.False(t, periods[0].StartDate.IsZero())
}

func TestGeneratePeriodsAssignsTemplatesByTrack(t *testing.T) {
	periods := generatePeriods(testTemplates(), testIncome(), nil)

	// Rent is on track A, the credit card on track B.
	require.Len(t, periods[0].Expenses, 1)
	assert.Equal(t, "Rent", periods[0].Expenses[0].Description)
	assert.Equal(t, StatusPending, periods[0].Expenses[0].Status)
	assert.Equal(t, 0, periods[0].Expenses[0].PeriodID)

	require.Len(t, periods[1].Expenses, 1)
	assert.Equal(t, "Credit Card", periods[1].Expenses[0].Description)
	assert.Equal(t, 1, periods[1].Expenses[0].PeriodID)
}

func TestGeneratePeriodsIdempotent(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	first := generatePeriods(templates, income, nil)
	second := generatePeriods(templates, income, first)

	assert.Equal(t, first, second)

	third := generatePeriods(templates, income, second)
	assert.Equal(t, second, third)
}

func TestGeneratePeriodsPreservesInstanceEdits(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	periods[0].Expenses[0].Amount = 999
	periods[0].Expenses[0].Notes = "late fee included"

	regenerated := generatePeriods(templates, income, periods)

	require.Len(t, regenerated[0].Expenses, 1)
	assert.Equal(t, 999.0, regenerated[0].Expenses[0].Amount)
	assert.Equal(t, "late fee included", regenerated[0].Expenses[0].Notes)

	// Untouched occurrences in later periods still track the template.
	require.Len(t, regenerated[2].Expenses, 1)
	assert.Equal(t, 1200.0, regenerated[2].Expenses[0].Amount)
}

func TestGeneratePeriodsSyncsTemplateChangesToUntouchedInstances(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	templates[0].Amount = 1350
	templates[0].Description = "Rent (new lease)"

	regenerated := generatePeriods(templates, income, periods)

	require.Len(t, regenerated[0].Expenses, 1)
	assert.Equal(t, 1350.0, regenerated[0].Expenses[0].Amount)
	assert.Equal(t, "Rent (new lease)", regenerated[0].Expenses[0].Description)
}

func TestGeneratePeriodsRespectsExclusions(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	periods[0].exclude(1)
	periods[0].removeInstance(0)

	regenerated := generatePeriods(templates, income, periods)

	assert.Empty(t, regenerated[0].Expenses)
	assert.True(t, regenerated[0].isExcluded(1))

	// Other periods on the same track are unaffected.
	require.Len(t, regenerated[2].Expenses, 1)
}

func TestGeneratePeriodsAppendsNewTemplateAtTrailingPosition(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)

	templates = append(templates, SourceExpense{
		ID: 7, Description: "Internet", Category: "Utilities", Amount: 80,
		DueDate: 12, PaycheckAssignment: PaycheckA, Active: true,
	})
	regenerated := generatePeriods(templates, income, periods)

	require.Len(t, regenerated[0].Expenses, 2)
	added := regenerated[0].Expenses[1]
	assert.Equal(t, "Internet", added.Description)
	assert.Equal(t, regenerated[0].Expenses[0].Position+1, added.Position)
}

func TestGeneratePeriodsDropsUntouchedInstancesOfDeactivatedTemplate(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	templates[0].Active = false

	regenerated := generatePeriods(templates, income, periods)

	for _, period := range regenerated {
		for _, e := range period.Expenses {
			assert.NotEqual(t, int64(1), e.ID, "period %d still has the deactivated template", period.ID)
		}
	}
}

func TestGeneratePeriodsKeepsEditedInstancesOfDeactivatedTemplate(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	periods[0].Expenses[0].Amount = 600
	templates[0].Active = false

	regenerated := generatePeriods(templates, income, periods)

	require.Len(t, regenerated[0].Expenses, 1)
	assert.Equal(t, 600.0, regenerated[0].Expenses[0].Amount)
	assert.Empty(t, regenerated[2].Expenses)
}

func TestGeneratePeriodsKeepsMovedInstanceAfterDeactivation(t *testing.T) {
	income := testIncome()
	templates := testTemplates()

	state := &AppState{SourceExpenses: templates, IncomeSettings: income}
	state.Periods = generatePeriods(state.SourceExpenses, income, nil)

	require.NoError(t, state.moveExpense(0, "1", "forward"))
	templates[0].Active = false

	regenerated := generatePeriods(templates, income, state.Periods)

	assert.Empty(t, regenerated[0].Expenses)
	require.Len(t, regenerated[1].Expenses, 2)
	_, moved := findPeriod(regenerated, 1).findInstance(1)
	require.NotNil(t, moved)
	assert.Equal(t, 1, moved.PeriodID)
}

func TestGeneratePeriodsKeepsRepeatedlyMovedInstanceAfterDeactivation(t *testing.T) {
	income := testIncome()
	templates := testTemplates()

	state := &AppState{SourceExpenses: templates, IncomeSettings: income}
	state.Periods = generatePeriods(state.SourceExpenses, income, nil)

	// Two hops land the occurrence back on a period of its own track.
	require.NoError(t, state.moveExpense(0, "1", "forward"))
	require.NoError(t, state.moveExpense(1, "1", "forward"))
	templates[0].Active = false

	regenerated := generatePeriods(templates, income, state.Periods)

	survivors := 0
	for _, e := range findPeriod(regenerated, 2).Expenses {
		if e.ID == 1 {
			survivors++
		}
	}
	assert.Equal(t, 1, survivors)
	_, moved := findPeriod(regenerated, 2).findInstance(1)
	require.NotNil(t, moved)
	assert.True(t, moved.Moved)
}

func TestGeneratePeriodsCarriesOneOffsAndIncome(t *testing.T) {
	templates := testTemplates()
	income := testIncome()

	periods := generatePeriods(templates, income, nil)
	periods[3].AdditionalIncome = 250
	periods[3].OneOffExpenses = append(periods[3].OneOffExpenses, OneOffExpense{
		ID: "abc", IsOneOff: true,
		expenseCore: expenseCore{Description: "Vet visit", Amount: 90, Status: StatusPending, PeriodID: 3},
	})

	regenerated := generatePeriods(templates, income, periods)

	assert.Equal(t, 250.0, regenerated[3].AdditionalIncome)
	require.Len(t, regenerated[3].OneOffExpenses, 1)
	assert.Equal(t, "Vet visit", regenerated[3].OneOffExpenses[0].Description)
}

func TestIsIndividuallyModified(t *testing.T) {
	template := testTemplates()[0]
	base := newInstanceFromTemplate(template, 0)

	assert.False(t, isIndividuallyModified(base, template, 0))

	amountChanged := base
	amountChanged.Amount = 100
	assert.True(t, isIndividuallyModified(amountChanged, template, 0))

	statusChanged := base
	statusChanged.Status = StatusPaid
	assert.True(t, isIndividuallyModified(statusChanged, template, 0))

	withNotes := base
	withNotes.Notes = "split with roommate"
	assert.True(t, isIndividuallyModified(withNotes, template, 0))

	moved := base
	moved.PeriodID = 2
	assert.True(t, isIndividuallyModified(moved, template, 0))
}
