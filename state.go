package main

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// App owns the in-memory state document and its persistence. All handler
// entry points lock the mutex, which serializes mutations the same way the
// original single-threaded event loop did.
type App struct {
	mu    sync.Mutex
	state *AppState
	store Store

	saveDelay time.Duration
	saveTimer *time.Timer
	syncError string
}

// saveDebounce batches rapid mutations into one storage write.
const saveDebounce = 600 * time.Millisecond

// newApp builds an App around a store, loading the persisted document or
// seeding a default one, and making sure the period window exists.
func newApp(store Store) (*App, error) {
	a := &App{store: store, saveDelay: saveDebounce}

	data, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if data == nil {
		a.state = defaultState()
	} else {
		state, err := applyAppState(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode state: %w", err)
		}
		a.state = state
	}

	if len(a.state.Periods) == 0 {
		a.state.Periods = generatePeriods(a.state.SourceExpenses, a.state.IncomeSettings, nil)
	}

	return a, nil
}

// regenerate rebuilds the period window from the current templates and
// income schedule and queues a save. Callers must hold a.mu.
func (a *App) regenerate() {
	a.state.Periods = generatePeriods(a.state.SourceExpenses, a.state.IncomeSettings, a.state.Periods)
	a.schedulePersist()
}

// schedulePersist queues a debounced write of the current state. Last write
// wins; a failure is recorded as a user-visible error string and never rolls
// back in-memory state. Callers must hold a.mu.
func (a *App) schedulePersist() {
	data, err := json.Marshal(a.state)
	if err != nil {
		a.syncError = fmt.Sprintf("Failed to encode state: %v", err)
		return
	}

	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.saveTimer = time.AfterFunc(a.saveDelay, func() {
		if err := a.store.Save(data); err != nil {
			log.Printf("Error saving state: %v", err)
			a.mu.Lock()
			a.syncError = fmt.Sprintf("Failed to save: %v", err)
			a.mu.Unlock()
			return
		}
		a.mu.Lock()
		a.syncError = ""
		a.mu.Unlock()
	})
}

// flush writes any pending state immediately. Used on shutdown and in tests.
func (a *App) flush() error {
	a.mu.Lock()
	if a.saveTimer != nil {
		a.saveTimer.Stop()
		a.saveTimer = nil
	}
	data, err := json.Marshal(a.state)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return a.store.Save(data)
}

// applyAppState decodes a persisted document, tolerating partial or
// malformed payloads: missing arrays default to empty, missing scalars to
// documented defaults, bad dates degrade to zero. Only invalid JSON is an
// error.
func applyAppState(data []byte) (*AppState, error) {
	var state AppState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("invalid state document: %w", err)
	}
	normalizeState(&state)
	return &state, nil
}

// normalizeState fills in every default the document may be missing.
func normalizeState(state *AppState) {
	if state.SourceExpenses == nil {
		state.SourceExpenses = []SourceExpense{}
	}
	if state.Periods == nil {
		state.Periods = []Period{}
	}
	if state.UndoStack == nil {
		state.UndoStack = []UndoEntry{}
	}
	if state.CurrentView == "" {
		state.CurrentView = "single"
	}
	if validateStrategy(state.DebtStrategy) != nil {
		state.DebtStrategy = StrategyAvalanche
	}
	if state.ExtraPayment < 0 {
		state.ExtraPayment = 0
	}
	if state.SelectedPeriod < 0 || state.SelectedPeriod >= periodCount {
		state.SelectedPeriod = 0
	}
	if validateAssignment(state.IncomeSettings.FirstPaycheckType) != nil {
		state.IncomeSettings.FirstPaycheckType = PaycheckA
	}
	state.Version = 1

	for i := range state.Periods {
		period := &state.Periods[i]
		if period.Expenses == nil {
			period.Expenses = []ExpenseInstance{}
		}
		if period.OneOffExpenses == nil {
			period.OneOffExpenses = []OneOffExpense{}
		}
		if period.ExcludedExpenseIDs == nil {
			period.ExcludedExpenseIDs = []int64{}
		}
		if period.Status == "" {
			period.Status = periodStatus
		}
		for j := range period.Expenses {
			if period.Expenses[j].Status == "" {
				period.Expenses[j].Status = StatusPending
			}
		}
		for j := range period.OneOffExpenses {
			oneOff := &period.OneOffExpenses[j]
			oneOff.IsOneOff = true
			if oneOff.Status == "" {
				oneOff.Status = StatusPending
			}
		}
	}
}

// defaultState seeds a fresh install with the starter templates and income
// schedule.
func defaultState() *AppState {
	return &AppState{
		SourceExpenses: []SourceExpense{
			{ID: 1, Description: "Rent", Category: "Housing", Amount: 1200, DueDate: 1, PaycheckAssignment: PaycheckA, Active: true},
			{ID: 2, Description: "Credit Card", Category: "Debt", Amount: 150, DueDate: 15, PaycheckAssignment: PaycheckB, IsDebt: true, Balance: 3500, APR: 18.5, MinimumPayment: 150, Active: true},
			{ID: 3, Description: "Groceries", Category: "Food", Amount: 400, DueDate: 10, PaycheckAssignment: PaycheckA, Active: true},
			{ID: 4, Description: "Car Payment", Category: "Transportation", Amount: 350, DueDate: 20, PaycheckAssignment: PaycheckB, IsDebt: true, Balance: 8500, APR: 4.5, MinimumPayment: 350, Active: true},
			{ID: 5, Description: "Utilities", Category: "Housing", Amount: 150, DueDate: 5, PaycheckAssignment: PaycheckA, Active: true},
			{ID: 6, Description: "Student Loan", Category: "Debt", Amount: 200, DueDate: 25, PaycheckAssignment: PaycheckB, IsDebt: true, Balance: 15000, APR: 6.8, MinimumPayment: 200, Active: true},
		},
		IncomeSettings: IncomeSettings{
			PaycheckA:         2800,
			PaycheckB:         2800,
			StartDate:         FlexTime{time.Now()},
			FirstPaycheckType: PaycheckA,
		},
		Periods:        []Period{},
		CurrentView:    "single",
		SelectedPeriod: 0,
		DebtStrategy:   StrategyAvalanche,
		ExtraPayment:   0,
		UndoStack:      []UndoEntry{},
		Version:        1,
	}
}
