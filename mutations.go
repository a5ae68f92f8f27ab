package main

import (
	"fmt"
	"time"
)

// Instance mutation operations. These patch the period list directly,
// bypassing regeneration; the exclusion-set and position bookkeeping they
// perform is what lets a later regeneration pass respect the edits.

// amountEpsilon guards float comparisons on money amounts.
const amountEpsilon = 0.001

// undoStackLimit bounds the undo log; the oldest entry is dropped first.
const undoStackLimit = 10

// applyPartialPayment records a payment against the occurrence. The payment
// must be positive and must not exceed the remaining balance, otherwise the
// call is rejected with no mutation. OriginalAmount is captured on the first
// payment and never overwritten; Amount always reflects the remaining
// balance afterwards.
func (e *expenseCore) applyPartialPayment(payment float64) error {
	if payment <= 0 {
		return fmt.Errorf("payment must be greater than zero")
	}
	remaining := e.remainingAmount()
	if payment > remaining+amountEpsilon {
		return fmt.Errorf("payment exceeds the remaining balance of %.2f", remaining)
	}

	original := e.totalAmount()
	paid := e.paidSoFar() + payment
	e.OriginalAmount = &original
	e.PaidAmount = &paid
	e.Amount = original - paid
	if e.Amount <= amountEpsilon {
		e.Status = StatusPaid
	} else {
		e.Status = StatusPending
	}
	return nil
}

// setStatus transitions the occurrence between pending/paid/cleared. Clearing
// locks in the current amount as the cleared amount.
func (e *expenseCore) setStatus(status string) {
	e.Status = status
	if status == StatusCleared {
		e.AmountCleared = e.Amount
	}
}

// ExpenseEdit is the full edited representation submitted for an occurrence.
// The editor flattens the amount to the occurrence total for display; the
// engine un-flattens on save.
type ExpenseEdit struct {
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Amount         float64 `json:"amount"`
	DueDate        int     `json:"dueDate"`
	Notes          string  `json:"notes"`
	Status         string  `json:"status"`
	IsDebt         bool    `json:"isDebt"`
	Balance        float64 `json:"balance"`
	APR            float64 `json:"apr"`
	MinimumPayment float64 `json:"minimumPayment"`
}

// applyEdit patches the occurrence from an edit. If the edited amount differs
// from the previous total the edit redefines the occurrence: the
// partial-payment history is reset and a paid/cleared status drops back to
// pending. If the amount is unchanged the partial-payment fields are
// preserved as they were.
func (e *expenseCore) applyEdit(edit ExpenseEdit) {
	previousTotal := e.totalAmount()

	e.Description = edit.Description
	e.Category = edit.Category
	e.Notes = edit.Notes
	if edit.Status != "" {
		e.Status = edit.Status
	}

	if edit.Amount != previousTotal {
		e.Amount = edit.Amount
		e.OriginalAmount = nil
		e.PaidAmount = nil
		if e.Status == StatusPaid || e.Status == StatusCleared {
			e.Status = StatusPending
		}
	}
	// Amount unchanged: the remaining Amount, OriginalAmount and PaidAmount
	// stay exactly as they were before the editor flattened them.
}

func (p *Period) findInstance(id int64) (int, *ExpenseInstance) {
	for i := range p.Expenses {
		if p.Expenses[i].ID == id {
			return i, &p.Expenses[i]
		}
	}
	return -1, nil
}

func (p *Period) findOneOff(id string) (int, *OneOffExpense) {
	for i := range p.OneOffExpenses {
		if p.OneOffExpenses[i].ID == id {
			return i, &p.OneOffExpenses[i]
		}
	}
	return -1, nil
}

func (p *Period) removeInstance(index int) {
	p.Expenses = append(p.Expenses[:index], p.Expenses[index+1:]...)
}

func (p *Period) removeOneOff(index int) {
	p.OneOffExpenses = append(p.OneOffExpenses[:index], p.OneOffExpenses[index+1:]...)
}

// pushUndo appends an inverse-action entry, dropping the oldest beyond the
// stack limit.
func (s *AppState) pushUndo(entry UndoEntry) {
	s.UndoStack = append(s.UndoStack, entry)
	if len(s.UndoStack) > undoStackLimit {
		s.UndoStack = s.UndoStack[len(s.UndoStack)-undoStackLimit:]
	}
}

// moveExpense moves one occurrence to the adjacent period in the given
// direction, recording an inverse move on the undo stack. Moving past either
// end of the window is a no-op.
func (s *AppState) moveExpense(fromPeriodID int, expenseID string, direction string) error {
	fromIndex := -1
	for i := range s.Periods {
		if s.Periods[i].ID == fromPeriodID {
			fromIndex = i
			break
		}
	}
	if fromIndex < 0 {
		return fmt.Errorf("period %d not found", fromPeriodID)
	}

	toIndex := fromIndex - 1
	if direction == "forward" {
		toIndex = fromIndex + 1
	} else if direction != "backward" {
		return fmt.Errorf("direction must be forward or backward")
	}
	if toIndex < 0 || toIndex >= len(s.Periods) {
		return nil
	}

	from := &s.Periods[fromIndex]
	to := &s.Periods[toIndex]
	now := FlexTime{time.Now()}

	if templateID, ok := parseTemplateID(expenseID); ok {
		index, instance := from.findInstance(templateID)
		if instance == nil {
			return fmt.Errorf("expense %s not found in period %d", expenseID, fromPeriodID)
		}

		original := instance.clone()
		s.pushUndo(UndoEntry{
			Type:         UndoMoveExpense,
			Expense:      &original,
			FromPeriodID: to.ID,
			ToPeriodID:   from.ID,
		})

		moved := instance.clone()
		from.removeInstance(index)
		from.exclude(templateID)
		to.unexclude(templateID)

		moved.Moved = true
		moved.PeriodID = to.ID
		moved.Status = StatusPending
		moved.AmountCleared = moved.Amount
		moved.Position = to.nextExpensePosition()
		moved.UpdatedAt = now
		to.Expenses = append(to.Expenses, moved)
		return nil
	}

	index, oneOff := from.findOneOff(expenseID)
	if oneOff == nil {
		return fmt.Errorf("expense %s not found in period %d", expenseID, fromPeriodID)
	}

	original := oneOff.clone()
	s.pushUndo(UndoEntry{
		Type:         UndoMoveExpense,
		OneOff:       &original,
		FromPeriodID: to.ID,
		ToPeriodID:   from.ID,
	})

	moved := oneOff.clone()
	from.removeOneOff(index)

	moved.PeriodID = to.ID
	moved.Status = StatusPending
	moved.Position = to.nextOneOffPosition()
	moved.UpdatedAt = now
	to.OneOffExpenses = append(to.OneOffExpenses, moved)
	return nil
}

// updateExpenseStatus transitions one occurrence between pending, paid and
// cleared.
func (s *AppState) updateExpenseStatus(periodID int, expenseID string, status string) error {
	if err := validateStatus(status); err != nil {
		return err
	}

	core, err := s.lookupExpense(periodID, expenseID)
	if err != nil {
		return err
	}

	core.setStatus(status)
	return nil
}

// recordPartialPayment applies a partial payment to one occurrence.
func (s *AppState) recordPartialPayment(periodID int, expenseID string, payment float64) error {
	core, err := s.lookupExpense(periodID, expenseID)
	if err != nil {
		return err
	}
	return core.applyPartialPayment(payment)
}

// editExpense applies an edit to one occurrence. With scope "instance" only
// this period's occurrence changes. With scope "template" the backing
// template is updated (and re-activated), then every instance in this and
// later periods is overwritten from the edited values; later periods are
// forced back to pending, earlier periods are untouched.
func (s *AppState) editExpense(periodID int, expenseID string, edit ExpenseEdit, scope string) error {
	if scope != "instance" && scope != "template" {
		return fmt.Errorf("scope must be instance or template")
	}
	if edit.Status != "" {
		if err := validateStatus(edit.Status); err != nil {
			return err
		}
	}

	period := findPeriod(s.Periods, periodID)
	if period == nil {
		return fmt.Errorf("period %d not found", periodID)
	}

	templateID, isTemplateBacked := parseTemplateID(expenseID)
	if !isTemplateBacked {
		if scope == "template" {
			return fmt.Errorf("one-off expenses have no template to edit")
		}
		_, oneOff := period.findOneOff(expenseID)
		if oneOff == nil {
			return fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
		}
		oneOff.applyEdit(edit)
		oneOff.UpdatedAt = FlexTime{time.Now()}
		return nil
	}

	_, instance := period.findInstance(templateID)
	if instance == nil {
		return fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
	}

	instance.applyEdit(edit)
	instance.DueDate = edit.DueDate
	instance.IsDebt = edit.IsDebt
	instance.Balance = edit.Balance
	instance.APR = edit.APR
	instance.MinimumPayment = edit.MinimumPayment
	instance.UpdatedAt = FlexTime{time.Now()}

	if scope == "instance" {
		return nil
	}

	for i := range s.SourceExpenses {
		if s.SourceExpenses[i].ID != templateID {
			continue
		}
		template := &s.SourceExpenses[i]
		template.Description = edit.Description
		template.Category = edit.Category
		template.Amount = edit.Amount
		template.DueDate = edit.DueDate
		template.IsDebt = edit.IsDebt
		template.Balance = edit.Balance
		template.APR = edit.APR
		template.MinimumPayment = edit.MinimumPayment
		template.Active = true
	}

	// Propagate forward. History before this period stays immutable.
	for i := range s.Periods {
		future := &s.Periods[i]
		if future.ID <= periodID {
			continue
		}
		_, futureInstance := future.findInstance(templateID)
		if futureInstance == nil {
			continue
		}
		futureInstance.Description = edit.Description
		futureInstance.Category = edit.Category
		futureInstance.Notes = edit.Notes
		futureInstance.Amount = edit.Amount
		futureInstance.OriginalAmount = nil
		futureInstance.PaidAmount = nil
		futureInstance.Status = StatusPending
		futureInstance.DueDate = edit.DueDate
		futureInstance.IsDebt = edit.IsDebt
		futureInstance.Balance = edit.Balance
		futureInstance.APR = edit.APR
		futureInstance.MinimumPayment = edit.MinimumPayment
		futureInstance.PeriodID = future.ID
	}

	return nil
}

// deleteExpense removes one occurrence from its period, recording an undo
// entry that can restore it. Template-backed occurrences are also excluded
// from the period so regeneration does not re-insert them.
func (s *AppState) deleteExpense(periodID int, expenseID string) error {
	period := findPeriod(s.Periods, periodID)
	if period == nil {
		return fmt.Errorf("period %d not found", periodID)
	}

	if templateID, ok := parseTemplateID(expenseID); ok {
		index, instance := period.findInstance(templateID)
		if instance == nil {
			return fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
		}
		original := instance.clone()
		s.pushUndo(UndoEntry{Type: UndoAddExpense, Expense: &original, PeriodID: periodID})
		period.removeInstance(index)
		period.exclude(templateID)
		return nil
	}

	index, oneOff := period.findOneOff(expenseID)
	if oneOff == nil {
		return fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
	}
	original := oneOff.clone()
	s.pushUndo(UndoEntry{Type: UndoAddExpense, OneOff: &original, PeriodID: periodID})
	period.removeOneOff(index)
	return nil
}

// addOneOff creates a one-off expense inside one period.
func (s *AppState) addOneOff(periodID int, fields OneOffExpense) (*OneOffExpense, error) {
	period := findPeriod(s.Periods, periodID)
	if period == nil {
		return nil, fmt.Errorf("period %d not found", periodID)
	}

	if err := validateDescription(fields.Description); err != nil {
		return nil, err
	}
	if err := validateAmount(fields.Amount); err != nil {
		return nil, err
	}
	if fields.Category != "" {
		if err := validateCategory(fields.Category); err != nil {
			return nil, err
		}
	}

	oneOff := OneOffExpense{
		ID:       newOneOffID(),
		IsOneOff: true,
		expenseCore: expenseCore{
			Description: fields.Description,
			Category:    fields.Category,
			Amount:      fields.Amount,
			Notes:       fields.Notes,
			Status:      StatusPending,
			Position:    period.nextOneOffPosition(),
			PeriodID:    periodID,
		},
		CreatedAt: FlexTime{time.Now()},
	}

	period.OneOffExpenses = append(period.OneOffExpenses, oneOff)
	return &period.OneOffExpenses[len(period.OneOffExpenses)-1], nil
}

// updateOneOff patches a one-off expense in place.
func (s *AppState) updateOneOff(periodID int, id string, edit ExpenseEdit) (*OneOffExpense, error) {
	period := findPeriod(s.Periods, periodID)
	if period == nil {
		return nil, fmt.Errorf("period %d not found", periodID)
	}

	_, oneOff := period.findOneOff(id)
	if oneOff == nil {
		return nil, fmt.Errorf("one-off %s not found in period %d", id, periodID)
	}

	if err := validateDescription(edit.Description); err != nil {
		return nil, err
	}
	if err := validateAmount(edit.Amount); err != nil {
		return nil, err
	}
	if edit.Status != "" {
		if err := validateStatus(edit.Status); err != nil {
			return nil, err
		}
	}

	oneOff.applyEdit(edit)
	oneOff.UpdatedAt = FlexTime{time.Now()}
	return oneOff, nil
}

// undo reverses the most recent move or delete. It reports whether anything
// was undone.
func (s *AppState) undo() bool {
	if len(s.UndoStack) == 0 {
		return false
	}

	entry := s.UndoStack[len(s.UndoStack)-1]
	s.UndoStack = s.UndoStack[:len(s.UndoStack)-1]

	switch entry.Type {
	case UndoMoveExpense:
		s.undoMove(entry)
	case UndoAddExpense:
		s.undoDelete(entry)
	}
	return true
}

// undoMove restores a moved occurrence to its origin period verbatim,
// unwinding the exclusion bookkeeping the forward move performed.
func (s *AppState) undoMove(entry UndoEntry) {
	from := findPeriod(s.Periods, entry.FromPeriodID)
	to := findPeriod(s.Periods, entry.ToPeriodID)
	if from == nil || to == nil {
		return
	}

	if entry.Expense != nil {
		if index, instance := from.findInstance(entry.Expense.ID); instance != nil {
			from.removeInstance(index)
		}
		to.unexclude(entry.Expense.ID)
		to.Expenses = append(to.Expenses, entry.Expense.clone())
		return
	}
	if entry.OneOff != nil {
		if index, oneOff := from.findOneOff(entry.OneOff.ID); oneOff != nil {
			from.removeOneOff(index)
		}
		to.OneOffExpenses = append(to.OneOffExpenses, entry.OneOff.clone())
	}
}

// undoDelete re-inserts a deleted occurrence verbatim.
func (s *AppState) undoDelete(entry UndoEntry) {
	period := findPeriod(s.Periods, entry.PeriodID)
	if period == nil {
		return
	}

	if entry.Expense != nil {
		period.Expenses = append(period.Expenses, entry.Expense.clone())
		period.unexclude(entry.Expense.ID)
		return
	}
	if entry.OneOff != nil {
		period.OneOffExpenses = append(period.OneOffExpenses, entry.OneOff.clone())
	}
}

// lookupExpense resolves an expense id (template-backed integer or one-off
// token) inside one period.
func (s *AppState) lookupExpense(periodID int, expenseID string) (*expenseCore, error) {
	period := findPeriod(s.Periods, periodID)
	if period == nil {
		return nil, fmt.Errorf("period %d not found", periodID)
	}

	if templateID, ok := parseTemplateID(expenseID); ok {
		if _, instance := period.findInstance(templateID); instance != nil {
			return &instance.expenseCore, nil
		}
		return nil, fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
	}

	if _, oneOff := period.findOneOff(expenseID); oneOff != nil {
		return &oneOff.expenseCore, nil
	}
	return nil, fmt.Errorf("expense %s not found in period %d", expenseID, periodID)
}
