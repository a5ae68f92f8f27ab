package main

import (
	"encoding/json"
	"strconv"
	"time"
)

// Expense status values. An expense moves pending -> paid -> cleared, or
// straight from pending to cleared. "paid" means committed/scheduled but not
// yet bank-cleared.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusCleared = "cleared"
)

// Paycheck tracks. Periods alternate between the two.
const (
	PaycheckA = "A"
	PaycheckB = "B"
)

// Debt payoff strategies.
const (
	StrategyAvalanche = "avalanche"
	StrategySnowball  = "snowball"
)

// FlexTime is a time.Time that tolerates the date encodings found in
// persisted documents: RFC3339/ISO strings, epoch numbers (milliseconds or
// seconds) and null. Anything unparseable decodes to the zero time instead of
// failing the whole document.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		// JavaScript Date serializes as epoch milliseconds; allow plain unix
		// seconds for hand-written documents too.
		if n >= 1e12 {
			t.Time = time.UnixMilli(int64(n)).UTC()
		} else {
			t.Time = time.Unix(int64(n), 0).UTC()
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, str); err == nil {
			t.Time = parsed
			return nil
		}
	}

	t.Time = time.Time{}
	return nil
}

// MarshalJSON implements json.Marshaler. Zero times serialize as null.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// SubBalance is an optional breakdown of a debt's balance (e.g. purchases vs
// cash advances at different rates). Carried for display only.
type SubBalance struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	APR    float64 `json:"apr"`
}

// SourceExpense is a recurring expense template, independent of any period.
// Templates are soft-deleted by clearing Active so historic period instances
// keep a valid back-reference.
type SourceExpense struct {
	ID                 int64        `json:"id"`
	Description        string       `json:"description"`
	Category           string       `json:"category"`
	Amount             float64      `json:"amount"`
	DueDate            int          `json:"dueDate"`
	PaycheckAssignment string       `json:"paycheckAssignment"`
	IsDebt             bool         `json:"isDebt"`
	Active             bool         `json:"active"`
	Balance            float64      `json:"balance,omitempty"`
	APR                float64      `json:"apr,omitempty"`
	MinimumPayment     float64      `json:"minimumPayment,omitempty"`
	SubBalances        []SubBalance `json:"subBalances,omitempty"`
	CreditLimit        float64      `json:"creditLimit,omitempty"`
}

// expenseCore holds the per-occurrence fields shared by template-backed
// instances and one-off expenses: the mutable amount, the partial-payment
// bookkeeping, and display ordering.
//
// Amount is the current remaining amount once any partial payment has been
// recorded. OriginalAmount is set the first time a payment reduces Amount and
// holds the pre-payment total; PaidAmount accumulates the payments. The
// invariant Amount + PaidAmount == OriginalAmount holds after every payment.
type expenseCore struct {
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Amount         float64  `json:"amount"`
	Notes          string   `json:"notes,omitempty"`
	Status         string   `json:"status"`
	Position       float64  `json:"position"`
	OriginalAmount *float64 `json:"originalAmount,omitempty"`
	PaidAmount     *float64 `json:"paidAmount,omitempty"`
	AmountCleared  float64  `json:"amountCleared,omitempty"`
	PeriodID       int      `json:"periodId"`
}

// totalAmount returns the pre-partial-payment total for the occurrence.
func (e *expenseCore) totalAmount() float64 {
	if e.OriginalAmount != nil {
		return *e.OriginalAmount
	}
	return e.Amount
}

// paidSoFar returns the cumulative partial payments recorded so far.
func (e *expenseCore) paidSoFar() float64 {
	if e.PaidAmount != nil {
		return *e.PaidAmount
	}
	return 0
}

// remainingAmount returns how much of the occurrence is still unpaid.
func (e *expenseCore) remainingAmount() float64 {
	return e.totalAmount() - e.paidSoFar()
}

// ExpenseInstance is a per-period materialization of a SourceExpense. Its ID
// equals the template's ID, so uniqueness is (PeriodID, ID). The template
// fields are denormalized at generation or last sync; once the instance
// diverges from its template it stops syncing.
type ExpenseInstance struct {
	ID int64 `json:"id"`
	expenseCore
	// Moved is stamped when the user relocates the occurrence to another
	// period. A moved occurrence is never dropped as a stale synced copy,
	// regardless of how closely it still resembles its template.
	Moved              bool         `json:"moved,omitempty"`
	DueDate            int          `json:"dueDate,omitempty"`
	PaycheckAssignment string       `json:"paycheckAssignment,omitempty"`
	IsDebt             bool         `json:"isDebt,omitempty"`
	Balance            float64      `json:"balance,omitempty"`
	APR                float64      `json:"apr,omitempty"`
	MinimumPayment     float64      `json:"minimumPayment,omitempty"`
	SubBalances        []SubBalance `json:"subBalances,omitempty"`
	CreditLimit        float64      `json:"creditLimit,omitempty"`
	UpdatedAt          FlexTime     `json:"updatedAt,omitempty"`
}

// clone returns a deep copy, including the partial-payment pointers.
func (e ExpenseInstance) clone() ExpenseInstance {
	out := e
	out.OriginalAmount = clonePtr(e.OriginalAmount)
	out.PaidAmount = clonePtr(e.PaidAmount)
	out.SubBalances = append([]SubBalance(nil), e.SubBalances...)
	return out
}

// OneOffExpense is an ad hoc expense with no backing template, scoped to
// exactly one period. Regeneration never touches one-offs.
type OneOffExpense struct {
	ID       string `json:"id"`
	IsOneOff bool   `json:"isOneOff"`
	expenseCore
	CreatedAt FlexTime `json:"createdAt,omitempty"`
	UpdatedAt FlexTime `json:"updatedAt,omitempty"`
}

// clone returns a deep copy, including the partial-payment pointers.
func (o OneOffExpense) clone() OneOffExpense {
	out := o
	out.OriginalAmount = clonePtr(o.OriginalAmount)
	out.PaidAmount = clonePtr(o.PaidAmount)
	return out
}

// Period is one 14-day pay window. Exactly 24 exist at all times with ids
// 0..23; the id is stable identity across regenerations.
type Period struct {
	ID                 int               `json:"id"`
	Type               string            `json:"type"`
	StartDate          FlexTime          `json:"startDate"`
	EndDate            FlexTime          `json:"endDate"`
	DefaultIncome      float64           `json:"defaultIncome"`
	AdditionalIncome   float64           `json:"additionalIncome"`
	Status             string            `json:"status"`
	Expenses           []ExpenseInstance `json:"expenses"`
	OneOffExpenses     []OneOffExpense   `json:"oneOffExpenses"`
	ExcludedExpenseIDs []int64           `json:"excludedExpenseIds"`
}

// isExcluded reports whether a template id is deliberately kept out of this
// period, typically because the user moved its occurrence elsewhere.
func (p *Period) isExcluded(id int64) bool {
	for _, excluded := range p.ExcludedExpenseIDs {
		if excluded == id {
			return true
		}
	}
	return false
}

// exclude records a template id in the exclusion set (idempotent).
func (p *Period) exclude(id int64) {
	if !p.isExcluded(id) {
		p.ExcludedExpenseIDs = append(p.ExcludedExpenseIDs, id)
	}
}

// unexclude removes a template id from the exclusion set.
func (p *Period) unexclude(id int64) {
	filtered := p.ExcludedExpenseIDs[:0]
	for _, excluded := range p.ExcludedExpenseIDs {
		if excluded != id {
			filtered = append(filtered, excluded)
		}
	}
	p.ExcludedExpenseIDs = filtered
}

// nextExpensePosition returns the trailing display position in the template
// expense list. Template and one-off positions number independently.
func (p *Period) nextExpensePosition() float64 {
	max := -1.0
	for _, e := range p.Expenses {
		if e.Position > max {
			max = e.Position
		}
	}
	return max + 1
}

// nextOneOffPosition returns the trailing display position in the one-off list.
func (p *Period) nextOneOffPosition() float64 {
	max := -1.0
	for _, o := range p.OneOffExpenses {
		if o.Position > max {
			max = o.Position
		}
	}
	return max + 1
}

// IncomeSettings is the income schedule: per-track paycheck amounts, the date
// of the first paycheck and which track it belongs to.
type IncomeSettings struct {
	PaycheckA         float64  `json:"paycheckA"`
	PaycheckB         float64  `json:"paycheckB"`
	StartDate         FlexTime `json:"startDate"`
	FirstPaycheckType string   `json:"firstPaycheckType"`
}

// PeriodTotals is the derived money summary for one period.
type PeriodTotals struct {
	TotalIncome        float64 `json:"totalIncome"`
	TotalExpenses      float64 `json:"totalExpenses"`
	TotalPaid          float64 `json:"totalPaid"`
	UnpaidAmount       float64 `json:"unpaidAmount"`
	Difference         float64 `json:"difference"`
	RemainingAfterPaid float64 `json:"remainingAfterPaid"`
}

// DebtPayoff is the result of an amortization simulation. SortedDebts is the
// pre-simulation snapshot in payoff order, not the exhausted end state.
type DebtPayoff struct {
	TotalDebt       float64         `json:"totalDebt"`
	MonthlyPayments float64         `json:"monthlyPayments"`
	PayoffMonths    int             `json:"payoffMonths"`
	TotalInterest   float64         `json:"totalInterest"`
	SortedDebts     []SourceExpense `json:"sortedDebts"`
}

// Undo entry types.
const (
	UndoMoveExpense = "MOVE_EXPENSE"
	UndoAddExpense  = "ADD_EXPENSE"
)

// UndoEntry is an inverse-action descriptor reversing exactly one move or
// delete. Exactly one of Expense/OneOff is set depending on the kind of
// expense the action touched.
type UndoEntry struct {
	Type         string           `json:"type"`
	Expense      *ExpenseInstance `json:"expense,omitempty"`
	OneOff       *OneOffExpense   `json:"oneOff,omitempty"`
	PeriodID     int              `json:"periodId,omitempty"`
	FromPeriodID int              `json:"fromPeriodId,omitempty"`
	ToPeriodID   int              `json:"toPeriodId,omitempty"`
}

// AppState is the single persisted document, whether it lives in a JSON file
// or a Postgres row.
type AppState struct {
	SourceExpenses []SourceExpense `json:"sourceExpenses"`
	IncomeSettings IncomeSettings  `json:"incomeSettings"`
	Periods        []Period        `json:"periods"`
	CurrentView    string          `json:"currentView"`
	SelectedPeriod int             `json:"selectedPeriod"`
	DebtStrategy   string          `json:"debtStrategy"`
	ExtraPayment   float64         `json:"extraPayment"`
	UndoStack      []UndoEntry     `json:"undoStack"`
	Version        int             `json:"version"`
}

// AnalyticsData summarizes the first 12 periods for the dashboard charts.
type AnalyticsData struct {
	CategoryTotals map[string]float64      `json:"categoryTotals"`
	MonthlyTrends  map[string]MonthlyTrend `json:"monthlyTrends"`
}

// MonthlyTrend aggregates two consecutive periods into one month bucket.
type MonthlyTrend struct {
	Income     float64 `json:"income"`
	Expenses   float64 `json:"expenses"`
	Difference float64 `json:"difference"`
}

func clonePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
