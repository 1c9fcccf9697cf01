package core

import "github.com/shopspring/decimal"

// PeriodSummary aggregates transactions inside one pay period.
type PeriodSummary struct {
	Income          decimal.Decimal
	Expense         decimal.Decimal // excludes SavingCategory
	Saving          decimal.Decimal
	Balance         decimal.Decimal
	FixedExpense    decimal.Decimal
	VariableExpense decimal.Decimal
}

// NewPeriodSummary derives the computed fields from the raw sums.
func NewPeriodSummary(income, expense, saving, fixedExpense decimal.Decimal) PeriodSummary {
	return PeriodSummary{
		Income:          income,
		Expense:         expense,
		Saving:          saving,
		FixedExpense:    fixedExpense,
		VariableExpense: expense.Sub(fixedExpense),
		Balance:         income.Sub(expense).Sub(saving),
	}
}

// PeriodChange holds the percent change per summary field. A nil entry means
// the previous value was zero.
type PeriodChange struct {
	Income          *decimal.Decimal
	Expense         *decimal.Decimal
	Saving          *decimal.Decimal
	Balance         *decimal.Decimal
	FixedExpense    *decimal.Decimal
	VariableExpense *decimal.Decimal
}

type PeriodComparison struct {
	Current       PeriodSummary `json:"current"`
	Previous      PeriodSummary `json:"previous"`
	ChangePercent PeriodChange  `json:"changePercent"`
}

var hundred = decimal.NewFromInt(100)

// PercentChange returns (cur-prev)/|prev|*100 rounded to one decimal place.
func PercentChange(cur, prev decimal.Decimal) *decimal.Decimal {
	if prev.IsZero() {
		return nil
	}
	v := cur.Sub(prev).Div(prev.Abs()).Mul(hundred).Round(1)
	return &v
}

func Compare(current, previous PeriodSummary) PeriodComparison {
	return PeriodComparison{
		Current:  current,
		Previous: previous,
		ChangePercent: PeriodChange{
			Income:          PercentChange(current.Income, previous.Income),
			Expense:         PercentChange(current.Expense, previous.Expense),
			Saving:          PercentChange(current.Saving, previous.Saving),
			Balance:         PercentChange(current.Balance, previous.Balance),
			FixedExpense:    PercentChange(current.FixedExpense, previous.FixedExpense),
			VariableExpense: PercentChange(current.VariableExpense, previous.VariableExpense),
		},
	}
}
