package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CategoryTotal is an expense total grouped under one category label.
// Labels are compared exactly: "Food" and "food" are distinct groups.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    Money   `json:"total"`
	Percent  float64 `json:"percent"`
}

// Summary is the derived view of a set of transactions: overall totals,
// net balance, and the expense breakdown by category (largest first).
type Summary struct {
	TotalIncome  Money           `json:"totalIncome"`
	TotalExpense Money           `json:"totalExpense"`
	NetBalance   Money           `json:"netBalance"`
	ByCategory   []CategoryTotal `json:"expensesByCategory"`
}

// ExpenseByCategory groups expense-kind transactions by exact category
// label, summing amounts per group in first-appearance order. Percent is
// left at zero; Summarize fills it in.
func ExpenseByCategory(txs []Transaction) []CategoryTotal {
	index := make(map[string]int)
	var groups []CategoryTotal
	for _, t := range txs {
		if t.Kind != Expense {
			continue
		}
		if i, ok := index[t.Category]; ok {
			groups[i].Total = groups[i].Total.Add(t.Amount)
			continue
		}
		index[t.Category] = len(groups)
		groups = append(groups, CategoryTotal{Category: t.Category, Total: t.Amount})
	}
	return groups
}

// PercentOfTotal returns part/total*100 rounded to one decimal place,
// or 0 when total is zero.
func PercentOfTotal(part, total Money) float64 {
	if total.IsZero() {
		return 0
	}
	ratio := part.Decimal().Div(total.Decimal())
	return ratio.Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
}

// Summarize derives the full summary in a single pass over txs plus one
// grouping pass for the breakdown. Income-only input yields a valid
// summary with an empty breakdown.
func Summarize(txs []Transaction) Summary {
	var income, expense Money
	for _, t := range txs {
		switch t.Kind {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expense = expense.Add(t.Amount)
		}
	}

	groups := ExpenseByCategory(txs)
	for i := range groups {
		groups[i].Percent = PercentOfTotal(groups[i].Total, expense)
	}
	// Largest category first; stable so equal totals keep appearance order.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.Cmp(groups[j].Total) > 0
	})

	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetBalance:   income.Sub(expense),
		ByCategory:   groups,
	}
}
