package core

import "testing"

func tx(t *testing.T, kind Kind, category, amt string) Transaction {
	t.Helper()
	return Transaction{
		Kind:        kind,
		Category:    category,
		Description: category,
		Amount:      amount(t, amt),
		OccurredOn:  NewDate(2025, 1, 1),
	}
}

func TestSummarizeTotals(t *testing.T) {
	txs := []Transaction{
		tx(t, Income, "Salary", "100"),
		tx(t, Expense, "Food", "30"),
		tx(t, Expense, "Rent", "20"),
	}
	s := Summarize(txs)
	if s.TotalIncome.String() != "100.00" {
		t.Fatalf("income: %s", s.TotalIncome)
	}
	if s.TotalExpense.String() != "50.00" {
		t.Fatalf("expense: %s", s.TotalExpense)
	}
	if s.NetBalance.String() != "50.00" {
		t.Fatalf("net: %s", s.NetBalance)
	}

	// Sums are order independent.
	reordered := []Transaction{txs[2], txs[0], txs[1]}
	s2 := Summarize(reordered)
	if !s2.NetBalance.Equal(s.NetBalance) || !s2.TotalIncome.Equal(s.TotalIncome) {
		t.Fatal("summary changed under reordering")
	}
}

func TestExpenseByCategory(t *testing.T) {
	txs := []Transaction{
		tx(t, Expense, "Food", "40"),
		tx(t, Expense, "Food", "10"),
		tx(t, Expense, "Rent", "50"),
		tx(t, Income, "Salary", "500"), // ignored
	}
	groups := ExpenseByCategory(txs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Category != "Food" || groups[0].Total.String() != "50.00" {
		t.Fatalf("Food group: %+v", groups[0])
	}
	if groups[1].Category != "Rent" || groups[1].Total.String() != "50.00" {
		t.Fatalf("Rent group: %+v", groups[1])
	}
}

func TestCategoryLabelsAreExact(t *testing.T) {
	txs := []Transaction{
		tx(t, Expense, "Food", "10"),
		tx(t, Expense, "food", "20"),
	}
	groups := ExpenseByCategory(txs)
	if len(groups) != 2 {
		t.Fatalf("'Food' and 'food' must stay distinct, got %d groups", len(groups))
	}
}

func TestPercentOfTotal(t *testing.T) {
	if got := PercentOfTotal(amount(t, "50"), amount(t, "100")); got != 50.0 {
		t.Fatalf("expected 50.0, got %v", got)
	}
	if got := PercentOfTotal(amount(t, "1"), amount(t, "3")); got != 33.3 {
		t.Fatalf("expected 33.3, got %v", got)
	}
	if got := PercentOfTotal(amount(t, "50"), Money{}); got != 0 {
		t.Fatalf("zero total must yield 0, got %v", got)
	}
}

func TestSummarizeBreakdownOrderAndPercents(t *testing.T) {
	txs := []Transaction{
		tx(t, Expense, "Food", "25"),
		tx(t, Expense, "Rent", "60"),
		tx(t, Expense, "Fun", "15"),
	}
	s := Summarize(txs)
	if len(s.ByCategory) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(s.ByCategory))
	}
	// Descending by total.
	order := []string{"Rent", "Food", "Fun"}
	percents := []float64{60.0, 25.0, 15.0}
	for i := range order {
		if s.ByCategory[i].Category != order[i] {
			t.Fatalf("position %d: expected %s, got %s", i, order[i], s.ByCategory[i].Category)
		}
		if s.ByCategory[i].Percent != percents[i] {
			t.Fatalf("%s: expected %.1f%%, got %v", order[i], percents[i], s.ByCategory[i].Percent)
		}
	}
}

func TestSummarizeNoExpenses(t *testing.T) {
	s := Summarize([]Transaction{tx(t, Income, "Salary", "100")})
	if s.TotalExpense.String() != "0.00" {
		t.Fatalf("expense: %s", s.TotalExpense)
	}
	if !s.NetBalance.Equal(s.TotalIncome) {
		t.Fatal("net balance should equal income with no expenses")
	}
	if len(s.ByCategory) != 0 {
		t.Fatalf("breakdown should be empty, got %d", len(s.ByCategory))
	}
}
