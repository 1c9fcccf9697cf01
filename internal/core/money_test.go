package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"9,000", "9000", true},
		{"1,234,567", "1234567", true},
		{"1,234.5", "1234.5", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSum(t *testing.T) {
	if !Sum().IsZero() {
		t.Fatalf("empty sum should be zero")
	}
	got := Sum(decimal.RequireFromString("0.1"), decimal.RequireFromString("0.2"))
	if !got.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("expected 0.3, got %s", got)
	}
}

func TestNewPeriodSummary(t *testing.T) {
	s := NewPeriodSummary(
		decimal.NewFromInt(3000000),
		decimal.NewFromInt(1200000),
		decimal.NewFromInt(500000),
		decimal.NewFromInt(700000),
	)
	if !s.VariableExpense.Equal(decimal.NewFromInt(500000)) {
		t.Fatalf("variable expense = %s", s.VariableExpense)
	}
	if !s.Balance.Equal(decimal.NewFromInt(1300000)) {
		t.Fatalf("balance = %s", s.Balance)
	}
}

func TestPercentChange(t *testing.T) {
	if PercentChange(decimal.NewFromInt(10), decimal.Zero) != nil {
		t.Fatalf("zero baseline should yield nil")
	}
	got := PercentChange(decimal.NewFromInt(115), decimal.NewFromInt(100))
	if got == nil || !got.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected 15, got %v", got)
	}
	got = PercentChange(decimal.NewFromInt(-50), decimal.NewFromInt(-100))
	if got == nil || !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50 for a shrinking deficit, got %v", got)
	}
}

func TestTransactionJSON(t *testing.T) {
	method := "card"
	tx := Transaction{
		ID:            "t1",
		UserID:        "u1",
		Date:          time.Date(2025, 10, 4, 15, 0, 0, 0, time.UTC),
		Type:          Expense,
		Category:      "식비",
		Description:   "점심",
		Amount:        decimal.RequireFromString("9000.5"),
		PaymentMethod: &method,
		Version:       2,
	}

	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"t1","userId":"u1","date":"2025-10-04T15:00:00.000Z","type":"expense","fixed":false,` +
		`"category":"식비","subcategory":null,"description":"점심","amount":9000.5,"paymentMethod":"card",` +
		`"tags":[],"version":2}`
	if string(b) != want {
		t.Fatalf("marshal:\n got %s\nwant %s", b, want)
	}

	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Date.Equal(tx.Date) || !back.Amount.Equal(tx.Amount) || back.Category != tx.Category {
		t.Errorf("round trip mismatch: %+v", back)
	}
}

func TestPeriodComparisonJSON(t *testing.T) {
	cmp := Compare(
		NewPeriodSummary(decimal.NewFromInt(100), decimal.NewFromInt(50), decimal.Zero, decimal.Zero),
		NewPeriodSummary(decimal.NewFromInt(80), decimal.Zero, decimal.Zero, decimal.Zero),
	)
	b, err := json.Marshal(cmp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := out["changePercent"]["income"]; got != 25.0 {
		t.Errorf("income change = %v, want 25", got)
	}
	if got := out["changePercent"]["expense"]; got != nil {
		t.Errorf("expense change = %v, want null", got)
	}
	if got := out["current"]["balance"]; got != 50.0 {
		t.Errorf("current balance = %v, want 50", got)
	}
}
