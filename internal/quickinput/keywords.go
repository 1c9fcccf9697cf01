package quickinput

import "paymonth/internal/core"

const (
	langKorean  = "ko"
	langEnglish = "en"
)

type typeKeywords struct {
	income, expense, fixed, variable []string
}

type paymentKeywords struct {
	method core.PaymentMethod
	terms  []string
}

type localeKeywords struct {
	types              typeKeywords
	payments           []paymentKeywords // iteration order matters: first match wins
	categories         []string
	relative           map[string]int // keyword -> day offset from today
	uncategorized      string
	defaultDescription string
}

var keywordTables = map[string]localeKeywords{
	langKorean: {
		types: typeKeywords{
			income:   []string{"수입", "입금", "월급", "income"},
			expense:  []string{"지출", "출금", "결제", "expense"},
			fixed:    []string{"고정", "fixed"},
			variable: []string{"변동", "variable"},
		},
		payments: []paymentKeywords{
			{core.PaymentCard, []string{"카드", "체크", "신용", "card"}},
			{core.PaymentCash, []string{"현금", "cash"}},
			{core.PaymentTransfer, []string{"이체", "계좌", "transfer"}},
		},
		categories:         []string{"식비", "교통", "주거", "통신", "의료", "문화", "쇼핑", "기타"},
		relative:           map[string]int{"오늘": 0, "어제": -1, "내일": 1, "모레": 2},
		uncategorized:      "미분류",
		defaultDescription: "빠른 입력",
	},
	langEnglish: {
		types: typeKeywords{
			income:   []string{"income", "revenue", "salary"},
			expense:  []string{"expense", "payment", "spending"},
			fixed:    []string{"fixed", "recurring"},
			variable: []string{"variable", "oneoff", "one-off"},
		},
		payments: []paymentKeywords{
			{core.PaymentCard, []string{"card", "credit", "debit"}},
			{core.PaymentCash, []string{"cash"}},
			{core.PaymentTransfer, []string{"transfer", "bank"}},
		},
		categories:         []string{"food", "transport", "housing", "telecom", "medical", "culture", "shopping", "other"},
		relative:           map[string]int{"today": 0, "yesterday": -1, "tomorrow": 1},
		uncategorized:      "Uncategorized",
		defaultDescription: "Quick add entry",
	},
}

// Categories lists the hashtag categories recognized for a locale.
func Categories(locale string) []string {
	out := make([]string, len(tableFor(locale).categories))
	copy(out, tableFor(locale).categories)
	return out
}
