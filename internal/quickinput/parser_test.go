package quickinput

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
)

var seoul = calendar.MustLoadLocation("Asia/Seoul")

// fixedNow is 2025-10-16 12:00 in Seoul.
var fixedNow = time.Date(2025, 10, 16, 3, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	p := NewParser(seoul)
	p.Now = func() time.Time { return fixedNow }
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got, "amount")
	assert.True(t, got.Equal(dec(want)), "amount %s, want %s", got, want)
}

func TestParseKorean(t *testing.T) {
	p := newTestParser()

	got := p.Parse("10/05 점심 9,000원 #변동 #식비 카드", "ko", nil, nil)

	require.NotNil(t, got.Date)
	assert.Equal(t, "2025-10-04T15:00:00.000Z", calendar.FormatISO(*got.Date))
	assertAmount(t, "9000", got.Amount)
	require.NotNil(t, got.Type)
	assert.Equal(t, core.Expense, *got.Type)
	require.NotNil(t, got.Fixed)
	assert.False(t, *got.Fixed)
	require.NotNil(t, got.Category)
	assert.Equal(t, "식비", *got.Category)
	assert.Nil(t, got.Subcategory)
	assert.Equal(t, "점심", got.Description)
	assert.Equal(t, []string{"변동", "식비"}, got.Tags)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, core.PaymentCard, *got.PaymentMethod)
}

func TestParseKoreanUnits(t *testing.T) {
	p := newTestParser()

	got := p.Parse("월급 300만원 #수입 #고정", "ko", nil, nil)
	assertAmount(t, "3000000", got.Amount)
	assert.Equal(t, core.Income, *got.Type)
	assert.True(t, *got.Fixed)
	assert.Equal(t, "월급", got.Description)

	got = p.Parse("커피 5천원", "ko", nil, nil)
	assertAmount(t, "5000", got.Amount)
	assert.Equal(t, "커피", got.Description)

	got = p.Parse("커피 1,5천 원", "ko", nil, nil)
	assertAmount(t, "15000", got.Amount)
}

func TestParseEnglish(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		in          string
		amount      string
		description string
		method      *core.PaymentMethod
	}{
		{"coffee $5.50", "5.5", "coffee", nil},
		{"bus $1.50 cash", "1.5", "bus", ptr(core.PaymentCash)},
		{"dinner $30 credit", "30", "dinner", ptr(core.PaymentCard)},
		{"rent 1,200 USD bank", "1200", "rent", ptr(core.PaymentTransfer)},
		{"Groceries 42.1 DEBIT", "42.1", "Groceries", ptr(core.PaymentCard)},
		{"Dinner with Tom, Jerry $40", "40", "Dinner with Tom, Jerry", nil},
		{"Lunch, coffee 12.50 card", "12.5", "Lunch, coffee", ptr(core.PaymentCard)},
		{"gift, cake 2,500.75 cash", "2500.75", "gift, cake", ptr(core.PaymentCash)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := p.Parse(tt.in, "en", nil, nil)
			assertAmount(t, tt.amount, got.Amount)
			assert.Equal(t, tt.description, got.Description)
			assert.Equal(t, tt.method, got.PaymentMethod)
		})
	}

	got := p.Parse("salary 3000 USD #income #fixed", "en-US", nil, nil)
	assertAmount(t, "3000", got.Amount)
	assert.Equal(t, core.Income, *got.Type)
	assert.True(t, *got.Fixed)
	assert.Equal(t, "salary", got.Description)
	assert.Equal(t, []string{"income", "fixed"}, got.Tags)
}

func TestParseNegativeAmountIsIgnored(t *testing.T) {
	got := newTestParser().Parse("환불 -10000원", "ko", nil, nil)
	assert.Nil(t, got.Amount)
	assert.Contains(t, got.Description, "환불")
	assert.Contains(t, got.Description, "-10000원")

	got = newTestParser().Parse("환불 -3만원", "ko", nil, nil)
	assert.Nil(t, got.Amount)

	got = newTestParser().Parse("refund -$25", "en", nil, nil)
	assert.Nil(t, got.Amount)
	assert.Equal(t, "refund -$25", got.Description)
}

func TestParseMalformedDateStays(t *testing.T) {
	got := newTestParser().Parse("99/99 점심 10000원", "ko", nil, nil)
	assert.Nil(t, got.Date)
	assert.Contains(t, got.Description, "99/99")
	assertAmount(t, "10000", got.Amount)

	got = newTestParser().Parse("02/30 점심 10000원", "ko", nil, nil)
	assert.Nil(t, got.Date)
	assert.Contains(t, got.Description, "02/30")
}

func TestParseDates(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		in, locale, want string
	}{
		{"2025-09-01 월세 50만원", "ko", "2025-08-31T15:00:00.000Z"},
		{"오늘 점심 8000원", "ko", "2025-10-15T15:00:00.000Z"},
		{"어제 택시 12000원", "ko", "2025-10-14T15:00:00.000Z"},
		{"내일 병원 30000원", "ko", "2025-10-16T15:00:00.000Z"},
		{"모레 영화 15000원", "ko", "2025-10-17T15:00:00.000Z"},
		{"lunch Yesterday $12", "en", "2025-10-14T15:00:00.000Z"},
		{"TODAY coffee $3", "en", "2025-10-15T15:00:00.000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := p.Parse(tt.in, tt.locale, nil, nil)
			require.NotNil(t, got.Date)
			assert.Equal(t, tt.want, calendar.FormatISO(*got.Date))
		})
	}
}

func TestParseLastTagWins(t *testing.T) {
	got := newTestParser().Parse("점심 #식비 #고정 #변동", "ko", nil, nil)
	require.NotNil(t, got.Fixed)
	assert.False(t, *got.Fixed)

	got = newTestParser().Parse("정산 #수입 #지출", "ko", nil, nil)
	assert.Equal(t, core.Expense, *got.Type)
}

func TestParseFallbacks(t *testing.T) {
	p := newTestParser()
	income := core.Income
	yes := true

	got := p.Parse("용돈 50000원", "ko", &income, &yes)
	assert.Equal(t, core.Income, *got.Type)
	assert.True(t, *got.Fixed)

	got = p.Parse("용돈 50000원 #변동", "ko", &income, &yes)
	assert.Equal(t, core.Income, *got.Type)
	assert.False(t, *got.Fixed)

	got = p.Parse("점심 9000원", "ko", nil, nil)
	assert.Nil(t, got.Type)
	assert.Nil(t, got.Fixed)

	got = p.Parse("넷플릭스 17000원", "ko", nil, &yes)
	assert.Equal(t, core.Expense, *got.Type, "a fixed flag without a type implies expense")
}

func TestParseTagsOnly(t *testing.T) {
	got := newTestParser().Parse("#고정 #식비", "ko", nil, nil)
	assert.True(t, *got.Fixed)
	assert.Equal(t, core.Expense, *got.Type)
	assert.Equal(t, "식비", *got.Category)
	assert.Equal(t, "", got.Description)
	assert.Nil(t, got.Amount)
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		got := newTestParser().Parse(in, "ko", nil, nil)
		assert.Nil(t, got.Date)
		assert.Nil(t, got.Amount)
		assert.Nil(t, got.Type)
		assert.Nil(t, got.Fixed)
		assert.Nil(t, got.Category)
		assert.Nil(t, got.Subcategory)
		assert.Nil(t, got.PaymentMethod)
		assert.Equal(t, "", got.Description)
		assert.NotNil(t, got.Tags)
		assert.Empty(t, got.Tags)
	}
}

func TestParseDuplicateTagsPreserved(t *testing.T) {
	got := newTestParser().Parse("#food lunch $9 #food", "en", nil, nil)
	assert.Equal(t, []string{"food", "food"}, got.Tags)
	assert.Equal(t, "food", *got.Category)
}

func TestParseCategoryOnlyFromTags(t *testing.T) {
	got := newTestParser().Parse("식비 정산 9000원", "ko", nil, nil)
	assert.Nil(t, got.Category)
	assert.Equal(t, "식비 정산", got.Description)

	got = newTestParser().Parse("burger $8 #FastFood", "en", nil, nil)
	assert.Equal(t, "food", *got.Category)
}

func TestParseStageOrder(t *testing.T) {
	// The date is consumed before the amount grammar runs, so 10/05 never
	// becomes an amount of 10 or 5.
	got := newTestParser().Parse("10/05 lunch $12", "en", nil, nil)
	require.NotNil(t, got.Date)
	assertAmount(t, "12", got.Amount)
	assert.Equal(t, "lunch", got.Description)

	got = newTestParser().Parse("2025-10-05 lunch 12", "en", nil, nil)
	require.NotNil(t, got.Date)
	assertAmount(t, "12", got.Amount)

	// The amount is consumed before payment-method matching.
	got = newTestParser().Parse("체크 5000원 이체", "ko", nil, nil)
	assert.Equal(t, core.PaymentCard, *got.PaymentMethod)
	assert.Equal(t, "이체", got.Description)
}

func TestParseUnknownLocaleFallsBackToKorean(t *testing.T) {
	got := newTestParser().Parse("점심 9,000원", "fr-FR", nil, nil)
	assertAmount(t, "9000", got.Amount)
}

func TestParsedInputJSON(t *testing.T) {
	got := newTestParser().Parse("10/05 점심 9,000원 #변동 #식비 카드", "ko", nil, nil)
	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"date":"2025-10-04T15:00:00.000Z",
		"amount":9000,
		"type":"expense",
		"fixed":false,
		"category":"식비",
		"subcategory":null,
		"description":"점심",
		"tags":["변동","식비"],
		"paymentMethod":"card"
	}`, string(b))

	b, err = json.Marshal(newTestParser().Parse("", "ko", nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null,"amount":null,"type":null,"fixed":null,"category":null,
		"subcategory":null,"description":"","tags":[],"paymentMethod":null}`, string(b))
}

func TestPackageParse(t *testing.T) {
	got := Parse("커피 5천원", "ko", nil, nil)
	assertAmount(t, "5000", got.Amount)
}
