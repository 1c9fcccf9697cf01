package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymonth/internal/calendar"
	"paymonth/internal/core"
	"paymonth/internal/payperiod"
)

func TestNewRow(t *testing.T) {
	seoul := calendar.MustLoadLocation("Asia/Seoul")
	method := "card"
	tx := core.Transaction{
		ID:            "t1",
		Date:          time.Date(2025, 10, 4, 15, 0, 0, 0, time.UTC),
		Type:          core.Expense,
		Category:      "식비",
		Description:   "점심",
		Amount:        decimal.NewFromInt(9000),
		PaymentMethod: &method,
		Tags:          []string{"변동", "식비"},
	}
	period, err := payperiod.Default().Get(tx.Date, 25)
	require.NoError(t, err)

	r := NewRow(tx, period, seoul)

	assert.Equal(t, "2025-10-05", r.Date, "date is the local day")
	assert.Equal(t, "2025년 9월", r.Period)
	assert.Equal(t, "9000", r.Amount)
	assert.Equal(t, "card", r.PaymentMethod)
	assert.Equal(t, "변동 식비", r.Tags)
	assert.Len(t, r.Values(), len(Header))
	assert.Equal(t, "t1", r.Values()[0])
}
