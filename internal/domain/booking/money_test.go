package booking

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-catering/service-booking/pkg/domain"
)

func TestMoney_DecimalBoundary(t *testing.T) {
	m, err := MoneyFromDecimal(decimal.RequireFromString("1200.50"))
	require.NoError(t, err)
	assert.Equal(t, Money(120050), m)
	m, err = MoneyFromDecimal(decimal.RequireFromString("0.005"))
	require.NoError(t, err)
	assert.Equal(t, Money(1), m)
	assert.Equal(t, Money(13200000), MoneyFromMajor(132000))
	assert.True(t, Money(6600050).Decimal().Equal(decimal.RequireFromString("66000.5")))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "₱132,000.00", MoneyFromMajor(132000).String())
	assert.Equal(t, "₱0.05", Money(5).String())
	assert.Equal(t, "₱1,234,567.89", Money(123456789).String())
	assert.Equal(t, "-₱12.30", Money(-1230).String())
}

func TestMoney_MulRate(t *testing.T) {
	assert.Equal(t, Money(50), Money(100).MulRate(5000))
	assert.Equal(t, Money(51), Money(101).MulRate(5000))
	assert.Equal(t, MoneyFromMajor(12000), MoneyFromMajor(120000).MulRate(1000))
}

func TestMoney_FromDecimalOutOfRange(t *testing.T) {
	for _, raw := range []string{"1e17", "-1e17", "1000000000000.01"} {
		_, err := MoneyFromDecimal(decimal.RequireFromString(raw))
		assert.ErrorIs(t, err, ErrAmountOutOfRange, raw)
		assert.True(t, domain.IsValidation(err))
	}

	m, err := MoneyFromDecimal(decimal.RequireFromString("1000000000000"))
	require.NoError(t, err)
	assert.Equal(t, MaxMoney, m)
}

func TestMoney_MulRateLargeValuesExact(t *testing.T) {
	assert.Equal(t, Money(4611686018427387904), Money(math.MaxInt64).MulRate(5000))
	assert.Equal(t, MaxMoney/2, MaxMoney.MulRate(DownpaymentBps))
	assert.Equal(t, MaxMoney, MaxMoney.MulRate(10000))
}

func TestMoney_TimesAndPlusChecked(t *testing.T) {
	m, err := MoneyFromMajor(1200).Times(100)
	require.NoError(t, err)
	assert.Equal(t, MoneyFromMajor(120000), m)

	_, err = MoneyFromMajor(1_000_000_000).Times(1 << 40)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = Money(math.MinInt64).Times(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = Money(math.MaxInt64).Times(2)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = MaxMoney.Plus(1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = Money(math.MaxInt64).Plus(-1)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	sum, err := MaxMoney.Plus(-MaxMoney)
	require.NoError(t, err)
	assert.Equal(t, Money(0), sum)
}
