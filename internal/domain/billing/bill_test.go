package billing

import (
	"testing"

	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBill(t *testing.T, total float64) *Bill {
	t.Helper()
	bill, err := NewBill("5551234567", 3, 2026, valueobject.NewMoneyTRYFromFloat(total))
	require.NoError(t, err)
	return bill
}

func TestNewBill(t *testing.T) {
	t.Run("creates unpaid bill", func(t *testing.T) {
		bill := newTestBill(t, 200)
		assert.Equal(t, BillStatusUnpaid, bill.Status)
		assert.True(t, bill.PaidAmount.IsZero())
		assert.True(t, bill.RemainingAmount().Equals(valueobject.NewMoneyTRYFromFloat(200)))
	})

	t.Run("rejects empty subscriber", func(t *testing.T) {
		_, err := NewBill("", 3, 2026, valueobject.NewMoneyTRYFromFloat(100))
		assert.Error(t, err)
	})

	t.Run("rejects invalid month", func(t *testing.T) {
		for _, month := range []int{0, 13, -1} {
			_, err := NewBill("5551234567", month, 2026, valueobject.NewMoneyTRYFromFloat(100))
			assert.Error(t, err, "month %d", month)
		}
	})

	t.Run("rejects negative total", func(t *testing.T) {
		_, err := NewBill("5551234567", 3, 2026, valueobject.NewMoneyTRYFromFloat(-10))
		assert.Error(t, err)
	})
}

func TestBillApplyPayment(t *testing.T) {
	t.Run("partial then settling payment", func(t *testing.T) {
		bill := newTestBill(t, 200)

		tx1, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(80))
		require.NoError(t, err)
		assert.True(t, bill.PaidAmount.Equals(valueobject.NewMoneyTRYFromFloat(80)))
		assert.Equal(t, BillStatusPartiallyPaid, bill.Status)
		assert.True(t, bill.RemainingAmount().Equals(valueobject.NewMoneyTRYFromFloat(120)))
		assert.True(t, tx1.Amount.Equals(valueobject.NewMoneyTRYFromFloat(80)))

		tx2, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(150))
		require.NoError(t, err)
		assert.True(t, bill.PaidAmount.Equals(valueobject.NewMoneyTRYFromFloat(200)))
		assert.Equal(t, BillStatusFullyPaid, bill.Status)
		assert.True(t, bill.RemainingAmount().IsZero())
		assert.True(t, tx2.Amount.Equals(valueobject.NewMoneyTRYFromFloat(150)), "transaction keeps requested amount")
	})

	t.Run("overpayment caps at total", func(t *testing.T) {
		bill := newTestBill(t, 100)

		tx, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(250))
		require.NoError(t, err)
		assert.True(t, bill.PaidAmount.Equals(bill.TotalAmount))
		assert.Equal(t, BillStatusFullyPaid, bill.Status)
		assert.True(t, bill.RemainingAmount().IsZero())
		assert.True(t, tx.Amount.Equals(valueobject.NewMoneyTRYFromFloat(250)))
	})

	t.Run("exact payment settles", func(t *testing.T) {
		bill := newTestBill(t, 150)
		_, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(150))
		require.NoError(t, err)
		assert.Equal(t, BillStatusFullyPaid, bill.Status)
	})

	t.Run("payment on settled bill leaves paid amount unchanged", func(t *testing.T) {
		bill := newTestBill(t, 100)
		_, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(100))
		require.NoError(t, err)

		tx, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(50))
		require.NoError(t, err)
		assert.True(t, bill.PaidAmount.Equals(bill.TotalAmount))
		assert.True(t, tx.Amount.Equals(valueobject.NewMoneyTRYFromFloat(50)))
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		bill := newTestBill(t, 100)
		_, err := bill.ApplyPayment(valueobject.ZeroTRY())
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
		assert.True(t, bill.PaidAmount.IsZero())
		assert.Equal(t, BillStatusUnpaid, bill.Status)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		bill := newTestBill(t, 100)
		_, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(-20))
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})

	t.Run("rejects currency mismatch", func(t *testing.T) {
		bill := newTestBill(t, 100)
		foreign, _ := valueobject.NewMoneyFromFloat(50, valueobject.USD)
		_, err := bill.ApplyPayment(foreign)
		assert.Error(t, err)
	})

	t.Run("increments version for optimistic locking", func(t *testing.T) {
		bill := newTestBill(t, 100)
		before := bill.GetVersion()
		_, err := bill.ApplyPayment(valueobject.NewMoneyTRYFromFloat(10))
		require.NoError(t, err)
		assert.Equal(t, before+1, bill.GetVersion())
	})
}

func TestBillAddDetail(t *testing.T) {
	t.Run("appends detail line", func(t *testing.T) {
		bill := newTestBill(t, 100)
		detail, err := bill.AddDetail(ServiceTypeData, "Monthly data package", valueobject.NewMoneyTRYFromFloat(60))
		require.NoError(t, err)
		assert.Len(t, bill.Details, 1)
		assert.Equal(t, bill.GetID(), detail.BillID)
	})

	t.Run("defaults empty service type", func(t *testing.T) {
		bill := newTestBill(t, 100)
		detail, err := bill.AddDetail("", "Base charge", valueobject.NewMoneyTRYFromFloat(100))
		require.NoError(t, err)
		assert.Equal(t, ServiceTypeStandard, detail.ServiceType)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		bill := newTestBill(t, 100)
		_, err := bill.AddDetail(ServiceTypeVoice, "bad", valueobject.NewMoneyTRYFromFloat(-5))
		assert.Error(t, err)
	})
}

func TestNewPaymentTransaction(t *testing.T) {
	t.Run("records completed status", func(t *testing.T) {
		bill := newTestBill(t, 100)
		tx, err := NewPaymentTransaction(bill.GetID(), bill.SubscriberNo, valueobject.NewMoneyTRYFromFloat(40))
		require.NoError(t, err)
		assert.Equal(t, TransactionStatusCompleted, tx.Status)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		bill := newTestBill(t, 100)
		_, err := NewPaymentTransaction(bill.GetID(), bill.SubscriberNo, valueobject.ZeroTRY())
		assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	})
}
