package billing

import (
	"github.com/billpay/backend/internal/domain/shared"
	"github.com/billpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Known service types for bill detail lines. Free-form values are
// accepted as well since tariffs add new line items over time.
const (
	ServiceTypeVoice    = "voice"
	ServiceTypeData     = "data"
	ServiceTypeSMS      = "sms"
	ServiceTypeRoaming  = "roaming"
	ServiceTypeStandard = "standard"
	ServiceTypeGeneral  = "general"
)

// BillDetail is an itemized charge line owned by a bill
type BillDetail struct {
	shared.BaseEntity
	BillID      uuid.UUID
	ServiceType string
	Description string
	Amount      valueobject.Money
}

// NewBillDetail creates a new charge line for a bill
func NewBillDetail(billID uuid.UUID, serviceType, description string, amount valueobject.Money) (*BillDetail, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if serviceType == "" {
		serviceType = ServiceTypeStandard
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Detail amount cannot be negative")
	}

	return &BillDetail{
		BaseEntity:  shared.NewBaseEntity(),
		BillID:      billID,
		ServiceType: serviceType,
		Description: description,
		Amount:      amount,
	}, nil
}
