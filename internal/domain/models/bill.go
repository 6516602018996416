package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// BillStatus 账单状态
type BillStatus string

const (
	BillStatusUnpaid BillStatus = "unpaid"
	BillStatusPaid   BillStatus = "paid"
)

// Valid 是否为已知状态
func (s BillStatus) Valid() bool {
	return s == BillStatusUnpaid || s == BillStatusPaid
}

// Bill 一户一个账期的月费(IPL)账单，(household_id, period) 唯一
type Bill struct {
	BaseModel
	HouseholdID  uint            `gorm:"not null;uniqueIndex:idx_bill_household_period" json:"household_id"`
	Period       datatypes.Date  `gorm:"not null;uniqueIndex:idx_bill_household_period;index" json:"period"` // 账期，固定为当月1日
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status       BillStatus      `gorm:"type:varchar(10);not null;default:'unpaid';index" json:"status"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount_paid"`
	TariffRuleID *uint           `json:"tariff_rule_id,omitempty"`

	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}
