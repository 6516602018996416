package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// CashType 现金账类型
type CashType string

const (
	CashIncome  CashType = "income"
	CashExpense CashType = "expense"
)

// Valid 是否为已知类型
func (t CashType) Valid() bool {
	return t == CashIncome || t == CashExpense
}

// CashTransaction 手工录入的现金账（kas）
type CashTransaction struct {
	BaseModel
	Type        CashType        `gorm:"type:varchar(10);not null;index" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        datatypes.Date  `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"type:varchar(50)" json:"category"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	BillID      *uint           `json:"bill_id,omitempty"` // 收到月费时关联的账单
	RecordedBy  uint            `json:"recorded_by"`
}
