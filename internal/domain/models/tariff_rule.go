package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TariffScopeAll 适用于所有区域的费率范围
const TariffScopeAll = "ALL"

// TariffRule 月费费率规则，按区域和生效日期区间适用
type TariffRule struct {
	BaseModel
	ZoneScope      string              `gorm:"type:varchar(50);not null;index" json:"zone_scope"` // 区域标签或 "ALL"
	OccupiedRate   decimal.Decimal     `gorm:"type:decimal(15,2);not null" json:"occupied_rate"`
	UnoccupiedRate decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"unoccupied_rate"` // 为空时按有人居住费率收取
	EffectiveStart datatypes.Date      `gorm:"not null;index" json:"effective_start"`
	EffectiveEnd   *datatypes.Date     `gorm:"index" json:"effective_end"` // 为空表示长期有效
	Note           string              `gorm:"type:varchar(255)" json:"note,omitempty"`
}
