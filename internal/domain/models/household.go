package models

import "fmt"

// Household 表示一户（门牌），月费的计费单位
type Household struct {
	BaseModel
	RTID        uint   `gorm:"not null;uniqueIndex:idx_household_address" json:"rt_id"`
	Street      string `gorm:"type:varchar(100);not null;uniqueIndex:idx_household_address" json:"street"`
	HouseNumber string `gorm:"type:varchar(20);not null;uniqueIndex:idx_household_address" json:"house_number"`
	Zone        string `gorm:"type:varchar(50);index" json:"zone"` // 区域/街区标签，历史数据可能为空或写法不一
	Occupied    bool   `gorm:"not null" json:"occupied"`          // 是否有人居住

	// Relations - 关联关系
	RT        *RT        `gorm:"foreignKey:RTID" json:"rt,omitempty"`
	Residents []Resident `gorm:"foreignKey:HouseholdID" json:"residents,omitempty"`
}

// Address 门牌显示文本
func (h Household) Address() string {
	return fmt.Sprintf("%s No. %s", h.Street, h.HouseNumber)
}
