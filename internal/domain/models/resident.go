package models

// Resident 表示居民档案
type Resident struct {
	BaseModel
	HouseholdID uint   `gorm:"not null;index" json:"household_id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	NIK         string `gorm:"type:varchar(20)" json:"nik,omitempty"` // 身份证号
	Phone       string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	IsHead      bool   `gorm:"not null" json:"is_head"` // 户主，账单列表中显示其姓名

	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}
