package models

// RT 表示 Rukun Tetangga（RW 下的子区域）
type RT struct {
	BaseModel
	Number string `gorm:"type:varchar(10);uniqueIndex;not null" json:"number"` // 编号，如 "003"
	Name   string `gorm:"type:varchar(100)" json:"name"`

	Households []Household `gorm:"foreignKey:RTID" json:"households,omitempty"`
}

// TableName 指定表名
func (RT) TableName() string { return "rts" }
