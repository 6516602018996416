package models

import (
	"time"

	"gorm.io/datatypes"
)

// OperationType 管理操作类型
type OperationType string

const (
	OperationGenerateBills OperationType = "generate_bills"
)

// OperationLog 管理操作日志，每次账单生成记录一条
type OperationLog struct {
	BaseModel
	OperationType OperationType  `gorm:"type:varchar(50);not null;index" json:"operation_type"`
	RunID         string         `gorm:"type:varchar(36);index" json:"run_id"`
	Period        datatypes.Date `gorm:"index" json:"period"`
	UserID        uint           `json:"user_id"`                 // 执行操作的用户ID
	Details       datatypes.JSON `json:"details"`                 // 生成摘要或失败原因
	Success       bool           `gorm:"not null" json:"success"` // 操作是否成功
	Timestamp     time.Time      `json:"timestamp"`
}
