package services

import "rwportal-http-service/internal/domain/models"

// Caller 已认证的调用方身份，由认证中间件从令牌中解析
type Caller struct {
	UserID uint
	Role   models.Role
	RTID   *uint
}

// IsBoardAdmin 是否为可以生成账单的 RW 管理层
func (c *Caller) IsBoardAdmin() bool {
	return c != nil && c.Role.IsRWBoard()
}

// HasRole 是否拥有给定角色之一
func (c *Caller) HasRole(roles ...models.Role) bool {
	return c != nil && c.Role.In(roles...)
}
