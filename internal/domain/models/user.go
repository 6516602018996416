package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role 用户角色
type Role string

const (
	// RW 管理层（可生成月费账单）
	RoleKetuaRW      Role = "ketua_rw"
	RoleWakilKetuaRW Role = "wakil_ketua_rw"
	RoleSekretarisRW Role = "sekretaris_rw"
	RoleBendaharaRW  Role = "bendahara_rw"

	// RT 管理层
	RoleKetuaRT      Role = "ketua_rt"
	RoleSekretarisRT Role = "sekretaris_rt"
	RoleBendaharaRT  Role = "bendahara_rt"

	// 普通居民
	RoleWarga Role = "warga"
)

// RWBoardRoles 返回 RW 管理层角色
func RWBoardRoles() []Role {
	return []Role{RoleKetuaRW, RoleWakilKetuaRW, RoleSekretarisRW, RoleBendaharaRW}
}

// BoardRoles 返回 RW 与 RT 管理层角色
func BoardRoles() []Role {
	return append(RWBoardRoles(), RoleKetuaRT, RoleSekretarisRT, RoleBendaharaRT)
}

// TreasurerRoles 可以录入现金账的角色
func TreasurerRoles() []Role {
	return []Role{RoleKetuaRW, RoleBendaharaRW, RoleBendaharaRT}
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	if r == RoleWarga {
		return true
	}
	return r.In(BoardRoles()...)
}

// IsRWBoard 是否为 RW 管理层
func (r Role) IsRWBoard() bool {
	return r.In(RWBoardRoles()...)
}

// In 是否属于给定角色之一
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// User 登录账号：管理层成员或居民
type User struct {
	BaseModel
	Username   string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Password   string `gorm:"type:varchar(100);not null" json:"-"`
	Name       string `gorm:"type:varchar(100)" json:"name"`
	Phone      string `gorm:"type:varchar(20)" json:"phone"`
	Role       Role   `gorm:"type:varchar(30);not null;default:'warga'" json:"role"`
	RTID       *uint  `json:"rt_id,omitempty"`       // RT 管理层与居民所属的 RT
	ResidentID *uint  `json:"resident_id,omitempty"` // 居民账号关联的居民档案
	Status     string `gorm:"type:varchar(20);default:'active'" json:"status"`
}

// BeforeSave 保存前对未哈希的密码进行哈希
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" || isBcryptHash(u.Password) {
		return nil
	}
	hashed, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// HashPassword 使用 bcrypt 生成密码哈希
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword 校验密码
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
