package services

import (
	"context"
	"fmt"
	"strings"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/infrastructure/config"
	Logger "rwportal-http-service/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAdminUsername 首次启动时创建的 ketua_rw 账号
const DefaultAdminUsername = "ketua_rw"

// InterfaceUserService 用户账号服务接口
type InterfaceUserService interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetAllUsers(ctx context.Context, page, pageSize int, search string) ([]models.User, int64, error)
	CreateUser(ctx context.Context, caller *Caller, user *models.User) error
	DeleteUser(ctx context.Context, caller *Caller, id uint) error
	EnsureDefaultAdmin(ctx context.Context) (created bool, password string, err error)
}

// UserService 提供用户账号相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建用户服务
func NewUserService(db *gorm.DB, cfg *config.Config) *UserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 2 GetUserByUsername 根据用户名获取用户
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 3 GetAllUsers 分页获取用户，支持按用户名/姓名搜索
func (s *UserService) GetAllUsers(ctx context.Context, page, pageSize int, search string) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.User{})
	if search != "" {
		query = query.Where("username LIKE ? OR name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Order("id").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// 4 CreateUser 创建账号，仅 RW 管理层可操作
func (s *UserService) CreateUser(ctx context.Context, caller *Caller, user *models.User) error {
	if !caller.IsBoardAdmin() {
		return ErrForbidden
	}
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" || user.Password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if user.Role == "" {
		user.Role = models.RoleWarga
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, user.Role)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExist
	}

	// 密码在 BeforeSave 中哈希
	return s.DB.WithContext(ctx).Create(user).Error
}

// 5 DeleteUser 删除账号，不能删除自己
func (s *UserService) DeleteUser(ctx context.Context, caller *Caller, id uint) error {
	if !caller.IsBoardAdmin() {
		return ErrForbidden
	}
	if caller.UserID == id {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(user).Error
}

// 6 EnsureDefaultAdmin 用户表为空时创建默认 ketua_rw 账号
// 未配置 DEFAULT_ADMIN_PASSWORD 时生成随机密码并返回，由调用方打印
func (s *UserService) EnsureDefaultAdmin(ctx context.Context) (bool, string, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return false, "", err
	}
	if count > 0 {
		return false, "", nil
	}

	password := s.Config.DefaultAdminPassword
	if password == "" {
		password = strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	}

	admin := &models.User{
		Username: DefaultAdminUsername,
		Password: password,
		Name:     "Ketua RW",
		Role:     models.RoleKetuaRW,
		Status:   "active",
	}
	if err := s.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return false, "", err
	}
	Logger.Info("已创建默认管理员账号: %s", DefaultAdminUsername)
	return true, password, nil
}
