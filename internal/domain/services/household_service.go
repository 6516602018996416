package services

import (
	"context"
	"fmt"
	"strings"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// HouseholdQuery 户号列表筛选条件
type HouseholdQuery struct {
	RTID     uint
	Zone     string
	Occupied *bool
	Page     int
	PageSize int
}

// HouseholdInput 创建/更新户号的请求数据
type HouseholdInput struct {
	RTID        uint   `json:"rt_id" binding:"required" example:"1"`
	Street      string `json:"street" binding:"required" example:"Jl. Melati"`
	HouseNumber string `json:"house_number" binding:"required" example:"12A"`
	Zone        string `json:"zone" example:"Timur"`
	Occupied    *bool  `json:"occupied" example:"true"`
}

// InterfaceHouseholdService 户号服务接口
type InterfaceHouseholdService interface {
	GetAllRTs(ctx context.Context) ([]models.RT, error)
	CreateRT(ctx context.Context, caller *Caller, rt *models.RT) error
	GetAllHouseholds(ctx context.Context, q HouseholdQuery) ([]models.Household, int64, error)
	GetHouseholdByID(ctx context.Context, id uint) (*models.Household, error)
	CreateHousehold(ctx context.Context, caller *Caller, input HouseholdInput) (*models.Household, error)
	UpdateHousehold(ctx context.Context, caller *Caller, id uint, input HouseholdInput) (*models.Household, error)
	DeleteHousehold(ctx context.Context, caller *Caller, id uint) error
}

// HouseholdService 提供户号和RT相关的服务
type HouseholdService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewHouseholdService 创建户号服务
func NewHouseholdService(db *gorm.DB, cfg *config.Config) *HouseholdService {
	return &HouseholdService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllRTs 获取所有RT
func (s *HouseholdService) GetAllRTs(ctx context.Context) ([]models.RT, error) {
	var rts []models.RT
	if err := s.DB.WithContext(ctx).Order("number").Find(&rts).Error; err != nil {
		return nil, err
	}
	return rts, nil
}

// 2 CreateRT 创建RT，仅 RW 管理层
func (s *HouseholdService) CreateRT(ctx context.Context, caller *Caller, rt *models.RT) error {
	if !caller.IsBoardAdmin() {
		return ErrForbidden
	}
	rt.Number = strings.TrimSpace(rt.Number)
	if rt.Number == "" {
		return fmt.Errorf("%w: rt number is required", ErrInvalidInput)
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.RT{}).Where("number = ?", rt.Number).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: rt %s already exists", ErrInvalidInput, rt.Number)
	}
	return s.DB.WithContext(ctx).Create(rt).Error
}

// 3 GetAllHouseholds 分页获取户号，支持按RT、区域、是否居住筛选
func (s *HouseholdService) GetAllHouseholds(ctx context.Context, q HouseholdQuery) ([]models.Household, int64, error) {
	var households []models.Household
	var total int64

	query := s.DB.WithContext(ctx).Model(&models.Household{})
	if q.RTID != 0 {
		query = query.Where("rt_id = ?", q.RTID)
	}
	if q.Zone != "" {
		query = query.Where("zone = ?", q.Zone)
	}
	if q.Occupied != nil {
		query = query.Where("occupied = ?", *q.Occupied)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if q.Page > 0 && q.PageSize > 0 {
		query = query.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}
	if err := query.Preload("RT").Order("rt_id").Order("street").Order("house_number").Find(&households).Error; err != nil {
		return nil, 0, err
	}
	return households, total, nil
}

// 4 GetHouseholdByID 根据ID获取户号及其居民
func (s *HouseholdService) GetHouseholdByID(ctx context.Context, id uint) (*models.Household, error) {
	var household models.Household
	if err := s.DB.WithContext(ctx).Preload("RT").Preload("Residents").First(&household, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrHouseholdNotFound
		}
		return nil, err
	}
	return &household, nil
}

// 5 CreateHousehold 创建户号，同一RT下门牌唯一
func (s *HouseholdService) CreateHousehold(ctx context.Context, caller *Caller, input HouseholdInput) (*models.Household, error) {
	if err := s.authorize(caller, input.RTID); err != nil {
		return nil, err
	}
	household := &models.Household{}
	if err := s.apply(ctx, household, input, 0); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(household).Error; err != nil {
		return nil, err
	}
	return household, nil
}

// 6 UpdateHousehold 更新户号信息
func (s *HouseholdService) UpdateHousehold(ctx context.Context, caller *Caller, id uint, input HouseholdInput) (*models.Household, error) {
	household, err := s.GetHouseholdByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// 原RT和目标RT都必须在调用方管辖范围内
	if err := s.authorize(caller, household.RTID); err != nil {
		return nil, err
	}
	if err := s.authorize(caller, input.RTID); err != nil {
		return nil, err
	}
	if err := s.apply(ctx, household, input, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"rt_id":        household.RTID,
		"street":       household.Street,
		"house_number": household.HouseNumber,
		"zone":         household.Zone,
		"occupied":     household.Occupied,
	}
	if err := s.DB.WithContext(ctx).Model(&models.Household{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetHouseholdByID(ctx, id)
}

// 7 DeleteHousehold 删除户号，存在居民或账单时拒绝
func (s *HouseholdService) DeleteHousehold(ctx context.Context, caller *Caller, id uint) error {
	household, err := s.GetHouseholdByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(caller, household.RTID); err != nil {
		return err
	}

	var bills, residents int64
	if err := s.DB.WithContext(ctx).Model(&models.Bill{}).Where("household_id = ?", id).Count(&bills).Error; err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Model(&models.Resident{}).Where("household_id = ?", id).Count(&residents).Error; err != nil {
		return err
	}
	if bills > 0 || residents > 0 {
		return ErrHouseholdInUse
	}
	return s.DB.WithContext(ctx).Delete(&models.Household{}, id).Error
}

// authorize RW 管理层可管理所有户号，RT 管理层只能管理本RT
func (s *HouseholdService) authorize(caller *Caller, rtID uint) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.IsBoardAdmin() {
		return nil
	}
	if caller.HasRole(models.RoleKetuaRT, models.RoleSekretarisRT, models.RoleBendaharaRT) &&
		caller.RTID != nil && *caller.RTID == rtID {
		return nil
	}
	return ErrForbidden
}

// apply 校验输入并写入模型，excludeID 为更新时排除的自身ID
func (s *HouseholdService) apply(ctx context.Context, h *models.Household, input HouseholdInput, excludeID uint) error {
	street := strings.TrimSpace(input.Street)
	number := strings.TrimSpace(input.HouseNumber)
	if input.RTID == 0 || street == "" || number == "" {
		return fmt.Errorf("%w: rt_id, street and house_number are required", ErrInvalidInput)
	}

	var rtCount int64
	if err := s.DB.WithContext(ctx).Model(&models.RT{}).Where("id = ?", input.RTID).Count(&rtCount).Error; err != nil {
		return err
	}
	if rtCount == 0 {
		return ErrRTNotFound
	}

	var dup int64
	query := s.DB.WithContext(ctx).Model(&models.Household{}).
		Where("rt_id = ? AND street = ? AND house_number = ?", input.RTID, street, number)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&dup).Error; err != nil {
		return err
	}
	if dup > 0 {
		return ErrHouseholdAlreadyExist
	}

	h.RTID = input.RTID
	h.Street = street
	h.HouseNumber = number
	h.Zone = strings.TrimSpace(input.Zone)
	if input.Occupied != nil {
		h.Occupied = *input.Occupied
	} else if excludeID == 0 {
		h.Occupied = true
	}
	return nil
}
