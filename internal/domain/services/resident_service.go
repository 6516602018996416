package services

import (
	"context"
	"fmt"
	"strings"

	"rwportal-http-service/internal/domain/models"
	"rwportal-http-service/internal/infrastructure/config"

	"gorm.io/gorm"
)

// ResidentInput 新增居民的请求数据
type ResidentInput struct {
	Name   string `json:"name" binding:"required" example:"Budi Santoso"`
	NIK    string `json:"nik" example:"3174010101010001"`
	Phone  string `json:"phone" example:"081234567890"`
	IsHead bool   `json:"is_head" example:"true"`
}

// InterfaceResidentService defines the resident service interface
type InterfaceResidentService interface {
	GetResidentsByHousehold(ctx context.Context, householdID uint) ([]models.Resident, error)
	GetResidentByID(ctx context.Context, id uint) (*models.Resident, error)
	CreateResident(ctx context.Context, caller *Caller, householdID uint, input ResidentInput) (*models.Resident, error)
	DeleteResident(ctx context.Context, caller *Caller, id uint) error
}

// ResidentService 提供居民相关的服务
type ResidentService struct {
	DB         *gorm.DB
	Config     *config.Config
	Households *HouseholdService
}

// NewResidentService 创建一个新的居民服务
func NewResidentService(db *gorm.DB, cfg *config.Config, households *HouseholdService) *ResidentService {
	return &ResidentService{
		DB:         db,
		Config:     cfg,
		Households: households,
	}
}

// 1 GetResidentsByHousehold 获取一户的居民，户主在前
func (s *ResidentService) GetResidentsByHousehold(ctx context.Context, householdID uint) ([]models.Resident, error) {
	if _, err := s.Households.GetHouseholdByID(ctx, householdID); err != nil {
		return nil, err
	}
	var residents []models.Resident
	err := s.DB.WithContext(ctx).Where("household_id = ?", householdID).
		Order("is_head DESC").Order("id").Find(&residents).Error
	if err != nil {
		return nil, err
	}
	return residents, nil
}

// 2 GetResidentByID 根据ID获取居民
func (s *ResidentService) GetResidentByID(ctx context.Context, id uint) (*models.Resident, error) {
	var resident models.Resident
	if err := s.DB.WithContext(ctx).First(&resident, id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

// 3 CreateResident 为户号新增居民，新户主会取代原户主
func (s *ResidentService) CreateResident(ctx context.Context, caller *Caller, householdID uint, input ResidentInput) (*models.Resident, error) {
	household, err := s.Households.GetHouseholdByID(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if err := s.Households.authorize(caller, household.RTID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	resident := &models.Resident{
		HouseholdID: householdID,
		Name:        name,
		NIK:         strings.TrimSpace(input.NIK),
		Phone:       strings.TrimSpace(input.Phone),
		IsHead:      input.IsHead,
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 每户只有一个户主
		if resident.IsHead {
			if err := tx.Model(&models.Resident{}).
				Where("household_id = ? AND is_head = ?", householdID, true).
				Update("is_head", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(resident).Error
	})
	if err != nil {
		return nil, err
	}
	return resident, nil
}

// 4 DeleteResident 删除居民
func (s *ResidentService) DeleteResident(ctx context.Context, caller *Caller, id uint) error {
	resident, err := s.GetResidentByID(ctx, id)
	if err != nil {
		return err
	}
	household, err := s.Households.GetHouseholdByID(ctx, resident.HouseholdID)
	if err != nil {
		return err
	}
	if err := s.Households.authorize(caller, household.RTID); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(resident).Error
}
