package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// TariffInput 新增费率规则的请求数据，日期格式 YYYY-MM-DD
type TariffInput struct {
	ZoneScope      string           `json:"zone_scope" binding:"required" example:"Timur"`
	OccupiedRate   decimal.Decimal  `json:"occupied_rate" swaggertype:"number" example:"200000"`
	UnoccupiedRate *decimal.Decimal `json:"unoccupied_rate" swaggertype:"number" example:"150000"`
	EffectiveStart string           `json:"effective_start" binding:"required" example:"2024-01-01"`
	EffectiveEnd   string           `json:"effective_end" example:"2024-12-31"`
	Note           string           `json:"note" example:"IPL 2024"`
}

// InterfaceTariffService 费率规则服务接口
type InterfaceTariffService interface {
	GetAllTariffs(ctx context.Context, activeIn *dues.Period) ([]models.TariffRule, error)
	CreateTariff(ctx context.Context, caller *Caller, input TariffInput) (*models.TariffRule, error)
	DeleteTariff(ctx context.Context, caller *Caller, id uint) error
}

// TariffService 提供费率规则相关的服务
type TariffService struct {
	DB    *gorm.DB
	Zones *dues.ZoneDirectory
}

// NewTariffService 创建费率服务
func NewTariffService(db *gorm.DB, zones *dues.ZoneDirectory) *TariffService {
	return &TariffService{DB: db, Zones: zones}
}

// 1 GetAllTariffs 获取费率规则，activeIn 不为空时只返回该账期生效的规则
func (s *TariffService) GetAllTariffs(ctx context.Context, activeIn *dues.Period) ([]models.TariffRule, error) {
	query := s.DB.WithContext(ctx).Model(&models.TariffRule{})
	if activeIn != nil {
		day := activeIn.Date()
		query = query.Where("effective_start <= ?", day).
			Where("effective_end IS NULL OR effective_end >= ?", day)
	}

	var rules []models.TariffRule
	if err := query.Order("effective_start DESC").Order("id DESC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// 2 CreateTariff 新增费率规则，仅 RW 管理层
func (s *TariffService) CreateTariff(ctx context.Context, caller *Caller, input TariffInput) (*models.TariffRule, error) {
	if !caller.IsBoardAdmin() {
		return nil, ErrForbidden
	}
	rule, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	return rule, nil
}

// 3 DeleteTariff 删除费率规则，已被账单引用时拒绝
func (s *TariffService) DeleteTariff(ctx context.Context, caller *Caller, id uint) error {
	if !caller.IsBoardAdmin() {
		return ErrForbidden
	}

	var rule models.TariffRule
	if err := s.DB.WithContext(ctx).First(&rule, id).Error; err != nil {
		if isNotFound(err) {
			return ErrTariffNotFound
		}
		return err
	}

	var refs int64
	if err := s.DB.WithContext(ctx).Model(&models.Bill{}).Where("tariff_rule_id = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return ErrTariffInUse
	}
	return s.DB.WithContext(ctx).Delete(&rule).Error
}

func (s *TariffService) validate(input TariffInput) (*models.TariffRule, error) {
	label := strings.TrimSpace(input.ZoneScope)
	if label == "" {
		return nil, fmt.Errorf("%w: zone_scope is required", ErrInvalidInput)
	}
	if !input.OccupiedRate.IsPositive() {
		return nil, fmt.Errorf("%w: occupied_rate must be positive", ErrInvalidInput)
	}
	if input.UnoccupiedRate != nil && input.UnoccupiedRate.IsNegative() {
		return nil, fmt.Errorf("%w: unoccupied_rate must not be negative", ErrInvalidInput)
	}

	start, err := time.Parse(dateLayout, input.EffectiveStart)
	if err != nil {
		return nil, fmt.Errorf("%w: effective_start must be YYYY-MM-DD", ErrInvalidInput)
	}
	rule := &models.TariffRule{
		OccupiedRate:   input.OccupiedRate,
		EffectiveStart: datatypes.Date(start),
		Note:           strings.TrimSpace(input.Note),
	}

	// 存储规范化后的区域，保证与户号匹配时一致
	if scope := s.Zones.Scope(label); scope.IsAll() {
		rule.ZoneScope = models.TariffScopeAll
	} else {
		rule.ZoneScope = string(scope.Zone())
	}

	if input.UnoccupiedRate != nil {
		rule.UnoccupiedRate = decimal.NewNullDecimal(*input.UnoccupiedRate)
	}
	if input.EffectiveEnd != "" {
		end, err := time.Parse(dateLayout, input.EffectiveEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: effective_end must be YYYY-MM-DD", ErrInvalidInput)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("%w: effective_end is before effective_start", ErrInvalidInput)
		}
		endDate := datatypes.Date(end)
		rule.EffectiveEnd = &endDate
	}
	return rule, nil
}
