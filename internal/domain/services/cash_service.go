package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rwportal-http-service/internal/domain/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CashInput 录入现金账的请求数据
type CashInput struct {
	Type        models.CashType `json:"type" binding:"required" example:"income"`
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"200000"`
	Date        string          `json:"date" binding:"required" example:"2024-03-05"`
	Category    string          `json:"category" example:"iuran"`
	Description string          `json:"description" example:"IPL Maret Jl. Melati No. 12A"`
	BillID      *uint           `json:"bill_id" example:"1"`
}

// CashQuery 现金账筛选条件，日期区间为闭区间
type CashQuery struct {
	Type models.CashType
	From *time.Time
	To   *time.Time
}

// CashSummary 现金账汇总
type CashSummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// InterfaceCashService 现金账服务接口
type InterfaceCashService interface {
	CreateTransaction(ctx context.Context, caller *Caller, input CashInput) (*models.CashTransaction, error)
	GetTransactions(ctx context.Context, caller *Caller, q CashQuery) ([]models.CashTransaction, error)
	Summarize(ctx context.Context, caller *Caller, q CashQuery) (*CashSummary, error)
}

// CashService 提供现金账相关的服务
type CashService struct {
	DB *gorm.DB
}

// NewCashService 创建现金账服务
func NewCashService(db *gorm.DB) *CashService {
	return &CashService{DB: db}
}

// 1 CreateTransaction 录入一笔现金账，仅财务相关角色
func (s *CashService) CreateTransaction(ctx context.Context, caller *Caller, input CashInput) (*models.CashTransaction, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if !caller.HasRole(models.TreasurerRoles()...) {
		return nil, ErrForbidden
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrInvalidInput)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	date, err := time.Parse(dateLayout, input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}

	if input.BillID != nil {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Bill{}).Where("id = ?", *input.BillID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, fmt.Errorf("%w: bill %d does not exist", ErrInvalidInput, *input.BillID)
		}
	}

	tx := &models.CashTransaction{
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        datatypes.Date(date),
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		BillID:      input.BillID,
		RecordedBy:  caller.UserID,
	}
	if err := s.DB.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

// 2 GetTransactions 按日期倒序查询现金账，仅管理层
func (s *CashService) GetTransactions(ctx context.Context, caller *Caller, q CashQuery) ([]models.CashTransaction, error) {
	if err := s.authorizeRead(caller, q); err != nil {
		return nil, err
	}
	var txs []models.CashTransaction
	if err := s.filter(ctx, q).Order("date DESC").Order("id DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// 3 Summarize 汇总收入、支出和余额
func (s *CashService) Summarize(ctx context.Context, caller *Caller, q CashQuery) (*CashSummary, error) {
	if err := s.authorizeRead(caller, q); err != nil {
		return nil, err
	}

	type typeRow struct {
		Type   models.CashType
		Amount decimal.NullDecimal
	}
	var rows []typeRow
	err := s.filter(ctx, q).Select("type, SUM(amount) AS amount").Group("type").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &CashSummary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, r := range rows {
		if !r.Amount.Valid {
			continue
		}
		switch r.Type {
		case models.CashIncome:
			summary.Income = summary.Income.Add(r.Amount.Decimal)
		case models.CashExpense:
			summary.Expense = summary.Expense.Add(r.Amount.Decimal)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

func (s *CashService) authorizeRead(caller *Caller, q CashQuery) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if !caller.HasRole(models.BoardRoles()...) {
		return ErrForbidden
	}
	if q.Type != "" && !q.Type.Valid() {
		return fmt.Errorf("%w: type must be income or expense", ErrInvalidInput)
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return fmt.Errorf("%w: date range is reversed", ErrInvalidInput)
	}
	return nil
}

func (s *CashService) filter(ctx context.Context, q CashQuery) *gorm.DB {
	db := s.DB.WithContext(ctx).Model(&models.CashTransaction{})
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}
	if q.From != nil {
		db = db.Where("date >= ?", datatypes.Date(*q.From))
	}
	if q.To != nil {
		db = db.Where("date <= ?", datatypes.Date(*q.To))
	}
	return db
}
