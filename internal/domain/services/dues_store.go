package services

import (
	"context"
	"errors"
	"time"

	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BillQuery 账单列表的筛选条件，每个请求构造一次后交给唯一的查询路径执行
type BillQuery struct {
	Period      *dues.Period
	Status      models.BillStatus
	HouseholdID uint
}

// BillView 账单及其户号显示信息
type BillView struct {
	ID          uint              `json:"id"`
	HouseholdID uint              `json:"household_id"`
	Period      string            `json:"period"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      models.BillStatus `json:"status"`
	AmountPaid  decimal.Decimal   `json:"amount_paid"`
	CreatedAt   time.Time         `json:"created_at"`
	Street      string            `json:"street"`
	HouseNumber string            `json:"house_number"`
	Zone        string            `json:"zone"`
	RTNumber    string            `json:"rt_number"`
	HeadName    string            `json:"head_name"`
}

// BillSummary 某账期的账单汇总
type BillSummary struct {
	Period      string          `json:"period"`
	BillCount   int64           `json:"bill_count"`
	PaidCount   int64           `json:"paid_count"`
	UnpaidCount int64           `json:"unpaid_count"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// DuesStore 月费服务依赖的存储：户号名册、费率表和账单台账
type DuesStore interface {
	LoadRoster(ctx context.Context) ([]dues.Household, error)
	LoadActiveTariffs(ctx context.Context, p dues.Period) ([]dues.Rule, error)
	LoadBilledHouseholds(ctx context.Context, p dues.Period) (map[uint]struct{}, error)
	// InsertBills 单批写入，(household_id, period) 冲突的行被忽略，返回实际写入行数
	InsertBills(ctx context.Context, p dues.Period, bills []dues.StagedBill) (int64, error)
	ListBills(ctx context.Context, q BillQuery) ([]BillView, error)
	SummarizeBills(ctx context.Context, p dues.Period) (*BillSummary, error)
	RecordRun(ctx context.Context, entry *models.OperationLog) error
	ListRuns(ctx context.Context, p *dues.Period, limit int) ([]models.OperationLog, error)
}

// GormDuesStore 基于GORM的 DuesStore 实现
type GormDuesStore struct {
	DB        *gorm.DB
	BatchSize int // 每条 INSERT 语句的行数上限
}

// billInsertBatchSize 保持单条语句的占位符数量远低于 MySQL 的 65535 上限
const billInsertBatchSize = 500

// NewGormDuesStore 创建GORM存储
func NewGormDuesStore(db *gorm.DB) *GormDuesStore {
	return &GormDuesStore{DB: db, BatchSize: billInsertBatchSize}
}

// 1 LoadRoster 按户号ID顺序读取全部户号
func (s *GormDuesStore) LoadRoster(ctx context.Context) ([]dues.Household, error) {
	var households []models.Household
	if err := s.DB.WithContext(ctx).Order("id").Find(&households).Error; err != nil {
		return nil, err
	}

	roster := make([]dues.Household, 0, len(households))
	for _, h := range households {
		roster = append(roster, dues.Household{
			ID:        h.ID,
			Address:   h.Address(),
			ZoneLabel: h.Zone,
			Occupied:  h.Occupied,
		})
	}
	return roster, nil
}

// 2 LoadActiveTariffs 读取账期内生效的费率，按生效日期倒序
func (s *GormDuesStore) LoadActiveTariffs(ctx context.Context, p dues.Period) ([]dues.Rule, error) {
	day := p.Date()
	var rules []models.TariffRule
	err := s.DB.WithContext(ctx).
		Where("effective_start <= ?", day).
		Where("effective_end IS NULL OR effective_end >= ?", day).
		Order("effective_start DESC").Order("id DESC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	out := make([]dues.Rule, 0, len(rules))
	for _, r := range rules {
		rule := dues.Rule{
			ID:             r.ID,
			ZoneLabel:      r.ZoneScope,
			OccupiedRate:   r.OccupiedRate,
			UnoccupiedRate: r.UnoccupiedRate,
			EffectiveStart: time.Time(r.EffectiveStart),
		}
		if r.EffectiveEnd != nil {
			end := time.Time(*r.EffectiveEnd)
			rule.EffectiveEnd = &end
		}
		out = append(out, rule)
	}
	return out, nil
}

// 3 LoadBilledHouseholds 读取账期内已出账的户号ID
func (s *GormDuesStore) LoadBilledHouseholds(ctx context.Context, p dues.Period) (map[uint]struct{}, error) {
	var ids []uint
	err := s.DB.WithContext(ctx).Model(&models.Bill{}).
		Where("period = ?", p.Date()).
		Distinct().Pluck("household_id", &ids).Error
	if err != nil {
		return nil, err
	}

	billed := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		billed[id] = struct{}{}
	}
	return billed, nil
}

// 4 InsertBills 在一个事务中分批写入账单，返回实际插入的行数
func (s *GormDuesStore) InsertBills(ctx context.Context, p dues.Period, staged []dues.StagedBill) (int64, error) {
	if len(staged) == 0 {
		return 0, nil
	}

	bills := make([]models.Bill, 0, len(staged))
	for _, b := range staged {
		bill := models.Bill{
			HouseholdID: b.HouseholdID,
			Period:      p.Date(),
			Amount:      b.Amount,
			Status:      models.BillStatusUnpaid,
			AmountPaid:  decimal.Zero,
		}
		if b.TariffID != 0 {
			tariffID := b.TariffID
			bill.TariffRuleID = &tariffID
		}
		bills = append(bills, bill)
	}

	size := s.BatchSize
	if size <= 0 {
		size = billInsertBatchSize
	}

	// 分批写入，任一批失败整个事务回滚
	var inserted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(bills); start += size {
			end := start + size
			if end > len(bills) {
				end = len(bills)
			}
			batch := bills[start:end]
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "household_id"}, {Name: "period"}},
				DoNothing: true,
			}).Create(&batch)
			if result.Error != nil {
				return result.Error
			}
			inserted += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// 5 ListBills 查询账单并关联户号、RT和户主信息，按账期倒序
func (s *GormDuesStore) ListBills(ctx context.Context, q BillQuery) ([]BillView, error) {
	type billRow struct {
		ID          uint
		HouseholdID uint
		Period      datatypes.Date
		Amount      decimal.Decimal
		Status      models.BillStatus
		AmountPaid  decimal.Decimal
		CreatedAt   time.Time
		Street      string
		HouseNumber string
		Zone        string
		RTNumber    *string
		HeadName    *string
	}

	db := s.DB.WithContext(ctx).Table("bills").
		Select(`bills.id, bills.household_id, bills.period, bills.amount, bills.status,
			bills.amount_paid, bills.created_at, households.street, households.house_number,
			households.zone, rts.number AS rt_number, residents.name AS head_name`).
		Joins("JOIN households ON households.id = bills.household_id").
		Joins("LEFT JOIN rts ON rts.id = households.rt_id").
		Joins("LEFT JOIN residents ON residents.household_id = households.id AND residents.is_head = ?", true)

	if q.Period != nil {
		db = db.Where("bills.period = ?", q.Period.Date())
	}
	if q.Status != "" {
		db = db.Where("bills.status = ?", q.Status)
	}
	if q.HouseholdID != 0 {
		db = db.Where("bills.household_id = ?", q.HouseholdID)
	}

	var rows []billRow
	if err := db.Order("bills.period DESC").Order("bills.id").Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]BillView, 0, len(rows))
	for _, r := range rows {
		v := BillView{
			ID:          r.ID,
			HouseholdID: r.HouseholdID,
			Period:      dues.PeriodOf(time.Time(r.Period)).Canonical(),
			Amount:      r.Amount,
			Status:      r.Status,
			AmountPaid:  r.AmountPaid,
			CreatedAt:   r.CreatedAt,
			Street:      r.Street,
			HouseNumber: r.HouseNumber,
			Zone:        r.Zone,
		}
		if r.RTNumber != nil {
			v.RTNumber = *r.RTNumber
		}
		if r.HeadName != nil {
			v.HeadName = *r.HeadName
		}
		views = append(views, v)
	}
	return views, nil
}

// 6 SummarizeBills 汇总账期内的账单金额
func (s *GormDuesStore) SummarizeBills(ctx context.Context, p dues.Period) (*BillSummary, error) {
	type statusRow struct {
		Status     models.BillStatus
		Count      int64
		Amount     decimal.NullDecimal
		AmountPaid decimal.NullDecimal
	}

	var rows []statusRow
	err := s.DB.WithContext(ctx).Model(&models.Bill{}).
		Select("status, COUNT(*) AS count, SUM(amount) AS amount, SUM(amount_paid) AS amount_paid").
		Where("period = ?", p.Date()).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &BillSummary{
		Period:      p.Canonical(),
		TotalBilled: decimal.Zero,
		TotalPaid:   decimal.Zero,
	}
	for _, r := range rows {
		summary.BillCount += r.Count
		switch r.Status {
		case models.BillStatusPaid:
			summary.PaidCount += r.Count
		case models.BillStatusUnpaid:
			summary.UnpaidCount += r.Count
		}
		if r.Amount.Valid {
			summary.TotalBilled = summary.TotalBilled.Add(r.Amount.Decimal)
		}
		if r.AmountPaid.Valid {
			summary.TotalPaid = summary.TotalPaid.Add(r.AmountPaid.Decimal)
		}
	}
	summary.Outstanding = summary.TotalBilled.Sub(summary.TotalPaid)
	return summary, nil
}

// 7 RecordRun 写入一条生成记录
func (s *GormDuesStore) RecordRun(ctx context.Context, entry *models.OperationLog) error {
	return s.DB.WithContext(ctx).Create(entry).Error
}

// 8 ListRuns 按时间倒序读取生成记录
func (s *GormDuesStore) ListRuns(ctx context.Context, p *dues.Period, limit int) ([]models.OperationLog, error) {
	db := s.DB.WithContext(ctx).Where("operation_type = ?", models.OperationGenerateBills)
	if p != nil {
		db = db.Where("period = ?", p.Date())
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var runs []models.OperationLog
	if err := db.Order("timestamp DESC").Order("id DESC").Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// isNotFound 判断是否为记录不存在
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
