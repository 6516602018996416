package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rwportal-http-service/internal/domain/dues"
	"rwportal-http-service/internal/domain/models"
	Logger "rwportal-http-service/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InterfaceDuesService 月费(IPL)账单服务接口
type InterfaceDuesService interface {
	GenerateBills(ctx context.Context, caller *Caller, periodInput string) (*GenerateResult, error)
	ListBills(ctx context.Context, caller *Caller, q BillQuery) ([]BillView, error)
	SummarizeBills(ctx context.Context, caller *Caller, periodInput string) (*BillSummary, error)
	ListRuns(ctx context.Context, caller *Caller, periodInput string) ([]models.OperationLog, error)
}

// runHistoryLimit 生成记录查询的最大条数
const runHistoryLimit = 100

// GenerateResult 账单生成摘要
type GenerateResult struct {
	RunID           string   `json:"run_id"`
	Period          string   `json:"period"`
	Total           int      `json:"total"`
	Inserted        int      `json:"inserted"`
	Skipped         int      `json:"skipped"`
	SkippedConflict int      `json:"skipped_conflict"`
	NoTarif         int      `json:"no_tarif"`
	SkippedPreview  []string `json:"skipped_preview"`
	NoTarifList     []string `json:"no_tarif_list"`
}

// DuesService 账单生成与查询
type DuesService struct {
	Store    DuesStore
	Zones    *dues.ZoneDirectory
	Locker   PeriodLocker
	Notifier BillNotifier
	// PreviewLimit 摘要中已出账地址预览的最大条数
	PreviewLimit int
}

// NewDuesService 创建账单服务
func NewDuesService(store DuesStore, zones *dues.ZoneDirectory, locker PeriodLocker, notifier BillNotifier, previewLimit int) *DuesService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &DuesService{
		Store:        store,
		Zones:        zones,
		Locker:       locker,
		Notifier:     notifier,
		PreviewLimit: previewLimit,
	}
}

// 1 GenerateBills 为账期生成缺失的账单
func (s *DuesService) GenerateBills(ctx context.Context, caller *Caller, periodInput string) (*GenerateResult, error) {
	// 账期格式在任何I/O之前校验
	period, err := dues.ParsePeriod(periodInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if !caller.IsBoardAdmin() {
		return nil, ErrForbidden
	}

	release, err := s.Locker.Acquire(ctx, "dues:generate:"+period.String())
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, ErrGenerationInProgress
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	// 账单写入并记录后提前释放，通知不占用锁
	release = sync.OnceFunc(release)
	defer release()

	roster, err := s.Store.LoadRoster(ctx)
	if err != nil {
		return nil, s.persistenceError("读取户号名册", err)
	}
	rules, err := s.Store.LoadActiveTariffs(ctx, period)
	if err != nil {
		return nil, s.persistenceError("读取费率", err)
	}
	billed, err := s.Store.LoadBilledHouseholds(ctx, period)
	if err != nil {
		return nil, s.persistenceError("读取已出账户号", err)
	}

	plan := dues.BuildPlan(period, roster, dues.NewTariffTable(rules, period, s.Zones), billed, s.Zones)

	runID := uuid.New().String()
	inserted, err := s.Store.InsertBills(ctx, period, plan.Staged)
	if err != nil {
		s.recordRun(ctx, runID, period, caller, false, map[string]interface{}{"error": err.Error(), "staged": len(plan.Staged)})
		return nil, s.persistenceError("写入账单", err)
	}

	result := &GenerateResult{
		RunID:           runID,
		Period:          period.Canonical(),
		Total:           plan.Total,
		Inserted:        int(inserted),
		Skipped:         len(plan.Skipped),
		SkippedConflict: len(plan.Staged) - int(inserted),
		NoTarif:         len(plan.NoTariff),
		SkippedPreview:  dues.Addresses(plan.Skipped, s.PreviewLimit),
		NoTarifList:     dues.Addresses(plan.NoTariff, 0),
	}

	Logger.Info("账单生成完成: run=%s period=%s user=%d total=%d inserted=%d skipped=%d conflict=%d no_tarif=%d",
		result.RunID, period, caller.UserID, result.Total, result.Inserted, result.Skipped, result.SkippedConflict, result.NoTarif)

	s.recordRun(ctx, runID, period, caller, true, result)
	release()

	if result.Inserted > 0 {
		if err := s.Notifier.BillsGenerated(result); err != nil {
			Logger.Warning("发布账单生成事件失败: run=%s err=%v", result.RunID, err)
		}
	}
	return result, nil
}

// 2 ListBills 查询账单，仅要求已认证
func (s *DuesService) ListBills(ctx context.Context, caller *Caller, q BillQuery) ([]BillView, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}

	bills, err := s.Store.ListBills(ctx, q)
	if err != nil {
		return nil, s.persistenceError("查询账单", err)
	}
	return bills, nil
}

// 3 SummarizeBills 账期汇总，RW/RT 管理层可见
func (s *DuesService) SummarizeBills(ctx context.Context, caller *Caller, periodInput string) (*BillSummary, error) {
	period, err := dues.ParsePeriod(periodInput)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if !caller.HasRole(models.BoardRoles()...) {
		return nil, ErrForbidden
	}

	summary, err := s.Store.SummarizeBills(ctx, period)
	if err != nil {
		return nil, s.persistenceError("汇总账单", err)
	}
	return summary, nil
}

// 4 ListRuns 查询生成记录，仅 RW 管理层；periodInput 为空时返回最近的记录
func (s *DuesService) ListRuns(ctx context.Context, caller *Caller, periodInput string) ([]models.OperationLog, error) {
	var period *dues.Period
	if periodInput != "" {
		p, err := dues.ParsePeriod(periodInput)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		period = &p
	}
	if caller == nil {
		return nil, ErrUnauthenticated
	}
	if !caller.IsBoardAdmin() {
		return nil, ErrForbidden
	}

	runs, err := s.Store.ListRuns(ctx, period, runHistoryLimit)
	if err != nil {
		return nil, s.persistenceError("查询生成记录", err)
	}
	return runs, nil
}

// recordRun 写入生成记录，失败只记日志，不影响已写入的账单
func (s *DuesService) recordRun(ctx context.Context, runID string, period dues.Period, caller *Caller, success bool, details interface{}) {
	raw, err := json.Marshal(details)
	if err != nil {
		Logger.Warning("序列化生成记录失败: run=%s err=%v", runID, err)
		return
	}
	entry := &models.OperationLog{
		OperationType: models.OperationGenerateBills,
		RunID:         runID,
		Period:        period.Date(),
		UserID:        caller.UserID,
		Details:       datatypes.JSON(raw),
		Success:       success,
		Timestamp:     time.Now(),
	}
	if err := s.Store.RecordRun(ctx, entry); err != nil {
		Logger.Warning("写入生成记录失败: run=%s err=%v", runID, err)
	}
}

// persistenceError 记录并包装存储层错误
func (s *DuesService) persistenceError(action string, err error) error {
	Logger.Error("%s失败: %v", action, err)
	return fmt.Errorf("%w: %s: %v", ErrPersistence, action, err)
}
