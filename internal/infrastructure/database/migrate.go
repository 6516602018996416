package database

import (
	"fmt"

	"rwportal-http-service/internal/domain/models"
	Logger "rwportal-http-service/pkg/logger"

	"gorm.io/gorm"
)

// allModels 需要迁移的模型，顺序即建表顺序
func allModels() []interface{} {
	return []interface{}{
		&models.RT{},
		&models.Household{},
		&models.Resident{},
		&models.User{},
		&models.TariffRule{},
		&models.Bill{},
		&models.CashTransaction{},
		&models.OperationLog{},
	}
}

// Migrate 根据迁移模式执行数据库迁移: "auto" 只添加新表和新列，
// "alter" 先清理重复账单再修改列，"drop" 删除并重建所有表
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case "", "auto":
		Logger.Info("在标准模式下运行，将只添加新列和新表")
		return autoMigrate(db)
	case "alter":
		Logger.Info("在alter模式下运行，将修改表结构以匹配模型")
		return advancedMigrate(db)
	case "drop":
		Logger.Warning("在drop模式下运行，将删除并重建所有表，所有数据将丢失")
		return dropAndRecreateTables(db)
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	Logger.Info("数据库迁移完成")
	return nil
}

// advancedMigrate 修改已有列以匹配模型。旧数据中同一户同一账期可能有多张
// 未付账单，建立唯一索引前只保留最早的一张
func advancedMigrate(db *gorm.DB) error {
	if db.Migrator().HasTable(&models.Bill{}) {
		removed, err := RemoveDuplicateBills(db)
		if err != nil {
			return err
		}
		if removed > 0 {
			Logger.Warning("已删除 %d 张重复的未付账单", removed)
		}
	}

	// sqlite 不支持修改列类型
	if db.Dialector.Name() == "sqlite" {
		return autoMigrate(db)
	}

	for _, model := range allModels() {
		if !db.Migrator().HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return fmt.Errorf("parse model: %w", err)
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" || field.PrimaryKey {
				continue
			}
			if !db.Migrator().HasColumn(model, field.DBName) {
				continue
			}
			if err := db.Migrator().AlterColumn(model, field.Name); err != nil {
				Logger.Warning("修改列 %s.%s 失败: %v", stmt.Schema.Table, field.DBName, err)
			}
		}
	}

	return autoMigrate(db)
}

// RemoveDuplicateBills 删除 (household_id, period) 重复且未付款的账单，保留 id 最小的一张
func RemoveDuplicateBills(db *gorm.DB) (int64, error) {
	result := db.Exec(`
		DELETE FROM bills
		WHERE status = ? AND id NOT IN (
			SELECT keep_id FROM (
				SELECT MIN(id) AS keep_id FROM bills GROUP BY household_id, period
			) AS keepers
		)`, models.BillStatusUnpaid)
	if result.Error != nil {
		return 0, fmt.Errorf("remove duplicate bills: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	all := allModels()
	// 逆序删除，先删依赖表
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return autoMigrate(db)
}
