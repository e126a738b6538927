// Package journal keeps an append-only audit log of every ledger operation,
// rejected ones included.
package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

type Entry struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	BatchID   string    `gorm:"index"`
	Height    uint64    `gorm:"index;not null"`
	Caller    string    `gorm:"index;not null"`
	Operation string    `gorm:"not null"`
	Arguments string    `gorm:"type:text"`
	Code      uint32    `gorm:"default:0"`
	Error     string    `gorm:"type:text"`
	At        time.Time `gorm:"not null"`
}

type Filter struct {
	Caller string
	Limit  int
	Offset int
}

type Journal struct {
	db *gorm.DB
}

func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(ctx context.Context, rec entity.OperationRecord) error {
	entry := Entry{
		BatchID:   rec.BatchID,
		Height:    rec.Height,
		Caller:    rec.Caller,
		Operation: rec.Operation,
		Arguments: rec.Arguments,
		Code:      uint32(rec.Code),
		Error:     rec.Error,
		At:        rec.At,
	}
	return j.db.WithContext(ctx).Create(&entry).Error
}

// List returns entries newest first.
func (j *Journal) List(ctx context.Context, filter Filter) ([]entity.OperationRecord, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}

	query := j.db.WithContext(ctx).Order("id desc").Limit(filter.Limit).Offset(filter.Offset)
	if filter.Caller != "" {
		query = query.Where("caller = ?", filter.Caller)
	}

	var entries []Entry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	records := make([]entity.OperationRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, entity.OperationRecord{
			BatchID:   e.BatchID,
			Height:    e.Height,
			Caller:    e.Caller,
			Operation: e.Operation,
			Arguments: e.Arguments,
			Code:      entity.ErrorCode(e.Code),
			Error:     e.Error,
			At:        e.At,
		})
	}
	return records, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
