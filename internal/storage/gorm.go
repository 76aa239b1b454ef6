package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wellness-planner/internal/planner"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// DailyPlanRecord is the relational row for one plan.
type DailyPlanRecord struct {
	ID          uint           `gorm:"primaryKey"`
	Date        string         `gorm:"column:date;type:varchar(10);uniqueIndex;not null"`
	QuoteText   string         `gorm:"column:quote_text;type:text;not null"`
	QuoteAuthor string         `gorm:"column:quote_author;type:text;not null"`
	Workout     datatypes.JSON `gorm:"column:workout;not null"`
	Meals       datatypes.JSON `gorm:"column:meals;not null"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (DailyPlanRecord) TableName() string { return "daily_plans" }

// GormStore persists plans through GORM, normally against Postgres.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres and returns a migrated GormStore.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore migrates the daily_plans table and wraps db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&DailyPlanRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate daily_plans: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Upsert inserts or replaces the plan using ON CONFLICT (date).
func (s *GormStore) Upsert(ctx context.Context, plan *planner.Plan) error {
	workout, meals, err := encodeParts(plan)
	if err != nil {
		return err
	}
	rec := DailyPlanRecord{
		Date:        plan.Date,
		QuoteText:   plan.Quote.Text,
		QuoteAuthor: plan.Quote.Author,
		Workout:     datatypes.JSON(workout),
		Meals:       datatypes.JSON(meals),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"quote_text", "quote_author", "workout", "meals", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}
	return nil
}

// Get retrieves the plan for date.
func (s *GormStore) Get(ctx context.Context, date string) (*planner.Plan, error) {
	var rec DailyPlanRecord
	err := s.db.WithContext(ctx).Where("date = ?", date).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return rec.toPlan()
}

// Delete removes the plan for date.
func (s *GormStore) Delete(ctx context.Context, date string) (bool, error) {
	res := s.db.WithContext(ctx).Where("date = ?", date).Delete(&DailyPlanRecord{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete plan: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteOlderThan removes plans dated before date.
func (s *GormStore) DeleteOlderThan(ctx context.Context, date string) (int64, error) {
	res := s.db.WithContext(ctx).Where("date < ?", date).Delete(&DailyPlanRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete old plans: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// List returns plans newest first.
func (s *GormStore) List(ctx context.Context, limit int) ([]planner.Plan, error) {
	q := s.db.WithContext(ctx).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []DailyPlanRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]planner.Plan, 0, len(recs))
	for _, rec := range recs {
		p, err := rec.toPlan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, nil
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r DailyPlanRecord) toPlan() (*planner.Plan, error) {
	plan := &planner.Plan{
		Date:  r.Date,
		Quote: planner.Quote{Text: r.QuoteText, Author: r.QuoteAuthor},
	}
	if err := decodeParts(plan, r.Workout, r.Meals); err != nil {
		return nil, err
	}
	return plan, nil
}
