package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
	pkgerrors "github.com/forhay123/haybee-edu-sub009/pkg/errors"
)

// TermRepository 学期数据访问接口
type TermRepository interface {
	Create(ctx context.Context, term *model.Term) error
	GetByID(ctx context.Context, id string) (*model.Term, error)
	GetActive(ctx context.Context) (*model.Term, error)
	List(ctx context.Context) ([]model.Term, error)
	Update(ctx context.Context, term *model.Term) error
}

type termRepo struct {
	db *gorm.DB
}

func NewTermRepo(db *gorm.DB) TermRepository {
	return &termRepo{db: db}
}

func (r *termRepo) Create(ctx context.Context, term *model.Term) error {
	return r.db.WithContext(ctx).Create(term).Error
}

func (r *termRepo) GetByID(ctx context.Context, id string) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("term_id = ?", id).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) GetActive(ctx context.Context) (*model.Term, error) {
	var term model.Term
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		First(&term).Error
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (r *termRepo) List(ctx context.Context) ([]model.Term, error) {
	var terms []model.Term
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&terms).Error
	return terms, err
}

func (r *termRepo) Update(ctx context.Context, term *model.Term) error {
	oldVersion := term.Version
	result := r.db.WithContext(ctx).
		Model(term).
		Where("term_id = ? AND version = ?", term.TermID, oldVersion).
		Updates(map[string]interface{}{
			"name":       term.Name,
			"start_date": term.StartDate,
			"end_date":   term.EndDate,
			"week_count": term.WeekCount,
			"is_active":  term.IsActive,
			"updated_by": term.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	term.Version = oldVersion + 1
	return nil
}
