package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.StudentProfile) error
	GetByID(ctx context.Context, id string) (*model.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error)
	ListActiveIndividual(ctx context.Context) ([]model.StudentProfile, error)
}

type studentRepo struct {
	db *gorm.DB
}

func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.StudentProfile) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByUserID(ctx context.Context, userID string) (*model.StudentProfile, error) {
	var student model.StudentProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// ListActiveIndividual 批量生成的目标集合：活跃的个性化排课学生
func (r *studentRepo) ListActiveIndividual(ctx context.Context) ([]model.StudentProfile, error) {
	var students []model.StudentProfile
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND student_type = ?", true, model.StudentTypeIndividual).
		Order("created_at ASC").
		Find(&students).Error
	return students, err
}
