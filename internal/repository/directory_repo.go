package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// DirectoryRepository resolves course, class, and user lookups owned by the
// registration system. It never writes.
type DirectoryRepository interface {
	GetClass(ctx context.Context, id uint) (models.Class, error)
	ListClassesByLecturer(ctx context.Context, lecturerID uint) ([]models.Class, error)
	ClassesByID(ctx context.Context, ids []uint) (map[uint]models.Class, error)
	UsersByID(ctx context.Context, ids []uint) (map[uint]models.User, error)
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository constructs the directory lookups.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) GetClass(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Course").First(&class, id).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *directoryRepository) ListClassesByLecturer(ctx context.Context, lecturerID uint) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("lecturer_id = ?", lecturerID).
		Order("scheduled_time ASC, id ASC").
		Find(&classes).Error
	return classes, err
}

func (r *directoryRepository) ClassesByID(ctx context.Context, ids []uint) (map[uint]models.Class, error) {
	result := make(map[uint]models.Class, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var classes []models.Class
	if err := r.db.WithContext(ctx).Preload("Course").Where("id IN ?", ids).Find(&classes).Error; err != nil {
		return nil, err
	}
	for _, class := range classes {
		result[class.ID] = class
	}
	return result, nil
}

func (r *directoryRepository) UsersByID(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	result := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}
