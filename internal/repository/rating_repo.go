package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// ErrRatingVanished is returned when the conflicting row disappears between the
// insert attempt and the update inside one upsert.
var ErrRatingVanished = errors.New("rating row vanished during upsert")

var ratingKeyColumns = []clause.Column{{Name: "rater_id"}, {Name: "rated_entity"}, {Name: "entity_id"}}

// RatingOverviewFilter narrows the joined ratings overview.
type RatingOverviewFilter struct {
	Page        int
	PageSize    int
	RatedEntity models.RatedEntity
	EntityID    uint
}

// RatingOverviewRow is a rating joined with rater, class, and lecturer names.
type RatingOverviewRow struct {
	ID           uint
	RaterID      uint
	RatedEntity  models.RatedEntity
	EntityID     uint
	Value        int
	Comment      string
	SubmittedAt  time.Time
	RaterName    string
	ClassName    string
	LecturerName string
}

// RatingRepository persists ratings and computes their aggregates.
type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.Rating) (bool, error)
	Aggregate(ctx context.Context, entity models.RatedEntity, entityID uint) (models.AggregateRating, error)
	AggregateMany(ctx context.Context, entity models.RatedEntity, entityIDs []uint) (map[uint]models.AggregateRating, error)
	ListByRater(ctx context.Context, raterID uint) ([]models.Rating, error)
	ListForOwner(ctx context.Context, ownerID uint) ([]models.Rating, error)
	ListOverview(ctx context.Context, filter RatingOverviewFilter) ([]RatingOverviewRow, int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository constructs the rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert inserts the rating or, when the rater already rated the entity, updates
// value, comment, and submitted_at in place. The unique index on the key makes
// the insert attempt the arbiter: a losing insert becomes a conditional update.
// The persisted row is written back into rating; the bool reports an insert.
func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := *rating
		candidate.ID = 0

		inserted := tx.Clauses(clause.OnConflict{Columns: ratingKeyColumns, DoNothing: true}).Create(&candidate)
		if inserted.Error != nil {
			return inserted.Error
		}

		key := tx.Where("rater_id = ? AND rated_entity = ? AND entity_id = ?", rating.RaterID, rating.RatedEntity, rating.EntityID)

		if inserted.RowsAffected == 1 {
			created = true
		} else {
			updated := key.Session(&gorm.Session{}).Model(&models.Rating{}).Updates(map[string]interface{}{
				"value":        rating.Value,
				"comment":      rating.Comment,
				"submitted_at": rating.SubmittedAt,
			})
			if updated.Error != nil {
				return updated.Error
			}
			if updated.RowsAffected == 0 {
				return ErrRatingVanished
			}
		}

		var stored models.Rating
		if err := key.Session(&gorm.Session{}).First(&stored).Error; err != nil {
			return err
		}
		*rating = stored
		return nil
	})
	return created, err
}

type aggregateRow struct {
	EntityID uint
	Average  float64
	Total    int64
}

const aggregateSelect = "COALESCE(CAST(AVG(value) AS DOUBLE PRECISION), 0) AS average, COUNT(id) AS total"

func (r *ratingRepository) Aggregate(ctx context.Context, entity models.RatedEntity, entityID uint) (models.AggregateRating, error) {
	var row aggregateRow
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select(aggregateSelect).
		Where("rated_entity = ? AND entity_id = ?", entity, entityID).
		Scan(&row).Error
	if err != nil {
		return models.AggregateRating{}, err
	}
	if row.Total == 0 {
		return models.AggregateRating{}, nil
	}
	return models.AggregateRating{Average: row.Average, Count: row.Total}, nil
}

// AggregateMany returns one aggregate per requested id; ids without ratings map to the zero aggregate.
func (r *ratingRepository) AggregateMany(ctx context.Context, entity models.RatedEntity, entityIDs []uint) (map[uint]models.AggregateRating, error) {
	result := make(map[uint]models.AggregateRating, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}

	var rows []aggregateRow
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("entity_id, "+aggregateSelect).
		Where("rated_entity = ? AND entity_id IN ?", entity, entityIDs).
		Group("entity_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, id := range entityIDs {
		result[id] = models.AggregateRating{}
	}
	for _, row := range rows {
		result[row.EntityID] = models.AggregateRating{Average: row.Average, Count: row.Total}
	}
	return result, nil
}

func (r *ratingRepository) ListByRater(ctx context.Context, raterID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("rater_id = ?", raterID).
		Order("submitted_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

// ListForOwner returns ratings on classes the owner teaches and on lectures the owner reported.
func (r *ratingRepository) ListForOwner(ctx context.Context, ownerID uint) ([]models.Rating, error) {
	ownedClasses := r.db.Model(&models.Class{}).Select("id").Where("lecturer_id = ?", ownerID)
	ownedLectures := r.db.Model(&models.Report{}).Select("id").Where("lecturer_id = ?", ownerID)

	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("((rated_entity = ? AND entity_id IN (?)) OR (rated_entity = ? AND entity_id IN (?)))",
			models.RatedEntityClass, ownedClasses, models.RatedEntityLecture, ownedLectures).
		Order("submitted_at DESC, id DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) ListOverview(ctx context.Context, filter RatingOverviewFilter) ([]RatingOverviewRow, int64, error) {
	base := r.db.WithContext(ctx).Table("ratings AS r")
	if filter.RatedEntity != "" {
		base = base.Where("r.rated_entity = ?", filter.RatedEntity)
	}
	if filter.EntityID > 0 {
		base = base.Where("r.entity_id = ?", filter.EntityID)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Select(`r.id, r.rater_id, r.rated_entity, r.entity_id, r.value, r.comment, r.submitted_at,
		COALESCE(u.name, '') AS rater_name,
		COALESCE(c.class_name, '') AS class_name,
		COALESCE(l.name, '') AS lecturer_name`).
		Joins("LEFT JOIN users u ON u.id = r.rater_id").
		Joins("LEFT JOIN reports rep ON r.rated_entity = ? AND rep.id = r.entity_id", models.RatedEntityLecture).
		Joins("LEFT JOIN classes c ON c.id = CASE WHEN r.rated_entity = ? THEN r.entity_id ELSE rep.class_id END", models.RatedEntityClass).
		Joins("LEFT JOIN users l ON l.id = c.lecturer_id")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []RatingOverviewRow
	if err := query.Order("r.submitted_at DESC, r.id DESC").Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
