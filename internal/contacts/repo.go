package contacts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avolkov/orderflow-backend/pkg/db/models"
)

// Repository persists delivery contacts. Every query is scoped to the owning
// user so callers cannot touch other accounts' rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Contact, error) {
	var rows []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *Repository) Update(ctx context.Context, userID, id uuid.UUID, updates map[string]any) (int64, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

// DeleteBatch removes the given contacts owned by the user and reports the
// number of rows actually deleted.
func (r *Repository) DeleteBatch(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Contact{})
	return res.RowsAffected, res.Error
}
