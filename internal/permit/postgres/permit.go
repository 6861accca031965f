package postgres

import (
	"context"
	"errors"

	permitDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/permit"
	"github.com/frahmantamala/permit-service/internal/permit"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type PermitRepository struct {
	db *gorm.DB
}

// NewPermitRepository expects db to be opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
func NewPermitRepository(db *gorm.DB) permit.RepositoryAPI {
	return &PermitRepository{db: db}
}

func (r *PermitRepository) Create(ctx context.Context, p *permitDatamodel.Permit) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if isUniqueViolation(err) {
		return errors.Join(permit.ErrDuplicatePermitNumber, err)
	}
	return err
}

func (r *PermitRepository) GetAll(ctx context.Context) ([]*permitDatamodel.Permit, error) {
	var permits []*permitDatamodel.Permit
	err := r.db.WithContext(ctx).Order("id ASC").Find(&permits).Error
	return permits, err
}

func (r *PermitRepository) GetByID(ctx context.Context, id int64) (*permitDatamodel.Permit, error) {
	var p permitDatamodel.Permit
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, permit.ErrPermitNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateByPermitNumber applies updates and reports how many rows matched.
func (r *PermitRepository) UpdateByPermitNumber(ctx context.Context, permitNumber string, updates map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&permitDatamodel.Permit{}).
		Where("permit_number = ?", permitNumber).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
