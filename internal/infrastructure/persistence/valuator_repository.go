package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/domain/valuator"
	"github.com/vertinimas/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormValuatorRepository implements ValuatorRepository using GORM
type GormValuatorRepository struct {
	db *gorm.DB
}

// NewGormValuatorRepository creates a new GormValuatorRepository
func NewGormValuatorRepository(db *gorm.DB) *GormValuatorRepository {
	return &GormValuatorRepository{db: db}
}

// Create creates a new valuator
func (r *GormValuatorRepository) Create(ctx context.Context, v *valuator.Valuator) error {
	if err := r.db.WithContext(ctx).Create(models.ValuatorModelFromDomain(v)).Error; err != nil {
		if isDuplicateKey(err) {
			return valuator.ErrCodeTaken
		}
		return err
	}
	return nil
}

// Update overwrites every column of an existing valuator
func (r *GormValuatorRepository) Update(ctx context.Context, v *valuator.Valuator) error {
	result := r.db.WithContext(ctx).
		Model(&models.ValuatorModel{}).
		Where("id = ?", v.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(models.ValuatorModelFromDomain(v))
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return valuator.ErrCodeTaken
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return valuator.ErrValuatorNotFound
	}
	return nil
}

// Delete deletes a valuator by ID
func (r *GormValuatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ValuatorModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return valuator.ErrValuatorNotFound
	}
	return nil
}

// FindByID finds a valuator by ID
func (r *GormValuatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*valuator.Valuator, error) {
	var model models.ValuatorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, valuator.ErrValuatorNotFound)
	}
	return model.ToDomain(), nil
}

// FindByCode finds a valuator by its code
func (r *GormValuatorRepository) FindByCode(ctx context.Context, code string) (*valuator.Valuator, error) {
	var model models.ValuatorModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", valuator.NormalizeCode(code)).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, valuator.ErrValuatorNotFound)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks if a code is already in use
func (r *GormValuatorRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ValuatorModel{}).
		Where("code = ?", valuator.NormalizeCode(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns a page of valuators ordered by code
func (r *GormValuatorRepository) FindAll(ctx context.Context, filter valuator.ValuatorFilter) ([]*valuator.Valuator, int64, error) {
	var rows []*models.ValuatorModel
	var total int64

	query := r.db.WithContext(ctx).Model(&models.ValuatorModel{})
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	query = searchAny(query, filter.Search, "code", "name", "email")

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := shared.NormalizePage(filter.Page, filter.PageSize)
	if err := query.Order("code ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]*valuator.Valuator, len(rows))
	for i, m := range rows {
		result[i] = m.ToDomain()
	}
	return result, total, nil
}

// FindByCodes loads valuators for the given codes in one query
func (r *GormValuatorRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*valuator.Valuator, error) {
	result := make(map[string]*valuator.Valuator, len(codes))
	if len(codes) == 0 {
		return result, nil
	}

	normalized := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = valuator.NormalizeCode(c); c != "" {
			normalized = append(normalized, c)
		}
	}
	if len(normalized) == 0 {
		return result, nil
	}

	var rows []*models.ValuatorModel
	if err := r.db.WithContext(ctx).Where("code IN ?", normalized).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		result[m.Code] = m.ToDomain()
	}
	return result, nil
}

var _ valuator.ValuatorRepository = (*GormValuatorRepository)(nil)
