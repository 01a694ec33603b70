package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(models.OrderModelFromDomain(o)).Error; err != nil {
		if isDuplicateKey(err) {
			return order.ErrNumberTaken
		}
		return err
	}
	return nil
}

// Update overwrites every column of an existing order
func (r *GormOrderRepository) Update(ctx context.Context, o *order.Order) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", o.ID).
		Select("*").
		Omit("id", "sukurta").
		Updates(models.OrderModelFromDomain(o))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete deletes an order by ID
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OrderModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, order.ErrOrderNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll returns a page of orders and the total matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]*order.Order, int64, error) {
	var rows []*models.OrderModel
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := shared.NormalizePage(filter.Page, filter.PageSize)
	sortBy := ResolveSortColumn(filter.SortBy, OrderSortFields, "sukurta")
	query = query.Order(sortBy + " " + ValidateSortOrder(filter.SortOrder)).
		Order("numeris DESC").
		Offset(page.Offset()).
		Limit(page.PageSize)

	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*order.Order, len(rows))
	for i, m := range rows {
		orders[i] = m.ToDomain()
	}
	return orders, total, nil
}

// CountByEmail counts orders placed with the contact email
func (r *GormOrderRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("el_pastas = ?", email).
		Count(&count).Error
	return count, err
}

// CountByAssignee counts orders assigned to the valuator code
func (r *GormOrderRepository) CountByAssignee(ctx context.Context, code string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("priskirta = ?", code).
		Count(&count).Error
	return count, err
}

// ListForReport loads the report projection of orders created or completed
// in [from, to]
func (r *GormOrderRepository) ListForReport(ctx context.Context, from, to time.Time) ([]order.ReportRow, error) {
	from, to = from.UTC(), to.UTC()

	var rows []models.ReportRowModel
	err := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Select("id", "sukurta", "atlikta_at", "statusas", "paslauga", "turto_tipas", "priskirta", "kaina").
		Where("(sukurta >= ? AND sukurta <= ?) OR (atlikta_at >= ? AND atlikta_at <= ?)", from, to, from, to).
		Order("sukurta ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]order.ReportRow, len(rows))
	for i := range rows {
		result[i] = rows[i].ToDomain()
	}
	return result, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter order.OrderFilter) *gorm.DB {
	if filter.Email != "" {
		query = query.Where("el_pastas = ?", filter.Email)
	}
	if filter.Status != nil {
		query = query.Where("statusas = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("priskirta = ?", *filter.AssignedTo)
	}
	if filter.ServiceType != nil {
		query = query.Where("paslauga = ?", *filter.ServiceType)
	}
	if filter.From != nil {
		query = query.Where("sukurta >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("sukurta <= ?", filter.To.UTC())
	}
	return searchAny(query, filter.Search, "numeris", "vardas", "el_pastas", "adresas", "miestas")
}

var _ order.OrderRepository = (*GormOrderRepository)(nil)
