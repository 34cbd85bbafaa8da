package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"travel_app_echo/internal/domain"
)

// Page selects a slice of a list query. Zero values mean the first page of DefaultPageSize.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the normalized page size and row offset
func (p Page) Offset() (size, offset int) {
	size = p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	number := p.Number
	if number <= 0 {
		number = 1
	}
	return size, (number - 1) * size
}

// crud holds the queries shared by listings, bookings and reviews
type crud[T any] struct {
	db       *gorm.DB
	resource string
}

func (r crud[T]) Get(ctx context.Context, id uint, preloads ...string) (*T, error) {
	var item T
	q := r.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&item, id).Error; err != nil {
		return nil, translate(err, r.resource)
	}
	return &item, nil
}

func (r crud[T]) List(ctx context.Context, page Page, scope func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	q := r.db.WithContext(ctx).Model(new(T))
	if scope != nil {
		q = scope(q)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, r.resource)
	}

	size, offset := page.Offset()
	items := make([]T, 0, size)
	if err := q.Order("id asc").Limit(size).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, translate(err, r.resource)
	}
	return items, total, nil
}

func (r crud[T]) Create(ctx context.Context, item *T) error {
	return translate(r.db.WithContext(ctx).Create(item).Error, r.resource)
}

func (r crud[T]) Save(ctx context.Context, item *T) error {
	return translate(r.db.WithContext(ctx).Save(item).Error, r.resource)
}

func (r crud[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return translate(res.Error, r.resource)
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: r.resource}
	}
	return nil
}

// translate maps gorm errors onto domain errors. It requires gorm.Config.TranslateError.
func translate(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError{Resource: resource, Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ConflictError{Resource: resource, Msg: "already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.ValidationError{Msg: resource + " references a record that does not exist", Err: err}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return domain.ValidationError{Msg: resource + " has an invalid value", Err: err}
	default:
		return err
	}
}
