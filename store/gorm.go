package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mstgnz/funnelpay/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore reads the tables through gorm. In production it sits on Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates missing tables and columns. The admin tooling owns the schema in
// production, so this is for local and test databases.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&domain.Tenant{}, &domain.Price{}, &domain.Route{})
}

func (s *GormStore) GetTenant(ctx context.Context, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("client", id)
		}
		return nil, fmt.Errorf("failed to load client %s: %w", id, err)
	}
	return &t, nil
}

func (s *GormStore) GetPrice(ctx context.Context, id string) (*domain.Price, error) {
	var p domain.Price
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("price", id)
		}
		return nil, fmt.Errorf("failed to load price %s: %w", id, err)
	}
	return &p, nil
}

func (s *GormStore) FindActiveRoute(ctx context.Context, hostname, pathPrefix string) (*domain.Route, error) {
	var r domain.Route
	err := s.db.WithContext(ctx).
		Where("hostname = ? AND path_prefix = ? AND is_active = ?", hostname, pathPrefix, true).
		Order("id").
		Take(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("route", hostname+pathPrefix)
		}
		return nil, fmt.Errorf("failed to find route %s%s: %w", hostname, pathPrefix, err)
	}
	return &r, nil
}

func (s *GormStore) SaveTenant(ctx context.Context, t *domain.Tenant) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(t).Error
}

func (s *GormStore) SavePrice(ctx context.Context, p *domain.Price) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error
}

// SaveRoute inserts r, or updates it when r.ID is set
func (s *GormStore) SaveRoute(ctx context.Context, r *domain.Route) error {
	if r.ID == 0 {
		return s.db.WithContext(ctx).Create(r).Error
	}
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
