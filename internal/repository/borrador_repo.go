package repository

import (
	"context"

	"solvendo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BorradorRepository interface {
	Create(ctx context.Context, b *model.Borrador) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Borrador, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]model.Borrador, error)
}

type borradorRepo struct{ db *gorm.DB }

func NewBorradorRepository(db *gorm.DB) BorradorRepository { return &borradorRepo{db: db} }

func (r *borradorRepo) Create(ctx context.Context, b *model.Borrador) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *borradorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Borrador, error) {
	var b model.Borrador
	err := r.db.WithContext(ctx).Preload("Items").First(&b, id).Error
	return &b, err
}

func (r *borradorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Items go first — no ON DELETE CASCADE on the FK.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("borrador_id = ?", id).Delete(&model.BorradorItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Borrador{}, id).Error
	})
}

func (r *borradorRepo) List(ctx context.Context) ([]model.Borrador, error) {
	var borradores []model.Borrador
	err := r.db.WithContext(ctx).Preload("Items").
		Order("created_at DESC").
		Find(&borradores).Error
	return borradores, err
}
