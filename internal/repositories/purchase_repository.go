package repositories

import (
	"context"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/models"
)

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error)
	FindByID(ctx context.Context, id string) (*models.Purchase, error)
	Replace(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev string) (models.DocResponse, error)
	FindAll(ctx context.Context) ([]models.Purchase, error)
}

type PurchaseRepositoryImpl struct {
	purchases collection[models.Purchase, *models.Purchase]
}

func NewPurchaseRepository(store docstore.Store) PurchaseRepository {
	return &PurchaseRepositoryImpl{
		purchases: newCollection[models.Purchase](store, models.CollectionPurchase, "purchase"),
	}
}

func (r *PurchaseRepositoryImpl) Create(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error) {
	return r.purchases.create(ctx, purchase)
}

func (r *PurchaseRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Purchase, error) {
	return r.purchases.get(ctx, id)
}

func (r *PurchaseRepositoryImpl) Replace(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error) {
	return r.purchases.replace(ctx, purchase)
}

func (r *PurchaseRepositoryImpl) Delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	return r.purchases.delete(ctx, id, rev)
}

func (r *PurchaseRepositoryImpl) FindAll(ctx context.Context) ([]models.Purchase, error) {
	return r.purchases.find(ctx)
}
