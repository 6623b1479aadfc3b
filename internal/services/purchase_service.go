package services

import (
	"context"
	"time"

	"dealvalue_backend/internal/models"
	"dealvalue_backend/internal/repositories"
	"dealvalue_backend/pkg/apperrors"
)

type PurchaseService interface {
	Create(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error)
	Get(ctx context.Context, id string) (*models.Purchase, error)
	Update(ctx context.Context, id string, purchase *models.Purchase) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev string) (models.DocResponse, error)
	List(ctx context.Context) (*models.ListResponse[models.Purchase], error)
}

type purchaseService struct {
	purchases repositories.PurchaseRepository
	now       func() time.Time
}

func NewPurchaseService(purchases repositories.PurchaseRepository) PurchaseService {
	return &purchaseService{
		purchases: purchases,
		now:       time.Now,
	}
}

func (s *purchaseService) Create(ctx context.Context, purchase *models.Purchase) (models.DocResponse, error) {
	if purchase.Date == "" {
		purchase.Date = s.now().UTC().Format(time.RFC3339)
	}
	res, err := s.purchases.Create(ctx, purchase)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Purchase")
	}
	return res, nil
}

func (s *purchaseService) Get(ctx context.Context, id string) (*models.Purchase, error) {
	purchase, err := s.purchases.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Purchase")
	}
	return purchase, nil
}

func (s *purchaseService) Update(ctx context.Context, id string, purchase *models.Purchase) (models.DocResponse, error) {
	if purchase.ID != "" && purchase.ID != id {
		return models.DocResponse{}, apperrors.NewBadRequestError("Body _id does not match the path id")
	}
	purchase.ID = id

	res, err := s.purchases.Replace(ctx, purchase)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Purchase")
	}
	return res, nil
}

func (s *purchaseService) Delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	res, err := s.purchases.Delete(ctx, id, rev)
	if err != nil {
		return models.DocResponse{}, storeError(err, "Purchase")
	}
	return res, nil
}

func (s *purchaseService) List(ctx context.Context) (*models.ListResponse[models.Purchase], error) {
	purchases, err := s.purchases.FindAll(ctx)
	if err != nil {
		return nil, storeError(err, "Purchase")
	}
	return &models.ListResponse[models.Purchase]{Docs: purchases, Total: len(purchases)}, nil
}
