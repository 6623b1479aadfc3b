package repositories

import (
	"context"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/models"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) (models.DocResponse, error)
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	Replace(ctx context.Context, plan *models.Plan) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev string) (models.DocResponse, error)
	FindAll(ctx context.Context) ([]models.Plan, error)
	FindByPartner(ctx context.Context, partnerID string) ([]models.Plan, error)
}

type PlanRepositoryImpl struct {
	plans collection[models.Plan, *models.Plan]
}

func NewPlanRepository(store docstore.Store) PlanRepository {
	return &PlanRepositoryImpl{
		plans: newCollection[models.Plan](store, models.CollectionPlan, "plan"),
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *models.Plan) (models.DocResponse, error) {
	return r.plans.create(ctx, plan)
}

func (r *PlanRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	return r.plans.get(ctx, id)
}

func (r *PlanRepositoryImpl) Replace(ctx context.Context, plan *models.Plan) (models.DocResponse, error) {
	return r.plans.replace(ctx, plan)
}

func (r *PlanRepositoryImpl) Delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	return r.plans.delete(ctx, id, rev)
}

func (r *PlanRepositoryImpl) FindAll(ctx context.Context) ([]models.Plan, error) {
	return r.plans.find(ctx)
}

func (r *PlanRepositoryImpl) FindByPartner(ctx context.Context, partnerID string) ([]models.Plan, error) {
	return r.plans.find(ctx, docstore.Eq("partnerId", partnerID))
}
