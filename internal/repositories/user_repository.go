package repositories

import (
	"context"

	"dealvalue_backend/internal/docstore"
	"dealvalue_backend/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (models.DocResponse, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) (models.DocResponse, error)
	Delete(ctx context.Context, id, rev string) (models.DocResponse, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) ([]models.User, error)

	// DeleteNonAdmins удаляет всех пользователей с ролью, отличной от admin
	DeleteNonAdmins(ctx context.Context) (int, error)
}

type UserRepositoryImpl struct {
	users collection[models.User, *models.User]
}

func NewUserRepository(store docstore.Store) UserRepository {
	return &UserRepositoryImpl{
		users: newCollection[models.User](store, models.CollectionUser, "user"),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) (models.DocResponse, error) {
	return r.users.create(ctx, user)
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.users.get(ctx, id)
}

func (r *UserRepositoryImpl) Replace(ctx context.Context, user *models.User) (models.DocResponse, error) {
	return r.users.replace(ctx, user)
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id, rev string) (models.DocResponse, error) {
	return r.users.delete(ctx, id, rev)
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context) ([]models.User, error) {
	return r.users.find(ctx)
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) ([]models.User, error) {
	return r.users.find(ctx, docstore.Eq("email", email))
}

func (r *UserRepositoryImpl) DeleteNonAdmins(ctx context.Context) (int, error) {
	users, err := r.users.find(ctx, docstore.Ne("role", string(models.UserRoleAdmin)))
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, u := range users {
		if _, err := r.users.store.Delete(ctx, u.ID, u.Rev); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
