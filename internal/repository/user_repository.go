package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Toan888/SpaceHub-BE/internal/domain/entity"
	"github.com/Toan888/SpaceHub-BE/internal/pkg/apperror"
	"github.com/Toan888/SpaceHub-BE/internal/repository/common"
)

// UserRepository читает пользователей. Регистрация и профили живут в отдельном сервисе.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return common.GetByID[entity.User](ctx, common.Conn(ctx, r.db), "users_public", id, apperror.ErrUserNotFound)
}

// ListAdminIDs возвращает получателей уведомлений для администраторов.
func (r *UserRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := common.Conn(ctx, r.db).SelectContext(ctx, &ids,
		`SELECT id FROM users WHERE role = $1 ORDER BY id`, entity.RoleAdmin,
	); err != nil {
		return nil, fmt.Errorf("user repository: list admins %w", err)
	}
	return ids, nil
}

// SpaceRepository читает помещения для уведомлений и выплат.
type SpaceRepository struct {
	db *sqlx.DB
}

func NewSpaceRepository(db *sqlx.DB) *SpaceRepository {
	return &SpaceRepository{db: db}
}

func (r *SpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Space, error) {
	return common.GetByID[entity.Space](ctx, common.Conn(ctx, r.db), "spaces_public", id, apperror.ErrSpaceNotFound)
}
