package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/licitabrasil/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO users (id, cnpj, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, user.ID, user.CNPJ, user.PasswordHash, user.CreatedAt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "duplicate key") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByCNPJ(ctx context.Context, cnpj string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, cnpj, password_hash, created_at
		FROM users
		WHERE cnpj = ?
		LIMIT 1
	`, cnpj).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &user, nil
}
