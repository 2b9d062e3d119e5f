package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nurpe/licitabrasil/internal/model"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	if _, err := repo.GetByCNPJ(ctx, "11222333000181"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	user := &model.User{CNPJ: "11222333000181", PasswordHash: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == uuid.Nil || user.CreatedAt.IsZero() {
		t.Fatalf("create should fill id and created_at: %+v", user)
	}

	got, err := repo.GetByCNPJ(ctx, "11222333000181")
	if err != nil || got.PasswordHash != "hash" || got.ID != user.ID {
		t.Fatalf("unexpected user: %+v %v", got, err)
	}

	if err := repo.Create(ctx, &model.User{CNPJ: "11222333000181"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
