package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/nurpe/licitabrasil/internal/model"
	"github.com/nurpe/licitabrasil/internal/repository"
)

const DefaultHashCost = 12

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByCNPJ(ctx context.Context, cnpj string) (*model.User, error)
}

type TokenIssuer interface {
	Issue(cnpj string) (string, error)
}

type AuthService struct {
	users    UserRepository
	tokens   TokenIssuer
	hashCost int
}

type AuthResult struct {
	Token string
	CNPJ  string
}

func NewAuthService(users UserRepository, tokens TokenIssuer, hashCost int) *AuthService {
	if hashCost <= 0 {
		hashCost = DefaultHashCost
	}
	return &AuthService{users: users, tokens: tokens, hashCost: hashCost}
}

func (s *AuthService) Register(ctx context.Context, rawCNPJ, password string) (*AuthResult, error) {
	if rawCNPJ == "" || password == "" {
		return nil, fmt.Errorf("%w: CNPJ e senha são obrigatórios.", ErrInvalidInput)
	}
	cnpj := CleanCNPJ(rawCNPJ)
	if !ValidCNPJ(cnpj) {
		return nil, fmt.Errorf("%w: CNPJ inválido.", ErrInvalidInput)
	}
	if err := checkPasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Create(ctx, &model.User{CNPJ: cnpj, PasswordHash: string(hash)}); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: CNPJ já cadastrado. Faça login.", ErrConflict)
		}
		return nil, err
	}
	return s.issue(cnpj)
}

func (s *AuthService) Login(ctx context.Context, rawCNPJ, password string) (*AuthResult, error) {
	if rawCNPJ == "" || password == "" {
		return nil, fmt.Errorf("%w: CNPJ e senha são obrigatórios.", ErrInvalidInput)
	}
	cnpj := CleanCNPJ(rawCNPJ)

	user, err := s.users.GetByCNPJ(ctx, cnpj)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: CNPJ não encontrado. Faça o cadastro.", ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: Senha incorreta.", ErrUnauthorized)
	}
	return s.issue(cnpj)
}

func (s *AuthService) issue(cnpj string) (*AuthResult, error) {
	token, err := s.tokens.Issue(cnpj)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, CNPJ: cnpj}, nil
}

func checkPasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: Senha deve ter no mínimo 8 caracteres.", ErrInvalidInput)
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return fmt.Errorf("%w: Senha muito fraca. Use letras maiúsculas, minúsculas, números e caracteres especiais.", ErrInvalidInput)
	}
	return nil
}
