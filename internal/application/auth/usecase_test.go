package auth_test

import (
	"context"
	"testing"

	"github.com/jhoicas/inventario-bodegas/internal/application/auth"
	"github.com/jhoicas/inventario-bodegas/internal/application/dto"
	"github.com/jhoicas/inventario-bodegas/internal/domain"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
	"github.com/jhoicas/inventario-bodegas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-bodegas/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-key"

func setup(t *testing.T) *auth.AuthUseCase {
	t.Helper()
	ctx := context.Background()
	users := memory.NewStore().Repos().Users
	hash, err := auth.HashPassword("juan123")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", Username: "Operador_Juan", PasswordHash: hash,
		FullName: "Juan Pérez", Role: entity.RoleOperador, WarehouseID: "w1", IsActive: true}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u2", Username: "Inactivo", PasswordHash: hash, IsActive: false}))
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "test"})
}

func TestLogin_OK(t *testing.T) {
	uc := setup(t)
	resp, err := uc.Login(context.Background(), dto.LoginRequest{Username: "Operador_Juan", Password: "juan123"})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", resp.User.FullName)

	session, err := jwt.Parse(secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, entity.RoleOperador, session.Role)
	assert.Equal(t, "w1", session.WarehouseID)
}

func TestLogin_Errores(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "Operador_Juan", Password: "mal"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "juan123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "Inactivo", Password: "juan123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
