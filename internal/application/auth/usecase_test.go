package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/auth"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/application/dto"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/domain/entity"
	"github.com/Alfredveve/GestionSTOCK-VEVE-sub000/internal/testutil"
	pkgjwt "github.com/Alfredveve/GestionSTOCK-VEVE-sub000/pkg/jwt"
)

var testCfg = auth.JWTConfig{Secret: "secret-de-test", ExpMinutes: 60, Issuer: "gestionstock-test"}

func newAuthUC() (*auth.AuthUseCase, *testutil.UserRepo) {
	userRepo := testutil.NewUserRepo()
	return auth.NewAuthUseCase(userRepo, testCfg), userRepo
}

func TestRegisterUser_HasheaYAsignaRolPorDefecto(t *testing.T) {
	uc, userRepo := newAuthUC()

	resp, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "ana@tienda.com",
		Password: "clave-segura",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleVendedor, resp.Role, "sin rol explícito, vendedor")
	assert.Equal(t, "active", resp.Status)

	stored, err := userRepo.GetByID(resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "clave-segura", stored.PasswordHash, "la clave jamás se guarda en plano")
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "x"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "y"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin_TokenConRol(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "admin@tienda.com",
		Password: "clave-admin",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := uc.Login(dto.LoginRequest{Email: "admin@tienda.com", Password: "clave-admin"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	userID, role, err := pkgjwt.Parse(testCfg.Secret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newAuthUC()

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "correcta"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "ana@tienda.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(dto.LoginRequest{Email: "nadie@tienda.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	uc, userRepo := newAuthUC()

	resp, err := uc.RegisterUser(dto.RegisterRequest{Email: "ana@tienda.com", Password: "clave"})
	require.NoError(t, err)

	stored, _ := userRepo.GetByID(resp.ID)
	stored.Status = "suspended"
	require.NoError(t, userRepo.Update(stored))

	_, err = uc.Login(dto.LoginRequest{Email: "ana@tienda.com", Password: "clave"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
