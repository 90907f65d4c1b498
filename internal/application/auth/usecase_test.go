package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

const (
	testSecret   = "test-secret-key-for-unit-tests"
	testPassword = "s3creta-larga"
)

func newUseCase(t *testing.T, status string) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	st := memory.NewStore()
	st.PutUser(entity.User{
		ID:           "user-1",
		StoreID:      "store-a",
		Email:        "Cajera@Tienda.co",
		PasswordHash: string(hash),
		Name:         "Cajera",
		Role:         entity.RoleCashier,
		Status:       status,
	})
	uc := auth.NewAuthUseCase(st, auth.JWTConfig{
		Secret: testSecret, ExpMinutes: 15, Issuer: "stock-ledger-test", RefreshTTL: time.Hour,
	}, nil)
	return uc, st
}

func login(t *testing.T, uc *auth.AuthUseCase) *dto.TokenResponse {
	t.Helper()
	out, err := uc.Login(context.Background(), dto.LoginRequest{Email: "cajera@tienda.co", Password: testPassword})
	require.NoError(t, err)
	return out
}

func TestLogin_EmiteTokens(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	out := login(t, uc)

	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, 900, out.ExpiresIn)

	claims, err := pkgjwt.Parse(testSecret, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "store-a", claims.StoreID)
	assert.Equal(t, entity.RoleCashier, claims.Role)
}

func TestLogin_Rechazos(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "cajera@tienda.co", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@tienda.co", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	inactive, _ := newUseCase(t, entity.UserStatusInactive)
	_, err = inactive.Login(context.Background(), dto.LoginRequest{Email: "cajera@tienda.co", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestConsumeRefreshToken_UnSoloUso(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	first := login(t, uc)

	second, err := uc.ConsumeRefreshToken(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, "user-1", second.User.UserID)

	_, err = uc.ConsumeRefreshToken(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken, "reusar un token rotado falla")

	third, err := uc.ConsumeRefreshToken(context.Background(), second.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, third.RefreshToken)
}

func TestConsumeRefreshToken_CarreraConcurrente(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	tok := login(t, uc).RefreshToken

	const n = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := uc.ConsumeRefreshToken(context.Background(), tok); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, 1, ok)
}

func TestConsumeRefreshToken_Expirado(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	tok := login(t, uc).RefreshToken

	uc.WithClock(func() time.Time { return time.Now().Add(2 * time.Hour) })
	_, err := uc.ConsumeRefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestConsumeRefreshToken_Desconocido(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	_, err := uc.ConsumeRefreshToken(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = uc.ConsumeRefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestLogout_RevocaSinSucesor(t *testing.T) {
	uc, _ := newUseCase(t, entity.UserStatusActive)
	tok := login(t, uc).RefreshToken

	require.NoError(t, uc.Logout(context.Background(), tok))
	_, err := uc.ConsumeRefreshToken(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
	assert.ErrorIs(t, uc.Logout(context.Background(), tok), domain.ErrInvalidToken)
}

func TestHashToken_Determinista(t *testing.T) {
	assert.Equal(t, auth.HashToken("abc"), auth.HashToken("abc"))
	assert.NotEqual(t, auth.HashToken("abc"), auth.HashToken("abd"))
	assert.Len(t, auth.HashToken("abc"), 64)
}

func TestNewAdmin(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	u, err := auth.NewAdmin(" Admin@Tienda.co ", "cambiar-ya", now)
	require.NoError(t, err)
	assert.Equal(t, "admin@tienda.co", u.Email)
	assert.Equal(t, entity.RoleAdmin, u.Role)
	assert.Empty(t, u.StoreID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("cambiar-ya")))

	_, err = auth.NewAdmin("admin@tienda.co", "corta", now)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
