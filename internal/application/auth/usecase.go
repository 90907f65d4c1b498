package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blake2b"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
	RefreshTTL time.Duration
}

// TxRunner ejecuta fn en una transacción con los repositorios de autenticación.
type TxRunner interface {
	RunAuth(ctx context.Context, fn func(ctx context.Context, uow repository.AuthUnitOfWork) error) error
}

// AuthUseCase casos de uso de autenticación: login, rotación de refresh token y logout.
type AuthUseCase struct {
	tx     TxRunner
	jwtCfg JWTConfig
	log    *logger.Logger
	now    func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx TxRunner, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if jwtCfg.RefreshTTL <= 0 {
		jwtCfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &AuthUseCase{tx: tx, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// Login verifica email/password y emite access token + refresh token nuevo.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	var (
		user    *entity.User
		refresh string
	)
	err := uc.tx.RunAuth(ctx, func(ctx context.Context, uow repository.AuthUnitOfWork) error {
		var err error
		user, err = uow.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUnauthorized
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
			return domain.ErrUnauthorized
		}
		if user.Status != entity.UserStatusActive {
			return domain.ErrForbidden
		}
		var tok *entity.RefreshToken
		refresh, tok, err = uc.newRefreshToken(user.ID)
		if err != nil {
			return err
		}
		return uow.Tokens.Create(ctx, tok)
	})
	if err != nil {
		return nil, err
	}
	return uc.issue(user, refresh)
}

// ConsumeRefreshToken usa un refresh token exactamente una vez: en la misma transacción lo revoca
// enlazándolo a su sucesor y crea el sucesor. Reutilizar un token ya rotado siempre falla.
func (uc *AuthUseCase) ConsumeRefreshToken(ctx context.Context, value string) (*dto.TokenResponse, error) {
	if value == "" {
		return nil, domain.ErrInvalidToken
	}
	hash := HashToken(value)
	now := uc.now()
	var (
		user    *entity.User
		refresh string
	)
	err := uc.tx.RunAuth(ctx, func(ctx context.Context, uow repository.AuthUnitOfWork) error {
		old, err := uow.Tokens.GetByHashForUpdate(ctx, hash)
		if err != nil {
			return err
		}
		if old == nil {
			return domain.ErrInvalidToken
		}
		if state := old.State(now); state != entity.TokenActive {
			if state == entity.TokenRotated {
				uc.log.Warn().Str("user_id", old.UserID).Str("token_id", old.ID).Msg("reuso de refresh token ya rotado")
			}
			return fmt.Errorf("%w: token %s", domain.ErrInvalidToken, state)
		}
		user, err = uow.Users.GetByID(ctx, old.UserID)
		if err != nil {
			return err
		}
		if user == nil || user.Status != entity.UserStatusActive {
			return domain.ErrInvalidToken
		}

		var next *entity.RefreshToken
		refresh, next, err = uc.newRefreshToken(user.ID)
		if err != nil {
			return err
		}
		if err := uow.Tokens.Create(ctx, next); err != nil {
			return err
		}
		return uow.Tokens.Revoke(ctx, old.ID, &next.ID, now)
	})
	if err != nil {
		return nil, err
	}
	return uc.issue(user, refresh)
}

// Logout revoca un refresh token activo sin sucesor.
func (uc *AuthUseCase) Logout(ctx context.Context, value string) error {
	if value == "" {
		return domain.ErrInvalidToken
	}
	hash := HashToken(value)
	now := uc.now()
	return uc.tx.RunAuth(ctx, func(ctx context.Context, uow repository.AuthUnitOfWork) error {
		tok, err := uow.Tokens.GetByHashForUpdate(ctx, hash)
		if err != nil {
			return err
		}
		if tok == nil || tok.State(now) != entity.TokenActive {
			return domain.ErrInvalidToken
		}
		return uow.Tokens.Revoke(ctx, tok.ID, nil, now)
	})
}

// HashToken hash blake2b-256 (hex) del valor entregado al cliente; es lo único que se persiste.
func HashToken(value string) string {
	sum := blake2b.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func (uc *AuthUseCase) newRefreshToken(userID string) (string, *entity.RefreshToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("generar refresh token: %w", err)
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	now := uc.now()
	return value, &entity.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: HashToken(value),
		ExpiresAt: now.Add(uc.jwtCfg.RefreshTTL),
		CreatedAt: now,
	}, nil
}

func (uc *AuthUseCase) issue(user *entity.User, refresh string) (*dto.TokenResponse, error) {
	access, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.StoreID, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    uc.jwtCfg.ExpMinutes * 60,
		User: dto.UserContext{
			UserID:  user.ID,
			StoreID: user.StoreID,
			Email:   user.Email,
			Name:    user.Name,
			Role:    user.Role,
		},
	}, nil
}
