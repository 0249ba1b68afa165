package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const invalidCredentialsMessage = "Invalid credentials"

// Service authenticates callers and manages their tokens.
type Service interface {
	Authenticate(ctx context.Context, email, password string) (pkgauth.Identity, error)
	IssueTokens(ctx context.Context, id pkgauth.Identity) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type userReader interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type passwordVerifier interface {
	Verify(password, encoded string) (bool, error)
}

// SessionManager issues and rotates refresh tokens bound to an access session.
type SessionManager interface {
	Generate(ctx context.Context, userID uint, accessID string) (string, error)
	Rotate(ctx context.Context, userID uint, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager may be nil, in which case no refresh tokens are issued.
type ServiceParams struct {
	UserRepo       userReader
	Verifier       passwordVerifier
	SessionManager SessionManager
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	users    userReader
	verifier passwordVerifier
	session  SessionManager
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("password verifier is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:    params.UserRepo,
		verifier: params.Verifier,
		session:  params.SessionManager,
		jwtCfg:   params.JWTConfig,
		now:      now,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (pkgauth.Identity, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return pkgauth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgauth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return pkgauth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	valid, err := s.verifier.Verify(password, user.PasswordHash)
	if err != nil {
		return pkgauth.Identity{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgauth.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return identityFromUser(user), nil
}

func (s *service) IssueTokens(ctx context.Context, id pkgauth.Identity) (*TokenPair, error) {
	if id.UserID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	accessID := session.NewAccessID()
	token, err := s.mint(id, accessID)
	if err != nil {
		return nil, err
	}

	pair := &TokenPair{Token: token}
	if s.session == nil {
		return pair, nil
	}
	refresh, err := s.session.Generate(ctx, id.UserID, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
	}
	pair.RefreshToken = refresh
	return pair, nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if s.session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions unavailable")
	}

	claims, err := s.parseSessionToken(accessToken)
	if err != nil {
		return nil, err
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.UserID, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	// Roles may have changed since the original login.
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	token, err := s.mint(identityFromUser(user), newAccessID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Token: token, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	if s.session == nil {
		return nil
	}
	claims, err := s.parseSessionToken(accessToken)
	if err != nil {
		return err
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) parseSessionToken(accessToken string) (*pkgauth.AccessTokenClaims, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	return claims, nil
}

func (s *service) mint(id pkgauth.Identity, accessID string) (string, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now().UTC(), pkgauth.AccessTokenPayload{
		UserID: id.UserID,
		Email:  id.Email,
		Roles:  id.Roles,
		JTI:    accessID,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return token, nil
}

// identityFromUser always includes ROLE_USER.
func identityFromUser(user *models.User) pkgauth.Identity {
	roles := append(dbtypes.RoleSet{enums.RoleUser}, user.Roles...).Normalize()
	return pkgauth.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  []enums.Role(roles),
	}
}
