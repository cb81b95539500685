package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/mail"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/media"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/social"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/config"
	lg "github.com/Miraines/MoonyAndStarry/learning-service/internal/infra/log"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.ActivationToken, error)
	Activate(context.Context, dto.ActivateDTO) error
	Login(context.Context, dto.LoginDTO) (model.User, model.TokenPair, error)
	SocialAuth(context.Context, dto.SocialAuthDTO) (model.User, model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Authenticate(ctx context.Context, accessToken string) (model.User, error)

	GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error)
	UpdateUserInfo(ctx context.Context, userID uuid.UUID, in dto.UpdateUserInfoDTO) (model.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, in dto.UpdatePasswordDTO) (model.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, in dto.UpdateAvatarDTO) (model.User, error)
}

// Deps collects the collaborators of the account service.
// Avatars and Verifier are optional.
type Deps struct {
	Users      repo.UserRepo
	Sessions   repo.SessionCache
	Tokens     jwt.JWTUtil
	Activation jwt.ActivationCodec
	Mailer     mail.Sender
	Avatars    media.AvatarStore
	Verifier   social.IdentityVerifier
	Config     *config.Config
	Validate   *validator.Validate
	Log        *zap.Logger
}

type authService struct {
	userRepo   repo.UserRepo
	sessions   repo.SessionCache
	jwtUtil    jwt.JWTUtil
	activation jwt.ActivationCodec
	mailer     mail.Sender
	avatars    media.AvatarStore
	verifier   social.IdentityVerifier
	cfg        *config.Config
	v          *validator.Validate
	log        *zap.Logger
	now        func() time.Time
}

func New(d Deps) Service {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo:   d.Users,
		sessions:   d.Sessions,
		jwtUtil:    d.Tokens,
		activation: d.Activation,
		mailer:     d.Mailer,
		avatars:    d.Avatars,
		verifier:   d.Verifier,
		cfg:        d.Config,
		v:          d.Validate,
		log:        log,
		now:        time.Now,
	}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.ActivationToken, error) {
	if err := a.v.Struct(in); err != nil {
		return model.ActivationToken{}, customErrors.NewInvalidArgument(err.Error())
	}
	email := normalizeEmail(in.Email)

	if err := a.ensureEmailFree(ctx, email); err != nil {
		return model.ActivationToken{}, err
	}

	passwordHash, err := a.hashPassword(in.Password)
	if err != nil {
		return model.ActivationToken{}, customErrors.WrapInternal(err, "Register")
	}

	token, err := a.activation.Issue(model.PendingRegistration{
		Name:         in.Name,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return model.ActivationToken{}, customErrors.WrapInternal(err, "IssueActivation")
	}

	err = a.mailer.Send(ctx, mail.Message{
		To:       email,
		Subject:  "Activate your account",
		Template: mail.TemplateActivation,
		Data: map[string]any{
			"user":           map[string]any{"name": in.Name},
			"activationCode": token.ActivationCode,
		},
	})
	if err != nil {
		a.log.Warn("activation mail failed", lg.Email(email), zap.Error(err))
		return model.ActivationToken{}, customErrors.NewInvalidArgument("could not send activation email")
	}

	a.log.Info("registration pending", lg.Email(email))
	return token, nil
}

func (a *authService) Activate(ctx context.Context, in dto.ActivateDTO) error {
	if err := a.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	pending, err := a.activation.Verify(in.ActivationToken, in.ActivationCode)
	if err != nil {
		return err
	}

	// два запроса с одним токеном могут пройти проверку одновременно,
	// второй упрётся в уникальный индекс по email
	if err := a.ensureEmailFree(ctx, pending.Email); err != nil {
		return err
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         model.RoleUser,
		IsVerified:   true,
	}
	if _, err := a.userRepo.CreateUser(ctx, user); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return customErrors.NewAlreadyExists("email already exists")
		}
		return customErrors.WrapInternal(err, "Activate")
	}

	a.log.Info("user activated", lg.Email(user.Email), zap.String("user_id", user.ID.String()))
	return nil
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.User, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.checkPassword(in.Password, user.PasswordHash)
	if err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.startSession(ctx, user)
}

func (a *authService) SocialAuth(ctx context.Context, in dto.SocialAuthDTO) (model.User, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}
	email := normalizeEmail(in.Email)

	if a.verifier != nil {
		if in.IDToken == "" {
			return model.User{}, model.TokenPair{}, customErrors.NewInvalidArgument("id_token is required")
		}
		identity, err := a.verifier.Verify(ctx, in.IDToken)
		if err != nil {
			a.log.Warn("social id_token rejected", zap.Error(err))
			return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
		}
		if !strings.EqualFold(identity.Email, email) {
			return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
		}
	}

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, customErrors.ErrNotFound):
		// пароль случайный: вход по паролю для таких аккаунтов недоступен до его смены
		passHash, hashErr := a.hashPassword(uuid.NewString())
		if hashErr != nil {
			return model.User{}, model.TokenPair{}, customErrors.WrapInternal(hashErr, "SocialAuth")
		}
		user = model.User{
			ID:           uuid.New(),
			Name:         in.Name,
			Email:        email,
			PasswordHash: passHash,
			Role:         model.RoleUser,
			IsVerified:   true,
			Avatar:       model.Avatar{URL: in.Avatar},
		}
		_, err := a.userRepo.CreateUser(ctx, user)
		switch {
		case err == nil:
			a.log.Info("social user created", lg.Email(email))
		case customErrors.IsAlreadyExists(err):
			// параллельный первый вход успел создать аккаунт
			user, err = a.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "SocialAuth")
			}
		default:
			return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "CreateUser")
		}
	default:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "SocialAuth")
	}

	return a.startSession(ctx, user)
}

func (a *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.sessions.Del(ctx, userID.String()); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	return nil
}

func (a *authService) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	if refreshToken == "" {
		return model.TokenPair{}, customErrors.ErrRefreshInvalid
	}
	claims, err := a.jwtUtil.ValidateRefreshToken(refreshToken)
	if err != nil {
		return model.TokenPair{}, customErrors.ErrRefreshInvalid
	}

	user, err := a.sessions.Get(ctx, claims.UserID)
	switch {
	case customErrors.IsSessionNotFound(err):
		return model.TokenPair{}, customErrors.ErrSessionExpired
	case err != nil:
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	// прежний refresh-токен не отзывается и живёт до своего exp
	return a.issueTokens(user.ID)
}

func (a *authService) Authenticate(ctx context.Context, accessToken string) (model.User, error) {
	if accessToken == "" {
		return model.User{}, customErrors.ErrMissingToken
	}
	claims, err := a.jwtUtil.ValidateAccessToken(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}

	user, err := a.sessions.Get(ctx, claims.UserID)
	switch {
	case customErrors.IsSessionNotFound(err):
		return model.User{}, err
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "Authenticate")
	}
	return user, nil
}

func (a *authService) startSession(ctx context.Context, user model.User) (model.User, model.TokenPair, error) {
	if err := a.sessions.Set(ctx, user); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "SessionSet")
	}
	pair, err := a.issueTokens(user.ID)
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	a.log.Info("session started", lg.Email(user.Email))
	return user, pair, nil
}

func (a *authService) issueTokens(uid uuid.UUID) (model.TokenPair, error) {
	at, atExp, err := a.jwtUtil.GenerateAccessToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateAccessToken")
	}
	rt, rtExp, err := a.jwtUtil.GenerateRefreshToken(uid)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GenerateRefreshToken")
	}

	now := a.now()
	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(now),
		RefreshTTL:   rtExp.Sub(now),
		UserId:       uid,
	}, nil
}

func (a *authService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return customErrors.NewAlreadyExists("email already exists")
	case errors.Is(err, customErrors.ErrNotFound):
		return nil
	default:
		return customErrors.WrapInternal(err, "GetUserByEmail")
	}
}

func (a *authService) hashPassword(password string) (string, error) {
	return argon2id.CreateHash(password+a.cfg.PasswordPepper, argonParams)
}

func (a *authService) checkPassword(password, hash string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	return argon2id.ComparePasswordAndHash(password+a.cfg.PasswordPepper, hash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
