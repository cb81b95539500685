package service

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/Miraines/MoonyAndStarry/learning-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/learning-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxAvatarBytes = 2 << 20

// GetUserInfo отдаёт снимок из кэша сессий, хранилище не трогается.
func (a *authService) GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.sessions.Get(ctx, userID.String())
	switch {
	case customErrors.IsSessionNotFound(err):
		return model.User{}, customErrors.NewNotFound("user not found")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetUserInfo")
	}
	return user, nil
}

func (a *authService) UpdateUserInfo(ctx context.Context, userID uuid.UUID, in dto.UpdateUserInfoDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}

	return a.saveUser(ctx, user, "UpdateUserInfo")
}

func (a *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, in dto.UpdatePasswordDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument("please enter old and new password")
	}

	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}
	if user.PasswordHash == "" {
		return model.User{}, customErrors.NewInvalidArgument("invalid user")
	}

	ok, err := a.checkPassword(in.OldPassword, user.PasswordHash)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdatePassword")
	}
	if !ok {
		return model.User{}, customErrors.NewInvalidArgument("invalid old password")
	}

	hash, err := a.hashPassword(in.NewPassword)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdatePassword")
	}
	user.PasswordHash = hash

	return a.saveUser(ctx, user, "UpdatePassword")
}

func (a *authService) UpdateAvatar(ctx context.Context, userID uuid.UUID, in dto.UpdateAvatarDTO) (model.User, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}
	if a.avatars == nil {
		return model.User{}, customErrors.WrapInternal(errors.New("avatar storage is not configured"), "UpdateAvatar")
	}

	data, contentType, err := decodeAvatar(in.Avatar)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.loadUser(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	avatar, err := a.avatars.Upload(ctx, user.ID, data, contentType)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UploadAvatar")
	}
	old := user.Avatar.PublicID
	user.Avatar = avatar

	if err := a.storeUser(ctx, user, "UpdateAvatar"); err != nil {
		// пользователь не сохранён: старый объект ещё нужен, убираем новый
		a.removeAvatar(ctx, avatar.PublicID)
		return model.User{}, err
	}
	a.removeAvatar(ctx, old)

	if err := a.sessions.Set(ctx, user); err != nil {
		return model.User{}, customErrors.WrapInternal(err, "UpdateAvatar: session refresh")
	}
	return user, nil
}

func (a *authService) removeAvatar(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	if err := a.avatars.Delete(ctx, publicID); err != nil {
		a.log.Warn("avatar not removed", zap.String("public_id", publicID), zap.Error(err))
	}
}

func (a *authService) loadUser(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	switch {
	case errors.Is(err, customErrors.ErrNotFound):
		return model.User{}, customErrors.NewNotFound("user not found")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "GetUserByID")
	}
	return user, nil
}

// saveUser пишет в хранилище, затем обновляет кэш. Это два независимых вызова:
// если второй упал, кэш отстаёт до следующей мутации или входа.
func (a *authService) saveUser(ctx context.Context, user model.User, op string) (model.User, error) {
	if err := a.storeUser(ctx, user, op); err != nil {
		return model.User{}, err
	}
	if err := a.sessions.Set(ctx, user); err != nil {
		return model.User{}, customErrors.WrapInternal(err, op+": session refresh")
	}
	return user, nil
}

func (a *authService) storeUser(ctx context.Context, user model.User, op string) error {
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		if customErrors.IsNotFound(err) {
			return customErrors.NewNotFound("user not found")
		}
		return customErrors.WrapInternal(err, op)
	}
	return nil
}

// decodeAvatar принимает data URI или «голый» base64.
func decodeAvatar(raw string) ([]byte, string, error) {
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		i := strings.Index(raw, ";base64,")
		if i < 0 {
			return nil, "", customErrors.NewInvalidArgument("avatar must be base64 encoded")
		}
		payload = raw[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", customErrors.NewInvalidArgument("avatar must be base64 encoded")
	}
	if len(data) == 0 {
		return nil, "", customErrors.NewInvalidArgument("avatar is empty")
	}
	if len(data) > maxAvatarBytes {
		return nil, "", customErrors.NewInvalidArgument("avatar is too large")
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", customErrors.NewInvalidArgument("avatar must be an image")
	}
	return data, contentType, nil
}
