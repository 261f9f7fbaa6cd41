package utils

import (
	"context"
	"strings"

	"equipment-system/pkg/contextkeys"
	apperrors "equipment-system/pkg/errors"
)

// SystemActor is recorded when nobody is known to have performed an action.
const SystemActor = "System"

func GetUserIDFromCtx(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	if !ok || userID == "" {
		return "", apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// Actor picks the first non-blank explicit value, then the authenticated user, then SystemActor.
func Actor(ctx context.Context, explicit ...string) string {
	for _, v := range explicit {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	if userID, err := GetUserIDFromCtx(ctx); err == nil {
		return userID
	}
	return SystemActor
}
