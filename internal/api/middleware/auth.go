package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-DemoBookingService/internal/api/handlers"
)

type contextKey string

const (
	// UserIDHeader заголовок с ID оператора, выставляется API gateway
	UserIDHeader = "X-User-ID"

	userIDKey contextKey = "userID"

	msgMissingUserID = "identifiant opérateur manquant ou invalide"
)

// Auth извлекает ID оператора из заголовка X-User-ID.
// Аутентификация выполняется на gateway, здесь только проверяется наличие ID.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(UserIDHeader), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID оператора, сохраненный Auth
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// WithUserID кладет ID оператора в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
