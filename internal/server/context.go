// internal/server/context.go
package server

import (
	"context"
)

type contextKey string

const contextKeyUser contextKey = "user"

func currentUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(contextKeyUser).(string)
	return user, ok
}
