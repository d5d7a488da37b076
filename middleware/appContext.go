package middleware

import (
	"context"

	"dpgf-quoting-backend/token"

	"github.com/redis/go-redis/v9"
)

// AppContext bundles the request-scoped dependencies handlers share
type AppContext struct {
	PasetoMaker token.Maker
	Ctx         context.Context
	RedisClient *redis.Client
}
