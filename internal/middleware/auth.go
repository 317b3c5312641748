package middleware

import (
	"context"
	"strings"

	"github.com/intranet-lab/backend/internal/model"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/jwt"
	"github.com/intranet-lab/backend/pkg/router"
	"github.com/intranet-lab/backend/pkg/xcontext"
)

type AuthVerifier struct {
	useAccessToken bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if !a.useAccessToken {
			return ctx, nil
		}

		token := getAccessToken(ctx)
		if token == "" {
			return ctx, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		cfg := xcontext.Configs(ctx)
		engine := jwt.NewEngine[model.AccessToken](cfg.Auth.TokenSecret, cfg.Auth.TokenExpiration)
		accessToken, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return ctx, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, accessToken.ID), nil
	}
}

// getAccessToken reads the Authorization header, falling back to the token
// query parameter which browser websocket clients cannot avoid.
func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)
	if req == nil {
		return ""
	}

	authorization := req.Header.Get("Authorization")
	if auth, token, found := strings.Cut(authorization, " "); found && auth == "Bearer" {
		return token
	}

	return req.URL.Query().Get("token")
}
