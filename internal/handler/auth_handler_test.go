package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shortlink-service/constant"
	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/dto"
	"shortlink-service/internal/handler"
	"shortlink-service/internal/middleware"
)

type stubTokenExchanger struct {
	exchangeFn func(ctx context.Context, code string) (*dto.AuthResponse, error)
}

func (s *stubTokenExchanger) ExchangeToken(ctx context.Context, code string) (*dto.AuthResponse, error) {
	return s.exchangeFn(ctx, code)
}

func newAuthRouter(svc handler.TokenExchanger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewAuthHandler(svc, zap.NewNop())

	r := gin.New()
	r.Use(middleware.GlobalErrorMiddleware(zap.NewNop()))
	r.POST("/auth/callback", h.Callback)
	r.GET("/me", func(c *gin.Context) {
		c.Set(constant.RequesterEmailKey, testOwner)
		c.Next()
	}, h.Me)
	return r
}

func TestCallbackHandler(t *testing.T) {
	t.Run("exchanges authorization code for token", func(t *testing.T) {
		var gotCode string
		svc := &stubTokenExchanger{
			exchangeFn: func(_ context.Context, code string) (*dto.AuthResponse, error) {
				gotCode = code
				return &dto.AuthResponse{AccessToken: "tok-123", TokenType: "Bearer"}, nil
			},
		}
		r := newAuthRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/auth/callback", gin.H{"authorizationCode": "code-1"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "code-1", gotCode)

		env := decodeEnvelope(t, w)
		var token dto.AuthResponse
		require.NoError(t, json.Unmarshal(env.Data, &token))
		assert.Equal(t, "tok-123", token.AccessToken)
		assert.Equal(t, "Bearer", token.TokenType)
	})

	t.Run("missing authorization code is a bad request", func(t *testing.T) {
		svc := &stubTokenExchanger{}
		r := newAuthRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/auth/callback", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejected code maps to 401", func(t *testing.T) {
		svc := &stubTokenExchanger{
			exchangeFn: func(context.Context, string) (*dto.AuthResponse, error) {
				return nil, apperrors.ErrUnauthorized
			},
		}
		r := newAuthRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/auth/callback", gin.H{"authorizationCode": "bad"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMeHandler(t *testing.T) {
	t.Run("returns requester email", func(t *testing.T) {
		r := newAuthRouter(&stubTokenExchanger{})

		w := doJSON(t, r, http.MethodGet, "/me", nil)

		require.Equal(t, http.StatusOK, w.Code)
		env := decodeEnvelope(t, w)

		var me dto.MeResponse
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, testOwner, me.Email)
	})
}
