// Package server provides the HTTP API of the payment verifier.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hal9000y/payment-verifier/internal/verify"
)

type verifySvc interface {
	VerifyAgainstInbox(ctx context.Context, ev verify.Evidence) (verify.Result, error)
}

type oauthToken interface {
	OAuthToken() (*oauth2.Token, error)
}

// Server exposes verification over HTTP.
type Server struct {
	echo     *echo.Echo
	verifier verifySvc
	token    oauthToken
	logger   *zap.Logger
	appName  string
}

// New creates the HTTP server. authHandler drives the OAuth browser
// flow and is mounted at /oauth.
func New(verifier verifySvc, token oauthToken, authHandler http.Handler, logger *zap.Logger, appName string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		verifier: verifier,
		token:    token,
		logger:   logger,
		appName:  appName,
	}

	e.GET("/", s.handleStatus)
	e.GET("/health", s.handleHealth)
	e.POST("/verify", s.handleVerify)
	e.Any("/oauth", echo.WrapHandler(authHandler))

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// VerifyRequest carries interactively submitted claim fields.
type VerifyRequest struct {
	UserHint string   `json:"user_hint" form:"user_hint" query:"user_hint"`
	Amount   *float64 `json:"amount" form:"amount" query:"amount"`
	TxID     string   `json:"tx_id" form:"tx_id" query:"tx_id"`
}

// StatusResponse is the response body for GET /.
type StatusResponse struct {
	AppName     string `json:"app_name"`
	GmailStatus string `json:"gmail_status"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleStatus(c echo.Context) error {
	status := "not connected"
	if _, err := s.token.OAuthToken(); err == nil {
		status = "connected"
	}

	return c.JSON(http.StatusOK, StatusResponse{
		AppName:     s.appName,
		GmailStatus: status,
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleVerify builds Evidence from the submitted fields and runs the
// inbox scan. An infrastructure failure maps to 502, never to a
// REFUSER result.
func (s *Server) handleVerify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid verify request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ev := verify.FromClaim(req.UserHint, req.Amount, req.TxID)

	result, err := s.verifier.VerifyAgainstInbox(c.Request().Context(), ev)
	if err != nil {
		s.logger.Error("verification failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "verification could not be completed")
	}

	return c.JSON(http.StatusOK, result)
}
