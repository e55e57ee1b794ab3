// Package api is the HTTP face of the server: the single POST endpoint
// the osu! client talks to with framed packet bodies, plus a health
// check. Dispatch is keyed on the osu-token header.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/osuAkatsuki/bancho-core/internal/login"
	"github.com/osuAkatsuki/bancho-core/internal/session"
)

// Server serves the bancho HTTP surface.
type Server struct {
	echo     *echo.Echo
	registry *session.Registry
	login    *login.Controller
}

func NewServer(registry *session.Registry, controller *login.Controller) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Debug("request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	s := &Server{echo: e, registry: registry, login: controller}
	e.POST("/", s.handleBancho)
	e.GET("/health", s.handleHealth)
	return s
}

// Handler exposes the underlying mux, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run starts the server on addr and blocks until ctx is cancelled, then
// drains in-flight requests with a short grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutCtx)
}

// handleBancho is the endpoint the client polls. Without an osu-token
// header the body is a login attempt; with one it drains the session's
// queued output.
func (s *Server) handleBancho(c echo.Context) error {
	tokenID := c.Request().Header.Get("osu-token")
	if tokenID == "" {
		return s.handleLogin(c)
	}

	ctx := c.Request().Context()
	token, err := s.registry.FetchToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if token == nil {
		// Unknown session: empty body, same token back. The client
		// notices the missing state and re-authenticates.
		return packetResponse(c, tokenID, nil)
	}

	data, err := s.registry.Dequeue(ctx, token.TokenID)
	if err != nil {
		return err
	}
	return packetResponse(c, token.TokenID, data)
}

func (s *Server) handleLogin(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}

	result, err := s.login.Login(c.Request().Context(), body, clientIP(c))
	if err != nil {
		slog.Error("login attempt errored", "error", err, "ip", clientIP(c))
		return err
	}
	return packetResponse(c, result.Token, result.Body)
}

type healthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}

func (s *Server) handleHealth(c echo.Context) error {
	online, err := s.registry.StreamClients(c.Request().Context(), session.MainStream)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", Online: len(online)})
}

// packetResponse writes a packet body with the cho-token header the
// client persists for its next request.
func packetResponse(c echo.Context, token string, body []byte) error {
	c.Response().Header().Set("cho-token", token)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, body)
}

// clientIP resolves the connecting player's address: the reverse
// proxy's X-Real-IP first, then the first X-Forwarded-For hop, then the
// socket address.
func clientIP(c echo.Context) string {
	r := c.Request()
	if ip := strings.TrimSpace(r.Header.Get(echo.HeaderXRealIP)); ip != "" {
		return ip
	}
	if fwd := r.Header.Get(echo.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
