package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	metrics "github.com/goliatone/go-metrics-admin/components/metrics"
	"github.com/goliatone/go-metrics-admin/components/metrics/commands"
	"github.com/goliatone/go-metrics-admin/components/metrics/httpapi"
	"github.com/goliatone/go-metrics-admin/components/session"
)

// ViewerResolver converts a router.Context into a metrics.ViewerContext.
type ViewerResolver func(router.Context) metrics.ViewerContext

// Config wires go-router with the metrics controller, API, and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *metrics.Controller
	Sessions       *session.Manager
	API            httpapi.Executor
	Broadcast      *metrics.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML        string
	View        string
	Login       string
	Logout      string
	Export      string
	Sync        string
	Harden      string
	Preferences string
	WebSocket   string
}

// Register mounts dashboard routes (HTML, JSON, CSV, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = sessionViewerResolver(cfg.Sessions)
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		html, err := cfg.Controller.Render(ctx.Context(), viewer, filter, ctx.Query("notice"))
		if err != nil {
			if errors.Is(err, metrics.ErrUnsupportedWindow) {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(html))
	}))

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		snapshot, err := cfg.Controller.Snapshot(ctx.Context(), viewer, filter)
		if err != nil {
			if errors.Is(err, metrics.ErrUnsupportedWindow) {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, snapshot)
	}))

	if cfg.Sessions != nil {
		registerSession(group, cfg.Sessions, routes)
	}

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerSession[T any](r router.Router[T], sessions *session.Manager, routes RouteConfig) {
	r.Post(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var payload struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		token, viewer, err := sessions.Login(ctx.Context(), payload.Username, payload.Password)
		if err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) {
				return respondError(ctx, http.StatusUnauthorized, err)
			}
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{
			"token":   token,
			"user_id": viewer.UserID,
			"role":    string(viewer.Role),
		})
	}))

	r.Post(routes.Logout, router.WrapHandler(func(ctx router.Context) error {
		sessions.Logout(bearerToken(ctx))
		return ctx.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
	}))
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Get(routes.Export, router.WrapHandler(func(ctx router.Context) error {
		filter, err := filterFromContext(ctx)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		var buf strings.Builder
		input := commands.ExportCSVInput{
			Viewer: resolver(ctx),
			Filter: filter,
			Out:    &buf,
		}
		if err := api.Export(ctx.Context(), input); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		ctx.SetHeader("Content-Type", metrics.ExportContentType)
		ctx.SetHeader("Content-Disposition", `attachment; filename="`+metrics.ExportFilename+`"`)
		return ctx.Send([]byte(buf.String()))
	}))

	r.Post(routes.Sync, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Sync(ctx.Context(), commands.SyncDatabaseInput{Viewer: resolver(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Harden, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Harden(ctx.Context(), commands.HardenSecurityInput{Viewer: resolver(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "hardened"})
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveFilterInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		if err := api.SaveFilter(ctx.Context(), payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *metrics.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// sessionViewerResolver decodes the bearer token into a viewer. Decode
// failures yield the unauthenticated viewer so gated actions deny cleanly.
func sessionViewerResolver(sessions *session.Manager) ViewerResolver {
	return func(ctx router.Context) metrics.ViewerContext {
		if sessions == nil {
			return metrics.ViewerContext{Role: metrics.RoleNone}
		}
		viewer, err := sessions.DecodeToken(bearerToken(ctx))
		if err != nil {
			return metrics.ViewerContext{Role: metrics.RoleNone}
		}
		return viewer
	}
}

func bearerToken(ctx router.Context) string {
	header := ctx.Header("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if token := strings.TrimSpace(ctx.Query("token")); token != "" {
		return token
	}
	return ""
}

func filterFromContext(ctx router.Context) (metrics.FilterState, error) {
	filter := metrics.DefaultFilter
	if region := ctx.Query("region"); region != "" {
		filter.Region = region
	}
	if raw := ctx.Query("window_days"); raw != "" {
		days := 0
		for _, r := range raw {
			if r < '0' || r > '9' {
				return metrics.FilterState{}, errors.New("gorouter: window_days must be an integer")
			}
			days = days*10 + int(r-'0')
		}
		filter.WindowDays = days
	}
	return filter, nil
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.View == "" {
		routes.View = "/dashboard/_view"
	}
	if routes.Login == "" {
		routes.Login = "/login"
	}
	if routes.Logout == "" {
		routes.Logout = "/logout"
	}
	if routes.Export == "" {
		routes.Export = "/dashboard/export.csv"
	}
	if routes.Sync == "" {
		routes.Sync = "/dashboard/actions/sync"
	}
	if routes.Harden == "" {
		routes.Harden = "/dashboard/actions/harden"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	return routes
}
