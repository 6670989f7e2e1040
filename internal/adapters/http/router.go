package http

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/adapters/signal"
	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
)

const (
	sessionName     = "MeetSessions"
	clientTokenKey  = "client_token"
	sessionLifetime = 7 * 24 * time.Hour
)

// ClientTokenMiddleware gives every browser a stable token kept in the
// session cookie. It is the fallback user id for joins without one.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		token, _ := sess.Get(clientTokenKey).(string)
		if token == "" {
			token = uuid.NewString()
			sess.Set(clientTokenKey, token)
			if err := sess.Save(); err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
			}
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}

func corsConfig(clientURL string) cors.Config {
	cc := cors.Config{
		AllowMethods:    []string{http.MethodGet, http.MethodPost},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		AllowWebSockets: true,
		MaxAge:          12 * time.Hour,
	}
	origin := strings.TrimRight(clientURL, "/")
	if origin == "" || origin == "*" {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = []string{origin}
	cc.AllowCredentials = true
	return cc
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.ClientURL)))

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	iceServers, err := cfg.WebRTCICEServers()
	if err != nil {
		// Load already validated the list.
		log.Error().Err(err).Str("module", "adapters.http").Msg("ice servers")
	}
	h := &Handlers{Rooms: o, ICEServers: iceServers}
	ctrl := signal.NewSignalWSController(o, signal.OptionsFromConfig(cfg))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/rooms", h.ListRooms)
	api.GET("/rooms/:roomId/participants", h.Participants)
	api.GET("/ice-servers", h.ICE)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Debug().Str("module", "adapters.http").Str("client", c.GetString(clientTokenKey)).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	if cfg.ServeStatic {
		index := filepath.Join(cfg.StaticPath, "index.html")
		r.GET("/", func(c *gin.Context) { c.File(index) })
		r.NoRoute(spaFallback(cfg.StaticPath, index))
	} else {
		r.GET("/", h.Health)
	}

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Bool("serve_static", cfg.ServeStatic).Msg("router setup")
	return r
}

// spaFallback serves files from root and answers every other non-API path
// with index.html so client-side routes resolve.
func spaFallback(root, index string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		file := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+p)))
		if st, err := os.Stat(file); err == nil && !st.IsDir() {
			c.File(file)
			return
		}
		c.File(index)
	}
}
