package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/srgchrksv/bitecast/config"
	"github.com/srgchrksv/bitecast/handlers"
	"github.com/srgchrksv/bitecast/logger"
	"github.com/srgchrksv/bitecast/templates"
)

const sessionName = "bitecast"

func RegisterRoutes(r *gin.Engine, cfg config.Config, h *handlers.Handler, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	tmpl, err := templates.Parse()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 30 * 24 * 60 * 60, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{"http://localhost:" + cfg.Port}
	}
	corsConfig.AllowMethods = []string{"GET", "POST"}
	corsConfig.AllowHeaders = []string{"Content-Type", "text/plain", "application/json"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	h.SetAllowedOrigins(corsConfig.AllowOrigins)

	r.Use(ensureSession(log))

	r.GET("/", h.Index)
	r.POST("/", h.Generate)
	r.POST("/voice", h.Voice)
	r.GET("/view/:folder", h.ViewFolder)
	r.GET("/audio/*filepath", h.Audio)
	r.GET("/api/related/:folder", h.Related)
	r.GET("/ws/progress", h.Progress)
	return nil
}

// ensureSession gives every browser a stable session ID so its history and
// progress stream stay separate from other visitors.
func ensureSession(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(handlers.SessionKey) == nil {
			session.Set(handlers.SessionKey, uuid.New().String())
			if err := session.Save(); err != nil {
				log.Warn("Failed to save new session", "error", err)
			}
		}
		c.Next()
	}
}
