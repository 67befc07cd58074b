package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hugo-directus/pkg/logger"
)

// Syncer runs one full import. The handler does not wait for it.
type Syncer interface {
	RunFullSync()
}

// Webhook exposes the import trigger over HTTP.
type Webhook struct {
	sync Syncer
	log  logger.Logger
}

func NewWebhook(s Syncer, log logger.Logger) *Webhook {
	return &Webhook{sync: s, log: log.WithComponent("webhook")}
}

// NewRouter registers the webhook routes on a fresh gin engine.
func NewRouter(h *Webhook) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/", h.Health)
	r.POST("/", h.Trigger)
	return r
}

func (h *Webhook) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Trigger acknowledges right away and starts an import in the background.
// The payload is not inspected: any call re-imports everything.
func (h *Webhook) Trigger(c *gin.Context) {
	h.log.WithFields(map[string]interface{}{"remote": c.ClientIP()}).Info("Webhook received, starting import")
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
	go h.sync.RunFullSync()
}
