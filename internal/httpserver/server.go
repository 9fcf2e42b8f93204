// Package httpserver wires the Slack-facing endpoints to the interaction
// controller.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"eventbot/internal/bot"
	"eventbot/internal/config"
	"eventbot/internal/directory"
)

const unroutableText = "[NO EVENT IN SLACK REQUEST] These are not the droids you're looking for."

// eventCallback is the Events API envelope: either a URL-verification
// challenge or a subscribed event such as team_join.
type eventCallback struct {
	Token     string `json:"token"`
	Challenge string `json:"challenge"`
	Type      string `json:"type"`
	Event     struct {
		Type string `json:"type"`
		User struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	} `json:"event"`
}

// NewRouter wires public endpoints and the verified Slack surface.
// Public: /health, /ready, /install, /thanks
// Verified: /event (slash command), /button (interactive), /listening (events)
func NewRouter(cfg config.Config, dir *directory.Directory, b *bot.Bot, log *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := dir.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// Renders the Add to Slack button for installation.
	r.GET("/install", func(c *gin.Context) {
		page := fmt.Sprintf(installPage, cfg.ClientID)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	})

	// OAuth redirect: exchange the temporary code for a token, then pull the
	// workspace member list into the directory.
	r.GET("/thanks", func(c *gin.Context) {
		code := c.Query("code")
		if code == "" {
			c.String(http.StatusBadRequest, "missing code")
			return
		}
		if _, err := slack.GetOAuthResponse(http.DefaultClient, cfg.ClientID, cfg.ClientSecret, code, ""); err != nil {
			log.Error("oauth exchange failed", "error", err)
			c.String(http.StatusBadGateway, "authorization failed")
			return
		}
		if err := b.ImportWorkspace(c.Request.Context()); err != nil {
			log.Error("workspace import failed", "error", err)
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(thanksPage))
	})

	// Slash command invocations (/event ...).
	r.POST("/event", func(c *gin.Context) {
		cmd, err := slack.SlashCommandParse(c.Request)
		if err != nil {
			noRetry(c, http.StatusBadRequest, unroutableText)
			return
		}
		if cmd.Token != cfg.VerificationToken {
			noRetry(c, http.StatusUnauthorized, "invalid verification token")
			return
		}

		msg, err := b.HandleCommand(c.Request.Context(), cmd.UserID, cmd.Text)
		if err != nil {
			noRetry(c, http.StatusNotFound, unroutableText)
			return
		}
		c.JSON(http.StatusOK, msg)
	})

	// Message button clicks. Slack posts the interaction as a form field
	// holding JSON.
	r.POST("/button", func(c *gin.Context) {
		var cb slack.InteractionCallback
		if err := json.Unmarshal([]byte(c.PostForm("payload")), &cb); err != nil {
			noRetry(c, http.StatusBadRequest, unroutableText)
			return
		}
		if cb.Token != cfg.VerificationToken {
			noRetry(c, http.StatusUnauthorized, "invalid verification token")
			return
		}

		msg, err := b.HandleInteraction(c.Request.Context(), cb)
		if err != nil {
			noRetry(c, http.StatusNotFound, unroutableText)
			return
		}
		c.JSON(http.StatusOK, msg)
	})

	// Events API: URL verification and team_join onboarding.
	r.POST("/listening", func(c *gin.Context) {
		var ev eventCallback
		if err := c.ShouldBindJSON(&ev); err != nil {
			noRetry(c, http.StatusBadRequest, unroutableText)
			return
		}
		if ev.Challenge != "" {
			c.String(http.StatusOK, ev.Challenge)
			return
		}
		if ev.Token != cfg.VerificationToken {
			noRetry(c, http.StatusUnauthorized, "invalid verification token")
			return
		}
		if ev.Event.Type == "team_join" {
			if err := b.Welcome(c.Request.Context(), ev.Event.User.ID, ev.Event.User.Name); err != nil {
				log.Error("welcome failed", "user", ev.Event.User.ID, "error", err)
				c.String(http.StatusOK, "Message Failed")
				return
			}
			c.String(http.StatusOK, "Welcome Message Sent")
			return
		}
		noRetry(c, http.StatusNotFound, unroutableText)
	})

	return r
}

// noRetry answers with the given status and tells Slack not to redeliver.
func noRetry(c *gin.Context, status int, text string) {
	c.Header("X-Slack-No-Retry", "1")
	c.String(status, text)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		start := time.Now()
		c.Next()
		log.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

const installPage = `<!DOCTYPE html>
<html>
<head><title>Install EventBot</title></head>
<body>
<h1>EventBot</h1>
<p>Schedule events, browse them, and join or leave them, with Slack reminders kept in sync.</p>
<a href="https://slack.com/oauth/authorize?scope=bot,commands&client_id=%s">Add to Slack</a>
</body>
</html>
`

const thanksPage = `<!DOCTYPE html>
<html>
<head><title>Thanks!</title></head>
<body>
<h1>Thanks for installing EventBot!</h1>
<p>Type <code>/event help</code> in Slack to get started.</p>
</body>
</html>
`
