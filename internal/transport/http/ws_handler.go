package http

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brnhrs/warhorse-server/internal/auth"
	"github.com/brnhrs/warhorse-server/internal/config"
	"github.com/brnhrs/warhorse-server/internal/core"
	"github.com/brnhrs/warhorse-server/internal/proto"
	"github.com/brnhrs/warhorse-server/internal/session"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
// Grounded on the teacher's ws_handler.go: accept, spawn a read/write
// goroutine pair per connection, shut both down on whichever errors
// first.
type WSHandler struct {
	hub    *core.Hub
	auth   *auth.Service
	cfg    *config.Config
	logger *zerolog.Logger
}

// NewWSHandler builds the /ws upgrade handler as a gin.HandlerFunc.
func NewWSHandler(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) gin.HandlerFunc {
	h := &WSHandler{hub: hub, auth: authService, cfg: cfg, logger: logger}
	return h.serveWS
}

func (h *WSHandler) serveWS(c *gin.Context) {
	w, r := c.Writer, c.Request
	ctx := r.Context()
	remote := r.RemoteAddr

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	sessionID := session.ID(uuid.NewString())
	client := core.NewClient(sessionID)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	h.logger.Info().Str("session", string(sessionID)).Str("remote", remote).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if resumeToken := r.URL.Query().Get("resume_token"); resumeToken != "" && h.auth != nil {
		if userID, err := h.auth.ResumeSession(resumeToken); err == nil {
			client.Commands <- &core.Command{Kind: core.CommandResumeSession, TargetUser: userID}
		} else {
			h.logger.Debug().Err(err).Str("session", string(sessionID)).Msg("resume token rejected")
		}
	}

	errCh := make(chan error, 2)
	stopRate := make(chan struct{})
	go func() { errCh <- h.readLoop(ctx, conn, client, stopRate) }()
	go func() { errCh <- h.writeLoop(ctx, conn, client) }()

	err = <-errCh
	cancel()
	<-errCh
	close(stopRate)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.logger.Warn().Err(err).Str("session", string(sessionID)).Str("remote", remote).Int("status", int(status)).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
	h.logger.Info().Str("session", string(sessionID)).Str("remote", remote).Int("status", int(status)).Msg("ws disconnected")
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, stopRate <-chan struct{}) error {
	commandLimiter := newRateLimiter(h.cfg.RateLimitCommandsPerMin)
	chatLimiter := newRateLimiter(h.cfg.RateLimitChatPerMin)
	commandLimiter.startReset(stopRate)
	chatLimiter.startReset(stopRate)

	for {
		var env proto.Envelope
		readCtx := ctx
		var cancelRead context.CancelFunc
		if h.cfg.ClientIdleTimeout > 0 {
			readCtx, cancelRead = context.WithTimeout(ctx, h.cfg.ClientIdleTimeout)
		}
		err := wsjson.Read(readCtx, conn, &env)
		if cancelRead != nil {
			cancelRead()
		}
		if err != nil {
			if isExpectedClose(err) {
				return nil
			}
			h.logger.Warn().Err(err).Str("session", string(client.ID)).Msg("read ws envelope")
			return err
		}

		cmd, err := envelopeToCommand(env)
		if err != nil {
			// Malformed payloads are logged and dropped; the connection
			// stays open (spec §9 Open Question 3).
			h.logger.Warn().Err(err).Str("session", string(client.ID)).Str("event", env.Event).Msg("failed to decode inbound envelope")
			continue
		}

		limiter := commandLimiter
		if cmd.Kind == core.CommandSendChatMessage {
			limiter = chatLimiter
		}
		if !limiter.allow() {
			h.logger.Warn().Str("session", string(client.ID)).Str("event", env.Event).Msg("rate limited")
			continue
		}

		client.Commands <- cmd
	}
}

func isExpectedClose(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	var pingCh <-chan time.Time
	if h.cfg.PingInterval > 0 {
		pingTicker := time.NewTicker(h.cfg.PingInterval)
		defer pingTicker.Stop()
		pingCh = pingTicker.C
	}

	for {
		select {
		case ev, ok := <-client.Events:
			if !ok {
				return nil
			}
			env, ok := eventToEnvelope(ev)
			if !ok {
				continue
			}
			if err := wsjson.Write(ctx, conn, env); err != nil {
				h.logger.Error().Err(err).Str("session", string(client.ID)).Msg("write ws envelope")
				return err
			}
		case <-pingCh:
			if err := conn.Ping(ctx); err != nil {
				h.logger.Debug().Err(err).Str("session", string(client.ID)).Msg("ping failed")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
