package raid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"api/domain"
)

type RaidHandler struct {
	registry *Registry
	users    UserStore
	clans    ClanStore
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewRaidHandler(registry *Registry, users UserStore, clans ClanStore, log zerolog.Logger) *RaidHandler {
	return &RaidHandler{
		registry: registry,
		users:    users,
		clans:    clans,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are gated by router middleware before this handler runs.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *RaidHandler) RegisterRoute(r *gin.Engine) {
	r.GET("/ws/raid/:clanid/:username", h.JoinRaidHandler)
}

// JoinRaidHandler upgrades the connection and hands it over to the clan's
// room. The user record is looked up (or lazily created) before the session
// sees the handle.
func (h *RaidHandler) JoinRaidHandler(ctx *gin.Context) {
	clanID, err := strconv.ParseInt(ctx.Param("clanid"), 10, 64)
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid-clan-id"})
		return
	}

	username := ctx.Param("username")
	if username == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing-username"})
		return
	}

	if _, err := h.clans.GetClanById(ctx.Request.Context(), clanID); err != nil {
		if errors.Is(err, domain.ErrClanNotFound) {
			ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "clan-not-found"})
			return
		}
		h.log.Error().Err(err).Int64("clan_id", clanID).Msg("clan lookup failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	user, err := h.users.GetOrCreateUser(ctx.Request.Context(), username)
	if err != nil {
		h.log.Error().Err(err).Str("username", username).Msg("user lookup failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	socket := NewWebsocketConnection(conn)
	player := NewPlayer(user.Username, &socket, h.log)

	if err := h.registry.ForwardJoin(ctx.Request.Context(), clanID, player); err != nil {
		h.log.Error().Err(err).Int64("clan_id", clanID).Msg("join failed")
		socket.Close("join-failed")
		return
	}

	go player.ReadPump()
	go player.WritePump()
}
