package presence

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/hilthontt/metaverse/internal/domain"
	"github.com/hilthontt/metaverse/internal/infrastructure/json"
	"github.com/hilthontt/metaverse/internal/infrastructure/logging"
	"github.com/hilthontt/metaverse/internal/infrastructure/metrics"
	"github.com/hilthontt/metaverse/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/metaverse/internal/infrastructure/validate"
	"github.com/hilthontt/metaverse/internal/infrastructure/ws"
	"github.com/samber/lo"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
	auditQueryTimeout = 5 * time.Second
)

var ErrShuttingDown = errors.New("server is shutting down")

type Options struct {
	Client  ws.ClientOptions
	Session ws.SessionConfig
}

type Handler struct {
	hub            *ws.Hub
	upgrader       *websocket.Upgrader
	auditRepo      domain.PresenceAuditRepository
	inboundLimiter ratelimiter.Limiter
	metrics        *metrics.Presence
	logger         logging.Logger
	opts           Options

	// mu orders sessions.Add against Shutdown so Wait never races a new session.
	mu       sync.Mutex
	draining bool
	sessions sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewHandler wires the websocket endpoint and the presence queries. auditRepo
// and inboundLimiter may be nil.
func NewHandler(
	hub *ws.Hub,
	upgrader *websocket.Upgrader,
	auditRepo domain.PresenceAuditRepository,
	inboundLimiter ratelimiter.Limiter,
	metrics *metrics.Presence,
	logger logging.Logger,
	opts Options,
) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		hub:            hub,
		upgrader:       upgrader,
		auditRepo:      auditRepo,
		inboundLimiter: inboundLimiter,
		metrics:        metrics,
		logger:         logger,
		opts:           opts,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// ServeWS godoc
// @Summary      Open a presence session
// @Description  Upgrades to a WebSocket bound to userId. The server replies with connection_established and then accepts join_space, chat, move and leave_space frames.
// @Tags         presence
// @Param        userId path string true "User ID"
// @Success      101 "Switching Protocols"
// @Failure      400 {object} json.ErrorResponse "Invalid user ID"
// @Failure      503 {object} json.ErrorResponse "Shutting down"
// @Router       /ws/{userId} [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	if !h.beginSession() {
		json.WriteServiceUnavailableError(w, ErrShuttingDown)
		return
	}
	defer h.sessions.Done()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		h.logger.Warn(logging.WebSocket, logging.Upgrade, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.UserID:       userID.String(),
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer context.AfterFunc(h.ctx, cancel)()

	client := ws.NewClient(conn, userID, h.opts.Client)
	go client.WritePump()

	ws.NewSession(userID, client, h.hub, h.inboundLimiter, h.metrics, h.logger, h.opts.Session).Run(ctx)
}

func (h *Handler) beginSession() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.draining {
		return false
	}
	h.sessions.Add(1)
	return true
}

// Shutdown refuses new sockets and ends every running session.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()

	h.cancel()
}

// Wait blocks until every session has finished or ctx ends.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetStats godoc
// @Summary      Presence statistics
// @Description  Returns the number of live connections and the occupancy of every space
// @Tags         presence
// @Produce      json
// @Success      200 {object} statsResponse
// @Router       /api/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	occupancy := h.hub.Spaces()

	spaces := lo.MapToSlice(occupancy, func(space domain.SpaceID, members int) spaceOccupancy {
		return spaceOccupancy{SpaceID: space, Members: members}
	})
	slices.SortFunc(spaces, func(a, b spaceOccupancy) int {
		return cmp.Or(
			cmp.Compare(b.Members, a.Members),
			cmp.Compare(a.SpaceID, b.SpaceID),
		)
	})

	_ = json.Write(w, http.StatusOK, statsResponse{
		Connections:    h.hub.ConnectionCount(),
		OccupiedSpaces: len(spaces),
		Spaces:         spaces,
	})
}

// GetSpaceMembers godoc
// @Summary      Members of a space
// @Tags         presence
// @Produce      json
// @Param        spaceId path string true "Space ID"
// @Success      200 {object} spaceMembersResponse
// @Failure      400 {object} json.ErrorResponse
// @Router       /api/spaces/{spaceId}/members [get]
func (h *Handler) GetSpaceMembers(w http.ResponseWriter, r *http.Request) {
	spaceID, ok := h.spaceIDParam(w, r)
	if !ok {
		return
	}

	_ = json.Write(w, http.StatusOK, spaceMembersResponse{
		SpaceID:      spaceID,
		UsersInSpace: h.hub.MembersOf(spaceID),
	})
}

// GetUserSpace godoc
// @Summary      Space of a user
// @Description  Returns the space the user is in, or null
// @Tags         presence
// @Produce      json
// @Param        userId path string true "User ID"
// @Success      200 {object} userSpaceResponse
// @Failure      400 {object} json.ErrorResponse
// @Router       /api/users/{userId}/space [get]
func (h *Handler) GetUserSpace(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	resp := userSpaceResponse{UserID: userID}
	if space, ok := h.hub.SpaceOf(userID); ok {
		resp.SpaceID = &space
	}

	_ = json.Write(w, http.StatusOK, resp)
}

// GetSpaceAudit godoc
// @Summary      Presence history of a space
// @Description  Returns the most recent presence changes recorded for the space, newest first
// @Tags         presence
// @Produce      json
// @Param        spaceId path string true "Space ID"
// @Param        limit query int false "Maximum entries (1-500)" default(50)
// @Success      200 {object} auditLogListResponse
// @Failure      400 {object} json.ErrorResponse
// @Failure      503 {object} json.ErrorResponse "Audit log not configured"
// @Router       /api/spaces/{spaceId}/audit [get]
func (h *Handler) GetSpaceAudit(w http.ResponseWriter, r *http.Request) {
	if h.auditRepo == nil {
		json.WriteServiceUnavailableError(w, domain.ErrAuditLogUnavailable)
		return
	}

	spaceID, ok := h.spaceIDParam(w, r)
	if !ok {
		return
	}

	rawLimit := r.URL.Query().Get("limit")
	if err := validate.Field("limit", validate.Optional(validate.IntBetween(1, maxAuditLimit)))(rawLimit); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	limit := defaultAuditLimit
	if rawLimit != "" {
		limit, _ = strconv.Atoi(rawLimit)
	}

	ctx, cancel := context.WithTimeout(r.Context(), auditQueryTimeout)
	defer cancel()

	logs, err := h.auditRepo.GetBySpaceID(ctx, spaceID, limit)
	if err != nil {
		h.logger.Error(logging.MongoDB, logging.ExternalService, "failed to read audit log", map[logging.ExtraKey]any{
			logging.SpaceID:      spaceID.String(),
			logging.ErrorMessage: err.Error(),
		})
		if errors.Is(err, context.DeadlineExceeded) {
			json.WriteServiceUnavailableError(w, err)
			return
		}
		json.WriteInternalError(w, err)
		return
	}

	entries := make([]auditLogResponse, 0, len(logs))
	for _, log := range logs {
		entries = append(entries, toAuditLogResponse(log))
	}

	_ = json.Write(w, http.StatusOK, auditLogListResponse{
		SpaceID: spaceID,
		Entries: entries,
	})
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	raw := chi.URLParam(r, "userId")
	if err := validate.Field("userId", validate.Identifier())(raw); err != nil {
		json.WriteValidationError(w, err)
		return "", false
	}

	userID, err := domain.ParseUserID(raw)
	if err != nil {
		json.WriteValidationError(w, err)
		return "", false
	}
	return userID, true
}

func (h *Handler) spaceIDParam(w http.ResponseWriter, r *http.Request) (domain.SpaceID, bool) {
	raw := chi.URLParam(r, "spaceId")
	if err := validate.Field("spaceId", validate.Identifier())(raw); err != nil {
		json.WriteValidationError(w, err)
		return "", false
	}

	spaceID, err := domain.ParseSpaceID(raw)
	if err != nil {
		json.WriteValidationError(w, err)
		return "", false
	}
	return spaceID, true
}
