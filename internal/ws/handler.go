package ws

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/flyasher/fiora/internal/auth"
	"github.com/flyasher/fiora/internal/models"
	"github.com/flyasher/fiora/internal/observability"
	"github.com/flyasher/fiora/internal/repositories"
	"github.com/flyasher/fiora/internal/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades and serves realtime connections.
type Handler struct {
	hub         *Hub
	router      *transport.Router
	tokens      *auth.TokenManager
	groupRepo   repositories.GroupRepository
	sessionRepo repositories.SessionRepository
}

// NewHandler constructs a Handler.
func NewHandler(hub *Hub, router *transport.Router, tokens *auth.TokenManager, groupRepo repositories.GroupRepository, sessionRepo repositories.SessionRepository) *Handler {
	return &Handler{
		hub:         hub,
		router:      router,
		tokens:      tokens,
		groupRepo:   groupRepo,
		sessionRepo: sessionRepo,
	}
}

// Handle authenticates, upgrades, and registers a realtime connection, then
// serves it until disconnect.
func (h *Handler) Handle(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
	}

	userID, err := h.tokens.ValidateSession(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := transport.NewConn(ws, newConnID(), userID)

	ua := c.Request.UserAgent()
	session := models.Session{
		ID:          conn.ID(),
		UserID:      userID,
		OS:          osFromUserAgent(ua),
		Browser:     browserFromUserAgent(ua),
		Environment: environmentFromRequest(c.Request),
	}
	if err := h.sessionRepo.CreateSession(c.Request.Context(), session); err != nil {
		log.Printf("create session failed: %v", err)
		conn.Close()
		return
	}

	// re-enter the rooms of every group the user belongs to
	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("list groups failed: %v", err)
	}
	for _, group := range groups {
		h.hub.Join(conn, group.ID)
	}

	observability.IncWSActive()
	go func() {
		defer func() {
			h.hub.LeaveAll(conn)
			if err := h.sessionRepo.DeleteSession(context.Background(), conn.ID()); err != nil {
				log.Printf("delete session failed: %v", err)
			}
			conn.Close()
			observability.DecWSActive()
		}()
		h.router.Serve(context.Background(), conn)
	}()
}
