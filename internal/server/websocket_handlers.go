package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"agora/internal/middleware"
	"agora/internal/notifications"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// wsTicketTTL bounds the window between ticket issuance and the socket dial.
const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on a WebSocket dial, so the client exchanges its JWT
// for a short-lived single-use ticket passed as a query parameter.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "WebSocket tickets unavailable",
		})
	}
	userID := c.Locals("userID").(uint)

	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		middleware.RedisErrors.WithLabelValues("set").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not issue ticket",
		})
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler handles GET /api/ws, the notification and circle chat
// stream. Clients subscribe to circle streams with {"type":"join",
// "circle_id":N}; membership is verified before the subscription sticks.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		ctx := context.Background()

		// Get userID from context locals (set by AuthRequired middleware)
		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			log.Printf("WebSocket: Unauthenticated connection attempt")
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket: Failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(cl *notifications.Client, message []byte) {
			var incoming map[string]interface{}
			if err := json.Unmarshal(message, &incoming); err != nil {
				log.Printf("WebSocket: Invalid message format from user %d", userID)
				return
			}

			msgType, ok := incoming["type"].(string)
			if !ok {
				return
			}

			switch msgType {
			case "join":
				if circleIDFloat, ok := incoming["circle_id"].(float64); ok {
					circleID := uint(circleIDFloat)
					if !s.isActiveCircleMember(ctx, userID, circleID) {
						return
					}
					s.hub.JoinCircle(userID, circleID)

					response := map[string]interface{}{
						"type":      "joined",
						"circle_id": circleID,
					}
					if responseJSON, err := json.Marshal(response); err == nil {
						cl.TrySend(responseJSON)
					}
				}

			case "leave":
				if circleIDFloat, ok := incoming["circle_id"].(float64); ok {
					s.hub.LeaveCircle(userID, uint(circleIDFloat))
				}

			case "message":
				// Send a circle message (alternative to the HTTP endpoint).
				// Same rate limit as HTTP (15 per minute per user).
				circleIDFloat, ok := incoming["circle_id"].(float64)
				if !ok {
					return
				}
				content, _ := incoming["content"].(string)
				if content == "" {
					return
				}

				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "circle_chat", id, 15, time.Minute)
				if !allowed {
					response := map[string]interface{}{
						"type":  "error",
						"error": "Rate limit exceeded. Please wait a moment.",
					}
					if respJSON, err := json.Marshal(response); err == nil {
						cl.TrySend(respJSON)
					}
					return
				}

				viewer := service.Viewer{ID: userID, Authenticated: true}
				if _, err := s.messageService.CreateMessage(ctx, service.CreateMessageInput{
					Viewer:   viewer,
					CircleID: uint(circleIDFloat),
					Content:  content,
				}); err != nil {
					log.Printf("WebSocket: Failed to create message for user %d: %v", userID, err)
					return
				}
				middleware.MessagesPublished.Inc()
			}
		}

		// Send welcome message
		welcome := map[string]interface{}{
			"type":    "connected",
			"user_id": userID,
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}

// isActiveCircleMember checks circle membership for WS subscriptions. Staff
// may subscribe to any circle.
func (s *Server) isActiveCircleMember(ctx context.Context, userID, circleID uint) bool {
	staff, err := s.isStaffByUserID(ctx, userID)
	if err == nil && staff {
		return true
	}
	m, err := s.circleRepo.GetMembership(ctx, circleID, userID)
	if err != nil || m == nil {
		return false
	}
	return m.Role.IsActive()
}
