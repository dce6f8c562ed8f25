package chat

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/recipemania/recipe-mania-server/cmd/models"
	"github.com/recipemania/recipe-mania-server/cmd/utils"
	"gorm.io/gorm"
)

type ChatHandler struct {
	db  *gorm.DB
	hub *Hub
}

func NewChatHandler(db *gorm.DB) *ChatHandler {
	hub := NewHub()
	go hub.Run()

	return &ChatHandler{db: db, hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat/{bookingId}/ws", utils.AuthMiddleware(h.HandleWebSocket))
	router.HandleFunc("/chat/{bookingId}/messages", utils.AuthMiddleware(h.GetChatMessages)).Methods("GET")
}

type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// participant loads the booking and rejects callers who are neither its
// user, its chef, nor an admin.
func (h *ChatHandler) participant(bookingID, userID uint, role string) (*models.Booking, bool) {
	var booking models.Booking
	if err := h.db.First(&booking, bookingID).Error; err != nil {
		return nil, false
	}
	if booking.UserID != userID && booking.ChefID != userID && !utils.RoleAllowed(role, utils.RoleAdmin) {
		return nil, false
	}
	return &booking, true
}

func (h *ChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseUint(vars["bookingId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetUserRoleFromContext(r.Context())

	booking, ok := h.participant(uint(bookingID), userID, role)
	if !ok {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &ClientConnection{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		UserID:    userID,
		BookingID: uint(bookingID),
	}

	h.hub.Register <- client

	go client.WritePump()
	go h.readPump(client, booking)
}

func (h *ChatHandler) readPump(client *ClientConnection, booking *models.Booking) {
	defer func() {
		h.hub.Unregister <- client
		client.Conn.Close()
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("error unmarshaling message: %v", err)
			continue
		}

		switch msg.Type {
		case "message":
			receiverID := booking.ChefID
			if client.UserID == booking.ChefID {
				receiverID = booking.UserID
			}

			message := models.Message{
				BookingID:  client.BookingID,
				SenderID:   client.UserID,
				ReceiverID: receiverID,
				Content:    msg.Content,
			}

			// Persist before relaying.
			if err := h.db.Create(&message).Error; err != nil {
				log.Printf("error saving message: %v", err)
				continue
			}

			out, _ := json.Marshal(map[string]interface{}{
				"type":    "message",
				"message": message,
			})
			h.hub.BroadcastToBooking(client.BookingID, out)

		case "typing":
			out, _ := json.Marshal(map[string]interface{}{
				"type":      "typing",
				"sender_id": client.UserID,
			})
			h.hub.BroadcastToBooking(client.BookingID, out)
		}
	}
}

func (h *ChatHandler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bookingID, err := strconv.ParseUint(vars["bookingId"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid booking ID", http.StatusBadRequest)
		return
	}

	userID, err := utils.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := utils.GetUserRoleFromContext(r.Context())

	if _, ok := h.participant(uint(bookingID), userID, role); !ok {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	var messages []models.Message
	if err := h.db.Where("booking_id = ?", bookingID).
		Order("created_at asc").Find(&messages).Error; err != nil {
		http.Error(w, "Error retrieving messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"messages": messages,
	})
}
