package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"viva-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans redis pub/sub messages out to a student's live websocket
// connections. The evaluation loop publishes progress here so a student
// watching the end screen sees grading advance answer by answer.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	redisClient *redis.Client
	jwtSecret   []byte
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(redisClient *redis.Client, jwtSecret string) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		redisClient: redisClient,
		jwtSecret:   []byte(jwtSecret),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

func studentChannel(studentID uuid.UUID) string {
	return "student_updates:" + studentID.String()
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Authenticate via token query param
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return h.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	studentIDStr, _ := claims["user_id"].(string)
	studentID, err := uuid.Parse(studentIDStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.registerConnection(studentID, conn)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(studentID, conn)
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(studentID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[studentID] = append(h.connections[studentID], conn)

	// Start pub/sub subscription on the first connection for this student
	if len(h.connections[studentID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[studentID] = cancel
		go h.subscribeToPubSub(ctx, studentID)
	}

	log.Printf("WebSocket connected: student %s (total: %d)", studentID, len(h.connections[studentID]))
}

func (h *Hub) unregisterConnection(studentID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[studentID]
	for i, c := range conns {
		if c == conn {
			h.connections[studentID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[studentID]) == 0 {
		delete(h.connections, studentID)
		if cancel, ok := h.cancelFuncs[studentID]; ok {
			cancel()
			delete(h.cancelFuncs, studentID)
		}
	}

	log.Printf("WebSocket disconnected: student %s", studentID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, studentID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, studentChannel(studentID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(studentID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(studentID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[studentID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// ProgressPublisher pushes evaluation progress into the student's pub/sub
// channel. Publishing is best effort; a dropped update never interrupts
// grading.
type ProgressPublisher struct {
	redisClient *redis.Client
}

func NewProgressPublisher(redisClient *redis.Client) *ProgressPublisher {
	return &ProgressPublisher{redisClient: redisClient}
}

func (p *ProgressPublisher) PublishProgress(ctx context.Context, studentID uuid.UUID, progress models.EvaluationProgress) {
	msg := models.WSMessage{Type: "evaluation_progress", Payload: progress}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.redisClient.Publish(ctx, studentChannel(studentID), data).Err(); err != nil {
		log.Printf("progress publish failed for student %s: %v", studentID, err)
	}
}
