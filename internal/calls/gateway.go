package calls

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/purrscribe/backend/internal/capture"
	"github.com/purrscribe/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // allow all origins in dev; restrict in production
	},
}

const (
	// PingInterval and PongWait (seconds) drive the heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// startCallPayload carries the call metadata sent with start_call.
type startCallPayload struct {
	PetID      string `json:"pet_id"`
	PetName    string `json:"pet_name"`
	OwnerID    string `json:"owner_id"`
	OwnerName  string `json:"owner_name"`
	ClinicID   string `json:"clinic_id"`
	ClinicName string `json:"clinic_name"`
	VisitType  string `json:"visit_type"`
}

type toggleRecordingPayload struct {
	// Granted reflects the client-side microphone permission result.
	Granted *bool `json:"granted,omitempty"`
}

type audioChunkPayload struct {
	Data string `json:"data"` // base64 PCM
}

// Gateway upgrades call-session WebSocket connections. Each connection owns
// one Session; completed captures are persisted through the store and
// announced back to the client.
type Gateway struct {
	store       *Store
	sessionOpts []SessionOption
	logger      *zap.Logger
}

// NewGateway creates the call session gateway.
func NewGateway(store *Store, logger *zap.Logger, sessionOpts ...SessionOption) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{store: store, sessionOpts: sessionOpts, logger: logger}
}

// ServeWs handles GET /ws/call: token in query, one call session per
// connection.
func (g *Gateway) ServeWs(jwtValidate func(token string) (userID, role string, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		if _, _, err := jwtValidate(token); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			g.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		id := uuid.New().String()
		client := &gatewayClient{
			id:      id,
			gateway: g,
			conn:    conn,
			send:    make(chan WSMessage, 64),
			logger:  g.logger.With(zap.String("client_id", id)),
		}
		go client.writePump()
		client.readPump()
	}
}

// gatewayClient is one connected call-session client.
type gatewayClient struct {
	id      string
	gateway *Gateway
	conn    *websocket.Conn
	send    chan WSMessage
	sendMu  sync.Mutex
	closed  bool
	session *Session
	meta    models.CallMetadata
	logger  *zap.Logger
}

func (c *gatewayClient) readPump() {
	defer func() {
		if c.session != nil {
			c.session.EndCall()
		}
		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))

		switch msg.Event {
		case "start_call":
			c.handleStartCall(msg.Data)
		case "toggle_recording":
			c.handleToggleRecording(msg.Data)
		case "audio_chunk":
			c.handleAudioChunk(msg.Data)
		case "end_call":
			c.handleEndCall()
		default:
			c.sendError("unknown event: " + msg.Event)
		}
	}
}

func (c *gatewayClient) handleStartCall(data json.RawMessage) {
	if c.session != nil {
		c.sendError("call already started")
		return
	}
	var p startCallPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			c.sendError("invalid start_call payload")
			return
		}
	}
	c.meta = models.CallMetadata{
		PetID:      p.PetID,
		PetName:    p.PetName,
		OwnerID:    p.OwnerID,
		OwnerName:  p.OwnerName,
		ClinicID:   p.ClinicID,
		ClinicName: p.ClinicName,
		VisitType:  p.VisitType,
	}

	adapter := capture.NewAdapter(capture.RemoteSource{}, c.logger)
	c.session = NewSession(adapter, c.persistCapture, c.logger, c.gateway.sessionOpts...)

	c.sendStatus()
	go func() {
		if err := c.session.StartCall(context.Background()); err != nil {
			c.sendError(err.Error())
		}
		c.sendStatus()
	}()
}

func (c *gatewayClient) handleToggleRecording(data json.RawMessage) {
	if c.session == nil {
		c.sendError("no call in progress")
		return
	}
	var p toggleRecordingPayload
	if len(data) > 0 {
		_ = json.Unmarshal(data, &p)
	}
	if p.Granted != nil && !*p.Granted {
		// client-side getUserMedia was refused; capture sub-state unchanged
		c.sendError(capture.ErrPermissionDenied.Error())
		return
	}
	if err := c.session.ToggleRecording(context.Background()); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendEvent("recording", gin.H{"active": c.session.Recording()})
}

func (c *gatewayClient) handleAudioChunk(data json.RawMessage) {
	if c.session == nil {
		return
	}
	var p audioChunkPayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.sendError("invalid audio_chunk payload")
		return
	}
	chunk, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		c.sendError("invalid audio chunk encoding")
		return
	}
	c.session.PushAudio(chunk)
}

func (c *gatewayClient) handleEndCall() {
	if c.session == nil {
		c.sendError("no call in progress")
		return
	}
	c.session.EndCall()
	c.sendStatus()
}

// persistCapture is the completed-capture subscriber: it saves the audio
// through the store and announces the new recording to the client.
func (c *gatewayClient) persistCapture(rec CapturedAudio) {
	meta := c.meta
	meta.Duration = rec.Duration
	saved, err := c.gateway.store.Create(context.Background(), meta, rec.WAV)
	if err != nil {
		c.logger.Error("persist captured call failed", zap.Error(err))
		c.sendError("failed to save recording")
		return
	}
	c.sendEvent("recording_saved", saved)
}

func (c *gatewayClient) sendStatus() {
	if c.session == nil {
		return
	}
	c.sendEvent("call_status", gin.H{
		"status":   c.session.State(),
		"duration": c.session.Duration(),
	})
}

func (c *gatewayClient) sendError(msg string) {
	c.sendEvent("error", gin.H{"message": msg})
}

func (c *gatewayClient) sendEvent(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- WSMessage{Event: event, Data: data}:
	default:
		c.logger.Warn("client send buffer full, dropping event", zap.String("event", event))
	}
}

func (c *gatewayClient) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
