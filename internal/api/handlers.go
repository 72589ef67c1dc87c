package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"collabroom/internal/metrics"
	"collabroom/internal/models"
	"collabroom/internal/session"
	"collabroom/internal/utils"
)

type Handlers struct {
	log        *utils.Logger
	dispatcher *session.Dispatcher
	registry   *session.Registry
	jwtSecret  []byte
	upgrader   websocket.Upgrader
}

// NewHandlers wires the transport surface. jwtSecret comes from config; when
// empty the session-cookie check is skipped (local dev).
func NewHandlers(log *utils.Logger, d *session.Dispatcher, reg *session.Registry, allowOrigins []string, jwtSecret []byte) *Handlers {
	return &Handlers{
		log:        log,
		dispatcher: d,
		registry:   reg,
		jwtSecret:  jwtSecret,
		upgrader:   websocket.Upgrader{CheckOrigin: originChecker(allowOrigins)},
	}
}

// originChecker admits requests whose Origin header is on the allow-list.
// Requests without an Origin header (non-browser clients) pass; they carry
// no ambient browser credentials to protect.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// RoomMembers returns the current presence snapshot for a room. A room
// nobody is in reads as an empty member list.
func (h *Handlers) RoomMembers(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	writeJSON(w, models.RoomMembers{RoomID: roomID, Members: h.registry.Members(roomID)})
}

// CollabWS upgrades the connection and pumps its frames into the dispatcher.
// Frames that fail to decode are skipped rather than closing the socket, so
// a malformed event is not a disconnect oracle.
func (h *Handlers) CollabWS(w http.ResponseWriter, r *http.Request) {
	if len(h.jwtSecret) > 0 {
		token, err := utils.ExtractSessionToken(r)
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, err := utils.ValidateSessionToken(token, h.jwtSecret); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), conn)
	metrics.Connections.Inc()
	defer metrics.Connections.Dec()
	defer h.dispatcher.Disconnect(client)

	h.log.Info("client connected", "id", client.ID)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			h.log.Info("client disconnected", "id", client.ID)
			return
		}
		var frame models.WSFrame
		if err := json.Unmarshal(msg, &frame); err != nil || frame.Event == "" {
			continue
		}
		h.dispatcher.Post(session.Event{Client: client, Frame: frame})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
