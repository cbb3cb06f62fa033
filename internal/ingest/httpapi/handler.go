// internal/ingest/httpapi/handler.go
package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/xmidt-org/wrp-go/v3"

	"github.com/tamzrod/infohud/internal/flash"
	"github.com/tamzrod/infohud/internal/ingest"
)

const maxBody = 4 << 20

// Queue is what the handlers need from the flash queue.
type Queue interface {
	ingest.Enqueuer
	Snapshot() []flash.Message
}

// FlashInfo is the JSON view of a queued or accepted flash.
type FlashInfo struct {
	ID         string     `json:"id"`
	Title      string     `json:"title,omitempty"`
	Text       string     `json:"text,omitempty"`
	Priority   int        `json:"priority"`
	Origin     string     `json:"origin"`
	ReceivedAt time.Time  `json:"receivedAt"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"` // nil = never
}

func info(m flash.Message) FlashInfo {
	fi := FlashInfo{
		ID:         m.ID,
		Title:      m.Title,
		Text:       m.Text,
		Priority:   m.Priority,
		Origin:     m.Origin.String(),
		ReceivedAt: m.ReceivedAt,
	}
	if !m.ExpiresAt.IsZero() {
		exp := m.ExpiresAt
		fi.ExpiresAt = &exp
	}
	return fi
}

// API serves the flash endpoints:
//
//	POST /api/flash      JSON payload (origin api)
//	GET  /api/flash      pending queue snapshot
//	GET  /api/flash/ws   live feed of accepted flashes
//	POST /webhook        JSON payload or msgpack WRP event (origin webhook)
type API struct {
	queue   Queue
	decoder ingest.Decoder
	token   string
	hub     *Hub
	log     *slog.Logger
}

func New(q Queue, d ingest.Decoder, token string, log *slog.Logger) (*API, error) {
	if q == nil {
		return nil, errors.New("httpapi: queue required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &API{queue: q, decoder: d, token: token, hub: NewHub(log), log: log}, nil
}

// Hub returns the websocket feed.
func (a *API) Hub() *Hub { return a.hub }

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/flash", a.auth(a.flash))
	mux.HandleFunc("/api/flash/ws", a.auth(a.hub.ServeHTTP))
	mux.HandleFunc("/webhook", a.auth(a.webhook))
	return mux
}

func (a *API) auth(next http.HandlerFunc) http.HandlerFunc {
	if a.token == "" {
		return next
	}
	want := []byte("Bearer " + a.token)
	return func(w http.ResponseWriter, r *http.Request) {
		got := []byte(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next(w, r)
	}
}

func (a *API) flash(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		pending := a.queue.Snapshot()
		out := struct {
			Flashes []FlashInfo `json:"flashes"`
			Count   int         `json:"count"`
		}{Flashes: make([]FlashInfo, 0, len(pending))}
		for _, m := range pending {
			out.Flashes = append(out.Flashes, info(m))
		}
		out.Count = len(out.Flashes)
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		body, err := readBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		m, err := a.decoder.Decode(body, flash.OriginAPI)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a.accept(w, m)

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	}
}

func (a *API) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var m flash.Message
	if ct == wrp.Msgpack.ContentType() {
		m, err = a.fromWRP(body)
	} else {
		m, err = a.decoder.Decode(body, flash.OriginWebhook)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.accept(w, m)
}

// fromWRP unwraps a msgpack WRP event whose payload is the JSON flash
// payload. The transaction UUID becomes the flash id when none is given.
func (a *API) fromWRP(body []byte) (flash.Message, error) {
	var msg wrp.Message
	if err := wrp.NewDecoderBytes(body, wrp.Msgpack).Decode(&msg); err != nil {
		return flash.Message{}, fmt.Errorf("%w: wrp: %v", ingest.ErrInvalidPayload, err)
	}
	switch msg.Type {
	case wrp.SimpleEventMessageType, wrp.SimpleRequestResponseMessageType:
	default:
		return flash.Message{}, fmt.Errorf("%w: wrp message type %s", ingest.ErrInvalidPayload, msg.Type)
	}

	var p ingest.Payload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return flash.Message{}, fmt.Errorf("%w: wrp payload: %v", ingest.ErrInvalidPayload, err)
	}
	if p.ID == "" {
		p.ID = msg.TransactionUUID
	}
	return a.decoder.Build(p, flash.OriginWebhook)
}

func (a *API) accept(w http.ResponseWriter, m flash.Message) {
	if err := a.queue.Enqueue(m); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, flash.ErrDuplicate) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	a.log.Info("httpapi: flash accepted",
		"flash_id", m.ID,
		"priority", m.Priority,
		"origin", m.Origin.String(),
	)
	a.hub.Broadcast(info(m))
	writeJSON(w, http.StatusAccepted, info(m))
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBody {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ingest.ErrInvalidPayload, maxBody)
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": strings.TrimSpace(err.Error())})
}
