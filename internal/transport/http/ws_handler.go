package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"lyric-quiz-service/internal/app"
)

// maxMessageSize bounds an inbound frame; guesses are far smaller.
const maxMessageSize = 8 << 10

type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type questionPayload struct {
	Song string `json:"song"`
	Hard bool   `json:"hard"`
}

type textPayload struct {
	Text string `json:"text"`
}

type tournamentPayload struct {
	Rounds int `json:"rounds"`
}

type songPayload struct {
	Song string `json:"song"`
}

type scoreResult struct {
	Score float64 `json:"score"`
}

type tournamentStarted struct {
	TournamentID string `json:"tournamentId"`
	Rounds       int    `json:"rounds"`
}

type joinedPayload struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game use cases.
// One connection is one player in one channel.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channelId")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if channelID == "" || userID == "" || displayName == "" {
		http.Error(w, "missing channelId, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx := r.Context()
	events, cancel, err := h.service.Subscribe(ctx, channelID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	eventsDone := make(chan struct{})

	// Single writer goroutine; gorilla connections allow one concurrent writer.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", zap.Error(err), zap.String("channel_id", channelID))
				return
			}
		}
	}()

	go func() {
		defer close(eventsDone)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: ev}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{ChannelID: channelID, UserID: userID}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply := h.dispatch(ctx, channelID, userID, displayName, inbound)
		select {
		case send <- reply:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-eventsDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, channelID, userID, displayName string, inbound inboundMessage) outboundMessage[any] {
	switch inbound.Type {
	case "question":
		var payload questionPayload
		if !decode(inbound.Payload, &payload) {
			return errorMessage("invalid question payload")
		}
		prompt, err := h.service.OpenQuestion(ctx, channelID, app.OpenRequest{Song: payload.Song, Hard: payload.Hard})
		return result("prompt", prompt, err)
	case "answer":
		var payload textPayload
		if !decode(inbound.Payload, &payload) || payload.Text == "" {
			return errorMessage("invalid answer payload")
		}
		score, err := h.service.SubmitAnswer(ctx, channelID, userID, displayName, payload.Text)
		return result("score", scoreResult{Score: score}, err)
	case "reveal":
		reveal, err := h.service.Reveal(ctx, channelID)
		return result("reveal", reveal, err)
	case "startTournament":
		var payload tournamentPayload
		if !decode(inbound.Payload, &payload) {
			return errorMessage("invalid tournament payload")
		}
		id, err := h.service.StartTournament(ctx, channelID, payload.Rounds)
		return result("tournamentStarted", tournamentStarted{TournamentID: id, Rounds: payload.Rounds}, err)
	case "tournamentGuess":
		var payload textPayload
		if !decode(inbound.Payload, &payload) || payload.Text == "" {
			return errorMessage("invalid guess payload")
		}
		guess, err := h.service.SubmitTournamentGuess(ctx, channelID, userID, displayName, payload.Text)
		return result("tournamentGuess", guess, err)
	case "leaderboard":
		lb, err := h.service.Leaderboard(ctx, channelID)
		return result("leaderboard", lb, err)
	case "status":
		return result("status", h.service.Status(ctx, channelID), nil)
	case "catalog":
		entries, err := h.service.Catalog(ctx)
		return result("catalog", entries, err)
	case "lyrics":
		var payload songPayload
		if !decode(inbound.Payload, &payload) {
			return errorMessage("invalid lyrics payload")
		}
		song, err := h.service.Lyrics(ctx, channelID, payload.Song)
		return result("lyrics", song, err)
	default:
		return errorMessage("unsupported message type")
	}
}

func decode(raw json.RawMessage, v any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, v) == nil
}

func result[T any](typ string, payload T, err error) outboundMessage[any] {
	if err != nil {
		return errorMessage(err.Error())
	}
	return outboundMessage[any]{Type: typ, Payload: payload}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// NewMux wires the websocket endpoint and the keep-alive probe.
func NewMux(ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", ws.ServeWS)
	return mux
}
