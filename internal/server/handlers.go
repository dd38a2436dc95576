package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/dictionary"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/game"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/internal/profile"
	httperrors "github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/pkg/http/errors"
	"github.com/saintdannyyy/unicef-gsl-hackathon-codeworks/pkg/http/ws"
)

// Handlers exposes the game engine over HTTP and publishes room events
// to WebSocket subscribers after each successful mutation.
type Handlers struct {
	engine   *game.Service
	profiles *profile.Store
	cache    *profile.LeaderboardCache // optional fast read path
	dict     *dictionary.Store
	hub      *ws.Hub
	logger   zerolog.Logger
}

// NewHandlers wires the HTTP handler set.
func NewHandlers(engine *game.Service, profiles *profile.Store, cache *profile.LeaderboardCache, dict *dictionary.Store, hub *ws.Hub, logger zerolog.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		profiles: profiles,
		cache:    cache,
		dict:     dict,
		hub:      hub,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

type createRoomRequest struct {
	HostID   int64  `json:"host_id"`
	HostName string `json:"host_name"`
	Category string `json:"category"`
}

// CreateRoom handles POST /v1/rooms.
func (h *Handlers) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.HostID == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "host_id is required", "host_id")
		return
	}

	room, err := h.engine.CreateRoom(r.Context(), req.HostID, req.HostName, req.Category)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, room)
}

type joinRoomRequest struct {
	RoomID   string `json:"room_id"`
	RoomCode string `json:"room_code"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// JoinRoom handles POST /v1/rooms/join. Players join by room code; the
// internal room id is accepted as well.
func (h *Handlers) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}

	roomID := req.RoomID
	if roomID == "" {
		id, ok := h.engine.FindRoomByCode(req.RoomCode)
		if !ok {
			httperrors.RespondNotFound(w, httperrors.ErrCodeInvalidRoomCode, "no active room with that code")
			return
		}
		roomID = id
	}

	if err := h.engine.JoinRoom(r.Context(), roomID, req.UserID, req.Username); err != nil {
		h.respondGameError(w, err)
		return
	}

	room, err := h.engine.GetGameState(roomID)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	h.broadcastRoomEvent(ws.TypeRoomUpdate, roomID, room)
	respondJSON(w, http.StatusOK, room)
}

// StartGame handles POST /v1/rooms/{id}/start.
func (h *Handlers) StartGame(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	room, err := h.engine.StartGame(r.Context(), roomID)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	h.broadcastRoomEvent(ws.TypeGameStarted, roomID, room)
	respondJSON(w, http.StatusOK, room)
}

type submitAnswerRequest struct {
	UserID         int64   `json:"user_id"`
	Answer         string  `json:"answer"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// SubmitAnswer handles POST /v1/rooms/{id}/answers.
func (h *Handlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	result, err := h.engine.SubmitAnswer(r.Context(), roomID, req.UserID, req.Answer, req.ElapsedSeconds)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	h.broadcastRoomEvent(ws.TypeAnswerResult, roomID, result)
	respondJSON(w, http.StatusOK, result)
}

// AdvanceQuestion handles POST /v1/rooms/{id}/advance. The response is
// either the next question or the finalization result.
func (h *Handlers) AdvanceQuestion(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	next, final, err := h.engine.AdvanceQuestion(r.Context(), roomID)
	if err != nil && final == nil {
		h.respondGameError(w, err)
		return
	}

	if final != nil {
		h.broadcastRoomEvent(ws.TypeGameOver, roomID, final)
		resp := map[string]interface{}{"finished": true, "result": final}
		if err != nil {
			// The game is over but the stats write failed; surface it.
			h.logger.Error().Err(err).Str("room_id", roomID).Msg("stats update failed at finalization")
			resp["stats_error"] = httperrors.ErrCodeStatsUpdateFailed
		}
		respondJSON(w, http.StatusOK, resp)
		return
	}

	h.broadcastRoomEvent(ws.TypeNextQuestion, roomID, next)
	respondJSON(w, http.StatusOK, map[string]interface{}{"finished": false, "question": next})
}

// GetRoom handles GET /v1/rooms/{id}.
func (h *Handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.engine.GetGameState(r.PathValue("id"))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, room)
}

// GetCurrentQuestion handles GET /v1/rooms/{id}/question.
func (h *Handlers) GetCurrentQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.engine.GetCurrentQuestion(r.PathValue("id"))
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

type createSoloRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// CreateSoloPractice handles POST /v1/solo.
func (h *Handlers) CreateSoloPractice(w http.ResponseWriter, r *http.Request) {
	var req createSoloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "user_id is required", "user_id")
		return
	}

	room, err := h.engine.CreateSoloPractice(r.Context(), req.UserID, req.Username)
	if err != nil {
		h.respondGameError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, room)
}

type soloAnswerRequest struct {
	UserID int64  `json:"user_id"`
	Answer string `json:"answer"`
}

// SubmitSoloAnswer handles POST /v1/solo/{id}/answers.
func (h *Handlers) SubmitSoloAnswer(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	var req soloAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	result, err := h.engine.SubmitSoloAnswer(r.Context(), roomID, req.UserID, req.Answer)
	if err != nil && !result.Finished {
		h.respondGameError(w, err)
		return
	}

	resp := struct {
		game.SoloSubmitResult
		StatsError string `json:"stats_error,omitempty"`
	}{SoloSubmitResult: result}
	if err != nil {
		// The session is over but the stats write failed; surface it.
		h.logger.Error().Err(err).Str("room_id", roomID).Msg("stats update failed at solo finalization")
		resp.StatsError = httperrors.ErrCodeStatsUpdateFailed
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetLeaderboard handles GET /v1/leaderboard. The Redis mirror serves
// reads when configured; the persisted table is the fallback.
func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)

	if h.cache != nil {
		if entries, err := h.cache.Top(r.Context(), limit); err == nil && len(entries) > 0 {
			respondJSON(w, http.StatusOK, entries)
			return
		}
	}
	respondJSON(w, http.StatusOK, h.profiles.Leaderboard(limit))
}

// GetUserRank handles GET /v1/users/{id}/rank.
func (h *Handlers) GetUserRank(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "user id must be numeric")
		return
	}

	rank, prof, err := h.profiles.UserRank(r.Context(), userID)
	if err != nil {
		httperrors.RespondInternalError(w, "failed to resolve rank")
		return
	}
	resp := map[string]interface{}{"profile": prof}
	if rank > 0 {
		resp["rank"] = rank
	}
	respondJSON(w, http.StatusOK, resp)
}

// SearchDictionary handles GET /v1/dictionary/search?q=. Misses include
// fuzzy suggestions so callers can offer "did you mean".
func (h *Handlers) SearchDictionary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "q is required", "q")
		return
	}

	if entry, ok := h.dict.Search(query); ok {
		respondJSON(w, http.StatusOK, map[string]interface{}{"found": true, "entry": entry})
		return
	}

	suggestions := h.dict.Suggest(query, 5)
	words := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		words = append(words, s.Entry.Word)
	}
	respondJSON(w, http.StatusNotFound, map[string]interface{}{
		"found":       false,
		"error":       httperrors.ErrCodeSignNotFound,
		"suggestions": words,
	})
}

// SuggestSigns handles GET /v1/dictionary/suggest?q=.
func (h *Handlers) SuggestSigns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "q is required", "q")
		return
	}

	suggestions := h.dict.Suggest(query, queryInt(r, "limit", 5))
	type suggestion struct {
		Word  string  `json:"word"`
		Score float64 `json:"score"`
	}
	out := make([]suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, suggestion{Word: s.Entry.Word, Score: s.Score})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetDictionaryStats handles GET /v1/dictionary/stats.
func (h *Handlers) GetDictionaryStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.dict.Statistics())
}

// GetHistory handles GET /v1/history.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.profiles.History(queryInt(r, "limit", 20)))
}

func (h *Handlers) respondGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeRoomNotFound, "room not found")
	case errors.Is(err, game.ErrRoomFull):
		httperrors.RespondConflict(w, httperrors.ErrCodeRoomFull, "room is already full")
	case errors.Is(err, game.ErrInvalidRoomState):
		httperrors.RespondConflict(w, httperrors.ErrCodeInvalidRoomState, "operation not valid in current room state")
	case errors.Is(err, game.ErrInsufficientPool):
		httperrors.RespondConflict(w, httperrors.ErrCodeInsufficientPool, "not enough signs available to build a question set")
	case errors.Is(err, game.ErrPlayerNotInRoom):
		httperrors.RespondConflict(w, httperrors.ErrCodePlayerNotInRoom, "player has not joined this room")
	default:
		h.logger.Error().Err(err).Msg("unhandled engine error")
		httperrors.RespondInternalError(w, "internal error")
	}
}

func (h *Handlers) broadcastRoomEvent(msgType, roomID string, data interface{}) {
	if h.hub == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Warn().Err(err).Str("type", msgType).Msg("failed to marshal room event")
		return
	}
	h.hub.BroadcastToRoom(roomID, ws.NewMessage(msgType, ws.RoomEventPayload{
		RoomID: roomID,
		Data:   payload,
	}))
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
