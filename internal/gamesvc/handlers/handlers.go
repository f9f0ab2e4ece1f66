package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/teamwar/battle-services/internal/gamesvc/engine"
	"github.com/teamwar/battle-services/internal/gamesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	svc       *service.GameService
}

func NewHandler(svc *service.GameService) *Handler {
	return &Handler{svc: svc}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	json.NewEncoder(w).Encode(rsp)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	h.CreateResponse(w, Response{Code: statusOf(err), Error: err.Error()})
}

// statusOf translates the engine's rejection kinds onto HTTP statuses.
// Anything not an engine rejection is an internal failure.
func statusOf(err error) int {
	switch engine.KindOf(err) {
	case engine.KindNotFound:
		return http.StatusNotFound
	case engine.KindInvalidTeam, engine.KindInvalidStake, engine.KindInvalidCardIndex:
		return http.StatusBadRequest
	case engine.KindWrongPhase, engine.KindAlreadyJoined,
		engine.KindNotEnoughPlayers, engine.KindNotYourTurn:
		return http.StatusConflict
	case engine.KindNotJoined:
		return http.StatusForbidden
	case engine.KindTransferFailure:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// callerAddress pulls the account address out of the verified JWT claims.
func callerAddress(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	addr, _ := claims["address"].(string)
	return addr
}

func gameIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "battle service is running at port " + os.Getenv("GAME_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	json.NewEncoder(w).Encode(rsp)
}

type createGameRequest struct {
	Mode string `json:"mode"`
}

func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	json.NewDecoder(r.Body).Decode(&req)

	v, err := h.svc.CreateGame(r.Context(), req.Mode)
	if err != nil {
		log.Errorf("create game failed: %v", err)
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game created", Code: 201, Data: v})
}

func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	v := h.svc.CachedGameState(r.Context(), gameID)
	h.CreateResponse(w, Response{Code: 200, Data: v})
}

type joinRequest struct {
	Team  string `json:"team"`
	Stake string `json:"stake"`
}

func (h *Handler) JoinTeamHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid request body"})
		return
	}
	stake, err := decimal.NewFromString(req.Stake)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid stake amount"})
		return
	}

	if err := h.svc.JoinTeam(r.Context(), gameID, callerAddress(r), req.Team, stake); err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "joined", Code: 200, Data: h.svc.GameState(gameID)})
}

func (h *Handler) BeginGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	if err := h.svc.BeginGame(r.Context(), gameID); err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game started", Code: 200, Data: h.svc.GameState(gameID)})
}

type playRequest struct {
	CardIndex int `json:"card_index"`
}

func (h *Handler) PlayCardHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid request body"})
		return
	}

	out, err := h.svc.PlayCard(r.Context(), gameID, callerAddress(r), req.CardIndex)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "card played", Code: 200, Data: map[string]interface{}{
		"card_id": out.CardID,
		"attack":  out.Attack,
		"won":     out.Won,
		"game":    h.svc.GameState(gameID),
	}})
}

func (h *Handler) AbortGameHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	if err := h.svc.AbortGame(r.Context(), gameID, callerAddress(r)); err != nil {
		h.fail(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "game aborted", Code: 200, Data: h.svc.GameState(gameID)})
}

func (h *Handler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	h.CreateResponse(w, Response{Code: 200, Data: h.svc.PlayerState(gameID, callerAddress(r))})
}

func (h *Handler) GetCardHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	cardID, err := strconv.ParseInt(chi.URLParam(r, "cardID"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid card id"})
		return
	}
	h.CreateResponse(w, Response{Code: 200, Data: h.svc.Card(gameID, cardID)})
}

func (h *Handler) GetSettlementHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := gameIDParam(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: 400, Error: "invalid game id"})
		return
	}
	s, err := h.svc.Settlement(r.Context(), gameID)
	if err != nil {
		log.Errorf("settlement lookup failed for game %d: %v", gameID, err)
		h.CreateResponse(w, Response{Code: 500, Error: "settlement lookup failed"})
		return
	}
	if s == nil {
		h.CreateResponse(w, Response{Code: 404, Error: "no settlement recorded"})
		return
	}
	h.CreateResponse(w, Response{Code: 200, Data: s})
}

func (h *Handler) GetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	address := callerAddress(r)
	balance, err := h.svc.Balance(r.Context(), address)
	if err != nil {
		log.Errorf("balance lookup failed for %s: %v", address, err)
		h.CreateResponse(w, Response{Code: 500, Error: "balance lookup failed"})
		return
	}
	h.CreateResponse(w, Response{Code: 200, Data: map[string]string{
		"address": address,
		"balance": balance.String(),
	}})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"address": "0x0000000000000000000000000000000000000000",
		"exp":     expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
