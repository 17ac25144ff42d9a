package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/guessactor/internal/catalog"
	"github.com/playperu/guessactor/internal/game"
	"github.com/playperu/guessactor/internal/handler/health"
	"github.com/playperu/guessactor/internal/store"
)

// operation describes one documented route.
type operation struct {
	method, path string
	summary      string
	description  string
	request      any
	responses    []response
}

type response struct {
	status int
	body   any
	ctype  string
}

func okResp(body any) response                { return response{status: http.StatusOK, body: body} }
func errResp(code int) response               { return response{status: code, body: ErrorResponse{}} }
func streamResp(code int, ct string) response { return response{status: code, ctype: ct} }

type stagePath struct {
	StageID string `path:"stageID"`
}

type kindPath struct {
	Kind game.PowerUp `path:"kind" enum:"remove2,firstLetter,skip"`
}

type adPath struct {
	AdID string `path:"adID"`
}

type adminStagePath struct {
	ID string `path:"id"`
}

type adminStageWrite struct {
	StageID string `path:"id"`
	game.Stage
}

type tokenQuery struct {
	Token string `query:"token" required:"true"`
}

const bearerNote = " Requires a player Bearer token."

var operations = []operation{
	{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", nil,
		[]response{okResp(health.Report{}), {status: http.StatusServiceUnavailable, body: health.Report{}}}},

	{http.MethodPost, "/api/players", "Register player", "Creates an anonymous player and returns its id and token.", nil,
		[]response{{status: http.StatusCreated, body: store.Player{}}}},

	{http.MethodGet, "/api/play/profile", "Get profile", "Returns coins, level, badges, stars and limits." + bearerNote, nil,
		[]response{okResp(game.ProfileView{}), errResp(http.StatusUnauthorized)}},
	{http.MethodPut, "/api/play/sound", "Update sound preferences", "Sets sound on/off and volume (clamped to 0..1)." + bearerNote, SoundRequest{},
		[]response{okResp(game.SoundPrefs{}), errResp(http.StatusBadRequest)}},
	{http.MethodPost, "/api/play/daily", "Claim daily reward", "Grants the daily coin reward once per calendar date." + bearerNote, nil,
		[]response{okResp(DailyResponse{}), errResp(http.StatusConflict)}},

	{http.MethodGet, "/api/play/stages", "List stages", "Returns the catalog with lock, price, stars and plays left for the player." + bearerNote, nil,
		[]response{okResp(StagesResponse{})}},
	{http.MethodGet, "/api/play/stages/stream", "Stage stream", "Server-Sent Events stream of the player's stage list, pushed on every catalog change. Pass token as query parameter.", tokenQuery{},
		[]response{streamResp(http.StatusOK, "text/event-stream")}},
	{http.MethodPost, "/api/play/stages/{stageID}/start", "Start stage", "Starts a round; counts toward the daily play limit." + bearerNote, stagePath{},
		[]response{okResp(game.StartResult{}), errResp(http.StatusNotFound), errResp(http.StatusLocked), errResp(http.StatusTooManyRequests)}},
	{http.MethodPost, "/api/play/stages/{stageID}/buy", "Buy stage", "Unlocks a paid stage for its price." + bearerNote, stagePath{},
		[]response{okResp(game.PurchaseResult{}), {status: http.StatusPaymentRequired, body: FundsErrorResponse{}}, errResp(http.StatusNotFound)}},

	{http.MethodGet, "/api/play/round", "Current question", "Returns the active round's question." + bearerNote, nil,
		[]response{okResp(game.Play{}), errResp(http.StatusUnprocessableEntity)}},
	{http.MethodPost, "/api/play/round/answer", "Submit answer", "Judges an option label. Re-submitting for a resolved question changes nothing." + bearerNote, AnswerRequest{},
		[]response{okResp(game.AnswerResult{}), errResp(http.StatusBadRequest), errResp(http.StatusUnprocessableEntity)}},
	{http.MethodPost, "/api/play/round/next", "Next question", "Advances past the answered question; returns the stage result after the last one." + bearerNote, nil,
		[]response{okResp(game.NextResult{}), errResp(http.StatusUnprocessableEntity)}},
	{http.MethodPost, "/api/play/round/leave", "Leave round", "Abandons the active round without rewards." + bearerNote, nil,
		[]response{okResp(game.ProfileView{})}},
	{http.MethodPost, "/api/play/round/powerups/{kind}", "Use power-up", "Buys remove2, firstLetter or skip for the current question." + bearerNote, kindPath{},
		[]response{okResp(game.PowerUpResult{}), {status: http.StatusPaymentRequired, body: FundsErrorResponse{}}, errResp(http.StatusConflict)}},

	{http.MethodPost, "/api/play/ads", "Start rewarded ad", "Issues an ad ticket for coins or an extra stage attempt." + bearerNote, AdRequest{},
		[]response{{status: http.StatusCreated, body: game.AdTicket{}}, errResp(http.StatusTooManyRequests)}},
	{http.MethodPost, "/api/play/ads/{adID}/close", "Close rewarded ad", "Grants the ad reward once the ad has run its full duration." + bearerNote, adPath{},
		[]response{okResp(game.AdResult{}), errResp(http.StatusConflict), errResp(http.StatusNotFound)}},

	{http.MethodGet, "/api/play/ws", "Profile mirror", "Upgrades to a WebSocket that streams the player's events. Pass token as query parameter.", tokenQuery{},
		[]response{streamResp(http.StatusSwitchingProtocols, "text/plain")}},

	{http.MethodPost, "/api/admin/login", "Admin login", "Authenticate with email and password. Sets admin_session cookie.", AdminLoginRequest{},
		[]response{okResp(AdminMeResponse{}), errResp(http.StatusUnauthorized)}},
	{http.MethodPost, "/api/admin/logout", "Admin logout", "Clears admin session and cookie.", nil,
		[]response{{status: http.StatusNoContent}}},
	{http.MethodGet, "/api/admin/me", "Current admin", "Returns the authenticated admin. Requires admin_session cookie.", nil,
		[]response{okResp(AdminMeResponse{}), errResp(http.StatusUnauthorized)}},
	{http.MethodGet, "/api/admin/stages", "List stages", "Returns the full catalog snapshot. Requires admin_session cookie.", nil,
		[]response{okResp(catalog.Snapshot{}), errResp(http.StatusUnauthorized)}},
	{http.MethodGet, "/api/admin/stages/{id}", "Get stage", "Returns one stage. Requires admin_session cookie.", adminStagePath{},
		[]response{okResp(game.Stage{}), errResp(http.StatusNotFound), errResp(http.StatusUnauthorized)}},
	{http.MethodPut, "/api/admin/stages/{id}", "Write stage", "Creates or replaces a stage. Options are deduplicated, the actor's name is added and the list is cut to four. Requires admin_session cookie.", adminStageWrite{},
		[]response{okResp(game.Stage{}), errResp(http.StatusBadRequest), errResp(http.StatusUnauthorized)}},
	{http.MethodDelete, "/api/admin/stages/{id}", "Delete stage", "Deletes a stage. Requires admin_session cookie.", adminStagePath{},
		[]response{{status: http.StatusNoContent}, errResp(http.StatusNotFound), errResp(http.StatusUnauthorized)}},
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Guess the Actor API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the Guess the Actor quiz game.")

	for _, op := range operations {
		oc, err := r.NewOperationContext(op.method, op.path)
		if err != nil {
			continue
		}
		oc.SetSummary(op.summary)
		oc.SetDescription(op.description)
		if op.request != nil {
			oc.AddReqStructure(op.request)
		}
		for _, resp := range op.responses {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
			if resp.ctype != "" {
				opts = append(opts, openapi.WithContentType(resp.ctype))
			}
			oc.AddRespStructure(resp.body, opts...)
		}
		_ = r.AddOperation(oc)
	}
	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
