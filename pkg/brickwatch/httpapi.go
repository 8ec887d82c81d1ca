package brickwatch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ghalamif/BrickWatch/internal/domain"
	"github.com/ghalamif/BrickWatch/internal/ports"
)

// FulfillPath is the callback selector handed to the oracle with every
// dispatched request.
const FulfillPath = "/api/fulfill"

type ctxKey int

const principalKey ctxKey = 0

// apiHandler exposes the registry over HTTP. The transport only resolves
// bearer tokens to principals; authorization stays inside the registry.
type apiHandler struct {
	reg    *Registry
	tokens map[string]domain.Principal
	obs    ports.Observability
}

// NewAPIRouter builds the node's HTTP surface. Read accessors are open to
// any caller; mutations require a token that maps to a known principal.
func NewAPIRouter(reg *Registry, tokens map[string]domain.Principal, obs ports.Observability) http.Handler {
	h := &apiHandler{reg: reg, tokens: tokens, obs: obs}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/readings", h.listReadings)
		r.Get("/readings/{channel}", h.getReading)
		r.Get("/maintenance", h.listRecords)
		r.Get("/maintenance/{index}", h.getRecord)
		r.Get("/fee", h.getFee)
		r.Get("/owner", h.getOwner)

		r.Group(func(r chi.Router) {
			r.Use(h.requirePrincipal)
			r.Post("/channels/{channel}/request", h.requestUpdate)
			r.Delete("/channels/{channel}/request", h.cancelRequest)
			r.Post("/fulfill", h.fulfill)
			r.Post("/maintenance", h.addRecord)
			r.Put("/fee", h.setFee)
			r.Put("/owner", h.transferOwnership)
		})
	})
	return r
}

func (h *apiHandler) requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		principal, ok := h.tokens[token]
		if !ok {
			writeError(w, http.StatusUnauthorized, "unknown token")
			return
		}
		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) domain.Principal {
	p, _ := r.Context().Value(principalKey).(domain.Principal)
	return p
}

func (h *apiHandler) requestUpdate(w http.ResponseWriter, r *http.Request) {
	ch, err := domain.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	id, err := h.reg.RequestUpdate(r.Context(), callerFrom(r), ch)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.obs.LogInfo("update_requested",
		ports.Field{Key: "channel", Value: ch.String()},
		ports.Field{Key: "request_id", Value: string(id)})
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": string(id)})
}

func (h *apiHandler) cancelRequest(w http.ResponseWriter, r *http.Request) {
	ch, err := domain.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.reg.CancelRequest(callerFrom(r), ch); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) fulfill(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"request_id"`
		Value     uint64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fulfillment body")
		return
	}

	if err := h.reg.Fulfill(callerFrom(r), domain.RequestID(body.RequestID), body.Value); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	h.obs.LogInfo("fulfillment_applied",
		ports.Field{Key: "request_id", Value: body.RequestID},
		ports.Field{Key: "value", Value: body.Value})
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) addRecord(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	if err := h.reg.AddRecord(callerFrom(r), body.Description); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"count": h.reg.RecordCount()})
}

func (h *apiHandler) setFee(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Fee uint64 `json:"fee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fee body")
		return
	}

	if err := h.reg.SetFee(callerFrom(r), body.Fee); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) transferOwnership(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Owner string `json:"owner"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid owner body")
		return
	}

	if err := h.reg.TransferOwnership(callerFrom(r), domain.Principal(body.Owner)); err != nil {
		h.writeRegistryError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *apiHandler) listReadings(w http.ResponseWriter, r *http.Request) {
	type reading struct {
		domain.Reading
		Name string `json:"name"`
	}
	snapshot := h.reg.Snapshot()
	out := make([]reading, len(snapshot))
	for i, s := range snapshot {
		out[i] = reading{Reading: s, Name: s.Channel.String()}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *apiHandler) getReading(w http.ResponseWriter, r *http.Request) {
	ch, err := domain.ParseChannel(chi.URLParam(r, "channel"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	reading, err := h.reg.Reading(ch)
	if err != nil {
		h.writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *apiHandler) listRecords(w http.ResponseWriter, _ *http.Request) {
	records := h.reg.Records()
	if records == nil {
		records = []domain.MaintenanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *apiHandler) getRecord(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record index")
		return
	}
	record, err := h.reg.Record(i)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *apiHandler) getFee(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]uint64{"fee": h.reg.Fee()})
}

func (h *apiHandler) getOwner(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"owner": string(h.reg.Owner())})
}

func (h *apiHandler) writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidOwner):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownChannel):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownRequest):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRequestAlreadyPending):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.obs.LogError("api_operation_failed", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
