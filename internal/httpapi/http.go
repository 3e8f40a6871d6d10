package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"maidclient/internal/client"
	"maidclient/internal/identity"
	"maidclient/internal/message"
	"maidclient/internal/pending"
)

// API serves the client facade over HTTP.
type API struct {
	client *client.Client
}

// New builds the API around a client.
func New(c *client.Client) *API {
	return &API{client: c}
}

// Router returns the HTTP handler.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Post("/api/accounts", a.handleCreateAccount)
	r.Delete("/api/accounts/{name}", a.handleRemoveAccount)
	r.Post("/api/pmids", a.handleRegisterPmid)
	r.Get("/api/pmids/{name}/health", a.handlePmidHealth)
	r.Get("/api/status", a.handleStatus)

	return r
}

type accountResponse struct {
	MaidName   string `json:"maid_name"`
	AnmaidName string `json:"anmaid_name"`
	Outcome    string `json:"outcome"`
}

func (a *API) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	maid, err := identity.NewMaid()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	anmaid, err := identity.NewAnmaid()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h, err := a.client.CreateAccount(maid, anmaid, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	outcome := "created"
	if _, err := h.Await(r.Context()); err != nil {
		switch {
		case errors.Is(err, message.ErrAccountAlreadyExists):
			outcome = "already_exists"
		case errors.Is(err, pending.ErrTimeout):
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}

	writeJSON(w, http.StatusCreated, accountResponse{
		MaidName:   string(maid.Name),
		AnmaidName: string(anmaid.Name),
		Outcome:    outcome,
	})
}

func (a *API) handleRemoveAccount(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.Error(w, "missing account name", http.StatusBadRequest)
		return
	}

	h, err := a.client.RemoveAccount(identity.PublicMaid{Name: identity.MaidName(name)}, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if _, err := h.Await(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleRegisterPmid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaidName string `json:"maid_name"`
		PmidName string `json:"pmid_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.MaidName == "" || req.PmidName == "" {
		http.Error(w, "maid_name and pmid_name are required", http.StatusBadRequest)
		return
	}

	reg, err := identity.NewRegistration(identity.MaidName(req.MaidName), identity.PmidName(req.PmidName))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h, err := a.client.RegisterPmid(reg, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if _, err := h.Await(r.Context()); err != nil {
		if errors.Is(err, pending.ErrTimeout) {
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *API) handlePmidHealth(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		http.Error(w, "missing pmid name", http.StatusBadRequest)
		return
	}

	h, err := a.client.GetPmidHealth(identity.PmidName(name), 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	v, err := h.Await(r.Context())
	if err != nil {
		if errors.Is(err, pending.ErrTimeout) {
			http.Error(w, err.Error(), http.StatusGatewayTimeout)
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	size, _ := v.(uint64)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pmid_name":      name,
		"available_size": size,
		"checked_at":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pending_operations": a.client.PendingOperations(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
