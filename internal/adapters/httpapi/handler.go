package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/trebuchet-org/treb-registry/internal/domain"
	"github.com/trebuchet-org/treb-registry/internal/domain/models"
	"github.com/trebuchet-org/treb-registry/internal/usecase"
)

// maxEventsLimit caps the events returned by one request
const maxEventsLimit = 1000

// Handler serves the read-only registry API
type Handler struct {
	session *usecase.RegistrySession
	list    *usecase.ListComponents
	show    *usecase.ShowComponent
	resolve *usecase.ResolveComponent
	roles   *usecase.ManageRoles
	events  *usecase.ListEvents
	log     *slog.Logger
}

// NewHandler creates the API handler
func NewHandler(
	session *usecase.RegistrySession,
	list *usecase.ListComponents,
	show *usecase.ShowComponent,
	resolve *usecase.ResolveComponent,
	roles *usecase.ManageRoles,
	events *usecase.ListEvents,
	log *slog.Logger,
) *Handler {
	return &Handler{
		session: session,
		list:    list,
		show:    show,
		resolve: resolve,
		roles:   roles,
		events:  events,
		log:     log,
	}
}

// refresh makes every API request read the latest saved state
func (h *Handler) refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.session.Refresh()
		next.ServeHTTP(w, r)
	})
}

// HandleListComponents serves GET /api/components?kind=DIRECT|PROXIED
func (h *Handler) HandleListComponents(w http.ResponseWriter, r *http.Request) {
	kind := models.ComponentKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != models.DirectComponent && kind != models.ProxiedComponent {
		h.writeError(w, fmt.Errorf("unknown kind %q: %w", kind, domain.ErrInvalidArgument))
		return
	}
	res, err := h.list.Run(r.Context(), usecase.ListComponentsParams{Kind: kind})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleShowComponent serves GET /api/components/{name}
func (h *Handler) HandleShowComponent(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	details, err := h.show.Run(r.Context(), name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// HandleImplementation serves GET /api/components/{name}/implementation
func (h *Handler) HandleImplementation(w http.ResponseWriter, r *http.Request) {
	name, err := nameParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	res, err := h.resolve.Run(r.Context(), usecase.ResolveComponentParams{Name: name, Implementation: true})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHasRole serves GET /api/roles/{role}/{account}
func (h *Handler) HandleHasRole(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	if !common.IsHexAddress(account) {
		h.writeError(w, fmt.Errorf("invalid account %q: %w", account, domain.ErrInvalidArgument))
		return
	}
	res, err := h.roles.Run(r.Context(), usecase.ManageRolesParams{
		Action:  usecase.RoleCheck,
		Role:    domain.Role(chi.URLParam(r, "role")),
		Account: common.HexToAddress(account),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":    res.Role,
		"account": res.Account,
		"hasRole": res.HasRole,
	})
}

// HandleListEvents serves GET /api/events?type=&name=&account=&after=&limit=
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.EventFilter{
		Type:  domain.EventType(q.Get("type")),
		Name:  domain.Name(q.Get("name")),
		Limit: maxEventsLimit,
	}
	if account := q.Get("account"); account != "" {
		if !common.IsHexAddress(account) {
			h.writeError(w, fmt.Errorf("invalid account %q: %w", account, domain.ErrInvalidArgument))
			return
		}
		filter.Account = common.HexToAddress(account)
	}
	if after := q.Get("after"); after != "" {
		n, err := strconv.ParseUint(after, 10, 64)
		if err != nil {
			h.writeError(w, fmt.Errorf("invalid after %q: %w", after, domain.ErrInvalidArgument))
			return
		}
		filter.After = n
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			h.writeError(w, fmt.Errorf("invalid limit %q: %w", limit, domain.ErrInvalidArgument))
			return
		}
		filter.Limit = min(n, maxEventsLimit)
	}

	events, err := h.events.Run(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

func nameParam(r *http.Request) (domain.Name, error) {
	name := domain.Name(chi.URLParam(r, "name"))
	if err := name.Validate(); err != nil {
		return "", err
	}
	return name, nil
}

// statusFor maps registry errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWrongKind):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
