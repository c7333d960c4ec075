package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/leads/internal/core"
	"github.com/JonMunkholm/leads/internal/identity"
)

// updateBody is the PUT /api/buyers/{id} payload: the full field set plus
// the updatedAt the client last saw.
type updateBody struct {
	Fields    core.BuyerInput `json:"fields"`
	UpdatedAt *time.Time      `json:"updatedAt"`
}

// buyerResponse wraps a lead for single-record endpoints.
type buyerResponse struct {
	Buyer core.Buyer `json:"buyer"`
}

func (s *Server) handleListBuyers(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.ListBuyers(r.Context(), core.ListRequest{
		Filter:   parseFilter(r),
		Page:     parseIntParam(r, "page", 1),
		PageSize: parseIntParam(r, "pageSize", core.DefaultPageSize),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	b, err := s.service.GetBuyer(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buyerResponse{Buyer: b})
}

func (s *Server) handleCreateBuyer(w http.ResponseWriter, r *http.Request) {
	var in core.BuyerInput
	if err := decodeJSON(r, &in); err != nil {
		s.respondError(w, r, err)
		return
	}

	b, err := s.service.CreateBuyer(r.Context(), in, actorID(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/buyers/"+b.ID.String())
	writeJSON(w, http.StatusCreated, buyerResponse{Buyer: b})
}

func (s *Server) handleUpdateBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var body updateBody
	if err := decodeJSON(r, &body); err != nil {
		s.respondError(w, r, err)
		return
	}
	if body.UpdatedAt == nil {
		s.respondError(w, r, badRequest("updatedAt is required"))
		return
	}

	b, err := s.service.UpdateBuyer(r.Context(), core.UpdateRequest{
		ID:       id,
		Input:    body.Fields,
		LastSeen: *body.UpdatedAt,
		ActorID:  actorID(r),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buyerResponse{Buyer: b})
}

func (s *Server) handleDeleteBuyer(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if err := s.service.DeleteBuyer(r.Context(), id, actorID(r)); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuyerHistory(w http.ResponseWriter, r *http.Request) {
	id, err := buyerID(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	entries, err := s.service.ListHistory(r.Context(), id, parseIntParam(r, "limit", 5))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// buyerID parses the {id} URL parameter.
func buyerID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badRequest("invalid buyer id")
	}
	return id, nil
}

// actorID returns the authenticated agent. Routes calling it sit behind
// RequireSession.
func actorID(r *http.Request) uuid.UUID {
	sess, _ := identity.SessionFromContext(r.Context())
	return sess.UserID
}

// parseFilter reads list and export filters from the query string.
// "q" is accepted as a short form of "search".
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("q")
	}
	return core.Filter{
		City:         q.Get("city"),
		PropertyType: q.Get("propertyType"),
		Status:       q.Get("status"),
		Timeline:     q.Get("timeline"),
		Search:       search,
	}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
