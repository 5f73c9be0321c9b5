package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/offerlab/offerdb/internal/domain/offers"
	"github.com/offerlab/offerdb/internal/domain/packages"
	"github.com/offerlab/offerdb/internal/infra/db"
	"github.com/offerlab/offerdb/internal/repository"
)

type handlers struct {
	repo *repository.Repository
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: status})
}

// fail maps repository errors to a response. Unexpected errors are logged and hidden.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if err := h.repo.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("database ping failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("DB UNAVAILABLE"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

/* packages */

func (h *handlers) listPackages(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.Packages.List(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) packageGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.repo.Packages.Groups(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (h *handlers) getPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	p, err := h.repo.Packages.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// packagePrice answers GET /api/packages/{id}/price?type=external_academic.
func (h *handlers) packagePrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	t := packages.PriceType(r.URL.Query().Get("type")).Normalize()
	price, err := h.repo.Packages.PriceByID(r.Context(), id, t)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"package_id": id, "price_type": t, "price": price})
}

/* offers */

func (h *handlers) getOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.repo.Offers.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *handlers) offerLines(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	lines, err := h.repo.Offers.Lines(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

type discountRequest struct {
	Label      string  `json:"label" validate:"required"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

var validate = validator.New()

func (h *handlers) updateDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req discountRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, r, err)
		return
	}

	total, err := h.repo.Offers.UpdateDiscount(r.Context(), req.Label, id, req.Percentage)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"offer_id": id, "discount": req.Label, "total": total})
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *handlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, r, err)
		return
	}
	if err := h.repo.Offers.UpdateStatus(r.Context(), id, req.Status); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type lineRequest struct {
	Count          *int               `json:"count" validate:"required,gte=0"`
	PriceType      packages.PriceType `json:"price_type"`
	DiscountFactor *float64           `json:"discount_factor"`
}

// recalculateLine sets count and discount factor of one line. count is mandatory; a missing
// discount_factor means no discount.
func (h *handlers) recalculateLine(w http.ResponseWriter, r *http.Request) {
	offerID, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	packageID, ok := idParam(w, r, "packageID")
	if !ok {
		return
	}
	var req lineRequest
	if !decode(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		fail(w, r, err)
		return
	}
	factor := 1.0
	if req.DiscountFactor != nil {
		factor = *req.DiscountFactor
	}

	res, err := h.repo.Offers.RecalculateLine(r.Context(), offers.LineUpdate{
		OfferID:        offerID,
		PackageID:      packageID,
		Count:          *req.Count,
		PriceType:      req.PriceType,
		DiscountFactor: factor,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

/* projects & persons */

func (h *handlers) projectIdentifiers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.repo.Projects.Identifiers(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

type projectResponse struct {
	Identifier            string `json:"identifier"`
	ShortTitle            string `json:"short_title"`
	LongDescription       string `json:"long_description"`
	PrincipalInvestigator string `json:"principal_investigator,omitempty"`
	ClientEmail           string `json:"client_email,omitempty"`
}

func (h *handlers) getProject(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	p, err := h.repo.Projects.Get(r.Context(), ref)
	if err != nil {
		fail(w, r, err)
		return
	}
	resp := projectResponse{
		Identifier:      p.Identifier,
		ShortTitle:      p.ShortTitle,
		LongDescription: p.LongDescription,
	}

	pi, err := h.repo.Projects.PrincipalInvestigator(r.Context(), ref)
	switch {
	case err == nil:
		resp.PrincipalInvestigator = pi.FullName()
		resp.ClientEmail = pi.Email
	case !errors.Is(err, db.ErrNotFound):
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// personAddress answers GET /api/persons/address?name=Dr.+Ada+Lovelace.
func (h *handlers) personAddress(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	res, err := h.repo.AddressForPerson(r.Context(), name)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
