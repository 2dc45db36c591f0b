package drug

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"drugapi/internal/httpx"
)

// ListMode selects the response shape of GET /api/drugs.
type ListMode string

const (
	ListPaginated ListMode = "paginated"
	ListFlat      ListMode = "flat"
)

// HandlerOptions configure the HTTP handler.
type HandlerOptions struct {
	ListMode   ListMode
	Pagination PaginationRules
}

type HTTPHandler struct {
	service *Service
	opts    HandlerOptions
	logger  zerolog.Logger
}

func NewHTTPHandler(service *Service, opts HandlerOptions, logger zerolog.Logger) *HTTPHandler {
	if opts.ListMode == "" {
		opts.ListMode = ListPaginated
	}
	return &HTTPHandler{service: service, opts: opts, logger: logger.With().Str("component", "drug_handler").Logger()}
}

// SeedResponse is returned by a successful reseed.
type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// List handles GET /api/drugs
//
// @Summary     List drugs
// @Tags        drugs
// @Produce     json
// @Param       company query string false "Exact company name"
// @Param       page    query int    false "Page number (paginated mode)"
// @Param       limit   query int    false "Page size (paginated mode)"
// @Success     200 {object} Page
// @Failure     400 {object} httpx.ErrorResponse
// @Failure     500 {object} httpx.ErrorResponse
// @Router      /api/drugs [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	company := query.Get("company")

	if h.opts.ListMode == ListFlat {
		drugs, err := h.service.ListAll(r.Context(), company)
		if err != nil {
			h.internalError(w, r, err, "list drugs failed")
			return
		}
		httpx.JSON(w, http.StatusOK, drugs)
		return
	}

	p, err := h.opts.Pagination.Parse(query)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListPage(r.Context(), company, p)
	if err != nil {
		h.internalError(w, r, err, "list drugs failed")
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// GetByCode handles GET /api/drugs/{code}
//
// @Summary     Get a drug by code
// @Tags        drugs
// @Produce     json
// @Param       code path string true "Drug code"
// @Success     200 {object} Drug
// @Failure     404 {object} httpx.ErrorResponse
// @Failure     500 {object} httpx.ErrorResponse
// @Router      /api/drugs/{code} [get]
func (h *HTTPHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when it is set, leaving escapes such as %2F in the param.
	code := chi.URLParam(r, "code")
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(code)
		if err != nil {
			httpx.JSONError(w, http.StatusNotFound, "Drug not found")
			return
		}
		code = decoded
	}

	d, err := h.service.GetByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "Drug not found")
			return
		}
		h.internalError(w, r, err, "get drug failed")
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

// Seed handles POST /api/seed
//
// @Summary     Replace all drugs with the fixture contents
// @Tags        drugs
// @Produce     json
// @Success     200 {object} SeedResponse
// @Failure     500 {object} httpx.ErrorResponse
// @Router      /api/seed [post]
func (h *HTTPHandler) Seed(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Reseed(r.Context())
	if err != nil {
		h.internalError(w, r, err, "seed failed")
		return
	}
	h.logger.Info().Int("count", count).Str("request_id", httpx.RequestIDFrom(r)).Msg("database seeded")
	httpx.JSON(w, http.StatusOK, SeedResponse{Message: "Database seeded successfully", Count: count})
}

func (h *HTTPHandler) internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.logger.Error().Err(err).Str("request_id", httpx.RequestIDFrom(r)).Msg(msg)
	httpx.JSONError(w, http.StatusInternalServerError, err.Error())
}
