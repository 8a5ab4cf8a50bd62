package router

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/schema"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jiaming2012/bar-backtester/src/backtester-api/models"
	"github.com/jiaming2012/bar-backtester/src/backtester-api/services"
	"github.com/jiaming2012/bar-backtester/src/eventmodels"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func NewErrorResponse(errType string, message string) *errorResponse {
	return &errorResponse{
		Type: errType,
		Msg:  message,
	}
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	return setStatusResponse(200, response, w)
}

// setStatusResponse writes nothing when response cannot be encoded, so the
// caller is still free to send an error status.
func setStatusResponse(statusCode int, response interface{}, w http.ResponseWriter) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(response); err != nil {
		return fmt.Errorf("SetResponse: encode: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("SetResponse: write: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// CreateBacktestRequest is a backtest config. When Bars is set the run uses
// them instead of the config's data source.
type CreateBacktestRequest struct {
	eventmodels.BacktestConfigYAML
	Bars []*eventmodels.BarDTO `json:"bars,omitempty"`
}

type BacktestResponse struct {
	*services.BacktestResult
	FinalValue float64 `json:"final_value"`
	Cash       float64 `json:"cash"`
}

type HistoryQuery struct {
	Normalized bool `schema:"normalized"`
}

type HistoryResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Normalized bool                      `json:"normalized"`
	History    []models.EquityPlotRecord `json:"history"`
}

type OrdersResponse struct {
	ID      uuid.UUID                  `json:"id"`
	Records []*services.JournalRecord `json:"records"`
}

type BacktestHandler struct {
	service  *services.BacktesterApiService
	registry *services.RunRegistry
	decoder  *schema.Decoder
}

func newBacktestResponse(result *services.BacktestResult) *BacktestResponse {
	ledger := result.GetLedger()

	return &BacktestResponse{
		BacktestResult: result,
		FinalValue:     ledger.GetTotalValue(),
		Cash:           ledger.GetCash(),
	}
}

// runErrorStatus maps a failed run to the status code returned to the caller.
func runErrorStatus(err error) int {
	var webErr *eventmodels.WebError
	if errors.As(err, &webErr) {
		return webErr.StatusCode
	}

	var runErr *models.RunError
	if errors.As(err, &runErr) {
		return 422
	}

	return 500
}

func (h *BacktestHandler) createBacktest(w http.ResponseWriter, r *http.Request) {
	var req CreateBacktestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		setErrorResponse("createBacktest: failed to decode request", 400, err, w)
		return
	}

	if len(req.Bars) > 0 {
		req.DataSource = eventmodels.DataSourceYAML{Type: eventmodels.DataSourceTypeInline}
	}

	if err := req.Validate(); err != nil {
		setErrorResponse("createBacktest: invalid request", 400, err, w)
		return
	}

	var feed models.BacktesterDataFeed
	if len(req.Bars) > 0 {
		staticFeed, err := services.NewStaticBarFeed(req.GetSymbol(), req.Bars)
		if err != nil {
			setErrorResponse("createBacktest: invalid bars", 400, err, w)
			return
		}

		feed = staticFeed
	} else {
		var err error
		feed, err = h.service.NewDataFeed(&req.BacktestConfigYAML)
		if err != nil {
			setErrorResponse("createBacktest: failed to create data feed", runErrorStatus(err), err, w)
			return
		}
	}

	result, err := h.service.RunBacktest(r.Context(), &req.BacktestConfigYAML, feed)
	if result != nil {
		h.registry.Add(result)
	}

	if err != nil {
		log.WithContext(r.Context()).Errorf("createBacktest: %v", err)

		statusCode := runErrorStatus(err)
		if result == nil {
			setErrorResponse("createBacktest: failed to run backtest", statusCode, err, w)
			return
		}

		if err := setStatusResponse(statusCode, newBacktestResponse(result), w); err != nil {
			log.Errorf("createBacktest: failed to set response: %v", err)
			setErrorResponse("createBacktest: failed to set response", 500, err, w)
		}

		return
	}

	if err := setStatusResponse(201, newBacktestResponse(result), w); err != nil {
		log.Errorf("createBacktest: failed to set response: %v", err)
		setErrorResponse("createBacktest: failed to set response", 500, err, w)
	}
}

func (h *BacktestHandler) listBacktests(w http.ResponseWriter, r *http.Request) {
	results := h.registry.List()

	response := make([]*BacktestResponse, 0, len(results))
	for _, result := range results {
		response = append(response, newBacktestResponse(result))
	}

	if err := setResponse(response, w); err != nil {
		setErrorResponse("listBacktests: failed to set response", 500, err, w)
		return
	}
}

func (h *BacktestHandler) findResult(w http.ResponseWriter, r *http.Request, errType string) (*services.BacktestResult, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		setErrorResponse(errType+": failed to parse backtest id", 400, err, w)
		return nil, false
	}

	result, found := h.registry.Get(id)
	if !found {
		setErrorResponse(errType+": backtest not found", 404, fmt.Errorf("backtest %s not found", id), w)
		return nil, false
	}

	return result, true
}

func (h *BacktestHandler) getBacktest(w http.ResponseWriter, r *http.Request) {
	result, ok := h.findResult(w, r, "getBacktest")
	if !ok {
		return
	}

	if err := setResponse(newBacktestResponse(result), w); err != nil {
		setErrorResponse("getBacktest: failed to set response", 500, err, w)
		return
	}
}

func (h *BacktestHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	result, ok := h.findResult(w, r, "getHistory")
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		setErrorResponse("getHistory: failed to parse query", 400, err, w)
		return
	}

	var query HistoryQuery
	if err := h.decoder.Decode(&query, r.Form); err != nil {
		setErrorResponse("getHistory: invalid query", 400, err, w)
		return
	}

	ledger := result.GetLedger()

	history := ledger.GetHistory()
	if query.Normalized {
		history = ledger.GetEquityCurve()
	}

	response := &HistoryResponse{
		ID:         result.ID,
		Normalized: query.Normalized,
		History:    history,
	}

	if err := setResponse(response, w); err != nil {
		setErrorResponse("getHistory: failed to set response", 500, err, w)
		return
	}
}

func (h *BacktestHandler) getOrders(w http.ResponseWriter, r *http.Request) {
	result, ok := h.findResult(w, r, "getOrders")
	if !ok {
		return
	}

	response := &OrdersResponse{
		ID:      result.ID,
		Records: result.GetJournal().GetRecords(),
	}

	if err := setResponse(response, w); err != nil {
		setErrorResponse("getOrders: failed to set response", 500, err, w)
		return
	}
}

func handle(router *mux.Router, pattern string, handlerFunc http.HandlerFunc, methods ...string) {
	router.Handle(pattern, otelhttp.WithRouteTag(pattern, handlerFunc)).Methods(methods...)
}

func NewBacktestHandler(service *services.BacktesterApiService, registry *services.RunRegistry) *BacktestHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	return &BacktestHandler{
		service:  service,
		registry: registry,
		decoder:  decoder,
	}
}

func SetupHandler(router *mux.Router, service *services.BacktesterApiService, registry *services.RunRegistry) {
	h := NewBacktestHandler(service, registry)

	handle(router, "", h.createBacktest, http.MethodPost)
	handle(router, "", h.listBacktests, http.MethodGet)
	handle(router, "/{id}", h.getBacktest, http.MethodGet)
	handle(router, "/{id}/history", h.getHistory, http.MethodGet)
	handle(router, "/{id}/orders", h.getOrders, http.MethodGet)
}
