package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"personal-budget/internal/domain"
	"personal-budget/internal/metrics"
	"personal-budget/internal/service"
)

const (
	requestTimeout      = 15 * time.Second
	maxRequestBodyBytes = 64 << 10
)

type Server struct {
	OperationService *service.OperationService
	BalanceService   *service.BalanceService
	Settings         ServerSettings
	Logger           *zap.Logger
}

type ServerSettings struct {
	AllowedOrigin  string
	MetricsEnabled bool
}

func NewServer(operationService *service.OperationService, balanceService *service.BalanceService, settings ServerSettings, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		OperationService: operationService,
		BalanceService:   balanceService,
		Settings:         settings,
		Logger:           logger,
	}
}

func (server *Server) RegisterRoutes() http.Handler {
	router := chi.NewRouter()

	router.Use(requestIdentifier)
	router.Use(middleware.RealIP)
	router.Use(server.observeRequests)
	router.Use(middleware.Recoverer)
	router.Use(corsPolicy(server.Settings.AllowedOrigin))
	router.Use(middleware.Timeout(requestTimeout))

	router.Get("/health", server.handleHealthCheck)
	router.Get("/operations", server.handleListOperations)
	router.Post("/operations", server.handleCreateOperation)
	router.Delete("/operations/{id}", server.handleDeleteOperation)
	router.Get("/balance", server.handleBalance)

	if server.Settings.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler())
	}

	return router
}

type OperationResponse struct {
	Identifier int64       `json:"id"`
	Type       string      `json:"type"`
	Amount     json.Number `json:"amount"`
	Category   string      `json:"category"`
	Date       domain.Date `json:"date"`
}

type CreateOperationRequest struct {
	Type     *string          `json:"type"`
	Amount   *decimal.Decimal `json:"amount"`
	Category *string          `json:"category"`
	Date     *domain.Date     `json:"date"`
}

type BalanceResponse struct {
	Balance json.Number `json:"balance"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func newOperationResponse(operation domain.Operation) OperationResponse {
	return OperationResponse{
		Identifier: operation.Identifier,
		Type:       string(operation.Type),
		Amount:     json.Number(operation.Amount.String()),
		Category:   operation.Category,
		Date:       operation.Date,
	}
}

func (server *Server) handleListOperations(responseWriter http.ResponseWriter, request *http.Request) {
	skip, skipError := parseNonNegativeQueryInteger(request, "skip", 0)
	if skipError != nil {
		writeError(responseWriter, http.StatusUnprocessableEntity, skipError.Error())
		return
	}

	limit, limitError := parseNonNegativeQueryInteger(request, "limit", service.DefaultListLimit)
	if limitError != nil {
		writeError(responseWriter, http.StatusUnprocessableEntity, limitError.Error())
		return
	}

	operations, listError := server.OperationService.ListOperations(request.Context(), skip, limit)
	if listError != nil {
		server.writeServiceError(responseWriter, request, listError)
		return
	}

	operationResponses := make([]OperationResponse, 0, len(operations))
	for _, operation := range operations {
		operationResponses = append(operationResponses, newOperationResponse(operation))
	}

	writeJSON(responseWriter, http.StatusOK, operationResponses)
}

func (server *Server) handleCreateOperation(responseWriter http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(responseWriter, request.Body, maxRequestBodyBytes)

	var createRequest CreateOperationRequest
	decodeError := json.NewDecoder(request.Body).Decode(&createRequest)
	if decodeError != nil {
		var syntaxError *json.SyntaxError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(decodeError, &maxBytesError):
			writeError(responseWriter, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.As(decodeError, &syntaxError) || errors.Is(decodeError, io.EOF) || errors.Is(decodeError, io.ErrUnexpectedEOF):
			writeError(responseWriter, http.StatusBadRequest, "request body must be a JSON object")
		default:
			rejectOperation(responseWriter, decodeError.Error())
		}
		return
	}

	newOperation, missingFieldError := createRequest.toNewOperation()
	if missingFieldError != nil {
		rejectOperation(responseWriter, missingFieldError.Error())
		return
	}

	createdOperation, creationError := server.OperationService.RecordOperation(request.Context(), newOperation)
	if creationError != nil {
		server.writeServiceError(responseWriter, request, creationError)
		return
	}

	writeJSON(responseWriter, http.StatusCreated, newOperationResponse(createdOperation))
}

// rejectOperation answers 422 for payloads refused before they reach the
// service, counting them with the service's own validation rejections.
func rejectOperation(responseWriter http.ResponseWriter, detail string) {
	metrics.OperationsRejected.Inc()
	writeError(responseWriter, http.StatusUnprocessableEntity, detail)
}

func (createRequest CreateOperationRequest) toNewOperation() (domain.NewOperation, error) {
	if createRequest.Type == nil {
		return domain.NewOperation{}, missingFieldError("type")
	}
	if createRequest.Amount == nil {
		return domain.NewOperation{}, missingFieldError("amount")
	}
	if createRequest.Category == nil {
		return domain.NewOperation{}, missingFieldError("category")
	}
	if createRequest.Date == nil || createRequest.Date.IsZero() {
		return domain.NewOperation{}, missingFieldError("date")
	}

	return domain.NewOperation{
		Type:     domain.OperationType(*createRequest.Type),
		Amount:   *createRequest.Amount,
		Category: *createRequest.Category,
		Date:     *createRequest.Date,
	}, nil
}

func missingFieldError(fieldName string) error {
	return errors.New("field required: " + fieldName)
}

func (server *Server) handleDeleteOperation(responseWriter http.ResponseWriter, request *http.Request) {
	identifier, parseError := strconv.ParseInt(chi.URLParam(request, "id"), 10, 64)
	if parseError != nil {
		writeError(responseWriter, http.StatusUnprocessableEntity, "id must be an integer")
		return
	}

	deletedOperation, deleteError := server.OperationService.DeleteOperation(request.Context(), identifier)
	if deleteError != nil {
		server.writeServiceError(responseWriter, request, deleteError)
		return
	}

	writeJSON(responseWriter, http.StatusOK, newOperationResponse(deletedOperation))
}

func (server *Server) handleBalance(responseWriter http.ResponseWriter, request *http.Request) {
	balance, balanceError := server.BalanceService.Balance(request.Context())
	if balanceError != nil {
		server.writeServiceError(responseWriter, request, balanceError)
		return
	}

	writeJSON(responseWriter, http.StatusOK, BalanceResponse{Balance: json.Number(balance.String())})
}

func (server *Server) handleHealthCheck(responseWriter http.ResponseWriter, request *http.Request) {
	writeJSON(responseWriter, http.StatusOK, map[string]string{"status": "ok"})
}

// writeServiceError maps the domain error taxonomy onto status codes. Storage
// failures are logged and reported without their cause.
func (server *Server) writeServiceError(responseWriter http.ResponseWriter, request *http.Request, serviceError error) {
	switch {
	case errors.Is(serviceError, domain.ErrValidation):
		writeError(responseWriter, http.StatusUnprocessableEntity, serviceError.Error())
	case errors.Is(serviceError, domain.ErrOperationNotFound):
		writeError(responseWriter, http.StatusNotFound, "Operation not found")
	default:
		server.Logger.Error("storage failure",
			zap.String("request_id", RequestIdentifierFromContext(request.Context())),
			zap.String("path", request.URL.Path),
			zap.Error(serviceError),
		)
		writeError(responseWriter, http.StatusInternalServerError, "internal server error")
	}
}

func parseNonNegativeQueryInteger(request *http.Request, parameterName string, defaultValue int) (int, error) {
	rawValue := request.URL.Query().Get(parameterName)
	if rawValue == "" {
		return defaultValue, nil
	}

	parsedValue, parseError := strconv.Atoi(rawValue)
	if parseError != nil || parsedValue < 0 {
		return 0, errors.New(parameterName + " must be a non-negative integer")
	}

	return parsedValue, nil
}

func writeJSON(responseWriter http.ResponseWriter, status int, payload any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)
	json.NewEncoder(responseWriter).Encode(payload)
}

func writeError(responseWriter http.ResponseWriter, status int, detail string) {
	writeJSON(responseWriter, status, ErrorResponse{Detail: detail})
}
