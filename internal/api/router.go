package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"money-manager-backend/internal/config"
	"money-manager-backend/internal/models"
)

var (
	errEmptyID      = errors.New("empty id")
	errEmptyName    = errors.New("empty name")
	errMissingParam = errors.New("missing required parameter")
	errJSONDecode   = fmt.Errorf("%w: json body invalid", models.ErrBadRequest)
)

type TokenService interface {
	GenerateToken(ctx context.Context, username string, isAdmin bool) (string, error)
}

type StatisticsService interface {
	GetWalletStats(ctx context.Context, walletID string) (*models.WalletStats, error)
	GetWallets(ctx context.Context) ([]models.Wallet, error)
	ReconstructWalletBalance(ctx context.Context, wallet models.Wallet) (models.Wallet, error)
	GetMonthlyStats(ctx context.Context, year int, month time.Month) (*models.MonthlyStats, error)
	GetAnnualStats(ctx context.Context, year int) ([]models.AnnualStat, error)
	GetCategoryStats(ctx context.Context, year int, month time.Month, categoryType string) (*models.CategoryStatsResponse, error)
	GetCategory(ctx context.Context, id string) (*models.CategoryWithAmount, error)
}

type WalletsService interface {
	CreateWallet(ctx context.Context, wallet models.Wallet) (*models.Wallet, error)
	GetWallet(ctx context.Context, id string) (models.Wallet, error)
	UpdateWallet(ctx context.Context, id string, wallet models.Wallet) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, id string) error
}

type CategoriesService interface {
	CreateCategory(ctx context.Context, category models.Category) (*models.Category, error)
	GetCategories(ctx context.Context, typeFilter string) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id string, category models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type TransactionsService interface {
	FindTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (models.Transaction, error)
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, req models.CreateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

type Router struct {
	*http.Server
	router *http.ServeMux

	tokenService        TokenService
	statisticsService   StatisticsService
	walletsService      WalletsService
	categoriesService   CategoriesService
	transactionsService TransactionsService

	logger *zap.SugaredLogger
}

func NewRouter(
	cfg config.ServerOpts,
	tokenService TokenService,
	statisticsService StatisticsService,
	walletsService WalletsService,
	categoriesService CategoriesService,
	transactionsService TransactionsService,
	authMiddleware func(next http.HandlerFunc) http.HandlerFunc,
	loggingMiddleware func(next http.HandlerFunc) http.HandlerFunc,
	logger *zap.SugaredLogger,
) *Router {
	innerRouter := http.NewServeMux()

	appRouter := &Router{
		Server: &http.Server{
			Handler:      cors.AllowAll().Handler(innerRouter),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		router:              innerRouter,
		tokenService:        tokenService,
		statisticsService:   statisticsService,
		walletsService:      walletsService,
		categoriesService:   categoriesService,
		transactionsService: transactionsService,
		logger:              logger,
	}

	protected := func(handler http.HandlerFunc) http.HandlerFunc {
		return authMiddleware(loggingMiddleware(handler))
	}

	innerRouter.HandleFunc("POST /createToken", protected(appRouter.createToken))
	innerRouter.HandleFunc("POST /createAdminToken", protected(appRouter.createAdminToken))

	// Wallets
	innerRouter.HandleFunc("GET /api/wallets", protected(appRouter.getWallets))
	innerRouter.HandleFunc("POST /api/wallets", protected(appRouter.createWallet))
	innerRouter.HandleFunc("GET /api/wallets/{id}", protected(appRouter.getWallet))
	innerRouter.HandleFunc("PUT /api/wallets/{id}", protected(appRouter.updateWallet))
	innerRouter.HandleFunc("DELETE /api/wallets/{id}", protected(appRouter.deleteWallet))
	innerRouter.HandleFunc("GET /api/wallets/{id}/stats", protected(appRouter.getWalletStats))

	// Categories
	innerRouter.HandleFunc("GET /api/categories", protected(appRouter.getCategories))
	innerRouter.HandleFunc("POST /api/categories", protected(appRouter.createCategory))
	innerRouter.HandleFunc("GET /api/categories/{id}", protected(appRouter.getCategory))
	innerRouter.HandleFunc("PUT /api/categories/{id}", protected(appRouter.updateCategory))
	innerRouter.HandleFunc("DELETE /api/categories/{id}", protected(appRouter.deleteCategory))

	// Transactions
	innerRouter.HandleFunc("GET /api/transactions", protected(appRouter.getTransactions))
	innerRouter.HandleFunc("POST /api/transactions", protected(appRouter.createTransaction))
	innerRouter.HandleFunc("GET /api/transactions/{id}", protected(appRouter.getTransaction))
	innerRouter.HandleFunc("PUT /api/transactions/{id}", protected(appRouter.updateTransaction))
	innerRouter.HandleFunc("DELETE /api/transactions/{id}", protected(appRouter.deleteTransaction))

	// Statistics
	innerRouter.HandleFunc("GET /api/statistics/monthly", protected(appRouter.getMonthlyStats))
	innerRouter.HandleFunc("GET /api/statistics/annual", protected(appRouter.getAnnualStats))
	innerRouter.HandleFunc("GET /api/statistics/categories", protected(appRouter.getCategoryStats))

	// Health check endpoint
	innerRouter.HandleFunc("GET /api/health", appRouter.healthCheck)

	innerRouter.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		_, _ = writer.Write([]byte(`{"status": "fail", "message": "No routes defined"}`))
	})

	return appRouter
}

func (r *Router) sendResponse(response http.ResponseWriter, request *http.Request, code int, payload any) {
	buf, err := json.Marshal(payload)
	if err != nil {
		r.sendErrorResponse(response, request, fmt.Errorf("%w: %w", models.ErrInternalServer, err))
		return
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(code)

	if _, err := response.Write(buf); err != nil {
		r.logger.With(
			"module", "api",
			"request_url", request.Method+": "+request.URL.Path,
		).Errorf("Error sending response: %v", err)
	}
}

func (r *Router) sendErrorResponse(response http.ResponseWriter, request *http.Request, err error) {
	code := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrBadRequest):
		code = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, models.ErrUnauthorized):
		code = http.StatusUnauthorized
	}

	requestLogger := r.logger.With(
		"module", "api",
		"request_url", request.Method+": "+request.URL.Path,
	)

	// Клиентские ошибки - warn, серверные - error
	if code == http.StatusInternalServerError {
		requestLogger.Error(err)
	} else {
		requestLogger.Warn(err)
	}

	status := "fail"
	if code == http.StatusInternalServerError {
		status = "error"
	}

	body := map[string]string{"status": status, "message": err.Error()}

	result, marshalErr := json.Marshal(body)
	if marshalErr != nil {
		requestLogger.Errorf("Error marshalling error body: %v", marshalErr)
	}

	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(code)

	if _, writeErr := response.Write(result); writeErr != nil {
		requestLogger.Errorf("Error sending error response: %v", writeErr)
	}
}

// Wallets

func (r *Router) getWallets(writer http.ResponseWriter, request *http.Request) {
	wallets, err := r.statisticsService.GetWallets(request.Context())
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetWallets: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, wallets)
}

func (r *Router) createWallet(writer http.ResponseWriter, request *http.Request) {
	var requestBody models.Wallet

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	wallet, err := r.walletsService.CreateWallet(request.Context(), requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("CreateWallet: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusCreated, wallet)
}

func (r *Router) getWallet(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	wallet, err := r.walletsService.GetWallet(request.Context(), id)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetWallet: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, wallet)
}

// updateWallet обновляет кошелёк и возвращает его с восстановленным балансом
func (r *Router) updateWallet(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	var requestBody models.Wallet

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	wallet, err := r.walletsService.UpdateWallet(request.Context(), id, requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("UpdateWallet: %w", err))
		return
	}

	reconstructed, err := r.statisticsService.ReconstructWalletBalance(request.Context(), *wallet)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("ReconstructWalletBalance: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, reconstructed)
}

func (r *Router) deleteWallet(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	if err := r.walletsService.DeleteWallet(request.Context(), id); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("DeleteWallet: %w", err))
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

func (r *Router) getWalletStats(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	stats, err := r.statisticsService.GetWalletStats(request.Context(), id)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetWalletStats: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, stats)
}

// Categories

func (r *Router) getCategories(writer http.ResponseWriter, request *http.Request) {
	typeFilter := request.URL.Query().Get("type")

	categories, err := r.categoriesService.GetCategories(request.Context(), typeFilter)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetCategories: %w", err))
		return
	}

	if len(categories) == 0 {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: no categories information", models.ErrNotFound))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, categories)
}

func (r *Router) createCategory(writer http.ResponseWriter, request *http.Request) {
	var requestBody models.Category

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	category, err := r.categoriesService.CreateCategory(request.Context(), requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("CreateCategory: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusCreated, category)
}

// getCategory возвращает категорию вместе с суммой её транзакций
func (r *Router) getCategory(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	category, err := r.statisticsService.GetCategory(request.Context(), id)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetCategory: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, category)
}

func (r *Router) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	var requestBody models.Category

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	category, err := r.categoriesService.UpdateCategory(request.Context(), id, requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("UpdateCategory: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, category)
}

func (r *Router) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	if err := r.categoriesService.DeleteCategory(request.Context(), id); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("DeleteCategory: %w", err))
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// Transactions

func (r *Router) getTransactions(writer http.ResponseWriter, request *http.Request) {
	filter := models.TransactionFilter{
		Wallet:   request.URL.Query().Get("wallet"),
		Category: request.URL.Query().Get("category"),
		Status:   request.URL.Query().Get("status"),
	}

	if createdAt := request.URL.Query().Get("createdAt"); createdAt != "" {
		date, err := models.ParseDate(createdAt)
		if err != nil {
			r.sendErrorResponse(writer, request, fmt.Errorf("%w: invalid createdAt format: %w", models.ErrBadRequest, err))
			return
		}

		filter.CreatedAt = date
	}

	transactions, err := r.transactionsService.FindTransactions(request.Context(), filter)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("FindTransactions: %w", err))
		return
	}

	if len(transactions) == 0 {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: no transactions information", models.ErrNotFound))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, transactions)
}

func (r *Router) createTransaction(writer http.ResponseWriter, request *http.Request) {
	var requestBody models.CreateTransactionRequest

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	transaction, err := r.transactionsService.CreateTransaction(request.Context(), requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("CreateTransaction: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusCreated, transaction)
}

func (r *Router) getTransaction(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	transaction, err := r.transactionsService.GetTransaction(request.Context(), id)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetTransaction: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, transaction)
}

func (r *Router) updateTransaction(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	var requestBody models.CreateTransactionRequest

	if err := json.NewDecoder(request.Body).Decode(&requestBody); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", errJSONDecode, err))
		return
	}

	transaction, err := r.transactionsService.UpdateTransaction(request.Context(), id, requestBody)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("UpdateTransaction: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, transaction)
}

func (r *Router) deleteTransaction(writer http.ResponseWriter, request *http.Request) {
	id := request.PathValue("id")
	if id == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyID))
		return
	}

	if err := r.transactionsService.DeleteTransaction(request.Context(), id); err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("DeleteTransaction: %w", err))
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// Statistics

func (r *Router) getMonthlyStats(writer http.ResponseWriter, request *http.Request) {
	year, err := getYearParameter(request)
	if err != nil {
		r.sendErrorResponse(writer, request, err)
		return
	}

	month, err := getMonthParameter(request)
	if err != nil {
		r.sendErrorResponse(writer, request, err)
		return
	}

	stats, err := r.statisticsService.GetMonthlyStats(request.Context(), year, month)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetMonthlyStats: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, stats)
}

func (r *Router) getAnnualStats(writer http.ResponseWriter, request *http.Request) {
	year, err := getYearParameter(request)
	if err != nil {
		r.sendErrorResponse(writer, request, err)
		return
	}

	stats, err := r.statisticsService.GetAnnualStats(request.Context(), year)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetAnnualStats: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, stats)
}

func (r *Router) getCategoryStats(writer http.ResponseWriter, request *http.Request) {
	year, err := getYearParameter(request)
	if err != nil {
		r.sendErrorResponse(writer, request, err)
		return
	}

	month, err := getMonthParameter(request)
	if err != nil {
		r.sendErrorResponse(writer, request, err)
		return
	}

	categoryType := request.URL.Query().Get("type")
	if categoryType == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w: type", models.ErrBadRequest, errMissingParam))
		return
	}

	stats, err := r.statisticsService.GetCategoryStats(request.Context(), year, month, categoryType)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GetCategoryStats: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, stats)
}

// Tokens

func (r *Router) createToken(writer http.ResponseWriter, request *http.Request) {
	r.generateToken(writer, request, false)
}

func (r *Router) createAdminToken(writer http.ResponseWriter, request *http.Request) {
	r.generateToken(writer, request, true)
}

func (r *Router) generateToken(writer http.ResponseWriter, request *http.Request, isAdmin bool) {
	name := request.URL.Query().Get("name")
	if name == "" {
		r.sendErrorResponse(writer, request, fmt.Errorf("%w: %w", models.ErrBadRequest, errEmptyName))
		return
	}

	token, err := r.tokenService.GenerateToken(request.Context(), name, isAdmin)
	if err != nil {
		r.sendErrorResponse(writer, request, fmt.Errorf("GenerateToken: %w", err))
		return
	}

	r.sendResponse(writer, request, http.StatusOK, TokenResponse{Token: token})
}

func (r *Router) healthCheck(writer http.ResponseWriter, _ *http.Request) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)

	_, _ = writer.Write([]byte(`{"status": "ok"}`))
}

// Параметры периода приходят строками; нечисловые и отсутствующие значения -
// ошибка клиента до обращения к хранилищу.

func getYearParameter(request *http.Request) (int, error) {
	parameter := request.URL.Query().Get("year")
	if parameter == "" {
		return 0, fmt.Errorf("%w: %w: year", models.ErrBadRequest, errMissingParam)
	}

	year, err := strconv.Atoi(parameter)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid year %q: %w", models.ErrBadRequest, parameter, err)
	}

	if year <= 0 {
		return 0, fmt.Errorf("%w: invalid year %d", models.ErrBadRequest, year)
	}

	return year, nil
}

func getMonthParameter(request *http.Request) (time.Month, error) {
	parameter := request.URL.Query().Get("month")
	if parameter == "" {
		return 0, fmt.Errorf("%w: %w: month", models.ErrBadRequest, errMissingParam)
	}

	month, err := strconv.Atoi(parameter)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid month %q: %w", models.ErrBadRequest, parameter, err)
	}

	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month must be between 1 and 12, got %d", models.ErrBadRequest, month)
	}

	return time.Month(month), nil
}
