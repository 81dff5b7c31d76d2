package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/middleware"
	"github.com/creditai/pricing-service/internal/models"
	"github.com/creditai/pricing-service/internal/service"
)

// Notifier sends best-effort decision emails.
type Notifier interface {
	Enabled() bool
	SendDecisionNotice(to string, decision *models.Decision) error
	SendHighRiskAlert(decision *models.Decision) error
}

// Handler exposes the pricing, approval and ledger operations over JSON.
// One mutex serializes every agent call; the agent itself is
// single-threaded.
type Handler struct {
	mu       sync.Mutex
	agent    *service.PricingAgent
	approval *service.ApprovalService
	fx       *service.FXService
	auth     *service.AuthService
	notifier Notifier
	highRisk float64
	log      *logrus.Logger
}

// NewHandler wires the services into a handler. notifier may be nil.
func NewHandler(agent *service.PricingAgent, approval *service.ApprovalService, fx *service.FXService,
	auth *service.AuthService, notifier Notifier, cfg *config.Config, log *logrus.Logger) *Handler {
	return &Handler{
		agent:    agent,
		approval: approval,
		fx:       fx,
		auth:     auth,
		notifier: notifier,
		highRisk: cfg.HighRiskThreshold,
		log:      log,
	}
}

// NewRouter builds the full route table: public pricing and approval
// endpoints plus the JWT-guarded operator routes.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/auth/token", h.IssueToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/price", h.PriceApplication).Methods(http.MethodPost)
	api.HandleFunc("/statistics", h.GetStatistics).Methods(http.MethodGet)
	api.HandleFunc("/approve/usa", h.ApproveUSA).Methods(http.MethodPost)
	api.HandleFunc("/approve/india", h.ApproveIndia).Methods(http.MethodPost)
	api.HandleFunc("/rates/usd-inr", h.GetUSDINRRate).Methods(http.MethodGet)

	ops := r.PathPrefix("/api").Subrouter()
	ops.Use(middleware.AuthMiddleware(cfg))
	ops.HandleFunc("/ledger/export", h.ExportLedger).Methods(http.MethodPost)
	ops.HandleFunc("/ledger/import", h.ImportLedger).Methods(http.MethodPost)
	ops.HandleFunc("/outcomes", h.RecordOutcome).Methods(http.MethodPost)

	return r
}

// PriceApplication prices a credit application and records the decision.
func (h *Handler) PriceApplication(w http.ResponseWriter, r *http.Request) {
	var req models.ApplicantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	h.mu.Lock()
	decision, err := h.agent.Price(&req)
	h.mu.Unlock()
	if err != nil {
		var missing *models.MissingFieldError
		if errors.As(err, &missing) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Errorf("Pricing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "pricing failed")
		return
	}

	h.notify(req.Email, decision)
	respondJSON(w, http.StatusOK, decision)
}

// notify sends the decision emails. Failures are logged by the sender and
// never affect the response; pricing already succeeded.
func (h *Handler) notify(applicantEmail string, decision *models.Decision) {
	if h.notifier == nil || !h.notifier.Enabled() {
		return
	}
	if applicantEmail != "" {
		_ = h.notifier.SendDecisionNotice(applicantEmail, decision)
	}
	if decision.DefaultProbability >= h.highRisk {
		_ = h.notifier.SendHighRiskAlert(decision)
	}
}

// GetStatistics returns the ledger summary over the requested window.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "window must be a positive integer")
			return
		}
		window = parsed
	}

	h.mu.Lock()
	stats := h.agent.Statistics(window)
	h.mu.Unlock()

	respondJSON(w, http.StatusOK, stats)
}

// ApproveUSA runs the USA card-approval flow.
func (h *Handler) ApproveUSA(w http.ResponseWriter, r *http.Request) {
	var req models.USAApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.approval.ApproveUSA(r.Context(), &req)
	if err != nil {
		h.approvalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ApproveIndia runs the India card-approval flow.
func (h *Handler) ApproveIndia(w http.ResponseWriter, r *http.Request) {
	var req models.IndiaApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.approval.ApproveIndia(r.Context(), &req)
	if err != nil {
		h.approvalError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) approvalError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrPredictorUnavailable) {
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	h.log.Errorf("Approval failed: %v", err)
	respondError(w, http.StatusBadGateway, "approval model unavailable")
}

// GetUSDINRRate returns the working USD/INR rate and its source.
func (h *Handler) GetUSDINRRate(w http.ResponseWriter, r *http.Request) {
	rate, source := h.fx.USDINR(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pair":   "USD/INR",
		"rate":   rate,
		"source": source,
	})
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IssueToken exchanges operator credentials for a bearer token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, err := h.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ExportLedger writes the decision history to the snapshot file.
func (h *Handler) ExportLedger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := h.agent.ExportLedger()
	count := h.agent.DecisionCount()
	h.mu.Unlock()
	if err != nil {
		h.log.Errorf("Ledger export failed: %v", err)
		respondError(w, http.StatusInternalServerError, "ledger export failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"exported": count})
}

// ImportLedger replaces the in-memory history with the snapshot file.
func (h *Handler) ImportLedger(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	count, err := h.agent.ImportLedger()
	h.mu.Unlock()
	if err != nil {
		var serr *models.SerializationError
		if errors.As(err, &serr) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.log.Errorf("Ledger import failed: %v", err)
		respondError(w, http.StatusInternalServerError, "ledger import failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"imported": count})
}

// RecordOutcome reports a realized loan outcome for a past decision.
func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	var outcome models.Outcome
	if err := json.NewDecoder(r.Body).Decode(&outcome); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if outcome.DecisionID == "" {
		respondError(w, http.StatusBadRequest, "missing required field: decision_id")
		return
	}

	h.mu.Lock()
	err := h.agent.LearnFromOutcome(outcome)
	h.mu.Unlock()
	if err != nil {
		if errors.Is(err, service.ErrUnknownDecision) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Errorf("Outcome recording failed: %v", err)
		respondError(w, http.StatusInternalServerError, "outcome recording failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunExport exports the ledger under the serialization lock. Used by the
// scheduled job and the shutdown path.
func (h *Handler) RunExport() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.agent.ExportLedger()
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
