package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/models"
	"github.com/creditai/pricing-service/internal/repository"
	"github.com/creditai/pricing-service/internal/service"
)

type modelStub struct {
	probability float64
}

func (s *modelStub) PredictDefault(ctx context.Context, f models.FeatureVector) (float64, error) {
	return s.probability, nil
}

type capturingNotifier struct {
	notices []string
	alerts  []string
}

func (n *capturingNotifier) Enabled() bool { return true }

func (n *capturingNotifier) SendDecisionNotice(to string, d *models.Decision) error {
	n.notices = append(n.notices, to)
	return nil
}

func (n *capturingNotifier) SendHighRiskAlert(d *models.Decision) error {
	n.alerts = append(n.alerts, d.ID)
	return nil
}

type testEnv struct {
	router   *mux.Router
	notifier *capturingNotifier
	store    *repository.FileStore
}

func newTestEnv(t *testing.T, predictor service.Predictor) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		JWTSecret:         "testsecret",
		OperatorUser:      "operator",
		OperatorPassHash:  string(hash),
		HighRiskThreshold: 0.5,
		USDINRFallback:    83,
	}

	store := repository.NewFileStore(filepath.Join(t.TempDir(), "decisions.json"), "")
	agent, err := service.NewPricingAgent(service.DefaultAgentConfig(), store, log)
	require.NoError(t, err)

	fx := service.NewFXService(nil, nil, cfg.USDINRFallback, log)
	approval := service.NewApprovalService(predictor, fx, log)
	auth := service.NewAuthService(cfg, log)
	notifier := &capturingNotifier{}

	h := NewHandler(agent, approval, fx, auth, notifier, cfg, log)
	return &testEnv{router: NewRouter(h, cfg), notifier: notifier, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) operatorToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/token", map[string]string{
		"username": "operator",
		"password": "sesame",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])
	return body["token"]
}

func pricePayload() map[string]interface{} {
	return map[string]interface{}{
		"id":            "app-1",
		"country":       "USA",
		"credit_score":  720,
		"income":        85000,
		"loan_amount":   15000,
		"existing_debt": 12000,
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPriceApplication(t *testing.T) {
	env := newTestEnv(t, nil)

	payload := pricePayload()
	payload["email"] = "alice@example.com"
	rec := env.do(t, http.MethodPost, "/api/price", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var decision models.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.NotEmpty(t, decision.ID)
	assert.Equal(t, "app-1", decision.ApplicantID)
	assert.InDelta(t, 0.1117, decision.FinalRate, 1e-9)
	assert.InDelta(t, 0.0732, decision.DefaultProbability, 1e-9)
	assert.NotEmpty(t, decision.Reasoning)

	assert.Equal(t, []string{"alice@example.com"}, env.notifier.notices)
	assert.Empty(t, env.notifier.alerts)
}

func TestPriceApplicationMissingField(t *testing.T) {
	env := newTestEnv(t, nil)

	payload := pricePayload()
	delete(payload, "credit_score")
	rec := env.do(t, http.MethodPost, "/api/price", payload, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required field: credit_score")
}

func TestPriceApplicationInvalidJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/price", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON payload")
}

func TestPriceApplicationHighRiskAlert(t *testing.T) {
	env := newTestEnv(t, nil)

	payload := pricePayload()
	payload["income"] = 0
	rec := env.do(t, http.MethodPost, "/api/price", payload, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var decision models.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))
	assert.InDelta(t, 0.99, decision.DefaultProbability, 1e-9)
	assert.Equal(t, []string{decision.ID}, env.notifier.alerts)
}

func TestGetStatistics(t *testing.T) {
	env := newTestEnv(t, nil)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/price", pricePayload(), "").Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/price", pricePayload(), "").Code)

	rec := env.do(t, http.MethodGet, "/api/statistics?window=50", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Statistics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalDecisions)
	assert.InDelta(t, 0.1117, stats.AvgFinalRate, 1e-9)
}

func TestGetStatisticsRejectsBadWindow(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/statistics?window=abc", nil, "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/statistics?window=-5", nil, "").Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/statistics", nil, "").Code)
}

func TestApproveUSAEndpoint(t *testing.T) {
	env := newTestEnv(t, &modelStub{probability: 0.15})

	req := &models.USAApprovalRequest{
		LoanAmount:         15000,
		InterestRate:       12.5,
		Grade:              "B",
		EmploymentLength:   "5 years",
		HomeOwnership:      "RENT",
		AnnualIncome:       65500,
		Purpose:            "credit_card",
		DTI:                18,
		CreditInquiries:    1,
		OpenAccounts:       6,
		RevolvingBalance:   8000,
		RevolvingUtil:      35,
		TotalAccounts:      12,
		CardType:           "Visa",
		CreditHistoryYears: 5.5,
		PaymentHistory:     service.PaymentAlwaysOnTime,
	}
	rec := env.do(t, http.MethodPost, "/api/approve/usa", req, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ApprovalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Approved)
	assert.Equal(t, "$6,772", result.CreditLimit)
	assert.Equal(t, "🟢 LOW RISK", result.RiskLevel)
}

func TestApproveIndiaEndpoint(t *testing.T) {
	env := newTestEnv(t, &modelStub{probability: 0.25})

	req := &models.IndiaApprovalRequest{
		LoanAmountINR:   830000,
		CIBILScore:      760,
		CityTier:        "Metro (Mumbai, Delhi, Bangalore)",
		AnnualIncomeINR: 4150000,
		EmploymentType:  "Salaried (MNC)",
		LoanPurpose:     "Education Loan",
		ExistingLoans:   2,
		PANVerified:     true,
		AadhaarVerified: true,
		CardType:        "RuPay",
		CreditHistory:   "3-5 years",
		PaymentHistory:  service.PaymentOccasionalLate,
	}
	rec := env.do(t, http.MethodPost, "/api/approve/india", req, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result models.ApprovalResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Approved)
	assert.Equal(t, "₹290,500", result.CreditLimit)
}

func TestApproveWithoutModelConfigured(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/approve/usa", &models.USAApprovalRequest{}, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "approval model not configured")
}

func TestGetUSDINRRate(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/rates/usd-inr", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "USD/INR", body["pair"])
	assert.Equal(t, "static", body["source"])
	assert.InDelta(t, 83, body["rate"].(float64), 1e-9)
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/auth/token", map[string]string{
		"username": "operator",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/ledger/export", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/ledger/import", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/outcomes", nil, "").Code)
}

func TestExportImportFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.operatorToken(t)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/price", pricePayload(), "").Code)

	rec := env.do(t, http.MethodPost, "/api/ledger/export", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"exported":1}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/ledger/import", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"imported":1}`, rec.Body.String())
}

func TestImportConflictOnCorruptSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.operatorToken(t)

	require.NoError(t, os.WriteFile(env.store.Path(), []byte("{broken"), 0o600))

	rec := env.do(t, http.MethodPost, "/api/ledger/import", nil, token)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledger serialization failed")
}

func TestRecordOutcome(t *testing.T) {
	env := newTestEnv(t, nil)
	token := env.operatorToken(t)

	rec := env.do(t, http.MethodPost, "/api/price", pricePayload(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var decision models.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decision))

	rec = env.do(t, http.MethodPost, "/api/outcomes", models.Outcome{
		DecisionID: decision.ID,
		Defaulted:  false,
		Profit:     1200,
	}, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"recorded"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/outcomes", models.Outcome{DecisionID: "no-such-id"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/outcomes", models.Outcome{}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required field: decision_id")
}
