package pharmacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rahulverma/medibill-gateway/pkg/config"
	pkgerrors "github.com/rahulverma/medibill-gateway/pkg/errors"
	"github.com/rahulverma/medibill-gateway/pkg/logger"
)

const (
	loginPath                   = "admin/login"
	recommendationPath          = "admin/medicines/recommendation"
	medicineInfoPath            = "admin/medicne_info" // upstream path spelling
	salesPath                   = "admin/sales"
	errorBodyReadLimit    int64 = 4096
	defaultRequestTimeout       = 10 * time.Second
)

var errBaseURLRequired = errors.New("pharmacy backend base url is required")

// Client wraps the upstream pharmacy backend that owns auth, medicine data,
// and the sales ledger. Every call forwards the operator's bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the pharmacy backend client.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// CandidateSummary is one row of the recommendation search response.
type CandidateSummary struct {
	MedicineID   string `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	BatchNo      string `json:"batch_no"`
}

// MedicineInfo is the authoritative detail record fetched before an item can
// join a cart: current stock, pricing, and expiry.
type MedicineInfo struct {
	MedicineID    string  `json:"medicine_id"`
	MedicineName  string  `json:"medicine_name"`
	BatchNo       string  `json:"batch_no"`
	StockQuantity int     `json:"stock_quantity"`
	PurchasePrice float64 `json:"purchase_price"`
	MRP           float64 `json:"mrp"`
	SellingPrice  float64 `json:"selling_price"`
	ExpiryDate    string  `json:"expiry_date"`
}

// SaleLine mirrors one medicine entry on the sale creation payload.
type SaleLine struct {
	MedicineID string  `json:"medicine_id"`
	Quantity   int     `json:"quantity"`
	Rate       float64 `json:"rate"`
}

// CreateSaleRequest is the payload posted to the sales endpoint.
type CreateSaleRequest struct {
	CustomerName  string     `json:"customer_name"`
	ContactNumber string     `json:"contact_number"`
	PaymentMethod string     `json:"payment_method"`
	Medicines     []SaleLine `json:"medicines"`
}

// SaleConfirmation is the upstream acknowledgement of a created sale.
type SaleConfirmation struct {
	SaleID    string `json:"sale_id"`
	InvoiceNo string `json:"invoice_no,omitempty"`
	Message   string `json:"message,omitempty"`
}

// APIError carries the upstream HTTP status and its message verbatim so the
// UI can surface exactly what the backend said.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.Status)
}

// StatusCode returns the upstream HTTP status of the failed call.
func (e *APIError) StatusCode() int {
	return e.Status
}

// LoginRequest carries the operator's credentials to the backend.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the backend's issued bearer token.
type LoginResult struct {
	Token string `json:"token"`
}

// Login exchanges operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds LoginRequest) (*LoginResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pharmacy client not configured")
	}
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	payload, err := json.Marshal(creds)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(loginPath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.log(ctx, "request", "login", map[string]any{"email": creds.Email})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute login request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapFailure(resp, "login request failed")
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode login response")
	}
	if result.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response missing token")
	}

	c.log(ctx, "response", "login", map[string]any{"email": creds.Email})
	return &result, nil
}

// Recommendations queries medicine suggestions for partial input.
func (c *Client) Recommendations(ctx context.Context, token, query string) ([]CandidateSummary, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pharmacy client not configured")
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	endpoint := c.buildURL(recommendationPath) + "?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build recommendation request")
	}
	c.authorize(req, token)

	c.log(ctx, "request", "recommendations", map[string]any{"query_len": len(query)})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute recommendation request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapFailure(resp, "recommendation request failed")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read recommendation response")
	}

	// The backend serves two shapes for this endpoint: a wrapped object and a
	// bare array. Accept both.
	var apiResp struct {
		Medicines []CandidateSummary `json:"medicines"`
	}
	if err := json.Unmarshal(raw, &apiResp); err != nil || apiResp.Medicines == nil {
		var bare []CandidateSummary
		if bareErr := json.Unmarshal(raw, &bare); bareErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, bareErr, "decode recommendation response")
		}
		apiResp.Medicines = bare
	}

	c.log(ctx, "response", "recommendations", map[string]any{"count": len(apiResp.Medicines)})
	return apiResp.Medicines, nil
}

// MedicineInfo fetches the authoritative detail record for the medicine/batch.
func (c *Client) MedicineInfo(ctx context.Context, token, medicineID string) (*MedicineInfo, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pharmacy client not configured")
	}
	trimmed := strings.TrimSpace(medicineID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "medicine id is required")
	}

	endpoint := fmt.Sprintf("%s/%s", c.buildURL(medicineInfoPath), url.PathEscape(trimmed))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build medicine info request")
	}
	c.authorize(req, token)

	c.log(ctx, "request", "medicine_info", map[string]any{"medicine_id": trimmed})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute medicine info request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapFailure(resp, "medicine info request failed")
	}

	var info MedicineInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode medicine info response")
	}
	if info.MedicineID == "" {
		info.MedicineID = trimmed
	}

	c.log(ctx, "response", "medicine_info", map[string]any{
		"medicine_id": trimmed,
		"stock":       info.StockQuantity,
	})
	return &info, nil
}

// CreateSale posts the assembled bill to the sales ledger.
func (c *Client) CreateSale(ctx context.Context, token string, sale CreateSaleRequest) (*SaleConfirmation, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pharmacy client not configured")
	}
	if len(sale.Medicines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale requires at least one medicine")
	}

	payload, err := json.Marshal(sale)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal sale request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(salesPath), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build sale request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, token)

	c.log(ctx, "request", "create_sale", map[string]any{
		"line_count":     len(sale.Medicines),
		"payment_method": sale.PaymentMethod,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute sale request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.mapFailure(resp, "sale request failed")
	}

	var confirmation SaleConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode sale response")
	}

	c.log(ctx, "response", "create_sale", map[string]any{"sale_id": confirmation.SaleID})
	return &confirmation, nil
}

// Ping verifies the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("pharmacy client not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authorize(req *http.Request, token string) {
	trimmed := strings.TrimSpace(token)
	if trimmed != "" {
		req.Header.Set("Authorization", "Bearer "+trimmed)
	}
}

// mapFailure converts a non-2xx upstream response into a typed error. A 401
// maps to unauthorized so callers can clear the session; everything else is a
// dependency failure carrying the upstream message verbatim.
func (c *Client) mapFailure(resp *http.Response, context string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))

	message := ""
	var apiResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &apiResp); err == nil {
		if apiResp.Message != "" {
			message = apiResp.Message
		} else if apiResp.Error != "" {
			message = apiResp.Error
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	apiErr := &APIError{Status: resp.StatusCode, Message: message}

	if resp.StatusCode == http.StatusUnauthorized {
		unauthorizedMsg := "session rejected by backend"
		if message != "" {
			unauthorizedMsg = message
		}
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, apiErr, unauthorizedMsg)
	}

	wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, context)
	if message != "" {
		// Surface the backend's own message to the UI untouched.
		wrapped = pkgerrors.Wrap(pkgerrors.CodeDependency, apiErr, message)
	}
	return wrapped
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{"phase": phase, "operation": operation}
	for k, v := range fields {
		merged[k] = v
	}
	c.logger.Info(c.logger.WithFields(ctx, merged), "pharmacy."+operation)
}
