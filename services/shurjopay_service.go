package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// ShurjoPayConfig holds shurjoPay merchant configuration.
type ShurjoPayConfig struct {
	Username  string
	Password  string
	BaseURL   string
	Prefix    string
	ReturnURL string
	CancelURL string
}

// ShurjoPayService talks to the shurjoPay REST API: one call to initiate a
// checkout session, one to verify a payment. It never synthesizes a payment
// result: transport failures surface as ErrGatewayUnavailable and definitive
// refusals as ErrGatewayRejected.
type ShurjoPayService struct {
	config     *ShurjoPayConfig
	httpClient *http.Client
}

var (
	shurjoPayService *ShurjoPayService
	shurjoPayOnce    sync.Once
)

// GetShurjoPayService returns the singleton instance configured from the
// environment. Sandbox credentials are used when nothing is configured.
func GetShurjoPayService() *ShurjoPayService {
	shurjoPayOnce.Do(func() {
		username := os.Getenv("SP_USERNAME")
		password := os.Getenv("SP_PASSWORD")
		baseURL := os.Getenv("SP_ENDPOINT")
		prefix := os.Getenv("SP_PREFIX")
		returnURL := os.Getenv("SP_RETURN_URL")
		cancelURL := os.Getenv("SP_CANCEL_URL")

		if username == "" {
			fmt.Println("WARNING: SP_USERNAME is empty, using sandbox credentials")
			username = "sp_sandbox"
		}
		if password == "" {
			password = "pyyk97hu&6u6"
		}
		if baseURL == "" {
			baseURL = "https://sandbox.shurjopayment.com"
		}
		if prefix == "" {
			prefix = "sp"
		}
		if returnURL == "" {
			returnURL = "https://example.com/orders/verify"
		}
		if cancelURL == "" {
			cancelURL = "https://example.com/orders/cancelled"
		}

		shurjoPayService = &ShurjoPayService{
			config: &ShurjoPayConfig{
				Username:  username,
				Password:  password,
				BaseURL:   baseURL,
				Prefix:    prefix,
				ReturnURL: returnURL,
				CancelURL: cancelURL,
			},
			httpClient: &http.Client{
				Timeout: 30 * time.Second,
			},
		}
	})
	return shurjoPayService
}

// NewShurjoPayService creates an instance with explicit configuration.
func NewShurjoPayService(config *ShurjoPayConfig) *ShurjoPayService {
	return &ShurjoPayService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig checks that every required field is set.
func (s *ShurjoPayService) ValidateConfig() error {
	if s.config.Username == "" {
		return fmt.Errorf("SP_USERNAME is not set")
	}
	if s.config.Password == "" {
		return fmt.Errorf("SP_PASSWORD is not set")
	}
	if s.config.BaseURL == "" {
		return fmt.Errorf("SP_ENDPOINT is not set")
	}
	if s.config.Prefix == "" {
		return fmt.Errorf("SP_PREFIX is not set")
	}
	if s.config.ReturnURL == "" {
		return fmt.Errorf("SP_RETURN_URL is not set")
	}
	if s.config.CancelURL == "" {
		return fmt.Errorf("SP_CANCEL_URL is not set")
	}
	return nil
}

// InitiatePaymentRequest is the order-side payload for a checkout session.
type InitiatePaymentRequest struct {
	OrderID       string
	Amount        float64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	City          string
	ZipCode       string
	ClientIP      string
}

// InitiateResult carries the gateway's answer to an initiate call.
type InitiateResult struct {
	CheckoutURL string
	SPOrderID   string
	RawStatus   string
}

// PaymentResult carries the gateway's answer to a verify call. Field names on
// the wire (bank_status, sp_code, ...) are the processor's contract.
type PaymentResult struct {
	SPOrderID         string  `json:"order_id"`
	TransactionStatus string  `json:"transaction_status"`
	BankStatus        string  `json:"bank_status"`
	SPCode            string  `json:"sp_code"`
	SPMessage         string  `json:"sp_message"`
	Method            string  `json:"method"`
	DateTime          string  `json:"date_time"`
	Amount            float64 `json:"amount"`
}

type spToken struct {
	Token      string `json:"token"`
	StoreID    int    `json:"store_id"`
	ExecuteURL string `json:"execute_url"`
	TokenType  string `json:"token_type"`
	SPCode     string `json:"sp_code"`
	Message    string `json:"message"`
}

// InitiatePayment creates a checkout session and returns the URL the customer
// is redirected to.
func (s *ShurjoPayService) InitiatePayment(req InitiatePaymentRequest) (*InitiateResult, error) {
	token, err := s.getToken()
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"token":              token.Token,
		"store_id":           token.StoreID,
		"prefix":             s.config.Prefix,
		"currency":           "BDT",
		"return_url":         s.config.ReturnURL,
		"cancel_url":         s.config.CancelURL,
		"amount":             req.Amount,
		"order_id":           req.OrderID,
		"customer_name":      req.CustomerName,
		"customer_email":     req.CustomerEmail,
		"customer_phone":     req.CustomerPhone,
		"customer_address":   req.Address,
		"customer_city":      req.City,
		"customer_post_code": req.ZipCode,
		"client_ip":          req.ClientIP,
	}

	body, err := s.post("/api/secret-pay", token.Token, payload)
	if err != nil {
		return nil, err
	}

	var resp struct {
		CheckoutURL       string `json:"checkout_url"`
		SPOrderID         string `json:"sp_order_id"`
		TransactionStatus string `json:"transactionStatus"`
		Message           string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed initiate response: %v", ErrGatewayUnavailable, err)
	}
	if resp.CheckoutURL == "" || resp.SPOrderID == "" {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.Message)
	}

	return &InitiateResult{
		CheckoutURL: resp.CheckoutURL,
		SPOrderID:   resp.SPOrderID,
		RawStatus:   resp.TransactionStatus,
	}, nil
}

// VerifyPayment fetches the settlement result for a gateway order id. Safe to
// call repeatedly; the gateway returns the same settled record each time.
func (s *ShurjoPayService) VerifyPayment(spOrderID string) (*PaymentResult, error) {
	token, err := s.getToken()
	if err != nil {
		return nil, err
	}

	body, err := s.post("/api/verification", token.Token, map[string]interface{}{
		"order_id": spOrderID,
	})
	if err != nil {
		return nil, err
	}

	// The verification endpoint answers with a single-element array.
	var results []PaymentResult
	if err := json.Unmarshal(body, &results); err != nil {
		var single PaymentResult
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return nil, fmt.Errorf("%w: malformed verification response: %v", ErrGatewayUnavailable, err)
		}
		results = []PaymentResult{single}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no verification record for %s", ErrGatewayRejected, spOrderID)
	}

	return &results[0], nil
}

func (s *ShurjoPayService) getToken() (*spToken, error) {
	body, err := s.post("/api/get_token", "", map[string]interface{}{
		"username": s.config.Username,
		"password": s.config.Password,
	})
	if err != nil {
		return nil, err
	}

	var token spToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", ErrGatewayUnavailable, err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, token.Message)
	}
	return &token, nil
}

// post sends one JSON request and classifies the failure modes: transport
// errors and 5xx mean the outcome is unknown (unavailable), 4xx means the
// processor said no (rejected).
func (s *ShurjoPayService) post(path, bearer string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: shurjoPay API error %d: %s", ErrGatewayUnavailable, resp.StatusCode, string(body))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: shurjoPay API error %d: %s", ErrGatewayRejected, resp.StatusCode, string(body))
	}

	return body, nil
}
