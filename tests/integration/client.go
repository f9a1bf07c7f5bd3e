package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"kassa/internal/models"
)

// TestClient provides methods for testing a running API instance
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewTestClient creates a new test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// HealthCheck verifies the API is up
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 from /health, got %d", resp.StatusCode)
	}
}

// Register creates a fresh account and stores its token on the client
func (c *TestClient) Register(t *testing.T, email, password string) *models.TokenResponse {
	req := models.RegisterRequest{
		FirstName: "Integration",
		LastName:  "Test",
		Email:     email,
		Password:  password,
	}

	resp := c.makeRequest(t, "POST", "/api/auth/register", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var tokenResp models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}

	c.Token = tokenResp.AccessToken
	return &tokenResp
}

// Login authenticates and stores the token on the client
func (c *TestClient) Login(t *testing.T, email, password string) *models.TokenResponse {
	req := models.LoginRequest{Email: email, Password: password}

	resp := c.makeRequest(t, "POST", "/api/auth/login", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var tokenResp models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("Failed to decode login response: %v", err)
	}

	c.Token = tokenResp.AccessToken
	return &tokenResp
}

// Me fetches the authenticated account
func (c *TestClient) Me(t *testing.T) *models.Account {
	resp := c.makeRequest(t, "GET", "/api/user/me", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 from /api/user/me, got %d", resp.StatusCode)
	}

	var account models.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		t.Fatalf("Failed to decode account response: %v", err)
	}

	return &account
}

// ListEvents lists the public catalog
func (c *TestClient) ListEvents(t *testing.T) []models.Event {
	resp := c.makeRequest(t, "GET", "/api/events", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var events []models.Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("Failed to decode events response: %v", err)
	}

	return events
}

// GetEvent fetches a single public event
func (c *TestClient) GetEvent(t *testing.T, id string) *models.Event {
	resp := c.makeRequest(t, "GET", "/api/events/"+id, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 for event %s, got %d", id, resp.StatusCode)
	}

	var event models.Event
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		t.Fatalf("Failed to decode event response: %v", err)
	}

	return &event
}

// ValidateCoupon checks a coupon code against an event
func (c *TestClient) ValidateCoupon(t *testing.T, code, eventID string) *models.CouponValidation {
	req := models.ValidateCouponRequest{CouponCode: code, EventID: eventID}

	resp := c.makeRequest(t, "POST", "/api/validate-coupon", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var result models.CouponValidation
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode coupon validation: %v", err)
	}

	return &result
}

// PurchaseTickets buys tickets for an event
func (c *TestClient) PurchaseTickets(t *testing.T, req models.PurchaseRequest) *models.PurchaseResponse {
	resp := c.makeRequest(t, "POST", "/api/purchase-tickets", req)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var purchase models.PurchaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&purchase); err != nil {
		t.Fatalf("Failed to decode purchase response: %v", err)
	}

	return &purchase
}

// GetTicket fetches a ticket by ID
func (c *TestClient) GetTicket(t *testing.T, id string) *models.Ticket {
	resp := c.makeRequest(t, "GET", "/api/tickets/"+id, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var ticket models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		t.Fatalf("Failed to decode ticket response: %v", err)
	}

	return &ticket
}

// MyTickets lists the authenticated account's tickets
func (c *TestClient) MyTickets(t *testing.T) []models.Ticket {
	resp := c.makeRequest(t, "GET", "/api/user/tickets", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var tickets []models.Ticket
	if err := json.NewDecoder(resp.Body).Decode(&tickets); err != nil {
		t.Fatalf("Failed to decode tickets response: %v", err)
	}

	return tickets
}

// GetSignals fetches the indicator snapshot for a symbol
func (c *TestClient) GetSignals(t *testing.T, symbol string) *models.SignalReport {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/signals/%s?interval=1h", symbol), nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(body))
	}

	var report models.SignalReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode signals response: %v", err)
	}

	return &report
}
