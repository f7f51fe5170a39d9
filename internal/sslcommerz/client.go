package sslcommerz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tonmoys423/teashop/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Config carries store credentials and the gateway endpoint. It is built
// once at startup and handed to NewClient; nothing here is global.
type Config struct {
	StoreID       string
	StorePassword string
	APIURL        string
	Timeout       time.Duration
}

// CallbackURLs are the four endpoints the gateway will hit with the
// outcome of the hosted payment page.
type CallbackURLs struct {
	Success string
	Fail    string
	Cancel  string
	IPN     string
}

// SessionResult is the normalized outcome of a session-creation attempt.
// Transport faults and gateway rejections both come back as Success=false
// with Error set; CreateSession never returns a Go error.
type SessionResult struct {
	Success       bool
	TransactionID string
	SessionKey    string
	GatewayURL    string
	Error         string
}

type gatewayResponse struct {
	Status         string `json:"status"`
	SessionKey     string `json:"sessionkey"`
	GatewayPageURL string `json:"GatewayPageURL"`
	FailedReason   string `json:"failedreason"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateTransactionID returns "TEA" + UTC timestamp at second granularity
// + 8 hex chars. Alphanumeric only, which the gateway requires.
func GenerateTransactionID() string {
	timestamp := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return "TEA" + timestamp + suffix
}

// CreateSession asks the gateway for a hosted-payment-page session for the
// given order. It does not touch persisted state.
func (c *Client) CreateSession(ctx context.Context, order *domain.Order, urls CallbackURLs) SessionResult {
	tranID := GenerateTransactionID()

	form := c.buildPayload(order, tranID, urls)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return SessionResult{Success: false, Error: fmt.Sprintf("network error: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "TeaShop-Go/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return SessionResult{Success: false, Error: fmt.Sprintf("network error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SessionResult{Success: false, Error: fmt.Sprintf("network error: gateway returned %s", resp.Status)}
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return SessionResult{Success: false, Error: fmt.Sprintf("network error: invalid gateway response: %v", err)}
	}

	// "SUCCESS" is the sole success signal; anything else is a rejection.
	if gw.Status != "SUCCESS" {
		reason := gw.FailedReason
		if reason == "" {
			reason = "Payment session creation failed"
		}
		return SessionResult{Success: false, Error: reason}
	}

	return SessionResult{
		Success:       true,
		TransactionID: tranID,
		SessionKey:    gw.SessionKey,
		GatewayURL:    gw.GatewayPageURL,
	}
}

// buildPayload flattens the order into the gateway's form contract: store
// credentials, amount, callbacks, customer fields duplicated into billing
// and shipping, and four opaque passthroughs (value_a..value_d) that let
// callbacks round-trip order-identifying context.
func (c *Client) buildPayload(order *domain.Order, tranID string, urls CallbackURLs) url.Values {
	cus := order.Customer

	form := url.Values{}
	form.Set("store_id", c.cfg.StoreID)
	form.Set("store_passwd", c.cfg.StorePassword)
	form.Set("total_amount", strconv.FormatFloat(order.TotalAmount, 'f', -1, 64))
	form.Set("currency", "BDT")
	form.Set("tran_id", tranID)

	form.Set("success_url", urls.Success)
	form.Set("fail_url", urls.Fail)
	form.Set("cancel_url", urls.Cancel)
	form.Set("ipn_url", urls.IPN)

	form.Set("cus_name", cus.Name)
	form.Set("cus_email", cus.Email)
	form.Set("cus_add1", cus.AddressLine1)
	form.Set("cus_add2", cus.AddressLine2)
	form.Set("cus_city", cus.City)
	form.Set("cus_state", cus.City)
	form.Set("cus_postcode", cus.PostalCode)
	form.Set("cus_country", cus.Country)
	form.Set("cus_phone", cus.Phone)
	form.Set("cus_fax", cus.Phone)

	form.Set("product_name", "Tea Shop Order")
	form.Set("product_category", "Tea Products")
	form.Set("product_profile", "general")

	form.Set("shipping_method", "YES")
	form.Set("ship_name", cus.Name)
	form.Set("ship_add1", cus.AddressLine1)
	form.Set("ship_add2", cus.AddressLine2)
	form.Set("ship_city", cus.City)
	form.Set("ship_state", cus.City)
	form.Set("ship_postcode", cus.PostalCode)
	form.Set("ship_country", cus.Country)

	form.Set("value_a", order.ID)
	form.Set("value_b", cus.Email)
	form.Set("value_c", strconv.Itoa(len(order.Items)))
	form.Set("value_d", time.Now().UTC().Format(time.RFC3339))

	return form
}
