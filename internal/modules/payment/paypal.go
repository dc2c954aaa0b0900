// README: PayPal Orders v2 client: OAuth client-credentials token plus order capture.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"travelbook/internal/types"
)

const DefaultPayPalBaseURL = "https://api-m.sandbox.paypal.com"

type PayPal struct {
	baseURL  string
	clientID string
	secret   string
	client   *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

func NewPayPal(baseURL, clientID, secret string) *PayPal {
	if baseURL == "" {
		baseURL = DefaultPayPalBaseURL
	}
	return &PayPal{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					CurrencyCode string `json:"currency_code"`
					Value        string `json:"value"`
				} `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// accessToken returns a cached token, refreshing it a minute before expiry.
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expiry) {
		return p.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := p.do(req, &tr); err != nil {
		return "", fmt.Errorf("paypal token: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("paypal token: empty access token")
	}
	p.token = tr.AccessToken
	p.expiry = p.now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}

// Capture captures an order the buyer already approved on the client side.
func (p *PayPal) Capture(ctx context.Context, paypalOrderID string) (*Capture, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", p.baseURL, url.PathEscape(paypalOrderID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader("{}"))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", "capture-"+paypalOrderID)

	var cr captureResponse
	if err := p.do(req, &cr); err != nil {
		return nil, fmt.Errorf("paypal capture: %w", err)
	}

	out := &Capture{PayPalOrderID: cr.ID, Status: cr.Status}
	if len(cr.PurchaseUnits) > 0 && len(cr.PurchaseUnits[0].Payments.Captures) > 0 {
		c := cr.PurchaseUnits[0].Payments.Captures[0]
		amount, err := parseAmount(c.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("paypal capture amount %q: %w", c.Amount.Value, err)
		}
		out.CaptureID = c.ID
		out.Amount = types.Money{Amount: amount, Currency: c.Amount.CurrencyCode}
	}
	return out, nil
}

func (p *PayPal) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, out)
}

// parseAmount converts a decimal string such as "241.5" into minor units (24150).
func parseAmount(v string) (int64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(v), ".")
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid amount")
	}
	return n, nil
}
