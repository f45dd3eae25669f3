// Package recaptcha проверяет ответ Google reCAPTCHA на стороне сервера.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultVerifyURL — адрес проверки токена у Google.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type verifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Client отправляет токен reCAPTCHA на проверку. Один запрос, без повторов.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
}

// New создаёт клиента с заданным секретом и таймаутом запроса.
func New(secret, verifyURL string, timeout time.Duration) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		verifyURL:  verifyURL,
		secret:     secret,
	}
}

// Verify возвращает true, если Google подтвердил токен. Пустой токен не проверяется
// и считается неуспешным.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	const op = "recaptcha.Verify"
	if strings.TrimSpace(token) == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return body.Success, nil
}
