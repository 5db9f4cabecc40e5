// collab-service/internal/client/user_client.go

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// UserClient talks to the auth and user services. Authentication itself is
// out of scope here; the collaboration layer only consumes the resulting
// identity.
type UserClient interface {
	ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error)
	GetUserInfo(ctx context.Context, userID, token string) (*UserInfo, error)
}

type userClient struct {
	baseURL     string
	authBaseURL string // auth-service URL for token validation
	httpClient  *http.Client
}

type TokenValidationResponse struct {
	UserID  string `json:"userId"`
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type UserInfo struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	NickName        string `json:"nickName,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

func NewUserClient(baseURL string, authBaseURL string, timeout time.Duration) UserClient {
	return &userClient{
		baseURL:     baseURL,
		authBaseURL: authBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateToken delegates token validation to the auth service.
func (c *userClient) ValidateToken(ctx context.Context, token string) (*TokenValidationResponse, error) {
	var result TokenValidationResponse
	err := c.doJSON(ctx, http.MethodPost, c.authBaseURL+"/api/auth/validate",
		map[string]string{"token": token}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("token validation: %w", err)
	}
	return &result, nil
}

// GetUserInfo fetches the identity fields shown to collaborators.
func (c *userClient) GetUserInfo(ctx context.Context, userID, token string) (*UserInfo, error) {
	var result UserInfo
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("%s/users/%s", c.baseURL, userID),
		nil, token, &result)
	if err != nil {
		return nil, fmt.Errorf("get user info: %w", err)
	}
	return &result, nil
}

// doJSON performs one JSON request/response round trip. A non-200 status is
// an error carrying the response body.
func (c *userClient) doJSON(ctx context.Context, method, url string, body any, bearer string, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
