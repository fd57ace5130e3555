package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrUserNotFound is returned when no auth user has the requested email
var ErrUserNotFound = errors.New("auth user not found")

const adminUsersPath = "/auth/v1/admin/users"

// AdminClient manages Supabase Auth accounts for the seed command. It is not
// part of the request path; the API only verifies tokens.
type AdminClient struct {
	supabaseURL string
	serviceKey  string
	perPage     int
	httpClient  *http.Client
}

// NewAdminClient creates a client authenticated with the service role key
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		supabaseURL: strings.TrimRight(supabaseURL, "/"),
		serviceKey:  serviceKey,
		perPage:     100,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SeedAccount describes a governor or clerk login bound to one organization
type SeedAccount struct {
	Email          string
	Password       string
	OrganizationID string
	Role           string
}

func (a SeedAccount) metadata() map[string]interface{} {
	return map[string]interface{}{
		"organization_id": a.OrganizationID,
		"role":            a.Role,
	}
}

type userPayload struct {
	Email        string                 `json:"email,omitempty"`
	Password     string                 `json:"password,omitempty"`
	EmailConfirm bool                   `json:"email_confirm,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// AdminUser is the subset of the Supabase user record the seed needs
type AdminUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

type listUsersResponse struct {
	Users []AdminUser `json:"users"`
}

// EnsureUser returns the ID of the account with acct.Email, creating it when
// missing. An existing account keeps its ID, so memberships and authored packs
// stay attached across reseeds; its password and organization metadata are
// reset to acct's values.
func (c *AdminClient) EnsureUser(ctx context.Context, acct SeedAccount) (id string, created bool, err error) {
	if acct.Email == "" {
		return "", false, errors.New("seed account needs an email")
	}

	existing, err := c.FindUser(ctx, acct.Email)
	switch {
	case err == nil:
		update := userPayload{Password: acct.Password, UserMetadata: acct.metadata()}
		if err := c.do(ctx, http.MethodPut, adminUsersPath+"/"+existing.ID, update, nil); err != nil {
			return "", false, fmt.Errorf("update user %s: %w", acct.Email, err)
		}
		return existing.ID, false, nil
	case !errors.Is(err, ErrUserNotFound):
		return "", false, err
	}

	var user AdminUser
	create := userPayload{
		Email:        acct.Email,
		Password:     acct.Password,
		EmailConfirm: true,
		UserMetadata: acct.metadata(),
	}
	if err := c.do(ctx, http.MethodPost, adminUsersPath, create, &user); err != nil {
		return "", false, fmt.Errorf("create user %s: %w", acct.Email, err)
	}
	return user.ID, true, nil
}

// FindUser pages through the admin user list looking for email. Matching is
// case-insensitive, as Supabase stores emails lowercased.
func (c *AdminClient) FindUser(ctx context.Context, email string) (*AdminUser, error) {
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(c.perPage))

		var resp listUsersResponse
		if err := c.do(ctx, http.MethodGet, adminUsersPath+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for i := range resp.Users {
			if strings.EqualFold(resp.Users[i].Email, email) {
				return &resp.Users[i], nil
			}
		}
		if len(resp.Users) < c.perPage {
			return nil, fmt.Errorf("%s: %w", email, ErrUserNotFound)
		}
	}
}

func (c *AdminClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.supabaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: status %d: %s", method, adminUsersPath, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
