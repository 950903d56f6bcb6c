package recipeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"recipe-planner/internal/auth"
	"recipe-planner/internal/config"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/shopping"
)

const tokenSubject = "recipe-planner-client"

var (
	// ErrNotFound matches an APIError for a missing recipe.
	ErrNotFound = errors.New("recipe not found")
	// ErrTransport wraps failures where no response was received.
	ErrTransport = errors.New("request failed")
)

// APIError is a non-2xx response from the recipe service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client is an interface for the recipe service REST API.
type Client interface {
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error)
	CreateRecipe(ctx context.Context, r recipe.Recipe) (int, error)
	UpdateRecipe(ctx context.Context, id string, r recipe.Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
	ShoppingList(ctx context.Context, req shopping.Request) ([]shopping.Item, error)
}

// restClient is the concrete implementation of the recipe service client.
type restClient struct {
	httpClient *http.Client
	baseURL    string
	secret     string
}

// NewClient creates a new recipe service client.
func NewClient(cfg *config.Config) Client {
	return &restClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.APIURL,
		secret:     cfg.APISecret,
	}
}

type createResponse struct {
	Message  string `json:"message"`
	RecipeID int    `json:"recipe_id"`
}

// ListRecipes fetches the full recipe collection.
func (c *restClient) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	var recipes []recipe.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes", nil, &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	return recipes, nil
}

// GetRecipe fetches one recipe. A missing recipe yields an error matching ErrNotFound.
func (c *restClient) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	var rec recipe.Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecipe stores a new recipe and returns its identifier.
func (c *restClient) CreateRecipe(ctx context.Context, r recipe.Recipe) (int, error) {
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/recipes", r, &resp); err != nil {
		return 0, err
	}
	return resp.RecipeID, nil
}

// UpdateRecipe replaces the stored fields of a recipe.
func (c *restClient) UpdateRecipe(ctx context.Context, id string, r recipe.Recipe) error {
	return c.do(ctx, http.MethodPut, "/recipes/"+url.PathEscape(id), r, nil)
}

// DeleteRecipe removes a recipe.
func (c *restClient) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(id), nil, nil)
}

// ShoppingList asks the service to consolidate the ingredients of the
// requested meals. With req.Email set the service also mails the list.
func (c *restClient) ShoppingList(ctx context.Context, req shopping.Request) ([]shopping.Item, error) {
	var resp shopping.Response
	if err := c.do(ctx, http.MethodPost, "/shopping", req, &resp); err != nil {
		return nil, err
	}
	if resp.ShoppingList == nil {
		resp.ShoppingList = []shopping.Item{}
	}
	return resp.ShoppingList, nil
}

func (c *restClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secret != "" {
		token, err := auth.NewToken(c.secret, tokenSubject, auth.DefaultTTL)
		if err != nil {
			return fmt.Errorf("failed to create auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr.Message = errResp.Error
	}
	return apiErr
}

// UserMessage converts a client error into the text shown to the user:
// the server's own message when it sent one, a generic message otherwise.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrTransport) {
		return "Could not reach the recipe service. Please try again."
	}
	return "Something went wrong. Please try again."
}
