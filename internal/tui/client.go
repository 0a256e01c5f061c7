package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/timeline/internal/controlplane"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the timeline API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

// Snapshot fetches the current revision and items
func (c *Client) Snapshot() (store.Snapshot, error) {
	var snap store.Snapshot
	if err := c.get("/items", &snap); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}

// GetItem fetches a single item
func (c *Client) GetItem(id string) (*models.Item, error) {
	var item models.Item
	if err := c.get("/items/"+url.PathEscape(id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RenameItem renames an item
func (c *Client) RenameItem(id, name string) error {
	_, err := c.post("/items/"+url.PathEscape(id)+"/rename", controlplane.RenameRequest{Name: name})
	return err
}

// RescheduleItem moves an item to new dates
func (c *Client) RescheduleItem(id, start, end string) error {
	_, err := c.post("/items/"+url.PathEscape(id)+"/reschedule", controlplane.RescheduleRequest{Start: start, End: end})
	return err
}

// Changes fetches the change log, optionally for one item
func (c *Client) Changes(itemID string, limit int) ([]models.ChangeRecord, error) {
	q := url.Values{}
	if itemID != "" {
		q.Set("item", itemID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/changes"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var changes []models.ChangeRecord
	if err := c.get(path, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// Layout fetches the encoded layout document
func (c *Client) Layout(strict bool) ([]byte, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/layout?strict=" + strconv.FormatBool(strict))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (c *Client) get(path string, v interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s", strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", strings.TrimSpace(string(body)))
	}

	return body, nil
}

// CheckHealth checks if the server is healthy
func (c *Client) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var health controlplane.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return false, err
	}

	return health.OK, nil
}
