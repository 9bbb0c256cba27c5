package client

// http_client.go = HTTP client for the portalctl admin commands.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"portalhub/internal/notification"
)

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Request/response structures for the notification API.

type SendNotificationRequest struct {
	Token            string `json:"token"`
	NotificationType string `json:"notificationType,omitempty"`
	Title            string `json:"title,omitempty"`
	Message          string `json:"message,omitempty"`
	Duration         int64  `json:"duration,omitempty"`
	DisplayDuration  int    `json:"displayDuration,omitempty"`
	Priority         string `json:"priority,omitempty"`
}

type SendNotificationResponse struct {
	Success         bool   `json:"success"`
	NotificationID  string `json:"notificationId"`
	ClientsNotified int    `json:"clientsNotified"`
}

type ActiveNotificationsResponse struct {
	Notifications []notification.Notification `json:"notifications"`
}

type StatusResponse struct {
	Status              string  `json:"status"`
	ConnectedClients    int     `json:"connectedClients"`
	ActiveNotifications int     `json:"activeNotifications"`
	Uptime              float64 `json:"uptime"`
	Timestamp           int64   `json:"timestamp"`
}

type PushSendResponse struct {
	Success         bool `json:"success"`
	ClientsNotified int  `json:"clientsNotified"`
}

// SendNotification broadcasts an admin notification.
func (c *HTTPClient) SendNotification(req SendNotificationRequest) (*SendNotificationResponse, error) {
	req.Token = c.token
	var resp SendNotificationResponse
	if err := c.post("/api/notifications/send", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PushSend triggers device-level push delivery.
func (c *HTTPClient) PushSend(req SendNotificationRequest) (*PushSendResponse, error) {
	req.Token = c.token
	var resp PushSendResponse
	if err := c.post("/api/push/send", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ActiveNotifications fetches the currently-active notifications.
func (c *HTTPClient) ActiveNotifications() (*ActiveNotificationsResponse, error) {
	var resp ActiveNotificationsResponse
	if err := c.get("/api/notifications/active", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches server counters.
func (c *HTTPClient) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) post(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func (c *HTTPClient) get(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
