package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ExpoClient sends notifications through the Expo push gateway.
type ExpoClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewExpoClient(baseURL string) *ExpoClient {
	if baseURL == "" {
		baseURL = "https://exp.host"
	}
	return &ExpoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type expoResponse struct {
	Data []struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors,omitempty"`
}

func (c *ExpoClient) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	jsonData, err := json.Marshal(messages)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/--/api/v2/push/send", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push api error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var apiResp expoResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Errors) > 0 {
		return nil, fmt.Errorf("push api error: %s: %s", apiResp.Errors[0].Code, apiResp.Errors[0].Message)
	}

	tickets := make([]Ticket, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		tickets = append(tickets, Ticket{ID: d.ID, Status: d.Status, Message: d.Message})
	}
	return tickets, nil
}
