package mailgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/NirsoItu/api-biblioteca/util/httpx"
)

type httpSender struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTP(baseURL, apiKey string) Sender {
	return &httpSender{baseURL: baseURL, apiKey: apiKey, client: httpx.Client()}
}

func (s *httpSender) Send(ctx context.Context, message string, recipients []string) error {
	body := map[string]any{
		"subject": "Library loan reminder",
		"text":    message,
		"to":      recipients,
	}
	b, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail gateway send failed: %s", resp.Status)
	}
	return nil
}
