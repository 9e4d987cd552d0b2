package smtp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ReceivedMail is a message as stored by the MailHog test server.
type ReceivedMail struct {
	Subject string
	Body    string
}

// Inbox returns the messages MailHog received for the address, newest
// first. It needs Config.TestAPIPort.
func (se *Email) Inbox(ctx context.Context, to string) ([]ReceivedMail, error) {
	query := url.Values{"kind": {"to"}, "query": {to}}
	var result struct {
		Items []struct {
			Content struct {
				Headers map[string][]string `json:"Headers"`
				Body    string              `json:"Body"`
			} `json:"Content"`
		} `json:"items"`
	}
	if err := se.testAPI(ctx, http.MethodGet, "/api/v2/search?"+query.Encode(), &result); err != nil {
		return nil, err
	}
	inbox := make([]ReceivedMail, 0, len(result.Items))
	for _, item := range result.Items {
		received := ReceivedMail{Body: item.Content.Body}
		if subject := item.Content.Headers["Subject"]; len(subject) > 0 {
			received.Subject = subject[0]
		}
		inbox = append(inbox, received)
	}
	return inbox, nil
}

// ClearInbox deletes every message held by the MailHog test server.
func (se *Email) ClearInbox(ctx context.Context) error {
	return se.testAPI(ctx, http.MethodDelete, "/api/v1/messages", nil)
}

func (se *Email) testAPI(ctx context.Context, method, path string, v any) error {
	endpoint := fmt.Sprintf("http://%s:%d%s", se.config.SMTPServer, se.config.TestAPIPort, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("mail test API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mail test API %s %s: status %d", method, path, resp.StatusCode)
	}
	if v == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
