package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/netbilling/backend/internal/settings"
)

// Payload is the resolved message variant handed to the transport. The two
// shapes are fixed up front instead of probing an options bag at send time.
type Payload interface {
	payload()
}

// TextPayload is a plain text message.
type TextPayload struct {
	Text string
}

// ImagePayload is an image with a caption.
type ImagePayload struct {
	URL     string
	Caption string
}

func (TextPayload) payload()  {}
func (ImagePayload) payload() {}

// Transport delivers one WhatsApp message to one destination. Destinations
// are normalized phone numbers or group identifiers.
type Transport interface {
	SendMessage(to string, payload Payload) error
}

// UltramsgTransport sends messages through the Ultramsg HTTP gateway.
// Instance credentials are read from the settings store on every send so
// admin updates take effect without a restart.
type UltramsgTransport struct {
	settings settings.Store
	client   *http.Client
}

func NewUltramsgTransport(store settings.Store) *UltramsgTransport {
	return &UltramsgTransport{
		settings: store,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ultramsgConfig struct {
	InstanceID string
	Token      string
}

func (t *UltramsgTransport) getConfig() (*ultramsgConfig, error) {
	instanceID := t.settings.Get("wa_instance_id", "")
	token := t.settings.Get("wa_token", "")
	if instanceID == "" || token == "" {
		return nil, fmt.Errorf("WhatsApp gateway not configured")
	}
	return &ultramsgConfig{InstanceID: instanceID, Token: token}, nil
}

// SendMessage dispatches the payload to the matching Ultramsg endpoint.
func (t *UltramsgTransport) SendMessage(to string, payload Payload) error {
	config, err := t.getConfig()
	if err != nil {
		return err
	}

	to = strings.TrimPrefix(to, "+")

	data := url.Values{}
	data.Set("token", config.Token)
	data.Set("to", to)

	var endpoint string
	switch p := payload.(type) {
	case TextPayload:
		endpoint = "chat"
		data.Set("body", p.Text)
	case ImagePayload:
		endpoint = "image"
		data.Set("image", p.URL)
		if p.Caption != "" {
			data.Set("caption", p.Caption)
		}
	default:
		return fmt.Errorf("unsupported payload type %T", payload)
	}

	apiURL := fmt.Sprintf("https://api.ultramsg.com/%s/messages/%s", config.InstanceID, endpoint)

	req, err := http.NewRequest("POST", apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Ultramsg error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Sent  string `json:"sent"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err == nil {
		if result.Error != "" {
			return fmt.Errorf("Ultramsg error: %s", result.Error)
		}
		if result.Sent == "false" {
			return fmt.Errorf("message not sent: %s", string(body))
		}
	}

	return nil
}

// TestConnection verifies the configured instance is reachable.
func (t *UltramsgTransport) TestConnection() error {
	config, err := t.getConfig()
	if err != nil {
		return err
	}

	apiURL := fmt.Sprintf("https://api.ultramsg.com/%s/instance/status?token=%s",
		config.InstanceID, config.Token)

	resp, err := t.client.Get(apiURL)
	if err != nil {
		return fmt.Errorf("connection failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Ultramsg error (%d): %s", resp.StatusCode, string(body))
	}

	var statusResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &statusResp); err == nil && statusResp.Error != "" {
		return fmt.Errorf("Ultramsg error: %s", statusResp.Error)
	}

	return nil
}
