// Package rooms talks to the video-conferencing provider that hosts
// mentorship sessions. Rooms are created with a hard expiry so an abandoned
// call cannot stay open forever; extending a session pushes the expiry out.
package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mentorbill/services/mentoring"
)

const defaultTimeout = 10 * time.Second

// Client implements mentoring.RoomProvider against the provider's REST API.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
	log    zerolog.Logger
}

// New creates a Client for the given API base URL and key.
func New(base, apiKey string, log zerolog.Logger) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, errors.New("rooms: base URL is required")
	}
	if apiKey == "" {
		return nil, errors.New("rooms: API key is required")
	}
	return &Client{
		base:   base,
		apiKey: apiKey,
		http:   &http.Client{Timeout: defaultTimeout},
		log:    log.With().Str("component", "rooms").Logger(),
	}, nil
}

type roomPayload struct {
	Name       string `json:"name,omitempty"`
	Privacy    string `json:"privacy,omitempty"`
	Properties struct {
		Exp            int64 `json:"exp"`
		EjectAtRoomExp bool  `json:"eject_at_room_exp"`
	} `json:"properties"`
}

type roomResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateRoom provisions a private room that expires at expiresAt.
func (c *Client) CreateRoom(ctx context.Context, expiresAt time.Time) (mentoring.Room, error) {
	var payload roomPayload
	payload.Privacy = "private"
	payload.Properties.Exp = expiresAt.Unix()
	payload.Properties.EjectAtRoomExp = true

	var resp roomResponse
	if err := c.do(ctx, http.MethodPost, "/rooms", payload, &resp); err != nil {
		return mentoring.Room{}, err
	}
	if resp.URL == "" || resp.Name == "" {
		return mentoring.Room{}, errors.New("rooms: provider returned an incomplete room")
	}

	c.log.Debug().Str("room", resp.Name).Time("expires_at", expiresAt).Msg("room created")
	return mentoring.Room{URL: resp.URL, Name: resp.Name}, nil
}

// ExtendRoom moves an existing room's expiry to expiresAt.
func (c *Client) ExtendRoom(ctx context.Context, name string, expiresAt time.Time) error {
	if name == "" {
		return errors.New("rooms: room name is required")
	}

	var payload roomPayload
	payload.Properties.Exp = expiresAt.Unix()
	payload.Properties.EjectAtRoomExp = true

	return c.do(ctx, http.MethodPost, "/rooms/"+name, payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("rooms: %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
