package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/hongfeij/weather-spotify-alarm/internal/core/domain"
)

// devices lists the user's Spotify Connect devices.
func (p *Player) devices(ctx context.Context) ([]domain.Device, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/me/player/devices", nil)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: failed to create devices request: %w", err)
	}

	resp, err := p.retry.do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: devices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, endpointError("devices", resp)
	}

	var body devicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify adapter: devices decode error: %w", err)
	}

	out := make([]domain.Device, 0, len(body.Devices))
	for _, d := range body.Devices {
		out = append(out, mapDeviceToDomain(d))
	}
	return out, nil
}

// play issues PUT /me/player/play for one device and returns the response
// status alongside any error.
func (p *Player) play(ctx context.Context, deviceID, trackURI string) (int, error) {
	playURL := p.baseURL + "/me/player/play?device_id=" + url.QueryEscape(deviceID)
	resp, err := p.put(ctx, playURL, playRequest{URIs: []string{trackURI}})
	if err != nil {
		return 0, fmt.Errorf("spotify adapter: play request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, endpointError("play", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// transfer moves playback to deviceID and starts it.
func (p *Player) transfer(ctx context.Context, deviceID string) error {
	resp, err := p.put(ctx, p.baseURL+"/me/player", transferRequest{DeviceIDs: []string{deviceID}, Play: true})
	if err != nil {
		return fmt.Errorf("spotify adapter: transfer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return endpointError("transfer", resp)
	}
	return nil
}

func (p *Player) put(ctx context.Context, target string, payload any) (*http.Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return p.retry.do(req)
}

// isInactiveDevice reports statuses the API uses for a device that is not
// ready to receive a play command.
func isInactiveDevice(status int) bool {
	return status == http.StatusNotFound || status == http.StatusForbidden
}
