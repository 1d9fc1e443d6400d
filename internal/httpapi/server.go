package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"flux-adapter/internal/model"
	"flux-adapter/internal/proto/flux"
)

// CommandRunner is the adapter surface the HTTP API drives.
type CommandRunner interface {
	Devices(ctx context.Context) ([]model.Device, error)
	Device(ctx context.Context, id string) (*model.Device, error)
	DeviceState(ctx context.Context, dev *model.Device) (map[string]any, error)
	Execute(ctx context.Context, id, command string, args map[string]any) (map[string]any, error)
}

type Server struct {
	adapter CommandRunner
}

func NewServer(adapter CommandRunner) *Server {
	return &Server{adapter: adapter}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/fluxadapter/devices", s.handleDeviceCollection)
	mux.HandleFunc("/api/fluxadapter/devices/", s.handleDeviceRequest)
}

func (s *Server) handleDeviceCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleDeviceList(w, r)
	default:
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleDeviceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	devices, err := s.adapter.Devices(ctx)
	if err != nil {
		slog.Error("device list query failed", "error", err)
		http.Error(w, "failed to load devices", http.StatusInternalServerError)
		return
	}
	items := make([]deviceItem, 0, len(devices))
	for i := range devices {
		items = append(items, s.deviceItem(ctx, &devices[i]))
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDeviceRequest(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/fluxadapter/devices/")
	if path == r.URL.Path {
		http.NotFound(w, r)
		return
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		s.handleDeviceList(w, r)
		return
	}
	deviceID := segments[0]
	if len(segments) == 1 {
		s.handleDevice(w, r, deviceID)
		return
	}
	switch segments[1] {
	case "commands":
		s.handleDeviceCommand(w, r, deviceID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleDevice(w http.ResponseWriter, r *http.Request, deviceID string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	dev, err := s.adapter.Device(ctx, deviceID)
	if err != nil {
		slog.Error("device lookup failed", "device_id", deviceID, "error", err)
		http.Error(w, "failed to load device", http.StatusInternalServerError)
		return
	}
	if dev == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.deviceItem(ctx, dev))
}

func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request, deviceID string) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 16*1024))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()
	if len(body) == 0 {
		http.Error(w, "request body required", http.StatusBadRequest)
		return
	}
	var req commandRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	args := req.Args
	if args == nil {
		args = req.State
	}
	if args == nil {
		args = map[string]any{}
	}
	state, err := s.adapter.Execute(r.Context(), deviceID, req.Command, args)
	if err != nil {
		switch {
		case errors.Is(err, flux.ErrConnect), errors.Is(err, flux.ErrCommunication):
			slog.Warn("device command failed", "device_id", deviceID, "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Status: "applied", DeviceID: deviceID, State: state})
}

func (s *Server) deviceItem(ctx context.Context, dev *model.Device) deviceItem {
	state, err := s.adapter.DeviceState(ctx, dev)
	if err != nil {
		slog.Warn("device state lookup failed", "device_id", dev.ID.String(), "error", err)
		state = map[string]any{}
	}
	item := deviceItem{
		ID:           dev.ID,
		Protocol:     dev.Protocol,
		ExternalID:   dev.ExternalID,
		Host:         dev.Host,
		Name:         dev.Name,
		Mode:         dev.Mode,
		Manufacturer: dev.Manufacturer,
		Model:        dev.Model,
		Online:       dev.Online,
		LastSeen:     dev.LastSeen,
		CreatedAt:    dev.CreatedAt,
		UpdatedAt:    dev.UpdatedAt,
		State:        state,
	}
	if len(dev.Capabilities) > 0 {
		item.Capabilities = json.RawMessage(append([]byte(nil), dev.Capabilities...))
	}
	if len(dev.Inputs) > 0 {
		item.Inputs = json.RawMessage(append([]byte(nil), dev.Inputs...))
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
