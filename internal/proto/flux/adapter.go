package flux

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"flux-adapter/internal/model"
	"flux-adapter/internal/mqtt"
	"flux-adapter/internal/observability"
	"flux-adapter/internal/proto/adapterutil"
)

// DeviceRepository is the persistence surface the adapter drives. Satisfied
// by store.Repository.
type DeviceRepository interface {
	UpsertDevice(ctx context.Context, d *model.Device) error
	GetByExternal(ctx context.Context, externalID string) (*model.Device, error)
	GetByID(ctx context.Context, id string) (*model.Device, error)
	List(ctx context.Context) ([]model.Device, error)
	TouchOnline(ctx context.Context, id string) error
	MarkOffline(ctx context.Context, id string) error
	SaveDeviceState(ctx context.Context, deviceID string, state json.RawMessage) error
	GetDeviceState(ctx context.Context, deviceID string) (json.RawMessage, error)
	DeleteDevicesNotIn(ctx context.Context, keepExternalIDs []string) ([]model.Device, error)
}

// StateStore caches the last published state per device. Satisfied by
// store.StateCache.
type StateStore interface {
	Set(ctx context.Context, id string, stateJSON []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	RemoveAllExcept(ctx context.Context, keepIDs []string) ([]string, error)
}

const hdpSchema = "hdp.v1"

// A bulb is marked offline after this many consecutive poll failures; its
// last known state stays published meanwhile.
const offlineAfterFailures = 3

// CustomEffect is a preconfigured pattern for a bulb, used when a
// custom-effect command arrives without an inline pattern.
type CustomEffect struct {
	Colors     [][3]uint8
	SpeedPct   int
	Transition Transition
}

// BulbConfig describes one bulb the adapter should manage.
type BulbConfig struct {
	Host string
	Name string
	Mode Mode
	// EffectSpeed overrides the adapter-wide preset speed when set.
	EffectSpeed  *int
	CustomEffect *CustomEffect
}

// Options configures a FluxAdapter.
type Options struct {
	AdapterID    string
	Version      string
	TopicPrefix  string
	PollInterval time.Duration
	ScanInterval time.Duration
	EffectSpeed  int
	AutomaticAdd bool
	Bulbs        []BulbConfig
	Dial         Dialer
	Scanner      Scanner
}

// managedLight pairs a Light with its device record. Its mutex serializes
// every poll and command touching the bulb and guards the device record,
// which polls and commands update from different goroutines; the Light
// itself does no locking.
type managedLight struct {
	mu       sync.Mutex
	cfg      BulbConfig
	dev      *model.Device
	light    *Light
	failures int
}

// FluxAdapter manages a fleet of Flux/MagicHome bulbs and bridges them to the
// platform: retained state and metadata topics, command intake with
// correlation acks, polling and optional network discovery.
type FluxAdapter struct {
	client mqtt.ClientAPI
	repo   DeviceRepository
	cache  StateStore
	opts   Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	subscriptions []string

	mu     sync.RWMutex
	lights map[string]*managedLight
}

func New(client mqtt.ClientAPI, repo DeviceRepository, cache StateStore, opts Options) *FluxAdapter {
	if opts.AdapterID == "" {
		opts.AdapterID = "flux"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.TopicPrefix == "" {
		opts.TopicPrefix = "smarthome"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = 120 * time.Second
	}
	if opts.EffectSpeed < 0 || opts.EffectSpeed > 100 {
		opts.EffectSpeed = 50
	}
	return &FluxAdapter{
		client: client,
		repo:   repo,
		cache:  cache,
		opts:   opts,
		lights: map[string]*managedLight{},
	}
}

func (a *FluxAdapter) Name() string { return model.Protocol }

func (a *FluxAdapter) Start(ctx context.Context) error {
	if a.opts.Dial == nil {
		return fmt.Errorf("no bulb dialer configured")
	}
	a.ctx, a.cancel = context.WithCancel(ctx)
	slog.Info("flux adapter starting", "adapter_id", a.opts.AdapterID, "bulbs", len(a.opts.Bulbs))
	_ = a.publishHello()
	_ = a.publishStatus("starting", "initializing")

	if err := a.subscribe(a.commandPrefix()+"#", a.handleDeviceCommand); err != nil {
		return err
	}

	if err := a.syncConfigured(a.ctx); err != nil {
		return err
	}
	go a.primeFromDB(context.Background())

	if a.opts.AutomaticAdd && a.opts.Scanner != nil {
		a.wg.Add(1)
		go a.discoveryLoop()
	}

	_ = a.publishStatus("online", "healthy")
	slog.Info("flux adapter started", "adapter_id", a.opts.AdapterID)
	return nil
}

func (a *FluxAdapter) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	for _, topic := range a.subscriptions {
		if err := a.client.Unsubscribe(topic); err != nil {
			slog.Debug("unsubscribe failed", "topic", topic, "error", err)
		}
	}
	a.mu.RLock()
	for _, ml := range a.lights {
		ml.mu.Lock()
		if ml.light != nil {
			_ = ml.light.Close()
			ml.light = nil
		}
		ml.mu.Unlock()
	}
	a.mu.RUnlock()
	_ = a.publishStatus("offline", "shutdown")
}

func (a *FluxAdapter) subscribe(topic string, handler mqtt.Handler) error {
	if err := a.client.Subscribe(topic, handler); err != nil {
		return err
	}
	a.subscriptions = append(a.subscriptions, topic)
	return nil
}

// syncConfigured registers every statically configured bulb and, when
// automatic discovery is off, prunes devices the config no longer names.
func (a *FluxAdapter) syncConfigured(ctx context.Context) error {
	keepExternal := make([]string, 0, len(a.opts.Bulbs))
	for _, bc := range a.opts.Bulbs {
		dev := a.ensureDevice(ctx, bc)
		if dev == nil {
			continue
		}
		keepExternal = append(keepExternal, dev.ExternalID)
		a.addLight(bc, dev)
	}

	if a.opts.AutomaticAdd {
		return nil
	}
	removed, err := a.repo.DeleteDevicesNotIn(ctx, adapterutil.UniqueStrings(keepExternal))
	if err != nil {
		slog.Warn("flux device prune failed", "error", err)
		return nil
	}
	a.cleanupRemovedDevices(ctx, removed, "config-prune")
	keepIDs := make([]string, 0, len(keepExternal))
	a.mu.RLock()
	for _, ml := range a.lights {
		keepIDs = append(keepIDs, ml.dev.ID.String())
	}
	a.mu.RUnlock()
	if _, err := a.cache.RemoveAllExcept(ctx, keepIDs); err != nil {
		slog.Warn("flux state cache prune failed", "error", err)
	}
	return nil
}

// ensureDevice upserts the device record for a bulb and publishes its
// metadata. Capabilities are fixed per mode, so they are rebuilt here rather
// than interrogated from the bulb.
func (a *FluxAdapter) ensureDevice(ctx context.Context, bc BulbConfig) *model.Device {
	external := externalIDForHost(bc.Host)
	if external == "" {
		slog.Warn("flux bulb config missing host")
		return nil
	}
	mode := bc.Mode
	if mode == "" {
		mode = ModeRGBW
	}
	dev, _ := a.repo.GetByExternal(ctx, external)
	if dev == nil {
		name := bc.Name
		if name == "" {
			name = bc.Host
		}
		dev = &model.Device{ID: uuid.New(), Protocol: model.Protocol, ExternalID: external, Name: name}
	} else if bc.Name != "" {
		dev.Name = bc.Name
	}
	dev.Host = bc.Host
	dev.Mode = string(mode)
	dev.Manufacturer = Manufacturer
	dev.Model = ModelName

	caps, inputs := CapabilitiesForMode(mode)
	if b, err := json.Marshal(caps); err == nil {
		dev.Capabilities = datatypes.JSON(b)
	}
	if b, err := json.Marshal(inputs); err == nil {
		dev.Inputs = datatypes.JSON(b)
	}
	adapterutil.SanitizeDeviceStrings(dev)

	if err := a.repo.UpsertDevice(ctx, dev); err != nil {
		slog.Error("flux device upsert failed", "host", bc.Host, "error", err)
		return nil
	}
	a.publishHDPMeta(dev)
	return dev
}

// addLight registers a managed light and starts its poll loop. Already
// registered bulbs are left untouched.
func (a *FluxAdapter) addLight(bc BulbConfig, dev *model.Device) {
	a.mu.Lock()
	if _, ok := a.lights[dev.ExternalID]; ok {
		a.mu.Unlock()
		return
	}
	ml := &managedLight{cfg: bc, dev: dev}
	a.lights[dev.ExternalID] = ml
	a.mu.Unlock()

	a.wg.Add(1)
	go a.runLight(ml)
}

func (a *FluxAdapter) lookupLight(external string) *managedLight {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lights[external]
}

func (a *FluxAdapter) effectSpeedFor(bc BulbConfig) int {
	if bc.EffectSpeed != nil {
		return *bc.EffectSpeed
	}
	return a.opts.EffectSpeed
}

// runLight connects to a bulb and polls it until the adapter stops. Connect
// failures back off one poll interval; poll failures keep the last published
// state and flip the device offline after a few in a row.
func (a *FluxAdapter) runLight(ml *managedLight) {
	defer a.wg.Done()

	mode := Mode(ml.dev.Mode)
	for {
		light, err := Connect(ml.cfg.Name, ml.cfg.Host, mode, a.effectSpeedFor(ml.cfg), a.opts.Dial)
		if err == nil {
			ml.mu.Lock()
			ml.light = light
			ml.mu.Unlock()
			break
		}
		slog.Warn("flux bulb connect failed", "host", ml.cfg.Host, "error", err)
		select {
		case <-a.ctx.Done():
			return
		case <-time.After(a.opts.PollInterval):
		}
	}
	slog.Info("flux bulb connected", "host", ml.cfg.Host, "device_id", ml.dev.ID.String())

	ticker := time.NewTicker(a.opts.PollInterval)
	defer ticker.Stop()
	a.pollOnce(ml)
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.pollOnce(ml)
		}
	}
}

func (a *FluxAdapter) pollOnce(ml *managedLight) {
	ctx := context.Background()
	ml.mu.Lock()
	err := ml.light.Refresh()
	st := ml.light.State()
	if err != nil {
		ml.failures++
	} else {
		ml.failures = 0
	}
	failures := ml.failures
	ml.mu.Unlock()

	if err != nil {
		observability.BulbPolls.WithLabelValues("error").Inc()
		slog.Warn("flux poll failed", "host", ml.cfg.Host, "failures", failures, "error", err)
		if failures == offlineAfterFailures {
			if err := a.repo.MarkOffline(ctx, ml.dev.ID.String()); err != nil {
				slog.Debug("flux mark offline failed", "device_id", ml.dev.ID.String(), "error", err)
			}
			slog.Info("flux bulb offline", "host", ml.cfg.Host)
		}
		return
	}
	observability.BulbPolls.WithLabelValues("ok").Inc()
	if failures == 0 {
		if err := a.repo.TouchOnline(ctx, ml.dev.ID.String()); err != nil {
			slog.Debug("flux touch online failed", "device_id", ml.dev.ID.String(), "error", err)
		}
	}
	a.persistAndPublish(ctx, ml, st, "")
}

// persistAndPublish writes the normalized state to cache, database and the
// retained platform topic. A mode change (e.g. a white strip attached) also
// refreshes the published capabilities. ml.mu is taken here, not by callers:
// poll and command goroutines both read and rewrite the device record.
func (a *FluxAdapter) persistAndPublish(ctx context.Context, ml *managedLight, st State, corr string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	payload := statePayload(st)
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	id := ml.dev.ID.String()
	if err := a.cache.Set(ctx, id, b); err != nil {
		slog.Debug("flux state cache write failed", "device_id", id, "error", err)
	}
	if err := a.repo.SaveDeviceState(ctx, id, b); err != nil {
		slog.Debug("flux state db write failed", "device_id", id, "error", err)
	}
	a.publishHDPState(ml.dev, payload, corr)

	if string(st.Mode) != ml.dev.Mode && st.Mode != "" {
		slog.Info("flux bulb mode changed", "host", ml.cfg.Host, "from", ml.dev.Mode, "to", st.Mode)
		ml.dev.Mode = string(st.Mode)
		caps, inputs := CapabilitiesForMode(st.Mode)
		if cb, err := json.Marshal(caps); err == nil {
			ml.dev.Capabilities = datatypes.JSON(cb)
		}
		if ib, err := json.Marshal(inputs); err == nil {
			ml.dev.Inputs = datatypes.JSON(ib)
		}
		if err := a.repo.UpsertDevice(ctx, ml.dev); err != nil {
			slog.Warn("flux mode update failed", "device_id", id, "error", err)
		}
		a.publishHDPMeta(ml.dev)
	}
}

// statePayload flattens normalized state into the platform's property map.
func statePayload(st State) map[string]any {
	payload := map[string]any{
		"on":         st.On,
		"brightness": int(st.Brightness),
		"hue":        st.Hue,
		"saturation": st.Saturation,
		"mode":       string(st.Mode),
		"effect":     string(st.Effect),
	}
	switch st.Mode {
	case ModeRGBW, ModeWhite:
		payload["white_value"] = int(st.WhiteValue)
	case ModeRGBCW, ModeRGBWW:
		payload["white_value"] = int(st.WhiteValue)
		payload["warm_white"] = int(st.WarmWhite)
		payload["cold_white"] = int(st.ColdWhite)
	}
	return payload
}

func (a *FluxAdapter) discoveryLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(a.opts.ScanInterval)
	defer ticker.Stop()
	a.scanOnce()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.scanOnce()
		}
	}
}

func (a *FluxAdapter) scanOnce() {
	ctx, cancel := context.WithTimeout(a.ctx, 30*time.Second)
	defer cancel()
	bulbs, err := a.opts.Scanner.Scan(ctx)
	if err != nil {
		slog.Warn("flux network scan failed", "error", err)
		return
	}
	added := 0
	for _, b := range bulbs {
		external := externalIDForHost(b.Host)
		if external == "" || a.lookupLight(external) != nil {
			continue
		}
		name := b.Model
		if name == "" {
			name = b.Host
		}
		bc := BulbConfig{Host: b.Host, Name: name, Mode: ModeRGBW}
		dev := a.ensureDevice(context.Background(), bc)
		if dev == nil {
			continue
		}
		a.addLight(bc, dev)
		added++
	}
	if added > 0 {
		slog.Info("flux scan added bulbs", "count", added, "scanned", len(bulbs))
	}
}

// primeFromDB republishes the retained state and metadata of known devices so
// the platform sees them before the first poll completes.
func (a *FluxAdapter) primeFromDB(ctx context.Context) {
	devices, err := a.repo.List(ctx)
	if err != nil {
		return
	}
	for i := range devices {
		dev := &devices[i]
		stateJSON, err := a.repo.GetDeviceState(ctx, dev.ID.String())
		if err != nil || len(stateJSON) == 0 {
			continue
		}
		_ = a.cache.Set(ctx, dev.ID.String(), stateJSON)
		var state map[string]any
		if err := json.Unmarshal(stateJSON, &state); err == nil && len(state) > 0 {
			a.publishHDPState(dev, state, "")
		}
		a.publishHDPMeta(dev)
	}
}

func (a *FluxAdapter) cleanupRemovedDevices(ctx context.Context, removed []model.Device, reason string) {
	for _, dev := range removed {
		if dev.ID == uuid.Nil {
			continue
		}
		if err := a.cache.Delete(ctx, dev.ID.String()); err != nil {
			slog.Debug("flux cache delete failed", "device", dev.ExternalID, "error", err)
		}
		if hdpID := a.hdpDeviceID(dev.ExternalID); hdpID != "" {
			_ = a.client.PublishWith(a.statePrefix()+hdpID, []byte{}, true)
			_ = a.client.PublishWith(a.metadataPrefix()+hdpID, []byte{}, true)
		}
		slog.Info("flux device pruned", "device", dev.ExternalID, "reason", reason)
	}
}

func (a *FluxAdapter) handleDeviceCommand(_ paho.Client, m paho.Message) {
	var envelope map[string]any
	if err := json.Unmarshal(m.Payload(), &envelope); err != nil {
		slog.Debug("hdp command decode failed", "topic", m.Topic(), "error", err)
		return
	}
	deviceID := adapterutil.StringField(envelope, "device_id")
	if deviceID == "" {
		deviceID = strings.TrimPrefix(m.Topic(), a.commandPrefix())
	}
	external := externalFromHDP(deviceID)
	if external == "" {
		return
	}
	corr := adapterutil.StringField(envelope, "corr")
	command := strings.ToLower(adapterutil.StringField(envelope, "command"))
	if command == "" {
		command = "set_state"
	}
	args := map[string]any{}
	if payload, ok := envelope["args"].(map[string]any); ok {
		args = payload
	} else if payload, ok := envelope["state"].(map[string]any); ok {
		args = payload
	}

	ml := a.lookupLight(external)
	if ml == nil {
		// The platform may address by record id instead of external id.
		if dev, _ := a.repo.GetByID(context.Background(), external); dev != nil {
			ml = a.lookupLight(dev.ExternalID)
		}
	}
	if ml == nil {
		slog.Debug("hdp command for unknown bulb", "device_id", deviceID)
		return
	}

	slog.Info("hdp command", "device_id", ml.dev.ID.String(), "external", ml.dev.ExternalID, "command", command, "corr", corr, "keys", len(args))
	st, err := a.runCommand(ml, command, args)
	if err != nil {
		observability.BulbCommands.WithLabelValues(command, "error").Inc()
		slog.Warn("flux command failed", "host", ml.cfg.Host, "command", command, "error", err)
		a.publishHDPCommandResult(ml.dev, corr, false, "", err.Error())
		return
	}
	observability.BulbCommands.WithLabelValues(command, "ok").Inc()
	a.persistAndPublish(context.Background(), ml, st, corr)
	a.publishHDPCommandResult(ml.dev, corr, true, "applied", "")
}

// runCommand executes one platform command against a bulb under its lock and
// returns the resulting optimistic state.
func (a *FluxAdapter) runCommand(ml *managedLight, command string, args map[string]any) (State, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	if ml.light == nil {
		return State{}, fmt.Errorf("%w: %s: not connected", ErrConnect, ml.cfg.Host)
	}

	var err error
	switch command {
	case "set_state":
		var cmd stateCommand
		cmd, err = parseStateArgs(args)
		if err == nil {
			if cmd.off {
				err = ml.light.TurnOff()
			} else {
				err = ml.light.Apply(cmd.intent)
			}
		}
	case "turn_on":
		err = ml.light.Apply(CommandIntent{})
	case "turn_off":
		err = ml.light.TurnOff()
	case "refresh":
		err = ml.light.Refresh()
	case "set_custom_effect":
		var ce *CustomEffect
		ce, err = parseCustomEffectArgs(args)
		if err == nil && ce == nil {
			ce = ml.cfg.CustomEffect
		}
		if err == nil {
			if ce == nil {
				err = fmt.Errorf("no custom effect configured for %s", ml.cfg.Host)
			} else {
				err = ml.light.ApplyCustomEffect(ce.Colors, ce.SpeedPct, ce.Transition)
			}
		}
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return State{}, err
	}
	return ml.light.State(), nil
}

// stateCommand is a decoded set_state request: either a turn-off or an
// intent for the light adapter.
type stateCommand struct {
	off    bool
	intent CommandIntent
}

// parseStateArgs decodes the platform's property map into a light command.
// A false on flag or a zero brightness both mean turn off.
func parseStateArgs(args map[string]any) (stateCommand, error) {
	var cmd stateCommand
	for _, key := range []string{"on", "state"} {
		if v, ok := args[key]; ok {
			b, ok := adapterutil.CoerceBool(v)
			if !ok {
				return cmd, fmt.Errorf("invalid %s value %v", key, v)
			}
			if !b {
				cmd.off = true
				return cmd, nil
			}
		}
	}

	if v, ok := args["brightness"]; ok {
		f, ok := adapterutil.NumericValue(v)
		if !ok || f < 0 || f > 255 {
			return cmd, fmt.Errorf("brightness %v out of range 0..255", v)
		}
		if f == 0 {
			cmd.off = true
			return cmd, nil
		}
		b := uint8(f)
		cmd.intent.Brightness = &b
	}
	if v, ok := args["hue"]; ok {
		f, ok := adapterutil.NumericValue(v)
		if !ok || f < 0 || f > 360 {
			return cmd, fmt.Errorf("hue %v out of range 0..360", v)
		}
		cmd.intent.Hue = &f
	}
	if v, ok := args["saturation"]; ok {
		f, ok := adapterutil.NumericValue(v)
		if !ok || f < 0 || f > 100 {
			return cmd, fmt.Errorf("saturation %v out of range 0..100", v)
		}
		cmd.intent.Saturation = &f
	}
	if v, ok := args["color"].(map[string]any); ok {
		if err := parseColorArg(v, &cmd.intent); err != nil {
			return cmd, err
		}
	}
	for _, key := range []string{"white_value", "white"} {
		if v, ok := args[key]; ok {
			f, ok := adapterutil.NumericValue(v)
			if !ok || f < 0 || f > 255 {
				return cmd, fmt.Errorf("%s %v out of range 0..255", key, v)
			}
			w := uint8(f)
			cmd.intent.White = &w
			break
		}
	}
	if v, ok := args["color_temp"]; ok {
		f, ok := adapterutil.NumericValue(v)
		if !ok {
			return cmd, fmt.Errorf("invalid color_temp %v", v)
		}
		mired := int(f)
		if mired < 153 {
			mired = 153
		}
		if mired > 500 {
			mired = 500
		}
		cmd.intent.ColorTempMired = &mired
	}
	if v, ok := args["effect"]; ok {
		name := adapterutil.StringField(args, "effect")
		if name != "" {
			effect, ok := ParseEffect(name)
			if !ok {
				return cmd, fmt.Errorf("unknown effect %q", v)
			}
			cmd.intent.Effect = effect
		}
	}
	return cmd, nil
}

// parseColorArg accepts either hue/saturation or rgb component form.
func parseColorArg(color map[string]any, intent *CommandIntent) error {
	hueVal, hasHue := numericAny(color, "hue", "h")
	satVal, hasSat := numericAny(color, "saturation", "s")
	if hasHue || hasSat {
		if hasHue {
			if hueVal < 0 || hueVal > 360 {
				return fmt.Errorf("hue %v out of range 0..360", hueVal)
			}
			intent.Hue = &hueVal
		}
		if hasSat {
			if satVal < 0 || satVal > 100 {
				return fmt.Errorf("saturation %v out of range 0..100", satVal)
			}
			intent.Saturation = &satVal
		}
		return nil
	}
	r, hasR := numericAny(color, "r", "red")
	g, hasG := numericAny(color, "g", "green")
	b, hasB := numericAny(color, "b", "blue")
	if !hasR && !hasG && !hasB {
		return fmt.Errorf("color needs hue/saturation or r/g/b")
	}
	for _, v := range []float64{r, g, b} {
		if v < 0 || v > 255 {
			return fmt.Errorf("rgb component %v out of range 0..255", v)
		}
	}
	hue, sat := RGBToHS(uint8(r), uint8(g), uint8(b))
	intent.Hue = &hue
	intent.Saturation = &sat
	return nil
}

func numericAny(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := adapterutil.NumericValue(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// parseCustomEffectArgs decodes an inline custom pattern; nil means the
// request carried no pattern and the configured fallback applies.
func parseCustomEffectArgs(args map[string]any) (*CustomEffect, error) {
	rawColors, ok := args["colors"].([]any)
	if !ok {
		return nil, nil
	}
	colors := make([][3]uint8, 0, len(rawColors))
	for i, rc := range rawColors {
		row, ok := rc.([]any)
		if !ok || len(row) != 3 {
			return nil, fmt.Errorf("custom effect color %d needs 3 components", i)
		}
		var rgb [3]uint8
		for j, comp := range row {
			f, ok := adapterutil.NumericValue(comp)
			if !ok || f < 0 || f > 255 {
				return nil, fmt.Errorf("custom effect color %d component %v out of range 0..255", i, comp)
			}
			rgb[j] = uint8(f)
		}
		colors = append(colors, rgb)
	}
	speed := 50
	if v, ok := args["speed_pct"]; ok {
		f, ok := adapterutil.NumericValue(v)
		if !ok {
			return nil, fmt.Errorf("invalid speed_pct %v", v)
		}
		speed = int(f)
	}
	transition := TransitionGradual
	if name := adapterutil.StringField(args, "transition"); name != "" {
		t, err := ParseTransition(name)
		if err != nil {
			return nil, err
		}
		transition = t
	}
	ce := &CustomEffect{Colors: colors, SpeedPct: speed, Transition: transition}
	if err := ValidateCustomEffect(ce.Colors, ce.SpeedPct, ce.Transition); err != nil {
		return nil, err
	}
	return ce, nil
}

// Devices lists all managed device records.
func (a *FluxAdapter) Devices(ctx context.Context) ([]model.Device, error) {
	return a.repo.List(ctx)
}

// Device looks a device up by record id or external id.
func (a *FluxAdapter) Device(ctx context.Context, id string) (*model.Device, error) {
	if dev, err := a.repo.GetByID(ctx, id); err == nil && dev != nil {
		return dev, nil
	}
	return a.repo.GetByExternal(ctx, id)
}

// DeviceState returns the last published state of a device, preferring the
// cache over the database.
func (a *FluxAdapter) DeviceState(ctx context.Context, dev *model.Device) (map[string]any, error) {
	var raw []byte
	if cached, err := a.cache.Get(ctx, dev.ID.String()); err == nil && len(cached) > 0 {
		raw = cached
	} else if stored, err := a.repo.GetDeviceState(ctx, dev.ID.String()); err == nil {
		raw = stored
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, err
	}
	return state, nil
}

// Execute runs a command against a device on behalf of the HTTP API and
// returns the resulting state payload.
func (a *FluxAdapter) Execute(ctx context.Context, id, command string, args map[string]any) (map[string]any, error) {
	dev, err := a.Device(ctx, id)
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, fmt.Errorf("unknown device %q", id)
	}
	ml := a.lookupLight(dev.ExternalID)
	if ml == nil {
		return nil, fmt.Errorf("device %q not managed", id)
	}
	if command == "" {
		command = "set_state"
	}
	st, err := a.runCommand(ml, command, args)
	if err != nil {
		observability.BulbCommands.WithLabelValues(command, "error").Inc()
		return nil, err
	}
	observability.BulbCommands.WithLabelValues(command, "ok").Inc()
	a.persistAndPublish(ctx, ml, st, "")
	return statePayload(st), nil
}

func (a *FluxAdapter) publishHello() error {
	hdp := map[string]any{
		"schema":      hdpSchema,
		"type":        "hello",
		"adapter_id":  a.opts.AdapterID,
		"protocol":    model.Protocol,
		"version":     a.opts.Version,
		"hdp_version": "1.0",
		"features": map[string]any{
			"supports_ack":         true,
			"supports_correlation": true,
			"supports_discovery":   a.opts.AutomaticAdd,
		},
		"ts": time.Now().UnixMilli(),
	}
	if hb, err := json.Marshal(hdp); err == nil {
		_ = a.client.Publish(a.topic("adapter/hello"), hb)
	}
	return nil
}

func (a *FluxAdapter) publishStatus(status, reason string) error {
	hdp := map[string]any{
		"schema":     hdpSchema,
		"type":       "status",
		"adapter_id": a.opts.AdapterID,
		"status":     status,
		"reason":     reason,
		"version":    a.opts.Version,
		"ts":         time.Now().UnixMilli(),
	}
	if hb, err := json.Marshal(hdp); err == nil {
		_ = a.client.PublishWith(a.topic("adapter/status/")+a.opts.AdapterID, hb, true)
	}
	return nil
}

func (a *FluxAdapter) publishHDPState(dev *model.Device, state map[string]any, corr string) {
	if dev == nil || len(state) == 0 {
		return
	}
	deviceID := a.hdpDeviceID(dev.ExternalID)
	if deviceID == "" {
		return
	}
	envelope := map[string]any{
		"schema":    hdpSchema,
		"type":      "state",
		"device_id": deviceID,
		"ts":        time.Now().UnixMilli(),
		"state":     state,
	}
	if corr != "" {
		envelope["corr"] = corr
	}
	if b, err := json.Marshal(envelope); err == nil {
		_ = a.client.PublishWith(a.statePrefix()+deviceID, b, true)
	}
}

func (a *FluxAdapter) publishHDPMeta(dev *model.Device) {
	if dev == nil {
		return
	}
	deviceID := a.hdpDeviceID(dev.ExternalID)
	if deviceID == "" {
		return
	}
	envelope := map[string]any{
		"schema":       hdpSchema,
		"type":         "metadata",
		"device_id":    deviceID,
		"protocol":     model.Protocol,
		"name":         dev.Name,
		"manufacturer": dev.Manufacturer,
		"model":        dev.Model,
		"mode":         dev.Mode,
		"host":         dev.Host,
		"ts":           time.Now().UnixMilli(),
	}
	if len(dev.Capabilities) > 0 {
		var caps any
		if err := json.Unmarshal(dev.Capabilities, &caps); err == nil {
			envelope["capabilities"] = caps
		}
	}
	if len(dev.Inputs) > 0 {
		var inputs any
		if err := json.Unmarshal(dev.Inputs, &inputs); err == nil {
			envelope["inputs"] = inputs
		}
	}
	if b, err := json.Marshal(envelope); err == nil {
		_ = a.client.PublishWith(a.metadataPrefix()+deviceID, b, true)
	}
}

func (a *FluxAdapter) publishHDPCommandResult(dev *model.Device, corr string, success bool, status, errMsg string) {
	if dev == nil || corr == "" {
		return
	}
	deviceID := a.hdpDeviceID(dev.ExternalID)
	if deviceID == "" {
		return
	}
	envelope := map[string]any{
		"schema":    hdpSchema,
		"type":      "command_result",
		"device_id": deviceID,
		"corr":      corr,
		"success":   success,
		"ts":        time.Now().UnixMilli(),
	}
	if status != "" {
		envelope["status"] = status
	}
	if errMsg != "" {
		envelope["error"] = errMsg
	}
	if b, err := json.Marshal(envelope); err == nil {
		_ = a.client.Publish(a.topic("device/command_result/")+deviceID, b)
	}
}

func (a *FluxAdapter) topic(suffix string) string {
	return a.opts.TopicPrefix + "/hdp/" + suffix
}

func (a *FluxAdapter) statePrefix() string    { return a.topic("device/state/") }
func (a *FluxAdapter) metadataPrefix() string { return a.topic("device/metadata/") }
func (a *FluxAdapter) commandPrefix() string  { return a.topic("device/command/" + model.Protocol + "/") }

func (a *FluxAdapter) hdpDeviceID(external string) string {
	ext := strings.Trim(strings.TrimSpace(external), "/")
	if ext == "" {
		return ""
	}
	if strings.HasPrefix(ext, model.Protocol+"/") {
		return ext
	}
	return fmt.Sprintf("%s/%s/%s", model.Protocol, a.opts.AdapterID, ext)
}

// externalFromHDP extracts the bulb's external id from a full platform
// device id; bare ids pass through unchanged.
func externalFromHDP(deviceID string) string {
	id := strings.Trim(strings.TrimSpace(deviceID), "/")
	if id == "" {
		return ""
	}
	parts := strings.Split(id, "/")
	return parts[len(parts)-1]
}

// externalIDForHost derives the stable external id from a bulb address.
func externalIDForHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	return strings.ReplaceAll(host, ".", "_")
}
