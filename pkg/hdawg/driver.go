package hdawg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/equal1/labdrivers/pkg/iolog"
	"github.com/equal1/labdrivers/pkg/params"
	"github.com/equal1/labdrivers/pkg/ziapi"
)

// Driver errors.
var (
	ErrNoSession   = errors.New("config has no session")
	ErrNoDeviceID  = errors.New("config has no device ID")
	ErrClosed      = errors.New("driver is closed")
	ErrPollTimeout = errors.New("polling timed out")
)

// Default polling behavior for compiler and upload progress loops.
const (
	// DefaultPollInterval is the sleep between poll iterations, matching
	// the vendor's own synchronous upload helpers.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultPollTimeout bounds each polling loop. The vendor API polls
	// forever; a stuck compiler would hang the caller indefinitely.
	DefaultPollTimeout = 30 * time.Second
)

// Config configures a Driver.
type Config struct {
	// DeviceID is the device name as listed by the data server, e.g.
	// "dev8888". Required.
	DeviceID string

	// Session is the live data-server session. Required. The driver owns
	// the session and closes it on Close.
	Session ziapi.Session

	// ListFlags selects which nodes are bound into the parameter
	// registry. Zero binds every node.
	ListFlags ziapi.ListFlag

	// PollInterval is the sleep between compiler/progress polls.
	// Zero means DefaultPollInterval.
	PollInterval time.Duration

	// PollTimeout bounds each polling loop. Zero means
	// DefaultPollTimeout; negative disables the timeout.
	PollTimeout time.Duration

	// IOLogger captures instrument traffic. Nil disables capture.
	IOLogger iolog.Logger

	// Logger receives operational log records. Nil means slog.Default().
	Logger *slog.Logger
}

// Driver is a live HDAWG instance. All bound parameters and upload
// operations share the driver's single session; none outlives it.
type Driver struct {
	deviceID  string
	sessionID string
	session   ziapi.Session
	awg       ziapi.AWGModule
	registry  *params.Registry

	pollInterval time.Duration
	pollTimeout  time.Duration

	iolog  iolog.Logger
	logger *slog.Logger
	closed bool
}

// Open connects the driver: it attaches and executes the AWG compiler
// module, downloads the node schema, and binds the parameter registry.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	if cfg.Session == nil {
		return nil, ErrNoSession
	}
	if cfg.DeviceID == "" {
		return nil, ErrNoDeviceID
	}

	d := &Driver{
		deviceID:     cfg.DeviceID,
		sessionID:    uuid.NewString(),
		session:      cfg.Session,
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
		iolog:        cfg.IOLogger,
		logger:       cfg.Logger,
	}
	if d.pollInterval <= 0 {
		d.pollInterval = DefaultPollInterval
	}
	if d.pollTimeout == 0 {
		d.pollTimeout = DefaultPollTimeout
	}
	if d.iolog == nil {
		d.iolog = iolog.NoopLogger{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	awg, err := cfg.Session.AWGModule()
	if err != nil {
		return nil, fmt.Errorf("attaching AWG module: %w", err)
	}
	d.awg = awg

	if err := awg.SetString(ctx, ziapi.ModuleDevice, cfg.DeviceID); err != nil {
		return nil, fmt.Errorf("addressing AWG module: %w", err)
	}
	if err := awg.Execute(ctx); err != nil {
		return nil, fmt.Errorf("executing AWG module: %w", err)
	}

	tree, err := d.DownloadNodeTree(ctx, cfg.ListFlags)
	if err != nil {
		return nil, err
	}
	registry, err := params.BindNodeTree(cfg.Session, tree)
	if err != nil {
		return nil, fmt.Errorf("binding parameters: %w", err)
	}
	d.registry = registry

	d.logger.Info("hdawg driver opened",
		"device", d.deviceID,
		"session_id", d.sessionID,
		"parameters", registry.Len())
	return d, nil
}

// DeviceID returns the device identifier the driver is bound to.
func (d *Driver) DeviceID() string { return d.deviceID }

// SessionID returns the UUID identifying this driver session in capture
// log events.
func (d *Driver) SessionID() string { return d.sessionID }

// Params returns the bound parameter registry.
func (d *Driver) Params() *params.Registry { return d.registry }

// DownloadNodeTree fetches the device node schema. Flags narrow the
// listing, e.g. ziapi.ListSettingsOnly.
func (d *Driver) DownloadNodeTree(ctx context.Context, flags ziapi.ListFlag) (map[string]ziapi.NodeInfo, error) {
	root := "/" + d.deviceID + "/"
	data, err := d.session.ListNodesJSON(ctx, root, flags)
	d.capture(iolog.OpList, root, fmt.Sprintf("flags=0x%02x", int(flags)), err)
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}
	return ziapi.ParseNodeTree(data)
}

// Get reads the parameter with the given derived name.
func (d *Driver) Get(ctx context.Context, name string) (any, error) {
	p, err := d.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	value, err := p.Get(ctx)
	d.capture(iolog.OpRead, p.Entry().Path, summarize(value), err)
	return value, err
}

// Set writes the parameter with the given derived name.
func (d *Driver) Set(ctx context.Context, name string, value any) error {
	p, err := d.registry.Lookup(name)
	if err != nil {
		return err
	}
	err = p.Set(ctx, value)
	d.capture(iolog.OpWrite, p.Entry().Path, summarize(value), err)
	return err
}

// EnableChannel enables a signal output; on the instrument this lights
// the channel's front-panel LED.
func (d *Driver) EnableChannel(ctx context.Context, channel int) error {
	return d.Set(ctx, fmt.Sprintf("sigouts_%d_on", channel), int64(1))
}

// DisableChannel disables a signal output.
func (d *Driver) DisableChannel(ctx context.Context, channel int) error {
	return d.Set(ctx, fmt.Sprintf("sigouts_%d_on", channel), int64(0))
}

// StartAWG activates an AWG core.
func (d *Driver) StartAWG(ctx context.Context, awg int) error {
	return d.Set(ctx, fmt.Sprintf("awgs_%d_enable", awg), int64(1))
}

// StopAWG deactivates an AWG core.
func (d *Driver) StopAWG(ctx context.Context, awg int) error {
	return d.Set(ctx, fmt.Sprintf("awgs_%d_enable", awg), int64(0))
}

// Channel grouping modes for SetChannelGrouping.
const (
	// GroupingPairs runs one sequencer per 2 outputs.
	GroupingPairs int64 = 0

	// GroupingQuads runs one sequencer per 4 outputs.
	GroupingQuads int64 = 1

	// GroupingAll runs one sequencer for all 8 outputs.
	GroupingAll int64 = 2
)

// SetChannelGrouping sets how sequencers map onto outputs.
func (d *Driver) SetChannelGrouping(ctx context.Context, grouping int64) error {
	return d.Set(ctx, "system_awg_channelgrouping", grouping)
}

// Close releases the AWG module and the session. Safe to call once.
func (d *Driver) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true

	var errs []error
	if err := d.awg.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing AWG module: %w", err))
	}
	if err := d.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing session: %w", err))
	}
	d.logger.Info("hdawg driver closed", "device", d.deviceID)
	return errors.Join(errs...)
}

// capture emits one I/O capture event.
func (d *Driver) capture(op iolog.Op, path, value string, err error) {
	event := iolog.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Device:    d.deviceID,
		Op:        op,
		Path:      path,
		Value:     value,
	}
	if err != nil {
		event.Error = err.Error()
	}
	d.iolog.Log(event)
}

// summarize renders a value for capture events. Vector payloads are
// summarized rather than dumped.
func summarize(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []float64:
		return fmt.Sprintf("[%d samples]", len(v))
	case []float32:
		return fmt.Sprintf("[%d samples]", len(v))
	case []int16:
		return fmt.Sprintf("[%d samples]", len(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
