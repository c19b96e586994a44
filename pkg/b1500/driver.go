package b1500

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/equal1/labdrivers/pkg/iolog"
)

// Driver errors.
var (
	ErrNoSession = errors.New("config has no session")
	ErrClosed    = errors.New("driver is closed")
)

// maxErrorDrain bounds DrainErrors so a misbehaving instrument that
// never reports an empty queue cannot loop forever.
const maxErrorDrain = 32

// MessageSession is a line-oriented instrument connection. VISA-backed
// implementations live with the application; SimSession serves tests.
type MessageSession interface {
	// Write sends a command that produces no response.
	Write(ctx context.Context, cmd string) error

	// Query sends a command and returns the instrument's reply with the
	// line terminator stripped.
	Query(ctx context.Context, cmd string) (string, error)

	// Close releases the connection.
	Close() error
}

// Config configures a Driver.
type Config struct {
	// Session is the live instrument connection. Required. The driver
	// owns the session and closes it on Close.
	Session MessageSession

	// IOLogger captures instrument traffic. Nil disables capture.
	IOLogger iolog.Logger

	// Logger receives operational log records. Nil means slog.Default().
	Logger *slog.Logger
}

// Driver is a live parameter analyzer instance.
type Driver struct {
	session   MessageSession
	sessionID string
	identity  string
	iolog     iolog.Logger
	logger    *slog.Logger
	closed    bool
}

// Open connects the driver and queries the instrument identity.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	if cfg.Session == nil {
		return nil, ErrNoSession
	}

	d := &Driver{
		session:   cfg.Session,
		sessionID: uuid.NewString(),
		iolog:     cfg.IOLogger,
		logger:    cfg.Logger,
	}
	if d.iolog == nil {
		d.iolog = iolog.NoopLogger{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}

	identity, err := d.query(ctx, "*IDN?")
	if err != nil {
		return nil, fmt.Errorf("querying instrument identity: %w", err)
	}
	d.identity = identity

	d.logger.Info("b1500 driver opened",
		"identity", identity,
		"session_id", d.sessionID)
	return d, nil
}

// Identity returns the instrument's *IDN? response.
func (d *Driver) Identity() string { return d.identity }

// SessionID returns the UUID identifying this driver session in capture
// log events.
func (d *Driver) SessionID() string { return d.sessionID }

// GetStatus reads the instrument status byte.
func (d *Driver) GetStatus(ctx context.Context) (int64, error) {
	reply, err := d.query(ctx, "*STB?")
	if err != nil {
		return 0, err
	}
	status, err := strconv.ParseInt(strings.TrimSpace(reply), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing status byte %q: %w", reply, err)
	}
	return status, nil
}

// Reset restores the instrument's power-on settings.
func (d *Driver) Reset(ctx context.Context) error {
	return d.write(ctx, "*RST")
}

// SelfTest runs the instrument self-test and returns its result code
// (0 means all modules passed).
func (d *Driver) SelfTest(ctx context.Context) (int64, error) {
	reply, err := d.query(ctx, "*TST?")
	if err != nil {
		return 0, err
	}
	code, err := strconv.ParseInt(strings.TrimSpace(reply), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing self-test result %q: %w", reply, err)
	}
	return code, nil
}

// DrainErrors reads the instrument error queue until it reports empty
// and returns the collected messages, oldest first.
func (d *Driver) DrainErrors(ctx context.Context) ([]string, error) {
	var messages []string
	for i := 0; i < maxErrorDrain; i++ {
		reply, err := d.query(ctx, "ERRX?")
		if err != nil {
			return messages, err
		}
		code, _, _ := strings.Cut(reply, ",")
		if strings.TrimSpace(code) == "0" {
			return messages, nil
		}
		messages = append(messages, strings.TrimSpace(reply))
	}
	return messages, fmt.Errorf("error queue did not drain after %d reads", maxErrorDrain)
}

// Close releases the session. Safe to call once.
func (d *Driver) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.logger.Info("b1500 driver closed", "identity", d.identity)
	return d.session.Close()
}

func (d *Driver) write(ctx context.Context, cmd string) error {
	err := d.session.Write(ctx, cmd)
	d.capture(iolog.OpWrite, cmd, "", err)
	return err
}

func (d *Driver) query(ctx context.Context, cmd string) (string, error) {
	reply, err := d.session.Query(ctx, cmd)
	d.capture(iolog.OpRead, cmd, reply, err)
	return reply, err
}

func (d *Driver) capture(op iolog.Op, cmd, value string, err error) {
	event := iolog.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Device:    d.identity,
		Op:        op,
		Path:      cmd,
		Value:     value,
	}
	if err != nil {
		event.Error = err.Error()
	}
	d.iolog.Log(event)
}
