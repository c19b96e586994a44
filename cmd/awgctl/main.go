// Command awgctl is an interactive control console for HDAWG arbitrary
// waveform generators.
//
// It connects to a data server session, downloads the device node tree,
// binds every node to a named parameter, and drops into a readline shell
// for reading and writing parameters, uploading waveforms and sequence
// programs, and exporting waveform CSV files.
//
// Usage:
//
//	awgctl [flags]
//
// Flags:
//
//	-device string      Device ID, e.g. dev8888 (default "dev8888")
//	-config string      Configuration file path (YAML)
//	-sim                Run against the built-in device simulator (default true)
//	-wave-dir string    AWG module directory for CSV export (default temp dir)
//	-iolog string       Write instrument I/O capture to this .ilog file
//	-advertise          Advertise the simulated data server via mDNS
//	-iface string       Network interface for mDNS (default all)
//	-poll-timeout       Compiler/upload poll timeout (default 30s)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Simulated device, capture all instrument I/O
//	awgctl -sim -iolog session.ilog
//
//	# Simulated device advertised on the local network
//	awgctl -sim -advertise -device dev8888
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/equal1/labdrivers/cmd/awgctl/interactive"
	"github.com/equal1/labdrivers/pkg/discovery"
	"github.com/equal1/labdrivers/pkg/hdawg"
	"github.com/equal1/labdrivers/pkg/iolog"
	"github.com/equal1/labdrivers/pkg/ziapi"
	"github.com/equal1/labdrivers/pkg/zisim"
)

// Config holds the console configuration.
type Config struct {
	DeviceID    string
	ConfigFile  string
	Simulate    bool
	WaveDir     string
	IOLogPath   string
	Advertise   bool
	Interface   string
	PollTimeout time.Duration
	LogLevel    string
}

var config Config

func init() {
	flag.StringVar(&config.DeviceID, "device", "dev8888", "Device ID, e.g. dev8888")
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.BoolVar(&config.Simulate, "sim", true, "Run against the built-in device simulator")
	flag.StringVar(&config.WaveDir, "wave-dir", "", "AWG module directory for CSV export (default temp dir)")
	flag.StringVar(&config.IOLogPath, "iolog", "", "Write instrument I/O capture to this .ilog file")
	flag.BoolVar(&config.Advertise, "advertise", false, "Advertise the simulated data server via mDNS")
	flag.StringVar(&config.Interface, "iface", "", "Network interface for mDNS (default all)")
	flag.DurationVar(&config.PollTimeout, "poll-timeout", hdawg.DefaultPollTimeout, "Compiler/upload poll timeout")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	if config.ConfigFile != "" {
		if err := loadConfigFile(config.ConfigFile, &config); err != nil {
			log.Fatalf("Failed to load config file: %v", err)
		}
	}

	logger := setupLogging(config.LogLevel)

	log.SetFlags(log.Ltime | log.Lmicroseconds)
	log.Println("HDAWG Control Console")
	log.Println("=====================")
	log.Printf("Device: %s", config.DeviceID)

	if err := validateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	applyDefaults()

	// Only the simulator backend ships with this tool. A vendor-backed
	// ziapi.Session can drive the same hdawg.Driver from library code.
	if !config.Simulate {
		log.Fatal("Only -sim mode is supported by this console")
	}

	server := zisim.NewServer(config.DeviceID)
	server.SeedHDAWG()
	server.Compiler().SetDirectory(config.WaveDir)
	// Unscripted compiles succeed; the shell's sim command overrides this.
	server.Compiler().ScriptCompiler("", ziapi.CompilerInProgress, ziapi.CompilerSuccess)
	server.Compiler().ScriptProgress(0.5, 1.0)
	log.Printf("Simulator ready (wave dir: %s)", config.WaveDir)

	var advertiser *discovery.Advertiser
	if config.Advertise {
		advertiser = discovery.NewAdvertiser(config.Interface)
		err := advertiser.Advertise(&discovery.ServerInfo{
			InstanceName: "awgctl-sim",
			Port:         discovery.DefaultPort,
			Devices:      []string{config.DeviceID},
			Version:      "25.08",
			APILevel:     "6",
		})
		if err != nil {
			log.Printf("Warning: mDNS advertise failed: %v", err)
		} else {
			log.Printf("Advertising %s on %s", config.DeviceID, discovery.ServiceTypeDataServer)
			defer advertiser.Stop()
		}
	}

	var capture iolog.Logger = iolog.NoopLogger{}
	if config.IOLogPath != "" {
		fileLogger, err := iolog.NewFileLogger(config.IOLogPath)
		if err != nil {
			log.Fatalf("Failed to open I/O log: %v", err)
		}
		defer fileLogger.Close()
		capture = fileLogger
		log.Printf("Capturing instrument I/O to %s", config.IOLogPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	driver, err := hdawg.Open(ctx, hdawg.Config{
		DeviceID:    config.DeviceID,
		Session:     server,
		PollTimeout: config.PollTimeout,
		IOLogger:    capture,
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("Failed to open driver: %v", err)
	}
	log.Printf("Driver session %s, %d parameters bound", driver.SessionID(), driver.Params().Len())

	shell, err := interactive.New(driver, server)
	if err != nil {
		log.Fatalf("Failed to create shell: %v", err)
	}

	// Route log output through readline so it doesn't clobber the prompt.
	log.SetOutput(shell.Stdout())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	shell.Run(ctx, cancel)

	log.SetOutput(os.Stderr)
	if err := driver.Close(); err != nil {
		log.Printf("Error closing driver: %v", err)
	}
	log.Println("Goodbye!")
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler)
}

func validateConfig() error {
	if config.DeviceID == "" {
		return fmt.Errorf("device ID is required")
	}
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return fmt.Errorf("unknown log level: %s", config.LogLevel)
	}
	return nil
}

func applyDefaults() {
	if config.WaveDir == "" {
		config.WaveDir = filepath.Join(os.TempDir(), "awgctl")
	}
	// WaveformToCSV requires <dir>/awg/waves to exist.
	if err := os.MkdirAll(filepath.Join(config.WaveDir, "awg", "waves"), 0755); err != nil {
		log.Fatalf("Failed to create wave directory: %v", err)
	}
}
