package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/config"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/fbdev"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/observability"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/ops"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
	"github.com/adamdewolf/OpenCentauri-VNC/internal/server"
)

// testPatternSize is the synthetic display used when no framebuffer is
// available, matching the portrait panel the daemon usually fronts.
const (
	testPatternWidth  = 480
	testPatternHeight = 544
)

func main() {
	root := rootCmd()
	root.AddCommand(configCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		device     string
		port       int
		fps        int
		name       string
		opsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "fbvncd",
		Short: "Read-only VNC streamer for the Linux framebuffer",
		Long: `fbvncd mirrors a framebuffer device to VNC viewers over the RFB
protocol. The display is never written: the daemon maps the device
read-only and streams full frames at a fixed rate to one viewer at
a time. Use device "test" for a synthetic pattern when no
framebuffer is present.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("device") {
				cfg.Device = device
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("fps") {
				cfg.FPS = rfb.ClampFPS(fps)
			}
			if cmd.Flags().Changed("name") {
				cfg.Name = name
			}
			if cmd.Flags().Changed("ops-addr") {
				cfg.OpsAddr = opsAddr
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVarP(&device, "device", "f", "/dev/fb0", `framebuffer device, or "test" for a synthetic pattern`)
	cmd.Flags().IntVarP(&port, "port", "p", 5900, "TCP port for the RFB listener")
	cmd.Flags().IntVar(&fps, "fps", 3, "frames per second (clamped to 1..15)")
	cmd.Flags().StringVar(&name, "name", "fb0 (RAW)", "desktop name announced to viewers")
	cmd.Flags().StringVar(&opsAddr, "ops-addr", "", "listen address for the ops HTTP endpoint (empty disables it)")
	return cmd
}

func run(cfg config.Config) error {
	logger := observability.InitLogger("fbvncd")
	observability.RegisterMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src rfb.FrameSource
	if cfg.Device == config.DeviceTestPattern {
		src = fbdev.NewTestPattern(testPatternWidth, testPatternHeight)
		logger.Info().Msg("using synthetic test pattern")
	} else {
		dev, err := fbdev.Open(cfg.Device)
		if err != nil {
			return err
		}
		defer dev.Close()
		src = dev
	}

	g := src.Geometry()
	logger.Info().
		Str("device", cfg.Device).
		Int("width", g.Width).
		Int("height", g.Height).
		Int("stride", g.Stride).
		Int("fps", cfg.FPS).
		Int("port", cfg.Port).
		Msg("starting streamer")

	gate := server.NewGate()
	srv, err := server.New(cfg.Port, src, gate, cfg.Name, cfg.FPS, logger)
	if err != nil {
		return err
	}

	if cfg.OpsAddr != "" {
		opsSrv := ops.New(ops.Options{
			Node:        "fbvncd",
			Device:      cfg.Device,
			Name:        cfg.Name,
			FPS:         cfg.FPS,
			CorsOrigins: cfg.CorsOrigins,
			Source:      src,
			Gate:        gate,
			Logger:      logger,
		})
		go func() {
			if err := opsSrv.Run(cfg.OpsAddr); err != nil {
				logger.Error().Err(err).Str("addr", cfg.OpsAddr).Msg("ops endpoint stopped")
			}
		}()
		logger.Info().Str("addr", cfg.OpsAddr).Msg("ops endpoint listening")
	}

	err = srv.RunForever(ctx)
	logger.Info().Msg("shutting down")
	return err
}
