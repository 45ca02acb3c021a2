package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/catctl/audio"
	"github.com/lixenwraith/catctl/client"
	"github.com/lixenwraith/catctl/input"
	"github.com/lixenwraith/catctl/network"
	"github.com/lixenwraith/catctl/terminal"
)

// Version is set at build time
var Version = "dev"

type options struct {
	host           string
	port           int
	connectTimeout time.Duration
	keys           string
	ui             string
	idle           time.Duration
	sound          bool
	volume         float64
	debug          bool
	logFile        string
}

// environment holds what run needs from the process, swapped in tests
type environment struct {
	stdout     io.Writer
	stderr     io.Writer
	newBackend func() terminal.Backend
}

func processEnvironment() environment {
	return environment{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		newBackend: terminal.NewBackend,
	}
}

// exitError carries a non-zero exit code out of cobra
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd(env environment) *cobra.Command {
	netCfg := network.LoadConfig()
	audioCfg := audio.LoadConfig()

	opts := options{
		host:           netCfg.Host,
		port:           netCfg.Port,
		connectTimeout: netCfg.ConnectTimeout,
		keys:           "auto",
		ui:             "plain",
		idle:           client.DefaultIdleDelay,
		sound:          audioCfg.Enabled,
		volume:         audioCfg.MasterVolume,
		logFile:        defaultLogPath,
	}

	cmd := &cobra.Command{
		Use:   "catctl",
		Short: "Drive a remote peer with arrow keys over TCP",
		Long: `catctl reads single keystrokes and sends UP, DOWN, LEFT, RIGHT or QUIT
to a peer over one TCP connection, printing each reply.

Arrow keys send directions, q sends QUIT, e exits without sending.`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code := run(cmd.Context(), opts, audioCfg, env); code != client.ExitOK {
				return exitError{code: code}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.host, "host", opts.host, "peer host (env CATCTL_HOST)")
	f.IntVar(&opts.port, "port", opts.port, "peer port (env CATCTL_PORT)")
	f.DurationVar(&opts.connectTimeout, "connect-timeout", opts.connectTimeout, "dial timeout, 0 uses the OS default (env CATCTL_CONNECT_TIMEOUT)")
	f.StringVar(&opts.keys, "keys", opts.keys, "arrow key encoding: auto, escape, console")
	f.StringVar(&opts.ui, "ui", opts.ui, "console style: plain, screen")
	f.DurationVar(&opts.idle, "idle", opts.idle, "delay between polls when no key is pending")
	f.BoolVar(&opts.sound, "sound", opts.sound, "play audio cues (env CATCTL_AUDIO_ENABLED)")
	f.Float64Var(&opts.volume, "volume", opts.volume, "audio cue volume 0.0-1.0 (env CATCTL_MASTER_VOLUME as 0-100)")
	f.BoolVar(&opts.debug, "debug", false, "write debug log to --log-file")
	f.StringVar(&opts.logFile, "log-file", opts.logFile, "debug log path")

	return cmd
}

// run executes one client session and returns the process exit code
func run(ctx context.Context, opts options, audioCfg *audio.Config, env environment) int {
	if ctx == nil {
		ctx = context.Background()
	}

	if logFile := setupLogging(opts.debug, opts.logFile); logFile != nil {
		defer logFile.Close()
	}
	log := logrus.WithField("session", uuid.NewString())

	printer := terminal.NewPrinter(env.stdout, env.stderr)

	conv, err := input.ParseConvention(opts.keys)
	if err != nil {
		printer.Errorf("%v", err)
		return client.ExitSetup
	}
	table := input.KeyTableFor(conv)

	cfg := network.DefaultConfig()
	cfg.Host = opts.host
	cfg.Port = opts.port
	cfg.ConnectTimeout = opts.connectTimeout

	var backend terminal.Backend
	var console client.Console = printer
	switch opts.ui {
	case "", "plain":
		backend = env.newBackend()
	case "screen":
		scr := terminal.NewScreen(nil, table, "catctl "+cfg.Address())
		backend = scr
		console = scr
		// Runs after the screen is torn down so the transcript stays visible
		defer func() {
			for _, line := range scr.Lines() {
				printer.Infof("%s", line)
			}
		}()
	default:
		printer.Errorf("unknown ui %q (want plain or screen)", opts.ui)
		return client.ExitSetup
	}

	log.WithFields(logrus.Fields{
		"addr": cfg.Address(),
		"keys": conv.String(),
		"ui":   opts.ui,
	}).Info("starting")

	term := terminal.New(backend)
	if err := term.Init(); err != nil {
		printer.Errorf("Failed to initialize terminal: %v", err)
		return client.ExitSetup
	}
	defer term.Fini()

	console.Infof("Connecting to %s...", cfg.Address())
	conn, err := network.Dial(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("setup failed")
		reportSetupError(console, cfg, err)
		return client.ExitSetup
	}
	defer conn.Close()

	console.Infof("Connected to %s", cfg.Address())
	console.Infof("Use arrow keys to move. Press 'q' to send QUIT, 'e' to exit.")

	cueCfg := *audioCfg
	cueCfg.Enabled = opts.sound
	cueCfg.MasterVolume = opts.volume
	cues := audio.NewCues(&cueCfg)
	if err := cues.Init(); err != nil {
		log.WithError(err).Warn("audio unavailable")
		console.Errorf("Audio cues disabled: %v", err)
	}
	defer cues.Close()

	loop := &client.Loop{
		Decoder:   input.NewDecoder(term, table),
		Conn:      conn,
		Console:   console,
		Cues:      cues,
		IdleDelay: opts.idle,
		Log:       log,
	}
	res := loop.Run(ctx)

	entry := log.WithField("reason", res.Reason.String())
	if res.Err != nil {
		entry = entry.WithError(res.Err)
	}
	entry.Info("session ended")

	console.Infof("Client finished.")
	return res.ExitCode()
}

// reportSetupError prints an operator-facing message for a failed Dial
func reportSetupError(console client.Console, cfg *network.Config, err error) {
	var setupErr *network.SetupError
	if !errors.As(err, &setupErr) {
		console.Errorf("Connection Failed: %v", err)
		return
	}

	switch {
	case setupErr.Stage == network.StageAddress || setupErr.Stage == network.StageResolve:
		console.Errorf("Invalid address/ Address not supported: %v", setupErr.Err)
	case setupErr.Refused():
		console.Errorf("Connection refused. Make sure the server is running on %s.", cfg.Address())
	default:
		console.Errorf("Connection Failed: %v", setupErr.Err)
	}
}

func main() {
	// Panic Recovery: Ensure terminal is reset even if the client crashes
	defer func() {
		if r := recover(); r != nil {
			terminal.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\n\x1b[31mCATCTL CRASHED: %v\x1b[0m\n", r)
			fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())
			os.Exit(1)
		}
	}()

	cmd := newRootCmd(processEnvironment())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(client.ExitSetup)
	}
}
