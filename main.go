// ABOUTME: Entry point for the multiplay multi-device player
// ABOUTME: Parses CLI flags, lists or finds devices, or plays a config file
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/multiplay-audio/multiplay/internal/app"
	"github.com/multiplay-audio/multiplay/internal/playback"
	"github.com/multiplay-audio/multiplay/internal/version"
	"github.com/multiplay-audio/multiplay/pkg/audio/output"
)

var (
	listDevices bool
	findDevices string

	backendName  = flag.String("backend", "malgo", "Output backend ("+strings.Join(output.Backends(), ", ")+")")
	pollInterval = flag.Duration("poll", playback.DefaultPollInterval, "How often to check for finished players")
	resampleRate = flag.Int("resample", 0, "Resample every file to this rate in Hz (0 = keep file rate)")
	logFile      = flag.String("log-file", "multiplay.log", "Log file path")
	useTUI       = flag.Bool("tui", false, "Show progress view instead of streaming logs")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func init() {
	flag.BoolVar(&listDevices, "l", false, "Show list of output devices and exit")
	flag.BoolVar(&listDevices, "list-devices", false, "Show list of output devices and exit")
	flag.StringVar(&findDevices, "f", "", "Show output devices whose name contains this text and exit")
	flag.StringVar(&findDevices, "find-devices", "", "Show output devices whose name contains this text and exit")
	flag.Usage = printUsage
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	playMode := !listDevices && findDevices == ""
	if playMode && flag.NArg() != 1 {
		printUsage()
		os.Exit(2)
	}

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if *useTUI || !playMode {
		// Device listings and the TUI own stdout: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	backend, err := output.New(*backendName)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", *backendName, err)
	}
	defer func() { _ = backend.Close() }()

	if listDevices {
		devices, err := output.ListOutputDevices(backend)
		if err != nil {
			log.Fatalf("Failed to list devices: %v", err)
		}
		printDevices(os.Stdout, devices)
		return
	}

	if findDevices != "" {
		devices, err := output.FindOutputDevices(backend, findDevices)
		if err != nil {
			log.Fatalf("Failed to find devices: %v", err)
		}
		printDevices(os.Stdout, devices)
		return
	}

	log.Printf("Starting %s with %s backend", version.String(), backend.Name())

	a := app.New(app.Config{
		ConfigPath:   flag.Arg(0),
		Backend:      backend,
		PollInterval: *pollInterval,
		ResampleRate: *resampleRate,
		UseTUI:       *useTUI,
	})

	if err := a.Load(); err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		// Workers already reported their failures; interrupted and completed runs both exit 0
		log.Printf("Some files did not play: %v", err)
	}
}

// printDevices writes one "<name>, <hostapi>" line per device
func printDevices(w io.Writer, devices []output.Device) {
	for _, d := range devices {
		fmt.Fprintln(w, d.Label())
	}
}

func printUsage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "\nUsage:")
	fmt.Fprintln(out, "  multiplay [flags] FILENAME")
	fmt.Fprintln(out, "  multiplay -l")
	fmt.Fprintln(out, "  multiplay -f <text>")
	fmt.Fprintln(out, "\nFILENAME is a config file with one FILENAME=DEVICE line per file.")
	fmt.Fprintln(out, "DEVICE is a device index or (part of) a device name.")
	fmt.Fprintln(out, "\nFlags:")
	fmt.Fprintln(out, "  -l, -list-devices     Show list of output devices and exit")
	fmt.Fprintln(out, "  -f, -find-devices     Show output devices whose name contains text and exit")
	fmt.Fprintln(out, "  -backend              Output backend (default malgo)")
	fmt.Fprintln(out, "  -poll                 Finished-player check interval (default 1s)")
	fmt.Fprintln(out, "  -resample             Resample every file to this rate in Hz")
	fmt.Fprintln(out, "  -log-file             Log file path (default multiplay.log)")
	fmt.Fprintln(out, "  -tui                  Show progress view")
	fmt.Fprintln(out, "  -version              Print version and exit")
	fmt.Fprintln(out)
}
