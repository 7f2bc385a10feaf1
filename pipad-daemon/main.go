package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/pipad/board"
	log "github.com/sirupsen/logrus"
)

func main() {
	daemon := keypadDaemon{
		board: board.DefaultBoard,
	}

	daemon.board.RegisterFlags(flag.CommandLine)
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	if daemon.board.ConfigFile != "" {
		golib.Checkerr(daemon.board.LoadConfig(flag.CommandLine, daemon.board.ConfigFile))
	}

	// "Clean" shutdown with Ctrl-C signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(daemon.stop)
	}
	defer cleanup()
	go func() {
		fmt.Println("Received signal", <-c)
		cleanup()
		os.Exit(0)
	}()

	err := daemon.run() // Only returns on hardware errors
	cleanup()
	golib.Checkerr(err)
}

type keypadDaemon struct {
	board board.Board
}

func (d *keypadDaemon) run() error {
	// Initialize USB/I2C peripherals
	if err := d.board.Setup(); err != nil {
		return err
	}
	scanner, err := d.board.NewScanner()
	if err != nil {
		return fmt.Errorf("Calibration failed: %v", err)
	}
	log.Printf("Calibrated %v keys", scanner.NumKeys())
	return scanner.Run()
}

func (d *keypadDaemon) stop() {
	d.board.Cleanup()
}
