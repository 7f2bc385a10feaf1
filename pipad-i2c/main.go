package main

import (
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/antongulenko/golib"
	"github.com/antongulenko/pipad/board"
	"github.com/antongulenko/pipad/ft260"
	"github.com/antongulenko/pipad/keypad"
	log "github.com/sirupsen/logrus"
)

type commandFunc func() error

var (
	b         = board.DefaultBoard
	sleepTime = 400 * time.Millisecond
	benchTime = 3 * time.Second
	command   = "scan"
	channel   = 0
	blinks    = 5
	commands  = map[string]commandFunc{
		"none":      func() error { return nil },
		"scan":      scan,
		"bench":     samplerSpeedTest,
		"mux":       selectChannel,
		"read":      readChannels,
		"calibrate": calibrate,
		"watch":     watch,
		"indicator": blinkIndicator,
	}
)

func main() {
	b.RegisterFlags(flag.CommandLine)
	flag.DurationVar(&sleepTime, "sleep", sleepTime, "Sleep time between updates (read, indicator, watch commands)")
	flag.DurationVar(&benchTime, "benchTime", benchTime, "Benchmark time (bench command)")
	flag.StringVar(&command, "c", command, fmt.Sprintf("Command to execute, one of: %v", commandNames()))
	flag.IntVar(&channel, "channel", channel, "Mux channel for the mux and bench commands (0..15)")
	flag.IntVar(&blinks, "n", blinks, "Number of indicator blinks (indicator command)")
	golib.RegisterLogFlags()
	flag.Parse()
	golib.ConfigureLogging()
	if b.ConfigFile != "" {
		golib.Checkerr(b.LoadConfig(flag.CommandLine, b.ConfigFile))
	}
	err := doMain()
	b.Cleanup()
	golib.Checkerr(err)
}

func commandNames() []string {
	allCommandNames := make([]string, 0, len(commands))
	for commandName := range commands {
		allCommandNames = append(allCommandNames, commandName)
	}
	sort.Strings(allCommandNames)
	return allCommandNames
}

func doMain() error {
	commandFunc, ok := commands[command]
	if !ok {
		return fmt.Errorf("Unknown command %v, available commands: %v", command, commandNames())
	}
	if channel < 0 || channel >= keypad.NumChannels {
		return fmt.Errorf("Invalid mux channel %v (must be 0..%v)", channel, keypad.NumChannels-1)
	}
	if err := b.Setup(); err != nil {
		return err
	}
	return commandFunc()
}

func scan() error {
	slaves, err := ft260.I2cScan(b.Bus())
	if err != nil {
		return err
	}
	log.Printf("Scanned slaves: %#02v", slaves)
	return nil
}

func selectChannel() error {
	levels := keypad.SelectLevels(channel)
	log.Printf("Selecting mux channel %v (S0..S3: %v)", channel, levels)
	return b.Mux().Select(channel)
}

// Logs the readings of all channels on both buses, until interrupted
func readChannels() error {
	for {
		for ch := 0; ch < keypad.NumChannels; ch++ {
			if err := b.Mux().Select(ch); err != nil {
				return err
			}
			var values [keypad.NumBuses]keypad.Value
			for bus := range values {
				val, err := b.AnalogSampler().Read(keypad.Bus(bus))
				if err != nil {
					return err
				}
				values[bus] = val
			}
			log.Printf("Channel %2v: %v=%v %v=%v", ch, keypad.Bus0, values[0], keypad.Bus1, values[1])
		}
		time.Sleep(sleepTime)
	}
}

func calibrate() error {
	scanner, err := b.NewScanner()
	if err != nil {
		return err
	}
	for bus := keypad.Bus0; bus < keypad.NumBuses; bus++ {
		for ch := 0; ch < keypad.NumChannels; ch++ {
			if key := scanner.Key(bus, ch); key != nil {
				log.Printf("%v:%2v %-10v rests at %v", bus, ch, key.Code(), key.Resting())
			}
		}
	}
	return nil
}

func watch() error {
	scanner, err := b.NewScanner()
	if err != nil {
		return err
	}
	var previous []keypad.KeyCode
	for {
		if err := scanner.Scan(); err != nil {
			return err
		}
		if pressed := scanner.PressedKeys(); !sameKeys(pressed, previous) {
			log.Printf("Cycle %v: pressed %v", scanner.Cycles(), pressed)
			previous = pressed
		}
		time.Sleep(b.ScanInterval)
	}
}

func sameKeys(x, y []keypad.KeyCode) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func blinkIndicator() error {
	indicator := b.Indicator()
	for i := 0; i < blinks; i++ {
		if err := indicator.Set(true); err != nil {
			return err
		}
		time.Sleep(sleepTime)
		if err := indicator.Set(false); err != nil {
			return err
		}
		time.Sleep(sleepTime)
	}
	return nil
}

func samplerSpeedTest() error {
	if err := b.Mux().Select(channel); err != nil {
		return err
	}
	log.Printf("Measuring readings of channel %v on %v...", channel, keypad.Bus0)
	return bench(func() error {
		_, err := b.AnalogSampler().Read(keypad.Bus0)
		return err
	})
}

func bench(benchFunc func() error) error {
	start := time.Now()
	for i := 1; ; i++ {
		if err := benchFunc(); err != nil {
			return err
		}
		if i%20 == 0 {
			if duration := time.Now().Sub(start); duration > benchTime {
				log.Printf("Performed %v readings in %v -> %.1f readings/s", i, duration, float64(i)/duration.Seconds())
				break
			}
		}
	}
	return nil
}
