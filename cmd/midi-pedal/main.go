// Command midi-pedal polls a footswitch and an expression pedal, sends MIDI
// Control Change messages for the selected controller and publishes pedal
// activity to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/midi-pedal/internal/adc"
	"github.com/sweeney/midi-pedal/internal/gpio"
	"github.com/sweeney/midi-pedal/internal/logic"
	"github.com/sweeney/midi-pedal/internal/midi"
	"github.com/sweeney/midi-pedal/internal/mqtt"
	"github.com/sweeney/midi-pedal/internal/status"
	"github.com/sweeney/midi-pedal/internal/storage"
	"github.com/sweeney/midi-pedal/internal/web"
)

type options struct {
	poll          time.Duration
	threshold     int
	heartbeat     time.Duration
	broker        string
	clientID      string
	gpioChip      string
	pin           int
	adcBus        string
	adcAddr       uint
	adcChannel    int
	eeprom        string
	eepromAddr    int
	midiPort      string
	midiSerial    string
	midiChannel   int
	controllers   string
	httpAddr      string
	wsBroker      string
	publishValues bool
	printState    bool
	listMIDI      bool
}

func main() {
	var o options
	flag.DurationVar(&o.poll, "poll", 5*time.Millisecond, "Input polling interval")
	flag.IntVar(&o.threshold, "debounce", logic.DefaultThreshold, "Consecutive samples needed to accept a footswitch change")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.StringVar(&o.clientID, "client-id", "midi-pedal", "MQTT client ID")
	flag.StringVar(&o.gpioChip, "gpio-chip", gpio.DefaultChip, "GPIO chip for the footswitch")
	flag.IntVar(&o.pin, "pin", gpio.DefaultPin, "BCM pin number for the footswitch")
	flag.StringVar(&o.adcBus, "adc-bus", adc.DefaultBus, "I2C bus of the ADS1115 (empty for the first bus)")
	flag.UintVar(&o.adcAddr, "adc-addr", adc.DefaultAddress, "I2C address of the ADS1115")
	flag.IntVar(&o.adcChannel, "adc-channel", adc.DefaultChannel, "ADS1115 input the pedal is wired to (0-3)")
	flag.StringVar(&o.eeprom, "eeprom", "/var/lib/midi-pedal/eeprom.bin", "EEPROM image holding the selected controller")
	flag.IntVar(&o.eepromAddr, "eeprom-addr", storage.DefaultAddress, "Byte address of the selection in the EEPROM image")
	flag.StringVar(&o.midiPort, "midi-port", "", "MIDI output port name")
	flag.StringVar(&o.midiSerial, "midi-serial", "", "Serial device wired as DIN MIDI out, e.g. /dev/ttyAMA0")
	flag.IntVar(&o.midiChannel, "midi-channel", 1, "MIDI channel 1-16")
	flag.StringVar(&o.controllers, "controllers", "", `Selectable controllers as "code:name,..." (default 16-20 General Cntrl)`)
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&o.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	flag.BoolVar(&o.publishValues, "publish-values", true, "Publish VALUE events to MQTT")
	flag.BoolVar(&o.printState, "print-state", false, "Print current input state and exit")
	flag.BoolVar(&o.listMIDI, "list-midi", false, "List MIDI output ports and exit")

	flag.Parse()

	o.wsBroker = resolveWSBroker(o.wsBroker, o.broker)
	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	if o.listMIDI {
		for _, name := range midi.OutPorts() {
			fmt.Println(name)
		}
		return nil
	}

	channel, err := midiChannel(o.midiChannel)
	if err != nil {
		return err
	}
	controllers, err := parseControllers(o.controllers)
	if err != nil {
		return err
	}

	// Initialize inputs
	button, err := gpio.NewRealReader(o.gpioChip, o.pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	pot, err := adc.NewRealReader(o.adcBus, uint16(o.adcAddr), o.adcChannel)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer pot.Close()

	// Print state mode
	if o.printState {
		pressed, err := button.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		reading, err := pot.Read()
		if err != nil {
			return fmt.Errorf("read adc: %w", err)
		}
		fmt.Printf("Footswitch: %s, Pedal: %d\n", stateString(pressed), reading)
		return nil
	}

	// The first reading is the full-travel calibration.
	calibration, err := pot.Read()
	if err != nil {
		return fmt.Errorf("calibrate adc: %w", err)
	}
	log.Printf("calibrated pedal maximum: %d", calibration)

	if err := os.MkdirAll(filepath.Dir(o.eeprom), 0755); err != nil {
		return fmt.Errorf("create eeprom dir: %w", err)
	}
	store, err := storage.NewFileStore(o.eeprom, o.eepromAddr, storage.DefaultSize)
	if err != nil {
		return fmt.Errorf("init eeprom: %w", err)
	}

	startTime := time.Now()
	pedal, err := logic.NewPedal(logic.PedalConfig{
		Threshold:   o.threshold,
		Controllers: controllers,
	}, store, calibration, startTime)
	if err != nil {
		return fmt.Errorf("init pedal: %w", err)
	}
	if pedal.Selector().Repaired() {
		log.Printf("stored controller index out of range, reset to %s", pedal.Selector().Label())
	}
	log.Printf("selected controller: %s", pedal.Selector().Label())

	// Initialize MIDI output
	sender, output, err := openSender(o.midiPort, o.midiSerial)
	if err != nil {
		return err
	}
	if sender != nil {
		defer sender.Close()
		log.Printf("midi: sending on %s channel %d", output, o.midiChannel)
	} else {
		log.Printf("midi: no output configured, control changes are not sent")
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(o.broker, o.clientID, mqtt.DefaultBufferSize)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:          o.poll.Milliseconds(),
		DebounceSamples: pedal.Debouncer().Threshold(),
		HeartbeatMs:     o.heartbeat.Milliseconds(),
		Broker:          o.broker,
		HTTPPort:        o.httpAddr,
		MIDIOutput:      output,
		MIDIChannel:     o.midiChannel,
		EEPROM:          o.eeprom,
		WSBroker:        o.wsBroker,
	})
	tracker.SetCalibration(calibration, pedal.Selector().Controllers())
	updateTracker(tracker, pedal, publisher)
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: poll=%v debounce=%d broker=%s heartbeat=%v", o.poll, pedal.Debouncer().Threshold(), o.broker, o.heartbeat)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cfg := loopConfig{
		midiChannel:   channel,
		publishValues: o.publishValues,
		heartbeat:     o.heartbeat,
	}
	return runLoop(pedal, button, pot, sender, publisher, publisher, tracker, cfg, time.Now, ticker.C, sigCh)
}

// loopConfig holds the runLoop settings that are not collaborators.
type loopConfig struct {
	midiChannel   uint8 // 0-15
	publishValues bool
	heartbeat     time.Duration
}

// runLoop drives the pedal once per tick until a signal arrives. sender,
// mqttStatus and tracker may be nil.
func runLoop(pedal *logic.Pedal, button gpio.Reader, pot adc.Reader, sender midi.Sender, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, cfg loopConfig, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				updateTracker(tracker, pedal, mqttStatus)
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			pressed, err := button.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}
			reading, err := pot.Read()
			if err != nil {
				log.Printf("adc read error: %v", err)
				continue
			}

			events, err := pedal.Process(logic.Input{
				Pressed: pressed,
				Reading: reading,
				Time:    t,
			})
			if err != nil {
				// The selection still moved; it is lost on power off.
				log.Printf("eeprom write error: %v", err)
			}

			for _, event := range events {
				switch event.Type {
				case logic.EventValue:
					if sender != nil {
						if err := sender.SendControlChange(cfg.midiChannel, event.Controller.Code, event.Value); err != nil {
							log.Printf("midi: send error: %v", err)
						}
					}
					if !cfg.publishValues {
						continue
					}
				case logic.EventSelect:
					log.Printf("event: %s %s", event.Type, event.Controller.Label())
				default:
					log.Printf("event: %s", event.Type)
				}
				if err := publisher.Publish(event); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
			}

			// Check for heartbeat
			if hbData := pedal.CheckHeartbeat(t, cfg.heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v presses=%d selects=%d values=%d",
					hbData.Uptime, hbData.Counts.Presses, hbData.Counts.Selects, hbData.Counts.Values)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					updateTracker(tracker, pedal, mqttStatus)
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				updateTracker(tracker, pedal, mqttStatus)
			}
		}
	}
}

func updateTracker(tracker *status.Tracker, pedal *logic.Pedal, mqttStatus mqtt.ConnectionStatus) {
	button, ctrl, value := pedal.CurrentState()
	tracker.Update(status.PedalState{
		Button:     button,
		Controller: ctrl,
		Index:      pedal.Selector().Index(),
		Value:      value,
		Reading:    pedal.Converter().LastReading(),
	}, pedal.EventCountsSnapshot())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

// openSender opens the configured MIDI output. Both empty means no output.
func openSender(port, serialDevice string) (midi.Sender, string, error) {
	switch {
	case port != "" && serialDevice != "":
		return nil, "", errors.New("set only one of --midi-port and --midi-serial")
	case serialDevice != "":
		s, err := midi.NewSerialSender(serialDevice)
		if err != nil {
			return nil, "", fmt.Errorf("init midi serial: %w", err)
		}
		return s, s.Name(), nil
	case port != "":
		p, err := midi.NewPortSender(port)
		if err != nil {
			return nil, "", fmt.Errorf("init midi port: %w", err)
		}
		return p, p.Name(), nil
	}
	return nil, "", nil
}

// midiChannel converts a 1-16 channel number to its 0-15 wire form.
func midiChannel(ch int) (uint8, error) {
	if ch < 1 || ch > 16 {
		return 0, fmt.Errorf("midi channel %d out of range 1-16", ch)
	}
	return uint8(ch - 1), nil
}

// parseControllers parses "16:Volume,17:Wah" into a controller list.
// An empty string returns nil, which selects the defaults.
func parseControllers(s string) ([]logic.Controller, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []logic.Controller
	for _, item := range strings.Split(s, ",") {
		code, name, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("controller %q: want code:name", item)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(code), 10, 8)
		if err != nil || n > 127 {
			return nil, fmt.Errorf("controller %q: code must be 0-127", item)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("controller %q: empty name", item)
		}
		out = append(out, logic.Controller{Name: name, Code: uint8(n)})
	}
	return out, nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return string(logic.StateOn)
	}
	return string(logic.StateOff)
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
