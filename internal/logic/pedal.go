package logic

import "time"

// PedalConfig configures the pedal core.
type PedalConfig struct {
	// Threshold is the debounce sample count (DefaultThreshold if <= 0).
	Threshold int
	// Controllers is the selectable list (DefaultControllers if empty).
	Controllers []Controller
}

// Pedal composes the footswitch debouncer, the controller selector and the
// pedal converter. It is driven once per poll by the run loop.
type Pedal struct {
	button        *Debouncer
	selector      *Selector
	converter     *Converter
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
}

// NewPedal builds the pedal core. calibration is the first ADC reading,
// taken with the pedal at full travel. startTime is used for heartbeat uptime.
func NewPedal(cfg PedalConfig, store IndexStore, calibration int, startTime time.Time) (*Pedal, error) {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	controllers := cfg.Controllers
	if len(controllers) == 0 {
		controllers = DefaultControllers
	}

	selector, err := NewSelector(controllers, store)
	if err != nil {
		return nil, err
	}

	return &Pedal{
		button:        NewDebouncer(threshold),
		selector:      selector,
		converter:     NewConverter(calibration),
		startTime:     startTime,
		lastHeartbeat: startTime,
	}, nil
}

// Process takes one poll of both sensors and returns the events it produced,
// in the order PRESS/RELEASE, SELECT, VALUE.
// A non-nil error means the new selection could not be saved. The events are
// still valid and the selection has moved in memory.
func (p *Pedal) Process(input Input) ([]Event, error) {
	var events []Event

	if p.button.Sample(input.Pressed) {
		t := EventRelease
		if p.button.IsOn() {
			t = EventPress
		}
		events = append(events, p.event(t, input.Time))
	}

	advanced, err := p.selector.Advance(p.button)
	if advanced {
		events = append(events, p.event(EventSelect, input.Time))
	}

	if p.converter.Sample(input.Reading) {
		events = append(events, p.event(EventValue, input.Time))
	}

	for _, e := range events {
		switch e.Type {
		case EventPress:
			p.eventCounts.Presses++
		case EventRelease:
			p.eventCounts.Releases++
		case EventSelect:
			p.eventCounts.Selects++
		case EventValue:
			p.eventCounts.Values++
		}
	}

	return events, err
}

func (p *Pedal) event(t EventType, now time.Time) Event {
	return Event{
		Timestamp:  now,
		Type:       t,
		Button:     p.button.State(),
		Controller: p.selector.Current(),
		Value:      p.converter.Value(),
	}
}

// CurrentState returns the button state, the selected controller and the
// current pedal value.
func (p *Pedal) CurrentState() (State, Controller, uint8) {
	return p.button.State(), p.selector.Current(), p.converter.Value()
}

// EventCountsSnapshot returns a copy of the event counters.
func (p *Pedal) EventCountsSnapshot() EventCounts {
	return p.eventCounts
}

func (p *Pedal) Debouncer() *Debouncer { return p.button }
func (p *Pedal) Selector() *Selector   { return p.selector }
func (p *Pedal) Converter() *Converter { return p.converter }

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed or
// if interval is <= 0 (disabled).
func (p *Pedal) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(p.lastHeartbeat) < interval {
		return nil
	}

	p.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(p.startTime),
		Counts:    p.eventCounts,
	}
}
