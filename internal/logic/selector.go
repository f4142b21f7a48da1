package logic

import (
	"errors"
	"fmt"
)

// Controller is a selectable MIDI continuous controller.
type Controller struct {
	Name string
	Code uint8
}

// Label is the display form shown to the player, e.g. "17 General Cntrl".
func (c Controller) Label() string {
	return fmt.Sprintf("%2d %s", c.Code, c.Name)
}

// DefaultControllers are the general purpose controllers 16-20.
var DefaultControllers = []Controller{
	{Name: "General Cntrl", Code: 16},
	{Name: "General Cntrl", Code: 17},
	{Name: "General Cntrl", Code: 18},
	{Name: "General Cntrl", Code: 19},
	{Name: "General Cntrl", Code: 20},
}

// IndexStore is durable storage for the selected controller index.
type IndexStore interface {
	LoadIndex() (byte, error)
	SaveIndex(index byte) error
}

// PressSource yields at most one press per physical press.
// *Debouncer implements it.
type PressSource interface {
	TakePress() bool
}

// ErrNoControllers is returned by NewSelector for an empty controller list.
var ErrNoControllers = errors.New("selector: no controllers configured")

// Selector cycles through a fixed list of controllers and keeps the chosen
// index in an IndexStore. Every advance is written through immediately.
type Selector struct {
	items    []Controller
	index    int
	store    IndexStore
	repaired bool
}

// NewSelector loads the stored index. An index outside the controller list
// (e.g. after the list shrank) is reset to 0 and written back.
func NewSelector(items []Controller, store IndexStore) (*Selector, error) {
	if len(items) == 0 {
		return nil, ErrNoControllers
	}
	if len(items) > 256 {
		return nil, fmt.Errorf("selector: %d controllers do not fit a one-byte index", len(items))
	}

	stored, err := store.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	s := &Selector{
		items: append([]Controller(nil), items...),
		index: int(stored),
		store: store,
	}
	if s.index >= len(s.items) {
		s.index = 0
		s.repaired = true
		if err := store.SaveIndex(0); err != nil {
			return nil, fmt.Errorf("reset index: %w", err)
		}
	}
	return s, nil
}

// Advance moves to the next controller, wrapping at the end of the list, if
// src has an unused press. The new index is saved before Advance returns.
// On a save error the in-memory selection has still moved.
func (s *Selector) Advance(src PressSource) (bool, error) {
	if !src.TakePress() {
		return false, nil
	}

	s.index = (s.index + 1) % len(s.items)
	if err := s.store.SaveIndex(byte(s.index)); err != nil {
		return true, fmt.Errorf("save index %d: %w", s.index, err)
	}
	return true, nil
}

// Repaired reports whether the stored index was out of range at startup.
func (s *Selector) Repaired() bool {
	return s.repaired
}

func (s *Selector) Index() int                { return s.index }
func (s *Selector) Len() int                  { return len(s.items) }
func (s *Selector) Current() Controller       { return s.items[s.index] }
func (s *Selector) CurrentCode() uint8        { return s.items[s.index].Code }
func (s *Selector) CurrentName() string       { return s.items[s.index].Name }
func (s *Selector) Label() string             { return s.items[s.index].Label() }
func (s *Selector) Controllers() []Controller { return append([]Controller(nil), s.items...) }
