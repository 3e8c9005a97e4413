package shipping

import "errors"

// ErrNoSuchOption is returned when selecting a service absent from the list.
var ErrNoSuchOption = errors.New("shipping: no such rate option")

// Selector tracks the courier and rate chosen for a cart. When the option
// list changes the previous rate selection is dropped; depending on
// AutoSelect, the first (or sole) option may be picked automatically. An
// automatic pick stays overridable through Select.
type Selector struct {
	// AutoSelect picks the first option whenever the list changes. When
	// false, only a single-option list is picked automatically.
	AutoSelect bool

	courier  string
	options  []Rate
	selected *Rate
}

// SetCourier records the courier choice and clears stale options.
func (s *Selector) SetCourier(courier string) {
	if s.courier == courier {
		return
	}
	s.courier = courier
	s.options = nil
	s.selected = nil
}

// Courier returns the currently chosen courier code.
func (s *Selector) Courier() string {
	return s.courier
}

// SetOptions replaces the rate option list, resetting the selection.
func (s *Selector) SetOptions(options []Rate) {
	s.options = append([]Rate(nil), options...)
	s.selected = nil
	if len(s.options) == 0 {
		return
	}
	if s.AutoSelect || len(s.options) == 1 {
		rate := s.options[0]
		s.selected = &rate
	}
}

// Options returns the current option list.
func (s *Selector) Options() []Rate {
	return append([]Rate(nil), s.options...)
}

// Select picks the option with the given service code.
func (s *Selector) Select(service string) error {
	for _, option := range s.options {
		if option.Service == service {
			rate := option
			s.selected = &rate
			return nil
		}
	}
	return ErrNoSuchOption
}

// Selected returns the chosen rate, if any.
func (s *Selector) Selected() (Rate, bool) {
	if s.selected == nil {
		return Rate{}, false
	}
	return *s.selected, true
}

// Complete reports whether both a courier and a rate have been chosen.
func (s *Selector) Complete() bool {
	return s.courier != "" && s.selected != nil
}
