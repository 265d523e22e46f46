package bracket

import (
	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/google/uuid"
)

type PickerState int

const (
	PickIdle PickerState = iota
	PickMatchSelected
	PickSlotSelected
	PickConfirmed
)

func (s PickerState) String() string {
	switch s {
	case PickIdle:
		return "idle"
	case PickMatchSelected:
		return "match_selected"
	case PickSlotSelected:
		return "slot_selected"
	case PickConfirmed:
		return "confirmed"
	}
	return "unknown"
}

var (
	ErrPickerState   = apperr.New(apperr.InvalidState, "action not allowed in the current picker state")
	ErrSlotEmpty     = apperr.New(apperr.InvalidInput, "selected slot has no entrant")
	ErrMatchNotOpen  = apperr.New(apperr.InvalidState, "match cannot take a result")
	ErrUnknownSlot   = apperr.New(apperr.InvalidInput, "slot must be 1 or 2")
	ErrPickerNoMatch = apperr.New(apperr.NotFound, "match is not part of this bracket")
)

// Pick is the confirmed choice of a winner for a match.
type Pick struct {
	MatchID  uuid.UUID
	WinnerID uuid.UUID
	Final    bool
}

// Picker walks an organizer through declaring a winner:
// select a match, select the winning slot, confirm.
type Picker struct {
	tree  *Tree
	state PickerState
	match *Match
	slot  int
}

func NewPicker(tree *Tree) *Picker {
	return &Picker{tree: tree}
}

func (p *Picker) State() PickerState {
	return p.state
}

func (p *Picker) SelectMatch(matchID uuid.UUID) error {
	if p.state == PickConfirmed {
		return ErrPickerState
	}
	m, ok := p.tree.Match(matchID)
	if !ok {
		return ErrPickerNoMatch
	}
	if !m.Ready() {
		return ErrMatchNotOpen
	}
	p.match = m
	p.slot = 0
	p.state = PickMatchSelected
	return nil
}

func (p *Picker) SelectSlot(slot int) error {
	if p.state != PickMatchSelected && p.state != PickSlotSelected {
		return ErrPickerState
	}
	if slot != 1 && slot != 2 {
		return ErrUnknownSlot
	}
	if p.match.Slot(slot) == nil {
		return ErrSlotEmpty
	}
	p.slot = slot
	p.state = PickSlotSelected
	return nil
}

func (p *Picker) Confirm() (Pick, error) {
	if p.state != PickSlotSelected {
		return Pick{}, ErrPickerState
	}
	p.state = PickConfirmed
	return Pick{
		MatchID:  p.match.ID,
		WinnerID: *p.match.Slot(p.slot),
		Final:    p.tree.IsFinal(p.match),
	}, nil
}

// Cancel drops any selection and returns to idle.
func (p *Picker) Cancel() {
	p.match = nil
	p.slot = 0
	p.state = PickIdle
}
