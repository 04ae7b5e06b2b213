package domain

import "fmt"

const MaxManualRecipients = 10

type RecipientSelection struct {
	// All forces every recipient observed in the table, ignoring Values.
	All    bool
	Values []string
}

type DirectionSelection struct {
	// Chosen is false until the user touches the direction filter; an unchosen
	// selection resolves to every observed direction.
	Chosen bool
	Values []Direction
}

type FilterSelection struct {
	Recipients RecipientSelection
	Directions DirectionSelection
}

// ValidateManual enforces the manual pick cap. Select-all bypasses it.
func (s RecipientSelection) ValidateManual(limit int) error {
	if s.All || limit <= 0 {
		return nil
	}
	if len(s.Values) > limit {
		return fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyRecipients, len(s.Values), limit)
	}

	return nil
}
