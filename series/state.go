package series

import (
	"errors"
	"fmt"
)

// State is the progress of a Series through its pipeline. Steps run strictly
// in order and each runs once.
type State int

const (
	Initialized State = iota
	DirsReady
	MetadataLoaded
	PairsResolved
	DataLoaded
	MatricesAssembled
	Saved
	Cleaned
)

var ErrInvalidTransition = errors.New("invalid state transition")

func (s State) String() string {
	switch s {
	case Initialized:
		return "Initialized"
	case DirsReady:
		return "DirsReady"
	case MetadataLoaded:
		return "MetadataLoaded"
	case PairsResolved:
		return "PairsResolved"
	case DataLoaded:
		return "DataLoaded"
	case MatricesAssembled:
		return "MatricesAssembled"
	case Saved:
		return "Saved"
	case Cleaned:
		return "Cleaned"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists, for each target state, the states it may be entered from.
var transitions = map[State][]State{
	DirsReady:         {Initialized},
	MetadataLoaded:    {DirsReady},
	PairsResolved:     {MetadataLoaded},
	DataLoaded:        {PairsResolved},
	MatricesAssembled: {DataLoaded},
	Saved:             {MatricesAssembled},
	Cleaned:           {MatricesAssembled, Saved},
}

func (s *Series) enter(to State) error {
	for _, from := range transitions[to] {
		if s.state == from {
			return nil
		}
	}

	return fmt.Errorf("%w: %s cannot go from %s to %s", ErrInvalidTransition, s.Accession, s.state, to)
}
