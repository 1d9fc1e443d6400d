package flux

import "fmt"

// Transition is the style a custom pattern steps through its colors with.
type Transition string

const (
	TransitionGradual Transition = "gradual"
	TransitionJump    Transition = "jump"
	TransitionStrobe  Transition = "strobe"
)

// ParseTransition validates a transition literal.
func ParseTransition(s string) (Transition, error) {
	switch Transition(s) {
	case TransitionGradual, TransitionJump, TransitionStrobe:
		return Transition(s), nil
	}
	return "", fmt.Errorf("unknown transition %q", s)
}

// ValidateCustomEffect checks a custom pattern's parameters: 1 to 16 colors,
// speed 0..100 and a known transition.
func ValidateCustomEffect(colors [][3]uint8, speedPct int, transition Transition) error {
	if len(colors) < 1 || len(colors) > 16 {
		return fmt.Errorf("custom effect needs 1..16 colors, got %d", len(colors))
	}
	if speedPct < 0 || speedPct > 100 {
		return fmt.Errorf("custom effect speed %d out of range 0..100", speedPct)
	}
	if _, err := ParseTransition(string(transition)); err != nil {
		return err
	}
	return nil
}
