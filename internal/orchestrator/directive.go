package orchestrator

import (
	"fmt"

	"github.com/fanpilot/fanpilot/internal/ec"
)

// Reserved profile names that resolve to a fixed fan mode instead of a
// running fan program.
const (
	ProfileAutoPerformance = "AutoPerformance"
	ProfileAutoDefault     = "AutoDefault"
	ProfileAutoCool        = "AutoCool"
)

type DirectiveKind int

const (
	// DirectiveFixedMode applies a fixed fan mode, no program runs.
	DirectiveFixedMode DirectiveKind = iota
	// DirectiveRunProgram runs the named fan program.
	DirectiveRunProgram
)

// Directive is the resolved action for a configured profile name.
type Directive struct {
	Kind DirectiveKind

	// Mode is the fan mode to apply, valid for DirectiveFixedMode.
	Mode ec.FanMode

	// Program and Alternate describe the program run, valid for
	// DirectiveRunProgram.
	Program   string
	Alternate bool
}

func (d Directive) String() string {
	switch d.Kind {
	case DirectiveFixedMode:
		return fmt.Sprintf("FixedMode(%s)", d.Mode)
	case DirectiveRunProgram:
		return fmt.Sprintf("RunProgram(%s, alternate=%v)", d.Program, d.Alternate)
	}
	return fmt.Sprintf("Directive(%d)", int(d.Kind))
}

// SelectDirective maps a configured profile name and the current power
// state to a Directive.
//
// Reserved names always resolve to a fixed mode. Every other string is a
// program name, started in its alternate (battery) variant when not on
// full power. The function is pure and total, unknown names are never an
// error.
func SelectDirective(profileName string, onFullPower bool) Directive {
	switch profileName {
	case ProfileAutoPerformance:
		return Directive{Kind: DirectiveFixedMode, Mode: ec.FanModePerformance}
	case ProfileAutoDefault:
		return Directive{Kind: DirectiveFixedMode, Mode: ec.FanModeDefault}
	case ProfileAutoCool:
		return Directive{Kind: DirectiveFixedMode, Mode: ec.FanModeCool}
	default:
		return Directive{
			Kind:      DirectiveRunProgram,
			Program:   profileName,
			Alternate: !onFullPower,
		}
	}
}
