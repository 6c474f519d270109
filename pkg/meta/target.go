package meta

import "strings"

// TargetKind enumerates the ways a data provider target can be addressed.
type TargetKind uint8

const (
	// TargetUnset means no bean was configured.
	TargetUnset TargetKind = iota
	// TargetNone explicitly disables data provider resolution.
	TargetNone
	// TargetThis addresses the resolver itself.
	TargetThis
	// TargetContext addresses the content owner driving the form.
	TargetContext
	// TargetSession addresses the session scoped service.
	TargetSession
	// TargetNamed addresses a service registered under Name.
	TargetNamed
)

// Sentinel bean names recognised by ParseTarget.
const (
	SentinelNone    = "none"
	SentinelThis    = "this"
	SentinelContext = "context"
	SentinelSession = "session"
)

// Target is a parsed data provider bean reference.
type Target struct {
	kind TargetKind
	name string
}

// ParseTarget converts a raw bean name into a Target. Sentinels are matched
// case-insensitively; any other non-empty value is a named lookup.
func ParseTarget(raw string) Target {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "":
		return Target{}
	case SentinelNone:
		return Target{kind: TargetNone}
	case SentinelThis:
		return Target{kind: TargetThis}
	case SentinelContext:
		return Target{kind: TargetContext}
	case SentinelSession:
		return Target{kind: TargetSession}
	default:
		return Named(trimmed)
	}
}

// Named builds a registry lookup target.
func Named(name string) Target {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Target{}
	}
	return Target{kind: TargetNamed, name: trimmed}
}

// Kind reports the variant.
func (t Target) Kind() TargetKind { return t.kind }

// Name returns the registry name for TargetNamed and "" otherwise.
func (t Target) Name() string { return t.name }

// IsSet reports whether a bean was configured at all.
func (t Target) IsSet() bool { return t.kind != TargetUnset }

// IsNone reports whether resolution was explicitly disabled.
func (t Target) IsNone() bool { return t.kind == TargetNone }

// String renders the target the way it is written in a tag.
func (t Target) String() string {
	switch t.kind {
	case TargetNone:
		return SentinelNone
	case TargetThis:
		return SentinelThis
	case TargetContext:
		return SentinelContext
	case TargetSession:
		return SentinelSession
	case TargetNamed:
		return t.name
	default:
		return ""
	}
}
