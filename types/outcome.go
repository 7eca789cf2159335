package types

import "fmt"

/*
Outcome tags the result of an operation that is allowed to degrade instead of failing.

A missing layout file, an absent schema validator or a mistyped axis all produce a
usable value. The Outcome travels next to that value so callers and tests can tell
"worked as asked" apart from "fell back to a safe default".
*/
type Outcome struct {
	Degraded bool
	Reason   string
}

// OK is the outcome of an operation that did exactly what was asked.
func OK() Outcome {
	return Outcome{}
}

// Degrade builds a degraded outcome with a formatted reason.
func Degrade(format string, args ...any) Outcome {
	return Outcome{Degraded: true, Reason: fmt.Sprintf(format, args...)}
}

// Merge keeps the first degraded outcome. Useful when one operation chains several soft steps.
func (o Outcome) Merge(other Outcome) Outcome {
	if o.Degraded {
		return o
	}
	return other
}

func (o Outcome) String() string {
	if !o.Degraded {
		return "ok"
	}
	return "degraded: " + o.Reason
}
