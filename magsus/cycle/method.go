package cycle

import (
	"fmt"
	"strings"
)

// Method selects a disordering-temperature estimator.
type Method int

const (
	Inflection Method = iota
	TangentIntersection
	DerivativePeak
	InverseSusceptibility
)

var methodNames = [...]string{
	Inflection:            "inflection",
	TangentIntersection:   "tangent",
	DerivativePeak:        "derivative-peak",
	InverseSusceptibility: "inverse-susceptibility",
}

// Methods returns every estimator in declaration order.
func Methods() []Method {
	return []Method{Inflection, TangentIntersection, DerivativePeak, InverseSusceptibility}
}

// TransitionMethods returns the estimators that locate the drop itself.
// InverseSusceptibility needs a scan range in the paramagnetic region and
// is left out.
func TransitionMethods() []Method {
	return []Method{Inflection, TangentIntersection, DerivativePeak}
}

func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("Method(%d)", int(m))
	}
	return methodNames[m]
}

// minSamples is the number of samples a method needs in the scan range.
func (m Method) minSamples() int {
	switch m {
	case Inflection:
		return 5
	case TangentIntersection:
		return 4
	default:
		return 3
	}
}

func (m Method) valid() bool {
	return m >= 0 && int(m) < len(methodNames)
}

// ParseMethod returns the method named s. Matching ignores case.
func ParseMethod(s string) (Method, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range methodNames {
		if n == name {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}
