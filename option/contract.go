// Package option prices European calls and puts with the closed-form
// Black-Scholes formula.
package option

import (
	"fmt"
	"math"
	"strings"

	"github.com/rustyeddy/optsim/errs"
)

// Kind is the payoff type of a European option.
type Kind string

const (
	Call Kind = "call"
	Put  Kind = "put"
)

// ParseKind accepts "call" or "put" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Call, Put:
		return nil
	}
	return fmt.Errorf("%w: unsupported option kind %q", errs.ErrInvalidArgument, string(k))
}

func (k Kind) String() string { return string(k) }

// Contract is a European option on a single underlying. Years is the
// time to expiry.
type Contract struct {
	Strike float64 `json:"strike" yaml:"strike"`
	Years  float64 `json:"years" yaml:"years"`
	Kind   Kind    `json:"kind" yaml:"kind"`
}

// Validate checks strike > 0, years > 0 and a supported kind.
func (c Contract) Validate() error {
	if math.IsNaN(c.Strike) || math.IsInf(c.Strike, 0) || c.Strike <= 0 {
		return fmt.Errorf("%w: strike must be positive, got %v", errs.ErrInvalidArgument, c.Strike)
	}
	if math.IsNaN(c.Years) || math.IsInf(c.Years, 0) || c.Years <= 0 {
		return fmt.Errorf("%w: time to expiry must be positive, got %v", errs.ErrInvalidArgument, c.Years)
	}
	return c.Kind.Validate()
}

// Payoff is the value of the contract at expiry for a terminal price.
func (c Contract) Payoff(terminal float64) float64 {
	if c.Kind == Put {
		return math.Max(c.Strike-terminal, 0)
	}
	return math.Max(terminal-c.Strike, 0)
}
