package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidLayout = errors.New("invalid layout")

var validate = validator.New()

// Fingerprint identifies a layout document by content
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse decodes and validates a YAML layout document.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidLayout, err)
	}
	if err := validate.Struct(&l); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if err := l.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return &l, nil
}

// check enforces the rules the struct tags cannot express.
func (l *Layout) check() error {
	chains := make(map[string]struct{}, len(l.Chains))
	branched := make(map[string]struct{})

	for _, c := range l.Chains {
		if _, dup := chains[c.ID]; dup {
			return fmt.Errorf("chain %q declared twice", c.ID)
		}
		chains[c.ID] = struct{}{}

		if c.Start != nil {
			if err := checkPoint(*c.Start); err != nil {
				return fmt.Errorf("chain %q start: %w", c.ID, err)
			}
		}

		for i, s := range c.Steps {
			if n := s.actions(); n != 1 {
				return fmt.Errorf("chain %q step %d: want exactly one action, got %d", c.ID, i, n)
			}
			for _, p := range []*Point{s.Extend, s.Terminate} {
				if p != nil {
					if err := checkPoint(*p); err != nil {
						return fmt.Errorf("chain %q step %d: %w", c.ID, i, err)
					}
				}
			}
			if s.Join != nil {
				if err := checkPoint(s.Join.At); err != nil {
					return fmt.Errorf("chain %q step %d: %w", c.ID, i, err)
				}
			}
			if s.Branch != "" {
				if _, dup := branched[s.Branch]; dup {
					return fmt.Errorf("chain %q opened by two branch steps", s.Branch)
				}
				branched[s.Branch] = struct{}{}
			}
		}
	}

	for _, c := range l.Chains {
		_, isBranch := branched[c.ID]
		if c.Start == nil && !isBranch {
			return fmt.Errorf("chain %q has no start and is not opened by a branch", c.ID)
		}
		if c.Start != nil && isBranch {
			return fmt.Errorf("chain %q has a start and is also opened by a branch", c.ID)
		}
	}
	for name := range branched {
		if _, ok := chains[name]; !ok {
			return fmt.Errorf("branch opens undeclared chain %q", name)
		}
	}

	platforms := make(map[string]struct{}, len(l.Platforms))
	for _, p := range l.Platforms {
		if _, dup := platforms[p.ID]; dup {
			return fmt.Errorf("platform %q declared twice", p.ID)
		}
		platforms[p.ID] = struct{}{}
	}
	routes := make(map[string]struct{}, len(l.Routes))
	for _, r := range l.Routes {
		if _, dup := routes[r.ID]; dup {
			return fmt.Errorf("route %q declared twice", r.ID)
		}
		routes[r.ID] = struct{}{}
		for _, stop := range r.Stops {
			if _, ok := platforms[stop]; !ok {
				return fmt.Errorf("route %q stops at unknown platform %q", r.ID, stop)
			}
		}
	}
	return nil
}

func (s Step) actions() int {
	n := 0
	if s.Extend != nil {
		n++
	}
	if s.Terminate != nil {
		n++
	}
	if s.Branch != "" {
		n++
	}
	if s.Join != nil {
		n++
	}
	return n
}

func checkPoint(p Point) error {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("coordinate %v is not finite", p)
		}
	}
	return nil
}
