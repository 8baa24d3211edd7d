// Package scenario loads scripted producers from YAML fixtures.
//
// A fixture lists the notifications a producer emits, in order:
//
//	name: three-then-complete
//	async: true
//	interval: 2ms
//	steps:
//	  - next: 1
//	  - next: 2
//	  - error: boom
//	  - complete: true
//
// Steps are replayed verbatim, so fixtures can describe misbehaving
// producers (values after completion, double completion) as well as
// well-behaved ones.
package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Scenario is a decoded fixture.
type Scenario struct {
	Name     string        `yaml:"name"`
	Async    bool          `yaml:"async"`
	Interval time.Duration `yaml:"interval"`
	Steps    []Step        `yaml:"steps"`

	// Path is the file the scenario was loaded from, if any.
	Path string `yaml:"-"`
}

// Step is one notification. Exactly one of Next, Error or Complete is set.
type Step struct {
	Next     *yaml.Node `yaml:"next,omitempty"`
	Error    *string    `yaml:"error,omitempty"`
	Complete bool       `yaml:"complete,omitempty"`
}

func (s Step) kinds() int {
	n := 0
	if s.Next != nil {
		n++
	}
	if s.Error != nil {
		n++
	}
	if s.Complete {
		n++
	}
	return n
}

// Validate checks that the scenario can be turned into a producer.
func (s Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return criterio.NewFieldErrors("steps", errors.New("must not be empty"))
	}

	var errs criterio.FieldErrorsBuilder
	if s.Interval < 0 {
		errs = errs.Append("interval", errors.New("must not be negative"))
	}

	for i, step := range s.Steps {
		switch step.kinds() {
		case 1:
		case 0:
			errs = errs.Append(fmt.Sprintf("steps[%d]", i), errors.New("must set one of next, error or complete"))
		default:
			errs = errs.Append(fmt.Sprintf("steps[%d]", i), errors.New("sets more than one of next, error or complete"))
		}
	}
	return errs.ToError()
}

// Parse decodes and validates a fixture.
func Parse(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	return s, nil
}

// Load reads and parses the fixture at path in fsys. A fixture without a name
// is named after its path.
func Load(fsys fs.FS, path string) (Scenario, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}

	s.Path = path
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Discover returns the paths in fsys matching a doublestar pattern such as
// "**/*.yaml", sorted.
func Discover(fsys fs.FS, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("discover scenarios %q: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// LoadAll loads every fixture matching pattern, in path order.
func LoadAll(fsys fs.FS, pattern string) ([]Scenario, error) {
	paths, err := Discover(fsys, pattern)
	if err != nil {
		return nil, err
	}

	out := make([]Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := Load(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
