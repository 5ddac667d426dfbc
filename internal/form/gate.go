package form

import (
	"fmt"
	"sort"

	"github.com/dharsanguruparan/HostelDesk/internal/student"
)

// Policy decides how empty fields and a missing photo combine into a block.
type Policy int

const (
	// PolicyStrict blocks when any required field is empty or no photo is
	// attached.
	PolicyStrict Policy = iota
	// PolicyLenient blocks only when a required field is empty and no photo
	// is attached.
	PolicyLenient
)

// ParsePolicy reads a policy name from configuration.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "strict":
		return PolicyStrict, nil
	case "lenient":
		return PolicyLenient, nil
	}
	return PolicyStrict, fmt.Errorf("unknown gate policy %q", name)
}

func (p Policy) String() string {
	if p == PolicyLenient {
		return "lenient"
	}
	return "strict"
}

// EmptySet holds the required fields found empty on the last submit attempt.
type EmptySet map[student.Field]struct{}

// Has reports whether f is marked empty.
func (s EmptySet) Has(f student.Field) bool {
	_, ok := s[f]
	return ok
}

// Remove unmarks f.
func (s EmptySet) Remove(f student.Field) {
	delete(s, f)
}

// Fields lists the marked fields in form order.
func (s EmptySet) Fields() []student.Field {
	out := make([]student.Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}

// Verdict is the outcome of one gate check.
type Verdict struct {
	Empty        EmptySet
	PhotoMissing bool
	Blocked      bool
}

// Gate checks a draft against the required field list.
type Gate struct {
	Required []student.Field
	Policy   Policy
}

// NewGate uses the form's required fields.
func NewGate(policy Policy) Gate {
	return Gate{Required: student.RequiredFields(), Policy: policy}
}

// Check computes the empty required fields and whether submission is blocked.
func (g Gate) Check(d *Draft) Verdict {
	v := Verdict{Empty: EmptySet{}, PhotoMissing: d.Photo == nil}
	for _, f := range g.Required {
		if isBlank(d.Values.Get(f)) {
			v.Empty[f] = struct{}{}
		}
	}
	anyEmpty := len(v.Empty) > 0
	switch g.Policy {
	case PolicyLenient:
		v.Blocked = anyEmpty && v.PhotoMissing
	default:
		v.Blocked = anyEmpty || v.PhotoMissing
	}
	return v
}
