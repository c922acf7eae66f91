package servicecode

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
)

var ErrCandidateSetTooLarge = errors.New("candidate set exceeds the configured limit")

// cancelCheckInterval is how many candidates Resolve enumerates between
// context checks.
const cancelCheckInterval = 1024

// Product is the part of a product the rules can reference.
type Product struct {
	Name               string
	RepresentativeCode string
}

// GroupCode is one option axis and its permitted code names in display order.
type GroupCode struct {
	Name  string   `json:"name"`
	Codes []string `json:"codes"`
}

// PolicyRules is everything about a policy the candidate builder needs.
type PolicyRules struct {
	Version    string
	DescRule   string
	CodeRule   string
	Transforms TransformSpec
	GroupCodes GroupCodes
}

// Candidate is one reachable (code, description) pair and the code chosen
// from each group code to produce it.
type Candidate struct {
	Code        string
	Description string
	Options     map[string]string
}

// Resolution is the subset of a candidate set matching a list of codes.
type Resolution struct {
	Candidates map[string]Candidate
	// Conflicts holds codes produced by combinations with different descriptions.
	Conflicts map[string][]string
}

// CandidateSet lazily enumerates the cartesian product of a policy's codes.
type CandidateSet struct {
	gen    *Generator
	groups GroupCodes
	base   Values
}

// NewCandidateSet fails when a rule is malformed or references a token that is
// neither reserved nor a group code of the policy.
func NewCandidateSet(rules PolicyRules, product Product) (*CandidateSet, error) {
	gen, err := NewGenerator(rules.DescRule, rules.CodeRule, rules.Transforms)
	if err != nil {
		return nil, err
	}

	groupNames := make(map[string]struct{}, len(rules.GroupCodes))
	for _, gc := range rules.GroupCodes {
		groupNames[gc.Name] = struct{}{}
	}
	for _, token := range gen.Tokens() {
		if IsReservedToken(token) {
			continue
		}
		if _, ok := groupNames[token]; !ok {
			return nil, &MissingVariableError{Token: token}
		}
	}

	return &CandidateSet{
		gen:    gen,
		groups: rules.GroupCodes,
		base:   NewValues(product, rules.Version),
	}, nil
}

// Size is the product of the per-group cardinalities, saturating at MaxInt.
func (s *CandidateSet) Size() int {
	size := 1
	for _, gc := range s.groups {
		n := len(gc.Codes)
		if n == 0 {
			return 0
		}
		if size > math.MaxInt/n {
			return math.MaxInt
		}
		size *= n
	}
	return size
}

// All yields every candidate in odometer order, last group varying fastest.
func (s *CandidateSet) All() iter.Seq2[Candidate, error] {
	return func(yield func(Candidate, error) bool) {
		if s.Size() == 0 {
			return
		}

		idx := make([]int, len(s.groups))
		for {
			options := make(map[string]string, len(s.groups))
			for g, gc := range s.groups {
				options[gc.Name] = gc.Codes[idx[g]]
			}

			if !yield(s.candidate(options)) {
				return
			}

			g := len(idx) - 1
			for ; g >= 0; g-- {
				idx[g]++
				if idx[g] < len(s.groups[g].Codes) {
					break
				}
				idx[g] = 0
			}
			if g < 0 {
				return
			}
		}
	}
}

func (s *CandidateSet) candidate(options map[string]string) (Candidate, error) {
	values := s.base.With(options)
	desc, err := s.gen.Description(values)
	if err != nil {
		return Candidate{}, err
	}
	code, err := s.gen.Code(values)
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Code: code, Description: desc, Options: options}, nil
}

// CheckSize fails with ErrCandidateSetTooLarge when a positive limit is
// smaller than the set.
func (s *CandidateSet) CheckSize(limit int) error {
	if limit > 0 && s.Size() > limit {
		return fmt.Errorf("%w: %d candidates, limit %d", ErrCandidateSetTooLarge, s.Size(), limit)
	}
	return nil
}

// Take returns at most n candidates from the start of the enumeration.
func (s *CandidateSet) Take(n int) ([]Candidate, error) {
	out := make([]Candidate, 0, min(n, s.Size()))
	if n <= 0 {
		return out, nil
	}
	for c, err := range s.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, c)
		if len(out) == n {
			break
		}
	}
	return out, nil
}

// Resolve streams the set once and keeps only the candidates whose code is in
// codes, so memory stays proportional to the submitted codes. It stops with
// the context error when ctx is done.
func (s *CandidateSet) Resolve(ctx context.Context, codes []string) (*Resolution, error) {
	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		wanted[code] = struct{}{}
	}

	res := &Resolution{
		Candidates: make(map[string]Candidate, len(wanted)),
		Conflicts:  map[string][]string{},
	}
	if len(wanted) == 0 {
		return res, nil
	}

	n := 0
	for c, err := range s.All() {
		if err != nil {
			return nil, err
		}
		if n++; n%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if _, ok := wanted[c.Code]; !ok {
			continue
		}
		prev, seen := res.Candidates[c.Code]
		if !seen {
			res.Candidates[c.Code] = c
			continue
		}
		if prev.Description != c.Description {
			if _, ok := res.Conflicts[c.Code]; !ok {
				res.Conflicts[c.Code] = []string{prev.Description}
			}
			res.Conflicts[c.Code] = append(res.Conflicts[c.Code], c.Description)
		}
	}
	return res, nil
}

// Lookup returns the expected description of code.
func (r *Resolution) Lookup(code string) (string, bool) {
	c, ok := r.Candidates[code]
	return c.Description, ok
}
