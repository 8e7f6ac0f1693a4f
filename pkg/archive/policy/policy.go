package policy

import (
	"errors"
	"fmt"
	"sync"

	"mercator-hq/cardvault/pkg/archive"
)

// Policy is a fully resolved retention policy for one (collection, item type)
// pair. A zero field means that axis is unlimited and is not evicted on.
type Policy struct {
	// TimeLimitDays evicts records archived more than this many days ago.
	TimeLimitDays int `json:"time_limit_days" yaml:"time_limit_days"`

	// MaxSize caps the number of non-favorite records.
	MaxSize int `json:"max_size" yaml:"max_size"`
}

// HasTimeLimit reports whether age-based eviction applies.
func (p Policy) HasTimeLimit() bool { return p.TimeLimitDays > 0 }

// HasMaxSize reports whether count-based eviction applies.
func (p Policy) HasMaxSize() bool { return p.MaxSize > 0 }

// String renders the policy for logs and CLI output.
func (p Policy) String() string {
	days, size := "unlimited", "unlimited"
	if p.HasTimeLimit() {
		days = fmt.Sprintf("%dd", p.TimeLimitDays)
	}
	if p.HasMaxSize() {
		size = fmt.Sprintf("%d", p.MaxSize)
	}
	return fmt.Sprintf("time_limit=%s max_size=%s", days, size)
}

// Partial is a user-supplied policy. A nil field falls back to the default
// for that field only; an explicit 0 disables the axis.
type Partial struct {
	TimeLimitDays *int `json:"timeLimitDays,omitempty" yaml:"timeLimitDays,omitempty"`
	MaxSize       *int `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
}

// ItemOverrides holds the per-item-type overrides of one collection.
type ItemOverrides struct {
	PackBundle *Partial `json:"packBundle,omitempty" yaml:"packBundle,omitempty"`
	Deck       *Partial `json:"deck,omitempty" yaml:"deck,omitempty"`
}

// Overrides is the user-configurable retention configuration. Every leaf is
// independently optional.
type Overrides struct {
	Trash   ItemOverrides `json:"trash" yaml:"trash"`
	History ItemOverrides `json:"history" yaml:"history"`
}

// For returns the override for a pair, or nil if none is set.
func (o *Overrides) For(collection archive.Collection, itemType archive.ItemType) *Partial {
	if o == nil {
		return nil
	}
	var items ItemOverrides
	switch collection {
	case archive.CollectionTrash:
		items = o.Trash
	case archive.CollectionHistory:
		items = o.History
	default:
		return nil
	}
	switch itemType {
	case archive.ItemTypePackBundle:
		return items.PackBundle
	case archive.ItemTypeDeck:
		return items.Deck
	default:
		return nil
	}
}

// Validate rejects negative limits.
func (o *Overrides) Validate() error {
	if o == nil {
		return nil
	}
	var errs []error
	for _, c := range archive.Collections {
		for _, t := range archive.ItemTypes {
			p := o.For(c, t)
			if p == nil {
				continue
			}
			if p.TimeLimitDays != nil && *p.TimeLimitDays < 0 {
				errs = append(errs, fmt.Errorf("%s.%s.timeLimitDays must be >= 0, got %d", c, t, *p.TimeLimitDays))
			}
			if p.MaxSize != nil && *p.MaxSize < 0 {
				errs = append(errs, fmt.Errorf("%s.%s.maxSize must be >= 0, got %d", c, t, *p.MaxSize))
			}
		}
	}
	return errors.Join(errs...)
}

type pair struct {
	collection archive.Collection
	itemType   archive.ItemType
}

var defaults = map[pair]Policy{
	{archive.CollectionTrash, archive.ItemTypePackBundle}:   {TimeLimitDays: 30, MaxSize: 100},
	{archive.CollectionTrash, archive.ItemTypeDeck}:         {TimeLimitDays: 30, MaxSize: 200},
	{archive.CollectionHistory, archive.ItemTypePackBundle}: {TimeLimitDays: 90, MaxSize: 500},
	{archive.CollectionHistory, archive.ItemTypeDeck}:       {TimeLimitDays: 60, MaxSize: 1000},
}

// Default returns the built-in policy for a pair.
func Default(collection archive.Collection, itemType archive.ItemType) (Policy, error) {
	p, ok := defaults[pair{collection, itemType}]
	if !ok {
		return Policy{}, archive.NewPolicyUnresolvedError(collection, itemType)
	}
	return p, nil
}

// Resolve merges a partial override into the built-in default field by field.
func Resolve(collection archive.Collection, itemType archive.ItemType, override *Partial) (Policy, error) {
	p, err := Default(collection, itemType)
	if err != nil {
		return Policy{}, err
	}
	if override == nil {
		return p, nil
	}
	if override.TimeLimitDays != nil {
		p.TimeLimitDays = max(*override.TimeLimitDays, 0)
	}
	if override.MaxSize != nil {
		p.MaxSize = max(*override.MaxSize, 0)
	}
	return p, nil
}

// Resolver resolves policies against a replaceable set of overrides.
// It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	overrides Overrides
}

// NewResolver creates a resolver. A nil overrides value means defaults only.
func NewResolver(overrides *Overrides) *Resolver {
	r := &Resolver{}
	if overrides != nil {
		r.overrides = *overrides
	}
	return r
}

// Resolve returns the effective policy for a pair.
func (r *Resolver) Resolve(collection archive.Collection, itemType archive.ItemType) (Policy, error) {
	r.mu.RLock()
	override := r.overrides.For(collection, itemType)
	r.mu.RUnlock()

	return Resolve(collection, itemType, override)
}

// SetOverrides replaces the overrides after validating them.
func (r *Resolver) SetOverrides(overrides Overrides) error {
	if err := overrides.Validate(); err != nil {
		return fmt.Errorf("invalid retention overrides: %w", err)
	}
	r.mu.Lock()
	r.overrides = overrides
	r.mu.Unlock()
	return nil
}

// Overrides returns the current overrides.
func (r *Resolver) Overrides() Overrides {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overrides
}

// All resolves every (collection, item type) pair.
func (r *Resolver) All() (map[archive.Collection]map[archive.ItemType]Policy, error) {
	out := make(map[archive.Collection]map[archive.ItemType]Policy, len(archive.Collections))
	for _, c := range archive.Collections {
		out[c] = make(map[archive.ItemType]Policy, len(archive.ItemTypes))
		for _, t := range archive.ItemTypes {
			p, err := r.Resolve(c, t)
			if err != nil {
				return nil, err
			}
			out[c][t] = p
		}
	}
	return out, nil
}
