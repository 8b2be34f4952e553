package actions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roackb2/snowdream/internal/pkg/agents/schema"
)

// Decoder rebuilds an action from its checkpoint snapshot.
type Decoder func(snapshot json.RawMessage) (Action, error)

// Registry maps action kinds to decoders. A role's registry is its action set.
type Registry struct {
	decoders map[schema.ActionKind]Decoder
	order    []schema.ActionKind
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[schema.ActionKind]Decoder)}
}

// DefaultRegistry knows every action this package ships.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindCommunicate, decodeAs[*Communicate])
	r.Register(KindAnalyze, decodeAs[*Analyze])
	r.Register(KindConfirmationAsk, decodeAs[*ConfirmationAsk])
	r.Register(KindConfirmationAnswer, decodeAs[*ConfirmationAnswer])
	r.Register(KindDemandChange, decodeAs[*DemandChange])
	r.Register(KindUIDesign, decodeAs[*UIDesign])
	return r
}

func (r *Registry) Register(kind schema.ActionKind, dec Decoder) {
	if _, ok := r.decoders[kind]; !ok {
		r.order = append(r.order, kind)
	}
	r.decoders[kind] = dec
}

func (r *Registry) Has(kind schema.ActionKind) bool {
	_, ok := r.decoders[kind]
	return ok
}

func (r *Registry) Kinds() []schema.ActionKind {
	return slices.Clone(r.order)
}

// Subset returns a registry restricted to kinds. Unknown kinds are ignored.
func (r *Registry) Subset(kinds ...schema.ActionKind) *Registry {
	out := NewRegistry()
	for _, kind := range kinds {
		if dec, ok := r.decoders[kind]; ok {
			out.Register(kind, dec)
		}
	}
	return out
}

// Decode instantiates the checkpointed action for role.
func (r *Registry) Decode(role string, kind schema.ActionKind, snapshot json.RawMessage) (Action, error) {
	dec, ok := r.decoders[kind]
	if !ok {
		return nil, &schema.UnknownActionKindError{Role: role, Kind: kind}
	}
	action, err := dec(snapshot)
	if err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", kind, err)
	}
	return action, nil
}

// Snapshot serializes the action parameters for the checkpoint.
func Snapshot(a Action) (json.RawMessage, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", a.Kind(), err)
	}
	return data, nil
}

func isBlankSnapshot(snapshot json.RawMessage) bool {
	trimmed := bytes.TrimSpace(snapshot)
	return len(trimmed) == 0 || string(trimmed) == `""` || string(trimmed) == "null"
}

// decodeAs builds a Decoder for a pointer-to-struct action type.
func decodeAs[T interface {
	*E
	Action
}, E any](snapshot json.RawMessage) (Action, error) {
	var value E
	action := T(&value)
	if isBlankSnapshot(snapshot) {
		return action, nil
	}
	if err := json.Unmarshal(snapshot, action); err != nil {
		return nil, err
	}
	return action, nil
}
