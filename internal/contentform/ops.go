package contentform

import (
	"fmt"
	"net/url"
	"strings"
)

// Editor operations posted as the value of the "op" button
const (
	OpSave        = "save"
	OpAddQuality  = "add-quality"
	OpAddSeason   = "add-season"
	OpAddEpisode  = "add-episode"
	OpRemove      = "remove"
	OpExpandAll   = "expand-all"
	OpCollapseAll = "collapse-all"
)

// Op is a parsed editor operation. Target is the parent node for adds and
// the removed node for remove.
type Op struct {
	Name   string
	Target NodeID
}

func (op Op) String() string {
	if op.Target == "" {
		return op.Name
	}
	return op.Name + ":" + string(op.Target)
}

// ParseOp parses an "op" button value. An empty value means save.
func ParseOp(raw string) (Op, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Op{Name: OpSave}, nil
	}

	name, target, _ := strings.Cut(raw, ":")
	op := Op{Name: name, Target: NodeID(target)}
	if op.Target != "" && !op.Target.Valid() {
		return Op{}, fmt.Errorf("invalid node id %q", target)
	}

	switch name {
	case OpSave, OpAddSeason, OpExpandAll, OpCollapseAll:
		if op.Target != "" {
			return Op{}, fmt.Errorf("operation %q takes no target", name)
		}
	case OpAddQuality:
	case OpAddEpisode, OpRemove:
		if op.Target == "" {
			return Op{}, fmt.Errorf("operation %q needs a target", name)
		}
	default:
		return Op{}, fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// OpFromForm returns the operation of a posted editor form
func OpFromForm(form url.Values) (Op, error) {
	return ParseOp(form.Get(fieldOpName))
}

// Apply runs a structural operation on the tree. Save is a no-op here; the
// caller submits the tree.
func (t *Tree) Apply(op Op) error {
	switch op.Name {
	case OpSave:
		return nil
	case OpAddQuality:
		_, err := t.AddQuality(op.Target, nil)
		return err
	case OpAddSeason:
		_, err := t.AddSeason(nil)
		return err
	case OpAddEpisode:
		_, err := t.AddEpisode(op.Target, nil)
		return err
	case OpRemove:
		return t.Remove(op.Target)
	case OpExpandAll:
		t.SetOpenAll(true)
		return nil
	case OpCollapseAll:
		t.SetOpenAll(false)
		return nil
	}
	return fmt.Errorf("unknown operation %q", op.Name)
}
