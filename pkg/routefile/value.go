package routefile

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	interrors "github.com/wayfind-dev/wayfind/internal/errors"
)

// set assigns one attribute value onto the entry, validating its type.
func (e *entryDef) set(name string, v cty.Value, rng hcl.Range) error {
	switch name {
	case "regexp":
		if v.Type() != cty.Bool {
			return badAttr(name, "a bool", rng)
		}
		e.regexp = v.True()
		return nil

	case "extra":
		if !v.Type().IsObjectType() && !v.Type().IsMapType() {
			return badAttr(name, "an object", rng)
		}
		extra, err := ctyMap(v)
		if err != nil {
			return locate(interrors.New("W024").Wrap(err), rng)
		}
		e.extra = extra
		return nil
	}

	if v.Type() != cty.String {
		return badAttr(name, "a string", rng)
	}
	s := v.AsString()
	switch name {
	case "handler":
		e.handler = s
	case "name":
		e.name = s
	case "table":
		e.table = s
	case "app":
		e.app = s
	case "namespace":
		e.namespace = s
	}
	return nil
}

func badAttr(name, want string, rng hcl.Range) error {
	return locate(interrors.New("W024").
		WithDetail(fmt.Sprintf("attribute %q must be %s", name, want)), rng)
}

// ctyToGo converts a literal cty value into its plain Go counterpart.
// Whole numbers become int so they compare naturally with converter
// output.
func ctyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i), nil
		}
		f, _ := bf.Float64()
		return f, nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var out []any
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, gv)
		}
		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		return ctyMap(v)
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}

func ctyMap(v cty.Value) (map[string]any, error) {
	out := make(map[string]any)
	for it := v.ElementIterator(); it.Next(); {
		k, ev := it.Element()
		gv, err := ctyToGo(ev)
		if err != nil {
			return nil, err
		}
		out[k.AsString()] = gv
	}
	return out, nil
}
