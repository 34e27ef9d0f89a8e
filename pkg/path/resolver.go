// Package path resolves a parsed identifier path against a root value
// (spec §4.3). Resolution is total: it never panics, and reports absent
// data as Null rather than as an error. Only a genuine structural conflict
// -- indexing into a scalar, or dotting into a list without an index -- is
// reported as a TypeMismatch error.
package path

import (
	"fmt"

	"github.com/objectql/objectql/pkg/types"
)

// InstanceTags maps an "@name" instance tag to the list index it selects.
// Spec §9 leaves resolution of instance tags to the host; a nil map or a
// missing entry is a TypeMismatch, never a silent Null.
type InstanceTags map[string]int

// Resolve walks p against root and returns the value found, or a
// *types.Error if the path structurally conflicts with the data's shape.
func Resolve(root types.Value, p *types.Path, tags InstanceTags) (types.Value, error) {
	current := root
	for _, seg := range p.Segments {
		next, err := step(current, seg, tags)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func step(current types.Value, seg types.PathSegment, tags InstanceTags) (types.Value, error) {
	if types.IsNull(current) {
		return nil, nil
	}

	m, isMap := current.(map[string]interface{})
	if !isMap {
		return nil, types.NewError(types.ErrTypeMismatch,
			fmt.Sprintf("cannot resolve field %q: value at this point in the path is not an object", seg.Name))
	}

	field, present := m[seg.Name]
	if !present {
		return nil, nil
	}
	if !seg.HasIndex {
		return field, nil
	}
	return indexInto(field, seg, tags)
}

func indexInto(field types.Value, seg types.PathSegment, tags InstanceTags) (types.Value, error) {
	if types.IsNull(field) {
		return nil, nil
	}
	list, isList := field.([]interface{})
	if !isList {
		return nil, types.NewError(types.ErrTypeMismatch,
			fmt.Sprintf("cannot index field %q: value is not a list", seg.Name))
	}

	idx := seg.Index
	if seg.Tag != "" {
		if tags == nil {
			return nil, types.NewError(types.ErrTypeMismatch,
				fmt.Sprintf("instance tag %q used but no instance tags were configured", seg.Tag))
		}
		resolved, ok := tags[seg.Tag]
		if !ok {
			return nil, types.NewError(types.ErrTypeMismatch,
				fmt.Sprintf("instance tag %q does not resolve to a known index", seg.Tag))
		}
		idx = resolved
	}

	if idx < 0 || idx >= len(list) {
		return nil, nil
	}
	return list[idx], nil
}
