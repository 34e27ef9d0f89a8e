package path_test

import (
	"testing"

	"github.com/objectql/objectql/pkg/path"
	"github.com/objectql/objectql/pkg/types"
)

func seg(name string) types.PathSegment { return types.PathSegment{Name: name} }

func idxSeg(name string, idx int) types.PathSegment {
	return types.PathSegment{Name: name, HasIndex: true, Index: idx}
}

func tagSeg(name, tag string) types.PathSegment {
	return types.PathSegment{Name: name, HasIndex: true, Tag: tag}
}

func TestResolve_MissingKeyYieldsNull(t *testing.T) {
	root := map[string]interface{}{"a": int64(1)}
	v, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{seg("b")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("got %v, want nil", v)
	}
}

func TestResolve_IndexOutOfBoundsYieldsNull(t *testing.T) {
	root := map[string]interface{}{"xs": []interface{}{int64(1)}}
	v, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{idxSeg("xs", 5)}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("got %v, want nil (out-of-bounds is Null, not an error)", v)
	}
}

func TestResolve_DottingIntoScalarIsTypeMismatch(t *testing.T) {
	root := map[string]interface{}{"a": int64(1)}
	_, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{seg("a"), seg("b")}}, nil)
	if err == nil {
		t.Fatal("expected a TypeMismatch resolving a field on a scalar")
	}
	objErr, ok := err.(*types.Error)
	if !ok || objErr.Code != types.ErrTypeMismatch {
		t.Fatalf("error = %v, want TypeMismatch", err)
	}
}

func TestResolve_IndexingNonListIsTypeMismatch(t *testing.T) {
	root := map[string]interface{}{"a": int64(1)}
	_, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{idxSeg("a", 0)}}, nil)
	if err == nil {
		t.Fatal("expected a TypeMismatch indexing a scalar")
	}
}

func TestResolve_InstanceTag(t *testing.T) {
	root := map[string]interface{}{"roles": []interface{}{"admin", "viewer"}}
	tags := path.InstanceTags{"primary": 1}
	v, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{tagSeg("roles", "primary")}}, tags)
	if err != nil {
		t.Fatal(err)
	}
	if v != "viewer" {
		t.Fatalf("got %v, want viewer", v)
	}
}

func TestResolve_UnresolvedInstanceTagErrors(t *testing.T) {
	root := map[string]interface{}{"roles": []interface{}{"admin"}}
	_, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{tagSeg("roles", "primary")}}, nil)
	if err == nil {
		t.Fatal("expected an error for an unconfigured instance tag")
	}
}

func TestResolve_NullShortCircuitsRemainingSegments(t *testing.T) {
	root := map[string]interface{}{"a": nil}
	v, err := path.Resolve(root, &types.Path{Segments: []types.PathSegment{seg("a"), seg("b"), seg("c")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Fatalf("got %v, want nil", v)
	}
}
