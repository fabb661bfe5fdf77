package document

import (
	pr "github.com/benoitkugler/cssbox/css/properties"
	bo "github.com/benoitkugler/cssbox/html/boxes"
)

type BoxID = bo.BoxID

// layer is the painting phase of a box establishing its own
// stacking context.
type layer uint8

const (
	layerNone       layer = iota // painted with its parent context
	layerFloat                   // after the in-flow blocks
	layerInline                  // atomically, with the inline content
	layerPositioned              // after the inline content
)

func layerOf(b *bo.Box) layer {
	if b.Kind == bo.Text || b.Kind == bo.Viewport {
		return layerNone
	}
	switch {
	case b.Style.Position != pr.PositionStatic:
		return layerPositioned
	case len(b.Style.Transform) != 0 && b.Kind != bo.Inline:
		return layerPositioned
	case b.IsFloating():
		return layerFloat
	case b.Kind == bo.InlineBlock:
		return layerInline
	}
	return layerNone
}

// StackingContext groups the descendants of a box painted together,
// above the background of the box.
type StackingContext struct {
	box BoxID
	// in-flow block level descendants, in tree order
	blocksAndCells []BoxID
	floats         []StackingContext
	// positioned and transformed descendants
	zeroZContexts []StackingContext
}

// NewStackingContext collects the descendants of `id`, stopping
// at the boxes which establish a nested context.
func NewStackingContext(tree *bo.Tree, id BoxID) StackingContext {
	sc := StackingContext{box: id}
	sc.collect(tree, id)
	return sc
}

func (sc *StackingContext) collect(tree *bo.Tree, id BoxID) {
	for _, c := range tree.Box(id).Flow {
		b := tree.Box(c)
		if !b.Displayed {
			continue
		}
		switch layerOf(b) {
		case layerPositioned:
			sc.zeroZContexts = append(sc.zeroZContexts, NewStackingContext(tree, c))
			continue
		case layerFloat:
			sc.floats = append(sc.floats, NewStackingContext(tree, c))
			continue
		case layerInline: // built when painting the line content
			continue
		}
		switch b.Kind {
		case bo.TableColumn, bo.TableColumnGroup:
			continue
		}
		if b.Kind.IsBlock() {
			sc.blocksAndCells = append(sc.blocksAndCells, c)
		}
		sc.collect(tree, c)
	}
}
