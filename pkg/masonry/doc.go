// Package masonry computes Pinterest-style masonry layouts for book covers.
//
// # Overview
//
// The engine answers two questions for a fixed canvas:
//
//  1. How many columns, and what single cell size, should N covers use?
//  2. Where does each cover go?
//
// [ChooseLayout] answers the first with area-driven sizing: the total area of
// all covers is made to exceed the canvas area by an overfill factor (default
// [DefaultOverfill]), so even the shortest column reaches the bottom edge.
// The tallest columns are clipped by the canvas instead of leaving an empty
// strip. The cell width is then snapped so the columns and gaps fill the
// canvas width exactly.
//
// [PlaceCovers] answers the second with the greedy shortest-column heuristic:
// every cover goes into the column that is currently shortest, ties broken by
// the lowest column index.
//
// # Usage
//
//	canvas := masonry.Canvas{Width: 1920, Height: 1080, Gap: 4}
//	plan, err := masonry.ChooseLayout(canvas, masonry.DefaultAspect, len(paths))
//	if err != nil {
//	    return err
//	}
//	placements := masonry.PlaceCovers(paths, plan, canvas.Gap)
//
// Or in one step:
//
//	l, err := masonry.Build(canvas, masonry.DefaultAspect, paths,
//	    masonry.WithOverfill(1.2),
//	)
//
// # Guarantees
//
//   - Every placement shares the plan's cell size.
//   - Columns·CoverWidth + (Columns+1)·Gap ≤ Width, so no placement overflows
//     horizontally.
//   - Output is deterministic for identical input.
//   - Placements may extend below the canvas height; that overflow is clipped
//     by the compositor.
//
// Invalid input (non-positive canvas or aspect ratio, negative gap or count)
// is rejected with an INVALID_INPUT error from [ChooseLayout] rather than
// producing cells with non-positive size.
package masonry
