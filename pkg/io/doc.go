// Package io provides JSON import and export for masonry layouts.
//
// # Overview
//
// A layout file records the canvas, the cover aspect ratio, the chosen plan
// and every placement. It is the same document the layout command prints
// with --json and the preview server returns from /api/layout, so a saved
// layout can be inspected, diffed or fed to other tools.
//
// # JSON Format
//
//	{
//	  "canvas": {"width": 1920, "height": 1080, "gap": 4},
//	  "aspect_ratio": {"w": 2, "h": 3},
//	  "overfill": 1.4,
//	  "plan": {"columns": 7, "cover_width": 266, "cover_height": 399},
//	  "placements": [
//	    {"ref": "cover-1", "x": 4, "y": 4, "width": 266, "height": 399}
//	  ]
//	}
//
// # Import
//
// [ReadJSON] and [ImportJSON] reject documents whose canvas or aspect ratio
// is invalid, or whose placements have non-positive sizes or start left of
// or above the canvas origin. Errors carry the INVALID_FORMAT code.
package io
