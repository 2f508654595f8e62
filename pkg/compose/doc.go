// Package compose renders a masonry layout into a wallpaper image.
//
// [Compose] fills a canvas with the background color and pastes one tile per
// placement. Each tile is decoded (JPEG, PNG, GIF or WebP), rotated
// according to its EXIF orientation, flattened onto an opaque background,
// center-cropped to the cell's aspect ratio by [CropToAspect] and resized
// with a Lanczos filter. Tiles that extend past the canvas are clipped.
//
// A cover that cannot be read is skipped and recorded in [Report.Skipped];
// one bad file never aborts the wallpaper.
//
//	img, report, err := compose.Compose(ctx, layout.Placements,
//	    compose.WithSize(1920, 1080),
//	    compose.WithBackground(compose.DefaultBackground),
//	)
//	if err != nil {
//	    return err
//	}
//	return compose.Save("wallpaper.png", img)
package compose
