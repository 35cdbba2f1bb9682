// Package imaging loads microscopy images from disk and provides the
// image-level helpers the cell counter exposes alongside segmentation.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with the origin at the top-left corner:
// X (column) grows rightward, Y (row) grows downward. Rectangles are
// half-open: the top-left corner is inclusive, the bottom-right exclusive.
// Cell bounding boxes from the segment package follow the same convention
// in row/column order.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and only read their inputs.
//
// # Orientation
//
// Images are decoded with EXIF auto-orientation, so a JPEG straight off a
// microscope camera is counted in the orientation it is displayed in.
package imaging
