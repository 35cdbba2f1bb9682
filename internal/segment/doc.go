// Package segment implements the cell segmentation and splitting pipeline.
//
// The pipeline turns one RGB microscopy image into a label map of cells:
//
//  1. Binarize: square the selected channel and threshold it with Li's
//     minimum cross-entropy method
//  2. Clean: morphological opening with a disk, then drop small components
//  3. Label: 4-connected component labeling
//  4. MedianSize: median region area, used as the size reference
//  5. Split: marker-controlled watershed on the distance transform, applied
//     only to components at least twice the median size, and only when the
//     raw count exceeds the configured trigger
//  6. Classify: small / medium / large relative to the median
//
// # Data Layout
//
// All grids are row-major with index y*Width + x. Rows and columns in
// Region and BBox follow image convention: row grows downward, column grows
// rightward. Bounding box maxima are exclusive.
//
// # Connectivity
//
// Every step uses 4-connectivity: labeling, small-object removal and the
// watershed flood. Watershed lines are one pixel wide in the 4-connected
// sense, so relabeling after a split never merges basins across a line.
//
// # Purity
//
// Every exported function is a pure transformation. Inputs are never
// modified, and all tuning values are passed explicitly per call through
// Params or SplitOptions. Functions can be called concurrently on different
// inputs without coordination. Pipeline only adds logging on top.
//
// # Errors
//
// Invalid parameters wrap ErrInvalidParameter; inconsistent grid extents
// wrap ErrShapeMismatch. An empty label map and a distance map without seeds
// are not errors: Split returns its input unchanged and reports the outcome
// in SplitStats.
package segment
