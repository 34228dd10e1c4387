// Package placement samples randomized card positions on the spread canvas.
//
// A Position stores normalized offsets plus a rotation in degrees. Pixel
// coordinates are derived on demand through two projections: the small
// preview canvas used for on-screen layout and the full template canvas used
// when compositing. The template projection compensates for the card's
// diagonal so a rotated card stays centered on its sampled point.
package placement
