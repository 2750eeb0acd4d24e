// Package imaging provides image decoding, encoding and landmark annotation.
//
// All operations work with standard Go image.Image types and use a coordinate
// system where (0,0) is at the top-left corner, X increases rightward, and Y
// increases downward.
//
// # Coordinate System
//
// Landmarks arrive normalized to [0,1]. PixelPoint maps them onto an image as
// round(x*width), round(y*height) relative to the image bounds origin. Pixel
// coordinates are 0-based; a point at x == width lies just outside the frame.
//
// # Channel Order
//
// Decoded Go images are RGB. Buffers that went through OpenCV are BGR; the
// Annotator is told which order its input uses and always returns RGB, so a
// green marker stays green and skin tones are not tinted blue.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Annotate never mutates its
// input, so the same decoded image may be annotated from several goroutines.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O errors during image loading
//   - Undecodable or empty image data
//   - Invalid marker colors or radii
//   - Encoding errors during image output
package imaging
