// Package imaging implements the thumbnail transform pipeline.
//
// Every transform takes the encoded bytes of a source image and returns the
// encoded bytes of a JPEG thumbnail. The pipeline is:
//
//  1. Validate the requested dimensions against the configured Bounds.
//  2. Decode (PNG, JPEG, GIF, BMP, TIFF, WebP; first frame only).
//  3. Apply the EXIF orientation tag so the pixels are upright.
//  4. Resize (ResizeLongEdge) or cover-crop (Fit) with Lanczos resampling.
//  5. Flatten transparency onto the background color and encode as JPEG.
//
// # Transforms
//
// ResizeLongEdge preserves the aspect ratio and scales the longer side to the
// requested length. With dontEnlarge set, a source that is already small
// enough comes back byte-for-byte unchanged.
//
// Fit always yields exactly the requested width and height. The source is
// scaled to cover the box and the overflow is trimmed evenly from both sides
// of the long axis.
//
// # Orientation
//
// Orientation values 1-8 follow the EXIF specification. A missing, unreadable
// or out-of-range tag is treated as 1 (no change). Dimensions are always
// computed after rotation, so a portrait photo stored as landscape with
// orientation 6 is resized as a portrait.
//
// # Description
//
// Describe reports an image's stored size, format, color depth, alpha,
// orientation tag and a short palette of its dominant colors. It never
// transforms the image.
//
// # Errors
//
// Dimension violations return a *RangeError matching ErrOutOfRange. Data that
// cannot be decoded returns an error matching ErrDecode.
//
// # Thread Safety
//
// Transformer holds only immutable configuration and may be shared freely.
package imaging
