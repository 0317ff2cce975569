package images

import (
	"crypto/md5"
	"fmt"
)

// Checksum generates a deterministic checksum of a bitmap's dimensions and pixels.
// Two bitmaps share a checksum exactly when they are byte-identical.
//
// Arguments:
// - b: The bitmap to hash.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty" for a nil or zero-sized bitmap.
//
// Example:
//
// ```go
//
//	before := Checksum(bmp)
//	fmt.Printf("Bitmap checksum: %s\n", before)
//
// ```
func Checksum(b *Bitmap) string {
	if b == nil || len(b.Pix) == 0 {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%d:", b.Width, b.Height)
	hash.Write(b.Pix)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
