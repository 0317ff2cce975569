package images

import (
	"fmt"

	"gocv.io/x/gocv"
)

// FromMat converts an 8-bit OpenCV matrix (gray, BGR or BGRA) into an RGBA8 bitmap.
//
// Arguments:
//   - mat: The source matrix. It is not modified or closed.
//
// Returns:
//   - *Bitmap: The converted pixels.
//   - error: An error if the matrix is empty or has an unsupported layout.
func FromMat(mat gocv.Mat) (*Bitmap, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("input mat is empty")
	}

	var code gocv.ColorConversionCode
	switch mat.Type() {
	case gocv.MatTypeCV8UC1:
		code = gocv.ColorGrayToBGRA // gray has R == G == B
	case gocv.MatTypeCV8UC3:
		code = gocv.ColorBGRToRGBA
	case gocv.MatTypeCV8UC4:
		code = gocv.ColorBGRAToRGBA
	default:
		return nil, fmt.Errorf("unsupported mat type: %v", mat.Type())
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(mat, &rgba, code)

	bmp := NewBitmap(rgba.Cols(), rgba.Rows())
	data, err := rgba.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("failed to read mat data: %w", err)
	}
	if len(data) != len(bmp.Pix) {
		return nil, fmt.Errorf("mat data has %d bytes, want %d", len(data), len(bmp.Pix))
	}
	copy(bmp.Pix, data)
	return bmp, nil
}

// ToMat converts a bitmap into a BGRA OpenCV matrix. The caller owns the result
// and must Close it.
func ToMat(b *Bitmap) (gocv.Mat, error) {
	if err := b.Validate(); err != nil {
		return gocv.NewMat(), err
	}

	rgba, err := gocv.NewMatFromBytes(b.Height, b.Width, gocv.MatTypeCV8UC4, b.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create mat: %w", err)
	}
	defer rgba.Close()

	bgra := gocv.NewMat()
	gocv.CvtColor(rgba, &bgra, gocv.ColorRGBAToBGRA)
	return bgra, nil
}

// MatChecksum generates a checksum of a matrix's pixels, matching Checksum of the
// bitmap FromMat would produce.
func MatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}
	bmp, err := FromMat(mat)
	if err != nil {
		return "empty"
	}
	return Checksum(bmp)
}
