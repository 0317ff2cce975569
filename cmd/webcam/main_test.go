package main

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestPreviewSize(t *testing.T) {
	assert.Equal(t, image.Pt(320, 240), previewSize(640, 480, 320))
	assert.Equal(t, image.Pt(320, 180), previewSize(1920, 1080, 320))
	assert.Equal(t, image.Pt(4, 1), previewSize(4000, 10, 4), "very wide frames keep one row")
}

func TestToBGR(t *testing.T) {
	for _, typ := range []gocv.MatType{gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4} {
		src := gocv.NewMatWithSize(6, 8, typ)
		dst := gocv.NewMat()

		require.NoError(t, toBGR(src, &dst), "type %v", typ)
		assert.Equal(t, gocv.MatTypeCV8UC3, dst.Type(), "type %v", typ)
		assert.Equal(t, 8, dst.Cols())
		assert.Equal(t, 6, dst.Rows())

		src.Close()
		dst.Close()
	}

	src := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	assert.Error(t, toBGR(src, &dst))
}
