package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"runtime"
	"time"

	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/images"
)

// Live side-by-side preview of ACE on a capture device or video file.
func main() {
	var (
		deviceID int
		video    string
		width    int
		samples  int
		seed     uint64
	)
	flag.IntVar(&deviceID, "device", 0, "Capture device ID")
	flag.StringVar(&video, "video", "", "Video file to read instead of a device")
	flag.IntVar(&width, "width", 320, "Equalize at this width; frames are downscaled first")
	flag.IntVar(&samples, "samples", 50, "Number of reference samples per pixel")
	flag.Uint64Var(&seed, "seed", 1, "Sample seed")
	flag.Parse()

	if width <= 0 {
		log.Fatalf("-width must be positive, got %d", width)
	}
	if samples <= 0 {
		log.Fatalf("-samples must be positive, got %d", samples)
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)
	if video != "" {
		capture, err = gocv.OpenVideoCapture(video)
	} else {
		capture, err = gocv.OpenVideoCapture(deviceID)
	}
	if err != nil {
		log.Fatalf("failed to open capture: %v", err)
	}
	defer capture.Close()

	window := gocv.NewWindow("ACE")
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	small := gocv.NewMat()
	defer small.Close()
	input := gocv.NewMat()
	defer input.Close()
	bgr := gocv.NewMat()
	defer bgr.Close()
	preview := gocv.NewMat()
	defer preview.Close()

	cfg := ace.DefaultConfig()
	cfg.Samples = samples
	cfg.Seed = seed
	cfg.Threads = runtime.NumCPU()

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading %s\n", source(video, deviceID))
	for {
		if ok := capture.Read(&frame); !ok {
			fmt.Printf("cannot read %s\n", source(video, deviceID))
			return
		}
		if frame.Empty() {
			continue
		}

		frameCount++
		if elapsed := time.Since(lastTime).Seconds(); elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = time.Now()
		}

		gocv.Resize(frame, &small, previewSize(frame.Cols(), frame.Rows(), width), 0, 0, gocv.InterpolationArea)

		bmp, err := images.FromMat(small)
		if err != nil {
			log.Printf("frame conversion failed: %v", err)
			continue
		}
		out := images.NewBitmap(bmp.Width, bmp.Height)
		stats, err := ace.ApplyWithStats(bmp.Width, bmp.Height, bmp.Pix, out.Pix, cfg)
		if err != nil {
			log.Printf("ace failed: %v", err)
			continue
		}

		equalized, err := images.ToMat(out)
		if err != nil {
			log.Printf("frame conversion failed: %v", err)
			continue
		}
		// Both halves must be 3-channel BGR before concatenation.
		err = toBGR(small, &input)
		if err == nil {
			err = toBGR(equalized, &bgr)
		}
		equalized.Close()
		if err != nil {
			log.Printf("preview conversion failed: %v", err)
			continue
		}
		gocv.Hconcat(input, bgr, &preview)

		fmt.Printf("ace %v | FPS: %.2f\n", stats.Total().Round(time.Millisecond), fps)

		window.IMShow(preview)
		if window.WaitKey(1) == 27 {
			return
		}
	}
}

func source(video string, deviceID int) string {
	if video != "" {
		return video
	}
	return fmt.Sprintf("device %d", deviceID)
}

// previewSize scales a cols×rows frame to the given width, keeping the aspect ratio.
// The height never drops below one row.
func previewSize(cols, rows, width int) image.Point {
	height := rows * width / cols
	if height < 1 {
		height = 1
	}
	return image.Pt(width, height)
}

// toBGR converts 1, 3 or 4 channel 8-bit mats to 3-channel BGR.
func toBGR(src gocv.Mat, dst *gocv.Mat) error {
	switch src.Type() {
	case gocv.MatTypeCV8UC1:
		gocv.CvtColor(src, dst, gocv.ColorGrayToBGR)
	case gocv.MatTypeCV8UC3:
		src.CopyTo(dst)
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToBGR)
	default:
		return fmt.Errorf("unsupported mat type: %v", src.Type())
	}
	return nil
}
