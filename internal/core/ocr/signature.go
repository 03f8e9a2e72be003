package ocr

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
)

const (
	// signatureROI is the bottom fraction of the page searched for ink.
	signatureROI       = 0.38
	signatureGrayLevel = 200
	signatureMinRatio  = 0.03
)

// DetectSignature reports whether the bottom of the page image holds
// enough dark pixels to suggest a handwritten signature.
func DetectSignature(imagePath string) (bool, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", imagePath, err)
	}
	return DarkRatio(img, signatureROI) > signatureMinRatio, nil
}

// DarkRatio returns the share of pixels darker than the binarization
// threshold within the bottom roi fraction of img.
func DarkRatio(img image.Image, roi float64) float64 {
	b := img.Bounds()
	top := b.Max.Y - int(float64(b.Dy())*roi)
	if top < b.Min.Y {
		top = b.Min.Y
	}

	var dark, total int
	for y := top; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if g.Y < signatureGrayLevel {
				dark++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}
