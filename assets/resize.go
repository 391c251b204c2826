package assets

import "github.com/disintegration/imaging"

// fitImage rewrites the image at path so neither side exceeds maxDim.
// Smaller images are left untouched.
func fitImage(path string, maxDim int) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}
	b := img.Bounds()
	if b.Dx() <= maxDim && b.Dy() <= maxDim {
		return nil
	}
	return imaging.Save(imaging.Fit(img, maxDim, maxDim, imaging.Lanczos), path)
}
