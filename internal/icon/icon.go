// Package icon renders the application icon set: an orange disc carrying a
// stylized wallet glyph, emitted as PNGs in the standard icon sizes.
package icon

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// Sizes are the icon edge lengths written by WriteSet
var Sizes = []int{16, 32, 48, 64, 128, 256}

const masterSize = 256

var (
	orange = color.RGBA{R: 255, G: 103, B: 0, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Render draws the master icon at 256x256
func Render() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, masterSize, masterSize))

	center := float64(masterSize) / 2
	margin := float64(masterSize / 16)
	radius := center - margin
	outline := float64(masterSize / 32)

	// Disc with a white rim.
	for y := 0; y < masterSize; y++ {
		for x := 0; x < masterSize; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			d := dx*dx + dy*dy
			switch {
			case d <= (radius-outline)*(radius-outline):
				img.SetRGBA(x, y, orange)
			case d <= radius*radius:
				img.SetRGBA(x, y, white)
			}
		}
	}

	// Wallet body.
	walletSize := masterSize / 3
	left := masterSize/2 - walletSize/2
	top := masterSize/2 - walletSize/2
	for y := top; y < top+walletSize; y++ {
		for x := left; x < left+walletSize; x++ {
			img.SetRGBA(x, y, white)
		}
	}

	// Fold crease.
	foldY := top + walletSize/4
	foldWidth := masterSize / 64
	for y := foldY; y < foldY+foldWidth; y++ {
		for x := left; x < left+walletSize; x++ {
			img.SetRGBA(x, y, orange)
		}
	}

	// Clasp button.
	buttonSize := masterSize / 24
	buttonX := left + walletSize - buttonSize - masterSize/32
	buttonY := foldY - buttonSize/2
	bc := float64(buttonSize) / 2
	for y := 0; y < buttonSize; y++ {
		for x := 0; x < buttonSize; x++ {
			dx := float64(x) + 0.5 - bc
			dy := float64(y) + 0.5 - bc
			if dx*dx+dy*dy <= bc*bc {
				img.SetRGBA(buttonX+x, buttonY+y, orange)
			}
		}
	}

	return img
}

// Scale resamples the master icon to the given edge length
func Scale(master image.Image, size int) *image.RGBA {
	if size == masterSize {
		if rgba, ok := master.(*image.RGBA); ok {
			return rgba
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), master, master.Bounds(), xdraw.Over, nil)
	return dst
}

// WriteSet renders the full icon set into dir, one wallet_<size>.png per
// size plus wallet_preview.png at full resolution.
func WriteSet(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create icon directory: %w", err)
	}

	master := Render()
	for _, size := range Sizes {
		path := filepath.Join(dir, fmt.Sprintf("wallet_%d.png", size))
		if err := writePNG(path, Scale(master, size)); err != nil {
			return err
		}
	}
	return writePNG(filepath.Join(dir, "wallet_preview.png"), master)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
