package display

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	Background = color.RGBA{0x00, 0x00, 0x00, 0xff}
	Foreground = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

// textScale is the integer zoom applied to the 7x13 bitmap font.
const textScale = 2

// TextImage draws lines centered on a canvas of width x height. Text is
// laid out at the font's native size and scaled up, so the glyphs stay
// crisp on the panel.
func TextImage(width, height int, bg, fg color.Color, lines ...string) *image.RGBA {
	sw, sh := width/textScale, height/textScale
	small := image.NewRGBA(image.Rect(0, 0, sw, sh))
	xdraw.Draw(small, small.Bounds(), &image.Uniform{bg}, image.Point{}, xdraw.Src)

	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()

	totalHeight := lineHeight * len(lines)
	startY := (sh-totalHeight)/2 + metrics.Ascent.Ceil()

	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  small,
			Src:  &image.Uniform{fg},
			Face: face,
			Dot:  fixed.P((sw-w)/2, startY+i*lineHeight),
		}
		d.DrawString(line)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, xdraw.Src)
	xdraw.NearestNeighbor.Scale(img, image.Rect(0, 0, sw*textScale, sh*textScale), small, small.Bounds(), xdraw.Over, nil)
	return img
}

// EncodeRGB565 packs img into little-endian RGB565 rows of width x height.
func EncodeRGB565(img image.Image, width, height int) []byte {
	buf := make([]byte, width*height*2)
	b := img.Bounds()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px := uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(bl>>11)
			i := (y*width + x) * 2
			buf[i] = byte(px)
			buf[i+1] = byte(px >> 8)
		}
	}
	return buf
}
