package treeview

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// MaxRasterPixels bounds the bitmap size of a snapshot.
const MaxRasterPixels = 64 << 20

// Open Sans covers the Vietnamese precomposed letters (U+1EA0 to U+1EF9).
var (
	//go:embed fonts/OpenSans-Regular.ttf
	regularTTF []byte
	//go:embed fonts/OpenSans-Bold.ttf
	boldTTF []byte
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		regularFont, fontsErr = opentype.Parse(regularTTF)
		if fontsErr != nil {
			return
		}
		boldFont, fontsErr = opentype.Parse(boldTTF)
	})
	return fontsErr
}

var (
	lineColor      = color.RGBA{R: 0x92, G: 0x40, B: 0x0e, A: 0xff}
	maleFill       = color.RGBA{R: 0xff, G: 0xfb, B: 0xeb, A: 0xff}
	maleBorder     = color.RGBA{R: 0xb4, G: 0x53, B: 0x09, A: 0xff}
	femaleFill     = color.RGBA{R: 0xfd, G: 0xf2, B: 0xf8, A: 0xff}
	femaleBorder   = color.RGBA{R: 0xbe, G: 0x18, B: 0x5d, A: 0xff}
	highlightFill  = color.RGBA{R: 0xfe, G: 0xf0, B: 0x8a, A: 0xff}
	labelColor     = color.RGBA{R: 0x7c, G: 0x2d, B: 0x12, A: 0xff}
	textColor      = color.RGBA{R: 0x1c, G: 0x19, B: 0x17, A: 0xff}
	secondaryColor = color.RGBA{R: 0x57, G: 0x53, B: 0x4e, A: 0xff}
)

// Rasterize draws the layout to a PNG at ratio device pixels per layout pixel.
func Rasterize(l Layout, ratio float64, background color.Color) ([]byte, error) {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(math.Ceil(l.Width * ratio))
	h := int(math.Ceil(l.Height * ratio))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("empty layout %dx%d", w, h)
	}
	if w*h > MaxRasterPixels {
		return nil, fmt.Errorf("layout too large to rasterize: %dx%d", w, h)
	}
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	r, err := newRasterizer(w, h, ratio)
	if err != nil {
		return nil, err
	}
	defer r.close()

	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for _, ln := range l.Lines {
		r.line(ln)
	}
	for _, b := range l.Boxes {
		r.card(b)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, r.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type rasterizer struct {
	img     *image.RGBA
	ratio   float64
	regular font.Face
	small   font.Face
	bold    font.Face
}

func newRasterizer(w, h int, ratio float64) (*rasterizer, error) {
	face := func(f *opentype.Font, size float64) (font.Face, error) {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size * ratio, DPI: 72, Hinting: font.HintingFull})
	}
	regular, err := face(regularFont, 13)
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	small, err := face(regularFont, 10)
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	bold, err := face(boldFont, 14)
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return &rasterizer{
		img:     image.NewRGBA(image.Rect(0, 0, w, h)),
		ratio:   ratio,
		regular: regular,
		small:   small,
		bold:    bold,
	}, nil
}

func (r *rasterizer) close() {
	r.regular.Close()
	r.small.Close()
	r.bold.Close()
}

func (r *rasterizer) px(v float64) int {
	return int(math.Round(v * r.ratio))
}

func (r *rasterizer) fill(x0, y0, x1, y1 int, c color.Color) {
	draw.Draw(r.img, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *rasterizer) line(ln Line) {
	t := r.px(2)
	if t < 1 {
		t = 1
	}
	x0, y0, x1, y1 := r.px(ln.X1), r.px(ln.Y1), r.px(ln.X2), r.px(ln.Y2)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	r.fill(x0-t/2, y0-t/2, x1+t-t/2, y1+t-t/2, lineColor)
}

func (r *rasterizer) card(b Box) {
	fill, border := maleFill, maleBorder
	if !b.IsMale {
		fill, border = femaleFill, femaleBorder
	}
	if b.Highlighted {
		fill = highlightFill
	}
	x0, y0 := r.px(b.X), r.px(b.Y)
	x1, y1 := r.px(b.X+b.W), r.px(b.Y+b.H)
	bw := r.px(2)
	r.fill(x0, y0, x1, y1, border)
	r.fill(x0+bw, y0+bw, x1-bw, y1-bw, fill)

	cx := (b.X + b.W/2)
	y := b.Y + 16
	r.text(r.small, b.Label, cx, y, labelColor)
	y += 18
	for _, ln := range b.Lines {
		r.text(r.bold, ln, cx, y, textColor)
		if b.Compact {
			y += compactLineHeight
		} else {
			y += 20
		}
	}
	if b.Compact {
		return
	}
	for _, s := range b.Spouses {
		r.text(r.regular, s, cx, y, secondaryColor)
		y += spouseLineHeight
	}
}

// text draws s centred on cx with its baseline at y, both in layout pixels.
func (r *rasterizer) text(face font.Face, s string, cx, y float64, c color.Color) {
	if s == "" {
		return
	}
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(c), Face: face}
	width := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.I(r.px(cx)) - width/2,
		Y: fixed.I(r.px(y)),
	}
	d.DrawString(s)
}
