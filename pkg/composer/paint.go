package composer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
)

const (
	labelFontSize     = 24
	labelPadding      = 24
	labelCornerRadius = 10
)

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

// Composer は RenderSpec を gg のキャンバスに描くレンダラです。ゼロ値で利用できます。
type Composer struct{}

// New は Composer を返します。
func New() *Composer {
	return &Composer{}
}

// Render は id の作品を 500x500 のラスタとして描画します。
func (c *Composer) Render(id domain.TokenID) (image.Image, error) {
	spec, err := Plan(id)
	if err != nil {
		return nil, err
	}
	return c.Paint(spec)
}

// Paint は spec をラスタライズします。描画中の panic は RenderError に変換します。
func (c *Composer) Paint(spec domain.RenderSpec) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = &domain.RenderError{TokenID: spec.TokenID, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	// truetype の Face はグリフキャッシュを持つため描画ごとに作ります
	face, err := newLabelFace()
	if err != nil {
		return nil, &domain.RenderError{TokenID: spec.TokenID, Err: err}
	}
	defer face.Close()

	dc := gg.NewContext(spec.Width, spec.Height)
	paintBackground(dc, spec)
	for _, s := range spec.Shapes {
		paintShape(dc, s)
	}
	paintLabel(dc, spec, face)

	return dc.Image(), nil
}

func newLabelFace() (font.Face, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(gobold.TTF)
	})
	if labelFontErr != nil {
		return nil, fmt.Errorf("ラベル用フォントの読み込みに失敗しました: %w", labelFontErr)
	}
	return truetype.NewFace(labelFont, &truetype.Options{Size: labelFontSize}), nil
}

func paintBackground(dc *gg.Context, spec domain.RenderSpec) {
	w, h := float64(spec.Width), float64(spec.Height)
	bg := spec.Background

	switch bg.Pattern {
	case domain.PatternSolid:
		dc.SetColor(toColor(bg.Base))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

	case domain.PatternGradient:
		g := gg.NewLinearGradient(0, 0, w, h)
		g.AddColorStop(0, toColor(bg.Base))
		g.AddColorStop(1, toColor(bg.End))
		dc.SetFillStyle(g)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()

	case domain.PatternGrid:
		tile := bg.TileSize
		for x := 0; x < spec.Width; x += tile {
			for y := 0; y < spec.Height; y += tile {
				dc.SetColor(toColor(GridTileColor(bg, x, y, spec.Width, spec.Height)))
				dc.DrawRectangle(float64(x), float64(y), float64(tile), float64(tile))
				dc.Fill()
			}
		}

	case domain.PatternCircles:
		dc.SetColor(toColor(bg.Base))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
		for _, c := range bg.Circles {
			dc.SetColor(toColor(c.Color))
			dc.DrawCircle(c.Center.X, c.Center.Y, c.Radius)
			dc.Fill()
		}
	}
}

// GridTileColor は (x, y) のタイル色です。色相はタイル位置に応じて最大 60 度ずれます。
func GridTileColor(bg domain.BackgroundSpec, x, y, width, height int) domain.HSLA {
	shift := float64(x+y) / float64(width+height) * 60
	c := bg.Base
	c.H = math.Mod(c.H+shift, 360)
	return c
}

func paintShape(dc *gg.Context, s domain.ShapeSpec) {
	switch s.Kind {
	case domain.ShapeCircle:
		dc.DrawCircle(s.Position.X, s.Position.Y, s.Size)
	case domain.ShapeRectangle:
		dc.DrawRectangle(s.Position.X, s.Position.Y, s.Size, s.Size)
	default:
		pts := Vertices(s)
		if len(pts) == 0 {
			return
		}
		dc.NewSubPath()
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
	}

	dc.SetColor(toColor(s.Fill))
	dc.FillPreserve()
	dc.SetColor(toColor(s.Stroke))
	dc.SetLineWidth(s.StrokeWidth)
	dc.Stroke()
}

// LabelWidth はラベル text を囲む角丸矩形の幅です。labelMinWidth を下回りません。
func LabelWidth(text string) (float64, error) {
	face, err := newLabelFace()
	if err != nil {
		return 0, err
	}
	defer face.Close()

	textW := float64(font.MeasureString(face, text)) / 64
	return math.Max(labelMinWidth, math.Ceil(textW)+labelPadding), nil
}

func paintLabel(dc *gg.Context, spec domain.RenderSpec, face font.Face) {
	l := spec.Label
	dc.SetFontFace(face)

	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawRoundedRectangle(l.X-l.W/2, l.Y, l.W, l.H, labelCornerRadius)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 0.9)
	dc.DrawStringAnchored(l.Text, l.X, l.Y+l.H/2, 0.5, 0.5)
}

// toColor は HSLA を非乗算アルファの RGBA に変換します。
func toColor(c domain.HSLA) color.NRGBA {
	rgb := colorful.Hsl(c.H, clampUnit(c.S/100), clampUnit(c.L/100)).Clamped()
	return color.NRGBA{
		R: uint8(math.Round(rgb.R * 255)),
		G: uint8(math.Round(rgb.G * 255)),
		B: uint8(math.Round(rgb.B * 255)),
		A: uint8(math.Round(clampUnit(c.A) * 255)),
	}
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
