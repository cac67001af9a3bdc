// Package composer はトークン ID から決定論的なジオメトリックアートを組み立てます。
//
// 処理は 2 段階です。Plan が prng の引き出しだけで RenderSpec を作り、
// Paint がそれを gg のキャンバスへ固定順 (背景、図形、ラベル) で描きます。
// 同じトークン ID からは常に同じ RenderSpec、同じピクセルが得られます。
package composer

import (
	"fmt"
	"math"

	"github.com/shouni/geometric-nft-kit/pkg/domain"
	"github.com/shouni/geometric-nft-kit/pkg/prng"
)

const (
	// Width と Height はキャンバスの固定サイズです。
	Width  = 500
	Height = 500

	patternCount  = 4
	minShapes     = 5
	shapeRange    = 15
	minCircles    = 10
	circleRange   = 20
	minTileSize   = 20
	tileSizeRange = 30

	// offset の割り当て。背景は 0..299、図形は 1000 以降を使い、引き出しが衝突しないようにします。
	gradientEndOffset  = 100
	circleOffsetBase   = 200
	circleOffsetStride = 4
	shapeOffsetBase    = 1000
	shapeOffsetStride  = 100
	vertexOffsetBase   = 20

	labelMinWidth = 120
	labelHeight   = 40
	labelMargin   = 10
)

// 図形ごとのパラメータ番号。shapeOffsetBase + i*shapeOffsetStride に加算します。
const (
	paramHue = iota
	paramSaturation
	paramLightness
	paramAlpha
	paramStrokeWidth
	paramX
	paramY
	paramSize
	paramKind
	paramSpikes
	paramPoints
	paramVariance
)

// PatternFor は背景パターンの引き出し floor(rand(id, 4)) です。
// メタデータの "Pattern Type" もこの関数を使います。
func PatternFor(id domain.TokenID) domain.PatternType {
	return domain.PatternType(prng.Intn(int64(id), patternCount, 0))
}

// ShapeCountFor は図形数の引き出し 5 + floor(rand(id, 15)) です。
// メタデータの "Shape Count" もこの関数を使います。
func ShapeCountFor(id domain.TokenID) int {
	return minShapes + prng.Intn(int64(id), shapeRange, 0)
}

// Plan は id の描画内容をすべて決定します。I/O は行いません。
func Plan(id domain.TokenID) (domain.RenderSpec, error) {
	if err := id.Validate(); err != nil {
		return domain.RenderSpec{}, err
	}

	src := prng.New(int64(id))
	spec := domain.RenderSpec{
		TokenID:    id,
		Width:      Width,
		Height:     Height,
		Background: planBackground(src, PatternFor(id)),
	}

	n := ShapeCountFor(id)
	spec.Shapes = make([]domain.ShapeSpec, 0, n)
	for i := 0; i < n; i++ {
		spec.Shapes = append(spec.Shapes, planShape(src, i))
	}

	text := fmt.Sprintf("NFT #%d", id)
	w, err := LabelWidth(text)
	if err != nil {
		return domain.RenderSpec{}, &domain.RenderError{TokenID: id, Err: err}
	}
	spec.Label = domain.LabelSpec{
		Text: text,
		X:    Width / 2,
		Y:    Height - labelHeight - labelMargin,
		W:    w,
		H:    labelHeight,
	}
	return spec, nil
}

func planBackground(src prng.Source, pattern domain.PatternType) domain.BackgroundSpec {
	bg := domain.BackgroundSpec{Pattern: pattern}

	switch pattern {
	case domain.PatternSolid:
		bg.Base = domain.HSLA{H: float64(src.Int(360, 0)), S: 70, L: 80, A: 1}

	case domain.PatternGradient:
		bg.Base = domain.HSLA{H: float64(src.Int(360, 0)), S: 70, L: 80, A: 1}
		bg.End = domain.HSLA{H: float64(src.Int(360, gradientEndOffset)), S: 70, L: 80, A: 1}

	case domain.PatternGrid:
		bg.TileSize = minTileSize + src.Int(tileSizeRange, 0)
		bg.Base = domain.HSLA{H: float64(src.Int(360, 0)), S: 70, L: 70 + src.Float(20, 0), A: 1}

	case domain.PatternCircles:
		bg.Base = domain.HSLA{H: float64(src.Int(360, 0)), S: 70, L: 80, A: 1}
		count := minCircles + src.Int(circleRange, 0)
		bg.Circles = make([]domain.CircleSpec, 0, count)
		for i := 0; i < count; i++ {
			off := float64(circleOffsetBase + i*circleOffsetStride)
			bg.Circles = append(bg.Circles, domain.CircleSpec{
				Color:  domain.HSLA{H: float64(src.Int(360, off)), S: 70, L: 70, A: 0.2},
				Radius: 50 + src.Float(150, off+1),
				Center: domain.Point{X: src.Float(Width, off+2), Y: src.Float(Height, off+3)},
			})
		}
	}
	return bg
}

func planShape(src prng.Source, i int) domain.ShapeSpec {
	base := float64(shapeOffsetBase + i*shapeOffsetStride)
	at := func(param int) float64 { return base + float64(param) }

	hue := float64(src.Int(360, at(paramHue)))
	sat := float64(70 + src.Int(30, at(paramSaturation)))
	light := float64(40 + src.Int(40, at(paramLightness)))
	alpha := 0.3 + src.Float(0.7, at(paramAlpha))

	s := domain.ShapeSpec{
		Fill:        domain.HSLA{H: hue, S: sat, L: light, A: alpha},
		Stroke:      domain.HSLA{H: math.Mod(hue+180, 360), S: sat, L: light - 20, A: math.Min(alpha+0.2, 1)},
		StrokeWidth: 1 + src.Float(5, at(paramStrokeWidth)),
		Position: domain.Point{
			X: Width*0.1 + src.Float(Width*0.8, at(paramX)),
			Y: Height*0.1 + src.Float(Height*0.8, at(paramY)),
		},
		Size: 20 + src.Float(100, at(paramSize)),
		Kind: domain.ShapeKind(src.Int(6, at(paramKind))),
	}

	switch s.Kind {
	case domain.ShapeStar:
		s.Points = 5 + src.Int(5, at(paramSpikes))
	case domain.ShapeHexagon:
		s.Points = 6
	case domain.ShapeTriangle:
		s.Points = 3
	case domain.ShapeCustom:
		s.Points = 3 + src.Int(6, at(paramPoints))
		variance := 0.2 + src.Float(0.6, at(paramVariance))
		s.RadiusScale = make([]float64, s.Points)
		for j := range s.RadiusScale {
			s.RadiusScale[j] = 1 - variance + src.Float(variance*2, base+float64(vertexOffsetBase+j))
		}
	}
	return s
}

// Vertices は多角形系の図形 (Triangle, Star, Hexagon, Custom) の頂点を返します。
// Circle と Rectangle では nil です。
func Vertices(s domain.ShapeSpec) []domain.Point {
	x, y, size := s.Position.X, s.Position.Y, s.Size

	switch s.Kind {
	case domain.ShapeTriangle:
		return []domain.Point{
			{X: x, Y: y - size/2},
			{X: x + size/2, Y: y + size/2},
			{X: x - size/2, Y: y + size/2},
		}

	case domain.ShapeStar:
		outer, inner := size/2, size/4
		pts := make([]domain.Point, 0, s.Points*2)
		for j := 0; j < s.Points*2; j++ {
			r := outer
			if j%2 == 1 {
				r = inner
			}
			angle := math.Pi * float64(j) / float64(s.Points)
			pts = append(pts, domain.Point{X: x + math.Cos(angle)*r, Y: y + math.Sin(angle)*r})
		}
		return pts

	case domain.ShapeHexagon:
		pts := make([]domain.Point, 0, 6)
		for j := 0; j < 6; j++ {
			angle := math.Pi / 3 * float64(j)
			pts = append(pts, domain.Point{X: x + math.Cos(angle)*size/2, Y: y + math.Sin(angle)*size/2})
		}
		return pts

	case domain.ShapeCustom:
		pts := make([]domain.Point, 0, s.Points)
		for j := 0; j < s.Points; j++ {
			angle := 2 * math.Pi / float64(s.Points) * float64(j)
			r := size / 2 * s.RadiusScale[j]
			pts = append(pts, domain.Point{X: x + math.Cos(angle)*r, Y: y + math.Sin(angle)*r})
		}
		return pts
	}
	return nil
}
