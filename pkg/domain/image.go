package domain

// PatternType は背景パターンの種類です。
type PatternType int

const (
	PatternSolid PatternType = iota
	PatternGradient
	PatternGrid
	PatternCircles
)

var patternNames = [...]string{"Solid", "Gradient", "Grid", "Circles"}

// String はメタデータの "Pattern Type" に出力する名前を返します。
func (p PatternType) String() string {
	if p < 0 || int(p) >= len(patternNames) {
		return "Unknown"
	}
	return patternNames[p]
}

// ShapeKind は前景に描く図形の種類です。
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeRectangle
	ShapeTriangle
	ShapeStar
	ShapeHexagon
	ShapeCustom
)

var shapeNames = [...]string{"Circle", "Rectangle", "Triangle", "Star", "Hexagon", "Custom"}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(shapeNames) {
		return "Unknown"
	}
	return shapeNames[k]
}

// HSLA は CSS の hsla() と同じ意味の色です。H は度、S と L はパーセント、A は 0..1。
type HSLA struct {
	H float64
	S float64
	L float64
	A float64
}

// Point はキャンバス上の座標です。
type Point struct {
	X float64
	Y float64
}

// CircleSpec は Circles 背景に重ねる半透明の円です。
type CircleSpec struct {
	Center Point
	Radius float64
	Color  HSLA
}

// BackgroundSpec は背景の描画パラメータです。使われるフィールドは Pattern によって異なります。
type BackgroundSpec struct {
	Pattern PatternType
	// Solid / Circles の地色、Gradient の始点色、Grid の基準色
	Base HSLA
	// Gradient の終点色
	End HSLA
	// Grid のタイル一辺
	TileSize int
	Circles  []CircleSpec
}

// ShapeSpec は前景図形 1 つ分の描画パラメータです。
type ShapeSpec struct {
	Kind        ShapeKind
	Position    Point
	Size        float64
	Fill        HSLA
	Stroke      HSLA
	StrokeWidth float64
	// Star のスパイク数、Custom の頂点数
	Points int
	// Custom の各頂点の半径 (Size/2 に対する倍率)
	RadiusScale []float64
}

// LabelSpec は下部のトークン ID ラベルです。
type LabelSpec struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

// RenderSpec はラスタライズ前の描画内容の全記述です。生成後は破棄されます。
type RenderSpec struct {
	TokenID    TokenID
	Width      int
	Height     int
	Background BackgroundSpec
	Shapes     []ShapeSpec
	Label      LabelSpec
}

// PatternType は背景パターンを返します。
func (s RenderSpec) PatternType() PatternType { return s.Background.Pattern }

// ShapeCount は前景図形の数を返します。
func (s RenderSpec) ShapeCount() int { return len(s.Shapes) }

// ImageResponse はエンコード済みの画像データです。
type ImageResponse struct {
	TokenID  TokenID
	Data     []byte
	MimeType string
	Path     string // キャッシュファイルのパス
	Cached   bool   // 既存キャッシュから返した場合 true
}
