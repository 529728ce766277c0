package input

import (
	"math"
	"math/rand/v2"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// clampUnit 把插值参数限制在 [0,1]
func clampUnit(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// easeOutQuad 二次缓出曲线
func easeOutQuad(t float64) float64 {
	t = clampUnit(t)
	return t * (2 - t)
}

// easeOutCubic 三次缓出曲线，起步快收尾慢
func easeOutCubic(t float64) float64 {
	t = clampUnit(t)
	u := 1 - t
	return 1 - u*u*u
}

// interpolate 二次贝塞尔插值。t 为 0 时在起点，1 时在终点，
// 中间的点被控制点拉出弧度。
func interpolate(start, end, control auto.Point, t float64) auto.Point {
	u := 1 - t
	x := u*u*float64(start.X) + 2*u*t*float64(control.X) + t*t*float64(end.X)
	y := u*u*float64(start.Y) + 2*u*t*float64(control.Y) + t*t*float64(end.Y)
	return auto.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}

// arcControlPoint 生成贝塞尔控制点：取连线中点，沿随机一侧的
// 垂直方向偏移至多 maxArcFactor 倍直线距离。
func arcControlPoint(start, end auto.Point, maxArcFactor float64) auto.Point {
	mid := auto.Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	diff := end.Sub(start)
	straight := float64(auto.Distance(start, end))

	perp := auto.Point{X: -diff.Y, Y: diff.X}
	if rand.IntN(2) == 0 {
		perp = auto.Point{X: diff.Y, Y: -diff.X}
	}

	mag := math.Hypot(float64(perp.X), float64(perp.Y))
	var unitX, unitY float64
	if mag != 0 {
		unitX = float64(perp.X) / mag
		unitY = float64(perp.Y) / mag
	}

	arc := rand.Float64() * straight * maxArcFactor
	return auto.Point{
		X: int(math.Round(float64(mid.X) + unitX*arc)),
		Y: int(math.Round(float64(mid.Y) + unitY*arc)),
	}
}
