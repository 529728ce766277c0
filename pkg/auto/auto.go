// Package auto 提供桌面自动化的共享类型和工具函数。
// 具体功能分布在子包中：backend, input, window, image, screen, listener。
package auto

import (
	"math"
	"time"
)

// Point 表示二维坐标点（屏幕像素坐标）
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region 表示矩形区域
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains 判断点是否落在区域内
func (r Region) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center 返回区域中心点
func (r Region) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Distance 计算两点之间的欧几里得距离（向下取整）
func Distance(a, b Point) int {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return int(math.Sqrt(dx*dx + dy*dy))
}

// Clamp 将点限制在 [min, max] 范围内
func Clamp(p, min, max Point) Point {
	return Point{
		X: MinInt(MaxInt(p.X, min.X), max.X),
		Y: MinInt(MaxInt(p.Y, min.Y), max.Y),
	}
}

// FromPolar 根据极坐标生成偏移点
// angleTurns: 角度（圈数，1.0 = 360 度）
// magnitude: 距离
func FromPolar(angleTurns, magnitude float64) Point {
	radians := angleTurns * 2 * math.Pi
	return Point{
		X: int(math.Round(magnitude * math.Cos(radians))),
		Y: int(math.Round(magnitude * math.Sin(radians))),
	}
}

// Add 两点相加
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub 两点相减
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Sleep 休眠
func Sleep(d time.Duration) {
	time.Sleep(d)
}

// MilliSleep 毫秒休眠
func MilliSleep(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// MinInt 返回最小值
func MinInt(values ...int) int {
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// MaxInt 返回最大值
func MaxInt(values ...int) int {
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
