// Package image 提供窗口截图的像素访问和精确颜色检索。
// 颜色一律用 0xRRGGBBAA 格式的 32 位整数表示。
package image

import (
	"fmt"
	stdimage "image"
	"sort"
	"sync"

	"github.com/zoeyai/zoeyauto/pkg/auto"
	"github.com/zoeyai/zoeyauto/pkg/auto/screen"
)

// Pixel 带颜色的像素位置
type Pixel struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	RGBA uint32 `json:"rgba"`
}

// Feature 一组相邻像素构成的特征
type Feature struct {
	Pixels []Pixel `json:"pixels"`
}

// ColourFrequency 颜色及其出现次数
type ColourFrequency struct {
	RGBA  uint32 `json:"rgba"`
	Count int    `json:"count"`
}

// Image 不可变的 RGBA 栅格。像素按行优先排列，
// 每个像素 4 字节，总长度恒等于 宽 x 高 x 4。
type Image struct {
	width  int
	height int
	pix    []byte

	histOnce sync.Once
	hist     map[uint32]int
}

// PackRGBA 把四个通道打包成 0xRRGGBBAA
func PackRGBA(r, g, b, a uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | uint32(a)
}

// UnpackRGBA 把 0xRRGGBBAA 拆成四个通道
func UnpackRGBA(rgba uint32) (r, g, b, a uint8) {
	return uint8(rgba >> 24), uint8(rgba >> 16), uint8(rgba >> 8), uint8(rgba)
}

// New 从原始像素数据创建图像。数据长度必须等于 宽 x 高 x 4。
func New(width, height int, pix []byte) (*Image, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("图像尺寸不能为负: %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("像素数据长度 %d 与尺寸 %dx%d 不符", len(pix), width, height)
	}
	return &Image{width: width, height: height, pix: pix}, nil
}

// NewFromRGBA 从标准库 RGBA 图像创建图像，像素数据会被拷贝
func NewFromRGBA(img *stdimage.RGBA) *Image {
	rgba := screen.ToRGBA(img)
	width := rgba.Rect.Dx()
	height := rgba.Rect.Dy()

	im := &Image{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*4),
	}
	for y := 0; y < height; y++ {
		copy(im.pix[y*width*4:(y+1)*width*4], rgba.Pix[y*rgba.Stride:y*rgba.Stride+width*4])
	}
	return im
}

// Width 图像宽度
func (im *Image) Width() int {
	return im.width
}

// Height 图像高度
func (im *Image) Height() int {
	return im.height
}

// pixelAt 读取像素颜色，调用方保证坐标合法
func (im *Image) pixelAt(x, y int) uint32 {
	o := (y*im.width + x) * 4
	return PackRGBA(im.pix[o], im.pix[o+1], im.pix[o+2], im.pix[o+3])
}

// GetPixelRGBA 读取指定位置的像素颜色。
// 坐标等于宽或高时同样算越界。
func (im *Image) GetPixelRGBA(x, y int) (uint32, error) {
	if x < 0 || x >= im.width || y < 0 || y >= im.height {
		return 0, fmt.Errorf("%w: (%d, %d) 不在 %dx%d 图像内", auto.ErrOutOfBounds, x, y, im.width, im.height)
	}
	return im.pixelAt(x, y), nil
}

// histogram 全图颜色直方图，首次使用时构建
func (im *Image) histogram() map[uint32]int {
	im.histOnce.Do(func() {
		h := make(map[uint32]int)
		for o := 0; o+3 < len(im.pix); o += 4 {
			h[PackRGBA(im.pix[o], im.pix[o+1], im.pix[o+2], im.pix[o+3])]++
		}
		im.hist = h
	})
	return im.hist
}

// FindRGBAs 找出所有颜色精确相等的像素，按行优先顺序返回
func (im *Image) FindRGBAs(rgba uint32) []Pixel {
	count := im.histogram()[rgba]
	if count == 0 {
		return nil
	}

	positions := make([]Pixel, 0, count)
	for y := 0; y < im.height; y++ {
		for x := 0; x < im.width; x++ {
			if im.pixelAt(x, y) == rgba {
				positions = append(positions, Pixel{X: x, Y: y, RGBA: rgba})
			}
		}
	}
	return positions
}

// 同一特征内相邻像素的最大间距
const maxFeatureDistance = 5

// GetFeaturesFromColor 找出所有颜色精确相等的像素，把相互邻近的
// 归并成特征。像素先按 (x, y) 排序，再贪心分组：与某组任一成员
// 距离不超过 5 像素就并入该组。
func (im *Image) GetFeaturesFromColor(rgba uint32) []Feature {
	pixels := im.FindRGBAs(rgba)
	if len(pixels) == 0 {
		return nil
	}

	sort.Slice(pixels, func(i, j int) bool {
		if pixels[i].X != pixels[j].X {
			return pixels[i].X < pixels[j].X
		}
		return pixels[i].Y < pixels[j].Y
	})

	const maxDistSq = maxFeatureDistance * maxFeatureDistance

	var groups [][]Pixel
	for _, pixel := range pixels {
		joined := false
		for gi := range groups {
			for _, member := range groups[gi] {
				dx := member.X - pixel.X
				dy := member.Y - pixel.Y
				if dx*dx+dy*dy <= maxDistSq {
					groups[gi] = append(groups[gi], pixel)
					joined = true
					break
				}
			}
			if joined {
				break
			}
		}
		if !joined {
			groups = append(groups, []Pixel{pixel})
		}
	}

	features := make([]Feature, 0, len(groups))
	for _, g := range groups {
		features = append(features, Feature{Pixels: g})
	}
	return features
}

// GetFeature 截取矩形区域内的全部像素作为特征。两个端点都必须
// 落在图像内，顺序不限，坐标按区域左上角归零。
func (im *Image) GetFeature(startX, startY, endX, endY int) (Feature, error) {
	minX := auto.MinInt(startX, endX)
	maxX := auto.MaxInt(startX, endX)
	minY := auto.MinInt(startY, endY)
	maxY := auto.MaxInt(startY, endY)

	if minX < 0 || minY < 0 || minX >= im.width || minY >= im.height {
		return Feature{}, fmt.Errorf("%w: 起点 (%d, %d) 超出图像边界", auto.ErrOutOfBounds, minX, minY)
	}
	if maxX >= im.width || maxY >= im.height {
		return Feature{}, fmt.Errorf("%w: 终点 (%d, %d) 超出图像边界", auto.ErrOutOfBounds, maxX, maxY)
	}

	pixels := make([]Pixel, 0, (maxX-minX+1)*(maxY-minY+1))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			pixels = append(pixels, Pixel{
				X:    x - minX,
				Y:    y - minY,
				RGBA: im.pixelAt(x, y),
			})
		}
	}
	return Feature{Pixels: pixels}, nil
}

// GetColourFrequencies 统计矩形区域内每种颜色的出现次数，
// 按次数从高到低返回，次数相同时按颜色值排序保证结果稳定。
func (im *Image) GetColourFrequencies(startX, startY, endX, endY int) ([]ColourFrequency, error) {
	minX := auto.MinInt(startX, endX)
	maxX := auto.MaxInt(startX, endX)
	minY := auto.MinInt(startY, endY)
	maxY := auto.MaxInt(startY, endY)

	if minX < 0 || minY < 0 || maxX >= im.width || maxY >= im.height {
		return nil, fmt.Errorf("%w: 区域 (%d, %d)-(%d, %d) 超出 %dx%d 图像", auto.ErrOutOfBounds, minX, minY, maxX, maxY, im.width, im.height)
	}

	counts := make(map[uint32]int)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			counts[im.pixelAt(x, y)]++
		}
	}

	frequencies := make([]ColourFrequency, 0, len(counts))
	for rgba, count := range counts {
		frequencies = append(frequencies, ColourFrequency{RGBA: rgba, Count: count})
	}
	sort.Slice(frequencies, func(i, j int) bool {
		if frequencies[i].Count != frequencies[j].Count {
			return frequencies[i].Count > frequencies[j].Count
		}
		return frequencies[i].RGBA < frequencies[j].RGBA
	})
	return frequencies, nil
}
