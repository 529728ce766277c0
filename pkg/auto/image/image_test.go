package image

import (
	"errors"
	"fmt"
	stdimage "image"
	"image/color"
	"testing"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

const (
	colRed   = 0xFF0000FF
	colGreen = 0x00FF00FF
	colBlue  = 0x0000FFFF
	colWhite = 0xFFFFFFFF
)

// newTestImage 构造纯色背景并点上若干指定像素的测试图像
func newTestImage(t *testing.T, width, height int, bg uint32, pixels map[[2]int]uint32) *Image {
	t.Helper()
	pix := make([]byte, width*height*4)
	r, g, b, a := UnpackRGBA(bg)
	for i := 0; i < width*height; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, a
	}
	for pos, c := range pixels {
		o := (pos[1]*width + pos[0]) * 4
		r, g, b, a := UnpackRGBA(c)
		pix[o], pix[o+1], pix[o+2], pix[o+3] = r, g, b, a
	}
	im, err := New(width, height, pix)
	if err != nil {
		t.Fatalf("创建测试图像失败: %v", err)
	}
	return im
}

// TestPackUnpackRGBA 测试颜色打包和拆包
func TestPackUnpackRGBA(t *testing.T) {
	if got := PackRGBA(0x12, 0x34, 0x56, 0x78); got != 0x12345678 {
		t.Errorf("PackRGBA 错误: 期望 0x12345678, 实际 0x%08X", got)
	}
	if got := PackRGBA(255, 0, 0, 255); got != colRed {
		t.Errorf("红色打包错误: 实际 0x%08X", got)
	}

	r, g, b, a := UnpackRGBA(0x12345678)
	if r != 0x12 || g != 0x34 || b != 0x56 || a != 0x78 {
		t.Errorf("UnpackRGBA 错误: 实际 (%02X, %02X, %02X, %02X)", r, g, b, a)
	}
}

// TestNewValidation 测试创建图像时的参数校验
func TestNewValidation(t *testing.T) {
	if _, err := New(2, 2, make([]byte, 15)); err == nil {
		t.Error("数据长度不符应返回错误")
	}
	if _, err := New(-1, 2, nil); err == nil {
		t.Error("负尺寸应返回错误")
	}
	im, err := New(0, 0, nil)
	if err != nil {
		t.Errorf("空图像应合法: %v", err)
	}
	if im.Width() != 0 || im.Height() != 0 {
		t.Errorf("空图像尺寸错误: %dx%d", im.Width(), im.Height())
	}
}

// TestNewFromRGBA 测试从标准库图像创建
func TestNewFromRGBA(t *testing.T) {
	src := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 3))
	src.SetRGBA(1, 2, color.RGBA{R: 255, A: 255})

	im := NewFromRGBA(src)
	if im.Width() != 4 || im.Height() != 3 {
		t.Fatalf("尺寸错误: %dx%d", im.Width(), im.Height())
	}
	got, err := im.GetPixelRGBA(1, 2)
	if err != nil {
		t.Fatalf("读取像素失败: %v", err)
	}
	if got != colRed {
		t.Errorf("像素颜色错误: 期望 0x%08X, 实际 0x%08X", uint32(colRed), got)
	}

	// 源图像被拷贝，后续修改不影响已创建的图像
	src.SetRGBA(1, 2, color.RGBA{B: 255, A: 255})
	if got, _ := im.GetPixelRGBA(1, 2); got != colRed {
		t.Errorf("图像不应跟随源图像变化: 实际 0x%08X", got)
	}
}

// TestNewFromRGBASubImage 子图像的非零原点和跨行步长被正确处理
func TestNewFromRGBASubImage(t *testing.T) {
	parent := stdimage.NewRGBA(stdimage.Rect(0, 0, 10, 10))
	parent.SetRGBA(3, 4, color.RGBA{R: 255, A: 255})

	sub := parent.SubImage(stdimage.Rect(2, 3, 6, 6)).(*stdimage.RGBA)
	im := NewFromRGBA(sub)
	if im.Width() != 4 || im.Height() != 3 {
		t.Fatalf("子图像尺寸错误: %dx%d", im.Width(), im.Height())
	}
	// 父图像的 (3,4) 在子图像中是 (1,1)
	got, err := im.GetPixelRGBA(1, 1)
	if err != nil {
		t.Fatalf("读取像素失败: %v", err)
	}
	if got != colRed {
		t.Errorf("子图像像素错误: 期望 0x%08X, 实际 0x%08X", uint32(colRed), got)
	}
}

// TestGetPixelRGBA 测试像素读取和边界检查
func TestGetPixelRGBA(t *testing.T) {
	im := newTestImage(t, 4, 3, colWhite, map[[2]int]uint32{
		{0, 0}: colRed,
		{3, 2}: colBlue,
	})

	cases := []struct {
		x, y int
		want uint32
	}{
		{0, 0, colRed},
		{3, 2, colBlue},
		{1, 1, colWhite},
	}
	for _, c := range cases {
		got, err := im.GetPixelRGBA(c.x, c.y)
		if err != nil {
			t.Errorf("(%d,%d) 读取失败: %v", c.x, c.y, err)
			continue
		}
		if got != c.want {
			t.Errorf("(%d,%d): 期望 0x%08X, 实际 0x%08X", c.x, c.y, c.want, got)
		}
	}

	// 坐标等于宽高也算越界
	oob := [][2]int{{4, 0}, {0, 3}, {-1, 0}, {0, -1}}
	for _, p := range oob {
		if _, err := im.GetPixelRGBA(p[0], p[1]); !errors.Is(err, auto.ErrOutOfBounds) {
			t.Errorf("(%d,%d) 应返回 ErrOutOfBounds, 实际 %v", p[0], p[1], err)
		}
	}
}

// TestFindRGBAs 查找结果按行优先顺序排列
func TestFindRGBAs(t *testing.T) {
	im := newTestImage(t, 4, 4, colWhite, map[[2]int]uint32{
		{2, 1}: colRed,
		{0, 3}: colRed,
		{1, 1}: colRed,
	})

	got := im.FindRGBAs(colRed)
	want := []Pixel{
		{X: 1, Y: 1, RGBA: colRed},
		{X: 2, Y: 1, RGBA: colRed},
		{X: 0, Y: 3, RGBA: colRed},
	}
	if len(got) != len(want) {
		t.Fatalf("结果数错误: 期望 %d, 实际 %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("结果 %d 错误: 期望 %+v, 实际 %+v", i, want[i], got[i])
		}
	}

	if miss := im.FindRGBAs(colGreen); len(miss) != 0 {
		t.Errorf("未出现的颜色应返回空结果: %+v", miss)
	}
}

// TestGetFeaturesFromColor 邻近像素归并为特征，远处像素各成一组
func TestGetFeaturesFromColor(t *testing.T) {
	im := newTestImage(t, 12, 12, colWhite, map[[2]int]uint32{
		{0, 0}: colRed,
		{1, 1}: colRed,
		{2, 0}: colRed,
		{9, 9}: colRed,
	})

	features := im.GetFeaturesFromColor(colRed)
	if len(features) != 2 {
		t.Fatalf("特征数错误: 期望 2, 实际 %d", len(features))
	}
	if len(features[0].Pixels) != 3 {
		t.Errorf("第一组像素数错误: 期望 3, 实际 %d", len(features[0].Pixels))
	}
	if len(features[1].Pixels) != 1 || features[1].Pixels[0].X != 9 || features[1].Pixels[0].Y != 9 {
		t.Errorf("第二组应只含孤立像素 (9,9): %+v", features[1].Pixels)
	}

	if none := im.GetFeaturesFromColor(colGreen); len(none) != 0 {
		t.Errorf("未出现的颜色不应有特征: %+v", none)
	}
}

// TestGetFeaturesChain 链式排列的像素通过任一成员归并进同一特征
func TestGetFeaturesChain(t *testing.T) {
	// 相邻间距 4 在阈值内，首尾间距 12 超出阈值，
	// 归并按组内任一成员判断，整条链是一个特征
	im := newTestImage(t, 16, 3, colWhite, map[[2]int]uint32{
		{0, 0}:  colBlue,
		{4, 0}:  colBlue,
		{8, 0}:  colBlue,
		{12, 0}: colBlue,
	})

	features := im.GetFeaturesFromColor(colBlue)
	if len(features) != 1 {
		t.Fatalf("整条链应归并为一个特征, 实际 %d 个", len(features))
	}
	if len(features[0].Pixels) != 4 {
		t.Errorf("链内像素数错误: 期望 4, 实际 %d", len(features[0].Pixels))
	}
}

// TestGetFeature 区域截取坐标归零，端点顺序不限
func TestGetFeature(t *testing.T) {
	im := newTestImage(t, 5, 4, colWhite, map[[2]int]uint32{
		{1, 1}: colRed,
		{3, 2}: colBlue,
	})

	feature, err := im.GetFeature(3, 2, 1, 1)
	if err != nil {
		t.Fatalf("GetFeature 失败: %v", err)
	}
	// 区域 (1,1)-(3,2) 共 3x2 像素
	if len(feature.Pixels) != 6 {
		t.Fatalf("像素数错误: 期望 6, 实际 %d", len(feature.Pixels))
	}
	// 坐标按区域左上角归零
	if p := feature.Pixels[0]; p.X != 0 || p.Y != 0 || p.RGBA != colRed {
		t.Errorf("首像素错误: %+v", p)
	}
	if p := feature.Pixels[5]; p.X != 2 || p.Y != 1 || p.RGBA != colBlue {
		t.Errorf("末像素错误: %+v", p)
	}

	if _, err := im.GetFeature(-1, 0, 2, 2); !errors.Is(err, auto.ErrOutOfBounds) {
		t.Errorf("起点越界应返回 ErrOutOfBounds, 实际 %v", err)
	}
	if _, err := im.GetFeature(0, 0, 5, 2); !errors.Is(err, auto.ErrOutOfBounds) {
		t.Errorf("终点越界应返回 ErrOutOfBounds, 实际 %v", err)
	}
}

// TestGetColourFrequencies 统计按次数降序，并列时按颜色值升序
func TestGetColourFrequencies(t *testing.T) {
	im := newTestImage(t, 4, 2, colWhite, map[[2]int]uint32{
		{0, 0}: colRed,
		{1, 0}: colRed,
		{2, 0}: colBlue,
	})

	freqs, err := im.GetColourFrequencies(0, 0, 3, 1)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	want := []ColourFrequency{
		{RGBA: colWhite, Count: 5},
		{RGBA: colRed, Count: 2},
		{RGBA: colBlue, Count: 1},
	}
	if len(freqs) != len(want) {
		t.Fatalf("颜色数错误: 期望 %d, 实际 %d", len(want), len(freqs))
	}
	for i := range want {
		if freqs[i] != want[i] {
			t.Errorf("第 %d 项错误: 期望 %+v, 实际 %+v", i, want[i], freqs[i])
		}
	}

	// 只统计子区域
	sub, err := im.GetColourFrequencies(0, 0, 1, 0)
	if err != nil {
		t.Fatalf("子区域统计失败: %v", err)
	}
	if len(sub) != 1 || sub[0].RGBA != colRed || sub[0].Count != 2 {
		t.Errorf("子区域统计错误: %+v", sub)
	}

	if _, err := im.GetColourFrequencies(0, 0, 4, 1); !errors.Is(err, auto.ErrOutOfBounds) {
		t.Errorf("区域越界应返回 ErrOutOfBounds, 实际 %v", err)
	}
}

// TestGetColourFrequenciesTie 次数并列时按颜色值升序保证结果稳定
func TestGetColourFrequenciesTie(t *testing.T) {
	im := newTestImage(t, 2, 2, colRed, map[[2]int]uint32{
		{0, 1}: colBlue,
		{1, 1}: colBlue,
	})

	freqs, err := im.GetColourFrequencies(0, 0, 1, 1)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	if len(freqs) != 2 {
		t.Fatalf("颜色数错误: %d", len(freqs))
	}
	// 蓝色 0x0000FFFF 小于红色 0xFF0000FF
	if freqs[0].RGBA != colBlue || freqs[1].RGBA != colRed {
		t.Errorf("并列排序错误: %+v", freqs)
	}
}

func ExamplePackRGBA() {
	fmt.Printf("%08X\n", PackRGBA(255, 0, 0, 255))
	// Output: FF0000FF
}
