// Package screen 提供截图像素的格式转换和尺寸归一化。
package screen

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ToRGBA 把任意图像转成原点在 (0,0) 的 RGBA 图像。
// 已经满足条件的图像直接返回，不做拷贝。
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min.X == 0 && rgba.Rect.Min.Y == 0 {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

// Normalize 把图像归一化到指定的逻辑尺寸。高分屏 (Retina) 截出的
// 图像是逻辑尺寸的整数倍，缩放回去保证像素坐标和屏幕坐标一致。
func Normalize(img image.Image, width, height int) *image.RGBA {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return ToRGBA(img)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// Clone 深拷贝一张 RGBA 图像
func Clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}
