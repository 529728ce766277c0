// Package input 提供鼠标和键盘控制器。
// 控制器只负责轨迹、时序和按键编排，事件注入交给平台后端。
package input

import (
	"math/rand/v2"
	"time"

	"github.com/zoeyai/zoeyauto/pkg/auto"
)

// MouseBackend 鼠标控制器需要的后端能力
type MouseBackend interface {
	SetCursorPos(x, y int) error
	GetCursorPos() (auto.Point, error)
	InjectButtonEvent(btn auto.MouseButton, pressed bool) error
	ScreenSize() (width, height int, err error)
}

// Mouse 鼠标控制器
type Mouse struct {
	backend MouseBackend
	moving  chan struct{}
}

// NewMouse 创建鼠标控制器
func NewMouse(b MouseBackend) *Mouse {
	return &Mouse{
		backend: b,
		moving:  make(chan struct{}, 1),
	}
}

// GetPosition 当前光标位置
func (m *Mouse) GetPosition() (auto.Point, error) {
	return m.backend.GetCursorPos()
}

// MoveTo 直接移动光标到指定位置，负坐标钳到 0。
// 不受拟人移动锁的限制。
func (m *Mouse) MoveTo(x, y int) error {
	return m.backend.SetCursorPos(auto.MaxInt(x, 0), auto.MaxInt(y, 0))
}

// HumanlikeMoveTo 拟人移动光标：轨迹带弧度和随机偏移，速度
// 先快后慢，总耗时接近 WithDuration 指定的时长。
// 同一时刻只允许一次拟人移动，占用时返回 ErrMovementInProgress。
func (m *Mouse) HumanlikeMoveTo(x, y int, opts ...auto.Option) error {
	select {
	case m.moving <- struct{}{}:
	default:
		return auto.ErrMovementInProgress
	}
	defer func() { <-m.moving }()

	options := auto.ApplyOptions(opts...)
	return m.humanlikeMove(auto.Point{X: x, Y: y}, options.Duration, options.Step)
}

// humanlikeMove 分段逼近目标点。每段先把目标点往随机方向偏移
// 至多 10% 距离，再沿一条贝塞尔弧线缓出滑过去，剩余时间留给
// 后续修正段。落点距目标小于 1 像素时结束，时间预算耗尽时直接
// 落到目标点，保证结束后光标就在目标位置。
func (m *Mouse) humanlikeMove(target auto.Point, duration, step time.Duration) error {
	if step <= 0 {
		step = auto.DefaultMoveStep
	}

	screenW, screenH, err := m.backend.ScreenSize()
	if err != nil {
		return err
	}
	minPos := auto.Point{}
	maxPos := auto.Point{X: screenW, Y: screenH}

	remaining := duration
	for {
		from, err := m.GetPosition()
		if err != nil {
			return err
		}

		distance := auto.Distance(from, target)
		if distance < 1 {
			return nil
		}
		if remaining < step {
			return m.MoveTo(target.X, target.Y)
		}

		segTarget := target
		steps := int(remaining / step)
		if distance > auto.MinHumanlikeDistance {
			angleTurns := rand.Float64()
			pct := rand.Float64() * 0.1
			offset := auto.FromPolar(angleTurns, float64(distance)*pct)
			segTarget = auto.Clamp(target.Sub(offset), minPos, maxPos)
			steps = int(time.Duration(float64(remaining)*(1-pct)) / step)
		}
		if steps < 1 {
			steps = 1
		}

		control := arcControlPoint(from, segTarget, 0.1)
		for t := 0; t < steps; t++ {
			pos := interpolate(from, segTarget, control, easeOutCubic(float64(t)/float64(steps)))
			if err := m.MoveTo(pos.X, pos.Y); err != nil {
				return err
			}
			auto.Sleep(step)
		}

		remaining -= time.Duration(steps) * step
	}
}

// Down 按下鼠标按钮
func (m *Mouse) Down(btn auto.MouseButton) error {
	return m.backend.InjectButtonEvent(btn, true)
}

// Up 抬起鼠标按钮
func (m *Mouse) Up(btn auto.MouseButton) error {
	return m.backend.InjectButtonEvent(btn, false)
}

// Click 点击鼠标按钮：按下后立即抬起。滚轮方向点击一次
// 对应滚动一格。
func (m *Mouse) Click(btn auto.MouseButton) error {
	if err := m.backend.InjectButtonEvent(btn, true); err != nil {
		return err
	}
	return m.backend.InjectButtonEvent(btn, false)
}

// ClickAt 拟人移动到指定位置后单击左键
func (m *Mouse) ClickAt(x, y int, opts ...auto.Option) error {
	if err := m.HumanlikeMoveTo(x, y, opts...); err != nil {
		return err
	}
	return m.Click(auto.ButtonLeft)
}
