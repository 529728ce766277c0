package listener

import (
	"errors"
	"runtime"
	"testing"
	"time"
)

// newIdleListener 构造一个不安装系统钩子的监听器，直接往内部
// 队列写事件来测试派发逻辑。eventCap 是内部队列容量，subCap 是
// 订阅者通道容量。
func newIdleListener(eventCap, subCap int) *Listener {
	l := &Listener{
		subs:         make(map[uint64]chan KeyEvent),
		bufSize:      subCap,
		dispatchDone: make(chan struct{}),
	}
	l.events = make(chan KeyEvent, eventCap)
	go l.dispatch()
	return l
}

// drain 非阻塞地取空订阅者通道里已缓冲的事件
func drain(c <-chan KeyEvent) []KeyEvent {
	var out []KeyEvent
	for {
		select {
		case ev, ok := <-c:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// TestDispatchFanout 事件按顺序扇出给所有订阅者
func TestDispatchFanout(t *testing.T) {
	l := newIdleListener(10, 10)

	sub1, err := l.Subscribe()
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	sub2, err := l.Subscribe()
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	events := []KeyEvent{
		{Code: 65, Pressed: true, When: time.Now()},
		{Code: 65, Pressed: false, When: time.Now()},
		{Code: 66, Pressed: true, When: time.Now()},
	}
	for _, ev := range events {
		l.events <- ev
	}

	// 关闭队列并等派发结束，保证所有事件都已送达
	close(l.events)
	<-l.dispatchDone

	for _, sub := range []*Subscription{sub1, sub2} {
		got := drain(sub.C)
		if len(got) != len(events) {
			t.Fatalf("订阅者收到 %d 个事件, 期望 %d 个", len(got), len(events))
		}
		for i, ev := range events {
			if got[i].Code != ev.Code || got[i].Pressed != ev.Pressed {
				t.Errorf("事件 %d 错误: 期望 %+v, 实际 %+v", i, ev, got[i])
			}
		}
	}
}

// TestSlowSubscriberDrop 订阅者通道写满后多余事件被丢弃
func TestSlowSubscriberDrop(t *testing.T) {
	l := newIdleListener(10, 2)

	sub, err := l.Subscribe()
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	for i := 0; i < 5; i++ {
		l.events <- KeyEvent{Code: uint32(i), Pressed: true, When: time.Now()}
	}
	close(l.events)
	<-l.dispatchDone

	got := drain(sub.C)
	if len(got) != 2 {
		t.Fatalf("慢订阅者应只保留 2 个事件, 实际 %d 个", len(got))
	}
	// 保留的是最早的事件，顺序不变
	if got[0].Code != 0 || got[1].Code != 1 {
		t.Errorf("保留的事件错误: %+v", got)
	}
}

// TestUnsubscribe 取消订阅后通道关闭，其余订阅者不受影响
func TestUnsubscribe(t *testing.T) {
	l := newIdleListener(10, 10)

	sub1, _ := l.Subscribe()
	sub2, _ := l.Subscribe()

	sub1.Unsubscribe()
	if _, ok := <-sub1.C; ok {
		t.Error("取消订阅后通道应被关闭")
	}
	// 重复取消是空操作
	sub1.Unsubscribe()

	l.events <- KeyEvent{Code: 42, Pressed: true, When: time.Now()}
	close(l.events)
	<-l.dispatchDone

	got := drain(sub2.C)
	if len(got) != 1 || got[0].Code != 42 {
		t.Errorf("剩余订阅者应照常收到事件: %+v", got)
	}
}

// TestClose 关闭后订阅者通道关闭，重复关闭和再订阅都安全
func TestClose(t *testing.T) {
	l := newIdleListener(10, 10)

	sub, err := l.Subscribe()
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}
	if _, ok := <-sub.C; ok {
		t.Error("关闭后订阅者通道应被关闭")
	}

	// 重复关闭是空操作
	if err := l.Close(); err != nil {
		t.Errorf("重复关闭应返回 nil: %v", err)
	}

	if _, err := l.Subscribe(); !errors.Is(err, ErrClosed) {
		t.Errorf("关闭后订阅应返回 ErrClosed, 实际 %v", err)
	}
}

// TestCloseDeliversBuffered 关闭前已入队的事件仍会送达
func TestCloseDeliversBuffered(t *testing.T) {
	l := newIdleListener(10, 10)

	sub, _ := l.Subscribe()
	l.events <- KeyEvent{Code: 7, Pressed: true, When: time.Now()}
	l.events <- KeyEvent{Code: 7, Pressed: false, When: time.Now()}

	if err := l.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}

	got := drain(sub.C)
	if len(got) != 2 {
		t.Fatalf("关闭前的事件应送达: 期望 2 个, 实际 %d 个", len(got))
	}
	if got[0].Code != 7 || !got[0].Pressed || got[1].Pressed {
		t.Errorf("事件内容错误: %+v", got)
	}
}

// TestWithBufferSize 容量配置只接受正数
func TestWithBufferSize(t *testing.T) {
	l := &Listener{bufSize: DefaultBufferSize}
	WithBufferSize(5)(l)
	if l.bufSize != 5 {
		t.Errorf("容量错误: 期望 5, 实际 %d", l.bufSize)
	}
	WithBufferSize(0)(l)
	if l.bufSize != 5 {
		t.Errorf("非正容量应被忽略: 实际 %d", l.bufSize)
	}
	WithBufferSize(-3)(l)
	if l.bufSize != 5 {
		t.Errorf("非正容量应被忽略: 实际 %d", l.bufSize)
	}
}

// TestNewPlatformSupport New 在不支持的平台返回 ErrUnsupported
func TestNewPlatformSupport(t *testing.T) {
	l, err := New()
	if runtime.GOOS != "windows" {
		if !errors.Is(err, ErrUnsupported) {
			t.Fatalf("非 Windows 平台期望 ErrUnsupported, 实际 %v", err)
		}
		return
	}

	if err != nil {
		// 无桌面会话时钩子安装会失败
		t.Skipf("创建监听器失败: %v", err)
	}
	defer l.Close()

	// 已有活动监听器时再创建返回 ErrAlreadyActive
	if _, err := New(); !errors.Is(err, ErrAlreadyActive) {
		t.Errorf("期望 ErrAlreadyActive, 实际 %v", err)
	}

	sub, err := l.Subscribe()
	if err != nil {
		t.Fatalf("订阅失败: %v", err)
	}
	sub.Unsubscribe()
}
