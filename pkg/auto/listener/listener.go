// Package listener 提供进程级的全局键盘监听。
//
// 监听器由两部分协作：平台后端在独立线程上捕获系统键盘事件并写入
// 内部队列，派发协程从队列取出事件扇出给所有订阅者。订阅者通道
// 写满时事件被丢弃，保证捕获线程永远不会被慢订阅者阻塞。
package listener

import (
	"errors"
	"sync"
	"time"
)

// DefaultBufferSize 事件队列和订阅者通道的默认容量
const DefaultBufferSize = 100

var (
	// ErrUnsupported 当前平台没有全局监听实现
	ErrUnsupported = errors.New("当前平台不支持全局监听")

	// ErrAlreadyActive 同一进程同时只能有一个活动的监听器
	ErrAlreadyActive = errors.New("当前进程已有正在运行的全局监听器")

	// ErrClosed 监听器已经关闭
	ErrClosed = errors.New("监听器已关闭")
)

// KeyEvent 一次全局键盘事件
type KeyEvent struct {
	Code    uint32    `json:"code"`    // 平台虚拟键码
	Pressed bool      `json:"pressed"` // true 为按下，false 为抬起
	When    time.Time `json:"when"`
}

// Subscription 单个订阅者持有的事件流，通过 C 读取事件。
// 监听器关闭或调用 Unsubscribe 后 C 会被关闭。
type Subscription struct {
	C <-chan KeyEvent

	l  *Listener
	ch chan KeyEvent
	id uint64
}

// Unsubscribe 取消订阅并关闭事件通道，可以安全地重复调用
func (s *Subscription) Unsubscribe() {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if _, ok := s.l.subs[s.id]; ok {
		delete(s.l.subs, s.id)
		close(s.ch)
	}
}

// Listener 全局键盘监听器
type Listener struct {
	mu     sync.Mutex
	subs   map[uint64]chan KeyEvent
	nextID uint64
	closed bool

	bufSize      int
	events       chan KeyEvent
	dispatchDone chan struct{}
}

// Option 创建监听器时的可选配置
type Option func(*Listener)

// WithBufferSize 设置事件队列和订阅者通道的容量
func WithBufferSize(n int) Option {
	return func(l *Listener) {
		if n > 0 {
			l.bufSize = n
		}
	}
}

// New 创建监听器并立即开始捕获。非 Windows 平台返回 ErrUnsupported，
// 进程内已有活动监听器时返回 ErrAlreadyActive。
func New(opts ...Option) (*Listener, error) {
	l := &Listener{
		subs:         make(map[uint64]chan KeyEvent),
		bufSize:      DefaultBufferSize,
		dispatchDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.events = make(chan KeyEvent, l.bufSize)

	if err := l.start(); err != nil {
		return nil, err
	}
	go l.dispatch()
	return l, nil
}

// Subscribe 注册一个新的订阅者
func (l *Listener) Subscribe() (*Subscription, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, ErrClosed
	}
	id := l.nextID
	l.nextID++
	ch := make(chan KeyEvent, l.bufSize)
	l.subs[id] = ch
	return &Subscription{C: ch, l: l, ch: ch, id: id}, nil
}

// Close 停止捕获并关闭所有订阅者通道，可以安全地重复调用
func (l *Listener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	// 先停掉捕获线程，保证之后不会再有事件写入队列
	err := l.stop()
	close(l.events)
	<-l.dispatchDone

	l.mu.Lock()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
	l.mu.Unlock()
	return err
}

// dispatch 把队列里的事件扇出给所有订阅者，队列关闭后退出
func (l *Listener) dispatch() {
	defer close(l.dispatchDone)
	for ev := range l.events {
		l.mu.Lock()
		for _, ch := range l.subs {
			select {
			case ch <- ev:
			default:
				// 订阅者处理过慢时丢弃事件，派发不等待
			}
		}
		l.mu.Unlock()
	}
}
