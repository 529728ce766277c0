//go:build !windows

package listener

// start 非 Windows 平台没有全局钩子实现
func (l *Listener) start() error {
	return ErrUnsupported
}

func (l *Listener) stop() error {
	return nil
}
