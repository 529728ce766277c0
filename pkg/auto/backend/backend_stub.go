//go:build !linux && !windows && !darwin

package backend

import "github.com/zoeyai/zoeyauto/pkg/auto"

// New 当前平台没有后端实现
func New() (Backend, error) {
	return nil, auto.ErrUnsupportedPlatform
}
