//go:build !windows

package xconn

import (
	"errors"
	"fmt"
	"slices"
)

// Registry 连接注册表。
//
// 按登记顺序保存连接，同一描述符只能登记一次。非并发安全。
type Registry struct {
	conns map[int]Conn
	order []int
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{conns: make(map[int]Conn)}
}

// Add 登记连接。成功后描述符归注册表所有。
func (r *Registry) Add(c Conn) error {
	if c == nil {
		return ErrNilConn
	}
	fd := c.FD()
	if fd < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFD, fd)
	}
	if _, ok := r.conns[fd]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateFD, fd)
	}
	r.conns[fd] = c
	r.order = append(r.order, fd)
	return nil
}

// Remove 移除并关闭连接。
// 关闭失败时连接仍会被移除，错误原样返回。
func (r *Registry) Remove(fd int) error {
	c, ok := r.conns[fd]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, fd)
	}
	delete(r.conns, fd)
	if i := slices.Index(r.order, fd); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	return c.Close()
}

// Get 按描述符查找连接。
func (r *Registry) Get(fd int) (Conn, bool) {
	c, ok := r.conns[fd]
	return c, ok
}

// Len 返回已登记连接数（含监听连接）。
func (r *Registry) Len() int {
	return len(r.conns)
}

// Clients 返回已登记的数据连接数。
func (r *Registry) Clients() int {
	n := 0
	for _, c := range r.conns {
		if _, ok := c.(*Client); ok {
			n++
		}
	}
	return n
}

// Each 按登记顺序遍历连接，fn 返回 false 时停止。
// 遍历期间不得修改注册表。
func (r *Registry) Each(fn func(Conn) bool) {
	for _, fd := range r.order {
		if !fn(r.conns[fd]) {
			return
		}
	}
}

// CloseAll 关闭并移除全部连接，返回所有关闭错误的合并结果。
func (r *Registry) CloseAll() error {
	var errs []error
	for _, fd := range slices.Clone(r.order) {
		if err := r.Remove(fd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
