package xconn

import "errors"

// 预定义错误。
var (
	// ErrNilConn 表示登记的连接为 nil。
	ErrNilConn = errors.New("xconn: nil connection")

	// ErrInvalidFD 表示描述符无效（小于 0）。
	ErrInvalidFD = errors.New("xconn: invalid descriptor")

	// ErrDuplicateFD 表示描述符已登记。
	ErrDuplicateFD = errors.New("xconn: descriptor already registered")

	// ErrNotFound 表示描述符未登记。
	ErrNotFound = errors.New("xconn: descriptor not registered")

	// ErrAlreadyRunning 表示分发器已在运行。
	ErrAlreadyRunning = errors.New("xconn: dispatcher is already running")

	// ErrQueueFull 表示投递队列已满。
	ErrQueueFull = errors.New("xconn: post queue is full")

	// ErrPoll 表示 poll 系统调用失败。
	ErrPoll = errors.New("xconn: poll failed")
)
