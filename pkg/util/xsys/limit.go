package xsys

// Reserve 客户端之外需要的描述符余量：标准输入输出、监听套接字、
// 日志文件、配置监视和不计入上限的 root 客户端。
const Reserve = 64

// target 计算应设置的 soft limit：不低于当前值，不超过 hard limit。
func target(want, soft, hard uint64) uint64 {
	if want <= soft {
		return soft
	}
	return min(want, hard)
}
