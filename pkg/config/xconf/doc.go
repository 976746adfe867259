// Package xconf 加载守护进程配置，基于 koanf 实现。
//
// # 设计理念
//
// 底层是最小化加载器（[New]、[NewFromBytes]）：负责文件/字节数据的加载、
// 反序列化和并发安全的 Reload。上层 [Daemon] 描述 xacpid 的配置结构，
// 默认值通过先填充结构体再反序列化注入（缺失的键保持默认值），
// 未知键视为错误，避免拼写错误被静默忽略。
//
// # 支持的格式
//
//   - YAML（默认，推荐）：.yaml, .yml
//   - JSON：.json
//
// # 配置结构
//
//	socket:
//	  path: /var/run/xacpid.socket
//	  mode: "0600"      # 八进制字符串
//	  group: ""         # 为空不修改属组
//	  disabled: false   # true 时不提供客户端端点
//	clients:
//	  max: 256          # 非 root 客户端上限
//	log:
//	  level: info       # debug/info/notice/warn/err/error
//	  format: text      # text/json
//	  file: ""          # 非空时写入轮转文件
//	  syslog: false
//	metrics:
//	  enabled: false
//	  interval: 60s     # 指标汇总写日志的间隔
//
// # 配置监视
//
// [Watch] 基于 fsnotify 监视配置文件所在目录（兼容 vim/emacs 的原子写入），
// 内置防抖，变更后调用 Reload 并通知回调。[Watcher.Run] 阻塞到 ctx 取消，
// 返回后不再有回调执行。从 bytes 创建的 Config 不支持监视。
package xconf
