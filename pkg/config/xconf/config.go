package xconf

import "github.com/knadh/koanf/v2"

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// Config 配置源。
type Config interface {
	// Client 返回底层的 koanf 实例快照。Reload 后旧快照仍可用但数据过期。
	Client() *koanf.Koanf

	// Unmarshal 将指定路径的配置反序列化到 target。
	// path 为空时反序列化整个配置；target 中已有的值在键缺失时保留。
	// 未知键返回错误。
	Unmarshal(path string, target any) error

	// Reload 重新加载配置文件，解析失败时保留旧配置。
	// 从字节数据创建的 Config 返回 ErrNotWatchable。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
