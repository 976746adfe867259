//go:build !unix

package xsys

// EnsureFileLimit 在非 Unix 平台上返回 [ErrUnsupportedPlatform]。
func EnsureFileLimit(want uint64) (uint64, error) {
	if want == 0 {
		return 0, ErrInvalidFileLimit
	}
	return 0, ErrUnsupportedPlatform
}
