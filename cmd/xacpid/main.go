//go:build !windows

// xacpid 是 ACPI 事件守护进程的客户端接入服务。
//
// 在 Unix 域套接字上接受客户端连接，按对端凭据做准入控制：
// root 客户端不受限制，非 root 客户端受 --clientmax 上限约束。
//
// 用法:
//
//	xacpid [选项]
//
// 选项:
//
//	-c, --config        配置文件路径（yaml/json），变更后自动重载
//	-s, --socketfile    客户端套接字路径 (默认: /var/run/xacpid.socket)
//	-m, --socketmode    套接字文件权限 (默认: 0600)
//	-g, --socketgroup   套接字文件属组
//	-C, --clientmax     非 root 客户端连接上限 (默认: 256)
//	-S, --nosocket      不监听客户端套接字
//	-l, --loglevel      日志级别 (默认: info)
//	    --logfile       日志文件路径（按大小轮转）
//	    --syslog        日志输出到 syslog
//	    --metrics       启用准入指标并周期写入日志
//
// 命令行参数优先于配置文件。stdin 是套接字或 systemd 传入了描述符时，
// 直接接管该描述符，不创建套接字文件。
//
// 信号:
//
//	SIGINT/SIGTERM/SIGQUIT  退出，删除本进程创建的套接字文件
//	SIGHUP                  重新读取配置，更新日志级别和客户端上限
//
// 退出码:
//
//	0: 正常退出（含收到终止信号）
//	1: 致命错误（无法创建套接字、连续 accept 失败等）
//	2: 参数或配置错误
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xacpid/pkg/ipc/xsock"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// 退出码。
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// usageError 参数或配置错误，对应退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stderr))
}

// createApp 创建 CLI 应用。opts 追加到端点和准入器的选项之后。
func createApp(opts ...xsock.Option) *cli.Command {
	return &cli.Command{
		Name:    "xacpid",
		Usage:   "ACPI 事件守护进程客户端接入服务",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags:   createFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runDaemon(ctx, cmd, opts)
		},
		OnUsageError: func(_ context.Context, _ *cli.Command, err error, _ bool) error {
			return &usageError{err: err}
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler:  func(context.Context, *cli.Command, error) {},
		HideHelpCommand: true,
	}
}

func runDaemon(ctx context.Context, cmd *cli.Command, opts []xsock.Option) error {
	if cmd.Args().Len() > 0 {
		return &usageError{err: fmt.Errorf("unexpected argument %q", cmd.Args().First())}
	}
	settings, cfg, err := loadSettings(cmd)
	if err != nil {
		return &usageError{err: err}
	}

	d, err := newDaemon(cmd, cfg, settings, opts...)
	if err != nil {
		return err
	}
	defer d.close(ctx)

	d.logger.Info(ctx, "starting",
		slog.String("version", Version),
		slog.Int("clientmax", settings.Clients.Max),
		slog.Bool("nosocket", settings.Socket.Disabled))

	if err := d.provision(ctx); err != nil {
		d.logger.Error(ctx, "provision client socket", xlog.Err(err))
		return err
	}
	if err := d.serve(ctx); err != nil {
		d.logger.Error(ctx, "exiting", xlog.Err(err))
		return err
	}
	d.logger.Info(ctx, "exiting")
	return nil
}

// run 运行应用并返回退出码。
func run(ctx context.Context, args []string, stderr io.Writer) int {
	app := createApp()
	return exitCode(app.Run(ctx, args), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(stderr, "参数错误: %v\n", usageErr)
		return exitUsage
	}
	fmt.Fprintf(stderr, "错误: %v\n", err)
	return exitFatal
}
