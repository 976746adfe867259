//go:build !windows

package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xacpid/pkg/config/xconf"
	"github.com/omeyang/xacpid/pkg/ipc/xsock"
	"github.com/omeyang/xacpid/pkg/observability/xlog"
)

// 命令行参数名。
const (
	flagConfig      = "config"
	flagSocketFile  = "socketfile"
	flagSocketMode  = "socketmode"
	flagSocketGroup = "socketgroup"
	flagClientMax   = "clientmax"
	flagNoSocket    = "nosocket"
	flagLogLevel    = "loglevel"
	flagLogFile     = "logfile"
	flagSyslog      = "syslog"
	flagMetrics     = "metrics"
)

func createFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "配置文件路径（yaml/json），变更后自动重载",
		},
		&cli.StringFlag{
			Name:    flagSocketFile,
			Aliases: []string{"s"},
			Usage:   "客户端套接字路径",
			Value:   xsock.DefaultPath,
		},
		&cli.StringFlag{
			Name:    flagSocketMode,
			Aliases: []string{"m"},
			Usage:   "套接字文件权限（八进制）",
			Value:   xconf.Mode(xsock.DefaultMode).String(),
		},
		&cli.StringFlag{
			Name:    flagSocketGroup,
			Aliases: []string{"g"},
			Usage:   "套接字文件属组",
		},
		&cli.IntFlag{
			Name:    flagClientMax,
			Aliases: []string{"C"},
			Usage:   "非 root 客户端连接上限",
			Value:   xsock.DefaultClientMax,
		},
		&cli.BoolFlag{
			Name:    flagNoSocket,
			Aliases: []string{"S"},
			Usage:   "不监听客户端套接字",
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Aliases: []string{"l"},
			Usage:   "日志级别 (debug/info/warn/error)",
			Value:   "info",
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "日志文件路径（按大小轮转）",
		},
		&cli.BoolFlag{
			Name:  flagSyslog,
			Usage: "日志输出到 syslog",
		},
		&cli.BoolFlag{
			Name:  flagMetrics,
			Usage: "启用准入指标并周期写入日志",
		},
	}
}

// applyFlags 把显式设置的命令行参数覆盖到配置上。
//
// 只覆盖 IsSet 的参数：未设置时保留配置文件的值，
// 否则 flag 默认值会悄悄盖掉文件配置。
func applyFlags(cmd *cli.Command, d *xconf.Daemon) error {
	if cmd.IsSet(flagSocketFile) {
		d.Socket.Path = cmd.String(flagSocketFile)
	}
	if cmd.IsSet(flagSocketMode) {
		var m xconf.Mode
		if err := m.UnmarshalText([]byte(cmd.String(flagSocketMode))); err != nil {
			return err
		}
		d.Socket.Mode = m
	}
	if cmd.IsSet(flagSocketGroup) {
		d.Socket.Group = cmd.String(flagSocketGroup)
	}
	if cmd.IsSet(flagClientMax) {
		d.Clients.Max = cmd.Int(flagClientMax)
	}
	if cmd.Bool(flagNoSocket) {
		d.Socket.Disabled = true
	}
	if cmd.IsSet(flagLogLevel) {
		level, err := xlog.ParseLevel(cmd.String(flagLogLevel))
		if err != nil {
			return fmt.Errorf("%w: %w", xconf.ErrInvalid, err)
		}
		d.Log.Level = level
	}
	if cmd.IsSet(flagLogFile) {
		d.Log.File = cmd.String(flagLogFile)
		d.Log.Syslog = false
	}
	if cmd.Bool(flagSyslog) {
		d.Log.Syslog = true
		d.Log.File = ""
	}
	if cmd.Bool(flagMetrics) {
		d.Metrics.Enabled = true
	}
	return nil
}

// loadSettings 读取配置文件（若指定）并应用命令行覆盖。
// 返回的 Config 在未指定配置文件时为 nil。
func loadSettings(cmd *cli.Command) (xconf.Daemon, xconf.Config, error) {
	var cfg xconf.Config
	if path := cmd.String(flagConfig); path != "" {
		c, err := xconf.New(path)
		if err != nil {
			return xconf.Daemon{}, nil, err
		}
		cfg = c
	}
	d, err := resolve(cmd, cfg)
	if err != nil {
		return xconf.Daemon{}, nil, err
	}
	return d, cfg, nil
}

// resolve 合成最终配置：默认值、配置文件、命令行参数依次覆盖。
func resolve(cmd *cli.Command, cfg xconf.Config) (xconf.Daemon, error) {
	d, err := xconf.DecodeDaemon(cfg)
	if err != nil {
		return xconf.Daemon{}, err
	}
	if err := applyFlags(cmd, &d); err != nil {
		return xconf.Daemon{}, err
	}
	if err := d.Validate(); err != nil {
		return xconf.Daemon{}, err
	}
	return d, nil
}
