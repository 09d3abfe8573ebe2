// Package app dispatches parsed cmdsock commands and owns exit-code policy.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rbright/cmdsock/internal/cli"
	"github.com/rbright/cmdsock/internal/config"
	"github.com/rbright/cmdsock/internal/doctor"
	"github.com/rbright/cmdsock/internal/logging"
	"github.com/rbright/cmdsock/internal/payload"
	"github.com/rbright/cmdsock/internal/submit"
	"github.com/rbright/cmdsock/internal/version"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("cmdsock"))
		return exitUsage
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("cmdsock"))
		return exitOK
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return exitOK
	}

	if parsed.Command == cli.CommandSubmit && parsed.PayloadPath == "" {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", payload.ErrMissingPath)
		fmt.Fprint(r.Stderr, cli.HelpText("cmdsock"))
		return exitFail
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFail
	}
	cfg, warnings, err := applyOverrides(cfgLoaded.Config, parsed)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFail
	}
	cfgLoaded.Config = cfg

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logRuntime, err := logging.New(level)
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: logging disabled: %v\n", err)
		logRuntime = logging.Discard()
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"config_exists", cfgLoaded.Exists,
		"socket", cfg.Socket.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return exitOK
		}
		return exitFail
	case cli.CommandSubmit:
		return r.commandSubmit(ctx, cfg, parsed.PayloadPath, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return exitUsage
	}
}

// applyOverrides layers CLI flags over file config and re-validates.
func applyOverrides(cfg config.Config, parsed cli.Parsed) (config.Config, []config.Warning, error) {
	if parsed.SocketPath != "" {
		cfg.Socket.Path = parsed.SocketPath
	}
	if parsed.Wait {
		cfg.Submit.AwaitReply = true
	}

	warnings, err := config.Validate(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (r Runner) commandSubmit(ctx context.Context, cfg config.Config, path string, logger *slog.Logger) int {
	p, err := payload.Load(path, payload.Limits{
		MaxSize:     cfg.Payload.MaxSize,
		RequireJSON: cfg.Payload.RequireJSON,
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Warn("payload rejected", "payload", path, "error", err.Error())
		return exitFail
	}

	result, err := submit.Submit(ctx, cfg.Socket.Path, p.Data, submit.Options{
		DialTimeout:  cfg.Socket.DialTimeout,
		WriteTimeout: cfg.Socket.WriteTimeout,
		AwaitReply:   cfg.Submit.AwaitReply,
		ReplyTimeout: cfg.Submit.ReplyTimeout,
	})
	logSubmission(logger, cfg.Socket.Path, p, result, err)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFail
	}

	if result.Reply != nil && result.Reply.Message != "" {
		fmt.Fprintln(r.Stdout, result.Reply.Message)
	}
	return exitOK
}

func logSubmission(logger *slog.Logger, socketPath string, p payload.Payload, result submit.Result, err error) {
	if logger == nil {
		return
	}
	fields := []any{
		"socket", socketPath,
		"payload", p.Path,
		"bytes", p.Size(),
		"size", p.HumanSize(),
		"bytes_written", result.BytesWritten,
		"command_name", p.CommandName(),
		"duration_ms", result.Elapsed.Milliseconds(),
	}
	if result.Reply != nil {
		fields = append(fields, "reply_success", result.Reply.Success, "reply_message", result.Reply.Message)
	}

	if err != nil {
		logger.Error("submission failed", append(fields, "reason", failureReason(err), "error", err.Error())...)
		return
	}
	logger.Info("submission complete", fields...)
}

func failureReason(err error) string {
	switch {
	case submit.IsSocketMissing(err):
		return "socket_missing"
	case submit.IsConnectionRefused(err):
		return "connection_refused"
	case errors.Is(err, submit.ErrRejected):
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "interrupted"
	default:
		return "transport"
	}
}
