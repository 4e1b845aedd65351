package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mdforge/mdforge"
	"github.com/mdforge/mdforge/engine"
	"github.com/mdforge/mdforge/internal/assets"
	"github.com/mdforge/mdforge/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	os.Exit(run(os.Args, DefaultEnv()))
}

// run dispatches the command line and returns the process exit code.
func run(args []string, env *Environment) int {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	switch args[1] {
	case "convert":
		flags, positional, err := parseConvertFlags(args[2:])
		if err != nil {
			return ExitUsage
		}
		if err := runConvert(ctx, positional, flags, newServicePool, env); err != nil {
			fmt.Fprintln(env.Stderr, errorWithHint(err))
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "serve":
		flags, err := parseServeFlags(args[2:])
		if err != nil {
			return ExitUsage
		}
		if err := runServe(ctx, flags, env); err != nil {
			fmt.Fprintln(env.Stderr, errorWithHint(err))
			return exitCodeFor(err)
		}
		return ExitSuccess

	case "doctor":
		return runDoctorCmd(args[2:], env)

	case "version":
		fmt.Fprintf(env.Stdout, "mdforge %s\n", Version)
		return ExitSuccess

	case "help", "--help", "-h":
		runHelp(args[2:], env)
		return ExitSuccess

	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[1])
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// errorWithHint appends an actionable hint to errors that have one.
func errorWithHint(err error) string {
	msg := err.Error()

	switch {
	case errors.Is(err, engine.ErrBrowserConnect):
		msg += hints.ForBrowserConnect()
	case errors.Is(err, engine.ErrNoHealthyEngine),
		errors.Is(err, engine.ErrBackendNotFound),
		errors.Is(err, ErrGenerationFailed):
		msg += hints.ForEngineUnavailable()
	case errors.Is(err, context.DeadlineExceeded):
		msg += hints.ForTimeout()
	case errors.Is(err, mdforge.ErrConfigNotFound):
		msg += hints.ForConfigNotFound(nil)
	case errors.Is(err, assets.ErrStyleNotFound):
		msg += hints.ForStyleNotFound(assets.AvailableStyles())
	}

	return msg
}
