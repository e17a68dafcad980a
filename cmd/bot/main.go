package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hwbot/internal/app"
	"hwbot/internal/config"
	logx "hwbot/pkg/logx"
)

func main() {
	var cfgPath, envPath string
	flag.StringVar(&cfgPath, "config", "", "path to config yaml/json (optional)")
	flag.StringVar(&envPath, "env", ".env", "path to dotenv file (ignored when missing)")
	flag.Parse()

	if err := config.LoadDotenv(envPath); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.NewApp(app.Options{ConfigPath: cfgPath})
	if err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			logx.NewConsole("INFO").Critical("required environment variables are missing", logx.Err(err))
		}
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	select {
	case <-ctx.Done():
	case <-a.Done():
	}
	reason := app.StopSignal
	if a.Err() != nil {
		reason = app.StopFatalError
	}
	if err := a.Stop(context.Background(), reason); err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}
