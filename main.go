package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/nekowawolf/banano-trade-bot/config"
	"github.com/nekowawolf/banano-trade-bot/logger"
	"github.com/nekowawolf/banano-trade-bot/swap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Invalid configuration:", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel); err != nil {
		fmt.Println("Invalid LOG_LEVEL:", err)
		os.Exit(1)
	}
	defer logger.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := swap.NewClient(swap.ClientParams{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
	})
	defer client.CloseIdleConnections()

	exchanges := swap.WithOverrides(swap.Exchanges(), cfg.APIOverrides())
	session := swap.NewSession(os.Stdin, os.Stdout, client, exchanges)

	if err := session.Run(ctx); err != nil {
		logger.Log.Debugw("run stopped", "error", err)
		switch {
		case errors.Is(err, context.Canceled):
			fmt.Println(color.YellowString("\nInterrupted"))
		case errors.Is(err, swap.ErrInputClosed):
			fmt.Println(color.YellowString("\nNo more input, exiting"))
		}
		logger.Log.Sync()
		os.Exit(1)
	}
}
