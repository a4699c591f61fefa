package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/drewfead/kpcheck/internal/commands"
)

func main() {
	app := commands.NewApp()
	if err := app.Run(os.Args); err != nil {
		zap.L().Fatal("Fatal error", zap.Error(err))
	}
}
