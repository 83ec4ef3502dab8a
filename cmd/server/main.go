package main

import (
	"github.com/taxmitra/grievance/internal/server"
	"github.com/taxmitra/grievance/internal/util"
	"github.com/taxmitra/grievance/pkg/logger"
	"github.com/taxmitra/grievance/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
