package main

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/RamPrasathM-2005/College-Integration-sub001/app"
)

func main() {
	// setup and run app
	err := app.SetupAndRunServer()
	if err != nil {
		log.Trace(err)
		panic(err)
	}
}
