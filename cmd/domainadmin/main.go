package main

import (
	"github.com/soheilgoodarzi/domain-manager-assessment/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal("application terminated", "error", err)
	}
}
