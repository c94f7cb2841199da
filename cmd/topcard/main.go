package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/jason-s-yu/topcard/internal/cli"
)

func main() {
	cli.Execute()
}
