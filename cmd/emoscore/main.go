package main

import (
	"os"

	"github.com/bertygi/HibiLog-EmotionScore/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
