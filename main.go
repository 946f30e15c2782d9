package main

import (
	"github.com/dengxuezhao/kompanion/internal/config"
	"github.com/dengxuezhao/kompanion/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	cfg := config.NewConfig()
	entrypoint.Run(cfg, Version)
}
