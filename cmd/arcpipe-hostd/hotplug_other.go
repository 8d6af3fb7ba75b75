//go:build !linux

package main

import (
	"context"

	"github.com/charmbracelet/log"
)

func watchHotplug(context.Context, *log.Logger) <-chan string {
	return nil
}
