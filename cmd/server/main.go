package main

import (
	_ "github.com/dwarvesf/crypto-bookkeeper/docs"
	"github.com/dwarvesf/crypto-bookkeeper/internal/server"
)

// @title Crypto Bookkeeper API
// @version 1.0
// @description Turns on-chain transactions into double-entry journal entries.
// @BasePath /api/v1
func main() {
	server.Init()
}
