// cmd/modscan-chain/main.go
package main

import (
	"modscan/internal/appshell"
	"modscan/internal/chainapp"
)

func main() {
	appshell.Main(chainapp.RunContext)
}
