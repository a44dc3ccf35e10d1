// cmd/modscan/main.go
package main

import (
	"modscan/internal/appshell"
	"modscan/internal/scanapp"
)

func main() {
	appshell.Main(scanapp.RunContext)
}
