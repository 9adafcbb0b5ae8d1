package main

import (
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/cmd/pi-simulator/cmd"
)

func main() {
	cmd.Execute()
}
