// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"log"

	"github.com/kpanuragh/xdebug-mcp/cmd/xdebug-mcp-bridge/cmd"
)

func main() {
	log.SetFlags(0)
	cmd.Execute()
}
