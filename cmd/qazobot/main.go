// Command qazobot runs the missed-prayer tracker bot.
package main

import (
	"log"

	"github.com/qazobot/qazobot/app"
	"github.com/qazobot/qazobot/app/config"
	"github.com/qazobot/qazobot/core/buildinfo"
	corecmd "github.com/qazobot/qazobot/core/cmd"
)

func main() {
	log.Printf("qazobot %s", buildinfo.String())
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: app.Bootstrap,
	})
	if err != nil {
		log.Fatal(err)
	}
}
