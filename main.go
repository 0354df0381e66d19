package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banachtech/sleevesim/api"
	"github.com/banachtech/sleevesim/mainfuncs"
)

func main() {
	serve := flag.String("serve", "", "address to serve the HTTP API on, e.g. :8080")
	scenario := flag.String("scenario", "", "path to a scenario JSON file to simulate")
	out := flag.String("out", "", "write the full result JSON to this file")
	flag.Parse()

	switch {
	case *serve != "":
		// SIM_API_KEY_HASH is the bcrypt hash of the accepted API key;
		// unset runs the server open, for local use only.
		server := api.NewServer(os.Getenv("SIM_API_KEY_HASH"))
		if err := server.Start(*serve); err != nil {
			fmt.Println(err)
			os.Exit(-1)
		}
	case *scenario != "":
		if err := mainfuncs.Simulate(*scenario, *out); err != nil {
			fmt.Println(err)
			os.Exit(-1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}
