package common

import (
	"flag"
	"fmt"
	"os"
)

var (
	Port         = flag.Int("port", 3000, "the listening port")
	PrintVersion = flag.Bool("version", false, "print version and exit")
	PrintHelp    = flag.Bool("help", false, "print help and exit")
)

func printHelp() {
	fmt.Println("apitest " + Version + " - natural language API testing service.")
	fmt.Println("Usage: apitest-server [--port <port>] [--version] [--help]")
	fmt.Println("POST /task with {\"type\":\"api\",\"prompt\":\"GET https://api.example.com/ping\"}")
}

// Init parses the server flags and handles --version and --help.
func Init() {
	flag.Parse()

	if *PrintVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if *PrintHelp {
		printHelp()
		os.Exit(0)
	}
}
