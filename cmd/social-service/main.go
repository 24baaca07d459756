package main

import (
	"flag"
	"os"

	"github.com/telecomnet/telecom-social/socialservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override SOCIAL_BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if err := socialservice.Run(socialservice.Options{BuildTarget: *buildTarget}); err != nil {
		os.Exit(1)
	}
}
