// chatfield-server serves the conversation API over HTTP.
package main

import (
	"log"

	"github.com/chatfield/chatfield-go/internal/builder"
)

func main() {
	app, err := builder.Build()
	if err != nil {
		log.Fatal("failed to build server:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("server error:", err)
	}
}
