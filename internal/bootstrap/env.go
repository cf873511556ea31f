package bootstrap

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Loadenv loads .env (or the file named by ENV_FILE) into the process
// environment. Variables that are already set win.
func Loadenv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("No %s file found, using system environment variables", path)
	}
}
