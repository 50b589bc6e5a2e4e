// Command docctl runs the ingestion pipeline and the retriever out of band,
// against the same configuration as the API server.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
