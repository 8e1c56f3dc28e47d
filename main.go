package main

import (
	"log"

	"github.com/prasukj7-arch/internmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
