package main

import (
	"log"

	"github.com/nguyengg/tarball/internal/cmd"
)

func main() {
	log.SetFlags(0)

	c := &cmd.Command{}
	args, err := cmd.NewParser(c).Parse()
	if err == nil {
		if err = c.Execute(args); err != nil {
			log.Print(err)
		}
	}

	exit(err)
}
