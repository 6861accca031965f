package main

import "github.com/frahmantamala/permit-service/cmd"

func main() {
	cmd.Execute()
}
