package main

import "github.com/jefftt/s3edit/cmd/s3edit-formula/cmd"

func main() {
	cmd.Execute()
}
