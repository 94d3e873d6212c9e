package main

import "github.com/NaserJamal/simple-ocr/cmd/simple-ocr/cmd"

func main() {
	cmd.Execute()
}
