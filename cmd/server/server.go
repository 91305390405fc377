package main

import (
	"mysocial-server/internal"
)

func main() {
	internal.Init()
}
