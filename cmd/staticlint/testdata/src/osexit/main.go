package main

import "os"

func main() {
	defer func() {
		os.Exit(2) // ok
	}()
	os.Exit(1) // want `avoid direct os.Exit call in main function of main package`
}

func helper() {
	os.Exit(3)
}
