package main

import "github.com/datazip-inc/sieve"

func main() {
	sieve.Run()
}
