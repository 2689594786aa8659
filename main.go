/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Kattu2003/PRODUCT/cmd"

func main() {
	cmd.Execute()
}
