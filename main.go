/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/podforge/podforge-api/cmd"

func main() {
	cmd.Execute()
}
