/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Alex20507/tg-card/cmd"

func main() {
	cmd.Execute()
}
