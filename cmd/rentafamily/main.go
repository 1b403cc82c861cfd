// Command rentafamily はRent-A-FamilyのAPIサーバー・ワーカー・マイグレーションを起動する。
//
// 使い方:
//
//	rentafamily [serve|worker|migrate [up|down|version]|healthcheck]
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/rentafamily/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "rentafamily: %v\n", err)
		os.Exit(1)
	}
}
