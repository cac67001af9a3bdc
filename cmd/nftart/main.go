// nftart はトークン ID から幾何学模様の作品とメタデータを生成するサーバー兼 CLI です。
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
