package main

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/songquanpeng/apitest/common"
)

func main() {
	SetVersion(common.Version)
	Execute()
}
