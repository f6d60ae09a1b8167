package main

import (
	"fmt"
	"os"
)

// @title Admissions CRM API
// @version 1.0.0
// @description Student admissions CRM: enrollment workflow, lead intake and the admissions chat assistant.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
