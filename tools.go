//go:build tools
// +build tools

// Code generators used by go:generate, kept here so go.mod tracks them.
package main

import (
	_ "go.uber.org/mock/mockgen"
)
