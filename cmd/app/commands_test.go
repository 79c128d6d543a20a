package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range getCommands("test") {
		names = append(names, cmd.Name)
	}

	assert.ElementsMatch(t, []string{
		"server",
		"migrate",
		"clean-audit-events",
		"create-encryption-key",
		"create-api-token",
		"encrypt-field",
		"decrypt-field",
	}, names)
}

func TestFieldCommandsRequireFieldName(t *testing.T) {
	for _, cmd := range getFieldCommands() {
		var found bool
		for _, flag := range cmd.Flags {
			for _, name := range flag.Names() {
				if name == "field" {
					found = true
				}
			}
		}
		assert.True(t, found, cmd.Name)
	}
}
