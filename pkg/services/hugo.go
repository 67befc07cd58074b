package services

import (
	"context"
	"os/exec"
)

// BuildSite runs hugo against the site at source and returns its output.
func BuildSite(ctx context.Context, source string) (string, error) {
	cmd := exec.CommandContext(ctx, "hugo", "--source", source)
	output, err := cmd.CombinedOutput()
	return string(output), err
}
