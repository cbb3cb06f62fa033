// internal/syscmd/syscmd_test.go
package syscmd

import (
	"context"
	"strings"
	"testing"
)

func TestParse_Quoting(t *testing.T) {
	c, err := Parse(`sh -c 'echo "$HUD_VERSION"'`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(c.argv) != 3 || c.argv[2] != `echo "$HUD_VERSION"` {
		t.Fatalf("argv=%q", c.argv)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse("   "); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRun_EnvAndOutput(t *testing.T) {
	c, _ := Parse(`sh -c 'echo v=$HUD_VERSION'`)

	out, err := c.Run(context.Background(), "HUD_VERSION=1.2.3")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(string(out)) != "v=1.2.3" {
		t.Fatalf("out=%q", out)
	}
}

func TestRun_Failure(t *testing.T) {
	c, _ := Parse(`sh -c 'echo boom; exit 3'`)

	_, err := c.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected failure carrying output, got %v", err)
	}
}
