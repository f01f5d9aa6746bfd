package buildinfo_test

import (
	"fmt"
	"os"

	"github.com/InQaaaaGit/blob_relocator.git/internal/buildinfo"
)

// ExampleNewInfo демонстрирует информацию о сборке без переданных -ldflags
func ExampleNewInfo() {
	var buildVersion, buildDate, buildCommit string
	buildinfo.NewInfo(buildVersion, buildDate, buildCommit).Print(os.Stdout)

	// Output:
	// Build version: N/A
	// Build date: N/A
	// Build commit: N/A
}

// ExampleInfo_String демонстрирует строковое представление информации о сборке
func ExampleInfo_String() {
	info := buildinfo.NewInfo("v1.0.0", "2026-01-01", "abc123")
	fmt.Println(info.String())

	// Output:
	// Version: v1.0.0, Date: 2026-01-01, Commit: abc123
}
