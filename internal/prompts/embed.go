package prompts

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed templates/*.txt.tmpl
var promptsFS embed.FS

// FS returns the embedded template tree rooted at templates/.
func FS() fs.FS {
	if sub, err := fs.Sub(promptsFS, "templates"); err == nil {
		return sub
	}
	return promptsFS
}

// PathFor maps a logical name ("kyc_user", "kyc_user@v2") to its file name.
func PathFor(name string) string {
	return fmt.Sprintf("%s.txt.tmpl", name)
}
