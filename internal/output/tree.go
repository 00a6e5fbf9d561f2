// Package output renders workspace exclusions for the terminal.
package output

import (
	"fmt"

	"github.com/CageChen/hideme/internal/workspace"
	"github.com/disiqueira/gotree/v3"
)

// RenderStatus draws one branch per folder listing its hidden entries.
func RenderStatus(rootLabel string, results []workspace.Result) string {
	tree := gotree.New(rootLabel)
	for _, r := range results {
		folder := tree.Add(fmt.Sprintf("%s (%s)", r.Folder.Alias, r.Folder.Path))
		names := r.Set.Names()
		if len(names) == 0 {
			folder.Add("(nothing hidden)")
			continue
		}
		for _, name := range names {
			folder.Add(name)
		}
	}
	return tree.Print()
}
