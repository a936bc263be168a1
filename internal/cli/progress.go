package cli

import (
	"fmt"
	"io"

	"github.com/mlevkov/pagekeeper/internal/publish"
)

var stageLabels = map[publish.Stage]string{
	publish.StageFetchingRef:     "fetching branch tip",
	publish.StageUploadingAssets: "uploading files",
	publish.StageBuildingTree:    "building tree",
	publish.StageCreatingCommit:  "creating commit",
	publish.StageUpdatingRef:     "updating branch",
	publish.StageSucceeded:       "done",
}

// progressPrinter renders pipeline stage transitions to w, one line per
// stage. Failures are reported by the caller through the returned error, so
// the failed event prints nothing.
func progressPrinter(w io.Writer) publish.Observer {
	return func(e publish.Event) {
		if e.Stage == publish.StageFailed {
			return
		}
		if label, ok := stageLabels[e.Stage]; ok {
			fmt.Fprintf(w, "  %s...\n", label)
		}
	}
}
