package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"
)

func TestSplitList(t *testing.T) {
	gt.A(t, splitList("a, b,,c ")).Equal([]string{"a", "b", "c"})
	gt.A(t, splitList("")).Length(0)
}

func TestWriteOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	gt.NoError(t, writeOutput(path, []byte("# hello\n")))

	data := gt.R1(os.ReadFile(path)).NoError(t)
	gt.V(t, string(data)).Equal("# hello\n")
}

func TestCreateIssuesWeightFlag(t *testing.T) {
	var weight *cli.IntFlag
	for _, f := range createIssuesCommand().Flags {
		if v, ok := f.(*cli.IntFlag); ok && v.Name == "weight" {
			weight = v
		}
	}
	gt.V(t, weight).NotNil()
}
